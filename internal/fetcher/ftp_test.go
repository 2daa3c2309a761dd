package fetcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFTPURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantHost string
		wantPath string
		wantErr  string
	}{
		{
			name:     "default port added",
			url:      "ftp://ftp.linz.govt.nz/pub/boundaries.zip",
			wantHost: "ftp.linz.govt.nz:21",
			wantPath: "/pub/boundaries.zip",
		},
		{
			name:     "explicit port kept",
			url:      "ftp://example.com:2121/data/file.zip",
			wantHost: "example.com:2121",
			wantPath: "/data/file.zip",
		},
		{
			name:    "wrong scheme",
			url:     "https://example.com/file.zip",
			wantErr: "expected ftp scheme",
		},
		{
			name:    "missing path",
			url:     "ftp://example.com",
			wantErr: "empty path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, path, err := parseFTPURL(tt.url)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}

func TestNewFTPFetcher_DefaultTimeout(t *testing.T) {
	f := NewFTPFetcher(FTPOptions{})
	assert.NotZero(t, f.opts.Timeout)
}
