package ingest

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ratesmap/ratesmap/internal/fetcher"
	"github.com/ratesmap/ratesmap/internal/property"
)

// fakeSource is a scripted Source for engine tests.
type fakeSource struct {
	name string
	due  bool
	err  error
	rows int64
	runs atomic.Int64
}

func (s *fakeSource) Name() string     { return s.name }
func (s *fakeSource) District() string { return "Testville" }
func (s *fakeSource) Cadence() Cadence { return Daily }

func (s *fakeSource) ShouldRun(time.Time, *time.Time) bool { return s.due }

func (s *fakeSource) Sync(context.Context, property.Store, fetcher.Fetcher) (*SyncResult, error) {
	s.runs.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &SyncResult{RowsSynced: s.rows}, nil
}

func newFakeRegistry(sources ...Source) *Registry {
	r := &Registry{sources: make(map[string]Source)}
	for _, s := range sources {
		r.Register(s)
	}
	return r
}

func TestEngine_RunsDueSources(t *testing.T) {
	a := &fakeSource{name: "a", due: true, rows: 10}
	b := &fakeSource{name: "b", due: true, rows: 20}

	eng := NewEngine(newMemStore(), testIngestFetcher(), nil, newFakeRegistry(a, b))
	require.NoError(t, eng.Run(context.Background(), RunOpts{}))

	assert.Equal(t, int64(1), a.runs.Load())
	assert.Equal(t, int64(1), b.runs.Load())
}

func TestEngine_FailureDoesNotAbortSiblings(t *testing.T) {
	bad := &fakeSource{name: "bad", due: true, err: eris.New("upstream down")}
	good := &fakeSource{name: "good", due: true, rows: 5}

	eng := NewEngine(newMemStore(), testIngestFetcher(), nil, newFakeRegistry(bad, good))
	require.NoError(t, eng.Run(context.Background(), RunOpts{}))

	assert.Equal(t, int64(1), bad.runs.Load())
	assert.Equal(t, int64(1), good.runs.Load())
}

func TestEngine_SelectByName(t *testing.T) {
	a := &fakeSource{name: "a", due: true}
	b := &fakeSource{name: "b", due: true}

	eng := NewEngine(newMemStore(), testIngestFetcher(), nil, newFakeRegistry(a, b))
	require.NoError(t, eng.Run(context.Background(), RunOpts{Sources: []string{"b"}}))

	assert.Zero(t, a.runs.Load())
	assert.Equal(t, int64(1), b.runs.Load())
}

func TestEngine_UnknownSource(t *testing.T) {
	eng := NewEngine(newMemStore(), testIngestFetcher(), nil, newFakeRegistry())
	err := eng.Run(context.Background(), RunOpts{Sources: []string{"nope"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source")
}

func TestEngine_NilSyncLogAlwaysRuns(t *testing.T) {
	// With no sync log there is no last-success record, so scheduling is
	// bypassed and even a not-due source runs.
	s := &fakeSource{name: "s", due: false}

	eng := NewEngine(newMemStore(), testIngestFetcher(), nil, newFakeRegistry(s))
	require.NoError(t, eng.Run(context.Background(), RunOpts{}))

	assert.Equal(t, int64(1), s.runs.Load())
}
