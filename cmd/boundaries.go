package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ratesmap/ratesmap/internal/db"
	"github.com/ratesmap/ratesmap/internal/fetcher"
	"github.com/ratesmap/ratesmap/internal/geometry"
)

var boundariesCmd = &cobra.Command{
	Use:   "boundaries",
	Short: "Load district boundary shapefiles",
	Long: `Downloads a zipped boundary shapefile (HTTP or FTP), extracts it, and
loads each polygon into rates.district_boundaries keyed by the value of
--name-field.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("migrate"); err != nil {
			return err
		}

		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "boundaries"))

		rawURL, _ := cmd.Flags().GetString("url")
		nameField, _ := cmd.Flags().GetString("name-field")
		if rawURL == "" {
			return eris.New("boundaries: --url is required")
		}

		pool, err := pgPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := os.MkdirAll(cfg.Sync.TempDir, 0o755); err != nil {
			return eris.Wrapf(err, "boundaries: create temp dir %s", cfg.Sync.TempDir)
		}

		archive := filepath.Join(cfg.Sync.TempDir, "boundaries.zip")
		size, err := boundaryFetcher(rawURL).DownloadToFile(ctx, rawURL, archive)
		if err != nil {
			return eris.Wrapf(err, "boundaries: download %s", rawURL)
		}
		log.Info("downloaded boundary archive", zap.Int64("bytes", size))

		shpPath, err := geometry.ExtractShapefile(archive, cfg.Sync.TempDir)
		if err != nil {
			return err
		}

		boundaries, err := geometry.ReadBoundaries(shpPath)
		if err != nil {
			return err
		}

		rows := make([][]any, 0, len(boundaries))
		for _, b := range boundaries {
			name := b.Fields[nameField]
			if name == "" {
				log.Warn("skipping boundary with empty name field",
					zap.String("name_field", nameField),
				)
				continue
			}
			rows = append(rows, []any{name, b.EWKB})
		}

		written, err := db.BulkUpsert(ctx, pool, db.UpsertConfig{
			Table:        "rates.district_boundaries",
			Columns:      []string{"name", "geom"},
			ConflictKeys: []string{"name"},
		}, rows)
		if err != nil {
			return eris.Wrap(err, "boundaries: load")
		}

		fmt.Printf("Loaded %d boundaries\n", written)
		return nil
	},
}

func init() {
	boundariesCmd.Flags().String("url", "", "zipped shapefile URL (http, https, or ftp)")
	boundariesCmd.Flags().String("name-field", "NAME", "attribute field holding the boundary name")
	rootCmd.AddCommand(boundariesCmd)
}

// boundaryFetcher picks the transport by URL scheme. LINZ bulk exports are
// served over FTP; council open data portals use HTTPS.
func boundaryFetcher(rawURL string) fetcher.Fetcher {
	if u, err := url.Parse(rawURL); err == nil && u.Scheme == "ftp" {
		return fetcher.NewFTPFetcher(fetcher.FTPOptions{Timeout: 5 * time.Minute})
	}
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		MaxRetries: cfg.Sync.MaxRetries,
		Timeout:    time.Duration(cfg.Sync.TimeoutSecs) * time.Second,
	})
}
