package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ratesmap/ratesmap/internal/fetcher"
	"github.com/ratesmap/ratesmap/internal/ingest"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync council valuation rolls",
	Long: `Sync council valuation rolls into the property store.

By default, syncs all sources whose schedule says they are due.
Use --sources for specific sources, or --force to ignore scheduling.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("sync"); err != nil {
			return err
		}

		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "sync"))

		store, pool, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		if err := os.MkdirAll(cfg.Sync.TempDir, 0o755); err != nil {
			return eris.Wrapf(err, "sync: create temp dir %s", cfg.Sync.TempDir)
		}

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			MaxRetries: cfg.Sync.MaxRetries,
			Timeout:    time.Duration(cfg.Sync.TimeoutSecs) * time.Second,
		})

		// Scheduling state lives in Postgres; SQLite runs without it and
		// treats every source as due.
		var syncLog *ingest.SyncLog
		if pool != nil {
			syncLog = ingest.NewSyncLog(pool)
		}

		opts := parseSyncOpts(cmd)
		engine := ingest.NewEngine(store, f, syncLog, ingest.NewRegistry())

		log.Info("starting sync",
			zap.Strings("sources", opts.Sources),
			zap.Bool("force", opts.Force),
		)

		if err := engine.Run(ctx, opts); err != nil {
			return eris.Wrap(err, "sync")
		}

		fmt.Println("Sync complete")
		return nil
	},
}

func init() {
	syncCmd.Flags().String("sources", "", "comma-separated source names (e.g., auckland,wellington)")
	syncCmd.Flags().Bool("force", false, "ignore scheduling and sync regardless of last run")
	rootCmd.AddCommand(syncCmd)
}

func parseSyncOpts(cmd *cobra.Command) ingest.RunOpts {
	sourcesStr, _ := cmd.Flags().GetString("sources")
	force, _ := cmd.Flags().GetBool("force")

	opts := ingest.RunOpts{Force: force}
	if sourcesStr != "" {
		opts.Sources = strings.Split(sourcesStr, ",")
		for i := range opts.Sources {
			opts.Sources[i] = strings.TrimSpace(opts.Sources[i])
		}
	}
	return opts
}
