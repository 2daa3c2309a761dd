package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ratesmap/ratesmap/internal/api"
	"github.com/ratesmap/ratesmap/internal/filter"
	"github.com/ratesmap/ratesmap/internal/metrics"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the property map API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, _, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		engine := filter.NewEngine(filter.Options{
			ValueDelay:    time.Duration(cfg.Filter.ValueDelayMS) * time.Millisecond,
			CategoryDelay: time.Duration(cfg.Filter.CategoryDelayMS) * time.Millisecond,
			OnCommit: func(snap filter.Snapshot) {
				metrics.VisibleProperties.Set(float64(snap.VisibleCount))
				metrics.LoadedProperties.Set(float64(snap.TotalRecords))
			},
		})
		defer engine.Close()

		records, err := store.ListAll(ctx)
		if err != nil {
			return eris.Wrap(err, "serve: load property records")
		}
		engine.OnDataLoaded(records)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           api.NewServer(engine, store).Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.Int("records", len(records)),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "serve: listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
