package ingest

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ratesmap/ratesmap/internal/fetcher"
	"github.com/ratesmap/ratesmap/internal/metrics"
	"github.com/ratesmap/ratesmap/internal/property"
)

// syncTimeout bounds a single source run. A full Auckland roll is ~550k
// records and finishes well inside this.
const syncTimeout = 30 * time.Minute

// Engine orchestrates source syncs.
type Engine struct {
	store   property.Store
	fetcher fetcher.Fetcher
	syncLog *SyncLog
	reg     *Registry
}

// RunOpts configures which sources to run and how.
type RunOpts struct {
	Sources []string // restrict to specific source names
	Force   bool     // ignore ShouldRun() scheduling
}

// NewEngine creates a new ingest engine. syncLog may be nil (e.g. when
// running against SQLite); scheduling then treats every source as due and
// no run bookkeeping is recorded.
func NewEngine(store property.Store, f fetcher.Fetcher, syncLog *SyncLog, reg *Registry) *Engine {
	return &Engine{
		store:   store,
		fetcher: f,
		syncLog: syncLog,
		reg:     reg,
	}
}

// Run iterates over selected sources, checks scheduling, and runs syncs in
// parallel. Individual source failures are recorded but don't abort the
// other sources.
func (e *Engine) Run(ctx context.Context, opts RunOpts) error {
	log := zap.L().With(zap.String("component", "ingest.engine"))
	now := time.Now().UTC()

	sources, err := e.reg.Select(opts.Sources)
	if err != nil {
		return err
	}

	if len(sources) == 0 {
		log.Info("no sources selected")
		return nil
	}

	log.Info("selected sources", zap.Int("count", len(sources)))

	var synced, skipped, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)

	for _, s := range sources {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			sLog := log.With(
				zap.String("source", s.Name()),
				zap.String("district", s.District()),
			)

			if !opts.Force && e.syncLog != nil {
				lastSync, err := e.syncLog.LastSuccess(gctx, s.Name())
				if err != nil {
					return eris.Wrapf(err, "engine: check last sync for %s", s.Name())
				}

				if !s.ShouldRun(now, lastSync) {
					sLog.Debug("skipping (not due)")
					skipped.Add(1)
					return nil
				}
			}

			sLog.Info("starting sync")

			var syncID uuid.UUID
			haveLog := e.syncLog != nil
			if haveLog {
				id, err := e.syncLog.Start(gctx, s.Name())
				if err != nil {
					return eris.Wrapf(err, "engine: start sync log for %s", s.Name())
				}
				syncID = id
			}

			start := time.Now()
			syncCtx, syncCancel := context.WithTimeout(gctx, syncTimeout)
			result, err := s.Sync(syncCtx, e.store, e.fetcher)
			syncCancel()
			elapsed := time.Since(start)

			if err != nil {
				sLog.Error("sync failed", zap.Error(err), zap.Duration("elapsed", elapsed))
				if haveLog {
					if logErr := e.syncLog.Fail(gctx, syncID, err.Error()); logErr != nil {
						sLog.Error("failed to record sync failure", zap.Error(logErr))
					}
				}
				metrics.SyncRunsTotal.WithLabelValues(s.Name(), "failed").Inc()
				failed.Add(1)
				return nil // don't abort other sources on individual failure
			}

			if haveLog {
				if err := e.syncLog.Complete(gctx, syncID, result); err != nil {
					sLog.Error("failed to record sync completion", zap.Error(err))
				}
			}

			metrics.SyncRunsTotal.WithLabelValues(s.Name(), "complete").Inc()
			metrics.SyncRowsTotal.WithLabelValues(s.Name()).Add(float64(result.RowsSynced))

			sLog.Info("sync complete",
				zap.Int64("rows", result.RowsSynced),
				zap.Duration("elapsed", elapsed),
			)
			synced.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("engine run complete",
		zap.Int64("synced", synced.Load()),
		zap.Int64("skipped", skipped.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}
