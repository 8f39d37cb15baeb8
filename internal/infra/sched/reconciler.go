package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ppob-settlement/internal/domain/ports/repository"
	"ppob-settlement/internal/infra/metrics"
	"ppob-settlement/internal/infra/worker"
	"ppob-settlement/internal/usecase"
)

// Reconciler periodically scans the journal for stale unresolved references
// and forces a status re-check on each. This covers pollers lost to a crash
// or restart and pollers that exhausted their attempts while the gateway was
// slow to confirm.
type Reconciler struct {
	journal    repository.PendingTransactionRepository
	registry   *usecase.PollerRegistry
	pool       *worker.Pool
	interval   time.Duration
	staleAfter time.Duration
	batch      int
	log        *zerolog.Logger
}

func NewReconciler(
	journal repository.PendingTransactionRepository,
	registry *usecase.PollerRegistry,
	pool *worker.Pool,
	interval, staleAfter time.Duration,
	logger *zerolog.Logger,
) *Reconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	return &Reconciler{
		journal:    journal,
		registry:   registry,
		pool:       pool,
		interval:   interval,
		staleAfter: staleAfter,
		batch:      200,
		log:        logger,
	}
}

func (w *Reconciler) Start(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *Reconciler) tick(ctx context.Context) {
	metrics.IncReconcilerRun()

	cutoff := time.Now().Add(-w.staleAfter)
	stale, err := w.journal.ListUnresolvedOlderThan(ctx, cutoff, w.batch)
	if err != nil {
		w.log.Error().Err(err).Msg("reconciler: journal scan failed")
		return
	}

	for _, tx := range stale {
		ref := tx.Reference
		err := w.pool.Submit(func(ctx context.Context) error {
			snap, err := w.registry.CheckNow(ctx, ref)
			switch {
			case err != nil:
				metrics.IncReconcilerRecheck("error")
				return err
			case snap.State.Terminal():
				metrics.IncReconcilerRecheck("resolved")
			default:
				metrics.IncReconcilerRecheck("still_pending")
			}
			return nil
		})
		if err != nil {
			// Queue full; the row stays unresolved and the next scan sees it.
			w.log.Warn().Str("reference", ref.String()).Err(err).Msg("reconciler: submit skipped")
			return
		}
	}
	if len(stale) > 0 {
		w.log.Info().Int("count", len(stale)).Msg("reconciler: re-checking stale references")
	}
}
