package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/testsmith-ai/testsmith/pkg/checkpoint"
)

// Reaper periodically deletes checkpoints of sessions that were parked and
// never resumed. Sessions hold no threads while suspended, so this sweep is
// the only cleanup they ever need.
type Reaper struct {
	store  checkpoint.Store
	maxAge time.Duration
	cron   *cron.Cron
	logger *slog.Logger
}

func NewReaper(store checkpoint.Store, maxAge time.Duration, logger *slog.Logger) *Reaper {
	return &Reaper{
		store:  store,
		maxAge: maxAge,
		cron:   cron.New(),
		logger: logger.With("module", "reaper"),
	}
}

// Start schedules the sweep with a cron expression and launches the
// scheduler.
func (r *Reaper) Start(ctx context.Context, schedule string) error {
	_, err := r.cron.AddFunc(schedule, func() {
		r.Sweep(ctx)
	})
	if err != nil {
		return err
	}

	r.cron.Start()
	r.logger.Info("Checkpoint reaper started", "schedule", schedule, "max_age", r.maxAge)

	return nil
}

// Sweep removes every checkpoint older than the cutoff once.
func (r *Reaper) Sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-r.maxAge)

	removed, err := r.store.CleanupExpired(ctx, cutoff)
	if err != nil {
		r.logger.Error("Checkpoint sweep failed", "error", err)

		return
	}

	if removed > 0 {
		r.logger.Info("Expired checkpoints removed", "count", removed, "cutoff", cutoff)
	}
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (r *Reaper) Stop() {
	<-r.cron.Stop().Done()
	r.logger.Info("Checkpoint reaper stopped")
}
