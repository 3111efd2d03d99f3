// Package scheduler repeats a job on a fixed interval until its context is cancelled.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Job is one scheduled pass.
type Job func(ctx context.Context) error

// Run executes job once immediately and then on every tick. It blocks until ctx is done.
// A failing pass is logged and does not stop the schedule. A non-positive interval runs nothing.
func Run(ctx context.Context, log *slog.Logger, interval time.Duration, job Job) {
	const opn = "scheduler.Run"
	log = log.With("op", opn)

	if interval <= 0 {
		log.InfoContext(ctx, "Scheduler disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.InfoContext(ctx, "Scheduler started", "interval", interval)
	runOnce(ctx, log, job)

	for {
		select {
		case <-ctx.Done():
			log.InfoContext(ctx, "Scheduler stopped")
			return
		case <-ticker.C:
			runOnce(ctx, log, job)
		}
	}
}

func runOnce(ctx context.Context, log *slog.Logger, job Job) {
	start := time.Now()
	if err := job(ctx); err != nil {
		log.ErrorContext(ctx, "Scheduled pass failed", "error", err, "duration", time.Since(start))
		return
	}
	log.DebugContext(ctx, "Scheduled pass finished", "duration", time.Since(start))
}
