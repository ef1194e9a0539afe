package schedule

import (
	"context"
	"log/slog"
	"time"
)

// IntervalRunner fires a task once per fixed interval until the
// context is cancelled. Runs are sequential on one goroutine; a slow
// run delays the next tick rather than overlapping it. Task errors are
// logged and swallowed.
type IntervalRunner struct {
	task     Task
	interval time.Duration
}

func NewIntervalRunner(task Task, interval time.Duration) *IntervalRunner {
	return &IntervalRunner{
		task:     task,
		interval: interval,
	}
}

// Start blocks until ctx is cancelled. The first run happens one full
// interval after Start.
func (r *IntervalRunner) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.Info("interval runner started", "task", r.task.Name(), "interval", r.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("interval runner stopped", "task", r.task.Name())
			return
		case <-ticker.C:
			if err := r.task.Run(ctx); err != nil {
				slog.Error("task run failed", "task", r.task.Name(), "error", err)
			}
		}
	}
}
