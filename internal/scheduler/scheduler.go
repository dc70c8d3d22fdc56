// Package scheduler runs a task on a fixed interval until its context ends.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

type Task func(ctx context.Context) error

// Every runs task immediately and then on each tick. Runs never overlap:
// a tick that fires while the task is still running is dropped by the
// ticker. Task errors are logged and do not stop the loop.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	run := func() {
		if err := task(ctx); err != nil && ctx.Err() == nil {
			slog.Warn("scheduled task failed", "task", name, "err", err)
		}
	}

	run()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}
