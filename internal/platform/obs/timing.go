package obs

import (
	"context"
	"log/slog"
	"time"
)

type ctxKey string

const RunIDKey ctxKey = "run_id"

// WithRunID tags ctx with the id of the current analysis run.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// RunID returns the run id stored in ctx, if any.
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(RunIDKey).(string)
	return id
}

// Time logs the duration of an operation on logger when the returned func is
// called, typically as `defer obs.Time(ctx, logger, "op")(&err)`. A nil logger
// means slog.Default().
func Time(ctx context.Context, logger *slog.Logger, name string) func(errp *error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()
	runID := RunID(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			logger.Error("op failed", "run_id", runID, "op", name, "dur_ms", dur.Milliseconds(), "err", *errp)
			return
		}
		logger.Info("op done", "run_id", runID, "op", name, "dur_ms", dur.Milliseconds())
	}
}
