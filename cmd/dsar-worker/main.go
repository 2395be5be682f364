package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/privacyops/dsarflow/pkg/common/config"
	"github.com/privacyops/dsarflow/pkg/common/database"
	"github.com/privacyops/dsarflow/pkg/common/logger"
	"github.com/privacyops/dsarflow/pkg/pipeline"
)

func main() {
	logger.Init()
	cfg := config.Load()

	orch, err := pipeline.FromConfig(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to assemble pipeline")
	}
	defer database.ClosePostgres()
	defer database.CloseRedis()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res := orch.Run(ctx)

	entry := logger.Log.WithFields(map[string]interface{}{
		"run_id":      res.RunID,
		"state":       res.State.String(),
		"unprocessed": res.Unprocessed,
		"processed":   res.Processed,
		"skipped":     res.Skipped,
	})

	code := exitCode(res)
	switch {
	case errors.Is(res.Err, pipeline.ErrRunInFlight):
		entry.Warn("another run holds the lock, nothing to do")
	case code == 0:
		entry.Info("run complete")
	default:
		entry.WithError(res.Err).Error("run failed")
	}
	os.Exit(code)
}

// exitCode maps a run result to the process contract: losing the run
// lock to a concurrent worker is a clean no-op, not a failure.
func exitCode(res *pipeline.Result) int {
	if errors.Is(res.Err, pipeline.ErrRunInFlight) {
		return 0
	}
	if res.State.Succeeded() {
		return 0
	}
	return 1
}
