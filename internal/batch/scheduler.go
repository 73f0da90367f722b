package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

type Job interface {
	Run(ctx context.Context) error
}

const (
	defaultSweepSchedule = "0 1 * * *"
	defaultSweepTimeout  = 30 * time.Minute
)

// NewScheduler registers job on a cron spec. Each run gets its own timeout.
// The returned scheduler is not started.
func NewScheduler(spec string, timeout time.Duration, name string, job Job, logger *slog.Logger) (*cron.Cron, error) {
	if spec == "" {
		spec = defaultSweepSchedule
		logger.Warn("Batch schedule not configured, using default", "job_name", name, "schedule", spec)
	}
	if timeout <= 0 {
		timeout = defaultSweepTimeout
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	jobLogger := logger.With("job_name", name)

	jobID, err := c.AddJob(spec, cron.FuncJob(func() {
		jobLogger.Info("Cron triggered: running job.")

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if runErr := job.Run(ctx); runErr != nil {
			jobLogger.Error("Job finished with error", slog.Any("error", runErr))
		} else {
			jobLogger.Info("Job finished successfully.")
		}
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to schedule %s job with spec %q: %w", name, spec, err)
	}

	logger.Info("Scheduled batch job", "job_name", name, "schedule", spec, "job_id", jobID, "timeout", timeout)
	return c, nil
}
