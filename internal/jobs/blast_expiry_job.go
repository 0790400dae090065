package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"dispatch/internal/core/application/usecases/commands"
)

// BlastExpiryJob sweeps blasts whose response window lapsed without an
// acceptance. Runs every five seconds: an offer overstaying its window by a
// few seconds is harmless, and the sweep is idempotent.
type BlastExpiryJob struct {
	handler commands.SweepExpiredBlastsCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewBlastExpiryJob creates the expiry sweep job.
func NewBlastExpiryJob(handler commands.SweepExpiredBlastsCommandHandler, logger *slog.Logger) *BlastExpiryJob {
	return &BlastExpiryJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "blast_expiry_job"),
	}
}

// Start begins the expiry sweep on a five second cadence.
func (j *BlastExpiryJob) Start() error {
	_, err := j.cron.AddFunc("*/5 * * * * *", func() {
		ctx := context.Background()

		cmd, err := commands.NewSweepExpiredBlastsCommand(time.Now().UTC())
		if err != nil {
			j.logger.ErrorContext(ctx, "Blast expiry sweep could not be built", "error", err)
			return
		}

		swept, err := j.handler.Handle(ctx, cmd)
		if err != nil {
			j.logger.ErrorContext(ctx, "Blast expiry sweep failed", "error", err)
			return
		}
		if swept > 0 {
			j.logger.InfoContext(ctx, "Expired blasts swept", "count", swept)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Blast expiry job started (running every five seconds)")
	return nil
}

// Stop stops the expiry sweep.
func (j *BlastExpiryJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Blast expiry job stopped")
}
