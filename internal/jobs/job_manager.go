package jobs

import (
	"fmt"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	blastExpiryJob *BlastExpiryJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(
	sweepHandler commands.SweepExpiredBlastsCommandHandler,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		blastExpiryJob: NewBlastExpiryJob(sweepHandler, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.blastExpiryJob.Start(); err != nil {
		return fmt.Errorf("failed to start blast expiry job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.blastExpiryJob.Stop()
}
