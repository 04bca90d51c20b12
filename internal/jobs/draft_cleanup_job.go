package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DraftCleanupJobName is the name of the empty-draft cleanup job
const DraftCleanupJobName = "draft_cleanup"

// DefaultDraftCleanupTimeout bounds a single cleanup run.
const DefaultDraftCleanupTimeout = 5 * time.Minute

// DraftCleanupService defines the interface for removing draft tickets that
// no longer have billable time entries. The interface allows the job to call
// the service without importing the service package directly.
type DraftCleanupService interface {
	// CleanupEmptyDrafts deletes draft tickets without billable time entries
	// and returns how many were removed.
	CleanupEmptyDrafts(ctx context.Context, isDemo bool) (int, error)
}

// DraftCleanupJob periodically removes draft tickets whose time entries have
// all been deleted or reassigned. It sweeps both the production ticket table
// and the demo sandbox table.
type DraftCleanupJob struct {
	ticketService DraftCleanupService
	logger        *zap.Logger
	timeout       time.Duration
}

// NewDraftCleanupJob creates a new empty-draft cleanup job.
func NewDraftCleanupJob(ticketService DraftCleanupService, logger *zap.Logger, timeout time.Duration) *DraftCleanupJob {
	return &DraftCleanupJob{
		ticketService: ticketService,
		logger:        logger,
		timeout:       timeout,
	}
}

// Run executes the cleanup job. This is called by the scheduler according to
// the cron expression. A failure on the production table does not prevent the
// demo table sweep.
func (j *DraftCleanupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	j.logger.Info("starting empty draft cleanup job")

	deleted, err := j.ticketService.CleanupEmptyDrafts(ctx, false)
	if err != nil {
		j.logger.Error("draft cleanup failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
	}

	demoDeleted, err := j.ticketService.CleanupEmptyDrafts(ctx, true)
	if err != nil {
		j.logger.Error("demo draft cleanup failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
	}

	j.logger.Info("empty draft cleanup job completed",
		zap.Int("deleted", deleted),
		zap.Int("demo_deleted", demoDeleted),
		zap.Duration("duration", time.Since(start)))
}

// RegisterDraftCleanupJob registers the cleanup job with the scheduler.
// The cronExpr should be a standard 5-field cron expression
// (e.g. "0 3 * * *" for 03:00 every day).
func RegisterDraftCleanupJob(scheduler *Scheduler, ticketService DraftCleanupService, logger *zap.Logger, cronExpr string) error {
	job := NewDraftCleanupJob(ticketService, logger, DefaultDraftCleanupTimeout)
	return scheduler.AddJob(DraftCleanupJobName, cronExpr, job.Run)
}
