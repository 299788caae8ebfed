package jobs

import (
	"context"
	"time"

	"hotelpulse/internal/config"
	"hotelpulse/internal/db/repositories"
	"hotelpulse/internal/services"
)

// InitializeJobs initializes and starts all background jobs
func InitializeJobs(
	ctx context.Context,
	cfg *config.Config,
	taskRepo *repositories.TaskRepository,
	ledger *services.TaskLedger,
) *TaskReaperJob {
	reaper := NewTaskReaperJob(taskRepo, ledger, cfg.TaskTimeout)

	interval := cfg.ReaperInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go reaper.RunScheduled(ctx, interval)

	return reaper
}
