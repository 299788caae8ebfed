package jobs

import (
	"context"
	"time"

	"hotelpulse/internal/constants"
	"hotelpulse/internal/db/repositories"
	"hotelpulse/internal/logging"
	"hotelpulse/internal/metrics"
	"hotelpulse/internal/services"
)

// TaskReaperJob fails tasks stuck in processing longer than the timeout.
// A worker that died mid-batch leaves its task in processing forever;
// failing it makes the stall visible and unlocks the retry path.
type TaskReaperJob struct {
	taskRepo *repositories.TaskRepository
	ledger   *services.TaskLedger
	timeout  time.Duration
}

func NewTaskReaperJob(taskRepo *repositories.TaskRepository, ledger *services.TaskLedger, timeout time.Duration) *TaskReaperJob {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &TaskReaperJob{
		taskRepo: taskRepo,
		ledger:   ledger,
		timeout:  timeout,
	}
}

// Run performs one reap pass.
func (j *TaskReaperJob) Run(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-j.timeout)

	stale, err := j.taskRepo.StaleProcessing(ctx, cutoff)
	if err != nil {
		logging.Error("Reaper failed to list stale tasks", "error", err.Error())
		return err
	}

	for i := range stale {
		task := &stale[i]
		if err := j.ledger.Fail(ctx, task.TaskID, constants.MsgTaskTimedOut); err != nil {
			// The task may have finished between the query and now
			logging.Warn("Reaper could not fail task",
				"task_id", task.TaskID,
				"error", err.Error(),
			)
			continue
		}
		metrics.TasksReapedTotal.Inc()
		logging.Info("Reaped stuck task",
			"task_id", task.TaskID,
			"task_type", task.TaskType,
			"started_at", task.StartedAt,
		)
	}

	return nil
}

// RunScheduled runs reap passes on the given interval until ctx ends.
func (j *TaskReaperJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = j.Run(ctx)
		}
	}
}
