package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"hotelpulse/internal/common"
	"hotelpulse/internal/constants"
	"hotelpulse/internal/db/repositories"
	"hotelpulse/internal/metrics"
	"hotelpulse/internal/models/dtos"
	gormModels "hotelpulse/internal/models/gorm"
)

// TaskLedger is the async task state machine shared by ingestion, report
// rendering and analysis. Transitions: pending -> processing ->
// {completed, failed}; failed -> pending via Retry while the retry budget
// lasts. Every mutation commits to the durable store first, then
// best-effort refreshes the polling cache.
type TaskLedger struct {
	repo       *repositories.TaskRepository
	cache      common.CacheInterface
	maxRetries int
	statusTTL  time.Duration
}

func NewTaskLedger(repo *repositories.TaskRepository, cache common.CacheInterface, maxRetries int, statusTTL time.Duration) *TaskLedger {
	if maxRetries <= 0 {
		maxRetries = constants.DefaultMaxRetries
	}
	if statusTTL <= 0 {
		statusTTL = time.Hour
	}
	return &TaskLedger{
		repo:       repo,
		cache:      cache,
		maxRetries: maxRetries,
		statusTTL:  statusTTL,
	}
}

// Create registers a new pending task and returns its id.
func (l *TaskLedger) Create(ctx context.Context, taskType constants.TaskType) (string, error) {
	now := time.Now().UTC()
	task := &gormModels.AsyncTask{
		TaskID:     uuid.NewString(),
		TaskType:   string(taskType),
		Status:     string(constants.TaskStatusPending),
		Progress:   0,
		RetryCount: 0,
		MaxRetries: l.maxRetries,
		StartedAt:  &now,
	}

	if err := l.repo.Create(ctx, task); err != nil {
		return "", err
	}

	metrics.TaskTransitionsTotal.WithLabelValues(task.TaskType, task.Status).Inc()
	l.cacheSnapshot(task)
	return task.TaskID, nil
}

// Advance moves a pending task into processing and records progress.
// Progress is monotonic; a regression is a caller bug and is rejected.
func (l *TaskLedger) Advance(ctx context.Context, taskID string, progress int) error {
	task, err := l.repo.Get(ctx, taskID)
	if err != nil {
		return err
	}

	entered := false
	switch constants.TaskStatus(task.Status) {
	case constants.TaskStatusPending:
		task.Status = string(constants.TaskStatusProcessing)
		entered = true
	case constants.TaskStatusProcessing:
		// already running
	default:
		return &common.StateError{Message: "cannot advance a " + task.Status + " task"}
	}

	if progress < task.Progress {
		return &common.StateError{Message: constants.MsgProgressRegressed}
	}
	if progress > 100 {
		progress = 100
	}
	task.Progress = progress

	if err := l.repo.Save(ctx, task); err != nil {
		return err
	}

	if entered {
		metrics.TaskTransitionsTotal.WithLabelValues(task.TaskType, task.Status).Inc()
	}
	l.cacheSnapshot(task)
	return nil
}

// Complete finishes a task with an opaque result payload.
func (l *TaskLedger) Complete(ctx context.Context, taskID string, result []byte) error {
	task, err := l.repo.Get(ctx, taskID)
	if err != nil {
		return err
	}

	switch constants.TaskStatus(task.Status) {
	case constants.TaskStatusPending, constants.TaskStatusProcessing:
	default:
		return &common.StateError{Message: "cannot complete a " + task.Status + " task"}
	}

	now := time.Now().UTC()
	task.Status = string(constants.TaskStatusCompleted)
	task.Progress = 100
	task.ResultData = result
	task.CompletedAt = &now

	if err := l.repo.Save(ctx, task); err != nil {
		return err
	}

	metrics.TaskTransitionsTotal.WithLabelValues(task.TaskType, task.Status).Inc()
	// Terminal states must land in the cache once committed
	l.cacheSnapshot(task)
	return nil
}

// Fail marks a task failed with an operator-readable message. Legal from
// pending or processing only.
func (l *TaskLedger) Fail(ctx context.Context, taskID string, message string) error {
	task, err := l.repo.Get(ctx, taskID)
	if err != nil {
		return err
	}

	switch constants.TaskStatus(task.Status) {
	case constants.TaskStatusPending, constants.TaskStatusProcessing:
	default:
		return &common.StateError{Message: "cannot fail a " + task.Status + " task"}
	}

	now := time.Now().UTC()
	task.Status = string(constants.TaskStatusFailed)
	task.ErrorMessage = &message
	task.CompletedAt = &now

	if err := l.repo.Save(ctx, task); err != nil {
		return err
	}

	metrics.TaskTransitionsTotal.WithLabelValues(task.TaskType, task.Status).Inc()
	l.cacheSnapshot(task)
	return nil
}

// Retry moves a failed task back to pending, consuming one retry.
func (l *TaskLedger) Retry(ctx context.Context, taskID string) (*dtos.TaskSnapshot, error) {
	task, err := l.repo.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if constants.TaskStatus(task.Status) != constants.TaskStatusFailed {
		return nil, &common.StateError{Message: constants.MsgTaskNotRetryable}
	}
	if task.RetryCount >= task.MaxRetries {
		return nil, common.ErrRetryExhausted
	}

	now := time.Now().UTC()
	task.Status = string(constants.TaskStatusPending)
	task.Progress = 0
	task.ErrorMessage = nil
	task.RetryCount++
	task.StartedAt = &now
	task.CompletedAt = nil

	if err := l.repo.Save(ctx, task); err != nil {
		return nil, err
	}

	metrics.TaskTransitionsTotal.WithLabelValues(task.TaskType, task.Status).Inc()
	l.cacheSnapshot(task)
	return snapshot(task), nil
}

// Get returns the task's current snapshot. The cache is trusted only for
// terminal states; anything in flight goes back to the durable store.
func (l *TaskLedger) Get(ctx context.Context, taskID string) (*dtos.TaskSnapshot, error) {
	if l.cache != nil {
		if cached, found := l.cache.Get(cacheKey(taskID)); found {
			var snap dtos.TaskSnapshot
			if decodeCached(cached, &snap) && snap.TaskID == taskID {
				switch constants.TaskStatus(snap.Status) {
				case constants.TaskStatusCompleted, constants.TaskStatusFailed:
					return &snap, nil
				}
			}
		}
	}

	task, err := l.repo.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return snapshot(task), nil
}

// List returns recent tasks with optional filters.
func (l *TaskLedger) List(ctx context.Context, filter repositories.TaskListFilter) ([]dtos.TaskSnapshot, error) {
	tasks, err := l.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	snaps := make([]dtos.TaskSnapshot, 0, len(tasks))
	for i := range tasks {
		snaps = append(snaps, *snapshot(&tasks[i]))
	}
	return snaps, nil
}

func cacheKey(taskID string) string {
	return string(constants.CachePrefixTaskStatus) + taskID + ":status"
}

// cacheSnapshot is best effort: a cache write failure never fails the
// mutation, callers fall back to the store on stale reads.
func (l *TaskLedger) cacheSnapshot(task *gormModels.AsyncTask) {
	if l.cache == nil {
		return
	}
	l.cache.Set(cacheKey(task.TaskID), snapshot(task), l.statusTTL)
}

func snapshot(task *gormModels.AsyncTask) *dtos.TaskSnapshot {
	return &dtos.TaskSnapshot{
		TaskID:       task.TaskID,
		TaskType:     task.TaskType,
		Status:       task.Status,
		Progress:     task.Progress,
		ResultData:   task.ResultData,
		ErrorMessage: task.ErrorMessage,
		RetryCount:   task.RetryCount,
		MaxRetries:   task.MaxRetries,
		StartedAt:    task.StartedAt,
		CompletedAt:  task.CompletedAt,
		CreatedAt:    task.CreatedAt,
	}
}
