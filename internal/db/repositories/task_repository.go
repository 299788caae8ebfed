package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"hotelpulse/internal/common"
	gormModels "hotelpulse/internal/models/gorm"
)

// TaskRepository is the durable side of the task ledger.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create persists a fresh task row.
func (r *TaskRepository) Create(ctx context.Context, task *gormModels.AsyncTask) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return &common.StoreError{Op: "create task", Err: err}
	}
	return nil
}

// Get fetches a task by its public id.
func (r *TaskRepository) Get(ctx context.Context, taskID string) (*gormModels.AsyncTask, error) {
	var task gormModels.AsyncTask

	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		First(&task).Error

	if err == gorm.ErrRecordNotFound {
		return nil, &common.NotFoundError{Resource: "task", ID: taskID}
	}
	if err != nil {
		return nil, &common.StoreError{Op: "get task", Err: err}
	}

	return &task, nil
}

// Save writes back the full mutable state of a task.
func (r *TaskRepository) Save(ctx context.Context, task *gormModels.AsyncTask) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return &common.StoreError{Op: "save task", Err: err}
	}
	return nil
}

// TaskListFilter narrows the task listing.
type TaskListFilter struct {
	TaskType string
	Status   string
	Limit    int
	Offset   int
}

// List returns tasks newest-first with optional type/status filters.
func (r *TaskRepository) List(ctx context.Context, filter TaskListFilter) ([]gormModels.AsyncTask, error) {
	query := r.db.WithContext(ctx).Model(&gormModels.AsyncTask{})

	if filter.TaskType != "" {
		query = query.Where("task_type = ?", filter.TaskType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}

	var tasks []gormModels.AsyncTask
	err := query.
		Order("created_at desc").
		Limit(limit).
		Offset(filter.Offset).
		Find(&tasks).Error
	if err != nil {
		return nil, &common.StoreError{Op: "list tasks", Err: err}
	}

	return tasks, nil
}

// StaleProcessing returns tasks stuck in processing whose started_at is
// older than the cutoff. Used by the reaper job.
func (r *TaskRepository) StaleProcessing(ctx context.Context, cutoff time.Time) ([]gormModels.AsyncTask, error) {
	var tasks []gormModels.AsyncTask

	err := r.db.WithContext(ctx).
		Where("status = ? AND started_at IS NOT NULL AND started_at < ?",
			"processing", cutoff).
		Find(&tasks).Error
	if err != nil {
		return nil, &common.StoreError{Op: "stale processing tasks", Err: err}
	}

	return tasks, nil
}
