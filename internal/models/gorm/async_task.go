package gorm

import "time"

// AsyncTask is the durable row behind the task ledger. ResultData holds an
// opaque serialized payload so the ledger stays payload-agnostic; only the
// operation that created the task knows its shape.
type AsyncTask struct {
	ID           uint       `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	TaskID       string     `gorm:"column:task_id;size:100;uniqueIndex;not null" json:"task_id"`
	TaskType     string     `gorm:"column:task_type;size:50;not null;index" json:"task_type"`
	Status       string     `gorm:"column:status;size:20;default:pending;index" json:"status"`
	Progress     int        `gorm:"column:progress;default:0" json:"progress"`
	ResultData   []byte     `gorm:"column:result_data" json:"result_data,omitempty"`
	ErrorMessage *string    `gorm:"column:error_message;type:text" json:"error_message,omitempty"`
	RetryCount   int        `gorm:"column:retry_count;default:0" json:"retry_count"`
	MaxRetries   int        `gorm:"column:max_retries;default:3" json:"max_retries"`
	StartedAt    *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt  *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (AsyncTask) TableName() string {
	return "async_tasks"
}
