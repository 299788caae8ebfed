package jobs

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hotelpulse/internal/common"
	"hotelpulse/internal/constants"
	"hotelpulse/internal/db/repositories"
	gormModels "hotelpulse/internal/models/gorm"
	"hotelpulse/internal/services"
)

func newReaperFixture(t *testing.T, timeout time.Duration) (*TaskReaperJob, *services.TaskLedger, *repositories.TaskRepository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&gormModels.AsyncTask{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	repo := repositories.NewTaskRepository(db)
	ledger := services.NewTaskLedger(repo, common.NewCacheService(60, 120), 3, time.Hour)
	return NewTaskReaperJob(repo, ledger, timeout), ledger, repo
}

func TestTaskReaper_FailsStuckTasks(t *testing.T) {
	reaper, ledger, repo := newReaperFixture(t, 10*time.Minute)
	ctx := context.Background()

	stuckID, _ := ledger.Create(ctx, constants.TaskTypeDataProcessing)
	if err := ledger.Advance(ctx, stuckID, 50); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	// Backdate started_at past the timeout
	stale := time.Now().UTC().Add(-time.Hour)
	task, _ := repo.Get(ctx, stuckID)
	task.StartedAt = &stale
	if err := repo.Save(ctx, task); err != nil {
		t.Fatalf("Backdate failed: %v", err)
	}

	freshID, _ := ledger.Create(ctx, constants.TaskTypeDataProcessing)
	if err := ledger.Advance(ctx, freshID, 50); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	if err := reaper.Run(ctx); err != nil {
		t.Fatalf("Reaper run failed: %v", err)
	}

	snap, _ := ledger.Get(ctx, stuckID)
	if snap.Status != string(constants.TaskStatusFailed) {
		t.Errorf("Expected stuck task failed, got %s", snap.Status)
	}
	if snap.ErrorMessage == nil || *snap.ErrorMessage != constants.MsgTaskTimedOut {
		t.Errorf("Expected timeout message, got %v", snap.ErrorMessage)
	}

	snap, _ = ledger.Get(ctx, freshID)
	if snap.Status != string(constants.TaskStatusProcessing) {
		t.Errorf("Fresh task must be untouched, got %s", snap.Status)
	}
}

func TestTaskReaper_ReapedTaskIsRetryable(t *testing.T) {
	reaper, ledger, repo := newReaperFixture(t, 10*time.Minute)
	ctx := context.Background()

	taskID, _ := ledger.Create(ctx, constants.TaskTypeDataProcessing)
	_ = ledger.Advance(ctx, taskID, 30)

	stale := time.Now().UTC().Add(-time.Hour)
	task, _ := repo.Get(ctx, taskID)
	task.StartedAt = &stale
	_ = repo.Save(ctx, task)

	if err := reaper.Run(ctx); err != nil {
		t.Fatalf("Reaper run failed: %v", err)
	}

	snap, err := ledger.Retry(ctx, taskID)
	if err != nil {
		t.Fatalf("Reaped task must be retryable: %v", err)
	}
	if snap.Status != string(constants.TaskStatusPending) {
		t.Errorf("Expected pending after retry, got %s", snap.Status)
	}
}
