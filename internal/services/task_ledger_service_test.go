package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"hotelpulse/internal/common"
	"hotelpulse/internal/constants"
	"hotelpulse/internal/db/repositories"
)

func newTestLedger(t *testing.T) *TaskLedger {
	t.Helper()
	repo := repositories.NewTaskRepository(newTestDB(t))
	return NewTaskLedger(repo, common.NewCacheService(60, 120), 3, time.Hour)
}

func TestTaskLedger_Lifecycle(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	taskID, err := ledger.Create(ctx, constants.TaskTypeDataProcessing)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	snap, err := ledger.Get(ctx, taskID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if snap.Status != string(constants.TaskStatusPending) || snap.Progress != 0 {
		t.Fatalf("Fresh task wrong: %+v", snap)
	}

	if err := ledger.Advance(ctx, taskID, 40); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	snap, _ = ledger.Get(ctx, taskID)
	if snap.Status != string(constants.TaskStatusProcessing) || snap.Progress != 40 {
		t.Fatalf("Expected processing at 40, got %+v", snap)
	}

	if err := ledger.Complete(ctx, taskID, []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	snap, _ = ledger.Get(ctx, taskID)
	if snap.Status != string(constants.TaskStatusCompleted) || snap.Progress != 100 {
		t.Fatalf("Expected completed at 100, got %+v", snap)
	}
	if snap.CompletedAt == nil {
		t.Error("CompletedAt not set")
	}
}

func TestTaskLedger_ProgressMonotonic(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	taskID, _ := ledger.Create(ctx, constants.TaskTypeDataProcessing)
	if err := ledger.Advance(ctx, taskID, 60); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	err := ledger.Advance(ctx, taskID, 30)
	var stateErr *common.StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("Expected StateError on progress regression, got %v", err)
	}

	// Over 100 clamps rather than failing
	if err := ledger.Advance(ctx, taskID, 150); err != nil {
		t.Fatalf("Advance past 100 should clamp: %v", err)
	}
	snap, _ := ledger.Get(ctx, taskID)
	if snap.Progress != 100 {
		t.Errorf("Expected clamp to 100, got %d", snap.Progress)
	}
}

func TestTaskLedger_TerminalStatesAreFinal(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	taskID, _ := ledger.Create(ctx, constants.TaskTypeDataProcessing)
	if err := ledger.Complete(ctx, taskID, nil); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	var stateErr *common.StateError
	if err := ledger.Advance(ctx, taskID, 50); !errors.As(err, &stateErr) {
		t.Errorf("Expected StateError advancing a completed task, got %v", err)
	}
	if err := ledger.Fail(ctx, taskID, "late failure"); !errors.As(err, &stateErr) {
		t.Errorf("Expected StateError failing a completed task, got %v", err)
	}
	if err := ledger.Complete(ctx, taskID, nil); !errors.As(err, &stateErr) {
		t.Errorf("Expected StateError completing twice, got %v", err)
	}
}

func TestTaskLedger_RetryResetsFailedTask(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	taskID, _ := ledger.Create(ctx, constants.TaskTypeDataProcessing)
	_ = ledger.Advance(ctx, taskID, 50)
	if err := ledger.Fail(ctx, taskID, "boom"); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}

	snap, err := ledger.Retry(ctx, taskID)
	if err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if snap.Status != string(constants.TaskStatusPending) {
		t.Errorf("Expected pending after retry, got %s", snap.Status)
	}
	if snap.Progress != 0 || snap.ErrorMessage != nil || snap.CompletedAt != nil {
		t.Errorf("Retry must reset progress and error: %+v", snap)
	}
	if snap.RetryCount != 1 {
		t.Errorf("Expected retry count 1, got %d", snap.RetryCount)
	}
}

func TestTaskLedger_RetryOnlyFromFailed(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	taskID, _ := ledger.Create(ctx, constants.TaskTypeDataProcessing)

	_, err := ledger.Retry(ctx, taskID)
	var stateErr *common.StateError
	if !errors.As(err, &stateErr) {
		t.Errorf("Expected StateError retrying a pending task, got %v", err)
	}
}

func TestTaskLedger_RetryBudgetExhausted(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	taskID, _ := ledger.Create(ctx, constants.TaskTypeDataProcessing)

	for i := 0; i < 3; i++ {
		if err := ledger.Fail(ctx, taskID, "boom"); err != nil {
			t.Fatalf("Fail %d failed: %v", i, err)
		}
		if _, err := ledger.Retry(ctx, taskID); err != nil {
			t.Fatalf("Retry %d failed: %v", i, err)
		}
	}

	if err := ledger.Fail(ctx, taskID, "boom"); err != nil {
		t.Fatalf("Final fail failed: %v", err)
	}
	_, err := ledger.Retry(ctx, taskID)
	if !errors.Is(err, common.ErrRetryExhausted) {
		t.Fatalf("Expected ErrRetryExhausted after 3 retries, got %v", err)
	}
}

// jsonCache behaves like a networked cache: values come back JSON-decoded,
// never as the pointers that went in.
type jsonCache struct {
	entries map[string][]byte
}

func newJSONCache() *jsonCache {
	return &jsonCache{entries: make(map[string][]byte)}
}

func (c *jsonCache) Set(key string, value interface{}, duration time.Duration) {
	if data, err := json.Marshal(value); err == nil {
		c.entries[key] = data
	}
}

func (c *jsonCache) Get(key string) (interface{}, bool) {
	data, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, false
	}
	return out, true
}

func (c *jsonCache) Delete(key string) {
	delete(c.entries, key)
}

func (c *jsonCache) GetOrSet(key string, duration time.Duration, loader func() (any, error)) (interface{}, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := loader()
	if err != nil {
		return nil, err
	}
	c.Set(key, v, duration)
	return v, nil
}

func (c *jsonCache) Close() error { return nil }

func TestTaskLedger_GetServesTerminalStateFromSerializedCache(t *testing.T) {
	repo := repositories.NewTaskRepository(newTestDB(t))
	ledger := NewTaskLedger(repo, newJSONCache(), 3, time.Hour)
	ctx := context.Background()

	taskID, err := ledger.Create(ctx, constants.TaskTypeDataProcessing)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_ = ledger.Advance(ctx, taskID, 50)
	if err := ledger.Complete(ctx, taskID, []byte(`{"inserted":2}`)); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	// Flip the durable row back so only the cache can answer correctly.
	task, _ := repo.Get(ctx, taskID)
	task.Status = string(constants.TaskStatusProcessing)
	task.ResultData = nil
	task.CompletedAt = nil
	if err := repo.Save(ctx, task); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	snap, err := ledger.Get(ctx, taskID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if snap.Status != string(constants.TaskStatusCompleted) {
		t.Errorf("Expected completed from cache, got %s", snap.Status)
	}
	if string(snap.ResultData) != `{"inserted":2}` {
		t.Errorf("Result payload lost through the cache: %q", snap.ResultData)
	}
	if snap.CompletedAt == nil {
		t.Error("CompletedAt lost through the cache")
	}
	if snap.Progress != 100 {
		t.Errorf("Expected progress 100, got %d", snap.Progress)
	}
}

func TestTaskLedger_GetDoesNotTrustCacheInFlight(t *testing.T) {
	repo := repositories.NewTaskRepository(newTestDB(t))
	ledger := NewTaskLedger(repo, newJSONCache(), 3, time.Hour)
	ctx := context.Background()

	taskID, _ := ledger.Create(ctx, constants.TaskTypeDataProcessing)
	if err := ledger.Advance(ctx, taskID, 40); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	// Advance the durable row behind the cache's back; a non-terminal read
	// must come from the store.
	task, _ := repo.Get(ctx, taskID)
	task.Progress = 70
	if err := repo.Save(ctx, task); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	snap, err := ledger.Get(ctx, taskID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if snap.Progress != 70 {
		t.Errorf("In-flight read served from cache: progress %d", snap.Progress)
	}
}

func TestTaskLedger_GetUnknownTask(t *testing.T) {
	ledger := newTestLedger(t)

	_, err := ledger.Get(context.Background(), "no-such-task")
	var notFound *common.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}
}

func TestTaskLedger_ListFilters(t *testing.T) {
	ledger := newTestLedger(t)
	ctx := context.Background()

	a, _ := ledger.Create(ctx, constants.TaskTypeDataProcessing)
	b, _ := ledger.Create(ctx, constants.TaskTypeReportGeneration)
	_ = ledger.Complete(ctx, b, nil)

	pending, err := ledger.List(ctx, repositories.TaskListFilter{Status: string(constants.TaskStatusPending)})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(pending) != 1 || pending[0].TaskID != a {
		t.Errorf("Status filter wrong: %+v", pending)
	}

	reports, err := ledger.List(ctx, repositories.TaskListFilter{TaskType: string(constants.TaskTypeReportGeneration)})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(reports) != 1 || reports[0].TaskID != b {
		t.Errorf("Type filter wrong: %+v", reports)
	}
}
