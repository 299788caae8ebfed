package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"hotelpulse/internal/common"
	"hotelpulse/internal/constants"
	"hotelpulse/internal/db/repositories"
	"hotelpulse/internal/models/dtos"
)

// syncDispatcher runs submitted jobs inline so async paths can be asserted
// synchronously.
type syncDispatcher struct {
	submitFunc func(fn func(ctx context.Context)) error
}

func (d *syncDispatcher) Submit(fn func(ctx context.Context)) error {
	if d.submitFunc != nil {
		return d.submitFunc(fn)
	}
	fn(context.Background())
	return nil
}

type ingestFixture struct {
	svc     *IngestionService
	records *repositories.HotelRecordRepository
	kpis    *repositories.KPIRepository
	ledger  *TaskLedger
}

func newIngestFixture(t *testing.T, dispatcher Dispatcher) *ingestFixture {
	t.Helper()

	db := newTestDB(t)
	records := repositories.NewHotelRecordRepository(db)
	kpis := repositories.NewKPIRepository(db)
	ledger := NewTaskLedger(repositories.NewTaskRepository(db), common.NewCacheService(60, 120), 3, time.Hour)

	if dispatcher == nil {
		dispatcher = &syncDispatcher{}
	}

	return &ingestFixture{
		svc:     NewIngestionService(records, kpis, NewRecordValidator(), ledger, dispatcher),
		records: records,
		kpis:    kpis,
		ledger:  ledger,
	}
}

func cleanRow(hotel, location, date string, available, occupied int, revenue float64) dtos.CleanRecord {
	return dtos.CleanRecord{
		HotelName:      hotel,
		Location:       location,
		DateRecorded:   day(date),
		RoomsAvailable: available,
		RoomsOccupied:  occupied,
		Revenue:        revenue,
	}
}

func TestIngest_InsertComputesDerivedMetrics(t *testing.T) {
	f := newIngestFixture(t, nil)

	result, err := f.svc.Ingest(context.Background(), []dtos.CleanRecord{
		cleanRow("Grand Plaza", "Downtown, Springfield", "2024-01-01", 100, 80, 8000),
	}, false, "upload")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if result.Inserted != 1 || result.Updated != 0 || result.Skipped != 0 {
		t.Fatalf("Unexpected counts: %+v", result)
	}

	record, err := f.records.GetByID(context.Background(), result.HotelIDs[0])
	if err != nil {
		t.Fatalf("Record not stored: %v", err)
	}
	if record.OccupancyRate == nil || *record.OccupancyRate != 80 {
		t.Errorf("Occupancy not computed: %v", record.OccupancyRate)
	}
	if record.ADR != 100 || record.RevPAR != 80 {
		t.Errorf("ADR/RevPAR wrong: adr=%f revpar=%f", record.ADR, record.RevPAR)
	}
	if !record.IsValidated {
		t.Error("Record not marked validated")
	}
}

func TestIngest_IdempotentWithoutOverwrite(t *testing.T) {
	f := newIngestFixture(t, nil)
	rows := []dtos.CleanRecord{
		cleanRow("Grand Plaza", "Downtown, Springfield", "2024-01-01", 100, 80, 8000),
	}

	first, err := f.svc.Ingest(context.Background(), rows, false, "upload")
	if err != nil {
		t.Fatalf("First ingest failed: %v", err)
	}

	changed := []dtos.CleanRecord{
		cleanRow("Grand Plaza", "Downtown, Springfield", "2024-01-01", 100, 90, 9999),
	}
	second, err := f.svc.Ingest(context.Background(), changed, false, "upload")
	if err != nil {
		t.Fatalf("Second ingest failed: %v", err)
	}

	if second.Skipped != 1 || second.Inserted != 0 {
		t.Fatalf("Expected skip on existing key: %+v", second)
	}
	if second.HotelIDs[0] != first.HotelIDs[0] {
		t.Errorf("Skipped row must still report its id")
	}

	record, _ := f.records.GetByID(context.Background(), first.HotelIDs[0])
	if record.Revenue != 8000 {
		t.Errorf("Existing record must be untouched without overwrite, got revenue %f", record.Revenue)
	}
}

func TestIngest_OverwriteUpdatesInPlace(t *testing.T) {
	f := newIngestFixture(t, nil)

	first, err := f.svc.Ingest(context.Background(), []dtos.CleanRecord{
		cleanRow("Grand Plaza", "Downtown, Springfield", "2024-01-01", 100, 80, 8000),
	}, false, "upload")
	if err != nil {
		t.Fatalf("First ingest failed: %v", err)
	}

	second, err := f.svc.Ingest(context.Background(), []dtos.CleanRecord{
		cleanRow("Grand Plaza", "Downtown, Springfield", "2024-01-01", 100, 90, 9900),
	}, true, "correction")
	if err != nil {
		t.Fatalf("Overwrite ingest failed: %v", err)
	}

	if second.Updated != 1 {
		t.Fatalf("Expected update, got %+v", second)
	}
	if second.HotelIDs[0] != first.HotelIDs[0] {
		t.Errorf("Overwrite must keep the surrogate id")
	}

	record, _ := f.records.GetByID(context.Background(), first.HotelIDs[0])
	if record.Revenue != 9900 || record.RoomsOccupied != 90 {
		t.Errorf("Record not updated: %+v", record)
	}
	if record.ADR != 110 {
		t.Errorf("Derived metrics not recomputed on overwrite: adr=%f", record.ADR)
	}
}

func TestIngest_DedupesBatchKeepingFirst(t *testing.T) {
	f := newIngestFixture(t, nil)

	result, err := f.svc.Ingest(context.Background(), []dtos.CleanRecord{
		cleanRow("Grand Plaza", "Downtown, Springfield", "2024-01-01", 100, 80, 8000),
		cleanRow("Grand Plaza", "Downtown, Springfield", "2024-01-01", 100, 90, 9999),
	}, false, "upload")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if result.Inserted != 1 {
		t.Fatalf("Expected 1 insert after dedupe, got %+v", result)
	}

	record, _ := f.records.GetByID(context.Background(), result.HotelIDs[0])
	if record.Revenue != 8000 {
		t.Errorf("First occurrence must win, got revenue %f", record.Revenue)
	}
}

func TestIngest_DropsNullKeyRows(t *testing.T) {
	f := newIngestFixture(t, nil)

	result, err := f.svc.Ingest(context.Background(), []dtos.CleanRecord{
		cleanRow("", "Downtown, Springfield", "2024-01-01", 100, 80, 8000),
		{HotelName: "Grand Plaza", RoomsAvailable: 100, RoomsOccupied: 80, Revenue: 8000},
		cleanRow("Seaside Inn", "Coast, Shelbyville", "2024-01-01", 100, 50, 5000),
	}, false, "upload")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if result.Inserted != 1 {
		t.Errorf("Rows without both key fields must be dropped: %+v", result)
	}
}

func TestIngest_RegeneratesKPIRows(t *testing.T) {
	f := newIngestFixture(t, nil)

	result, err := f.svc.Ingest(context.Background(), []dtos.CleanRecord{
		cleanRow("Grand Plaza", "Downtown, Springfield", "2024-01-01", 100, 80, 8000),
	}, false, "upload")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if result.KPICount != 4 {
		t.Fatalf("Expected 4 KPI rows, got %d", result.KPICount)
	}

	// Overwrite regenerates rather than appending
	_, err = f.svc.Ingest(context.Background(), []dtos.CleanRecord{
		cleanRow("Grand Plaza", "Downtown, Springfield", "2024-01-01", 100, 90, 9900),
	}, true, "correction")
	if err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}

	metrics, err := f.kpis.ListByHotelRecord(context.Background(), result.HotelIDs[0])
	if err != nil {
		t.Fatalf("KPI listing failed: %v", err)
	}
	if len(metrics) != 4 {
		t.Fatalf("Expected KPI rows replaced wholesale, got %d", len(metrics))
	}
	for _, m := range metrics {
		if m.MetricName == string(constants.MetricADR) && (m.MetricValue == nil || *m.MetricValue != 110) {
			t.Errorf("ADR KPI not refreshed: %v", m.MetricValue)
		}
	}
}

func TestIngest_StoresConsistencyFlags(t *testing.T) {
	f := newIngestFixture(t, nil)

	skewed := cleanRow("Grand Plaza", "Downtown, Springfield", "2024-01-01", 100, 80, 8000)
	skewed.ReportedOccupancyRate = floatPtr(80)
	skewed.ReportedADR = floatPtr(100)
	skewed.ReportedRevPAR = floatPtr(95)

	result, err := f.svc.Ingest(context.Background(), []dtos.CleanRecord{skewed}, false, "upload")
	if err != nil {
		t.Fatalf("Flagged row must still commit: %v", err)
	}

	record, _ := f.records.GetByID(context.Background(), result.HotelIDs[0])
	if record.ValidationErrors == nil {
		t.Fatal("Expected consistency flags stored on the record")
	}
	var flags []common.FieldViolation
	if err := json.Unmarshal([]byte(*record.ValidationErrors), &flags); err != nil {
		t.Fatalf("Stored flags not decodable: %v", err)
	}
	if len(flags) != 1 || flags[0].Column != "revpar" {
		t.Errorf("Unexpected flags: %v", flags)
	}
}

func TestIngestAsync_CompletesTask(t *testing.T) {
	f := newIngestFixture(t, nil)

	taskID, err := f.svc.IngestAsync(context.Background(), dtos.IngestRequest{
		Records: []dtos.RawRecord{
			validRow("Grand Plaza", "2024-01-01"),
			validRow("Seaside Inn", "2024-01-01"),
		},
		DataSource: "upload",
	})
	if err != nil {
		t.Fatalf("IngestAsync failed: %v", err)
	}

	snap, err := f.ledger.Get(context.Background(), taskID)
	if err != nil {
		t.Fatalf("Task lookup failed: %v", err)
	}
	if snap.Status != string(constants.TaskStatusCompleted) {
		t.Fatalf("Expected completed task, got %s (%v)", snap.Status, snap.ErrorMessage)
	}
	if snap.Progress != 100 {
		t.Errorf("Expected progress 100, got %d", snap.Progress)
	}

	var result dtos.IngestResult
	if err := json.Unmarshal(snap.ResultData, &result); err != nil {
		t.Fatalf("Result payload not decodable: %v", err)
	}
	if result.Inserted != 2 {
		t.Errorf("Expected 2 inserts in result, got %+v", result)
	}
}

func TestIngestAsync_ValidationFailureFailsTask(t *testing.T) {
	f := newIngestFixture(t, nil)

	bad := validRow("Grand Plaza", "2024-01-01")
	bad.RoomsOccupied = "120"

	taskID, err := f.svc.IngestAsync(context.Background(), dtos.IngestRequest{
		Records:    []dtos.RawRecord{bad},
		DataSource: "upload",
	})
	if err != nil {
		t.Fatalf("IngestAsync failed: %v", err)
	}

	snap, err := f.ledger.Get(context.Background(), taskID)
	if err != nil {
		t.Fatalf("Task lookup failed: %v", err)
	}
	if snap.Status != string(constants.TaskStatusFailed) {
		t.Fatalf("Expected failed task, got %s", snap.Status)
	}
	if snap.ErrorMessage == nil {
		t.Error("Expected failure message on task")
	}

	// Nothing may have been committed
	records, _, err := f.records.List(context.Background(), repositories.ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Rejected batch must not commit rows, found %d", len(records))
	}
}

func TestIngestAsync_DispatchFailureFailsTask(t *testing.T) {
	dispatcher := &syncDispatcher{
		submitFunc: func(fn func(ctx context.Context)) error {
			return context.DeadlineExceeded
		},
	}
	f := newIngestFixture(t, dispatcher)

	taskID, err := f.svc.IngestAsync(context.Background(), dtos.IngestRequest{
		Records:    []dtos.RawRecord{validRow("Grand Plaza", "2024-01-01")},
		DataSource: "upload",
	})
	if err != nil {
		t.Fatalf("IngestAsync must still return the task id: %v", err)
	}

	snap, err := f.ledger.Get(context.Background(), taskID)
	if err != nil {
		t.Fatalf("Task lookup failed: %v", err)
	}
	if snap.Status != string(constants.TaskStatusFailed) {
		t.Errorf("Expected failed task when dispatch is refused, got %s", snap.Status)
	}
}
