package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"hotelpulse/internal/common"
	"hotelpulse/internal/constants"
	"hotelpulse/internal/db/repositories"
	"hotelpulse/internal/logging"
	"hotelpulse/internal/metrics"
	"hotelpulse/internal/models/dtos"
	gormModels "hotelpulse/internal/models/gorm"
)

// Dispatcher hands background work to the bounded worker pool.
type Dispatcher interface {
	Submit(fn func(ctx context.Context)) error
}

// IngestionService is the only writer of HotelMetricRecord and KPIMetric.
// Upserts are serialized per natural key so concurrent batches touching the
// same (hotel_name, date_recorded) cannot lose updates.
type IngestionService struct {
	records    *repositories.HotelRecordRepository
	kpis       *repositories.KPIRepository
	validator  *RecordValidator
	ledger     *TaskLedger
	dispatcher Dispatcher
	locks      *common.KeyedMutex
}

func NewIngestionService(
	records *repositories.HotelRecordRepository,
	kpis *repositories.KPIRepository,
	validator *RecordValidator,
	ledger *TaskLedger,
	dispatcher Dispatcher,
) *IngestionService {
	return &IngestionService{
		records:    records,
		kpis:       kpis,
		validator:  validator,
		ledger:     ledger,
		dispatcher: dispatcher,
		locks:      common.NewKeyedMutex(),
	}
}

func naturalKey(hotelName string, date time.Time) string {
	return hotelName + "|" + date.Format(dateLayout)
}

// Ingest commits a validated batch: drops null-key rows, dedupes the batch
// on the natural key (first occurrence wins), computes derived metrics,
// upserts each row, then regenerates KPI rows for every affected record.
// With overwrite=false an existing key is skipped but still reports its id,
// so re-ingesting the same period is an idempotent no-op.
//
// KPI materialization failures do not roll back committed upserts; the
// returned error reports them so the wrapping task can surface the partial
// success.
func (s *IngestionService) Ingest(ctx context.Context, rows []dtos.CleanRecord, overwrite bool, dataSource string) (*dtos.IngestResult, error) {
	flags := s.validator.ConsistencyFlags(rows)

	type keptRow struct {
		row   dtos.CleanRecord
		index int
	}

	seen := make(map[string]bool)
	kept := make([]keptRow, 0, len(rows))
	for i, row := range rows {
		if row.HotelName == "" || row.DateRecorded.IsZero() {
			continue
		}
		key := naturalKey(row.HotelName, row.DateRecorded)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, keptRow{row: row, index: i})
	}

	result := &dtos.IngestResult{HotelIDs: make([]uint, 0, len(kept))}

	for _, k := range kept {
		id, outcome, err := s.upsertRow(ctx, k.row, overwrite, dataSource, flags[k.index])
		if err != nil {
			return result, err
		}
		result.HotelIDs = append(result.HotelIDs, id)
		switch outcome {
		case rowInserted:
			result.Inserted++
		case rowUpdated:
			result.Updated++
		case rowSkipped:
			result.Skipped++
		}
	}

	var kpiFailures []string
	for _, id := range result.HotelIDs {
		count, err := s.materializeKPIs(ctx, id)
		if err != nil {
			logging.Error("KPI materialization failed",
				"hotel_id", id,
				"error", err.Error(),
			)
			kpiFailures = append(kpiFailures, fmt.Sprintf("hotel %d: %v", id, err))
			continue
		}
		result.KPICount += count
	}

	if len(kpiFailures) > 0 {
		return result, fmt.Errorf("kpi materialization failed for %d of %d records: %s",
			len(kpiFailures), len(result.HotelIDs), strings.Join(kpiFailures, "; "))
	}

	return result, nil
}

type rowOutcome int

const (
	rowInserted rowOutcome = iota
	rowUpdated
	rowSkipped
)

func (s *IngestionService) upsertRow(ctx context.Context, row dtos.CleanRecord, overwrite bool, dataSource string, flags []common.FieldViolation) (uint, rowOutcome, error) {
	key := naturalKey(row.HotelName, row.DateRecorded)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	existing, err := s.records.FindByNaturalKey(ctx, row.HotelName, row.DateRecorded)
	if err != nil {
		return 0, rowSkipped, err
	}

	if existing != nil && !overwrite {
		return existing.ID, rowSkipped, nil
	}

	var validationErrors *string
	if len(flags) > 0 {
		if data, err := json.Marshal(flags); err == nil {
			s := string(data)
			validationErrors = &s
		}
	}

	record := gormModels.HotelMetricRecord{
		HotelName:        row.HotelName,
		Location:         row.Location,
		RoomCount:        row.RoomsAvailable,
		RoomsOccupied:    row.RoomsOccupied,
		OccupancyRate:    OccupancyRate(row.RoomsOccupied, row.RoomsAvailable),
		Revenue:          row.Revenue,
		ADR:              ADR(row.Revenue, row.RoomsOccupied),
		RevPAR:           RevPAR(row.Revenue, row.RoomsAvailable),
		DateRecorded:     row.DateRecorded,
		DataSource:       dataSource,
		IsValidated:      true,
		ValidationErrors: validationErrors,
	}

	if existing != nil {
		record.ID = existing.ID
		if err := s.records.Update(ctx, &record); err != nil {
			return 0, rowSkipped, err
		}
		return existing.ID, rowUpdated, nil
	}

	if err := s.records.Insert(ctx, &record); err != nil {
		return 0, rowSkipped, err
	}
	return record.ID, rowInserted, nil
}

// materializeKPIs regenerates the full KPI row set from the record's
// latest state.
func (s *IngestionService) materializeKPIs(ctx context.Context, hotelID uint) (int, error) {
	record, err := s.records.GetByID(ctx, hotelID)
	if err != nil {
		return 0, err
	}

	revenue := record.Revenue
	adr := record.ADR
	revpar := record.RevPAR

	metrics := []gormModels.KPIMetric{
		{HotelID: hotelID, MetricName: string(constants.MetricOccupancyRate), MetricValue: record.OccupancyRate, MetricType: constants.MetricTypeOccupancy},
		{HotelID: hotelID, MetricName: string(constants.MetricADR), MetricValue: &adr, MetricType: constants.MetricTypeRevenue},
		{HotelID: hotelID, MetricName: string(constants.MetricRevPAR), MetricValue: &revpar, MetricType: constants.MetricTypeRevenue},
		{HotelID: hotelID, MetricName: string(constants.MetricRevenue), MetricValue: &revenue, MetricType: constants.MetricTypeRevenue},
	}
	for i := range metrics {
		metrics[i].PeriodType = string(constants.PeriodDaily)
		metrics[i].PeriodStart = record.DateRecorded
		metrics[i].PeriodEnd = record.DateRecorded
	}

	if err := s.kpis.Regenerate(ctx, hotelID, metrics); err != nil {
		return 0, err
	}
	return len(metrics), nil
}

// IngestAsync validates and commits the batch on the worker pool, tracked
// by a ledger task. The returned task id is available immediately.
func (s *IngestionService) IngestAsync(ctx context.Context, req dtos.IngestRequest) (string, error) {
	taskID, err := s.ledger.Create(ctx, constants.TaskTypeDataProcessing)
	if err != nil {
		return "", err
	}

	job := func(jobCtx context.Context) {
		s.runIngestTask(jobCtx, taskID, req)
	}

	if err := s.dispatcher.Submit(job); err != nil {
		// Pool saturated or shut down; the task dies here, visibly.
		_ = s.ledger.Fail(ctx, taskID, "failed to dispatch: "+err.Error())
		return taskID, nil
	}

	return taskID, nil
}

// runIngestTask is the worker-side body. Errors never propagate across the
// async boundary; they land in the ledger as task failures.
func (s *IngestionService) runIngestTask(ctx context.Context, taskID string, req dtos.IngestRequest) {
	log := logging.WithTask(taskID, string(constants.TaskTypeDataProcessing))

	if err := s.ledger.Advance(ctx, taskID, 10); err != nil {
		log.Errorw("Failed to advance task", "error", err.Error())
		return
	}

	cleaned, err := s.validator.Validate(req.Records)
	if err != nil {
		metrics.IngestBatchesTotal.WithLabelValues("rejected").Inc()
		_ = s.ledger.Fail(ctx, taskID, err.Error())
		return
	}

	if err := s.ledger.Advance(ctx, taskID, 40); err != nil {
		log.Errorw("Failed to advance task", "error", err.Error())
		return
	}

	result, err := s.Ingest(ctx, cleaned, req.Overwrite, req.DataSource)
	if result != nil {
		metrics.RecordsIngestedTotal.WithLabelValues("inserted").Add(float64(result.Inserted))
		metrics.RecordsIngestedTotal.WithLabelValues("updated").Add(float64(result.Updated))
		metrics.RecordsIngestedTotal.WithLabelValues("skipped").Add(float64(result.Skipped))
	}
	if err != nil {
		// Upserts that committed stay committed; the failure message
		// carries the partial result for the caller.
		metrics.IngestBatchesTotal.WithLabelValues("failed").Inc()
		_ = s.ledger.Fail(ctx, taskID, err.Error())
		return
	}

	if err := s.ledger.Advance(ctx, taskID, 90); err != nil {
		log.Errorw("Failed to advance task", "error", err.Error())
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		_ = s.ledger.Fail(ctx, taskID, "failed to encode result: "+err.Error())
		return
	}

	if err := s.ledger.Complete(ctx, taskID, payload); err != nil {
		log.Errorw("Failed to complete task", "error", err.Error())
		return
	}
	metrics.IngestBatchesTotal.WithLabelValues("completed").Inc()

	log.Infow("Batch ingested",
		"inserted", result.Inserted,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"kpi_rows", result.KPICount,
	)
}
