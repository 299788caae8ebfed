package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"hotelpulse/internal/common"
	gormModels "hotelpulse/internal/models/gorm"
)

// HotelRecordRepository owns reads and writes of the canonical records.
type HotelRecordRepository struct {
	db *gorm.DB
}

func NewHotelRecordRepository(db *gorm.DB) *HotelRecordRepository {
	return &HotelRecordRepository{db: db}
}

// FindByNaturalKey looks up the record for (hotel_name, date_recorded).
// Returns nil without error when absent.
func (r *HotelRecordRepository) FindByNaturalKey(ctx context.Context, hotelName string, date time.Time) (*gormModels.HotelMetricRecord, error) {
	var record gormModels.HotelMetricRecord

	err := r.db.WithContext(ctx).
		Where("hotel_name = ? AND date_recorded = ?", hotelName, date).
		First(&record).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, &common.StoreError{Op: "find hotel record", Err: err}
	}

	return &record, nil
}

// GetByID fetches one record by surrogate id.
func (r *HotelRecordRepository) GetByID(ctx context.Context, id uint) (*gormModels.HotelMetricRecord, error) {
	var record gormModels.HotelMetricRecord

	err := r.db.WithContext(ctx).First(&record, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, &common.NotFoundError{Resource: "hotel record", ID: fmt.Sprint(id)}
	}
	if err != nil {
		return nil, &common.StoreError{Op: "get hotel record", Err: err}
	}

	return &record, nil
}

// Insert creates a new canonical record.
func (r *HotelRecordRepository) Insert(ctx context.Context, record *gormModels.HotelMetricRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return &common.StoreError{Op: "insert hotel record", Err: err}
	}
	return nil
}

// Update overwrites the mutable fields of an existing record and bumps
// updated_at. The surrogate id and natural key stay untouched.
func (r *HotelRecordRepository) Update(ctx context.Context, record *gormModels.HotelMetricRecord) error {
	err := r.db.WithContext(ctx).
		Model(record).
		Select("location", "room_count", "rooms_occupied", "occupancy_rate",
			"revenue", "adr", "revpar", "data_source", "is_validated",
			"validation_errors", "updated_at").
		Updates(map[string]interface{}{
			"location":          record.Location,
			"room_count":        record.RoomCount,
			"rooms_occupied":    record.RoomsOccupied,
			"occupancy_rate":    record.OccupancyRate,
			"revenue":           record.Revenue,
			"adr":               record.ADR,
			"revpar":            record.RevPAR,
			"data_source":       record.DataSource,
			"is_validated":      record.IsValidated,
			"validation_errors": record.ValidationErrors,
			"updated_at":        time.Now().UTC(),
		}).Error
	if err != nil {
		return &common.StoreError{Op: "update hotel record", Err: err}
	}
	return nil
}

// RangeQuery returns all records inside [start, end], optionally filtered
// by exact hotel name, ordered by date then hotel for stable bucketing.
func (r *HotelRecordRepository) RangeQuery(ctx context.Context, start, end time.Time, hotelName string) ([]gormModels.HotelMetricRecord, error) {
	var records []gormModels.HotelMetricRecord

	query := r.db.WithContext(ctx).
		Where("date_recorded >= ? AND date_recorded <= ?", start, end)

	if hotelName != "" {
		query = query.Where("hotel_name = ?", hotelName)
	}

	err := query.Order("date_recorded asc, hotel_name asc").Find(&records).Error
	if err != nil {
		return nil, &common.StoreError{Op: "range query", Err: err}
	}

	return records, nil
}

// DistinctHotelCount counts hotels with at least one record in the range.
func (r *HotelRecordRepository) DistinctHotelCount(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&gormModels.HotelMetricRecord{}).
		Where("date_recorded >= ? AND date_recorded <= ?", start, end).
		Distinct("hotel_name").
		Count(&count).Error
	if err != nil {
		return 0, &common.StoreError{Op: "distinct hotel count", Err: err}
	}

	return count, nil
}

// ListFilter narrows the paginated listing.
type ListFilter struct {
	HotelName string
	Location  string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Size      int
}

// List returns one page of records, newest first, plus the total count.
func (r *HotelRecordRepository) List(ctx context.Context, filter ListFilter) ([]gormModels.HotelMetricRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&gormModels.HotelMetricRecord{})

	if filter.HotelName != "" {
		query = query.Where("hotel_name LIKE ?", "%"+filter.HotelName+"%")
	}
	if filter.Location != "" {
		query = query.Where("location LIKE ?", "%"+filter.Location+"%")
	}
	if filter.StartDate != nil {
		query = query.Where("date_recorded >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("date_recorded <= ?", *filter.EndDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, &common.StoreError{Op: "count hotel records", Err: err}
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.Size
	if size < 1 {
		size = 10
	}

	var records []gormModels.HotelMetricRecord
	err := query.
		Order("date_recorded desc").
		Offset((page - 1) * size).
		Limit(size).
		Find(&records).Error
	if err != nil {
		return nil, 0, &common.StoreError{Op: "list hotel records", Err: err}
	}

	return records, total, nil
}
