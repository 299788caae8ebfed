package repositories

import (
	"context"

	"gorm.io/gorm"

	"hotelpulse/internal/common"
	gormModels "hotelpulse/internal/models/gorm"
)

// KPIRepository owns the materialized KPI rows. Rows belong to their
// parent hotel record: regeneration always deletes and reinserts the full
// set for a record rather than patching individual rows.
type KPIRepository struct {
	db *gorm.DB
}

func NewKPIRepository(db *gorm.DB) *KPIRepository {
	return &KPIRepository{db: db}
}

// Regenerate replaces every KPI row for the given hotel record id.
func (r *KPIRepository) Regenerate(ctx context.Context, hotelID uint, metrics []gormModels.KPIMetric) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("hotel_id = ?", hotelID).
			Delete(&gormModels.KPIMetric{}).Error; err != nil {
			return err
		}
		if len(metrics) == 0 {
			return nil
		}
		return tx.Create(&metrics).Error
	})
	if err != nil {
		return &common.StoreError{Op: "regenerate kpi metrics", Err: err}
	}
	return nil
}

// ListByHotelRecord returns the KPI rows for one hotel record.
func (r *KPIRepository) ListByHotelRecord(ctx context.Context, hotelID uint) ([]gormModels.KPIMetric, error) {
	var metrics []gormModels.KPIMetric

	err := r.db.WithContext(ctx).
		Where("hotel_id = ?", hotelID).
		Order("metric_name asc").
		Find(&metrics).Error
	if err != nil {
		return nil, &common.StoreError{Op: "list kpi metrics", Err: err}
	}

	return metrics, nil
}
