package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"hotelpulse/internal/common"
	"hotelpulse/internal/constants"
	"hotelpulse/internal/models/dtos"
)

// SummaryRepository serves the dataset summary through the raw-SQL handle.
// Kept on sqlx: a single aggregate query, no model mapping worth an ORM.
type SummaryRepository struct {
	db *sqlx.DB
}

func NewSummaryRepository(db *sqlx.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

type summaryRow struct {
	HotelCount       int64        `db:"hotel_count"`
	TotalRecords     int64        `db:"total_records"`
	MinDate          sql.NullTime `db:"min_date"`
	MaxDate          sql.NullTime `db:"max_date"`
	AvgOccupancyRate float64      `db:"avg_occupancy_rate"`
	AvgADR           float64      `db:"avg_adr"`
	AvgRevPAR        float64      `db:"avg_revpar"`
	TotalRevenue     float64      `db:"total_revenue"`
}

// DataSummary aggregates the dataset inside [start, end]. Callers widen
// the bounds to cover everything when no range was requested.
func (r *SummaryRepository) DataSummary(ctx context.Context, start, end time.Time) (*dtos.DataSummary, error) {
	var row summaryRow

	err := r.db.GetContext(ctx, &row, constants.DataSummaryQuery, start, end)
	if err != nil {
		return nil, &common.StoreError{Op: "data summary", Err: err}
	}

	summary := &dtos.DataSummary{
		HotelCount:       row.HotelCount,
		TotalRecords:     row.TotalRecords,
		AvgOccupancyRate: row.AvgOccupancyRate,
		AvgADR:           row.AvgADR,
		AvgRevPAR:        row.AvgRevPAR,
		TotalRevenue:     row.TotalRevenue,
	}

	if row.MinDate.Valid {
		s := row.MinDate.Time.Format("2006-01-02")
		summary.MinDate = &s
	}
	if row.MaxDate.Valid {
		s := row.MaxDate.Time.Format("2006-01-02")
		summary.MaxDate = &s
	}

	return summary, nil
}
