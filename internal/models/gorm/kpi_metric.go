package gorm

import "time"

// KPIMetric is one materialized metric value for a hotel record. Rows are
// owned by their parent HotelMetricRecord and regenerated wholesale when
// the parent changes, never patched in place.
type KPIMetric struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	HotelID     uint      `gorm:"column:hotel_id;not null;index" json:"hotel_id"`
	MetricName  string    `gorm:"column:metric_name;size:100;not null" json:"metric_name"`
	MetricValue *float64  `gorm:"column:metric_value" json:"metric_value"`
	MetricType  string    `gorm:"column:metric_type;size:50;index" json:"metric_type"`
	PeriodType  string    `gorm:"column:period_type;size:20" json:"period_type"`
	PeriodStart time.Time `gorm:"column:period_start;type:date" json:"period_start"`
	PeriodEnd   time.Time `gorm:"column:period_end;type:date" json:"period_end"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	// Relationships
	HotelRecord HotelMetricRecord `gorm:"foreignKey:HotelID" json:"-"`
}

// TableName specifies the table name for GORM
func (KPIMetric) TableName() string {
	return "kpi_metrics"
}
