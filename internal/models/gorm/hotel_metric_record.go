package gorm

import "time"

// HotelMetricRecord is the canonical occupancy/revenue record. Identity is
// the (hotel_name, date_recorded) pair; the surrogate ID is assigned on
// first insert and never changes across overwrites.
type HotelMetricRecord struct {
	ID               uint       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	HotelName        string     `gorm:"column:hotel_name;size:200;not null;uniqueIndex:idx_hotel_date" json:"hotel_name"`
	Location         string     `gorm:"column:location;size:200" json:"location"`
	RoomCount        int        `gorm:"column:room_count" json:"room_count"`
	RoomsOccupied    int        `gorm:"column:rooms_occupied" json:"rooms_occupied"`
	OccupancyRate    *float64   `gorm:"column:occupancy_rate" json:"occupancy_rate"`
	Revenue          float64    `gorm:"column:revenue" json:"revenue"`
	ADR              float64    `gorm:"column:adr" json:"adr"`
	RevPAR           float64    `gorm:"column:revpar" json:"revpar"`
	DateRecorded     time.Time  `gorm:"column:date_recorded;type:date;not null;uniqueIndex:idx_hotel_date;index" json:"date_recorded"`
	DataSource       string     `gorm:"column:data_source;size:100" json:"data_source"`
	IsValidated      bool       `gorm:"column:is_validated;default:false" json:"is_validated"`
	ValidationErrors *string    `gorm:"column:validation_errors;type:text" json:"validation_errors,omitempty"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	KPIMetrics []KPIMetric `gorm:"foreignKey:HotelID" json:"-"`
}

// TableName specifies the table name for GORM
func (HotelMetricRecord) TableName() string {
	return "hotel_metric_records"
}
