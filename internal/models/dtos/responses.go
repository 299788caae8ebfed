package dtos

import "time"

// CleanRecord is a validated, typed row ready for the ingestion pipeline.
type CleanRecord struct {
	HotelName      string
	Location       string
	DateRecorded   time.Time
	RoomsAvailable int
	RoomsOccupied  int
	Revenue        float64

	// Reported derived values from the source sheet, when present. Kept
	// only to cross-check against the computed ones.
	ReportedOccupancyRate *float64
	ReportedADR           *float64
	ReportedRevPAR        *float64
}

// IngestResult summarizes one committed batch.
type IngestResult struct {
	HotelIDs []uint `json:"hotel_ids"`
	Inserted int    `json:"inserted"`
	Updated  int    `json:"updated"`
	Skipped  int    `json:"skipped"`
	KPICount int    `json:"kpi_count"`
}

// IngestAccepted is returned immediately by the async ingest endpoint.
type IngestAccepted struct {
	TaskID string `json:"task_id"`
}

// TrendPoint is one time bucket of a trend series.
type TrendPoint struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
}

// TrendResponse groups series per requested metric.
type TrendResponse struct {
	Trends    map[string][]TrendPoint `json:"trends"`
	Period    string                  `json:"period"`
	DateRange DateRange               `json:"date_range"`
}

type DateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// PeriodValue is one side of a period comparison.
type PeriodValue struct {
	Value      float64   `json:"value"`
	DateRange  DateRange `json:"date_range"`
	HotelCount int64     `json:"hotel_count"`
}

// ComparisonResponse is the result of a period-over-period comparison.
type ComparisonResponse struct {
	Metric     string      `json:"metric"`
	Current    PeriodValue `json:"current"`
	Previous   PeriodValue `json:"previous"`
	ChangeRate float64     `json:"change_rate"`
}

// RankingEntry is one hotel in a ranking.
type RankingEntry struct {
	HotelName string  `json:"hotel_name"`
	Value     float64 `json:"value"`
}

// RankingsResponse lists the top hotels for a metric over a range.
type RankingsResponse struct {
	Metric    string         `json:"metric"`
	DateRange DateRange      `json:"date_range"`
	Rankings  []RankingEntry `json:"rankings"`
}

// MonthValue is one calendar month of a seasonal pattern.
type MonthValue struct {
	Month int     `json:"month"`
	Value float64 `json:"value"`
}

// SeasonalResponse holds the per-month values for one year.
type SeasonalResponse struct {
	Year        int          `json:"year"`
	Metric      string       `json:"metric"`
	HotelName   string       `json:"hotel_name,omitempty"`
	MonthlyData []MonthValue `json:"monthly_data"`
}

// RegionalKPIs are the rolled-up figures for one region. Rates are
// unweighted means across the region's hotels; revenue is a sum.
type RegionalKPIs struct {
	Region        string  `json:"region"`
	HotelCount    int     `json:"hotel_count"`
	OccupancyRate float64 `json:"occupancy_rate"`
	ADR           float64 `json:"adr"`
	RevPAR        float64 `json:"revpar"`
	Revenue       float64 `json:"revenue"`
}

// RegionalResponse maps region name to its rollup.
type RegionalResponse struct {
	DateRange DateRange               `json:"date_range"`
	Regions   map[string]RegionalKPIs `json:"regions"`
}

// KPISet is one period's headline figures.
type KPISet struct {
	OccupancyRate float64 `json:"occupancy_rate"`
	ADR           float64 `json:"adr"`
	RevPAR        float64 `json:"revpar"`
	Revenue       float64 `json:"revenue"`
}

// DashboardSummary is the headline dashboard payload: current KPIs, the
// immediately preceding period, and change rates per metric.
type DashboardSummary struct {
	Current    KPISet             `json:"current"`
	Previous   KPISet             `json:"previous"`
	Changes    map[string]float64 `json:"changes"`
	HotelCount int64              `json:"hotel_count"`
	DateRange  DateRange          `json:"date_range"`
}

// DataSummary describes the whole dataset.
type DataSummary struct {
	HotelCount       int64     `json:"hotel_count" db:"hotel_count"`
	TotalRecords     int64     `json:"total_records" db:"total_records"`
	MinDate          *string   `json:"min_date" db:"-"`
	MaxDate          *string   `json:"max_date" db:"-"`
	AvgOccupancyRate float64   `json:"avg_occupancy_rate" db:"avg_occupancy_rate"`
	AvgADR           float64   `json:"avg_adr" db:"avg_adr"`
	AvgRevPAR        float64   `json:"avg_revpar" db:"avg_revpar"`
	TotalRevenue     float64   `json:"total_revenue" db:"total_revenue"`
}

// TaskSnapshot is the external view of an async task.
type TaskSnapshot struct {
	TaskID       string     `json:"task_id"`
	TaskType     string     `json:"task_type"`
	Status       string     `json:"status"`
	Progress     int        `json:"progress"`
	ResultData   []byte     `json:"result_data,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	RetryCount   int        `json:"retry_count"`
	MaxRetries   int        `json:"max_retries"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// HotelListResponse is a page of canonical records.
type HotelListResponse struct {
	Items []HotelRecordView `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Size  int               `json:"size"`
}

// HotelRecordView is the API projection of a HotelMetricRecord.
type HotelRecordView struct {
	ID            uint     `json:"id"`
	HotelName     string   `json:"hotel_name"`
	Location      string   `json:"location"`
	RoomCount     int      `json:"room_count"`
	RoomsOccupied int      `json:"rooms_occupied"`
	OccupancyRate *float64 `json:"occupancy_rate"`
	Revenue       float64  `json:"revenue"`
	ADR           float64  `json:"adr"`
	RevPAR        float64  `json:"revpar"`
	DateRecorded  string   `json:"date_recorded"`
	IsValidated   bool     `json:"is_validated"`
}
