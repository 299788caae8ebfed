package dtos

// RawRecord is one row as it arrives from an upload. Fields are strings
// because source files are hand-entered spreadsheets; the validator owns
// type coercion and produces CleanRecord values.
type RawRecord struct {
	HotelName      string `json:"hotel_name"`
	Location       string `json:"location"`
	DateRecorded   string `json:"date_recorded"`
	RoomsAvailable string `json:"rooms_available"`
	RoomsOccupied  string `json:"rooms_occupied"`
	Revenue        string `json:"revenue"`

	// Optional pre-computed columns some source sheets carry. Only used by
	// the advisory consistency check; canonical values are always derived
	// from the counts above.
	OccupancyRate string `json:"occupancy_rate,omitempty"`
	ADR           string `json:"adr,omitempty"`
	RevPAR        string `json:"revpar,omitempty"`
}

// IngestRequest is the body of POST /api/v1/data/ingest
type IngestRequest struct {
	Records    []RawRecord `json:"records" validate:"required,min=1,dive"`
	Overwrite  bool        `json:"overwrite"`
	DataSource string      `json:"data_source"`
}

// TrendQuery backs GET /api/v1/dashboard/trends
type TrendQuery struct {
	Metrics   []string `validate:"required,min=1"`
	Period    string   `validate:"omitempty,oneof=daily weekly monthly"`
	StartDate string   `validate:"required,datetime=2006-01-02"`
	EndDate   string   `validate:"required,datetime=2006-01-02"`
	HotelName string
}

// ComparisonQuery backs GET /api/v1/dashboard/comparison. Previous range is
// optional; when absent the engine derives the immediately preceding span.
type ComparisonQuery struct {
	Metric        string `validate:"required"`
	CurrentStart  string `validate:"required,datetime=2006-01-02"`
	CurrentEnd    string `validate:"required,datetime=2006-01-02"`
	PreviousStart string `validate:"omitempty,datetime=2006-01-02"`
	PreviousEnd   string `validate:"omitempty,datetime=2006-01-02"`
}

// RankingsQuery backs GET /api/v1/dashboard/rankings
type RankingsQuery struct {
	Metric    string `validate:"omitempty"`
	StartDate string `validate:"required,datetime=2006-01-02"`
	EndDate   string `validate:"required,datetime=2006-01-02"`
	Limit     int    `validate:"omitempty,min=1,max=100"`
}

// SeasonalQuery backs GET /api/v1/dashboard/seasonal
type SeasonalQuery struct {
	Year      int    `validate:"required,min=2000,max=2100"`
	Metric    string `validate:"omitempty"`
	HotelName string
}

// HotelListQuery backs GET /api/v1/data/hotels
type HotelListQuery struct {
	Page      int    `validate:"omitempty,min=1"`
	Size      int    `validate:"omitempty,min=1,max=200"`
	HotelName string
	Location  string
	StartDate string `validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `validate:"omitempty,datetime=2006-01-02"`
}

// TaskListQuery backs GET /api/v1/tasks
type TaskListQuery struct {
	TaskType string
	Status   string `validate:"omitempty,oneof=pending processing completed failed"`
	Limit    int    `validate:"omitempty,min=1,max=100"`
	Offset   int    `validate:"omitempty,min=0"`
}
