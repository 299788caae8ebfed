package constants

type (
	MetricName  string
	PeriodType  string
	GroupBy     string
	TaskType    string
	TaskStatus  string
	CachePrefix string
)

const (
	MetricOccupancyRate MetricName = "occupancy_rate"
	MetricADR           MetricName = "adr"
	MetricRevPAR        MetricName = "revpar"
	MetricRevenue       MetricName = "revenue"

	MetricTypeOccupancy = "occupancy"
	MetricTypeRevenue   = "revenue"

	PeriodDaily PeriodType = "daily"

	GroupByDay   GroupBy = "day"
	GroupByWeek  GroupBy = "week"
	GroupByMonth GroupBy = "month"

	TaskTypeDataProcessing   TaskType = "data_processing"
	TaskTypeReportGeneration TaskType = "report_generation"
	TaskTypeAIAnalysis       TaskType = "ai_analysis"

	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"

	CachePrefixTaskStatus CachePrefix = "task:"
	CachePrefixDashboard  CachePrefix = "DASH_"

	// Region bucket for records without a location
	RegionUnknown = "unknown"

	// Default cap on task retries
	DefaultMaxRetries = 3
)

// ValidMetric reports whether name is a known metric. Unknown names fall
// back to revenue in the aggregation layer.
func ValidMetric(name string) bool {
	switch MetricName(name) {
	case MetricOccupancyRate, MetricADR, MetricRevPAR, MetricRevenue:
		return true
	}
	return false
}

// NormalizeMetric maps an arbitrary metric name onto a known one,
// defaulting to revenue.
func NormalizeMetric(name string) MetricName {
	if ValidMetric(name) {
		return MetricName(name)
	}
	return MetricRevenue
}
