package constants

const (
	// Dataset summary over hotel_metric_records, optionally bounded by the
	// caller through the date parameters ($1/$2 may be zero values and are
	// widened in the repository when unset).
	DataSummaryQuery = `
	SELECT
		COUNT(DISTINCT hotel_name)            AS hotel_count,
		COUNT(*)                              AS total_records,
		MIN(date_recorded)                    AS min_date,
		MAX(date_recorded)                    AS max_date,
		COALESCE(AVG(occupancy_rate), 0)      AS avg_occupancy_rate,
		COALESCE(AVG(adr), 0)                 AS avg_adr,
		COALESCE(AVG(revpar), 0)              AS avg_revpar,
		COALESCE(SUM(revenue), 0)             AS total_revenue
	FROM hotel_metric_records
	WHERE date_recorded >= $1 AND date_recorded <= $2
	`
)
