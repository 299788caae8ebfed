package api

import (
	"net/http"
	"strings"
	"time"

	"hotelpulse/internal/models/dtos"
	"hotelpulse/internal/services"
)

// requireRange parses the mandatory start_date/end_date pair.
func requireRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	start, err := time.Parse(dateLayout, r.URL.Query().Get("start_date"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "start_date is required (YYYY-MM-DD)")
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(dateLayout, r.URL.Query().Get("end_date"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "end_date is required (YYYY-MM-DD)")
		return time.Time{}, time.Time{}, false
	}
	if end.Before(start) {
		respondWithError(w, http.StatusBadRequest, "end_date must not precede start_date")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// DashboardSummaryHandler handles GET /api/v1/dashboard/summary
//
// @Summary Headline KPIs for a range, with the preceding period and change rates
// @Tags Dashboard
// @Produce json
// @Router /api/v1/dashboard/summary [get]
func DashboardSummaryHandler(aggregation *services.AggregationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, end, ok := requireRange(w, r)
		if !ok {
			return
		}

		summary, err := aggregation.DashboardSummary(r.Context(), start, end)
		if err != nil {
			respondWithDomainError(w, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, summary)
	}
}

// TrendsHandler handles GET /api/v1/dashboard/trends
//
// @Summary Bucketed time series for one or more metrics
// @Tags Dashboard
// @Produce json
// @Router /api/v1/dashboard/trends [get]
func TrendsHandler(aggregation *services.AggregationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, end, ok := requireRange(w, r)
		if !ok {
			return
		}

		metrics := strings.Split(r.URL.Query().Get("metrics"), ",")
		cleaned := make([]string, 0, len(metrics))
		for _, m := range metrics {
			if m = strings.TrimSpace(m); m != "" {
				cleaned = append(cleaned, m)
			}
		}

		query := dtos.TrendQuery{
			Metrics:   cleaned,
			Period:    r.URL.Query().Get("period"),
			StartDate: start.Format(dateLayout),
			EndDate:   end.Format(dateLayout),
			HotelName: r.URL.Query().Get("hotel_name"),
		}
		if query.Period == "" {
			query.Period = "daily"
		}
		if err := validate.Struct(&query); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid query: "+err.Error())
			return
		}

		resp, err := aggregation.Trends(r.Context(), query.Metrics, query.Period, start, end, query.HotelName)
		if err != nil {
			respondWithDomainError(w, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, resp)
	}
}

// ComparisonHandler handles GET /api/v1/dashboard/comparison
//
// @Summary Compare one metric across two periods
// @Tags Dashboard
// @Produce json
// @Router /api/v1/dashboard/comparison [get]
func ComparisonHandler(aggregation *services.AggregationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := dtos.ComparisonQuery{
			Metric:        r.URL.Query().Get("metric"),
			CurrentStart:  r.URL.Query().Get("current_start"),
			CurrentEnd:    r.URL.Query().Get("current_end"),
			PreviousStart: r.URL.Query().Get("previous_start"),
			PreviousEnd:   r.URL.Query().Get("previous_end"),
		}
		if err := validate.Struct(&query); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid query: "+err.Error())
			return
		}

		curStart, _ := time.Parse(dateLayout, query.CurrentStart)
		curEnd, _ := time.Parse(dateLayout, query.CurrentEnd)

		// Both previous bounds or neither
		var prevStart, prevEnd *time.Time
		if query.PreviousStart != "" && query.PreviousEnd != "" {
			ps, _ := time.Parse(dateLayout, query.PreviousStart)
			pe, _ := time.Parse(dateLayout, query.PreviousEnd)
			prevStart, prevEnd = &ps, &pe
		} else if query.PreviousStart != "" || query.PreviousEnd != "" {
			respondWithError(w, http.StatusBadRequest, "previous_start and previous_end must be given together")
			return
		}

		resp, err := aggregation.Compare(r.Context(), query.Metric, curStart, curEnd, prevStart, prevEnd)
		if err != nil {
			respondWithDomainError(w, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, resp)
	}
}

// RankingsHandler handles GET /api/v1/dashboard/rankings
//
// @Summary Rank hotels by a metric over a range
// @Tags Dashboard
// @Produce json
// @Router /api/v1/dashboard/rankings [get]
func RankingsHandler(aggregation *services.AggregationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, end, ok := requireRange(w, r)
		if !ok {
			return
		}

		query := dtos.RankingsQuery{
			Metric:    r.URL.Query().Get("metric"),
			StartDate: start.Format(dateLayout),
			EndDate:   end.Format(dateLayout),
			Limit:     parseIntParam(r, "limit", 10),
		}
		if err := validate.Struct(&query); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid query: "+err.Error())
			return
		}

		resp, err := aggregation.Rankings(r.Context(), query.Metric, start, end, query.Limit)
		if err != nil {
			respondWithDomainError(w, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, resp)
	}
}

// SeasonalHandler handles GET /api/v1/dashboard/seasonal
//
// @Summary Monthly pattern of a metric across one year
// @Tags Dashboard
// @Produce json
// @Router /api/v1/dashboard/seasonal [get]
func SeasonalHandler(aggregation *services.AggregationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := dtos.SeasonalQuery{
			Year:      parseIntParam(r, "year", time.Now().Year()),
			Metric:    r.URL.Query().Get("metric"),
			HotelName: r.URL.Query().Get("hotel_name"),
		}
		if err := validate.Struct(&query); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid query: "+err.Error())
			return
		}

		resp, err := aggregation.SeasonalPatterns(r.Context(), query.Year, query.Metric, query.HotelName)
		if err != nil {
			respondWithDomainError(w, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, resp)
	}
}

// RegionalHandler handles GET /api/v1/dashboard/regional
//
// @Summary Roll KPIs up by region
// @Tags Dashboard
// @Produce json
// @Router /api/v1/dashboard/regional [get]
func RegionalHandler(aggregation *services.AggregationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, end, ok := requireRange(w, r)
		if !ok {
			return
		}

		resp, err := aggregation.RegionalRollup(r.Context(), start, end)
		if err != nil {
			respondWithDomainError(w, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, resp)
	}
}
