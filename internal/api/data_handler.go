package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"hotelpulse/internal/db/repositories"
	"hotelpulse/internal/models/dtos"
	gormModels "hotelpulse/internal/models/gorm"
)

const dateLayout = "2006-01-02"

func parseDateParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseIntParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func recordView(record *gormModels.HotelMetricRecord) dtos.HotelRecordView {
	return dtos.HotelRecordView{
		ID:            record.ID,
		HotelName:     record.HotelName,
		Location:      record.Location,
		RoomCount:     record.RoomCount,
		RoomsOccupied: record.RoomsOccupied,
		OccupancyRate: record.OccupancyRate,
		Revenue:       record.Revenue,
		ADR:           record.ADR,
		RevPAR:        record.RevPAR,
		DateRecorded:  record.DateRecorded.Format(dateLayout),
		IsValidated:   record.IsValidated,
	}
}

// ListHotelsHandler handles GET /api/v1/data/hotels
//
// @Summary List canonical hotel records with filters and pagination
// @Tags Data
// @Produce json
// @Router /api/v1/data/hotels [get]
func ListHotelsHandler(records *repositories.HotelRecordRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := dtos.HotelListQuery{
			Page:      parseIntParam(r, "page", 1),
			Size:      parseIntParam(r, "size", 20),
			HotelName: r.URL.Query().Get("hotel_name"),
			Location:  r.URL.Query().Get("location"),
			StartDate: r.URL.Query().Get("start_date"),
			EndDate:   r.URL.Query().Get("end_date"),
		}
		if err := validate.Struct(&query); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid query: "+err.Error())
			return
		}

		filter := repositories.ListFilter{
			HotelName: query.HotelName,
			Location:  query.Location,
			Page:      query.Page,
			Size:      query.Size,
		}

		start, err := parseDateParam(r, "start_date")
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid start_date")
			return
		}
		end, err := parseDateParam(r, "end_date")
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid end_date")
			return
		}
		filter.StartDate = start
		filter.EndDate = end

		items, total, err := records.List(r.Context(), filter)
		if err != nil {
			respondWithDomainError(w, err)
			return
		}

		resp := dtos.HotelListResponse{
			Items: make([]dtos.HotelRecordView, 0, len(items)),
			Total: total,
			Page:  query.Page,
			Size:  query.Size,
		}
		for i := range items {
			resp.Items = append(resp.Items, recordView(&items[i]))
		}

		respondWithSuccess(w, http.StatusOK, &resp)
	}
}

// GetHotelHandler handles GET /api/v1/data/hotels/{id}
//
// @Summary Fetch one hotel record by id
// @Tags Data
// @Produce json
// @Router /api/v1/data/hotels/{id} [get]
func GetHotelHandler(records *repositories.HotelRecordRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid record id")
			return
		}

		record, err := records.GetByID(r.Context(), uint(id))
		if err != nil {
			respondWithDomainError(w, err)
			return
		}

		view := recordView(record)
		respondWithSuccess(w, http.StatusOK, &view)
	}
}

// DataSummaryHandler handles GET /api/v1/data/summary
//
// @Summary Summarize the whole dataset, optionally bounded by a date range
// @Tags Data
// @Produce json
// @Router /api/v1/data/summary [get]
func DataSummaryHandler(summary *repositories.SummaryRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, err := parseDateParam(r, "start_date")
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid start_date")
			return
		}
		end, err := parseDateParam(r, "end_date")
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid end_date")
			return
		}

		// Widen to the full dataset when no bounds were given
		lo := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
		hi := time.Date(2999, 12, 31, 0, 0, 0, 0, time.UTC)
		if start != nil {
			lo = *start
		}
		if end != nil {
			hi = *end
		}

		data, err := summary.DataSummary(r.Context(), lo, hi)
		if err != nil {
			respondWithDomainError(w, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, data)
	}
}
