package routes

import (
	"github.com/go-chi/chi/v5"

	"hotelpulse/internal/api"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
// This keeps API route registration separate from the main router setup
func RegisterAPIRoutes(r chi.Router, deps *api.Dependencies) {

	r.Route("/api/v1", func(v1 chi.Router) {

		v1.Route("/data", func(data chi.Router) {
			data.Post("/ingest", api.IngestHandler(deps.Services.Ingestion))
			data.Get("/hotels", api.ListHotelsHandler(deps.Repo.Records))
			data.Get("/hotels/{id}", api.GetHotelHandler(deps.Repo.Records))
			data.Get("/summary", api.DataSummaryHandler(deps.Repo.Summary))
		})

		v1.Route("/dashboard", func(dash chi.Router) {
			dash.Get("/summary", api.DashboardSummaryHandler(deps.Services.Aggregation))
			dash.Get("/trends", api.TrendsHandler(deps.Services.Aggregation))
			dash.Get("/comparison", api.ComparisonHandler(deps.Services.Aggregation))
			dash.Get("/rankings", api.RankingsHandler(deps.Services.Aggregation))
			dash.Get("/seasonal", api.SeasonalHandler(deps.Services.Aggregation))
			dash.Get("/regional", api.RegionalHandler(deps.Services.Aggregation))
		})

		v1.Route("/tasks", func(tasks chi.Router) {
			tasks.Get("/", api.ListTasksHandler(deps.Services.Ledger))
			tasks.Get("/{taskId}", api.GetTaskHandler(deps.Services.Ledger))
			tasks.Post("/{taskId}/retry", api.RetryTaskHandler(deps.Services.Ledger))
		})
	})
}
