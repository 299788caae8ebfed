package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"hotelpulse/internal/api"
	"hotelpulse/internal/config"
	"hotelpulse/internal/db"
	"hotelpulse/internal/jobs"
	"hotelpulse/internal/logging"
	"hotelpulse/internal/metrics"
	"hotelpulse/internal/middleware"
	"hotelpulse/internal/workers"
)

func RegisterRoutes(cfg *config.Config, upSince time.Time) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// Initialize metrics registry
	metricsReg := metrics.NewMetricsRegistry()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(metricsReg))
	r.Use(middleware.Logging)
	r.Use(middleware.RateLimitMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	logging.Info("Router initialized with metrics and logging middleware")

	// health check; /metrics is mounted on the outer mux in main
	r.Get("/healthCheck", api.HealthCheckHandler(db.DB, upSince))

	// Bounded executor shared by every async task
	pool := workers.NewPool(cfg.IngestWorkers)

	// Initialize dependencies using DI pattern
	deps, err := api.InitDependencies(cfg, pool)
	if err != nil {
		panic("Failed to initialize dependencies: " + err.Error())
	}

	// Reaper keeps the task table honest when a worker dies mid-batch
	jobs.InitializeJobs(context.Background(), cfg, deps.Repo.Tasks, deps.Services.Ledger)

	RegisterAPIRoutes(r, deps)

	return r
}
