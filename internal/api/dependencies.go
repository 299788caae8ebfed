package api

import (
	"hotelpulse/internal/common"
	"hotelpulse/internal/config"
	"hotelpulse/internal/db"
	"hotelpulse/internal/db/repositories"
	"hotelpulse/internal/services"
)

type Repositories struct {
	Records *repositories.HotelRecordRepository
	KPIs    *repositories.KPIRepository
	Tasks   *repositories.TaskRepository
	Summary *repositories.SummaryRepository
}

type Services struct {
	Cache       common.CacheInterface
	Validator   *services.RecordValidator
	Ledger      *services.TaskLedger
	Ingestion   *services.IngestionService
	Aggregation *services.AggregationService
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
}

func InitDependencies(cfg *config.Config, dispatcher services.Dispatcher) (*Dependencies, error) {

	repos := &Repositories{
		Records: repositories.NewHotelRecordRepository(db.PgDB),
		KPIs:    repositories.NewKPIRepository(db.PgDB),
		Tasks:   repositories.NewTaskRepository(db.PgDB),
		Summary: repositories.NewSummaryRepository(db.DB),
	}

	var cacheSvc common.CacheInterface
	if cfg.UseRedisCache {
		redisCache, err := common.NewRedisCacheService(cfg)
		if err != nil {
			return nil, err
		}
		cacheSvc = redisCache
	} else {
		cacheSvc = common.NewCacheService(600, 1200)
	}

	validator := services.NewRecordValidator()
	ledger := services.NewTaskLedger(repos.Tasks, cacheSvc, cfg.TaskMaxRetries, cfg.TaskStatusTTL)

	svcs := &Services{
		Cache:       cacheSvc,
		Validator:   validator,
		Ledger:      ledger,
		Ingestion:   services.NewIngestionService(repos.Records, repos.KPIs, validator, ledger, dispatcher),
		Aggregation: services.NewAggregationService(repos.Records, cacheSvc, cfg.CacheTTL),
	}

	return &Dependencies{
		Repo:     repos,
		Services: svcs,
	}, nil
}
