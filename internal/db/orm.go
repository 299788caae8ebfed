package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	gormModels "hotelpulse/internal/models/gorm"
)

var PgDB *gorm.DB

// InitPostgresORM opens the GORM handle used by every repository and
// migrates the canonical tables.
func InitPostgresORM(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := db.AutoMigrate(
		&gormModels.HotelMetricRecord{},
		&gormModels.KPIMetric{},
		&gormModels.AsyncTask{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	PgDB = db
	return db, nil
}
