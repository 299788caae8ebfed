package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hotelpulse/internal/db/repositories"
	gormModels "hotelpulse/internal/models/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&gormModels.HotelMetricRecord{},
		&gormModels.KPIMetric{},
		&gormModels.AsyncTask{},
	); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return db
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

// seedRecord inserts one canonical record with derived metrics computed
// the same way ingestion does.
func seedRecord(t *testing.T, repo *repositories.HotelRecordRepository, hotel, location, date string, available, occupied int, revenue float64) {
	t.Helper()

	record := gormModels.HotelMetricRecord{
		HotelName:     hotel,
		Location:      location,
		RoomCount:     available,
		RoomsOccupied: occupied,
		OccupancyRate: OccupancyRate(occupied, available),
		Revenue:       revenue,
		ADR:           ADR(revenue, occupied),
		RevPAR:        RevPAR(revenue, available),
		DateRecorded:  day(date),
		DataSource:    "seed",
		IsValidated:   true,
	}
	if err := repo.Insert(context.Background(), &record); err != nil {
		t.Fatalf("Failed to seed record: %v", err)
	}
}
