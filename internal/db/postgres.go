package db

import (
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"hotelpulse/internal/config"
)

var DB *sqlx.DB

// InitPostgres connects the sqlx handle used by the health check and the
// raw-SQL summary queries. Startup races the database container, so the
// connect is retried with a constant backoff.
func InitPostgres(cfg *config.Config) error {
	connect := func() error {
		conn, err := sqlx.Connect("postgres", cfg.PostgresDSN())
		if err != nil {
			return err
		}
		DB = conn
		return nil
	}

	return backoff.Retry(connect,
		backoff.WithMaxRetries(backoff.NewConstantBackOff(500*time.Millisecond), 10))
}
