package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime settings for the service. Values come from
// environment variables prefixed with HOTELPULSE_ (e.g. HOTELPULSE_PG_HOST),
// with an optional config.yml override for local development.
type Config struct {
	AppEnv     string `mapstructure:"app_env"`
	ServerPort int    `mapstructure:"server_port"`

	PGHost     string `mapstructure:"pg_host"`
	PGPort     string `mapstructure:"pg_port"`
	PGUser     string `mapstructure:"pg_user"`
	PGPassword string `mapstructure:"pg_password"`
	PGDatabase string `mapstructure:"pg_db"`

	RedisHost     string `mapstructure:"redis_host"`
	RedisPort     string `mapstructure:"redis_port"`
	RedisPassword string `mapstructure:"redis_password"`
	UseRedisCache bool   `mapstructure:"use_redis_cache"`

	IngestWorkers    int           `mapstructure:"ingest_workers"`
	TaskMaxRetries   int           `mapstructure:"task_max_retries"`
	TaskTimeout      time.Duration `mapstructure:"task_timeout"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	TaskStatusTTL    time.Duration `mapstructure:"task_status_ttl"`
	ReaperInterval   time.Duration `mapstructure:"reaper_interval"`
}

// Load reads configuration from the environment and an optional config file.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/hotelpulse")
	v.AddConfigPath(".")

	v.SetEnvPrefix("HOTELPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app_env", "development")
	v.SetDefault("server_port", 8080)
	v.SetDefault("pg_host", "localhost")
	v.SetDefault("pg_port", "5432")
	v.SetDefault("pg_user", "hotelpulse")
	v.SetDefault("pg_password", "")
	v.SetDefault("pg_db", "hotelpulse")
	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("use_redis_cache", false)
	v.SetDefault("ingest_workers", 4)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_timeout", 15*time.Minute)
	v.SetDefault("cache_ttl", 5*time.Minute)
	v.SetDefault("task_status_ttl", time.Hour)
	v.SetDefault("reaper_interval", time.Minute)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine, env and defaults cover everything
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// PostgresDSN builds the connection string shared by sqlx and GORM.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

// RedisAddr returns the host:port pair for the Redis client.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}
