package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/worknest/worknest-engine/pkg/config"
)

const (
	applicationName     = "worknest-engine"
	defaultMaxConns     = 25
	maxConnLifetime     = time.Hour
	maxConnIdleTime     = 30 * time.Minute
	healthCheckInterval = time.Minute
)

// DB is the engine's PostgreSQL pool.
type DB struct {
	*pgxpool.Pool
}

// NewConnection opens a pool for cfg and pings it once. Callers retry on
// error while the database is still starting.
func NewConnection(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	poolConfig, err := newPoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("open pool for %s/%s: %w", cfg.Host, cfg.Database, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping %s/%s: %w", cfg.Host, cfg.Database, err)
	}
	return &DB{Pool: pool}, nil
}

// newPoolConfig maps DatabaseConfig onto pgxpool settings.
func newPoolConfig(cfg *config.DatabaseConfig) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConnections
	if poolConfig.MaxConns <= 0 {
		poolConfig.MaxConns = defaultMaxConns
	}
	poolConfig.MaxConnLifetime = maxConnLifetime
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.HealthCheckPeriod = healthCheckInterval

	// Deadlines and activity timestamps are compared in UTC.
	poolConfig.ConnConfig.RuntimeParams["timezone"] = "UTC"
	poolConfig.ConnConfig.RuntimeParams["application_name"] = applicationName
	return poolConfig, nil
}
