// Package database opens the PostgreSQL pool and keeps the schema up to date.
package database

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	log "github.com/sirupsen/logrus"

	"cloud-drive/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Connect creates the connection pool and verifies that the database answers.
func Connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	log.Info("Initializing database")

	if err := cfg.ValidateDatabase(); err != nil {
		return nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("configure database: %w", err)
	}

	poolConfig.MinConns = 5
	poolConfig.MaxConns = 30
	poolConfig.MaxConnIdleTime = time.Minute * 2
	poolConfig.HealthCheckPeriod = time.Minute * 1

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info("Connected to database")
	return pool, nil
}

// Migrate applies all embedded goose migrations that have not run yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	log.Info("Database migrations applied")
	return nil
}
