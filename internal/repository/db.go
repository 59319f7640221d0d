// Package repository persists finished-encounter reports to PostgreSQL.
// Persistence is optional: the server runs fully in-memory when no
// database URL is configured.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/sandsofduat/duat-server/internal/config"
)

// DB wraps the pgx connection pool.
type DB struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewDB connects to PostgreSQL and verifies the connection. The schema is
// created if missing.
func NewDB(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &DB{pool: pool, logger: logger}
	if err := db.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) migrate(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS encounter_reports (
			session_id TEXT PRIMARY KEY,
			enemy_id TEXT NOT NULL,
			enemy_name TEXT NOT NULL,
			outcome TEXT NOT NULL,
			turns INT NOT NULL,
			duration_ms BIGINT NOT NULL,
			player_health INT NOT NULL,
			enemy_health INT NOT NULL,
			cards_played INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("create encounter_reports table: %w", err)
	}
	return nil
}

// Pool exposes the underlying pool for repositories.
func (db *DB) Pool() *pgxpool.Pool { return db.pool }

// Stats returns connection pool statistics.
func (db *DB) Stats() *pgxpool.Stat { return db.pool.Stat() }

// Close releases all pooled connections.
func (db *DB) Close() { db.pool.Close() }
