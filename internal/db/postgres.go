package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Connect opens the pool, pings it and makes sure the schema exists.
func Connect(ctx context.Context, dsn string, maxConns int32, log *zap.Logger) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL not set")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if maxConns > 0 {
		config.MaxConns = maxConns
	}
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}

	log.Info("connected to postgres", zap.Int32("max_conns", config.MaxConns))

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	log.Info("schema initialized")
	return pool, nil
}

// schema is applied in order on every boot; each statement is idempotent.
var schema = []string{
	// -------------------------------
	// USERS
	// -------------------------------
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		password VARCHAR(255) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	// -------------------------------
	// FAMILIES
	// -------------------------------
	`CREATE TABLE IF NOT EXISTS families (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS families_user_id_idx ON families (user_id)`,

	`CREATE TABLE IF NOT EXISTS family_members (
		id UUID PRIMARY KEY,
		family_id UUID NOT NULL REFERENCES families(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'other',
		age INTEGER NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS allergies (
		id UUID PRIMARY KEY,
		member_id UUID NOT NULL REFERENCES family_members(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		severity VARCHAR(32) NOT NULL,
		notes TEXT NULL
	)`,

	// -------------------------------
	// SCANS
	// -------------------------------
	`CREATE TABLE IF NOT EXISTS scan_history (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		ingredients TEXT NOT NULL,
		analysis TEXT NOT NULL,
		detected_allergens TEXT[] NOT NULL DEFAULT '{}',
		risk_level VARCHAR(16) NOT NULL,
		is_problematic BOOLEAN NOT NULL DEFAULT FALSE,
		recommendations TEXT[] NOT NULL DEFAULT '{}',
		metadata JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS scan_history_user_created_idx ON scan_history (user_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS label_uploads (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		object_key VARCHAR(500) NOT NULL,
		original_filename VARCHAR(255) NOT NULL,
		status VARCHAR(32) NOT NULL DEFAULT 'UPLOADED',
		raw_text TEXT NULL,
		ingredient_text TEXT NULL,
		scan_id UUID NULL REFERENCES scan_history(id) ON DELETE SET NULL,
		failure_reason TEXT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS label_uploads_status_idx ON label_uploads (status, created_at)`,

	// -------------------------------
	// MEAL PLANS
	// -------------------------------
	`CREATE TABLE IF NOT EXISTS meals (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		plan_date DATE NOT NULL,
		name VARCHAR(255) NOT NULL,
		meal_type VARCHAR(16) NOT NULL,
		ingredients TEXT[] NOT NULL DEFAULT '{}',
		attendees UUID[] NOT NULL DEFAULT '{}',
		notes TEXT NULL,
		prep_time INTEGER NULL,
		cook_time INTEGER NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS meals_user_date_idx ON meals (user_id, plan_date)`,
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
