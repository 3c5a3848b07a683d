package database

import (
	"context"
	"fmt"

	"github.com/yourusername/edge-finder/internal/config"
)

// schema contains the DDL for all tables used by the tool. Statements are
// idempotent so Initialize can run on every startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id UUID PRIMARY KEY,
		source_id TEXT NOT NULL,
		source TEXT NOT NULL,
		sport TEXT NOT NULL DEFAULT '',
		league TEXT NOT NULL DEFAULT '',
		home_team TEXT NOT NULL DEFAULT '',
		away_team TEXT NOT NULL DEFAULT '',
		start_time TIMESTAMPTZ,
		status TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (source, source_id)
	)`,
	`CREATE TABLE IF NOT EXISTS odds_quotes (
		time TIMESTAMPTZ NOT NULL,
		event_id UUID NOT NULL REFERENCES events(id),
		market TEXT NOT NULL,
		outcome TEXT NOT NULL,
		bookmaker TEXT NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		handicap DOUBLE PRECISION,
		event_name TEXT NOT NULL DEFAULT '',
		market_name TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_odds_quotes_event_time
		ON odds_quotes (event_id, time DESC)`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		risk_tolerance TEXT NOT NULL DEFAULT 'medium',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS bets (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		event_id UUID,
		event_name TEXT NOT NULL DEFAULT '',
		market TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL DEFAULT '',
		bookmaker TEXT NOT NULL DEFAULT '',
		model_name TEXT NOT NULL,
		odds DOUBLE PRECISION NOT NULL,
		stake NUMERIC(12,2) NOT NULL,
		probability DOUBLE PRECISION NOT NULL DEFAULT 0,
		ev DOUBLE PRECISION NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'placed',
		placed_at TIMESTAMPTZ NOT NULL,
		settled_at TIMESTAMPTZ,
		profit_loss NUMERIC(12,2),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bets_user_placed
		ON bets (user_id, placed_at DESC)`,
	`CREATE TABLE IF NOT EXISTS prediction_models (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		version TEXT NOT NULL,
		model_type TEXT NOT NULL,
		path TEXT NOT NULL,
		metrics JSONB,
		hyperparameters JSONB,
		trained_at TIMESTAMPTZ NOT NULL,
		active BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS predictions (
		id UUID PRIMARY KEY,
		model_name TEXT NOT NULL,
		event_id UUID,
		market TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL DEFAULT '',
		probability DOUBLE PRECISION NOT NULL,
		ev DOUBLE PRECISION NOT NULL DEFAULT 0,
		features JSONB,
		predicted_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_predictions_model_time
		ON predictions (model_name, predicted_at DESC)`,
}

// Initialize creates a database connection pool and ensures the schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema applies the DDL statements for all tables
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
