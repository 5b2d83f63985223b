package database

import (
	"context"
	"fmt"

	"github.com/yourusername/sharpline/internal/config"
)

// schema holds the DDL for the tables the engine persists into. Kept
// idempotent so startup can run it unconditionally.
const schema = `
CREATE TABLE IF NOT EXISTS historical_records (
	id UUID PRIMARY KEY,
	game_id TEXT NOT NULL,
	team TEXT NOT NULL,
	opponent TEXT NOT NULL,
	situation JSONB NOT NULL,
	outcome JSONB NOT NULL,
	vector DOUBLE PRECISION[] NOT NULL,
	inserted_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_historical_records_game ON historical_records (game_id);
CREATE INDEX IF NOT EXISTS idx_historical_records_team ON historical_records (team, inserted_at DESC);

CREATE TABLE IF NOT EXISTS line_snapshots (
	id BIGSERIAL PRIMARY KEY,
	game_id TEXT NOT NULL,
	captured_at TIMESTAMPTZ NOT NULL,
	spread DOUBLE PRECISION NOT NULL,
	total DOUBLE PRECISION NOT NULL,
	home_ml INTEGER NOT NULL,
	away_ml INTEGER NOT NULL,
	book_spreads JSONB
);
CREATE INDEX IF NOT EXISTS idx_line_snapshots_game ON line_snapshots (game_id, captured_at DESC);

CREATE TABLE IF NOT EXISTS detections (
	id BIGSERIAL PRIMARY KEY,
	game_id TEXT NOT NULL,
	team TEXT NOT NULL,
	status TEXT NOT NULL,
	sample_size INTEGER NOT NULL,
	avg_similarity DOUBLE PRECISION NOT NULL,
	edges JSONB NOT NULL,
	detected_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_detections_game ON detections (game_id, detected_at DESC);
`

// Initialize creates a database connection pool and ensures the schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	// Create connection pool
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if _, err := db.pool.Exec(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return db, nil
}
