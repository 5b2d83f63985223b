package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/sharpline/internal/database"
	"github.com/yourusername/sharpline/internal/lines"
	"github.com/yourusername/sharpline/internal/models"
)

// PostgresLineSnapshotRepository implements LineSnapshotRepository for PostgreSQL
type PostgresLineSnapshotRepository struct {
	db *database.DB
}

// NewPostgresLineSnapshotRepository creates a new line snapshot repository
func NewPostgresLineSnapshotRepository(db *database.DB) LineSnapshotRepository {
	return &PostgresLineSnapshotRepository{db: db}
}

// Insert inserts a single line snapshot
func (r *PostgresLineSnapshotRepository) Insert(ctx context.Context, gameID string, snap lines.Snapshot) error {
	bookSpreads, err := json.Marshal(snap.BookSpreads)
	if err != nil {
		return fmt.Errorf("failed to marshal book spreads: %w", err)
	}

	query := `
		INSERT INTO line_snapshots (game_id, captured_at, spread, total, home_ml, away_ml, book_spreads)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.GetPool().Exec(ctx, query,
		gameID, snap.Timestamp, snap.Spread, snap.Total, snap.HomeML, snap.AwayML, bookSpreads,
	)
	if err != nil {
		return fmt.Errorf("failed to insert line snapshot: %w", err)
	}

	return nil
}

// GetByGameID retrieves line snapshots for a game within a time range
func (r *PostgresLineSnapshotRepository) GetByGameID(ctx context.Context, gameID string, start, end time.Time) ([]lines.Snapshot, error) {
	query := `
		SELECT captured_at, spread, total, home_ml, away_ml, book_spreads
		FROM line_snapshots
		WHERE game_id = $1 AND captured_at >= $2 AND captured_at <= $3
		ORDER BY captured_at ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, gameID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query line snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []lines.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}

	return snaps, rows.Err()
}

// GetLatest retrieves the most recent line snapshot for a game
func (r *PostgresLineSnapshotRepository) GetLatest(ctx context.Context, gameID string) (*lines.Snapshot, error) {
	query := `
		SELECT captured_at, spread, total, home_ml, away_ml, book_spreads
		FROM line_snapshots
		WHERE game_id = $1
		ORDER BY captured_at DESC
		LIMIT 1
	`

	rows, err := r.db.GetPool().Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest line snapshot: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to get latest line snapshot: %w", err)
		}
		return nil, models.ErrNotFound
	}

	snap, err := scanSnapshot(rows)
	if err != nil {
		return nil, err
	}
	return &snap, rows.Err()
}

func scanSnapshot(rows pgx.Rows) (lines.Snapshot, error) {
	var snap lines.Snapshot
	var bookSpreads []byte
	if err := rows.Scan(&snap.Timestamp, &snap.Spread, &snap.Total, &snap.HomeML, &snap.AwayML, &bookSpreads); err != nil {
		return snap, fmt.Errorf("failed to scan line snapshot: %w", err)
	}
	if len(bookSpreads) > 0 {
		if err := json.Unmarshal(bookSpreads, &snap.BookSpreads); err != nil {
			return snap, fmt.Errorf("failed to unmarshal book spreads: %w", err)
		}
	}
	return snap, nil
}
