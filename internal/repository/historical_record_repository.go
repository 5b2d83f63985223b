package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/sharpline/internal/database"
	"github.com/yourusername/sharpline/internal/models"
)

// PostgresHistoricalRecordRepository implements HistoricalRecordRepository for PostgreSQL
type PostgresHistoricalRecordRepository struct {
	db *database.DB
}

// NewPostgresHistoricalRecordRepository creates a new historical record repository
func NewPostgresHistoricalRecordRepository(db *database.DB) HistoricalRecordRepository {
	return &PostgresHistoricalRecordRepository{db: db}
}

// Insert inserts a single historical record
func (r *PostgresHistoricalRecordRepository) Insert(ctx context.Context, rec *models.HistoricalRecord) error {
	situation, outcome, err := marshalRecord(rec)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO historical_records (id, game_id, team, opponent, situation, outcome, vector, inserted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`

	_, err = r.db.GetPool().Exec(ctx, query,
		rec.Situation.ID, rec.Situation.GameID, rec.Situation.Team, rec.Situation.Opponent,
		situation, outcome, rec.Vector, rec.InsertedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert historical record: %w", err)
	}

	return nil
}

// InsertBatch inserts multiple historical records using high-performance batch insert
func (r *PostgresHistoricalRecordRepository) InsertBatch(ctx context.Context, recs []*models.HistoricalRecord) error {
	if len(recs) == 0 {
		return nil
	}

	// Use COPY for high-performance bulk insert
	columns := []string{"id", "game_id", "team", "opponent", "situation", "outcome", "vector", "inserted_at"}

	copyFromSource := make([][]interface{}, len(recs))
	for i, rec := range recs {
		situation, outcome, err := marshalRecord(rec)
		if err != nil {
			return err
		}
		copyFromSource[i] = []interface{}{
			rec.Situation.ID, rec.Situation.GameID, rec.Situation.Team, rec.Situation.Opponent,
			situation, outcome, rec.Vector, rec.InsertedAt,
		}
	}

	count, err := r.db.GetPool().CopyFrom(ctx, pgx.Identifier{"historical_records"}, columns, pgx.CopyFromRows(copyFromSource))
	if err != nil {
		return fmt.Errorf("failed to batch insert historical records: %w", err)
	}

	if count != int64(len(recs)) {
		return fmt.Errorf("inserted %d rows, expected %d", count, len(recs))
	}

	return nil
}

// GetAll retrieves every historical record, oldest first. Used to seed the
// vector store at startup.
func (r *PostgresHistoricalRecordRepository) GetAll(ctx context.Context) ([]*models.HistoricalRecord, error) {
	query := `
		SELECT situation, outcome, vector, inserted_at
		FROM historical_records
		ORDER BY inserted_at ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query historical records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetByTeam retrieves the most recent records for a team
func (r *PostgresHistoricalRecordRepository) GetByTeam(ctx context.Context, team string, limit int) ([]*models.HistoricalRecord, error) {
	query := `
		SELECT situation, outcome, vector, inserted_at
		FROM historical_records
		WHERE team = $1
		ORDER BY inserted_at DESC
		LIMIT $2
	`

	rows, err := r.db.GetPool().Query(ctx, query, team, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query historical records by team: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Count returns the total number of historical records
func (r *PostgresHistoricalRecordRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetPool().QueryRow(ctx, "SELECT COUNT(*) FROM historical_records").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count historical records: %w", err)
	}
	return count, nil
}

func marshalRecord(rec *models.HistoricalRecord) ([]byte, []byte, error) {
	situation, err := json.Marshal(rec.Situation)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal situation: %w", err)
	}
	outcome, err := json.Marshal(rec.Outcome)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal outcome: %w", err)
	}
	return situation, outcome, nil
}

func scanRecords(rows pgx.Rows) ([]*models.HistoricalRecord, error) {
	var records []*models.HistoricalRecord
	for rows.Next() {
		var situation, outcome []byte
		rec := &models.HistoricalRecord{}
		if err := rows.Scan(&situation, &outcome, &rec.Vector, &rec.InsertedAt); err != nil {
			return nil, fmt.Errorf("failed to scan historical record: %w", err)
		}
		if err := json.Unmarshal(situation, &rec.Situation); err != nil {
			return nil, fmt.Errorf("failed to unmarshal situation: %w", err)
		}
		if err := json.Unmarshal(outcome, &rec.Outcome); err != nil {
			return nil, fmt.Errorf("failed to unmarshal outcome: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
