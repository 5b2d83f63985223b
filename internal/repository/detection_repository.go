package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yourusername/sharpline/internal/database"
	"github.com/yourusername/sharpline/internal/models"
)

// PostgresDetectionRepository implements DetectionRepository for PostgreSQL
type PostgresDetectionRepository struct {
	db *database.DB
}

// NewPostgresDetectionRepository creates a new detection repository
func NewPostgresDetectionRepository(db *database.DB) DetectionRepository {
	return &PostgresDetectionRepository{db: db}
}

// Insert records a detection result
func (r *PostgresDetectionRepository) Insert(ctx context.Context, gameID, team string, det models.Detection) error {
	edges, err := json.Marshal(det.Edges)
	if err != nil {
		return fmt.Errorf("failed to marshal edges: %w", err)
	}

	query := `
		INSERT INTO detections (game_id, team, status, sample_size, avg_similarity, edges)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.db.GetPool().Exec(ctx, query,
		gameID, team, string(det.Status), det.SampleSize, det.AvgSimilarity, edges,
	)
	if err != nil {
		return fmt.Errorf("failed to insert detection: %w", err)
	}

	return nil
}

// GetByGameID retrieves detection results for a game, newest first
func (r *PostgresDetectionRepository) GetByGameID(ctx context.Context, gameID string) ([]*models.Detection, error) {
	query := `
		SELECT status, sample_size, avg_similarity, edges
		FROM detections
		WHERE game_id = $1
		ORDER BY detected_at DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query detections: %w", err)
	}
	defer rows.Close()

	var detections []*models.Detection
	for rows.Next() {
		det := &models.Detection{}
		var status string
		var edges []byte
		if err := rows.Scan(&status, &det.SampleSize, &det.AvgSimilarity, &edges); err != nil {
			return nil, fmt.Errorf("failed to scan detection: %w", err)
		}
		det.Status = models.DetectionStatus(status)
		if err := json.Unmarshal(edges, &det.Edges); err != nil {
			return nil, fmt.Errorf("failed to unmarshal edges: %w", err)
		}
		detections = append(detections, det)
	}

	return detections, rows.Err()
}
