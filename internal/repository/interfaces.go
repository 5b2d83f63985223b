// Package repository provides PostgreSQL persistence for historical records,
// line snapshots and detection results.
package repository

import (
	"context"
	"time"

	"github.com/yourusername/sharpline/internal/lines"
	"github.com/yourusername/sharpline/internal/models"
)

// HistoricalRecordRepository persists labeled situation/outcome pairs.
type HistoricalRecordRepository interface {
	Insert(ctx context.Context, rec *models.HistoricalRecord) error
	InsertBatch(ctx context.Context, recs []*models.HistoricalRecord) error
	GetAll(ctx context.Context) ([]*models.HistoricalRecord, error)
	GetByTeam(ctx context.Context, team string, limit int) ([]*models.HistoricalRecord, error)
	Count(ctx context.Context) (int, error)
}

// LineSnapshotRepository persists the line movement history per game.
type LineSnapshotRepository interface {
	Insert(ctx context.Context, gameID string, snap lines.Snapshot) error
	GetByGameID(ctx context.Context, gameID string, start, end time.Time) ([]lines.Snapshot, error)
	GetLatest(ctx context.Context, gameID string) (*lines.Snapshot, error)
}

// DetectionRepository persists detection results for later calibration.
type DetectionRepository interface {
	Insert(ctx context.Context, gameID, team string, det models.Detection) error
	GetByGameID(ctx context.Context, gameID string) ([]*models.Detection, error)
}
