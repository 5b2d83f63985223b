package repository

import (
	"fmt"

	"github.com/yourusername/sharpline/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	HistoricalRecord HistoricalRecordRepository
	LineSnapshot     LineSnapshotRepository
	Detection        DetectionRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		HistoricalRecord: NewPostgresHistoricalRecordRepository(db),
		LineSnapshot:     NewPostgresLineSnapshotRepository(db),
		Detection:        NewPostgresDetectionRepository(db),
	}, nil
}
