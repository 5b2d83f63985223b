package vectorstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yourusername/sharpline/internal/metrics"
	"github.com/yourusername/sharpline/internal/models"
)

// SchemaVersion identifies the persisted container layout. Bump on any
// incompatible change to the record encoding.
const SchemaVersion = 1

// container is the on-disk format: an explicit, versioned field list so the
// store is portable and verifiable independent of this implementation.
type container struct {
	SchemaVersion int                        `json:"schema_version"`
	Dimension     int                        `json:"dimension"`
	Records       []*models.HistoricalRecord `json:"records"`
}

// Persist writes the full record set to the configured path. The write goes
// through a temp file and rename so a crash never leaves a torn store.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(container{
		SchemaVersion: SchemaVersion,
		Dimension:     s.opts.Dimension,
		Records:       s.records,
	})
	if err != nil {
		return fmt.Errorf("failed to encode vector store: %w", err)
	}

	if dir := filepath.Dir(s.opts.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	tmp := s.opts.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write vector store: %w", err)
	}
	if err := os.Rename(tmp, s.opts.Path); err != nil {
		return fmt.Errorf("failed to replace vector store file: %w", err)
	}

	if s.logger != nil {
		s.logger.WithField("records", len(s.records)).Info("Vector store persisted")
	}
	return nil
}

// Reload replaces the in-memory record set with the persisted one. A missing
// or unreadable file degrades to an empty, valid store; records whose
// dimension disagrees with the active configuration are dropped and counted.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.opts.Path)
	if err != nil {
		if !os.IsNotExist(err) && s.logger != nil {
			s.logger.WithError(err).Warn("Vector store unreadable, starting empty")
		}
		s.resetLocked(nil)
		return nil
	}

	var c container
	if err := json.Unmarshal(data, &c); err != nil {
		if s.logger != nil {
			s.logger.WithError(err).Warn("Vector store corrupt, starting empty")
		}
		s.resetLocked(nil)
		return nil
	}

	if c.SchemaVersion != SchemaVersion && s.logger != nil {
		s.logger.WithFields(map[string]interface{}{
			"file_version":   c.SchemaVersion,
			"active_version": SchemaVersion,
		}).Warn("Vector store schema version mismatch")
	}

	kept := make([]*models.HistoricalRecord, 0, len(c.Records))
	dropped := 0
	for _, rec := range c.Records {
		if len(rec.Vector) != s.opts.Dimension {
			dropped++
			continue
		}
		kept = append(kept, rec)
	}
	if dropped > 0 && s.logger != nil {
		s.logger.WithField("dropped", dropped).Warn("Dropped records with stale vector dimension")
	}

	s.resetLocked(kept)
	if s.logger != nil {
		s.logger.WithField("records", len(kept)).Info("Vector store loaded")
	}
	return nil
}

func (s *Store) resetLocked(records []*models.HistoricalRecord) {
	s.records = records
	metrics.StoreRecords.Set(float64(len(records)))
	s.rebuildLocked()
}
