// Package vectorstore provides the persistent nearest-neighbor store for
// historical betting situations.
package vectorstore

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/sharpline/internal/metrics"
	"github.com/yourusername/sharpline/internal/models"
)

// VectorStore is the single canonical store interface. The accelerated index
// is an internal strategy, not a separate store: whichever path answers a
// query must produce the same similarities.
type VectorStore interface {
	Insert(vec []float64, situation models.SituationRecord, outcome models.Outcome) error
	Query(vec []float64, k int, minSimilarity float64) ([]models.SimilarityResult, error)
	RebuildIndex()
	Persist() error
	Reload() error
	Len() int
	Dimension() int
}

// Options configures a Store.
type Options struct {
	Dimension    int
	Path         string
	RebuildEvery int  // index rebuild batch size; <=0 disables periodic rebuilds
	UseIndex     bool // false forces brute-force queries
}

// Store is an append-only in-memory vector collection with versioned file
// persistence and an optional L2-normalized inner-product index.
//
// Writes (Insert, RebuildIndex, Persist, Reload) are serialized by the
// mutex; queries take the read lock and, when the index is enabled, search
// an immutable snapshot so a concurrent rebuild never exposes a half-built
// structure.
type Store struct {
	mu      sync.RWMutex
	opts    Options
	records []*models.HistoricalRecord

	index             *flatIndex // copy-on-write; swapped whole on rebuild
	insertsSinceBuild int

	logger *logrus.Logger
}

// New creates an empty store. Call Reload to pick up persisted records.
func New(opts Options, logger *logrus.Logger) *Store {
	if opts.RebuildEvery == 0 {
		opts.RebuildEvery = 100
	}
	return &Store{opts: opts, logger: logger}
}

// Dimension returns the fixed vector dimension.
func (s *Store) Dimension() int {
	return s.opts.Dimension
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Insert appends a historical record. Amortized O(1): the accelerated index
// is only rebuilt every RebuildEvery insertions, not per insert.
func (s *Store) Insert(vec []float64, situation models.SituationRecord, outcome models.Outcome) error {
	if len(vec) != s.opts.Dimension {
		return &models.DimensionError{Want: s.opts.Dimension, Got: len(vec)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]float64, len(vec))
	copy(stored, vec)

	s.records = append(s.records, &models.HistoricalRecord{
		Vector:     stored,
		Situation:  situation,
		Outcome:    outcome,
		InsertedAt: time.Now().UTC(),
	})
	metrics.StoreRecords.Set(float64(len(s.records)))

	s.insertsSinceBuild++
	if s.opts.UseIndex && s.insertsSinceBuild >= s.opts.RebuildEvery {
		s.rebuildLocked()
	}
	return nil
}

// Query returns up to k records with cosine similarity >= minSimilarity,
// sorted descending. An empty store yields an empty result, never an error;
// a dimension mismatch is rejected before any similarity is computed.
func (s *Store) Query(vec []float64, k int, minSimilarity float64) ([]models.SimilarityResult, error) {
	if len(vec) != s.opts.Dimension {
		return nil, &models.DimensionError{Want: s.opts.Dimension, Got: len(vec)}
	}

	start := time.Now()
	defer func() {
		metrics.StoreQueryDuration.Observe(time.Since(start).Seconds())
	}()

	s.mu.RLock()
	idx := s.index
	records := s.records
	s.mu.RUnlock()

	if len(records) == 0 {
		return []models.SimilarityResult{}, nil
	}

	if s.opts.UseIndex && idx != nil && idx.size() == len(records) {
		return idx.search(vec, k, minSimilarity), nil
	}
	return bruteForce(records, vec, k, minSimilarity), nil
}

// RebuildIndex reconstructs the accelerated index from the full record set.
// Safe to call with zero records.
func (s *Store) RebuildIndex() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rebuildLocked()
}

func (s *Store) rebuildLocked() {
	s.insertsSinceBuild = 0
	if !s.opts.UseIndex {
		return
	}
	// Build off to the side, then swap. Readers holding the old pointer keep
	// a consistent view.
	s.index = buildFlatIndex(s.records, s.opts.Dimension)
	metrics.IndexRebuildsTotal.Inc()
	if s.logger != nil {
		s.logger.WithField("records", len(s.records)).Debug("Vector index rebuilt")
	}
}

func bruteForce(records []*models.HistoricalRecord, vec []float64, k int, minSimilarity float64) []models.SimilarityResult {
	results := make([]models.SimilarityResult, 0, k)
	for _, rec := range records {
		sim := CosineSimilarity(vec, rec.Vector)
		if sim >= minSimilarity {
			results = append(results, models.SimilarityResult{Similarity: sim, Record: rec})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}

// CosineSimilarity computes the cosine of the angle between a and b. The
// small epsilon keeps zero vectors from dividing by zero.
func CosineSimilarity(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	return dot / (math.Sqrt(na)*math.Sqrt(nb) + 1e-10)
}
