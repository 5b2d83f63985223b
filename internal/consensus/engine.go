// Package consensus aggregates historical outcomes of similar situations
// into target probabilities per market.
package consensus

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/sharpline/internal/metrics"
	"github.com/yourusername/sharpline/internal/models"
	"github.com/yourusername/sharpline/internal/vectorstore"
)

// Estimate holds the similarity-weighted target probabilities derived from
// historical neighbors.
type Estimate struct {
	WinProb       float64
	CoverProb     float64
	OverProb      float64
	SampleSize    int
	AvgSimilarity float64
}

// Config holds the engine's sampling knobs.
type Config struct {
	TopK          int
	MinSimilarity float64
	MinSampleSize int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		TopK:          50,
		MinSimilarity: 0.75,
		MinSampleSize: 10,
	}
}

// Engine queries the vector store and computes weighted consensus
// probabilities. A detection call is a pure read over the store snapshot.
type Engine struct {
	store  vectorstore.VectorStore
	cfg    Config
	logger *logrus.Logger
}

// NewEngine creates a consensus engine over the given store.
func NewEngine(store vectorstore.VectorStore, cfg Config, logger *logrus.Logger) *Engine {
	if cfg.TopK <= 0 {
		cfg.TopK = 50
	}
	return &Engine{store: store, cfg: cfg, logger: logger}
}

// Estimate computes target probabilities for the situation encoded by vec.
// Fewer qualifying neighbors than MinSampleSize yields a typed
// InsufficientDataError: a normal outcome, not a failure.
//
// Each outcome rate is a similarity-weighted mean, so closer historical
// matches carry proportionally more influence than marginal ones.
func (e *Engine) Estimate(vec []float64) (*Estimate, error) {
	neighbors, err := e.store.Query(vec, e.cfg.TopK, e.cfg.MinSimilarity)
	if err != nil {
		return nil, fmt.Errorf("consensus query failed: %w", err)
	}

	if len(neighbors) < e.cfg.MinSampleSize {
		metrics.InsufficientDataTotal.Inc()
		return nil, &models.InsufficientDataError{
			SampleSize: len(neighbors),
			Required:   e.cfg.MinSampleSize,
		}
	}

	var totalWeight, winW, coverW, overW float64
	for _, n := range neighbors {
		totalWeight += n.Similarity
		if n.Record.Outcome.Won {
			winW += n.Similarity
		}
		if n.Record.Outcome.Covered {
			coverW += n.Similarity
		}
		if n.Record.Outcome.TotalOver {
			overW += n.Similarity
		}
	}

	est := &Estimate{
		WinProb:       winW / totalWeight,
		CoverProb:     coverW / totalWeight,
		OverProb:      overW / totalWeight,
		SampleSize:    len(neighbors),
		AvgSimilarity: totalWeight / float64(len(neighbors)),
	}

	if e.logger != nil {
		e.logger.WithFields(logrus.Fields{
			"sample_size":    est.SampleSize,
			"avg_similarity": est.AvgSimilarity,
			"win_prob":       est.WinProb,
		}).Debug("Consensus estimate computed")
	}
	return est, nil
}
