package consensus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/sharpline/internal/models"
)

// stubStore returns canned similarity results.
type stubStore struct {
	results []models.SimilarityResult
	err     error
	dim     int
}

func (s *stubStore) Query(vec []float64, k int, minSim float64) ([]models.SimilarityResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.SimilarityResult, 0, len(s.results))
	for _, r := range s.results {
		if r.Similarity >= minSim {
			out = append(out, r)
		}
	}
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func (s *stubStore) Insert([]float64, models.SituationRecord, models.Outcome) error { return nil }
func (s *stubStore) RebuildIndex()                                                  {}
func (s *stubStore) Persist() error                                                 { return nil }
func (s *stubStore) Reload() error                                                  { return nil }
func (s *stubStore) Len() int                                                       { return len(s.results) }
func (s *stubStore) Dimension() int                                                 { return s.dim }

func neighbors(sim float64, outcomes ...models.Outcome) []models.SimilarityResult {
	results := make([]models.SimilarityResult, 0, len(outcomes))
	for _, o := range outcomes {
		results = append(results, models.SimilarityResult{
			Similarity: sim,
			Record:     &models.HistoricalRecord{Outcome: o},
		})
	}
	return results
}

func TestEstimateInsufficientData(t *testing.T) {
	store := &stubStore{results: neighbors(0.9,
		models.Outcome{Won: true}, models.Outcome{}, models.Outcome{Won: true})}

	engine := NewEngine(store, Config{TopK: 50, MinSimilarity: 0.75, MinSampleSize: 10}, nil)

	_, err := engine.Estimate(make([]float64, 18))
	require.Error(t, err)
	require.True(t, models.IsInsufficientData(err))

	var insufficient *models.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 3, insufficient.SampleSize)
	assert.Equal(t, 10, insufficient.Required)
}

func TestEstimateWeightedMeans(t *testing.T) {
	// Two close winners at 0.9 and two distant losers at 0.8: the weighted
	// win rate must exceed the unweighted 0.5.
	results := append(
		neighbors(0.9, models.Outcome{Won: true, Covered: true}, models.Outcome{Won: true}),
		neighbors(0.8, models.Outcome{}, models.Outcome{Covered: true})...,
	)
	store := &stubStore{results: results}

	engine := NewEngine(store, Config{TopK: 50, MinSimilarity: 0.75, MinSampleSize: 4}, nil)
	est, err := engine.Estimate(make([]float64, 18))
	require.NoError(t, err)

	totalW := 0.9 + 0.9 + 0.8 + 0.8
	assert.InDelta(t, 1.8/totalW, est.WinProb, 1e-9)
	assert.InDelta(t, (0.9+0.8)/totalW, est.CoverProb, 1e-9)
	assert.InDelta(t, 0.0, est.OverProb, 1e-9)
	assert.Equal(t, 4, est.SampleSize)
	assert.InDelta(t, totalW/4, est.AvgSimilarity, 1e-9)
}

func TestEstimateScenarioStrongWinRate(t *testing.T) {
	// Twelve neighbors at similarity 0.80, nine winners: target ≈ 0.75.
	outcomes := make([]models.Outcome, 12)
	for i := 0; i < 9; i++ {
		outcomes[i] = models.Outcome{Won: true}
	}
	store := &stubStore{results: neighbors(0.80, outcomes...)}

	engine := NewEngine(store, DefaultConfig(), nil)
	est, err := engine.Estimate(make([]float64, 18))
	require.NoError(t, err)

	assert.InDelta(t, 0.75, est.WinProb, 1e-9)
	assert.Equal(t, 12, est.SampleSize)
	assert.InDelta(t, 0.80, est.AvgSimilarity, 1e-9)
}
