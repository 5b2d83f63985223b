package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/sharpline/internal/consensus"
	"github.com/yourusername/sharpline/internal/edge"
	"github.com/yourusername/sharpline/internal/execution"
	"github.com/yourusername/sharpline/internal/models"
	"github.com/yourusername/sharpline/internal/vector"
)

// stubStore returns a fixed neighbor set for every query.
type stubStore struct {
	results []models.SimilarityResult
}

func (s *stubStore) Insert(vec []float64, situation models.SituationRecord, outcome models.Outcome) error {
	return nil
}

func (s *stubStore) Query(vec []float64, k int, minSimilarity float64) ([]models.SimilarityResult, error) {
	return s.results, nil
}

func (s *stubStore) RebuildIndex()  {}
func (s *stubStore) Persist() error { return nil }
func (s *stubStore) Reload() error  { return nil }
func (s *stubStore) Len() int       { return len(s.results) }
func (s *stubStore) Dimension() int { return vector.Dimension }

// neighbors builds n similar situations with the given win count. Cover and
// total outcomes alternate 50/50 so only the moneyline market carries signal.
func neighbors(n, winners int) []models.SimilarityResult {
	out := make([]models.SimilarityResult, n)
	for i := range out {
		out[i] = models.SimilarityResult{
			Similarity: 0.85,
			Record: &models.HistoricalRecord{
				Outcome: models.Outcome{
					Won:       i < winners,
					Covered:   i%2 == 0,
					TotalOver: i%2 == 0,
				},
			},
		}
	}
	return out
}

func newTestService(store *stubStore) *DetectionService {
	vz := vector.NewVectorizer(vector.DefaultRanges())
	engine := consensus.NewEngine(store, consensus.DefaultConfig(), nil)
	classifier := edge.NewClassifier(edge.DefaultConfig(), nil, nil)
	planner := execution.NewPlanner(execution.DefaultConfig(), nil)
	return NewDetectionService(vz, engine, classifier, planner, nil, nil, nil)
}

func TestDetectEmitsEdgeFromHistory(t *testing.T) {
	// 15 of 20 similar situations won; market prices the side near even.
	svc := newTestService(&stubStore{results: neighbors(20, 15)})

	s := models.NewSituationRecord()
	s.GameID = "g1"
	s.Team = "Lakers"
	s.Moneyline = 100

	det, err := svc.Detect(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, models.StatusStrongEdge, det.Status)
	require.Len(t, det.Edges, 1, "spread and total consensus sit at 0.5, only the moneyline has an edge")
	assert.Equal(t, models.OutcomeMoneyline, det.Edges[0].Type)
	assert.Equal(t, models.DirectionBet, det.Edges[0].Direction)
	assert.Equal(t, 20, det.SampleSize)
}

func TestDetectThinSampleIsInsufficientData(t *testing.T) {
	svc := newTestService(&stubStore{results: neighbors(4, 4)})

	det, err := svc.Detect(context.Background(), models.NewSituationRecord())
	require.NoError(t, err, "thin history is a result, not a failure")
	assert.Equal(t, models.StatusInsufficientData, det.Status)
	assert.Equal(t, 4, det.SampleSize)
	assert.Empty(t, det.Edges)
}

func TestRecommendSkipsUnquotedEdges(t *testing.T) {
	svc := newTestService(&stubStore{results: neighbors(20, 15)})

	s := models.NewSituationRecord()
	s.Team = "Lakers"
	s.Opponent = "Celtics"
	s.Moneyline = 100

	det, err := svc.Detect(context.Background(), s)
	require.NoError(t, err)
	require.NotEmpty(t, det.Edges)

	// No quotes at all: no recommendations, no error.
	recs := svc.Recommend(context.Background(), s, det, nil)
	assert.Empty(t, recs)

	quotes := []models.OddsQuote{
		{Venue: "draftkings", Market: models.OutcomeMoneyline, OutcomeSide: "Lakers", AmericanOdds: -105},
	}
	recs = svc.Recommend(context.Background(), s, det, quotes)
	require.Len(t, recs, 1)
	assert.Equal(t, "draftkings", recs[0].Venue)
	assert.True(t, recs[0].RecommendedStake.IsPositive())
}

func TestScanArbitrageFindsCrossVenueSplit(t *testing.T) {
	svc := newTestService(&stubStore{})

	quotes := []models.OddsQuote{
		{Venue: "fanduel", Market: models.OutcomeMoneyline, OutcomeSide: "Lakers", AmericanOdds: 150},
		{Venue: "draftkings", Market: models.OutcomeMoneyline, OutcomeSide: "Celtics", AmericanOdds: -105},
	}

	arbs := svc.ScanArbitrage("Lakers", "Celtics", quotes)
	require.Len(t, arbs, 1)
	assert.True(t, arbs[0].GuaranteedProfit.IsPositive())
}

func TestScanArbitrageIgnoresSameVenuePairs(t *testing.T) {
	svc := newTestService(&stubStore{})

	// Same book on both sides is just the vig, even if the numbers line up.
	quotes := []models.OddsQuote{
		{Venue: "fanduel", Market: models.OutcomeMoneyline, OutcomeSide: "Lakers", AmericanOdds: 150},
		{Venue: "fanduel", Market: models.OutcomeMoneyline, OutcomeSide: "Celtics", AmericanOdds: -105},
	}

	assert.Empty(t, svc.ScanArbitrage("Lakers", "Celtics", quotes))
}
