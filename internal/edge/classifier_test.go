package edge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/sharpline/internal/consensus"
	"github.com/yourusername/sharpline/internal/lines"
	"github.com/yourusername/sharpline/internal/models"
)

func flatEstimate(win, cover, over float64, n int) *consensus.Estimate {
	return &consensus.Estimate{
		WinProb:       win,
		CoverProb:     cover,
		OverProb:      over,
		SampleSize:    n,
		AvgSimilarity: 0.8,
	}
}

func TestNoEdgeBelowThreshold(t *testing.T) {
	c := NewClassifier(DefaultConfig(), nil, nil)

	s := models.NewSituationRecord()
	s.Moneyline = 100 // market implied 0.5 across the board

	// Every advantage below 0.03: nothing emitted.
	det := c.Classify(s, flatEstimate(0.52, 0.48, 0.51, 30))
	assert.Equal(t, models.StatusNoEdge, det.Status)
	assert.Empty(t, det.Edges)
}

func TestThresholdAndStrengthBoundaries(t *testing.T) {
	c := NewClassifier(DefaultConfig(), nil, nil)

	s := models.NewSituationRecord()
	s.Moneyline = 100

	tests := []struct {
		name     string
		winProb  float64
		wantLen  int
		strength models.EdgeStrength
	}{
		{"just below edge threshold", 0.529, 0, ""},
		{"at edge threshold", 0.53, 1, models.StrengthModerate},
		{"just below strong", 0.569, 1, models.StrengthModerate},
		{"at strong threshold", 0.57, 1, models.StrengthStrong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det := c.Classify(s, flatEstimate(tt.winProb, 0.5, 0.5, 30))
			require.Len(t, det.Edges, tt.wantLen)
			if tt.wantLen > 0 {
				assert.Equal(t, tt.strength, det.Edges[0].Strength)
				assert.Equal(t, models.OutcomeMoneyline, det.Edges[0].Type)
			}
		})
	}
}

func TestDirectionsPerMarket(t *testing.T) {
	c := NewClassifier(DefaultConfig(), nil, nil)

	s := models.NewSituationRecord()
	s.Moneyline = 100

	det := c.Classify(s, flatEstimate(0.42, 0.58, 0.41, 30))
	require.Len(t, det.Edges, 3)

	byType := map[models.OutcomeType]models.Edge{}
	for _, e := range det.Edges {
		byType[e.Type] = e
	}
	assert.Equal(t, models.DirectionFade, byType[models.OutcomeMoneyline].Direction)
	assert.Equal(t, models.DirectionCover, byType[models.OutcomeSpread].Direction)
	assert.Equal(t, models.DirectionUnder, byType[models.OutcomeTotal].Direction)
}

func TestConfidenceScalesWithSampleSize(t *testing.T) {
	c := NewClassifier(DefaultConfig(), nil, nil)

	s := models.NewSituationRecord()
	s.Moneyline = 100

	small := c.Classify(s, flatEstimate(0.60, 0.5, 0.5, 15))
	full := c.Classify(s, flatEstimate(0.60, 0.5, 0.5, 30))
	over := c.Classify(s, flatEstimate(0.60, 0.5, 0.5, 90))

	require.Len(t, small.Edges, 1)
	require.Len(t, full.Edges, 1)
	require.Len(t, over.Edges, 1)

	assert.InDelta(t, 0.5*0.10*10, small.Edges[0].Confidence, 1e-9)
	assert.InDelta(t, 1.0*0.10*10, full.Edges[0].Confidence, 1e-9)
	// Saturates at the full sample: more neighbors do not inflate confidence.
	assert.InDelta(t, full.Edges[0].Confidence, over.Edges[0].Confidence, 1e-9)
}

func TestStrongScenarioEmitsStrongBetEdge(t *testing.T) {
	c := NewClassifier(DefaultConfig(), nil, nil)

	// Market prices the side at 0.45; history says 0.75.
	s := models.NewSituationRecord()
	s.Moneyline = 122 // implied ≈ 0.4505

	det := c.Classify(s, flatEstimate(0.75, 0.5, 0.5, 12))
	require.Len(t, det.Edges, 1)

	e := det.Edges[0]
	assert.Equal(t, models.OutcomeMoneyline, e.Type)
	assert.Equal(t, models.DirectionBet, e.Direction)
	assert.Equal(t, models.StrengthStrong, e.Strength)
	assert.Equal(t, models.StatusStrongEdge, det.Status)
	assert.Greater(t, e.AdvantagePct, 25.0)
}

func TestSignalBoostsRecorded(t *testing.T) {
	tracker := lines.NewTracker(lines.DefaultConfig(), nil)
	now := time.Now().UTC()

	// Coordinated two-book move two minutes apart.
	tracker.Record("g1", lines.Snapshot{
		Timestamp:   now.Add(-2 * time.Minute),
		Spread:      -5,
		BookSpreads: map[string]float64{"draftkings": -5, "fanduel": -5},
	})
	tracker.Record("g1", lines.Snapshot{
		Timestamp:   now,
		Spread:      -5.5,
		BookSpreads: map[string]float64{"draftkings": -5.5, "fanduel": -5.5},
	})

	c := NewClassifier(DefaultConfig(), tracker, nil)

	s := models.NewSituationRecord()
	s.GameID = "g1"
	s.Moneyline = 100
	s.PublicPct = 80 // public heavy on team...
	s.LineOpen = -5
	s.LineCurrent = -3 // ...but line moving away: strong RLM

	det := c.Classify(s, flatEstimate(0.60, 0.5, 0.5, 30))
	require.Len(t, det.Edges, 1)

	e := det.Edges[0]
	assert.True(t, e.HasSignal(models.SignalReverseLineMovement))
	assert.True(t, e.HasSignal(models.SignalSteamMove))
	assert.InDelta(t, 1.0*1.2*1.3, e.Confidence, 1e-9)
}

func TestEdgesSortedByConfidence(t *testing.T) {
	c := NewClassifier(DefaultConfig(), nil, nil)

	s := models.NewSituationRecord()
	s.Moneyline = 100

	det := c.Classify(s, flatEstimate(0.54, 0.70, 0.60, 30))
	require.Len(t, det.Edges, 3)
	assert.Equal(t, models.OutcomeSpread, det.Edges[0].Type)
	assert.Equal(t, models.OutcomeTotal, det.Edges[1].Type)
	assert.Equal(t, models.OutcomeMoneyline, det.Edges[2].Type)
}
