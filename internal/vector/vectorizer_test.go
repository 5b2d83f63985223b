package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/sharpline/internal/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		x, lo, hi  float64
		want       float64
	}{
		{"midpoint", 110, 100, 120, 0.5},
		{"below range clamps", 90, 100, 120, 0},
		{"above range clamps", 130, 100, 120, 1},
		{"degenerate range yields neutral", 42, 7, 7, 0.5},
		{"lower bound", 100, 100, 120, 0},
		{"upper bound", 120, 100, 120, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Normalize(tt.x, tt.lo, tt.hi), 1e-9)
		})
	}
}

func TestVectorizeDimensionAndBounds(t *testing.T) {
	v := NewVectorizer(DefaultRanges())

	// Defaults only: the vectorizer must be total on a bare record.
	vec := v.Vectorize(models.NewSituationRecord())
	require.Len(t, vec, Dimension)
	require.Len(t, FeatureNames, Dimension)

	for i, x := range vec {
		assert.GreaterOrEqual(t, x, 0.0, "feature %s", FeatureNames[i])
		assert.LessOrEqual(t, x, 1.0, "feature %s", FeatureNames[i])
	}
}

func TestVectorizeDerivedFields(t *testing.T) {
	v := NewVectorizer(DefaultRanges())

	s := models.NewSituationRecord()
	s.IsHome = true
	s.RestDays = 3
	s.OppRestDays = 1
	s.LineOpen = -5.5
	s.LineCurrent = -6.5 // moved toward the team
	s.Moneyline = -250
	s.InjuryImpact = -1

	vec := v.Vectorize(s)

	assert.Equal(t, 1.0, vec[5], "home flag")
	assert.InDelta(t, Normalize(2, -3, 3), vec[7], 1e-9, "rest advantage")
	assert.InDelta(t, Normalize(1.0, 0, 5), vec[12], 1e-9, "line movement magnitude")
	assert.Equal(t, 1.0, vec[13], "line moving toward team")
	assert.Equal(t, 0.0, vec[11], "injury impact folds -1 to 0")
	assert.InDelta(t, 250.0/350.0, vec[17], 1e-9, "moneyline implied prob")
}

func TestVectorizeExtremeInputsStayBounded(t *testing.T) {
	v := NewVectorizer(DefaultRanges())

	s := models.NewSituationRecord()
	s.TeamOffRating = 500
	s.Pace = -10
	s.RestDays = 30
	s.LineOpen = 0
	s.LineCurrent = 40
	s.Spread = -99
	s.PublicPct = 100
	s.SeasonWins = 60
	s.SeasonGames = 60

	for i, x := range v.Vectorize(s) {
		assert.GreaterOrEqual(t, x, 0.0, "feature %s", FeatureNames[i])
		assert.LessOrEqual(t, x, 1.0, "feature %s", FeatureNames[i])
	}
}
