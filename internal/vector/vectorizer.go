// Package vector maps situational records onto fixed-length normalized
// feature vectors for similarity search.
package vector

import (
	"math"

	"github.com/yourusername/sharpline/internal/models"
	"github.com/yourusername/sharpline/internal/odds"
)

// FeatureNames lists the vector layout in order. The order and dimension are
// fixed per deployed configuration: changing either invalidates every stored
// vector.
var FeatureNames = []string{
	"team_off_rating", "team_def_rating", "opp_off_rating", "opp_def_rating",
	"pace", "home_advantage", "rest_days", "rest_advantage",
	"recent_form_5", "recent_form_10", "season_win_pct", "injury_impact",
	"line_movement", "line_direction", "public_pct", "total_line",
	"spread", "ml_implied_prob",
}

// Dimension is the fixed vector length.
const Dimension = 18

// Ranges holds the normalization bounds for the numeric features. Values are
// the NBA-scale defaults; they are tunable per deployment but must stay
// constant for the lifetime of a store.
type Ranges struct {
	RatingLo, RatingHi float64
	PaceLo, PaceHi     float64
	RestMax            float64
	RestAdvLo, RestAdvHi float64
	LineMoveMax        float64
	TotalLo, TotalHi   float64
	SpreadLo, SpreadHi float64
}

// DefaultRanges returns the standard normalization bounds.
func DefaultRanges() Ranges {
	return Ranges{
		RatingLo: 100, RatingHi: 120,
		PaceLo: 95, PaceHi: 105,
		RestMax:   7,
		RestAdvLo: -3, RestAdvHi: 3,
		LineMoveMax: 5,
		TotalLo:     200, TotalHi: 250,
		SpreadLo: -15, SpreadHi: 15,
	}
}

// Vectorizer converts SituationRecords into feature vectors. It is pure and
// total: missing fields carry the documented defaults, so Vectorize never
// fails.
type Vectorizer struct {
	ranges Ranges
}

// NewVectorizer creates a vectorizer with the given normalization ranges.
func NewVectorizer(r Ranges) *Vectorizer {
	return &Vectorizer{ranges: r}
}

// Dimension returns the fixed vector length.
func (v *Vectorizer) Dimension() int {
	return Dimension
}

// Normalize maps x from [lo, hi] onto [0, 1], clamping out-of-range values.
// A degenerate range (hi == lo) carries no information and yields 0.5.
func Normalize(x, lo, hi float64) float64 {
	if hi == lo {
		return 0.5
	}
	n := (x - lo) / (hi - lo)
	return math.Max(0, math.Min(1, n))
}

// Vectorize builds the 18-feature vector. Derived fields (rest advantage,
// line movement and direction) are computed before normalization.
func (v *Vectorizer) Vectorize(s models.SituationRecord) []float64 {
	r := v.ranges

	restAdv := float64(s.RestAdvantage())

	lineMove := s.LineMovement()
	// A spread growing more negative means the market moved toward the team.
	var lineDir float64
	switch {
	case lineMove < 0:
		lineDir = 1
	case lineMove > 0:
		lineDir = -1
	}

	homeAdv := 0.0
	if s.IsHome {
		homeAdv = 1.0
	}

	seasonGames := s.SeasonGames
	if seasonGames < 1 {
		seasonGames = 1
	}
	winPct := float64(s.SeasonWins) / float64(seasonGames)

	return []float64{
		Normalize(s.TeamOffRating, r.RatingLo, r.RatingHi),
		Normalize(s.TeamDefRating, r.RatingLo, r.RatingHi),
		Normalize(s.OppOffRating, r.RatingLo, r.RatingHi),
		Normalize(s.OppDefRating, r.RatingLo, r.RatingHi),
		Normalize(s.Pace, r.PaceLo, r.PaceHi),
		homeAdv,
		Normalize(math.Min(float64(s.RestDays), r.RestMax), 0, r.RestMax),
		Normalize(restAdv, r.RestAdvLo, r.RestAdvHi),
		float64(s.Last5Wins) / 5.0,
		float64(s.Last10Wins) / 10.0,
		winPct,
		(s.InjuryImpact + 1) / 2, // fold [-1,1] onto [0,1]
		Normalize(math.Abs(lineMove), 0, r.LineMoveMax),
		(lineDir + 1) / 2,
		s.PublicPct / 100.0,
		Normalize(s.TotalLine, r.TotalLo, r.TotalHi),
		Normalize(s.Spread, r.SpreadLo, r.SpreadHi),
		odds.AmericanToImpliedProb(s.Moneyline),
	}
}
