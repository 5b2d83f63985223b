// Package execution converts detected edges into sized, venue-specific
// recommendations: best quote selection, arbitrage, expected value and
// fractional-Kelly staking.
package execution

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/sharpline/internal/metrics"
	"github.com/yourusername/sharpline/internal/models"
	"github.com/yourusername/sharpline/internal/odds"
)

// Config holds staking parameters.
type Config struct {
	KellyFraction float64 // fraction of full Kelly, for variance control
	Bankroll      decimal.Decimal
	ArbStake      decimal.Decimal // total stake split across an arbitrage pair
}

// DefaultConfig returns conservative defaults.
func DefaultConfig() Config {
	return Config{
		KellyFraction: 0.25,
		Bankroll:      decimal.NewFromInt(1000),
		ArbStake:      decimal.NewFromInt(100),
	}
}

// Planner builds execution recommendations from edges and venue quotes.
type Planner struct {
	cfg    Config
	logger *logrus.Logger
}

// NewPlanner creates a planner.
func NewPlanner(cfg Config, logger *logrus.Logger) *Planner {
	if cfg.KellyFraction <= 0 {
		cfg.KellyFraction = 0.25
	}
	return &Planner{cfg: cfg, logger: logger}
}

// Plan selects the best venue for the edge's recommended side and sizes the
// stake. Missing quotes yield ErrNoQuotes: no recommendation, not a failure.
func (p *Planner) Plan(e models.Edge, situation models.SituationRecord, quotes []models.OddsQuote) (*models.ExecutionRecommendation, error) {
	side := recommendedSide(e, situation)

	best, ok := BestQuote(quotes, e.Type, side)
	if !ok {
		return nil, models.ErrNoQuotes
	}

	prob := e.TargetProb / 100
	ev := ExpectedValue(prob, best.AmericanOdds)
	kelly := KellyFraction(prob, best.AmericanOdds, p.cfg.KellyFraction)
	stake := p.cfg.Bankroll.Mul(decimal.NewFromFloat(kelly)).Round(2)

	rec := &models.ExecutionRecommendation{
		Edge:             e,
		Venue:            best.Venue,
		AmericanOdds:     best.AmericanOdds,
		EVPerUnit:        ev,
		KellyFraction:    kelly,
		RecommendedStake: stake,
	}

	if p.logger != nil {
		p.logger.WithFields(logrus.Fields{
			"market":    e.Type,
			"direction": e.Direction,
			"venue":     best.Venue,
			"odds":      best.AmericanOdds,
			"ev":        ev,
			"stake":     stake.String(),
		}).Info("Execution recommendation")
	}
	return rec, nil
}

// recommendedSide maps an edge's direction to the quoted outcome side.
func recommendedSide(e models.Edge, situation models.SituationRecord) string {
	switch e.Type {
	case models.OutcomeTotal:
		if e.Direction == models.DirectionOver {
			return "Over"
		}
		return "Under"
	default:
		if e.Direction == models.DirectionFade {
			return situation.Opponent
		}
		return situation.Team
	}
}

// BestQuote returns the quote maximizing bettor value for the given market
// and side. American odds are not directly ordinal across signs, so the
// comparison always goes through decimal odds.
func BestQuote(quotes []models.OddsQuote, market models.OutcomeType, side string) (models.OddsQuote, bool) {
	var best models.OddsQuote
	bestDec := 0.0
	found := false

	for _, q := range quotes {
		if q.Market != market || q.OutcomeSide != side {
			continue
		}
		dec := odds.AmericanToDecimal(q.AmericanOdds)
		if !found || dec > bestDec {
			best, bestDec, found = q, dec, true
		}
	}
	return best, found
}

// ExpectedValue is the per-unit EV of a bet: prob·profit − (1−prob)·1.
func ExpectedValue(prob float64, american int) float64 {
	profit := odds.ProfitPerUnit(american)
	return prob*profit - (1 - prob)
}

// KellyFraction returns the fractional-Kelly stake as a fraction of
// bankroll: f* = (b·p − q)/b scaled by the configured fraction, floored at
// zero so a negative-edge bet is never recommended.
func KellyFraction(prob float64, american int, fraction float64) float64 {
	b := odds.AmericanToDecimal(american) - 1
	if b <= 0 {
		return 0
	}
	kelly := (b*prob - (1 - prob)) / b
	return math.Max(0, kelly*fraction)
}

// DetectArbitrage checks a two-sided market for a guaranteed-profit split.
// An arbitrage exists iff the best quotes' implied probabilities sum below
// one; stakes are split proportionally so both payouts equal out.
func (p *Planner) DetectArbitrage(sideA, sideB models.OddsQuote) *models.ArbitrageOpportunity {
	decA := odds.AmericanToDecimal(sideA.AmericanOdds)
	decB := odds.AmericanToDecimal(sideB.AmericanOdds)

	probA := odds.DecimalToImpliedProb(decA)
	probB := odds.DecimalToImpliedProb(decB)
	totalProb := probA + probB
	if totalProb >= 1 {
		return nil
	}

	total := p.cfg.ArbStake
	stakeA := total.Mul(decimal.NewFromFloat(probA / totalProb)).Round(2)
	stakeB := total.Sub(stakeA)

	payoutA := stakeA.Mul(decimal.NewFromFloat(decA))
	payoutB := stakeB.Mul(decimal.NewFromFloat(decB))
	minPayout := decimal.Min(payoutA, payoutB)

	profit := minPayout.Sub(total).Round(2)
	roi := profit.Div(total).Mul(decimal.NewFromInt(100)).Round(2)

	metrics.ArbitrageOpportunitiesTotal.Inc()
	if p.logger != nil {
		p.logger.WithFields(logrus.Fields{
			"venue_a":       sideA.Venue,
			"venue_b":       sideB.Venue,
			"total_implied": totalProb,
			"profit":        profit.String(),
		}).Info("Arbitrage opportunity detected")
	}

	return &models.ArbitrageOpportunity{
		SideA:            sideA,
		SideB:            sideB,
		StakeA:           stakeA,
		StakeB:           stakeB,
		GuaranteedProfit: profit,
		ROIPct:           roi,
		TotalImpliedPct:  totalProb * 100,
	}
}
