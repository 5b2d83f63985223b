package execution

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/sharpline/internal/models"
)

func quote(venue string, market models.OutcomeType, side string, american int) models.OddsQuote {
	return models.OddsQuote{Venue: venue, Market: market, OutcomeSide: side, AmericanOdds: american}
}

func TestBestQuoteConvertsThroughDecimalOdds(t *testing.T) {
	quotes := []models.OddsQuote{
		quote("draftkings", models.OutcomeMoneyline, "Lakers", -115),
		quote("fanduel", models.OutcomeMoneyline, "Lakers", -105),
		quote("betmgm", models.OutcomeMoneyline, "Lakers", 102),
		quote("caesars", models.OutcomeMoneyline, "Celtics", 250),
	}

	// +102 (dec 2.02) beats -105 (dec ~1.952): a naive integer comparison of
	// mixed-sign American odds would also pick it, but -105 vs -115 only
	// orders correctly through decimal.
	best, ok := BestQuote(quotes, models.OutcomeMoneyline, "Lakers")
	require.True(t, ok)
	assert.Equal(t, "betmgm", best.Venue)

	negOnly := quotes[:2]
	best, ok = BestQuote(negOnly, models.OutcomeMoneyline, "Lakers")
	require.True(t, ok)
	assert.Equal(t, "fanduel", best.Venue)

	_, ok = BestQuote(quotes, models.OutcomeSpread, "Lakers")
	assert.False(t, ok, "no quotes for market")
}

func TestExpectedValue(t *testing.T) {
	// p=0.55 at +100: EV = 0.55 - 0.45 = 0.10
	assert.InDelta(t, 0.10, ExpectedValue(0.55, 100), 1e-9)
	// p=0.5 at -110: negative EV (the vig)
	assert.Less(t, ExpectedValue(0.5, -110), 0.0)
	// p=0.75 at +122
	assert.InDelta(t, 0.75*1.22-0.25, ExpectedValue(0.75, 122), 1e-9)
}

func TestKellyFraction(t *testing.T) {
	// p=0.50 at +120: b=1.2, f* = (1.2*0.50-0.50)/1.2 ≈ 0.0833
	full := KellyFraction(0.50, 120, 1.0)
	assert.InDelta(t, (1.2*0.50-0.50)/1.2, full, 1e-9)
	assert.Greater(t, full, 0.0)

	// Quarter Kelly scales linearly.
	assert.InDelta(t, full*0.25, KellyFraction(0.50, 120, 0.25), 1e-9)
}

func TestKellyFractionNeverNegative(t *testing.T) {
	// p=0.45 at +120: raw f* = (1.2*0.45-0.55)/1.2 ≈ -0.0083, clipped.
	assert.Equal(t, 0.0, KellyFraction(0.45, 120, 1.0))

	// Deeper underdog, same floor.
	assert.Equal(t, 0.0, KellyFraction(0.30, 120, 0.25))
}

func TestDetectArbitrage(t *testing.T) {
	p := NewPlanner(DefaultConfig(), nil)

	// +150 (implied 0.40) vs -105 (implied ≈0.512): sum ≈0.912 < 1.
	a := quote("fanduel", models.OutcomeMoneyline, "Lakers", 150)
	b := quote("draftkings", models.OutcomeMoneyline, "Celtics", -105)

	arb := p.DetectArbitrage(a, b)
	require.NotNil(t, arb)
	assert.InDelta(t, 91.22, arb.TotalImpliedPct, 0.1)
	assert.True(t, arb.GuaranteedProfit.IsPositive())
	assert.True(t, arb.ROIPct.IsPositive())

	total := arb.StakeA.Add(arb.StakeB)
	assert.True(t, total.Equal(decimal.NewFromInt(100)), "stakes split the configured total, got %s", total)

	// Both payouts clear the total stake: profit is guaranteed either way.
	payoutA := arb.StakeA.Mul(decimal.NewFromFloat(2.5))
	payoutB := arb.StakeB.Mul(decimal.NewFromFloat(100.0/105.0 + 1))
	assert.True(t, payoutA.GreaterThan(total))
	assert.True(t, payoutB.GreaterThan(total))
}

func TestDetectArbitrageNoneWhenImpliedSumAtLeastOne(t *testing.T) {
	p := NewPlanner(DefaultConfig(), nil)

	// Standard two-sided -110/-110: implied sum ≈ 1.048.
	a := quote("fanduel", models.OutcomeMoneyline, "Lakers", -110)
	b := quote("draftkings", models.OutcomeMoneyline, "Celtics", -110)
	assert.Nil(t, p.DetectArbitrage(a, b))
}

func TestPlanPicksBestVenueAndSizesStake(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bankroll = decimal.NewFromInt(2000)
	p := NewPlanner(cfg, nil)

	e := models.Edge{
		Type:       models.OutcomeMoneyline,
		Direction:  models.DirectionBet,
		TargetProb: 55, // percent
	}
	s := models.NewSituationRecord()
	s.Team = "Lakers"
	s.Opponent = "Celtics"

	quotes := []models.OddsQuote{
		quote("draftkings", models.OutcomeMoneyline, "Lakers", -110),
		quote("fanduel", models.OutcomeMoneyline, "Lakers", 105),
		quote("betmgm", models.OutcomeMoneyline, "Celtics", -120),
	}

	rec, err := p.Plan(e, s, quotes)
	require.NoError(t, err)
	assert.Equal(t, "fanduel", rec.Venue)
	assert.Equal(t, 105, rec.AmericanOdds)
	assert.Greater(t, rec.EVPerUnit, 0.0)
	assert.Greater(t, rec.KellyFraction, 0.0)

	wantStake := decimal.NewFromInt(2000).Mul(decimal.NewFromFloat(rec.KellyFraction)).Round(2)
	assert.True(t, rec.RecommendedStake.Equal(wantStake))
}

func TestPlanFadeTargetsOpponentSide(t *testing.T) {
	p := NewPlanner(DefaultConfig(), nil)

	e := models.Edge{Type: models.OutcomeMoneyline, Direction: models.DirectionFade, TargetProb: 60}
	s := models.NewSituationRecord()
	s.Team = "Lakers"
	s.Opponent = "Celtics"

	quotes := []models.OddsQuote{
		quote("draftkings", models.OutcomeMoneyline, "Celtics", 110),
	}
	rec, err := p.Plan(e, s, quotes)
	require.NoError(t, err)
	assert.Equal(t, "draftkings", rec.Venue)
}

func TestPlanMissingQuotesIsNoRecommendation(t *testing.T) {
	p := NewPlanner(DefaultConfig(), nil)

	e := models.Edge{Type: models.OutcomeTotal, Direction: models.DirectionOver, TargetProb: 58}
	_, err := p.Plan(e, models.NewSituationRecord(), nil)
	assert.ErrorIs(t, err, models.ErrNoQuotes)
}
