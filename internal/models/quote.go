package models

import "github.com/shopspring/decimal"

// OddsQuote is one venue's price for one side of a market, supplied by the
// provider layer per call.
type OddsQuote struct {
	Venue        string      `json:"venue"`
	Market       OutcomeType `json:"market"`
	OutcomeSide  string      `json:"outcome_side"` // team name, "Over" or "Under"
	AmericanOdds int         `json:"american_odds"`
	Point        *float64    `json:"point,omitempty"` // spread or total line where applicable
}

// ArbitrageOpportunity describes a two-sided position whose combined implied
// probability is below 1.
type ArbitrageOpportunity struct {
	SideA            OddsQuote       `json:"side_a"`
	SideB            OddsQuote       `json:"side_b"`
	StakeA           decimal.Decimal `json:"stake_a"`
	StakeB           decimal.Decimal `json:"stake_b"`
	GuaranteedProfit decimal.Decimal `json:"guaranteed_profit"`
	ROIPct           decimal.Decimal `json:"roi_pct"`
	TotalImpliedPct  float64         `json:"total_implied_pct"`
}

// ExecutionRecommendation converts an edge into a concrete, sized action at
// the best available venue.
type ExecutionRecommendation struct {
	Edge             Edge            `json:"edge"`
	Venue            string          `json:"venue"`
	AmericanOdds     int             `json:"american_odds"`
	EVPerUnit        float64         `json:"ev_per_unit"`
	KellyFraction    float64         `json:"kelly_fraction"`
	RecommendedStake decimal.Decimal `json:"recommended_stake"`
}
