// Package odds provides American/decimal odds conversions shared by the
// vectorizer, classifier and execution planner.
package odds

import "math"

// AmericanToDecimal converts American odds to decimal odds.
// +150 → 2.50, -150 → 1.667. Zero is not a valid quote; it converts to 2.0
// (even money) so downstream math stays total.
func AmericanToDecimal(american int) float64 {
	if american == 0 {
		return 2.0
	}
	if american > 0 {
		return float64(american)/100.0 + 1.0
	}
	return 100.0/math.Abs(float64(american)) + 1.0
}

// AmericanToImpliedProb converts an American moneyline to the market-implied
// win probability. m=0 is treated as a pick'em (0.5).
func AmericanToImpliedProb(american int) float64 {
	if american == 0 {
		return 0.5
	}
	m := math.Abs(float64(american))
	if american < 0 {
		return m / (m + 100.0)
	}
	return 100.0 / (m + 100.0)
}

// ProfitPerUnit returns the profit on a one-unit stake at the given American
// odds: 100/|odds| when negative, odds/100 when positive.
func ProfitPerUnit(american int) float64 {
	if american == 0 {
		return 1.0
	}
	if american < 0 {
		return 100.0 / math.Abs(float64(american))
	}
	return float64(american) / 100.0
}

// DecimalToImpliedProb converts decimal odds to implied probability.
func DecimalToImpliedProb(dec float64) float64 {
	if dec <= 0 {
		return 0
	}
	return 1.0 / dec
}
