package models

// OutcomeType identifies which market an edge applies to.
type OutcomeType string

const (
	OutcomeMoneyline OutcomeType = "MONEYLINE"
	OutcomeSpread    OutcomeType = "SPREAD"
	OutcomeTotal     OutcomeType = "TOTAL"
)

// Direction is the recommended action for an edge, per market.
type Direction string

const (
	DirectionBet   Direction = "BET"
	DirectionFade  Direction = "FADE"
	DirectionCover Direction = "COVER"
	DirectionOver  Direction = "OVER"
	DirectionUnder Direction = "UNDER"
)

// EdgeStrength buckets the magnitude of an advantage.
type EdgeStrength string

const (
	StrengthModerate EdgeStrength = "MODERATE"
	StrengthStrong   EdgeStrength = "STRONG"
)

// Signal names a confidence-boosting market signal applied to an edge.
type Signal string

const (
	SignalReverseLineMovement Signal = "REVERSE_LINE_MOVEMENT"
	SignalSteamMove           Signal = "STEAM_MOVE"
)

// Edge is a single detected divergence between the target (historical
// consensus) probability and the market-implied probability.
type Edge struct {
	Type         OutcomeType  `json:"type"`
	Direction    Direction    `json:"direction"`
	AdvantagePct float64      `json:"advantage_pct"`
	TargetProb   float64      `json:"target_prob_pct"`
	MarketProb   float64      `json:"market_prob_pct"`
	Strength     EdgeStrength `json:"strength"`
	Confidence   float64      `json:"confidence"`
	SampleSize   int          `json:"sample_size"`
	Signals      []Signal     `json:"signals,omitempty"`
}

// HasSignal reports whether the given boost was applied to this edge.
func (e *Edge) HasSignal(s Signal) bool {
	for _, have := range e.Signals {
		if have == s {
			return true
		}
	}
	return false
}

// DetectionStatus summarizes a whole situation's edge analysis.
type DetectionStatus string

const (
	StatusStrongEdge       DetectionStatus = "STRONG_EDGE"
	StatusModerateEdge     DetectionStatus = "MODERATE_EDGE"
	StatusNoEdge           DetectionStatus = "NO_EDGE"
	StatusInsufficientData DetectionStatus = "INSUFFICIENT_DATA"
)

// Detection is the full classifier output for one situation.
type Detection struct {
	Status        DetectionStatus `json:"status"`
	SampleSize    int             `json:"sample_size"`
	AvgSimilarity float64         `json:"avg_similarity"`
	Edges         []Edge          `json:"edges"`
}
