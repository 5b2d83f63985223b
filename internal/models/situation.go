package models

import (
	"time"

	"github.com/google/uuid"
)

// InjuryStatus classifies player availability as reported by providers.
type InjuryStatus string

const (
	InjuryOut          InjuryStatus = "OUT"
	InjuryDoubtful     InjuryStatus = "DOUBTFUL"
	InjuryQuestionable InjuryStatus = "QUESTIONABLE"
	InjuryProbable     InjuryStatus = "PROBABLE"
)

// Injury represents a single entry on a team's injury report.
type Injury struct {
	Team     string       `json:"team"`
	Player   string       `json:"player"`
	Position string       `json:"position,omitempty"`
	Status   InjuryStatus `json:"status"`
}

// SituationRecord describes one betting situation from the perspective of a
// single team. Every field has a documented default so the vectorizer stays
// total on partial input; NewSituationRecord applies them.
type SituationRecord struct {
	ID       uuid.UUID `json:"id"`
	GameID   string    `json:"game_id"`
	Team     string    `json:"team"`
	Opponent string    `json:"opponent"`

	TeamOffRating float64 `json:"team_off_rating"` // points per 100 possessions
	TeamDefRating float64 `json:"team_def_rating"`
	OppOffRating  float64 `json:"opp_off_rating"`
	OppDefRating  float64 `json:"opp_def_rating"`
	Pace          float64 `json:"pace"`

	IsHome      bool `json:"is_home"`
	RestDays    int  `json:"rest_days"`
	OppRestDays int  `json:"opp_rest_days"`

	Last5Wins   int `json:"last_5_wins"`
	Last10Wins  int `json:"last_10_wins"`
	SeasonWins  int `json:"season_wins"`
	SeasonGames int `json:"season_games"`

	// InjuryImpact folds the injury report into [-1, 1]; negative means the
	// team is hurt worse than the opponent.
	InjuryImpact float64  `json:"injury_impact"`
	Injuries     []Injury `json:"injuries,omitempty"`

	LineOpen    float64 `json:"line_open"`
	LineCurrent float64 `json:"line_current"`
	PublicPct   float64 `json:"public_pct"` // 0-100, share of public money on this side
	TotalLine   float64 `json:"total_line"`
	Spread      float64 `json:"spread"`
	Moneyline   int     `json:"moneyline"`

	CreatedAt time.Time `json:"created_at"`
}

// NewSituationRecord returns a record with the documented defaults applied.
// Callers overwrite whatever fields their providers supply.
func NewSituationRecord() SituationRecord {
	return SituationRecord{
		ID:            uuid.New(),
		TeamOffRating: 110,
		TeamDefRating: 110,
		OppOffRating:  110,
		OppDefRating:  110,
		Pace:          100,
		RestDays:      2,
		OppRestDays:   2,
		Last5Wins:     2, // treated as 2.5/5 by the vectorizer when unset is ambiguous
		Last10Wins:    5,
		SeasonGames:   1,
		PublicPct:     50,
		TotalLine:     220,
		Moneyline:     -110,
		CreatedAt:     time.Now().UTC(),
	}
}

// SeasonWinPct returns the season win percentage, guarding the zero-games case.
func (s *SituationRecord) SeasonWinPct() float64 {
	if s.SeasonGames < 1 {
		return 0
	}
	return float64(s.SeasonWins) / float64(s.SeasonGames)
}

// RestAdvantage returns own rest minus opponent rest in days.
func (s *SituationRecord) RestAdvantage() int {
	return s.RestDays - s.OppRestDays
}

// LineMovement returns the signed spread move since open.
func (s *SituationRecord) LineMovement() float64 {
	return s.LineCurrent - s.LineOpen
}
