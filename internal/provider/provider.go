// Package provider contains clients for the external feeds the engine
// consumes: odds aggregators, scoreboards and streaming line updates.
package provider

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/sharpline/internal/lines"
	"github.com/yourusername/sharpline/internal/models"
)

// GameLines bundles everything a single poll learned about one game: the
// per-venue quotes plus a consensus snapshot for the line tracker.
type GameLines struct {
	GameID       string             `json:"game_id"`
	HomeTeam     string             `json:"home_team"`
	AwayTeam     string             `json:"away_team"`
	CommenceTime time.Time          `json:"commence_time"`
	Quotes       []models.OddsQuote `json:"quotes"`
	Snapshot     lines.Snapshot     `json:"snapshot"`
}

// TeamForm carries the scoreboard-derived inputs for a situation record.
type TeamForm struct {
	Team        string          `json:"team"`
	Last5Wins   int             `json:"last_5_wins"`
	Last10Wins  int             `json:"last_10_wins"`
	SeasonWins  int             `json:"season_wins"`
	SeasonGames int             `json:"season_games"`
	Injuries    []models.Injury `json:"injuries"`
}

// OddsProvider fetches current market prices for upcoming games.
type OddsProvider interface {
	// FetchGameLines retrieves quotes and a consensus snapshot per upcoming game
	FetchGameLines(ctx context.Context) ([]GameLines, error)

	// Name returns the name of the provider
	Name() string

	// IsEnabled returns whether this provider is currently enabled
	IsEnabled() bool
}

// ScoresProvider fetches team form and injury reports.
type ScoresProvider interface {
	// FetchTeamForm retrieves form and injuries for a team
	FetchTeamForm(ctx context.Context, team string) (*TeamForm, error)

	// Name returns the name of the provider
	Name() string
}

// ProviderError represents errors from provider operations
type ProviderError struct {
	Provider string // Provider name
	Code     string // Error code (e.g., "rate_limit_exceeded")
	Message  string // Error message
	Err      error  // Underlying error
}

func (e ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + ": " + e.Code + ": " + e.Message
}

func (e ProviderError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

// Error constructors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrProviderDisabled     = errors.New("provider disabled")
)

// NewProviderError creates a new provider error
func NewProviderError(provider, code, message string, err error) ProviderError {
	return ProviderError{
		Provider: provider,
		Code:     code,
		Message:  message,
		Err:      err,
	}
}
