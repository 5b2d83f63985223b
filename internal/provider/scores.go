package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/yourusername/sharpline/internal/config"
	"github.com/yourusername/sharpline/internal/metrics"
	"github.com/yourusername/sharpline/internal/models"
)

const scoreboardName = "scoreboard"

// ScoreboardClient implements ScoresProvider against a public scoreboard API
// serving team records and injury reports.
type ScoreboardClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	cache      *cache.Cache
	logger     *log.Logger
}

// scoreboardTeamResponse mirrors the scoreboard's team payload
type scoreboardTeamResponse struct {
	Team struct {
		DisplayName string `json:"displayName"`
		Record      struct {
			Items []struct {
				Type  string `json:"type"`
				Stats []struct {
					Name  string  `json:"name"`
					Value float64 `json:"value"`
				} `json:"stats"`
			} `json:"items"`
		} `json:"record"`
	} `json:"team"`
}

// scoreboardInjuriesResponse mirrors the scoreboard's injury payload
type scoreboardInjuriesResponse struct {
	Injuries []struct {
		Status  string `json:"status"`
		Athlete struct {
			DisplayName string `json:"displayName"`
			Position    struct {
				Abbreviation string `json:"abbreviation"`
			} `json:"position"`
		} `json:"athlete"`
	} `json:"injuries"`
}

// NewScoreboardClient creates a new scoreboard client
func NewScoreboardClient(httpClient *RateLimitedHTTPClient, cfg config.ScoresConfig, logger *log.Logger) *ScoreboardClient {
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	return &ScoreboardClient{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
		cache:      cache.New(ttl, 2*ttl),
		logger:     logger,
	}
}

// Name returns the name of the provider
func (c *ScoreboardClient) Name() string {
	return scoreboardName
}

// FetchTeamForm retrieves form and injuries for a team. Results are cached
// per team; injury reports rarely change inside the TTL.
func (c *ScoreboardClient) FetchTeamForm(ctx context.Context, team string) (*TeamForm, error) {
	cacheKey := "form:" + team
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.(*TeamForm), nil
	}

	start := time.Now()
	form := &TeamForm{Team: team}

	if err := c.fetchRecord(ctx, team, form); err != nil {
		metrics.ProviderFetchesTotal.WithLabelValues(scoreboardName, "error").Inc()
		return nil, err
	}
	if err := c.fetchInjuries(ctx, team, form); err != nil {
		// An unavailable injury report degrades to an empty one rather than
		// failing the whole form fetch.
		c.logger.Printf("Injury report unavailable for %s: %v", team, err)
	}

	metrics.ProviderFetchesTotal.WithLabelValues(scoreboardName, "ok").Inc()
	metrics.ProviderFetchDuration.WithLabelValues(scoreboardName).Observe(time.Since(start).Seconds())

	c.cache.Set(cacheKey, form, cache.DefaultExpiration)
	return form, nil
}

func (c *ScoreboardClient) fetchRecord(ctx context.Context, team string, form *TeamForm) error {
	reqURL := fmt.Sprintf("%s/teams/%s", c.baseURL, url.PathEscape(teamSlug(team)))

	resp, err := c.httpClient.Get(ctx, reqURL)
	if err != nil {
		return NewProviderError(scoreboardName, ErrCodeNetworkError, "failed to fetch team record", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return NewProviderError(scoreboardName, ErrCodeNotFound, fmt.Sprintf("team %q not found", team), nil)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return NewProviderError(scoreboardName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var payload scoreboardTeamResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return NewProviderError(scoreboardName, ErrCodeInvalidData, "failed to parse team record", err)
	}

	for _, item := range payload.Team.Record.Items {
		if item.Type != "total" {
			continue
		}
		for _, stat := range item.Stats {
			switch stat.Name {
			case "wins":
				form.SeasonWins = int(stat.Value)
			case "gamesPlayed":
				form.SeasonGames = int(stat.Value)
			}
		}
	}
	return nil
}

func (c *ScoreboardClient) fetchInjuries(ctx context.Context, team string, form *TeamForm) error {
	reqURL := fmt.Sprintf("%s/teams/%s/injuries", c.baseURL, url.PathEscape(teamSlug(team)))

	resp, err := c.httpClient.Get(ctx, reqURL)
	if err != nil {
		return NewProviderError(scoreboardName, ErrCodeNetworkError, "failed to fetch injuries", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return NewProviderError(scoreboardName, ErrCodeServerError, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var payload scoreboardInjuriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return NewProviderError(scoreboardName, ErrCodeInvalidData, "failed to parse injuries", err)
	}

	for _, inj := range payload.Injuries {
		status := normalizeInjuryStatus(inj.Status)
		if status == "" {
			continue
		}
		form.Injuries = append(form.Injuries, models.Injury{
			Team:     team,
			Player:   inj.Athlete.DisplayName,
			Position: inj.Athlete.Position.Abbreviation,
			Status:   status,
		})
	}
	return nil
}

// teamSlug converts a display name to the provider's URL slug
func teamSlug(team string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(team), " ", "-"))
}

// normalizeInjuryStatus maps provider status strings onto the internal enum.
// Unknown statuses are dropped.
func normalizeInjuryStatus(status string) models.InjuryStatus {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "OUT":
		return models.InjuryOut
	case "DOUBTFUL":
		return models.InjuryDoubtful
	case "QUESTIONABLE", "DAY-TO-DAY":
		return models.InjuryQuestionable
	case "PROBABLE":
		return models.InjuryProbable
	default:
		return ""
	}
}
