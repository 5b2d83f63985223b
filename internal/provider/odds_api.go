package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/yourusername/sharpline/internal/config"
	"github.com/yourusername/sharpline/internal/lines"
	"github.com/yourusername/sharpline/internal/metrics"
	"github.com/yourusername/sharpline/internal/models"
)

const (
	oddsAPIName       = "odds_api"
	gameLinesCacheKey = "game_lines"

	marketH2H     = "h2h"
	marketSpreads = "spreads"
	marketTotals  = "totals"
)

// OddsAPIClient implements OddsProvider against an odds aggregator API that
// serves per-bookmaker prices for upcoming games.
type OddsAPIClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	sport      string
	regions    string
	enabled    bool
	cache      *cache.Cache
	logger     *log.Logger
}

// oddsAPIEvent mirrors the aggregator's event payload
type oddsAPIEvent struct {
	ID           string             `json:"id"`
	CommenceTime time.Time          `json:"commence_time"`
	HomeTeam     string             `json:"home_team"`
	AwayTeam     string             `json:"away_team"`
	Bookmakers   []oddsAPIBookmaker `json:"bookmakers"`
}

type oddsAPIBookmaker struct {
	Key        string          `json:"key"`
	Title      string          `json:"title"`
	LastUpdate time.Time       `json:"last_update"`
	Markets    []oddsAPIMarket `json:"markets"`
}

type oddsAPIMarket struct {
	Key      string           `json:"key"`
	Outcomes []oddsAPIOutcome `json:"outcomes"`
}

type oddsAPIOutcome struct {
	Name  string   `json:"name"`
	Price int      `json:"price"` // American odds
	Point *float64 `json:"point,omitempty"`
}

// NewOddsAPIClient creates a new odds aggregator client
func NewOddsAPIClient(httpClient *RateLimitedHTTPClient, cfg config.OddsAPIConfig, logger *log.Logger) *OddsAPIClient {
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	return &OddsAPIClient{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		sport:      cfg.Sport,
		regions:    cfg.Regions,
		enabled:    true,
		cache:      cache.New(ttl, 2*ttl),
		logger:     logger,
	}
}

// Name returns the name of the provider
func (c *OddsAPIClient) Name() string {
	return oddsAPIName
}

// IsEnabled returns whether this provider is currently enabled
func (c *OddsAPIClient) IsEnabled() bool {
	return c.enabled
}

// FetchGameLines retrieves quotes and a consensus snapshot per upcoming game.
// Results are served from cache within the configured TTL so schedule jitter
// does not burn API quota.
func (c *OddsAPIClient) FetchGameLines(ctx context.Context) ([]GameLines, error) {
	if !c.enabled {
		return nil, NewProviderError(oddsAPIName, ErrCodeNetworkError, "provider disabled", ErrProviderDisabled)
	}

	if cached, found := c.cache.Get(gameLinesCacheKey); found {
		return cached.([]GameLines), nil
	}

	start := time.Now()
	url := fmt.Sprintf("%s/v4/sports/%s/odds?apiKey=%s&regions=%s&markets=%s,%s,%s&oddsFormat=american",
		c.baseURL, c.sport, c.apiKey, c.regions, marketH2H, marketSpreads, marketTotals)

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		metrics.ProviderFetchesTotal.WithLabelValues(oddsAPIName, "error").Inc()
		return nil, NewProviderError(oddsAPIName, ErrCodeNetworkError, "failed to fetch odds", err)
	}
	defer resp.Body.Close()

	// Handle authentication errors
	if resp.StatusCode == http.StatusUnauthorized {
		metrics.ProviderFetchesTotal.WithLabelValues(oddsAPIName, "error").Inc()
		return nil, NewProviderError(oddsAPIName, ErrCodeAuthenticationFailed, "invalid API key", nil)
	}

	// Handle rate limiting
	if resp.StatusCode == http.StatusTooManyRequests {
		metrics.ProviderFetchesTotal.WithLabelValues(oddsAPIName, "error").Inc()
		return nil, NewProviderError(oddsAPIName, ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		metrics.ProviderFetchesTotal.WithLabelValues(oddsAPIName, "error").Inc()
		return nil, NewProviderError(oddsAPIName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var events []oddsAPIEvent
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		metrics.ProviderFetchesTotal.WithLabelValues(oddsAPIName, "error").Inc()
		return nil, NewProviderError(oddsAPIName, ErrCodeInvalidData, "failed to parse response", err)
	}

	games := make([]GameLines, 0, len(events))
	for _, ev := range events {
		game, err := c.convertEvent(&ev)
		if err != nil {
			c.logger.Printf("Failed to convert event %s: %v", ev.ID, err)
			continue
		}
		games = append(games, *game)
	}

	metrics.ProviderFetchesTotal.WithLabelValues(oddsAPIName, "ok").Inc()
	metrics.ProviderFetchDuration.WithLabelValues(oddsAPIName).Observe(time.Since(start).Seconds())

	c.cache.Set(gameLinesCacheKey, games, cache.DefaultExpiration)
	return games, nil
}

// convertEvent flattens the per-bookmaker markets into quotes and derives a
// consensus snapshot for the line tracker.
func (c *OddsAPIClient) convertEvent(ev *oddsAPIEvent) (*GameLines, error) {
	if ev.HomeTeam == "" || ev.AwayTeam == "" {
		return nil, fmt.Errorf("event %s missing team names", ev.ID)
	}

	game := &GameLines{
		GameID:       ev.ID,
		HomeTeam:     ev.HomeTeam,
		AwayTeam:     ev.AwayTeam,
		CommenceTime: ev.CommenceTime,
	}

	bookSpreads := make(map[string]float64)
	var spreadSum, totalSum float64
	var spreadN, totalN int
	var homeML, awayML int

	for _, bk := range ev.Bookmakers {
		for _, mkt := range bk.Markets {
			for _, out := range mkt.Outcomes {
				switch mkt.Key {
				case marketH2H:
					game.Quotes = append(game.Quotes, models.OddsQuote{
						Venue:        bk.Key,
						Market:       models.OutcomeMoneyline,
						OutcomeSide:  out.Name,
						AmericanOdds: out.Price,
					})
					if out.Name == ev.HomeTeam && homeML == 0 {
						homeML = out.Price
					}
					if out.Name == ev.AwayTeam && awayML == 0 {
						awayML = out.Price
					}
				case marketSpreads:
					game.Quotes = append(game.Quotes, models.OddsQuote{
						Venue:        bk.Key,
						Market:       models.OutcomeSpread,
						OutcomeSide:  out.Name,
						AmericanOdds: out.Price,
						Point:        out.Point,
					})
					if out.Name == ev.HomeTeam && out.Point != nil {
						bookSpreads[bk.Key] = *out.Point
						spreadSum += *out.Point
						spreadN++
					}
				case marketTotals:
					game.Quotes = append(game.Quotes, models.OddsQuote{
						Venue:        bk.Key,
						Market:       models.OutcomeTotal,
						OutcomeSide:  out.Name,
						AmericanOdds: out.Price,
						Point:        out.Point,
					})
					if out.Name == "Over" && out.Point != nil {
						totalSum += *out.Point
						totalN++
					}
				}
			}
		}
	}

	snap := lines.Snapshot{
		Timestamp:   time.Now().UTC(),
		HomeML:      homeML,
		AwayML:      awayML,
		BookSpreads: bookSpreads,
	}
	if spreadN > 0 {
		snap.Spread = spreadSum / float64(spreadN)
	}
	if totalN > 0 {
		snap.Total = totalSum / float64(totalN)
	}
	game.Snapshot = snap

	return game, nil
}
