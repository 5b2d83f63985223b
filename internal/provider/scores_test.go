package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/sharpline/internal/config"
	"github.com/yourusername/sharpline/internal/models"
)

const sampleTeamPayload = `{
  "team": {
    "displayName": "Los Angeles Lakers",
    "record": {
      "items": [
        {"type": "total", "stats": [
          {"name": "wins", "value": 28},
          {"name": "gamesPlayed", "value": 45}
        ]},
        {"type": "home", "stats": [
          {"name": "wins", "value": 17}
        ]}
      ]
    }
  }
}`

const sampleInjuriesPayload = `{
  "injuries": [
    {"status": "Out", "athlete": {"displayName": "A. Center", "position": {"abbreviation": "C"}}},
    {"status": "Day-To-Day", "athlete": {"displayName": "B. Guard", "position": {"abbreviation": "PG"}}},
    {"status": "Suspended", "athlete": {"displayName": "C. Forward", "position": {"abbreviation": "SF"}}}
  ]
}`

func newTestScoreboardClient(t *testing.T, handler http.HandlerFunc) *ScoreboardClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	httpClient := NewRateLimitedHTTPClient(HTTPClientConfig{
		Timeout:           5 * time.Second,
		MaxRetries:        0,
		RetryWaitMin:      time.Millisecond,
		RetryWaitMax:      time.Millisecond,
		RateLimit:         100,
		CircuitBreakerMax: 5,
	}, testLogger())

	return NewScoreboardClient(httpClient, config.ScoresConfig{
		BaseURL:         srv.URL,
		TimeoutSeconds:  5,
		CacheTTLSeconds: 60,
	}, testLogger())
}

func TestFetchTeamFormParsesRecordAndInjuries(t *testing.T) {
	client := newTestScoreboardClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/injuries") {
			w.Write([]byte(sampleInjuriesPayload))
			return
		}
		assert.Contains(t, r.URL.Path, "los-angeles-lakers")
		w.Write([]byte(sampleTeamPayload))
	})

	form, err := client.FetchTeamForm(context.Background(), "Los Angeles Lakers")
	require.NoError(t, err)

	// Only the "total" record item counts toward the season line.
	assert.Equal(t, 28, form.SeasonWins)
	assert.Equal(t, 45, form.SeasonGames)

	// Unknown statuses are dropped.
	require.Len(t, form.Injuries, 2)
	assert.Equal(t, models.InjuryOut, form.Injuries[0].Status)
	assert.Equal(t, models.InjuryQuestionable, form.Injuries[1].Status)
	assert.Equal(t, "Los Angeles Lakers", form.Injuries[0].Team)
}

func TestFetchTeamFormDegradesWithoutInjuryReport(t *testing.T) {
	client := newTestScoreboardClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/injuries") {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(sampleTeamPayload))
	})

	form, err := client.FetchTeamForm(context.Background(), "Lakers")
	require.NoError(t, err)
	assert.Equal(t, 28, form.SeasonWins)
	assert.Empty(t, form.Injuries)
}

func TestFetchTeamFormNotFound(t *testing.T) {
	client := newTestScoreboardClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.FetchTeamForm(context.Background(), "Nonexistent")
	require.Error(t, err)

	var provErr ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, ErrCodeNotFound, provErr.Code)
}
