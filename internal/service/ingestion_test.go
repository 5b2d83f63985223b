package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/sharpline/internal/lines"
	"github.com/yourusername/sharpline/internal/models"
	"github.com/yourusername/sharpline/internal/provider"
	"github.com/yourusername/sharpline/internal/vector"
	"github.com/yourusername/sharpline/internal/vectorstore"
)

// memoryRecordRepo is an in-memory HistoricalRecordRepository.
type memoryRecordRepo struct {
	records []*models.HistoricalRecord
}

func (m *memoryRecordRepo) Insert(ctx context.Context, rec *models.HistoricalRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memoryRecordRepo) InsertBatch(ctx context.Context, recs []*models.HistoricalRecord) error {
	m.records = append(m.records, recs...)
	return nil
}

func (m *memoryRecordRepo) GetAll(ctx context.Context) ([]*models.HistoricalRecord, error) {
	return m.records, nil
}

func (m *memoryRecordRepo) GetByTeam(ctx context.Context, team string, limit int) ([]*models.HistoricalRecord, error) {
	return nil, nil
}

func (m *memoryRecordRepo) Count(ctx context.Context) (int, error) {
	return len(m.records), nil
}

// fakeOddsProvider serves a canned set of game lines.
type fakeOddsProvider struct {
	games []provider.GameLines
	err   error
}

func (f *fakeOddsProvider) FetchGameLines(ctx context.Context) ([]provider.GameLines, error) {
	return f.games, f.err
}

func (f *fakeOddsProvider) Name() string    { return "fake" }
func (f *fakeOddsProvider) IsEnabled() bool { return true }

func newTestIngestion(t *testing.T, repo *memoryRecordRepo, odds provider.OddsProvider) (*IngestionService, *vectorstore.Store, *lines.Tracker) {
	t.Helper()

	store := vectorstore.New(vectorstore.Options{
		Dimension: vector.Dimension,
		Path:      filepath.Join(t.TempDir(), "store.json"),
		UseIndex:  true,
	}, nil)
	tracker := lines.NewTracker(lines.DefaultConfig(), nil)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	svc := NewIngestionService(vector.NewVectorizer(vector.DefaultRanges()), store, tracker, repo, nil, odds, nil, log)
	return svc, store, tracker
}

func TestRecordOutcomeWritesStoreAndRepo(t *testing.T) {
	repo := &memoryRecordRepo{}
	svc, store, _ := newTestIngestion(t, repo, nil)

	s := models.NewSituationRecord()
	s.GameID = "g1"
	s.Team = "Lakers"

	err := svc.RecordOutcome(context.Background(), s, models.Outcome{Won: true, Margin: 7})
	require.NoError(t, err)

	assert.Equal(t, 1, store.Len())
	require.Len(t, repo.records, 1)
	assert.Equal(t, "g1", repo.records[0].Situation.GameID)
	assert.Len(t, repo.records[0].Vector, vector.Dimension)
}

func TestSeedStoreRoundTrip(t *testing.T) {
	repo := &memoryRecordRepo{}
	seedSvc, _, _ := newTestIngestion(t, repo, nil)

	for i := 0; i < 5; i++ {
		s := models.NewSituationRecord()
		err := seedSvc.RecordOutcome(context.Background(), s, models.Outcome{Won: i%2 == 0})
		require.NoError(t, err)
	}

	// A fresh service over the same repository rebuilds the store.
	freshSvc, freshStore, _ := newTestIngestion(t, repo, nil)
	loaded, err := freshSvc.SeedStore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, loaded)
	assert.Equal(t, 5, freshStore.Len())
}

func TestPollLinesRecordsSnapshots(t *testing.T) {
	odds := &fakeOddsProvider{games: []provider.GameLines{
		{
			GameID:   "g1",
			HomeTeam: "Lakers",
			AwayTeam: "Celtics",
			Snapshot: lines.Snapshot{Timestamp: time.Now().UTC(), Spread: -3.5, Total: 224.5},
		},
		{
			GameID:   "g2",
			HomeTeam: "Heat",
			AwayTeam: "Knicks",
			Snapshot: lines.Snapshot{Timestamp: time.Now().UTC(), Spread: 1.5, Total: 210},
		},
	}}

	svc, _, tracker := newTestIngestion(t, &memoryRecordRepo{}, odds)

	games, err := svc.PollLines(context.Background())
	require.NoError(t, err)
	assert.Len(t, games, 2)
	assert.Equal(t, 2, tracker.TrackedGames())

	snaps := tracker.Snapshots("g1")
	require.Len(t, snaps, 1)
	assert.InDelta(t, -3.5, snaps[0].Spread, 1e-9)
}

func TestInjuryImpactAccumulatesAndClamps(t *testing.T) {
	assert.Equal(t, 0.0, injuryImpact(nil))

	one := injuryImpact([]models.Injury{{Status: models.InjuryOut}})
	assert.InDelta(t, -0.25, one, 1e-9)

	many := make([]models.Injury, 10)
	for i := range many {
		many[i] = models.Injury{Status: models.InjuryOut}
	}
	assert.Equal(t, -1.0, injuryImpact(many), "impact is clamped at -1")
}
