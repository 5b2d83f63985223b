package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/sharpline/internal/lines"
	"github.com/yourusername/sharpline/internal/metrics"
	"github.com/yourusername/sharpline/internal/models"
	"github.com/yourusername/sharpline/internal/provider"
	"github.com/yourusername/sharpline/internal/repository"
	"github.com/yourusername/sharpline/internal/vector"
	"github.com/yourusername/sharpline/internal/vectorstore"
)

// IngestionService feeds the engine: completed games into the vector store,
// live lines into the tracker and database.
type IngestionService struct {
	vectorizer *vector.Vectorizer
	store      vectorstore.VectorStore
	tracker    *lines.Tracker
	histRepo   repository.HistoricalRecordRepository
	lineRepo   repository.LineSnapshotRepository
	odds       provider.OddsProvider
	scores     provider.ScoresProvider
	logger     *logrus.Logger

	mu       sync.RWMutex
	lastPoll time.Time
}

// NewIngestionService creates an ingestion service. Repositories may be nil
// for store-only operation; providers may be nil when their jobs are not
// scheduled.
func NewIngestionService(
	vectorizer *vector.Vectorizer,
	store vectorstore.VectorStore,
	tracker *lines.Tracker,
	histRepo repository.HistoricalRecordRepository,
	lineRepo repository.LineSnapshotRepository,
	odds provider.OddsProvider,
	scores provider.ScoresProvider,
	logger *logrus.Logger,
) *IngestionService {
	return &IngestionService{
		vectorizer: vectorizer,
		store:      store,
		tracker:    tracker,
		histRepo:   histRepo,
		lineRepo:   lineRepo,
		odds:       odds,
		scores:     scores,
		logger:     logger,
	}
}

// SeedStore loads every persisted historical record from the database into
// the vector store and rebuilds the index once at the end.
func (s *IngestionService) SeedStore(ctx context.Context) (int, error) {
	if s.histRepo == nil {
		return 0, fmt.Errorf("no historical record repository configured")
	}

	records, err := s.histRepo.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load historical records: %w", err)
	}

	loaded := 0
	for _, rec := range records {
		if err := s.store.Insert(rec.Vector, rec.Situation, rec.Outcome); err != nil {
			s.logger.WithError(err).WithField("game_id", rec.Situation.GameID).Warn("Skipping record during seed")
			continue
		}
		loaded++
	}
	s.store.RebuildIndex()

	s.logger.WithFields(logrus.Fields{
		"loaded":  loaded,
		"skipped": len(records) - loaded,
	}).Info("Vector store seeded from database")

	return loaded, nil
}

// RecordOutcome vectorizes a completed situation and appends it to both the
// vector store and the database.
func (s *IngestionService) RecordOutcome(ctx context.Context, situation models.SituationRecord, outcome models.Outcome) error {
	vec := s.vectorizer.Vectorize(situation)

	if err := s.store.Insert(vec, situation, outcome); err != nil {
		return fmt.Errorf("failed to insert into vector store: %w", err)
	}

	if s.histRepo != nil {
		rec := &models.HistoricalRecord{
			Vector:     vec,
			Situation:  situation,
			Outcome:    outcome,
			InsertedAt: time.Now().UTC(),
		}
		if err := s.histRepo.Insert(ctx, rec); err != nil {
			return fmt.Errorf("failed to persist historical record: %w", err)
		}
	}

	return nil
}

// RecordOutcomeBatch ingests a batch of completed situations, writing the
// database rows in one round trip.
func (s *IngestionService) RecordOutcomeBatch(ctx context.Context, pairs []OutcomePair) (int, error) {
	inserted := 0
	recs := make([]*models.HistoricalRecord, 0, len(pairs))
	now := time.Now().UTC()

	for _, p := range pairs {
		vec := s.vectorizer.Vectorize(p.Situation)
		if err := s.store.Insert(vec, p.Situation, p.Outcome); err != nil {
			s.logger.WithError(err).WithField("game_id", p.Situation.GameID).Warn("Skipping record during batch ingest")
			continue
		}
		inserted++
		recs = append(recs, &models.HistoricalRecord{
			Vector:     vec,
			Situation:  p.Situation,
			Outcome:    p.Outcome,
			InsertedAt: now,
		})
	}

	if s.histRepo != nil && len(recs) > 0 {
		if err := s.histRepo.InsertBatch(ctx, recs); err != nil {
			return inserted, fmt.Errorf("failed to persist batch: %w", err)
		}
	}

	return inserted, nil
}

// OutcomePair is one completed game ready for ingestion.
type OutcomePair struct {
	Situation models.SituationRecord
	Outcome   models.Outcome
}

// PollLines fetches current lines from the odds provider and records a
// snapshot per game in the tracker and the database. Returns the games so
// callers can run detection over the fresh quotes.
func (s *IngestionService) PollLines(ctx context.Context) ([]provider.GameLines, error) {
	if s.odds == nil {
		return nil, fmt.Errorf("no odds provider configured")
	}

	games, err := s.odds.FetchGameLines(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to poll lines: %w", err)
	}

	for _, g := range games {
		s.tracker.Record(g.GameID, g.Snapshot)
		if s.lineRepo != nil {
			if err := s.lineRepo.Insert(ctx, g.GameID, g.Snapshot); err != nil {
				s.logger.WithError(err).WithField("game_id", g.GameID).Warn("Failed to persist line snapshot")
			}
		}
	}
	metrics.TrackedGames.Set(float64(s.tracker.TrackedGames()))

	s.mu.Lock()
	s.lastPoll = time.Now().UTC()
	s.mu.Unlock()

	return games, nil
}

// LastPoll returns when lines were last fetched successfully, zero if never.
func (s *IngestionService) LastPoll() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastPoll
}

// EnrichSituation fills the scoreboard-derived fields of a situation in
// place. A missing scores provider leaves the documented defaults.
func (s *IngestionService) EnrichSituation(ctx context.Context, situation *models.SituationRecord) error {
	if s.scores == nil {
		return nil
	}

	form, err := s.scores.FetchTeamForm(ctx, situation.Team)
	if err != nil {
		return fmt.Errorf("failed to fetch team form: %w", err)
	}

	if form.SeasonGames > 0 {
		situation.SeasonWins = form.SeasonWins
		situation.SeasonGames = form.SeasonGames
	}
	if form.Last5Wins > 0 {
		situation.Last5Wins = form.Last5Wins
	}
	if form.Last10Wins > 0 {
		situation.Last10Wins = form.Last10Wins
	}
	situation.Injuries = form.Injuries
	situation.InjuryImpact = injuryImpact(form.Injuries)

	return nil
}

// PersistStore flushes the vector store to disk.
func (s *IngestionService) PersistStore() error {
	if err := s.store.Persist(); err != nil {
		return fmt.Errorf("failed to persist vector store: %w", err)
	}
	s.logger.WithField("records", s.store.Len()).Debug("Vector store persisted")
	return nil
}

// injuryImpact folds an injury report into [-1, 0]: each unavailable or
// at-risk player drags the impact down, weighted by how likely they are to
// sit. Opponent injuries are not visible here, so the value never goes
// positive.
func injuryImpact(injuries []models.Injury) float64 {
	impact := 0.0
	for _, inj := range injuries {
		switch inj.Status {
		case models.InjuryOut:
			impact -= 0.25
		case models.InjuryDoubtful:
			impact -= 0.15
		case models.InjuryQuestionable:
			impact -= 0.08
		case models.InjuryProbable:
			impact -= 0.03
		}
	}
	if impact < -1 {
		impact = -1
	}
	return impact
}
