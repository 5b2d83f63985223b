// Package service wires the detection pipeline together: vectorize a
// situation, query history, classify edges and size recommendations.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/sharpline/internal/consensus"
	"github.com/yourusername/sharpline/internal/edge"
	"github.com/yourusername/sharpline/internal/execution"
	"github.com/yourusername/sharpline/internal/logger"
	"github.com/yourusername/sharpline/internal/metrics"
	"github.com/yourusername/sharpline/internal/models"
	"github.com/yourusername/sharpline/internal/repository"
	"github.com/yourusername/sharpline/internal/vector"
)

// DetectionService runs the full pipeline for one situation.
type DetectionService struct {
	vectorizer *vector.Vectorizer
	engine     *consensus.Engine
	classifier *edge.Classifier
	planner    *execution.Planner
	detRepo    repository.DetectionRepository
	audit      *logger.AuditLogger
	logger     *logrus.Logger
}

// NewDetectionService creates a detection service. detRepo and audit may be
// nil; detection then runs purely in memory.
func NewDetectionService(
	vectorizer *vector.Vectorizer,
	engine *consensus.Engine,
	classifier *edge.Classifier,
	planner *execution.Planner,
	detRepo repository.DetectionRepository,
	audit *logger.AuditLogger,
	log *logrus.Logger,
) *DetectionService {
	return &DetectionService{
		vectorizer: vectorizer,
		engine:     engine,
		classifier: classifier,
		planner:    planner,
		detRepo:    detRepo,
		audit:      audit,
		logger:     log,
	}
}

// Detect runs vectorization, consensus and classification for a situation.
// A thin sample is a valid INSUFFICIENT_DATA result, not an error.
func (s *DetectionService) Detect(ctx context.Context, situation models.SituationRecord) (models.Detection, error) {
	start := time.Now()
	metrics.DetectionsTotal.Inc()

	vec := s.vectorizer.Vectorize(situation)

	est, err := s.engine.Estimate(vec)
	if err != nil {
		var insufficient *models.InsufficientDataError
		if errors.As(err, &insufficient) {
			det := models.Detection{
				Status:     models.StatusInsufficientData,
				SampleSize: insufficient.SampleSize,
			}
			s.persist(ctx, situation, det)
			metrics.DetectionDuration.Observe(time.Since(start).Seconds())
			return det, nil
		}
		return models.Detection{}, err
	}

	det := s.classifier.Classify(situation, est)
	s.persist(ctx, situation, det)

	if s.audit != nil {
		now := time.Now().UTC()
		for _, e := range det.Edges {
			s.audit.LogEdgeDetected(situation.GameID, situation.Team, e, now)
		}
	}

	metrics.DetectionDuration.Observe(time.Since(start).Seconds())
	return det, nil
}

// Recommend sizes a stake for every detected edge that has a quotable side.
// Edges without quotes are skipped, not errors.
func (s *DetectionService) Recommend(ctx context.Context, situation models.SituationRecord, det models.Detection, quotes []models.OddsQuote) []models.ExecutionRecommendation {
	recs := make([]models.ExecutionRecommendation, 0, len(det.Edges))
	now := time.Now().UTC()

	for _, e := range det.Edges {
		rec, err := s.planner.Plan(e, situation, quotes)
		if err != nil {
			if errors.Is(err, models.ErrNoQuotes) {
				continue
			}
			if s.logger != nil {
				s.logger.WithError(err).WithFields(logrus.Fields{
					"game_id": situation.GameID,
					"market":  e.Type,
				}).Warn("Recommendation planning failed")
			}
			continue
		}

		metrics.RecommendationsTotal.Inc()
		if s.audit != nil {
			s.audit.LogRecommendation(situation.GameID, *rec, now)
		}
		recs = append(recs, *rec)
	}

	return recs
}

// ScanArbitrage checks the moneyline and total markets of a game for
// cross-venue guaranteed-profit splits.
func (s *DetectionService) ScanArbitrage(homeTeam, awayTeam string, quotes []models.OddsQuote) []models.ArbitrageOpportunity {
	var found []models.ArbitrageOpportunity
	now := time.Now().UTC()

	pairs := [][2]struct {
		market models.OutcomeType
		side   string
	}{
		{{models.OutcomeMoneyline, homeTeam}, {models.OutcomeMoneyline, awayTeam}},
		{{models.OutcomeTotal, "Over"}, {models.OutcomeTotal, "Under"}},
	}

	for _, pair := range pairs {
		sideA, okA := execution.BestQuote(quotes, pair[0].market, pair[0].side)
		sideB, okB := execution.BestQuote(quotes, pair[1].market, pair[1].side)
		if !okA || !okB {
			continue
		}

		// Same-venue pairs are just that book's vig; only cross-venue
		// splits can clear it.
		if sideA.Venue == sideB.Venue {
			continue
		}

		if arb := s.planner.DetectArbitrage(sideA, sideB); arb != nil {
			if s.audit != nil {
				s.audit.LogArbitrage(*arb, now)
			}
			found = append(found, *arb)
		}
	}

	return found
}

func (s *DetectionService) persist(ctx context.Context, situation models.SituationRecord, det models.Detection) {
	if s.detRepo == nil {
		return
	}
	if err := s.detRepo.Insert(ctx, situation.GameID, situation.Team, det); err != nil && s.logger != nil {
		s.logger.WithError(err).WithField("game_id", situation.GameID).Warn("Failed to persist detection")
	}
}
