// Package edge compares target and market probabilities per market and emits
// thresholded, confidence-scored edges.
package edge

import (
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/sharpline/internal/consensus"
	"github.com/yourusername/sharpline/internal/lines"
	"github.com/yourusername/sharpline/internal/metrics"
	"github.com/yourusername/sharpline/internal/models"
	"github.com/yourusername/sharpline/internal/odds"
)

// Config holds the classifier's thresholds and boost factors. The boost
// constants come from production calibration and are tunable, not derived.
type Config struct {
	EdgeThreshold       float64 // minimum |advantage| to emit an edge
	StrongEdgeThreshold float64 // |advantage| at which an edge reads STRONG
	ConfidenceSample    float64 // sample size at which confidence saturates
	ConfidenceCeiling   float64

	RLMTrigger float64 // RLM score above which the boost applies
	RLMBoost   float64
	SteamBoost float64

	SteamThresholdPts float64
	SteamWindow       time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		EdgeThreshold:       0.03,
		StrongEdgeThreshold: 0.07,
		ConfidenceSample:    30,
		ConfidenceCeiling:   10,
		RLMTrigger:          0.7,
		RLMBoost:            1.2,
		SteamBoost:          1.3,
		SteamThresholdPts:   0.5,
		SteamWindow:         5 * time.Minute,
	}
}

// Classifier turns consensus estimates into actionable edges.
type Classifier struct {
	cfg     Config
	tracker *lines.Tracker
	logger  *logrus.Logger
}

// NewClassifier creates a classifier. The tracker may be nil, in which case
// no signal boosts are applied.
func NewClassifier(cfg Config, tracker *lines.Tracker, logger *logrus.Logger) *Classifier {
	return &Classifier{cfg: cfg, tracker: tracker, logger: logger}
}

// Classify compares the target estimate against market-implied probabilities
// for each market and returns every edge clearing the threshold, sorted by
// confidence descending, wrapped in an overall Detection.
func (c *Classifier) Classify(situation models.SituationRecord, est *consensus.Estimate) models.Detection {
	// Draft probabilities: the moneyline market prices a favorite; spread
	// and total markets are two-sided at -110 and assumed 50/50.
	marketWin := odds.AmericanToImpliedProb(situation.Moneyline)

	edges := make([]models.Edge, 0, 3)
	if e, ok := c.buildEdge(models.OutcomeMoneyline, est.WinProb, marketWin, est.SampleSize); ok {
		edges = append(edges, e)
	}
	if e, ok := c.buildEdge(models.OutcomeSpread, est.CoverProb, 0.5, est.SampleSize); ok {
		edges = append(edges, e)
	}
	if e, ok := c.buildEdge(models.OutcomeTotal, est.OverProb, 0.5, est.SampleSize); ok {
		edges = append(edges, e)
	}

	c.applySignalBoosts(situation, edges)

	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].Confidence > edges[j].Confidence
	})

	status := models.StatusNoEdge
	for _, e := range edges {
		metrics.EdgesDetectedTotal.WithLabelValues(string(e.Type), string(e.Strength)).Inc()
		if e.Strength == models.StrengthStrong {
			status = models.StatusStrongEdge
		} else if status != models.StatusStrongEdge {
			status = models.StatusModerateEdge
		}
	}

	if c.logger != nil && len(edges) > 0 {
		c.logger.WithFields(logrus.Fields{
			"game_id":     situation.GameID,
			"team":        situation.Team,
			"status":      status,
			"edge_count":  len(edges),
			"sample_size": est.SampleSize,
		}).Info("Edges detected")
	}

	return models.Detection{
		Status:        status,
		SampleSize:    est.SampleSize,
		AvgSimilarity: est.AvgSimilarity,
		Edges:         edges,
	}
}

// thresholdEps absorbs float64 rounding so an advantage sitting exactly on a
// configured threshold (e.g. 0.57-0.50 vs 0.07) classifies as documented.
const thresholdEps = 1e-9

func (c *Classifier) buildEdge(market models.OutcomeType, target, draft float64, sampleSize int) (models.Edge, bool) {
	advantage := target - draft
	if math.Abs(advantage) < c.cfg.EdgeThreshold-thresholdEps {
		return models.Edge{}, false
	}

	strength := models.StrengthModerate
	if math.Abs(advantage) >= c.cfg.StrongEdgeThreshold-thresholdEps {
		strength = models.StrengthStrong
	}

	confidence := math.Min(float64(sampleSize)/c.cfg.ConfidenceSample, 1.0) * math.Abs(advantage) * 10
	confidence = math.Min(confidence, c.cfg.ConfidenceCeiling)

	return models.Edge{
		Type:         market,
		Direction:    direction(market, advantage),
		AdvantagePct: advantage * 100,
		TargetProb:   target * 100,
		MarketProb:   draft * 100,
		Strength:     strength,
		Confidence:   confidence,
		SampleSize:   sampleSize,
	}, true
}

func direction(market models.OutcomeType, advantage float64) models.Direction {
	switch market {
	case models.OutcomeMoneyline:
		if advantage > 0 {
			return models.DirectionBet
		}
		return models.DirectionFade
	case models.OutcomeSpread:
		if advantage > 0 {
			return models.DirectionCover
		}
		return models.DirectionFade
	default:
		if advantage > 0 {
			return models.DirectionOver
		}
		return models.DirectionUnder
	}
}

// applySignalBoosts multiplies confidence for sharp-money signals, recording
// each applied boost in the edge's signal set for audit.
func (c *Classifier) applySignalBoosts(situation models.SituationRecord, edges []models.Edge) {
	if c.tracker == nil || len(edges) == 0 {
		return
	}

	rlm := c.tracker.ReverseLineMovement(situation.PublicPct, situation.LineOpen, situation.LineCurrent)
	if rlm > c.cfg.RLMTrigger {
		for i := range edges {
			edges[i].Confidence = math.Min(edges[i].Confidence*c.cfg.RLMBoost, c.cfg.ConfidenceCeiling)
			edges[i].Signals = append(edges[i].Signals, models.SignalReverseLineMovement)
		}
	}

	if c.tracker.SteamMove(situation.GameID, c.cfg.SteamThresholdPts, c.cfg.SteamWindow) {
		for i := range edges {
			edges[i].Confidence = math.Min(edges[i].Confidence*c.cfg.SteamBoost, c.cfg.ConfidenceCeiling)
			edges[i].Signals = append(edges[i].Signals, models.SignalSteamMove)
		}
	}
}
