// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/sharpline/internal/models"
)

// AuditLogger provides dedicated audit trail logging.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogEdgeDetected logs a detected edge with its full scoring breakdown.
func (al *AuditLogger) LogEdgeDetected(gameID, team string, e models.Edge, timestamp time.Time) {
	signals := make([]string, 0, len(e.Signals))
	for _, s := range e.Signals {
		signals = append(signals, string(s))
	}
	al.WithFields(logrus.Fields{
		"game_id":       gameID,
		"team":          team,
		"market":        e.Type,
		"direction":     e.Direction,
		"strength":      e.Strength,
		"advantage_pct": e.AdvantagePct,
		"target_prob":   e.TargetProb,
		"market_prob":   e.MarketProb,
		"confidence":    e.Confidence,
		"sample_size":   e.SampleSize,
		"signals":       signals,
		"timestamp":     timestamp.Unix(),
	}).Info("Edge detected")
}

// LogRecommendation logs an execution recommendation.
func (al *AuditLogger) LogRecommendation(gameID string, rec models.ExecutionRecommendation, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"game_id":        gameID,
		"market":         rec.Edge.Type,
		"direction":      rec.Edge.Direction,
		"venue":          rec.Venue,
		"american_odds":  rec.AmericanOdds,
		"ev_per_unit":    rec.EVPerUnit,
		"kelly_fraction": rec.KellyFraction,
		"stake":          rec.RecommendedStake.String(),
		"timestamp":      timestamp.Unix(),
	}).Info("Recommendation recorded")
}

// LogArbitrage logs an arbitrage opportunity across two venues.
func (al *AuditLogger) LogArbitrage(arb models.ArbitrageOpportunity, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"venue_a":           arb.SideA.Venue,
		"venue_b":           arb.SideB.Venue,
		"odds_a":            arb.SideA.AmericanOdds,
		"odds_b":            arb.SideB.AmericanOdds,
		"stake_a":           arb.StakeA.String(),
		"stake_b":           arb.StakeB.String(),
		"guaranteed_profit": arb.GuaranteedProfit.String(),
		"roi_pct":           arb.ROIPct.String(),
		"timestamp":         timestamp.Unix(),
	}).Info("Arbitrage opportunity recorded")
}

// LogConfigChange logs detection parameter changes.
func (al *AuditLogger) LogConfigChange(parameterName string, oldValue, newValue interface{}, changedBy string) {
	al.WithFields(logrus.Fields{
		"parameter_name": parameterName,
		"old_value":      oldValue,
		"new_value":      newValue,
		"changed_by":     changedBy,
	}).Info("Detection parameter changed")
}
