// Package lines tracks market line movement per game and derives the sharp
// money signals used to boost edge confidence.
package lines

import (
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Snapshot is one point-in-time observation of a game's market lines.
type Snapshot struct {
	Timestamp   time.Time          `json:"timestamp"`
	Spread      float64            `json:"spread"`
	Total       float64            `json:"total"`
	HomeML      int                `json:"home_ml"`
	AwayML      int                `json:"away_ml"`
	BookSpreads map[string]float64 `json:"book_spreads,omitempty"`
}

// Movement summarizes line drift between the first and last snapshot.
type Movement struct {
	SpreadOpen    float64
	SpreadCurrent float64
	SpreadMove    float64
	TotalOpen     float64
	TotalCurrent  float64
	TotalMove     float64
	HoursTracked  float64
}

// Velocity is the windowed rate of spread movement.
type Velocity struct {
	PointsPerHour float64
	IsSharp       bool
	TowardHome    bool
}

// Config holds the tracker's tunables. The heuristic constants are
// calibration knobs carried over from production use, not derived values.
type Config struct {
	HistoryCap             int           // snapshots kept per game
	SharpVelocityThreshold float64       // pts/hour above which movement reads as sharp
	MinVelocitySpan        time.Duration // minimum elapsed time before velocity is meaningful
	PublicSkewScale        float64       // public-% points mapping to full RLM strength
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		HistoryCap:             50,
		SharpVelocityThreshold: 0.5,
		MinVelocitySpan:        3 * time.Minute,
		PublicSkewScale:        30,
	}
}

// Tracker maintains ring-buffered snapshot histories keyed by game id.
// Safe for concurrent use.
type Tracker struct {
	cfg     Config
	mu      sync.RWMutex
	history map[string][]Snapshot
	logger  *logrus.Logger
}

// NewTracker creates an empty tracker.
func NewTracker(cfg Config, logger *logrus.Logger) *Tracker {
	if cfg.HistoryCap <= 0 {
		cfg.HistoryCap = 50
	}
	return &Tracker{
		cfg:     cfg,
		history: make(map[string][]Snapshot),
		logger:  logger,
	}
}

// Record appends a snapshot, evicting the oldest once the cap is exceeded.
func (t *Tracker) Record(gameID string, snap Snapshot) {
	if snap.Timestamp.IsZero() {
		snap.Timestamp = time.Now().UTC()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	snaps := append(t.history[gameID], snap)
	if len(snaps) > t.cfg.HistoryCap {
		snaps = snaps[len(snaps)-t.cfg.HistoryCap:]
	}
	t.history[gameID] = snaps
}

// TrackedGames returns the number of games with at least one snapshot.
func (t *Tracker) TrackedGames() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.history)
}

// Snapshots returns a copy of the history for a game.
func (t *Tracker) Snapshots(gameID string) []Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snaps := t.history[gameID]
	out := make([]Snapshot, len(snaps))
	copy(out, snaps)
	return out
}

// Movement computes drift from the first to the last recorded snapshot.
// With fewer than one snapshot it reports zero movement and zero hours.
func (t *Tracker) Movement(gameID string) Movement {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snaps := t.history[gameID]
	if len(snaps) == 0 {
		return Movement{}
	}

	first, last := snaps[0], snaps[len(snaps)-1]
	return Movement{
		SpreadOpen:    first.Spread,
		SpreadCurrent: last.Spread,
		SpreadMove:    last.Spread - first.Spread,
		TotalOpen:     first.Total,
		TotalCurrent:  last.Total,
		TotalMove:     last.Total - first.Total,
		HoursTracked:  last.Timestamp.Sub(first.Timestamp).Hours(),
	}
}

// Velocity computes spread movement speed over the trailing window. It
// requires at least two snapshots spanning MinVelocitySpan; anything less
// reads as no movement rather than a divide-by-near-zero blowup.
func (t *Tracker) Velocity(gameID string, window time.Duration) Velocity {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snaps := t.history[gameID]
	if len(snaps) < 2 {
		return Velocity{}
	}

	cutoff := time.Now().UTC().Add(-window)
	recent := snaps[:0:0]
	for _, snap := range snaps {
		if !snap.Timestamp.Before(cutoff) {
			recent = append(recent, snap)
		}
	}
	if len(recent) < 2 {
		return Velocity{}
	}

	first, last := recent[0], recent[len(recent)-1]
	span := last.Timestamp.Sub(first.Timestamp)
	if span < t.cfg.MinVelocitySpan {
		return Velocity{}
	}

	pointsPerHour := math.Abs(last.Spread-first.Spread) / span.Hours()
	return Velocity{
		PointsPerHour: pointsPerHour,
		IsSharp:       pointsPerHour > t.cfg.SharpVelocityThreshold,
		TowardHome:    last.Spread < first.Spread,
	}
}

// ReverseLineMovement scores how strongly the line is moving against the
// public. 0.5 is neutral; above 0.5 means sharp money is likely on the
// other side of the public, scaled by how lopsided the public split is.
// A line that confirms the public scores below 0.5.
func (t *Tracker) ReverseLineMovement(publicPct, lineOpen, lineCurrent float64) float64 {
	if publicPct == 50 {
		return 0.5
	}

	// A spread growing more negative means the market is favoring the team.
	lineMovedTowardTeam := lineCurrent < lineOpen
	publicOnTeam := publicPct > 50

	if publicOnTeam && !lineMovedTowardTeam {
		strength := math.Min((publicPct-50)/t.cfg.PublicSkewScale, 1.0)
		return 0.5 + strength*0.5
	}
	return 0.5 - math.Abs(publicPct-50)/100*0.3
}

// SteamMove reports coordinated, fast, multi-venue spread movement: the two
// most recent snapshots lie within the window, the aggregate spread moved at
// least thresholdPts, and at least two distinct books each moved half the
// threshold. One outlier book is not steam.
func (t *Tracker) SteamMove(gameID string, thresholdPts float64, window time.Duration) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snaps := t.history[gameID]
	if len(snaps) < 2 {
		return false
	}

	prev, curr := snaps[len(snaps)-2], snaps[len(snaps)-1]
	if curr.Timestamp.Sub(prev.Timestamp) > window {
		return false
	}
	if math.Abs(curr.Spread-prev.Spread) < thresholdPts {
		return false
	}

	booksMoved := 0
	for book, spread := range curr.BookSpreads {
		before, ok := prev.BookSpreads[book]
		if !ok {
			continue
		}
		if math.Abs(spread-before) >= thresholdPts*0.5 {
			booksMoved++
		}
	}
	return booksMoved >= 2
}
