package lines

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordEvictsOldestAtCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HistoryCap = 3
	tr := NewTracker(cfg, nil)

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		tr.Record("g1", Snapshot{Timestamp: base.Add(time.Duration(i) * time.Minute), Spread: float64(i)})
	}

	snaps := tr.Snapshots("g1")
	require.Len(t, snaps, 3)
	assert.Equal(t, 2.0, snaps[0].Spread, "oldest two evicted")
	assert.Equal(t, 4.0, snaps[2].Spread)
}

func TestMovement(t *testing.T) {
	tr := NewTracker(DefaultConfig(), nil)

	assert.Equal(t, Movement{}, tr.Movement("missing"))

	base := time.Now().UTC()
	tr.Record("g1", Snapshot{Timestamp: base, Spread: -5.5, Total: 228})
	tr.Record("g1", Snapshot{Timestamp: base.Add(2 * time.Hour), Spread: -7.0, Total: 230.5})

	m := tr.Movement("g1")
	assert.InDelta(t, -1.5, m.SpreadMove, 1e-9)
	assert.InDelta(t, 2.5, m.TotalMove, 1e-9)
	assert.InDelta(t, 2.0, m.HoursTracked, 1e-9)
}

func TestVelocityRequiresSpan(t *testing.T) {
	tr := NewTracker(DefaultConfig(), nil)
	now := time.Now().UTC()

	// Two snapshots one minute apart: under the 3-minute floor.
	tr.Record("fast", Snapshot{Timestamp: now.Add(-time.Minute), Spread: -4})
	tr.Record("fast", Snapshot{Timestamp: now, Spread: -6})
	assert.Equal(t, Velocity{}, tr.Velocity("fast", time.Hour))

	// One point over two hours: 0.5 pts/hr, at but not above the threshold.
	tr.Record("slow", Snapshot{Timestamp: now.Add(-2 * time.Hour), Spread: -4})
	tr.Record("slow", Snapshot{Timestamp: now, Spread: -5})
	v := tr.Velocity("slow", 3*time.Hour)
	assert.InDelta(t, 0.5, v.PointsPerHour, 1e-9)
	assert.False(t, v.IsSharp)
	assert.True(t, v.TowardHome)

	// Two points in one hour: sharp.
	tr.Record("sharp", Snapshot{Timestamp: now.Add(-time.Hour), Spread: -4})
	tr.Record("sharp", Snapshot{Timestamp: now, Spread: -6})
	v = tr.Velocity("sharp", 2*time.Hour)
	assert.InDelta(t, 2.0, v.PointsPerHour, 1e-9)
	assert.True(t, v.IsSharp)
}

func TestVelocityWindowExcludesOldSnapshots(t *testing.T) {
	tr := NewTracker(DefaultConfig(), nil)
	now := time.Now().UTC()

	tr.Record("g1", Snapshot{Timestamp: now.Add(-5 * time.Hour), Spread: -1})
	tr.Record("g1", Snapshot{Timestamp: now.Add(-10 * time.Minute), Spread: -4})

	// Only one snapshot falls inside the trailing hour.
	assert.Equal(t, Velocity{}, tr.Velocity("g1", time.Hour))
}

func TestReverseLineMovement(t *testing.T) {
	tr := NewTracker(DefaultConfig(), nil)

	tests := []struct {
		name                 string
		publicPct            float64
		open, current        float64
		want                 float64
	}{
		{"even split is exactly neutral", 50, -5, -7, 0.5},
		{"public on team, line moving away: full strength", 80, -5, -3, 1.0},
		{"public on team, line moving away: partial", 65, -5, -3, 0.75},
		{"line confirms public", 70, -5, -7, 0.5 - 20.0/100*0.3},
		{"public against team", 30, -5, -3, 0.5 - 20.0/100*0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tr.ReverseLineMovement(tt.publicPct, tt.open, tt.current)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestSteamMoveRequiresCoordinatedBooks(t *testing.T) {
	tr := NewTracker(DefaultConfig(), nil)
	now := time.Now().UTC()

	// Aggregate moved 1.0 pt in 2 minutes, but only one book moved: not steam.
	tr.Record("solo", Snapshot{
		Timestamp:   now.Add(-2 * time.Minute),
		Spread:      -5,
		BookSpreads: map[string]float64{"draftkings": -5, "fanduel": -5, "betmgm": -5},
	})
	tr.Record("solo", Snapshot{
		Timestamp:   now,
		Spread:      -6,
		BookSpreads: map[string]float64{"draftkings": -6.5, "fanduel": -5, "betmgm": -5},
	})
	assert.False(t, tr.SteamMove("solo", 0.5, 5*time.Minute))

	// Two books moved at least half the threshold together: steam.
	tr.Record("steam", Snapshot{
		Timestamp:   now.Add(-2 * time.Minute),
		Spread:      -5,
		BookSpreads: map[string]float64{"draftkings": -5, "fanduel": -5, "betmgm": -5},
	})
	tr.Record("steam", Snapshot{
		Timestamp:   now,
		Spread:      -5.5,
		BookSpreads: map[string]float64{"draftkings": -5.5, "fanduel": -5.5, "betmgm": -5},
	})
	assert.True(t, tr.SteamMove("steam", 0.5, 5*time.Minute))
}

func TestSteamMoveRespectsTimeWindow(t *testing.T) {
	tr := NewTracker(DefaultConfig(), nil)
	now := time.Now().UTC()

	tr.Record("g1", Snapshot{
		Timestamp:   now.Add(-30 * time.Minute),
		Spread:      -5,
		BookSpreads: map[string]float64{"draftkings": -5, "fanduel": -5},
	})
	tr.Record("g1", Snapshot{
		Timestamp:   now,
		Spread:      -7,
		BookSpreads: map[string]float64{"draftkings": -7, "fanduel": -7},
	})

	assert.False(t, tr.SteamMove("g1", 0.5, 5*time.Minute), "movement too slow to be steam")
	assert.False(t, tr.SteamMove("missing", 0.5, 5*time.Minute))
}
