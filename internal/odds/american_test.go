package odds

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmericanToDecimal(t *testing.T) {
	tests := []struct {
		name     string
		american int
		want     float64
	}{
		{"positive underdog", 150, 2.5},
		{"negative favorite", -150, 1.0 + 100.0/150.0},
		{"even positive", 100, 2.0},
		{"even negative", -100, 2.0},
		{"zero treated as even money", 0, 2.0},
		{"heavy favorite", -250, 1.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, AmericanToDecimal(tt.american), 1e-9)
		})
	}
}

func TestAmericanToImpliedProb(t *testing.T) {
	assert.InDelta(t, 0.5, AmericanToImpliedProb(0), 1e-9)
	assert.InDelta(t, 110.0/210.0, AmericanToImpliedProb(-110), 1e-9)
	assert.InDelta(t, 100.0/320.0, AmericanToImpliedProb(220), 1e-9)

	// Implied probability and decimal odds must agree: p == 1/dec.
	for _, m := range []int{-300, -150, -110, 100, 120, 250} {
		assert.InDelta(t, 1.0/AmericanToDecimal(m), AmericanToImpliedProb(m), 1e-9, "odds %d", m)
	}
}

func TestProfitPerUnit(t *testing.T) {
	assert.InDelta(t, 1.2, ProfitPerUnit(120), 1e-9)
	assert.InDelta(t, 100.0/105.0, ProfitPerUnit(-105), 1e-9)
	assert.InDelta(t, 1.0, ProfitPerUnit(0), 1e-9)
}
