package eco_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ecobazaar/internal/eco"
)

func TestCarbonSavings(t *testing.T) {
	tests := []struct {
		name     string
		impact   *float64
		average  *float64
		expected float64
	}{
		{"greener than average", ptr(3), ptr(8), 5},
		{"worse than average floors at zero", ptr(12), ptr(8), 0},
		{"equal to average", ptr(8), ptr(8), 0},
		{"nil impact", nil, ptr(8), 0},
		{"nil average", ptr(3), nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, eco.CarbonSavings(tt.impact, tt.average), 1e-9)
		})
	}
}

func TestPercentageReduction(t *testing.T) {
	tests := []struct {
		name     string
		impact   *float64
		average  *float64
		expected float64
	}{
		{"half of average", ptr(5), ptr(10), 50},
		{"one third saved", ptr(2), ptr(3), 33.33}, // 0.3333 ratio, 4dp half-up
		{"worse than average floors at zero", ptr(12), ptr(10), 0},
		{"zero average guards division", ptr(1), ptr(0), 0},
		{"nil impact", nil, ptr(10), 0},
		{"nil average", ptr(1), nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, eco.PercentageReduction(tt.impact, tt.average), 1e-9)
		})
	}
}

func TestScorePoints(t *testing.T) {
	assert.Equal(t, 10, eco.ScorePoints(eco.RatingEcoFriendly))
	assert.Equal(t, 5, eco.ScorePoints(eco.RatingModerate))
	assert.Equal(t, 0, eco.ScorePoints(eco.RatingHighImpact))
	assert.Equal(t, 0, eco.ScorePoints(eco.RatingUnrated))
	assert.Equal(t, 0, eco.ScorePoints(eco.Rating("bogus")))
}

func TestScoreWeight(t *testing.T) {
	assert.Equal(t, 5, eco.ScoreWeight(eco.RatingEcoFriendly))
	assert.Equal(t, 3, eco.ScoreWeight(eco.RatingModerate))
	assert.Equal(t, 1, eco.ScoreWeight(eco.RatingHighImpact))
	assert.Equal(t, 2, eco.ScoreWeight(eco.RatingUnrated))
	assert.Equal(t, 2, eco.ScoreWeight(eco.Rating("bogus")))
}

func TestRoundHalfUp(t *testing.T) {
	assert.InDelta(t, 0.6, eco.RoundHalfUp(0.6, 4), 1e-12)
	assert.InDelta(t, 0.3333, eco.RoundHalfUp(1.0/3.0, 4), 1e-12)
	assert.InDelta(t, 0.6667, eco.RoundHalfUp(2.0/3.0, 4), 1e-12)
	assert.InDelta(t, 0.13, eco.RoundHalfUp(0.125, 2), 1e-12) // exact tie rounds up
	assert.InDelta(t, -0.13, eco.RoundHalfUp(-0.125, 2), 1e-12)
}
