package eco_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ecobazaar/internal/eco"
)

func ptr(v float64) *float64 { return &v }

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		impact *float64
		want   eco.Rating
	}{
		{"nil is unrated", nil, eco.RatingUnrated},
		{"zero is eco friendly", ptr(0), eco.RatingEcoFriendly},
		{"below threshold", ptr(1.5), eco.RatingEcoFriendly},
		{"just under 2.0", ptr(1.9999), eco.RatingEcoFriendly},
		{"exactly 2.0 is moderate", ptr(2.0), eco.RatingModerate},
		{"mid moderate", ptr(5.0), eco.RatingModerate},
		{"exactly 10.0 is still moderate", ptr(10.0), eco.RatingModerate},
		{"above 10.0 is high impact", ptr(10.01), eco.RatingHighImpact},
		{"very high", ptr(250), eco.RatingHighImpact},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eco.Classify(tt.impact))
		})
	}
}

func TestCertificationMatchesEcoFriendlyTier(t *testing.T) {
	// Certification and the ECO_FRIENDLY tier share one threshold.
	for _, v := range []float64{0, 0.5, 1.5, 1.9999, 2.0, 2.5, 10.0, 11} {
		got := eco.QualifiesForCertification(ptr(v))
		want := eco.Classify(ptr(v)) == eco.RatingEcoFriendly
		assert.Equal(t, want, got, "carbon impact %v", v)
	}
	assert.False(t, eco.QualifiesForCertification(nil))
}

func TestRatingValid(t *testing.T) {
	assert.True(t, eco.RatingEcoFriendly.Valid())
	assert.True(t, eco.RatingUnrated.Valid())
	assert.False(t, eco.Rating("GREENWASH").Valid())
}

func TestRatingDisplay(t *testing.T) {
	assert.Equal(t, "Eco-Friendly", eco.RatingEcoFriendly.DisplayName())
	assert.Equal(t, "Unrated", eco.Rating("bogus").DisplayName())
	assert.Equal(t, "Not yet rated", eco.Rating("bogus").Description())
}
