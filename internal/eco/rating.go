// Package eco holds the carbon accounting rules: the eco-rating tiers
// derived from a product's carbon footprint and the metrics computed
// from them. Everything here is pure; persistence and transport live
// elsewhere.
package eco

// Rating is the eco tier assigned to a product from its carbon impact.
type Rating string

const (
	RatingEcoFriendly Rating = "ECO_FRIENDLY"
	RatingModerate    Rating = "MODERATE"
	RatingHighImpact  Rating = "HIGH_IMPACT"
	RatingUnrated     Rating = "UNRATED"
)

// Thresholds in kg CO2e per unit.
const (
	EcoFriendlyThreshold = 2.0
	ModerateThreshold    = 10.0
)

// Classify maps a carbon impact to its rating tier. A nil impact means
// the product has never been rated. Exactly 2.0 is MODERATE (strict <
// for ECO_FRIENDLY); exactly 10.0 is still MODERATE.
func Classify(carbonImpact *float64) Rating {
	if carbonImpact == nil {
		return RatingUnrated
	}
	switch impact := *carbonImpact; {
	case impact < EcoFriendlyThreshold:
		return RatingEcoFriendly
	case impact <= ModerateThreshold:
		return RatingModerate
	default:
		return RatingHighImpact
	}
}

// Valid reports whether r is one of the known tiers.
func (r Rating) Valid() bool {
	switch r {
	case RatingEcoFriendly, RatingModerate, RatingHighImpact, RatingUnrated:
		return true
	}
	return false
}

// DisplayName returns the human-facing tier name.
func (r Rating) DisplayName() string {
	switch r {
	case RatingEcoFriendly:
		return "Eco-Friendly"
	case RatingModerate:
		return "Moderate"
	case RatingHighImpact:
		return "High Impact"
	default:
		return "Unrated"
	}
}

// Description returns the human-facing tier description.
func (r Rating) Description() string {
	switch r {
	case RatingEcoFriendly:
		return "Low carbon footprint (< 2 kg CO2e)"
	case RatingModerate:
		return "Moderate carbon footprint (2-10 kg CO2e)"
	case RatingHighImpact:
		return "High carbon footprint (> 10 kg CO2e)"
	default:
		return "Not yet rated"
	}
}
