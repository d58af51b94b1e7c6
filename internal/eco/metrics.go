package eco

import "math"

// QualifiesForCertification reports whether a carbon impact earns the
// eco certification. Same threshold as the ECO_FRIENDLY tier.
func QualifiesForCertification(carbonImpact *float64) bool {
	if carbonImpact == nil {
		return false
	}
	return *carbonImpact < EcoFriendlyThreshold
}

// CarbonSavings is how much CO2e a product saves against its category
// average, floored at zero. Nil inputs yield zero.
func CarbonSavings(productImpact, categoryAverage *float64) float64 {
	if productImpact == nil || categoryAverage == nil {
		return 0
	}
	return math.Max(0, *categoryAverage-*productImpact)
}

// PercentageReduction is the relative reduction against the category
// average, in percent. The ratio is rounded half-up to 4 decimal places
// before the multiply by 100. Nil inputs or a zero average yield zero.
func PercentageReduction(productImpact, categoryAverage *float64) float64 {
	if productImpact == nil || categoryAverage == nil || *categoryAverage == 0 {
		return 0
	}
	ratio := RoundHalfUp((*categoryAverage-*productImpact)/(*categoryAverage), 4)
	return math.Max(0, ratio*100)
}

// ScorePoints is the gamification points a rating tier is worth.
func ScorePoints(r Rating) int {
	switch r {
	case RatingEcoFriendly:
		return 10
	case RatingModerate:
		return 5
	default:
		return 0
	}
}

// ScoreWeight is the per-item weight a rating contributes to the order
// eco score average. Unrated items get a neutral 2.
func ScoreWeight(r Rating) int {
	switch r {
	case RatingEcoFriendly:
		return 5
	case RatingModerate:
		return 3
	case RatingHighImpact:
		return 1
	default:
		return 2
	}
}

// RoundHalfUp rounds v to the given number of decimal places, ties away
// from zero, matching decimal HALF_UP semantics.
func RoundHalfUp(v float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	if v < 0 {
		return -math.Floor(-v*shift+0.5) / shift
	}
	return math.Floor(v*shift+0.5) / shift
}
