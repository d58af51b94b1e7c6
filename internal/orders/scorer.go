package orders

import "ecobazaar/internal/eco"

// Eco score formula constants.
const (
	scoreBase             = 10
	ratingBonusMultiplier = 5
	lowCarbonBonus        = 20
	lowCarbonPerItemMax   = 5.0 // kg CO2e average per item
	certifiedBonusPerUnit = 15
)

// ScoreForOrder computes the eco score an order is worth to its buyer.
// It is a pure function of the order's item snapshots, so the award on
// delivery and the claw-back on an approved return are always the same
// number.
//
//	score  = 10
//	score += floor(avg rating weight * 5)   weight: ECO_FRIENDLY 5, MODERATE 3, HIGH_IMPACT 1, else 2
//	score += 20 if avg carbon per item < 5.0
//	score += 15 per eco-certified unit
func ScoreForOrder(o *Order) int {
	score := scoreBase
	if o.TotalItems == 0 {
		return score
	}

	var weightSum float64
	var carbonSum float64
	certifiedUnits := 0
	for _, it := range o.Items {
		weightSum += float64(eco.ScoreWeight(it.EcoRating) * it.Quantity)
		carbonSum += it.TotalCarbon
		if it.EcoCertified {
			certifiedUnits += it.Quantity
		}
	}

	avgWeight := weightSum / float64(o.TotalItems)
	avgCarbonPerItem := carbonSum / float64(o.TotalItems)

	score += int(avgWeight * ratingBonusMultiplier)
	if avgCarbonPerItem < lowCarbonPerItemMax {
		score += lowCarbonBonus
	}
	score += certifiedUnits * certifiedBonusPerUnit

	return score
}
