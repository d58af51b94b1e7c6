package catalog

import (
	"time"

	"ecobazaar/internal/eco"
)

// Product is a catalog listing owned by a seller. EcoRating and
// EcoCertified are derived from CarbonImpact on every write; Approved
// gates visibility and flips back to false on any seller edit.
type Product struct {
	ID           string     `json:"id"`
	SellerID     string     `json:"seller_id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	Price        float64    `json:"price"`
	Stock        int        `json:"stock"`
	CarbonImpact *float64   `json:"carbon_impact"` // kg CO2e per unit, nil until rated
	EcoRating    eco.Rating `json:"eco_rating"`
	EcoCertified bool       `json:"eco_certified"`
	Approved     bool       `json:"approved"`
	ImageURL     string     `json:"image_url,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CarbonMetrics describes a product's standing against its category.
type CarbonMetrics struct {
	ProductID           string     `json:"product_id"`
	CarbonImpact        *float64   `json:"carbon_impact"`
	EcoRating           eco.Rating `json:"eco_rating"`
	RatingDisplayName   string     `json:"rating_display_name"`
	RatingDescription   string     `json:"rating_description"`
	EcoCertified        bool       `json:"eco_certified"`
	CategoryAverage     *float64   `json:"category_average"`
	CarbonSavings       float64    `json:"carbon_savings"`
	PercentageReduction float64    `json:"percentage_reduction"`
	EcoScorePoints      int        `json:"eco_score_points"`
}
