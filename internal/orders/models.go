package orders

import (
	"time"

	"ecobazaar/internal/eco"
)

// Order is created from a non-empty cart. Items and totals are
// snapshotted at creation and never change afterwards; status and the
// return sub-state are the only mutable parts.
type Order struct {
	ID                 string       `json:"id"`
	UserID             string       `json:"user_id"`
	Items              []OrderItem  `json:"items"`
	TotalPrice         float64      `json:"total_price"`
	TotalCarbon        float64      `json:"total_carbon"`
	TotalItems         int          `json:"total_items"`
	Status             Status       `json:"status"`
	ReturnStatus       ReturnStatus `json:"return_status"`
	ReturnReason       string       `json:"return_reason,omitempty"`
	OrderDate          time.Time    `json:"order_date"`
	DeliveredDate      *time.Time   `json:"delivered_date,omitempty"`
	ReturnRequestDate  *time.Time   `json:"return_request_date,omitempty"`
	ReturnResolvedDate *time.Time   `json:"return_resolved_date,omitempty"`
}

// OrderItem is an immutable snapshot of one product line at purchase
// time. Later edits to the product never reach past orders; the eco
// scorer reads only these fields so award and reversal always agree.
type OrderItem struct {
	ID           string     `json:"id"`
	OrderID      string     `json:"order_id"`
	ProductID    string     `json:"product_id"`
	SellerID     string     `json:"seller_id"`
	ProductName  string     `json:"product_name"`
	Category     string     `json:"category"`
	EcoRating    eco.Rating `json:"eco_rating"`
	EcoCertified bool       `json:"eco_certified"`
	Quantity     int        `json:"quantity"`
	Price        float64    `json:"price"`         // unit price at purchase
	CarbonImpact float64    `json:"carbon_impact"` // kg CO2e per unit at purchase
	Subtotal     float64    `json:"subtotal"`      // Price * Quantity
	TotalCarbon  float64    `json:"total_carbon"`  // CarbonImpact * Quantity
}

// ContainsSeller reports whether any line belongs to the seller.
// Sellers may only act on orders that include their own products.
func (o *Order) ContainsSeller(sellerID string) bool {
	for _, it := range o.Items {
		if it.SellerID == sellerID {
			return true
		}
	}
	return false
}
