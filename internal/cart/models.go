package cart

import "time"

// Cart holds a buyer's pending items. Price and carbon are snapshotted
// from the product when the item is added; totals are recomputed on
// every mutation.
type Cart struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Items       []Item    `json:"items"`
	TotalPrice  float64   `json:"total_price"`
	TotalCarbon float64   `json:"total_carbon"`
	TotalItems  int       `json:"total_items"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Item struct {
	ID           string  `json:"id"`
	CartID       string  `json:"cart_id"`
	ProductID    string  `json:"product_id"`
	ProductName  string  `json:"product_name"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`         // unit price at add time
	CarbonImpact float64 `json:"carbon_impact"` // kg CO2e per unit at add time
	Subtotal     float64 `json:"subtotal"`
	TotalCarbon  float64 `json:"total_carbon"`
}
