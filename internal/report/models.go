package report

import "ecobazaar/internal/eco"

// Reports are computed on demand for a (subject, calendar month) pair
// and never persisted; every numeric field is a fold over the matching
// order item snapshots.

type CategoryStats struct {
	Category    string  `json:"category"`
	ItemCount   int     `json:"item_count"`
	TotalAmount float64 `json:"total_amount"` // spend (buyer) or revenue (seller)
	TotalCarbon float64 `json:"total_carbon"`
	OrderCount  int     `json:"order_count"` // distinct orders touching the category
}

type CarbonImpactDetails struct {
	TotalCarbonEmitted   float64 `json:"total_carbon_emitted"`
	EstimatedCarbonSaved float64 `json:"estimated_carbon_saved"`
	AverageCarbonPerItem float64 `json:"average_carbon_per_item"`
	EcoFriendlyItemCount int     `json:"eco_friendly_item_count"`
	ModerateItemCount    int     `json:"moderate_item_count"`
	HighImpactItemCount  int     `json:"high_impact_item_count"`
}

type PurchasedItem struct {
	ProductName  string     `json:"product_name"`
	Category     string     `json:"category"`
	EcoRating    eco.Rating `json:"eco_rating"`
	Quantity     int        `json:"quantity"`
	Price        float64    `json:"price"`
	Subtotal     float64    `json:"subtotal"`
	CarbonImpact float64    `json:"carbon_impact"`
	TotalCarbon  float64    `json:"total_carbon"`
	OrderDate    string     `json:"order_date"`
	SellerName   string     `json:"seller_name"`
}

type UserPurchaseReport struct {
	UserID              string              `json:"user_id"`
	UserName            string              `json:"user_name"`
	Month               string              `json:"month"`
	TotalOrders         int                 `json:"total_orders"`
	TotalItemsBought    int                 `json:"total_items_bought"`
	TotalSpent          float64             `json:"total_spent"`
	TotalCarbonEmitted  float64             `json:"total_carbon_emitted"`
	ItemsBought         []PurchasedItem     `json:"items_bought"`
	CategoryBreakdown   []CategoryStats     `json:"category_breakdown"`
	PriceByCategory     map[string]float64  `json:"price_by_category"`
	CarbonImpactDetails CarbonImpactDetails `json:"carbon_impact_details"`
}

type SoldItem struct {
	ProductName  string     `json:"product_name"`
	Category     string     `json:"category"`
	EcoRating    eco.Rating `json:"eco_rating"`
	Quantity     int        `json:"quantity"`
	Price        float64    `json:"price"`
	Subtotal     float64    `json:"subtotal"`
	CarbonImpact float64    `json:"carbon_impact"`
	TotalCarbon  float64    `json:"total_carbon"`
	OrderDate    string     `json:"order_date"`
	BuyerName    string     `json:"buyer_name"`
}

type DailySales struct {
	Date       string  `json:"date"` // YYYY-MM-DD
	ItemsSold  int     `json:"items_sold"`
	Revenue    float64 `json:"revenue"`
	OrderCount int     `json:"order_count"`
}

type SellerSalesReport struct {
	SellerID            string                `json:"seller_id"`
	SellerName          string                `json:"seller_name"`
	Month               string                `json:"month"`
	TotalOrders         int                   `json:"total_orders"`
	TotalItemsSold      int                   `json:"total_items_sold"`
	TotalRevenue        float64               `json:"total_revenue"`
	TotalCarbonImpact   float64               `json:"total_carbon_impact"`
	ItemsSold           []SoldItem            `json:"items_sold"`
	CategoryBreakdown   []CategoryStats       `json:"category_breakdown"`
	RevenueByCategory   map[string]float64    `json:"revenue_by_category"`
	DailySales          map[string]DailySales `json:"daily_sales"`
	CarbonImpactDetails CarbonImpactDetails   `json:"carbon_impact_details"`
}
