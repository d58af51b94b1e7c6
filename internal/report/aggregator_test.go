package report_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecobazaar/internal/apperr"
	"ecobazaar/internal/eco"
	"ecobazaar/internal/orders"
	"ecobazaar/internal/report"
	"ecobazaar/internal/users"
)

type fakeOrders struct {
	orders []orders.Order
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

func (f *fakeOrders) ListByUserInRange(_ context.Context, userID string, start, end time.Time) ([]orders.Order, error) {
	var out []orders.Order
	for _, o := range f.orders {
		if o.UserID == userID && inRange(o.OrderDate, start, end) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) ListContainingSellerInRange(_ context.Context, sellerID string, start, end time.Time) ([]orders.Order, error) {
	var out []orders.Order
	for _, o := range f.orders {
		if o.ContainsSeller(sellerID) && inRange(o.OrderDate, start, end) {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakeUsers map[string]*users.User

func (f fakeUsers) FindByID(_ context.Context, id string) (*users.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}
	return u, nil
}

func snapshotItem(seller, name, category string, rating eco.Rating, qty int, price, carbon float64) orders.OrderItem {
	return orders.OrderItem{
		SellerID:     seller,
		ProductName:  name,
		Category:     category,
		EcoRating:    rating,
		Quantity:     qty,
		Price:        price,
		CarbonImpact: carbon,
		Subtotal:     price * float64(qty),
		TotalCarbon:  carbon * float64(qty),
	}
}

func buildOrder(id, userID string, date time.Time, items ...orders.OrderItem) orders.Order {
	o := orders.Order{ID: id, UserID: userID, OrderDate: date, Items: items, Status: orders.StatusDelivered}
	for _, it := range items {
		o.TotalItems += it.Quantity
		o.TotalPrice += it.Subtotal
		o.TotalCarbon += it.TotalCarbon
	}
	return o
}

func newAggregator(os []orders.Order) *report.Aggregator {
	return &report.Aggregator{
		Orders: &fakeOrders{orders: os},
		Users: fakeUsers{
			"buyer-1":  {ID: "buyer-1", Name: "Aidana"},
			"seller-1": {ID: "seller-1", Name: "GreenGoods"},
			"seller-2": {ID: "seller-2", Name: "OtherShop"},
		},
	}
}

func TestMonthRange(t *testing.T) {
	start, end, err := report.MonthRange("2026-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC), end)

	_, _, err = report.MonthRange("Feb 2026")
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestUserPurchaseReport(t *testing.T) {
	march := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	agg := newAggregator([]orders.Order{
		buildOrder("o1", "buyer-1", march,
			snapshotItem("seller-1", "Bamboo brush", "home", eco.RatingEcoFriendly, 2, 5, 1),
			snapshotItem("seller-2", "Gas grill", "garden", eco.RatingHighImpact, 1, 200, 20),
		),
		buildOrder("o2", "buyer-1", march.AddDate(0, 0, 3),
			snapshotItem("seller-1", "Cotton towel", "home", eco.RatingModerate, 1, 15, 4),
		),
		// outside the month, must not count
		buildOrder("o3", "buyer-1", march.AddDate(0, 1, 0),
			snapshotItem("seller-1", "Bamboo brush", "home", eco.RatingEcoFriendly, 1, 5, 1),
		),
	})

	rep, err := agg.UserPurchaseReport(context.Background(), "buyer-1", "2026-03")
	require.NoError(t, err)

	assert.Equal(t, "Aidana", rep.UserName)
	assert.Equal(t, 2, rep.TotalOrders)
	assert.Equal(t, 4, rep.TotalItemsBought)
	assert.InDelta(t, 2*5+200+15, rep.TotalSpent, 1e-9)
	assert.InDelta(t, 2*1+20+4, rep.TotalCarbonEmitted, 1e-9)
	assert.Len(t, rep.ItemsBought, 3)
	assert.Equal(t, "GreenGoods", rep.ItemsBought[0].SellerName)

	// Category buckets sorted by spend, garden (200) before home (25).
	require.Len(t, rep.CategoryBreakdown, 2)
	assert.Equal(t, "garden", rep.CategoryBreakdown[0].Category)
	assert.Equal(t, "home", rep.CategoryBreakdown[1].Category)
	assert.Equal(t, 2, rep.CategoryBreakdown[1].OrderCount, "home appears in two distinct orders")

	details := rep.CarbonImpactDetails
	assert.Equal(t, 2, details.EcoFriendlyItemCount)
	assert.Equal(t, 1, details.ModerateItemCount)
	assert.Equal(t, 1, details.HighImpactItemCount)
	// Saved heuristic: 9x the carbon of eco-friendly lines (2 kg).
	assert.InDelta(t, 18.0, details.EstimatedCarbonSaved, 1e-9)
	// 26 kg over 4 items, 2dp half-up.
	assert.InDelta(t, 6.5, details.AverageCarbonPerItem, 1e-9)
}

func TestUserPurchaseReportTotalsAreAdditive(t *testing.T) {
	march := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	agg := newAggregator([]orders.Order{
		buildOrder("o1", "buyer-1", march,
			snapshotItem("seller-1", "A", "home", eco.RatingEcoFriendly, 3, 7, 0.5),
			snapshotItem("seller-1", "B", "kitchen", eco.RatingModerate, 2, 12, 3),
			snapshotItem("seller-2", "C", "garden", eco.RatingHighImpact, 1, 99, 14),
		),
	})

	rep, err := agg.UserPurchaseReport(context.Background(), "buyer-1", "2026-03")
	require.NoError(t, err)

	var items int
	var spent float64
	for _, c := range rep.CategoryBreakdown {
		items += c.ItemCount
		spent += c.TotalAmount
	}
	assert.Equal(t, rep.TotalItemsBought, items)
	assert.InDelta(t, rep.TotalSpent, spent, 1e-9)
}

func TestUserPurchaseReportEmptyMonth(t *testing.T) {
	agg := newAggregator(nil)

	rep, err := agg.UserPurchaseReport(context.Background(), "buyer-1", "2026-03")
	require.NoError(t, err)

	assert.Zero(t, rep.TotalOrders)
	assert.Zero(t, rep.TotalItemsBought)
	assert.Zero(t, rep.CarbonImpactDetails.AverageCarbonPerItem, "no items means average 0, not NaN")
	assert.Empty(t, rep.ItemsBought)
}

func TestUserPurchaseReportUnknownUser(t *testing.T) {
	agg := newAggregator(nil)
	_, err := agg.UserPurchaseReport(context.Background(), "ghost", "2026-03")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSellerSalesReportFiltersOwnLines(t *testing.T) {
	march1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	march1later := time.Date(2026, 3, 1, 17, 30, 0, 0, time.UTC)
	march8 := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)
	agg := newAggregator([]orders.Order{
		// mixed order: only seller-1 lines may count
		buildOrder("o1", "buyer-1", march1,
			snapshotItem("seller-1", "Bamboo brush", "home", eco.RatingEcoFriendly, 2, 5, 1),
			snapshotItem("seller-2", "Gas grill", "garden", eco.RatingHighImpact, 1, 200, 20),
		),
		buildOrder("o2", "buyer-1", march1later,
			snapshotItem("seller-1", "Cotton towel", "home", eco.RatingModerate, 1, 15, 4),
		),
		buildOrder("o3", "buyer-1", march8,
			snapshotItem("seller-1", "Solar lamp", "garden", eco.RatingEcoFriendly, 1, 40, 0.8),
		),
	})

	rep, err := agg.SellerSalesReport(context.Background(), "seller-1", "2026-03")
	require.NoError(t, err)

	assert.Equal(t, "GreenGoods", rep.SellerName)
	assert.Equal(t, 3, rep.TotalOrders)
	assert.Equal(t, 4, rep.TotalItemsSold)
	assert.InDelta(t, 2*5+15+40, rep.TotalRevenue, 1e-9, "foreign seller's grill is excluded")
	assert.InDelta(t, 2*1+4+0.8, rep.TotalCarbonImpact, 1e-9)
	assert.Len(t, rep.ItemsSold, 3)
	assert.Equal(t, "Aidana", rep.ItemsSold[0].BuyerName)

	// Daily buckets keyed by calendar day; two orders on March 1.
	require.Len(t, rep.DailySales, 2)
	day1 := rep.DailySales["2026-03-01"]
	assert.Equal(t, 3, day1.ItemsSold)
	assert.InDelta(t, 25.0, day1.Revenue, 1e-9)
	assert.Equal(t, 2, day1.OrderCount)
	day8 := rep.DailySales["2026-03-08"]
	assert.Equal(t, 1, day8.OrderCount)

	// Revenue identity over categories.
	var revenue float64
	for _, c := range rep.CategoryBreakdown {
		revenue += c.TotalAmount
	}
	assert.InDelta(t, rep.TotalRevenue, revenue, 1e-9)

	// Saved heuristic: ecoFriendlyCount * avgCarbonPerItem * 0.6.
	details := rep.CarbonImpactDetails
	assert.Equal(t, 3, details.EcoFriendlyItemCount)
	avg := details.AverageCarbonPerItem
	assert.InDelta(t, 1.7, avg, 1e-9) // 6.8 kg / 4 items
	assert.InDelta(t, 3*avg*0.6, details.EstimatedCarbonSaved, 1e-9)
}

func TestSellerSalesReportEmptyMonth(t *testing.T) {
	agg := newAggregator(nil)

	rep, err := agg.SellerSalesReport(context.Background(), "seller-1", "2026-03")
	require.NoError(t, err)
	assert.Zero(t, rep.TotalItemsSold)
	assert.Zero(t, rep.CarbonImpactDetails.EstimatedCarbonSaved)
	assert.Empty(t, rep.DailySales)
}
