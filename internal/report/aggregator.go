// Package report builds the monthly purchase and sales reports by
// folding order item snapshots into category, daily and carbon-tier
// buckets. Reports are pure reductions; nothing here mutates orders,
// products or users.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"ecobazaar/internal/apperr"
	"ecobazaar/internal/eco"
	"ecobazaar/internal/orders"
	"ecobazaar/internal/redisx"
	"ecobazaar/internal/users"
)

// Estimated-carbon-saved heuristics. Business-provided constants: the
// user-side figure assumes the forgone high-impact choice would have
// emitted 10x, the seller-side figure assumes eco-friendly items save
// about 60% against the seller's average item.
const (
	userSavedMultiplier   = 9.0
	sellerSavedMultiplier = 0.6
)

const (
	orderDateFormat = "2006-01-02 15:04"
	dayKeyFormat    = "2006-01-02"
)

// OrderSource is the slice of the order store the aggregator scans.
type OrderSource interface {
	ListByUserInRange(ctx context.Context, userID string, start, end time.Time) ([]orders.Order, error)
	ListContainingSellerInRange(ctx context.Context, sellerID string, start, end time.Time) ([]orders.Order, error)
}

// UserSource resolves subject and counterparty names.
type UserSource interface {
	FindByID(ctx context.Context, id string) (*users.User, error)
}

type Aggregator struct {
	Orders OrderSource
	Users  UserSource
	Redis  *redis.Client // optional report cache
}

// MonthRange resolves a YYYY-MM month to its inclusive
// [first-day 00:00:00, last-day 23:59:59] UTC window.
func MonthRange(month string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01", month, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q, want YYYY-MM: %w", month, apperr.ErrInvalidState)
	}
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return start, end, nil
}

type categoryAcc struct {
	itemCount   int
	totalAmount float64
	totalCarbon float64
	orderIDs    map[string]struct{}
}

func accumulateCategory(m map[string]*categoryAcc, category, orderID string, it *orders.OrderItem) {
	acc, ok := m[category]
	if !ok {
		acc = &categoryAcc{orderIDs: map[string]struct{}{}}
		m[category] = acc
	}
	acc.itemCount += it.Quantity
	acc.totalAmount += it.Subtotal
	acc.totalCarbon += it.TotalCarbon
	acc.orderIDs[orderID] = struct{}{}
}

// categoryBreakdown emits buckets sorted descending by amount.
func categoryBreakdown(m map[string]*categoryAcc) ([]CategoryStats, map[string]float64) {
	out := make([]CategoryStats, 0, len(m))
	byCategory := make(map[string]float64, len(m))
	for category, acc := range m {
		out = append(out, CategoryStats{
			Category:    category,
			ItemCount:   acc.itemCount,
			TotalAmount: acc.totalAmount,
			TotalCarbon: acc.totalCarbon,
			OrderCount:  len(acc.orderIDs),
		})
		byCategory[category] = acc.totalAmount
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalAmount != out[j].TotalAmount {
			return out[i].TotalAmount > out[j].TotalAmount
		}
		return out[i].Category < out[j].Category
	})
	return out, byCategory
}

// UserPurchaseReport folds everything the user bought in the month.
func (a *Aggregator) UserPurchaseReport(ctx context.Context, userID, month string) (*UserPurchaseReport, error) {
	start, end, err := MonthRange(month)
	if err != nil {
		return nil, err
	}
	user, err := a.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf(redisx.KeyUserReport, userID, month)
	var cached UserPurchaseReport
	if a.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	monthOrders, err := a.Orders.ListByUserInRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	rep := &UserPurchaseReport{
		UserID:   userID,
		UserName: user.Name,
		Month:    month,
	}

	orderIDs := map[string]struct{}{}
	categories := map[string]*categoryAcc{}
	sellerNames := map[string]string{}
	var estimatedSaved float64
	details := CarbonImpactDetails{}

	for oi := range monthOrders {
		o := &monthOrders[oi]
		orderIDs[o.ID] = struct{}{}

		for ii := range o.Items {
			it := &o.Items[ii]

			rep.ItemsBought = append(rep.ItemsBought, PurchasedItem{
				ProductName:  it.ProductName,
				Category:     it.Category,
				EcoRating:    it.EcoRating,
				Quantity:     it.Quantity,
				Price:        it.Price,
				Subtotal:     it.Subtotal,
				CarbonImpact: it.CarbonImpact,
				TotalCarbon:  it.TotalCarbon,
				OrderDate:    o.OrderDate.Format(orderDateFormat),
				SellerName:   a.userName(ctx, sellerNames, it.SellerID),
			})

			rep.TotalItemsBought += it.Quantity
			rep.TotalSpent += it.Subtotal
			rep.TotalCarbonEmitted += it.TotalCarbon
			accumulateCategory(categories, it.Category, o.ID, it)

			switch it.EcoRating {
			case eco.RatingEcoFriendly:
				details.EcoFriendlyItemCount += it.Quantity
				estimatedSaved += it.TotalCarbon * userSavedMultiplier
			case eco.RatingModerate:
				details.ModerateItemCount += it.Quantity
			case eco.RatingHighImpact:
				details.HighImpactItemCount += it.Quantity
			case eco.RatingUnrated:
			}
		}
	}

	rep.TotalOrders = len(orderIDs)
	rep.CategoryBreakdown, rep.PriceByCategory = categoryBreakdown(categories)

	details.TotalCarbonEmitted = rep.TotalCarbonEmitted
	details.EstimatedCarbonSaved = estimatedSaved
	if rep.TotalItemsBought > 0 {
		details.AverageCarbonPerItem = eco.RoundHalfUp(rep.TotalCarbonEmitted/float64(rep.TotalItemsBought), 2)
	}
	rep.CarbonImpactDetails = details

	a.cacheSet(ctx, cacheKey, rep)
	return rep, nil
}

// SellerSalesReport folds the seller's own lines out of every order
// that touched them in the month. Mixed orders contribute only the
// seller's lines to every sum.
func (a *Aggregator) SellerSalesReport(ctx context.Context, sellerID, month string) (*SellerSalesReport, error) {
	start, end, err := MonthRange(month)
	if err != nil {
		return nil, err
	}
	seller, err := a.Users.FindByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf(redisx.KeySellerReport, sellerID, month)
	var cached SellerSalesReport
	if a.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	monthOrders, err := a.Orders.ListContainingSellerInRange(ctx, sellerID, start, end)
	if err != nil {
		return nil, err
	}

	rep := &SellerSalesReport{
		SellerID:   sellerID,
		SellerName: seller.Name,
		Month:      month,
		DailySales: map[string]DailySales{},
	}

	orderIDs := map[string]struct{}{}
	categories := map[string]*categoryAcc{}
	buyerNames := map[string]string{}
	type dayAcc struct {
		items    int
		revenue  float64
		orderIDs map[string]struct{}
	}
	days := map[string]*dayAcc{}
	details := CarbonImpactDetails{}

	for oi := range monthOrders {
		o := &monthOrders[oi]
		for ii := range o.Items {
			it := &o.Items[ii]
			if it.SellerID != sellerID {
				continue
			}

			rep.ItemsSold = append(rep.ItemsSold, SoldItem{
				ProductName:  it.ProductName,
				Category:     it.Category,
				EcoRating:    it.EcoRating,
				Quantity:     it.Quantity,
				Price:        it.Price,
				Subtotal:     it.Subtotal,
				CarbonImpact: it.CarbonImpact,
				TotalCarbon:  it.TotalCarbon,
				OrderDate:    o.OrderDate.Format(orderDateFormat),
				BuyerName:    a.userName(ctx, buyerNames, o.UserID),
			})

			rep.TotalItemsSold += it.Quantity
			rep.TotalRevenue += it.Subtotal
			rep.TotalCarbonImpact += it.TotalCarbon
			orderIDs[o.ID] = struct{}{}
			accumulateCategory(categories, it.Category, o.ID, it)

			dayKey := o.OrderDate.Format(dayKeyFormat)
			day, ok := days[dayKey]
			if !ok {
				day = &dayAcc{orderIDs: map[string]struct{}{}}
				days[dayKey] = day
			}
			day.items += it.Quantity
			day.revenue += it.Subtotal
			day.orderIDs[o.ID] = struct{}{}

			switch it.EcoRating {
			case eco.RatingEcoFriendly:
				details.EcoFriendlyItemCount += it.Quantity
			case eco.RatingModerate:
				details.ModerateItemCount += it.Quantity
			case eco.RatingHighImpact:
				details.HighImpactItemCount += it.Quantity
			case eco.RatingUnrated:
			}
		}
	}

	rep.TotalOrders = len(orderIDs)
	rep.CategoryBreakdown, rep.RevenueByCategory = categoryBreakdown(categories)
	for key, day := range days {
		rep.DailySales[key] = DailySales{
			Date:       key,
			ItemsSold:  day.items,
			Revenue:    day.revenue,
			OrderCount: len(day.orderIDs),
		}
	}

	details.TotalCarbonEmitted = rep.TotalCarbonImpact
	if rep.TotalItemsSold > 0 {
		details.AverageCarbonPerItem = eco.RoundHalfUp(rep.TotalCarbonImpact/float64(rep.TotalItemsSold), 2)
	}
	details.EstimatedCarbonSaved = float64(details.EcoFriendlyItemCount) * details.AverageCarbonPerItem * sellerSavedMultiplier
	rep.CarbonImpactDetails = details

	a.cacheSet(ctx, cacheKey, rep)
	return rep, nil
}

// userName memoizes name lookups per report; unknown ids render empty.
func (a *Aggregator) userName(ctx context.Context, memo map[string]string, id string) string {
	if name, ok := memo[id]; ok {
		return name
	}
	name := ""
	if u, err := a.Users.FindByID(ctx, id); err == nil {
		name = u.Name
	}
	memo[id] = name
	return name
}

func (a *Aggregator) cacheGet(ctx context.Context, key string, out any) bool {
	if a.Redis == nil {
		return false
	}
	raw, err := a.Redis.Get(ctx, key).Result()
	if err != nil || raw == "" {
		return false
	}
	return json.Unmarshal([]byte(raw), out) == nil
}

func (a *Aggregator) cacheSet(ctx context.Context, key string, rep any) {
	if a.Redis == nil {
		return
	}
	b, err := json.Marshal(rep)
	if err != nil {
		return
	}
	if err := a.Redis.Set(ctx, key, b, redisx.TTLReport).Err(); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("report cache write failed")
	}
}
