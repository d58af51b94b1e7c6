// Package recommend ranks catalog products by carbon impact and
// eco-value. All operations draw from approved, in-stock products and
// return possibly-empty lists; only an unknown referenced product id is
// an error.
package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"ecobazaar/internal/catalog"
	"ecobazaar/internal/eco"
	"ecobazaar/internal/redisx"
)

// Catalog is the slice of the product store the engine reads.
type Catalog interface {
	FindByID(ctx context.Context, id string) (*catalog.Product, error)
	ListApprovedInStock(ctx context.Context) ([]catalog.Product, error)
}

type Engine struct {
	Catalog Catalog
	Redis   *redis.Client // optional; nil disables caching
}

const (
	// GreenerAlternativesCap bounds the greener-alternatives list.
	GreenerAlternativesCap = 5

	// Similar products match within [0.6x, 1.4x] of the source price.
	similarPriceLow  = 0.6
	similarPriceHigh = 1.4

	// Eco-value composite: price/1000 + carbon impact, lower is better.
	ecoValuePriceDivisor = 1000.0
)

// SavingsComparison quantifies switching qty units from one product to
// another.
type SavingsComparison struct {
	CurrentProductID     string  `json:"current_product_id"`
	AlternativeProductID string  `json:"alternative_product_id"`
	Quantity             int     `json:"quantity"`
	CurrentCarbon        float64 `json:"current_carbon"`
	AlternativeCarbon    float64 `json:"alternative_carbon"`
	CarbonSavings        float64 `json:"carbon_savings"`
	SavingsPercentage    float64 `json:"savings_percentage"`
}

// CartRecommendation pairs a non-eco-friendly cart product with its
// greener alternatives.
type CartRecommendation struct {
	CurrentProduct   catalog.Product   `json:"current_product"`
	Alternatives     []catalog.Product `json:"alternatives"`
	PotentialSavings float64           `json:"potential_savings"` // vs the greenest alternative, per unit
}

func carbonOf(p *catalog.Product) float64 {
	if p.CarbonImpact == nil {
		return 0
	}
	return *p.CarbonImpact
}

// sortByCarbon orders rated products ascending by carbon impact,
// unrated last, stable so catalog order breaks ties.
func sortByCarbon(ps []catalog.Product) {
	sort.SliceStable(ps, func(i, j int) bool {
		ci, cj := math.Inf(1), math.Inf(1)
		if ps[i].CarbonImpact != nil {
			ci = *ps[i].CarbonImpact
		}
		if ps[j].CarbonImpact != nil {
			cj = *ps[j].CarbonImpact
		}
		return ci < cj
	})
}

func capList(ps []catalog.Product, limit int) []catalog.Product {
	if limit >= 0 && len(ps) > limit {
		return ps[:limit]
	}
	return ps
}

// GreenerAlternatives lists up to 5 same-category products with a
// strictly lower carbon impact than the source, greenest first. An
// unrated source has nothing strictly greener.
func (e *Engine) GreenerAlternatives(ctx context.Context, productID string) ([]catalog.Product, error) {
	source, err := e.Catalog.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if source.CarbonImpact == nil {
		return nil, nil
	}

	candidates, err := e.Catalog.ListApprovedInStock(ctx)
	if err != nil {
		return nil, err
	}

	var out []catalog.Product
	for _, p := range candidates {
		if p.ID == source.ID || p.Category != source.Category {
			continue
		}
		if p.CarbonImpact == nil || *p.CarbonImpact >= *source.CarbonImpact {
			continue
		}
		out = append(out, p)
	}
	sortByCarbon(out)
	return capList(out, GreenerAlternativesCap), nil
}

// CarbonSavings compares qty units of the current product against an
// alternative. A zero current footprint yields a 0% saving rather than
// a division error.
func (e *Engine) CarbonSavings(ctx context.Context, currentID, alternativeID string, qty int) (*SavingsComparison, error) {
	current, err := e.Catalog.FindByID(ctx, currentID)
	if err != nil {
		return nil, err
	}
	alt, err := e.Catalog.FindByID(ctx, alternativeID)
	if err != nil {
		return nil, err
	}

	currentCarbon := carbonOf(current) * float64(qty)
	altCarbon := carbonOf(alt) * float64(qty)
	savings := currentCarbon - altCarbon

	pct := 0.0
	if currentCarbon != 0 {
		pct = eco.RoundHalfUp(savings/currentCarbon, 4) * 100
	}

	return &SavingsComparison{
		CurrentProductID:     current.ID,
		AlternativeProductID: alt.ID,
		Quantity:             qty,
		CurrentCarbon:        currentCarbon,
		AlternativeCarbon:    altCarbon,
		CarbonSavings:        savings,
		SavingsPercentage:    pct,
	}, nil
}

// EcoFriendlyRecommendations lists ECO_FRIENDLY products, greenest
// first. Results are cached briefly in Redis since the list only moves
// with catalog writes.
func (e *Engine) EcoFriendlyRecommendations(ctx context.Context, limit int) ([]catalog.Product, error) {
	key := fmt.Sprintf(redisx.KeyEcoFriendlyRecs, limit)
	if cached, ok := e.cacheGet(ctx, key); ok {
		return cached, nil
	}

	candidates, err := e.Catalog.ListApprovedInStock(ctx)
	if err != nil {
		return nil, err
	}
	var out []catalog.Product
	for _, p := range candidates {
		if p.EcoRating == eco.RatingEcoFriendly {
			out = append(out, p)
		}
	}
	sortByCarbon(out)
	out = capList(out, limit)

	e.cacheSet(ctx, key, out)
	return out, nil
}

// SimilarProducts lists same-category products priced within the
// similarity band of the source, greenest first.
func (e *Engine) SimilarProducts(ctx context.Context, productID string, limit int) ([]catalog.Product, error) {
	source, err := e.Catalog.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	priceMin := source.Price * similarPriceLow
	priceMax := source.Price * similarPriceHigh

	candidates, err := e.Catalog.ListApprovedInStock(ctx)
	if err != nil {
		return nil, err
	}
	var out []catalog.Product
	for _, p := range candidates {
		if p.ID == source.ID || p.Category != source.Category {
			continue
		}
		if p.Price < priceMin || p.Price > priceMax {
			continue
		}
		out = append(out, p)
	}
	sortByCarbon(out)
	return capList(out, limit), nil
}

// BestEcoValue ranks rated products by the composite score
// price/1000 + carbon impact, cheapest-greenest first. Category is an
// optional filter; ties keep catalog order.
func (e *Engine) BestEcoValue(ctx context.Context, category string, limit int) ([]catalog.Product, error) {
	candidates, err := e.Catalog.ListApprovedInStock(ctx)
	if err != nil {
		return nil, err
	}
	var out []catalog.Product
	for _, p := range candidates {
		if category != "" && p.Category != category {
			continue
		}
		if p.CarbonImpact == nil {
			continue // unrated products have no eco-value score
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		si := out[i].Price/ecoValuePriceDivisor + *out[i].CarbonImpact
		sj := out[j].Price/ecoValuePriceDivisor + *out[j].CarbonImpact
		return si < sj
	})
	return capList(out, limit), nil
}

// CartRecommendations suggests greener alternatives for every cart
// product that is not already eco-friendly. Unknown ids are skipped
// rather than failing the whole cart.
func (e *Engine) CartRecommendations(ctx context.Context, productIDs []string) ([]CartRecommendation, error) {
	var out []CartRecommendation
	for _, id := range productIDs {
		p, err := e.Catalog.FindByID(ctx, id)
		if err != nil {
			continue
		}
		if p.EcoRating == eco.RatingEcoFriendly {
			continue
		}
		alts, err := e.GreenerAlternatives(ctx, id)
		if err != nil || len(alts) == 0 {
			continue
		}
		out = append(out, CartRecommendation{
			CurrentProduct:   *p,
			Alternatives:     alts,
			PotentialSavings: carbonOf(p) - carbonOf(&alts[0]),
		})
	}
	return out, nil
}

func (e *Engine) cacheGet(ctx context.Context, key string) ([]catalog.Product, bool) {
	if e.Redis == nil {
		return nil, false
	}
	raw, err := e.Redis.Get(ctx, key).Result()
	if err != nil || raw == "" {
		return nil, false
	}
	var out []catalog.Product
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, false
	}
	return out, true
}

func (e *Engine) cacheSet(ctx context.Context, key string, ps []catalog.Product) {
	if e.Redis == nil {
		return
	}
	b, err := json.Marshal(ps)
	if err != nil {
		return
	}
	if err := e.Redis.Set(ctx, key, b, redisx.TTLRecommendation).Err(); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("recommendation cache write failed")
	}
}
