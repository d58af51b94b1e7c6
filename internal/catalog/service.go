package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"ecobazaar/internal/apperr"
	"ecobazaar/internal/eco"
	"ecobazaar/internal/users"
)

// UserFinder is the slice of the user store the catalog needs.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*users.User, error)
}

// Store is the product persistence surface the service writes through.
// *Repo satisfies it.
type Store interface {
	FindByID(ctx context.Context, id string) (*Product, error)
	Insert(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
	CategoryAverageCarbon(ctx context.Context, category string) (*float64, error)
}

// Service applies the classify-on-write rules around the product store:
// every create/update re-derives the eco rating and certification from
// the carbon impact, and seller edits drop approval until an admin
// re-approves the listing.
type Service struct {
	Store Store
	Users UserFinder
}

type ProductInput struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Price        float64  `json:"price"`
	Stock        int      `json:"stock"`
	CarbonImpact *float64 `json:"carbon_impact"`
	ImageURL     string   `json:"image_url"`
}

func (in ProductInput) validate() error {
	if in.Name == "" || in.Category == "" {
		return fmt.Errorf("name and category are required: %w", apperr.ErrInvalidState)
	}
	if in.Price < 0 {
		return fmt.Errorf("price must not be negative: %w", apperr.ErrInvalidState)
	}
	if in.Stock < 0 {
		return fmt.Errorf("stock must not be negative: %w", apperr.ErrInvalidState)
	}
	if in.CarbonImpact != nil && *in.CarbonImpact < 0 {
		return fmt.Errorf("carbon impact must not be negative: %w", apperr.ErrInvalidState)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, sellerID string, in ProductInput) (*Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	seller, err := s.Users.FindByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if seller.Role != users.RoleSeller && seller.Role != users.RoleAdmin {
		return nil, fmt.Errorf("user %s is not a seller: %w", sellerID, apperr.ErrUnauthorized)
	}

	p := &Product{
		ID:           uuid.NewString(),
		SellerID:     sellerID,
		Name:         in.Name,
		Description:  in.Description,
		Category:     in.Category,
		Price:        in.Price,
		Stock:        in.Stock,
		CarbonImpact: in.CarbonImpact,
		EcoRating:    eco.Classify(in.CarbonImpact),
		EcoCertified: eco.QualifiesForCertification(in.CarbonImpact),
		Approved:     false,
		ImageURL:     in.ImageURL,
	}
	if err := s.Store.Insert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id, sellerID string, in ProductInput) (*Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.SellerID != sellerID {
		return nil, fmt.Errorf("product %s belongs to another seller: %w", id, apperr.ErrUnauthorized)
	}

	p.Name = in.Name
	p.Description = in.Description
	p.Category = in.Category
	p.Price = in.Price
	p.Stock = in.Stock
	p.ImageURL = in.ImageURL
	if in.CarbonImpact != nil {
		p.CarbonImpact = in.CarbonImpact
		p.EcoRating = eco.Classify(in.CarbonImpact)
		p.EcoCertified = eco.QualifiesForCertification(in.CarbonImpact)
	}
	// Edits go back through admin review.
	p.Approved = false

	if err := s.Store.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id, sellerID string) error {
	p, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if p.SellerID != sellerID {
		return fmt.Errorf("product %s belongs to another seller: %w", id, apperr.ErrUnauthorized)
	}
	return s.Store.Delete(ctx, id)
}

// CarbonMetrics assembles the derived carbon numbers for one product
// against its category average.
func (s *Service) CarbonMetrics(ctx context.Context, id string) (*CarbonMetrics, error) {
	p, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	avg, err := s.Store.CategoryAverageCarbon(ctx, p.Category)
	if err != nil {
		return nil, err
	}
	return &CarbonMetrics{
		ProductID:           p.ID,
		CarbonImpact:        p.CarbonImpact,
		EcoRating:           p.EcoRating,
		RatingDisplayName:   p.EcoRating.DisplayName(),
		RatingDescription:   p.EcoRating.Description(),
		EcoCertified:        p.EcoCertified,
		CategoryAverage:     avg,
		CarbonSavings:       eco.CarbonSavings(p.CarbonImpact, avg),
		PercentageReduction: eco.PercentageReduction(p.CarbonImpact, avg),
		EcoScorePoints:      eco.ScorePoints(p.EcoRating),
	}, nil
}
