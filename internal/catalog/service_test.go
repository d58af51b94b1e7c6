package catalog_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecobazaar/internal/apperr"
	"ecobazaar/internal/catalog"
	"ecobazaar/internal/eco"
	"ecobazaar/internal/users"
)

type fakeStore struct {
	products map[string]*catalog.Product
	average  *float64
}

func newFakeStore() *fakeStore {
	return &fakeStore{products: map[string]*catalog.Product{}}
}

func (f *fakeStore) FindByID(_ context.Context, id string) (*catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) Insert(_ context.Context, p *catalog.Product) error {
	cp := *p
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeStore) Update(_ context.Context, p *catalog.Product) error {
	if _, ok := f.products[p.ID]; !ok {
		return fmt.Errorf("product %s: %w", p.ID, apperr.ErrNotFound)
	}
	cp := *p
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	if _, ok := f.products[id]; !ok {
		return fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
	}
	delete(f.products, id)
	return nil
}

func (f *fakeStore) CategoryAverageCarbon(_ context.Context, _ string) (*float64, error) {
	return f.average, nil
}

type fakeUsers map[string]*users.User

func (f fakeUsers) FindByID(_ context.Context, id string) (*users.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}
	return u, nil
}

func ptr(v float64) *float64 { return &v }

func newService() (*catalog.Service, *fakeStore) {
	store := newFakeStore()
	svc := &catalog.Service{
		Store: store,
		Users: fakeUsers{
			"seller-1": {ID: "seller-1", Role: users.RoleSeller},
			"buyer-1":  {ID: "buyer-1", Role: users.RoleUser},
		},
	}
	return svc, store
}

func TestCreateClassifiesOnWrite(t *testing.T) {
	svc, _ := newService()

	p, err := svc.Create(context.Background(), "seller-1", catalog.ProductInput{
		Name: "Bamboo brush", Category: "home", Price: 4.5, Stock: 10,
		CarbonImpact: ptr(1.5),
	})
	require.NoError(t, err)

	assert.Equal(t, eco.RatingEcoFriendly, p.EcoRating)
	assert.True(t, p.EcoCertified)
	assert.False(t, p.Approved, "new products await admin approval")
}

func TestCreateBoundaryStaysModerate(t *testing.T) {
	svc, _ := newService()

	p, err := svc.Create(context.Background(), "seller-1", catalog.ProductInput{
		Name: "Kettle", Category: "kitchen", Price: 30, Stock: 3,
		CarbonImpact: ptr(2.0),
	})
	require.NoError(t, err)

	assert.Equal(t, eco.RatingModerate, p.EcoRating)
	assert.False(t, p.EcoCertified)
}

func TestCreateUnratedWithoutCarbon(t *testing.T) {
	svc, _ := newService()

	p, err := svc.Create(context.Background(), "seller-1", catalog.ProductInput{
		Name: "Mystery box", Category: "misc", Price: 10, Stock: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, eco.RatingUnrated, p.EcoRating)
	assert.False(t, p.EcoCertified)
}

func TestCreateRejectsNonSeller(t *testing.T) {
	svc, _ := newService()

	_, err := svc.Create(context.Background(), "buyer-1", catalog.ProductInput{
		Name: "Thing", Category: "misc", Price: 1,
	})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestCreateValidatesInput(t *testing.T) {
	svc, _ := newService()

	_, err := svc.Create(context.Background(), "seller-1", catalog.ProductInput{
		Name: "Thing", Category: "misc", Price: -1,
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	_, err = svc.Create(context.Background(), "seller-1", catalog.ProductInput{
		Category: "misc", Price: 1,
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestUpdateReclassifiesAndDropsApproval(t *testing.T) {
	svc, store := newService()

	p, err := svc.Create(context.Background(), "seller-1", catalog.ProductInput{
		Name: "Lamp", Category: "home", Price: 20, Stock: 5, CarbonImpact: ptr(1.0),
	})
	require.NoError(t, err)
	store.products[p.ID].Approved = true

	updated, err := svc.Update(context.Background(), p.ID, "seller-1", catalog.ProductInput{
		Name: "Lamp", Category: "home", Price: 20, Stock: 5, CarbonImpact: ptr(12.0),
	})
	require.NoError(t, err)

	assert.Equal(t, eco.RatingHighImpact, updated.EcoRating)
	assert.False(t, updated.EcoCertified, "certification re-derives from the new impact")
	assert.False(t, updated.Approved, "edits re-enter admin review")
}

func TestUpdateRejectsForeignSeller(t *testing.T) {
	svc, _ := newService()

	p, err := svc.Create(context.Background(), "seller-1", catalog.ProductInput{
		Name: "Lamp", Category: "home", Price: 20, Stock: 5,
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), p.ID, "seller-2", catalog.ProductInput{
		Name: "Lamp", Category: "home", Price: 20, Stock: 5,
	})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestCarbonMetrics(t *testing.T) {
	svc, store := newService()

	p, err := svc.Create(context.Background(), "seller-1", catalog.ProductInput{
		Name: "Mug", Category: "kitchen", Price: 8, Stock: 4, CarbonImpact: ptr(5.0),
	})
	require.NoError(t, err)
	store.average = ptr(10.0)

	m, err := svc.CarbonMetrics(context.Background(), p.ID)
	require.NoError(t, err)

	assert.InDelta(t, 5.0, m.CarbonSavings, 1e-9)
	assert.InDelta(t, 50.0, m.PercentageReduction, 1e-9)
	assert.Equal(t, 5, m.EcoScorePoints)
	assert.Equal(t, eco.RatingModerate, m.EcoRating)
}

func TestCarbonMetricsUnknownProduct(t *testing.T) {
	svc, _ := newService()

	_, err := svc.CarbonMetrics(context.Background(), "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
