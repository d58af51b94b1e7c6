package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ecobazaar/internal/apperr"
)

type Repo struct{ DB *pgxpool.Pool }

const productCols = `id, seller_id, name, description, category, price, stock,
	carbon_impact, eco_rating, eco_certified, approved, image_url, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.SellerID, &p.Name, &p.Description, &p.Category,
		&p.Price, &p.Stock, &p.CarbonImpact, &p.EcoRating, &p.EcoCertified,
		&p.Approved, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) collect(ctx context.Context, query string, args ...any) ([]Product, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *Repo) FindByID(ctx context.Context, id string) (*Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx,
		`SELECT `+productCols+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repo) Insert(ctx context.Context, p *Product) error {
	return r.DB.QueryRow(ctx, `
		INSERT INTO products(id, seller_id, name, description, category, price, stock,
			carbon_impact, eco_rating, eco_certified, approved, image_url)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at, updated_at`,
		p.ID, p.SellerID, p.Name, p.Description, p.Category, p.Price, p.Stock,
		p.CarbonImpact, p.EcoRating, p.EcoCertified, p.Approved, p.ImageURL).
		Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *Repo) Update(ctx context.Context, p *Product) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products SET name=$2, description=$3, category=$4, price=$5, stock=$6,
			carbon_impact=$7, eco_rating=$8, eco_certified=$9, approved=$10,
			image_url=$11, updated_at=now()
		WHERE id=$1`,
		p.ID, p.Name, p.Description, p.Category, p.Price, p.Stock,
		p.CarbonImpact, p.EcoRating, p.EcoCertified, p.Approved, p.ImageURL)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", p.ID, apperr.ErrNotFound)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// ListApprovedInStock is the candidate set every recommendation draws from.
func (r *Repo) ListApprovedInStock(ctx context.Context) ([]Product, error) {
	return r.collect(ctx, `SELECT `+productCols+`
		FROM products WHERE approved=true AND stock > 0 ORDER BY created_at, id`)
}

func (r *Repo) ListApproved(ctx context.Context) ([]Product, error) {
	return r.collect(ctx, `SELECT `+productCols+`
		FROM products WHERE approved=true ORDER BY created_at, id`)
}

func (r *Repo) ListPending(ctx context.Context) ([]Product, error) {
	return r.collect(ctx, `SELECT `+productCols+`
		FROM products WHERE approved=false ORDER BY created_at, id`)
}

func (r *Repo) ListBySeller(ctx context.Context, sellerID string) ([]Product, error) {
	return r.collect(ctx, `SELECT `+productCols+`
		FROM products WHERE seller_id=$1 ORDER BY created_at, id`, sellerID)
}

func (r *Repo) ListByCategory(ctx context.Context, category string) ([]Product, error) {
	return r.collect(ctx, `SELECT `+productCols+`
		FROM products WHERE approved=true AND category=$1 ORDER BY created_at, id`, category)
}

func (r *Repo) ListByEcoRating(ctx context.Context, rating string) ([]Product, error) {
	return r.collect(ctx, `SELECT `+productCols+`
		FROM products WHERE approved=true AND eco_rating=$1 ORDER BY created_at, id`, rating)
}

func (r *Repo) ListEcoCertified(ctx context.Context) ([]Product, error) {
	return r.collect(ctx, `SELECT `+productCols+`
		FROM products WHERE approved=true AND eco_certified=true ORDER BY created_at, id`)
}

func (r *Repo) ListByCarbonImpact(ctx context.Context) ([]Product, error) {
	return r.collect(ctx, `SELECT `+productCols+`
		FROM products WHERE approved=true AND carbon_impact IS NOT NULL
		ORDER BY carbon_impact, id`)
}

func (r *Repo) Search(ctx context.Context, keyword string) ([]Product, error) {
	return r.collect(ctx, `SELECT `+productCols+`
		FROM products
		WHERE approved=true AND (name ILIKE '%'||$1||'%' OR description ILIKE '%'||$1||'%')
		ORDER BY created_at, id`, keyword)
}

// CategoryAverageCarbon returns the mean carbon impact of approved,
// rated products in a category, or nil when the category has none.
func (r *Repo) CategoryAverageCarbon(ctx context.Context, category string) (*float64, error) {
	var avg *float64
	err := r.DB.QueryRow(ctx, `
		SELECT AVG(carbon_impact) FROM products
		WHERE approved=true AND category=$1 AND carbon_impact IS NOT NULL`, category).
		Scan(&avg)
	if err != nil {
		return nil, err
	}
	return avg, nil
}

func (r *Repo) SetApproved(ctx context.Context, id string, approved bool) (*Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `
		UPDATE products SET approved=$2, updated_at=now() WHERE id=$1
		RETURNING `+productCols, id, approved))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SetCertified is the admin override on the auto-derived certification.
func (r *Repo) SetCertified(ctx context.Context, id string, certified bool) (*Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `
		UPDATE products SET eco_certified=$2, updated_at=now() WHERE id=$1
		RETURNING `+productCols, id, certified))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
