package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ecobazaar/internal/apperr"
)

type Repo struct{ DB *pgxpool.Pool }

// GetOrCreate returns the user's cart with items, creating an empty
// cart row on first use.
func (r *Repo) GetOrCreate(ctx context.Context, userID string) (*Cart, error) {
	var c Cart
	err := r.DB.QueryRow(ctx, `
		SELECT id, user_id, total_price, total_carbon, total_items, created_at, updated_at
		FROM carts WHERE user_id=$1`, userID).
		Scan(&c.ID, &c.UserID, &c.TotalPrice, &c.TotalCarbon, &c.TotalItems, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		c = Cart{ID: uuid.NewString(), UserID: userID}
		err = r.DB.QueryRow(ctx, `
			INSERT INTO carts(id, user_id) VALUES ($1,$2)
			RETURNING created_at, updated_at`, c.ID, userID).
			Scan(&c.CreatedAt, &c.UpdatedAt)
	}
	if err != nil {
		return nil, err
	}
	items, err := r.loadItems(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Items = items
	return &c, nil
}

func (r *Repo) loadItems(ctx context.Context, cartID string) ([]Item, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT ci.id, ci.cart_id, ci.product_id, p.name, ci.quantity, ci.price, ci.carbon_impact
		FROM cart_items ci JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id=$1 ORDER BY ci.added_at, ci.id`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.Price, &it.CarbonImpact); err != nil {
			return nil, err
		}
		it.Subtotal = it.Price * float64(it.Quantity)
		it.TotalCarbon = it.CarbonImpact * float64(it.Quantity)
		items = append(items, it)
	}
	return items, rows.Err()
}

// AddItem puts qty units of a product into the cart, merging with an
// existing line. The product must be approved and have enough stock.
func (r *Repo) AddItem(ctx context.Context, userID, productID string, qty int) (*Cart, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", apperr.ErrInvalidState)
	}
	c, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		approved     bool
		stock        int
		price        float64
		carbonImpact *float64
	)
	err = tx.QueryRow(ctx, `
		SELECT approved, stock, price, carbon_impact FROM products WHERE id=$1`, productID).
		Scan(&approved, &stock, &price, &carbonImpact)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", productID, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if !approved {
		return nil, fmt.Errorf("product %s is not approved for sale: %w", productID, apperr.ErrInvalidState)
	}

	var existingQty int
	err = tx.QueryRow(ctx, `
		SELECT quantity FROM cart_items WHERE cart_id=$1 AND product_id=$2`, c.ID, productID).
		Scan(&existingQty)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	newQty := existingQty + qty
	if newQty > stock {
		return nil, fmt.Errorf("insufficient stock, available %d: %w", stock, apperr.ErrInvalidState)
	}

	carbon := 0.0
	if carbonImpact != nil {
		carbon = *carbonImpact
	}
	if existingQty > 0 {
		_, err = tx.Exec(ctx, `
			UPDATE cart_items SET quantity=$3 WHERE cart_id=$1 AND product_id=$2`,
			c.ID, productID, newQty)
	} else {
		_, err = tx.Exec(ctx, `
			INSERT INTO cart_items(id, cart_id, product_id, quantity, price, carbon_impact)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			uuid.NewString(), c.ID, productID, qty, price, carbon)
	}
	if err != nil {
		return nil, err
	}
	if err := recalcTotals(ctx, tx, c.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetOrCreate(ctx, userID)
}

// UpdateItemQuantity sets a line's quantity; zero or less removes it.
func (r *Repo) UpdateItemQuantity(ctx context.Context, userID, itemID string, qty int) (*Cart, error) {
	c, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var productID string
	var stock int
	err = tx.QueryRow(ctx, `
		SELECT ci.product_id, p.stock
		FROM cart_items ci JOIN products p ON p.id = ci.product_id
		WHERE ci.id=$1 AND ci.cart_id=$2`, itemID, c.ID).
		Scan(&productID, &stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("cart item %s: %w", itemID, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if qty <= 0 {
		_, err = tx.Exec(ctx, `DELETE FROM cart_items WHERE id=$1`, itemID)
	} else if qty > stock {
		return nil, fmt.Errorf("insufficient stock, available %d: %w", stock, apperr.ErrInvalidState)
	} else {
		_, err = tx.Exec(ctx, `UPDATE cart_items SET quantity=$2 WHERE id=$1`, itemID, qty)
	}
	if err != nil {
		return nil, err
	}
	if err := recalcTotals(ctx, tx, c.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetOrCreate(ctx, userID)
}

func (r *Repo) RemoveItem(ctx context.Context, userID, itemID string) (*Cart, error) {
	return r.UpdateItemQuantity(ctx, userID, itemID, 0)
}

// Clear empties the cart. Used by checkout inside its own transaction
// via ClearTx; this variant serves the explicit clear endpoint.
func (r *Repo) Clear(ctx context.Context, userID string) error {
	c, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := ClearTx(ctx, tx, c.ID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ClearTx deletes all items and zeroes totals within the caller's
// transaction.
func ClearTx(ctx context.Context, tx pgx.Tx, cartID string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id=$1`, cartID); err != nil {
		return err
	}
	return recalcTotals(ctx, tx, cartID)
}

func recalcTotals(ctx context.Context, tx pgx.Tx, cartID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE carts SET
			total_price  = COALESCE((SELECT SUM(price * quantity) FROM cart_items WHERE cart_id=$1), 0),
			total_carbon = COALESCE((SELECT SUM(carbon_impact * quantity) FROM cart_items WHERE cart_id=$1), 0),
			total_items  = COALESCE((SELECT SUM(quantity) FROM cart_items WHERE cart_id=$1), 0),
			updated_at   = now()
		WHERE id=$1`, cartID)
	return err
}
