package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ecobazaar/internal/apperr"
	"ecobazaar/internal/cart"
	"ecobazaar/internal/users"
)

type Repo struct{ DB *pgxpool.Pool }

// ScoreChange reports an eco score mutation applied alongside a status
// change, for event payloads.
type ScoreChange struct {
	Delta    int
	NewScore int
}

const orderCols = `id, user_id, total_price, total_carbon, total_items, status,
	return_status, return_reason, order_date, delivered_date, return_request_date, return_resolved_date`

const itemCols = `id, order_id, product_id, seller_id, product_name, category,
	eco_rating, eco_certified, quantity, price, carbon_impact, subtotal, total_carbon`

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var reason *string
	err := row.Scan(&o.ID, &o.UserID, &o.TotalPrice, &o.TotalCarbon, &o.TotalItems,
		&o.Status, &o.ReturnStatus, &reason, &o.OrderDate,
		&o.DeliveredDate, &o.ReturnRequestDate, &o.ReturnResolvedDate)
	if err != nil {
		return nil, err
	}
	if reason != nil {
		o.ReturnReason = *reason
	}
	return &o, nil
}

func loadItems(ctx context.Context, q querier, orderID string) ([]OrderItem, error) {
	rows, err := q.Query(ctx, `SELECT `+itemCols+`
		FROM order_items WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.SellerID,
			&it.ProductName, &it.Category, &it.EcoRating, &it.EcoCertified,
			&it.Quantity, &it.Price, &it.CarbonImpact, &it.Subtotal, &it.TotalCarbon); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func loadOrder(ctx context.Context, q querier, orderID string, lock bool) (*Order, error) {
	query := `SELECT ` + orderCols + ` FROM orders WHERE id=$1`
	if lock {
		query += ` FOR UPDATE`
	}
	o, err := scanOrder(q.QueryRow(ctx, query, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", orderID, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	o.Items, err = loadItems(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repo) FindByID(ctx context.Context, orderID string) (*Order, error) {
	return loadOrder(ctx, r.DB, orderID, false)
}

// FindForUser is FindByID plus an ownership check.
func (r *Repo) FindForUser(ctx context.Context, orderID, userID string) (*Order, error) {
	o, err := r.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, fmt.Errorf("order %s does not belong to user: %w", orderID, apperr.ErrUnauthorized)
	}
	return o, nil
}

func (r *Repo) list(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		items, err := loadItems(ctx, r.DB, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderCols+`
		FROM orders WHERE user_id=$1 ORDER BY order_date DESC`, userID)
}

func (r *Repo) ListByUserInRange(ctx context.Context, userID string, start, end time.Time) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderCols+`
		FROM orders WHERE user_id=$1 AND order_date BETWEEN $2 AND $3
		ORDER BY order_date`, userID, start, end)
}

// ListContainingSellerInRange returns orders with at least one line
// from the seller; callers filter lines to the seller's own.
func (r *Repo) ListContainingSellerInRange(ctx context.Context, sellerID string, start, end time.Time) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderCols+`
		FROM orders o
		WHERE o.order_date BETWEEN $2 AND $3
		  AND EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id=o.id AND oi.seller_id=$1)
		ORDER BY o.order_date`, sellerID, start, end)
}

func (r *Repo) ListBySeller(ctx context.Context, sellerID string) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderCols+`
		FROM orders o
		WHERE EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id=o.id AND oi.seller_id=$1)
		ORDER BY o.order_date DESC`, sellerID)
}

func (r *Repo) ListByStatus(ctx context.Context, status Status) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderCols+`
		FROM orders WHERE status=$1 ORDER BY order_date DESC`, status)
}

func (r *Repo) ListAll(ctx context.Context) ([]Order, error) {
	return r.list(ctx, `SELECT ` + orderCols + ` FROM orders ORDER BY order_date DESC`)
}

// Checkout turns the user's cart into a PENDING order. One transaction
// covers the stock check, the stock decrement, the item snapshots and
// the cart clear, so concurrent checkouts cannot oversell.
func (r *Repo) Checkout(ctx context.Context, userID string) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var cartID string
	var totalItems int
	err = tx.QueryRow(ctx, `SELECT id, total_items FROM carts WHERE user_id=$1`, userID).
		Scan(&cartID, &totalItems)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && totalItems == 0) {
		return nil, fmt.Errorf("cannot create order from empty cart: %w", apperr.ErrInvalidState)
	}
	if err != nil {
		return nil, err
	}

	// Lock the product rows for the stock check + decrement.
	rows, err := tx.Query(ctx, `
		SELECT ci.product_id, ci.quantity, ci.price, ci.carbon_impact,
		       p.name, p.category, p.eco_rating, p.eco_certified, p.seller_id, p.stock
		FROM cart_items ci JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id=$1
		ORDER BY ci.added_at, ci.id
		FOR UPDATE OF p`, cartID)
	if err != nil {
		return nil, err
	}

	o := &Order{
		ID:           uuid.NewString(),
		UserID:       userID,
		Status:       StatusPending,
		ReturnStatus: ReturnNone,
	}
	for rows.Next() {
		it := OrderItem{ID: uuid.NewString(), OrderID: o.ID}
		var stock int
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.Price, &it.CarbonImpact,
			&it.ProductName, &it.Category, &it.EcoRating, &it.EcoCertified,
			&it.SellerID, &stock); err != nil {
			rows.Close()
			return nil, err
		}
		if stock < it.Quantity {
			rows.Close()
			return nil, fmt.Errorf("insufficient stock for %s: %w", it.ProductName, apperr.ErrInvalidState)
		}
		it.Subtotal = it.Price * float64(it.Quantity)
		it.TotalCarbon = it.CarbonImpact * float64(it.Quantity)
		o.Items = append(o.Items, it)
		o.TotalPrice += it.Subtotal
		o.TotalCarbon += it.TotalCarbon
		o.TotalItems += it.Quantity
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, it := range o.Items {
		if _, err := tx.Exec(ctx, `UPDATE products SET stock = stock - $2 WHERE id=$1`,
			it.ProductID, it.Quantity); err != nil {
			return nil, err
		}
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO orders(id, user_id, total_price, total_carbon, total_items, status, return_status)
		VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING order_date`,
		o.ID, o.UserID, o.TotalPrice, o.TotalCarbon, o.TotalItems, o.Status, o.ReturnStatus).
		Scan(&o.OrderDate)
	if err != nil {
		return nil, err
	}
	for _, it := range o.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(`+itemCols+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
			it.ID, it.OrderID, it.ProductID, it.SellerID, it.ProductName, it.Category,
			it.EcoRating, it.EcoCertified, it.Quantity, it.Price, it.CarbonImpact,
			it.Subtotal, it.TotalCarbon); err != nil {
			return nil, err
		}
	}

	if err := cart.ClearTx(ctx, tx, cartID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateStatus moves an order forward through the lifecycle. Sellers
// must own at least one line; admins may act on any order. The
// DELIVERED transition awards the eco score in the same transaction.
func (r *Repo) UpdateStatus(ctx context.Context, orderID, actorID string, actorRole users.Role, to Status) (*Order, *ScoreChange, error) {
	if !to.Valid() {
		return nil, nil, fmt.Errorf("unknown status %q: %w", to, apperr.ErrInvalidState)
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := loadOrder(ctx, tx, orderID, true)
	if err != nil {
		return nil, nil, err
	}

	switch actorRole {
	case users.RoleAdmin:
	case users.RoleSeller:
		if !o.ContainsSeller(actorID) {
			return nil, nil, fmt.Errorf("order %s does not contain your products: %w", orderID, apperr.ErrUnauthorized)
		}
	default:
		return nil, nil, fmt.Errorf("role %s cannot update order status: %w", actorRole, apperr.ErrUnauthorized)
	}

	if !CanTransition(o.Status, to) {
		return nil, nil, fmt.Errorf("cannot move order from %s to %s: %w", o.Status, to, apperr.ErrInvalidState)
	}

	o.Status = to
	var change *ScoreChange
	if to == StatusDelivered {
		now := time.Now().UTC()
		o.DeliveredDate = &now

		delta := ScoreForOrder(o)
		var newScore int
		if err := tx.QueryRow(ctx, `
			UPDATE users SET eco_score = eco_score + $2 WHERE id=$1
			RETURNING eco_score`, o.UserID, delta).Scan(&newScore); err != nil {
			return nil, nil, err
		}
		change = &ScoreChange{Delta: delta, NewScore: newScore}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE orders SET status=$2, delivered_date=$3 WHERE id=$1`,
		o.ID, o.Status, o.DeliveredDate); err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return o, change, nil
}

// Cancel aborts a not-yet-delivered order and restores product stock.
// Cancelling never touches the eco score; only delivery awards it.
func (r *Repo) Cancel(ctx context.Context, orderID, userID string) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := loadOrder(ctx, tx, orderID, true)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, fmt.Errorf("order %s does not belong to user: %w", orderID, apperr.ErrUnauthorized)
	}
	if o.Status == StatusDelivered {
		return nil, fmt.Errorf("cannot cancel delivered order: %w", apperr.ErrInvalidState)
	}
	if o.Status == StatusCancelled {
		return nil, fmt.Errorf("order is already cancelled: %w", apperr.ErrInvalidState)
	}

	for _, it := range o.Items {
		if _, err := tx.Exec(ctx, `UPDATE products SET stock = stock + $2 WHERE id=$1`,
			it.ProductID, it.Quantity); err != nil {
			return nil, err
		}
	}

	o.Status = StatusCancelled
	if _, err := tx.Exec(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, o.ID, o.Status); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

// RequestReturn opens the return sub-flow on a delivered order, inside
// the 7-day window, at most once.
func (r *Repo) RequestReturn(ctx context.Context, orderID, userID, reason string) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := loadOrder(ctx, tx, orderID, true)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, fmt.Errorf("order %s does not belong to user: %w", orderID, apperr.ErrUnauthorized)
	}

	now := time.Now().UTC()
	if err := ValidateReturnRequest(o, now); err != nil {
		return nil, err
	}

	o.ReturnStatus = ReturnPending
	o.ReturnReason = reason
	o.ReturnRequestDate = &now
	if _, err := tx.Exec(ctx, `
		UPDATE orders SET return_status=$2, return_reason=$3, return_request_date=$4
		WHERE id=$1`, o.ID, o.ReturnStatus, o.ReturnReason, o.ReturnRequestDate); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

// ResolveReturn approves or rejects a pending return. Approval restores
// stock and claws back the delivery score (floored at zero) in the same
// transaction, so the reversal always matches the award.
func (r *Repo) ResolveReturn(ctx context.Context, orderID, sellerID string, approve bool) (*Order, *ScoreChange, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := loadOrder(ctx, tx, orderID, true)
	if err != nil {
		return nil, nil, err
	}
	if !o.ContainsSeller(sellerID) {
		return nil, nil, fmt.Errorf("order %s does not contain your products: %w", orderID, apperr.ErrUnauthorized)
	}
	if o.ReturnStatus == ReturnNone {
		return nil, nil, fmt.Errorf("no return request for this order: %w", apperr.ErrInvalidState)
	}
	if o.ReturnStatus != ReturnPending {
		return nil, nil, fmt.Errorf("return request already processed: %w", apperr.ErrInvalidState)
	}

	now := time.Now().UTC()
	o.ReturnResolvedDate = &now

	var change *ScoreChange
	if approve {
		o.ReturnStatus = ReturnApproved

		for _, it := range o.Items {
			if _, err := tx.Exec(ctx, `UPDATE products SET stock = stock + $2 WHERE id=$1`,
				it.ProductID, it.Quantity); err != nil {
				return nil, nil, err
			}
		}

		// Score was only awarded on delivery, so only claw back then.
		if o.Status == StatusDelivered {
			delta := ScoreForOrder(o)
			var newScore int
			if err := tx.QueryRow(ctx, `
				UPDATE users SET eco_score = GREATEST(0, eco_score - $2) WHERE id=$1
				RETURNING eco_score`, o.UserID, delta).Scan(&newScore); err != nil {
				return nil, nil, err
			}
			change = &ScoreChange{Delta: -delta, NewScore: newScore}
		}
	} else {
		o.ReturnStatus = ReturnRejected
	}

	if _, err := tx.Exec(ctx, `
		UPDATE orders SET return_status=$2, return_resolved_date=$3 WHERE id=$1`,
		o.ID, o.ReturnStatus, o.ReturnResolvedDate); err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return o, change, nil
}
