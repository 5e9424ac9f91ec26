package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkalinin/storefront-orders/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (id, user_id, status)
		VALUES ($1, $2, 'active')
		RETURNING created_at`

	findOrdersSQL = `SELECT id, user_id, status, created_at, completed_at
		FROM orders WHERE user_id = $1 AND status = $2
		ORDER BY created_at, id`

	completeOrderSQL = `UPDATE orders
		SET status = 'completed', completed_at = now()
		WHERE id = $1 AND user_id = $2 AND status = 'active'
		RETURNING id, user_id, status, created_at, completed_at`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Parent
// and child rows are written in one transaction so a failed child insert
// can never leave an orphaned parent behind.
type OrderRepository struct {
	pool  *pgxpool.Pool
	items LineItemStore
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts the parent row with status=active, then all line items,
// atomically, and returns the assembled aggregate.
func (r *OrderRepository) Create(ctx context.Context, userID string, items []order.NewLineItem) (*order.Order, error) {
	o := &order.Order{
		ID:     uuid.New().String(),
		UserID: userID,
		Status: order.StatusActive,
	}

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, insertOrderSQL, o.ID, userID).Scan(&o.CreatedAt); err != nil {
			return fmt.Errorf("inserting order: %w", err)
		}

		saved, err := r.items.SaveAll(ctx, tx, o.ID, items)
		if err != nil {
			return err
		}
		o.Items = saved
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "creating order for user %q", userID)
	}

	return o, nil
}

// FindByUserAndStatus returns the user's orders in the given status with
// line items populated, ordered by creation time.
func (r *OrderRepository) FindByUserAndStatus(ctx context.Context, userID string, status order.Status) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, findOrdersSQL, userID, string(status))
	if err != nil {
		return nil, fmt.Errorf("listing %s orders for user %q: %w", status, userID, err)
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing %s orders for user %q: %w", status, userID, err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}

	byOrder, err := r.items.FindByOrderIDs(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
	}
	return orders, nil
}

// Complete transitions the order matching both IDs from active to completed.
// The conditional UPDATE is the serialization point: of two racing
// completions at most one matches an active row, the other gets
// order.ErrNotFound. The same error covers a wrong user, an unknown order,
// and an already-completed one.
func (r *OrderRepository) Complete(ctx context.Context, userID, orderID string) (*order.Order, error) {
	var o order.Order
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, completeOrderSQL, orderID, userID)
		if err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.CreatedAt, &o.CompletedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return order.ErrNotFound
			}
			return fmt.Errorf("completing order: %w", err)
		}

		items, err := r.items.FindByOrderID(ctx, tx, o.ID)
		if err != nil {
			return err
		}
		o.Items = items
		return nil
	})
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "completing order %q for user %q", orderID, userID)
	}

	return &o, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.CreatedAt, &o.CompletedAt)
	return o, err
}
