package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mkalinin/storefront-orders/internal/domain/order"
)

const (
	insertLineItemSQL = `INSERT INTO order_products (id, order_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)`

	findLineItemsSQL = `SELECT id, order_id, product_id, quantity
		FROM order_products WHERE order_id = $1 ORDER BY id`

	findLineItemsByOrdersSQL = `SELECT id, order_id, product_id, quantity
		FROM order_products WHERE order_id = ANY($1) ORDER BY id`
)

// LineItemStore persists and loads the child rows of an order. Line items
// are append-only: they are written exactly once, inside the order-creation
// transaction, and never updated or deleted on their own. The store runs on
// a querier so it can share the caller's transaction.
type LineItemStore struct{}

// SaveAll inserts one row per line item, all referencing orderID, and
// returns them with generated identifiers in input order.
func (LineItemStore) SaveAll(ctx context.Context, q querier, orderID string, items []order.NewLineItem) ([]order.LineItem, error) {
	saved := make([]order.LineItem, len(items))
	for i, item := range items {
		id := uuid.New().String()
		if _, err := q.Exec(ctx, insertLineItemSQL, id, orderID, item.ProductID, item.Quantity); err != nil {
			return nil, fmt.Errorf("inserting line item for order %q: %w", orderID, err)
		}
		saved[i] = order.LineItem{
			ID:        id,
			OrderID:   orderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}
	return saved, nil
}

// FindByOrderID returns all line items of an order in a stable order.
func (LineItemStore) FindByOrderID(ctx context.Context, q querier, orderID string) ([]order.LineItem, error) {
	rows, err := q.Query(ctx, findLineItemsSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("loading line items for order %q: %w", orderID, err)
	}
	return pgx.CollectRows(rows, scanLineItem)
}

// FindByOrderIDs returns the line items of every given order in one query,
// grouped by owning order.
func (LineItemStore) FindByOrderIDs(ctx context.Context, q querier, orderIDs []string) (map[string][]order.LineItem, error) {
	rows, err := q.Query(ctx, findLineItemsByOrdersSQL, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("loading line items: %w", err)
	}

	items, err := pgx.CollectRows(rows, scanLineItem)
	if err != nil {
		return nil, err
	}

	byOrder := make(map[string][]order.LineItem, len(orderIDs))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	return byOrder, nil
}

func scanLineItem(row pgx.CollectableRow) (order.LineItem, error) {
	var item order.LineItem
	err := row.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity)
	return item, err
}
