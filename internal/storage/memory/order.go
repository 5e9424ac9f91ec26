// Package memory provides in-memory repository implementations for tests
// and the server's -memory-store development mode.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkalinin/storefront-orders/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository is a mutex-guarded in-memory implementation of
// order.Repository. It mirrors the storage-level guarantees of the Postgres
// repository: aggregates are created whole and the active -> completed
// transition is applied under the lock, so of two racing completions
// exactly one succeeds.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]order.Order
}

// NewOrderRepository returns an empty in-memory order repository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[string]order.Order),
	}
}

// Create stores a new active aggregate with generated identifiers.
func (r *OrderRepository) Create(_ context.Context, userID string, items []order.NewLineItem) (*order.Order, error) {
	o := order.Order{
		ID:        uuid.New().String(),
		UserID:    userID,
		Status:    order.StatusActive,
		CreatedAt: time.Now().UTC(),
	}
	o.Items = make([]order.LineItem, len(items))
	for i, item := range items {
		o.Items[i] = order.LineItem{
			ID:        uuid.New().String(),
			OrderID:   o.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	r.mu.Lock()
	r.orders[o.ID] = o
	r.mu.Unlock()

	out := cloneOrder(o)
	return &out, nil
}

// FindByUserAndStatus returns the user's orders in the given status,
// ordered by creation time for a stable result.
func (r *OrderRepository) FindByUserAndStatus(_ context.Context, userID string, status order.Status) ([]order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]order.Order, 0)
	for _, o := range r.orders {
		if o.UserID == userID && o.Status == status {
			result = append(result, cloneOrder(o))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Complete applies the conditional transition under the write lock. Any
// non-match — unknown order, wrong user, already completed — reports
// order.ErrNotFound, so a second completion of the same order fails without
// touching the CompletedAt set by the first.
func (r *OrderRepository) Complete(_ context.Context, userID, orderID string) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderID]
	if !ok || o.UserID != userID || o.Status != order.StatusActive {
		return nil, order.ErrNotFound
	}

	now := time.Now().UTC()
	o.Status = order.StatusCompleted
	o.CompletedAt = &now
	r.orders[orderID] = o

	out := cloneOrder(o)
	return &out, nil
}

// cloneOrder copies the aggregate so callers cannot mutate stored state.
func cloneOrder(o order.Order) order.Order {
	items := make([]order.LineItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	if o.CompletedAt != nil {
		at := *o.CompletedAt
		o.CompletedAt = &at
	}
	return o
}
