package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Status is the lifecycle state of an order. The only transition is
// StatusActive -> StatusCompleted.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// ErrNotFound is returned when no order matches a lookup or completion
// request. A completion that loses a race to a concurrent completion also
// reports ErrNotFound: the conditional update sees no active row.
var ErrNotFound = errors.New("order not found")

// LineItem is one product/quantity pairing owned by an order. Line items are
// created together with their order and never change afterwards.
type LineItem struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
}

// NewLineItem is the persistence input for a single line item.
type NewLineItem struct {
	ProductID string
	Quantity  int
}

// Order is the aggregate: the parent row plus all of its line items.
// CompletedAt is nil exactly while Status is StatusActive.
type Order struct {
	ID          string
	UserID      string
	Status      Status
	Items       []LineItem
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// Repository defines persistence for order aggregates. Create inserts the
// parent and all line items atomically; Complete applies the conditional
// active -> completed transition and returns ErrNotFound when no active row
// matches both IDs.
type Repository interface {
	Create(ctx context.Context, userID string, items []NewLineItem) (*Order, error)
	FindByUserAndStatus(ctx context.Context, userID string, status Status) ([]Order, error)
	Complete(ctx context.Context, userID, orderID string) (*Order, error)
}
