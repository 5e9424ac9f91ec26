package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/mkalinin/storefront-orders/internal/domain/product"
)

// PlacedOrder is the result of a successful placement: the persisted
// aggregate plus the price snapshot computed from the catalog at placement
// time. Prices are not persisted; the snapshot exists only in the response.
type PlacedOrder struct {
	Order *Order
	Items []PricedItem
	Total decimal.Decimal
}

// PlaceResult is one element of a batch placement. Batch elements are
// independent: each either carries a placed order or the error that failed
// it, at the same index as its request.
type PlaceResult struct {
	Order *PlacedOrder
	Err   error
}

// CompleteResult is one element of a batch completion.
type CompleteResult struct {
	Order *Order
	Err   error
}

// Service orchestrates order placement and completion: validation, price
// resolution against the catalog, and delegation to the order repository.
// It is the only entry point used by the HTTP layer.
type Service struct {
	products product.Repository
	orders   Repository
}

// NewService creates a Service with the required collaborators.
func NewService(products product.Repository, orders Repository) *Service {
	return &Service{
		products: products,
		orders:   orders,
	}
}

// PlaceOrder validates the request, resolves every line item's unit price,
// and persists the aggregate. A missing product fails the whole order before
// anything is written.
func (s *Service) PlaceOrder(ctx context.Context, req CreateRequest) (*PlacedOrder, error) {
	if err := ValidateCreate(req); err != nil {
		return nil, err
	}
	return s.place(ctx, req)
}

// PlaceOrders places a batch. Validation is all-or-nothing: any invalid
// element rejects the whole batch before storage is touched. Past that
// point elements are independent; the result slice is index-aligned with
// the requests and each element reports its own outcome. Cancellation is
// checked between elements and aborts the remainder, leaving already-placed
// orders in place.
func (s *Service) PlaceOrders(ctx context.Context, reqs []CreateRequest) ([]PlaceResult, error) {
	if err := ValidateCreateBatch(reqs); err != nil {
		return nil, err
	}

	results := make([]PlaceResult, len(reqs))
	for i, req := range reqs {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(reqs); j++ {
				results[j].Err = err
			}
			return results, errors.Wrap(err, "place orders")
		}

		placed, err := s.place(ctx, req)
		results[i] = PlaceResult{Order: placed, Err: err}
	}
	return results, nil
}

// CompleteOrder validates the request and applies the active -> completed
// transition. ErrNotFound covers a wrong user, a wrong or unknown order ID,
// an already-completed order, and a lost completion race alike.
func (s *Service) CompleteOrder(ctx context.Context, req CompleteRequest) (*Order, error) {
	if err := ValidateComplete(req); err != nil {
		return nil, err
	}
	return s.orders.Complete(ctx, req.UserID, req.OrderID)
}

// CompleteOrders completes a batch with the same semantics as PlaceOrders:
// fail-fast validation, then independent per-element outcomes.
func (s *Service) CompleteOrders(ctx context.Context, reqs []CompleteRequest) ([]CompleteResult, error) {
	if err := ValidateCompleteBatch(reqs); err != nil {
		return nil, err
	}

	results := make([]CompleteResult, len(reqs))
	for i, req := range reqs {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(reqs); j++ {
				results[j].Err = err
			}
			return results, errors.Wrap(err, "complete orders")
		}

		o, err := s.orders.Complete(ctx, req.UserID, req.OrderID)
		results[i] = CompleteResult{Order: o, Err: err}
	}
	return results, nil
}

// ActiveOrdersForUser returns the user's active orders with line items
// populated.
func (s *Service) ActiveOrdersForUser(ctx context.Context, userID string) ([]Order, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}
	return s.orders.FindByUserAndStatus(ctx, userID, StatusActive)
}

// CompletedOrdersForUser returns the user's completed orders with line items
// populated.
func (s *Service) CompletedOrdersForUser(ctx context.Context, userID string) ([]Order, error) {
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}
	return s.orders.FindByUserAndStatus(ctx, userID, StatusCompleted)
}

// place prices and persists one already-validated request.
func (s *Service) place(ctx context.Context, req CreateRequest) (*PlacedOrder, error) {
	ids := make([]string, len(req.Items))
	for i, item := range req.Items {
		ids[i] = item.ProductID
	}

	// Single batched catalog query for all line items.
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}

	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	priced := make([]PricedItem, len(req.Items))
	newItems := make([]NewLineItem, len(req.Items))
	for i, item := range req.Items {
		p, ok := byID[item.ProductID]
		if !ok {
			// A missing product must fail the whole order, never default
			// to a zero price.
			return nil, &product.NotFoundError{ProductID: item.ProductID}
		}
		priced[i] = PricedItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: p.Price,
			Cost:      LineCost(p.Price, item.Quantity),
		}
		newItems[i] = NewLineItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	o, err := s.orders.Create(ctx, req.UserID, newItems)
	if err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	return &PlacedOrder{
		Order: o,
		Items: priced,
		Total: OrderTotal(priced),
	}, nil
}
