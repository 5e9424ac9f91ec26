package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-faster/jx"

	"github.com/mkalinin/storefront-orders/internal/domain/order"
)

// maxBodyBytes caps order request bodies. Batches are small; anything
// larger is a client error.
const maxBodyBytes = 1 << 20

// placeOrders handles POST /api/orders. The body is either one creation
// request or an array of them; arrays get per-element results while a
// single request gets the placed order directly. 201 on success.
func (h *Handler) placeOrders(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "cannot read request body")
		return
	}

	reqs, isBatch, err := decodeCreateBody(body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed JSON body")
		return
	}

	if !isBatch {
		placed, err := h.orders.PlaceOrder(r.Context(), reqs[0])
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		e := &jx.Encoder{}
		encodePlacedOrder(e, placed)
		writeJSON(w, http.StatusCreated, e)
		return
	}

	results, err := h.orders.PlaceOrders(r.Context(), reqs)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	e := &jx.Encoder{}
	e.ArrStart()
	for _, res := range results {
		if res.Err != nil {
			encodeElementError(e, res.Err)
			continue
		}
		encodePlacedOrder(e, res.Order)
	}
	e.ArrEnd()
	writeJSON(w, http.StatusCreated, e)
}

// completeOrders handles POST /api/orders/complete with the same
// single-or-array body convention. 200 on success.
func (h *Handler) completeOrders(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "cannot read request body")
		return
	}

	reqs, isBatch, err := decodeCompleteBody(body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed JSON body")
		return
	}

	if !isBatch {
		o, err := h.orders.CompleteOrder(r.Context(), reqs[0])
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		e := &jx.Encoder{}
		encodeOrder(e, o)
		writeJSON(w, http.StatusOK, e)
		return
	}

	results, err := h.orders.CompleteOrders(r.Context(), reqs)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	e := &jx.Encoder{}
	e.ArrStart()
	for _, res := range results {
		if res.Err != nil {
			encodeElementError(e, res.Err)
			continue
		}
		encodeOrder(e, res.Order)
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, e)
}

// activeOrders handles GET /api/orders/{userID}/active.
func (h *Handler) activeOrders(w http.ResponseWriter, r *http.Request) {
	h.listOrders(w, r, h.orders.ActiveOrdersForUser)
}

// completedOrders handles GET /api/orders/{userID}/completed.
func (h *Handler) completedOrders(w http.ResponseWriter, r *http.Request) {
	h.listOrders(w, r, h.orders.CompletedOrdersForUser)
}

func (h *Handler) listOrders(
	w http.ResponseWriter,
	r *http.Request,
	list func(ctx context.Context, userID string) ([]order.Order, error),
) {
	orders, err := list(r.Context(), r.PathValue("userID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	e := &jx.Encoder{}
	e.ArrStart()
	for i := range orders {
		encodeOrder(e, &orders[i])
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, e)
}
