package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/mkalinin/storefront-orders/internal/domain/order"
	"github.com/mkalinin/storefront-orders/internal/domain/product"
)

// writeDomainError maps a domain error to the corresponding HTTP response:
// validation failures to 400 with the full violation list, a missing
// product to 422, a missing (or already completed, or concurrently
// completed) order to 404, everything else to an opaque 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *order.ValidationError
	if errors.As(err, &vErr) {
		writeValidationError(w, vErr)
		return
	}

	if errors.Is(err, product.ErrNotFound) {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if errors.Is(err, order.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, order.ErrNotFound.Error())
		return
	}

	zctx.From(r.Context()).Error("request failed", zap.Error(err))
	writeError(w, r, http.StatusInternalServerError, "internal error")
}

func writeValidationError(w http.ResponseWriter, vErr *order.ValidationError) {
	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("code")
	e.Int(http.StatusBadRequest)
	e.FieldStart("message")
	e.Str("validation failed")
	e.FieldStart("violations")
	e.ArrStart()
	for _, v := range vErr.Violations {
		e.ObjStart()
		e.FieldStart("field")
		e.Str(v.Field)
		e.FieldStart("message")
		e.Str(v.Message)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
	writeJSON(w, http.StatusBadRequest, e)
}

func writeError(w http.ResponseWriter, _ *http.Request, code int, message string) {
	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("code")
	e.Int(code)
	e.FieldStart("message")
	e.Str(message)
	e.ObjEnd()
	writeJSON(w, code, e)
}

// encodeElementError renders the failure of one batch element in place of
// its order object, keeping the result array index-aligned with the
// request.
func encodeElementError(e *jx.Encoder, err error) {
	code := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, product.ErrNotFound):
		code = http.StatusUnprocessableEntity
		message = err.Error()
	case errors.Is(err, order.ErrNotFound):
		code = http.StatusNotFound
		message = order.ErrNotFound.Error()
	}

	e.ObjStart()
	e.FieldStart("error")
	e.ObjStart()
	e.FieldStart("code")
	e.Int(code)
	e.FieldStart("message")
	e.Str(message)
	e.ObjEnd()
	e.ObjEnd()
}

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
