package order

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ItemRequest is one product/quantity pair of a creation request.
type ItemRequest struct {
	ProductID string
	Quantity  int
}

// CreateRequest is the raw input for placing a single order.
type CreateRequest struct {
	UserID string
	Items  []ItemRequest
}

// CompleteRequest is the raw input for completing a single order.
type CompleteRequest struct {
	UserID  string
	OrderID string
}

// Violation describes a single invalid field of a request.
type Violation struct {
	Field   string
	Message string
}

// ValidationError carries every violation found in a request or batch.
// Validation never stops at the first bad field, so callers can report the
// full list at once.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "invalid request"
	}
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = fmt.Sprintf("%s: %s", v.Field, v.Message)
	}
	return "invalid request: " + strings.Join(msgs, "; ")
}

// ValidateCreate checks a single creation request. It returns nil or a
// *ValidationError enumerating every violated field.
func ValidateCreate(req CreateRequest) error {
	return asError(checkCreate("", req))
}

// ValidateCreateBatch checks a non-empty batch of creation requests. Any
// invalid element fails the whole batch; violation fields are prefixed with
// the element index, e.g. "[1].products[0].quantity".
func ValidateCreateBatch(reqs []CreateRequest) error {
	if len(reqs) == 0 {
		return asError([]Violation{{Field: "orders", Message: "at least one order is required"}})
	}
	var vs []Violation
	for i, req := range reqs {
		vs = append(vs, checkCreate(fmt.Sprintf("[%d].", i), req)...)
	}
	return asError(vs)
}

// ValidateComplete checks a single completion request.
func ValidateComplete(req CompleteRequest) error {
	return asError(checkComplete("", req))
}

// ValidateCompleteBatch checks a non-empty batch of completion requests with
// the same all-or-nothing semantics as ValidateCreateBatch.
func ValidateCompleteBatch(reqs []CompleteRequest) error {
	if len(reqs) == 0 {
		return asError([]Violation{{Field: "orders", Message: "at least one order is required"}})
	}
	var vs []Violation
	for i, req := range reqs {
		vs = append(vs, checkComplete(fmt.Sprintf("[%d].", i), req)...)
	}
	return asError(vs)
}

// ValidateUserID checks that a user identifier is a well-formed UUID.
func ValidateUserID(userID string) error {
	return asError(checkUUID("userId", userID))
}

func checkCreate(prefix string, req CreateRequest) []Violation {
	vs := checkUUID(prefix+"userId", req.UserID)
	if len(req.Items) == 0 {
		return append(vs, Violation{Field: prefix + "products", Message: "at least one item is required"})
	}
	for i, item := range req.Items {
		field := fmt.Sprintf("%sproducts[%d]", prefix, i)
		if item.ProductID == "" {
			vs = append(vs, Violation{Field: field + ".productId", Message: "is required"})
		}
		if item.Quantity <= 0 {
			vs = append(vs, Violation{Field: field + ".quantity", Message: "must be greater than 0"})
		}
	}
	return vs
}

func checkComplete(prefix string, req CompleteRequest) []Violation {
	vs := checkUUID(prefix+"userId", req.UserID)
	return append(vs, checkUUID(prefix+"orderId", req.OrderID)...)
}

func checkUUID(field, value string) []Violation {
	if value == "" {
		return []Violation{{Field: field, Message: "is required"}}
	}
	if err := uuid.Validate(value); err != nil {
		return []Violation{{Field: field, Message: "must be a valid UUID"}}
	}
	return nil
}

func asError(vs []Violation) error {
	if len(vs) == 0 {
		return nil
	}
	return &ValidationError{Violations: vs}
}
