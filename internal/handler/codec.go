package handler

import (
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/mkalinin/storefront-orders/internal/domain/order"
	"github.com/mkalinin/storefront-orders/internal/domain/product"
)

// --- Request decoding ---

// decodeCreateBody parses a request body holding either one creation
// request or an array of them. The second return value reports whether the
// body was an array.
func decodeCreateBody(data []byte) ([]order.CreateRequest, bool, error) {
	d := jx.DecodeBytes(data)
	if d.Next() == jx.Array {
		var reqs []order.CreateRequest
		err := d.Arr(func(d *jx.Decoder) error {
			req, err := decodeCreateRequest(d)
			if err != nil {
				return err
			}
			reqs = append(reqs, req)
			return nil
		})
		return reqs, true, err
	}

	req, err := decodeCreateRequest(d)
	if err != nil {
		return nil, false, err
	}
	return []order.CreateRequest{req}, false, nil
}

// decodeCompleteBody is the completion-side counterpart of decodeCreateBody.
func decodeCompleteBody(data []byte) ([]order.CompleteRequest, bool, error) {
	d := jx.DecodeBytes(data)
	if d.Next() == jx.Array {
		var reqs []order.CompleteRequest
		err := d.Arr(func(d *jx.Decoder) error {
			req, err := decodeCompleteRequest(d)
			if err != nil {
				return err
			}
			reqs = append(reqs, req)
			return nil
		})
		return reqs, true, err
	}

	req, err := decodeCompleteRequest(d)
	if err != nil {
		return nil, false, err
	}
	return []order.CompleteRequest{req}, false, nil
}

func decodeCreateRequest(d *jx.Decoder) (order.CreateRequest, error) {
	var req order.CreateRequest
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "userId":
			v, err := d.Str()
			if err != nil {
				return err
			}
			req.UserID = v
			return nil
		case "products":
			return d.Arr(func(d *jx.Decoder) error {
				item, err := decodeItemRequest(d)
				if err != nil {
					return err
				}
				req.Items = append(req.Items, item)
				return nil
			})
		default:
			return d.Skip()
		}
	})
	return req, err
}

func decodeItemRequest(d *jx.Decoder) (order.ItemRequest, error) {
	var item order.ItemRequest
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "productId":
			v, err := d.Str()
			if err != nil {
				return err
			}
			item.ProductID = v
			return nil
		case "quantity":
			v, err := d.Int()
			if err != nil {
				return err
			}
			item.Quantity = v
			return nil
		default:
			return d.Skip()
		}
	})
	return item, err
}

func decodeCompleteRequest(d *jx.Decoder) (order.CompleteRequest, error) {
	var req order.CompleteRequest
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "userId":
			v, err := d.Str()
			if err != nil {
				return err
			}
			req.UserID = v
			return nil
		case "orderId":
			v, err := d.Str()
			if err != nil {
				return err
			}
			req.OrderID = v
			return nil
		default:
			return d.Skip()
		}
	})
	return req, err
}

// --- Response encoding ---

// Monetary values are encoded as strings with two decimal places so clients
// never see binary floating point artifacts.

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("userId")
	e.Str(o.UserID)
	e.FieldStart("status")
	e.Str(string(o.Status))
	e.FieldStart("products")
	e.ArrStart()
	for _, item := range o.Items {
		encodeLineItem(e, item)
	}
	e.ArrEnd()
	e.FieldStart("createdAt")
	e.Str(o.CreatedAt.Format(time.RFC3339Nano))
	e.FieldStart("completedAt")
	if o.CompletedAt != nil {
		e.Str(o.CompletedAt.Format(time.RFC3339Nano))
	} else {
		e.Null()
	}
	e.ObjEnd()
}

func encodeLineItem(e *jx.Encoder, item order.LineItem) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(item.ID)
	e.FieldStart("orderId")
	e.Str(item.OrderID)
	e.FieldStart("productId")
	e.Str(item.ProductID)
	e.FieldStart("quantity")
	e.Int(item.Quantity)
	e.ObjEnd()
}

// encodePlacedOrder renders the aggregate together with the price snapshot
// taken at placement time. Line items and priced items are index-aligned.
func encodePlacedOrder(e *jx.Encoder, placed *order.PlacedOrder) {
	o := placed.Order
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("userId")
	e.Str(o.UserID)
	e.FieldStart("status")
	e.Str(string(o.Status))
	e.FieldStart("products")
	e.ArrStart()
	for i, item := range o.Items {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(item.ID)
		e.FieldStart("orderId")
		e.Str(item.OrderID)
		e.FieldStart("productId")
		e.Str(item.ProductID)
		e.FieldStart("quantity")
		e.Int(item.Quantity)
		e.FieldStart("unitPrice")
		encodeMoney(e, placed.Items[i].UnitPrice)
		e.FieldStart("cost")
		encodeMoney(e, placed.Items[i].Cost)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("total")
	encodeMoney(e, placed.Total)
	e.FieldStart("createdAt")
	e.Str(o.CreatedAt.Format(time.RFC3339Nano))
	e.FieldStart("completedAt")
	e.Null()
	e.ObjEnd()
}

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(p.ID)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("price")
	encodeMoney(e, p.Price)
	e.FieldStart("category")
	e.Str(p.Category)
	e.ObjEnd()
}

func encodeMoney(e *jx.Encoder, d decimal.Decimal) {
	e.Str(d.StringFixed(2))
}
