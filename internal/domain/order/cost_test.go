package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLineCost_ExactPrice(t *testing.T) {
	cost := LineCost(decimal.RequireFromString("10.00"), 3)
	assert.True(t, decimal.RequireFromString("30.00").Equal(cost), "got %s", cost)
}

func TestLineCost_FractionalPrice(t *testing.T) {
	cost := LineCost(decimal.RequireFromString("25.4"), 3)
	assert.True(t, decimal.RequireFromString("76.20").Equal(cost), "got %s", cost)
}

func TestLineCost_RoundsHalfUp(t *testing.T) {
	// 0.335 * 1 = 0.335 -> 0.34, not truncated to 0.33.
	cost := LineCost(decimal.RequireFromString("0.335"), 1)
	assert.True(t, decimal.RequireFromString("0.34").Equal(cost), "got %s", cost)
}

func TestLineCost_RoundsNotTruncates(t *testing.T) {
	// 3.333 * 3 = 9.999 -> 10.00.
	cost := LineCost(decimal.RequireFromString("3.333"), 3)
	assert.True(t, decimal.RequireFromString("10.00").Equal(cost), "got %s", cost)
}

func TestOrderTotal_SumsLineCosts(t *testing.T) {
	items := []PricedItem{
		{ProductID: "p1", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00"), Cost: decimal.RequireFromString("20.00")},
		{ProductID: "p2", Quantity: 1, UnitPrice: decimal.RequireFromString("5.50"), Cost: decimal.RequireFromString("5.50")},
	}
	assert.True(t, decimal.RequireFromString("25.50").Equal(OrderTotal(items)))
}

func TestOrderTotal_PerLineRounding(t *testing.T) {
	// Each line rounds before summation: 1.013 -> 1.01, so two lines total
	// 2.02. Rounding the raw sum once (2.026 -> 2.03) would differ.
	price := decimal.RequireFromString("1.013")
	items := []PricedItem{
		{ProductID: "p1", Quantity: 1, UnitPrice: price, Cost: LineCost(price, 1)},
		{ProductID: "p2", Quantity: 1, UnitPrice: price, Cost: LineCost(price, 1)},
	}

	total := OrderTotal(items)
	assert.True(t, decimal.RequireFromString("2.02").Equal(total), "got %s", total)

	roundedSum := price.Add(price).Round(2)
	assert.True(t, decimal.RequireFromString("2.03").Equal(roundedSum))
	assert.False(t, total.Equal(roundedSum))
}

func TestOrderTotal_Empty(t *testing.T) {
	assert.True(t, decimal.Zero.Equal(OrderTotal(nil)))
}
