package order

import "github.com/shopspring/decimal"

// PricedItem is a line item with its unit price snapshot and computed cost.
// The snapshot is taken once at placement time; later catalog price changes
// do not touch placed orders.
type PricedItem struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	Cost      decimal.Decimal
}

// LineCost computes unitPrice × quantity rounded half-up to two decimal
// places. shopspring's Round rounds half away from zero, which is half-up
// for non-negative prices.
func LineCost(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// OrderTotal sums per-line costs. Each line is already rounded, so the total
// is the sum of rounded contributions rather than a rounded sum; the two can
// differ by a cent.
func OrderTotal(items []PricedItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Cost)
	}
	return total
}
