package order

import (
	"restopos/internal/policy"
	"restopos/internal/tax"
)

// taxLines maps order items to the tax engine's input shape.
func taxLines(items []OrderItem) []tax.LineItem {
	lines := make([]tax.LineItem, 0, len(items))
	for _, item := range items {
		lines = append(lines, tax.LineItem{
			Price:        item.Price,
			Quantity:     item.Quantity,
			Cancelled:    item.Status == policy.ItemCancelled,
			IncludeInGST: item.IncludeInGST,
		})
	}
	return lines
}

// applyTotals recomputes the derived amounts on the order in place.
func applyTotals(o *Order) {
	totals := tax.ComputeTotals(taxLines(o.Items), o.SGSTRate, o.CGSTRate)
	o.SubTotal = totals.SubTotal
	o.SGSTAmount = totals.SGSTAmount
	o.CGSTAmount = totals.CGSTAmount
	o.TotalAmount = totals.TotalAmount
}
