package tax

import "math"

// LineItem is the tax-relevant view of an order line. Cancelled lines
// contribute to nothing; lines excluded from GST still count toward the
// subtotal.
type LineItem struct {
	Price        float64
	Quantity     int
	Cancelled    bool
	IncludeInGST bool
}

type Totals struct {
	SubTotal    float64
	SGSTAmount  float64
	CGSTAmount  float64
	TotalAmount float64
}

type Rounding struct {
	RoundedAmount      float64
	RoundingDifference float64
	ChangeAmount       float64
}

// ComputeTotals derives the GST breakdown for a line-item list. Rates
// are percentages (0-100). No rounding happens here; amounts are kept
// at full precision until a display or persist boundary.
func ComputeTotals(items []LineItem, sgstRate, cgstRate float64) Totals {
	var subTotal, taxableAmount float64

	for _, item := range items {
		if item.Cancelled {
			continue
		}
		lineTotal := item.Price * float64(item.Quantity)
		subTotal += lineTotal
		if item.IncludeInGST {
			taxableAmount += lineTotal
		}
	}

	sgstAmount := taxableAmount * sgstRate / 100
	cgstAmount := taxableAmount * cgstRate / 100

	return Totals{
		SubTotal:    subTotal,
		SGSTAmount:  sgstAmount,
		CGSTAmount:  cgstAmount,
		TotalAmount: subTotal + sgstAmount + cgstAmount,
	}
}

// CheckoutRounding rounds the payable amount up to the next whole
// currency unit. Rounding up is a business rule: the difference is shown
// to the customer as an explicit adjustment line, never silently eaten.
// cashGiven is 0 for non-cash payments.
func CheckoutRounding(totalAmount, cashGiven float64) Rounding {
	rounded := math.Ceil(totalAmount)

	change := 0.0
	if cashGiven > rounded {
		change = cashGiven - rounded
	}

	return Rounding{
		RoundedAmount:      rounded,
		RoundingDifference: rounded - totalAmount,
		ChangeAmount:       change,
	}
}
