package services

import (
	"fmt"

	"pizzeria-telegram/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Totals keeps full precision; round only through Display.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// DisplayTotals holds Totals rounded to cents as strings.
type DisplayTotals struct {
	Subtotal string
	Discount string
	Total    string
}

func (t Totals) Display() DisplayTotals {
	return DisplayTotals{
		Subtotal: FormatMoney(t.Subtotal),
		Discount: FormatMoney(t.Discount),
		Total:    FormatMoney(t.Total),
	}
}

// ComputeTotals prices a cart with an optional coupon. A fixed coupon applies its full
// amount whatever the subtotal, and the total is not floored at zero.
func ComputeTotals(lines []models.CartLine, coupon *models.Coupon) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal())
	}
	discount := decimal.Zero
	if coupon != nil {
		switch coupon.Kind {
		case models.CouponPercentage:
			discount = subtotal.Mul(coupon.Amount).Div(hundred)
		default:
			discount = coupon.Amount
		}
	}
	return Totals{Subtotal: subtotal, Discount: discount, Total: subtotal.Sub(discount)}
}

// FormatMoney renders d with exactly two decimals, e.g. "12.99" or "-2.00".
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatTimer renders seconds as M:SS.
func FormatTimer(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
