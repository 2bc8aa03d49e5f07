package models

import "github.com/shopspring/decimal"

// MenuItem is an immutable catalog entry.
type MenuItem struct {
	ID          int
	Name        string
	Description string
	Price       decimal.Decimal
	Emoji       string
	Rating      float64 // 0..5
	Popular     bool
}

type CouponKind string

const (
	CouponPercentage CouponKind = "percentage"
	CouponFixed      CouponKind = "fixed"
)

// Coupon is a named discount rule. Description text may mention order minimums;
// they are not enforced.
type Coupon struct {
	Code        string
	Amount      decimal.Decimal
	Kind        CouponKind
	Description string
}
