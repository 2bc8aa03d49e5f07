package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const OrderStatusPreparing = "preparing"

// CartLine is one menu item with its quantity (always >= 1 while in a cart).
type CartLine struct {
	Item     MenuItem
	Quantity int
}

// LineTotal is unit price times quantity at full precision.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ActiveOrder is the snapshot created at checkout.
type ActiveOrder struct {
	ID       string
	Lines    []CartLine
	Total    decimal.Decimal
	Status   string
	Address  string
	PlacedAt time.Time
}
