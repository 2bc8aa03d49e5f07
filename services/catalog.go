package services

import (
	"strings"

	"pizzeria-telegram/models"

	"github.com/shopspring/decimal"
)

var menu = []models.MenuItem{
	{ID: 1, Name: "Margherita Classic", Description: "Fresh tomatoes, mozzarella, basil", Price: decimal.RequireFromString("12.99"), Emoji: "🍕", Rating: 4.8, Popular: true},
	{ID: 2, Name: "Pepperoni Supreme", Description: "Pepperoni, cheese, Italian herbs", Price: decimal.RequireFromString("15.99"), Emoji: "🍕", Rating: 4.9, Popular: true},
	{ID: 3, Name: "Hawaiian Paradise", Description: "Ham, pineapple, cheese", Price: decimal.RequireFromString("14.99"), Emoji: "🍕", Rating: 4.3},
	{ID: 4, Name: "Meat Lovers", Description: "Pepperoni, sausage, bacon, ham", Price: decimal.RequireFromString("18.99"), Emoji: "🍕", Rating: 4.7},
	{ID: 5, Name: "Veggie Deluxe", Description: "Bell peppers, mushrooms, olives, onions", Price: decimal.RequireFromString("13.99"), Emoji: "🥗", Rating: 4.5},
	{ID: 6, Name: "BBQ Chicken", Description: "Grilled chicken, BBQ sauce, red onions", Price: decimal.RequireFromString("16.99"), Emoji: "🍕", Rating: 4.6},
}

var coupons = map[string]models.Coupon{
	"WELCOME10": {Code: "WELCOME10", Amount: decimal.NewFromInt(10), Kind: models.CouponPercentage, Description: "10% off your first order"},
	"SAVE5":     {Code: "SAVE5", Amount: decimal.NewFromInt(5), Kind: models.CouponFixed, Description: "$5 off orders over $20"},
	"STUDENT15": {Code: "STUDENT15", Amount: decimal.NewFromInt(15), Kind: models.CouponPercentage, Description: "15% off with student ID"},
	"FAMILY20":  {Code: "FAMILY20", Amount: decimal.NewFromInt(20), Kind: models.CouponPercentage, Description: "20% off orders over $40"},
}

// CouponCodes is the display order used in hints.
var CouponCodes = []string{"WELCOME10", "SAVE5", "STUDENT15", "FAMILY20"}

// Menu returns a copy of the static menu in display order.
func Menu() []models.MenuItem {
	out := make([]models.MenuItem, len(menu))
	copy(out, menu)
	return out
}

func MenuItemByID(id int) (models.MenuItem, bool) {
	for _, it := range menu {
		if it.ID == id {
			return it, true
		}
	}
	return models.MenuItem{}, false
}

// LookupCoupon matches code case-insensitively, ignoring surrounding spaces.
func LookupCoupon(code string) (models.Coupon, bool) {
	c, ok := coupons[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}
