package services

import (
	"strings"
	"testing"
	"time"

	"pizzeria-telegram/lang"
	"pizzeria-telegram/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allCallbacks(card ViewCard) []string {
	var out []string
	for _, row := range card.Buttons {
		for _, b := range row {
			out = append(out, b.CallbackData)
		}
	}
	return out
}

func TestCallbackBuilders(t *testing.T) {
	assert.Equal(t, "add:3", AddCallback(3))
	assert.Equal(t, "qty:3:+1", QtyCallback(3, 1))
	assert.Equal(t, "qty:3:-1", QtyCallback(3, -1))
	assert.Equal(t, "view:cart", ViewCallback(models.ViewCart))
}

func TestShortOrderID(t *testing.T) {
	assert.Equal(t, "abc", ShortOrderID("abc"))
	assert.Equal(t, "89abcdef", ShortOrderID("0123456789abcdef"))
}

func TestBuildHomeCard(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	card := BuildHomeCard(s.State(), lang.En)

	assert.Contains(t, card.Text, "Papaliala's")
	assert.Contains(t, card.Text, "30 Minutes or FREE!")
	assert.Contains(t, card.Text, "🍕 Margherita Classic ⭐4.8 · Popular")
	assert.Contains(t, card.Text, "$12.99")
	assert.NotContains(t, card.Text, "Welcome back")

	cbs := allCallbacks(card)
	for _, item := range Menu() {
		assert.Contains(t, cbs, AddCallback(item.ID))
	}
	assert.Contains(t, cbs, "view:cart")
	assert.Contains(t, cbs, CallbackAccount)
	assert.NotContains(t, cbs, "view:tracking")
	assert.Equal(t, "Add Margherita Classic — $12.99", card.Buttons[0][0].Text)

	require.NoError(t, s.Login("mario@example.com", "pw"))
	s.AddItem(mustItem(t, 1))
	s.PlaceOrder()
	card = BuildHomeCard(s.State(), lang.En)
	assert.Contains(t, card.Text, "Welcome back, mario!")
	assert.Contains(t, allCallbacks(card), "view:tracking")
}

func TestBuildCartCard(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	card := BuildCartCard(s.State(), lang.En)
	assert.Contains(t, card.Text, "Your cart is empty")
	assert.Equal(t, []string{"view:home"}, allCallbacks(card))

	s.AddItem(mustItem(t, 1))
	s.AddItem(mustItem(t, 1))
	card = BuildCartCard(s.State(), lang.En)
	assert.Contains(t, card.Text, "Margherita Classic ×2 — $25.98")
	assert.Contains(t, card.Text, "Subtotal: $25.98")
	assert.NotContains(t, card.Text, "Discount")
	assert.Contains(t, card.Text, "Try: WELCOME10, SAVE5, STUDENT15, FAMILY20")
	cbs := allCallbacks(card)
	assert.Contains(t, cbs, "qty:1:-1")
	assert.Contains(t, cbs, "qty:1:+1")
	assert.Contains(t, cbs, CallbackCoupon)
	assert.Contains(t, cbs, CallbackPlace)

	_, err := s.ApplyCoupon("WELCOME10")
	require.NoError(t, err)
	card = BuildCartCard(s.State(), lang.En)
	assert.Contains(t, card.Text, "✓ 10% off your first order")
	assert.Contains(t, card.Text, "Discount: -$2.60")
	assert.Contains(t, card.Text, "Total: $23.38")

	var place string
	for _, row := range card.Buttons {
		for _, b := range row {
			if b.CallbackData == CallbackPlace {
				place = b.Text
			}
		}
	}
	assert.Equal(t, "Place Order - $23.38", place)
}

func TestBuildTrackingCard(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	card := BuildTrackingCard(s.State(), lang.En)
	assert.Contains(t, card.Text, "No active order yet.")

	s.AddItem(mustItem(t, 4))
	order, ok := s.PlaceOrder()
	require.True(t, ok)
	s.Tick()

	card = BuildTrackingCard(s.State(), lang.En)
	assert.Contains(t, card.Text, "Order #"+ShortOrderID(order.ID)+" — $18.99")
	assert.Contains(t, card.Text, "123 Main St, Your City")
	assert.Contains(t, card.Text, "29:59")
	assert.Contains(t, card.Text, "Driver: 2.3 km away")
	assert.Equal(t, []string{"view:home"}, allCallbacks(card))

	for s.Tick() {
	}
	card = BuildTrackingCard(s.State(), lang.En)
	assert.Contains(t, card.Text, "Your pizza is FREE!")
	assert.NotContains(t, card.Text, "0:00")
}

func TestBuildCardFollowsView(t *testing.T) {
	s, _ := newTestSession(t, Options{Now: func() time.Time { return time.Unix(0, 0) }})
	tests := []struct {
		view models.View
		want string
	}{
		{models.ViewHome, "Our Pizzas"},
		{models.ViewLogin, "Demo: Use any email and password to login"},
		{models.ViewCart, "Your Cart"},
		{models.ViewTracking, "Order Tracking"},
	}
	for _, tt := range tests {
		s.Navigate(tt.view)
		card := BuildCard(s.State(), lang.En)
		if !strings.Contains(card.Text, tt.want) {
			t.Errorf("BuildCard(%s) missing %q:\n%s", tt.view, tt.want, card.Text)
		}
	}

	ru := BuildCard(State{View: models.ViewCart}, lang.Ru)
	assert.Contains(t, ru.Text, "Корзина пуста")
}

func TestNoticeText(t *testing.T) {
	title, body := NoticeText(models.Notice{Kind: models.NoticeAddedToCart, Args: []interface{}{"Meat Lovers"}}, lang.En)
	assert.Equal(t, "Added to Cart", title)
	assert.Equal(t, "Meat Lovers added successfully!", body)

	title, body = NoticeText(models.Notice{Kind: models.NoticeCouponApplied, Args: []interface{}{"10% off your first order"}}, lang.En)
	assert.Equal(t, "Coupon Applied!", title)
	assert.Equal(t, "10% off your first order", body)

	title, _ = NoticeText(models.Notice{Kind: models.NoticeCouponInvalid}, lang.En)
	assert.Equal(t, "Invalid Coupon", title)

	_, body = NoticeText(models.Notice{Kind: models.NoticeOrderFree}, lang.En)
	assert.Equal(t, "Your pizza is FREE! Delivery took longer than 30 minutes.", body)
}
