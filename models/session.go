package models

import "fmt"

// View is the screen currently selected by the router.
type View string

const (
	ViewHome     View = "home"
	ViewLogin    View = "login"
	ViewCart     View = "cart"
	ViewTracking View = "tracking"
)

// ParseView maps a callback/command token to a View.
func ParseView(s string) (View, error) {
	switch v := View(s); v {
	case ViewHome, ViewLogin, ViewCart, ViewTracking:
		return v, nil
	}
	return "", fmt.Errorf("unknown view: %q", s)
}

// User is present after login. No password is kept.
type User struct {
	Email string
	Name  string
}

// Phase of the checkout state machine.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhasePreparing Phase = "preparing"
	PhaseResolved  Phase = "resolved"
)

type NoticeKind string

const (
	NoticeAddedToCart   NoticeKind = "added_to_cart"
	NoticeCouponApplied NoticeKind = "coupon_applied"
	NoticeCouponInvalid NoticeKind = "coupon_invalid"
	NoticeOrderFree     NoticeKind = "order_free"
)

// Notice is a transient user-visible message. Args feed the localized text.
type Notice struct {
	Kind NoticeKind
	Args []interface{}
}
