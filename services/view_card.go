package services

import (
	"fmt"
	"strconv"
	"strings"

	"pizzeria-telegram/lang"
	"pizzeria-telegram/models"
)

// Callback data understood by the front ends.
const (
	CallbackAdd     = "add:"
	CallbackQty     = "qty:"
	CallbackView    = "view:"
	CallbackLang    = "lang:"
	CallbackAccount = "account"
	CallbackCoupon  = "coupon"
	CallbackPlace   = "place"
)

// CardButton is one inline button (text + callback_data).
type CardButton struct {
	Text         string
	CallbackData string
}

// ViewCard is the text and inline keyboard for one screen.
type ViewCard struct {
	Text    string
	Buttons [][]CardButton
}

func AddCallback(itemID int) string {
	return CallbackAdd + strconv.Itoa(itemID)
}

func QtyCallback(itemID, delta int) string {
	return fmt.Sprintf("%s%d:%+d", CallbackQty, itemID, delta)
}

func ViewCallback(v models.View) string {
	return CallbackView + string(v)
}

// ShortOrderID is the tail of the order token, enough to tell orders apart on screen.
func ShortOrderID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}

// BuildCard renders the view selected in st.
func BuildCard(st State, langCode string) ViewCard {
	switch st.View {
	case models.ViewLogin:
		return BuildLoginCard(langCode)
	case models.ViewCart:
		return BuildCartCard(st, langCode)
	case models.ViewTracking:
		return BuildTrackingCard(st, langCode)
	default:
		return BuildHomeCard(st, langCode)
	}
}

// BuildHomeCard lists the menu with one add button per pizza.
func BuildHomeCard(st State, langCode string) ViewCard {
	var b strings.Builder
	b.WriteString(lang.T(langCode, "header_title") + "\n")
	b.WriteString(lang.T(langCode, "header_subtitle") + "\n")
	if st.User != nil {
		b.WriteString("\n" + lang.T(langCode, "welcome_back", st.User.Name) + "\n")
	}
	b.WriteString("\n" + lang.T(langCode, "promise_title") + "\n")
	b.WriteString(lang.T(langCode, "promise_subtitle") + "\n")

	b.WriteString("\n" + lang.T(langCode, "menu_title") + "\n")
	items := Menu()
	for _, item := range items {
		b.WriteString("\n" + MenuItemLine(item, langCode) + "\n")
		b.WriteString(item.Description + "\n")
		b.WriteString("$" + FormatMoney(item.Price) + "\n")
	}

	b.WriteString("\n" + lang.T(langCode, "contact_call") + "\n")
	b.WriteString(lang.T(langCode, "contact_radius"))

	buttons := make([][]CardButton, 0, len(items)+2)
	for _, item := range items {
		buttons = append(buttons, []CardButton{{
			Text:         lang.T(langCode, "btn_add", item.Name, FormatMoney(item.Price)),
			CallbackData: AddCallback(item.ID),
		}})
	}
	buttons = append(buttons, []CardButton{
		{Text: cartButtonText(st.CartCount, langCode), CallbackData: ViewCallback(models.ViewCart)},
		{Text: accountButtonText(st.User != nil, langCode), CallbackData: CallbackAccount},
	})
	if st.Order != nil {
		buttons = append(buttons, []CardButton{{Text: lang.T(langCode, "btn_track"), CallbackData: ViewCallback(models.ViewTracking)}})
	}
	return ViewCard{Text: b.String(), Buttons: buttons}
}

// MenuItemLine is "<emoji> <name> ⭐<rating>" with the popular badge when set.
func MenuItemLine(item models.MenuItem, langCode string) string {
	line := fmt.Sprintf("%s %s ⭐%.1f", item.Emoji, item.Name, item.Rating)
	if item.Popular {
		line += " · " + lang.T(langCode, "popular")
	}
	return line
}

func cartButtonText(count int, langCode string) string {
	if count == 0 {
		return lang.T(langCode, "btn_cart")
	}
	return lang.T(langCode, "btn_cart_count", count)
}

func accountButtonText(loggedIn bool, langCode string) string {
	if loggedIn {
		return lang.T(langCode, "btn_logout")
	}
	return lang.T(langCode, "btn_login")
}

// BuildLoginCard shows the demo login screen. Credentials are collected by the front end.
func BuildLoginCard(langCode string) ViewCard {
	text := lang.T(langCode, "login_title") + "\n" +
		lang.T(langCode, "login_subtitle") + "\n\n" +
		lang.T(langCode, "login_hint")
	return ViewCard{
		Text: text,
		Buttons: [][]CardButton{
			{{Text: lang.T(langCode, "btn_guest"), CallbackData: ViewCallback(models.ViewHome)}},
		},
	}
}

// BuildCartCard lists cart lines with quantity buttons, the coupon section and totals.
func BuildCartCard(st State, langCode string) ViewCard {
	backRow := []CardButton{{Text: lang.T(langCode, "btn_back_menu"), CallbackData: ViewCallback(models.ViewHome)}}

	var b strings.Builder
	b.WriteString(lang.T(langCode, "cart_title") + "\n\n")
	if len(st.Lines) == 0 {
		b.WriteString(lang.T(langCode, "cart_empty"))
		return ViewCard{Text: b.String(), Buttons: [][]CardButton{backRow}}
	}

	var buttons [][]CardButton
	for _, l := range st.Lines {
		b.WriteString(lang.T(langCode, "cart_line", l.Item.Emoji, l.Item.Name, l.Quantity, FormatMoney(l.LineTotal())) + "\n")
		buttons = append(buttons, []CardButton{
			{Text: "➖ " + l.Item.Name, CallbackData: QtyCallback(l.Item.ID, -1)},
			{Text: "➕", CallbackData: QtyCallback(l.Item.ID, 1)},
		})
	}

	b.WriteString("\n" + lang.T(langCode, "coupon_title") + "\n")
	if st.Coupon != nil {
		b.WriteString(lang.T(langCode, "coupon_applied", st.Coupon.Description) + "\n")
	}
	b.WriteString(lang.T(langCode, "coupon_hint") + "\n")

	d := st.Totals.Display()
	b.WriteString("\n" + lang.T(langCode, "summary_subtotal", d.Subtotal) + "\n")
	if st.Coupon != nil {
		b.WriteString(lang.T(langCode, "summary_discount", d.Discount) + "\n")
	}
	b.WriteString(lang.T(langCode, "summary_total", d.Total))

	buttons = append(buttons,
		[]CardButton{{Text: lang.T(langCode, "btn_coupon"), CallbackData: CallbackCoupon}},
		[]CardButton{{Text: lang.T(langCode, "btn_place_order", d.Total), CallbackData: CallbackPlace}},
		backRow,
	)
	return ViewCard{Text: b.String(), Buttons: buttons}
}

// BuildTrackingCard shows the active order, the delivery timer and the mock map.
func BuildTrackingCard(st State, langCode string) ViewCard {
	buttons := [][]CardButton{{{Text: lang.T(langCode, "btn_back_home"), CallbackData: ViewCallback(models.ViewHome)}}}

	var b strings.Builder
	b.WriteString(lang.T(langCode, "tracking_title") + "\n")
	b.WriteString(lang.T(langCode, "tracking_gps") + "\n\n")
	if st.Order == nil {
		b.WriteString(lang.T(langCode, "tracking_no_order"))
		return ViewCard{Text: b.String(), Buttons: buttons}
	}

	o := st.Order
	b.WriteString(lang.T(langCode, "tracking_order", ShortOrderID(o.ID), FormatMoney(o.Total)) + "\n")
	b.WriteString(lang.T(langCode, "tracking_address", o.Address) + "\n\n")

	b.WriteString(lang.T(langCode, "timer_label") + "\n")
	if st.HasCountdown {
		b.WriteString(FormatTimer(st.Remaining) + "\n")
		b.WriteString(lang.T(langCode, "timer_subtext") + "\n\n")
	} else {
		b.WriteString(lang.T(langCode, "timer_free") + "\n\n")
	}

	b.WriteString(lang.T(langCode, "map_title") + "\n")
	b.WriteString(lang.T(langCode, "map_subtitle") + "\n")
	b.WriteString(lang.T(langCode, "driver_distance") + "\n\n")

	b.WriteString(lang.T(langCode, "step_confirmed") + "\n")
	b.WriteString(lang.T(langCode, "step_preparing") + "\n")
	b.WriteString(lang.T(langCode, "step_out") + "\n")
	b.WriteString(lang.T(langCode, "step_delivered"))

	return ViewCard{Text: b.String(), Buttons: buttons}
}

// NoticeText returns the localized title and body of a notice.
func NoticeText(n models.Notice, langCode string) (title, body string) {
	switch n.Kind {
	case models.NoticeAddedToCart:
		return lang.T(langCode, "notice_added_title"), lang.T(langCode, "notice_added_body", n.Args...)
	case models.NoticeCouponApplied:
		if len(n.Args) > 0 {
			body = fmt.Sprint(n.Args[0])
		}
		return lang.T(langCode, "notice_coupon_title"), body
	case models.NoticeCouponInvalid:
		return lang.T(langCode, "notice_invalid_title"), lang.T(langCode, "notice_invalid_body")
	case models.NoticeOrderFree:
		return lang.T(langCode, "notice_free_title"), lang.T(langCode, "notice_free_body")
	default:
		return string(n.Kind), ""
	}
}
