package bot

import (
	"fmt"
	"strconv"
	"strings"

	"pizzeria-telegram/lang"
	"pizzeria-telegram/models"
	"pizzeria-telegram/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// cardMarkup converts ViewCard.Buttons to a Telegram inline keyboard.
func cardMarkup(c services.ViewCard) *tgbotapi.InlineKeyboardMarkup {
	if len(c.Buttons) == 0 {
		return nil
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, row := range c.Buttons {
		var btns []tgbotapi.InlineKeyboardButton
		for _, btn := range row {
			btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.CallbackData))
		}
		rows = append(rows, btns)
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func languageKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("English", services.CallbackLang+lang.En),
			tgbotapi.NewInlineKeyboardButtonData("Русский", services.CallbackLang+lang.Ru),
		),
	)
}

type actionKind int

const (
	actionAdd actionKind = iota + 1
	actionQty
	actionView
	actionAccount
	actionCoupon
	actionPlace
	actionLang
)

// callbackAction is decoded callback_data.
type callbackAction struct {
	kind   actionKind
	itemID int
	delta  int
	view   models.View
	lang   string
}

func parseCallback(data string) (callbackAction, error) {
	switch {
	case data == services.CallbackAccount:
		return callbackAction{kind: actionAccount}, nil
	case data == services.CallbackCoupon:
		return callbackAction{kind: actionCoupon}, nil
	case data == services.CallbackPlace:
		return callbackAction{kind: actionPlace}, nil
	case strings.HasPrefix(data, services.CallbackAdd):
		id, err := strconv.Atoi(strings.TrimPrefix(data, services.CallbackAdd))
		if err != nil {
			return callbackAction{}, fmt.Errorf("bad add callback %q: %w", data, err)
		}
		return callbackAction{kind: actionAdd, itemID: id}, nil
	case strings.HasPrefix(data, services.CallbackQty):
		idStr, deltaStr, ok := strings.Cut(strings.TrimPrefix(data, services.CallbackQty), ":")
		if !ok {
			return callbackAction{}, fmt.Errorf("bad qty callback %q", data)
		}
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return callbackAction{}, fmt.Errorf("bad qty callback %q: %w", data, err)
		}
		delta, err := strconv.Atoi(deltaStr)
		if err != nil || (delta != 1 && delta != -1) {
			return callbackAction{}, fmt.Errorf("bad qty delta in %q", data)
		}
		return callbackAction{kind: actionQty, itemID: id, delta: delta}, nil
	case strings.HasPrefix(data, services.CallbackView):
		v, err := models.ParseView(strings.TrimPrefix(data, services.CallbackView))
		if err != nil {
			return callbackAction{}, err
		}
		return callbackAction{kind: actionView, view: v}, nil
	case strings.HasPrefix(data, services.CallbackLang):
		code := strings.TrimPrefix(data, services.CallbackLang)
		if !lang.Supported(code) {
			return callbackAction{}, fmt.Errorf("unsupported language %q", code)
		}
		return callbackAction{kind: actionLang, lang: code}, nil
	}
	return callbackAction{}, fmt.Errorf("unknown callback %q", data)
}
