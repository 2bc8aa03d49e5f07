package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"pizzeria-telegram/config"
	"pizzeria-telegram/lang"
	"pizzeria-telegram/models"
	"pizzeria-telegram/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// sender is the part of *tgbotapi.BotAPI the bot talks to.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type inputMode int

const (
	inputNone inputMode = iota
	inputCoupon
	inputEmail
	inputPassword
)

// inputState is the text the chat is expected to type next.
type inputState struct {
	mode  inputMode
	email string
}

type Bot struct {
	tg    *tgbotapi.BotAPI
	api   sender
	cfg   *config.Config
	store *services.Store
	log   *zap.Logger

	userLang   map[int64]string // "en" or "ru"
	userLangMu sync.RWMutex

	screens   map[int64]int // chat id -> message id of the screen edited in place
	screensMu sync.Mutex

	inputs   map[int64]inputState
	inputsMu sync.Mutex

	lastRefresh   map[int64]time.Time
	lastRefreshMu sync.Mutex
}

// New connects to Telegram. snaps may be nil (sessions live in memory only);
// rec receives session events for metrics.
func New(cfg *config.Config, snaps services.Snapshotter, rec services.Recorder, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	b := newBot(api, cfg, snaps, rec, log)
	b.tg = api
	b.log.Info("authorized", zap.String("username", api.Self.UserName))
	return b, nil
}

func newBot(api sender, cfg *config.Config, snaps services.Snapshotter, rec services.Recorder, log *zap.Logger) *Bot {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Bot{
		api:         api,
		cfg:         cfg,
		log:         log,
		userLang:    make(map[int64]string),
		screens:     make(map[int64]int),
		inputs:      make(map[int64]inputState),
		lastRefresh: make(map[int64]time.Time),
	}
	b.store = services.NewStore(func(chatID int64) services.Options {
		return services.Options{
			CountdownSeconds: cfg.Delivery.CountdownSeconds,
			Recorder:         rec,
			Notifier:         services.NotifierFunc(func(n models.Notice) { b.sendNotice(chatID, n) }),
			OnTick:           func(remaining int) { b.onTick(chatID, remaining) },
		}
	}, snaps, log.Named("store"))
	return b
}

func (b *Bot) setBotCommands() error {
	cfg := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Home"},
		tgbotapi.BotCommand{Command: "menu", Description: "Our pizzas"},
		tgbotapi.BotCommand{Command: "cart", Description: "Your cart"},
		tgbotapi.BotCommand{Command: "track", Description: "Track your order"},
		tgbotapi.BotCommand{Command: "login", Description: "Login"},
		tgbotapi.BotCommand{Command: "logout", Description: "Logout"},
		tgbotapi.BotCommand{Command: "language", Description: "Change language"},
	)
	_, err := b.api.Request(cfg)
	return err
}

// Start long-polls Telegram until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	if err := b.setBotCommands(); err != nil {
		b.log.Warn("set bot commands", zap.Error(err))
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.tg.GetUpdatesChan(u)

	idle := time.Duration(b.cfg.Session.IdleMinutes) * time.Minute
	sweep := time.NewTicker(sweepInterval(idle))
	defer sweep.Stop()

	b.log.Info("bot started")
	for {
		select {
		case <-ctx.Done():
			b.tg.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(update)
		case now := <-sweep.C:
			b.sweep(now.Add(-idle))
		}
	}
}

func sweepInterval(idle time.Duration) time.Duration {
	return min(max(idle/4, time.Minute), time.Hour)
}

// sweep evicts chats idle since before cutoff and forgets their per-chat state.
// Chats with a running countdown are kept.
func (b *Bot) sweep(cutoff time.Time) {
	evicted := b.store.Evict(cutoff)
	if len(evicted) == 0 {
		return
	}
	b.userLangMu.Lock()
	b.screensMu.Lock()
	b.inputsMu.Lock()
	b.lastRefreshMu.Lock()
	for _, chatID := range evicted {
		delete(b.userLang, chatID)
		delete(b.screens, chatID)
		delete(b.inputs, chatID)
		delete(b.lastRefresh, chatID)
	}
	b.lastRefreshMu.Unlock()
	b.inputsMu.Unlock()
	b.screensMu.Unlock()
	b.userLangMu.Unlock()
	b.log.Debug("idle chats evicted", zap.Int("evicted", len(evicted)), zap.Int("sessions", b.store.Len()))
}

// Close stops every running countdown.
func (b *Bot) Close() {
	b.store.Close()
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(update.CallbackQuery)
		return
	}
	if update.Message == nil || update.Message.Chat == nil {
		return
	}
	msg := update.Message
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		b.clearInput(chatID)
		b.handleCommand(chatID, msg.Command())
		return
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	if !b.handleInput(chatID, msg.MessageID, text) {
		b.sendLang(chatID, "unknown_command")
	}
}

func (b *Bot) handleCommand(chatID int64, cmd string) {
	s := b.store.Get(chatID)
	switch cmd {
	case "start", "menu":
		s.Navigate(models.ViewHome)
		b.showScreen(chatID, s, true)
	case "cart":
		s.Navigate(models.ViewCart)
		b.showScreen(chatID, s, true)
	case "track":
		s.Navigate(models.ViewTracking)
		b.showScreen(chatID, s, true)
	case "login":
		s.Navigate(models.ViewLogin)
		b.showScreen(chatID, s, true)
		b.askEmail(chatID)
	case "logout":
		s.Logout()
		b.sendLang(chatID, "logged_out")
		b.showScreen(chatID, s, true)
	case "language":
		b.handleLanguage(chatID)
	default:
		b.sendLang(chatID, "unknown_command")
	}
}

func (b *Bot) handleCallback(cq *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		b.log.Debug("answer callback", zap.Error(err))
	}
	if cq.Message == nil || cq.Message.Chat == nil {
		return
	}
	chatID := cq.Message.Chat.ID

	action, err := parseCallback(cq.Data)
	if err != nil {
		b.log.Warn("ignoring callback", zap.Int64("chat_id", chatID), zap.Error(err))
		return
	}
	s := b.store.Get(chatID)

	switch action.kind {
	case actionAdd:
		item, ok := services.MenuItemByID(action.itemID)
		if !ok {
			b.log.Warn("unknown menu item", zap.Int64("chat_id", chatID), zap.Int("item_id", action.itemID))
			return
		}
		s.AddItem(item)
	case actionQty:
		s.ChangeQuantity(action.itemID, action.delta)
	case actionView:
		b.clearInput(chatID)
		s.Navigate(action.view)
		if action.view == models.ViewLogin {
			b.askEmail(chatID)
		}
	case actionAccount:
		b.clearInput(chatID)
		if s.ToggleAccount() == models.ViewLogin {
			b.askEmail(chatID)
		} else {
			b.sendLang(chatID, "logged_out")
		}
	case actionCoupon:
		b.setInput(chatID, inputState{mode: inputCoupon})
		b.sendLang(chatID, "ask_coupon")
		return
	case actionPlace:
		b.clearInput(chatID)
		if order, ok := s.PlaceOrder(); ok {
			b.log.Info("order placed",
				zap.Int64("chat_id", chatID),
				zap.String("order_id", order.ID),
				zap.String("total", services.FormatMoney(order.Total)),
			)
		}
	case actionLang:
		b.setLang(chatID, action.lang)
		b.sendLang(chatID, "language_changed")
	}
	b.dropStaleCouponPrompt(chatID, s)
	b.showScreen(chatID, s, false)
}

// handleInput consumes free text for the pending coupon or login prompt.
// It reports false when nothing was expected.
func (b *Bot) handleInput(chatID int64, messageID int, text string) bool {
	in := b.getInput(chatID)
	s := b.store.Get(chatID)

	switch in.mode {
	case inputCoupon:
		if b.dropStaleCouponPrompt(chatID, s) {
			return false
		}
		s.SetCouponInput(text)
		if _, err := s.ApplyCoupon(text); err != nil {
			if !errors.Is(err, services.ErrInvalidCoupon) {
				b.log.Error("apply coupon", zap.Int64("chat_id", chatID), zap.Error(err))
			}
			return true
		}
		b.clearInput(chatID)
		b.showScreen(chatID, s, true)
	case inputEmail:
		b.setInput(chatID, inputState{mode: inputPassword, email: text})
		b.sendLang(chatID, "ask_password")
	case inputPassword:
		b.deleteMessage(chatID, messageID)
		if err := s.Login(in.email, text); err != nil {
			b.sendLang(chatID, "login_required")
			b.askEmail(chatID)
			return true
		}
		b.clearInput(chatID)
		if u := s.State().User; u != nil {
			b.sendLang(chatID, "logged_in", u.Name)
		}
		b.showScreen(chatID, s, true)
	default:
		return false
	}
	return true
}

// dropStaleCouponPrompt clears a pending coupon prompt once the chat has left the cart.
func (b *Bot) dropStaleCouponPrompt(chatID int64, s *services.Session) bool {
	if b.getInput(chatID).mode != inputCoupon || s.State().View == models.ViewCart {
		return false
	}
	b.clearInput(chatID)
	return true
}

func (b *Bot) askEmail(chatID int64) {
	b.setInput(chatID, inputState{mode: inputEmail})
	b.sendLang(chatID, "ask_email")
}

func (b *Bot) handleLanguage(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, lang.T(b.getLang(chatID), "choose_lang"))
	msg.ReplyMarkup = languageKeyboard()
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// showScreen renders the current view of s. With fresh, or without a known screen
// message, a new message is sent; otherwise the screen message is edited in place.
// "message not found" falls back to sending a new one; "not modified" is ignored.
func (b *Bot) showScreen(chatID int64, s *services.Session, fresh bool) {
	card := services.BuildCard(s.State(), b.getLang(chatID))

	b.screensMu.Lock()
	messageID, ok := b.screens[chatID]
	b.screensMu.Unlock()

	if ok && !fresh {
		edit := tgbotapi.NewEditMessageText(chatID, messageID, card.Text)
		if kb := cardMarkup(card); kb != nil {
			edit.ReplyMarkup = kb
		} else {
			emptyKb := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
			edit.ReplyMarkup = &emptyKb
		}
		_, err := b.api.Send(edit)
		if err == nil {
			return
		}
		errStr := err.Error()
		if strings.Contains(errStr, "not modified") {
			return
		}
		if !strings.Contains(errStr, "not found") {
			b.log.Error("edit screen", zap.Int64("chat_id", chatID), zap.Int("message_id", messageID), zap.Error(err))
			return
		}
	}

	msg := tgbotapi.NewMessage(chatID, card.Text)
	if kb := cardMarkup(card); kb != nil {
		msg.ReplyMarkup = *kb
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		b.log.Error("send screen", zap.Int64("chat_id", chatID), zap.Error(err))
		return
	}
	b.screensMu.Lock()
	b.screens[chatID] = sent.MessageID
	b.screensMu.Unlock()
}

// onTick runs on the countdown goroutine. The tracking screen is refreshed at most
// once per refresh interval, and always on the final tick.
func (b *Bot) onTick(chatID int64, remaining int) {
	interval := time.Duration(b.cfg.Delivery.TrackingRefreshSeconds) * time.Second
	now := time.Now()

	b.lastRefreshMu.Lock()
	last := b.lastRefresh[chatID]
	due := remaining == 0 || now.Sub(last) >= interval
	if due {
		b.lastRefresh[chatID] = now
	}
	b.lastRefreshMu.Unlock()

	if !due {
		return
	}
	s, ok := b.store.Lookup(chatID)
	if !ok || s.State().View != models.ViewTracking {
		return
	}
	b.showScreen(chatID, s, false)
}

func (b *Bot) sendNotice(chatID int64, n models.Notice) {
	title, body := services.NoticeText(n, b.getLang(chatID))
	text := title
	if body != "" {
		text += "\n" + body
	}
	b.send(chatID, text)
}

func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.log.Debug("delete message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) sendLang(chatID int64, key string, args ...interface{}) {
	b.send(chatID, lang.T(b.getLang(chatID), key, args...))
}

func (b *Bot) getLang(chatID int64) string {
	b.userLangMu.RLock()
	l, ok := b.userLang[chatID]
	b.userLangMu.RUnlock()
	if ok {
		return l
	}
	return lang.Normalize(b.cfg.Lang)
}

func (b *Bot) setLang(chatID int64, langCode string) {
	if !lang.Supported(langCode) {
		return
	}
	b.userLangMu.Lock()
	defer b.userLangMu.Unlock()
	b.userLang[chatID] = langCode
}

func (b *Bot) getInput(chatID int64) inputState {
	b.inputsMu.Lock()
	defer b.inputsMu.Unlock()
	return b.inputs[chatID]
}

func (b *Bot) setInput(chatID int64, in inputState) {
	b.inputsMu.Lock()
	defer b.inputsMu.Unlock()
	b.inputs[chatID] = in
}

func (b *Bot) clearInput(chatID int64) {
	b.inputsMu.Lock()
	defer b.inputsMu.Unlock()
	delete(b.inputs, chatID)
}
