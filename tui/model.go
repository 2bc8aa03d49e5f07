// Package tui is the terminal storefront: one local session driven by the keyboard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pizzeria-telegram/config"
	"pizzeria-telegram/lang"
	"pizzeria-telegram/models"
	"pizzeria-telegram/services"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type inputKind int

const (
	inputNone inputKind = iota
	inputCoupon
	inputEmail
	inputPassword
)

type noticeMsg models.Notice

type tickMsg time.Time

// Model is the bubbletea model over one Session.
type Model struct {
	session *services.Session
	notices <-chan models.Notice
	lang    string
	styles  Styles
	log     *zap.Logger

	cursor       int
	input        textinput.Model
	inputKind    inputKind
	pendingEmail string
	status       string
}

func New(s *services.Session, notices <-chan models.Notice, langCode string, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 32
	return Model{
		session: s,
		notices: notices,
		lang:    lang.Normalize(langCode),
		styles:  DefaultStyles(),
		log:     log,
		input:   ti,
	}
}

// Run starts an interactive storefront on the terminal and blocks until the user quits
// or ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, rec services.Recorder, log *zap.Logger) error {
	notices := make(chan models.Notice, 16)
	s := services.NewSession(services.Options{
		CountdownSeconds: cfg.Delivery.CountdownSeconds,
		Recorder:         rec,
		Notifier: services.NotifierFunc(func(n models.Notice) {
			select {
			case notices <- n:
			default:
				log.Warn("notice dropped", zap.String("kind", string(n.Kind)))
			}
		}),
	})
	defer s.Close()

	p := tea.NewProgram(New(s, notices, cfg.Lang, log), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) waitForNotice() tea.Cmd {
	if m.notices == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-m.notices
		if !ok {
			return nil
		}
		return noticeMsg(n)
	}
}

// tick re-renders once a second so the delivery timer moves.
func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForNotice(), tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case noticeMsg:
		title, body := services.NoticeText(models.Notice(msg), m.lang)
		m.status = title
		if body != "" {
			m.status += ": " + body
		}
		return m, m.waitForNotice()
	case tickMsg:
		return m, tick()
	case tea.KeyMsg:
		if m.inputKind != inputNone {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.session.State()
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down":
		if m.cursor < m.listLen(st)-1 {
			m.cursor++
		}
	case "enter":
		switch st.View {
		case models.ViewHome:
			menu := services.Menu()
			if m.cursor < len(menu) {
				m.session.AddItem(menu[m.cursor])
			}
		case models.ViewLogin:
			return m.openInput(inputEmail)
		}
	case "+", "-":
		if st.View != models.ViewCart || m.cursor >= len(st.Lines) {
			break
		}
		delta := 1
		if msg.String() == "-" {
			delta = -1
		}
		m.session.ChangeQuantity(st.Lines[m.cursor].Item.ID, delta)
		m.clampCursor()
	case "c":
		m.navigate(models.ViewCart)
	case "t":
		m.navigate(models.ViewTracking)
	case "esc":
		m.navigate(models.ViewHome)
	case "a":
		m.cursor = 0
		if m.session.ToggleAccount() == models.ViewLogin {
			return m.openInput(inputEmail)
		}
		m.status = lang.T(m.lang, "logged_out")
	case "p":
		if st.View != models.ViewCart {
			break
		}
		if order, ok := m.session.PlaceOrder(); ok {
			m.log.Info("order placed", zap.String("order_id", order.ID), zap.String("total", services.FormatMoney(order.Total)))
			m.cursor = 0
		}
	case "k":
		if st.View == models.ViewCart {
			return m.openInput(inputCoupon)
		}
	}
	return m, nil
}

func (m *Model) navigate(v models.View) {
	m.session.Navigate(v)
	m.cursor = 0
}

func (m Model) listLen(st services.State) int {
	switch st.View {
	case models.ViewHome:
		return len(services.Menu())
	case models.ViewCart:
		return len(st.Lines)
	}
	return 0
}

func (m *Model) clampCursor() {
	n := m.listLen(m.session.State())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) openInput(kind inputKind) (tea.Model, tea.Cmd) {
	m.inputKind = kind
	m.input.SetValue("")
	m.input.EchoMode = textinput.EchoNormal
	switch kind {
	case inputCoupon:
		m.input.Prompt = lang.T(m.lang, "ask_coupon") + " "
		m.input.Placeholder = "WELCOME10"
	case inputEmail:
		m.input.Prompt = lang.T(m.lang, "ask_email") + " "
		m.input.Placeholder = "you@example.com"
	case inputPassword:
		m.input.Prompt = lang.T(m.lang, "ask_password") + " "
		m.input.Placeholder = ""
		m.input.EchoMode = textinput.EchoPassword
		m.input.EchoCharacter = '•'
	}
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) closeInput() Model {
	m.inputKind = inputNone
	m.pendingEmail = ""
	m.input.SetValue("")
	m.input.Blur()
	return m
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		return m.closeInput(), nil
	case tea.KeyEnter:
		return m.submitInput()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	switch m.inputKind {
	case inputCoupon:
		m.session.SetCouponInput(value)
		if _, err := m.session.ApplyCoupon(value); err != nil {
			m.input.SetValue("")
			return m, nil
		}
		return m.closeInput(), nil
	case inputEmail:
		email := value
		next, cmd := m.openInput(inputPassword)
		nm := next.(Model)
		nm.pendingEmail = email
		return nm, cmd
	case inputPassword:
		if err := m.session.Login(m.pendingEmail, value); err != nil {
			m.status = lang.T(m.lang, "login_required")
			return m.openInput(inputEmail)
		}
		m = m.closeInput()
		if u := m.session.State().User; u != nil {
			m.status = lang.T(m.lang, "logged_in", u.Name)
		}
		m.cursor = 0
	}
	return m, nil
}

func (m Model) View() string {
	st := m.session.State()
	s := m.styles

	var b strings.Builder
	b.WriteString(s.Header.Render(lang.T(m.lang, "header_title")) + "  " + s.Subtitle.Render(lang.T(m.lang, "header_subtitle")) + "\n")
	cart := lang.T(m.lang, "btn_cart")
	if st.CartCount > 0 {
		cart = lang.T(m.lang, "btn_cart_count", st.CartCount)
	}
	account := lang.T(m.lang, "btn_login")
	if st.User != nil {
		account = lang.T(m.lang, "btn_logout")
	}
	b.WriteString(s.Muted.Render(cart+"  "+account) + "\n\n")

	switch st.View {
	case models.ViewCart:
		b.WriteString(m.cartView(st))
	case models.ViewLogin:
		b.WriteString(s.Box.Render(services.BuildLoginCard(m.lang).Text))
	case models.ViewTracking:
		b.WriteString(m.trackingView(st))
	default:
		b.WriteString(m.homeView(st))
	}
	b.WriteString("\n")

	if m.inputKind != inputNone {
		b.WriteString("\n" + m.input.View() + "\n")
	}
	if m.status != "" {
		b.WriteString("\n" + s.Status.Render(m.status) + "\n")
	}
	b.WriteString("\n" + s.Help.Render(m.help(st)))
	return b.String()
}

func (m Model) homeView(st services.State) string {
	s := m.styles
	var b strings.Builder
	if st.User != nil {
		b.WriteString(lang.T(m.lang, "welcome_back", st.User.Name) + "\n\n")
	}
	b.WriteString(s.Box.Render(lang.T(m.lang, "promise_title")+"\n"+lang.T(m.lang, "promise_subtitle")) + "\n\n")
	b.WriteString(s.Title.Render(lang.T(m.lang, "menu_title")) + "\n")
	for i, item := range services.Menu() {
		line := fmt.Sprintf("%s %s ⭐%.1f", item.Emoji, item.Name, item.Rating)
		if item.Popular {
			line += " " + s.Badge.Render(lang.T(m.lang, "popular"))
		}
		line += "  " + s.Price.Render("$"+services.FormatMoney(item.Price))
		if i == m.cursor {
			b.WriteString(s.Selected.Render("▸ "+line) + "\n")
		} else {
			b.WriteString(s.Item.Render(line) + "\n")
		}
		b.WriteString(s.Item.Render(s.Muted.Render(item.Description)) + "\n")
	}
	b.WriteString("\n" + s.Muted.Render(lang.T(m.lang, "contact_call")+"  "+lang.T(m.lang, "contact_radius")))
	return b.String()
}

func (m Model) cartView(st services.State) string {
	s := m.styles
	var b strings.Builder
	b.WriteString(s.Title.Render(lang.T(m.lang, "cart_title")) + "\n\n")
	if len(st.Lines) == 0 {
		b.WriteString(s.Muted.Render(lang.T(m.lang, "cart_empty")))
		return b.String()
	}
	for i, l := range st.Lines {
		line := lang.T(m.lang, "cart_line", l.Item.Emoji, l.Item.Name, l.Quantity, services.FormatMoney(l.LineTotal()))
		if i == m.cursor {
			b.WriteString(s.Selected.Render("▸ "+line) + "\n")
		} else {
			b.WriteString(s.Item.Render(line) + "\n")
		}
	}

	coupon := lang.T(m.lang, "coupon_title") + "\n"
	if st.Coupon != nil {
		coupon += s.Price.Render(lang.T(m.lang, "coupon_applied", st.Coupon.Description)) + "\n"
	}
	coupon += s.Muted.Render(lang.T(m.lang, "coupon_hint"))
	b.WriteString("\n" + s.Box.Render(coupon) + "\n\n")

	d := st.Totals.Display()
	b.WriteString(lang.T(m.lang, "summary_subtotal", d.Subtotal) + "\n")
	if st.Coupon != nil {
		b.WriteString(s.Price.Render(lang.T(m.lang, "summary_discount", d.Discount)) + "\n")
	}
	b.WriteString(s.Title.Render(lang.T(m.lang, "summary_total", d.Total)) + "\n")
	b.WriteString(s.Muted.Render(lang.T(m.lang, "btn_place_order", d.Total)))
	return b.String()
}

func (m Model) trackingView(st services.State) string {
	s := m.styles
	if st.Order == nil || !st.HasCountdown {
		return s.Box.Render(services.BuildTrackingCard(st, m.lang).Text)
	}
	// Highlight the running timer; the rest of the card is shared with the bot.
	text := services.BuildTrackingCard(st, m.lang).Text
	timer := services.FormatTimer(st.Remaining)
	text = strings.Replace(text, "\n"+timer+"\n", "\n"+s.Timer.Render(timer)+"\n", 1)
	return s.Box.Render(text)
}

func (m Model) help(st services.State) string {
	if m.inputKind != inputNone {
		return "enter submit • esc cancel"
	}
	switch st.View {
	case models.ViewHome:
		return "↑/↓ select • enter add • c cart • t track • a account • q quit"
	case models.ViewCart:
		return "↑/↓ select • +/- quantity • k coupon • p place order • esc menu • q quit"
	case models.ViewLogin:
		return "enter login • esc guest • q quit"
	default:
		return "esc home • c cart • q quit"
	}
}
