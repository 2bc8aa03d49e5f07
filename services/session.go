package services

import (
	"errors"
	"strings"
	"sync"
	"time"

	"pizzeria-telegram/models"

	"github.com/google/uuid"
)

const (
	DefaultCountdownSeconds = 1800
	DeliveryAddress         = "123 Main St, Your City"
)

var (
	ErrInvalidCoupon       = errors.New("invalid coupon code")
	ErrCredentialsRequired = errors.New("email and password are required")
)

// Notifier receives transient notices. It is called without the session lock held.
type Notifier interface {
	Notify(n models.Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n models.Notice)

func (f NotifierFunc) Notify(n models.Notice) { f(n) }

// Options configure a Session. Zero values fall back to defaults.
type Options struct {
	CountdownSeconds int
	TickInterval     time.Duration
	NewTicker        NewTickerFunc
	Notifier         Notifier
	Recorder         Recorder
	Now              func() time.Time

	// OnTick runs after every countdown tick with the remaining seconds (0 on the final tick).
	OnTick func(remaining int)
	// OnChange runs after user-driven mutations (not after ticks).
	OnChange func(State)
}

// State is a copy of a session's values, safe to read after the lock is released.
type State struct {
	View         models.View
	User         *models.User
	Lines        []models.CartLine
	Coupon       *models.Coupon
	CouponInput  string
	Order        *models.ActiveOrder
	Remaining    int
	HasCountdown bool
	Totals       Totals
	CartCount    int
	Phase        models.Phase
}

// Session is the volatile state of one user: identity, cart, coupon, active order,
// countdown and current view. All methods are safe for concurrent use.
type Session struct {
	mu          sync.Mutex
	view        models.View
	user        *models.User
	cart        Cart
	coupon      *models.Coupon
	couponInput string
	order       *models.ActiveOrder
	remaining   int
	countdown   *Countdown

	opts Options
}

func NewSession(opts Options) *Session {
	if opts.CountdownSeconds <= 0 {
		opts.CountdownSeconds = DefaultCountdownSeconds
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.NewTicker == nil {
		opts.NewTicker = NewRealTicker
	}
	if opts.Notifier == nil {
		opts.Notifier = NotifierFunc(func(models.Notice) {})
	}
	if opts.Recorder == nil {
		opts.Recorder = NopRecorder{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{view: models.ViewHome, opts: opts}
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	st := State{
		View:         s.view,
		Lines:        s.cart.Lines(),
		CouponInput:  s.couponInput,
		Remaining:    s.remaining,
		HasCountdown: s.countdown != nil,
		CartCount:    s.cart.Count(),
		Phase:        s.phaseLocked(),
	}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	if s.coupon != nil {
		c := *s.coupon
		st.Coupon = &c
	}
	if s.order != nil {
		o := *s.order
		o.Lines = append([]models.CartLine(nil), s.order.Lines...)
		st.Order = &o
	}
	st.Totals = ComputeTotals(st.Lines, st.Coupon)
	return st
}

func (s *Session) phaseLocked() models.Phase {
	switch {
	case s.order == nil:
		return models.PhaseIdle
	case s.countdown != nil:
		return models.PhasePreparing
	default:
		return models.PhaseResolved
	}
}

// Phase reports the checkout state machine position.
func (s *Session) Phase() models.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phaseLocked()
}

// Totals prices the current cart with the applied coupon.
func (s *Session) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeTotals(s.cart.lines, s.coupon)
}

// AddItem adds one unit of item to the cart and emits an added-to-cart notice.
func (s *Session) AddItem(item models.MenuItem) {
	s.mu.Lock()
	s.cart.Add(item)
	st := s.stateLocked()
	s.mu.Unlock()

	s.opts.Recorder.ItemAdded(item)
	s.opts.Notifier.Notify(models.Notice{Kind: models.NoticeAddedToCart, Args: []interface{}{item.Name}})
	s.changed(st)
}

// ChangeQuantity adjusts the line with the given id by delta. Unknown ids are ignored.
func (s *Session) ChangeQuantity(id, delta int) {
	s.mu.Lock()
	found := s.cart.ChangeQuantity(id, delta)
	st := s.stateLocked()
	s.mu.Unlock()

	if found {
		s.changed(st)
	}
}

// SetCouponInput stores the text typed into the coupon field.
func (s *Session) SetCouponInput(text string) {
	s.mu.Lock()
	s.couponInput = text
	s.mu.Unlock()
}

// ApplyCoupon looks code up case-insensitively. On a hit it replaces the applied coupon
// and clears the typed text; on a miss it leaves coupon state untouched and returns
// ErrInvalidCoupon. No minimum or usage limit is checked.
func (s *Session) ApplyCoupon(code string) (models.Coupon, error) {
	c, ok := LookupCoupon(code)

	s.mu.Lock()
	if !ok {
		s.couponInput = code
		s.mu.Unlock()
		s.opts.Recorder.CouponRejected()
		s.opts.Notifier.Notify(models.Notice{Kind: models.NoticeCouponInvalid})
		return models.Coupon{}, ErrInvalidCoupon
	}
	applied := c
	s.coupon = &applied
	s.couponInput = ""
	st := s.stateLocked()
	s.mu.Unlock()

	s.opts.Recorder.CouponApplied(c.Code)
	s.opts.Notifier.Notify(models.Notice{Kind: models.NoticeCouponApplied, Args: []interface{}{c.Description}})
	s.changed(st)
	return c, nil
}

// PlaceOrder snapshots the cart into an active order, clears the cart, starts the
// delivery countdown and switches to tracking. On an empty cart nothing happens and
// ok is false.
func (s *Session) PlaceOrder() (order models.ActiveOrder, ok bool) {
	s.mu.Lock()
	if s.cart.Empty() {
		s.mu.Unlock()
		return models.ActiveOrder{}, false
	}
	lines := s.cart.Lines()
	o := &models.ActiveOrder{
		ID:       newOrderID(),
		Lines:    lines,
		Total:    ComputeTotals(lines, s.coupon).Total,
		Status:   models.OrderStatusPreparing,
		Address:  DeliveryAddress,
		PlacedAt: s.opts.Now(),
	}
	s.order = o
	s.cart.Clear()
	restarted := s.countdown != nil
	s.startCountdownLocked()
	s.view = models.ViewTracking
	order = *o
	order.Lines = append([]models.CartLine(nil), lines...)
	st := s.stateLocked()
	s.mu.Unlock()

	if restarted {
		s.opts.Recorder.CountdownStopped()
	}
	s.opts.Recorder.OrderPlaced(order.Total)
	s.opts.Recorder.CountdownStarted()
	s.changed(st)
	return order, true
}

func (s *Session) startCountdownLocked() {
	if s.countdown != nil {
		s.countdown.Stop()
	}
	s.remaining = s.opts.CountdownSeconds
	s.countdown = startCountdown(s.opts.NewTicker(s.opts.TickInterval), func(c *Countdown) { s.tick(c) })
}

// Tick advances the running countdown by one second, exactly as a timer tick would.
// It reports false when no countdown is running.
func (s *Session) Tick() bool {
	s.mu.Lock()
	c := s.countdown
	s.mu.Unlock()
	if c == nil {
		return false
	}
	return s.tick(c)
}

// tick ignores ticks from a handle that is no longer the session's countdown.
func (s *Session) tick(c *Countdown) bool {
	s.mu.Lock()
	if s.countdown != c {
		s.mu.Unlock()
		return false
	}
	s.remaining--
	remaining := s.remaining
	if remaining <= 0 {
		s.remaining = 0
		s.countdown = nil
		c.Stop()
	}
	s.mu.Unlock()

	if remaining <= 0 {
		s.opts.Recorder.CountdownStopped()
		s.opts.Recorder.OrderFree()
		s.opts.Notifier.Notify(models.Notice{Kind: models.NoticeOrderFree})
	}
	if s.opts.OnTick != nil {
		s.opts.OnTick(max(remaining, 0))
	}
	return true
}

// Login accepts any non-empty email and password. The display name is the part of
// the email before the first "@".
func (s *Session) Login(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return ErrCredentialsRequired
	}
	name, _, _ := strings.Cut(email, "@")

	s.mu.Lock()
	s.user = &models.User{Email: email, Name: name}
	s.view = models.ViewHome
	st := s.stateLocked()
	s.mu.Unlock()

	s.changed(st)
	return nil
}

// Logout resets the session to its initial values and cancels the countdown.
func (s *Session) Logout() {
	s.mu.Lock()
	stopped := s.resetLocked()
	st := s.stateLocked()
	s.mu.Unlock()

	if stopped {
		s.opts.Recorder.CountdownStopped()
	}
	s.changed(st)
}

func (s *Session) resetLocked() (stopped bool) {
	if s.countdown != nil {
		s.countdown.Stop()
		stopped = true
	}
	s.countdown = nil
	s.remaining = 0
	s.user = nil
	s.cart.Clear()
	s.coupon = nil
	s.couponInput = ""
	s.order = nil
	s.view = models.ViewHome
	return stopped
}

// Navigate selects a view. There are no guards.
func (s *Session) Navigate(v models.View) {
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
}

// ToggleAccount is the person button: logout when logged in, otherwise open login.
func (s *Session) ToggleAccount() models.View {
	s.mu.Lock()
	loggedIn := s.user != nil
	if !loggedIn {
		s.view = models.ViewLogin
		s.mu.Unlock()
		return models.ViewLogin
	}
	s.mu.Unlock()
	s.Logout()
	return models.ViewHome
}

// Restore seeds user and cart lines, used when a persisted snapshot is loaded.
func (s *Session) Restore(user *models.User, lines []models.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user != nil {
		u := *user
		s.user = &u
	}
	s.cart.Clear()
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		s.cart.Add(l.Item)
		s.cart.ChangeQuantity(l.Item.ID, l.Quantity-1)
	}
}

// Close stops the countdown without touching other state and waits for its goroutine.
func (s *Session) Close() {
	s.mu.Lock()
	c := s.countdown
	s.countdown = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	c.Stop()
	<-c.Done()
	s.opts.Recorder.CountdownStopped()
}

func (s *Session) changed(st State) {
	if s.opts.OnChange != nil {
		s.opts.OnChange(st)
	}
}

// newOrderID returns a time-ordered unique token.
func newOrderID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
