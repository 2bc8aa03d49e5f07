package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"pizzeria-telegram/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// manualTicker only fires when the test sends on ch.
type manualTicker struct {
	ch chan time.Time
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time)}
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }
func (m *manualTicker) Stop()               {}

type noticeLog struct {
	mu      sync.Mutex
	notices []models.Notice
}

func (l *noticeLog) Notify(n models.Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notices = append(l.notices, n)
}

func (l *noticeLog) count(kind models.NoticeKind) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, x := range l.notices {
		if x.Kind == kind {
			n++
		}
	}
	return n
}

func (l *noticeLog) last() models.Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.notices) == 0 {
		return models.Notice{}
	}
	return l.notices[len(l.notices)-1]
}

// newTestSession uses a ticker that never fires, so only Tick advances the countdown.
func newTestSession(t *testing.T, opts Options) (*Session, *noticeLog) {
	t.Helper()
	log := &noticeLog{}
	if opts.Notifier == nil {
		opts.Notifier = log
	}
	if opts.NewTicker == nil {
		opts.NewTicker = func(time.Duration) Ticker { return newManualTicker() }
	}
	s := NewSession(opts)
	t.Cleanup(s.Close)
	return s, log
}

func mustItem(t *testing.T, id int) models.MenuItem {
	t.Helper()
	item, ok := MenuItemByID(id)
	require.True(t, ok)
	return item
}

func TestNewSessionInitialState(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	st := s.State()
	assert.Equal(t, models.ViewHome, st.View)
	assert.Nil(t, st.User)
	assert.Empty(t, st.Lines)
	assert.Nil(t, st.Coupon)
	assert.Empty(t, st.CouponInput)
	assert.Nil(t, st.Order)
	assert.False(t, st.HasCountdown)
	assert.Equal(t, models.PhaseIdle, st.Phase)
}

func TestAddItemNotifies(t *testing.T) {
	s, log := newTestSession(t, Options{})
	s.AddItem(mustItem(t, 1))
	s.AddItem(mustItem(t, 1))

	st := s.State()
	require.Len(t, st.Lines, 1)
	assert.Equal(t, 2, st.Lines[0].Quantity)
	assert.Equal(t, 2, st.CartCount)
	assert.Equal(t, 2, log.count(models.NoticeAddedToCart))
	assert.Equal(t, []interface{}{"Margherita Classic"}, log.last().Args)
}

func TestApplyCoupon(t *testing.T) {
	s, log := newTestSession(t, Options{})
	s.SetCouponInput("save5")

	c, err := s.ApplyCoupon("save5")
	require.NoError(t, err)
	assert.Equal(t, "SAVE5", c.Code)
	st := s.State()
	require.NotNil(t, st.Coupon)
	assert.Equal(t, "SAVE5", st.Coupon.Code)
	assert.Empty(t, st.CouponInput)
	assert.Equal(t, models.NoticeCouponApplied, log.last().Kind)
	assert.Equal(t, []interface{}{"$5 off orders over $20"}, log.last().Args)

	_, err = s.ApplyCoupon("WELCOME10")
	require.NoError(t, err)
	assert.Equal(t, "WELCOME10", s.State().Coupon.Code, "later coupon replaces earlier")

	_, err = s.ApplyCoupon("NOPE")
	assert.True(t, errors.Is(err, ErrInvalidCoupon))
	st = s.State()
	assert.Equal(t, "WELCOME10", st.Coupon.Code, "invalid code keeps the applied coupon")
	assert.Equal(t, "NOPE", st.CouponInput)
	assert.Equal(t, 1, log.count(models.NoticeCouponInvalid))
}

func TestPlaceOrderEmptyCartIsNoop(t *testing.T) {
	s, log := newTestSession(t, Options{})
	s.Navigate(models.ViewCart)
	before := s.State()

	_, ok := s.PlaceOrder()
	assert.False(t, ok)
	assert.Equal(t, before, s.State())
	assert.Empty(t, log.notices)
}

func TestPlaceOrder(t *testing.T) {
	placedAt := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	s, _ := newTestSession(t, Options{Now: func() time.Time { return placedAt }})
	s.AddItem(mustItem(t, 2))
	s.AddItem(mustItem(t, 2))
	_, err := s.ApplyCoupon("WELCOME10")
	require.NoError(t, err)

	order, ok := s.PlaceOrder()
	require.True(t, ok)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, "28.78", FormatMoney(order.Total))
	assert.Equal(t, models.OrderStatusPreparing, order.Status)
	assert.Equal(t, DeliveryAddress, order.Address)
	assert.Equal(t, placedAt, order.PlacedAt)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, 2, order.Lines[0].Quantity)

	st := s.State()
	assert.Equal(t, models.ViewTracking, st.View)
	assert.Empty(t, st.Lines)
	assert.True(t, st.HasCountdown)
	assert.Equal(t, DefaultCountdownSeconds, st.Remaining)
	assert.Equal(t, models.PhasePreparing, st.Phase)
	require.NotNil(t, st.Order)
	assert.Equal(t, order.ID, st.Order.ID)
	require.NotNil(t, st.Coupon, "coupon stays applied after checkout")
}

func TestCountdownRunsOutOnce(t *testing.T) {
	var ticks []int
	s, log := newTestSession(t, Options{OnTick: func(r int) { ticks = append(ticks, r) }})
	s.AddItem(mustItem(t, 1))
	_, ok := s.PlaceOrder()
	require.True(t, ok)

	for i := 0; i < DefaultCountdownSeconds; i++ {
		require.True(t, s.Tick(), "tick %d", i)
		if i == 0 {
			assert.Equal(t, "29:59", FormatTimer(s.State().Remaining))
		}
	}

	st := s.State()
	assert.False(t, st.HasCountdown)
	assert.Equal(t, 0, st.Remaining)
	assert.Equal(t, models.PhaseResolved, st.Phase)
	require.NotNil(t, st.Order)
	assert.Equal(t, models.OrderStatusPreparing, st.Order.Status)
	assert.Equal(t, 1, log.count(models.NoticeOrderFree))

	assert.False(t, s.Tick(), "no countdown left to tick")
	assert.Equal(t, 1, log.count(models.NoticeOrderFree))
	require.Len(t, ticks, DefaultCountdownSeconds)
	assert.Equal(t, 0, ticks[len(ticks)-1])
}

func TestPlaceOrderRestartsCountdown(t *testing.T) {
	s, _ := newTestSession(t, Options{CountdownSeconds: 10})
	s.AddItem(mustItem(t, 1))
	s.PlaceOrder()
	s.Tick()
	s.Tick()
	assert.Equal(t, 8, s.State().Remaining)

	s.AddItem(mustItem(t, 4))
	s.PlaceOrder()
	assert.Equal(t, 10, s.State().Remaining)
}

func TestLogoutRestoresInitialState(t *testing.T) {
	initial, _ := newTestSession(t, Options{})
	s, _ := newTestSession(t, Options{})

	require.NoError(t, s.Login("mario@example.com", "pw"))
	s.AddItem(mustItem(t, 1))
	s.AddItem(mustItem(t, 5))
	_, err := s.ApplyCoupon("FAMILY20")
	require.NoError(t, err)
	s.PlaceOrder()
	s.AddItem(mustItem(t, 6))
	s.SetCouponInput("typed")
	s.Tick()

	s.Logout()
	assert.Equal(t, initial.State(), s.State())
	assert.False(t, s.Tick())
}

func TestLogin(t *testing.T) {
	tests := []struct {
		email, password string
		wantErr         bool
		wantName        string
	}{
		{"mario@example.com", "secret", false, "mario"},
		{"  luigi@pizza.it ", "x", false, "luigi"},
		{"noatsign", "x", false, "noatsign"},
		{"", "x", true, ""},
		{"a@b.c", "", true, ""},
		{"a@b.c", "   ", true, ""},
	}
	for _, tt := range tests {
		s, _ := newTestSession(t, Options{})
		s.Navigate(models.ViewLogin)
		err := s.Login(tt.email, tt.password)
		st := s.State()
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrCredentialsRequired, tt.email)
			assert.Nil(t, st.User)
			assert.Equal(t, models.ViewLogin, st.View)
			continue
		}
		require.NoError(t, err, tt.email)
		require.NotNil(t, st.User)
		assert.Equal(t, tt.wantName, st.User.Name)
		assert.Equal(t, models.ViewHome, st.View)
	}
}

func TestToggleAccount(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	assert.Equal(t, models.ViewLogin, s.ToggleAccount())
	assert.Equal(t, models.ViewLogin, s.State().View)

	require.NoError(t, s.Login("a@b.c", "pw"))
	s.AddItem(mustItem(t, 3))
	assert.Equal(t, models.ViewHome, s.ToggleAccount())
	st := s.State()
	assert.Nil(t, st.User)
	assert.Empty(t, st.Lines)
}

func TestNavigateHasNoGuards(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	for _, v := range []models.View{models.ViewTracking, models.ViewCart, models.ViewLogin, models.ViewHome} {
		s.Navigate(v)
		assert.Equal(t, v, s.State().View)
	}
}

func TestOnChange(t *testing.T) {
	var changes []State
	s, _ := newTestSession(t, Options{OnChange: func(st State) { changes = append(changes, st) }})

	s.AddItem(mustItem(t, 1))
	s.ChangeQuantity(99, 1)
	s.ChangeQuantity(1, 1)
	require.Len(t, changes, 2)
	assert.Equal(t, 2, changes[1].CartCount)
}

func TestRestore(t *testing.T) {
	s, _ := newTestSession(t, Options{})
	s.Restore(&models.User{Email: "a@b.c", Name: "a"}, []models.CartLine{
		{Item: mustItem(t, 2), Quantity: 3},
		{Item: mustItem(t, 4), Quantity: 0},
	})
	st := s.State()
	require.NotNil(t, st.User)
	require.Len(t, st.Lines, 1)
	assert.Equal(t, 3, st.Lines[0].Quantity)
}

func TestCountdownGoroutine(t *testing.T) {
	defer goleak.VerifyNone(t)

	ticker := newManualTicker()
	ticked := make(chan int, 4)
	s := NewSession(Options{
		CountdownSeconds: 2,
		NewTicker:        func(time.Duration) Ticker { return ticker },
		OnTick:           func(r int) { ticked <- r },
	})
	s.AddItem(mustItem(t, 1))
	_, ok := s.PlaceOrder()
	require.True(t, ok)

	ticker.ch <- time.Now()
	assert.Equal(t, 1, <-ticked)
	ticker.ch <- time.Now()
	assert.Equal(t, 0, <-ticked)

	assert.Equal(t, models.PhaseResolved, s.Phase())
	s.Close()
}

func TestLogoutStopsCountdownGoroutine(t *testing.T) {
	defer goleak.VerifyNone(t)

	var rec countingRecorder
	s := NewSession(Options{
		NewTicker: func(time.Duration) Ticker { return newManualTicker() },
		Recorder:  &rec,
	})
	s.AddItem(mustItem(t, 1))
	s.PlaceOrder()
	s.Logout()

	assert.Equal(t, 1, rec.started)
	assert.Equal(t, 1, rec.stopped)
}

func TestRealTickerSession(t *testing.T) {
	defer goleak.VerifyNone(t)

	ticked := make(chan int, 8)
	s := NewSession(Options{
		CountdownSeconds: 3,
		TickInterval:     time.Millisecond,
		OnTick:           func(r int) { ticked <- r },
	})
	s.AddItem(mustItem(t, 1))
	s.PlaceOrder()

	for want := 2; want >= 0; want-- {
		select {
		case got := <-ticked:
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for tick")
		}
	}
	s.Close()
}

type countingRecorder struct {
	NopRecorder
	mu      sync.Mutex
	started int
	stopped int
	free    int
}

func (r *countingRecorder) CountdownStarted() {
	r.mu.Lock()
	r.started++
	r.mu.Unlock()
}

func (r *countingRecorder) CountdownStopped() {
	r.mu.Lock()
	r.stopped++
	r.mu.Unlock()
}

func (r *countingRecorder) OrderFree() {
	r.mu.Lock()
	r.free++
	r.mu.Unlock()
}
