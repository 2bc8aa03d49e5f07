package services

import (
	"sync"
	"time"
)

// Ticker is the clock input of a countdown. *time.Ticker satisfies it through realTicker.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// NewTickerFunc creates the ticker a countdown listens to.
type NewTickerFunc func(d time.Duration) Ticker

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewRealTicker wraps time.NewTicker.
func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// Countdown is the cancellable handle of a running delivery timer. It owns one goroutine
// that forwards ticks to onTick until Stop is called.
type Countdown struct {
	ticker Ticker
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
}

func startCountdown(t Ticker, onTick func(*Countdown)) *Countdown {
	c := &Countdown{
		ticker: t,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go c.run(onTick)
	return c
}

func (c *Countdown) run(onTick func(*Countdown)) {
	defer close(c.done)
	defer c.ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-c.ticker.C():
			select {
			case <-c.stop:
				return
			default:
			}
			onTick(c)
		}
	}
}

// Stop drops the handle. It never blocks and may be called more than once.
func (c *Countdown) Stop() {
	c.once.Do(func() { close(c.stop) })
}

// Done is closed once the ticking goroutine has exited.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}
