package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"pizzeria-telegram/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const namespace = "pizzeria"

// Metrics records session events into its own registry. It satisfies services.Recorder.
type Metrics struct {
	reg *prometheus.Registry

	ordersPlaced     prometheus.Counter
	couponsApplied   *prometheus.CounterVec
	couponsRejected  prometheus.Counter
	freeOrders       prometheus.Counter
	itemsAdded       *prometheus.CounterVec
	activeCountdowns prometheus.Gauge
	orderTotal       prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Orders placed from a non-empty cart.",
		}),
		couponsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupons_applied_total",
			Help:      "Coupons applied, by code.",
		}, []string{"code"}),
		couponsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupons_rejected_total",
			Help:      "Coupon codes that matched nothing.",
		}),
		freeOrders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "free_orders_total",
			Help:      "Orders whose delivery countdown ran out.",
		}),
		itemsAdded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_items_added_total",
			Help:      "Add-to-cart actions, by menu item.",
		}, []string{"item"}),
		activeCountdowns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_countdowns",
			Help:      "Delivery countdowns currently running.",
		}),
		orderTotal: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_total_dollars",
			Help:      "Order totals after discount.",
			Buckets:   prometheus.LinearBuckets(10, 10, 8),
		}),
	}
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ordersPlaced,
		m.couponsApplied,
		m.couponsRejected,
		m.freeOrders,
		m.itemsAdded,
		m.activeCountdowns,
		m.orderTotal,
	)
	return m
}

func (m *Metrics) CouponApplied(code string) { m.couponsApplied.WithLabelValues(code).Inc() }
func (m *Metrics) CouponRejected()           { m.couponsRejected.Inc() }
func (m *Metrics) CountdownStarted()         { m.activeCountdowns.Inc() }
func (m *Metrics) CountdownStopped()         { m.activeCountdowns.Dec() }
func (m *Metrics) OrderFree()                { m.freeOrders.Inc() }

func (m *Metrics) ItemAdded(item models.MenuItem) {
	m.itemsAdded.WithLabelValues(item.Name).Inc()
}

func (m *Metrics) OrderPlaced(total decimal.Decimal) {
	m.ordersPlaced.Inc()
	m.orderTotal.Observe(total.InexactFloat64())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Serve exposes /metrics on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", h)

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting metrics server", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down metrics server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
