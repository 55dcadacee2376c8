package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sokoide/workshop/software/canteen/pkg/domain"
)

const namespace = "canteen"

// OrderMetrics counts order transitions. It is an OrderEventPublisher so the
// session feeds it the same events the brokers get.
type OrderMetrics struct {
	Created    prometheus.Counter
	Resolved   *prometheus.CounterVec
	Resolution *prometheus.HistogramVec
}

func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Orders checked out.",
	})
	resolved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_resolved_total",
		Help:      "Orders resolved, by terminal status.",
	}, []string{"status"})
	resolution := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "order_resolution_seconds",
		Help:      "Time from checkout to resolution.",
		Buckets:   []float64{5, 15, 30, 60, 120, 300, 600, 900},
	}, []string{"status"})

	reg.MustRegister(created, resolved, resolution)
	return &OrderMetrics{Created: created, Resolved: resolved, Resolution: resolution}
}

func (m *OrderMetrics) Publish(_ context.Context, event domain.OrderEvent) error {
	o := event.Order
	if !o.Status.IsTerminal() {
		m.Created.Inc()
		return nil
	}
	status := o.Status.String()
	m.Resolved.WithLabelValues(status).Inc()
	if o.ResolvedAt != nil {
		m.Resolution.WithLabelValues(status).Observe(o.ResolvedAt.Sub(o.CreatedAt).Seconds())
	}
	return nil
}

// HTTPMetrics counts API requests by route pattern and status code.
type HTTPMetrics struct {
	Requests *prometheus.CounterVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"route", "status"})
	reg.MustRegister(requests)
	return &HTTPMetrics{Requests: requests}
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
