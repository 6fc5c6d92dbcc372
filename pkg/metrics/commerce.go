package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CommerceMetrics tracks cart and checkout activity.
type CommerceMetrics struct {
	cartAdds      prometheus.Counter
	ordersPlaced  prometheus.Counter
	orderValue    prometheus.Histogram
	retryAttempts *prometheus.CounterVec
	reviews       prometheus.Counter
}

// NewCommerceMetrics registers the storefront counters on reg. A nil reg yields
// a no-op recorder.
func NewCommerceMetrics(reg prometheus.Registerer) *CommerceMetrics {
	if reg == nil {
		return &CommerceMetrics{}
	}
	m := &CommerceMetrics{
		cartAdds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketplace_cart_adds_total",
			Help: "Successful add-to-cart upserts.",
		}),
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketplace_orders_placed_total",
			Help: "Orders committed at checkout.",
		}),
		orderValue: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "marketplace_order_value",
			Help:    "Full price of placed orders.",
			Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}),
		retryAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketplace_write_retries_total",
			Help: "Transactions re-executed after a transient conflict.",
		}, []string{"operation"}),
		reviews: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketplace_reviews_created_total",
			Help: "Reviews accepted.",
		}),
	}
	reg.MustRegister(m.cartAdds, m.ordersPlaced, m.orderValue, m.retryAttempts, m.reviews)
	return m
}

func (m *CommerceMetrics) IncCartAdd() {
	if m == nil || m.cartAdds == nil {
		return
	}
	m.cartAdds.Inc()
}

// ObserveOrder counts a placed order and records its value.
func (m *CommerceMetrics) ObserveOrder(fullPrice float64) {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.Inc()
	m.orderValue.Observe(fullPrice)
}

// IncRetry counts one re-execution of the named operation.
func (m *CommerceMetrics) IncRetry(operation string) {
	if m == nil || m.retryAttempts == nil {
		return
	}
	m.retryAttempts.WithLabelValues(normalizeLabel(operation)).Inc()
}

func (m *CommerceMetrics) IncReview() {
	if m == nil || m.reviews == nil {
		return
	}
	m.reviews.Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
