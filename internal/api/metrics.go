package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records conversion counters on a private registry so tests can
// build as many servers as they like.
type Metrics struct {
	registry     *prometheus.Registry
	conversions  *prometheus.CounterVec
	transactions prometheus.Counter
	duration     prometheus.Histogram
}

// NewMetrics creates and registers the converter metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "applecard_conversions_total",
			Help: "Conversion requests by outcome.",
		}, []string{"status"}),
		transactions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "applecard_transactions_total",
			Help: "Transactions extracted from converted statements.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "applecard_conversion_duration_seconds",
			Help:    "Time spent converting an upload.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(m.conversions, m.transactions, m.duration)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

func (m *Metrics) observe(status string, transactions int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.conversions.WithLabelValues(status).Inc()
	m.transactions.Add(float64(transactions))
	m.duration.Observe(elapsed.Seconds())
}
