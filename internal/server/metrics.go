package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rustyeddy/tradeledger/ledger"
)

const namespace = "tradeledger"

// Metrics holds the Prometheus metrics of one server. Each server owns its
// registry so several can live in one process.
type Metrics struct {
	reg *prometheus.Registry

	MessagesTotal   *prometheus.CounterVec
	RecordsAdded    prometheus.Counter
	WindowWarnings  prometheus.Counter
	FailuresTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the server metrics.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		MessagesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "messages_total",
			Help:      "Messages handled by outcome",
		}, []string{"result"}),
		RecordsAdded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "records_added_total",
			Help:      "Trade records appended to the store",
		}),
		WindowWarnings: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "window_warnings_total",
			Help:      "Trade windows skipped during parsing",
		}),
		FailuresTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "failures_total",
			Help:      "Pipeline failures by stage",
		}, []string{"stage"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Observe records the outcome of one handled message.
func (m *Metrics) Observe(out *ledger.Outcome, err error) {
	switch {
	case out.ParseErr != nil:
		m.MessagesTotal.WithLabelValues("rejected").Inc()
	case err != nil:
		m.MessagesTotal.WithLabelValues("failed").Inc()
		m.FailuresTotal.WithLabelValues("scan").Inc()
	case out.Added == 0:
		m.MessagesTotal.WithLabelValues("empty").Inc()
	default:
		m.MessagesTotal.WithLabelValues("recorded").Inc()
	}

	m.RecordsAdded.Add(float64(out.Added))
	m.WindowWarnings.Add(float64(len(out.Warnings)))
	if out.StoreErr != nil {
		m.FailuresTotal.WithLabelValues("store").Inc()
	}
	if out.ChartErr != nil {
		m.FailuresTotal.WithLabelValues("chart").Inc()
	}
}
