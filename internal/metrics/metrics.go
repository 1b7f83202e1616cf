package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several servers can live in one process.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	joins           *prometheus.CounterVec
	answers         *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	broadcasts      *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		joins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_joins_total",
				Help: "Join attempts by outcome",
			},
			[]string{"outcome"},
		),
		answers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_answers_total",
				Help: "Answer submissions by outcome",
			},
			[]string{"outcome"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_transitions_total",
				Help: "Host commands by command and outcome",
			},
			[]string{"command", "outcome"},
		),
		broadcasts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_broadcasts_total",
				Help: "Snapshot broadcasts by outcome",
			},
			[]string{"outcome"},
		),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.joins,
		m.answers,
		m.transitions,
		m.broadcasts,
	)
	return m
}

func (m *Metrics) ObserveJoin(outcome string) {
	m.joins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveAnswer(outcome string) {
	m.answers.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveTransition(command, outcome string) {
	m.transitions.WithLabelValues(command, outcome).Inc()
}

func (m *Metrics) ObserveBroadcast(outcome string) {
	m.broadcasts.WithLabelValues(outcome).Inc()
}

// Middleware records request counts and latency by route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
