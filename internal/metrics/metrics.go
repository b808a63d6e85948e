package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	registry *prometheus.Registry

	FetchTotal    *prometheus.CounterVec   // labels: source, kind, outcome
	FetchDuration *prometheus.HistogramVec // labels: source, kind
	HTTPRetries   prometheus.Counter

	IndicatorComputeDur prometheus.Histogram
	IndicatorFailures   *prometheus.CounterVec // labels: indicator

	RequestsTotal   *prometheus.CounterVec // labels: route, status
	RequestDuration *prometheus.HistogramVec

	DigestRuns    *prometheus.CounterVec // labels: outcome
	TelegramSent  *prometheus.CounterVec // labels: outcome
	CommandsTotal *prometheus.CounterVec // labels: command
}

// New builds the metrics on a private registry so tests can create many.
func New() *Metrics {
	m := &Metrics{
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tickerlens_fetch_total",
			Help: "Provider fetches by source, kind and outcome",
		}, []string{"source", "kind", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tickerlens_fetch_duration_seconds",
			Help:    "Provider fetch latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"source", "kind"}),
		HTTPRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tickerlens_http_retries_total",
			Help: "Retried outbound HTTP attempts",
		}),
		IndicatorComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tickerlens_indicator_compute_duration_seconds",
			Help:    "Time to compute the full indicator set for one series",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		IndicatorFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tickerlens_indicator_failures_total",
			Help: "Indicator computations that failed and degraded to undefined",
		}, []string{"indicator"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tickerlens_http_requests_total",
			Help: "HTTP API requests by route and status",
		}, []string{"route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tickerlens_http_request_duration_seconds",
			Help:    "HTTP API latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		DigestRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tickerlens_digest_runs_total",
			Help: "Scheduled watchlist digests by outcome",
		}, []string{"outcome"}),
		TelegramSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tickerlens_telegram_messages_total",
			Help: "Telegram messages sent by outcome",
		}, []string{"outcome"}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tickerlens_commands_total",
			Help: "Chat commands handled",
		}, []string{"command"}),
	}

	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.FetchTotal,
		m.FetchDuration,
		m.HTTPRetries,
		m.IndicatorComputeDur,
		m.IndicatorFailures,
		m.RequestsTotal,
		m.RequestDuration,
		m.DigestRuns,
		m.TelegramSent,
		m.CommandsTotal,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler returns the /metrics exposition handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// The helpers below accept a nil receiver so components can run without metrics.

// ObserveFetch records one provider call.
func (m *Metrics) ObserveFetch(source, kind string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.FetchTotal.WithLabelValues(source, kind, outcome(err)).Inc()
	m.FetchDuration.WithLabelValues(source, kind).Observe(time.Since(start).Seconds())
}

// IncRetry counts one retried outbound HTTP attempt.
func (m *Metrics) IncRetry() {
	if m == nil {
		return
	}
	m.HTTPRetries.Inc()
}

// ObserveCompute records the duration of one indicator set computation.
func (m *Metrics) ObserveCompute(start time.Time) {
	if m == nil {
		return
	}
	m.IndicatorComputeDur.Observe(time.Since(start).Seconds())
}

// IncIndicatorFailure counts an indicator that degraded to undefined.
func (m *Metrics) IncIndicatorFailure(indicator string) {
	if m == nil {
		return
	}
	m.IndicatorFailures.WithLabelValues(indicator).Inc()
}

// ObserveRequest records one HTTP API request.
func (m *Metrics) ObserveRequest(route string, status int, start time.Time) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
}

// IncDigest counts one scheduled digest run.
func (m *Metrics) IncDigest(err error) {
	if m == nil {
		return
	}
	m.DigestRuns.WithLabelValues(outcome(err)).Inc()
}

// IncTelegram counts one outbound Telegram message.
func (m *Metrics) IncTelegram(err error) {
	if m == nil {
		return
	}
	m.TelegramSent.WithLabelValues(outcome(err)).Inc()
}

// IncCommand counts one handled chat command.
func (m *Metrics) IncCommand(command string) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(command).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
