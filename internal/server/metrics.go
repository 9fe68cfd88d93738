package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Validation outcomes recorded in eido_validations_total.
const (
	resultValid   = "valid"
	resultInvalid = "invalid"
	resultError   = "error"
)

type metrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	inflight    *prometheus.GaugeVec
	validations *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eido_http_requests_total",
				Help: "Number of the http requests received since the server started",
			},
			[]string{"handler", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "eido_http_requests_duration_seconds",
				Help:    "Duration in seconds to serve http requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"handler", "code"},
		),
		inflight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "eido_http_inflight_requests",
				Help: "Number of the inflight http requests",
			},
			[]string{"handler"},
		),
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "eido_validations_total",
				Help: "Number of validations run, by target and result",
			},
			[]string{"target", "result"},
		),
	}
	reg.MustRegister(m.requests, m.duration, m.inflight, m.validations)
	return m
}

// instrument wraps next with request counting, latency and in-flight
// tracking under the given handler name.
func (m *metrics) instrument(name string, next http.Handler) http.Handler {
	prepopulateLabels := prometheus.Labels{"handler": name, "code": "200"}
	m.requests.With(prepopulateLabels)
	m.duration.With(prepopulateLabels)

	labels := prometheus.Labels{"handler": name}
	return promhttp.InstrumentHandlerCounter(
		m.requests.MustCurryWith(labels),
		promhttp.InstrumentHandlerDuration(
			m.duration.MustCurryWith(labels),
			promhttp.InstrumentHandlerInFlight(
				m.inflight.With(labels),
				next,
			),
		),
	)
}

func (m *metrics) observeValidation(target, result string) {
	m.validations.WithLabelValues(target, result).Inc()
}
