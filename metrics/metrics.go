// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can create as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	readings   *prometheus.CounterVec
	alerts     prometheus.Counter
	sideErrors *prometheus.CounterVec
	requests   *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		readings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "safeweb_readings_ingested_total",
			Help: "Readings stored, by source and anomaly flag.",
		}, []string{"source", "anomaly"}),
		alerts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "safeweb_alerts_created_total",
			Help: "Anomaly alerts created.",
		}),
		sideErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "safeweb_side_effect_errors_total",
			Help: "Failed best-effort side effects after ingest, by channel.",
		}, []string{"channel"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "safeweb_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.readings,
		m.alerts,
		m.sideErrors,
		m.requests,
	)
	return m
}

func (m *Metrics) ReadingIngested(source string, anomaly bool) {
	m.readings.WithLabelValues(source, strconv.FormatBool(anomaly)).Inc()
}

func (m *Metrics) AlertCreated() {
	m.alerts.Inc()
}

func (m *Metrics) SideEffectFailed(channel string) {
	m.sideErrors.WithLabelValues(channel).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Registry exposes the registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves GET /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
