// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New()

	m.ReadingIngested("mqtt", true)
	m.ReadingIngested("mqtt", false)
	m.ReadingIngested("http", false)
	m.AlertCreated()
	m.SideEffectFailed("influx")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.readings.WithLabelValues("mqtt", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.readings.WithLabelValues("http", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.alerts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sideErrors.WithLabelValues("influx")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "GET /data/all.json", 200, 5*time.Millisecond)
	m.ReadingIngested("http", false)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "safeweb_readings_ingested_total")
	assert.Contains(t, body, "safeweb_http_request_duration_seconds_count")
	assert.Contains(t, body, "go_goroutines")
}
