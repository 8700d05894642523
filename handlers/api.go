// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sosodev/duration"

	"github.com/danielhkuo/safeweb/auth"
	"github.com/danielhkuo/safeweb/cliparse"
	"github.com/danielhkuo/safeweb/ingest"
	"github.com/danielhkuo/safeweb/middleware"
	"github.com/danielhkuo/safeweb/models"
	"github.com/danielhkuo/safeweb/report"
	"github.com/danielhkuo/safeweb/store"
)

const (
	DefaultWindow   = 24 * time.Hour
	HistoricalLimit = 500
)

// Recorder stores an ingested reading.
type Recorder interface {
	Record(ctx context.Context, source string, req models.IngestReadingRequest) (ingest.Result, error)
}

// LatestCache serves the newest reading per device without a query.
type LatestCache interface {
	Get(ctx context.Context, deviceID string) (models.LatestReading, bool, error)
}

// CacheInvalidator drops cached readings for devices whose data is gone.
type CacheInvalidator interface {
	Forget(ctx context.Context, deviceIDs ...string) error
}

// ReadingCache is the full latest-reading cache used by the router.
type ReadingCache interface {
	LatestCache
	CacheInvalidator
}

// APIHandler serves /api/v1. Every response uses the status envelope.
type APIHandler struct {
	store    *store.Store
	cfg      cliparse.Config
	recorder Recorder
	now      func() time.Time

	// Cache is consulted before the database for latest_data when set.
	Cache LatestCache
}

func NewAPIHandler(s *store.Store, cfg cliparse.Config, rec Recorder) *APIHandler {
	return &APIHandler{store: s, cfg: cfg, recorder: rec, now: time.Now}
}

// parseWindow reads an ISO-8601 duration such as PT6H or P7D.
func parseWindow(raw string) (time.Duration, error) {
	if raw == "" {
		return DefaultWindow, nil
	}
	d, err := duration.Parse(raw)
	if err != nil {
		return 0, err
	}
	window := d.ToTimeDuration()
	if window <= 0 {
		return 0, fmt.Errorf("window must be positive: %s", raw)
	}
	return window, nil
}

// Latest handles GET /api/v1/latest_data
func (h *APIHandler) Latest(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("device_id")
	ctx := r.Context()

	if h.Cache != nil {
		lr, ok, err := h.Cache.Get(ctx, deviceID)
		if err != nil {
			slog.Warn("latest cache read failed", "device_id", deviceID, "error", err)
		} else if ok {
			middleware.APISuccess(w, http.StatusOK, lr)
			return
		}
	}

	reading, err := h.store.LatestReading(ctx, deviceID)
	if errors.Is(err, store.ErrNotFound) {
		middleware.APIError(w, http.StatusNotFound, "No data found")
		return
	}
	if err != nil {
		slog.Error("failed to get latest reading", "device_id", deviceID, "error", err)
		middleware.APIError(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.APISuccess(w, http.StatusOK, report.ToLatest(reading))
}

// Historical handles GET /api/v1/historical_data
func (h *APIHandler) Historical(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	deviceID := q.Get("device_id")

	window, err := parseWindow(q.Get("window"))
	if err != nil {
		middleware.APIError(w, http.StatusBadRequest, "Invalid window")
		return
	}
	limit := report.ClampLimit(q.Get("limit"), HistoricalLimit)

	readings, err := h.store.HistoricalReadings(r.Context(), deviceID, h.now().Add(-window), limit)
	if err != nil {
		slog.Error("failed to get historical readings", "device_id", deviceID, "error", err)
		middleware.APIError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if len(readings) == 0 {
		middleware.APIError(w, http.StatusNotFound, "No historical data found")
		return
	}

	middleware.APISuccess(w, http.StatusOK, report.ToHistorical(readings))
}

// Stats handles GET /api/v1/stats
func (h *APIHandler) Stats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	deviceID := q.Get("device_id")

	window, err := parseWindow(q.Get("window"))
	if err != nil {
		middleware.APIError(w, http.StatusBadRequest, "Invalid window")
		return
	}
	since := h.now().Add(-window).UTC()

	ctx := r.Context()
	filter := store.ReadingFilter{DeviceID: deviceID, Since: &since}

	temp, err := h.store.WindowStats(ctx, filter, store.Temperature)
	if err != nil {
		slog.Error("failed to compute stats", "device_id", deviceID, "error", err)
		middleware.APIError(w, http.StatusInternalServerError, "Database error")
		return
	}
	hum, err := h.store.WindowStats(ctx, filter, store.Humidity)
	if err != nil {
		slog.Error("failed to compute stats", "device_id", deviceID, "error", err)
		middleware.APIError(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.APISuccess(w, http.StatusOK, models.StatsResponse{
		DeviceID:    deviceID,
		Since:       since,
		Temperature: temp,
		Humidity:    hum,
	})
}

// Ingest handles POST /api/v1/readings
func (h *APIHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req models.IngestReadingRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.APIError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if h.cfg.IngestKeySalt != "" {
		key := r.Header.Get(auth.DeviceKeyHeader)
		if err := auth.ValidateDeviceKey(strings.TrimSpace(req.DeviceID), key, h.cfg.IngestKeySalt); err != nil {
			middleware.APIError(w, http.StatusUnauthorized, "Invalid device key")
			return
		}
	}

	res, err := h.recorder.Record(r.Context(), ingest.SourceHTTP, req)
	if errors.Is(err, ingest.ErrInvalidReading) {
		middleware.APIError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to ingest reading", "device_id", req.DeviceID, "error", err)
		middleware.APIError(w, http.StatusInternalServerError, "Failed to store reading")
		return
	}

	middleware.APISuccess(w, http.StatusCreated, models.IngestReadingResponse{
		ID:         res.Reading.ID,
		IsAnomaly:  res.Reading.IsAnomaly,
		LocationID: res.Reading.LocationID,
		AlertID:    res.AlertID,
	})
}
