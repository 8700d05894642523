// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/safeweb/middleware"
	"github.com/danielhkuo/safeweb/models"
	"github.com/danielhkuo/safeweb/report"
	"github.com/danielhkuo/safeweb/store"
)

// ReadingsHandler serves the dashboard data feeds and CSV export. All of them
// list newest first and honor device_id, limit and all=1.
type ReadingsHandler struct {
	store *store.Store
}

func NewReadingsHandler(s *store.Store) *ReadingsHandler {
	return &ReadingsHandler{store: s}
}

// LocationData handles GET /location/{id}/data.json
func (h *ReadingsHandler) LocationData(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Location not found")
		return
	}

	q := r.URL.Query()
	filter := store.ForLocation(id)
	filter.DeviceID = q.Get("device_id")
	ctx := r.Context()

	readings, err := h.store.ListReadings(ctx, filter, store.NewestFirst, report.ParseLimit(q), 0)
	if err != nil {
		slog.Error("failed to list readings", "location_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	counts, err := h.store.CountReadings(ctx, filter)
	if err != nil {
		slog.Error("failed to count readings", "location_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.LocationDataResponse{
		LocationID:        id,
		Count:             len(readings),
		Data:              report.ToReadingRows(readings),
		TotalAnomalyCount: counts.Anomaly,
		TotalNormalCount:  counts.Normal(),
		TotalCount:        counts.Total,
	})
}

// ExportCSV handles GET /location/{id}/export.csv
func (h *ReadingsHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Location not found")
		return
	}

	q := r.URL.Query()
	filter := store.ForLocation(id)
	filter.DeviceID = q.Get("device_id")

	readings, err := h.store.ListReadings(r.Context(), filter, store.NewestFirst, report.ParseLimit(q), 0)
	if err != nil {
		slog.Error("failed to list readings for export", "location_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.CSVFilename(id)))
	w.WriteHeader(http.StatusOK)

	// headers are already sent, so a failure here can only be logged
	if err := report.WriteCSV(w, readings); err != nil {
		slog.Error("failed to write CSV export", "location_id", id, "error", err)
	}
}

// AllData handles GET /data/all.json. The anomaly totals cover every stored
// reading and ignore device_id.
func (h *ReadingsHandler) AllData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.ReadingFilter{DeviceID: q.Get("device_id")}
	ctx := r.Context()

	readings, err := h.store.ListReadings(ctx, filter, store.NewestFirst, report.ParseLimit(q), 0)
	if err != nil {
		slog.Error("failed to list readings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	counts, err := h.store.CountReadings(ctx, store.ReadingFilter{})
	if err != nil {
		slog.Error("failed to count readings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.AllDataResponse{
		Count:             len(readings),
		Data:              report.ToGlobalRows(readings),
		TotalAnomalyCount: counts.Anomaly,
		TotalNormalCount:  counts.Normal(),
	})
}
