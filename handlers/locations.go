// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/safeweb/middleware"
	"github.com/danielhkuo/safeweb/models"
	"github.com/danielhkuo/safeweb/report"
	"github.com/danielhkuo/safeweb/store"
)

type LocationHandler struct {
	store *store.Store

	// Cache, when set, is cleared of a location's devices on delete.
	Cache CacheInvalidator
}

func NewLocationHandler(s *store.Store) *LocationHandler {
	return &LocationHandler{store: s}
}

// pathID parses an unsigned decimal path parameter. Anything else, signs
// included, is treated as an unknown resource. 0 is a valid id that simply
// matches nothing.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 63)
	if err != nil {
		return 0, false
	}
	return int64(id), true
}

// List handles GET /
func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	locations, err := h.store.ListLocations(ctx)
	if err != nil {
		slog.Error("failed to list locations", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	summaries := make([]models.LocationSummary, 0, len(locations))
	for _, loc := range locations {
		sum := models.LocationSummary{
			ID:           loc.ID,
			LocationName: loc.LocationName,
			Description:  loc.Description,
			DeviceIDs:    []string{},
		}

		devices, err := h.store.ListDevices(ctx, loc.ID)
		if err != nil {
			slog.Error("failed to list devices", "location_id", loc.ID, "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		for _, d := range devices {
			sum.DeviceIDs = append(sum.DeviceIDs, d.DeviceID)
		}

		filter := store.ForLocation(loc.ID)
		counts, err := h.store.CountReadings(ctx, filter)
		if err != nil {
			slog.Error("failed to count readings", "location_id", loc.ID, "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		sum.ReadingCount = counts.Total

		if counts.Total > 0 {
			latest, err := h.store.ListReadings(ctx, filter, store.NewestFirst, 1, 0)
			if err != nil {
				slog.Error("failed to load last reading", "location_id", loc.ID, "error", err)
				middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
				return
			}
			if len(latest) == 1 {
				ts := latest[0].Timestamp
				sum.LastReadingAt = &ts
				sum.LastReadingAgo = humanize.Time(ts)
			}
		}

		summaries = append(summaries, sum)
	}

	middleware.JSONResponse(w, http.StatusOK, models.LocationListResponse{
		Locations:      summaries,
		TotalLocations: len(summaries),
	})
}

// Create handles POST /location/register/
func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLocationRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.LocationName = strings.TrimSpace(req.LocationName)
	req.InitialDeviceID = strings.TrimSpace(req.InitialDeviceID)
	if req.LocationName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "location_name is required")
		return
	}

	ctx := r.Context()

	// Refuse before creating anything if the device already belongs elsewhere
	if req.InitialDeviceID != "" {
		bound, err := h.store.LocationForDevice(ctx, req.InitialDeviceID)
		if err != nil {
			slog.Error("failed to look up device", "device_id", req.InitialDeviceID, "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if bound != nil {
			middleware.ErrorResponse(w, http.StatusConflict, "Device is registered to another location")
			return
		}
	}

	loc, err := h.store.CreateLocation(ctx, req.LocationName, req.Description)
	if err != nil {
		slog.Error("failed to create location", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create location")
		return
	}

	resp := models.CreateLocationResponse{Location: loc}
	if req.InitialDeviceID != "" {
		dev, _, err := h.store.GetOrCreateDevice(ctx, req.InitialDeviceID, loc.ID)
		if errors.Is(err, store.ErrConflict) {
			middleware.ErrorResponse(w, http.StatusConflict, "Device is registered to another location")
			return
		}
		if err != nil {
			slog.Error("failed to register device", "device_id", req.InitialDeviceID, "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register device")
			return
		}
		resp.Device = &dev
	}

	slog.Info("location created", "location_id", loc.ID, "name", loc.LocationName, "device_id", req.InitialDeviceID)

	middleware.JSONResponse(w, http.StatusCreated, resp)
}

// Detail handles GET /location/{id}/detail/
func (h *LocationHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Location not found")
		return
	}

	ctx := r.Context()
	loc, err := h.store.GetLocation(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Location not found")
		return
	}
	if err != nil {
		slog.Error("failed to get location", "location_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	q := r.URL.Query()
	filter := store.ForLocation(id)
	filter.DeviceID = q.Get("device_id")

	counts, err := h.store.CountReadings(ctx, filter)
	if err != nil {
		slog.Error("failed to count readings", "location_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	page, err := report.Paginate(counts.Total, q.Get("page"), report.PerPage)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Invalid page")
		return
	}

	readings, err := h.store.ListReadings(ctx, filter, store.NewestFirst, page.PerPage, page.Offset())
	if err != nil {
		slog.Error("failed to list readings", "location_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	chartRows := readings
	if page.Number != 1 || len(readings) < counts.Total {
		chartRows, err = h.store.ListReadings(ctx, filter, store.NewestFirst, report.ChartPoints, 0)
		if err != nil {
			slog.Error("failed to load chart readings", "location_id", id, "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
	}

	alerts, err := h.store.ListAlertsForLocation(ctx, id)
	if err != nil {
		slog.Error("failed to list alerts", "location_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.LocationDetailResponse{
		Location:     loc,
		DeviceID:     filter.DeviceID,
		Readings:     report.ToReadingRows(readings),
		Page:         report.ToPage(page),
		Alerts:       alerts,
		AnomalyCount: counts.Anomaly,
		NormalCount:  counts.Normal(),
		TotalCount:   counts.Total,
		Chart:        report.BuildChart(chartRows),
	})
}

// Update handles POST /location/{id}/edit/
func (h *LocationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Location not found")
		return
	}

	var req models.UpdateLocationRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	req.LocationName = strings.TrimSpace(req.LocationName)
	if req.LocationName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "location_name is required")
		return
	}

	loc, err := h.store.UpdateLocation(r.Context(), id, req.LocationName, req.Description)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Location not found")
		return
	}
	if err != nil {
		slog.Error("failed to update location", "location_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update location")
		return
	}

	slog.Info("location updated", "location_id", id)

	middleware.JSONResponse(w, http.StatusOK, loc)
}

// Delete handles POST or DELETE /location/{id}/delete/
func (h *LocationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Location not found")
		return
	}

	ctx := r.Context()

	devices, err := h.store.ListDevices(ctx, id)
	if err != nil {
		slog.Error("failed to list devices for delete", "location_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete location")
		return
	}

	err = h.store.DeleteLocation(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Location not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete location", "location_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete location")
		return
	}

	if h.Cache != nil {
		ids := make([]string, 0, len(devices))
		for _, d := range devices {
			ids = append(ids, d.DeviceID)
		}
		if err := h.Cache.Forget(ctx, ids...); err != nil {
			slog.Warn("latest cache invalidation failed", "location_id", id, "error", err)
		}
	}

	slog.Info("location deleted", "location_id", id)

	w.WriteHeader(http.StatusNoContent)
}
