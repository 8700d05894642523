// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/safeweb/auth"
	"github.com/danielhkuo/safeweb/cliparse"
	"github.com/danielhkuo/safeweb/middleware"
	"github.com/danielhkuo/safeweb/models"
	"github.com/danielhkuo/safeweb/store"
)

type DeviceHandler struct {
	store *store.Store
	cfg   cliparse.Config
}

func NewDeviceHandler(s *store.Store, cfg cliparse.Config) *DeviceHandler {
	return &DeviceHandler{store: s, cfg: cfg}
}

// Register handles POST /devices
// Binds a device to a location (or finds the existing binding) and returns
// its ingest key when keys are enforced.
func (h *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterDeviceRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.DeviceID = strings.TrimSpace(req.DeviceID)
	if req.DeviceID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "device_id is required")
		return
	}
	if req.LocationID < 1 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "location_id is required")
		return
	}

	ctx := r.Context()
	if _, err := h.store.GetLocation(ctx, req.LocationID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Location not found")
			return
		}
		slog.Error("failed to get location", "location_id", req.LocationID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	dev, created, err := h.store.GetOrCreateDevice(ctx, req.DeviceID, req.LocationID)
	if errors.Is(err, store.ErrConflict) {
		middleware.ErrorResponse(w, http.StatusConflict, "Device is registered to another location")
		return
	}
	if err != nil {
		slog.Error("failed to register device", "device_id", req.DeviceID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register device")
		return
	}

	resp := models.RegisterDeviceResponse{Device: dev}
	if h.cfg.IngestKeySalt != "" {
		resp.DeviceKey = auth.GenerateDeviceKey(dev.DeviceID, h.cfg.IngestKeySalt)
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		slog.Info("device registered", "device_id", dev.DeviceID, "location_id", dev.LocationID)
	}
	middleware.JSONResponse(w, status, resp)
}
