// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/safeweb/middleware"
	"github.com/danielhkuo/safeweb/models"
	"github.com/danielhkuo/safeweb/store"
)

type AlertHandler struct {
	store *store.Store
}

func NewAlertHandler(s *store.Store) *AlertHandler {
	return &AlertHandler{store: s}
}

// Update handles POST /alert/{id}/update/
// Only fields present in the body are changed.
func (h *AlertHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Alert not found")
		return
	}

	var req models.UpdateAlertRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	alert, err := h.store.UpdateAlert(r.Context(), id, req)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Alert not found")
		return
	}
	if err != nil {
		slog.Error("failed to update alert", "alert_id", id, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update alert")
		return
	}

	slog.Info("alert updated", "alert_id", id, "resolved", alert.Resolved)

	middleware.JSONResponse(w, http.StatusOK, alert)
}
