// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/safeweb/middleware"
	"github.com/danielhkuo/safeweb/models"
)

// RunState reports whether a background fetcher is active.
type RunState interface {
	Running() bool
}

// Pinger checks a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type StatusHandler struct {
	fetcher RunState
	db      Pinger
}

// NewStatusHandler accepts a nil fetcher when no ingestion source is
// configured.
func NewStatusHandler(fetcher RunState, db Pinger) *StatusHandler {
	return &StatusHandler{fetcher: fetcher, db: db}
}

// Fetcher handles GET /fetcher/status/
func (h *StatusHandler) Fetcher(w http.ResponseWriter, r *http.Request) {
	running := h.fetcher != nil && h.fetcher.Running()
	middleware.JSONResponse(w, http.StatusOK, models.FetcherStatusResponse{FetcherRunning: running})
}

// Health handles GET /health
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// Ready handles GET /readyz
func (h *StatusHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		slog.Warn("readiness check failed", "error", err)
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
