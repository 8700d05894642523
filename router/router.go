// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/safeweb/cliparse"
	"github.com/danielhkuo/safeweb/handlers"
	"github.com/danielhkuo/safeweb/live"
	"github.com/danielhkuo/safeweb/metrics"
	"github.com/danielhkuo/safeweb/middleware"
	"github.com/danielhkuo/safeweb/store"
)

// Services are the long-lived components behind the routes. Everything but
// Store and Ingest may be nil, and must be a true nil rather than a typed nil
// pointer when the component is disabled.
type Services struct {
	Store   *store.Store
	Ingest  handlers.Recorder
	Fetcher handlers.RunState
	Cache   handlers.ReadingCache
	Live    *live.Hub
	Metrics *metrics.Metrics
}

func NewRouter(svc Services, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	locationHandler := handlers.NewLocationHandler(svc.Store)
	locationHandler.Cache = svc.Cache
	readingsHandler := handlers.NewReadingsHandler(svc.Store)
	alertHandler := handlers.NewAlertHandler(svc.Store)
	deviceHandler := handlers.NewDeviceHandler(svc.Store, cfg)
	statusHandler := handlers.NewStatusHandler(svc.Fetcher, svc.Store)
	apiHandler := handlers.NewAPIHandler(svc.Store, cfg, svc.Ingest)
	apiHandler.Cache = svc.Cache

	// Health checks
	mux.HandleFunc("GET /health", statusHandler.Health)
	mux.HandleFunc("GET /readyz", statusHandler.Ready)

	// Location views
	mux.HandleFunc("GET /{$}", middleware.WithLogging(locationHandler.List))
	mux.HandleFunc("POST /location/register/{$}", middleware.WithLogging(locationHandler.Create))
	mux.HandleFunc("GET /location/{id}/detail/{$}", middleware.WithLogging(locationHandler.Detail))
	mux.HandleFunc("POST /location/{id}/edit/{$}", middleware.WithLogging(locationHandler.Update))
	mux.HandleFunc("POST /location/{id}/delete/{$}", middleware.WithLogging(locationHandler.Delete))
	mux.HandleFunc("DELETE /location/{id}/delete/{$}", middleware.WithLogging(locationHandler.Delete))
	mux.HandleFunc("POST /alert/{id}/update/{$}", middleware.WithLogging(alertHandler.Update))
	mux.HandleFunc("GET /fetcher/status/{$}", middleware.WithLogging(statusHandler.Fetcher))

	// Data feeds and export
	mux.HandleFunc("GET /location/{id}/data.json", middleware.WithLogging(readingsHandler.LocationData))
	mux.HandleFunc("GET /location/{id}/export.csv", middleware.WithLogging(readingsHandler.ExportCSV))
	mux.HandleFunc("GET /data/all.json", middleware.WithLogging(readingsHandler.AllData))

	// API v1
	mux.HandleFunc("GET /api/v1/latest_data", middleware.WithLogging(apiHandler.Latest))
	mux.HandleFunc("GET /api/v1/historical_data", middleware.WithLogging(apiHandler.Historical))
	mux.HandleFunc("GET /api/v1/stats", middleware.WithLogging(apiHandler.Stats))
	mux.HandleFunc("POST /api/v1/readings", middleware.WithLogging(apiHandler.Ingest))

	// Device management
	mux.HandleFunc("POST /devices", middleware.WithLogging(deviceHandler.Register))

	if svc.Live != nil {
		mux.HandleFunc("GET /ws/live", middleware.WithLogging(svc.Live.ServeWS))
	}
	if svc.Metrics != nil {
		mux.Handle("GET /metrics", svc.Metrics.Handler())
	}

	return mux
}
