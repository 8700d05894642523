// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the HTTP routes for the safeweb service.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(router.Services{Store: s, Ingest: svc}, cfg)

Optional components in Services (fetcher, latest cache, live hub, metrics)
may be left nil. /ws/live and /metrics are only registered when their
component is present.

# Endpoints

Health:

	GET /health
	GET /readyz

Location views:

	GET  /                        - Location list
	POST /location/register/      - Create location, optional initial device
	GET  /location/{id}/detail/   - Paged readings, alerts, counts, chart
	POST /location/{id}/edit/     - Rename or describe
	POST /location/{id}/delete/   - Delete with readings and alerts (DELETE also accepted)
	POST /alert/{id}/update/      - Edit or resolve an alert
	GET  /fetcher/status/         - Background fetcher state

Data feeds:

	GET /location/{id}/data.json
	GET /location/{id}/export.csv
	GET /data/all.json

API v1:

	GET  /api/v1/latest_data
	GET  /api/v1/historical_data
	GET  /api/v1/stats
	POST /api/v1/readings

Devices and live data:

	POST /devices
	GET  /ws/live
	GET  /metrics
*/
package router
