// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP handlers for the dashboard views, data
feeds and the /api/v1 endpoints.

# Handler Types

Each handler is a struct holding a *store.Store and whatever else it needs:

  - LocationHandler: location list, register, detail, edit, delete
  - ReadingsHandler: data.json feeds and CSV export
  - APIHandler: latest, historical, stats and reading ingest
  - AlertHandler: alert updates
  - DeviceHandler: device registration
  - StatusHandler: fetcher status, health and readiness

Views return the JSON a page would render rather than HTML.

# Listing Rules

The data feeds share their query parameters:

	device_id   only readings from this device
	limit       row cap, default 1000; invalid or negative means 1000
	all=1       no cap at all

The location detail view pages ten readings at a time. page may be a number
or "last"; anything out of range is a 404. Its chart always shows the 30
newest readings in ascending order regardless of the page.

# Errors

View and feed errors use the {"error", "message"} body from
middleware.ErrorResponse. The /api/v1 endpoints use the status envelope:

	{"status": "success", "data": {...}}
	{"status": "error", "message": "No data found"}
*/
package handlers
