// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the safeweb sensor server.

safeweb collects temperature and humidity readings from devices grouped by
location, flags readings outside configured thresholds, raises alerts for
them, and serves dashboards, JSON feeds and CSV exports over HTTP.

# Starting the Server

With no configuration the server uses a local sqlite file:

	go run .

Or with Postgres and flags:

	go run . -p 8000 -t postgres -d "postgres://..."

A .env file in the working directory is loaded when present.

# Configuration

Core settings:

  - PORT (-p): Server port (default: 8000)
  - DATABASE_TYPE (-t): sqlite or postgres
  - DATABASE_URL (-d): connection string
  - TEMP_MIN, TEMP_MAX, HUMIDITY_MIN, HUMIDITY_MAX: anomaly thresholds
  - INGEST_KEY_SALT: require X-Device-Key on POST /api/v1/readings

Readings arrive over HTTP, from an MQTT broker (MQTT_BROKER) or by polling
an HTTP source (FETCH_URL). Optional side channels are enabled by setting
INFLUXDB_URL, REDIS_ADDR or SMTP_HOST with ALERT_EMAIL_TO. Alert email also
needs a sender: ALERT_EMAIL_FROM, or SMTP_USERNAME when that is an address.

# Architecture

  - handlers: HTTP request handlers (locations, feeds, api, alerts, devices)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, metrics, JSON helpers
  - store: Parameterized queries over sqlx
  - report: Limits, pagination, charts, CSV and window statistics
  - ingest: Validation, anomaly flagging and fan-out for new readings
  - fetcher: MQTT and HTTP polling sources
  - anomaly, mirror, cache, notify, live, metrics: ingest side channels
  - models, db, auth, cliparse, logging: shared types and setup

See package documentation for each component.
*/
package main
