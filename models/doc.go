// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

Rows as stored in the database:

  - Location: a named place that owns devices and readings
  - Device: a registered device id bound to a location
  - Reading: one temperature/humidity sample, optionally anomalous
  - Alert: an anomaly alert raised for a reading

# Request Types

  - CreateLocationRequest: location_name, description, initial_device_id
  - UpdateLocationRequest: location_name, description
  - UpdateAlertRequest: alert_time, message, resolved (all optional)
  - RegisterDeviceRequest: device_id, location_id
  - IngestReadingRequest: device_id, temperature, humidity, timestamp

IngestReadingRequest.Timestamp is a ReadingTime, which accepts epoch seconds
(integer or fractional) or any ISO-8601 string.

# Response Types

View models for the dashboard and exports:

  - LocationListResponse, LocationDetailResponse
  - LocationDataResponse, AllDataResponse (rows as ReadingRow)
  - APIResponse envelope with LatestReading / HistoricalPoint payloads
  - StatsResponse with WindowStats per metric
  - ErrorResponse: error, message
*/
package models
