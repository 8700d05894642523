// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store holds every SQL query the service runs.

Queries use ? placeholders and go through sqlx Rebind, so the same text
runs on postgres ($1) and sqlite (?). Values always travel as bind
parameters; only fixed fragments such as ORDER BY direction are spliced.

# Readings

	f := store.ForLocation(id)
	f.DeviceID = r.URL.Query().Get("device_id")
	rows, err := s.ListReadings(ctx, f, store.NewestFirst, limit, 0)
	counts, err := s.CountReadings(ctx, f)

A negative limit lists every matching row.

# Errors

ErrNotFound is returned for missing locations, alerts and latest readings.
ErrConflict is returned when a device is already registered elsewhere.
*/
package store
