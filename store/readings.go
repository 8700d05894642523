// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/safeweb/models"
)

// Order selects the timestamp ordering of a reading listing.
type Order int

const (
	NewestFirst Order = iota
	OldestFirst
)

// ReadingFilter narrows a reading query. Zero fields are not applied.
type ReadingFilter struct {
	LocationID *int64
	DeviceID   string
	Since      *time.Time
}

// ForLocation returns a filter scoped to one location.
func ForLocation(id int64) ReadingFilter {
	return ReadingFilter{LocationID: &id}
}

func (f ReadingFilter) where() (string, []any) {
	var clauses []string
	var args []any

	if f.LocationID != nil {
		clauses = append(clauses, "d.location_id = ?")
		args = append(args, *f.LocationID)
	}
	if f.DeviceID != "" {
		clauses = append(clauses, "d.raw_device_id = ?")
		args = append(args, f.DeviceID)
	}
	if f.Since != nil {
		clauses = append(clauses, "d.timestamp >= ?")
		args = append(args, f.Since.UTC())
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

// Counts holds anomaly totals over a filtered reading set.
type Counts struct {
	Total   int `db:"total"`
	Anomaly int `db:"anomaly"`
}

// Normal is the number of readings not flagged as anomalous.
func (c Counts) Normal() int {
	return c.Total - c.Anomaly
}

const readingColumns = `
	d.id, d.timestamp, d.temperature, d.humidity, d.raw_device_id,
	d.is_anomaly, d.location_id, l.location_name
`

// ListReadings returns readings matching f. A negative limit returns every
// matching row and ignores offset.
func (s *Store) ListReadings(ctx context.Context, f ReadingFilter, order Order, limit, offset int) ([]models.Reading, error) {
	where, args := f.where()

	dir := "DESC"
	if order == OldestFirst {
		dir = "ASC"
	}

	q := `SELECT ` + readingColumns + `
		FROM sensor_data d
		LEFT JOIN sensor_location l ON l.id = d.location_id
		` + where + `
		ORDER BY d.timestamp ` + dir + `, d.id ` + dir

	if limit >= 0 {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}

	readings := []models.Reading{}
	if err := s.db.SelectContext(ctx, &readings, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("failed to list readings: %w", err)
	}
	return readings, nil
}

// CountReadings returns total and anomaly counts for f in a single query.
func (s *Store) CountReadings(ctx context.Context, f ReadingFilter) (Counts, error) {
	where, args := f.where()

	q := `SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN d.is_anomaly THEN 1 ELSE 0 END), 0) AS anomaly
		FROM sensor_data d
		` + where

	var c Counts
	if err := s.db.GetContext(ctx, &c, s.db.Rebind(q), args...); err != nil {
		return Counts{}, fmt.Errorf("failed to count readings: %w", err)
	}
	return c, nil
}

// LatestReading returns the newest reading, optionally for a single device.
func (s *Store) LatestReading(ctx context.Context, deviceID string) (models.Reading, error) {
	readings, err := s.ListReadings(ctx, ReadingFilter{DeviceID: deviceID}, NewestFirst, 1, 0)
	if err != nil {
		return models.Reading{}, err
	}
	if len(readings) == 0 {
		return models.Reading{}, ErrNotFound
	}
	return readings[0], nil
}

// HistoricalReadings returns readings at or after since in ascending order.
func (s *Store) HistoricalReadings(ctx context.Context, deviceID string, since time.Time, limit int) ([]models.Reading, error) {
	f := ReadingFilter{DeviceID: deviceID, Since: &since}
	return s.ListReadings(ctx, f, OldestFirst, limit, 0)
}

// InsertReading stores r and sets r.ID.
func (s *Store) InsertReading(ctx context.Context, r *models.Reading) error {
	q := `
		INSERT INTO sensor_data (timestamp, temperature, humidity, raw_device_id, is_anomaly, location_id)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(q),
		r.Timestamp.UTC(), r.Temperature, r.Humidity, r.DeviceID, r.IsAnomaly, r.LocationID,
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("failed to insert reading: %w", err)
	}
	return nil
}
