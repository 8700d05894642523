// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/safeweb/models"
)

func (s *Store) CreateLocation(ctx context.Context, name, description string) (models.Location, error) {
	loc := models.Location{
		LocationName: name,
		Description:  description,
		CreatedAt:    now(),
	}

	q := `
		INSERT INTO sensor_location (location_name, description, created_at)
		VALUES (?, ?, ?)
		RETURNING id
	`
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(q), loc.LocationName, loc.Description, loc.CreatedAt).Scan(&loc.ID)
	if err != nil {
		return models.Location{}, fmt.Errorf("failed to insert location: %w", err)
	}
	return loc, nil
}

func (s *Store) GetLocation(ctx context.Context, id int64) (models.Location, error) {
	var loc models.Location
	err := s.db.GetContext(ctx, &loc, s.db.Rebind(`
		SELECT id, location_name, description, created_at
		FROM sensor_location
		WHERE id = ?
	`), id)
	if err != nil {
		return models.Location{}, notFound(err)
	}
	return loc, nil
}

func (s *Store) ListLocations(ctx context.Context) ([]models.Location, error) {
	locations := []models.Location{}
	err := s.db.SelectContext(ctx, &locations, `
		SELECT id, location_name, description, created_at
		FROM sensor_location
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}

// UpdateLocation renames a location. Returns ErrNotFound if it does not exist.
func (s *Store) UpdateLocation(ctx context.Context, id int64, name, description string) (models.Location, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE sensor_location
		SET location_name = ?, description = ?
		WHERE id = ?
	`), name, description, id)
	if err != nil {
		return models.Location{}, fmt.Errorf("failed to update location: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Location{}, ErrNotFound
	}
	return s.GetLocation(ctx, id)
}

// DeleteLocation removes a location together with its devices, readings and
// their alerts.
func (s *Store) DeleteLocation(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		stmts := []string{
			`DELETE FROM anomaly_alert WHERE data_point_id IN (SELECT id FROM sensor_data WHERE location_id = ?)`,
			`DELETE FROM sensor_data WHERE location_id = ?`,
			`DELETE FROM sensor_device WHERE location_id = ?`,
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, tx.Rebind(stmt), id); err != nil {
				return fmt.Errorf("failed to delete location data: %w", err)
			}
		}

		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM sensor_location WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("failed to delete location: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Store) ListDevices(ctx context.Context, locationID int64) ([]models.Device, error) {
	devices := []models.Device{}
	err := s.db.SelectContext(ctx, &devices, s.db.Rebind(`
		SELECT id, device_id, location_id, created_at
		FROM sensor_device
		WHERE location_id = ?
		ORDER BY device_id
	`), locationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	return devices, nil
}

// GetOrCreateDevice registers deviceID at locationID. An existing
// registration at the same location is returned as-is; one at a different
// location yields ErrConflict.
func (s *Store) GetOrCreateDevice(ctx context.Context, deviceID string, locationID int64) (models.Device, bool, error) {
	var dev models.Device
	created := false

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &dev, tx.Rebind(`
			SELECT id, device_id, location_id, created_at
			FROM sensor_device
			WHERE device_id = ?
		`), deviceID)
		if err == nil {
			if dev.LocationID != locationID {
				return ErrConflict
			}
			return nil
		}
		if notFound(err) != ErrNotFound {
			return fmt.Errorf("failed to query device: %w", err)
		}

		dev = models.Device{DeviceID: deviceID, LocationID: locationID, CreatedAt: now()}
		err = tx.QueryRowxContext(ctx, tx.Rebind(`
			INSERT INTO sensor_device (device_id, location_id, created_at)
			VALUES (?, ?, ?)
			RETURNING id
		`), dev.DeviceID, dev.LocationID, dev.CreatedAt).Scan(&dev.ID)
		if err != nil {
			return fmt.Errorf("failed to insert device: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return models.Device{}, false, err
	}
	return dev, created, nil
}

// LocationForDevice returns the location a device is registered to, or nil
// for an unregistered device.
func (s *Store) LocationForDevice(ctx context.Context, deviceID string) (*int64, error) {
	var locationID int64
	err := s.db.GetContext(ctx, &locationID, s.db.Rebind(`
		SELECT location_id FROM sensor_device WHERE device_id = ?
	`), deviceID)
	if err != nil {
		if notFound(err) == ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve device location: %w", err)
	}
	return &locationID, nil
}
