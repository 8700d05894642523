// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/danielhkuo/safeweb/models"
)

const alertColumns = `
	a.id, a.data_point_id, a.alert_time, a.message, a.resolved,
	d.raw_device_id, d.timestamp
`

func (s *Store) CreateAlert(ctx context.Context, dataPointID int64, alertTime time.Time, message string) (int64, error) {
	var id int64
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(`
		INSERT INTO anomaly_alert (data_point_id, alert_time, message, resolved)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`), dataPointID, alertTime.UTC(), message, false).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert alert: %w", err)
	}
	return id, nil
}

func (s *Store) GetAlert(ctx context.Context, id int64) (models.Alert, error) {
	var alert models.Alert
	err := s.db.GetContext(ctx, &alert, s.db.Rebind(`
		SELECT `+alertColumns+`
		FROM anomaly_alert a
		JOIN sensor_data d ON d.id = a.data_point_id
		WHERE a.id = ?
	`), id)
	if err != nil {
		return models.Alert{}, notFound(err)
	}
	return alert, nil
}

// ListAlertsForLocation returns alerts whose reading belongs to the location,
// newest alert first.
func (s *Store) ListAlertsForLocation(ctx context.Context, locationID int64) ([]models.Alert, error) {
	alerts := []models.Alert{}
	err := s.db.SelectContext(ctx, &alerts, s.db.Rebind(`
		SELECT `+alertColumns+`
		FROM anomaly_alert a
		JOIN sensor_data d ON d.id = a.data_point_id
		WHERE d.location_id = ?
		ORDER BY a.alert_time DESC, a.id DESC
	`), locationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

// UpdateAlert applies the non-nil fields of req.
func (s *Store) UpdateAlert(ctx context.Context, id int64, req models.UpdateAlertRequest) (models.Alert, error) {
	alert, err := s.GetAlert(ctx, id)
	if err != nil {
		return models.Alert{}, err
	}

	if req.AlertTime != nil {
		alert.AlertTime = req.AlertTime.UTC()
	}
	if req.Message != nil {
		alert.Message = *req.Message
	}
	if req.Resolved != nil {
		alert.Resolved = *req.Resolved
	}

	_, err = s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE anomaly_alert
		SET alert_time = ?, message = ?, resolved = ?
		WHERE id = ?
	`), alert.AlertTime, alert.Message, alert.Resolved, id)
	if err != nil {
		return models.Alert{}, fmt.Errorf("failed to update alert: %w", err)
	}
	return alert, nil
}
