// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database types
const (
	TypePostgres = "postgres"
	TypeSQLite   = "sqlite"
)

// Open opens a connection pool for the given database type and verifies it
// with a ping.
func Open(dbType, url string) (*sql.DB, error) {
	driver, err := DriverName(dbType)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dbType, err)
	}

	if dbType == TypeSQLite {
		// sqlite allows a single writer; serialize through one connection
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dbType, err)
	}

	return conn, nil
}

// DriverName maps a database type to its database/sql driver name.
func DriverName(dbType string) (string, error) {
	switch dbType {
	case TypePostgres:
		return "postgres", nil
	case TypeSQLite:
		return "sqlite", nil
	}
	return "", fmt.Errorf("unsupported database type %q", dbType)
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dbType string) error {
	var ddl string
	switch dbType {
	case TypePostgres:
		ddl = postgresSchema
	case TypeSQLite:
		ddl = sqliteSchema
	default:
		return fmt.Errorf("unsupported database type %q", dbType)
	}

	_, err := db.Exec(ddl)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const postgresSchema = `
-- Locations
CREATE TABLE IF NOT EXISTS sensor_location (
    id BIGSERIAL PRIMARY KEY,
    location_name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Devices
CREATE TABLE IF NOT EXISTS sensor_device (
    id BIGSERIAL PRIMARY KEY,
    device_id TEXT NOT NULL UNIQUE,
    location_id BIGINT NOT NULL REFERENCES sensor_location(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_sensor_device_location ON sensor_device(location_id);

-- Readings
CREATE TABLE IF NOT EXISTS sensor_data (
    id BIGSERIAL PRIMARY KEY,
    timestamp TIMESTAMPTZ NOT NULL,
    temperature DOUBLE PRECISION,
    humidity DOUBLE PRECISION,
    raw_device_id TEXT NOT NULL,
    is_anomaly BOOLEAN NOT NULL DEFAULT FALSE,
    location_id BIGINT REFERENCES sensor_location(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_sensor_data_timestamp ON sensor_data(timestamp);
CREATE INDEX IF NOT EXISTS idx_sensor_data_location_ts ON sensor_data(location_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_sensor_data_device_ts ON sensor_data(raw_device_id, timestamp);

-- Alerts
CREATE TABLE IF NOT EXISTS anomaly_alert (
    id BIGSERIAL PRIMARY KEY,
    data_point_id BIGINT NOT NULL REFERENCES sensor_data(id) ON DELETE CASCADE,
    alert_time TIMESTAMPTZ NOT NULL,
    message TEXT NOT NULL DEFAULT '',
    resolved BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_anomaly_alert_data_point ON anomaly_alert(data_point_id);
`

const sqliteSchema = `
-- Locations
CREATE TABLE IF NOT EXISTS sensor_location (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    location_name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Devices
CREATE TABLE IF NOT EXISTS sensor_device (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    device_id TEXT NOT NULL UNIQUE,
    location_id INTEGER NOT NULL REFERENCES sensor_location(id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_sensor_device_location ON sensor_device(location_id);

-- Readings
CREATE TABLE IF NOT EXISTS sensor_data (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp TIMESTAMP NOT NULL,
    temperature REAL,
    humidity REAL,
    raw_device_id TEXT NOT NULL,
    is_anomaly BOOLEAN NOT NULL DEFAULT 0,
    location_id INTEGER REFERENCES sensor_location(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_sensor_data_timestamp ON sensor_data(timestamp);
CREATE INDEX IF NOT EXISTS idx_sensor_data_location_ts ON sensor_data(location_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_sensor_data_device_ts ON sensor_data(raw_device_id, timestamp);

-- Alerts
CREATE TABLE IF NOT EXISTS anomaly_alert (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    data_point_id INTEGER NOT NULL REFERENCES sensor_data(id) ON DELETE CASCADE,
    alert_time TIMESTAMP NOT NULL,
    message TEXT NOT NULL DEFAULT '',
    resolved BOOLEAN NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_anomaly_alert_data_point ON anomaly_alert(data_point_id);
`
