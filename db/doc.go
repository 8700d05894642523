// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Opening

Open accepts a database type ("postgres" or "sqlite") and a connection
string, registers the matching driver (lib/pq or modernc.org/sqlite), and
pings the server:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

# Schema Creation

CreateSchema initializes all required tables for the given dialect:

	if err := db.CreateSchema(conn, cfg.DatabaseType); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - sensor_location: named locations
  - sensor_device: device ids registered to a location (unique device_id)
  - sensor_data: temperature/humidity readings with the anomaly flag
  - anomaly_alert: alerts raised for anomalous readings

# Relationships

	sensor_location 1──* sensor_device
	sensor_location 1──* sensor_data (location_id nullable)
	sensor_data     1──* anomaly_alert

# Indexes

  - sensor_data.timestamp
  - sensor_data.(location_id, timestamp)
  - sensor_data.(raw_device_id, timestamp)
  - sensor_device.location_id
  - anomaly_alert.data_point_id
*/
package db
