// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Values are resolved in order: CLI flag, environment variable, default. A
.env file in the working directory is loaded into the environment first
(existing variables win).

# Core Settings

	-p            PORT            Server port (default 8000)
	-d            DATABASE_URL    Connection string (required for postgres)
	-t            DATABASE_TYPE   sqlite (default) or postgres
	-log-format   LOG_FORMAT      text (tint) or json
	-log-level    LOG_LEVEL       debug, info, warn, error
	-origins      ALLOWED_ORIGINS Comma-separated CORS origins (default *)

# Anomaly Thresholds

	-temp-min      TEMP_MIN      (default 0)
	-temp-max      TEMP_MAX      (default 40)
	-humidity-min  HUMIDITY_MIN  (default 10)
	-humidity-max  HUMIDITY_MAX  (default 90)

# Optional Integrations

Each integration is disabled while its address is empty.

  - MQTT fetcher: MQTT_BROKER, MQTT_TOPIC, MQTT_USERNAME, MQTT_PASSWORD, MQTT_CLIENT_ID
  - HTTP poller: FETCH_URL, FETCH_INTERVAL (used only without a broker)
  - InfluxDB mirror: INFLUXDB_URL, INFLUXDB_TOKEN, INFLUXDB_ORG, INFLUXDB_BUCKET
  - Redis cache: REDIS_ADDR, REDIS_PASSWORD, REDIS_TTL
  - Alert email: SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD, ALERT_EMAIL_TO,
    ALERT_EMAIL_FROM (defaults to SMTP_USERNAME)
  - Ingest keys: INGEST_KEY_SALT

# Validation

ParseFlags returns an error for unparsable numbers or durations, an unknown
database type, a postgres database without a URL, or a minimum threshold
above its maximum.
*/
package cliparse
