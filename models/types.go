package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/relvacode/iso8601"
)

// API envelope status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Domain types

type Location struct {
	ID           int64     `json:"id" db:"id"`
	LocationName string    `json:"location_name" db:"location_name"`
	Description  string    `json:"description" db:"description"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type Device struct {
	ID         int64     `json:"id" db:"id"`
	DeviceID   string    `json:"device_id" db:"device_id"`
	LocationID int64     `json:"location_id" db:"location_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Reading is a sensor_data row. LocationName is filled by queries that join
// sensor_location and is nil for readings from unregistered devices.
type Reading struct {
	ID           int64     `db:"id"`
	Timestamp    time.Time `db:"timestamp"`
	Temperature  *float64  `db:"temperature"`
	Humidity     *float64  `db:"humidity"`
	DeviceID     string    `db:"raw_device_id"`
	IsAnomaly    bool      `db:"is_anomaly"`
	LocationID   *int64    `db:"location_id"`
	LocationName *string   `db:"location_name"`
}

type Alert struct {
	ID          int64     `json:"id" db:"id"`
	DataPointID int64     `json:"data_point_id" db:"data_point_id"`
	AlertTime   time.Time `json:"alert_time" db:"alert_time"`
	Message     string    `json:"message" db:"message"`
	Resolved    bool      `json:"resolved" db:"resolved"`
	DeviceID    string    `json:"device_id" db:"raw_device_id"`
	Timestamp   time.Time `json:"reading_timestamp" db:"timestamp"`
}

// Request types

type CreateLocationRequest struct {
	LocationName    string `json:"location_name"`
	Description     string `json:"description"`
	InitialDeviceID string `json:"initial_device_id"`
}

type UpdateLocationRequest struct {
	LocationName string `json:"location_name"`
	Description  string `json:"description"`
}

type UpdateAlertRequest struct {
	AlertTime *time.Time `json:"alert_time"`
	Message   *string    `json:"message"`
	Resolved  *bool      `json:"resolved"`
}

type RegisterDeviceRequest struct {
	DeviceID   string `json:"device_id"`
	LocationID int64  `json:"location_id"`
}

// IngestReadingRequest is the payload accepted over HTTP and MQTT.
type IngestReadingRequest struct {
	DeviceID    string      `json:"device_id"`
	Temperature *float64    `json:"temperature"`
	Humidity    *float64    `json:"humidity"`
	Timestamp   ReadingTime `json:"timestamp"`
}

// Response types

type LocationSummary struct {
	ID             int64      `json:"id"`
	LocationName   string     `json:"location_name"`
	Description    string     `json:"description"`
	DeviceIDs      []string   `json:"device_ids"`
	ReadingCount   int        `json:"reading_count"`
	LastReadingAt  *time.Time `json:"last_reading_at,omitempty"`
	LastReadingAgo string     `json:"last_reading_ago,omitempty"`
}

type LocationListResponse struct {
	Locations      []LocationSummary `json:"locations"`
	TotalLocations int               `json:"total_locations"`
}

type CreateLocationResponse struct {
	Location Location `json:"location"`
	Device   *Device  `json:"device,omitempty"`
}

// ReadingRow is the JSON view of a reading used by data.json and the
// location detail table.
type ReadingRow struct {
	ID          int64   `json:"id"`
	Timestamp   *string `json:"timestamp"`
	DeviceID    string  `json:"device_id"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	IsAnomaly   bool    `json:"is_anomaly"`
}

// GlobalReadingRow adds the location name for cross-location listings.
type GlobalReadingRow struct {
	ReadingRow
	LocationName string `json:"location_name"`
}

type LocationDataResponse struct {
	LocationID        int64        `json:"location_id"`
	Count             int          `json:"count"`
	Data              []ReadingRow `json:"data"`
	TotalAnomalyCount int          `json:"total_anomaly_count"`
	TotalNormalCount  int          `json:"total_normal_count"`
	TotalCount        int          `json:"total_count"`
}

type AllDataResponse struct {
	Count             int                `json:"count"`
	Data              []GlobalReadingRow `json:"data"`
	TotalAnomalyCount int                `json:"total_anomaly_count"`
	TotalNormalCount  int                `json:"total_normal_count"`
}

type Page struct {
	Number      int  `json:"number"`
	NumPages    int  `json:"num_pages"`
	PerPage     int  `json:"per_page"`
	Count       int  `json:"count"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

type Chart struct {
	Labels       []string  `json:"labels"`
	Temperatures []float64 `json:"temperatures"`
	Humidities   []float64 `json:"humidities"`
}

type LocationDetailResponse struct {
	Location     Location     `json:"current_location"`
	DeviceID     string       `json:"device_id,omitempty"`
	Readings     []ReadingRow `json:"sensor_readings"`
	Page         Page         `json:"page"`
	Alerts       []Alert      `json:"alerts"`
	AnomalyCount int          `json:"anomaly_count"`
	NormalCount  int          `json:"normal_count"`
	TotalCount   int          `json:"total_count"`
	Chart        Chart        `json:"chart"`
}

// LatestReading is the live-data payload with an epoch timestamp.
type LatestReading struct {
	Timestamp   int64   `json:"timestamp"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	DeviceID    string  `json:"device_id"`
	IsAnomaly   bool    `json:"is_anomaly"`
}

type HistoricalPoint struct {
	Timestamp   int64   `json:"timestamp"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	IsAnomaly   bool    `json:"is_anomaly"`
}

// APIResponse is the envelope used by the /api/v1 endpoints.
type APIResponse struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type WindowStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Count  int     `json:"count"`
}

type StatsResponse struct {
	DeviceID    string      `json:"device_id,omitempty"`
	Since       time.Time   `json:"since"`
	Temperature WindowStats `json:"temperature"`
	Humidity    WindowStats `json:"humidity"`
}

type IngestReadingResponse struct {
	ID         int64  `json:"id"`
	IsAnomaly  bool   `json:"is_anomaly"`
	LocationID *int64 `json:"location_id"`
	AlertID    *int64 `json:"alert_id,omitempty"`
}

// RegisterDeviceResponse carries the device's ingest key when keys are
// enforced.
type RegisterDeviceResponse struct {
	Device    Device `json:"device"`
	DeviceKey string `json:"device_key,omitempty"`
}

type FetcherStatusResponse struct {
	FetcherRunning bool `json:"fetcher_running"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ReadingTime accepts either epoch seconds or an ISO-8601 string.
// A missing or null value decodes to the zero time.
type ReadingTime struct {
	time.Time
}

func (rt *ReadingTime) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		rt.Time = time.Time{}
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			rt.Time = time.Time{}
			return nil
		}
		t, err := iso8601.ParseString(s)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		rt.Time = t
		return nil
	}

	secs, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", b, err)
	}
	whole, frac := math.Modf(secs)
	rt.Time = time.Unix(int64(whole), int64(frac*1e9)).UTC()
	return nil
}

func (rt ReadingTime) MarshalJSON() ([]byte, error) {
	if rt.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(rt.Time)
}
