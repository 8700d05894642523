// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/safeweb/cliparse"
	"github.com/danielhkuo/safeweb/db"
	"github.com/danielhkuo/safeweb/models"
	"github.com/danielhkuo/safeweb/store"
)

// SetupTestDB creates a fresh sqlite database with the full schema in the
// test's temp dir. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	url := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)"
	conn, err := db.Open(db.TypeSQLite, url)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, db.TypeSQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// SetupTestStore returns a Store over a fresh test database.
func SetupTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(SetupTestDB(t), db.TypeSQLite)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return s
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           8000,
		DatabaseType:   db.TypeSQLite,
		DatabaseURL:    "file::memory:",
		AllowedOrigins: []string{"*"},
		TempMin:        cliparse.DefaultTempMin,
		TempMax:        cliparse.DefaultTempMax,
		HumidityMin:    cliparse.DefaultHumidityMin,
		HumidityMax:    cliparse.DefaultHumidityMax,
	}
}

// CreateTestLocation creates a location and registers deviceID to it when
// deviceID is non-empty.
func CreateTestLocation(t *testing.T, s *store.Store, name, deviceID string) models.Location {
	t.Helper()

	ctx := context.Background()
	loc, err := s.CreateLocation(ctx, name, "test location")
	if err != nil {
		t.Fatalf("Failed to create test location: %v", err)
	}
	if deviceID != "" {
		if _, _, err := s.GetOrCreateDevice(ctx, deviceID, loc.ID); err != nil {
			t.Fatalf("Failed to register test device: %v", err)
		}
	}
	return loc
}

// AddTestReading stores a reading for deviceID at locationID (nil for an
// unregistered device) and returns it with its ID set.
func AddTestReading(t *testing.T, s *store.Store, locationID *int64, deviceID string, ts time.Time, temp, hum float64, anomaly bool) models.Reading {
	t.Helper()

	r := models.Reading{
		Timestamp:   ts.UTC().Truncate(time.Microsecond),
		Temperature: &temp,
		Humidity:    &hum,
		DeviceID:    deviceID,
		IsAnomaly:   anomaly,
		LocationID:  locationID,
	}
	if err := s.InsertReading(context.Background(), &r); err != nil {
		t.Fatalf("Failed to create test reading: %v", err)
	}
	return r
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
