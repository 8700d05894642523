// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/safeweb/auth"
	"github.com/danielhkuo/safeweb/models"
	"github.com/danielhkuo/safeweb/testutil"
)

func TestRegisterDevice(t *testing.T) {
	s := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()
	handler := NewDeviceHandler(s, cfg)

	lab := testutil.CreateTestLocation(t, s, "Lab", "")
	office := testutil.CreateTestLocation(t, s, "Office", "")

	testCases := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{"new device", models.RegisterDeviceRequest{DeviceID: "sensor_001", LocationID: lab.ID}, http.StatusCreated},
		{"same binding again", models.RegisterDeviceRequest{DeviceID: "sensor_001", LocationID: lab.ID}, http.StatusOK},
		{"bound elsewhere", models.RegisterDeviceRequest{DeviceID: "sensor_001", LocationID: office.ID}, http.StatusConflict},
		{"unknown location", models.RegisterDeviceRequest{DeviceID: "sensor_002", LocationID: 999}, http.StatusNotFound},
		{"missing device id", models.RegisterDeviceRequest{LocationID: lab.ID}, http.StatusBadRequest},
		{"missing location", models.RegisterDeviceRequest{DeviceID: "sensor_003"}, http.StatusBadRequest},
		{"invalid JSON", "nope", http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.Register(w, testutil.MakeRequest("POST", "/devices", tc.body, nil))
			testutil.AssertStatus(t, w, tc.wantStatus)
		})
	}
}

func TestRegisterDevice_ReturnsKey(t *testing.T) {
	s := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()
	lab := testutil.CreateTestLocation(t, s, "Lab", "")

	body := models.RegisterDeviceRequest{DeviceID: "sensor_001", LocationID: lab.ID}

	t.Run("no salt", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewDeviceHandler(s, cfg).Register(w, testutil.MakeRequest("POST", "/devices", body, nil))

		var resp models.RegisterDeviceResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.DeviceKey != "" {
			t.Errorf("Expected no key without salt, got %q", resp.DeviceKey)
		}
	})

	t.Run("with salt", func(t *testing.T) {
		cfg.IngestKeySalt = "salt"
		w := httptest.NewRecorder()
		NewDeviceHandler(s, cfg).Register(w, testutil.MakeRequest("POST", "/devices", body, nil))

		var resp models.RegisterDeviceResponse
		testutil.AssertJSON(t, w, &resp)
		if err := auth.ValidateDeviceKey("sensor_001", resp.DeviceKey, "salt"); err != nil {
			t.Errorf("Expected valid device key, got %v", err)
		}
		if resp.Device.LocationID != lab.ID {
			t.Errorf("Expected location %d, got %d", lab.ID, resp.Device.LocationID)
		}
	})
}
