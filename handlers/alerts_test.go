// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/safeweb/models"
	"github.com/danielhkuo/safeweb/testutil"
)

func TestUpdateAlert(t *testing.T) {
	s := testutil.SetupTestStore(t)
	handler := NewAlertHandler(s)

	loc := testutil.CreateTestLocation(t, s, "Lab", "sensor_001")
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	reading := testutil.AddTestReading(t, s, &loc.ID, "sensor_001", base, 50, 40, true)
	alertID, err := s.CreateAlert(context.Background(), reading.ID, base, "Anomaly on sensor_001")
	if err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name       string
		id         string
		body       interface{}
		wantStatus int
	}{
		{"resolve", idString(alertID), map[string]any{"resolved": true}, http.StatusOK},
		{"edit message", idString(alertID), map[string]any{"message": "checked by ops"}, http.StatusOK},
		{"unknown alert", "999", map[string]any{"resolved": true}, http.StatusNotFound},
		{"non-numeric id", "abc", map[string]any{"resolved": true}, http.StatusNotFound},
		{"invalid JSON", idString(alertID), "nope", http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/alert/"+tc.id+"/update/", tc.body, nil)
			req.SetPathValue("id", tc.id)
			w := httptest.NewRecorder()
			handler.Update(w, req)
			testutil.AssertStatus(t, w, tc.wantStatus)
		})
	}

	// partial updates keep earlier changes
	got, err := s.GetAlert(context.Background(), alertID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Resolved {
		t.Error("Expected alert to stay resolved")
	}
	if got.Message != "checked by ops" {
		t.Errorf("Expected updated message, got %q", got.Message)
	}
	if !got.AlertTime.Equal(base) {
		t.Errorf("Expected alert_time unchanged, got %v", got.AlertTime)
	}
}

func TestUpdateAlert_Response(t *testing.T) {
	s := testutil.SetupTestStore(t)
	handler := NewAlertHandler(s)

	reading := testutil.AddTestReading(t, s, nil, "stray", time.Now(), 50, 40, true)
	alertID, err := s.CreateAlert(context.Background(), reading.ID, time.Now(), "hot")
	if err != nil {
		t.Fatal(err)
	}

	newTime := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	req := testutil.MakeRequest("POST", "/alert/x/update/", models.UpdateAlertRequest{AlertTime: &newTime}, nil)
	req.SetPathValue("id", idString(alertID))
	w := httptest.NewRecorder()
	handler.Update(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var alert models.Alert
	testutil.AssertJSON(t, w, &alert)
	if !alert.AlertTime.Equal(newTime) {
		t.Errorf("Expected alert_time %v, got %v", newTime, alert.AlertTime)
	}
	if alert.DeviceID != "stray" {
		t.Errorf("Expected device_id stray, got %q", alert.DeviceID)
	}
}
