// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/danielhkuo/safeweb/models"
	"github.com/danielhkuo/safeweb/testutil"
)

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestListLocations(t *testing.T) {
	s := testutil.SetupTestStore(t)
	handler := NewLocationHandler(s)

	lab := testutil.CreateTestLocation(t, s, "Lab", "sensor_001")
	testutil.CreateTestLocation(t, s, "Warehouse", "")
	testutil.AddTestReading(t, s, &lab.ID, "sensor_001", time.Now().Add(-2*time.Minute), 22, 50, false)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	handler.List(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.LocationListResponse
	testutil.AssertJSON(t, w, &resp)

	if resp.TotalLocations != 2 {
		t.Fatalf("Expected 2 locations, got %d", resp.TotalLocations)
	}

	first := resp.Locations[0]
	if first.LocationName != "Lab" {
		t.Errorf("Expected Lab first, got %s", first.LocationName)
	}
	if len(first.DeviceIDs) != 1 || first.DeviceIDs[0] != "sensor_001" {
		t.Errorf("Expected device sensor_001, got %v", first.DeviceIDs)
	}
	if first.ReadingCount != 1 {
		t.Errorf("Expected 1 reading, got %d", first.ReadingCount)
	}
	if first.LastReadingAt == nil || first.LastReadingAgo != "2 minutes ago" {
		t.Errorf("Expected last reading 2 minutes ago, got %q", first.LastReadingAgo)
	}

	second := resp.Locations[1]
	if len(second.DeviceIDs) != 0 || second.LastReadingAt != nil {
		t.Errorf("Expected empty summary for Warehouse, got %+v", second)
	}
}

func TestCreateLocation(t *testing.T) {
	s := testutil.SetupTestStore(t)
	handler := NewLocationHandler(s)

	testutil.CreateTestLocation(t, s, "Other", "taken")

	testCases := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantDevice bool
	}{
		{
			name:       "name only",
			body:       models.CreateLocationRequest{LocationName: "Lab", Description: "first floor"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "with initial device",
			body:       models.CreateLocationRequest{LocationName: "Office", InitialDeviceID: "sensor_002"},
			wantStatus: http.StatusCreated,
			wantDevice: true,
		},
		{
			name:       "missing name",
			body:       models.CreateLocationRequest{Description: "no name"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "device bound elsewhere",
			body:       models.CreateLocationRequest{LocationName: "Clash", InitialDeviceID: "taken"},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "invalid JSON",
			body:       "not an object",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/location/register/", tc.body, nil)
			w := httptest.NewRecorder()
			handler.Create(w, req)

			testutil.AssertStatus(t, w, tc.wantStatus)
			if tc.wantStatus != http.StatusCreated {
				return
			}

			var resp models.CreateLocationResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Location.ID == 0 {
				t.Error("Expected location id")
			}
			if tc.wantDevice {
				if resp.Device == nil || resp.Device.LocationID != resp.Location.ID {
					t.Errorf("Expected device bound to new location, got %+v", resp.Device)
				}
			} else if resp.Device != nil {
				t.Errorf("Expected no device, got %+v", resp.Device)
			}
		})
	}

	// the conflicting request must not have created a location
	locations, err := s.ListLocations(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, loc := range locations {
		if loc.LocationName == "Clash" {
			t.Error("Location created despite device conflict")
		}
	}
}

func TestLocationDetail(t *testing.T) {
	s := testutil.SetupTestStore(t)
	handler := NewLocationHandler(s)

	loc := testutil.CreateTestLocation(t, s, "Lab", "sensor_001")
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	var anomalous models.Reading
	for i := 0; i < 25; i++ {
		device := "sensor_001"
		if i%5 == 0 {
			device = "sensor_009"
		}
		r := testutil.AddTestReading(t, s, &loc.ID, device, base.Add(time.Duration(i)*time.Minute), 20+float64(i), 50, i == 24)
		if i == 24 {
			anomalous = r
		}
	}
	if _, err := s.CreateAlert(context.Background(), anomalous.ID, base.Add(time.Hour), "too hot"); err != nil {
		t.Fatal(err)
	}

	detail := func(path, page, device string) *httptest.ResponseRecorder {
		target := path + "?page=" + page
		if device != "" {
			target += "&device_id=" + device
		}
		req := httptest.NewRequest("GET", target, nil)
		req.SetPathValue("id", idString(loc.ID))
		w := httptest.NewRecorder()
		handler.Detail(w, req)
		return w
	}
	path := fmt.Sprintf("/location/%d/detail/", loc.ID)

	t.Run("first page", func(t *testing.T) {
		w := detail(path, "", "")
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.LocationDetailResponse
		testutil.AssertJSON(t, w, &resp)

		if resp.Location.ID != loc.ID {
			t.Errorf("Expected location %d, got %d", loc.ID, resp.Location.ID)
		}
		if len(resp.Readings) != 10 {
			t.Fatalf("Expected 10 readings, got %d", len(resp.Readings))
		}
		if resp.Readings[0].ID != anomalous.ID {
			t.Error("Expected newest reading first")
		}
		if resp.TotalCount != 25 || resp.AnomalyCount != 1 || resp.NormalCount != 24 {
			t.Errorf("Unexpected counts: total=%d anomaly=%d normal=%d", resp.TotalCount, resp.AnomalyCount, resp.NormalCount)
		}
		if resp.Page.Number != 1 || resp.Page.NumPages != 3 || !resp.Page.HasNext || resp.Page.HasPrevious {
			t.Errorf("Unexpected page: %+v", resp.Page)
		}
		if len(resp.Alerts) != 1 || resp.Alerts[0].Message != "too hot" {
			t.Errorf("Unexpected alerts: %+v", resp.Alerts)
		}
		if len(resp.Chart.Labels) != 25 {
			t.Fatalf("Expected 25 chart points, got %d", len(resp.Chart.Labels))
		}
		if resp.Chart.Labels[0] != "08:00:00" || resp.Chart.Labels[24] != "08:24:00" {
			t.Errorf("Expected ascending chart labels, got %s..%s", resp.Chart.Labels[0], resp.Chart.Labels[24])
		}
	})

	t.Run("last page", func(t *testing.T) {
		w := detail(path, "last", "")
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.LocationDetailResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Page.Number != 3 || len(resp.Readings) != 5 {
			t.Errorf("Expected page 3 with 5 readings, got page %d with %d", resp.Page.Number, len(resp.Readings))
		}
		// chart always covers the newest readings
		if resp.Chart.Labels[len(resp.Chart.Labels)-1] != "08:24:00" {
			t.Errorf("Expected chart to end at newest reading, got %v", resp.Chart.Labels)
		}
	})

	t.Run("device filter", func(t *testing.T) {
		w := detail(path, "", "sensor_009")
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.LocationDetailResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.TotalCount != 5 || resp.DeviceID != "sensor_009" {
			t.Errorf("Expected 5 readings for sensor_009, got %d", resp.TotalCount)
		}
		for _, row := range resp.Readings {
			if row.DeviceID != "sensor_009" {
				t.Errorf("Unexpected device %s", row.DeviceID)
			}
		}
	})

	t.Run("page out of range", func(t *testing.T) {
		testutil.AssertStatus(t, detail(path, "4", ""), http.StatusNotFound)
		testutil.AssertStatus(t, detail(path, "abc", ""), http.StatusNotFound)
	})

	t.Run("missing location", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/location/999/detail/", nil)
		req.SetPathValue("id", "999")
		w := httptest.NewRecorder()
		handler.Detail(w, req)
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestLocationDetail_Empty(t *testing.T) {
	s := testutil.SetupTestStore(t)
	handler := NewLocationHandler(s)
	loc := testutil.CreateTestLocation(t, s, "Empty", "")

	req := httptest.NewRequest("GET", "/location/x/detail/", nil)
	req.SetPathValue("id", idString(loc.ID))
	w := httptest.NewRecorder()
	handler.Detail(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.LocationDetailResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.TotalCount != 0 || len(resp.Readings) != 0 || len(resp.Chart.Labels) != 0 {
		t.Errorf("Expected empty detail, got %+v", resp)
	}
	if resp.Page.Number != 1 || resp.Page.NumPages != 1 {
		t.Errorf("Expected single empty page, got %+v", resp.Page)
	}
}

func TestUpdateLocation(t *testing.T) {
	s := testutil.SetupTestStore(t)
	handler := NewLocationHandler(s)
	loc := testutil.CreateTestLocation(t, s, "Lab", "")

	testCases := []struct {
		name       string
		id         string
		body       interface{}
		wantStatus int
	}{
		{"valid update", idString(loc.ID), models.UpdateLocationRequest{LocationName: "Lab 2", Description: "moved"}, http.StatusOK},
		{"missing name", idString(loc.ID), models.UpdateLocationRequest{Description: "x"}, http.StatusBadRequest},
		{"unknown location", "999", models.UpdateLocationRequest{LocationName: "Ghost"}, http.StatusNotFound},
		{"non-numeric id", "abc", models.UpdateLocationRequest{LocationName: "Ghost"}, http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/location/"+tc.id+"/edit/", tc.body, nil)
			req.SetPathValue("id", tc.id)
			w := httptest.NewRecorder()
			handler.Update(w, req)
			testutil.AssertStatus(t, w, tc.wantStatus)
		})
	}

	got, err := s.GetLocation(context.Background(), loc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.LocationName != "Lab 2" || got.Description != "moved" {
		t.Errorf("Expected updated location, got %+v", got)
	}
}

func TestDeleteLocation(t *testing.T) {
	s := testutil.SetupTestStore(t)
	handler := NewLocationHandler(s)
	loc := testutil.CreateTestLocation(t, s, "Lab", "sensor_001")
	testutil.AddTestReading(t, s, &loc.ID, "sensor_001", time.Now(), 20, 50, false)

	for _, method := range []string{"DELETE", "POST"} {
		req := httptest.NewRequest(method, "/location/x/delete/", nil)
		req.SetPathValue("id", idString(loc.ID))
		w := httptest.NewRecorder()
		handler.Delete(w, req)

		if method == "DELETE" {
			testutil.AssertStatus(t, w, http.StatusNoContent)
		} else {
			// already gone
			testutil.AssertStatus(t, w, http.StatusNotFound)
		}
	}

	bound, err := s.LocationForDevice(context.Background(), "sensor_001")
	if err != nil {
		t.Fatal(err)
	}
	if bound != nil {
		t.Error("Expected device registration removed with its location")
	}
}
