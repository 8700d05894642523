// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/safeweb/models"
	"github.com/danielhkuo/safeweb/store"
	"github.com/danielhkuo/safeweb/testutil"
)

func seedReadings(t *testing.T, s *store.Store) (models.Location, models.Location) {
	t.Helper()

	lab := testutil.CreateTestLocation(t, s, "Lab", "sensor_001")
	office := testutil.CreateTestLocation(t, s, "Office", "sensor_002")
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	testutil.AddTestReading(t, s, &lab.ID, "sensor_001", base, 21, 40, false)
	testutil.AddTestReading(t, s, &lab.ID, "sensor_001", base.Add(time.Minute), 45.5, 41, true)
	testutil.AddTestReading(t, s, &lab.ID, "sensor_003", base.Add(2*time.Minute), 22, 42, false)
	testutil.AddTestReading(t, s, &office.ID, "sensor_002", base.Add(3*time.Minute), 19, 95, true)
	testutil.AddTestReading(t, s, nil, "stray", base.Add(4*time.Minute), 18, 30, false)

	return lab, office
}

func TestLocationData(t *testing.T) {
	s := testutil.SetupTestStore(t)
	handler := NewReadingsHandler(s)
	lab, _ := seedReadings(t, s)

	testCases := []struct {
		name        string
		query       string
		wantCount   int
		wantTotal   int
		wantAnomaly int
	}{
		{"default limit", "", 3, 3, 1},
		{"limit", "?limit=2", 2, 3, 1},
		{"zero limit", "?limit=0", 0, 3, 1},
		{"invalid limit falls back", "?limit=abc", 3, 3, 1},
		{"negative limit falls back", "?limit=-5", 3, 3, 1},
		{"all ignores limit", "?all=1&limit=1", 3, 3, 1},
		{"device filter", "?device_id=sensor_001", 2, 2, 1},
		{"unknown device", "?device_id=nope", 0, 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/location/x/data.json"+tc.query, nil)
			req.SetPathValue("id", idString(lab.ID))
			w := httptest.NewRecorder()
			handler.LocationData(w, req)

			testutil.AssertStatus(t, w, http.StatusOK)

			var resp models.LocationDataResponse
			testutil.AssertJSON(t, w, &resp)

			assert.Equal(t, lab.ID, resp.LocationID)
			assert.Equal(t, tc.wantCount, resp.Count)
			assert.Len(t, resp.Data, tc.wantCount)
			assert.Equal(t, tc.wantTotal, resp.TotalCount)
			assert.Equal(t, tc.wantAnomaly, resp.TotalAnomalyCount)
			assert.Equal(t, tc.wantTotal-tc.wantAnomaly, resp.TotalNormalCount)
		})
	}
}

func TestLocationData_RowShape(t *testing.T) {
	s := testutil.SetupTestStore(t)
	handler := NewReadingsHandler(s)
	lab, _ := seedReadings(t, s)

	req := httptest.NewRequest("GET", "/location/x/data.json", nil)
	req.SetPathValue("id", idString(lab.ID))
	w := httptest.NewRecorder()
	handler.LocationData(w, req)

	var resp models.LocationDataResponse
	testutil.AssertJSON(t, w, &resp)
	require.Len(t, resp.Data, 3)

	newest := resp.Data[0]
	assert.Equal(t, "sensor_003", newest.DeviceID)
	require.NotNil(t, newest.Timestamp)
	assert.Equal(t, "2025-03-01T08:02:00+00:00", *newest.Timestamp)
	assert.Equal(t, 22.0, newest.Temperature)

	assert.True(t, resp.Data[1].IsAnomaly)
}

func TestLocationData_UnknownLocation(t *testing.T) {
	s := testutil.SetupTestStore(t)
	handler := NewReadingsHandler(s)

	// an unknown location is just an empty feed
	for _, id := range []string{"42", "0"} {
		t.Run(id, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/location/"+id+"/data.json", nil)
			req.SetPathValue("id", id)
			w := httptest.NewRecorder()
			handler.LocationData(w, req)

			testutil.AssertStatus(t, w, http.StatusOK)

			var resp models.LocationDataResponse
			testutil.AssertJSON(t, w, &resp)
			assert.Equal(t, id, idString(resp.LocationID))
			assert.Empty(t, resp.Data)
			assert.NotNil(t, resp.Data)
		})
	}

	for _, id := range []string{"-1", "+1", "abc"} {
		t.Run(id, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/location/x/data.json", nil)
			req.SetPathValue("id", id)
			w := httptest.NewRecorder()
			handler.LocationData(w, req)

			testutil.AssertStatus(t, w, http.StatusNotFound)
		})
	}
}

func TestExportCSV(t *testing.T) {
	s := testutil.SetupTestStore(t)
	handler := NewReadingsHandler(s)
	lab, _ := seedReadings(t, s)

	req := httptest.NewRequest("GET", "/location/x/export.csv?device_id=sensor_001", nil)
	req.SetPathValue("id", idString(lab.ID))
	w := httptest.NewRecorder()
	handler.ExportCSV(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="location_`+idString(lab.ID)+`_data.csv"`, w.Header().Get("Content-Disposition"))

	records, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"id", "timestamp", "device_id", "temperature", "humidity", "is_anomaly", "location"}, records[0])
	assert.Equal(t, "2025-03-01T08:01:00+00:00", records[1][1])
	assert.Equal(t, "45.5", records[1][3])
	assert.Equal(t, "41.0", records[1][4])
	assert.Equal(t, "1", records[1][5])
	assert.Equal(t, "Lab", records[1][6])
	assert.Equal(t, "0", records[2][5])
}

func TestExportCSV_Limit(t *testing.T) {
	s := testutil.SetupTestStore(t)
	handler := NewReadingsHandler(s)
	lab, _ := seedReadings(t, s)

	req := httptest.NewRequest("GET", "/location/x/export.csv?limit=1", nil)
	req.SetPathValue("id", idString(lab.ID))
	w := httptest.NewRecorder()
	handler.ExportCSV(w, req)

	records, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestAllData(t *testing.T) {
	s := testutil.SetupTestStore(t)
	handler := NewReadingsHandler(s)
	seedReadings(t, s)

	t.Run("all locations", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.AllData(w, httptest.NewRequest("GET", "/data/all.json", nil))
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.AllDataResponse
		testutil.AssertJSON(t, w, &resp)

		require.Equal(t, 5, resp.Count)
		assert.Equal(t, "stray", resp.Data[0].DeviceID)
		assert.Equal(t, "", resp.Data[0].LocationName)
		assert.Equal(t, "Office", resp.Data[1].LocationName)
		assert.Equal(t, 2, resp.TotalAnomalyCount)
		assert.Equal(t, 3, resp.TotalNormalCount)
	})

	t.Run("device filter leaves totals global", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.AllData(w, httptest.NewRequest("GET", "/data/all.json?device_id=sensor_002", nil))

		var resp models.AllDataResponse
		testutil.AssertJSON(t, w, &resp)

		assert.Equal(t, 1, resp.Count)
		assert.Equal(t, 2, resp.TotalAnomalyCount)
		assert.Equal(t, 3, resp.TotalNormalCount)
	})
}
