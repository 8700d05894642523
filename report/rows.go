// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package report

import (
	"time"

	"github.com/danielhkuo/safeweb/models"
)

const (
	isoSeconds = "2006-01-02T15:04:05-07:00"
	isoMicros  = "2006-01-02T15:04:05.000000-07:00"
	clockLabel = "15:04:05"
)

// ISOTime formats t with six fractional digits when it has sub-second
// precision and none otherwise.
func ISOTime(t time.Time) string {
	if t.Nanosecond()/int(time.Microsecond) == 0 {
		return t.Format(isoSeconds)
	}
	return t.Format(isoMicros)
}

func value(v *float64) float64 {
	if v == nil {
		return 0.0
	}
	return *v
}

func isoOrNil(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := ISOTime(t)
	return &s
}

func ToReadingRow(r models.Reading) models.ReadingRow {
	return models.ReadingRow{
		ID:          r.ID,
		Timestamp:   isoOrNil(r.Timestamp),
		DeviceID:    r.DeviceID,
		Temperature: value(r.Temperature),
		Humidity:    value(r.Humidity),
		IsAnomaly:   r.IsAnomaly,
	}
}

func ToReadingRows(readings []models.Reading) []models.ReadingRow {
	rows := make([]models.ReadingRow, len(readings))
	for i, r := range readings {
		rows[i] = ToReadingRow(r)
	}
	return rows
}

// ToGlobalRows maps readings for cross-location listings. Readings without a
// location get an empty name.
func ToGlobalRows(readings []models.Reading) []models.GlobalReadingRow {
	rows := make([]models.GlobalReadingRow, len(readings))
	for i, r := range readings {
		rows[i] = models.GlobalReadingRow{ReadingRow: ToReadingRow(r)}
		if r.LocationName != nil {
			rows[i].LocationName = *r.LocationName
		}
	}
	return rows
}

func ToLatest(r models.Reading) models.LatestReading {
	return models.LatestReading{
		Timestamp:   r.Timestamp.Unix(),
		Temperature: value(r.Temperature),
		Humidity:    value(r.Humidity),
		DeviceID:    r.DeviceID,
		IsAnomaly:   r.IsAnomaly,
	}
}

func ToHistorical(readings []models.Reading) []models.HistoricalPoint {
	points := make([]models.HistoricalPoint, len(readings))
	for i, r := range readings {
		points[i] = models.HistoricalPoint{
			Timestamp:   r.Timestamp.Unix(),
			Temperature: value(r.Temperature),
			Humidity:    value(r.Humidity),
			IsAnomaly:   r.IsAnomaly,
		}
	}
	return points
}

// BuildChart takes readings ordered newest first and returns the newest
// ChartPoints of them in ascending time order.
func BuildChart(newestFirst []models.Reading) models.Chart {
	n := len(newestFirst)
	if n > ChartPoints {
		n = ChartPoints
	}

	chart := models.Chart{
		Labels:       make([]string, 0, n),
		Temperatures: make([]float64, 0, n),
		Humidities:   make([]float64, 0, n),
	}
	for i := n - 1; i >= 0; i-- {
		r := newestFirst[i]
		if r.Timestamp.IsZero() {
			chart.Labels = append(chart.Labels, "-")
		} else {
			chart.Labels = append(chart.Labels, r.Timestamp.Format(clockLabel))
		}
		chart.Temperatures = append(chart.Temperatures, value(r.Temperature))
		chart.Humidities = append(chart.Humidities, value(r.Humidity))
	}
	return chart
}

func ToPage(p Pagination) models.Page {
	return models.Page{
		Number:      p.Number,
		NumPages:    p.NumPages,
		PerPage:     p.PerPage,
		Count:       p.Count,
		HasNext:     p.HasNext(),
		HasPrevious: p.HasPrevious(),
	}
}
