// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/danielhkuo/safeweb/models"
)

var csvHeader = []string{"id", "timestamp", "device_id", "temperature", "humidity", "is_anomaly", "location"}

// CSVFilename is the attachment name for a location export.
func CSVFilename(locationID int64) string {
	return fmt.Sprintf("location_%d_data.csv", locationID)
}

// WriteCSV writes the header and one record per reading. Missing timestamps
// and locations become empty fields; missing values become 0.0. Records end
// in CRLF.
func WriteCSV(w io.Writer, readings []models.Reading) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range readings {
		ts := ""
		if !r.Timestamp.IsZero() {
			ts = ISOTime(r.Timestamp)
		}
		anomaly := "0"
		if r.IsAnomaly {
			anomaly = "1"
		}
		location := ""
		if r.LocationName != nil {
			location = *r.LocationName
		}

		record := []string{
			strconv.FormatInt(r.ID, 10),
			ts,
			r.DeviceID,
			formatFloat(value(r.Temperature)),
			formatFloat(value(r.Humidity)),
			anomaly,
			location,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// formatFloat always keeps a decimal point, so 21 renders as 21.0.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
