// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package anomaly

import (
	"fmt"
	"strings"

	"github.com/danielhkuo/safeweb/cliparse"
)

// Thresholds bound the normal range of each measurement, inclusive.
type Thresholds struct {
	TempMin     float64
	TempMax     float64
	HumidityMin float64
	HumidityMax float64
}

func FromConfig(cfg cliparse.Config) Thresholds {
	return Thresholds{
		TempMin:     cfg.TempMin,
		TempMax:     cfg.TempMax,
		HumidityMin: cfg.HumidityMin,
		HumidityMax: cfg.HumidityMax,
	}
}

const violationTemplate = "%s %.2f outside [%.2f, %.2f]"

// Check returns one message per measurement outside its range. Missing
// measurements are never anomalous.
func (t Thresholds) Check(temperature, humidity *float64) []string {
	var violations []string
	if temperature != nil && (*temperature < t.TempMin || *temperature > t.TempMax) {
		violations = append(violations, fmt.Sprintf(violationTemplate, "temperature", *temperature, t.TempMin, t.TempMax))
	}
	if humidity != nil && (*humidity < t.HumidityMin || *humidity > t.HumidityMax) {
		violations = append(violations, fmt.Sprintf(violationTemplate, "humidity", *humidity, t.HumidityMin, t.HumidityMax))
	}
	return violations
}

// Message joins violations into a single alert message.
func Message(deviceID string, violations []string) string {
	return fmt.Sprintf("Anomaly on %s: %s", deviceID, strings.Join(violations, "; "))
}
