// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

// DeviceKeyHeader carries the ingest key on POST /api/v1/readings.
const DeviceKeyHeader = "X-Device-Key"

var (
	ErrMissingDeviceKey = errors.New("missing device key")
	ErrInvalidDeviceKey = errors.New("invalid device key")
)

// GenerateDeviceKey creates an HMAC-based ingest key for a device.
// This is deterministic and verifiable
func GenerateDeviceKey(deviceID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(deviceID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateDeviceKey checks if the provided key is valid for the device
func ValidateDeviceKey(deviceID, key, salt string) error {
	if key == "" {
		return ErrMissingDeviceKey
	}
	expected := GenerateDeviceKey(deviceID, salt)
	if !hmac.Equal([]byte(key), []byte(expected)) {
		return ErrInvalidDeviceKey
	}
	return nil
}
