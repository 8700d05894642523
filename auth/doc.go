// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth signs and verifies device ingest keys.

# Device Keys

Device keys use HMAC-SHA256 over the device id:

	key := auth.GenerateDeviceKey(deviceID, salt)
	err := auth.ValidateDeviceKey(deviceID, key, salt)

The key is URL-safe base64 encoded without padding. Since it's
deterministic, the same device id and salt always produce the same key, so
nothing needs to be stored. Devices send it in the X-Device-Key header when
the server runs with INGEST_KEY_SALT set.
*/
package auth
