// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cache keeps the newest reading per device in Redis.

Keys are latest:<device_id>, plus latest:_all for the newest reading from any
device. Each key is a hash holding the reading's epoch timestamp and its JSON
payload. Put compares and writes inside a Lua script, so an older reading
never replaces a newer one, even when MQTT and HTTP ingest race. Forget
clears devices whose readings were deleted.
*/
package cache
