// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package live streams ingested readings to websocket clients.

	GET /ws/live               every device
	GET /ws/live?device_id=x   one device

Each message is the same JSON object returned by /api/v1/latest_data.
*/
package live
