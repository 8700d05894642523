// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package fetcher pulls readings from outside sources into ingest.

MQTT subscribes to a topic filter and records every message. The connection
is retried with exponential backoff and resubscribed after a reconnect.

Poller fetches a JSON array (or single object) of readings from an HTTP
endpoint on an interval and skips readings it has already seen per device.

Both report Running for GET /fetcher/status/.
*/
package fetcher
