// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ingest is the single path by which readings enter the database.

HTTP, MQTT and the poller all call Service.Record, which:

 1. validates the device id and requires at least one measurement
 2. stamps missing timestamps with the current time, in UTC at microsecond precision
 3. resolves the location from the device registration
 4. flags the reading against the anomaly thresholds and stores it
 5. creates an alert for flagged readings

After the row is stored the reading is passed to whichever side channels are
configured (mirror, cache, live feed, email, metrics). Their failures are
logged and counted but never returned.
*/
package ingest
