// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package anomaly flags readings outside configured bounds.

Each measurement has an inclusive normal range:

	th := anomaly.FromConfig(cfg)
	violations := th.Check(r.Temperature, r.Humidity)
	if len(violations) > 0 {
		msg := anomaly.Message(r.DeviceID, violations)
	}

A missing measurement never violates its range, so a device that only
reports humidity is judged on humidity alone.
*/
package anomaly
