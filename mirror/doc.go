// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package mirror copies stored readings into InfluxDB behind a circuit breaker.
package mirror
