// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics exposes Prometheus counters for ingestion, alerts, side
// channel failures and request latency.
package metrics
