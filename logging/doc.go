// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package logging configures the default slog handler: tint for terminals,
// JSON for log collectors.
package logging
