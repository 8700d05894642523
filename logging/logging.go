// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package logging

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// ParseLevel maps a config value to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewHandler returns a JSON handler for format "json" and a colored console
// handler otherwise.
func NewHandler(w io.Writer, format, level string) slog.Handler {
	lvl := ParseLevel(level)
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: time.TimeOnly,
	})
}

// Setup installs the handler as the slog default.
func Setup(w io.Writer, format, level string) {
	slog.SetDefault(slog.New(NewHandler(w, format, level)))
}
