// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status,
duration_ms). Every request gets an X-Request-ID, either the caller's or a
fresh UUID, available to handlers through RequestID(ctx).

# Metrics

Instrument reports per-route latency to anything with an ObserveRequest
method. The route label is the matched ServeMux pattern:

	handler := middleware.Instrument(m, mux)

# CORS Middleware

Allow cross-origin requests from dashboard origins:

	server := http.Server{
		Handler: middleware.CORS(cfg.AllowedOrigins, mux),
	}

X-Device-Key is an allowed header so browsers and gateways can post
readings directly.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

The /api/v1 endpoints wrap payloads in a status envelope instead:

	middleware.APISuccess(w, http.StatusOK, latest)
	middleware.APIError(w, http.StatusNotFound, "No data found")

Parse JSON request bodies:

	var req models.CreateLocationRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)
*/
package middleware
