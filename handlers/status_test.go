// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/safeweb/models"
	"github.com/danielhkuo/safeweb/testutil"
)

type fakeFetcher bool

func (f fakeFetcher) Running() bool { return bool(f) }

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestFetcherStatus(t *testing.T) {
	testCases := []struct {
		name    string
		fetcher RunState
		want    bool
	}{
		{"no fetcher", nil, false},
		{"stopped", fakeFetcher(false), false},
		{"running", fakeFetcher(true), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewStatusHandler(tc.fetcher, nil)
			w := httptest.NewRecorder()
			handler.Fetcher(w, httptest.NewRequest("GET", "/fetcher/status/", nil))

			testutil.AssertStatus(t, w, http.StatusOK)

			var resp models.FetcherStatusResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.FetcherRunning != tc.want {
				t.Errorf("Expected fetcher_running=%v, got %v", tc.want, resp.FetcherRunning)
			}
		})
	}
}

func TestReady(t *testing.T) {
	t.Run("database up", func(t *testing.T) {
		handler := NewStatusHandler(nil, testutil.SetupTestStore(t))
		w := httptest.NewRecorder()
		handler.Ready(w, httptest.NewRequest("GET", "/readyz", nil))
		testutil.AssertStatus(t, w, http.StatusOK)
	})

	t.Run("database down", func(t *testing.T) {
		handler := NewStatusHandler(nil, pingFunc(func(context.Context) error {
			return errors.New("connection refused")
		}))
		w := httptest.NewRecorder()
		handler.Ready(w, httptest.NewRequest("GET", "/readyz", nil))
		testutil.AssertStatus(t, w, http.StatusServiceUnavailable)
	})
}
