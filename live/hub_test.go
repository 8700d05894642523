// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/safeweb/models"
)

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/live" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub([]string{"*"})
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	all := dial(t, srv, "")
	only2 := dial(t, srv, "?device_id=dev-2")

	require.Eventually(t, func() bool { return hub.Clients() == 2 }, 2*time.Second, 10*time.Millisecond)

	hub.Broadcast(models.LatestReading{Timestamp: 1, DeviceID: "dev-1", Temperature: 20})
	hub.Broadcast(models.LatestReading{Timestamp: 2, DeviceID: "dev-2", Temperature: 22})

	var got models.LatestReading
	all.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, all.ReadJSON(&got))
	assert.Equal(t, "dev-1", got.DeviceID)
	require.NoError(t, all.ReadJSON(&got))
	assert.Equal(t, "dev-2", got.DeviceID)

	only2.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, only2.ReadJSON(&got))
	assert.Equal(t, "dev-2", got.DeviceID)
	assert.Equal(t, 22.0, got.Temperature)
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub := NewHub([]string{"*"})
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	conn := dial(t, srv, "")
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_RejectsOrigin(t *testing.T) {
	hub := NewHub([]string{"http://dashboard.test"})
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.test"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
