package monitor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oszuidwest/zwfm-capture/internal/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialLevels(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(s.handleLevels))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})

	require.Eventually(t, func() bool {
		return s.clientCount() == 1
	}, time.Second, 10*time.Millisecond)

	return conn
}

func TestPublishReachesClient(t *testing.T) {
	s := NewServer(0)
	conn := dialLevels(t, s)

	s.Publish(audio.AudioLevels{Left: -12.5, Right: -13.0, PeakLeft: -6.0})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	var got audio.AudioLevels
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, -12.5, got.Left)
	assert.Equal(t, -13.0, got.Right)
	assert.Equal(t, -6.0, got.PeakLeft)
}

func TestShutdownDisconnectsClients(t *testing.T) {
	s := NewServer(0)
	conn := dialLevels(t, s)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "the server side of the connection is closed on shutdown")

	require.Eventually(t, func() bool {
		return s.clientCount() == 0
	}, time.Second, 10*time.Millisecond)
}
