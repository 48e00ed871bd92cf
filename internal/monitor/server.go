// Package monitor serves live audio level measurements over WebSocket so a
// VU meter or dashboard can watch a running capture.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oszuidwest/zwfm-capture/internal/audio"
)

// clientBuffer is the per-client level frame backlog. Clients that cannot
// keep up skip frames rather than stalling the capture path.
const clientBuffer = 8

// Server pushes level frames to connected WebSocket clients.
type Server struct {
	mu      sync.Mutex
	clients map[chan audio.AudioLevels]*websocket.Conn
	httpSrv *http.Server
}

// NewServer creates a monitor server listening on the given port.
func NewServer(port int) *Server {
	s := &Server{
		clients: make(map[chan audio.AudioLevels]*websocket.Conn),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/levels", s.handleLevels)

	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	go func() {
		slog.Info("level monitor listening", "addr", s.httpSrv.Addr, "path", "/ws/levels")
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("monitor server error", "error", err)
		}
	}()
}

// Shutdown stops the server and disconnects all clients. WebSocket
// connections are hijacked, so http.Server.Shutdown alone would leave them
// open; they are closed explicitly, which also ends their handler goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for _, conn := range s.clients {
		_ = conn.Close()
	}
	s.mu.Unlock()

	return s.httpSrv.Shutdown(ctx)
}

// Publish fans a level frame out to all connected clients. Frames are
// dropped for clients whose backlog is full.
func (s *Server) Publish(levels audio.AudioLevels) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.clients {
		select {
		case ch <- levels:
		default:
		}
	}
}

// handleLevels upgrades the connection and streams level frames until the
// client disconnects.
func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	ch := make(chan audio.AudioLevels, clientBuffer)
	s.addClient(ch, conn)
	slog.Info("monitor client connected", "remote", conn.RemoteAddr())

	// Reader goroutine: the monitor accepts no commands, but reading is
	// required to notice the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		s.removeClient(ch)
		_ = conn.Close()
		slog.Info("monitor client disconnected", "remote", conn.RemoteAddr())
	}()

	for {
		select {
		case levels := <-ch:
			if err := conn.WriteJSON(levels); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (s *Server) addClient(ch chan audio.AudioLevels, conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[ch] = conn
}

func (s *Server) removeClient(ch chan audio.AudioLevels) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, ch)
}

func (s *Server) clientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}
