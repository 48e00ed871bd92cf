package monitor

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func originRequest(t *testing.T, host, origin string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/ws/levels", nil)
	r.Host = host
	if origin != "" {
		r.Header.Set("Origin", origin)
	}
	return r
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		host    string
		origin  string
		allowed bool
	}{
		{"same-origin without header", "capture.local:9090", "", true},
		{"localhost", "capture.local:9090", "http://localhost:3000", true},
		{"loopback v4", "capture.local:9090", "http://127.0.0.1:8080", true},
		{"matching host", "capture.local:9090", "http://capture.local", true},
		{"private range", "capture.local:9090", "http://192.168.1.50:9090", true},
		{"public origin", "capture.local:9090", "https://evil.example.com", false},
		{"public IP", "capture.local:9090", "http://8.8.8.8", false},
		{"garbage origin", "capture.local:9090", "http://[::1", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, checkOrigin(originRequest(t, tc.host, tc.origin)))
		})
	}
}
