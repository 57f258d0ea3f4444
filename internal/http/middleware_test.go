package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{
			name:     "forwarded single IP",
			headers:  map[string]string{"X-Forwarded-For": "192.168.1.1"},
			expected: "192.168.1.1",
		},
		{
			name:     "forwarded takes first",
			headers:  map[string]string{"X-Forwarded-For": "203.0.113.1 , 198.51.100.1"},
			expected: "203.0.113.1",
		},
		{
			name:     "forwarded wins over real ip",
			headers:  map[string]string{"X-Forwarded-For": "203.0.113.1", "X-Real-IP": "192.168.1.100"},
			expected: "203.0.113.1",
		},
		{
			name:     "real ip",
			headers:  map[string]string{"X-Real-IP": "192.168.1.100"},
			expected: "192.168.1.100",
		},
		{
			name:       "IPv4 remote addr",
			remoteAddr: "192.168.1.1:54321",
			expected:   "192.168.1.1",
		},
		{
			name:       "IPv6 remote addr",
			remoteAddr: "[2001:db8::1]:54321",
			expected:   "2001:db8::1",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "192.168.1.1",
			expected:   "192.168.1.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if tt.remoteAddr != "" {
				r.RemoteAddr = tt.remoteAddr
			}

			require.Equal(t, tt.expected, ExtractClientIP(r))
		})
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("inside")
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/scan", nil)
	r.Header.Set(RequestIDHeader, "req-1")
	r.RemoteAddr = "10.0.0.1:1234"

	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusTeapot, w.Code)
	require.Equal(t, "req-1", w.Header().Get(RequestIDHeader))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var inside, access map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &inside))
	require.NoError(t, json.Unmarshal(lines[1], &access))

	require.Equal(t, "req-1", inside["request_id"])
	require.Equal(t, "10.0.0.1", inside["client_ip"])
	require.Equal(t, "POST", access["method"])
	require.Equal(t, "/api/scan", access["path"])
	require.EqualValues(t, http.StatusTeapot, access["status"])
}

func TestRequestLogger_GeneratesRequestID(t *testing.T) {
	handler := RequestLogger(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Header().Get(RequestIDHeader))
}
