package slogx_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/oauthgw/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &out))
	return out
}

func TestHTTPMiddleware(t *testing.T) {
	t.Run("logs status bytes and annotations", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slogx.New(slogx.Config{Service: "test", Format: "json", Output: &buf})

		h := slogx.HTTPMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = slogx.Annotate(r.Context(), "sub", "user-1")
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte("short and stout"))
		}))

		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		req.Header.Set(slogx.RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, "abc-123", rec.Header().Get(slogx.RequestIDHeader))

		line := lastLine(t, &buf)
		require.Equal(t, "http_request", line["msg"])
		require.Equal(t, float64(http.StatusTeapot), line["status"])
		require.Equal(t, float64(len("short and stout")), line["bytes"])
		require.Equal(t, "abc-123", line["req_id"])
		require.Equal(t, "user-1", line["sub"])
		require.Equal(t, "test", line["service"])
	})

	t.Run("generates request id", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slogx.New(slogx.Config{Output: &buf})

		h := slogx.HTTPMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotEmpty(t, rec.Header().Get(slogx.RequestIDHeader))
		require.Equal(t, float64(http.StatusOK), lastLine(t, &buf)["status"])
	})
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, "DEBUG", slogx.ParseLevel("debug").String())
	require.Equal(t, "WARN", slogx.ParseLevel("Warning").String())
	require.Equal(t, "INFO", slogx.ParseLevel("nonsense").String())
}
