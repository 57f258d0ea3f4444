package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/patrol/internal/server"
)

func testConfig(url string) Config {
	return Config{
		ServerURL:       url,
		Token:           "token",
		Timeout:         5 * time.Second,
		MaxTries:        3,
		InitialInterval: time.Millisecond,
	}
}

func TestClient_RetriesUnavailable(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer token", r.Header.Get("Authorization"))

		var req server.ScanRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "A", req.Code)

		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(server.ErrorResponse{Code: "transient", Message: "temporary store failure"})
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(server.ScanOutcomeResponse{Created: true, Total: 3})
	}))
	defer ts.Close()

	out, err := New(testConfig(ts.URL)).Scan(context.Background(), "A")
	require.NoError(t, err)
	require.True(t, out.Created)
	require.EqualValues(t, 3, calls.Load())
}

func TestClient_GivesUpAfterMaxTries(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	_, err := New(testConfig(ts.URL)).StartRun(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.True(t, apiErr.Transient())
	require.EqualValues(t, 3, calls.Load())
}

func TestClient_DoesNotRetryOtherErrors(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code":    "wrong_order",
			"message": "expected checkpoint 1, got 2",
			"details": server.WrongOrderDetails{Expected: 1, Got: 2},
		})
	}))
	defer ts.Close()

	_, err := New(testConfig(ts.URL)).Scan(context.Background(), "B")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "wrong_order", apiErr.Code)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.JSONEq(t, `{"expected":1,"got":2}`, string(apiErr.Details))
	require.EqualValues(t, 1, calls.Load())
}

func TestClient_DailyReportQuery(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/daily-report", r.URL.Path)
		require.Equal(t, "2026-03-14", r.URL.Query().Get("date"))
		require.NotEmpty(t, r.URL.Query().Get("guard_id"))
		_ = json.NewEncoder(w).Encode(server.ReportResponse{Date: "2026-03-14"})
	}))
	defer ts.Close()

	report, err := New(testConfig(ts.URL)).DailyReport(context.Background(), uuid.New(), "2026-03-14")
	require.NoError(t, err)
	require.Equal(t, "2026-03-14", report.Date)
}
