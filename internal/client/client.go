package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/patrol/internal/server"
)

// Config holds common client configuration
type Config struct {
	ServerURL string
	Token     string
	Timeout   time.Duration

	// MaxTries bounds attempts for requests answered with 503.
	MaxTries        uint
	InitialInterval time.Duration
}

// DefaultConfig returns a default client configuration
func DefaultConfig() Config {
	return Config{
		ServerURL:       "http://localhost:8080",
		Timeout:         30 * time.Second,
		MaxTries:        5,
		InitialInterval: 250 * time.Millisecond,
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details json.RawMessage
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("%s (%d): %s %s", e.Code, e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

// Transient reports whether the server asked the client to retry.
func (e *APIError) Transient() bool {
	return e.Status == http.StatusServiceUnavailable
}

// Client talks to the patrol JSON API.
type Client struct {
	cfg  Config
	http *http.Client
}

// New creates a client.
func New(cfg Config) *Client {
	if cfg.MaxTries == 0 {
		cfg.MaxTries = 1
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = DefaultConfig().InitialInterval
	}

	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// Token exchanges a username and password for a bearer token.
func (c *Client) Token(ctx context.Context, username, password string) (*server.TokenResponse, error) {
	var resp server.TokenResponse
	err := c.do(ctx, http.MethodPost, "/api/token", server.TokenRequest{Username: username, Password: password}, &resp)
	return &resp, err
}

// CheckRole describes the token's caller.
func (c *Client) CheckRole(ctx context.Context) (*server.RoleResponse, error) {
	var resp server.RoleResponse
	err := c.do(ctx, http.MethodGet, "/api/check-role", nil, &resp)
	return &resp, err
}

// Assignment returns the guard's assignment and run state.
func (c *Client) Assignment(ctx context.Context) (*server.AssignmentViewResponse, error) {
	var resp server.AssignmentViewResponse
	err := c.do(ctx, http.MethodGet, "/api/assignment", nil, &resp)
	return &resp, err
}

// StartRun starts a run on the guard's route.
func (c *Client) StartRun(ctx context.Context) (*server.RunResponse, error) {
	var resp server.RunResponse
	err := c.do(ctx, http.MethodPost, "/api/start-run", nil, &resp)
	return &resp, err
}

// Scan records a checkpoint scan. Retrying a scan is safe, the server answers a
// repeated code with the original record.
func (c *Client) Scan(ctx context.Context, code string) (*server.ScanOutcomeResponse, error) {
	var resp server.ScanOutcomeResponse
	err := c.do(ctx, http.MethodPost, "/api/scan", server.ScanRequest{Code: code}, &resp)
	return &resp, err
}

// EndShift closes the guard's active run, if any.
func (c *Client) EndShift(ctx context.Context) (*server.EndShiftResponse, error) {
	var resp server.EndShiftResponse
	err := c.do(ctx, http.MethodPost, "/api/end-shift", nil, &resp)
	return &resp, err
}

// DailyReport fetches a guard's report. An empty date means today on the server.
func (c *Client) DailyReport(ctx context.Context, guardID uuid.UUID, date string) (*server.ReportResponse, error) {
	q := url.Values{"guard_id": {guardID.String()}}
	if date != "" {
		q.Set("date", date)
	}

	var resp server.ReportResponse
	err := c.do(ctx, http.MethodGet, "/api/daily-report?"+q.Encode(), nil, &resp)
	return &resp, err
}

// CreateRoute creates a route.
func (c *Client) CreateRoute(ctx context.Context, req server.CreateRouteRequest) (*server.RouteResponse, error) {
	var resp server.RouteResponse
	err := c.do(ctx, http.MethodPost, "/api/routes", req, &resp)
	return &resp, err
}

// FreezeTenant freezes a tenant.
func (c *Client) FreezeTenant(ctx context.Context, tenantID uuid.UUID) (*server.TenantResponse, error) {
	var resp server.TenantResponse
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/tenants/%s/freeze", tenantID), nil, &resp)
	return &resp, err
}

// UnfreezeTenant lifts a freeze.
func (c *Client) UnfreezeTenant(ctx context.Context, tenantID uuid.UUID) (*server.TenantResponse, error) {
	var resp server.TenantResponse
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/tenants/%s/unfreeze", tenantID), nil, &resp)
	return &resp, err
}

// do sends the request, retrying with exponential backoff while the server answers
// 503. Any other failure is returned as is.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.InitialInterval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := c.send(ctx, method, path, payload, out)
		if apiErr, ok := err.(*APIError); ok && apiErr.Transient() {
			log.Debug().Str("path", path).Msg("Server unavailable, retrying")
			return struct{}{}, err
		}
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(b), backoff.WithMaxTries(c.cfg.MaxTries))

	return err
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimSuffix(c.cfg.ServerURL, "/")+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		var errResp struct {
			Code    string          `json:"code"`
			Message string          `json:"message"`
			Details json.RawMessage `json:"details"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
			apiErr.Code, apiErr.Message, apiErr.Details = errResp.Code, errResp.Message, errResp.Details
		} else {
			apiErr.Code, apiErr.Message = "http_error", resp.Status
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
