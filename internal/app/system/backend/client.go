// internal/app/system/backend/client.go
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/healthdash/internal/app/system/metrics"
	"github.com/dalemusser/healthdash/internal/domain/healthdata"
	"github.com/dalemusser/healthdash/internal/domain/models"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BreakerName labels the breaker in logs and in the cb_state gauge.
const BreakerName = "health_api"

// maxPayloadBytes bounds a my-data response.
const maxPayloadBytes = 32 << 20

// Config holds the upstream connection settings.
type Config struct {
	BaseURL string

	// Timeout bounds a single request including reading the body.
	Timeout time.Duration

	// BreakerFailures is the number of consecutive failures that opens the breaker.
	BreakerFailures uint32

	// BreakerOpenFor is how long the breaker stays open before letting a trial request through.
	BreakerOpenFor time.Duration
}

// Client talks to the health API. Transport errors and 5xx responses count
// against a circuit breaker; 4xx responses do not.
type Client struct {
	base    *url.URL
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[*http.Response]
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New creates a Client. m may be nil.
func New(cfg Config, logger *zap.Logger, m *metrics.Metrics) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("backend url %q: scheme must be http or https", cfg.BaseURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("backend url %q: missing host", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerOpenFor <= 0 {
		cfg.BreakerOpenFor = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		base:    base,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		metrics: m,
	}

	failures := cfg.BreakerFailures
	c.cb = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        BreakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("health api circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			m.SetCircuitBreakerState(name, stateValue(to))
		},
		// A caller giving up is not a sign the upstream is unhealthy.
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled)
		},
	})
	m.SetCircuitBreakerState(BreakerName, metrics.StateClosed)

	return c, nil
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return metrics.StateOpen
	case gobreaker.StateHalfOpen:
		return metrics.StateHalfOpen
	}
	return metrics.StateClosed
}

// BreakerState returns "closed", "half-open" or "open".
func (c *Client) BreakerState() string {
	return c.cb.State().String()
}

// endpointURL appends segments to the base URL. Each segment is a raw value
// and is escaped exactly once, so a "/" inside one cannot split the path.
func (c *Client) endpointURL(segments ...string) string {
	u := *c.base
	raw := c.base.EscapedPath()
	for _, seg := range segments {
		u.Path += "/" + seg
		raw += "/" + url.PathEscape(seg)
	}
	u.RawPath = raw
	return u.String()
}

// do sends one request through the breaker. The returned response always has
// a status below 500; the caller closes its body.
func (c *Client) do(ctx context.Context, endpoint, method string, path []string, token string, body any) (*http.Response, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", endpoint, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpointURL(path...), rdr)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.cb.Execute(func() (*http.Response, error) {
		r, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		if r.StatusCode >= 500 {
			defer r.Body.Close()
			return nil, newStatusError(endpoint, r)
		}
		return r, nil
	})
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.metrics.UpstreamRequest(endpoint, "open", elapsed)
			return nil, ErrCircuitOpen
		}
		outcome := "transport_error"
		var se *StatusError
		if errors.As(err, &se) {
			outcome = "server_error"
		}
		c.metrics.UpstreamRequest(endpoint, outcome, elapsed)
		c.logger.Warn("health api request failed",
			zap.String("endpoint", endpoint),
			zap.String("request_id", requestID),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}

	outcome := "ok"
	if resp.StatusCode >= 400 {
		outcome = "client_error"
	}
	c.metrics.UpstreamRequest(endpoint, outcome, elapsed)
	return resp, nil
}

func decodeJSON(endpoint string, r io.Reader, out any) error {
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// Login exchanges credentials for a bearer token.
// Any 4xx answer is reported as ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	const endpoint = "login"
	resp, err := c.do(ctx, endpoint, http.MethodPost, []string{"login"}, "", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", ErrInvalidCredentials
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := decodeJSON(endpoint, resp.Body, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Token) == "" {
		return "", errors.New("login: no token returned")
	}
	return out.Token, nil
}

// MyData fetches the signed-in participant's full health payload.
func (c *Client) MyData(ctx context.Context, token string) (*healthdata.Payload, error) {
	const endpoint = "my_data"
	resp, err := c.do(ctx, endpoint, http.MethodGet, []string{"api", "my-data"}, token, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, statusErr(endpoint, resp)
	}
	p, err := healthdata.Decode(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	return p, nil
}

// MyDataOrEmpty is MyData with a 404, which the health API returns for a
// participant whose export has not been processed yet, reported as an empty payload.
func (c *Client) MyDataOrEmpty(ctx context.Context, token string) (*healthdata.Payload, error) {
	p, err := c.MyData(ctx, token)
	if IsNotFound(err) {
		return &healthdata.Payload{}, nil
	}
	return p, err
}

// MySummary fetches the upstream's latest-reading summary.
func (c *Client) MySummary(ctx context.Context, token string) (healthdata.Summary, error) {
	const endpoint = "my_summary"
	resp, err := c.do(ctx, endpoint, http.MethodGet, []string{"api", "my-summary"}, token, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, statusErr(endpoint, resp)
	}
	var out healthdata.Summary
	if err := decodeJSON(endpoint, resp.Body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListUsers returns every account known to the health API. Admin only.
func (c *Client) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	const endpoint = "admin_users"
	resp, err := c.do(ctx, endpoint, http.MethodGet, []string{"admin", "users"}, token, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, statusErr(endpoint, resp)
	}
	var out struct {
		Users []models.User `json:"users"`
	}
	if err := decodeJSON(endpoint, resp.Body, &out); err != nil {
		return nil, err
	}
	if out.Users == nil {
		out.Users = []models.User{}
	}
	return out.Users, nil
}

// ResetPassword sets a new password for username. Admin only.
func (c *Client) ResetPassword(ctx context.Context, token, username, newPassword string) error {
	const endpoint = "admin_reset_password"
	resp, err := c.do(ctx, endpoint, http.MethodPost, []string{"admin", "users", "reset-password"}, token, map[string]string{
		"username":     username,
		"new_password": newPassword,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusErr(endpoint, resp)
	}
	return nil
}

// DeleteUser removes username from the health API. Admin only.
func (c *Client) DeleteUser(ctx context.Context, token, username string) error {
	const endpoint = "admin_delete_user"
	resp, err := c.do(ctx, endpoint, http.MethodDelete, []string{"admin", "users", username}, token, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusErr(endpoint, resp)
	}
	return nil
}

// Ping checks the health API's /health endpoint. It bypasses the breaker so
// readiness reports the upstream's real state.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpointURL("health"), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.CopyN(io.Discard, resp.Body, 64)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("health api probe: status %d", resp.StatusCode)
	}
	return nil
}
