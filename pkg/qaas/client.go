// Package qaas implements a low-level client for a Quantum-as-a-Service
// control plane.
//
// The client covers platform discovery, session leasing, model upload and
// job tracking. It is intentionally thin: every call is one authenticated
// HTTP round-trip with uniform error surfacing, and no retries. Retry and
// backoff policy belongs to callers, which receive classified errors to
// decide on.
package qaas

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

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/openqaas/goqaas/internal/version"
)

// DefaultBaseURL is the production control-plane endpoint.
const DefaultBaseURL = "https://api.scaleway.com/qaas/v1alpha1"

// requestTimeout bounds every control-plane round-trip.
const requestTimeout = 10 * time.Second

// authHeader carries the static API token on every control-plane request.
const authHeader = "X-Auth-Token"

// Config configures a Client.
type Config struct {
	// ProjectID scopes sessions and jobs to a project (required).
	ProjectID string

	// SecretKey is the API token sent on every request (required).
	SecretKey string

	// BaseURL is the control-plane endpoint.
	// Defaults to DefaultBaseURL when empty.
	BaseURL string
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ProjectID) == "" {
		return &ConfigError{Field: "ProjectID", Message: "project id is required"}
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return &ConfigError{Field: "SecretKey", Message: "secret key is required"}
	}
	return nil
}

// ConfigError represents a client configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "qaas config: " + e.Field + ": " + e.Message
}

// Option customizes a Client beyond the required Config.
type Option func(*Client)

// WithLogger sets the logger used for non-fatal events.
// The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
// The per-request timeout is still enforced via context deadlines.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRateLimit caps outgoing control-plane requests per second.
// Zero or negative means unlimited.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// Client issues authenticated requests against the QaaS control plane.
//
// A Client holds only read-only configuration after construction and is
// safe for concurrent use. Multiple polling loops may share one Client.
type Client struct {
	projectID  string
	secretKey  string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// New creates a Client from cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		projectID:  cfg.ProjectID,
		secretKey:  cfg.SecretKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured control-plane endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ProjectID returns the project scope of this client.
func (c *Client) ProjectID() string {
	return c.projectID
}

// request performs one control-plane round-trip.
//
// in is marshaled as the JSON request body when non-nil; out receives the
// decoded JSON response when non-nil. Any network failure or non-2xx
// response is returned as a *TransportError.
func (c *Client) request(ctx context.Context, method, path string, query url.Values, in, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &TransportError{Method: method, Path: path, Err: err}
		}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set(authHeader, c.secretKey)
	req.Header.Set("User-Agent", version.UserAgent())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("qaas request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Read a bounded amount of the body for the error message; the
		// control plane returns short JSON error envelopes.
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &TransportError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(msg)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Method: method, Path: path, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
