package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// DefaultBaseURL is the API root used when none is configured.
const DefaultBaseURL = "http://localhost:8080/api"

// Session is the part of the session the client needs: the bearer token
// and a way to sign out when the backend rejects that token.
type Session interface {
	Token() string
	ClearIf(token string) bool
}

// Client is a thin HTTP client for the task-tracker REST API. It attaches
// the session's bearer token, tags each request with an X-Request-ID and
// clears the session when the backend rejects the token it was sent.
// Requests are not retried unless WithMaxRetries enables 429 backoff.
type Client struct {
	baseURL    string
	session    Session
	httpClient *http.Client
	maxRetries int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithMaxRetries sets how many times a 429 response is retried. The
// default is 0.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// NewClient creates a client for the API rooted at baseURL (including the
// /api prefix). session may be nil for unauthenticated use.
func NewClient(baseURL string, session Session, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type request struct {
	method string
	path   string
	query  url.Values
	body   interface{}
	// anonymous requests carry no token and never clear the session.
	anonymous bool
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, request{method: http.MethodGet, path: path}, result)
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, request{method: http.MethodPost, path: path, body: body}, result)
}

func (c *Client) put(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, request{method: http.MethodPut, path: path, body: body}, result)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: path}, nil)
}

// do is the core HTTP method that builds the request, handles auth,
// optional 429 backoff, and JSON (de)serialization.
func (c *Client) do(ctx context.Context, r request, result interface{}) error {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var payload []byte
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		payload = data
	}

	requestID := uuid.NewString()
	logger := log.WithFields(log.Fields{
		"method":     r.method,
		"path":       r.path,
		"request_id": requestID,
	})

	for attempt := 0; ; attempt++ {
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, r.method, target, bodyReader)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", requestID)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		var token string
		if !r.anonymous && c.session != nil {
			token = c.session.Token()
			if token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			logger.WithError(err).Debug("request failed")
			return fmt.Errorf("executing request %s %s: %w", r.method, r.path, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("reading response body: %w", readErr)
		}

		logger.WithFields(log.Fields{
			"status":   resp.StatusCode,
			"duration": time.Since(start),
		}).Debug("request complete")

		if resp.StatusCode == http.StatusTooManyRequests && attempt < c.maxRetries {
			waitDuration := retryAfterDuration(resp, attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitDuration):
				continue
			}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := newAPIError(resp.StatusCode, r.method, r.path, respBody)
			if resp.StatusCode == http.StatusUnauthorized && !r.anonymous && c.session != nil {
				if c.session.ClearIf(token) {
					logger.Info("token rejected, signing out")
				} else {
					logger.Debug("stale token rejected, session kept")
				}
			}
			return apiErr
		}

		// No content to parse (e.g. 204).
		if result == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(respBody)) == 0 {
			return nil
		}

		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshaling response from %s %s: %w", r.method, r.path, err)
		}

		return nil
	}
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	// Exponential backoff: 1s, 2s, 4s, ...
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}

func idPath(format string, ids ...int64) string {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return fmt.Sprintf(format, args...)
}
