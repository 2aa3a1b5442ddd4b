package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/lostfound/internal/auth"
)

// Request timeouts.
const (
	DefaultTimeout = 30 * time.Second
	UploadTimeout  = 60 * time.Second
)

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 10 << 20

// Client talks to the lost-and-found REST service.
type Client struct {
	baseURL       string
	http          *http.Client
	session       auth.Session
	timeout       time.Duration
	uploadTimeout time.Duration
	now           func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeouts overrides the ordinary and upload request timeouts.
func WithTimeouts(ordinary, upload time.Duration) Option {
	return func(c *Client) {
		c.timeout = ordinary
		c.uploadTimeout = upload
	}
}

// WithClock sets the clock used for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a client for the service at baseURL. The /api prefix is added
// when missing.
func New(baseURL string, session auth.Session, opts ...Option) *Client {
	base := strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(base, "/api") {
		base += "/api"
	}

	c := &Client{
		baseURL:       base,
		http:          &http.Client{},
		session:       session,
		timeout:       DefaultTimeout,
		uploadTimeout: UploadTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root including the /api prefix.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// requireAuth fails before any network traffic when no usable token exists.
func (c *Client) requireAuth() error {
	if c.session == nil || !auth.Usable(c.session, c.now()) {
		return newError(ErrAuthRequired, 0, "", nil)
	}
	return nil
}

// doJSON sends a JSON request and decodes a JSON response into out.
// A nil body sends no payload; a nil out discards the response body.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return newError(ErrValidation, 0, "", fmt.Errorf("encoding request: %w", err))
		}
		reader = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return newError(ErrValidation, 0, "", fmt.Errorf("building request: %w", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	data, err := c.send(req)
	if err != nil {
		return err
	}
	return decode(data, out)
}

// send attaches common headers, performs the request and maps failures to
// the error taxonomy. The request context must already carry its deadline.
func (c *Client) send(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.session != nil {
		if token := c.session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		e := fromTransport(err)
		slog.Debug("api request failed", "method", req.Method, "path", req.URL.Path, "error", err)
		return nil, e
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fromTransport(err)
	}

	slog.Debug("api request", "method", req.Method, "path", req.URL.Path,
		"status", resp.StatusCode, "duration", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := fromResponse(resp.StatusCode, data)
		if resp.StatusCode == http.StatusUnauthorized && c.session != nil {
			c.session.Invalidate()
		}
		return nil, e
	}
	return data, nil
}

// decode unmarshals a success body. Empty bodies are accepted for
// operations whose response carries nothing required.
func decode(data []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return newError(ErrServer, 0, "Unexpected response from server.", fmt.Errorf("decoding response: %w", err))
	}
	return nil
}
