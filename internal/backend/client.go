// Package backend is the typed HTTP client for the storefront REST API.
// It is the only place that talks to the network: one operation per endpoint,
// explicit result and error values, no implicit state. Authorization failures
// are turned into ErrUnauthorized and reported through the invalidate hook so
// the session manager can force logout.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/veskr/storefront/internal/domain/catalog"
	"github.com/veskr/storefront/internal/domain/order"
	"github.com/veskr/storefront/internal/domain/session"
)

// Compile-time checks that the client covers every consumer-facing contract.
var (
	_ order.API        = (*Client)(nil)
	_ catalog.API      = (*Client)(nil)
	_ session.Verifier = (*Client)(nil)
)

// maxBodyBytes caps how much of a response body is read into memory.
const maxBodyBytes = 4 << 20

// TokenFunc supplies the current bearer token. Empty means unauthenticated
// and the Authorization header is omitted.
type TokenFunc func() string

// InvalidateFunc is called once per request when the backend rejects the
// token with 401.
type InvalidateFunc func(ctx context.Context)

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root, e.g. "http://localhost:5000/api".
	BaseURL string

	// Timeout bounds each request end to end. Zero means 30s.
	Timeout time.Duration

	// Transport is the HTTP transport chain. Nil means http.DefaultTransport.
	Transport http.RoundTripper
}

// Client implements the REST contract. All methods are safe for concurrent
// use; the client itself holds no mutable state.
type Client struct {
	base       string
	http       *http.Client
	token      TokenFunc
	invalidate InvalidateFunc
}

// NewClient creates a Client. token must not be nil; invalidate may be nil
// when no session teardown is needed (e.g. in one-shot tools before login).
func NewClient(cfg Config, token TokenFunc, invalidate InvalidateFunc) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &Client{
		base: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		token:      token,
		invalidate: invalidate,
	}
}

// do performs one request. body is JSON-encoded when non-nil; the response is
// decoded into out when non-nil. Non-2xx responses become ErrUnauthorized or
// *APIError; transport failures are wrapped and returned as-is.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reqBody)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return errors.Wrap(err, "read response")
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if c.invalidate != nil {
			c.invalidate(ctx)
		}
		return ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data),
		}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return errors.Wrapf(err, "decode %s %s response", method, path)
		}
	}
	return nil
}
