// Package baas is a thin client for the hosted backend-as-a-service the
// marketplace delegates to: the GoTrue-style auth API under /auth/v1 and the
// PostgREST-style row API under /rest/v1.
package baas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	authPrefix = "/auth/v1"
	restPrefix = "/rest/v1"

	defaultTimeout = 10 * time.Second
	baseBackoff    = 100 * time.Millisecond
)

// Config holds the connection settings for the BaaS project.
type Config struct {
	URL     string
	AnonKey string
	Timeout time.Duration
	// MaxRetries applies to idempotent requests that fail with 429/5xx or a
	// transport error.
	MaxRetries int
	// HTTPClient overrides the default instrumented client (tests).
	HTTPClient *http.Client
}

// Client talks to one BaaS project.
type Client struct {
	baseURL    *url.URL
	anonKey    string
	http       *http.Client
	maxRetries int
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("baas: url is required")
	}
	if cfg.AnonKey == "" {
		return nil, errors.New("baas: anon key is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("baas: invalid url: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return &Client{
		baseURL:    base,
		anonKey:    cfg.AnonKey,
		http:       hc,
		maxRetries: max(cfg.MaxRetries, 0),
		logger:     logger.With(slog.String("component", "baas")),
	}, nil
}

// request describes one API call.
type request struct {
	method string
	path   string
	query  url.Values
	body   any
	// token is the caller's access token; the anon key is used when empty.
	token  string
	header http.Header
}

// do executes req and decodes a 2xx JSON body into out (when non-nil).
// Non-2xx responses are returned as *Error.
func (c *Client) do(ctx context.Context, req request, out any) (*http.Response, error) {
	var payload []byte
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("baas: encode request: %w", err)
		}
		payload = b
	}

	u := *c.baseURL
	u.Path = c.baseURL.Path + req.path
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	attempts := 1
	if isIdempotent(req.method) {
		attempts += c.maxRetries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, baseBackoff<<(attempt-1)); err != nil {
				return nil, err
			}
		}

		resp, err := c.once(ctx, req, u.String(), payload)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("baas: %s %s: %w", req.method, req.path, err)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			defer resp.Body.Close()
			if out != nil && resp.StatusCode != http.StatusNoContent {
				if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
					return resp, fmt.Errorf("baas: decode response: %w", err)
				}
			}
			return resp, nil
		}

		apiErr := decodeError(resp)
		resp.Body.Close()
		if !retryable(resp.StatusCode) {
			return resp, apiErr
		}
		lastErr = apiErr
		c.logger.Warn("baas request failed, retrying",
			slog.String("method", req.method),
			slog.String("path", req.path),
			slog.Int("status", resp.StatusCode),
			slog.Int("attempt", attempt+1),
		)
	}
	return nil, lastErr
}

func (c *Client) once(ctx context.Context, req request, target string, payload []byte) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, err
	}

	token := req.token
	if token == "" {
		token = c.anonKey
	}
	httpReq.Header.Set("apikey", c.anonKey)
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range req.header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	return c.http.Do(httpReq)
}

func isIdempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
