// Package upstream talks to the REST service that owns parking and taxi data.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"hotel-console-backend/config"
	"hotel-console-backend/internal/logger"
	"hotel-console-backend/internal/metrics"
)

// ErrUnauthorized is returned when the upstream rejects the bearer token.
var ErrUnauthorized = errors.New("upstream: unauthorized")

// Error is a non-2xx upstream reply or an envelope with success=false.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream: status %d", e.Status)
	}
	return fmt.Sprintf("upstream: status %d: %s", e.Status, e.Message)
}

// envelope is the wrapper around every upstream reply.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Client is a bearer-token JSON client. It holds no credentials of its own;
// every call takes the token of the session it acts for.
type Client struct {
	baseURL string
	headers map[string]string
	http    *http.Client
}

// New builds a client from the upstream config, honouring an optional proxy.
func New(cfg config.UpstreamConfig) *Client {
	transport := &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			logger.Get(context.Background()).Warnf("Invalid upstream proxy URL %q: %v. Client will not use a proxy.", cfg.HTTPProxy, err)
		} else {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		headers: cfg.Headers,
		http: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
	}
}

// do sends one request and decodes the envelope's data into out. endpoint is
// the route template used as the metrics label.
func (c *Client) do(ctx context.Context, token, method, endpoint, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request payload: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.UpstreamRequests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s %s: %w", method, endpoint, ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Message: env.Message}
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to unmarshal api response: %w", decodeErr)
	}
	if !env.Success {
		return &Error{Status: resp.StatusCode, Message: env.Message}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s data: %w", endpoint, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, token, endpoint, path string, query url.Values, out any) error {
	return c.do(ctx, token, http.MethodGet, endpoint, path, query, nil, out)
}
