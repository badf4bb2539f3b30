// Package ghl is a client for the LeadConnector calendar and CRM API.
package ghl

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

	"github.com/ManuelReschke/SlotSync/internal/pkg/env"
	"github.com/ManuelReschke/SlotSync/internal/pkg/syncerr"
	"github.com/cenkalti/backoff/v5"
	"github.com/gofiber/fiber/v2/log"
)

const (
	defaultAPIBaseURL = "https://services.leadconnectorhq.com"
	defaultAPIVersion = "2021-07-28"
	defaultAppName    = "SlotSync"

	maxBodyBytes = 4 << 20
)

type Client struct {
	BaseURL string
	Version string
	AppName string

	// MaxRetries bounds the attempts for idempotent requests. Zero disables retries.
	MaxRetries     uint
	RetryBaseDelay time.Duration

	HTTPClient *http.Client
}

func NewClientFromEnv() *Client {
	return &Client{
		BaseURL:        strings.TrimRight(strings.TrimSpace(env.GetEnv("GHL_API_BASE_URL", defaultAPIBaseURL)), "/"),
		Version:        strings.TrimSpace(env.GetEnv("GHL_API_VERSION", defaultAPIVersion)),
		AppName:        strings.TrimSpace(env.GetEnv("GHL_APP_NAME", defaultAppName)),
		MaxRetries:     uint(max(env.GetIntEnv("HTTP_MAX_RETRIES", 3), 0)),
		RetryBaseDelay: 500 * time.Millisecond,
		HTTPClient: &http.Client{
			Timeout: time.Duration(env.GetIntEnv("HTTP_TIMEOUT_SECONDS", 15)) * time.Second,
		},
	}
}

type request struct {
	method string
	path   string
	query  url.Values
	token  string
	body   any
}

// do sends r and decodes a 2xx JSON response into out. GET requests are
// retried on network errors, 429 and 5xx.
func (c *Client) do(ctx context.Context, r request, out any) error {
	if strings.TrimSpace(r.token) == "" {
		return fmt.Errorf("ghl %s %s: %w", r.method, r.path, syncerr.ErrTokenUnavailable)
	}

	var payload []byte
	if r.body != nil {
		var err error
		if payload, err = json.Marshal(r.body); err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	op := func() ([]byte, error) {
		body, err := c.send(ctx, r, payload)
		if err == nil {
			return body, nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Retryable() {
			return nil, backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	tries := uint(1)
	if r.method == http.MethodGet {
		tries += c.MaxRetries
	}
	body, err := backoff.Retry(ctx, op, c.retryOptions(r, tries)...)
	if err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			return perm.Err
		}
		return err
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("ghl %s %s: decode response: %w: %w", r.method, r.path, syncerr.ErrRemoteFetchFailed, err)
	}
	return nil
}

func (c *Client) retryOptions(r request, tries uint) []backoff.RetryOption {
	b := backoff.NewExponentialBackOff()
	if c.RetryBaseDelay > 0 {
		b.InitialInterval = c.RetryBaseDelay
	}
	return []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxTries(tries),
		backoff.WithMaxElapsedTime(2 * time.Minute),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warnf("[GHL] %s %s failed, retrying in %s: %v", r.method, r.path, next, err)
		}),
	}
}

func (c *Client) send(ctx context.Context, r request, payload []byte) ([]byte, error) {
	u, err := url.Parse(c.baseURL() + r.path)
	if err != nil {
		return nil, err
	}
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("Version", c.version())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("ghl %s %s: %w: %w", r.method, r.path, syncerr.ErrRemoteFetchFailed, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Method: r.method, Path: r.path, Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func (c *Client) baseURL() string {
	if c.BaseURL == "" {
		return defaultAPIBaseURL
	}
	return strings.TrimRight(c.BaseURL, "/")
}

func (c *Client) version() string {
	if c.Version == "" {
		return defaultAPIVersion
	}
	return c.Version
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}
