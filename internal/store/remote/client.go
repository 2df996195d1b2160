// Package remote implements store.Backend over the taskboard record API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/taskboard/internal/store"
	"github.com/nhle/taskboard/internal/wire"
)

// ErrAuth is returned when the server rejects the API token.
var ErrAuth = errors.New("authentication failed")

// Client is a thin HTTP client for the record API. It handles Bearer token
// authentication, request IDs, the response envelope, and automatic retry
// with exponential backoff on HTTP 429.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetries int
	backoff    func(attempt int) time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithBackoff overrides the wait between rate-limited attempts.
func WithBackoff(fn func(attempt int) time.Duration) Option {
	return func(c *Client) { c.backoff = fn }
}

// NewClient creates a client for the API rooted at baseURL
// (e.g. http://localhost:8080). An empty token disables the
// Authorization header.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: 3,
		backoff:    exponentialBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends a request and decodes the envelope. Non-2xx responses are
// converted to errors, using the envelope code where present.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body any,
) (*wire.Envelope, error) {
	url := c.baseURL + path

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		payload = data
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", uuid.NewString())
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("executing request %s %s: %w", method, path, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("reading response body: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429) on %s %s", method, path)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryAfter(resp, attempt)):
				continue
			}
		}

		var env wire.Envelope
		decodeErr := json.Unmarshal(respBody, &env)

		if resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: check the API token for %s", ErrAuth, c.baseURL)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if decodeErr == nil && env.Message != "" {
				return nil, fmt.Errorf("%s %s (%d): %w",
					method, path, resp.StatusCode, codeError(env.Code, env.Message))
			}
			if resp.StatusCode == http.StatusNotFound {
				return nil, fmt.Errorf("%s %s: %w", method, path, store.ErrNotFound)
			}
			return nil, fmt.Errorf("unexpected status %d on %s %s: %s",
				resp.StatusCode, method, path, string(respBody))
		}

		if decodeErr != nil {
			return nil, fmt.Errorf("unmarshaling response from %s %s: %w", method, path, decodeErr)
		}
		if !env.Success {
			return nil, fmt.Errorf("%s %s: %w", method, path, codeError(env.Code, env.Message))
		}

		return &env, nil
	}

	return nil, fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

// codeError maps an envelope error code onto the store sentinels.
func codeError(code, message string) error {
	switch code {
	case wire.CodeNotFound:
		return fmt.Errorf("%s: %w", message, store.ErrNotFound)
	case wire.CodeUnknownCategory:
		return fmt.Errorf("%s: %w", message, store.ErrUnknownCategory)
	case wire.CodeUnauthorized:
		return fmt.Errorf("%s: %w", message, ErrAuth)
	default:
		if message == "" {
			message = "request failed"
		}
		return errors.New(message)
	}
}

// retryAfter reads the Retry-After header and falls back to the
// configured backoff.
func (c *Client) retryAfter(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return c.backoff(attempt)
}

// exponentialBackoff waits 1s, 2s, 4s, ... capped at 30s.
func exponentialBackoff(attempt int) time.Duration {
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}
