package binance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/zeromicro/go-zero/core/logx"
)

const (
	defaultBaseURL     = "https://api.binance.us"
	defaultHTTPTimeout = 10 * time.Second
	defaultMaxRetries  = 3
	defaultRetryWait   = 200 * time.Millisecond
	maxRetryWait       = 5 * time.Second
)

// ErrSymbolNotFound indicates the exchange rejected the symbol.
var ErrSymbolNotFound = errors.New("binance: symbol not found")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Code       int    `json:"code"`
	Message    string `json:"msg"`
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("binance: http status %d: code=%d msg=%s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("binance: http status %d", e.StatusCode)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode == http.StatusTeapot || e.StatusCode >= 500
}

// Client wraps access to the Binance.US public REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryWait  time.Duration
}

// Option configures a new Client.
type Option func(*Client)

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL overrides the API host.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithMaxRetries adjusts the retry budget.
func WithMaxRetries(max int) Option {
	return func(c *Client) {
		if max >= 0 {
			c.maxRetries = max
		}
	}
}

// WithRetryWait sets the first backoff interval.
func WithRetryWait(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryWait = d
		}
	}
}

// NewClient constructs a Binance API client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		maxRetries: defaultMaxRetries,
		retryWait:  defaultRetryWait,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.retryWait
	exp.MaxInterval = maxRetryWait
	exp.MaxElapsedTime = 0
	exp.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(c.maxRetries)), ctx)
}

// get performs a GET against path with query and decodes the JSON body into
// result. Transport errors, 429 and 5xx are retried; other statuses are not.
func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	attempt := 0
	op := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("binance: build request: %w", err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("binance: request %s: %w", path, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("binance: read response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			statusErr := &StatusError{StatusCode: resp.StatusCode}
			_ = json.Unmarshal(body, statusErr)
			if statusErr.Retryable() {
				return statusErr
			}
			if statusErr.Code == -1121 {
				return backoff.Permanent(fmt.Errorf("%w: %s", ErrSymbolNotFound, statusErr.Message))
			}
			return backoff.Permanent(statusErr)
		}
		if result == nil {
			return nil
		}
		if err := json.Unmarshal(body, result); err != nil {
			return backoff.Permanent(fmt.Errorf("binance: decode %s: %w", path, err))
		}
		return nil
	}
	notify := func(err error, wait time.Duration) {
		logx.WithContext(ctx).Infof("binance: retrying %s attempt=%d wait=%s err=%v", path, attempt, wait, err)
	}
	return backoff.RetryNotify(op, c.newBackOff(ctx), notify)
}
