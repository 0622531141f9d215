// Package client is the HTTP collaborator the command line client uses to
// reach the API. It exposes remote implementations of the service
// repositories so the same services run on both sides of the wire.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/frahmantamala/timesheet-management/internal"
)

const maxResponseBytes = 4 << 20

// TokenSource returns the bearer credential to send, or "" for none.
type TokenSource func() string

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries uint64
	RetryDelay time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	baseURL    string
	timeout    time.Duration
	maxRetries uint64
	retryDelay time.Duration
	http       *http.Client
	token      TokenSource
	logger     *slog.Logger
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 200 * time.Millisecond
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		timeout:    opts.Timeout,
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		http:       opts.HTTPClient,
		token:      func() string { return "" },
		logger:     opts.Logger,
	}
}

func (c *Client) WithToken(src TokenSource) *Client {
	if src != nil {
		c.token = src
	}
	return c
}

// Get reads path into out. Reads are idempotent, so network failures are
// retried a bounded number of times.
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewConstant(c.retryDelay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.do(ctx, http.MethodGet, path, nil, out)
		if appErr, ok := internal.IsAppError(err); ok && appErr.Retryable() {
			c.logger.Debug("retrying read", "path", path, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	ctx, cancel := internal.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return internal.NewInternalError("failed to encode request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return internal.NewInternalError("failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "method", method, "path", path, "error", err)
		return transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return transportError(err)
	}

	c.logger.Debug("request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	payload := Unwrap(raw)
	if emptyPayload(payload) {
		if acceptsEmpty(out) {
			return nil
		}
		c.logger.Warn("empty payload in successful reply", "method", method, "path", path, "status", resp.StatusCode)
		return malformed(resp.StatusCode, errEmptyPayload)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return malformed(resp.StatusCode, err)
	}
	return nil
}

var errEmptyPayload = errors.New("reply carries no data")

// acceptsEmpty holds for list and map targets, where a missing payload reads
// as no items. Single resources must come back in full.
func acceptsEmpty(out interface{}) bool {
	t := reflect.TypeOf(out)
	if t == nil || t.Kind() != reflect.Ptr {
		return false
	}
	switch t.Elem().Kind() {
	case reflect.Slice, reflect.Map:
		return true
	default:
		return false
	}
}

func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return internal.NewNetworkTimeoutError("The server did not answer in time", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return internal.NewNetworkTimeoutError("The server did not answer in time", err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return internal.NewNetworkError("Could not reach the server", err)
}

func malformed(status int, cause error) error {
	e := internal.NewRemoteError("The server sent an unreadable response", status)
	e.Code = internal.ErrCodeMalformedPayload
	e.Cause = cause
	return e
}

func pathf(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}
