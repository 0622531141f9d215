package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/auth"
)

// Login exchanges credentials for a bearer token. It is never retried.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	ctx, cancel := internal.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(auth.LoginDTO{Email: email, Password: password})
	if err != nil {
		return "", internal.NewInternalError("failed to encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(payload))
	if err != nil {
		return "", internal.NewInternalError("failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", transportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", decodeError(resp.StatusCode, raw)
	}

	token, ok := ExtractToken(raw)
	if !ok {
		return "", malformed(resp.StatusCode, nil)
	}
	return token, nil
}
