package client

import (
	"context"
	"time"
)

// Confirmation is a proposed action waiting for the user to commit it.
type Confirmation struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Action    struct {
		Kind     string `json:"kind"`
		TargetID int64  `json:"targetId"`
		Summary  string `json:"summary"`
	} `json:"action"`
}

// Commit confirms a proposal. Tokens are single use, so this is never
// retried.
func (c *Client) Commit(ctx context.Context, token string) error {
	return c.Post(ctx, "/confirmations/"+token, nil, nil)
}
