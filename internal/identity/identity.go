// Package identity reads the claims carried by a bearer token without
// verifying its signature. The server is the only party that verifies; the
// client only needs to know who it is and when to stop trusting the token.
package identity

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frahmantamala/timesheet-management/internal/core/domain"
)

type Claims struct {
	Subject   string
	Role      string
	UserID    int64
	HasUserID bool
	IssuedAt  *time.Time
	ExpiresAt *time.Time
}

var parser = jwt.NewParser()

// Decode returns nil when token is not three dot separated segments or the
// payload segment is not base64url encoded JSON.
func Decode(token string) *Claims {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil
	}

	payload, err := parser.DecodeSegment(parts[1])
	if err != nil {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var mc jwt.MapClaims
	if err := dec.Decode(&mc); err != nil || mc == nil {
		return nil
	}

	c := &Claims{}
	c.Subject, _ = mc.GetSubject()
	if role, ok := mc["role"].(string); ok {
		c.Role = role
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		c.ExpiresAt = &t
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time
		c.IssuedAt = &t
	}
	for _, key := range []string{"userId", "id"} {
		if id, ok := numericClaim(mc[key]); ok {
			c.UserID, c.HasUserID = id, true
			break
		}
	}
	return c
}

func numericClaim(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return int64(f), true
		}
	case string:
		if i, err := strconv.ParseInt(n, 10, 64); err == nil {
			return i, true
		}
	case float64:
		return int64(n), true
	}
	return 0, false
}

// Resolver answers questions about tokens against an injectable clock.
type Resolver struct {
	now func() time.Time
}

func NewResolver(now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{now: now}
}

// IsExpired is true for undecodable tokens, tokens without an exp claim and
// tokens whose exp is not after now.
func (r *Resolver) IsExpired(token string) bool {
	c := Decode(token)
	if c == nil || c.ExpiresAt == nil {
		return true
	}
	return !r.now().Before(*c.ExpiresAt)
}

var defaultResolver = NewResolver(nil)

func IsExpired(token string) bool {
	return defaultResolver.IsExpired(token)
}

// RoleOf falls back to employee for anything it cannot read.
func RoleOf(token string) domain.Role {
	c := Decode(token)
	if c == nil {
		return domain.RoleEmployee
	}
	return domain.ParseRole(c.Role)
}

func EmailOf(token string) string {
	c := Decode(token)
	if c == nil {
		return ""
	}
	return c.Subject
}

func UserIDOf(token string) (int64, bool) {
	c := Decode(token)
	if c == nil {
		return 0, false
	}
	return c.UserID, c.HasUserID
}
