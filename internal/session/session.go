// Package session keeps the command line client's credential and profile
// between invocations.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/timesheet-management/internal/core/domain"
)

// ErrCorrupt is returned by a store whose document cannot be decoded.
var ErrCorrupt = errors.New("session: stored document is unreadable")

// Session is persisted as a single document so credential and profile are
// never out of step.
type Session struct {
	Token     string      `json:"token"`
	User      domain.User `json:"user"`
	Role      domain.Role `json:"role"`
	ExpiresAt time.Time   `json:"expiresAt"`
	SavedAt   time.Time   `json:"savedAt"`
}

// Actor is the explicit context passed to policy and service calls. The role
// is the one carried by the token; the department comes from the profile.
func (s *Session) Actor() domain.Actor {
	return domain.Actor{
		ID:           s.User.ID,
		Email:        s.User.Email,
		Name:         s.User.Name,
		Role:         s.Role,
		DepartmentID: s.User.DepartmentID,
	}
}

// Store loads, saves and clears the one persisted session. Load returns
// nil, nil when nothing is stored.
type Store interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Clear(ctx context.Context) error
}
