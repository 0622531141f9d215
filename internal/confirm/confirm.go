// Package confirm implements two-phase commands: an impactful action is first
// proposed, which yields a short-lived single-use token, and only runs when
// the same actor commits that token.
package confirm

import (
	"context"
	"fmt"
	"log/slog"
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
)

const (
	KindDeleteDepartment = "department.delete"
	KindReassignManager  = "department.reassign_manager"
	KindDeleteUser       = "user.delete"
	KindDeleteProject    = "project.delete"
	DefaultTTL           = 2 * time.Minute
)

type Action struct {
	Kind     string           `json:"kind"`
	TargetID int64            `json:"targetId"`
	Params   map[string]int64 `json:"params,omitempty"`
	// Summary tells the user what committing will do.
	Summary string `json:"summary"`
}

func (a Action) Param(name string) (int64, bool) {
	v, ok := a.Params[name]
	return v, ok
}

type Token struct {
	ID        string    `json:"token"`
	ActorID   int64     `json:"actorId"`
	Action    Action    `json:"action"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Store keeps pending tokens. Take must remove the token it returns so a
// token can be committed at most once.
type Store interface {
	Put(ctx context.Context, token Token, ttl time.Duration) error
	Take(ctx context.Context, id string) (*Token, error)
}

type Committer func(ctx context.Context, actor domain.Actor, action Action) (interface{}, error)

type Manager struct {
	store      Store
	ttl        time.Duration
	now        func() time.Time
	logger     *slog.Logger
	mu         sync.RWMutex
	committers map[string]Committer
}

func NewManager(store Store, ttl time.Duration, logger *slog.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store:      store,
		ttl:        ttl,
		now:        time.Now,
		logger:     logger,
		committers: make(map[string]Committer),
	}
}

// WithClock replaces the clock; used by tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

func (m *Manager) Register(kind string, c Committer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committers[kind] = c
}

func (m *Manager) committer(kind string) (Committer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.committers[kind]
	return c, ok
}

func (m *Manager) Propose(ctx context.Context, actor domain.Actor, action Action) (*Token, error) {
	if _, ok := m.committer(action.Kind); !ok {
		return nil, internal.NewInternalError("unsupported confirmation kind", fmt.Errorf("no committer for %q", action.Kind))
	}

	token := Token{
		ID:        newTokenID(m.now()),
		ActorID:   actor.ID,
		Action:    action,
		ExpiresAt: m.now().Add(m.ttl),
	}
	if err := m.store.Put(ctx, token, m.ttl); err != nil {
		m.logger.Error("failed to store confirmation", "error", err, "kind", action.Kind)
		return nil, internal.NewInternalError("failed to store confirmation", err)
	}

	m.logger.Info("confirmation proposed",
		"kind", action.Kind,
		"target_id", action.TargetID,
		"actor_id", actor.ID,
		"expires_at", token.ExpiresAt)

	return &token, nil
}

func (m *Manager) Commit(ctx context.Context, actor domain.Actor, id string) (interface{}, error) {
	token, err := m.store.Take(ctx, id)
	if err != nil {
		return nil, err
	}
	if token == nil || !m.now().Before(token.ExpiresAt) {
		return nil, internal.ErrConfirmationGone
	}
	if token.ActorID != actor.ID {
		m.logger.Warn("confirmation committed by a different actor",
			"kind", token.Action.Kind,
			"proposed_by", token.ActorID,
			"actor_id", actor.ID)
		return nil, internal.ErrUnauthorizedAccess
	}

	c, ok := m.committer(token.Action.Kind)
	if !ok {
		return nil, internal.NewInternalError("unsupported confirmation kind", fmt.Errorf("no committer for %q", token.Action.Kind))
	}

	result, err := c(ctx, actor, token.Action)
	if err != nil {
		m.logger.Warn("confirmed action failed", "kind", token.Action.Kind, "target_id", token.Action.TargetID, "error", err)
		return nil, err
	}

	m.logger.Info("confirmation committed", "kind", token.Action.Kind, "target_id", token.Action.TargetID, "actor_id", actor.ID)
	return result, nil
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

func newTokenID(at time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), entropy).String()
}
