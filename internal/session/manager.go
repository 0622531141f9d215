package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/identity"
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// ProfileFunc fetches the profile of the user token belongs to.
type ProfileFunc func(ctx context.Context, token string) (*domain.User, error)

type Manager struct {
	store    Store
	auth     Authenticator
	profile  ProfileFunc
	resolver *identity.Resolver
	now      func() time.Time
	logger   *slog.Logger

	mu      sync.RWMutex
	current *Session
}

func NewManager(store Store, auth Authenticator, profile ProfileFunc, logger *slog.Logger) *Manager {
	return &Manager{
		store:    store,
		auth:     auth,
		profile:  profile,
		resolver: identity.NewResolver(time.Now),
		now:      time.Now,
		logger:   logger,
	}
}

func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	m.resolver = identity.NewResolver(now)
	return m
}

// Login obtains a token, fetches the profile it belongs to and persists both
// in one save. Nothing is stored when any step fails.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	token, err := m.auth.Login(ctx, email, password)
	if err != nil {
		m.logger.Warn("login failed", "email", email, "error", err)
		return nil, err
	}

	claims := identity.Decode(token)
	if claims == nil {
		return nil, internal.ErrInvalidToken
	}
	if m.resolver.IsExpired(token) {
		return nil, internal.ErrTokenExpired
	}

	user, err := m.profile(ctx, token)
	if err != nil {
		m.logger.Error("failed to fetch profile after login", "email", email, "error", err)
		return nil, err
	}
	if claims.HasUserID && claims.UserID != user.ID {
		m.logger.Error("profile does not match token", "token_user_id", claims.UserID, "profile_id", user.ID)
		return nil, internal.ErrInvalidToken
	}

	sess := &Session{
		Token:     token,
		User:      *user,
		Role:      domain.ParseRole(claims.Role),
		ExpiresAt: *claims.ExpiresAt,
		SavedAt:   m.now(),
	}
	if err := m.store.Save(ctx, sess); err != nil {
		m.logger.Error("failed to persist session", "error", err)
		return nil, err
	}

	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()

	m.logger.Info("logged in", "user_id", user.ID, "role", sess.Role.String())
	return sess, nil
}

// Restore loads the persisted session once at startup. An expired or
// unreadable session is cleared and Restore reports no session.
func (m *Manager) Restore(ctx context.Context) (*Session, error) {
	sess, err := m.store.Load(ctx)
	if errors.Is(err, ErrCorrupt) {
		m.logger.Warn("discarding unreadable session")
		return nil, m.store.Clear(ctx)
	}
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}

	if m.resolver.IsExpired(sess.Token) {
		m.logger.Info("stored session expired", "user_id", sess.User.ID)
		if err := m.store.Clear(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}

	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()
	return sess, nil
}

func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error("failed to clear session", "error", err)
		return err
	}
	return nil
}

// Current reports the live session. A session whose token has since expired
// is not live.
func (m *Manager) Current() (*Session, bool) {
	m.mu.RLock()
	sess := m.current
	m.mu.RUnlock()

	if sess == nil || m.resolver.IsExpired(sess.Token) {
		return nil, false
	}
	return sess, true
}

// Token is suitable as a client token source.
func (m *Manager) Token() string {
	if sess, ok := m.Current(); ok {
		return sess.Token
	}
	return ""
}

// Actor returns the caller for service calls, or ErrTokenExpired when there is
// no live session.
func (m *Manager) Actor() (domain.Actor, error) {
	sess, ok := m.Current()
	if !ok {
		return domain.Actor{}, internal.ErrTokenExpired
	}
	return sess.Actor(), nil
}
