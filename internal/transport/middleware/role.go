package middleware

import (
	"net/http"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/pkg/logger"
)

// RequireRole admits callers whose role is one of roles. It runs after the
// auth middleware; a missing actor is a 401.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := internal.ActorFromContext(r.Context())
			if !ok {
				writeAppError(w, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken))
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.From(r.Context()).Warn("access denied by role",
				"user_id", actor.ID,
				"role", actor.Role.String(),
				"path", r.URL.Path)
			writeAppError(w, internal.ErrUnauthorizedAccess)
		})
	}
}
