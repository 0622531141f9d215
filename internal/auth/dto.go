package auth

import (
	"strings"
	"time"

	"github.com/frahmantamala/timesheet-management/internal/core/common/validation"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (d *LoginDTO) Validate() error {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	return validation.Struct(d)
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}
