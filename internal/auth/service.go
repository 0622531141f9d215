package auth

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
)

type Repository interface {
	GetCredentials(ctx context.Context, email string) (*Credentials, error)
	GetProfile(ctx context.Context, userID int64) (*domain.User, error)
}

type Service struct {
	repo           Repository
	tokenGenerator TokenGenerator
	logger         *slog.Logger
}

func NewService(repo Repository, tokenGen TokenGenerator, logger *slog.Logger) *Service {
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		logger:         logger,
	}
}

// Login checks the password and issues an access token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*LoginResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	creds, err := s.repo.GetCredentials(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			s.logger.Info("login for unknown email")
			return nil, internal.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(dto.Password)); err != nil {
		s.logger.Info("login with wrong password", "user_id", creds.UserID)
		return nil, internal.ErrInvalidCredentials
	}
	if !creds.Active {
		return nil, internal.ErrUserInactive
	}

	profile, err := s.repo.GetProfile(ctx, creds.UserID)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokenGenerator.GenerateAccessToken(profile)
	if err != nil {
		return nil, internal.NewInternalError("failed to issue token", err)
	}

	s.logger.Info("user logged in", "user_id", profile.ID, "role", profile.Role.String())
	return &LoginResponse{Token: token, ExpiresAt: expiresAt, User: profile}, nil
}

// Authenticate turns a bearer token into the caller's Actor. The role comes
// from the token, so a role change only applies after the next login; the
// department is read fresh.
func (s *Service) Authenticate(ctx context.Context, token string) (domain.Actor, error) {
	claims, err := s.tokenGenerator.ValidateToken(token)
	if err != nil {
		return domain.Actor{}, err
	}

	profile, err := s.repo.GetProfile(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return domain.Actor{}, internal.ErrInvalidToken
		}
		return domain.Actor{}, err
	}
	if !profile.Active {
		return domain.Actor{}, internal.ErrUserInactive
	}

	actor := domain.ActorFromUser(profile)
	actor.Role = domain.ParseRole(claims.Role)
	return actor, nil
}
