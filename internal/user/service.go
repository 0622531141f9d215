package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/confirm"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/policy"
)

type ListFilter struct {
	DepartmentID *int64
}

type Repository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter ListFilter) ([]*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id int64) error
}

// Proposer is the two-phase half the service needs from confirm.Manager.
type Proposer interface {
	Propose(ctx context.Context, actor domain.Actor, action confirm.Action) (*confirm.Token, error)
	Register(kind string, c confirm.Committer)
}

type Service struct {
	repo       Repository
	confirms   Proposer
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, confirms Proposer, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	s := &Service{
		repo:       repo,
		confirms:   confirms,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
	if confirms != nil {
		confirms.Register(confirm.KindDeleteUser, s.commitDelete)
	}
	return s
}

func (s *Service) Me(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	return s.repo.GetByID(ctx, actor.ID)
}

func (s *Service) Get(ctx context.Context, actor domain.Actor, id int64) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewUser(actor, u) {
		s.logger.Warn("user lookup denied", "actor_id", actor.ID, "user_id", id)
		return nil, internal.ErrUnauthorizedAccess
	}
	return u, nil
}

// List returns every user for admins and the manager's own department for
// managers.
func (s *Service) List(ctx context.Context, actor domain.Actor) ([]*domain.User, error) {
	switch actor.Role {
	case domain.RoleAdmin:
		return s.repo.List(ctx, ListFilter{})
	case domain.RoleManager:
		if actor.DepartmentID == nil {
			return []*domain.User{}, nil
		}
		return s.repo.List(ctx, ListFilter{DepartmentID: actor.DepartmentID})
	case domain.RoleEmployee:
		return nil, internal.ErrUnauthorizedAccess
	}
	return nil, internal.ErrUnauthorizedAccess
}

func (s *Service) Create(ctx context.Context, actor domain.Actor, dto CreateUserDTO) (*domain.User, error) {
	if !policy.CanViewAllUsers(actor.Role) {
		return nil, internal.ErrUnauthorizedAccess
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByEmail(ctx, dto.Email); err == nil && existing != nil {
		return nil, internal.NewConflictError("A user with this email already exists", internal.ErrCodeDuplicate)
	} else if err != nil && !errors.Is(err, internal.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	role, _ := domain.LookupRole(dto.Role)
	if role == domain.RoleManager && dto.DepartmentID != nil {
		return nil, managerChangeRequired("role", *dto.DepartmentID)
	}
	now := time.Now()
	u := &domain.User{
		Email:        dto.Email,
		Name:         dto.Name,
		Role:         role,
		DepartmentID: dto.DepartmentID,
		Active:       true,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, err
	}

	s.logger.Info("user created", "user_id", u.ID, "role", u.Role.String(), "actor_id", actor.ID)
	return u, nil
}

// Update applies an admin edit. Role changes only reach the user's token on
// their next login.
func (s *Service) Update(ctx context.Context, actor domain.Actor, id int64, dto UpdateUserDTO) (*domain.User, error) {
	if !policy.CanViewAllUsers(actor.Role) {
		return nil, internal.ErrUnauthorizedAccess
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := guardManagerFields(u, dto); err != nil {
		return nil, err
	}

	if dto.Name != nil {
		u.Name = *dto.Name
	}
	if dto.Role != nil {
		u.Role, _ = domain.LookupRole(*dto.Role)
	}
	if dto.DepartmentID != nil {
		u.DepartmentID = dto.DepartmentID
	}
	if dto.ClearDepartment {
		u.DepartmentID = nil
	}
	if dto.Active != nil {
		if !*dto.Active && u.ID == actor.ID {
			return nil, internal.NewValidationFieldError("active", "you cannot deactivate your own account", internal.ErrCodeInvalidValue)
		}
		u.Active = *dto.Active
	}
	if dto.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*dto.Password), s.bcryptCost)
		if err != nil {
			return nil, internal.NewInternalError("failed to hash password", err)
		}
		u.PasswordHash = string(hash)
	}
	u.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, u); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, err
	}

	s.logger.Info("user updated", "user_id", id, "actor_id", actor.ID)
	return u, nil
}

// guardManagerFields keeps the manager role in step with
// departments.manager_id. Becoming or ceasing to be a manager, and moving a
// manager to another department, only happen through a department's
// manager reassignment.
func guardManagerFields(u *domain.User, dto UpdateUserDTO) error {
	if dto.Role != nil {
		role, _ := domain.LookupRole(*dto.Role)
		if role != u.Role && (role == domain.RoleManager || u.Role == domain.RoleManager) {
			return managerChangeRequired("role", departmentOf(u, dto))
		}
	}
	if u.Role != domain.RoleManager {
		return nil
	}
	moved := dto.ClearDepartment ||
		(dto.DepartmentID != nil && (u.DepartmentID == nil || *u.DepartmentID != *dto.DepartmentID))
	if moved {
		return managerChangeRequired("departmentId", departmentOf(u, dto))
	}
	return nil
}

func departmentOf(u *domain.User, dto UpdateUserDTO) int64 {
	if dto.DepartmentID != nil {
		return *dto.DepartmentID
	}
	if u.DepartmentID != nil {
		return *u.DepartmentID
	}
	return 0
}

func managerChangeRequired(field string, departmentID int64) error {
	target := "/departments/{id}/manager-proposals"
	if departmentID > 0 {
		target = fmt.Sprintf("/departments/%d/manager-proposals", departmentID)
	}
	return internal.NewValidationFieldError(field,
		"department managers are changed through "+target,
		internal.ErrCodeInvalidRole)
}

func (s *Service) ProposeDelete(ctx context.Context, actor domain.Actor, id int64) (*confirm.Token, error) {
	if !policy.CanViewAllUsers(actor.Role) {
		return nil, internal.ErrUnauthorizedAccess
	}
	if id == actor.ID {
		return nil, internal.NewValidationFieldError("id", "you cannot delete your own account", internal.ErrCodeInvalidValue)
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.confirms.Propose(ctx, actor, confirm.Action{
		Kind:     confirm.KindDeleteUser,
		TargetID: id,
		Summary:  fmt.Sprintf("Delete user %s (%s)", u.Name, u.Email),
	})
}

func (s *Service) commitDelete(ctx context.Context, actor domain.Actor, action confirm.Action) (interface{}, error) {
	if !policy.CanViewAllUsers(actor.Role) {
		return nil, internal.ErrUnauthorizedAccess
	}
	if err := s.repo.Delete(ctx, action.TargetID); err != nil {
		return nil, err
	}
	s.logger.Info("user deleted", "user_id", action.TargetID, "actor_id", actor.ID)
	return map[string]int64{"deletedUserId": action.TargetID}, nil
}
