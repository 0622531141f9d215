package department

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/confirm"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/core/events"
	"github.com/frahmantamala/timesheet-management/internal/policy"
)

const (
	paramExpectedManager = "expectedManagerId"
	paramNewManager      = "managerId"
)

type Repository interface {
	Create(ctx context.Context, d *domain.Department) error
	GetByID(ctx context.Context, id int64) (*domain.Department, error)
	List(ctx context.Context) ([]domain.Department, error)
	Update(ctx context.Context, d *domain.Department) error
	// ReassignManager makes newManagerID the manager of departmentID in one
	// transaction, provided the current manager is still expected. The
	// previous manager is demoted to employee.
	ReassignManager(ctx context.Context, departmentID int64, expected *int64, newManagerID int64) (*Reassignment, error)
	// Delete fails with a conflict while users or projects still reference
	// the department.
	Delete(ctx context.Context, id int64) error
}

type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type Proposer interface {
	Propose(ctx context.Context, actor domain.Actor, action confirm.Action) (*confirm.Token, error)
	Register(kind string, c confirm.Committer)
}

type Service struct {
	repo      Repository
	users     UserReader
	confirms  Proposer
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo Repository, users UserReader, confirms Proposer, publisher events.Publisher, logger *slog.Logger) *Service {
	s := &Service{
		repo:      repo,
		users:     users,
		confirms:  confirms,
		publisher: publisher,
		logger:    logger,
	}
	if confirms != nil {
		confirms.Register(confirm.KindReassignManager, s.commitManagerChange)
		confirms.Register(confirm.KindDeleteDepartment, s.commitDelete)
	}
	return s
}

// List returns every department to admins and only their own to everyone
// else.
func (s *Service) List(ctx context.Context, actor domain.Actor) ([]domain.Department, error) {
	if policy.CanViewAllUsers(actor.Role) {
		return s.repo.List(ctx)
	}
	if actor.DepartmentID == nil {
		return []domain.Department{}, nil
	}
	d, err := s.repo.GetByID(ctx, *actor.DepartmentID)
	if err != nil {
		if internal.HasType(err, internal.ErrorTypeNotFound) {
			return []domain.Department{}, nil
		}
		return nil, err
	}
	return []domain.Department{*d}, nil
}

func (s *Service) Get(ctx context.Context, actor domain.Actor, id int64) (*domain.Department, error) {
	if !policy.CanViewAllUsers(actor.Role) && !actor.InDepartment(id) {
		return nil, internal.ErrUnauthorizedAccess
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, actor domain.Actor, dto CreateDepartmentDTO) (*domain.Department, error) {
	if !policy.CanViewAllUsers(actor.Role) {
		return nil, internal.ErrUnauthorizedAccess
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	d := &domain.Department{
		Name:        dto.Name,
		Description: dto.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		s.logger.Error("failed to create department", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("department created", "department_id", d.ID, "actor_id", actor.ID)
	return d, nil
}

func (s *Service) Update(ctx context.Context, actor domain.Actor, id int64, dto UpdateDepartmentDTO) (*domain.Department, error) {
	if !policy.CanViewAllUsers(actor.Role) {
		return nil, internal.ErrUnauthorizedAccess
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if dto.Name != nil {
		d.Name = *dto.Name
	}
	if dto.Description != nil {
		d.Description = *dto.Description
	}
	d.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, d); err != nil {
		s.logger.Error("failed to update department", "error", err, "department_id", id)
		return nil, err
	}
	return d, nil
}

// ProposeManagerChange records who manages the department right now so that
// the commit can detect a change made in between.
func (s *Service) ProposeManagerChange(ctx context.Context, actor domain.Actor, id int64, dto ManagerChangeDTO) (*confirm.Token, error) {
	if !policy.CanViewAllUsers(actor.Role) {
		return nil, internal.ErrUnauthorizedAccess
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	candidate, err := s.users.GetByID(ctx, dto.ManagerID)
	if err != nil {
		if internal.HasType(err, internal.ErrorTypeNotFound) {
			return nil, internal.NewValidationFieldError("managerId", "user does not exist", internal.ErrCodeInvalidValue)
		}
		return nil, err
	}
	if candidate.Role == domain.RoleAdmin {
		return nil, internal.NewValidationFieldError("managerId", "an admin cannot manage a department", internal.ErrCodeInvalidRole)
	}
	if !candidate.Active {
		return nil, internal.NewValidationFieldError("managerId", "user account is inactive", internal.ErrCodeInvalidValue)
	}
	if d.ManagerID != nil && *d.ManagerID == candidate.ID {
		return nil, internal.NewValidationFieldError("managerId", "user already manages this department", internal.ErrCodeInvalidValue)
	}

	params := map[string]int64{paramNewManager: candidate.ID}
	summary := fmt.Sprintf("Make %s the manager of %s", candidate.Name, d.Name)
	if d.ManagerID != nil {
		params[paramExpectedManager] = *d.ManagerID
		summary = fmt.Sprintf("%s; user #%d will be demoted to employee", summary, *d.ManagerID)
	}

	return s.confirms.Propose(ctx, actor, confirm.Action{
		Kind:     confirm.KindReassignManager,
		TargetID: id,
		Params:   params,
		Summary:  summary,
	})
}

func (s *Service) commitManagerChange(ctx context.Context, actor domain.Actor, action confirm.Action) (interface{}, error) {
	if !policy.CanViewAllUsers(actor.Role) {
		return nil, internal.ErrUnauthorizedAccess
	}
	newManager, ok := action.Param(paramNewManager)
	if !ok {
		return nil, internal.NewValidationFieldError("managerId", "managerId is required", internal.ErrCodeRequired)
	}
	var expected *int64
	if v, ok := action.Param(paramExpectedManager); ok {
		expected = &v
	}

	result, err := s.repo.ReassignManager(ctx, action.TargetID, expected, newManager)
	if err != nil {
		s.logger.Warn("manager reassignment failed",
			"error", err,
			"department_id", action.TargetID,
			"new_manager_id", newManager)
		return nil, err
	}

	s.logger.Info("department manager reassigned",
		"department_id", action.TargetID,
		"new_manager_id", newManager,
		"actor_id", actor.ID)

	if s.publisher != nil {
		evt := events.NewManagerReassignedEvent(action.TargetID, newManager, result.DemotedManagerID)
		if err := s.publisher.Publish(ctx, evt); err != nil {
			s.logger.Error("failed to publish reassignment event", "error", err, "department_id", action.TargetID)
		}
	}
	return result, nil
}

func (s *Service) ProposeDelete(ctx context.Context, actor domain.Actor, id int64) (*confirm.Token, error) {
	if !policy.CanViewAllUsers(actor.Role) {
		return nil, internal.ErrUnauthorizedAccess
	}
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.confirms.Propose(ctx, actor, confirm.Action{
		Kind:     confirm.KindDeleteDepartment,
		TargetID: id,
		Summary:  fmt.Sprintf("Delete department %s", d.Name),
	})
}

func (s *Service) commitDelete(ctx context.Context, actor domain.Actor, action confirm.Action) (interface{}, error) {
	if !policy.CanViewAllUsers(actor.Role) {
		return nil, internal.ErrUnauthorizedAccess
	}
	if err := s.repo.Delete(ctx, action.TargetID); err != nil {
		return nil, err
	}
	s.logger.Info("department deleted", "department_id", action.TargetID, "actor_id", actor.ID)
	return map[string]int64{"deletedDepartmentId": action.TargetID}, nil
}
