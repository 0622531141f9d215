package approval

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/core/events"
	"github.com/frahmantamala/timesheet-management/internal/policy"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.TimesheetEntry, error)
	// Transition moves a PENDING entry to a terminal status. It fails with
	// internal.ErrConcurrentChange when the entry is no longer pending at
	// write time.
	Transition(ctx context.Context, id int64, to domain.ApprovalStatus, remarks string, actorID int64, at time.Time) (*domain.TimesheetEntry, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type ScopeReader interface {
	Scope(ctx context.Context, departmentID int64) (*Scope, error)
}

type Service struct {
	repo      Repository
	users     UserReader
	scopes    ScopeReader
	publisher events.Publisher
	now       func() time.Time
	logger    *slog.Logger
}

func NewService(repo Repository, users UserReader, scopes ScopeReader, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		users:     users,
		scopes:    scopes,
		publisher: publisher,
		now:       time.Now,
		logger:    logger,
	}
}

func (s *Service) Approve(ctx context.Context, actor domain.Actor, id int64, remarks string) (*domain.TimesheetEntry, error) {
	return s.transition(ctx, actor, id, domain.StatusApproved, remarks)
}

func (s *Service) Reject(ctx context.Context, actor domain.Actor, id int64, remarks string) (*domain.TimesheetEntry, error) {
	return s.transition(ctx, actor, id, domain.StatusRejected, remarks)
}

// Decide applies a status change request as received over the API.
func (s *Service) Decide(ctx context.Context, actor domain.Actor, id int64, dto StatusDTO) (*domain.TimesheetEntry, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	to, _ := domain.ParseApprovalStatus(dto.Status)
	return s.transition(ctx, actor, id, to, dto.Remarks)
}

func (s *Service) transition(ctx context.Context, actor domain.Actor, id int64, to domain.ApprovalStatus, remarks string) (*domain.TimesheetEntry, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	owner, err := s.users.GetByID(ctx, entry.UserID)
	if err != nil {
		return nil, err
	}

	if !policy.HasApprovalAuthority(actor, owner.DepartmentID) || policy.IsOwnEntry(entry, actor) {
		s.logger.Warn("approval denied",
			"entry_id", id,
			"actor_id", actor.ID,
			"actor_role", actor.Role.String(),
			"owner_id", owner.ID)
		return nil, internal.ErrUnauthorizedAccess
	}
	if !policy.CanTransitionApproval(entry, actor, owner.DepartmentID) || !entry.ApprovalStatus.CanTransitionTo(to) {
		s.logger.Info("transition out of terminal state refused",
			"entry_id", id,
			"status", string(entry.ApprovalStatus),
			"requested", string(to))
		return nil, internal.ErrNotPending
	}

	updated, err := s.repo.Transition(ctx, id, to, remarks, actor.ID, s.now())
	if err != nil {
		if internal.HasType(err, internal.ErrorTypeInvalidTransition) {
			s.logger.Warn("concurrent approval lost", "entry_id", id, "actor_id", actor.ID)
		}
		return nil, err
	}

	s.logger.Info("timesheet entry actioned",
		"entry_id", id,
		"status", string(updated.ApprovalStatus),
		"manager_id", actor.ID,
		"owner_id", updated.UserID)

	if s.publisher != nil {
		evt := events.NewTimesheetTransitionedEvent(updated.ID, updated.UserID, actor.ID, string(updated.ApprovalStatus), remarks)
		if err := s.publisher.Publish(ctx, evt); err != nil {
			s.logger.Error("failed to publish transition event", "error", err, "entry_id", id)
		}
	}
	return updated, nil
}

// StatsFor computes the dashboard counts for managerID's department, leaving
// out the manager's own entries like the queue does. Only the manager
// themself or an admin may read them.
func (s *Service) StatsFor(ctx context.Context, actor domain.Actor, managerID int64) (*ManagerStats, error) {
	if actor.ID != managerID && actor.Role != domain.RoleAdmin {
		return nil, internal.ErrUnauthorizedAccess
	}

	manager, err := s.users.GetByID(ctx, managerID)
	if err != nil {
		return nil, err
	}
	if manager.Role != domain.RoleManager {
		return nil, internal.NewValidationFieldError("managerId", "user is not a manager", internal.ErrCodeInvalidRole)
	}
	if manager.DepartmentID == nil {
		return &ManagerStats{}, nil
	}

	scope, err := s.scopes.Scope(ctx, *manager.DepartmentID)
	if err != nil {
		return nil, err
	}
	return ComputeStats(scope, managerID), nil
}

// PendingFor is the approval queue of a manager: pending entries of their
// department members, excluding their own.
func (s *Service) PendingFor(ctx context.Context, actor domain.Actor) ([]domain.TimesheetEntry, error) {
	switch actor.Role {
	case domain.RoleManager:
	case domain.RoleAdmin, domain.RoleEmployee:
		return nil, internal.ErrUnauthorizedAccess
	}
	if actor.DepartmentID == nil {
		return []domain.TimesheetEntry{}, nil
	}

	scope, err := s.scopes.Scope(ctx, *actor.DepartmentID)
	if err != nil {
		return nil, err
	}

	pending := make([]domain.TimesheetEntry, 0, len(scope.Entries))
	for _, e := range scope.Entries {
		if e.IsPending() && !policy.IsOwnEntry(&e, actor) {
			pending = append(pending, e)
		}
	}
	return pending, nil
}
