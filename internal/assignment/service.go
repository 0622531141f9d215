package assignment

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/core/events"
	"github.com/frahmantamala/timesheet-management/internal/policy"
	"github.com/frahmantamala/timesheet-management/internal/project"
)

type Repository interface {
	Create(ctx context.Context, a *domain.ProjectAssignment) error
	Get(ctx context.Context, projectID, userID int64) (*domain.ProjectAssignment, error)
	UpdateRole(ctx context.Context, projectID, userID int64, role domain.ProjectRole) error
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, projectID, userID int64) (bool, error)
	ListForUser(ctx context.Context, userID int64) ([]domain.ProjectAssignment, error)
	ListForProject(ctx context.Context, projectID int64) ([]domain.ProjectAssignment, error)
}

type ProjectReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context, filter project.ListFilter) ([]domain.Project, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type Service struct {
	repo      Repository
	projects  ProjectReader
	users     UserReader
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo Repository, projects ProjectReader, users UserReader, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		projects:  projects,
		users:     users,
		publisher: publisher,
		logger:    logger,
	}
}

// managedProject loads the project and checks actor may change its staffing.
func (s *Service) managedProject(ctx context.Context, actor domain.Actor, projectID int64) (*domain.Project, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !policy.CanManageDepartment(actor, p.DepartmentID) {
		s.logger.Warn("assignment change denied",
			"actor_id", actor.ID,
			"project_id", projectID,
			"department_id", p.DepartmentID)
		return nil, internal.ErrUnauthorizedAccess
	}
	return p, nil
}

// Assign creates a new pairing. An existing pairing is never overwritten;
// role changes go through UpdateRole.
func (s *Service) Assign(ctx context.Context, actor domain.Actor, projectID int64, dto AssignDTO) (*domain.ProjectAssignment, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	p, err := s.managedProject(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, dto.UserID)
	if err != nil {
		return nil, err
	}
	if u.DepartmentID == nil || *u.DepartmentID != p.DepartmentID {
		return nil, internal.NewValidationFieldError("userId", "user does not belong to the project's department", internal.ErrCodeInvalidValue)
	}

	if _, err := s.repo.Get(ctx, projectID, dto.UserID); err == nil {
		return nil, internal.ErrDuplicateAssign
	} else if !errors.Is(err, internal.ErrAssignmentNotFound) {
		return nil, err
	}

	role, _ := domain.ParseProjectRole(dto.RoleInProject)
	a := &domain.ProjectAssignment{
		UserID:        dto.UserID,
		ProjectID:     projectID,
		RoleInProject: role,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info("user assigned to project",
		"project_id", projectID,
		"user_id", dto.UserID,
		"role", string(role),
		"actor_id", actor.ID)
	s.publish(ctx, events.NewAssignmentChangedEvent(events.EventTypeAssignmentCreated, projectID, dto.UserID, string(role), actor.ID))
	return a, nil
}

func (s *Service) UpdateRole(ctx context.Context, actor domain.Actor, projectID, userID int64, dto UpdateRoleDTO) (*domain.ProjectAssignment, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.managedProject(ctx, actor, projectID); err != nil {
		return nil, err
	}

	a, err := s.repo.Get(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	role, _ := domain.ParseProjectRole(dto.RoleInProject)
	if a.RoleInProject == role {
		return a, nil
	}
	if err := s.repo.UpdateRole(ctx, projectID, userID, role); err != nil {
		return nil, err
	}
	a.RoleInProject = role

	s.logger.Info("project role changed", "project_id", projectID, "user_id", userID, "role", string(role), "actor_id", actor.ID)
	return a, nil
}

// Unassign removes the pairing. Removing an absent pairing succeeds.
func (s *Service) Unassign(ctx context.Context, actor domain.Actor, projectID, userID int64) error {
	if _, err := s.managedProject(ctx, actor, projectID); err != nil {
		return err
	}

	removed, err := s.repo.Delete(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !removed {
		s.logger.Debug("unassign of absent pairing", "project_id", projectID, "user_id", userID)
		return nil
	}

	s.logger.Info("user unassigned from project", "project_id", projectID, "user_id", userID, "actor_id", actor.ID)
	s.publish(ctx, events.NewAssignmentChangedEvent(events.EventTypeAssignmentRemoved, projectID, userID, "", actor.ID))
	return nil
}

// AssignMany runs one independent Assign per entry. Failures are reported
// per user and never undo the successful ones.
func (s *Service) AssignMany(ctx context.Context, actor domain.Actor, projectID int64, dto BatchAssignDTO) ([]Result, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(dto.Assignments))
	for _, item := range dto.Assignments {
		a, err := s.Assign(ctx, actor, projectID, item)
		result := Result{UserID: item.UserID, Assignment: a}
		if err != nil {
			result.Assignment = nil
			result.Error = asAppError(err)
		}
		results = append(results, result)
	}
	return results, nil
}

// AssignedProjectsFor lists the projects userID is assigned to followed by
// the internal activities open to everyone.
func (s *Service) AssignedProjectsFor(ctx context.Context, actor domain.Actor, userID int64) ([]domain.Project, error) {
	if err := s.checkUserVisible(ctx, actor, userID); err != nil {
		return nil, err
	}

	assignments, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	synthetic := domain.SyntheticProjects()
	if len(assignments) == 0 {
		return synthetic, nil
	}

	ids := make([]int64, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.ProjectID)
	}
	projects, err := s.projects.List(ctx, project.ListFilter{IDs: ids})
	if err != nil {
		return nil, err
	}
	return append(projects, synthetic...), nil
}

func (s *Service) ListForUser(ctx context.Context, actor domain.Actor, userID int64) ([]domain.ProjectAssignment, error) {
	if err := s.checkUserVisible(ctx, actor, userID); err != nil {
		return nil, err
	}
	return s.repo.ListForUser(ctx, userID)
}

// ListForProject returns the project's assignees with their profiles.
func (s *Service) ListForProject(ctx context.Context, actor domain.Actor, projectID int64) ([]AssignedUser, error) {
	if _, err := s.managedProject(ctx, actor, projectID); err != nil {
		return nil, err
	}

	assignments, err := s.repo.ListForProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	out := make([]AssignedUser, 0, len(assignments))
	for _, a := range assignments {
		entry := AssignedUser{ProjectAssignment: a}
		u, err := s.users.GetByID(ctx, a.UserID)
		switch {
		case err == nil:
			entry.Name = u.Name
			entry.Email = u.Email
		case errors.Is(err, internal.ErrUserNotFound):
		default:
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

// IsAssigned reports whether userID holds any role on projectID.
func (s *Service) IsAssigned(ctx context.Context, userID, projectID int64) (bool, error) {
	_, err := s.repo.Get(ctx, projectID, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, internal.ErrAssignmentNotFound) {
		return false, nil
	}
	return false, err
}

func (s *Service) checkUserVisible(ctx context.Context, actor domain.Actor, userID int64) error {
	if actor.ID == userID {
		return nil
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !policy.CanViewUser(actor, u) {
		return internal.ErrUnauthorizedAccess
	}
	return nil
}

func (s *Service) publish(ctx context.Context, evt events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Error("failed to publish event", "event_type", evt.EventType(), "error", err)
	}
}

func asAppError(err error) *internal.AppError {
	if appErr, ok := internal.IsAppError(err); ok {
		return appErr
	}
	return internal.NewInternalError("assignment failed", err)
}
