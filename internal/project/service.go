package project

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/confirm"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/policy"
)

type ListFilter struct {
	DepartmentID *int64
	IDs          []int64
}

type Repository interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id int64) error
}

// AssignmentReader lists a user's project assignments; it scopes what an
// employee can see.
type AssignmentReader interface {
	ListForUser(ctx context.Context, userID int64) ([]domain.ProjectAssignment, error)
}

type Proposer interface {
	Propose(ctx context.Context, actor domain.Actor, action confirm.Action) (*confirm.Token, error)
	Register(kind string, c confirm.Committer)
}

type Service struct {
	repo        Repository
	assignments AssignmentReader
	confirms    Proposer
	logger      *slog.Logger
}

func NewService(repo Repository, assignments AssignmentReader, confirms Proposer, logger *slog.Logger) *Service {
	s := &Service{
		repo:        repo,
		assignments: assignments,
		confirms:    confirms,
		logger:      logger,
	}
	if confirms != nil {
		confirms.Register(confirm.KindDeleteProject, s.commitDelete)
	}
	return s
}

// ListVisible returns the projects actor may browse or log hours against.
func (s *Service) ListVisible(ctx context.Context, actor domain.Actor) ([]domain.Project, error) {
	var (
		filter      ListFilter
		assignments []domain.ProjectAssignment
	)

	switch actor.Role {
	case domain.RoleAdmin:
	case domain.RoleManager:
		if actor.DepartmentID == nil {
			return []domain.Project{}, nil
		}
		filter.DepartmentID = actor.DepartmentID
	case domain.RoleEmployee:
		var err error
		assignments, err = s.assignments.ListForUser(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		if len(assignments) == 0 {
			return policy.VisibleProjectsFor(actor, nil, nil), nil
		}
		for _, a := range assignments {
			filter.IDs = append(filter.IDs, a.ProjectID)
		}
	}

	all, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return policy.VisibleProjectsFor(actor, all, assignments), nil
}

func (s *Service) Get(ctx context.Context, actor domain.Actor, id int64) (*domain.Project, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if policy.CanManageDepartment(actor, p.DepartmentID) {
		return p, nil
	}
	if actor.Role == domain.RoleManager || actor.Role == domain.RoleEmployee {
		assignments, err := s.assignments.ListForUser(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		for _, a := range assignments {
			if a.ProjectID == id {
				return p, nil
			}
		}
	}
	return nil, internal.ErrUnauthorizedAccess
}

func (s *Service) Create(ctx context.Context, actor domain.Actor, dto CreateProjectDTO) (*domain.Project, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if !policy.CanManageDepartment(actor, dto.DepartmentID) {
		s.logger.Warn("project create denied", "actor_id", actor.ID, "department_id", dto.DepartmentID)
		return nil, internal.ErrUnauthorizedAccess
	}

	status := domain.ProjectActive
	if dto.Status != "" {
		status, _ = domain.ParseProjectStatus(dto.Status)
	}

	p := &domain.Project{
		Name:         dto.Name,
		Description:  dto.Description,
		StartDate:    dto.StartDate,
		EndDate:      dto.EndDate,
		DepartmentID: dto.DepartmentID,
		Status:       status,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error("failed to create project", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("project created", "project_id", p.ID, "department_id", p.DepartmentID, "actor_id", actor.ID)
	return p, nil
}

func (s *Service) Update(ctx context.Context, actor domain.Actor, id int64, dto UpdateProjectDTO) (*domain.Project, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanManageDepartment(actor, p.DepartmentID) {
		return nil, internal.ErrUnauthorizedAccess
	}

	if dto.Name != nil {
		p.Name = *dto.Name
	}
	if dto.Description != nil {
		p.Description = *dto.Description
	}
	if dto.StartDate != nil {
		p.StartDate = *dto.StartDate
	}
	if dto.EndDate != nil {
		p.EndDate = *dto.EndDate
	}
	if dto.Status != nil {
		p.Status, _ = domain.ParseProjectStatus(*dto.Status)
	}
	if err := validateDates(p.StartDate, p.EndDate); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		s.logger.Error("failed to update project", "error", err, "project_id", id)
		return nil, err
	}
	return p, nil
}

func (s *Service) ProposeDelete(ctx context.Context, actor domain.Actor, id int64) (*confirm.Token, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanManageDepartment(actor, p.DepartmentID) {
		return nil, internal.ErrUnauthorizedAccess
	}
	return s.confirms.Propose(ctx, actor, confirm.Action{
		Kind:     confirm.KindDeleteProject,
		TargetID: id,
		Summary:  fmt.Sprintf("Delete project %q and all of its assignments", p.Name),
	})
}

func (s *Service) commitDelete(ctx context.Context, actor domain.Actor, action confirm.Action) (interface{}, error) {
	p, err := s.repo.GetByID(ctx, action.TargetID)
	if err != nil {
		return nil, err
	}
	if !policy.CanManageDepartment(actor, p.DepartmentID) {
		return nil, internal.ErrUnauthorizedAccess
	}
	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return nil, err
	}
	s.logger.Info("project deleted", "project_id", p.ID, "actor_id", actor.ID)
	return map[string]int64{"deletedProjectId": p.ID}, nil
}
