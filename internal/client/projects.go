package client

import (
	"context"
	"net/http"

	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/project"
)

type ProjectRepository struct {
	c *Client
}

func NewProjectRepository(c *Client) *ProjectRepository {
	return &ProjectRepository{c: c}
}

func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	var p domain.Project
	if err := r.c.Get(ctx, pathf("/projects/%d", id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// List fetches the projects visible to the caller and narrows them by
// filter locally.
func (r *ProjectRepository) List(ctx context.Context, filter project.ListFilter) ([]domain.Project, error) {
	var all []domain.Project
	if err := r.c.Get(ctx, "/projects", &all); err != nil {
		return nil, err
	}

	ids := make(map[int64]bool, len(filter.IDs))
	for _, id := range filter.IDs {
		ids[id] = true
	}
	out := make([]domain.Project, 0, len(all))
	for _, p := range all {
		if p.IsSynthetic() {
			continue
		}
		if filter.DepartmentID != nil && p.DepartmentID != *filter.DepartmentID {
			continue
		}
		if len(ids) > 0 && !ids[p.ID] {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *ProjectRepository) Create(ctx context.Context, dto project.CreateProjectDTO) (*domain.Project, error) {
	var p domain.Project
	if err := r.c.Post(ctx, "/projects", dto, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) ProposeDelete(ctx context.Context, id int64) (*Confirmation, error) {
	var token Confirmation
	if err := r.c.do(ctx, http.MethodDelete, pathf("/projects/%d", id), nil, &token); err != nil {
		return nil, err
	}
	return &token, nil
}
