package client

import (
	"context"

	"github.com/frahmantamala/timesheet-management/internal/assignment"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
)

type AssignmentRepository struct {
	c *Client
}

func NewAssignmentRepository(c *Client) *AssignmentRepository {
	return &AssignmentRepository{c: c}
}

func (r *AssignmentRepository) Create(ctx context.Context, a *domain.ProjectAssignment) error {
	body := assignment.AssignDTO{UserID: a.UserID, RoleInProject: string(a.RoleInProject)}
	var created domain.ProjectAssignment
	if err := r.c.Post(ctx, pathf("/projects/%d/assignments", a.ProjectID), body, &created); err != nil {
		return err
	}
	*a = created
	return nil
}

func (r *AssignmentRepository) Get(ctx context.Context, projectID, userID int64) (*domain.ProjectAssignment, error) {
	var a domain.ProjectAssignment
	if err := r.c.Get(ctx, pathf("/projects/%d/assignments/%d", projectID, userID), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AssignmentRepository) UpdateRole(ctx context.Context, projectID, userID int64, role domain.ProjectRole) error {
	body := assignment.UpdateRoleDTO{RoleInProject: string(role)}
	return r.c.Put(ctx, pathf("/projects/%d/assignments/%d", projectID, userID), body, nil)
}

// Delete always reports a removal; the API treats removing a missing
// assignment as success.
func (r *AssignmentRepository) Delete(ctx context.Context, projectID, userID int64) (bool, error) {
	if err := r.c.Delete(ctx, pathf("/projects/%d/assignments/%d", projectID, userID)); err != nil {
		return false, err
	}
	return true, nil
}

func (r *AssignmentRepository) ListForUser(ctx context.Context, userID int64) ([]domain.ProjectAssignment, error) {
	out := []domain.ProjectAssignment{}
	if err := r.c.Get(ctx, pathf("/users/%d/assignments", userID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AssignmentRepository) ListForProject(ctx context.Context, projectID int64) ([]domain.ProjectAssignment, error) {
	out := []domain.ProjectAssignment{}
	if err := r.c.Get(ctx, pathf("/projects/%d/assignments", projectID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AssignBatch posts a batch and returns the per-user outcome.
func (r *AssignmentRepository) AssignBatch(ctx context.Context, projectID int64, dto assignment.BatchAssignDTO) ([]assignment.Result, error) {
	out := []assignment.Result{}
	if err := r.c.Post(ctx, pathf("/projects/%d/assignments/batch", projectID), dto, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IsAssigned lets the client refuse hours on a foreign project before the
// round trip. The server repeats the check.
func (r *AssignmentRepository) IsAssigned(ctx context.Context, userID, projectID int64) (bool, error) {
	assignments, err := r.ListForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, a := range assignments {
		if a.ProjectID == projectID {
			return true, nil
		}
	}
	return false, nil
}
