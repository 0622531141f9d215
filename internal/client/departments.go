package client

import (
	"context"

	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/department"
)

type DepartmentRepository struct {
	c *Client
}

func NewDepartmentRepository(c *Client) *DepartmentRepository {
	return &DepartmentRepository{c: c}
}

func (r *DepartmentRepository) List(ctx context.Context) ([]domain.Department, error) {
	out := []domain.Department{}
	if err := r.c.Get(ctx, "/departments", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *DepartmentRepository) ProposeManagerChange(ctx context.Context, departmentID, managerID int64) (*Confirmation, error) {
	var token Confirmation
	body := department.ManagerChangeDTO{ManagerID: managerID}
	if err := r.c.Post(ctx, pathf("/departments/%d/manager-proposals", departmentID), body, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *DepartmentRepository) ProposeDelete(ctx context.Context, departmentID int64) (*Confirmation, error) {
	var token Confirmation
	if err := r.c.Post(ctx, pathf("/departments/%d/delete-proposals", departmentID), nil, &token); err != nil {
		return nil, err
	}
	return &token, nil
}
