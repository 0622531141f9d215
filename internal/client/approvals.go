package client

import (
	"context"
	"time"

	"github.com/frahmantamala/timesheet-management/internal/approval"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
)

// ApprovalRepository serves approval.Service from the API. The server
// performs the compare-and-set; a lost race comes back as an invalid state
// transition.
type ApprovalRepository struct {
	c *Client
}

func NewApprovalRepository(c *Client) *ApprovalRepository {
	return &ApprovalRepository{c: c}
}

func (r *ApprovalRepository) GetByID(ctx context.Context, id int64) (*domain.TimesheetEntry, error) {
	var e domain.TimesheetEntry
	if err := r.c.Get(ctx, pathf("/timesheets/%d", id), &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *ApprovalRepository) Transition(ctx context.Context, id int64, to domain.ApprovalStatus, remarks string, _ int64, _ time.Time) (*domain.TimesheetEntry, error) {
	body := approval.StatusDTO{Status: string(to), Remarks: remarks}
	var e domain.TimesheetEntry
	if err := r.c.Put(ctx, pathf("/approvals/%d/status", id), body, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *ApprovalRepository) Pending(ctx context.Context) ([]domain.TimesheetEntry, error) {
	entries := []domain.TimesheetEntry{}
	if err := r.c.Get(ctx, "/approvals/pending", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *ApprovalRepository) ManagerStats(ctx context.Context, managerID int64) (*approval.ManagerStats, error) {
	var stats approval.ManagerStats
	if err := r.c.Get(ctx, pathf("/managers/%d/stats", managerID), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
