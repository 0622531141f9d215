package client

import (
	"context"
	"net/url"

	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

// TimesheetRepository serves timesheet.Service from the API.
type TimesheetRepository struct {
	c *Client
}

func NewTimesheetRepository(c *Client) *TimesheetRepository {
	return &TimesheetRepository{c: c}
}

func (r *TimesheetRepository) Create(ctx context.Context, e *domain.TimesheetEntry) error {
	body := timesheet.EntryDTO{
		WorkDate:     e.WorkDate,
		ProjectID:    e.ProjectID,
		ActivityType: e.ActivityType,
		HoursWorked:  e.HoursWorked,
		Description:  e.Description,
	}
	var created domain.TimesheetEntry
	if err := r.c.Post(ctx, "/timesheets", body, &created); err != nil {
		return err
	}
	*e = created
	return nil
}

func (r *TimesheetRepository) GetByID(ctx context.Context, id int64) (*domain.TimesheetEntry, error) {
	var e domain.TimesheetEntry
	if err := r.c.Get(ctx, pathf("/timesheets/%d", id), &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListByUser lists the entries of the authenticated user; the API scopes
// the list by token.
func (r *TimesheetRepository) ListByUser(ctx context.Context, _ int64) ([]domain.TimesheetEntry, error) {
	entries := []domain.TimesheetEntry{}
	if err := r.c.Get(ctx, "/timesheets", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *TimesheetRepository) ListByUserOnDate(ctx context.Context, _ int64, day domain.Date) ([]domain.TimesheetEntry, error) {
	entries := []domain.TimesheetEntry{}
	if err := r.c.Get(ctx, "/timesheets?date="+url.QueryEscape(day.String()), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *TimesheetRepository) ListByDepartment(ctx context.Context, departmentID int64) ([]domain.TimesheetEntry, error) {
	entries := []domain.TimesheetEntry{}
	if err := r.c.Get(ctx, pathf("/departments/%d/timesheets", departmentID), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *TimesheetRepository) Update(ctx context.Context, e *domain.TimesheetEntry) error {
	date := e.WorkDate
	hours := e.HoursWorked
	description := e.Description
	patch := timesheet.PatchDTO{
		WorkDate:    &date,
		HoursWorked: &hours,
		Description: &description,
	}
	if e.ProjectID != nil {
		patch.ProjectID = e.ProjectID
	} else {
		activity := e.ActivityType
		patch.ActivityType = &activity
	}

	var updated domain.TimesheetEntry
	if err := r.c.Put(ctx, pathf("/timesheets/%d", e.ID), patch, &updated); err != nil {
		return err
	}
	*e = updated
	return nil
}

func (r *TimesheetRepository) Delete(ctx context.Context, id int64) error {
	return r.c.Delete(ctx, pathf("/timesheets/%d", id))
}

// Stats reads the dashboard counts of the authenticated user.
func (r *TimesheetRepository) Stats(ctx context.Context) (*timesheet.Stats, error) {
	var stats timesheet.Stats
	if err := r.c.Get(ctx, "/timesheets/me/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
