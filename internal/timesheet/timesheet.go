package timesheet

import (
	timesheetDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
)

// Stats summarises one user's logged hours.
type Stats struct {
	WeeklyHours   float64 `json:"weeklyHours"`
	MonthlyHours  float64 `json:"monthlyHours"`
	PendingCount  int     `json:"pendingCount"`
	ApprovedCount int     `json:"approvedCount"`
	RejectedCount int     `json:"rejectedCount"`
}

func ToDataModel(e *domain.TimesheetEntry) *timesheetDatamodel.Timesheet {
	var activity *string
	if e.ActivityType != "" {
		a := e.ActivityType
		activity = &a
	}
	return &timesheetDatamodel.Timesheet{
		ID:             e.ID,
		UserID:         e.UserID,
		ProjectID:      e.ProjectID,
		ActivityType:   activity,
		WorkDate:       e.WorkDate.Time,
		HoursWorked:    e.HoursWorked,
		Description:    e.Description,
		ApprovalStatus: string(e.ApprovalStatus),
		Remarks:        e.Remarks,
		ActionedBy:     e.ActionedBy,
		ActionedAt:     e.ActionedAt,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func FromDataModel(t *timesheetDatamodel.Timesheet) *domain.TimesheetEntry {
	status, ok := domain.ParseApprovalStatus(t.ApprovalStatus)
	if !ok {
		status = domain.StatusPending
	}
	e := &domain.TimesheetEntry{
		ID:             t.ID,
		UserID:         t.UserID,
		WorkDate:       domain.DateOf(t.WorkDate),
		ProjectID:      t.ProjectID,
		HoursWorked:    t.HoursWorked,
		Description:    t.Description,
		ApprovalStatus: status,
		Remarks:        t.Remarks,
		ActionedBy:     t.ActionedBy,
		ActionedAt:     t.ActionedAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
	if t.ActivityType != nil {
		e.ActivityType = *t.ActivityType
	}
	return e
}
