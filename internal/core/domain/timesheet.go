package domain

import (
	"strconv"
	"strings"
	"time"
)

type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "PENDING"
	StatusApproved ApprovalStatus = "APPROVED"
	StatusRejected ApprovalStatus = "REJECTED"
)

func ParseApprovalStatus(raw string) (ApprovalStatus, bool) {
	switch s := ApprovalStatus(strings.ToUpper(strings.TrimSpace(raw))); s {
	case StatusPending, StatusApproved, StatusRejected:
		return s, true
	default:
		return "", false
	}
}

// IsTerminal reports whether no further transition is defined from s.
func (s ApprovalStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransitionTo reports whether s -> to is an edge of the approval workflow.
func (s ApprovalStatus) CanTransitionTo(to ApprovalStatus) bool {
	return s == StatusPending && to.IsTerminal()
}

type TimesheetEntry struct {
	ID             int64          `json:"id"`
	UserID         int64          `json:"userId"`
	WorkDate       Date           `json:"workDate"`
	ProjectID      *int64         `json:"projectId,omitempty"`
	ActivityType   string         `json:"activityType,omitempty"`
	HoursWorked    float64        `json:"hoursWorked"`
	Description    string         `json:"description,omitempty"`
	ApprovalStatus ApprovalStatus `json:"approvalStatus"`
	Remarks        string         `json:"remarks,omitempty"`
	ActionedBy     *int64         `json:"actionedBy,omitempty"`
	ActionedAt     *time.Time     `json:"actionedAt,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

func (e *TimesheetEntry) IsPending() bool {
	return e.ApprovalStatus == StatusPending
}

// Target renders what the hours were logged against.
func (e *TimesheetEntry) Target() string {
	if e.ActivityType != "" {
		if p, ok := SyntheticProject(e.ActivityType); ok {
			return p.Name
		}
		return e.ActivityType
	}
	if e.ProjectID != nil {
		return "project #" + strconv.FormatInt(*e.ProjectID, 10)
	}
	return ""
}

// Transition moves a pending entry into a terminal state. The caller has
// already checked authority.
func (e *TimesheetEntry) Transition(to ApprovalStatus, remarks string, actorID int64, at time.Time) bool {
	if !e.ApprovalStatus.CanTransitionTo(to) {
		return false
	}
	e.ApprovalStatus = to
	e.Remarks = remarks
	e.ActionedBy = &actorID
	e.ActionedAt = &at
	e.UpdatedAt = at
	return true
}
