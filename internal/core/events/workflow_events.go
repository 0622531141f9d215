package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeTimesheetSubmitted = "timesheet.submitted"
	EventTypeTimesheetApproved  = "timesheet.approved"
	EventTypeTimesheetRejected  = "timesheet.rejected"
	EventTypeAssignmentCreated  = "assignment.created"
	EventTypeAssignmentRemoved  = "assignment.removed"
	EventTypeManagerReassigned  = "department.manager_reassigned"
)

func newBase(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

type TimesheetSubmittedEvent struct {
	BaseEvent
	EntryID int64   `json:"entry_id"`
	UserID  int64   `json:"user_id"`
	Hours   float64 `json:"hours"`
}

func NewTimesheetSubmittedEvent(entryID, userID int64, hours float64) *TimesheetSubmittedEvent {
	return &TimesheetSubmittedEvent{
		BaseEvent: newBase(EventTypeTimesheetSubmitted, map[string]interface{}{
			"entry_id": entryID,
			"user_id":  userID,
			"hours":    hours,
		}),
		EntryID: entryID,
		UserID:  userID,
		Hours:   hours,
	}
}

// TimesheetTransitionedEvent is published as timesheet.approved or
// timesheet.rejected.
type TimesheetTransitionedEvent struct {
	BaseEvent
	EntryID   int64  `json:"entry_id"`
	OwnerID   int64  `json:"owner_id"`
	ManagerID int64  `json:"manager_id"`
	Status    string `json:"status"`
	Remarks   string `json:"remarks"`
}

func NewTimesheetTransitionedEvent(entryID, ownerID, managerID int64, status, remarks string) *TimesheetTransitionedEvent {
	eventType := EventTypeTimesheetRejected
	if status == "APPROVED" {
		eventType = EventTypeTimesheetApproved
	}
	return &TimesheetTransitionedEvent{
		BaseEvent: newBase(eventType, map[string]interface{}{
			"entry_id":   entryID,
			"owner_id":   ownerID,
			"manager_id": managerID,
			"status":     status,
			"remarks":    remarks,
		}),
		EntryID:   entryID,
		OwnerID:   ownerID,
		ManagerID: managerID,
		Status:    status,
		Remarks:   remarks,
	}
}

type AssignmentChangedEvent struct {
	BaseEvent
	ProjectID int64  `json:"project_id"`
	UserID    int64  `json:"user_id"`
	Role      string `json:"role,omitempty"`
	ActorID   int64  `json:"actor_id"`
}

func NewAssignmentChangedEvent(eventType string, projectID, userID int64, role string, actorID int64) *AssignmentChangedEvent {
	return &AssignmentChangedEvent{
		BaseEvent: newBase(eventType, map[string]interface{}{
			"project_id": projectID,
			"user_id":    userID,
			"role":       role,
			"actor_id":   actorID,
		}),
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		ActorID:   actorID,
	}
}

type ManagerReassignedEvent struct {
	BaseEvent
	DepartmentID     int64  `json:"department_id"`
	NewManagerID     int64  `json:"new_manager_id"`
	DemotedManagerID *int64 `json:"demoted_manager_id,omitempty"`
}

func NewManagerReassignedEvent(departmentID, newManagerID int64, demoted *int64) *ManagerReassignedEvent {
	return &ManagerReassignedEvent{
		BaseEvent: newBase(EventTypeManagerReassigned, map[string]interface{}{
			"department_id":      departmentID,
			"new_manager_id":     newManagerID,
			"demoted_manager_id": demoted,
		}),
		DepartmentID:     departmentID,
		NewManagerID:     newManagerID,
		DemotedManagerID: demoted,
	}
}
