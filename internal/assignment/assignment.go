package assignment

import (
	"github.com/frahmantamala/timesheet-management/internal"
	assignmentDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/assignment"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
)

// AssignedUser is a project assignment joined with the assignee's profile.
type AssignedUser struct {
	domain.ProjectAssignment
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Result reports the outcome of one assignment inside a batch.
type Result struct {
	UserID     int64                     `json:"userId"`
	Assignment *domain.ProjectAssignment `json:"assignment,omitempty"`
	Error      *internal.AppError        `json:"error,omitempty"`
}

func (r Result) OK() bool {
	return r.Error == nil
}

func ToDataModel(a *domain.ProjectAssignment) *assignmentDatamodel.ProjectAssignment {
	return &assignmentDatamodel.ProjectAssignment{
		ID:            a.ID,
		UserID:        a.UserID,
		ProjectID:     a.ProjectID,
		RoleInProject: string(a.RoleInProject),
		CreatedAt:     a.CreatedAt,
	}
}

func FromDataModel(a *assignmentDatamodel.ProjectAssignment) *domain.ProjectAssignment {
	role, _ := domain.ParseProjectRole(a.RoleInProject)
	return &domain.ProjectAssignment{
		ID:            a.ID,
		UserID:        a.UserID,
		ProjectID:     a.ProjectID,
		RoleInProject: role,
		CreatedAt:     a.CreatedAt,
	}
}
