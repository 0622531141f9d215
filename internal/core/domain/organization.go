package domain

import (
	"strings"
	"time"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	DepartmentID *int64    `json:"departmentId,omitempty"`
	Active       bool      `json:"active"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Department struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ManagerID   *int64    `json:"managerId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectOnHold    ProjectStatus = "ON_HOLD"
	ProjectCompleted ProjectStatus = "COMPLETED"
)

func ParseProjectStatus(raw string) (ProjectStatus, bool) {
	switch s := ProjectStatus(strings.ToUpper(strings.TrimSpace(raw))); s {
	case ProjectActive, ProjectOnHold, ProjectCompleted:
		return s, true
	default:
		return "", false
	}
}

type Project struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	StartDate    Date          `json:"startDate"`
	EndDate      Date          `json:"endDate"`
	DepartmentID int64         `json:"departmentId"`
	Status       ProjectStatus `json:"status"`
	// ActivityType is set only on synthetic internal-activity projects.
	ActivityType string `json:"activityType,omitempty"`
}

func (p Project) IsSynthetic() bool {
	return p.ActivityType != ""
}

const (
	ActivityTraining = "training"
	ActivityOther    = "other"
)

var syntheticProjects = []Project{
	{Name: "Training & Development", ActivityType: ActivityTraining, Status: ProjectActive},
	{Name: "Other Internal Work", ActivityType: ActivityOther, Status: ProjectActive},
}

// SyntheticProjects returns the internal activities every employee may log
// hours against regardless of assignments.
func SyntheticProjects() []Project {
	out := make([]Project, len(syntheticProjects))
	copy(out, syntheticProjects)
	return out
}

func SyntheticProject(activityType string) (Project, bool) {
	for _, p := range syntheticProjects {
		if p.ActivityType == activityType {
			return p, true
		}
	}
	return Project{}, false
}

type ProjectRole string

const (
	ProjectRoleDeveloper ProjectRole = "DEVELOPER"
	ProjectRoleTester    ProjectRole = "TESTER"
	ProjectRoleLead      ProjectRole = "LEAD"
)

func ParseProjectRole(raw string) (ProjectRole, bool) {
	switch r := ProjectRole(strings.ToUpper(strings.TrimSpace(raw))); r {
	case ProjectRoleDeveloper, ProjectRoleTester, ProjectRoleLead:
		return r, true
	default:
		return "", false
	}
}

type ProjectAssignment struct {
	ID            int64       `json:"id,omitempty"`
	UserID        int64       `json:"userId"`
	ProjectID     int64       `json:"projectId"`
	RoleInProject ProjectRole `json:"roleInProject"`
	CreatedAt     time.Time   `json:"createdAt"`
}
