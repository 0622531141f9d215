package approval

import "github.com/frahmantamala/timesheet-management/internal/core/domain"

// Scope is what a manager oversees: the department's structural counts and
// every entry logged by its members.
type Scope struct {
	TeamCount     int
	ProjectsCount int
	Entries       []domain.TimesheetEntry
}

type ManagerStats struct {
	TeamCount         int `json:"teamCount"`
	ProjectsCount     int `json:"projectsCount"`
	ApprovalsActioned int `json:"approvalsActioned"`
	PendingApprovals  int `json:"pendingApprovals"`
}

// ComputeStats counts the entries of scope that managerID decides on.
func ComputeStats(scope *Scope, managerID int64) *ManagerStats {
	stats := &ManagerStats{}
	if scope == nil {
		return stats
	}
	stats.TeamCount = scope.TeamCount
	stats.ProjectsCount = scope.ProjectsCount
	for _, e := range scope.Entries {
		if e.UserID == managerID {
			continue
		}
		switch e.ApprovalStatus {
		case domain.StatusPending:
			stats.PendingApprovals++
		case domain.StatusApproved, domain.StatusRejected:
			stats.ApprovalsActioned++
		}
	}
	return stats
}
