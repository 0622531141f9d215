// Package policy holds the pure authorization rules. Nothing here performs
// I/O; callers fetch the current state and turn a false answer into the
// user-facing error.
package policy

import "github.com/frahmantamala/timesheet-management/internal/core/domain"

func CanViewAllUsers(role domain.Role) bool {
	switch role {
	case domain.RoleAdmin:
		return true
	case domain.RoleManager, domain.RoleEmployee:
		return false
	}
	return false
}

func CanManageDepartment(actor domain.Actor, departmentID int64) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleManager:
		return actor.InDepartment(departmentID)
	case domain.RoleEmployee:
		return false
	}
	return false
}

// CanEditTimesheet holds only for the owner of a still pending entry.
func CanEditTimesheet(entry *domain.TimesheetEntry, actor domain.Actor) bool {
	if entry == nil {
		return false
	}
	return entry.UserID == actor.ID && entry.IsPending()
}

func CanDeleteTimesheet(entry *domain.TimesheetEntry, actor domain.Actor) bool {
	return CanEditTimesheet(entry, actor)
}

// HasApprovalAuthority reports whether actor manages the department the
// entry owner belongs to, ignoring the entry status.
func HasApprovalAuthority(actor domain.Actor, ownerDepartmentID *int64) bool {
	switch actor.Role {
	case domain.RoleManager:
		return ownerDepartmentID != nil && actor.InDepartment(*ownerDepartmentID)
	case domain.RoleAdmin, domain.RoleEmployee:
		return false
	}
	return false
}

// IsOwnEntry holds when actor logged entry. Nobody decides on their own hours.
func IsOwnEntry(entry *domain.TimesheetEntry, actor domain.Actor) bool {
	return entry != nil && entry.UserID == actor.ID
}

func CanTransitionApproval(entry *domain.TimesheetEntry, actor domain.Actor, ownerDepartmentID *int64) bool {
	if entry == nil || IsOwnEntry(entry, actor) {
		return false
	}
	return HasApprovalAuthority(actor, ownerDepartmentID) && entry.IsPending()
}

func CanViewUser(actor domain.Actor, target *domain.User) bool {
	if target == nil {
		return false
	}
	if actor.ID == target.ID {
		return true
	}
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleManager:
		return target.DepartmentID != nil && actor.InDepartment(*target.DepartmentID)
	case domain.RoleEmployee:
		return false
	}
	return false
}

func CanViewTimesheet(entry *domain.TimesheetEntry, actor domain.Actor, ownerDepartmentID *int64) bool {
	if entry == nil {
		return false
	}
	if entry.UserID == actor.ID {
		return true
	}
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleManager:
		return ownerDepartmentID != nil && actor.InDepartment(*ownerDepartmentID)
	case domain.RoleEmployee:
		return false
	}
	return false
}

// VisibleProjectsFor narrows all to what actor may log against or browse.
// Employees see their assigned projects followed by the synthetic internal
// activities.
func VisibleProjectsFor(actor domain.Actor, all []domain.Project, assignments []domain.ProjectAssignment) []domain.Project {
	out := make([]domain.Project, 0, len(all))
	switch actor.Role {
	case domain.RoleAdmin:
		out = append(out, all...)
	case domain.RoleManager:
		for _, p := range all {
			if actor.InDepartment(p.DepartmentID) {
				out = append(out, p)
			}
		}
	case domain.RoleEmployee:
		assigned := make(map[int64]struct{}, len(assignments))
		for _, a := range assignments {
			if a.UserID == actor.ID {
				assigned[a.ProjectID] = struct{}{}
			}
		}
		for _, p := range all {
			if _, ok := assigned[p.ID]; ok {
				out = append(out, p)
			}
		}
		out = append(out, domain.SyntheticProjects()...)
	}
	return out
}
