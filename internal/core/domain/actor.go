package domain

// Actor is the authenticated caller. It is passed explicitly to every policy
// decision and service call.
type Actor struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name,omitempty"`
	Role         Role   `json:"role"`
	DepartmentID *int64 `json:"departmentId,omitempty"`
}

// InDepartment reports whether the actor belongs to department id.
func (a Actor) InDepartment(id int64) bool {
	return a.DepartmentID != nil && *a.DepartmentID == id
}

// ActorFromUser derives the session context of u.
func ActorFromUser(u *User) Actor {
	return Actor{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		DepartmentID: u.DepartmentID,
	}
}
