package domain

import (
	"encoding/json"
	"strings"
)

// Role is the closed set of roles a user can hold.
type Role int

const (
	RoleEmployee Role = iota
	RoleManager
	RoleAdmin
)

// ParseRole maps any role spelling ("ROLE_ADMIN", "admin", "Manager") onto a
// Role. Unknown or empty input is an employee.
func ParseRole(raw string) Role {
	upper := strings.ToUpper(raw)
	switch {
	case strings.Contains(upper, "ADMIN"):
		return RoleAdmin
	case strings.Contains(upper, "MANAGER"):
		return RoleManager
	default:
		return RoleEmployee
	}
}

// LookupRole is the strict counterpart of ParseRole used for input validation.
func LookupRole(raw string) (Role, bool) {
	switch strings.ToLower(strings.TrimPrefix(strings.ToUpper(raw), "ROLE_")) {
	case "employee":
		return RoleEmployee, true
	case "manager":
		return RoleManager, true
	case "admin":
		return RoleAdmin, true
	default:
		return RoleEmployee, false
	}
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleManager:
		return "manager"
	default:
		return "employee"
	}
}

// Authority is the spelling carried inside issued tokens.
func (r Role) Authority() string {
	return "ROLE_" + strings.ToUpper(r.String())
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = ParseRole(s)
	return nil
}
