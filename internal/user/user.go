package user

import (
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	userDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/user"
)

func ToDataModel(u *domain.User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         u.Role.String(),
		DepartmentID: u.DepartmentID,
		IsActive:     u.Active,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *domain.User {
	return &domain.User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         domain.ParseRole(u.Role),
		DepartmentID: u.DepartmentID,
		Active:       u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
