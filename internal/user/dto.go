package user

import (
	"strings"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/core/common/validation"
)

type CreateUserDTO struct {
	Email        string `json:"email" validate:"required,email,max=255"`
	Name         string `json:"name" validate:"required,max=100"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
	Role         string `json:"role" validate:"required,user_role"`
	DepartmentID *int64 `json:"departmentId,omitempty" validate:"omitempty,gt=0"`
}

func (dto *CreateUserDTO) Validate() error {
	dto.Email = strings.ToLower(strings.TrimSpace(dto.Email))
	dto.Name = strings.TrimSpace(dto.Name)
	if err := validation.Struct(dto); err != nil {
		return err
	}
	return nil
}

// UpdateUserDTO is a partial update; nil fields are left untouched.
// Setting ClearDepartment removes the department.
type UpdateUserDTO struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Role            *string `json:"role,omitempty" validate:"omitempty,user_role"`
	DepartmentID    *int64  `json:"departmentId,omitempty" validate:"omitempty,gt=0"`
	ClearDepartment bool    `json:"clearDepartment,omitempty"`
	Active          *bool   `json:"active,omitempty"`
	Password        *string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
}

func (dto *UpdateUserDTO) Validate() error {
	if err := validation.Struct(dto); err != nil {
		return err
	}
	if dto.ClearDepartment && dto.DepartmentID != nil {
		return internal.NewValidationFieldError("departmentId", "departmentId cannot be set while clearing the department", internal.ErrCodeInvalidValue)
	}
	return nil
}
