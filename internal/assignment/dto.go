package assignment

import (
	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/core/common/validation"
)

type AssignDTO struct {
	UserID        int64  `json:"userId" validate:"required,gt=0"`
	RoleInProject string `json:"roleInProject" validate:"required,project_role"`
}

func (dto *AssignDTO) Validate() error {
	if err := validation.Struct(dto); err != nil {
		return err
	}
	return nil
}

type UpdateRoleDTO struct {
	RoleInProject string `json:"roleInProject" validate:"required,project_role"`
}

func (dto *UpdateRoleDTO) Validate() error {
	if err := validation.Struct(dto); err != nil {
		return err
	}
	return nil
}

type BatchAssignDTO struct {
	Assignments []AssignDTO `json:"assignments"`
}

func (dto *BatchAssignDTO) Validate() error {
	if len(dto.Assignments) == 0 {
		return internal.NewValidationFieldError("assignments", "assignments must not be empty", internal.ErrCodeRequired)
	}
	return nil
}
