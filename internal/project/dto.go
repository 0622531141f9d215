package project

import (
	"strings"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/core/common/validation"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
)

type CreateProjectDTO struct {
	Name         string      `json:"name" validate:"required,max=150"`
	Description  string      `json:"description,omitempty" validate:"max=1000"`
	StartDate    domain.Date `json:"startDate"`
	EndDate      domain.Date `json:"endDate"`
	DepartmentID int64       `json:"departmentId" validate:"required,gt=0"`
	Status       string      `json:"status,omitempty" validate:"omitempty,project_status"`
}

func (dto *CreateProjectDTO) Validate() error {
	dto.Name = strings.TrimSpace(dto.Name)
	if err := validation.Struct(dto); err != nil {
		return err
	}
	return validateDates(dto.StartDate, dto.EndDate)
}

// UpdateProjectDTO is a partial update. A project never moves between
// departments.
type UpdateProjectDTO struct {
	Name        *string      `json:"name,omitempty" validate:"omitempty,min=1,max=150"`
	Description *string      `json:"description,omitempty" validate:"omitempty,max=1000"`
	StartDate   *domain.Date `json:"startDate,omitempty"`
	EndDate     *domain.Date `json:"endDate,omitempty"`
	Status      *string      `json:"status,omitempty" validate:"omitempty,project_status"`
}

func (dto *UpdateProjectDTO) Validate() error {
	if err := validation.Struct(dto); err != nil {
		return err
	}
	return nil
}

func validateDates(start, end domain.Date) error {
	if start.IsZero() {
		return internal.NewValidationFieldError("startDate", "startDate is required", internal.ErrCodeRequired)
	}
	if end.IsZero() {
		return internal.NewValidationFieldError("endDate", "endDate is required", internal.ErrCodeRequired)
	}
	if start.After(end.Time) {
		return internal.NewValidationFieldError("endDate", "endDate must not be before startDate", internal.ErrCodeInvalidDate)
	}
	return nil
}
