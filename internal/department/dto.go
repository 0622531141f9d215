package department

import (
	"strings"

	"github.com/frahmantamala/timesheet-management/internal/core/common/validation"
)

type CreateDepartmentDTO struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description,omitempty" validate:"max=500"`
}

func (dto *CreateDepartmentDTO) Validate() error {
	dto.Name = strings.TrimSpace(dto.Name)
	dto.Description = strings.TrimSpace(dto.Description)
	return validation.Struct(dto)
}

// UpdateDepartmentDTO edits the descriptive fields. The manager only changes
// through a confirmed reassignment.
type UpdateDepartmentDTO struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

func (dto *UpdateDepartmentDTO) Validate() error {
	if dto.Name != nil {
		trimmed := strings.TrimSpace(*dto.Name)
		dto.Name = &trimmed
	}
	return validation.Struct(dto)
}

type ManagerChangeDTO struct {
	ManagerID int64 `json:"managerId" validate:"required,gt=0"`
}

func (dto *ManagerChangeDTO) Validate() error {
	return validation.Struct(dto)
}
