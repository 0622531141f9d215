package approval

import (
	"strings"

	"github.com/frahmantamala/timesheet-management/internal/core/common/validation"
)

// StatusDTO is the body of PUT /approvals/{id}/status.
type StatusDTO struct {
	Status  string `json:"status" validate:"required,approval_decision"`
	Remarks string `json:"remarks" validate:"max=500"`
}

func (dto *StatusDTO) Validate() error {
	dto.Status = strings.ToUpper(strings.TrimSpace(dto.Status))
	dto.Remarks = strings.TrimSpace(dto.Remarks)
	if err := validation.Struct(dto); err != nil {
		return err
	}
	return nil
}
