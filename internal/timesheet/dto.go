package timesheet

import (
	"strings"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/core/common/validation"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
)

const MaxHoursPerEntry = 24

// EntryDTO is the full set of fields an owner supplies for an entry. Any
// approval status sent by the caller is ignored.
type EntryDTO struct {
	WorkDate     domain.Date `json:"workDate"`
	ProjectID    *int64      `json:"projectId,omitempty"`
	ActivityType string      `json:"activityType,omitempty"`
	HoursWorked  float64     `json:"hoursWorked"`
	Description  string      `json:"description,omitempty" validate:"max=1000"`
}

// Validate reports the first unmet constraint, checked in the order
// workDate, target, hoursWorked, description.
func (dto *EntryDTO) Validate() error {
	dto.ActivityType = strings.ToLower(strings.TrimSpace(dto.ActivityType))
	dto.Description = strings.TrimSpace(dto.Description)

	if dto.WorkDate.IsZero() {
		return internal.NewValidationFieldError("workDate", "workDate is required", internal.ErrCodeRequired)
	}

	hasProject := dto.ProjectID != nil && *dto.ProjectID > 0
	hasActivity := dto.ActivityType != ""
	switch {
	case dto.ProjectID != nil && *dto.ProjectID <= 0:
		return internal.NewValidationFieldError("projectId", "projectId must be greater than 0", internal.ErrCodeInvalidTarget)
	case hasProject && hasActivity:
		return internal.NewValidationFieldError("projectId", "set either projectId or activityType, not both", internal.ErrCodeInvalidTarget)
	case !hasProject && !hasActivity:
		return internal.NewValidationFieldError("projectId", "projectId or activityType is required", internal.ErrCodeInvalidTarget)
	case hasActivity:
		if _, ok := domain.SyntheticProject(dto.ActivityType); !ok {
			return internal.NewValidationFieldError("activityType", "activityType must be one of training, other", internal.ErrCodeInvalidTarget)
		}
	}

	if dto.HoursWorked <= 0 {
		return internal.NewValidationFieldError("hoursWorked", "hoursWorked must be greater than 0", internal.ErrCodeInvalidHours)
	}
	if dto.HoursWorked > MaxHoursPerEntry {
		return internal.NewValidationFieldError("hoursWorked", "hoursWorked must not exceed 24", internal.ErrCodeInvalidHours)
	}

	if err := validation.Struct(dto); err != nil {
		return err
	}
	return nil
}

// PatchDTO is a partial update. Setting projectId clears activityType and the
// other way round.
type PatchDTO struct {
	WorkDate     *domain.Date `json:"workDate,omitempty"`
	ProjectID    *int64       `json:"projectId,omitempty"`
	ActivityType *string      `json:"activityType,omitempty"`
	HoursWorked  *float64     `json:"hoursWorked,omitempty"`
	Description  *string      `json:"description,omitempty"`
}

// Apply merges the patch over the current entry values.
func (p PatchDTO) Apply(current *domain.TimesheetEntry) EntryDTO {
	merged := EntryDTO{
		WorkDate:     current.WorkDate,
		ProjectID:    current.ProjectID,
		ActivityType: current.ActivityType,
		HoursWorked:  current.HoursWorked,
		Description:  current.Description,
	}
	if p.WorkDate != nil {
		merged.WorkDate = *p.WorkDate
	}
	if p.ProjectID != nil {
		merged.ProjectID = p.ProjectID
		if p.ActivityType == nil {
			merged.ActivityType = ""
		}
	}
	if p.ActivityType != nil {
		merged.ActivityType = *p.ActivityType
		if p.ProjectID == nil {
			merged.ProjectID = nil
		}
	}
	if p.HoursWorked != nil {
		merged.HoursWorked = *p.HoursWorked
	}
	if p.Description != nil {
		merged.Description = *p.Description
	}
	return merged
}
