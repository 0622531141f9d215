package department

import (
	departmentDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/department"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
)

// Reassignment is the outcome of a committed manager change.
type Reassignment struct {
	Department       *domain.Department `json:"department"`
	NewManagerID     int64              `json:"newManagerId"`
	DemotedManagerID *int64             `json:"demotedManagerId,omitempty"`
}

func ToDataModel(d *domain.Department) *departmentDatamodel.Department {
	return &departmentDatamodel.Department{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		ManagerID:   d.ManagerID,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func FromDataModel(d *departmentDatamodel.Department) *domain.Department {
	return &domain.Department{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		ManagerID:   d.ManagerID,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
