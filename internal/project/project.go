package project

import (
	projectDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/project"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
)

func ToDataModel(p *domain.Project) *projectDatamodel.Project {
	return &projectDatamodel.Project{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		StartDate:    p.StartDate.Time,
		EndDate:      p.EndDate.Time,
		DepartmentID: p.DepartmentID,
		Status:       string(p.Status),
	}
}

func FromDataModel(p *projectDatamodel.Project) *domain.Project {
	status, ok := domain.ParseProjectStatus(p.Status)
	if !ok {
		status = domain.ProjectActive
	}
	return &domain.Project{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		StartDate:    domain.DateOf(p.StartDate),
		EndDate:      domain.DateOf(p.EndDate),
		DepartmentID: p.DepartmentID,
		Status:       status,
	}
}
