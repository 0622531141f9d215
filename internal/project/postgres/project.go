package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/timesheet-management/internal"
	assignmentDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/assignment"
	projectDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/project"
	timesheetDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/project"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	model := project.ToDataModel(p)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	p.ID = model.ID
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	var model projectDatamodel.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrProjectNotFound
		}
		return nil, err
	}
	return project.FromDataModel(&model), nil
}

func (r *ProjectRepository) List(ctx context.Context, filter project.ListFilter) ([]domain.Project, error) {
	var models []projectDatamodel.Project
	q := r.db.WithContext(ctx).Order("id ASC")
	if filter.DepartmentID != nil {
		q = q.Where("department_id = ?", *filter.DepartmentID)
	}
	if len(filter.IDs) > 0 {
		q = q.Where("id IN ?", filter.IDs)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Project, 0, len(models))
	for i := range models {
		out = append(out, *project.FromDataModel(&models[i]))
	}
	return out, nil
}

func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	result := r.db.WithContext(ctx).
		Model(&projectDatamodel.Project{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"name":        p.Name,
			"description": p.Description,
			"start_date":  p.StartDate.Time,
			"end_date":    p.EndDate.Time,
			"status":      string(p.Status),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrProjectNotFound
	}
	return nil
}

// Delete removes the project and its assignments. Projects that already
// carry logged hours are kept.
func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entries int64
		if err := tx.Model(&timesheetDatamodel.Timesheet{}).Where("project_id = ?", id).Count(&entries).Error; err != nil {
			return err
		}
		if entries > 0 {
			return internal.NewConflictError("Project has timesheet entries and cannot be deleted", internal.ErrCodeInUse)
		}
		if err := tx.Where("project_id = ?", id).Delete(&assignmentDatamodel.ProjectAssignment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&projectDatamodel.Project{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return internal.ErrProjectNotFound
		}
		return nil
	})
}
