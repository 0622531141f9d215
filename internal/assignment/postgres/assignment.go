package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/assignment"
	assignmentDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/assignment"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
)

type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) Create(ctx context.Context, a *domain.ProjectAssignment) error {
	model := assignment.ToDataModel(a)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		// the unique (user_id, project_id) index settles concurrent assigns
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return internal.ErrDuplicateAssign
		}
		return err
	}
	a.ID = model.ID
	a.CreatedAt = model.CreatedAt
	return nil
}

func (r *AssignmentRepository) Get(ctx context.Context, projectID, userID int64) (*domain.ProjectAssignment, error) {
	var model assignmentDatamodel.ProjectAssignment
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrAssignmentNotFound
		}
		return nil, err
	}
	return assignment.FromDataModel(&model), nil
}

func (r *AssignmentRepository) UpdateRole(ctx context.Context, projectID, userID int64, role domain.ProjectRole) error {
	result := r.db.WithContext(ctx).
		Model(&assignmentDatamodel.ProjectAssignment{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Update("role_in_project", string(role))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrAssignmentNotFound
	}
	return nil
}

func (r *AssignmentRepository) Delete(ctx context.Context, projectID, userID int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&assignmentDatamodel.ProjectAssignment{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *AssignmentRepository) ListForUser(ctx context.Context, userID int64) ([]domain.ProjectAssignment, error) {
	return r.list(ctx, "user_id = ?", userID)
}

func (r *AssignmentRepository) ListForProject(ctx context.Context, projectID int64) ([]domain.ProjectAssignment, error) {
	return r.list(ctx, "project_id = ?", projectID)
}

func (r *AssignmentRepository) list(ctx context.Context, query string, arg int64) ([]domain.ProjectAssignment, error) {
	var models []assignmentDatamodel.ProjectAssignment
	if err := r.db.WithContext(ctx).Where(query, arg).Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]domain.ProjectAssignment, 0, len(models))
	for i := range models {
		out = append(out, *assignment.FromDataModel(&models[i]))
	}
	return out, nil
}

// IsAssigned backs the timesheet target check: hours may only be logged
// against projects the user is assigned to.
func (r *AssignmentRepository) IsAssigned(ctx context.Context, userID, projectID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&assignmentDatamodel.ProjectAssignment{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
