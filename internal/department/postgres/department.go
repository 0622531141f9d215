package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/timesheet-management/internal"
	departmentDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/department"
	projectDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/project"
	userDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/user"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/department"
)

var errDuplicateName = internal.NewConflictError("A department with this name already exists", internal.ErrCodeDuplicate)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) Create(ctx context.Context, d *domain.Department) error {
	model := department.ToDataModel(d)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errDuplicateName
		}
		return err
	}
	d.ID = model.ID
	d.CreatedAt = model.CreatedAt
	d.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*domain.Department, error) {
	return getByID(r.db.WithContext(ctx), id)
}

func getByID(db *gorm.DB, id int64) (*domain.Department, error) {
	var model departmentDatamodel.Department
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrDepartmentNotFound
		}
		return nil, err
	}
	return department.FromDataModel(&model), nil
}

func (r *DepartmentRepository) List(ctx context.Context) ([]domain.Department, error) {
	var models []departmentDatamodel.Department
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Department, 0, len(models))
	for i := range models {
		out = append(out, *department.FromDataModel(&models[i]))
	}
	return out, nil
}

func (r *DepartmentRepository) Update(ctx context.Context, d *domain.Department) error {
	result := r.db.WithContext(ctx).
		Model(&departmentDatamodel.Department{}).
		Where("id = ?", d.ID).
		Updates(map[string]interface{}{
			"name":        d.Name,
			"description": d.Description,
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return errDuplicateName
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrDepartmentNotFound
	}
	return nil
}

func (r *DepartmentRepository) ReassignManager(ctx context.Context, departmentID int64, expected *int64, newManagerID int64) (*department.Reassignment, error) {
	var out *department.Reassignment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cas := tx.Model(&departmentDatamodel.Department{}).Where("id = ?", departmentID)
		if expected != nil {
			cas = cas.Where("manager_id = ?", *expected)
		} else {
			cas = cas.Where("manager_id IS NULL")
		}
		result := cas.Update("manager_id", newManagerID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			if _, err := getByID(tx, departmentID); err != nil {
				return err
			}
			return internal.ErrStaleConfirmation
		}

		// A user manages at most one department.
		if err := tx.Model(&departmentDatamodel.Department{}).
			Where("manager_id = ? AND id <> ?", newManagerID, departmentID).
			Update("manager_id", nil).Error; err != nil {
			return err
		}

		promoted := tx.Model(&userDatamodel.User{}).
			Where("id = ?", newManagerID).
			Updates(map[string]interface{}{
				"role":          domain.RoleManager.String(),
				"department_id": departmentID,
			})
		if promoted.Error != nil {
			return promoted.Error
		}
		if promoted.RowsAffected == 0 {
			return internal.ErrUserNotFound
		}

		var demoted *int64
		if expected != nil && *expected != newManagerID {
			if err := tx.Model(&userDatamodel.User{}).
				Where("id = ? AND role = ?", *expected, domain.RoleManager.String()).
				Update("role", domain.RoleEmployee.String()).Error; err != nil {
				return err
			}
			id := *expected
			demoted = &id
		}

		d, err := getByID(tx, departmentID)
		if err != nil {
			return err
		}
		out = &department.Reassignment{
			Department:       d,
			NewManagerID:     newManagerID,
			DemotedManagerID: demoted,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *DepartmentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var users, projects int64
		if err := tx.Model(&userDatamodel.User{}).Where("department_id = ?", id).Count(&users).Error; err != nil {
			return err
		}
		if err := tx.Model(&projectDatamodel.Project{}).Where("department_id = ?", id).Count(&projects).Error; err != nil {
			return err
		}
		if users > 0 || projects > 0 {
			return internal.NewConflictError("Department still has users or projects and cannot be deleted", internal.ErrCodeInUse)
		}

		result := tx.Delete(&departmentDatamodel.Department{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return internal.ErrDepartmentNotFound
		}
		return nil
	})
}
