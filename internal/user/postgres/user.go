package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	assignmentDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/assignment"
	departmentDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/department"
	timesheetDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/timesheet"
	userDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/user"
	"github.com/frahmantamala/timesheet-management/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	model := user.ToDataModel(u)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return internal.NewConflictError("A user with this email already exists", internal.ErrCodeDuplicate)
		}
		return err
	}
	u.ID = model.ID
	u.CreatedAt = model.CreatedAt
	u.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var model userDatamodel.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&model), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var model userDatamodel.User
	if err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&model), nil
}

func (r *UserRepository) List(ctx context.Context, filter user.ListFilter) ([]*domain.User, error) {
	var models []userDatamodel.User
	q := r.db.WithContext(ctx).Order("id ASC")
	if filter.DepartmentID != nil {
		q = q.Where("department_id = ?", *filter.DepartmentID)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]*domain.User, 0, len(models))
	for i := range models {
		out = append(out, user.FromDataModel(&models[i]))
	}
	return out, nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	res := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]interface{}{
			"name":          u.Name,
			"role":          u.Role.String(),
			"department_id": u.DepartmentID,
			"is_active":     u.Active,
			"password_hash": u.PasswordHash,
			"updated_at":    u.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

// Delete removes a user with no logged hours, clearing the department
// manager slot and project assignments they held.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entries int64
		if err := tx.Model(&timesheetDatamodel.Timesheet{}).Where("user_id = ?", id).Count(&entries).Error; err != nil {
			return err
		}
		if entries > 0 {
			return internal.NewConflictError("User has timesheet entries; deactivate the account instead", internal.ErrCodeInUse)
		}

		if err := tx.Model(&departmentDatamodel.Department{}).Where("manager_id = ?", id).
			Update("manager_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&assignmentDatamodel.ProjectAssignment{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&userDatamodel.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrUserNotFound
		}
		return nil
	})
}
