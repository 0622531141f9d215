package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/timesheet-management/internal"
	timesheetDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

type TimesheetRepository struct {
	db *gorm.DB
}

func NewTimesheetRepository(db *gorm.DB) *TimesheetRepository {
	return &TimesheetRepository{db: db}
}

func (r *TimesheetRepository) Create(ctx context.Context, e *domain.TimesheetEntry) error {
	model := timesheet.ToDataModel(e)
	model.ApprovalStatus = string(domain.StatusPending)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	e.ID = model.ID
	e.ApprovalStatus = domain.StatusPending
	e.CreatedAt = model.CreatedAt
	e.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *TimesheetRepository) GetByID(ctx context.Context, id int64) (*domain.TimesheetEntry, error) {
	var model timesheetDatamodel.Timesheet
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrTimesheetNotFound
		}
		return nil, err
	}
	return timesheet.FromDataModel(&model), nil
}

func (r *TimesheetRepository) ListByUser(ctx context.Context, userID int64) ([]domain.TimesheetEntry, error) {
	var models []timesheetDatamodel.Timesheet
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("work_date DESC, id DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromModels(models), nil
}

func (r *TimesheetRepository) ListByUserOnDate(ctx context.Context, userID int64, day domain.Date) ([]domain.TimesheetEntry, error) {
	var models []timesheetDatamodel.Timesheet
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND work_date >= ? AND work_date < ?", userID, day.Time, day.AddDate(0, 0, 1)).
		Order("id DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromModels(models), nil
}

func (r *TimesheetRepository) ListByDepartment(ctx context.Context, departmentID int64) ([]domain.TimesheetEntry, error) {
	var models []timesheetDatamodel.Timesheet
	err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = timesheets.user_id").
		Where("users.department_id = ?", departmentID).
		Order("timesheets.work_date DESC, timesheets.id DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return fromModels(models), nil
}

// Update writes the owner-editable fields. The row must still be pending; an
// entry actioned in the meantime is reported as a denied edit.
func (r *TimesheetRepository) Update(ctx context.Context, e *domain.TimesheetEntry) error {
	var activity interface{}
	if e.ActivityType != "" {
		activity = e.ActivityType
	}

	result := r.db.WithContext(ctx).
		Model(&timesheetDatamodel.Timesheet{}).
		Where("id = ? AND approval_status = ?", e.ID, string(domain.StatusPending)).
		Updates(map[string]interface{}{
			"work_date":     e.WorkDate.Time,
			"project_id":    e.ProjectID,
			"activity_type": activity,
			"hours_worked":  e.HoursWorked,
			"description":   e.Description,
			"updated_at":    e.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missOrLocked(ctx, e.ID)
	}
	return nil
}

func (r *TimesheetRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND approval_status = ?", id, string(domain.StatusPending)).
		Delete(&timesheetDatamodel.Timesheet{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missOrLocked(ctx, id)
	}
	return nil
}

func (r *TimesheetRepository) missOrLocked(ctx context.Context, id int64) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return internal.ErrUnauthorizedAccess
}

func fromModels(models []timesheetDatamodel.Timesheet) []domain.TimesheetEntry {
	out := make([]domain.TimesheetEntry, 0, len(models))
	for i := range models {
		out = append(out, *timesheet.FromDataModel(&models[i]))
	}
	return out
}
