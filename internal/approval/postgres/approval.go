package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/timesheet-management/internal"
	timesheetDatamodel "github.com/frahmantamala/timesheet-management/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
	timesheetPostgres "github.com/frahmantamala/timesheet-management/internal/timesheet/postgres"
)

// ApprovalRepository writes status transitions with a compare-and-set on the
// pending status.
type ApprovalRepository struct {
	db      *gorm.DB
	entries *timesheetPostgres.TimesheetRepository
}

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository {
	return &ApprovalRepository{db: db, entries: timesheetPostgres.NewTimesheetRepository(db)}
}

func (r *ApprovalRepository) GetByID(ctx context.Context, id int64) (*domain.TimesheetEntry, error) {
	return r.entries.GetByID(ctx, id)
}

func (r *ApprovalRepository) Transition(ctx context.Context, id int64, to domain.ApprovalStatus, remarks string, actorID int64, at time.Time) (*domain.TimesheetEntry, error) {
	if !to.IsTerminal() {
		return nil, internal.NewInvalidTransitionError("Target status must be APPROVED or REJECTED", internal.ErrCodeInvalidValue)
	}

	result := r.db.WithContext(ctx).
		Model(&timesheetDatamodel.Timesheet{}).
		Where("id = ? AND approval_status = ?", id, string(domain.StatusPending)).
		Updates(map[string]interface{}{
			"approval_status": string(to),
			"remarks":         remarks,
			"actioned_by":     actorID,
			"actioned_at":     at,
			"updated_at":      at,
		})
	if result.Error != nil {
		return nil, result.Error
	}

	entry, err := r.entries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected == 0 {
		return nil, internal.ErrConcurrentChange
	}
	return entry, nil
}
