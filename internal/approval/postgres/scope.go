package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/timesheet-management/internal/approval"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
)

const (
	teamCountQuery = `SELECT COUNT(*) FROM users WHERE department_id = $1 AND role = 'employee'`

	projectsCountQuery = `SELECT COUNT(*) FROM projects WHERE department_id = $1`

	scopeEntriesQuery = `
SELECT t.id, t.user_id, t.project_id, t.activity_type, t.work_date, t.hours_worked,
       t.description, t.approval_status, t.remarks, t.actioned_by, t.actioned_at,
       t.created_at, t.updated_at
FROM timesheets t
JOIN users u ON u.id = t.user_id
WHERE u.department_id = $1
ORDER BY t.work_date DESC, t.id DESC`
)

type entryRow struct {
	ID             int64          `db:"id"`
	UserID         int64          `db:"user_id"`
	ProjectID      sql.NullInt64  `db:"project_id"`
	ActivityType   sql.NullString `db:"activity_type"`
	WorkDate       time.Time      `db:"work_date"`
	HoursWorked    float64        `db:"hours_worked"`
	Description    sql.NullString `db:"description"`
	ApprovalStatus string         `db:"approval_status"`
	Remarks        sql.NullString `db:"remarks"`
	ActionedBy     sql.NullInt64  `db:"actioned_by"`
	ActionedAt     sql.NullTime   `db:"actioned_at"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (r entryRow) toDomain() domain.TimesheetEntry {
	status, ok := domain.ParseApprovalStatus(r.ApprovalStatus)
	if !ok {
		status = domain.StatusPending
	}
	e := domain.TimesheetEntry{
		ID:             r.ID,
		UserID:         r.UserID,
		WorkDate:       domain.DateOf(r.WorkDate),
		ActivityType:   r.ActivityType.String,
		HoursWorked:    r.HoursWorked,
		Description:    r.Description.String,
		ApprovalStatus: status,
		Remarks:        r.Remarks.String,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.ProjectID.Valid {
		v := r.ProjectID.Int64
		e.ProjectID = &v
	}
	if r.ActionedBy.Valid {
		v := r.ActionedBy.Int64
		e.ActionedBy = &v
	}
	if r.ActionedAt.Valid {
		v := r.ActionedAt.Time
		e.ActionedAt = &v
	}
	return e
}

// ScopeReader is the read model behind manager dashboards and the approval
// queue.
type ScopeReader struct {
	db *sqlx.DB
}

func NewScopeReader(db *sqlx.DB) *ScopeReader {
	return &ScopeReader{db: db}
}

func (r *ScopeReader) Scope(ctx context.Context, departmentID int64) (*approval.Scope, error) {
	scope := &approval.Scope{}

	if err := r.db.GetContext(ctx, &scope.TeamCount, teamCountQuery, departmentID); err != nil {
		return nil, err
	}
	if err := r.db.GetContext(ctx, &scope.ProjectsCount, projectsCountQuery, departmentID); err != nil {
		return nil, err
	}

	var rows []entryRow
	if err := r.db.SelectContext(ctx, &rows, scopeEntriesQuery, departmentID); err != nil {
		return nil, err
	}
	scope.Entries = make([]domain.TimesheetEntry, 0, len(rows))
	for _, row := range rows {
		scope.Entries = append(scope.Entries, row.toDomain())
	}
	return scope, nil
}
