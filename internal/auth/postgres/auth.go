package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	"github.com/frahmantamala/timesheet-management/internal/core/domain"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredentials(ctx context.Context, email string) (*auth.Credentials, error) {
	var creds auth.Credentials
	query := `SELECT id, email, password_hash, is_active FROM users WHERE email = ?`

	row := r.db.WithContext(ctx).Raw(query, email).Row()
	if err := row.Scan(&creds.UserID, &creds.Email, &creds.PasswordHash, &creds.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &creds, nil
}

func (r *Repository) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	var (
		u            domain.User
		role         string
		departmentID sql.NullInt64
	)
	query := `SELECT id, email, name, role, department_id, is_active, created_at, updated_at FROM users WHERE id = ?`

	row := r.db.WithContext(ctx).Raw(query, userID).Row()
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &departmentID, &u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}

	u.Role = domain.ParseRole(role)
	if departmentID.Valid {
		id := departmentID.Int64
		u.DepartmentID = &id
	}
	return &u, nil
}
