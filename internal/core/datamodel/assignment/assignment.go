package assignment

import "time"

type ProjectAssignment struct {
	ID            int64     `gorm:"primaryKey"`
	UserID        int64     `gorm:"column:user_id;not null;uniqueIndex:uq_assignment_user_project"`
	ProjectID     int64     `gorm:"column:project_id;not null;uniqueIndex:uq_assignment_user_project;index"`
	RoleInProject string    `gorm:"column:role_in_project;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ProjectAssignment) TableName() string {
	return "project_assignments"
}
