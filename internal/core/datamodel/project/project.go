package project

import "time"

type Project struct {
	ID           int64     `gorm:"primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Description  string    `gorm:"column:description"`
	StartDate    time.Time `gorm:"column:start_date;type:date;not null"`
	EndDate      time.Time `gorm:"column:end_date;type:date;not null"`
	DepartmentID int64     `gorm:"column:department_id;index;not null"`
	Status       string    `gorm:"column:status;not null;default:ACTIVE"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Project) TableName() string {
	return "projects"
}
