package timesheet

import "time"

type Timesheet struct {
	ID             int64      `gorm:"primaryKey"`
	UserID         int64      `gorm:"column:user_id;not null;index"`
	ProjectID      *int64     `gorm:"column:project_id"`
	ActivityType   *string    `gorm:"column:activity_type"`
	WorkDate       time.Time  `gorm:"column:work_date;type:date;not null"`
	HoursWorked    float64    `gorm:"column:hours_worked;not null"`
	Description    string     `gorm:"column:description"`
	ApprovalStatus string     `gorm:"column:approval_status;not null;default:PENDING;index"`
	Remarks        string     `gorm:"column:remarks"`
	ActionedBy     *int64     `gorm:"column:actioned_by"`
	ActionedAt     *time.Time `gorm:"column:actioned_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Timesheet) TableName() string {
	return "timesheets"
}
