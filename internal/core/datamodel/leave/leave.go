package leave

import "time"

type LeaveApplication struct {
	ID         int64      `gorm:"primaryKey"`
	EmployeeID int64      `gorm:"column:employee_id;not null;index"`
	LeaveType  string     `gorm:"column:leave_type;not null"`
	StartDate  string     `gorm:"column:start_date;type:date;not null"`
	EndDate    string     `gorm:"column:end_date;type:date;not null"`
	LeaveDays  int        `gorm:"column:leave_days;not null"`
	Reason     string     `gorm:"column:reason;not null"`
	Status     string     `gorm:"column:status;default:pending"`
	DecidedBy  *int64     `gorm:"column:decided_by"`
	DecidedAt  *time.Time `gorm:"column:decided_at"`
	AppliedAt  time.Time  `gorm:"column:applied_at;autoCreateTime"`
}

func (LeaveApplication) TableName() string {
	return "leave_applications"
}
