package user

import "time"

const (
	RoleTherapist  = "therapist"
	RoleSupervisor = "supervisor"
	RoleHR         = "hr"
	RoleSuperadmin = "superadmin"
)

type User struct {
	ID            int64     `gorm:"primaryKey"`
	EmployeeID    string    `gorm:"column:employee_id;uniqueIndex;not null"`
	Email         string    `gorm:"column:email;uniqueIndex;not null"`
	Name          string    `gorm:"column:name;not null"`
	PasswordHash  string    `gorm:"column:password_hash;not null"`
	Role          string    `gorm:"column:role;not null;default:therapist"`
	BranchID      int64     `gorm:"column:branch_id;not null;index"`
	MobileNumber  string    `gorm:"column:mobile_number"`
	LoginTime     string    `gorm:"column:login_time;default:'09:30'"`
	GraceMinutes  int       `gorm:"column:grace_minutes;default:10"`
	SupervisorID  *int64    `gorm:"column:supervisor_id"`
	IsActive      bool      `gorm:"column:is_active;default:true"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
