package attendance

import "time"

// AttendanceLog holds one check-in/check-out cycle per employee per day.
// The composite unique index is the datastore-level guard against two
// concurrent scans both creating an open record for the same day.
type AttendanceLog struct {
	ID                      int64      `gorm:"primaryKey"`
	EmployeeID              int64      `gorm:"column:employee_id;not null;uniqueIndex:idx_attendance_employee_date"`
	BranchID                int64      `gorm:"column:branch_id;not null;index"`
	Date                    string     `gorm:"column:date;type:date;not null;uniqueIndex:idx_attendance_employee_date"`
	CheckInTime             *time.Time `gorm:"column:check_in_time"`
	CheckOutTime            *time.Time `gorm:"column:check_out_time"`
	Status                  string     `gorm:"column:status;default:absent"`
	CheckinStatus           string     `gorm:"column:checkin_status;default:no_data"`
	TotalHours              float64    `gorm:"column:total_hours;default:0"`
	AutoCheckout            bool       `gorm:"column:auto_checkout;default:false"`
	NeedsCheckoutCorrection bool       `gorm:"column:needs_checkout_correction;default:false"`
	CreatedAt               time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt               time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (AttendanceLog) TableName() string {
	return "attendance_logs"
}

// CheckoutRequest is a correction request for a missed checkout.
type CheckoutRequest struct {
	ID              int64      `gorm:"primaryKey"`
	EmployeeID      int64      `gorm:"column:employee_id;not null;index"`
	AttendanceLogID int64      `gorm:"column:attendance_log_id;not null"`
	RequestedTime   string     `gorm:"column:requested_time;not null"`
	Reason          string     `gorm:"column:reason;not null"`
	Status          string     `gorm:"column:status;default:pending"`
	SupervisorID    *int64     `gorm:"column:supervisor_id"`
	SupervisorNotes string     `gorm:"column:supervisor_notes"`
	ProcessedAt     *time.Time `gorm:"column:processed_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (CheckoutRequest) TableName() string {
	return "checkout_requests"
}

// QRCodeLog is an audit row per issued QR token.
type QRCodeLog struct {
	ID         int64      `gorm:"primaryKey"`
	EmployeeID string     `gorm:"column:employee_id;not null;index"`
	IssuedAt   time.Time  `gorm:"column:issued_at;not null"`
	Kind       string     `gorm:"column:kind;default:checkin"`
	IsUsed     bool       `gorm:"column:is_used;default:false"`
	UsedAt     *time.Time `gorm:"column:used_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (QRCodeLog) TableName() string {
	return "qr_code_logs"
}
