package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeCheckedIn    = "attendance.checked_in"
	EventTypeCheckedOut   = "attendance.checked_out"
	EventTypeLeaveDecided = "leave.decided"
	EventTypeQRCodeIssued = "attendance.qr_issued"
	EventTypeAutoCheckout = "attendance.auto_checkout"
)

type CheckedInEvent struct {
	BaseEvent
	AttendanceID int64  `json:"attendance_id"`
	EmployeeID   int64  `json:"employee_id"`
	BranchID     int64  `json:"branch_id"`
	Date         string `json:"date"`
}

func NewCheckedInEvent(attendanceID, employeeID, branchID int64, date string) *CheckedInEvent {
	return &CheckedInEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeCheckedIn,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"attendance_id": attendanceID,
				"employee_id":   employeeID,
				"branch_id":     branchID,
				"date":          date,
			},
		},
		AttendanceID: attendanceID,
		EmployeeID:   employeeID,
		BranchID:     branchID,
		Date:         date,
	}
}

type CheckedOutEvent struct {
	BaseEvent
	AttendanceID int64   `json:"attendance_id"`
	EmployeeID   int64   `json:"employee_id"`
	Date         string  `json:"date"`
	TotalHours   float64 `json:"total_hours"`
	Auto         bool    `json:"auto"`
}

func NewCheckedOutEvent(attendanceID, employeeID int64, date string, totalHours float64, auto bool) *CheckedOutEvent {
	eventType := EventTypeCheckedOut
	if auto {
		eventType = EventTypeAutoCheckout
	}
	return &CheckedOutEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"attendance_id": attendanceID,
				"employee_id":   employeeID,
				"date":          date,
				"total_hours":   totalHours,
				"auto":          auto,
			},
		},
		AttendanceID: attendanceID,
		EmployeeID:   employeeID,
		Date:         date,
		TotalHours:   totalHours,
		Auto:         auto,
	}
}

type QRCodeIssuedEvent struct {
	BaseEvent
	EmployeeID string    `json:"employee_id"`
	BranchID   int64     `json:"branch_id"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func NewQRCodeIssuedEvent(employeeID string, branchID int64, expiresAt time.Time) *QRCodeIssuedEvent {
	return &QRCodeIssuedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeQRCodeIssued,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"employee_id": employeeID,
				"branch_id":   branchID,
				"expires_at":  expiresAt,
			},
		},
		EmployeeID: employeeID,
		BranchID:   branchID,
		ExpiresAt:  expiresAt,
	}
}

type LeaveDecidedEvent struct {
	BaseEvent
	LeaveID    int64  `json:"leave_id"`
	EmployeeID int64  `json:"employee_id"`
	Outcome    string `json:"outcome"`
	DecidedBy  int64  `json:"decided_by"`
}

func NewLeaveDecidedEvent(leaveID, employeeID, decidedBy int64, outcome string) *LeaveDecidedEvent {
	return &LeaveDecidedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeLeaveDecided,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"leave_id":    leaveID,
				"employee_id": employeeID,
				"outcome":     outcome,
				"decided_by":  decidedBy,
			},
		},
		LeaveID:    leaveID,
		EmployeeID: employeeID,
		Outcome:    outcome,
		DecidedBy:  decidedBy,
	}
}
