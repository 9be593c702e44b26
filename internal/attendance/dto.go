package attendance

import (
	"time"

	errors "github.com/jeycentre/care-center-backend/internal"
	"github.com/jeycentre/care-center-backend/internal/core/common/validation"
)

type ScanDTO struct {
	Token string `json:"token"`
}

func (d ScanDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("token", d.Token).Required()
	return v.Validate()
}

type RecordResponse struct {
	ID                      int64      `json:"id"`
	EmployeeID              int64      `json:"employee_id"`
	BranchID                int64      `json:"branch_id"`
	Date                    string     `json:"date"`
	CheckInTime             *time.Time `json:"check_in_time"`
	CheckOutTime            *time.Time `json:"check_out_time"`
	Status                  string     `json:"status"`
	CheckinStatus           string     `json:"checkin_status"`
	TotalHours              float64    `json:"total_hours"`
	AutoCheckout            bool       `json:"auto_checkout"`
	NeedsCheckoutCorrection bool       `json:"needs_checkout_correction"`
}

type ScanResponse struct {
	Outcome ScanOutcome    `json:"outcome"`
	Record  RecordResponse `json:"record"`
}

type RecordsResponse struct {
	Records []RecordResponse `json:"records"`
	Total   int64            `json:"total"`
}

type ListFilter struct {
	EmployeeID *int64
	BranchID   *int64
	DateFrom   string
	DateTo     string
	Status     string
	Page       int
	PerPage    int
}

func (f ListFilter) Validate() *errors.AppError {
	v := validation.NewValidator()
	if f.DateFrom != "" {
		v.Field("date_from", f.DateFrom).DateFormat()
	}
	if f.DateTo != "" {
		v.Field("date_to", f.DateTo).DateFormat()
	}
	if f.Status != "" {
		v.Field("status", f.Status).OneOf(StatusPresent, StatusAbsent, StatusDidNotCheckout)
	}
	return v.Validate()
}

type RequestCorrectionDTO struct {
	AttendanceLogID int64  `json:"attendance_log_id"`
	RequestedTime   string `json:"requested_time"`
	Reason          string `json:"reason"`
}

func (d RequestCorrectionDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("attendance_log_id", d.AttendanceLogID).Required()
	v.Field("requested_time", d.RequestedTime).Required().Custom(func(value interface{}) *errors.AppError {
		if s, ok := value.(string); ok && s != "" {
			if _, err := time.Parse("15:04", s); err != nil {
				return errors.NewValidationFieldError("requested_time", "requested_time must be in HH:MM format", errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	v.Field("reason", d.Reason).Required().MaxLength(500)
	return v.Validate()
}

type DecideCorrectionDTO struct {
	Outcome string `json:"outcome"`
	Notes   string `json:"notes"`
}

func (d DecideCorrectionDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("outcome", d.Outcome).Required().OneOf(CorrectionApproved, CorrectionRejected)
	v.Field("notes", d.Notes).MaxLength(500)
	return v.Validate()
}

type CorrectionResponse struct {
	ID              int64      `json:"id"`
	EmployeeID      int64      `json:"employee_id"`
	AttendanceLogID int64      `json:"attendance_log_id"`
	RequestedTime   string     `json:"requested_time"`
	Reason          string     `json:"reason"`
	Status          string     `json:"status"`
	SupervisorID    *int64     `json:"supervisor_id,omitempty"`
	SupervisorNotes string     `json:"supervisor_notes,omitempty"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type CorrectionsResponse struct {
	Corrections []CorrectionResponse `json:"corrections"`
	Total       int64                `json:"total"`
}

// BranchStats is one dashboard row: today's attendance picture for a branch.
type BranchStats struct {
	BranchID     int64  `json:"branch_id"`
	BranchName   string `json:"branch_name"`
	PresentToday int64  `json:"present_today"`
	AbsentToday  int64  `json:"absent_today"`
	LateToday    int64  `json:"late_today"`
}

type DashboardResponse struct {
	Date          string        `json:"date"`
	Branches      []BranchStats `json:"branches"`
	PendingLeaves int64         `json:"pending_leaves"`
}
