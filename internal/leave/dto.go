package leave

import (
	"time"

	errors "github.com/jeycentre/care-center-backend/internal"
	"github.com/jeycentre/care-center-backend/internal/core/common/validation"
)

type ApplyDTO struct {
	LeaveType string `json:"leave_type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

func (d ApplyDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("leave_type", d.LeaveType).Required().OneOf(TypeCasual, TypeUnpaid)
	v.Field("start_date", d.StartDate).Required().DateFormat()
	v.Field("end_date", d.EndDate).Required().DateFormat()
	v.Field("reason", d.Reason).Required().MaxLength(500)
	if err := v.Validate(); err != nil {
		return err
	}
	return validation.ValidateDateRange(d.StartDate, d.EndDate)
}

type DecideDTO struct {
	Outcome string `json:"outcome"`
	Notes   string `json:"notes"`
}

func (d DecideDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("outcome", d.Outcome).Required().OneOf(StatusApproved, StatusRejected)
	v.Field("notes", d.Notes).MaxLength(500)
	return v.Validate()
}

type ApplicationResponse struct {
	ID         int64      `json:"id"`
	EmployeeID int64      `json:"employee_id"`
	LeaveType  string     `json:"leave_type"`
	StartDate  string     `json:"start_date"`
	EndDate    string     `json:"end_date"`
	LeaveDays  int        `json:"leave_days"`
	Reason     string     `json:"reason"`
	Status     string     `json:"status"`
	DecidedBy  *int64     `json:"decided_by,omitempty"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
	AppliedAt  time.Time  `json:"applied_at"`
}

type ApplicationsResponse struct {
	Applications []ApplicationResponse `json:"applications"`
	Total        int64                 `json:"total"`
}

type ListFilter struct {
	EmployeeID *int64
	BranchID   *int64
	Status     string
	Page       int
	PerPage    int
}

func (f ListFilter) Validate() *errors.AppError {
	v := validation.NewValidator()
	if f.Status != "" {
		v.Field("status", f.Status).OneOf(StatusPending, StatusApproved, StatusRejected)
	}
	return v.Validate()
}
