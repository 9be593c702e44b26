package leave

import (
	"time"

	leaveDatamodel "github.com/jeycentre/care-center-backend/internal/core/datamodel/leave"
)

const (
	TypeCasual = "casual"
	TypeUnpaid = "unpaid"

	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Application is the domain view of one leave application.
type Application struct {
	ID         int64
	EmployeeID int64
	LeaveType  string
	StartDate  string
	EndDate    string
	LeaveDays  int
	Reason     string
	Status     string
	DecidedBy  *int64
	DecidedAt  *time.Time
	AppliedAt  time.Time
}

func FromDataModel(d *leaveDatamodel.LeaveApplication) *Application {
	return &Application{
		ID:         d.ID,
		EmployeeID: d.EmployeeID,
		LeaveType:  d.LeaveType,
		StartDate:  d.StartDate,
		EndDate:    d.EndDate,
		LeaveDays:  d.LeaveDays,
		Reason:     d.Reason,
		Status:     d.Status,
		DecidedBy:  d.DecidedBy,
		DecidedAt:  d.DecidedAt,
		AppliedAt:  d.AppliedAt,
	}
}

func (a *Application) ToResponse() ApplicationResponse {
	return ApplicationResponse{
		ID:         a.ID,
		EmployeeID: a.EmployeeID,
		LeaveType:  a.LeaveType,
		StartDate:  a.StartDate,
		EndDate:    a.EndDate,
		LeaveDays:  a.LeaveDays,
		Reason:     a.Reason,
		Status:     a.Status,
		DecidedBy:  a.DecidedBy,
		DecidedAt:  a.DecidedAt,
		AppliedAt:  a.AppliedAt,
	}
}

// DaysInclusive counts calendar days covered by a leave, both ends included.
func DaysInclusive(startDate, endDate string) int {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return 0
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return 0
	}
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}
