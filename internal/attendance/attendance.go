package attendance

import (
	"time"

	attendanceDatamodel "github.com/jeycentre/care-center-backend/internal/core/datamodel/attendance"
)

const (
	StatusPresent        = "present"
	StatusAbsent         = "absent"
	StatusDidNotCheckout = "did_not_checkout"

	CheckinOnTime   = "on_time"
	CheckinLate     = "late"
	CheckinVeryLate = "very_late"
	CheckinNoData   = "no_data"

	CorrectionPending  = "pending"
	CorrectionApproved = "approved"
	CorrectionRejected = "rejected"

	// A check-in more than this far past the expected login time counts
	// as very late regardless of grace minutes.
	veryLateAfter = 30 * time.Minute
)

// ScanOutcome tells the client what a scan meant.
type ScanOutcome string

const (
	OutcomeCheckedIn  ScanOutcome = "checked_in"
	OutcomeCheckedOut ScanOutcome = "checked_out"
)

// Record is the domain view of one attendance day.
type Record struct {
	ID                      int64
	EmployeeID              int64
	BranchID                int64
	Date                    string
	CheckInTime             *time.Time
	CheckOutTime            *time.Time
	Status                  string
	CheckinStatus           string
	TotalHours              float64
	AutoCheckout            bool
	NeedsCheckoutCorrection bool
}

// ScanResult pairs the ledger decision with the resulting record.
type ScanResult struct {
	Outcome ScanOutcome
	Record  *Record
}

// Correction is the domain view of a checkout correction request.
type Correction struct {
	ID              int64
	EmployeeID      int64
	AttendanceLogID int64
	RequestedTime   string
	Reason          string
	Status          string
	SupervisorID    *int64
	SupervisorNotes string
	ProcessedAt     *time.Time
	CreatedAt       time.Time
}

func (r *Record) ToResponse() RecordResponse {
	return RecordResponse{
		ID:                      r.ID,
		EmployeeID:              r.EmployeeID,
		BranchID:                r.BranchID,
		Date:                    r.Date,
		CheckInTime:             r.CheckInTime,
		CheckOutTime:            r.CheckOutTime,
		Status:                  r.Status,
		CheckinStatus:           r.CheckinStatus,
		TotalHours:              r.TotalHours,
		AutoCheckout:            r.AutoCheckout,
		NeedsCheckoutCorrection: r.NeedsCheckoutCorrection,
	}
}

func FromDataModel(d *attendanceDatamodel.AttendanceLog) *Record {
	return &Record{
		ID:                      d.ID,
		EmployeeID:              d.EmployeeID,
		BranchID:                d.BranchID,
		Date:                    d.Date,
		CheckInTime:             d.CheckInTime,
		CheckOutTime:            d.CheckOutTime,
		Status:                  d.Status,
		CheckinStatus:           d.CheckinStatus,
		TotalHours:              d.TotalHours,
		AutoCheckout:            d.AutoCheckout,
		NeedsCheckoutCorrection: d.NeedsCheckoutCorrection,
	}
}

func CorrectionFromDataModel(d *attendanceDatamodel.CheckoutRequest) *Correction {
	return &Correction{
		ID:              d.ID,
		EmployeeID:      d.EmployeeID,
		AttendanceLogID: d.AttendanceLogID,
		RequestedTime:   d.RequestedTime,
		Reason:          d.Reason,
		Status:          d.Status,
		SupervisorID:    d.SupervisorID,
		SupervisorNotes: d.SupervisorNotes,
		ProcessedAt:     d.ProcessedAt,
		CreatedAt:       d.CreatedAt,
	}
}

func (c *Correction) ToResponse() CorrectionResponse {
	return CorrectionResponse{
		ID:              c.ID,
		EmployeeID:      c.EmployeeID,
		AttendanceLogID: c.AttendanceLogID,
		RequestedTime:   c.RequestedTime,
		Reason:          c.Reason,
		Status:          c.Status,
		SupervisorID:    c.SupervisorID,
		SupervisorNotes: c.SupervisorNotes,
		ProcessedAt:     c.ProcessedAt,
		CreatedAt:       c.CreatedAt,
	}
}

// ClassifyCheckin grades a check-in against the employee's expected login
// time for that date. Within grace is on time; within thirty minutes of
// the expected time is late; anything after that is very late.
func ClassifyCheckin(date string, loginTime string, graceMinutes int, checkIn time.Time) string {
	expected, err := time.ParseInLocation("2006-01-02 15:04", date+" "+loginTime, checkIn.Location())
	if err != nil {
		return CheckinNoData
	}

	graceDeadline := expected.Add(time.Duration(graceMinutes) * time.Minute)
	veryLateDeadline := expected.Add(veryLateAfter)

	switch {
	case !checkIn.After(graceDeadline):
		return CheckinOnTime
	case !checkIn.After(veryLateDeadline):
		return CheckinLate
	default:
		return CheckinVeryLate
	}
}

// WorkedHours computes the fractional hours between check-in and check-out.
func WorkedHours(checkIn, checkOut time.Time) float64 {
	if checkOut.Before(checkIn) {
		return 0
	}
	return checkOut.Sub(checkIn).Hours()
}
