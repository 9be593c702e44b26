package attendance

import (
	"context"
	"log/slog"
	"strings"
	"time"

	errors "github.com/jeycentre/care-center-backend/internal"
	"github.com/jeycentre/care-center-backend/internal/auth"
	"github.com/jeycentre/care-center-backend/internal/attendance/qrtoken"
	attendanceDatamodel "github.com/jeycentre/care-center-backend/internal/core/datamodel/attendance"
	"github.com/jeycentre/care-center-backend/internal/core/events"
	"github.com/jeycentre/care-center-backend/internal/user"
)

// RepositoryAPI is the ledger's persistence contract. CompleteCheckout and
// CloseAsAutoCheckout are conditional writes: they only touch rows whose
// check_out_time is still NULL and report how many rows changed, which is
// what makes concurrent scans safe without in-process locks.
type RepositoryAPI interface {
	GetByEmployeeAndDate(employeeID int64, date string) (*attendanceDatamodel.AttendanceLog, error)
	GetByID(id int64) (*attendanceDatamodel.AttendanceLog, error)
	Insert(log *attendanceDatamodel.AttendanceLog) error
	CompleteCheckout(logID int64, checkOut time.Time, totalHours float64) (int64, error)
	SetCheckoutTime(logID int64, checkOut time.Time, totalHours float64) error
	List(filter ListFilter) ([]*attendanceDatamodel.AttendanceLog, int64, error)
	ListOpenBefore(date string) ([]*attendanceDatamodel.AttendanceLog, error)
	CloseAsAutoCheckout(logID int64, closedAt time.Time) (int64, error)
	Delete(id int64) error

	CreateQRCodeLog(log *attendanceDatamodel.QRCodeLog) error
	MarkQRCodeUsed(employeeID string, issuedAt time.Time, usedAt time.Time) error

	CreateCorrection(req *attendanceDatamodel.CheckoutRequest) error
	GetCorrectionByID(id int64) (*attendanceDatamodel.CheckoutRequest, error)
	HasPendingCorrection(attendanceLogID int64) (bool, error)
	ListCorrections(filter CorrectionFilter) ([]*attendanceDatamodel.CheckoutRequest, int64, error)
	UpdateCorrection(req *attendanceDatamodel.CheckoutRequest) error

	CountTodayByBranch(date string) ([]BranchStats, error)
}

type CorrectionFilter struct {
	EmployeeID *int64
	BranchID   *int64
	Status     string
	Page       int
	PerPage    int
}

// UserResolverAPI resolves scan identities and rosters.
type UserResolverAPI interface {
	GetByEmployeeID(employeeID string) (*user.Employee, error)
	GetByID(id int64) (*user.Employee, error)
}

// LeaveCounterAPI feeds the dashboard's pending-leave figure.
type LeaveCounterAPI interface {
	CountPending(branchID *int64) (int64, error)
}

type Service struct {
	repo     RepositoryAPI
	users    UserResolverAPI
	leaves   LeaveCounterAPI
	codec    *qrtoken.Codec
	eventBus *events.EventBus
	policy   errors.AttendanceConfig
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(
	repo RepositoryAPI,
	users UserResolverAPI,
	leaves LeaveCounterAPI,
	codec *qrtoken.Codec,
	eventBus *events.EventBus,
	policy errors.AttendanceConfig,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		leaves:   leaves,
		codec:    codec,
		eventBus: eventBus,
		policy:   policy,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the service clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// IssueToken issues a fresh QR token for the logged-in employee and
// audit-logs the issuance. Issuance is always allowed; the ledger decides
// what a scan of the token means.
func (s *Service) IssueToken(ctx context.Context, principal *auth.User) (*qrtoken.IssuedToken, error) {
	issued, err := s.codec.Issue(principal.EmployeeID, principal.BranchID)
	if err != nil {
		s.logger.Error("failed to issue QR token", "employee_id", principal.EmployeeID, "error", err)
		return nil, err
	}

	// The audit row is written synchronously because the very next scan
	// marks it used; the event is the observability channel.
	qrLog := &attendanceDatamodel.QRCodeLog{
		EmployeeID: principal.EmployeeID,
		IssuedAt:   s.now(),
		Kind:       qrtoken.KindCheckin,
	}
	if err := s.repo.CreateQRCodeLog(qrLog); err != nil {
		// Audit failure must not block the employee from checking in.
		s.logger.Warn("failed to audit QR issuance", "employee_id", principal.EmployeeID, "error", err)
	}

	_ = s.eventBus.Publish(ctx, events.NewQRCodeIssuedEvent(principal.EmployeeID, principal.BranchID, issued.ExpiresAt))
	s.logger.Info("QR token issued", "employee_id", principal.EmployeeID, "expires_at", issued.ExpiresAt)
	return issued, nil
}

// RecordScan is the toggle at the heart of the ledger: the first valid scan
// of the day checks the employee in, the second checks them out, and any
// further scan is rejected with AlreadyCompletedToday.
func (s *Service) RecordScan(ctx context.Context, encoded string) (*ScanResult, error) {
	payload, err := s.codec.Validate(encoded)
	if err != nil {
		return nil, err
	}

	employee, err := s.users.GetByEmployeeID(payload.EmployeeID)
	if err != nil {
		if appErr, ok := errors.IsAppError(err); ok && appErr.Type == errors.ErrorTypeNotFound {
			return nil, errors.ErrUnknownIdentity
		}
		return nil, err
	}
	if !employee.IsActive {
		return nil, errors.ErrUnknownIdentity
	}

	now := s.now()
	date := now.Format("2006-01-02")

	existing, err := s.repo.GetByEmployeeAndDate(employee.ID, date)
	if err != nil {
		return nil, errors.NewInternalError("failed to read attendance record", err)
	}

	if existing == nil {
		record, err := s.tryCheckIn(ctx, employee, date, now, payload.IssuedAt)
		if err == nil || !isUniqueViolation(err) {
			return record, err
		}
		// A concurrent first scan inserted the row between our read and
		// write; fall through and treat this scan as a checkout decision.
		existing, err = s.repo.GetByEmployeeAndDate(employee.ID, date)
		if err != nil || existing == nil {
			return nil, errors.NewInternalError("failed to read attendance record", err)
		}
	}

	if existing.CheckOutTime != nil {
		return nil, errors.ErrAlreadyCompletedToday
	}

	return s.completeCheckout(ctx, existing, now, false)
}

func (s *Service) tryCheckIn(ctx context.Context, employee *user.Employee, date string, now time.Time, issuedAt time.Time) (*ScanResult, error) {
	checkIn := now
	log := &attendanceDatamodel.AttendanceLog{
		EmployeeID:    employee.ID,
		BranchID:      employee.BranchID,
		Date:          date,
		CheckInTime:   &checkIn,
		Status:        StatusPresent,
		CheckinStatus: ClassifyCheckin(date, employee.LoginTime, employee.GraceMinutes, now),
	}

	if err := s.repo.Insert(log); err != nil {
		return nil, err
	}

	if err := s.repo.MarkQRCodeUsed(employee.EmployeeID, issuedAt, now); err != nil {
		s.logger.Warn("failed to mark QR code used", "employee_id", employee.EmployeeID, "error", err)
	}

	_ = s.eventBus.Publish(ctx, events.NewCheckedInEvent(log.ID, employee.ID, employee.BranchID, date))
	s.logger.Info("employee checked in",
		"employee_id", employee.EmployeeID,
		"date", date,
		"checkin_status", log.CheckinStatus)

	return &ScanResult{Outcome: OutcomeCheckedIn, Record: FromDataModel(log)}, nil
}

func (s *Service) completeCheckout(ctx context.Context, log *attendanceDatamodel.AttendanceLog, now time.Time, auto bool) (*ScanResult, error) {
	if log.CheckInTime == nil {
		return nil, errors.ErrNoOpenRecord
	}

	totalHours := WorkedHours(*log.CheckInTime, now)
	affected, err := s.repo.CompleteCheckout(log.ID, now, totalHours)
	if err != nil {
		return nil, errors.NewInternalError("failed to complete checkout", err)
	}
	if affected == 0 {
		// Lost the race against another scan that checked out first.
		return nil, errors.ErrAlreadyCompletedToday
	}

	checkOut := now
	log.CheckOutTime = &checkOut
	log.TotalHours = totalHours

	_ = s.eventBus.Publish(ctx, events.NewCheckedOutEvent(log.ID, log.EmployeeID, log.Date, totalHours, auto))
	s.logger.Info("employee checked out",
		"attendance_id", log.ID,
		"date", log.Date,
		"total_hours", totalHours,
		"auto", auto)

	return &ScanResult{Outcome: OutcomeCheckedOut, Record: FromDataModel(log)}, nil
}

// Checkout is the button-based path to the same conditional-update
// transition, for clients that do not re-scan. After the evening cutoff it
// is refused and a correction request is required.
func (s *Service) Checkout(ctx context.Context, principal *auth.User) (*ScanResult, error) {
	now := s.now()
	date := now.Format("2006-01-02")

	cutoffHour, cutoffMinute := s.policy.CutoffTime()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), cutoffHour, cutoffMinute, 0, 0, now.Location())
	if now.After(cutoff) {
		return nil, errors.ErrCheckoutCutoff
	}

	log, err := s.repo.GetByEmployeeAndDate(principal.ID, date)
	if err != nil {
		return nil, errors.NewInternalError("failed to read attendance record", err)
	}
	if log == nil || log.CheckInTime == nil {
		return nil, errors.ErrNoOpenRecord
	}
	if log.CheckOutTime != nil {
		return nil, errors.ErrAlreadyCompletedToday
	}

	return s.completeCheckout(ctx, log, now, false)
}

// Today returns the caller's record for the current date, if any.
func (s *Service) Today(principal *auth.User) (*Record, error) {
	date := s.now().Format("2006-01-02")
	log, err := s.repo.GetByEmployeeAndDate(principal.ID, date)
	if err != nil {
		return nil, errors.NewInternalError("failed to read attendance record", err)
	}
	if log == nil {
		return nil, errors.ErrRecordNotFound
	}
	return FromDataModel(log), nil
}

// List returns ledger rows scoped by role: therapists see their own,
// supervisors their branch, hr and superadmin everything.
func (s *Service) List(principal *auth.User, filter ListFilter) (*RecordsResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 100 {
		filter.PerPage = 20
	}

	switch principal.Role {
	case auth.RoleTherapist:
		filter.EmployeeID = &principal.ID
		filter.BranchID = nil
	case auth.RoleSupervisor:
		filter.BranchID = &principal.BranchID
	}

	logs, total, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list attendance", "error", err)
		return nil, errors.NewInternalError("failed to list attendance", err)
	}

	records := make([]RecordResponse, 0, len(logs))
	for _, log := range logs {
		records = append(records, FromDataModel(log).ToResponse())
	}
	return &RecordsResponse{Records: records, Total: total}, nil
}

// Delete removes a ledger row. Restricted to hr/superadmin at the router.
func (s *Service) Delete(id int64) error {
	log, err := s.repo.GetByID(id)
	if err != nil {
		return errors.NewInternalError("failed to delete attendance record", err)
	}
	if log == nil {
		return errors.ErrRecordNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		return errors.NewInternalError("failed to delete attendance record", err)
	}
	s.logger.Info("attendance record deleted", "attendance_id", id)
	return nil
}

// RequestCorrection opens a checkout-correction request for a past record
// whose checkout was missed. Today's open record is closed by a scan or the
// checkout button, never by a correction, and a record can only carry one
// pending request at a time. The claimed time must fall after the recorded
// check-in and not after the evening cutoff.
func (s *Service) RequestCorrection(principal *auth.User, dto RequestCorrectionDTO) (*Correction, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	log, err := s.repo.GetByID(dto.AttendanceLogID)
	if err != nil {
		return nil, errors.NewInternalError("failed to read attendance record", err)
	}
	if log == nil || log.EmployeeID != principal.ID {
		return nil, errors.ErrRecordNotFound
	}
	if log.CheckInTime == nil {
		return nil, errors.ErrNoOpenRecord
	}
	if log.CheckOutTime != nil && !log.AutoCheckout {
		return nil, errors.ErrAlreadyCompletedToday
	}
	if log.Date >= s.now().Format("2006-01-02") {
		return nil, errors.ErrCorrectionNotEligible
	}

	hasPending, err := s.repo.HasPendingCorrection(log.ID)
	if err != nil {
		return nil, errors.NewInternalError("failed to check existing corrections", err)
	}
	if hasPending {
		return nil, errors.ErrDuplicateCorrection
	}

	claimed, err := time.ParseInLocation("2006-01-02 15:04", log.Date+" "+dto.RequestedTime, log.CheckInTime.Location())
	if err != nil {
		return nil, errors.NewValidationFieldError("requested_time", "requested_time must be in HH:MM format", errors.ErrCodeValidationFailed)
	}
	if !claimed.After(*log.CheckInTime) {
		return nil, errors.NewValidationFieldError("requested_time", "requested checkout must be after check-in", errors.ErrCodeValidationFailed)
	}
	cutoffHour, cutoffMinute := s.policy.CutoffTime()
	if claimed.Hour() > cutoffHour || (claimed.Hour() == cutoffHour && claimed.Minute() > cutoffMinute) {
		return nil, errors.NewValidationFieldError("requested_time", "requested checkout cannot be after the cutoff time", errors.ErrCodeValidationFailed)
	}

	req := &attendanceDatamodel.CheckoutRequest{
		EmployeeID:      principal.ID,
		AttendanceLogID: log.ID,
		RequestedTime:   dto.RequestedTime,
		Reason:          dto.Reason,
		Status:          CorrectionPending,
	}
	if err := s.repo.CreateCorrection(req); err != nil {
		s.logger.Error("failed to create checkout correction", "attendance_id", log.ID, "error", err)
		return nil, errors.NewInternalError("failed to create correction request", err)
	}

	s.logger.Info("checkout correction requested",
		"correction_id", req.ID,
		"attendance_id", log.ID,
		"requested_time", dto.RequestedTime)
	return CorrectionFromDataModel(req), nil
}

// DecideCorrection approves or rejects a pending correction. Approval
// writes the claimed checkout time through the ledger.
func (s *Service) DecideCorrection(id int64, approver *auth.User, dto DecideCorrectionDTO) (*Correction, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	req, err := s.repo.GetCorrectionByID(id)
	if err != nil {
		return nil, errors.NewInternalError("failed to read correction request", err)
	}
	if req == nil {
		return nil, errors.NewNotFoundError("Correction request not found", errors.ErrCodeRecordNotFound)
	}
	if req.Status != CorrectionPending {
		return nil, errors.ErrInvalidTransition
	}

	log, err := s.repo.GetByID(req.AttendanceLogID)
	if err != nil || log == nil {
		return nil, errors.ErrRecordNotFound
	}
	if !approver.CanDecideFor(log.BranchID) {
		return nil, errors.NewForbiddenError("not allowed to decide for this branch", errors.ErrCodeValidationFailed)
	}

	now := s.now()
	if dto.Outcome == CorrectionApproved {
		claimed, err := time.ParseInLocation("2006-01-02 15:04", log.Date+" "+req.RequestedTime, now.Location())
		if err != nil {
			return nil, errors.NewInternalError("stored requested_time is malformed", err)
		}
		totalHours := 0.0
		if log.CheckInTime != nil {
			totalHours = WorkedHours(*log.CheckInTime, claimed)
		}
		if err := s.repo.SetCheckoutTime(log.ID, claimed, totalHours); err != nil {
			return nil, errors.NewInternalError("failed to apply corrected checkout", err)
		}
	}

	req.Status = dto.Outcome
	req.SupervisorID = &approver.ID
	req.SupervisorNotes = dto.Notes
	req.ProcessedAt = &now
	if err := s.repo.UpdateCorrection(req); err != nil {
		return nil, errors.NewInternalError("failed to update correction request", err)
	}

	s.logger.Info("checkout correction decided",
		"correction_id", req.ID,
		"outcome", dto.Outcome,
		"decided_by", approver.ID)
	return CorrectionFromDataModel(req), nil
}

// ListCorrections is role-scoped like List.
func (s *Service) ListCorrections(principal *auth.User, filter CorrectionFilter) (*CorrectionsResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 100 {
		filter.PerPage = 20
	}

	switch principal.Role {
	case auth.RoleTherapist:
		filter.EmployeeID = &principal.ID
		filter.BranchID = nil
	case auth.RoleSupervisor:
		filter.BranchID = &principal.BranchID
	}

	reqs, total, err := s.repo.ListCorrections(filter)
	if err != nil {
		return nil, errors.NewInternalError("failed to list correction requests", err)
	}

	out := make([]CorrectionResponse, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, CorrectionFromDataModel(req).ToResponse())
	}
	return &CorrectionsResponse{Corrections: out, Total: total}, nil
}

// Dashboard summarizes today's attendance per branch plus pending leaves.
func (s *Service) Dashboard(principal *auth.User) (*DashboardResponse, error) {
	date := s.now().Format("2006-01-02")

	stats, err := s.repo.CountTodayByBranch(date)
	if err != nil {
		return nil, errors.NewInternalError("failed to compute dashboard stats", err)
	}

	if principal.Role == auth.RoleSupervisor {
		scoped := stats[:0]
		for _, row := range stats {
			if row.BranchID == principal.BranchID {
				scoped = append(scoped, row)
			}
		}
		stats = scoped
	}

	var branchScope *int64
	if principal.Role == auth.RoleSupervisor {
		branchScope = &principal.BranchID
	}
	pending, err := s.leaves.CountPending(branchScope)
	if err != nil {
		s.logger.Warn("failed to count pending leaves", "error", err)
	}

	return &DashboardResponse{
		Date:          date,
		Branches:      stats,
		PendingLeaves: pending,
	}, nil
}

// AutoCheckoutSweep closes open records from days before today, marking
// them for correction. Run from the worker command at a quiet hour.
func (s *Service) AutoCheckoutSweep(ctx context.Context) (int, error) {
	now := s.now()
	today := now.Format("2006-01-02")

	open, err := s.repo.ListOpenBefore(today)
	if err != nil {
		return 0, errors.NewInternalError("failed to list open records", err)
	}

	closed := 0
	for _, log := range open {
		select {
		case <-ctx.Done():
			return closed, ctx.Err()
		default:
		}

		affected, err := s.repo.CloseAsAutoCheckout(log.ID, now)
		if err != nil {
			s.logger.Error("failed to auto-close record", "attendance_id", log.ID, "error", err)
			continue
		}
		if affected == 0 {
			continue
		}
		closed++
		_ = s.eventBus.Publish(ctx, events.NewCheckedOutEvent(log.ID, log.EmployeeID, log.Date, log.TotalHours, true))
	}

	s.logger.Info("auto-checkout sweep finished", "open", len(open), "closed", closed)
	return closed, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
