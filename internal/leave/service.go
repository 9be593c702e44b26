package leave

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/jeycentre/care-center-backend/internal"
	"github.com/jeycentre/care-center-backend/internal/auth"
	leaveDatamodel "github.com/jeycentre/care-center-backend/internal/core/datamodel/leave"
	"github.com/jeycentre/care-center-backend/internal/core/events"
	"github.com/jeycentre/care-center-backend/internal/user"
)

type RepositoryAPI interface {
	Create(app *leaveDatamodel.LeaveApplication) error
	GetByID(id int64) (*leaveDatamodel.LeaveApplication, error)
	List(filter ListFilter) ([]*leaveDatamodel.LeaveApplication, int64, error)
	Update(app *leaveDatamodel.LeaveApplication) error
	HasOverlap(employeeID int64, startDate, endDate string) (bool, error)
	CountPending(branchID *int64) (int64, error)
}

// UserResolverAPI looks up the applicant so deciders can be checked
// against the applicant's branch.
type UserResolverAPI interface {
	GetByID(id int64) (*user.Employee, error)
}

type Service struct {
	repo     RepositoryAPI
	users    UserResolverAPI
	eventBus *events.EventBus
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo RepositoryAPI, users UserResolverAPI, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the service clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Apply files a new leave application in pending state. The start date
// must not be in the past and the range must not overlap an existing
// pending or approved application.
func (s *Service) Apply(principal *auth.User, dto ApplyDTO) (*Application, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	today := s.now().Format("2006-01-02")
	if dto.StartDate < today {
		return nil, errors.NewValidationFieldError("start_date", "start_date cannot be in the past", errors.ErrCodeInvalidDate)
	}

	overlaps, err := s.repo.HasOverlap(principal.ID, dto.StartDate, dto.EndDate)
	if err != nil {
		return nil, errors.NewInternalError("failed to check leave overlap", err)
	}
	if overlaps {
		return nil, errors.ErrLeaveOverlap
	}

	app := &leaveDatamodel.LeaveApplication{
		EmployeeID: principal.ID,
		LeaveType:  dto.LeaveType,
		StartDate:  dto.StartDate,
		EndDate:    dto.EndDate,
		LeaveDays:  DaysInclusive(dto.StartDate, dto.EndDate),
		Reason:     dto.Reason,
		Status:     StatusPending,
	}
	if err := s.repo.Create(app); err != nil {
		s.logger.Error("failed to create leave application", "employee_id", principal.ID, "error", err)
		return nil, errors.NewInternalError("failed to create leave application", err)
	}

	s.logger.Info("leave application filed",
		"leave_id", app.ID,
		"employee_id", principal.ID,
		"leave_type", dto.LeaveType,
		"days", app.LeaveDays)
	return FromDataModel(app), nil
}

// Get returns one application, restricted to its owner unless the caller
// may decide for the applicant's branch.
func (s *Service) Get(id int64, principal *auth.User) (*Application, error) {
	app, err := s.repo.GetByID(id)
	if err != nil {
		return nil, errors.NewInternalError("failed to read leave application", err)
	}
	if app == nil {
		return nil, errors.ErrLeaveNotFound
	}
	if app.EmployeeID != principal.ID {
		applicant, err := s.users.GetByID(app.EmployeeID)
		if err != nil {
			return nil, errors.ErrLeaveNotFound
		}
		if !principal.CanDecideFor(applicant.BranchID) {
			return nil, errors.ErrLeaveNotFound
		}
	}
	return FromDataModel(app), nil
}

// Decide moves a pending application to approved or rejected. Any other
// starting state fails with InvalidTransition.
func (s *Service) Decide(ctx context.Context, id int64, approver *auth.User, dto DecideDTO) (*Application, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	app, err := s.repo.GetByID(id)
	if err != nil {
		return nil, errors.NewInternalError("failed to read leave application", err)
	}
	if app == nil {
		return nil, errors.ErrLeaveNotFound
	}
	if app.Status != StatusPending {
		return nil, errors.ErrInvalidTransition
	}

	applicant, err := s.users.GetByID(app.EmployeeID)
	if err != nil {
		return nil, errors.ErrUnknownIdentity
	}
	if !approver.CanDecideFor(applicant.BranchID) {
		return nil, errors.NewForbiddenError("not allowed to decide for this branch", errors.ErrCodeValidationFailed)
	}

	now := s.now()
	app.Status = dto.Outcome
	app.DecidedBy = &approver.ID
	app.DecidedAt = &now
	if err := s.repo.Update(app); err != nil {
		return nil, errors.NewInternalError("failed to update leave application", err)
	}

	_ = s.eventBus.Publish(ctx, events.NewLeaveDecidedEvent(app.ID, app.EmployeeID, approver.ID, dto.Outcome))
	s.logger.Info("leave application decided",
		"leave_id", app.ID,
		"outcome", dto.Outcome,
		"decided_by", approver.ID)
	return FromDataModel(app), nil
}

// List returns applications scoped by role: therapists see their own,
// supervisors their branch, hr and superadmin everything.
func (s *Service) List(principal *auth.User, filter ListFilter) (*ApplicationsResponse, error) {
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

	apps, total, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list leave applications", "error", err)
		return nil, errors.NewInternalError("failed to list leave applications", err)
	}

	out := make([]ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, FromDataModel(app).ToResponse())
	}
	return &ApplicationsResponse{Applications: out, Total: total}, nil
}

// CountPending feeds the attendance dashboard.
func (s *Service) CountPending(branchID *int64) (int64, error) {
	return s.repo.CountPending(branchID)
}
