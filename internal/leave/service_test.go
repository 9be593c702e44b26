package leave

import (
	"context"
	"log/slog"
	"testing"
	"time"

	apperrors "github.com/jeycentre/care-center-backend/internal"
	"github.com/jeycentre/care-center-backend/internal/auth"
	leaveDatamodel "github.com/jeycentre/care-center-backend/internal/core/datamodel/leave"
	"github.com/jeycentre/care-center-backend/internal/core/events"
	"github.com/jeycentre/care-center-backend/internal/user"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestLeave(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Leave Module Suite")
}

type mockLeaveRepository struct {
	apps   map[int64]*leaveDatamodel.LeaveApplication
	nextID int64
}

func newMockLeaveRepository() *mockLeaveRepository {
	return &mockLeaveRepository{
		apps:   make(map[int64]*leaveDatamodel.LeaveApplication),
		nextID: 1,
	}
}

func (m *mockLeaveRepository) Create(app *leaveDatamodel.LeaveApplication) error {
	app.ID = m.nextID
	m.nextID++
	app.AppliedAt = time.Now()
	copied := *app
	m.apps[app.ID] = &copied
	return nil
}

func (m *mockLeaveRepository) GetByID(id int64) (*leaveDatamodel.LeaveApplication, error) {
	if app, ok := m.apps[id]; ok {
		copied := *app
		return &copied, nil
	}
	return nil, nil
}

func (m *mockLeaveRepository) List(filter ListFilter) ([]*leaveDatamodel.LeaveApplication, int64, error) {
	var out []*leaveDatamodel.LeaveApplication
	for _, app := range m.apps {
		if filter.EmployeeID != nil && app.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		copied := *app
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (m *mockLeaveRepository) Update(app *leaveDatamodel.LeaveApplication) error {
	copied := *app
	m.apps[app.ID] = &copied
	return nil
}

func (m *mockLeaveRepository) HasOverlap(employeeID int64, startDate, endDate string) (bool, error) {
	for _, app := range m.apps {
		if app.EmployeeID != employeeID {
			continue
		}
		if app.Status != StatusPending && app.Status != StatusApproved {
			continue
		}
		if app.StartDate <= endDate && app.EndDate >= startDate {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockLeaveRepository) CountPending(branchID *int64) (int64, error) {
	var count int64
	for _, app := range m.apps {
		if app.Status == StatusPending {
			count++
		}
	}
	return count, nil
}

type mockUserResolver struct {
	byID map[int64]*user.Employee
}

func (m *mockUserResolver) GetByID(id int64) (*user.Employee, error) {
	if e, ok := m.byID[id]; ok {
		return e, nil
	}
	return nil, apperrors.ErrUserNotFound
}

var _ = ginkgo.Describe("LeaveService", func() {
	var (
		service   *Service
		repo      *mockLeaveRepository
		ctx       context.Context
		therapist *auth.User
	)

	// Fixed clock: Monday 2025-03-10.
	current := time.Date(2025, 3, 10, 10, 0, 0, 0, time.Local)

	apply := func(principal *auth.User, start, end string) *Application {
		app, err := service.Apply(principal, ApplyDTO{
			LeaveType: TypeCasual,
			StartDate: start,
			EndDate:   end,
			Reason:    "family matter",
		})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		return app
	}

	ginkgo.BeforeEach(func() {
		repo = newMockLeaveRepository()
		users := &mockUserResolver{byID: map[int64]*user.Employee{
			1: {ID: 1, EmployeeID: "EMP001", BranchID: 1, Role: "therapist", IsActive: true},
			2: {ID: 2, EmployeeID: "EMP002", BranchID: 2, Role: "therapist", IsActive: true},
		}}
		ctx = context.Background()
		therapist = &auth.User{ID: 1, EmployeeID: "EMP001", Role: auth.RoleTherapist, BranchID: 1}

		service = NewService(repo, users, events.NewEventBus(slog.Default()), slog.Default()).
			WithClock(func() time.Time { return current })
	})

	ginkgo.Describe("Apply", func() {
		ginkgo.It("should file a pending application with inclusive day count", func() {
			// When
			app := apply(therapist, "2025-03-12", "2025-03-14")

			// Then
			gomega.Expect(app.Status).To(gomega.Equal(StatusPending))
			gomega.Expect(app.LeaveDays).To(gomega.Equal(3))
		})

		ginkgo.It("should accept a single-day leave", func() {
			app := apply(therapist, "2025-03-12", "2025-03-12")
			gomega.Expect(app.LeaveDays).To(gomega.Equal(1))
		})

		ginkgo.It("should reject a start date in the past", func() {
			// When
			_, err := service.Apply(therapist, ApplyDTO{
				LeaveType: TypeCasual,
				StartDate: "2025-03-09",
				EndDate:   "2025-03-12",
				Reason:    "too late",
			})

			// Then
			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("should reject an inverted date range", func() {
			_, err := service.Apply(therapist, ApplyDTO{
				LeaveType: TypeCasual,
				StartDate: "2025-03-14",
				EndDate:   "2025-03-12",
				Reason:    "backwards",
			})
			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("should reject an unknown leave type", func() {
			_, err := service.Apply(therapist, ApplyDTO{
				LeaveType: "sabbatical",
				StartDate: "2025-03-12",
				EndDate:   "2025-03-14",
				Reason:    "year off",
			})
			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("should reject an overlapping application", func() {
			// Given
			apply(therapist, "2025-03-12", "2025-03-14")

			// When: the new range touches the existing one
			_, err := service.Apply(therapist, ApplyDTO{
				LeaveType: TypeUnpaid,
				StartDate: "2025-03-14",
				EndDate:   "2025-03-17",
				Reason:    "extension",
			})

			// Then
			appErr, ok := apperrors.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(apperrors.ErrCodeLeaveOverlap))
			gomega.Expect(appErr.StatusCode).To(gomega.Equal(409))
		})

		ginkgo.It("should allow a new application after rejection", func() {
			// Given: a rejected application over the same range
			app := apply(therapist, "2025-03-12", "2025-03-14")
			hr := &auth.User{ID: 8, Role: auth.RoleHR}
			_, err := service.Decide(ctx, app.ID, hr, DecideDTO{Outcome: StatusRejected})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// When
			_, err = service.Apply(therapist, ApplyDTO{
				LeaveType: TypeCasual,
				StartDate: "2025-03-12",
				EndDate:   "2025-03-14",
				Reason:    "second attempt",
			})

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("Decide", func() {
		var app *Application

		ginkgo.BeforeEach(func() {
			app = apply(therapist, "2025-03-12", "2025-03-14")
		})

		ginkgo.It("should approve a pending application", func() {
			// Given
			supervisor := &auth.User{ID: 9, Role: auth.RoleSupervisor, BranchID: 1}

			// When
			decided, err := service.Decide(ctx, app.ID, supervisor, DecideDTO{Outcome: StatusApproved})

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(decided.Status).To(gomega.Equal(StatusApproved))
			gomega.Expect(decided.DecidedBy).ToNot(gomega.BeNil())
			gomega.Expect(*decided.DecidedBy).To(gomega.Equal(int64(9)))
			gomega.Expect(decided.DecidedAt).ToNot(gomega.BeNil())
		})

		ginkgo.It("should refuse deciding a non-pending application", func() {
			// Given: already approved
			hr := &auth.User{ID: 8, Role: auth.RoleHR}
			_, err := service.Decide(ctx, app.ID, hr, DecideDTO{Outcome: StatusApproved})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// When: any further decision, either direction
			_, err = service.Decide(ctx, app.ID, hr, DecideDTO{Outcome: StatusRejected})

			// Then
			appErr, ok := apperrors.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(apperrors.ErrCodeInvalidTransition))
		})

		ginkgo.It("should refuse a supervisor from another branch", func() {
			// Given
			otherBranch := &auth.User{ID: 10, Role: auth.RoleSupervisor, BranchID: 5}

			// When
			_, err := service.Decide(ctx, app.ID, otherBranch, DecideDTO{Outcome: StatusApproved})

			// Then
			appErr, ok := apperrors.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(apperrors.ErrorTypeForbidden))
		})

		ginkgo.It("should refuse an outcome other than approved or rejected", func() {
			hr := &auth.User{ID: 8, Role: auth.RoleHR}
			_, err := service.Decide(ctx, app.ID, hr, DecideDTO{Outcome: "pending"})
			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("should return not found for a missing application", func() {
			hr := &auth.User{ID: 8, Role: auth.RoleHR}
			_, err := service.Decide(ctx, 999, hr, DecideDTO{Outcome: StatusApproved})

			appErr, ok := apperrors.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(apperrors.ErrCodeLeaveNotFound))
		})
	})

	ginkgo.Describe("Get", func() {
		var app *Application

		ginkgo.BeforeEach(func() {
			app = apply(therapist, "2025-03-12", "2025-03-14")
		})

		ginkgo.It("should let the owner read it", func() {
			got, err := service.Get(app.ID, therapist)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(got.ID).To(gomega.Equal(app.ID))
		})

		ginkgo.It("should hide it from unrelated therapists", func() {
			other := &auth.User{ID: 2, Role: auth.RoleTherapist, BranchID: 2}
			_, err := service.Get(app.ID, other)
			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("should let the branch supervisor read it", func() {
			supervisor := &auth.User{ID: 9, Role: auth.RoleSupervisor, BranchID: 1}
			got, err := service.Get(app.ID, supervisor)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(got.ID).To(gomega.Equal(app.ID))
		})
	})

	ginkgo.Describe("List", func() {
		ginkgo.BeforeEach(func() {
			apply(therapist, "2025-03-12", "2025-03-14")
			other := &auth.User{ID: 2, Role: auth.RoleTherapist, BranchID: 2}
			apply(other, "2025-03-12", "2025-03-14")
		})

		ginkgo.It("should scope therapists to their own applications", func() {
			apps, err := service.List(therapist, ListFilter{})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(apps.Total).To(gomega.Equal(int64(1)))
			gomega.Expect(apps.Applications[0].EmployeeID).To(gomega.Equal(int64(1)))
		})

		ginkgo.It("should let hr see everything", func() {
			hr := &auth.User{ID: 8, Role: auth.RoleHR}
			apps, err := service.List(hr, ListFilter{})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(apps.Total).To(gomega.Equal(int64(2)))
		})
	})

	ginkgo.Describe("CountPending", func() {
		ginkgo.It("should count only pending applications", func() {
			// Given: one pending, one approved
			app := apply(therapist, "2025-03-12", "2025-03-14")
			other := &auth.User{ID: 2, Role: auth.RoleTherapist, BranchID: 2}
			apply(other, "2025-03-20", "2025-03-21")
			hr := &auth.User{ID: 8, Role: auth.RoleHR}
			_, err := service.Decide(ctx, app.ID, hr, DecideDTO{Outcome: StatusApproved})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// When
			count, err := service.CountPending(nil)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(count).To(gomega.Equal(int64(1)))
		})
	})
})

var _ = ginkgo.Describe("DaysInclusive", func() {
	ginkgo.It("should count both endpoints", func() {
		gomega.Expect(DaysInclusive("2025-03-12", "2025-03-14")).To(gomega.Equal(3))
	})

	ginkgo.It("should return zero for an inverted range", func() {
		gomega.Expect(DaysInclusive("2025-03-14", "2025-03-12")).To(gomega.BeZero())
	})

	ginkgo.It("should return zero for malformed dates", func() {
		gomega.Expect(DaysInclusive("12-03-2025", "2025-03-14")).To(gomega.BeZero())
	})
})
