package user

import (
	"log/slog"
	"testing"

	apperrors "github.com/jeycentre/care-center-backend/internal"
	userDatamodel "github.com/jeycentre/care-center-backend/internal/core/datamodel/user"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestUser(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "User Module Suite")
}

type mockUserRepository struct {
	users  map[int64]*userDatamodel.User
	nextID int64
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:  make(map[int64]*userDatamodel.User),
		nextID: 1,
	}
}

func (m *mockUserRepository) List(filter ListEmployeesFilter) ([]*userDatamodel.User, int64, error) {
	var out []*userDatamodel.User
	for _, u := range m.users {
		if !u.IsActive {
			continue
		}
		if filter.BranchID != nil && u.BranchID != *filter.BranchID {
			continue
		}
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (m *mockUserRepository) GetByID(id int64) (*userDatamodel.User, error) {
	return m.users[id], nil
}

func (m *mockUserRepository) GetByEmployeeID(employeeID string) (*userDatamodel.User, error) {
	for _, u := range m.users {
		if u.EmployeeID == employeeID {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepository) Create(u *userDatamodel.User) error {
	u.ID = m.nextID
	m.nextID++
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepository) Update(u *userDatamodel.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepository) Deactivate(id int64) error {
	if u, ok := m.users[id]; ok {
		u.IsActive = false
	}
	return nil
}

var _ = ginkgo.Describe("UserService", func() {
	var (
		service  *Service
		mockRepo *mockUserRepository
	)

	validCreate := func() CreateEmployeeDTO {
		return CreateEmployeeDTO{
			EmployeeID: "EMP010",
			Email:      "Rina@JeyCentre.id",
			Name:       "Rina Wulandari",
			Password:   "secret-password",
			Role:       userDatamodel.RoleTherapist,
			BranchID:   1,
		}
	}

	ginkgo.BeforeEach(func() {
		mockRepo = newMockUserRepository()
		service = NewService(mockRepo, bcrypt.MinCost, slog.Default())
	})

	ginkgo.Describe("Create", func() {
		ginkgo.It("should create an employee with hashed password and defaults", func() {
			// When
			e, err := service.Create(validCreate())

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(e.ID).To(gomega.BeNumerically(">", 0))
			gomega.Expect(e.Email).To(gomega.Equal("rina@jeycentre.id"))
			gomega.Expect(e.LoginTime).To(gomega.Equal("09:30"))
			gomega.Expect(e.GraceMinutes).To(gomega.Equal(10))
			gomega.Expect(e.IsActive).To(gomega.BeTrue())

			err = bcrypt.CompareHashAndPassword([]byte(e.PasswordHash), []byte("secret-password"))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should reject duplicate employee IDs", func() {
			// Given
			_, err := service.Create(validCreate())
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// When
			dup := validCreate()
			dup.Email = "other@jeycentre.id"
			_, err = service.Create(dup)

			// Then
			appErr, ok := apperrors.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(apperrors.ErrCodeDuplicateEmployee))
		})

		ginkgo.It("should reject unknown roles", func() {
			// Given
			dto := validCreate()
			dto.Role = "janitor"

			// When
			_, err := service.Create(dto)

			// Then
			appErr, ok := apperrors.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(apperrors.ErrorTypeValidation))
		})

		ginkgo.It("should reject short passwords", func() {
			// Given
			dto := validCreate()
			dto.Password = "short"

			// When
			_, err := service.Create(dto)

			// Then
			appErr, ok := apperrors.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(apperrors.ErrorTypeValidation))
		})

		ginkgo.It("should reject malformed login time", func() {
			// Given
			dto := validCreate()
			dto.LoginTime = "9am"

			// When
			_, err := service.Create(dto)

			// Then
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("Update", func() {
		ginkgo.It("should apply partial updates", func() {
			// Given
			created, err := service.Create(validCreate())
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// When
			role := userDatamodel.RoleSupervisor
			grace := 15
			updated, err := service.Update(created.ID, UpdateEmployeeDTO{Role: &role, GraceMinutes: &grace})

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(updated.Role).To(gomega.Equal(userDatamodel.RoleSupervisor))
			gomega.Expect(updated.GraceMinutes).To(gomega.Equal(15))
			gomega.Expect(updated.Name).To(gomega.Equal("Rina Wulandari"))
		})

		ginkgo.It("should return not found for missing employee", func() {
			// When
			name := "Someone"
			_, err := service.Update(999, UpdateEmployeeDTO{Name: &name})

			// Then
			appErr, ok := apperrors.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(apperrors.ErrorTypeNotFound))
		})
	})

	ginkgo.Describe("UpdateProfile", func() {
		ginkgo.It("should only touch self-service fields", func() {
			// Given
			created, err := service.Create(validCreate())
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// When
			mobile := "081234567890"
			updated, err := service.UpdateProfile(created.ID, UpdateProfileDTO{MobileNumber: &mobile})

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(updated.MobileNumber).To(gomega.Equal(mobile))
			gomega.Expect(updated.Role).To(gomega.Equal(userDatamodel.RoleTherapist))
		})
	})

	ginkgo.Describe("Deactivate", func() {
		ginkgo.It("should hide the employee from listings", func() {
			// Given
			created, err := service.Create(validCreate())
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// When
			err = service.Deactivate(created.ID)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			listed, err := service.List(ListEmployeesFilter{})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(listed.Total).To(gomega.BeZero())
		})
	})
})
