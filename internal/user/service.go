package user

import (
	"log/slog"
	"strings"

	errors "github.com/jeycentre/care-center-backend/internal"
	userDatamodel "github.com/jeycentre/care-center-backend/internal/core/datamodel/user"
	"golang.org/x/crypto/bcrypt"
)

type RepositoryAPI interface {
	List(filter ListEmployeesFilter) ([]*userDatamodel.User, int64, error)
	GetByID(id int64) (*userDatamodel.User, error)
	GetByEmployeeID(employeeID string) (*userDatamodel.User, error)
	Create(user *userDatamodel.User) error
	Update(user *userDatamodel.User) error
	Deactivate(id int64) error
}

type Service struct {
	repo       RepositoryAPI
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) List(filter ListEmployeesFilter) (*EmployeesResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 100 {
		filter.PerPage = 20
	}

	dataUsers, total, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list employees", "error", err)
		return nil, errors.NewInternalError("failed to list employees", err)
	}

	responses := make([]EmployeeResponse, 0, len(dataUsers))
	for _, du := range dataUsers {
		responses = append(responses, FromDataModel(du).ToResponse())
	}

	return &EmployeesResponse{Employees: responses, Total: total}, nil
}

func (s *Service) GetByID(id int64) (*Employee, error) {
	du, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get employee", "user_id", id, "error", err)
		return nil, errors.NewInternalError("failed to get employee", err)
	}
	if du == nil {
		return nil, errors.ErrUserNotFound
	}
	return FromDataModel(du), nil
}

func (s *Service) GetByEmployeeID(employeeID string) (*Employee, error) {
	du, err := s.repo.GetByEmployeeID(employeeID)
	if err != nil {
		s.logger.Error("failed to get employee", "employee_id", employeeID, "error", err)
		return nil, errors.NewInternalError("failed to get employee", err)
	}
	if du == nil {
		return nil, errors.ErrUserNotFound
	}
	return FromDataModel(du), nil
}

func (s *Service) Create(dto CreateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmployeeID(dto.EmployeeID)
	if err != nil {
		return nil, errors.NewInternalError("failed to create employee", err)
	}
	if existing != nil {
		return nil, errors.ErrDuplicateEmployee
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, errors.NewInternalError("failed to hash password", err)
	}

	loginTime := dto.LoginTime
	if loginTime == "" {
		loginTime = "09:30"
	}
	graceMinutes := dto.GraceMinutes
	if graceMinutes == 0 {
		graceMinutes = 10
	}

	du := &userDatamodel.User{
		EmployeeID:   dto.EmployeeID,
		Email:        strings.ToLower(dto.Email),
		Name:         dto.Name,
		PasswordHash: string(hash),
		Role:         dto.Role,
		BranchID:     dto.BranchID,
		MobileNumber: dto.MobileNumber,
		LoginTime:    loginTime,
		GraceMinutes: graceMinutes,
		SupervisorID: dto.SupervisorID,
		IsActive:     true,
	}

	if err := s.repo.Create(du); err != nil {
		if isUniqueViolation(err) {
			return nil, errors.ErrDuplicateEmployee
		}
		s.logger.Error("failed to create employee", "employee_id", dto.EmployeeID, "error", err)
		return nil, errors.NewInternalError("failed to create employee", err)
	}

	s.logger.Info("employee created", "user_id", du.ID, "employee_id", du.EmployeeID, "role", du.Role)
	return FromDataModel(du), nil
}

func (s *Service) Update(id int64, dto UpdateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	du, err := s.repo.GetByID(id)
	if err != nil {
		return nil, errors.NewInternalError("failed to update employee", err)
	}
	if du == nil {
		return nil, errors.ErrUserNotFound
	}

	if dto.Email != nil {
		du.Email = strings.ToLower(*dto.Email)
	}
	if dto.Name != nil {
		du.Name = *dto.Name
	}
	if dto.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*dto.Password), s.bcryptCost)
		if err != nil {
			return nil, errors.NewInternalError("failed to hash password", err)
		}
		du.PasswordHash = string(hash)
	}
	if dto.Role != nil {
		du.Role = *dto.Role
	}
	if dto.BranchID != nil {
		du.BranchID = *dto.BranchID
	}
	if dto.MobileNumber != nil {
		du.MobileNumber = *dto.MobileNumber
	}
	if dto.LoginTime != nil {
		du.LoginTime = *dto.LoginTime
	}
	if dto.GraceMinutes != nil {
		du.GraceMinutes = *dto.GraceMinutes
	}
	if dto.SupervisorID != nil {
		du.SupervisorID = dto.SupervisorID
	}
	if dto.IsActive != nil {
		du.IsActive = *dto.IsActive
	}

	if err := s.repo.Update(du); err != nil {
		if isUniqueViolation(err) {
			return nil, errors.ErrDuplicateEmployee
		}
		s.logger.Error("failed to update employee", "user_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update employee", err)
	}

	s.logger.Info("employee updated", "user_id", id)
	return FromDataModel(du), nil
}

// UpdateProfile applies self-service changes for the logged-in employee.
func (s *Service) UpdateProfile(id int64, dto UpdateProfileDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	update := UpdateEmployeeDTO{
		Name:         dto.Name,
		MobileNumber: dto.MobileNumber,
		Password:     dto.Password,
	}
	return s.Update(id, update)
}

// Deactivate soft-deletes the account. Attendance history stays intact.
func (s *Service) Deactivate(id int64) error {
	du, err := s.repo.GetByID(id)
	if err != nil {
		return errors.NewInternalError("failed to deactivate employee", err)
	}
	if du == nil {
		return errors.ErrUserNotFound
	}

	if err := s.repo.Deactivate(id); err != nil {
		s.logger.Error("failed to deactivate employee", "user_id", id, "error", err)
		return errors.NewInternalError("failed to deactivate employee", err)
	}

	s.logger.Info("employee deactivated", "user_id", id)
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
