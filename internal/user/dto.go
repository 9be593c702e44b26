package user

import (
	"strings"
	"time"

	errors "github.com/jeycentre/care-center-backend/internal"
	"github.com/jeycentre/care-center-backend/internal/core/common/validation"
	userDatamodel "github.com/jeycentre/care-center-backend/internal/core/datamodel/user"
)

type EmployeeResponse struct {
	ID           int64  `json:"id"`
	EmployeeID   string `json:"employee_id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	BranchID     int64  `json:"branch_id"`
	MobileNumber string `json:"mobile_number,omitempty"`
	LoginTime    string `json:"login_time"`
	GraceMinutes int    `json:"grace_minutes"`
	SupervisorID *int64 `json:"supervisor_id,omitempty"`
	IsActive     bool   `json:"is_active"`
}

type EmployeesResponse struct {
	Employees []EmployeeResponse `json:"employees"`
	Total     int64              `json:"total"`
}

type CreateEmployeeDTO struct {
	EmployeeID   string `json:"employee_id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	BranchID     int64  `json:"branch_id"`
	MobileNumber string `json:"mobile_number"`
	LoginTime    string `json:"login_time"`
	GraceMinutes int    `json:"grace_minutes"`
	SupervisorID *int64 `json:"supervisor_id"`
}

func (d CreateEmployeeDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("employee_id", d.EmployeeID).Required().MaxLength(32)
	v.Field("email", d.Email).Required().MaxLength(255).Custom(emailFormat("email"))
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("password", d.Password).Required().MinLength(8)
	v.Field("role", d.Role).Required().OneOf(
		userDatamodel.RoleTherapist,
		userDatamodel.RoleSupervisor,
		userDatamodel.RoleHR,
		userDatamodel.RoleSuperadmin,
	)
	v.Field("branch_id", d.BranchID).Required()
	if d.LoginTime != "" {
		v.Field("login_time", d.LoginTime).Custom(clockFormat("login_time"))
	}
	return v.Validate()
}

type UpdateEmployeeDTO struct {
	Email        *string `json:"email,omitempty"`
	Name         *string `json:"name,omitempty"`
	Password     *string `json:"password,omitempty"`
	Role         *string `json:"role,omitempty"`
	BranchID     *int64  `json:"branch_id,omitempty"`
	MobileNumber *string `json:"mobile_number,omitempty"`
	LoginTime    *string `json:"login_time,omitempty"`
	GraceMinutes *int    `json:"grace_minutes,omitempty"`
	SupervisorID *int64  `json:"supervisor_id,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

func (d UpdateEmployeeDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if d.Email != nil {
		v.Field("email", *d.Email).Required().MaxLength(255).Custom(emailFormat("email"))
	}
	if d.Name != nil {
		v.Field("name", *d.Name).Required().MaxLength(100)
	}
	if d.Password != nil {
		v.Field("password", *d.Password).Required().MinLength(8)
	}
	if d.Role != nil {
		v.Field("role", *d.Role).Required().OneOf(
			userDatamodel.RoleTherapist,
			userDatamodel.RoleSupervisor,
			userDatamodel.RoleHR,
			userDatamodel.RoleSuperadmin,
		)
	}
	if d.LoginTime != nil {
		v.Field("login_time", *d.LoginTime).Custom(clockFormat("login_time"))
	}
	return v.Validate()
}

// UpdateProfileDTO is the restricted self-service shape: employees may
// only change contact details, never role or branch.
type UpdateProfileDTO struct {
	Name         *string `json:"name,omitempty"`
	MobileNumber *string `json:"mobile_number,omitempty"`
	Password     *string `json:"password,omitempty"`
}

func (d UpdateProfileDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", *d.Name).Required().MaxLength(100)
	}
	if d.Password != nil {
		v.Field("password", *d.Password).Required().MinLength(8)
	}
	return v.Validate()
}

type ListEmployeesFilter struct {
	BranchID *int64
	Role     string
	Search   string
	Page     int
	PerPage  int
}

func emailFormat(field string) func(interface{}) *errors.AppError {
	return func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && v != "" {
			at := strings.Index(v, "@")
			if at < 1 || at == len(v)-1 || !strings.Contains(v[at:], ".") {
				return errors.NewValidationFieldError(field, field+" must be a valid email address", errors.ErrCodeValidationFailed)
			}
		}
		return nil
	}
}

func clockFormat(field string) func(interface{}) *errors.AppError {
	return func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && v != "" {
			if _, err := time.Parse("15:04", v); err != nil {
				return errors.NewValidationFieldError(field, field+" must be in HH:MM format", errors.ErrCodeValidationFailed)
			}
		}
		return nil
	}
}
