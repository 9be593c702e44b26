package user

import (
	"time"

	userDatamodel "github.com/jeycentre/care-center-backend/internal/core/datamodel/user"
)

// Employee is an account at a care center branch. The EmployeeID is the
// human-facing badge number printed on staff ID cards and used for login
// and QR identity payloads.
type Employee struct {
	ID           int64
	EmployeeID   string
	Email        string
	Name         string
	PasswordHash string
	Role         string
	BranchID     int64
	MobileNumber string
	LoginTime    string
	GraceMinutes int
	SupervisorID *int64
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (e *Employee) ToResponse() EmployeeResponse {
	return EmployeeResponse{
		ID:           e.ID,
		EmployeeID:   e.EmployeeID,
		Email:        e.Email,
		Name:         e.Name,
		Role:         e.Role,
		BranchID:     e.BranchID,
		MobileNumber: e.MobileNumber,
		LoginTime:    e.LoginTime,
		GraceMinutes: e.GraceMinutes,
		SupervisorID: e.SupervisorID,
		IsActive:     e.IsActive,
	}
}

func ToDataModel(e *Employee) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           e.ID,
		EmployeeID:   e.EmployeeID,
		Email:        e.Email,
		Name:         e.Name,
		PasswordHash: e.PasswordHash,
		Role:         e.Role,
		BranchID:     e.BranchID,
		MobileNumber: e.MobileNumber,
		LoginTime:    e.LoginTime,
		GraceMinutes: e.GraceMinutes,
		SupervisorID: e.SupervisorID,
		IsActive:     e.IsActive,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *Employee {
	return &Employee{
		ID:           u.ID,
		EmployeeID:   u.EmployeeID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		BranchID:     u.BranchID,
		MobileNumber: u.MobileNumber,
		LoginTime:    u.LoginTime,
		GraceMinutes: u.GraceMinutes,
		SupervisorID: u.SupervisorID,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
