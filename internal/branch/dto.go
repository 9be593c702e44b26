package branch

import (
	errors "github.com/jeycentre/care-center-backend/internal"
	"github.com/jeycentre/care-center-backend/internal/core/common/validation"
)

type BranchResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	ContactPhone string `json:"contact_phone"`
}

type BranchesResponse struct {
	Branches []BranchResponse `json:"branches"`
}

type CreateBranchDTO struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	ContactPhone string `json:"contact_phone"`
}

func (d CreateBranchDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("address", d.Address).MaxLength(255)
	v.Field("contact_phone", d.ContactPhone).MaxLength(20)
	return v.Validate()
}

type UpdateBranchDTO struct {
	Name         *string `json:"name,omitempty"`
	Address      *string `json:"address,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
}

func (d UpdateBranchDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", *d.Name).Required().MaxLength(100)
	}
	if d.Address != nil {
		v.Field("address", *d.Address).MaxLength(255)
	}
	if d.ContactPhone != nil {
		v.Field("contact_phone", *d.ContactPhone).MaxLength(20)
	}
	return v.Validate()
}
