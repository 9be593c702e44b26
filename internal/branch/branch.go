package branch

import (
	"time"

	branchDatamodel "github.com/jeycentre/care-center-backend/internal/core/datamodel/branch"
)

// Branch is a physical care center location. Every employee belongs to
// exactly one branch and attendance is always scoped to it.
type Branch struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	ContactPhone string    `json:"contact_phone"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (b *Branch) ToResponse() BranchResponse {
	return BranchResponse{
		ID:           b.ID,
		Name:         b.Name,
		Address:      b.Address,
		ContactPhone: b.ContactPhone,
	}
}

func NewBranch(name, address, contactPhone string) *Branch {
	now := time.Now()
	return &Branch{
		Name:         name,
		Address:      address,
		ContactPhone: contactPhone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func ToDataModel(b *Branch) *branchDatamodel.Branch {
	return &branchDatamodel.Branch{
		ID:           b.ID,
		Name:         b.Name,
		Address:      b.Address,
		ContactPhone: b.ContactPhone,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func FromDataModel(b *branchDatamodel.Branch) *Branch {
	return &Branch{
		ID:           b.ID,
		Name:         b.Name,
		Address:      b.Address,
		ContactPhone: b.ContactPhone,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}
