package postgres

import (
	"github.com/jeycentre/care-center-backend/internal/branch"
	branchDatamodel "github.com/jeycentre/care-center-backend/internal/core/datamodel/branch"
	"gorm.io/gorm"
)

type BranchRepository struct {
	db *gorm.DB
}

func NewBranchRepository(db *gorm.DB) branch.RepositoryAPI {
	return &BranchRepository{db: db}
}

func (r *BranchRepository) GetAll() ([]*branchDatamodel.Branch, error) {
	var branches []*branchDatamodel.Branch
	err := r.db.Order("name ASC").Find(&branches).Error
	return branches, err
}

func (r *BranchRepository) GetByID(id int64) (*branchDatamodel.Branch, error) {
	var b branchDatamodel.Branch
	err := r.db.Where("id = ?", id).First(&b).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *BranchRepository) GetByName(name string) (*branchDatamodel.Branch, error) {
	var b branchDatamodel.Branch
	err := r.db.Where("name = ?", name).First(&b).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *BranchRepository) Create(b *branchDatamodel.Branch) error {
	return r.db.Create(b).Error
}

func (r *BranchRepository) Update(b *branchDatamodel.Branch) error {
	return r.db.Save(b).Error
}

func (r *BranchRepository) Delete(id int64) error {
	return r.db.Delete(&branchDatamodel.Branch{}, id).Error
}
