package postgres

import (
	userDatamodel "github.com/jeycentre/care-center-backend/internal/core/datamodel/user"
	"github.com/jeycentre/care-center-backend/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(filter user.ListEmployeesFilter) ([]*userDatamodel.User, int64, error) {
	query := r.db.Model(&userDatamodel.User{}).Where("is_active = ?", true)

	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR employee_id LIKE ? OR email LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*userDatamodel.User
	offset := (filter.Page - 1) * filter.PerPage
	err := query.Order("employee_id ASC").Limit(filter.PerPage).Offset(offset).Find(&users).Error
	return users, total, err
}

func (r *UserRepository) GetByID(id int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.Where("id = ?", id).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmployeeID(employeeID string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.Where("employee_id = ?", employeeID).First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(u *userDatamodel.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) Update(u *userDatamodel.User) error {
	return r.db.Save(u).Error
}

func (r *UserRepository) Deactivate(id int64) error {
	return r.db.Model(&userDatamodel.User{}).Where("id = ?", id).Update("is_active", false).Error
}
