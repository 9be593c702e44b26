package postgres

import (
	leaveDatamodel "github.com/jeycentre/care-center-backend/internal/core/datamodel/leave"
	userDatamodel "github.com/jeycentre/care-center-backend/internal/core/datamodel/user"
	"github.com/jeycentre/care-center-backend/internal/leave"
	"gorm.io/gorm"
)

type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) leave.RepositoryAPI {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) Create(app *leaveDatamodel.LeaveApplication) error {
	return r.db.Create(app).Error
}

func (r *LeaveRepository) GetByID(id int64) (*leaveDatamodel.LeaveApplication, error) {
	var app leaveDatamodel.LeaveApplication
	err := r.db.Where("id = ?", id).First(&app).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}

func (r *LeaveRepository) List(filter leave.ListFilter) ([]*leaveDatamodel.LeaveApplication, int64, error) {
	query := r.db.Model(&leaveDatamodel.LeaveApplication{})

	if filter.EmployeeID != nil {
		query = query.Where("employee_id = ?", *filter.EmployeeID)
	}
	if filter.BranchID != nil {
		query = query.Where(
			"employee_id IN (?)",
			r.db.Model(&userDatamodel.User{}).Select("id").Where("branch_id = ?", *filter.BranchID),
		)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var apps []*leaveDatamodel.LeaveApplication
	offset := (filter.Page - 1) * filter.PerPage
	err := query.Order("applied_at DESC").Limit(filter.PerPage).Offset(offset).Find(&apps).Error
	return apps, total, err
}

func (r *LeaveRepository) Update(app *leaveDatamodel.LeaveApplication) error {
	return r.db.Save(app).Error
}

// HasOverlap reports whether the employee already has a pending or
// approved application touching any day of the given range.
func (r *LeaveRepository) HasOverlap(employeeID int64, startDate, endDate string) (bool, error) {
	var count int64
	err := r.db.Model(&leaveDatamodel.LeaveApplication{}).
		Where("employee_id = ?", employeeID).
		Where("status IN ?", []string{leave.StatusPending, leave.StatusApproved}).
		Where("start_date <= ? AND end_date >= ?", endDate, startDate).
		Count(&count).Error
	return count > 0, err
}

func (r *LeaveRepository) CountPending(branchID *int64) (int64, error) {
	query := r.db.Model(&leaveDatamodel.LeaveApplication{}).
		Where("status = ?", leave.StatusPending)
	if branchID != nil {
		query = query.Where(
			"employee_id IN (?)",
			r.db.Model(&userDatamodel.User{}).Select("id").Where("branch_id = ?", *branchID),
		)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}
