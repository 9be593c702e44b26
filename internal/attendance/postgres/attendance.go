package postgres

import (
	"time"

	"github.com/jeycentre/care-center-backend/internal/attendance"
	attendanceDatamodel "github.com/jeycentre/care-center-backend/internal/core/datamodel/attendance"
	"gorm.io/gorm"
)

type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) attendance.RepositoryAPI {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) GetByEmployeeAndDate(employeeID int64, date string) (*attendanceDatamodel.AttendanceLog, error) {
	var log attendanceDatamodel.AttendanceLog
	err := r.db.Where("employee_id = ? AND date = ?", employeeID, date).First(&log).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

func (r *AttendanceRepository) GetByID(id int64) (*attendanceDatamodel.AttendanceLog, error) {
	var log attendanceDatamodel.AttendanceLog
	err := r.db.Where("id = ?", id).First(&log).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

// Insert relies on the composite unique index on (employee_id, date);
// callers inspect the error for a constraint violation to detect a
// concurrent first scan.
func (r *AttendanceRepository) Insert(log *attendanceDatamodel.AttendanceLog) error {
	return r.db.Create(log).Error
}

// CompleteCheckout is the conditional checkout transition: it only fires
// on a row that is still open and reports the affected count so the
// service can detect a lost race.
func (r *AttendanceRepository) CompleteCheckout(logID int64, checkOut time.Time, totalHours float64) (int64, error) {
	result := r.db.Model(&attendanceDatamodel.AttendanceLog{}).
		Where("id = ? AND check_out_time IS NULL", logID).
		Updates(map[string]interface{}{
			"check_out_time": checkOut,
			"total_hours":    totalHours,
		})
	return result.RowsAffected, result.Error
}

// SetCheckoutTime writes an approved correction unconditionally (the
// correction workflow already validated the transition).
func (r *AttendanceRepository) SetCheckoutTime(logID int64, checkOut time.Time, totalHours float64) error {
	return r.db.Model(&attendanceDatamodel.AttendanceLog{}).
		Where("id = ?", logID).
		Updates(map[string]interface{}{
			"check_out_time":            checkOut,
			"total_hours":               totalHours,
			"auto_checkout":             false,
			"needs_checkout_correction": false,
			"status":                    attendance.StatusPresent,
		}).Error
}

func (r *AttendanceRepository) List(filter attendance.ListFilter) ([]*attendanceDatamodel.AttendanceLog, int64, error) {
	query := r.db.Model(&attendanceDatamodel.AttendanceLog{})

	if filter.EmployeeID != nil {
		query = query.Where("employee_id = ?", *filter.EmployeeID)
	}
	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.DateFrom != "" {
		query = query.Where("date >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		query = query.Where("date <= ?", filter.DateTo)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []*attendanceDatamodel.AttendanceLog
	offset := (filter.Page - 1) * filter.PerPage
	err := query.Order("date DESC, employee_id ASC").Limit(filter.PerPage).Offset(offset).Find(&logs).Error
	return logs, total, err
}

func (r *AttendanceRepository) ListOpenBefore(date string) ([]*attendanceDatamodel.AttendanceLog, error) {
	var logs []*attendanceDatamodel.AttendanceLog
	err := r.db.
		Where("date < ? AND check_in_time IS NOT NULL AND check_out_time IS NULL", date).
		Find(&logs).Error
	return logs, err
}

// CloseAsAutoCheckout marks a stale open record as closed by the sweeper.
// The check-out time is left NULL so the day still reads as an incomplete
// cycle pending correction.
func (r *AttendanceRepository) CloseAsAutoCheckout(logID int64, closedAt time.Time) (int64, error) {
	result := r.db.Model(&attendanceDatamodel.AttendanceLog{}).
		Where("id = ? AND check_out_time IS NULL", logID).
		Updates(map[string]interface{}{
			"status":                    attendance.StatusDidNotCheckout,
			"auto_checkout":             true,
			"needs_checkout_correction": true,
			"updated_at":                closedAt,
		})
	return result.RowsAffected, result.Error
}

func (r *AttendanceRepository) Delete(id int64) error {
	return r.db.Delete(&attendanceDatamodel.AttendanceLog{}, id).Error
}

func (r *AttendanceRepository) CreateQRCodeLog(log *attendanceDatamodel.QRCodeLog) error {
	return r.db.Create(log).Error
}

func (r *AttendanceRepository) MarkQRCodeUsed(employeeID string, issuedAt time.Time, usedAt time.Time) error {
	return r.db.Model(&attendanceDatamodel.QRCodeLog{}).
		Where("employee_id = ? AND issued_at = ? AND is_used = ?", employeeID, issuedAt, false).
		Updates(map[string]interface{}{
			"is_used": true,
			"used_at": usedAt,
		}).Error
}

func (r *AttendanceRepository) CreateCorrection(req *attendanceDatamodel.CheckoutRequest) error {
	return r.db.Create(req).Error
}

func (r *AttendanceRepository) GetCorrectionByID(id int64) (*attendanceDatamodel.CheckoutRequest, error) {
	var req attendanceDatamodel.CheckoutRequest
	err := r.db.Where("id = ?", id).First(&req).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *AttendanceRepository) HasPendingCorrection(attendanceLogID int64) (bool, error) {
	var count int64
	err := r.db.Model(&attendanceDatamodel.CheckoutRequest{}).
		Where("attendance_log_id = ? AND status = ?", attendanceLogID, attendance.CorrectionPending).
		Count(&count).Error
	return count > 0, err
}

func (r *AttendanceRepository) ListCorrections(filter attendance.CorrectionFilter) ([]*attendanceDatamodel.CheckoutRequest, int64, error) {
	query := r.db.Model(&attendanceDatamodel.CheckoutRequest{})

	if filter.EmployeeID != nil {
		query = query.Where("employee_id = ?", *filter.EmployeeID)
	}
	if filter.BranchID != nil {
		query = query.Where(
			"attendance_log_id IN (?)",
			r.db.Model(&attendanceDatamodel.AttendanceLog{}).Select("id").Where("branch_id = ?", *filter.BranchID),
		)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reqs []*attendanceDatamodel.CheckoutRequest
	offset := (filter.Page - 1) * filter.PerPage
	err := query.Order("created_at DESC").Limit(filter.PerPage).Offset(offset).Find(&reqs).Error
	return reqs, total, err
}

func (r *AttendanceRepository) UpdateCorrection(req *attendanceDatamodel.CheckoutRequest) error {
	return r.db.Save(req).Error
}

// CountTodayByBranch aggregates today's attendance per branch, joining the
// branch registry so the dashboard can label rows and show zero-activity
// branches.
func (r *AttendanceRepository) CountTodayByBranch(date string) ([]attendance.BranchStats, error) {
	var stats []attendance.BranchStats
	err := r.db.Raw(`
		SELECT b.id AS branch_id,
		       b.name AS branch_name,
		       COUNT(CASE WHEN a.status = 'present' THEN 1 END) AS present_today,
		       COUNT(CASE WHEN a.status IN ('absent', 'did_not_checkout') THEN 1 END) AS absent_today,
		       COUNT(CASE WHEN a.checkin_status IN ('late', 'very_late') THEN 1 END) AS late_today
		FROM branches b
		LEFT JOIN attendance_logs a ON a.branch_id = b.id AND a.date = ?
		GROUP BY b.id, b.name
		ORDER BY b.name ASC
	`, date).Scan(&stats).Error
	return stats, err
}
