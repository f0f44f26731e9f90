package attendance

import (
	"github.com/pulsehr/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type RecordPunchRequest struct {
	EmployeeID string   `json:"employee_id"`
	Type       string   `json:"type"` // "in" or "out"
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

func (r *RecordPunchRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if _, ok := ParsePunchType(r.Type); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be 'in' or 'out'",
		})
	}

	if r.Latitude == nil || r.Longitude == nil {
		return ErrLocationMissing
	}

	if !validator.IsValidLatitude(*r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if !validator.IsValidLongitude(*r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type PunchEventResponse struct {
	ID           string  `json:"id"`
	Timestamp    string  `json:"timestamp"`
	Type         string  `json:"type"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	LocationName *string `json:"location_name,omitempty"`
}

type AttendanceDayResponse struct {
	EmployeeID        string               `json:"employee_id"`
	Date              string               `json:"date"`
	Punches           []PunchEventResponse `json:"punches"`
	FirstPunchIn      *string              `json:"first_punch_in,omitempty"`
	LastPunchOut      *string              `json:"last_punch_out,omitempty"`
	TotalWorkingHours float64              `json:"total_working_hours"`
	OvertimeHours     float64              `json:"overtime_hours"`
	IsLateEntry       bool                 `json:"is_late_entry"`
	IsEarlyExit       bool                 `json:"is_early_exit"`
	Status            string               `json:"status"`
	CanPunchIn        bool                 `json:"can_punch_in"`
	CanPunchOut       bool                 `json:"can_punch_out"`
}

// ========================================
// DAILY SNAPSHOT
// ========================================

type DailySnapshotRequest struct {
	Date string `json:"date"` // YYYY-MM-DD
}

func (r *DailySnapshotRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DailySnapshotItem struct {
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	Department   string  `json:"department,omitempty"`
	Status       string  `json:"status"`
	FirstPunchIn *string `json:"first_punch_in,omitempty"`
	IsLateEntry  bool    `json:"is_late_entry"`
	IsEarlyExit  bool    `json:"is_early_exit"`
}

type DailySnapshotResponse struct {
	Date              string              `json:"date"`
	TotalEmployees    int                 `json:"total_employees"`
	Present           int                 `json:"present"`
	Absent            int                 `json:"absent"`
	OnLeave           int                 `json:"on_leave"`
	NotMarked         int                 `json:"not_marked"`
	LateEntryCount    int                 `json:"late_entry_count"`
	EarlyExitCount    int                 `json:"early_exit_count"`
	AttendancePercent float64             `json:"attendance_percent"` // one decimal
	Entries           []DailySnapshotItem `json:"entries"`
}

// ========================================
// MONTHLY REPORT
// ========================================

type MonthlyReportRequest struct {
	EmployeeID string `json:"employee_id"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
}

func (r *MonthlyReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}

	if !validator.IsValidYear(r.Year) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year is out of range",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CalendarDayResponse struct {
	Day          int     `json:"day"`
	Date         string  `json:"date"`
	Status       string  `json:"status"`
	WorkingHours float64 `json:"working_hours"`
	IsLateEntry  bool    `json:"is_late_entry"`
	IsEarlyExit  bool    `json:"is_early_exit"`
}

type MonthlyStatsResponse struct {
	PresentDays         int     `json:"present_days"`
	AbsentDays          int     `json:"absent_days"`
	OnLeaveDays         int     `json:"on_leave_days"`
	NotMarkedDays       int     `json:"not_marked_days"`
	TotalWorkingHours   float64 `json:"total_working_hours"`
	AverageWorkingHours float64 `json:"average_working_hours"`
	LateEntryCount      int     `json:"late_entry_count"`
	EarlyExitCount      int     `json:"early_exit_count"`
	AttendancePercent   float64 `json:"attendance_percent"` // one decimal
}

type MonthlyReportResponse struct {
	EmployeeID string                `json:"employee_id"`
	Month      int                   `json:"month"`
	Year       int                   `json:"year"`
	Calendar   []CalendarDayResponse `json:"calendar"`
	Stats      MonthlyStatsResponse  `json:"stats"`
}

// ========================================
// PAYROLL SUMMARY VIEW
// ========================================

// AttendanceSummaryResponse is the view payroll consumes for one
// employee-month.
type AttendanceSummaryResponse struct {
	EmployeeID        string  `json:"employee_id"`
	Month             int     `json:"month"`
	Year              int     `json:"year"`
	UnpaidLeaveDays   int     `json:"unpaid_leave_days"`
	TotalWorkingHours float64 `json:"total_working_hours"`
}
