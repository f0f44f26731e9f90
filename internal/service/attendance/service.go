package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pulsehr/attendance-backend-go/internal/domain/attendance"
	"github.com/pulsehr/attendance-backend-go/internal/domain/employee"
	"github.com/pulsehr/attendance-backend-go/internal/domain/leave"
	"github.com/pulsehr/attendance-backend-go/internal/domain/notification"
	"github.com/pulsehr/attendance-backend-go/internal/domain/scope"
	"github.com/pulsehr/attendance-backend-go/internal/pkg/clock"
	"github.com/pulsehr/attendance-backend-go/internal/pkg/geocode"
)

var _ attendance.AttendanceService = (*AttendanceServiceImpl)(nil)

type AttendanceServiceImpl struct {
	punchRepo  attendance.PunchRepository
	rosterRepo employee.RosterRepository
	leaveSvc   leave.Lookup
	notifier   notification.Service
	geocoder   geocode.Resolver
	policy     attendance.WindowPolicy
	clock      clock.Clock
	dayLocks   *keyLock
}

func NewAttendanceService(
	punchRepo attendance.PunchRepository,
	rosterRepo employee.RosterRepository,
	leaveSvc leave.Lookup,
	notifier notification.Service,
	geocoder geocode.Resolver,
	policy attendance.WindowPolicy,
	clk clock.Clock,
) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		punchRepo:  punchRepo,
		rosterRepo: rosterRepo,
		leaveSvc:   leaveSvc,
		notifier:   notifier,
		geocoder:   geocoder,
		policy:     policy,
		clock:      clk,
		dayLocks:   newKeyLock(),
	}
}

// timePtrToString safely converts a *time.Time to a string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format("2006-01-02 15:04:05")
	return &format
}

// RecordPunch implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RecordPunch(ctx context.Context, caller scope.Caller, req attendance.RecordPunchRequest) (attendance.AttendanceDayResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceDayResponse{}, err
	}
	punchType, _ := attendance.ParsePunchType(req.Type)

	sc := scope.Resolve(caller)
	if !sc.CanPunch(req.EmployeeID) {
		return attendance.AttendanceDayResponse{}, attendance.ErrUnauthorized
	}

	if _, err := a.rosterRepo.GetByID(ctx, req.EmployeeID); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return attendance.AttendanceDayResponse{}, attendance.ErrEmployeeNotFound
		}
		return attendance.AttendanceDayResponse{}, fmt.Errorf("failed to look up employee: %w", err)
	}

	now := a.clock.Now()
	date := startOfDay(now)

	// serialize per employee-day so the alternation check and the append are
	// atomic; unrelated employees stay fully parallel
	unlock := a.dayLocks.Lock(req.EmployeeID + ":" + date.Format("2006-01-02"))
	defer unlock()

	last, err := a.punchRepo.LastByEmployeeAndDate(ctx, req.EmployeeID, date)
	if err != nil {
		return attendance.AttendanceDayResponse{}, fmt.Errorf("failed to read last punch: %w", err)
	}

	// replay suppression: an identical punch inside the de-dup interval is
	// the same punch, not a sequence violation
	if last != nil && last.Type == punchType &&
		last.Timestamp.Truncate(time.Minute).Equal(now.Truncate(time.Minute)) &&
		now.Sub(last.Timestamp) <= a.policy.DedupInterval {
		return a.buildDayResponse(ctx, req.EmployeeID, date, now)
	}

	switch punchType {
	case attendance.PunchIn:
		if last != nil && last.Type == attendance.PunchIn {
			return attendance.AttendanceDayResponse{}, attendance.ErrInvalidPunchSequence
		}
	case attendance.PunchOut:
		if last == nil || last.Type == attendance.PunchOut {
			return attendance.AttendanceDayResponse{}, attendance.ErrInvalidPunchSequence
		}
	}

	var class attendance.PunchClass
	if punchType == attendance.PunchIn {
		class = a.policy.ClassifyPunchInTime(now, last == nil)
	} else {
		class = a.policy.ClassifyPunchOutTime(now)
	}
	if class == attendance.PunchRejected {
		return attendance.AttendanceDayResponse{}, attendance.ErrOutsideAllowedWindow
	}

	// best-effort place name; a miss never fails the punch
	locationName := a.geocoder.ReverseLookup(ctx, *req.Latitude, *req.Longitude)

	event := attendance.PunchEvent{
		ID:           uuid.New().String(),
		EmployeeID:   req.EmployeeID,
		Timestamp:    now,
		Type:         punchType,
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
		LocationName: locationName,
	}
	if _, err := a.punchRepo.Append(ctx, event); err != nil {
		return attendance.AttendanceDayResponse{}, fmt.Errorf("failed to append punch event: %w", err)
	}

	resp, err := a.buildDayResponse(ctx, req.EmployeeID, date, now)
	if err != nil {
		return attendance.AttendanceDayResponse{}, err
	}

	a.dispatchAlerts(ctx, req.EmployeeID, date, punchType, class, resp)

	return resp, nil
}

// dispatchAlerts queues the fire-and-forget notifications a successful punch
// can trigger. The notifier de-duplicates per (employee, date, type).
func (a *AttendanceServiceImpl) dispatchAlerts(
	ctx context.Context,
	employeeID string,
	date time.Time,
	punchType attendance.PunchType,
	class attendance.PunchClass,
	day attendance.AttendanceDayResponse,
) {
	dateStr := date.Format("2006-01-02")

	if class == attendance.PunchLateFlagged {
		a.notifier.QueueAlert(ctx, notification.CreateAlertRequest{
			EmployeeID: employeeID,
			Type:       notification.TypeLateEntry,
			Date:       date,
			Title:      "Late Entry",
			Message:    "You punched in during the late-entry window.",
			Data:       map[string]interface{}{"date": dateStr},
		})
	}

	if class == attendance.PunchEarlyFlagged {
		a.notifier.QueueAlert(ctx, notification.CreateAlertRequest{
			EmployeeID: employeeID,
			Type:       notification.TypeEarlyExit,
			Date:       date,
			Title:      "Early Exit",
			Message:    "You punched out during the early-exit window.",
			Data:       map[string]interface{}{"date": dateStr},
		})
	}

	if day.Status == string(attendance.StatusRunningOutOfTime) {
		a.notifier.QueueAlert(ctx, notification.CreateAlertRequest{
			EmployeeID: employeeID,
			Type:       notification.TypeRunningOutOfTime,
			Date:       date,
			Title:      "Running Out Of Time",
			Message:    "You cannot reach the required daily hours before the punch-out deadline.",
			Data: map[string]interface{}{
				"date":          dateStr,
				"working_hours": day.TotalWorkingHours,
			},
		})
	} else if punchType == attendance.PunchOut {
		// the open-shortfall condition ended with this punch-out; re-arm the
		// trigger for a later re-entry
		a.notifier.ResetTrigger(employeeID, dateStr, notification.TypeRunningOutOfTime)
	}
}

// GetToday implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetToday(ctx context.Context, caller scope.Caller) (attendance.AttendanceDayResponse, error) {
	if caller.EmployeeID == "" {
		return attendance.AttendanceDayResponse{}, attendance.ErrEmployeeNotFound
	}
	now := a.clock.Now()
	return a.buildDayResponse(ctx, caller.EmployeeID, startOfDay(now), now)
}

// buildDay recomputes one employee-day from the ledger plus leave and
// absence-mark inputs.
func (a *AttendanceServiceImpl) buildDay(ctx context.Context, employeeID string, date time.Time, now time.Time) (attendance.AttendanceDay, error) {
	punches, err := a.punchRepo.ListByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		return attendance.AttendanceDay{}, fmt.Errorf("failed to list punches: %w", err)
	}

	onLeave, err := a.leaveSvc.IsOnLeave(ctx, employeeID, date)
	if err != nil {
		return attendance.AttendanceDay{}, fmt.Errorf("failed to check leave: %w", err)
	}

	marked, err := a.punchRepo.HasAbsenceMark(ctx, employeeID, date)
	if err != nil {
		return attendance.AttendanceDay{}, fmt.Errorf("failed to check absence mark: %w", err)
	}

	return Classify(punches, a.policy, DayContext{
		EmployeeID:   employeeID,
		Date:         date,
		OnLeave:      onLeave,
		MarkedAbsent: marked,
		Now:          now,
	}), nil
}

func (a *AttendanceServiceImpl) buildDayResponse(ctx context.Context, employeeID string, date time.Time, now time.Time) (attendance.AttendanceDayResponse, error) {
	day, err := a.buildDay(ctx, employeeID, date, now)
	if err != nil {
		return attendance.AttendanceDayResponse{}, err
	}
	return mapDayToResponse(day), nil
}

// mapDayToResponse converts an AttendanceDay view to its wire form.
func mapDayToResponse(day attendance.AttendanceDay) attendance.AttendanceDayResponse {
	punches := make([]attendance.PunchEventResponse, 0, len(day.Punches))
	for _, p := range day.Punches {
		punches = append(punches, attendance.PunchEventResponse{
			ID:           p.ID,
			Timestamp:    p.Timestamp.Format("2006-01-02 15:04:05"),
			Type:         string(p.Type),
			Latitude:     p.Latitude,
			Longitude:    p.Longitude,
			LocationName: p.LocationName,
		})
	}

	return attendance.AttendanceDayResponse{
		EmployeeID:        day.EmployeeID,
		Date:              day.Date.Format("2006-01-02"),
		Punches:           punches,
		FirstPunchIn:      timePtrToString(day.FirstPunchIn),
		LastPunchOut:      timePtrToString(day.LastPunchOut),
		TotalWorkingHours: day.TotalWorkingHours,
		OvertimeHours:     day.OvertimeHours,
		IsLateEntry:       day.IsLateEntry,
		IsEarlyExit:       day.IsEarlyExit,
		Status:            string(day.Status),
		CanPunchIn:        day.CanPunchIn,
		CanPunchOut:       day.CanPunchOut,
	}
}
