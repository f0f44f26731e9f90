package attendance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pulsehr/attendance-backend-go/internal/domain/attendance"
	"github.com/pulsehr/attendance-backend-go/internal/domain/employee"
	"github.com/pulsehr/attendance-backend-go/internal/domain/scope"
	"golang.org/x/sync/errgroup"
)

// snapshotConcurrency bounds the per-employee classification fan-out for
// roster-wide snapshots.
const snapshotConcurrency = 8

// GetDailySnapshot implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetDailySnapshot(ctx context.Context, caller scope.Caller, req attendance.DailySnapshotRequest) (attendance.DailySnapshotResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DailySnapshotResponse{}, err
	}

	sc := scope.Resolve(caller)
	if !sc.CanViewAll() {
		return attendance.DailySnapshotResponse{}, attendance.ErrUnauthorized
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	now := a.clock.Now()

	employees, err := a.rosterRepo.ListActive(ctx)
	if err != nil {
		return attendance.DailySnapshotResponse{}, fmt.Errorf("failed to list roster: %w", err)
	}

	allPunches, err := a.punchRepo.ListByDate(ctx, date)
	if err != nil {
		return attendance.DailySnapshotResponse{}, fmt.Errorf("failed to list punches: %w", err)
	}
	punchesByEmployee := make(map[string][]attendance.PunchEvent)
	for _, p := range allPunches {
		punchesByEmployee[p.EmployeeID] = append(punchesByEmployee[p.EmployeeID], p)
	}

	onLeaveSet, err := a.leaveSvc.OnLeaveSet(ctx, date)
	if err != nil {
		return attendance.DailySnapshotResponse{}, fmt.Errorf("failed to load leave set: %w", err)
	}

	absentSet, err := a.punchRepo.ListAbsenceMarks(ctx, date)
	if err != nil {
		return attendance.DailySnapshotResponse{}, fmt.Errorf("failed to load absence marks: %w", err)
	}

	days := make([]attendance.AttendanceDay, len(employees))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(snapshotConcurrency)
	for i, emp := range employees {
		i, emp := i, emp
		g.Go(func() error {
			days[i] = Classify(punchesByEmployee[emp.ID], a.policy, DayContext{
				EmployeeID:   emp.ID,
				Date:         date,
				OnLeave:      onLeaveSet[emp.ID],
				MarkedAbsent: absentSet[emp.ID],
				Now:          now,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return attendance.DailySnapshotResponse{}, err
	}

	resp := attendance.DailySnapshotResponse{
		Date:           req.Date,
		TotalEmployees: len(employees),
		Entries:        make([]attendance.DailySnapshotItem, 0, len(employees)),
	}

	for i, emp := range employees {
		day := days[i]

		switch day.Status {
		case attendance.StatusOnLeave:
			resp.OnLeave++
		case attendance.StatusAbsent:
			resp.Absent++
		case attendance.StatusNotMarked:
			resp.NotMarked++
		default:
			resp.Present++
		}

		lateEntry, earlyExit := a.persistentFlags(day)
		if lateEntry {
			resp.LateEntryCount++
		}
		if earlyExit {
			resp.EarlyExitCount++
		}

		resp.Entries = append(resp.Entries, attendance.DailySnapshotItem{
			EmployeeID:   emp.ID,
			EmployeeName: emp.FullName,
			Department:   emp.Department,
			Status:       string(day.Status),
			FirstPunchIn: timePtrToString(day.FirstPunchIn),
			IsLateEntry:  lateEntry,
			IsEarlyExit:  earlyExit,
		})
	}

	if resp.TotalEmployees > 0 {
		resp.AttendancePercent = round1(float64(resp.Present) / float64(resp.TotalEmployees) * 100)
	}

	sort.Slice(resp.Entries, func(i, j int) bool {
		return resp.Entries[i].EmployeeName < resp.Entries[j].EmployeeName
	})

	return resp, nil
}

// persistentFlags computes the reporting variant of the late/early flags.
// The live AttendanceDay flags surface only while the triggering punch is the
// active state; aggregation views instead count the historic fact that the
// day's first in or last out fell inside its flag window.
func (a *AttendanceServiceImpl) persistentFlags(day attendance.AttendanceDay) (lateEntry, earlyExit bool) {
	if day.FirstPunchIn != nil && a.policy.LateEntryWindow.Contains(*day.FirstPunchIn) {
		lateEntry = true
	}
	if day.LastPunchOut != nil && a.policy.EarlyExitWindow.Contains(*day.LastPunchOut) {
		earlyExit = true
	}
	return lateEntry, earlyExit
}

// GetMonthlyReport implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMonthlyReport(ctx context.Context, caller scope.Caller, req attendance.MonthlyReportRequest) (attendance.MonthlyReportResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.MonthlyReportResponse{}, err
	}

	sc := scope.Resolve(caller)
	if !sc.CanView(req.EmployeeID) {
		return attendance.MonthlyReportResponse{}, attendance.ErrUnauthorized
	}

	if _, err := a.rosterRepo.GetByID(ctx, req.EmployeeID); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return attendance.MonthlyReportResponse{}, attendance.ErrEmployeeNotFound
		}
		return attendance.MonthlyReportResponse{}, fmt.Errorf("failed to look up employee: %w", err)
	}

	now := a.clock.Now()

	// calendar arithmetic: the zeroth day of next month is this month's last
	firstDay := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, now.Location())
	lastDay := firstDay.AddDate(0, 1, -1)
	daysInMonth := lastDay.Day()

	punches, err := a.punchRepo.ListByEmployeeAndRange(ctx, req.EmployeeID, firstDay, lastDay)
	if err != nil {
		return attendance.MonthlyReportResponse{}, fmt.Errorf("failed to list punches: %w", err)
	}
	punchesByDate := make(map[string][]attendance.PunchEvent)
	for _, p := range punches {
		key := p.Timestamp.Format("2006-01-02")
		punchesByDate[key] = append(punchesByDate[key], p)
	}

	leaveDays, err := a.leaveSvc.LeaveDaysInRange(ctx, req.EmployeeID, firstDay, lastDay)
	if err != nil {
		return attendance.MonthlyReportResponse{}, fmt.Errorf("failed to load leave days: %w", err)
	}

	absentDays, err := a.punchRepo.AbsenceMarksInRange(ctx, req.EmployeeID, firstDay, lastDay)
	if err != nil {
		return attendance.MonthlyReportResponse{}, fmt.Errorf("failed to load absence marks: %w", err)
	}

	resp := attendance.MonthlyReportResponse{
		EmployeeID: req.EmployeeID,
		Month:      req.Month,
		Year:       req.Year,
		Calendar:   make([]attendance.CalendarDayResponse, 0, daysInMonth),
	}

	for dayNum := 1; dayNum <= daysInMonth; dayNum++ {
		date := time.Date(req.Year, time.Month(req.Month), dayNum, 0, 0, 0, 0, now.Location())
		dateStr := date.Format("2006-01-02")

		day := Classify(punchesByDate[dateStr], a.policy, DayContext{
			EmployeeID:   req.EmployeeID,
			Date:         date,
			OnLeave:      leaveDays[dateStr],
			MarkedAbsent: absentDays[dateStr],
			Now:          now,
		})

		lateEntry, earlyExit := a.persistentFlags(day)

		resp.Calendar = append(resp.Calendar, attendance.CalendarDayResponse{
			Day:          dayNum,
			Date:         dateStr,
			Status:       string(day.Status),
			WorkingHours: day.TotalWorkingHours,
			IsLateEntry:  lateEntry,
			IsEarlyExit:  earlyExit,
		})

		switch day.Status {
		case attendance.StatusOnLeave:
			resp.Stats.OnLeaveDays++
		case attendance.StatusAbsent:
			resp.Stats.AbsentDays++
		case attendance.StatusNotMarked:
			resp.Stats.NotMarkedDays++
		default:
			resp.Stats.PresentDays++
			resp.Stats.TotalWorkingHours += day.TotalWorkingHours
		}
		if lateEntry {
			resp.Stats.LateEntryCount++
		}
		if earlyExit {
			resp.Stats.EarlyExitCount++
		}
	}

	if resp.Stats.PresentDays > 0 {
		resp.Stats.AverageWorkingHours = resp.Stats.TotalWorkingHours / float64(resp.Stats.PresentDays)
	}
	resp.Stats.AttendancePercent = round1(float64(resp.Stats.PresentDays) / float64(daysInMonth) * 100)

	return resp, nil
}

// GetAttendanceSummary implements attendance.AttendanceService.
// Payroll treats marked/derived absences as unpaid leave; approved leave
// days stay paid and are not counted here.
func (a *AttendanceServiceImpl) GetAttendanceSummary(ctx context.Context, caller scope.Caller, req attendance.MonthlyReportRequest) (attendance.AttendanceSummaryResponse, error) {
	report, err := a.GetMonthlyReport(ctx, caller, req)
	if err != nil {
		return attendance.AttendanceSummaryResponse{}, err
	}

	return attendance.AttendanceSummaryResponse{
		EmployeeID:        report.EmployeeID,
		Month:             report.Month,
		Year:              report.Year,
		UnpaidLeaveDays:   report.Stats.AbsentDays,
		TotalWorkingHours: report.Stats.TotalWorkingHours,
	}, nil
}

// round1 rounds to one decimal for display; callers keep full precision
// internally.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
