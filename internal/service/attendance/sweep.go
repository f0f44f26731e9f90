package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pulsehr/attendance-backend-go/internal/domain/attendance"
	"github.com/pulsehr/attendance-backend-go/internal/domain/notification"
)

// SweepShortfalls re-evaluates every employee still on the clock today and
// raises a running-out-of-time alert when the projected day no longer reaches
// the required hours. Alert suppression in the notifier keeps repeated sweeps
// from spamming the same trigger.
func (a *AttendanceServiceImpl) SweepShortfalls(ctx context.Context) error {
	now := a.clock.Now()
	today := startOfDay(now)

	openEmployees, err := a.punchRepo.ListOpenDays(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to list open days: %w", err)
	}

	for _, employeeID := range openEmployees {
		punches, err := a.punchRepo.ListByEmployeeAndDate(ctx, employeeID, today)
		if err != nil {
			slog.Error("shortfall sweep: failed to list punches", "employee_id", employeeID, "error", err)
			continue
		}

		day := Classify(punches, a.policy, DayContext{
			EmployeeID: employeeID,
			Date:       today,
			Now:        now,
		})

		if day.Status != attendance.StatusRunningOutOfTime {
			continue
		}

		remaining := a.policy.RequiredHoursRemaining(day.TotalWorkingHours)
		a.notifier.QueueAlert(ctx, notification.CreateAlertRequest{
			EmployeeID: employeeID,
			Type:       notification.TypeRunningOutOfTime,
			Date:       today,
			Title:      "Running out of time",
			Message:    fmt.Sprintf("You need %.1f more hours today to meet the required %.1f.", remaining, a.policy.RequiredDailyHours),
			Data: map[string]interface{}{
				"worked_hours":    day.TotalWorkingHours,
				"remaining_hours": remaining,
			},
		})
	}

	return nil
}

// SweepMarkAbsent records absence marks for closed days with no punches. It
// marks yesterday unconditionally and today once the final punch-out window
// has passed; both writes are idempotent, so overlapping sweeps are safe.
func (a *AttendanceServiceImpl) SweepMarkAbsent(ctx context.Context) error {
	now := a.clock.Now()
	today := startOfDay(now)

	dates := []time.Time{today.AddDate(0, 0, -1)}
	if !now.Before(a.policy.FinalDeadline(today)) {
		dates = append(dates, today)
	}

	for _, date := range dates {
		if err := a.markAbsentForDate(ctx, date); err != nil {
			return err
		}
	}

	return nil
}

func (a *AttendanceServiceImpl) markAbsentForDate(ctx context.Context, date time.Time) error {
	employees, err := a.rosterRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list roster: %w", err)
	}

	punches, err := a.punchRepo.ListByDate(ctx, date)
	if err != nil {
		return fmt.Errorf("failed to list punches: %w", err)
	}
	punched := make(map[string]bool)
	for _, p := range punches {
		punched[p.EmployeeID] = true
	}

	onLeave, err := a.leaveSvc.OnLeaveSet(ctx, date)
	if err != nil {
		return fmt.Errorf("failed to load leave set: %w", err)
	}

	marked, err := a.punchRepo.ListAbsenceMarks(ctx, date)
	if err != nil {
		return fmt.Errorf("failed to load absence marks: %w", err)
	}

	var markedCount int
	for _, emp := range employees {
		if punched[emp.ID] || onLeave[emp.ID] || marked[emp.ID] {
			continue
		}

		err := a.punchRepo.MarkAbsent(ctx, attendance.AbsenceMark{
			EmployeeID: emp.ID,
			Date:       date,
			Reason:     "no punches recorded",
		})
		if err != nil {
			slog.Error("absence sweep: failed to mark absent", "employee_id", emp.ID, "error", err)
			continue
		}
		markedCount++

		a.notifier.QueueAlert(ctx, notification.CreateAlertRequest{
			EmployeeID: emp.ID,
			Type:       notification.TypeMarkedAbsent,
			Date:       date,
			Title:      "Marked absent",
			Message:    fmt.Sprintf("You were marked absent for %s.", date.Format("2006-01-02")),
		})
	}

	if markedCount > 0 {
		slog.Info("absence sweep completed", "date", date.Format("2006-01-02"), "marked", markedCount)
	}

	return nil
}
