package attendance

import (
	"sort"
	"time"

	"github.com/pulsehr/attendance-backend-go/internal/domain/attendance"
)

// DayContext carries the non-ledger inputs classification needs: whose day it
// is, external leave info, whether the midnight sweep marked the day absent,
// and the reference instant the read happens at.
type DayContext struct {
	EmployeeID   string
	Date         time.Time // midnight, local
	OnLeave      bool
	MarkedAbsent bool
	Now          time.Time
}

// Classify derives the full AttendanceDay view from one day's punch sequence
// and the window policy. It is pure: same inputs, same output, and the input
// slice is never mutated.
func Classify(punches []attendance.PunchEvent, policy attendance.WindowPolicy, day DayContext) attendance.AttendanceDay {
	events := make([]attendance.PunchEvent, len(punches))
	copy(events, punches)
	// the ledger already orders events, but classification must not depend on
	// insertion order
	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	result := attendance.AttendanceDay{
		EmployeeID: day.EmployeeID,
		Date:       day.Date,
		Punches:    events,
	}

	var (
		firstIn *time.Time
		lastOut *time.Time
		openIn  *time.Time
		worked  time.Duration
	)

	// greedy chronological pairing: each in pairs with the next out; a
	// trailing open in contributes zero hours
	for i := range events {
		ts := events[i].Timestamp
		switch events[i].Type {
		case attendance.PunchIn:
			if firstIn == nil {
				firstIn = &ts
			}
			openIn = &ts
		case attendance.PunchOut:
			if openIn != nil {
				worked += ts.Sub(*openIn)
				openIn = nil
			}
			lastOut = &ts
		}
	}

	result.FirstPunchIn = firstIn
	result.LastPunchOut = lastOut
	result.TotalWorkingHours = worked.Hours()
	if over := result.TotalWorkingHours - policy.RequiredDailyHours; over > 0 {
		result.OvertimeHours = over
	}

	if len(events) == 0 {
		result.CanPunchIn = true
		result.Status = emptyDayStatus(day)
		return result
	}

	last := events[len(events)-1]
	result.CanPunchIn = last.Type == attendance.PunchOut
	result.CanPunchOut = last.Type == attendance.PunchIn

	// warning flags surface only while the triggering punch is the active
	// state: a late-entry warning shows until the employee punches out, an
	// early-exit warning while that out is the day's latest punch
	firstInLate := firstIn != nil && policy.LateEntryWindow.Contains(*firstIn)
	result.IsLateEntry = firstInLate && last.Type == attendance.PunchIn
	result.IsEarlyExit = last.Type == attendance.PunchOut && policy.EarlyExitWindow.Contains(last.Timestamp)

	result.Status = deriveStatus(result, policy, firstInLate, openIn, worked, day)
	return result
}

// emptyDayStatus classifies a day with no punches at all. Leave wins, then an
// explicit absence mark; otherwise a past date is Absent and the current date
// is simply not marked yet.
func emptyDayStatus(day DayContext) attendance.DayStatus {
	switch {
	case day.OnLeave:
		return attendance.StatusOnLeave
	case day.MarkedAbsent:
		return attendance.StatusAbsent
	case day.Date.Before(startOfDay(day.Now)):
		return attendance.StatusAbsent
	default:
		return attendance.StatusNotMarked
	}
}

// deriveStatus applies the status precedence: open day with projected
// shortfall, then closed-day complete/short, then the entry/exit warnings,
// then plain present.
func deriveStatus(
	result attendance.AttendanceDay,
	policy attendance.WindowPolicy,
	firstInLate bool,
	openIn *time.Time,
	worked time.Duration,
	day DayContext,
) attendance.DayStatus {
	if openIn != nil {
		// projection: hours banked so far plus everything the employee could
		// still work until the final punch-out deadline
		deadline := policy.FinalDeadline(day.Date)
		projected := worked.Hours() + deadline.Sub(*openIn).Hours()
		if projected < policy.RequiredDailyHours {
			return attendance.StatusRunningOutOfTime
		}
	} else {
		if result.TotalWorkingHours >= policy.RequiredDailyHours {
			return attendance.StatusComplete
		}
		return attendance.StatusShortHours
	}

	if firstInLate {
		return attendance.StatusLateEntry
	}
	return attendance.StatusPresent
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
