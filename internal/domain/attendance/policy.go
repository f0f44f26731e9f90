package attendance

import (
	"fmt"
	"strings"
	"time"
)

// Window is a half-open [Start, End) time-of-day interval, expressed as
// offsets from local midnight. Half-open bounds keep boundary instants from
// being counted by two adjacent windows.
type Window struct {
	Start time.Duration
	End   time.Duration
}

// Contains reports whether t's local time of day falls in [Start, End).
func (w Window) Contains(t time.Time) bool {
	d := timeOfDay(t)
	return d >= w.Start && d < w.End
}

func timeOfDay(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second
}

// ParseWindow parses "HH:MM-HH:MM" into a Window.
func ParseWindow(s string) (Window, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return Window{}, fmt.Errorf("invalid window %q: want HH:MM-HH:MM", s)
	}
	start, err := parseClockTime(parts[0])
	if err != nil {
		return Window{}, fmt.Errorf("invalid window start %q: %w", parts[0], err)
	}
	end, err := parseClockTime(parts[1])
	if err != nil {
		return Window{}, fmt.Errorf("invalid window end %q: %w", parts[1], err)
	}
	if end <= start {
		return Window{}, fmt.Errorf("invalid window %q: end must be after start", s)
	}
	return Window{Start: start, End: end}, nil
}

func parseClockTime(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// PunchClass is the policy verdict for a punch instant.
type PunchClass int

const (
	PunchOnTime PunchClass = iota
	PunchLateFlagged
	PunchEarlyFlagged
	PunchRejected
)

// WindowPolicy holds the process-wide time-window rules. It is read-only at
// runtime; all call sites go through these named windows so a policy change
// stays localized.
type WindowPolicy struct {
	FirstPunchInWindow  Window
	LateEntryWindow     Window
	FinalPunchOutWindow Window
	EarlyExitWindow     Window
	RequiredDailyHours  float64
	// DedupInterval suppresses replayed punches with the same employee, type
	// and minute-rounded timestamp.
	DedupInterval time.Duration
}

// Default policy values.
const (
	defaultFirstInStart  = 10 * time.Hour
	defaultFirstInEnd    = 10*time.Hour + 15*time.Minute
	defaultLateStart     = 10*time.Hour + 15*time.Minute
	defaultLateEnd       = 10*time.Hour + 35*time.Minute
	defaultFinalOutStart = 18*time.Hour + 55*time.Minute
	defaultFinalOutEnd   = 19*time.Hour + 5*time.Minute
	defaultEarlyStart    = 18*time.Hour + 50*time.Minute
	defaultEarlyEnd      = 19 * time.Hour

	DefaultRequiredDailyHours = 9.0
	DefaultDedupInterval      = 5 * time.Second
)

// DefaultWindowPolicy returns the standard office windows.
func DefaultWindowPolicy() WindowPolicy {
	return WindowPolicy{
		FirstPunchInWindow:  Window{Start: defaultFirstInStart, End: defaultFirstInEnd},
		LateEntryWindow:     Window{Start: defaultLateStart, End: defaultLateEnd},
		FinalPunchOutWindow: Window{Start: defaultFinalOutStart, End: defaultFinalOutEnd},
		EarlyExitWindow:     Window{Start: defaultEarlyStart, End: defaultEarlyEnd},
		RequiredDailyHours:  DefaultRequiredDailyHours,
		DedupInterval:       DefaultDedupInterval,
	}
}

// ClassifyPunchInTime classifies a punch-in instant. firstOfDay selects the
// strict rule for the day's opening punch: before the first-in window or at/
// after the late window end the punch is rejected outright. Re-entries later
// in the day (back from a break) are accepted until the day closes.
func (p WindowPolicy) ClassifyPunchInTime(t time.Time, firstOfDay bool) PunchClass {
	if !firstOfDay {
		if timeOfDay(t) >= p.FinalPunchOutWindow.End {
			return PunchRejected
		}
		return PunchOnTime
	}
	switch {
	case p.FirstPunchInWindow.Contains(t):
		return PunchOnTime
	case p.LateEntryWindow.Contains(t):
		return PunchLateFlagged
	default:
		return PunchRejected
	}
}

// ClassifyPunchOutTime classifies a punch-out instant. Mid-day outs are
// always allowed; inside the early-exit window the punch is flagged; at or
// past the final window end the day is closed and the punch is rejected.
func (p WindowPolicy) ClassifyPunchOutTime(t time.Time) PunchClass {
	if timeOfDay(t) >= p.FinalPunchOutWindow.End {
		return PunchRejected
	}
	if p.EarlyExitWindow.Contains(t) {
		return PunchEarlyFlagged
	}
	return PunchOnTime
}

// RequiredHoursRemaining returns how many hours are still owed against the
// daily requirement, never negative.
func (p WindowPolicy) RequiredHoursRemaining(workedHours float64) float64 {
	remaining := p.RequiredDailyHours - workedHours
	if remaining < 0 {
		return 0
	}
	return remaining
}

// FinalDeadline is the last instant of the punch-out window on date's day, in
// date's location. Shortfall projection measures against this.
func (p WindowPolicy) FinalDeadline(date time.Time) time.Time {
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return midnight.Add(p.FinalPunchOutWindow.End)
}
