package attendance

import (
	"time"
)

type PunchType string

const (
	PunchIn  PunchType = "in"
	PunchOut PunchType = "out"
)

// ParsePunchType maps a request string to a known PunchType.
func ParsePunchType(s string) (PunchType, bool) {
	switch PunchType(s) {
	case PunchIn, PunchOut:
		return PunchType(s), true
	}
	return "", false
}

// PunchEvent is a single immutable ledger entry. Within one employee-day
// events are strictly increasing in timestamp and strictly alternate in/out.
type PunchEvent struct {
	ID           string
	EmployeeID   string
	Timestamp    time.Time
	Type         PunchType
	Latitude     float64
	Longitude    float64
	LocationName *string
	CreatedAt    time.Time
}

type DayStatus string

const (
	StatusPresent          DayStatus = "present"
	StatusAbsent           DayStatus = "absent"
	StatusOnLeave          DayStatus = "on_leave"
	StatusNotMarked        DayStatus = "not_marked"
	StatusRunningOutOfTime DayStatus = "running_out_of_time"
	StatusComplete         DayStatus = "complete"
	StatusShortHours       DayStatus = "short_hours"
	StatusLateEntry        DayStatus = "late_entry"
	StatusEarlyExit        DayStatus = "early_exit"
)

// AttendanceDay is a pure view over one employee-day's punch sequence. It is
// recomputed on every read and never stored; the ledger is the only system of
// record.
type AttendanceDay struct {
	EmployeeID        string
	Date              time.Time
	Punches           []PunchEvent
	FirstPunchIn      *time.Time
	LastPunchOut      *time.Time
	TotalWorkingHours float64
	OvertimeHours     float64
	IsLateEntry       bool
	IsEarlyExit       bool
	Status            DayStatus
	CanPunchIn        bool
	CanPunchOut       bool
}

// AbsenceMark records that an employee was marked absent for a date by the
// midnight sweep. It exists so a snapshot can tell Absent apart from
// NotMarked on the current date.
type AbsenceMark struct {
	ID         string
	EmployeeID string
	Date       time.Time
	Reason     string
	CreatedAt  time.Time
}
