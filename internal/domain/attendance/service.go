package attendance

import (
	"context"

	"github.com/pulsehr/attendance-backend-go/internal/domain/scope"
)

// AttendanceService defines business logic for attendance operations. Every
// method takes the resolved caller scope; writes are only ever allowed on the
// caller's own employee id.
type AttendanceService interface {
	// RecordPunch validates timing and sequence, appends to the ledger and
	// returns the recomputed day
	RecordPunch(ctx context.Context, caller scope.Caller, req RecordPunchRequest) (AttendanceDayResponse, error)

	// GetToday returns the caller's attendance day for the current date
	GetToday(ctx context.Context, caller scope.Caller) (AttendanceDayResponse, error)

	// GetDailySnapshot aggregates one date across the employee roster
	GetDailySnapshot(ctx context.Context, caller scope.Caller, req DailySnapshotRequest) (DailySnapshotResponse, error)

	// GetMonthlyReport builds the per-day calendar and monthly stats for one
	// employee
	GetMonthlyReport(ctx context.Context, caller scope.Caller, req MonthlyReportRequest) (MonthlyReportResponse, error)

	// GetAttendanceSummary is the payroll view for one employee-month
	GetAttendanceSummary(ctx context.Context, caller scope.Caller, req MonthlyReportRequest) (AttendanceSummaryResponse, error)
}
