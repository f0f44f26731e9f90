package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/pulsehr/attendance-backend-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPunch(t *testing.T, f *fixture, employeeID string, ts time.Time, punchType attendance.PunchType) {
	t.Helper()
	_, err := f.punches.Append(context.Background(), attendance.PunchEvent{
		ID:         employeeID + "-" + ts.Format("20060102150405"),
		EmployeeID: employeeID,
		Timestamp:  ts,
		Type:       punchType,
	})
	require.NoError(t, err)
}

// ---- daily snapshot ----

func TestGetDailySnapshot_CountsPartitionTheRoster(t *testing.T) {
	f := newFixture(t, "emp-1", "emp-2", "emp-3", "emp-4")
	f.clk.Set(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

	seedPunch(t, f, "emp-1", time.Date(2025, 3, 10, 10, 5, 0, 0, time.UTC), attendance.PunchIn)
	f.leave.grant("emp-2", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, f.punches.MarkAbsent(context.Background(), attendance.AbsenceMark{
		EmployeeID: "emp-3",
		Date:       time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}))
	// emp-4 has nothing on the current date

	snap, err := f.svc.GetDailySnapshot(context.Background(), asManager("emp-1"), attendance.DailySnapshotRequest{Date: "2025-03-10"})
	require.NoError(t, err)

	assert.Equal(t, 4, snap.TotalEmployees)
	assert.Equal(t, 1, snap.Present)
	assert.Equal(t, 1, snap.OnLeave)
	assert.Equal(t, 1, snap.Absent)
	assert.Equal(t, 1, snap.NotMarked)
	assert.Equal(t, snap.TotalEmployees, snap.Present+snap.Absent+snap.OnLeave+snap.NotMarked,
		"the four buckets must partition the roster")
	assert.InDelta(t, 25.0, snap.AttendancePercent, 1e-9)
	assert.Len(t, snap.Entries, 4)
}

func TestGetDailySnapshot_CountsHistoricFlags(t *testing.T) {
	f := newFixture(t, "emp-1")
	f.clk.Set(time.Date(2025, 3, 11, 12, 0, 0, 0, time.UTC))

	// a finished late day: the live warning flag is gone, the count is not
	seedPunch(t, f, "emp-1", time.Date(2025, 3, 10, 10, 20, 0, 0, time.UTC), attendance.PunchIn)
	seedPunch(t, f, "emp-1", time.Date(2025, 3, 10, 18, 55, 0, 0, time.UTC), attendance.PunchOut)

	snap, err := f.svc.GetDailySnapshot(context.Background(), asManager("emp-1"), attendance.DailySnapshotRequest{Date: "2025-03-10"})
	require.NoError(t, err)

	assert.Equal(t, 1, snap.LateEntryCount)
	assert.Equal(t, 1, snap.EarlyExitCount)
	require.Len(t, snap.Entries, 1)
	assert.True(t, snap.Entries[0].IsLateEntry)
	assert.True(t, snap.Entries[0].IsEarlyExit)
}

func TestGetDailySnapshot_RequiresRosterVisibility(t *testing.T) {
	f := newFixture(t, "emp-1")

	_, err := f.svc.GetDailySnapshot(context.Background(), asEmployee("emp-1"), attendance.DailySnapshotRequest{Date: "2025-03-10"})
	assert.ErrorIs(t, err, attendance.ErrUnauthorized)
}

func TestGetDailySnapshot_InvalidDate(t *testing.T) {
	f := newFixture(t, "emp-1")

	_, err := f.svc.GetDailySnapshot(context.Background(), asManager("emp-1"), attendance.DailySnapshotRequest{Date: "10-03-2025"})
	assert.Error(t, err)
}

// ---- monthly report ----

func TestGetMonthlyReport_CalendarAndStats(t *testing.T) {
	f := newFixture(t, "emp-1")
	f.clk.Set(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC))

	// Mar 10: a full on-time day
	seedPunch(t, f, "emp-1", time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC), attendance.PunchIn)
	seedPunch(t, f, "emp-1", time.Date(2025, 3, 10, 19, 4, 0, 0, time.UTC), attendance.PunchOut)
	// Mar 11: late in, short day
	seedPunch(t, f, "emp-1", time.Date(2025, 3, 11, 10, 20, 0, 0, time.UTC), attendance.PunchIn)
	seedPunch(t, f, "emp-1", time.Date(2025, 3, 11, 18, 40, 0, 0, time.UTC), attendance.PunchOut)
	// Mar 12: approved leave, Mar 13: marked absent
	f.leave.grant("emp-1", time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC))
	require.NoError(t, f.punches.MarkAbsent(context.Background(), attendance.AbsenceMark{
		EmployeeID: "emp-1",
		Date:       time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC),
	}))

	report, err := f.svc.GetMonthlyReport(context.Background(), asEmployee("emp-1"), attendance.MonthlyReportRequest{
		EmployeeID: "emp-1", Month: 3, Year: 2025,
	})
	require.NoError(t, err)

	require.Len(t, report.Calendar, 31)
	assert.Equal(t, string(attendance.StatusComplete), report.Calendar[9].Status)
	assert.Equal(t, string(attendance.StatusShortHours), report.Calendar[10].Status)
	assert.Equal(t, string(attendance.StatusOnLeave), report.Calendar[11].Status)
	assert.Equal(t, string(attendance.StatusAbsent), report.Calendar[12].Status)
	assert.Equal(t, string(attendance.StatusAbsent), report.Calendar[0].Status, "past unmarked day")
	assert.Equal(t, string(attendance.StatusNotMarked), report.Calendar[13].Status, "current date")
	assert.Equal(t, string(attendance.StatusNotMarked), report.Calendar[30].Status, "future date")

	assert.Equal(t, 2, report.Stats.PresentDays)
	assert.Equal(t, 1, report.Stats.OnLeaveDays)
	// nine unmarked past days plus the explicit Mar 13 mark
	assert.Equal(t, 10, report.Stats.AbsentDays)
	assert.Equal(t, 18, report.Stats.NotMarkedDays)
	assert.Equal(t, 1, report.Stats.LateEntryCount)
	assert.Equal(t, 0, report.Stats.EarlyExitCount)
	assert.InDelta(t, 17.4, report.Stats.TotalWorkingHours, 0.01)
	assert.InDelta(t, 8.7, report.Stats.AverageWorkingHours, 0.01)
	assert.InDelta(t, 6.5, report.Stats.AttendancePercent, 1e-9)
}

func TestGetMonthlyReport_LeapFebruary(t *testing.T) {
	f := newFixture(t, "emp-1")
	f.clk.Set(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC))

	leap, err := f.svc.GetMonthlyReport(context.Background(), asEmployee("emp-1"), attendance.MonthlyReportRequest{
		EmployeeID: "emp-1", Month: 2, Year: 2024,
	})
	require.NoError(t, err)
	assert.Len(t, leap.Calendar, 29)

	plain, err := f.svc.GetMonthlyReport(context.Background(), asEmployee("emp-1"), attendance.MonthlyReportRequest{
		EmployeeID: "emp-1", Month: 2, Year: 2025,
	})
	require.NoError(t, err)
	assert.Len(t, plain.Calendar, 28)
}

func TestGetMonthlyReport_December(t *testing.T) {
	f := newFixture(t, "emp-1")
	f.clk.Set(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC))

	report, err := f.svc.GetMonthlyReport(context.Background(), asEmployee("emp-1"), attendance.MonthlyReportRequest{
		EmployeeID: "emp-1", Month: 12, Year: 2024,
	})
	require.NoError(t, err)
	require.Len(t, report.Calendar, 31)
	assert.Equal(t, "2024-12-31", report.Calendar[30].Date)
}

func TestGetMonthlyReport_ScopeDeniesOtherEmployees(t *testing.T) {
	f := newFixture(t, "emp-1", "emp-2")

	_, err := f.svc.GetMonthlyReport(context.Background(), asEmployee("emp-1"), attendance.MonthlyReportRequest{
		EmployeeID: "emp-2", Month: 3, Year: 2025,
	})
	assert.ErrorIs(t, err, attendance.ErrUnauthorized)

	// managers read anyone
	_, err = f.svc.GetMonthlyReport(context.Background(), asManager("emp-1"), attendance.MonthlyReportRequest{
		EmployeeID: "emp-2", Month: 3, Year: 2025,
	})
	assert.NoError(t, err)
}

func TestGetMonthlyReport_UnknownEmployee(t *testing.T) {
	f := newFixture(t, "emp-1")

	_, err := f.svc.GetMonthlyReport(context.Background(), asManager("emp-1"), attendance.MonthlyReportRequest{
		EmployeeID: "ghost", Month: 3, Year: 2025,
	})
	assert.ErrorIs(t, err, attendance.ErrEmployeeNotFound)
}

// ---- payroll summary ----

func TestGetAttendanceSummary(t *testing.T) {
	f := newFixture(t, "emp-1")
	f.clk.Set(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC))

	seedPunch(t, f, "emp-1", time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC), attendance.PunchIn)
	seedPunch(t, f, "emp-1", time.Date(2025, 3, 10, 19, 0, 0, 0, time.UTC), attendance.PunchOut)
	f.leave.grant("emp-1", time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC))

	summary, err := f.svc.GetAttendanceSummary(context.Background(), asEmployee("emp-1"), attendance.MonthlyReportRequest{
		EmployeeID: "emp-1", Month: 3, Year: 2025,
	})
	require.NoError(t, err)

	assert.Equal(t, "emp-1", summary.EmployeeID)
	// days 1-9 and 11 and 13 are unmarked past days; leave on the 12th stays paid
	assert.Equal(t, 11, summary.UnpaidLeaveDays)
	assert.InDelta(t, 9.0, summary.TotalWorkingHours, 1e-9)
}
