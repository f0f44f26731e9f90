package attendance

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/pulsehr/attendance-backend-go/internal/domain/attendance"
	"github.com/pulsehr/attendance-backend-go/internal/domain/employee"
	"github.com/pulsehr/attendance-backend-go/internal/domain/notification"
	"github.com/pulsehr/attendance-backend-go/internal/domain/scope"
	"github.com/pulsehr/attendance-backend-go/internal/domain/user"
	"github.com/pulsehr/attendance-backend-go/internal/pkg/clock"
	"github.com/pulsehr/attendance-backend-go/internal/pkg/geocode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- in-memory fakes ----

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

type memPunchRepo struct {
	mu     sync.Mutex
	events []attendance.PunchEvent
	marks  map[string]map[string]bool // dateKey -> employeeID
}

func newMemPunchRepo() *memPunchRepo {
	return &memPunchRepo{marks: make(map[string]map[string]bool)}
}

func (m *memPunchRepo) Append(_ context.Context, event attendance.PunchEvent) (attendance.PunchEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return event, nil
}

func (m *memPunchRepo) ListByEmployeeAndDate(_ context.Context, employeeID string, date time.Time) ([]attendance.PunchEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.PunchEvent
	for _, e := range m.events {
		if e.EmployeeID == employeeID && dateKey(e.Timestamp) == dateKey(date) {
			out = append(out, e)
		}
	}
	sortPunches(out)
	return out, nil
}

func (m *memPunchRepo) ListByEmployeeAndRange(_ context.Context, employeeID string, from, to time.Time) ([]attendance.PunchEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fromKey, toKey := dateKey(from), dateKey(to)
	var out []attendance.PunchEvent
	for _, e := range m.events {
		key := dateKey(e.Timestamp)
		if e.EmployeeID == employeeID && key >= fromKey && key <= toKey {
			out = append(out, e)
		}
	}
	sortPunches(out)
	return out, nil
}

func (m *memPunchRepo) ListByDate(_ context.Context, date time.Time) ([]attendance.PunchEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.PunchEvent
	for _, e := range m.events {
		if dateKey(e.Timestamp) == dateKey(date) {
			out = append(out, e)
		}
	}
	sortPunches(out)
	return out, nil
}

func (m *memPunchRepo) LastByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.PunchEvent, error) {
	punches, _ := m.ListByEmployeeAndDate(ctx, employeeID, date)
	if len(punches) == 0 {
		return nil, nil
	}
	last := punches[len(punches)-1]
	return &last, nil
}

func (m *memPunchRepo) MarkAbsent(_ context.Context, mark attendance.AbsenceMark) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := dateKey(mark.Date)
	if m.marks[key] == nil {
		m.marks[key] = make(map[string]bool)
	}
	m.marks[key][mark.EmployeeID] = true
	return nil
}

func (m *memPunchRepo) ListAbsenceMarks(_ context.Context, date time.Time) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]bool)
	for id := range m.marks[dateKey(date)] {
		out[id] = true
	}
	return out, nil
}

func (m *memPunchRepo) HasAbsenceMark(_ context.Context, employeeID string, date time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.marks[dateKey(date)][employeeID], nil
}

func (m *memPunchRepo) AbsenceMarksInRange(_ context.Context, employeeID string, from, to time.Time) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fromKey, toKey := dateKey(from), dateKey(to)
	out := make(map[string]bool)
	for key, emps := range m.marks {
		if key >= fromKey && key <= toKey && emps[employeeID] {
			out[key] = true
		}
	}
	return out, nil
}

func (m *memPunchRepo) ListOpenDays(ctx context.Context, date time.Time) ([]string, error) {
	punches, _ := m.ListByDate(ctx, date)
	latest := make(map[string]attendance.PunchType)
	for _, e := range punches {
		latest[e.EmployeeID] = e.Type
	}
	var out []string
	for id, punchType := range latest {
		if punchType == attendance.PunchIn {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}

func sortPunches(events []attendance.PunchEvent) {
	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
}

type memRoster struct {
	employees map[string]employee.Employee
}

func newMemRoster(ids ...string) *memRoster {
	m := &memRoster{employees: make(map[string]employee.Employee)}
	for _, id := range ids {
		m.employees[id] = employee.Employee{ID: id, FullName: "Employee " + id, IsActive: true}
	}
	return m
}

func (m *memRoster) GetByID(_ context.Context, id string) (employee.Employee, error) {
	e, ok := m.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (m *memRoster) ListActive(_ context.Context) ([]employee.Employee, error) {
	ids := make([]string, 0, len(m.employees))
	for id := range m.employees {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]employee.Employee, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.employees[id])
	}
	return out, nil
}

type memLeave struct {
	days map[string]bool // employeeID|dateKey
}

func newMemLeave() *memLeave {
	return &memLeave{days: make(map[string]bool)}
}

func (m *memLeave) grant(employeeID string, date time.Time) {
	m.days[employeeID+"|"+dateKey(date)] = true
}

func (m *memLeave) IsOnLeave(_ context.Context, employeeID string, date time.Time) (bool, error) {
	return m.days[employeeID+"|"+dateKey(date)], nil
}

func (m *memLeave) OnLeaveSet(_ context.Context, date time.Time) (map[string]bool, error) {
	out := make(map[string]bool)
	suffix := "|" + dateKey(date)
	for key := range m.days {
		if len(key) > len(suffix) && key[len(key)-len(suffix):] == suffix {
			out[key[:len(key)-len(suffix)]] = true
		}
	}
	return out, nil
}

func (m *memLeave) LeaveDaysInRange(_ context.Context, employeeID string, from, to time.Time) (map[string]bool, error) {
	out := make(map[string]bool)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if m.days[employeeID+"|"+dateKey(d)] {
			out[dateKey(d)] = true
		}
	}
	return out, nil
}

type memNotifier struct {
	mu     sync.Mutex
	queued []notification.CreateAlertRequest
	resets []string
}

func (m *memNotifier) QueueAlert(_ context.Context, req notification.CreateAlertRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued = append(m.queued, req)
}

func (m *memNotifier) ResetTrigger(employeeID string, date string, alertType notification.AlertType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets = append(m.resets, employeeID+"|"+date+"|"+string(alertType))
}

func (m *memNotifier) Subscribe(string) (<-chan notification.AlertResponse, func()) {
	ch := make(chan notification.AlertResponse)
	return ch, func() {}
}

func (m *memNotifier) Stop() {}

func (m *memNotifier) typesQueued() []notification.AlertType {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]notification.AlertType, 0, len(m.queued))
	for _, req := range m.queued {
		types = append(types, req.Type)
	}
	return types
}

// ---- fixture ----

type fixture struct {
	svc      *AttendanceServiceImpl
	punches  *memPunchRepo
	roster   *memRoster
	leave    *memLeave
	notifier *memNotifier
	clk      *clock.Fixed
}

func newFixture(t *testing.T, employeeIDs ...string) *fixture {
	t.Helper()
	f := &fixture{
		punches:  newMemPunchRepo(),
		roster:   newMemRoster(employeeIDs...),
		leave:    newMemLeave(),
		notifier: &memNotifier{},
		clk:      &clock.Fixed{T: time.Date(2025, 3, 10, 10, 5, 0, 0, time.UTC)},
	}
	f.svc = NewAttendanceService(
		f.punches,
		f.roster,
		f.leave,
		f.notifier,
		geocode.Noop{},
		attendance.DefaultWindowPolicy(),
		f.clk,
	)
	return f
}

func asEmployee(id string) scope.Caller {
	return scope.Caller{UserID: "u-" + id, EmployeeID: id, Role: user.RoleEmployee}
}

func asManager(id string) scope.Caller {
	return scope.Caller{UserID: "u-" + id, EmployeeID: id, Role: user.RoleManager}
}

func punchReq(employeeID, punchType string) attendance.RecordPunchRequest {
	lat, lon := -6.2, 106.81
	return attendance.RecordPunchRequest{
		EmployeeID: employeeID,
		Type:       punchType,
		Latitude:   &lat,
		Longitude:  &lon,
	}
}

// ---- RecordPunch ----

func TestRecordPunch_OnTime(t *testing.T) {
	f := newFixture(t, "emp-1")

	day, err := f.svc.RecordPunch(context.Background(), asEmployee("emp-1"), punchReq("emp-1", "in"))
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StatusPresent), day.Status)
	assert.Len(t, day.Punches, 1)
	assert.True(t, day.CanPunchOut)
	assert.False(t, day.CanPunchIn)
	require.NotNil(t, day.FirstPunchIn)
}

func TestRecordPunch_RejectedBeforeWindow(t *testing.T) {
	f := newFixture(t, "emp-1")
	f.clk.Set(time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC))

	_, err := f.svc.RecordPunch(context.Background(), asEmployee("emp-1"), punchReq("emp-1", "in"))
	assert.ErrorIs(t, err, attendance.ErrOutsideAllowedWindow)
}

func TestRecordPunch_RejectedBetweenLateWindowAndClose(t *testing.T) {
	f := newFixture(t, "emp-1")
	f.clk.Set(time.Date(2025, 3, 10, 10, 40, 0, 0, time.UTC))

	_, err := f.svc.RecordPunch(context.Background(), asEmployee("emp-1"), punchReq("emp-1", "in"))
	assert.ErrorIs(t, err, attendance.ErrOutsideAllowedWindow)
}

func TestRecordPunch_LateEntryFlaggedAndAlerted(t *testing.T) {
	f := newFixture(t, "emp-1")
	f.clk.Set(time.Date(2025, 3, 10, 10, 20, 0, 0, time.UTC))

	day, err := f.svc.RecordPunch(context.Background(), asEmployee("emp-1"), punchReq("emp-1", "in"))
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StatusRunningOutOfTime), day.Status)
	assert.True(t, day.IsLateEntry)
	assert.Contains(t, f.notifier.typesQueued(), notification.TypeLateEntry)
	assert.Contains(t, f.notifier.typesQueued(), notification.TypeRunningOutOfTime)
}

func TestRecordPunch_OutWithoutInIsRejected(t *testing.T) {
	f := newFixture(t, "emp-1")
	f.clk.Set(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

	_, err := f.svc.RecordPunch(context.Background(), asEmployee("emp-1"), punchReq("emp-1", "out"))
	assert.ErrorIs(t, err, attendance.ErrInvalidPunchSequence)
}

func TestRecordPunch_DoubleInIsRejected(t *testing.T) {
	f := newFixture(t, "emp-1")

	_, err := f.svc.RecordPunch(context.Background(), asEmployee("emp-1"), punchReq("emp-1", "in"))
	require.NoError(t, err)

	f.clk.Set(time.Date(2025, 3, 10, 10, 10, 0, 0, time.UTC))
	_, err = f.svc.RecordPunch(context.Background(), asEmployee("emp-1"), punchReq("emp-1", "in"))
	assert.ErrorIs(t, err, attendance.ErrInvalidPunchSequence)
}

func TestRecordPunch_DuplicateReplayIsIdempotent(t *testing.T) {
	f := newFixture(t, "emp-1")

	first, err := f.svc.RecordPunch(context.Background(), asEmployee("emp-1"), punchReq("emp-1", "in"))
	require.NoError(t, err)

	// same punch retried three seconds later, inside the de-dup interval
	f.clk.Set(f.clk.T.Add(3 * time.Second))
	second, err := f.svc.RecordPunch(context.Background(), asEmployee("emp-1"), punchReq("emp-1", "in"))
	require.NoError(t, err)

	assert.Len(t, second.Punches, 1, "replay must not append a second event")
	assert.Equal(t, first.Punches[0].ID, second.Punches[0].ID)
}

func TestRecordPunch_ScopeIsSelfOnly(t *testing.T) {
	f := newFixture(t, "emp-1", "emp-2")

	// even a manager cannot punch for someone else
	_, err := f.svc.RecordPunch(context.Background(), asManager("emp-1"), punchReq("emp-2", "in"))
	assert.ErrorIs(t, err, attendance.ErrUnauthorized)
}

func TestRecordPunch_MissingLocation(t *testing.T) {
	f := newFixture(t, "emp-1")

	req := attendance.RecordPunchRequest{EmployeeID: "emp-1", Type: "in"}
	_, err := f.svc.RecordPunch(context.Background(), asEmployee("emp-1"), req)
	assert.ErrorIs(t, err, attendance.ErrLocationMissing)
}

func TestRecordPunch_UnknownEmployee(t *testing.T) {
	f := newFixture(t, "emp-1")

	_, err := f.svc.RecordPunch(context.Background(), asEmployee("ghost"), punchReq("ghost", "in"))
	assert.ErrorIs(t, err, attendance.ErrEmployeeNotFound)
}

func TestRecordPunch_FullDayFlow(t *testing.T) {
	f := newFixture(t, "emp-1")

	_, err := f.svc.RecordPunch(context.Background(), asEmployee("emp-1"), punchReq("emp-1", "in"))
	require.NoError(t, err)

	f.clk.Set(time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC))
	_, err = f.svc.RecordPunch(context.Background(), asEmployee("emp-1"), punchReq("emp-1", "out"))
	require.NoError(t, err)

	f.clk.Set(time.Date(2025, 3, 10, 13, 30, 0, 0, time.UTC))
	_, err = f.svc.RecordPunch(context.Background(), asEmployee("emp-1"), punchReq("emp-1", "in"))
	require.NoError(t, err)

	f.clk.Set(time.Date(2025, 3, 10, 19, 4, 0, 0, time.UTC))
	day, err := f.svc.RecordPunch(context.Background(), asEmployee("emp-1"), punchReq("emp-1", "out"))
	require.NoError(t, err)

	// 10:05-13:00 plus 13:30-19:04 is 8h29m
	assert.Equal(t, string(attendance.StatusShortHours), day.Status)
	assert.InDelta(t, 8.4833, day.TotalWorkingHours, 0.001)
	assert.Len(t, day.Punches, 4)
}

func TestRecordPunch_OutResetsShortfallTrigger(t *testing.T) {
	f := newFixture(t, "emp-1")
	f.clk.Set(time.Date(2025, 3, 10, 10, 20, 0, 0, time.UTC))

	_, err := f.svc.RecordPunch(context.Background(), asEmployee("emp-1"), punchReq("emp-1", "in"))
	require.NoError(t, err)

	f.clk.Set(time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC))
	_, err = f.svc.RecordPunch(context.Background(), asEmployee("emp-1"), punchReq("emp-1", "out"))
	require.NoError(t, err)

	f.notifier.mu.Lock()
	defer f.notifier.mu.Unlock()
	assert.Contains(t, f.notifier.resets, "emp-1|2025-03-10|running_out_of_time")
}

// ---- GetToday ----

func TestGetToday_EmptyDayIsNotMarked(t *testing.T) {
	f := newFixture(t, "emp-1")

	day, err := f.svc.GetToday(context.Background(), asEmployee("emp-1"))
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StatusNotMarked), day.Status)
	assert.True(t, day.CanPunchIn)
}

func TestGetToday_OnLeave(t *testing.T) {
	f := newFixture(t, "emp-1")
	f.leave.grant("emp-1", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))

	day, err := f.svc.GetToday(context.Background(), asEmployee("emp-1"))
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StatusOnLeave), day.Status)
}

// ---- sweeps ----

func TestSweepMarkAbsent_MarksAndAlerts(t *testing.T) {
	f := newFixture(t, "emp-1", "emp-2", "emp-3")
	f.clk.Set(time.Date(2025, 3, 10, 19, 10, 0, 0, time.UTC))

	// emp-1 punched today, emp-2 is on leave, emp-3 did nothing
	f.punches.Append(context.Background(), attendance.PunchEvent{
		ID: "p1", EmployeeID: "emp-1", Type: attendance.PunchIn,
		Timestamp: time.Date(2025, 3, 10, 10, 5, 0, 0, time.UTC),
	})
	f.leave.grant("emp-2", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))

	require.NoError(t, f.svc.SweepMarkAbsent(context.Background()))

	marked, err := f.punches.ListAbsenceMarks(context.Background(), time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"emp-3": true}, marked)
	assert.Contains(t, f.notifier.typesQueued(), notification.TypeMarkedAbsent)
}

func TestSweepMarkAbsent_IsIdempotent(t *testing.T) {
	f := newFixture(t, "emp-1")
	f.clk.Set(time.Date(2025, 3, 10, 19, 10, 0, 0, time.UTC))

	require.NoError(t, f.svc.SweepMarkAbsent(context.Background()))
	firstPass := len(f.notifier.typesQueued()) // yesterday and the closed today

	require.NoError(t, f.svc.SweepMarkAbsent(context.Background()))

	// the second sweep sees the marks and queues nothing new
	assert.Equal(t, firstPass, len(f.notifier.typesQueued()))
	assert.Equal(t, 2, firstPass)
}

func TestSweepShortfalls_AlertsOpenShortDay(t *testing.T) {
	f := newFixture(t, "emp-1", "emp-2")
	f.clk.Set(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

	// emp-1 in at 10:20 and still on the clock: projected short
	f.punches.Append(context.Background(), attendance.PunchEvent{
		ID: "p1", EmployeeID: "emp-1", Type: attendance.PunchIn,
		Timestamp: time.Date(2025, 3, 10, 10, 20, 0, 0, time.UTC),
	})
	// emp-2 in at 10:00: projection still reaches nine hours
	f.punches.Append(context.Background(), attendance.PunchEvent{
		ID: "p2", EmployeeID: "emp-2", Type: attendance.PunchIn,
		Timestamp: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
	})

	require.NoError(t, f.svc.SweepShortfalls(context.Background()))

	f.notifier.mu.Lock()
	defer f.notifier.mu.Unlock()
	require.Len(t, f.notifier.queued, 1)
	assert.Equal(t, "emp-1", f.notifier.queued[0].EmployeeID)
	assert.Equal(t, notification.TypeRunningOutOfTime, f.notifier.queued[0].Type)
}
