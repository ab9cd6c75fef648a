package monitor_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/tick/internal/attendance"
	"github.com/Tiliavir/tick/internal/cron"
	"github.com/Tiliavir/tick/internal/model"
	"github.com/Tiliavir/tick/internal/monitor"
	"github.com/Tiliavir/tick/internal/storage"
)

func setup(t *testing.T, now time.Time) (*monitor.Monitor, storage.Store, *bytes.Buffer) {
	t.Helper()
	store := storage.NewFileStore(t.TempDir())
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	m := monitor.New(store, attendance.NewClassifier(time.UTC), logger, monitor.WithClock(func() time.Time { return now }))
	return m, store, &logs
}

func add(t *testing.T, store storage.Store, emp string, kind model.PunchKind, clock string) {
	t.Helper()
	_, err := store.AppendPunch(context.Background(), model.Punch{
		EmployeeID: emp, Kind: kind, Date: "2024-01-15", Time: clock,
	})
	require.NoError(t, err)
}

func TestRefresh(t *testing.T) {
	now := time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC)
	m, store, logs := setup(t, now)
	ctx := context.Background()

	assert.Empty(t, m.Snapshot().Date)

	require.NoError(t, store.SaveRoster(ctx, []model.Employee{{ID: "E1", Name: "Ada"}}))
	add(t, store, "E1", model.ClockIn, "09:30")
	add(t, store, "E2", model.ClockIn, "08:00")

	snap, err := m.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", snap.Date)
	// E1: missing clock-out (high) + late arrival (low); E2: missing clock-out.
	require.Len(t, snap.Open, 3)
	assert.Equal(t, attendance.High, snap.Open[0].Severity)
	assert.Equal(t, attendance.Low, snap.Open[2].Severity)
	assert.Equal(t, "Ada", snap.Open[2].EmployeeName)
	assert.Len(t, snap.New, 3)
	assert.Len(t, snap.OpenClockIns, 2)
	assert.Contains(t, logs.String(), "new finding")
	assert.Contains(t, logs.String(), "employee_id=E2")

	// A second refresh reports nothing new; acknowledged findings drop out.
	late := attendance.FindingKey(attendance.LateArrival, "E1", "2024-01-15", time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC))
	require.NoError(t, store.Acknowledge(ctx, model.Acknowledgement{Key: late, AcknowledgedAt: now}))

	snap, err = m.Refresh(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.New)
	assert.Len(t, snap.Open, 2)
	assert.Equal(t, 1, snap.Acknowledged)
	assert.Equal(t, snap.Open, m.Snapshot().Open)
}

func TestRefreshEmptyDay(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	m, _, logs := setup(t, now)

	snap, err := m.Refresh(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Open)
	assert.NotNil(t, snap.New)
	assert.Contains(t, logs.String(), "findings refreshed")
}

func TestRegisterJobs(t *testing.T) {
	now := time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC)
	m, store, _ := setup(t, now)
	add(t, store, "E1", model.ClockIn, "08:00")

	s := cron.NewScheduler(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	m.RegisterJobs(s, time.Hour)
	s.Start(context.Background())
	defer s.Stop()

	assert.Eventually(t, func() bool { return len(m.Snapshot().Open) == 1 }, 2*time.Second, 5*time.Millisecond)
}
