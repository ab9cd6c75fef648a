// Package monitor re-evaluates today's punches on a schedule and keeps the
// latest set of open findings for the API and the watch command.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Tiliavir/tick/internal/attendance"
	"github.com/Tiliavir/tick/internal/cron"
	"github.com/Tiliavir/tick/internal/model"
	"github.com/Tiliavir/tick/internal/roster"
	"github.com/Tiliavir/tick/internal/storage"
	"github.com/Tiliavir/tick/internal/timecalc"
)

// Snapshot is the outcome of one refresh.
type Snapshot struct {
	Date         string                        `json:"date"`
	EvaluatedAt  time.Time                     `json:"evaluated_at"`
	Open         []attendance.AnnotatedFinding `json:"open"`
	Acknowledged int                           `json:"acknowledged"`
	OpenClockIns []attendance.OpenPunch        `json:"open_clock_ins"`
	Diagnostics  []attendance.Diagnostic       `json:"diagnostics"`
	// New holds the keys of findings first seen in this refresh.
	New []string `json:"new"`
}

// Monitor is safe for concurrent use.
type Monitor struct {
	store      storage.Store
	classifier attendance.Classifier
	logger     *slog.Logger
	now        func() time.Time

	mu   sync.RWMutex
	snap Snapshot
	seen map[string]bool
}

// Option customises a Monitor.
type Option func(*Monitor)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// New returns a monitor that has not refreshed yet.
func New(store storage.Store, classifier attendance.Classifier, logger *slog.Logger, opts ...Option) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Monitor{
		store:      store,
		classifier: classifier,
		logger:     logger.With("component", "monitor"),
		now:        time.Now,
		seen:       map[string]bool{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RegisterJobs adds the periodic refresh to s.
func (m *Monitor) RegisterJobs(s *cron.Scheduler, interval time.Duration) {
	s.AddJob("refresh_findings", interval, func(ctx context.Context) error {
		_, err := m.Refresh(ctx)
		return err
	})
}

// Refresh evaluates today's punches against the current wall clock and
// publishes the result. Findings not seen earlier on the same day are logged
// once.
func (m *Monitor) Refresh(ctx context.Context) (Snapshot, error) {
	now := m.now()
	if m.classifier.Location != nil {
		now = now.In(m.classifier.Location)
	}
	day := timecalc.StartOfDay(now)

	punches, err := m.store.LoadDay(ctx, day)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading punches: %w", err)
	}
	acks, err := m.store.Acknowledgements(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading acknowledgements: %w", err)
	}
	employees, err := m.store.LoadRoster(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading roster: %w", err)
	}

	res := m.classifier.Evaluate(punches, now)
	open, acked := attendance.FilterAcknowledged(res.Findings, acks)
	annotated, unknown := attendance.Annotate(attendance.SortBySeverity(open), roster.New(employees), nil)

	snap := Snapshot{
		Date:         day.Format(model.DateLayout),
		EvaluatedAt:  now,
		Open:         annotated,
		Acknowledged: len(acked),
		OpenClockIns: res.OpenClockIns,
		Diagnostics:  res.Diagnostics,
		New:          []string{},
	}

	m.mu.Lock()
	if m.snap.Date != snap.Date {
		m.seen = map[string]bool{}
	}
	for _, f := range annotated {
		if m.seen[f.Key] {
			continue
		}
		m.seen[f.Key] = true
		snap.New = append(snap.New, f.Key)
		m.logger.Warn("new finding",
			"key", f.Key,
			"kind", string(f.Kind),
			"severity", string(f.Severity),
			"employee_id", f.EmployeeID,
			"employee", f.EmployeeName,
			"description", f.Description)
	}
	m.snap = snap
	m.mu.Unlock()

	for _, d := range res.Diagnostics {
		m.logger.Warn("punch excluded", "punch_id", d.PunchID, "employee_id", d.EmployeeID, "field", d.Field, "reason", d.Reason)
	}
	for _, id := range unknown {
		m.logger.Warn("finding for employee missing from roster", "employee_id", id)
	}
	m.logger.Info("findings refreshed", "date", snap.Date, "open", len(snap.Open), "acknowledged", snap.Acknowledged, "new", len(snap.New))
	return snap, nil
}

// Snapshot returns the latest refresh result. It is the zero Snapshot
// before the first Refresh.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}
