// Package kiosk is the shared-terminal clock page: an employee types their
// id, then picks an action.
package kiosk

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Tiliavir/tick/internal/attendance"
	"github.com/Tiliavir/tick/internal/model"
	"github.com/Tiliavir/tick/internal/roster"
	"github.com/Tiliavir/tick/internal/storage"
	"github.com/Tiliavir/tick/internal/timecalc"
)

// MsgTick refreshes the clock.
type MsgTick struct{ At time.Time }

// MsgPunched reports the outcome of recording a punch. Err means nothing was
// stored; EvalErr means the punch was stored but the day could not be
// re-evaluated.
type MsgPunched struct {
	Punch    model.Punch
	Findings []attendance.AnnotatedFinding
	Err      error
	EvalErr  error
}

// actionKeys maps the action keys to punch kinds.
var actionKeys = map[string]model.PunchKind{
	"i": model.ClockIn,
	"o": model.ClockOut,
	"b": model.BreakStart,
	"e": model.BreakEnd,
}

// Model is the bubbletea model.
type Model struct {
	ctx        context.Context
	store      storage.Store
	classifier attendance.Classifier
	now        func() time.Time

	Clock time.Time
	// Input is the employee id being typed.
	Input string
	// Employee is set once the id is confirmed with enter.
	Employee string
	Name     string
	Busy     bool
	Last     string
	Err      error
	EvalErr  error
	Findings []attendance.AnnotatedFinding
}

// Option customises a Model.
type Option func(*Model)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// New returns a kiosk model that records punches in store.
func New(ctx context.Context, store storage.Store, classifier attendance.Classifier, opts ...Option) *Model {
	m := &Model{ctx: ctx, store: store, classifier: classifier, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	m.Clock = m.localNow()
	return m
}

func (m *Model) localNow() time.Time {
	t := m.now()
	if m.classifier.Location != nil {
		t = t.In(m.classifier.Location)
	}
	return t
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return MsgTick{At: t} })
}

func (m *Model) Init() tea.Cmd {
	return tick()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MsgTick:
		m.Clock = m.localNow()
		return m, tick()
	case MsgPunched:
		m.Busy = false
		m.Err = msg.Err
		m.EvalErr = nil
		if msg.Err == nil {
			m.Last = fmt.Sprintf("%s: %s at %s", m.display(), msg.Punch.Kind.Label(), msg.Punch.Time)
			m.Findings = msg.Findings
			m.EvalErr = msg.EvalErr
		}
		m.Employee, m.Name, m.Input = "", "", ""
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *Model) display() string {
	if m.Name != "" {
		return m.Name
	}
	return m.Employee
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	if m.Busy {
		return m, nil
	}

	if m.Employee == "" {
		switch key {
		case "enter":
			id := strings.TrimSpace(m.Input)
			if id == "" {
				return m, nil
			}
			m.Employee = id
			m.Name = m.lookupName(id)
			m.Err = nil
		case "backspace":
			if len(m.Input) > 0 {
				m.Input = m.Input[:len(m.Input)-1]
			}
		case "esc":
			m.Input = ""
		default:
			if msg.Type == tea.KeyRunes {
				m.Input += string(msg.Runes)
			}
		}
		return m, nil
	}

	if key == "esc" {
		m.Employee, m.Name, m.Input = "", "", ""
		return m, nil
	}
	kind, ok := actionKeys[key]
	if !ok {
		return m, nil
	}
	m.Busy = true
	return m, m.record(m.Employee, kind)
}

func (m *Model) lookupName(id string) string {
	employees, err := m.store.LoadRoster(m.ctx)
	if err != nil {
		return ""
	}
	if e, ok := roster.New(employees).Lookup(id); ok {
		return e.Name
	}
	return ""
}

// record stores the punch and re-evaluates the employee's day.
func (m *Model) record(employeeID string, kind model.PunchKind) tea.Cmd {
	at := m.localNow()
	return func() tea.Msg {
		p, err := m.store.AppendPunch(m.ctx, model.NewPunch(employeeID, kind, at, "terminal"))
		if err != nil {
			return MsgPunched{Err: err}
		}
		punches, err := m.store.LoadDay(m.ctx, timecalc.StartOfDay(at))
		if err != nil {
			return MsgPunched{Punch: p, EvalErr: err}
		}
		var own []model.Punch
		for _, q := range punches {
			if q.EmployeeID == employeeID {
				own = append(own, q)
			}
		}
		res := m.classifier.Evaluate(own, at)
		employees, err := m.store.LoadRoster(m.ctx)
		annotated, _ := attendance.Annotate(attendance.SortBySeverity(res.Findings), roster.New(employees), nil)
		return MsgPunched{Punch: p, Findings: annotated, EvalErr: err}
	}
}
