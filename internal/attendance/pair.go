package attendance

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Tiliavir/tick/internal/model"
	"github.com/Tiliavir/tick/internal/timecalc"
)

// Event is a punch whose date and time have been combined.
type Event struct {
	PunchID    string
	EmployeeID string
	Kind       model.PunchKind
	Date       string
	At         time.Time
}

// Diagnostic explains why a punch was left out of pairing.
type Diagnostic struct {
	PunchID    string `json:"punch_id,omitempty"`
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Field      string `json:"field"`
	Value      string `json:"value"`
	Reason     string `json:"reason"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("punch %s of %q on %s: %s %q: %s", d.PunchID, d.EmployeeID, d.Date, d.Field, d.Value, d.Reason)
}

// WorkInterval is a clock-in paired with its clock-out.
type WorkInterval struct {
	EmployeeID      string    `json:"employee_id"`
	Date            string    `json:"date"`
	ClockIn         time.Time `json:"clock_in"`
	ClockOut        time.Time `json:"clock_out"`
	ClockInID       string    `json:"clock_in_id,omitempty"`
	ClockOutID      string    `json:"clock_out_id,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	BreakMinutes    int       `json:"break_minutes"`
	NetMinutes      int       `json:"net_minutes"`
}

// BreakInterval is a break-start paired with its break-end.
type BreakInterval struct {
	EmployeeID      string    `json:"employee_id"`
	Date            string    `json:"date"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes int       `json:"duration_minutes"`
}

// within reports whether the break lies entirely inside w.
func (b BreakInterval) within(w WorkInterval) bool {
	return !b.Start.Before(w.ClockIn) && !b.End.After(w.ClockOut)
}

// OpenPunch is an opening punch (clock-in or break-start) that found no
// closing partner. OpenMinutes is measured against the evaluation's
// reference time and is only informational.
type OpenPunch struct {
	EmployeeID  string          `json:"employee_id"`
	Date        string          `json:"date"`
	Kind        model.PunchKind `json:"kind"`
	At          time.Time       `json:"at"`
	PunchID     string          `json:"punch_id,omitempty"`
	OpenMinutes int             `json:"open_minutes"`
}

// normalize parses punches into events. Punches with an unknown kind, no
// employee, or an unparseable date or time are dropped with a diagnostic.
// The returned events are stably sorted by timestamp.
func normalize(punches []model.Punch, loc *time.Location) ([]Event, []Diagnostic) {
	events := make([]Event, 0, len(punches))
	var diags []Diagnostic

	for _, p := range punches {
		diag := Diagnostic{PunchID: p.ID, EmployeeID: p.EmployeeID, Date: p.Date}
		if strings.TrimSpace(p.EmployeeID) == "" {
			diag.Field, diag.Value, diag.Reason = "employee_id", p.EmployeeID, "missing employee"
			diags = append(diags, diag)
			continue
		}
		if !p.Kind.Valid() {
			diag.Field, diag.Value, diag.Reason = "kind", string(p.Kind), "unknown punch kind"
			diags = append(diags, diag)
			continue
		}
		at, err := timecalc.Combine(p.Date, p.Time, loc)
		switch {
		case errors.Is(err, timecalc.ErrInvalidDate):
			diag.Field, diag.Value, diag.Reason = "date", p.Date, "unparseable date"
			diags = append(diags, diag)
			continue
		case err != nil:
			diag.Field, diag.Value, diag.Reason = "time", p.Time, "unparseable time"
			diags = append(diags, diag)
			continue
		}
		events = append(events, Event{
			PunchID:    p.ID,
			EmployeeID: p.EmployeeID,
			Kind:       p.Kind,
			Date:       at.Format(model.DateLayout),
			At:         at,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].At.Before(events[j].At)
	})
	return events, diags
}

// pairing is the outcome of matching openers to closers.
type pairing struct {
	pairs  [][2]Event
	opened []Event
}

// pair matches each opener, in order, with the earliest unconsumed closer
// that is strictly later. Both slices must already be sorted by time. Each
// closer is consumed at most once.
func pair(openers, closers []Event) pairing {
	var out pairing
	consumed := make([]bool, len(closers))
	for _, o := range openers {
		matched := -1
		for j, c := range closers {
			if consumed[j] || !c.At.After(o.At) {
				continue
			}
			matched = j
			break
		}
		if matched < 0 {
			out.opened = append(out.opened, o)
			continue
		}
		consumed[matched] = true
		out.pairs = append(out.pairs, [2]Event{o, closers[matched]})
	}
	return out
}

// partition splits events by kind, preserving order.
func partition(events []Event) map[model.PunchKind][]Event {
	byKind := make(map[model.PunchKind][]Event, len(model.PunchKinds))
	for _, e := range events {
		byKind[e.Kind] = append(byKind[e.Kind], e)
	}
	return byKind
}
