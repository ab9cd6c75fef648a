// Package attendance pairs punch events into work and break intervals and
// classifies each employee's day against a fixed set of anomaly rules.
//
// Everything here is a pure function of its inputs: the caller supplies the
// punches and the reference time, and gets back intervals, findings and
// diagnostics. Nothing is cached between calls, so re-running an evaluation
// on the same snapshot yields identical output.
package attendance

import (
	"fmt"
	"sort"
	"time"

	"github.com/Tiliavir/tick/internal/model"
	"github.com/Tiliavir/tick/internal/timecalc"
)

// Result is the outcome of one evaluation.
type Result struct {
	Intervals    []WorkInterval  `json:"intervals"`
	Breaks       []BreakInterval `json:"breaks"`
	OpenClockIns []OpenPunch     `json:"open_clock_ins"`
	OpenBreaks   []OpenPunch     `json:"open_breaks"`
	Findings     []Finding       `json:"findings"`
	Diagnostics  []Diagnostic    `json:"diagnostics"`
}

// DayResult is the evaluation of a single calendar day.
type DayResult struct {
	Date string `json:"date"`
	Result
}

// Classifier evaluates punches against Rules. Location is used to read the
// date and time strings of punches; nil means the reference time's location.
type Classifier struct {
	Rules    Rules
	Location *time.Location
}

// NewClassifier returns a classifier with the default rules.
func NewClassifier(loc *time.Location) Classifier {
	return Classifier{Rules: DefaultRules(), Location: loc}
}

// Evaluate classifies punches with the default rules, reading punch times in
// now's location.
func Evaluate(punches []model.Punch, now time.Time) Result {
	return Classifier{Rules: DefaultRules()}.Evaluate(punches, now)
}

// Evaluate pairs and classifies punches. Callers normally pass a single
// day's punches; punches from several days are still grouped per employee
// and day, never paired across days.
//
// Findings are returned per employee (employees ordered by their earliest
// punch), and within an employee in rule order: missing clock-out,
// excessive duration, multiple clock-ins, late arrival, early departure.
func (c Classifier) Evaluate(punches []model.Punch, now time.Time) Result {
	loc := c.Location
	if loc == nil {
		loc = now.Location()
	}

	events, diags := normalize(punches, loc)
	res := Result{
		Intervals:    []WorkInterval{},
		Breaks:       []BreakInterval{},
		OpenClockIns: []OpenPunch{},
		OpenBreaks:   []OpenPunch{},
		Findings:     []Finding{},
		Diagnostics:  diags,
	}
	if res.Diagnostics == nil {
		res.Diagnostics = []Diagnostic{}
	}

	for _, g := range groupByEmployeeDay(events) {
		c.evaluateGroup(g, now, &res)
	}
	return res
}

// EvaluateRange splits punches by their recorded date and evaluates each day
// independently. Days are returned in ascending order.
func (c Classifier) EvaluateRange(punches []model.Punch, now time.Time) []DayResult {
	byDate := map[string][]model.Punch{}
	var dates []string
	for _, p := range punches {
		if _, seen := byDate[p.Date]; !seen {
			dates = append(dates, p.Date)
		}
		byDate[p.Date] = append(byDate[p.Date], p)
	}
	sort.Strings(dates)

	out := make([]DayResult, 0, len(dates))
	for _, d := range dates {
		out = append(out, DayResult{Date: d, Result: c.Evaluate(byDate[d], now)})
	}
	return out
}

// group holds one employee's events for one day.
type group struct {
	employeeID string
	date       string
	events     []Event
}

// groupByEmployeeDay groups sorted events. Groups keep the order in which
// their first event appears, which is the order of earliest punch.
func groupByEmployeeDay(events []Event) []group {
	index := map[[2]string]int{}
	var groups []group
	for _, e := range events {
		k := [2]string{e.EmployeeID, e.Date}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, group{employeeID: e.EmployeeID, date: e.Date})
		}
		groups[i].events = append(groups[i].events, e)
	}
	return groups
}

func (c Classifier) evaluateGroup(g group, now time.Time, res *Result) {
	byKind := partition(g.events)
	clockIns := byKind[model.ClockIn]
	clockOuts := byKind[model.ClockOut]

	work := pair(clockIns, clockOuts)
	breaks := pair(byKind[model.BreakStart], byKind[model.BreakEnd])

	var breakIntervals []BreakInterval
	for _, p := range breaks.pairs {
		breakIntervals = append(breakIntervals, BreakInterval{
			EmployeeID:      g.employeeID,
			Date:            g.date,
			Start:           p[0].At,
			End:             p[1].At,
			DurationMinutes: timecalc.WholeMinutes(p[1].At.Sub(p[0].At)),
		})
	}
	res.Breaks = append(res.Breaks, breakIntervals...)

	var intervals []WorkInterval
	for _, p := range work.pairs {
		w := WorkInterval{
			EmployeeID:      g.employeeID,
			Date:            g.date,
			ClockIn:         p[0].At,
			ClockOut:        p[1].At,
			ClockInID:       p[0].PunchID,
			ClockOutID:      p[1].PunchID,
			DurationMinutes: timecalc.WholeMinutes(p[1].At.Sub(p[0].At)),
		}
		for _, b := range breakIntervals {
			if b.within(w) {
				w.BreakMinutes += b.DurationMinutes
			}
		}
		w.NetMinutes = w.DurationMinutes - w.BreakMinutes
		if w.NetMinutes < 0 {
			w.NetMinutes = 0
		}
		intervals = append(intervals, w)
	}
	res.Intervals = append(res.Intervals, intervals...)

	var open []OpenPunch
	for _, e := range work.opened {
		open = append(open, openPunch(e, now))
	}
	res.OpenClockIns = append(res.OpenClockIns, open...)
	for _, e := range breaks.opened {
		res.OpenBreaks = append(res.OpenBreaks, openPunch(e, now))
	}

	rules := c.Rules

	for _, o := range open {
		desc := fmt.Sprintf("Clocked in at %s with no clock-out", o.At.Format(model.TimeLayoutHHMM))
		if o.OpenMinutes > 0 {
			desc += fmt.Sprintf(" (open for %s)", timecalc.FormatMinutes(o.OpenMinutes))
		}
		res.Findings = append(res.Findings, newFinding(MissingClockOut, High, g.employeeID, g.date, o.At, desc))
	}

	for _, w := range intervals {
		sev, ok := rules.durationSeverity(w.DurationMinutes)
		if !ok {
			continue
		}
		limit := rules.ExcessiveMinutes
		if sev == High {
			limit = rules.SevereMinutes
		}
		desc := fmt.Sprintf("Worked %s between %s and %s (over %s)",
			timecalc.FormatMinutes(w.DurationMinutes),
			w.ClockIn.Format(model.TimeLayoutHHMM),
			w.ClockOut.Format(model.TimeLayoutHHMM),
			timecalc.FormatMinutes(limit))
		res.Findings = append(res.Findings, newFinding(ExcessiveDuration, sev, g.employeeID, g.date, w.ClockIn, desc))
	}

	if n := len(clockIns); n >= rules.MultipleClockIns {
		desc := fmt.Sprintf("%d clock-ins recorded on %s", n, g.date)
		res.Findings = append(res.Findings, newFinding(MultipleClockIns, Medium, g.employeeID, g.date, clockIns[0].At, desc))
	}

	for _, e := range clockIns {
		if timecalc.ClockOf(e.At) > rules.LateAfter {
			desc := fmt.Sprintf("Clocked in at %s, after %s", e.At.Format(model.TimeLayoutHHMM), formatClock(rules.LateAfter))
			res.Findings = append(res.Findings, newFinding(LateArrival, Low, g.employeeID, g.date, e.At, desc))
		}
	}

	for _, e := range clockOuts {
		if timecalc.ClockOf(e.At) < rules.EarlyBefore {
			desc := fmt.Sprintf("Clocked out at %s, before %s", e.At.Format(model.TimeLayoutHHMM), formatClock(rules.EarlyBefore))
			res.Findings = append(res.Findings, newFinding(EarlyDeparture, Low, g.employeeID, g.date, e.At, desc))
		}
	}
}

func openPunch(e Event, now time.Time) OpenPunch {
	return OpenPunch{
		EmployeeID:  e.EmployeeID,
		Date:        e.Date,
		Kind:        e.Kind,
		At:          e.At,
		PunchID:     e.PunchID,
		OpenMinutes: timecalc.WholeMinutes(now.Sub(e.At)),
	}
}

func formatClock(d time.Duration) string {
	return time.Time{}.Add(d).Format(model.TimeLayoutHHMM)
}
