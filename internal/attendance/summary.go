package attendance

import (
	"sort"
	"time"
)

// DaySummary totals one employee's day. RawMinutes and NetMinutes only count
// paired intervals; open clock-ins contribute nothing until they are closed.
type DaySummary struct {
	EmployeeID   string           `json:"employee_id"`
	Date         string           `json:"date"`
	FirstIn      *time.Time       `json:"first_in,omitempty"`
	LastOut      *time.Time       `json:"last_out,omitempty"`
	Intervals    int              `json:"intervals"`
	RawMinutes   int              `json:"raw_minutes"`
	BreakMinutes int              `json:"break_minutes"`
	NetMinutes   int              `json:"net_minutes"`
	OpenClockIns int              `json:"open_clock_ins"`
	Findings     map[Severity]int `json:"findings"`
}

// Summarize aggregates a result per employee and day, ordered by date then
// employee id.
func Summarize(res Result) []DaySummary {
	index := map[[2]string]*DaySummary{}
	get := func(employeeID, date string) *DaySummary {
		k := [2]string{date, employeeID}
		s, ok := index[k]
		if !ok {
			s = &DaySummary{EmployeeID: employeeID, Date: date, Findings: map[Severity]int{}}
			index[k] = s
		}
		return s
	}

	for _, w := range res.Intervals {
		s := get(w.EmployeeID, w.Date)
		s.Intervals++
		s.RawMinutes += w.DurationMinutes
		s.BreakMinutes += w.BreakMinutes
		s.NetMinutes += w.NetMinutes
		if s.FirstIn == nil || w.ClockIn.Before(*s.FirstIn) {
			in := w.ClockIn
			s.FirstIn = &in
		}
		if s.LastOut == nil || w.ClockOut.After(*s.LastOut) {
			out := w.ClockOut
			s.LastOut = &out
		}
	}
	for _, o := range res.OpenClockIns {
		s := get(o.EmployeeID, o.Date)
		s.OpenClockIns++
		if s.FirstIn == nil || o.At.Before(*s.FirstIn) {
			in := o.At
			s.FirstIn = &in
		}
	}
	for _, f := range res.Findings {
		get(f.EmployeeID, f.Date).Findings[f.Severity]++
	}

	out := make([]DaySummary, 0, len(index))
	for _, s := range index {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out
}
