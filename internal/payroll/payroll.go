// Package payroll turns evaluated attendance into per-employee period totals
// and writes them as payroll templates.
package payroll

import (
	"sort"
	"strings"
	"time"

	"github.com/Tiliavir/tick/internal/attendance"
	"github.com/Tiliavir/tick/internal/model"
)

// Row is one employee's totals for the period.
type Row struct {
	EmployeeID     string `json:"employee_id"`
	Name           string `json:"name"`
	Department     string `json:"department"`
	DaysWorked     int    `json:"days_worked"`
	RawMinutes     int    `json:"raw_minutes"`
	BreakMinutes   int    `json:"break_minutes"`
	NetMinutes     int    `json:"net_minutes"`
	OpenClockIns   int    `json:"open_clock_ins"`
	HighFindings   int    `json:"high_findings"`
	MediumFindings int    `json:"medium_findings"`
	LowFindings    int    `json:"low_findings"`
}

// Sheet is a payroll template for [From, To].
type Sheet struct {
	From string `json:"from"`
	To   string `json:"to"`
	Rows []Row  `json:"rows"`
}

// Totals sums every row.
func (s Sheet) Totals() Row {
	t := Row{Name: "Total"}
	for _, r := range s.Rows {
		t.DaysWorked += r.DaysWorked
		t.RawMinutes += r.RawMinutes
		t.BreakMinutes += r.BreakMinutes
		t.NetMinutes += r.NetMinutes
		t.OpenClockIns += r.OpenClockIns
		t.HighFindings += r.HighFindings
		t.MediumFindings += r.MediumFindings
		t.LowFindings += r.LowFindings
	}
	return t
}

// Directory resolves employee ids to roster entries.
type Directory interface {
	Lookup(id string) (model.Employee, bool)
}

// Build aggregates day results into a sheet. Payable time is net time;
// unpaired clock-ins contribute nothing but are counted. Rows are sorted by
// name, unknown employees labelled "Unknown (<id>)".
func Build(days []attendance.DayResult, dir Directory, from, to time.Time) Sheet {
	rows := map[string]*Row{}
	get := func(id string) *Row {
		r, ok := rows[id]
		if !ok {
			r = &Row{EmployeeID: id, Name: attendance.UnknownLabel(id)}
			if dir != nil {
				if e, ok := dir.Lookup(id); ok {
					r.Name = e.Name
					r.Department = e.Department
				}
			}
			rows[id] = r
		}
		return r
	}

	fromDay := from.Format(model.DateLayout)
	toDay := to.Format(model.DateLayout)
	for _, d := range days {
		if d.Date < fromDay || d.Date > toDay {
			continue
		}
		for _, s := range attendance.Summarize(d.Result) {
			r := get(s.EmployeeID)
			if s.Intervals > 0 {
				r.DaysWorked++
			}
			r.RawMinutes += s.RawMinutes
			r.BreakMinutes += s.BreakMinutes
			r.NetMinutes += s.NetMinutes
			r.OpenClockIns += s.OpenClockIns
			r.HighFindings += s.Findings[attendance.High]
			r.MediumFindings += s.Findings[attendance.Medium]
			r.LowFindings += s.Findings[attendance.Low]
		}
	}

	sheet := Sheet{From: fromDay, To: toDay, Rows: make([]Row, 0, len(rows))}
	for _, r := range rows {
		sheet.Rows = append(sheet.Rows, *r)
	}
	sort.Slice(sheet.Rows, func(i, j int) bool {
		a, b := strings.ToLower(sheet.Rows[i].Name), strings.ToLower(sheet.Rows[j].Name)
		if a != b {
			return a < b
		}
		return sheet.Rows[i].EmployeeID < sheet.Rows[j].EmployeeID
	})
	return sheet
}
