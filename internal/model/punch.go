package model

import (
	"fmt"
	"time"
)

// PunchKind is the action recorded by a punch.
type PunchKind string

const (
	ClockIn    PunchKind = "clock_in"
	ClockOut   PunchKind = "clock_out"
	BreakStart PunchKind = "break_start"
	BreakEnd   PunchKind = "break_end"
)

// PunchKinds lists every valid kind in display order.
var PunchKinds = []PunchKind{ClockIn, ClockOut, BreakStart, BreakEnd}

// Valid reports whether k is one of the known punch kinds.
func (k PunchKind) Valid() bool {
	switch k {
	case ClockIn, ClockOut, BreakStart, BreakEnd:
		return true
	}
	return false
}

// Label returns a short human label like "clock in".
func (k PunchKind) Label() string {
	switch k {
	case ClockIn:
		return "clock in"
	case ClockOut:
		return "clock out"
	case BreakStart:
		return "break start"
	case BreakEnd:
		return "break end"
	}
	return string(k)
}

// ParsePunchKind accepts the stored form ("clock_in") as well as the CLI
// forms ("in", "out", "break-start", "break-end").
func ParsePunchKind(s string) (PunchKind, error) {
	switch s {
	case "in", "clock-in", string(ClockIn):
		return ClockIn, nil
	case "out", "clock-out", string(ClockOut):
		return ClockOut, nil
	case "break-start", "break", string(BreakStart):
		return BreakStart, nil
	case "break-end", "resume", string(BreakEnd):
		return BreakEnd, nil
	}
	return "", fmt.Errorf("unknown punch kind %q", s)
}

// Layouts for the date and time halves of a punch.
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	TimeLayoutHHMM = "15:04"
)

// Punch is one recorded clock action. Date and Time are kept as the strings
// the terminal captured and are only combined when attendance is evaluated.
// Punches are never edited after they are written.
type Punch struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	Kind       PunchKind `json:"kind"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	Location   *string   `json:"location"`
	Notes      *string   `json:"notes"`
	Source     string    `json:"source"`
}

// NewPunch builds a punch for the wall-clock instant t.
func NewPunch(employeeID string, kind PunchKind, t time.Time, source string) Punch {
	return Punch{
		EmployeeID: employeeID,
		Kind:       kind,
		Date:       t.Format(DateLayout),
		Time:       t.Format(TimeLayout),
		Source:     source,
	}
}

// DayFile is the top-level structure stored in each daily JSON file.
type DayFile struct {
	Date    string  `json:"date"`
	Punches []Punch `json:"punches"`
}
