package attendance

import (
	"time"

	"github.com/google/uuid"
)

// FindingKind names the rule that produced a finding.
type FindingKind string

const (
	MissingClockOut   FindingKind = "missing_clock_out"
	ExcessiveDuration FindingKind = "excessive_duration"
	MultipleClockIns  FindingKind = "multiple_clock_ins"
	LateArrival       FindingKind = "late_arrival"
	EarlyDeparture    FindingKind = "early_departure"
)

// Label returns a short title for display.
func (k FindingKind) Label() string {
	switch k {
	case MissingClockOut:
		return "Missing clock-out"
	case ExcessiveDuration:
		return "Excessive duration"
	case MultipleClockIns:
		return "Multiple clock-ins"
	case LateArrival:
		return "Late arrival"
	case EarlyDeparture:
		return "Early departure"
	}
	return string(k)
}

// Severity of a finding.
type Severity string

const (
	Low    Severity = "low"
	Medium Severity = "medium"
	High   Severity = "high"
)

// Rank orders severities: High > Medium > Low.
func (s Severity) Rank() int {
	switch s {
	case High:
		return 3
	case Medium:
		return 2
	case Low:
		return 1
	}
	return 0
}

// findingNamespace scopes finding keys so they never collide with punch ids.
var findingNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("tick:finding"))

// Finding is one rule violation. Findings are recomputed on every evaluation
// and never stored; Key is stable across evaluations of the same punches so
// acknowledgements can be looked up by it.
type Finding struct {
	Key           string      `json:"key"`
	Kind          FindingKind `json:"kind"`
	Severity      Severity    `json:"severity"`
	EmployeeID    string      `json:"employee_id"`
	Date          string      `json:"date"`
	ReferenceTime time.Time   `json:"reference_time"`
	Description   string      `json:"description"`
}

func newFinding(kind FindingKind, sev Severity, employeeID, date string, ref time.Time, desc string) Finding {
	return Finding{
		Key:           FindingKey(kind, employeeID, date, ref),
		Kind:          kind,
		Severity:      sev,
		EmployeeID:    employeeID,
		Date:          date,
		ReferenceTime: ref,
		Description:   desc,
	}
}

// FindingKey derives the acknowledgement key of a finding.
func FindingKey(kind FindingKind, employeeID, date string, ref time.Time) string {
	name := string(kind) + "|" + employeeID + "|" + date + "|" + ref.Format(time.RFC3339)
	return uuid.NewSHA1(findingNamespace, []byte(name)).String()
}
