package attendance

import (
	"sort"
	"time"

	"github.com/Tiliavir/tick/internal/model"
)

// Directory resolves employee ids for display.
type Directory interface {
	Lookup(id string) (model.Employee, bool)
}

// AnnotatedFinding is a finding with roster details and acknowledgement state.
type AnnotatedFinding struct {
	Finding
	EmployeeName   string     `json:"employee_name"`
	Department     string     `json:"department"`
	KnownEmployee  bool       `json:"known_employee"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
}

// UnknownLabel is the display name used for ids missing from the roster.
func UnknownLabel(id string) string {
	return "Unknown (" + id + ")"
}

// Annotate joins findings with roster entries. It returns the annotated
// findings in input order and the sorted, de-duplicated ids that were not
// found in dir. A nil dir marks every employee unknown.
func Annotate(findings []Finding, dir Directory, acks map[string]model.Acknowledgement) ([]AnnotatedFinding, []string) {
	out := make([]AnnotatedFinding, 0, len(findings))
	missing := map[string]bool{}
	for _, f := range findings {
		a := AnnotatedFinding{Finding: f, EmployeeName: UnknownLabel(f.EmployeeID)}
		if dir != nil {
			if e, ok := dir.Lookup(f.EmployeeID); ok {
				a.EmployeeName = e.Name
				a.Department = e.Department
				a.KnownEmployee = true
			}
		}
		if !a.KnownEmployee {
			missing[f.EmployeeID] = true
		}
		if ack, ok := acks[f.Key]; ok {
			at := ack.AcknowledgedAt
			a.AcknowledgedAt = &at
		}
		out = append(out, a)
	}

	ids := make([]string, 0, len(missing))
	for id := range missing {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return out, ids
}

// FilterAcknowledged splits findings into those still open and those whose
// key has an acknowledgement. The findings themselves are not modified.
func FilterAcknowledged(findings []Finding, acks map[string]model.Acknowledgement) (open, acknowledged []Finding) {
	open = []Finding{}
	acknowledged = []Finding{}
	for _, f := range findings {
		if _, ok := acks[f.Key]; ok {
			acknowledged = append(acknowledged, f)
			continue
		}
		open = append(open, f)
	}
	return open, acknowledged
}

// SortBySeverity orders findings for display: highest severity first, then
// by reference time. The input slice is left untouched.
func SortBySeverity(findings []Finding) []Finding {
	out := append([]Finding(nil), findings...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Severity.Rank() != out[j].Severity.Rank() {
			return out[i].Severity.Rank() > out[j].Severity.Rank()
		}
		return out[i].ReferenceTime.Before(out[j].ReferenceTime)
	})
	return out
}
