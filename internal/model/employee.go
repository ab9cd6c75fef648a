package model

import "time"

// Employee is a roster entry. Attendance classification never reads it; it is
// used to put names and departments next to findings and payroll rows.
type Employee struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Department string `json:"department" yaml:"department"`
	Email      string `json:"email,omitempty" yaml:"email,omitempty"`
	Source     string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Acknowledgement marks a finding key as seen by an administrator. Findings
// are recomputed on every evaluation, so the acknowledgement lives apart from
// them and is looked up by key.
type Acknowledgement struct {
	Key            string    `json:"key"`
	AcknowledgedAt time.Time `json:"acknowledged_at"`
	By             string    `json:"by,omitempty"`
	Note           string    `json:"note,omitempty"`
}
