package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Tiliavir/tick/internal/attendance"
	"github.com/Tiliavir/tick/internal/model"
	"github.com/Tiliavir/tick/internal/roster"
)

func TestPrintList(t *testing.T) {
	now := time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC)
	punches := []model.Punch{
		{ID: "1", EmployeeID: "E1", Kind: model.ClockIn, Date: "2024-01-15", Time: "08:00"},
		{ID: "2", EmployeeID: "E1", Kind: model.ClockOut, Date: "2024-01-15", Time: "17:00"},
		{ID: "3", EmployeeID: "E2", Kind: model.ClockIn, Date: "2024-01-15", Time: "09:30"},
		{ID: "4", EmployeeID: "E2", Kind: model.ClockOut, Date: "2024-01-15", Time: "nope"},
	}
	days := attendance.NewClassifier(time.UTC).EvaluateRange(punches, now)
	dir := roster.New([]model.Employee{{ID: "E1", Name: "Ada"}})

	var buf bytes.Buffer
	printList(&buf, days, dir)
	got := buf.String()

	for _, want := range []string{"2024-01-15", "Ada", "9h 0m", "Unknown (E2)", "09:30–open", "skipped punch"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestPrintListEmpty(t *testing.T) {
	var buf bytes.Buffer
	printList(&buf, nil, nil)
	if !strings.Contains(buf.String(), "No punches found.") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestPrintAlerts(t *testing.T) {
	ref := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	acked := ref.Add(time.Hour)
	findings := []attendance.AnnotatedFinding{
		{
			Finding:      attendance.Finding{Key: "k1", Kind: attendance.LateArrival, Severity: attendance.Low, EmployeeID: "E1", ReferenceTime: ref, Description: "Clocked in at 09:30, after 09:00"},
			EmployeeName: "Ada",
		},
		{
			Finding:        attendance.Finding{Key: "k2", Kind: attendance.MissingClockOut, Severity: attendance.High, EmployeeID: "E2", ReferenceTime: ref},
			EmployeeName:   "Grace",
			AcknowledgedAt: &acked,
		},
	}

	var buf bytes.Buffer
	printAlerts(&buf, "Mon 2024-01-15", findings)
	got := buf.String()
	for _, want := range []string{"Findings for Mon 2024-01-15", "LOW", "Ada", "key: k1", "(acknowledged)"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	buf.Reset()
	printAlerts(&buf, "Mon 2024-01-15", nil)
	if !strings.Contains(buf.String(), "No open findings") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
