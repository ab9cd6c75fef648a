package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/tick/internal/attendance"
	"github.com/Tiliavir/tick/internal/model"
	"github.com/Tiliavir/tick/internal/roster"
	"github.com/Tiliavir/tick/internal/timecalc"
)

var nowFunc = time.Now

var (
	clockAt       string
	clockDate     string
	clockLocation string
	clockNotes    string
)

var clockCmd = &cobra.Command{
	Use:   "clock",
	Short: "Record a punch (in, out, break-start, break-end)",
}

func init() {
	for _, kind := range model.PunchKinds {
		clockCmd.AddCommand(newClockSubcommand(kind))
	}
	clockCmd.PersistentFlags().StringVar(&clockAt, "at", "", "Time of day (HH:MM or HH:MM:SS); defaults to now")
	clockCmd.PersistentFlags().StringVar(&clockDate, "date", "", "Date (YYYY-MM-DD); defaults to today")
	clockCmd.PersistentFlags().StringVar(&clockLocation, "location", "", "Where the punch was made")
	clockCmd.PersistentFlags().StringVar(&clockNotes, "notes", "", "Optional notes")
}

func clockVerb(kind model.PunchKind) string {
	switch kind {
	case model.ClockIn:
		return "in"
	case model.ClockOut:
		return "out"
	case model.BreakStart:
		return "break-start"
	}
	return "break-end"
}

func newClockSubcommand(kind model.PunchKind) *cobra.Command {
	return &cobra.Command{
		Use:   clockVerb(kind) + " <employee>",
		Short: "Record a " + kind.Label(),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClock(cmd, args[0], kind)
		},
	}
}

// buildPunch applies the --date/--at overrides to a punch made at now.
func buildPunch(employeeID string, kind model.PunchKind, now time.Time, date, at string) (model.Punch, error) {
	p := model.NewPunch(strings.TrimSpace(employeeID), kind, now, "cli")
	if date != "" {
		if _, err := time.Parse(model.DateLayout, date); err != nil {
			return p, fmt.Errorf("invalid --date value %q: want YYYY-MM-DD", date)
		}
		p.Date = date
	}
	if at != "" {
		if _, err := timecalc.ParseClock(at); err != nil {
			return p, fmt.Errorf("invalid --at value: %w", err)
		}
		p.Time = at
	}
	return p, nil
}

func runClock(cmd *cobra.Command, employeeID string, kind model.PunchKind) error {
	c := classifier()
	now := nowFunc().In(c.Location)

	p, err := buildPunch(employeeID, kind, now, clockDate, clockAt)
	if err != nil {
		fail(exitUsage, err)
	}
	if clockLocation != "" {
		p.Location = &clockLocation
	}
	if clockNotes != "" {
		p.Notes = &clockNotes
	}

	store := openStore()
	defer store.Close()

	stored, err := store.AppendPunch(ctx(cmd), p)
	if err != nil {
		fail(exitStorage, err)
	}
	employees, err := store.LoadRoster(ctx(cmd))
	if err != nil {
		fail(exitStorage, err)
	}
	dir := roster.New(employees)

	w := out(cmd)
	fmt.Fprintf(w, "Recorded %s for %s at %s on %s\n", kind.Label(), dir.Label(stored.EmployeeID), stored.Time, stored.Date)

	day, err := recordedDay(stored, c.Location)
	if err != nil {
		fail(exitStorage, err)
	}
	punches, err := store.LoadDay(ctx(cmd), day)
	if err != nil {
		fail(exitStorage, err)
	}
	res := c.Evaluate(punchesFor(punches, stored.EmployeeID), now)
	for _, f := range attendance.SortBySeverity(res.Findings) {
		fmt.Fprintf(w, "  %s %s\n", severityTag(f.Severity), f.Description)
	}
	logger.Debug("punch recorded", "punch_id", stored.ID, "employee_id", stored.EmployeeID, "kind", string(kind))
	return nil
}

// recordedDay returns the start of the day a stored punch belongs to.
func recordedDay(p model.Punch, loc *time.Location) (time.Time, error) {
	day, err := timecalc.ParseDay(p.Date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("stored punch %s: %w", p.ID, err)
	}
	return day, nil
}

// punchesFor keeps only employeeID's punches.
func punchesFor(punches []model.Punch, employeeID string) []model.Punch {
	var own []model.Punch
	for _, p := range punches {
		if p.EmployeeID == employeeID {
			own = append(own, p)
		}
	}
	return own
}
