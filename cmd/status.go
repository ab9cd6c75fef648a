package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/tick/internal/attendance"
	"github.com/Tiliavir/tick/internal/roster"
	"github.com/Tiliavir/tick/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status <employee>",
	Short: "Show an employee's attendance for today",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	c := classifier()
	now := nowFunc().In(c.Location)
	employeeID := args[0]

	store := openStore()
	defer store.Close()

	punches, err := store.LoadDay(ctx(cmd), timecalc.StartOfDay(now))
	if err != nil {
		fail(exitStorage, err)
	}
	employees, err := store.LoadRoster(ctx(cmd))
	if err != nil {
		fail(exitStorage, err)
	}

	res := c.Evaluate(punchesFor(punches, employeeID), now)
	w := out(cmd)
	fmt.Fprintf(w, "%s – %s\n", roster.New(employees).Label(employeeID), now.Format(time.DateOnly))

	switch {
	case len(res.OpenBreaks) > 0:
		b := res.OpenBreaks[len(res.OpenBreaks)-1]
		fmt.Fprintf(w, "  On break since %s (%s)\n", b.At.Format("15:04"), formatElapsed(int64(now.Sub(b.At).Seconds())))
	case len(res.OpenClockIns) > 0:
		o := res.OpenClockIns[len(res.OpenClockIns)-1]
		fmt.Fprintf(w, "  Clocked in since %s (%s)\n", o.At.Format("15:04"), formatElapsed(int64(now.Sub(o.At).Seconds())))
	default:
		fmt.Fprintln(w, "  Not clocked in.")
	}

	var worked, breaks int
	for _, iv := range res.Intervals {
		worked += iv.NetMinutes
		breaks += iv.BreakMinutes
	}
	fmt.Fprintf(w, "  Today: %s worked, %s on break.\n", timecalc.FormatMinutes(worked), timecalc.FormatMinutes(breaks))

	for _, f := range attendance.SortBySeverity(res.Findings) {
		fmt.Fprintf(w, "  %s %s\n", severityTag(f.Severity), f.Description)
	}
	return nil
}

// formatElapsed renders seconds as "1h 2m 3s", dropping leading zero units.
func formatElapsed(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
