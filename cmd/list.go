package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/tick/internal/attendance"
	"github.com/Tiliavir/tick/internal/roster"
	"github.com/Tiliavir/tick/internal/timecalc"
)

var (
	listDate string
	listWeek bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List paired work intervals per employee",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listDate, "date", "", "Show a specific date (YYYY-MM-DD); defaults to today")
	listCmd.Flags().BoolVar(&listWeek, "week", false, "Show the week containing the date")
}

func runList(cmd *cobra.Command, args []string) error {
	c := classifier()
	now := nowFunc().In(c.Location)

	day := timecalc.StartOfDay(now)
	if listDate != "" {
		d, err := timecalc.ParseDay(listDate, c.Location)
		if err != nil {
			fail(exitUsage, err)
		}
		day = d
	}
	from, to := day, timecalc.EndOfDay(day)
	if listWeek {
		from, to = timecalc.WeekRange(day)
	}

	store := openStore()
	defer store.Close()

	punches, err := store.LoadRange(ctx(cmd), from, to)
	if err != nil {
		fail(exitStorage, err)
	}
	employees, err := store.LoadRoster(ctx(cmd))
	if err != nil {
		fail(exitStorage, err)
	}

	printList(out(cmd), c.EvaluateRange(punches, now), roster.New(employees))
	return nil
}

// printList groups results by date and prints one block per employee.
func printList(w io.Writer, days []attendance.DayResult, dir *roster.Roster) {
	if len(days) == 0 {
		fmt.Fprintln(w, "No punches found.")
		return
	}

	for _, d := range days {
		fmt.Fprintln(w, d.Date)
		intervals := map[string][]attendance.WorkInterval{}
		for _, iv := range d.Intervals {
			intervals[iv.EmployeeID] = append(intervals[iv.EmployeeID], iv)
		}
		open := map[string][]attendance.OpenPunch{}
		for _, o := range d.OpenClockIns {
			open[o.EmployeeID] = append(open[o.EmployeeID], o)
		}

		for _, s := range attendance.Summarize(d.Result) {
			fmt.Fprintf(w, "  %s  %s worked", dir.Label(s.EmployeeID), timecalc.FormatMinutes(s.NetMinutes))
			if s.BreakMinutes > 0 {
				fmt.Fprintf(w, " (%s break)", timecalc.FormatMinutes(s.BreakMinutes))
			}
			fmt.Fprintln(w)
			for _, iv := range intervals[s.EmployeeID] {
				fmt.Fprintf(w, "    %s–%s  %s\n", iv.ClockIn.Format("15:04"), iv.ClockOut.Format("15:04"), timecalc.FormatMinutes(iv.DurationMinutes))
			}
			for _, o := range open[s.EmployeeID] {
				fmt.Fprintf(w, "    %s–open   %s so far\n", o.At.Format("15:04"), timecalc.FormatMinutes(o.OpenMinutes))
			}
		}
		for _, diag := range d.Diagnostics {
			fmt.Fprintf(w, "  ! skipped punch: %s\n", diag)
		}
	}
}

func dayLabel(t time.Time) string {
	return t.Format("Mon 2006-01-02")
}
