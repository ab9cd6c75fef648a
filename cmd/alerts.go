package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/tick/internal/attendance"
	"github.com/Tiliavir/tick/internal/kiosk"
	"github.com/Tiliavir/tick/internal/roster"
	"github.com/Tiliavir/tick/internal/timecalc"
)

var (
	alertsDate string
	alertsAll  bool
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show anomaly findings for a day",
	Args:  cobra.NoArgs,
	RunE:  runAlerts,
}

func init() {
	alertsCmd.Flags().StringVar(&alertsDate, "date", "", "Date (YYYY-MM-DD); defaults to today")
	alertsCmd.Flags().BoolVar(&alertsAll, "all", false, "Include acknowledged findings")
}

func severityTag(s attendance.Severity) string {
	return kiosk.SeverityStyle(s).Render(fmt.Sprintf("[%-6s]", strings.ToUpper(string(s))))
}

func runAlerts(cmd *cobra.Command, args []string) error {
	c := classifier()
	now := nowFunc().In(c.Location)
	day := timecalc.StartOfDay(now)
	if alertsDate != "" {
		d, err := timecalc.ParseDay(alertsDate, c.Location)
		if err != nil {
			fail(exitUsage, err)
		}
		day = d
	}

	store := openStore()
	defer store.Close()

	punches, err := store.LoadDay(ctx(cmd), day)
	if err != nil {
		fail(exitStorage, err)
	}
	acks, err := store.Acknowledgements(ctx(cmd))
	if err != nil {
		fail(exitStorage, err)
	}
	employees, err := store.LoadRoster(ctx(cmd))
	if err != nil {
		fail(exitStorage, err)
	}

	res := c.Evaluate(punches, now)
	findings := res.Findings
	if !alertsAll {
		findings, _ = attendance.FilterAcknowledged(findings, acks)
	}
	annotated, unknown := attendance.Annotate(attendance.SortBySeverity(findings), roster.New(employees), acks)
	for _, id := range unknown {
		logger.Warn("finding for employee missing from roster", "employee_id", id)
	}

	printAlerts(out(cmd), dayLabel(day), annotated)
	for _, d := range res.Diagnostics {
		fmt.Fprintf(out(cmd), "! skipped punch: %s\n", d)
	}
	return nil
}

func printAlerts(w io.Writer, label string, findings []attendance.AnnotatedFinding) {
	if len(findings) == 0 {
		fmt.Fprintf(w, "No open findings for %s.\n", label)
		return
	}
	fmt.Fprintf(w, "Findings for %s\n", label)
	for _, f := range findings {
		ack := ""
		if f.AcknowledgedAt != nil {
			ack = " (acknowledged)"
		}
		fmt.Fprintf(w, "%s %-20s %s%s\n", severityTag(f.Severity), f.EmployeeName, f.Description, ack)
		fmt.Fprintf(w, "         key: %s\n", f.Key)
	}
}
