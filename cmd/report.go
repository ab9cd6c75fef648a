package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/tick/internal/payroll"
	"github.com/Tiliavir/tick/internal/roster"
	"github.com/Tiliavir/tick/internal/timecalc"
)

var (
	reportWeek   bool
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show per-employee worked time for the week",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportWeek, "week", false, "Report for this week (default)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
}

func runReport(cmd *cobra.Command, args []string) error {
	format, err := payroll.ParseFormat(reportFormat)
	if err != nil || format == payroll.FormatXLSX {
		fail(exitUsage, fmt.Errorf("unknown report format %q (want md, csv or json)", reportFormat))
	}

	c := classifier()
	now := nowFunc().In(c.Location)
	from, to := timecalc.WeekRange(now)

	sheet, err := buildSheet(cmd, from, to, now)
	if err != nil {
		fail(exitStorage, err)
	}

	w := out(cmd)
	if format == payroll.FormatMarkdown {
		fmt.Fprintf(w, "Week %s\n\n", timecalc.ISOWeekLabel(now))
	}
	return payroll.Write(w, sheet, format)
}

// buildSheet loads and evaluates [from, to] and aggregates it per employee.
func buildSheet(cmd *cobra.Command, from, to, now time.Time) (payroll.Sheet, error) {
	store := openStore()
	defer store.Close()

	punches, err := store.LoadRange(ctx(cmd), from, to)
	if err != nil {
		return payroll.Sheet{}, err
	}
	employees, err := store.LoadRoster(ctx(cmd))
	if err != nil {
		return payroll.Sheet{}, err
	}
	days := classifier().EvaluateRange(punches, now)
	return payroll.Build(days, roster.New(employees), from, to), nil
}
