package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/tick/internal/payroll"
	"github.com/Tiliavir/tick/internal/timecalc"
)

var (
	exportFormat string
	exportFrom   string
	exportTo     string
	exportMonth  string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a payroll template (CSV, JSON, Markdown or XLSX)",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, md, xlsx")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "First day (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Last day (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportMonth, "month", "", "Whole month (YYYY-MM)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Write to file instead of stdout")
	exportCmd.MarkFlagsMutuallyExclusive("month", "from")
	exportCmd.MarkFlagsMutuallyExclusive("month", "to")
}

// exportRange resolves the period flags. Without flags the current week is
// exported; --from alone runs to today, --to alone starts a week earlier.
func exportRange(now time.Time, from, to, month string) (time.Time, time.Time, error) {
	loc := now.Location()
	if month != "" {
		m, err := time.ParseInLocation("2006-01", month, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --month value %q: want YYYY-MM", month)
		}
		f, t := timecalc.MonthRange(m)
		return f, t, nil
	}
	if from == "" && to == "" {
		f, t := timecalc.WeekRange(now)
		return f, t, nil
	}

	end := timecalc.EndOfDay(now)
	if to != "" {
		d, err := timecalc.ParseDay(to, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = timecalc.EndOfDay(d)
	}
	start := timecalc.StartOfDay(end.AddDate(0, 0, -6))
	if from != "" {
		d, err := timecalc.ParseDay(from, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = d
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("--from %s is after --to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	return start, end, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := payroll.ParseFormat(exportFormat)
	if err != nil {
		fail(exitUsage, err)
	}
	if format == payroll.FormatXLSX && exportOut == "" {
		fail(exitUsage, fmt.Errorf("xlsx export needs --out"))
	}

	c := classifier()
	now := nowFunc().In(c.Location)
	from, to, err := exportRange(now, exportFrom, exportTo, exportMonth)
	if err != nil {
		fail(exitUsage, err)
	}

	sheet, err := buildSheet(cmd, from, to, now)
	if err != nil {
		fail(exitStorage, err)
	}

	var w io.Writer = out(cmd)
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			fail(exitStorage, err)
		}
		defer f.Close()
		w = f
	}
	if err := payroll.Write(w, sheet, format); err != nil {
		fail(exitStorage, err)
	}
	if exportOut != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d rows for %s to %s to %s\n", len(sheet.Rows), sheet.From, sheet.To, exportOut)
	}
	return nil
}
