package payroll

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Tiliavir/tick/internal/timecalc"
)

// Format is an output format for a sheet.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatXLSX     Format = "xlsx"
)

// ParseFormat accepts csv, json, md (or markdown) and xlsx.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, json, md or xlsx)", s)
}

// ContentType is the MIME type used when serving the format over HTTP.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Write renders s to w in format f.
func Write(w io.Writer, s Sheet, f Format) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, s)
	case FormatMarkdown:
		return WriteMarkdown(w, s)
	case FormatXLSX:
		return WriteXLSX(w, s)
	case FormatCSV:
		return WriteCSV(w, s)
	}
	return fmt.Errorf("unknown export format %q", f)
}

var header = []string{
	"employee_id", "name", "department", "days_worked",
	"raw_minutes", "break_minutes", "net_minutes", "net_hours",
	"open_clock_ins", "high_findings", "medium_findings", "low_findings",
}

func (r Row) cells() []string {
	return []string{
		r.EmployeeID, r.Name, r.Department, strconv.Itoa(r.DaysWorked),
		strconv.Itoa(r.RawMinutes), strconv.Itoa(r.BreakMinutes), strconv.Itoa(r.NetMinutes),
		timecalc.FormatHHMM(r.NetMinutes),
		strconv.Itoa(r.OpenClockIns), strconv.Itoa(r.HighFindings),
		strconv.Itoa(r.MediumFindings), strconv.Itoa(r.LowFindings),
	}
}

// WriteCSV writes a header line and one line per row.
func WriteCSV(w io.Writer, s Sheet) error {
	if _, err := fmt.Fprintln(w, strings.Join(header, ",")); err != nil {
		return err
	}
	for _, r := range s.Rows {
		cells := r.cells()
		for i := range cells {
			cells[i] = csvEscape(cells[i])
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, ",")); err != nil {
			return err
		}
	}
	return nil
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	// Escape internal double quotes by doubling them.
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteJSON writes the sheet with its totals.
func WriteJSON(w io.Writer, s Sheet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Sheet
		Totals Row `json:"totals"`
	}{s, s.Totals()})
}

// WriteMarkdown writes a table suitable for pasting into a report.
func WriteMarkdown(w io.Writer, s Sheet) error {
	var b strings.Builder
	fmt.Fprintf(&b, "## Payroll %s – %s\n\n", s.From, s.To)
	b.WriteString("| Employee | Department | Days | Worked | Breaks | Net | Open | Findings (H/M/L) |\n")
	b.WriteString("|---|---|---:|---:|---:|---:|---:|---|\n")
	line := func(r Row) {
		fmt.Fprintf(&b, "| %s | %s | %d | %s | %s | %s | %d | %d/%d/%d |\n",
			mdEscape(r.Name), mdEscape(r.Department), r.DaysWorked,
			timecalc.FormatMinutes(r.RawMinutes), timecalc.FormatMinutes(r.BreakMinutes),
			timecalc.FormatMinutes(r.NetMinutes), r.OpenClockIns,
			r.HighFindings, r.MediumFindings, r.LowFindings)
	}
	for _, r := range s.Rows {
		line(r)
	}
	t := s.Totals()
	t.Name = "**Total**"
	line(t)
	_, err := io.WriteString(w, b.String())
	return err
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// SheetName is the worksheet name used in XLSX output.
const SheetName = "Payroll"

// WriteXLSX writes a single-sheet workbook with a bold header row and a
// totals row.
func WriteXLSX(w io.Writer, s Sheet) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	setRow := func(row int, values []any) error {
		for i, v := range values {
			cell, err := excelize.CoordinatesToCellName(i+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return err
			}
		}
		return nil
	}
	rowValues := func(r Row) []any {
		return []any{
			r.EmployeeID, r.Name, r.Department, r.DaysWorked,
			r.RawMinutes, r.BreakMinutes, r.NetMinutes, timecalc.FormatHHMM(r.NetMinutes),
			r.OpenClockIns, r.HighFindings, r.MediumFindings, r.LowFindings,
		}
	}

	head := make([]any, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := setRow(1, head); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range s.Rows {
		if err := setRow(i+2, rowValues(r)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	totalRow := len(s.Rows) + 2
	if err := setRow(totalRow, rowValues(s.Totals())); err != nil {
		return fmt.Errorf("writing totals: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}
	if err := f.SetCellStyle(SheetName, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("%s%d", lastCol, totalRow), bold); err != nil {
		return fmt.Errorf("styling totals: %w", err)
	}
	if err := f.SetColWidth(SheetName, "B", "C", 24); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
