package roster

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/tick/internal/model"
)

// ErrUnsupportedFormat is returned for roster files that are not CSV, XLSX,
// JSON or YAML.
var ErrUnsupportedFormat = errors.New("unsupported roster format")

// Format names an import file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// ImportFile reads employees from path, choosing the decoder by extension.
func ImportFile(path string) ([]model.Employee, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening roster file: %w", err)
	}
	defer f.Close()
	return Import(f, format)
}

// Import decodes employees from r. Every record is tagged with source
// "import" unless it already names one.
func Import(r io.Reader, format Format) ([]model.Employee, error) {
	var (
		employees []model.Employee
		err       error
	)
	switch format {
	case FormatCSV:
		employees, err = decodeCSV(r)
	case FormatXLSX:
		employees, err = decodeXLSX(r)
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&employees)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&employees)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s roster: %w", format, err)
	}

	out := make([]model.Employee, 0, len(employees))
	for i, e := range employees {
		e.ID = strings.TrimSpace(e.ID)
		e.Name = strings.TrimSpace(e.Name)
		if e.ID == "" {
			return nil, fmt.Errorf("roster record %d has no id", i+1)
		}
		if e.Source == "" {
			e.Source = "import"
		}
		out = append(out, e)
	}
	return out, nil
}

// decodeCSV reads a file with a header row.
func decodeCSV(r io.Reader) ([]model.Employee, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	return decodeRows(records)
}

// decodeXLSX reads the first worksheet of a workbook exported from an HR
// system; the layout matches the CSV one.
func decodeXLSX(r io.Reader) ([]model.Employee, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("no worksheet found")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	return decodeRows(rows)
}

// decodeRows maps a header row plus records to employees. Columns are
// matched by name (id, name, department, email); unknown columns are
// ignored and blank rows skipped.
func decodeRows(rows [][]string) ([]model.Employee, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["id"]; !ok {
		return nil, fmt.Errorf("header has no id column")
	}
	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var employees []model.Employee
	for _, rec := range rows[1:] {
		if strings.TrimSpace(strings.Join(rec, "")) == "" {
			continue
		}
		employees = append(employees, model.Employee{
			ID:         field(rec, "id"),
			Name:       field(rec, "name"),
			Department: field(rec, "department"),
			Email:      field(rec, "email"),
		})
	}
	return employees, nil
}
