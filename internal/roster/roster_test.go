package roster_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Tiliavir/tick/internal/model"
	"github.com/Tiliavir/tick/internal/roster"
)

func TestRosterLookup(t *testing.T) {
	r := roster.New([]model.Employee{
		{ID: "E2", Name: "grace"},
		{ID: " E1 ", Name: "Ada"},
		{ID: "", Name: "nobody"},
	})
	assert.Equal(t, 2, r.Len())

	e, ok := r.Lookup("E1")
	require.True(t, ok)
	assert.Equal(t, "Ada", e.Name)
	assert.Equal(t, "Ada", r.Label("E1"))
	assert.Equal(t, "Unknown (E9)", r.Label("E9"))
	assert.Equal(t, model.Employee{}, r.Get("E9"))

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "E1", all[0].ID)
	assert.Equal(t, "E2", all[1].ID)
}

func TestNilRoster(t *testing.T) {
	var r *roster.Roster
	_, ok := r.Lookup("E1")
	assert.False(t, ok)
	assert.Equal(t, "Unknown (E1)", r.Label("E1"))
	assert.Empty(t, r.All())
}

func TestMerge(t *testing.T) {
	r := roster.New([]model.Employee{{ID: "E1", Name: "Ada", Department: "Ops"}})
	res := r.Merge([]model.Employee{
		{ID: "E1", Department: "Eng"},
		{ID: "E2", Name: "Grace"},
		{ID: "E2", Name: "Grace"},
		{ID: ""},
	})
	assert.Equal(t, roster.MergeResult{Added: 1, Updated: 1, Unchanged: 1}, res)

	e, _ := r.Lookup("E1")
	assert.Equal(t, "Ada", e.Name)
	assert.Equal(t, "Eng", e.Department)
}

func TestImportCSV(t *testing.T) {
	in := "Name, ID ,department,email,extra\nAda,E1,Ops,ada@example.com,x\n\"Hopper, Grace\",E2,Eng,,\n"
	got, err := roster.Import(strings.NewReader(in), roster.FormatCSV)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.Employee{ID: "E1", Name: "Ada", Department: "Ops", Email: "ada@example.com", Source: "import"}, got[0])
	assert.Equal(t, "Hopper, Grace", got[1].Name)
}

func TestImportCSVRequiresID(t *testing.T) {
	_, err := roster.Import(strings.NewReader("name\nAda\n"), roster.FormatCSV)
	assert.Error(t, err)
}

func TestImportJSONAndYAML(t *testing.T) {
	js := `[{"id":"E1","name":"Ada","department":"Ops","source":"hr"}]`
	got, err := roster.Import(strings.NewReader(js), roster.FormatJSON)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "hr", got[0].Source)

	ym := "- id: E1\n  name: Ada\n- id: E2\n  name: Grace\n  department: Eng\n"
	got, err = roster.Import(strings.NewReader(ym), roster.FormatYAML)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Eng", got[1].Department)
	assert.Equal(t, "import", got[1].Source)

	got, err = roster.Import(strings.NewReader(""), roster.FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestImportRejectsMissingID(t *testing.T) {
	_, err := roster.Import(strings.NewReader(`[{"name":"Ada"}]`), roster.FormatJSON)
	assert.Error(t, err)
}

func TestImportFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "staff.yml")
	require.NoError(t, os.WriteFile(path, []byte("- id: E1\n  name: Ada\n"), 0o600))

	got, err := roster.ImportFile(path)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = roster.ImportFile(filepath.Join(dir, "staff.xml"))
	assert.ErrorIs(t, err, roster.ErrUnsupportedFormat)
}

func TestImportXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"ID", "Name", "Department"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"E1", "Ada", "Ops"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]any{1042, "Grace", "Eng"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	got, err := roster.Import(&buf, roster.FormatXLSX)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.Employee{ID: "E1", Name: "Ada", Department: "Ops", Source: "import"}, got[0])
	assert.Equal(t, "1042", got[1].ID)
}
