package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteFile_RoundTrip(t *testing.T) {
	report := Assemble(testInput(t))
	path := filepath.Join(t.TempDir(), "PRJNA979185_metadata.xlsx")

	require.NoError(t, report.WriteFile(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t,
		[]string{SheetMetadata, SheetProject, SheetSamples, SheetRules},
		f.GetSheetList())

	rows, err := f.GetRows(SheetSamples)
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.Equal(t, []string{"run_accession", "biosample", "group", "condition"}, rows[0])
	assert.Equal(t, []string{"SRR001", "SAMN01", "Control", "healthy"}, rows[1])

	summary, err := f.GetRows(SheetProject)
	require.NoError(t, err)
	assert.Equal(t, []string{"field", "value"}, summary[0])
	assert.Equal(t, []string{"bioproject", "PRJNA979185"}, summary[1])
}

func TestWriteFile_EmptySheet(t *testing.T) {
	report := &Report{Sheets: []Sheet{{Name: SheetMetadata}}}
	path := filepath.Join(t.TempDir(), "empty.xlsx")

	require.NoError(t, report.WriteFile(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetMetadata}, f.GetSheetList())
}
