package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWorkbookExporterRender(t *testing.T) {
	exporter := NewWorkbookExporter()

	payload, err := exporter.Render([]Sheet{
		{
			Name:    "Fall 2025",
			Headers: []string{"Title", "Author"},
			Rows:    [][]string{{"Remote lab access", "Dewi"}},
		},
		{
			Name:    "Spring 2026",
			Headers: []string{"Title", "Author"},
		},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	assert.Equal(t, []string{"Fall 2025", "Spring 2026"}, f.GetSheetList())

	title, err := f.GetCellValue("Fall 2025", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Remote lab access", title)
}

func TestWorkbookExporterSanitizesSheetNames(t *testing.T) {
	exporter := NewWorkbookExporter()

	payload, err := exporter.Render([]Sheet{
		{
			Name:    "Semester 1/2 [Pilot]: Innovation Drive 2025?",
			Headers: []string{"Title"},
		},
		{
			Name:    "",
			Headers: []string{"Title"},
		},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	names := f.GetSheetList()
	require.Len(t, names, 2)
	assert.Equal(t, "Semester 1-2 (Pilot)- Innovatio", names[0])
	assert.Equal(t, "Sheet2", names[1])
	for _, name := range names {
		assert.LessOrEqual(t, len([]rune(name)), 31)
		assert.NotContains(t, name, "/")
		assert.NotContains(t, name, ":")
	}
}

func TestWorkbookExporterDisambiguatesDuplicates(t *testing.T) {
	exporter := NewWorkbookExporter()

	payload, err := exporter.Render([]Sheet{
		{Name: "Fall 2025", Headers: []string{"Title"}},
		{Name: "Fall 2025", Headers: []string{"Title"}},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	assert.Equal(t, []string{"Fall 2025", "Fall 2025 2"}, f.GetSheetList())
}

func TestWorkbookExporterRequiresSheets(t *testing.T) {
	exporter := NewWorkbookExporter()

	_, err := exporter.Render(nil)
	require.Error(t, err)
}
