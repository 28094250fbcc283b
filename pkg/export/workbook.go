package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet describes one worksheet of tabular export content.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// WorkbookExporter renders sheets into an xlsx workbook.
type WorkbookExporter struct{}

// NewWorkbookExporter builds a workbook exporter.
func NewWorkbookExporter() *WorkbookExporter {
	return &WorkbookExporter{}
}

// Render produces xlsx bytes containing one worksheet per sheet.
func (e *WorkbookExporter) Render(sheets []Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook requires at least one sheet")
	}

	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	used := make(map[string]bool, len(sheets))
	for i, sheet := range sheets {
		base := sanitizeSheetName(sheet.Name)
		if base == "" {
			base = fmt.Sprintf("Sheet%d", i+1)
		}
		name := base
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s %d", truncateSheetName(base, 28), n)
		}
		used[name] = true
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return nil, fmt.Errorf("rename sheet %q: %w", name, err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return nil, fmt.Errorf("add sheet %q: %w", name, err)
			}
		}

		if err := writeRow(f, name, 1, sheet.Headers); err != nil {
			return nil, err
		}
		for r, row := range sheet.Rows {
			if err := writeRow(f, name, r+2, row); err != nil {
				return nil, err
			}
		}

		// Widen columns so idea titles stay readable without manual resizing.
		if len(sheet.Headers) > 0 {
			last, err := excelize.ColumnNumberToName(len(sheet.Headers))
			if err == nil {
				_ = f.SetColWidth(name, "A", last, 24)
			}
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetNameReplacer drops the characters excelize rejects in worksheet names.
var sheetNameReplacer = strings.NewReplacer(
	"[", "(",
	"]", ")",
	":", "-",
	"*", "-",
	"?", "-",
	"/", "-",
	"\\", "-",
)

// sanitizeSheetName makes a semester or academic year name safe for use as a
// worksheet name. Worksheet names cannot exceed 31 characters or contain
// []:*?/\ characters.
func sanitizeSheetName(raw string) string {
	name := strings.TrimSpace(sheetNameReplacer.Replace(raw))
	return truncateSheetName(name, 31)
}

func truncateSheetName(name string, limit int) string {
	runes := []rune(name)
	if len(runes) <= limit {
		return name
	}
	return strings.TrimSpace(string(runes[:limit]))
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	if len(values) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("resolve cell for row %d: %w", rowNum, err)
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("write row %d on %q: %w", rowNum, sheet, err)
	}
	return nil
}
