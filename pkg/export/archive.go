package export

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// ArchiveEntry is a named file placed inside a zip archive.
type ArchiveEntry struct {
	Name string
	Data []byte
}

// ArchiveExporter bundles export artifacts into a zip archive.
type ArchiveExporter struct{}

// NewArchiveExporter builds an archive exporter.
func NewArchiveExporter() *ArchiveExporter {
	return &ArchiveExporter{}
}

// Render produces zip bytes containing every entry.
func (e *ArchiveExporter) Render(entries []ArchiveEntry) ([]byte, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("archive requires at least one entry")
	}

	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, entry := range entries {
		if entry.Name == "" {
			return nil, fmt.Errorf("archive entry requires a name")
		}
		w, err := zw.Create(entry.Name)
		if err != nil {
			return nil, fmt.Errorf("create archive entry %q: %w", entry.Name, err)
		}
		if _, err := w.Write(entry.Data); err != nil {
			return nil, fmt.Errorf("write archive entry %q: %w", entry.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
