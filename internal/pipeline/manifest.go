package pipeline

import (
	"fmt"
	"os"

	"github.com/lehigh-university-libraries/clippings/internal/master"
	"github.com/lehigh-university-libraries/clippings/internal/site"
)

// ManifestFile lists one master row per clipping in the output root
const ManifestFile = "master.csv"

// ManifestColumns is the manifest header: the master columns, with the
// filename holding the clipping identifier, plus the clipping directory.
var ManifestColumns = append(append([]string{}, master.Columns...), "clipping")

type manifest struct {
	writer *master.CSVWriter
}

// openManifest appends to the manifest, writing the header only when the
// file is new.
func openManifest(path string) (*manifest, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat manifest: %w", err)
	}

	var header []string
	if info.Size() == 0 {
		header = ManifestColumns
	}
	w, err := master.NewCSVWriter(file, header)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &manifest{writer: w}, nil
}

func (m *manifest) Add(c site.Clipping, row master.Row) error {
	out := make(master.Row, len(master.Columns), len(ManifestColumns))
	copy(out, row)
	out[master.ColFilename] = string(c.ID)
	out = append(out, c.Name())
	return m.writer.Write(out)
}

func (m *manifest) Close() error {
	return m.writer.Close()
}
