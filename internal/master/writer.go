package master

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Writer appends master rows to a table
type Writer interface {
	Write(Row) error
	Close() error
}

// Create creates a master table (CSV or Parquet), chosen by extension.
// "-" writes CSV to stdout.
func Create(path string) (Writer, error) {
	if path == "-" {
		return NewCSVWriter(nopCloser{os.Stdout}, Columns)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" && ext != ".parquet" {
		return nil, fmt.Errorf("unsupported file format: %s (supported: .csv, .parquet)", ext)
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	if ext == ".parquet" {
		return &ParquetWriter{file: file, writer: parquet.NewGenericWriter[Record](file)}, nil
	}

	w, err := NewCSVWriter(file, Columns)
	if err != nil {
		file.Close()
		return nil, err
	}
	return w, nil
}

// CSVWriter writes rows as CSV after a header
type CSVWriter struct {
	out    io.WriteCloser
	writer *csv.Writer
}

// NewCSVWriter writes header and returns a writer for the rows that follow.
// A nil header appends rows to a table that already has one.
func NewCSVWriter(out io.WriteCloser, header []string) (*CSVWriter, error) {
	w := &CSVWriter{out: out, writer: csv.NewWriter(out)}
	if header == nil {
		return w, nil
	}
	if err := w.writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	return w, nil
}

// Write writes one row and flushes it, so the table stays usable if a
// long run is interrupted.
func (w *CSVWriter) Write(r Row) error {
	if err := w.writer.Write(r); err != nil {
		return err
	}
	w.writer.Flush()
	return w.writer.Error()
}

func (w *CSVWriter) Close() error {
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		w.out.Close()
		return err
	}
	return w.out.Close()
}

// ParquetWriter writes rows as Parquet records
type ParquetWriter struct {
	file   *os.File
	writer *parquet.GenericWriter[Record]
}

func (w *ParquetWriter) Write(r Row) error {
	_, err := w.writer.Write([]Record{RecordFromRow(r)})
	return err
}

func (w *ParquetWriter) Close() error {
	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to finalize parquet: %w", err)
	}
	return w.file.Close()
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
