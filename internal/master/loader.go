package master

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Reader yields master rows in file order and returns io.EOF when done
type Reader interface {
	Read() (Row, error)
	Close() error
}

// Open opens a master table (CSV or Parquet), detected by extension.
func Open(path string) (Reader, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".csv":
		return openCSV(path)
	case ".parquet":
		return openParquet(path)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .csv, .parquet)", ext)
	}
}

// CSVReader reads master rows from CSV
type CSVReader struct {
	file   *os.File
	reader *csv.Reader
	line   int
}

// openCSV opens a CSV master table and consumes its header row
func openCSV(path string) (*CSVReader, error) {
	slog.Debug("Opening CSV file", "path", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open master file: %w", err)
	}

	r := NewCSVReader(file)
	r.file = file
	if _, err := r.reader.Read(); err != nil {
		file.Close()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("master file %s is empty", path)
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	r.line = 1

	return r, nil
}

// NewCSVReader reads rows from a CSV stream that has no header row.
func NewCSVReader(r io.Reader) *CSVReader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return &CSVReader{reader: reader}
}

func (r *CSVReader) Read() (Row, error) {
	record, err := r.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to parse CSV at line %d: %w", r.line+1, err)
	}
	r.line++
	return Row(record), nil
}

func (r *CSVReader) Close() error {
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}

type parquetReader struct {
	file   *os.File
	reader *parquet.GenericReader[Record]
	batch  []Record
	pos    int
	n      int
	done   bool
}

// openParquet opens a Parquet master table
func openParquet(path string) (*parquetReader, error) {
	slog.Debug("Opening Parquet file", "path", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened successfully", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	return &parquetReader{
		file:   file,
		reader: parquet.NewGenericReader[Record](pf),
		batch:  make([]Record, 128), // Read in batches
	}, nil
}

func (r *parquetReader) Read() (Row, error) {
	for r.pos >= r.n {
		if r.done {
			return nil, io.EOF
		}
		n, err := r.reader.Read(r.batch)
		r.pos, r.n = 0, n
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("failed to read parquet rows: %w", err)
			}
			r.done = true
		}
	}
	rec := r.batch[r.pos]
	r.pos++
	return rec.Row(), nil
}

func (r *parquetReader) Close() error {
	if err := r.reader.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}
