package master

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func readAll(t *testing.T, r Reader) []Row {
	t.Helper()
	var rows []Row
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows
		}
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		rows = append(rows, row)
	}
}

func TestOpenCSV(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "master.csv")

	testData := strings.Join(Columns, ",") + "\n" +
		`britishj,fla-1-2-3-04.tif,1,4,My Title,,,,Jane Doe,Pub,1,2,,1900,Pub Co,London,Jane Doe ; John Roe` + "\n" +
		`conrad,fla-2-1-1-1.jpg,1` + "\n"
	if err := os.WriteFile(path, []byte(testData), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	rows := readAll(t, r)
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}

	first := rows[0]
	if first.Collection() != "britishj" {
		t.Errorf("Expected collection britishj, got %s", first.Collection())
	}
	if first.Filename() != "fla-1-2-3-04.tif" {
		t.Errorf("Expected filename fla-1-2-3-04.tif, got %s", first.Filename())
	}
	if first.Title() != "My Title" {
		t.Errorf("Expected title 'My Title', got %s", first.Title())
	}
	if first.Place() != "London" {
		t.Errorf("Expected place London, got %s", first.Place())
	}
	if !reflect.DeepEqual(first.Subjects(), []string{"Jane Doe", "John Roe"}) {
		t.Errorf("Unexpected subjects: %v", first.Subjects())
	}

	short := rows[1]
	if short.Title() != "" || short.Subjects() != nil {
		t.Errorf("Expected empty cells for short row, got title %q subjects %v", short.Title(), short.Subjects())
	}
}

func TestOpenParquetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.parquet")

	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	want := Row{"russian", "fla-4-1-1-1.tif", "", "2", "Title", "", "", "", "A. Writer", "Journal", "3", "4", "", "1911", "", "Moscow", "Leo Tolstoy"}
	for i := 0; i < 300; i++ {
		if err := w.Write(want); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer r.Close()

	rows := readAll(t, r)
	if len(rows) != 300 {
		t.Fatalf("Expected 300 rows across batches, got %d", len(rows))
	}
	if !reflect.DeepEqual(rows[299], want) {
		t.Errorf("Expected %v, got %v", want, rows[299])
	}
}

func TestOpenUnsupportedFormat(t *testing.T) {
	if _, err := Open("master.xlsx"); err == nil {
		t.Error("Expected error for unsupported format, got nil")
	}
	if _, err := Create(filepath.Join(t.TempDir(), "master.txt")); err == nil {
		t.Error("Expected error for unsupported output format, got nil")
	}
}

func TestOpenNonExistentFile(t *testing.T) {
	if _, err := Open("/nonexistent/path/master.csv"); err == nil {
		t.Error("Expected error for non-existent file, got nil")
	}
	if _, err := Open("/nonexistent/path/master.parquet"); err == nil {
		t.Error("Expected error for non-existent parquet file, got nil")
	}
}

func TestOpenEmptyCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.csv")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	if _, err := Open(path); err == nil {
		t.Error("Expected error for empty master file, got nil")
	}
}

func TestRowSetGrows(t *testing.T) {
	var r Row
	r.Set(ColSubjects, "A ; B")
	if len(r) != len(Columns) {
		t.Errorf("Expected %d columns, got %d", len(Columns), len(r))
	}
	if r.Field(ColSubjects) != "A ; B" {
		t.Errorf("Expected subjects to be set, got %q", r.Field(ColSubjects))
	}
}

func TestTitleFallback(t *testing.T) {
	r := NewRow()
	r[ColDescriptiveTitle] = "Review of Nostromo"
	if r.Title() != "Review of Nostromo" {
		t.Errorf("Expected descriptive title fallback, got %q", r.Title())
	}
}

func TestCSVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := w.Write(Row{"a", "b, with comma"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected header and one row, got %d lines", len(lines))
	}
	if lines[1] != `a,"b, with comma"` {
		t.Errorf("Unexpected row: %s", lines[1])
	}
}
