package site

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/clippings/internal/authors"
	"github.com/lehigh-university-libraries/clippings/internal/master"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRow(filename, title string) master.Row {
	return master.Row{"britishj", filename, "1", "4", title, "", "", "", "Jane Doe", "Pub", "1", "2", "", "1900", "Pub Co", "London", "Jane Doe ; Joseph Conrad"}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Jane Doe", "jane-doe"},
		{"Conrad, Joseph", "conrad-joseph"},
		{"O'Casey, Sean", "ocasey-sean"},
		{"W. B. Yeats", "w-b-yeats"},
		{"Lady Gregory; Augusta", "lady-gregory-augusta"},
		{"Tolstoy: Leo -- Count", "tolstoy-leo-count"},
		{"  Who?  ", "who"},
		{`"Anon"`, "anon"},
		{"../../etc", "etc"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Slug(tt.input); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestEnsureAuthorCreatesPage(t *testing.T) {
	root := t.TempDir()
	id := "Q82925"
	mapping := authors.Mapping{"Joseph Conrad": &id, "Jane Doe": nil}

	author, created, err := EnsureAuthor(root, "Joseph Conrad", mapping)
	if err != nil {
		t.Fatalf("EnsureAuthor failed: %v", err)
	}
	if !created {
		t.Error("Expected author to be created")
	}
	if author.Dir != filepath.Join(root, "_authors", "joseph-conrad") {
		t.Errorf("Unexpected author dir %s", author.Dir)
	}

	var fm AuthorFrontMatter
	if err := ReadFrontMatter(filepath.Join(author.Dir, "index.html"), &fm); err != nil {
		t.Fatalf("ReadFrontMatter failed: %v", err)
	}
	if fm.Layout != "author" || fm.Name != "Joseph Conrad" {
		t.Errorf("Unexpected front matter %+v", fm)
	}
	if fm.Wikidata == nil || *fm.Wikidata != "Q82925" {
		t.Errorf("Expected wikidata Q82925, got %v", fm.Wikidata)
	}

	unresolved, _, err := EnsureAuthor(root, "Jane Doe", mapping)
	if err != nil {
		t.Fatalf("EnsureAuthor failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(unresolved.Dir, "index.html"))
	if err != nil {
		t.Fatalf("Failed to read author page: %v", err)
	}
	if !strings.Contains(string(data), "wikidata: null") {
		t.Errorf("Expected null wikidata for unresolved author, got:\n%s", data)
	}
}

func TestEnsureAuthorIsIdempotent(t *testing.T) {
	root := t.TempDir()

	author, _, err := EnsureAuthor(root, "Jane Doe", nil)
	if err != nil {
		t.Fatalf("EnsureAuthor failed: %v", err)
	}
	page := filepath.Join(author.Dir, "index.html")
	if err := os.WriteFile(page, []byte("edited by hand"), 0644); err != nil {
		t.Fatalf("Failed to edit page: %v", err)
	}

	_, created, err := EnsureAuthor(root, "jane doe", nil)
	if err != nil {
		t.Fatalf("EnsureAuthor failed: %v", err)
	}
	if created {
		t.Error("Expected existing author not to be recreated")
	}
	data, _ := os.ReadFile(page)
	if string(data) != "edited by hand" {
		t.Errorf("Expected author page to be left alone, got %q", data)
	}
}

func TestEnsureAuthorRejectsPlaceholders(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"", "  ", "-", "--", "?", "..."} {
		if _, _, err := EnsureAuthor(root, name, nil); !errors.Is(err, ErrMissingName) {
			t.Errorf("%q: expected ErrMissingName, got %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "_authors")); !os.IsNotExist(err) {
		t.Error("Expected no authors directory to be created")
	}
}

func TestAllocatorIsGapless(t *testing.T) {
	root := t.TempDir()
	a := NewAllocator(root, nil, testLogger())

	for i := 1; i <= 12; i++ {
		c, created, err := a.Resolve(testRow(fmt.Sprintf("fla-1-2-%d-1.tif", i), "Title"))
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if !created {
			t.Errorf("Expected clipping %d to be created", i)
		}
		if c.Sequence != i {
			t.Errorf("Expected sequence %d, got %d", i, c.Sequence)
		}
		if c.Name() != fmt.Sprintf("%05d", i) {
			t.Errorf("Expected directory %05d, got %s", i, c.Name())
		}
	}

	entries, err := os.ReadDir(filepath.Join(root, "_clippings"))
	if err != nil {
		t.Fatalf("Failed to list clippings: %v", err)
	}
	if len(entries) != 12 {
		t.Errorf("Expected 12 clipping directories, got %d", len(entries))
	}
}

func TestAllocatorReusesClippingForLaterPages(t *testing.T) {
	root := t.TempDir()
	a := NewAllocator(root, nil, testLogger())

	first, _, err := a.Resolve(testRow("fla-1-2-3-1.tif", "Title"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	// cached clippings are served without touching the filesystem
	if err := os.RemoveAll(filepath.Join(root, "_clippings")); err != nil {
		t.Fatalf("Failed to remove clippings: %v", err)
	}

	second, created, err := a.Resolve(testRow("fla-1-2-3-2.jpg", "Different Title"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if created {
		t.Error("Expected second page to reuse the clipping")
	}
	if second != first {
		t.Errorf("Expected %+v, got %+v", first, second)
	}
}

func TestAllocatorContinuesAfterExistingDirectories(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "_clippings")
	for _, name := range []string{"00002", "00007", "notes"} {
		if err := os.MkdirAll(filepath.Join(dir, name), 0755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "00009"), []byte("a file, not a clipping"), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}

	a := NewAllocator(root, nil, testLogger())
	c, _, err := a.Resolve(testRow("fla-1-2-3-1.tif", "Title"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if c.Sequence != 8 {
		t.Errorf("Expected sequence 8, got %d", c.Sequence)
	}

	// 00009 is taken by a file, so the next allocation skips past it
	c, _, err = a.Resolve(testRow("fla-1-2-4-1.tif", "Title"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if c.Sequence != 10 {
		t.Errorf("Expected sequence 10, got %d", c.Sequence)
	}
}

func TestAllocatorWritesFrontMatter(t *testing.T) {
	root := t.TempDir()
	a := NewAllocator(root, map[string]string{"britishj": "Jennie"}, testLogger())

	c, _, err := a.Resolve(testRow("fla-1-2-3-04.tif", "My Title"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	page := filepath.Join(c.Dir, "index.html")
	data, err := os.ReadFile(page)
	if err != nil {
		t.Fatalf("Failed to read clipping page: %v", err)
	}
	if !strings.HasPrefix(string(data), "---\n") || !strings.Contains(string(data), "title: My Title\n") {
		t.Errorf("Unexpected clipping page:\n%s", data)
	}

	var fm ClippingFrontMatter
	if err := ReadFrontMatter(page, &fm); err != nil {
		t.Fatalf("ReadFrontMatter failed: %v", err)
	}
	expected := ClippingFrontMatter{
		Layout:      "clipping",
		Identifier:  "fla-1-2-3",
		Title:       "My Title",
		Author:      "Jane Doe",
		Publication: "Pub",
		Volume:      "1",
		Issue:       "2",
		Pages:       "4",
		Year:        "1900",
		Publisher:   "Pub Co",
		Place:       "London",
		Subjects:    []string{"Jane Doe", "Joseph Conrad"},
		Collection:  "britishj",
		Creator:     "Jennie",
	}
	if !reflect.DeepEqual(fm, expected) {
		t.Errorf("Expected %+v, got %+v", expected, fm)
	}
}

func TestAllocatorRejectsRowsWithoutIdentifier(t *testing.T) {
	root := t.TempDir()
	a := NewAllocator(root, nil, testLogger())

	for _, filename := range []string{"", "scan-04.tif", "fla-1-2.tif"} {
		if _, _, err := a.Resolve(testRow(filename, "Title")); !errors.Is(err, ErrNoIdentifier) {
			t.Errorf("%q: expected ErrNoIdentifier, got %v", filename, err)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "_clippings")); !os.IsNotExist(err) {
		t.Error("Expected no clippings directory to be created")
	}
}

func TestAllocatorLoadReusesEarlierRun(t *testing.T) {
	root := t.TempDir()

	first := NewAllocator(root, nil, testLogger())
	original, _, err := first.Resolve(testRow("fla-1-2-3-1.tif", "Title"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if _, _, err := first.Resolve(testRow("fla-1-2-4-1.tif", "Other")); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	second := NewAllocator(root, nil, testLogger())
	n, err := second.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 clippings loaded, got %d", n)
	}

	again, created, err := second.Resolve(testRow("fla-1-2-3-2.tif", "Title"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if created || again != original {
		t.Errorf("Expected %+v to be reused, got %+v (created=%v)", original, again, created)
	}

	fresh, _, err := second.Resolve(testRow("fla-1-2-5-1.tif", "New"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if fresh.Sequence != 3 {
		t.Errorf("Expected sequence 3, got %d", fresh.Sequence)
	}
}

func TestAllocatorLoadEmptyRoot(t *testing.T) {
	a := NewAllocator(t.TempDir(), nil, testLogger())
	n, err := a.Load()
	if err != nil || n != 0 {
		t.Errorf("Expected nothing loaded, got %d (err %v)", n, err)
	}
}

func TestReadFrontMatterWithoutBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	if err := os.WriteFile(path, []byte("<html></html>"), 0644); err != nil {
		t.Fatalf("Failed to write page: %v", err)
	}
	var fm ClippingFrontMatter
	if err := ReadFrontMatter(path, &fm); !errors.Is(err, ErrNoFrontMatter) {
		t.Errorf("Expected ErrNoFrontMatter, got %v", err)
	}
}
