package authors

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authors.json")
	data := `{"Joseph Conrad": "Q82925", "Jane Doe": null}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(m) != 2 {
		t.Fatalf("Expected 2 authors, got %d", len(m))
	}
	if id, ok := m.Lookup("Joseph Conrad"); !ok || id != "Q82925" {
		t.Errorf("Expected Q82925, got %q (ok=%v)", id, ok)
	}
	if _, ok := m.Lookup("Jane Doe"); ok {
		t.Error("Expected unresolved author to have no id")
	}
	if _, ok := m.Lookup("Nobody"); ok {
		t.Error("Expected unknown author to have no id")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing file, got nil")
	}

	m, err := LoadOrEmpty(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadOrEmpty failed: %v", err)
	}
	if len(m) != 0 {
		t.Errorf("Expected empty mapping, got %v", m)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authors.json")
	if err := os.WriteFile(path, []byte("["), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected error for invalid JSON, got nil")
	}
}

func TestSaveThenLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "authors.json")
	id := "Q5"
	m := Mapping{"Someone": &id, "Unknown": nil}

	if err := m.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got, ok := loaded.Lookup("Someone"); !ok || got != "Q5" {
		t.Errorf("Expected Q5, got %q", got)
	}
	if _, present := loaded["Unknown"]; !present {
		t.Error("Expected unresolved author to be kept as null")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("Expected no leftover temporary files, found %d entries", len(entries))
	}
}
