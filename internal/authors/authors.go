package authors

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/segmentio/encoding/json"
)

// Mapping maps an author's display name to a Wikidata id, or nil when the
// name could not be resolved
type Mapping map[string]*string

// Lookup returns the resolved id for name, if any.
func (m Mapping) Lookup(name string) (string, bool) {
	id, ok := m[name]
	if !ok || id == nil {
		return "", false
	}
	return *id, true
}

// Load reads a mapping file. A missing file is an error.
func Load(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read authors file: %w", err)
	}

	m := make(Mapping)
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse authors file %s: %w", path, err)
	}
	return m, nil
}

// LoadOrEmpty reads a mapping file, returning an empty mapping when the
// file does not exist yet.
func LoadOrEmpty(path string) (Mapping, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return make(Mapping), nil
	}
	return Load(path)
}

// Save writes the mapping as indented JSON, replacing the file atomically.
func (m Mapping) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal authors: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".authors-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write authors file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write authors file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace authors file: %w", err)
	}
	return nil
}
