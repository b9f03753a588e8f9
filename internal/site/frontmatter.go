package site

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// IndexFile is the page file the site generator renders for each directory
const IndexFile = "index.html"

const delimiter = "---\n"

// ErrNoFrontMatter is returned when a page file doesn't start with front matter
var ErrNoFrontMatter = errors.New("no front matter")

// ClippingFrontMatter is the metadata header of a clipping page
type ClippingFrontMatter struct {
	Layout      string   `yaml:"layout"`
	Identifier  string   `yaml:"identifier"`
	Title       string   `yaml:"title"`
	Author      string   `yaml:"author"`
	Publication string   `yaml:"publication"`
	Volume      string   `yaml:"volume"`
	Issue       string   `yaml:"issue"`
	Pages       string   `yaml:"pages"`
	Year        string   `yaml:"year"`
	Publisher   string   `yaml:"publisher"`
	Place       string   `yaml:"place_of_publication"`
	Subjects    []string `yaml:"subjects"`
	Collection  string   `yaml:"collection"`
	Creator     string   `yaml:"creator"`
}

// AuthorFrontMatter is the metadata header of an author page
type AuthorFrontMatter struct {
	Layout   string  `yaml:"layout"`
	Name     string  `yaml:"name"`
	Wikidata *string `yaml:"wikidata"`
}

// writeFrontMatter creates path containing only the front matter for v.
// It fails if path already exists.
func writeFrontMatter(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(delimiter)
	buf.Write(data)
	buf.WriteString(delimiter)

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := file.Write(buf.Bytes()); err != nil {
		file.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadFrontMatter decodes the front matter block at the top of path into v.
func ReadFrontMatter(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(data, []byte(delimiter)) {
		return fmt.Errorf("%w: %s", ErrNoFrontMatter, path)
	}
	body := data[len(delimiter):]

	end := bytes.Index(body, []byte("\n"+delimiter))
	if end < 0 {
		return fmt.Errorf("%w: unterminated block in %s", ErrNoFrontMatter, path)
	}

	if err := yaml.Unmarshal(body[:end+1], v); err != nil {
		return fmt.Errorf("failed to parse front matter in %s: %w", path, err)
	}
	return nil
}
