package site

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/clippings/internal/authors"
)

// AuthorsDir holds one directory per author
const AuthorsDir = "_authors"

// ErrMissingName is returned for empty or placeholder author names
var ErrMissingName = errors.New("missing author name")

// Author is a materialized author page
type Author struct {
	Name     string
	Slug     string
	Dir      string
	Wikidata string
}

// placeholders are values the spreadsheets use for "no author"
var placeholders = map[string]bool{"": true, "-": true, "--": true, "?": true}

// EnsureAuthor creates the author's directory and page unless the directory
// already exists. created reports whether anything was written.
func EnsureAuthor(root, name string, lookup authors.Mapping) (author Author, created bool, err error) {
	name = strings.TrimSpace(name)
	if placeholders[name] {
		return Author{}, false, fmt.Errorf("%w: %q", ErrMissingName, name)
	}

	slug := Slug(name)
	if slug == "" {
		return Author{}, false, fmt.Errorf("%w: %q has no usable characters", ErrMissingName, name)
	}

	author = Author{
		Name: name,
		Slug: slug,
		Dir:  filepath.Join(root, AuthorsDir, slug),
	}
	fm := AuthorFrontMatter{Layout: "author", Name: name}
	if id, ok := lookup.Lookup(name); ok {
		author.Wikidata = id
		fm.Wikidata = &id
	}

	if err := os.MkdirAll(filepath.Dir(author.Dir), 0755); err != nil {
		return author, false, fmt.Errorf("failed to create authors directory: %w", err)
	}
	if err := os.Mkdir(author.Dir, 0755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return author, false, nil
		}
		return author, false, fmt.Errorf("failed to create author directory: %w", err)
	}

	if err := writeFrontMatter(filepath.Join(author.Dir, IndexFile), fm); err != nil {
		os.Remove(author.Dir)
		return author, false, fmt.Errorf("failed to write author page: %w", err)
	}

	return author, true, nil
}
