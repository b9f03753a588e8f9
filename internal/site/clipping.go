package site

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/lehigh-university-libraries/clippings/internal/identifier"
	"github.com/lehigh-university-libraries/clippings/internal/master"
)

// ClippingsDir holds one numbered directory per clipping
const ClippingsDir = "_clippings"

// SequenceWidth is the zero-padded width of clipping directory names
const SequenceWidth = 5

// ErrNoIdentifier is returned for rows whose filename carries no clipping identifier
var ErrNoIdentifier = errors.New("no clipping identifier")

// Clipping is an allocated clipping directory
type Clipping struct {
	ID       identifier.ClippingID
	Sequence int
	Dir      string
}

// Name is the directory name, e.g. "00042".
func (c Clipping) Name() string {
	return filepath.Base(c.Dir)
}

// Allocator hands out clipping directories. It remembers every clipping
// it has resolved, so rows for later pages of the same clipping reuse the
// directory without touching the filesystem.
type Allocator struct {
	dir       string
	creators  map[string]string
	clippings map[identifier.ClippingID]Clipping
	logger    *slog.Logger
}

// NewAllocator creates an allocator for the clippings under root.
// creators maps collection codes to the person who compiled them.
func NewAllocator(root string, creators map[string]string, logger *slog.Logger) *Allocator {
	return &Allocator{
		dir:       filepath.Join(root, ClippingsDir),
		creators:  creators,
		clippings: make(map[identifier.ClippingID]Clipping),
		logger:    logger,
	}
}

// Get returns a clipping resolved earlier in this run or read by Load.
func (a *Allocator) Get(id identifier.ClippingID) (Clipping, bool) {
	c, ok := a.clippings[id]
	return c, ok
}

// Len returns the number of known clippings.
func (a *Allocator) Len() int {
	return len(a.clippings)
}

// Load reads the identifiers of clippings written by earlier runs so they
// are reused instead of allocated again.
func (a *Allocator) Load() (int, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read clippings directory: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		seq, ok := parseSequence(entry)
		if !ok {
			continue
		}
		dir := filepath.Join(a.dir, entry.Name())

		var fm ClippingFrontMatter
		if err := ReadFrontMatter(filepath.Join(dir, IndexFile), &fm); err != nil {
			a.logger.Warn("Unable to read existing clipping", "dir", dir, "error", err)
			continue
		}
		if fm.Identifier == "" {
			a.logger.Warn("Existing clipping has no identifier", "dir", dir)
			continue
		}

		id := identifier.ClippingID(fm.Identifier)
		if prev, dup := a.clippings[id]; dup {
			a.logger.Warn("Duplicate clipping identifier", "id", id, "kept", prev.Dir, "ignored", dir)
			continue
		}
		a.clippings[id] = Clipping{ID: id, Sequence: seq, Dir: dir}
		loaded++
	}

	return loaded, nil
}

// Resolve returns the clipping directory for row, allocating the next
// sequence number and writing the clipping page the first time the
// clipping is seen.
func (a *Allocator) Resolve(row master.Row) (Clipping, bool, error) {
	id, ok := identifier.DeriveClippingID(row.Filename())
	if !ok {
		return Clipping{}, false, fmt.Errorf("%w in %q", ErrNoIdentifier, row.Filename())
	}

	if c, ok := a.clippings[id]; ok {
		return c, false, nil
	}

	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return Clipping{}, false, fmt.Errorf("failed to create clippings directory: %w", err)
	}

	next, err := a.nextSequence()
	if err != nil {
		return Clipping{}, false, err
	}

	c := Clipping{ID: id}
	for seq := next; ; seq++ {
		dir := filepath.Join(a.dir, fmt.Sprintf("%0*d", SequenceWidth, seq))
		err := os.Mkdir(dir, 0755)
		if err == nil {
			c.Sequence, c.Dir = seq, dir
			break
		}
		if !errors.Is(err, fs.ErrExist) {
			return Clipping{}, false, fmt.Errorf("failed to create clipping directory: %w", err)
		}
		a.logger.Warn("Clipping directory appeared during allocation", "dir", dir)
	}

	if row.Title() == "" {
		a.logger.Warn("Clipping has no title", "id", id, "dir", c.Dir)
	}

	if err := writeFrontMatter(filepath.Join(c.Dir, IndexFile), a.frontMatter(id, row)); err != nil {
		os.Remove(c.Dir)
		return Clipping{}, false, fmt.Errorf("failed to write clipping page: %w", err)
	}

	a.clippings[id] = c
	return c, true, nil
}

func (a *Allocator) frontMatter(id identifier.ClippingID, row master.Row) ClippingFrontMatter {
	subjects := row.Subjects()
	if subjects == nil {
		subjects = []string{}
	}
	return ClippingFrontMatter{
		Layout:      "clipping",
		Identifier:  string(id),
		Title:       row.Title(),
		Author:      row.Author(),
		Publication: row.Publication(),
		Volume:      row.Volume(),
		Issue:       row.Issue(),
		Pages:       row.Pages(),
		Year:        row.Year(),
		Publisher:   row.Publisher(),
		Place:       row.Place(),
		Subjects:    subjects,
		Collection:  row.Collection(),
		Creator:     a.creators[row.Collection()],
	}
}

// nextSequence returns one more than the highest numbered clipping
// directory on disk, or 1 when there are none.
func (a *Allocator) nextSequence() (int, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list clippings: %w", err)
	}

	highest := 0
	for _, entry := range entries {
		if seq, ok := parseSequence(entry); ok && seq > highest {
			highest = seq
		}
	}
	return highest + 1, nil
}

func parseSequence(entry fs.DirEntry) (int, bool) {
	if !entry.IsDir() {
		return 0, false
	}
	seq, err := strconv.Atoi(entry.Name())
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}
