package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/lehigh-university-libraries/clippings/internal/authors"
	"github.com/lehigh-university-libraries/clippings/internal/convert"
	"github.com/lehigh-university-libraries/clippings/internal/index"
	"github.com/lehigh-university-libraries/clippings/internal/site"
)

// LockFile guards an output root against concurrent builds
const LockFile = ".clippings.lock"

var (
	// ErrLocked is returned when another build holds the output root
	ErrLocked = errors.New("output directory is locked by another build")
	// ErrMasterIsManifest is returned when the master table would be
	// appended to as the manifest while it is being read
	ErrMasterIsManifest = errors.New("master table is the output manifest")
)

// Options configures a build
type Options struct {
	// Output is the site root that receives _authors and _clippings
	Output string
	// ImageDirs are searched recursively for page scans
	ImageDirs []string
	// AuthorsPath is the JSON name -> Wikidata id mapping
	AuthorsPath string
	// MasterPath is the table being built from; it may not be the manifest
	MasterPath string
	// Creators maps collection codes to the person who compiled them
	Creators    map[string]string
	PageWidth   int
	DJVUCommand []string
	TempDir     string
}

// Builder turns master rows into the site tree. It owns the output root
// for as long as it is open.
type Builder struct {
	root        string
	mapping     authors.Mapping
	index       index.Index
	allocator   *site.Allocator
	materialize *convert.Materializer
	manifest    *manifest
	lock        *flock.Flock
	logger      *slog.Logger
}

// Open prepares a build: it locks the output root, loads the authors
// mapping, indexes the image directories and reads existing clippings.
// Any failure here means no row has been touched.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*Builder, error) {
	if opts.Output == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if err := checkMaster(opts.MasterPath, filepath.Join(opts.Output, ManifestFile)); err != nil {
		return nil, err
	}

	mapping, err := authors.Load(opts.AuthorsPath)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded authors mapping", "path", opts.AuthorsPath, "count", len(mapping))

	if err := os.MkdirAll(opts.Output, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	lock := flock.New(filepath.Join(opts.Output, LockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock output directory: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, opts.Output)
	}

	b := &Builder{
		root:    opts.Output,
		mapping: mapping,
		lock:    lock,
		logger:  logger,
	}

	if err := b.setup(ctx, opts); err != nil {
		_ = b.Close()
		return nil, err
	}
	return b, nil
}

func (b *Builder) setup(ctx context.Context, opts Options) error {
	idx, _, err := index.Build(ctx, opts.ImageDirs, b.logger)
	if err != nil {
		return fmt.Errorf("failed to index images: %w", err)
	}
	b.index = idx

	b.allocator = site.NewAllocator(b.root, opts.Creators, b.logger)
	existing, err := b.allocator.Load()
	if err != nil {
		return err
	}
	if existing > 0 {
		b.logger.Info("Found clippings from an earlier build", "count", existing)
	}

	b.materialize = convert.NewMaterializer(convert.Options{
		PageWidth:   opts.PageWidth,
		TempDir:     opts.TempDir,
		DJVUCommand: opts.DJVUCommand,
	}, b.logger)

	b.manifest, err = openManifest(filepath.Join(b.root, ManifestFile))
	if err != nil {
		return err
	}
	return nil
}

// checkMaster rejects a master table that is the manifest the build appends to.
func checkMaster(masterPath, manifestPath string) error {
	if masterPath == "" {
		return nil
	}
	masterAbs, err := filepath.Abs(masterPath)
	if err != nil {
		return fmt.Errorf("failed to resolve master path: %w", err)
	}
	manifestAbs, err := filepath.Abs(manifestPath)
	if err != nil {
		return fmt.Errorf("failed to resolve output path: %w", err)
	}
	if masterAbs == manifestAbs {
		return fmt.Errorf("%w: %s", ErrMasterIsManifest, masterPath)
	}

	// catches symlinks and hard links to the same file
	masterInfo, err := os.Stat(masterAbs)
	if err != nil {
		return nil
	}
	if manifestInfo, err := os.Stat(manifestAbs); err == nil && os.SameFile(masterInfo, manifestInfo) {
		return fmt.Errorf("%w: %s", ErrMasterIsManifest, masterPath)
	}
	return nil
}

// Close flushes the manifest and releases the output root.
func (b *Builder) Close() error {
	var errs []error
	if b.manifest != nil {
		errs = append(errs, b.manifest.Close())
	}
	if b.lock != nil {
		errs = append(errs, b.lock.Unlock())
	}
	return errors.Join(errs...)
}
