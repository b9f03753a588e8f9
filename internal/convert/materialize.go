package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lehigh-university-libraries/clippings/internal/identifier"
)

// DefaultPageWidth is the zero-padding width of page image filenames (001.tif)
const DefaultPageWidth = 3

var (
	// ErrUnparseablePage is returned when no page number can be read from the filename
	ErrUnparseablePage = errors.New("no page number in filename")
	// ErrAlternatePage is returned for "b" scans, which are never published
	ErrAlternatePage = errors.New("alternate page scan skipped")
	// ErrExists is returned when the page image is already in place
	ErrExists = errors.New("page image already exists")
)

// Options configures a Materializer
type Options struct {
	PageWidth   int
	TempDir     string
	DJVUCommand []string
}

// Materializer copies page images into clipping directories, converting
// them to TIFF on the way.
type Materializer struct {
	pageWidth  int
	converters map[Format]Converter
	logger     *slog.Logger
}

// NewMaterializer creates a materializer with the standard converters.
func NewMaterializer(opts Options, logger *slog.Logger) *Materializer {
	width := opts.PageWidth
	if width <= 0 {
		width = DefaultPageWidth
	}
	return &Materializer{
		pageWidth: width,
		converters: map[Format]Converter{
			FormatTIFF: Passthrough{},
			FormatJPEG: JPEGConverter{TempDir: opts.TempDir},
			FormatDJVU: DJVUConverter{Command: opts.DJVUCommand, TempDir: opts.TempDir},
		},
		logger: logger,
	}
}

// PageFilename returns the destination filename for a page number.
func (m *Materializer) PageFilename(number int) string {
	return fmt.Sprintf("%0*d%s", m.pageWidth, number, ArchivalExt)
}

// Materialize places src into destDir under its page-number filename and
// returns the destination path. On any failure destDir is left unchanged.
func (m *Materializer) Materialize(ctx context.Context, src, destDir string) (string, error) {
	page, ok := identifier.ParsePage(src)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnparseablePage, filepath.Base(src))
	}
	if page.Alternate() {
		return "", fmt.Errorf("%w: %s", ErrAlternatePage, filepath.Base(src))
	}

	dest := filepath.Join(destDir, m.PageFilename(page.Number))
	if _, err := os.Stat(dest); err == nil {
		return dest, ErrExists
	}

	format, err := DetectFormat(src)
	if err != nil {
		return "", err
	}
	converter, ok := m.converters[format]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, src)
	}

	source, err := converter.Convert(ctx, src)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := source.Release(); err != nil {
			m.logger.Warn("Failed to remove temporary file", "path", source.Path, "error", err)
		}
	}()

	if err := copyInto(source.Path, dest); err != nil {
		return "", fmt.Errorf("failed to copy %s to %s: %w", src, dest, err)
	}

	if source.Temporary {
		m.logger.Info("Converted image", "src", src, "format", format.String(), "dest", dest)
	} else {
		m.logger.Info("Copied image", "src", src, "dest", dest)
	}

	return dest, nil
}

// copyInto streams src to a hidden temporary file next to dst and renames
// it into place, so dst never exists half written.
func copyInto(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.CreateTemp(filepath.Dir(dst), ".page-*")
	if err != nil {
		return err
	}
	tmpPath := out.Name()

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
