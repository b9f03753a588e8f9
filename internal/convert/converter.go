package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/jpeg"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/image/tiff"
)

var (
	// ErrConversion is returned when a source cannot be turned into TIFF
	ErrConversion = errors.New("conversion failed")
	// ErrUnsupportedFormat is returned for sources that are not TIFF, JPEG or DJVU
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// Source is a TIFF file ready to be copied into place. Temporary sources
// were produced by a conversion and must be removed after the copy.
type Source struct {
	Path      string
	Temporary bool
}

// Release removes the source if it was produced by a conversion.
func (s Source) Release() error {
	if !s.Temporary || s.Path == "" {
		return nil
	}
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove temporary file %s: %w", s.Path, err)
	}
	return nil
}

// Converter produces a TIFF source for one input file
type Converter interface {
	Convert(ctx context.Context, src string) (Source, error)
}

// Passthrough serves TIFF files as they are.
type Passthrough struct{}

func (Passthrough) Convert(_ context.Context, src string) (Source, error) {
	return Source{Path: src}, nil
}

// JPEGConverter re-encodes JPEG scans as deflate-compressed TIFF.
type JPEGConverter struct {
	TempDir string
}

func (c JPEGConverter) Convert(ctx context.Context, src string) (Source, error) {
	in, err := os.Open(src)
	if err != nil {
		return Source{}, fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	img, err := jpeg.Decode(in)
	if err != nil {
		return Source{}, fmt.Errorf("%w: decode %s: %v", ErrConversion, src, err)
	}
	if err := ctx.Err(); err != nil {
		return Source{}, err
	}

	out, err := os.CreateTemp(c.TempDir, "clippings-*.tif")
	if err != nil {
		return Source{}, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmp := Source{Path: out.Name(), Temporary: true}

	if err := tiff.Encode(out, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true}); err != nil {
		_ = out.Close()
		_ = tmp.Release()
		return Source{}, fmt.Errorf("%w: encode %s: %v", ErrConversion, src, err)
	}
	if err := out.Close(); err != nil {
		_ = tmp.Release()
		return Source{}, fmt.Errorf("failed to close temporary file: %w", err)
	}

	return tmp, nil
}

// DefaultDJVUCommand renders the first page of a DJVU document as TIFF
var DefaultDJVUCommand = []string{"ddjvu", "-format=tiff", "-page=1"}

// DJVUConverter shells out to an external renderer. The source and
// destination paths are appended to Command.
type DJVUConverter struct {
	Command []string
	TempDir string
}

func (c DJVUConverter) Convert(ctx context.Context, src string) (Source, error) {
	command := c.Command
	if len(command) == 0 {
		command = DefaultDJVUCommand
	}

	out, err := os.CreateTemp(c.TempDir, "clippings-*.tif")
	if err != nil {
		return Source{}, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmp := Source{Path: out.Name(), Temporary: true}
	if err := out.Close(); err != nil {
		_ = tmp.Release()
		return Source{}, fmt.Errorf("failed to close temporary file: %w", err)
	}

	args := append(append([]string{}, command[1:]...), src, tmp.Path)
	cmd := exec.CommandContext(ctx, command[0], args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		_ = tmp.Release()
		return Source{}, fmt.Errorf("%w: %s %s: %v: %s", ErrConversion, command[0], src, err, strings.TrimSpace(stderr.String()))
	}

	info, err := os.Stat(tmp.Path)
	if err != nil || info.Size() == 0 {
		_ = tmp.Release()
		return Source{}, fmt.Errorf("%w: %s produced no output for %s", ErrConversion, command[0], src)
	}

	return tmp, nil
}
