package convert

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format is a source image format
type Format int

const (
	FormatUnknown Format = iota
	FormatTIFF
	FormatJPEG
	FormatDJVU
)

// ArchivalExt is the extension every materialized page gets
const ArchivalExt = ".tif"

func (f Format) String() string {
	switch f {
	case FormatTIFF:
		return "tiff"
	case FormatJPEG:
		return "jpeg"
	case FormatDJVU:
		return "djvu"
	default:
		return "unknown"
	}
}

// DetectFormat identifies the format of path from its extension, falling
// back to content sniffing for files without a recognized extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		return FormatTIFF, nil
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".djvu":
		return FormatDJVU, nil
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return FormatUnknown, fmt.Errorf("failed to detect format of %s: %w", path, err)
	}

	switch {
	case mtype.Is("image/tiff"):
		return FormatTIFF, nil
	case mtype.Is("image/jpeg"):
		return FormatJPEG, nil
	case mtype.Is("image/vnd.djvu"):
		return FormatDJVU, nil
	}

	return FormatUnknown, fmt.Errorf("%w: %s is %s", ErrUnsupportedFormat, path, mtype.String())
}
