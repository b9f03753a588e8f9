package identifier

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// PageID names one scanned page, e.g. "fla-1-2-3-4"
type PageID string

// ClippingID names the work a page belongs to, e.g. "fla-1-2-3"
type ClippingID string

const (
	prefix     = "fla"
	components = 5
)

var (
	extPattern     = regexp.MustCompile(`(?i)\.(tiff?|jpe?g|djvu)$`)
	variantPattern = regexp.MustCompile(`^([0-9]+)[ab]$`)
	pagePattern    = regexp.MustCompile(`(?i)([0-9]+)([ab])?(\.[a-z0-9]+)?$`)
)

// DerivePageID derives the page identifier from a scanned filename.
// It returns false for anything that does not decompose into the
// fla-<collection>-<work>-<part>-<page> shape.
func DerivePageID(filename string) (PageID, bool) {
	s := strings.ToLower(strings.TrimSpace(filepath.Base(filename)))
	s = extPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, ".", "-")

	parts := strings.Split(s, "-")
	if len(parts) != components || parts[0] != prefix {
		return "", false
	}
	for _, p := range parts {
		if p == "" {
			return "", false
		}
	}

	// verso/alternate scans share the page identifier of the page they belong to
	if m := variantPattern.FindStringSubmatch(parts[components-1]); m != nil {
		parts[components-1] = m[1]
	}

	return PageID(strings.Join(parts, "-")), true
}

// DeriveClippingID derives the clipping identifier from a scanned filename.
func DeriveClippingID(filename string) (ClippingID, bool) {
	id, ok := DerivePageID(filename)
	if !ok {
		return "", false
	}
	return id.Clipping(), true
}

// Clipping drops the page sequence component.
func (p PageID) Clipping() ClippingID {
	s := string(p)
	i := strings.LastIndex(s, "-")
	if i < 0 {
		return ClippingID(s)
	}
	return ClippingID(s[:i])
}

// Page is the page sequence parsed from the end of a filename.
type Page struct {
	Number  int
	Variant string // "", "a" or "b"
}

// Alternate reports whether this is a verso/alternate scan that is never published.
func (p Page) Alternate() bool {
	return p.Variant == "b"
}

// ParsePage reads the trailing page number and optional a/b variant from a filename.
func ParsePage(filename string) (Page, bool) {
	m := pagePattern.FindStringSubmatch(filepath.Base(strings.TrimSpace(filename)))
	if m == nil {
		return Page{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return Page{}, false
	}
	return Page{Number: n, Variant: strings.ToLower(m[2])}, true
}
