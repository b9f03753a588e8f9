package site

import (
	"regexp"
	"strings"
)

var (
	slugStrip  = regexp.MustCompile(`[,;?.'"/\\]`)
	slugSpace  = regexp.MustCompile(`[-:;]`)
	slugHyphen = regexp.MustCompile(` +`)
)

// Slug turns a name into a filesystem and URL safe token:
// "Conrad, Joseph" becomes "conrad-joseph".
func Slug(s string) string {
	s = strings.ToLower(s)
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return slugHyphen.ReplaceAllString(s, "-")
}
