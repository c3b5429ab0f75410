package present

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// DefaultExtension is used when nothing better can be sniffed.
const DefaultExtension = "png"

var (
	pathExtPattern     = regexp.MustCompile(`\.([a-zA-Z0-9]+)$`)
	fallbackExtPattern = regexp.MustCompile(`\.([a-zA-Z0-9]{3,4})(?:[?#]|$)`)
)

var dataExtensions = []struct {
	prefix string
	ext    string
}{
	{"data:image/jpeg", "jpg"},
	{"data:image/webp", "webp"},
	{"data:image/gif", "gif"},
	{"data:image/svg", "svg"},
}

// Extension sniffs a file extension from a locator.
func Extension(locator string) string {
	for _, d := range dataExtensions {
		if strings.HasPrefix(locator, d.prefix) {
			return d.ext
		}
	}
	if strings.Contains(locator, ".svg") {
		return "svg"
	}

	if u, err := url.Parse(locator); err == nil && u.IsAbs() {
		if m := pathExtPattern.FindStringSubmatch(u.Path); m != nil && len(m[1]) <= 5 {
			return m[1]
		}
		return DefaultExtension
	}
	if m := fallbackExtPattern.FindStringSubmatch(locator); m != nil {
		return m[1]
	}
	return DefaultExtension
}

// Filename returns the export name for the record at display position pos.
func Filename(pos int, locator string) string {
	return FilenameExt(pos, Extension(locator))
}

// FilenameExt is Filename with an explicit extension.
func FilenameExt(pos int, ext string) string {
	return fmt.Sprintf("image_%d.%s", pos+1, ext)
}
