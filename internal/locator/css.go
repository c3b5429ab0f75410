package locator

import (
	"regexp"
	"strings"
)

var cssURLPattern = regexp.MustCompile(`url\(\s*['"]?(.*?)['"]?\s*\)`)

// ExtractCSSURL returns the first url(...) argument of a computed style
// value with surrounding quotes removed and escaped quotes restored.
func ExtractCSSURL(value string) (string, bool) {
	if value == "" || strings.EqualFold(strings.TrimSpace(value), "none") {
		return "", false
	}
	m := cssURLPattern.FindStringSubmatch(value)
	if m == nil || m[1] == "" {
		return "", false
	}
	u := strings.ReplaceAll(m[1], `\"`, `"`)
	u = strings.ReplaceAll(u, `\'`, `'`)
	return u, true
}
