package tree

import "strings"

// declaration is one property: value pair of an inline style block.
type declaration struct {
	property string
	value    string
}

// parseInlineStyle splits a style attribute into declarations. Semicolons
// inside quotes or parentheses do not terminate a declaration, so
// url("a;b.png") survives intact.
func parseInlineStyle(style string) []declaration {
	var decls []declaration
	var cur strings.Builder
	depth := 0
	var quote rune

	flush := func() {
		raw := cur.String()
		cur.Reset()
		prop, val, ok := strings.Cut(raw, ":")
		if !ok {
			return
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.TrimSpace(val)
		val = strings.TrimSpace(strings.TrimSuffix(val, "!important"))
		if prop == "" {
			return
		}
		decls = append(decls, declaration{property: prop, value: val})
	}

	escaped := false
	for _, r := range style {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case r == ';' && depth == 0:
			flush()
			continue
		}
		cur.WriteRune(r)
	}
	flush()
	return decls
}

// inlineBackgroundImage resolves the background-image a style block
// declares. The background shorthand resets background-image, so the last
// of the two wins.
func inlineBackgroundImage(style string) string {
	value := "none"
	for _, d := range parseInlineStyle(style) {
		switch d.property {
		case "background-image":
			value = d.value
		case "background":
			if strings.Contains(strings.ToLower(d.value), "url(") {
				value = d.value
			} else {
				value = "none"
			}
		}
	}
	return value
}

// inlineLength returns the pixel value of a width or height declaration.
func inlineLength(style, property string) (int, bool) {
	px := 0
	found := false
	for _, d := range parseInlineStyle(style) {
		if d.property != property {
			continue
		}
		v := strings.ToLower(d.value)
		if !strings.HasSuffix(v, "px") {
			continue
		}
		if n, ok := leadingInt(strings.TrimSuffix(v, "px")); ok {
			px, found = n, true
		}
	}
	return px, found
}

// leadingInt parses the leading run of ASCII digits in s.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	n := 0
	digits := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		digits++
		if n > 1<<24 {
			return 0, false
		}
	}
	return n, digits > 0
}
