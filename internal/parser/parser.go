// Package parser extracts CSS declarations and class lists from the free-form
// strings users attach to components.
package parser

import (
	"strings"
	"unicode"
)

// Declaration is one CSS property/value pair.
type Declaration struct {
	Property string
	Value    string
}

// ParseDeclarations splits an inline style string ("color:red; font-weight:bold")
// into declarations in source order. Segments without a colon, with an empty
// property or with an empty value are skipped. Only the first colon splits, so
// values such as url(http://...) survive. Property names are normalised to
// kebab-case lower case.
func ParseDeclarations(s string) []Declaration {
	var out []Declaration
	for _, segment := range strings.Split(s, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		prop, value, ok := strings.Cut(segment, ":")
		if !ok {
			continue
		}
		prop = strings.TrimSpace(prop)
		value = strings.TrimSpace(value)
		if prop == "" || value == "" || strings.ContainsFunc(prop, unicode.IsSpace) {
			continue
		}
		out = append(out, Declaration{Property: CSSName(prop), Value: value})
	}
	return out
}

// CSSName converts a camelCase property name (backgroundColor) to its
// kebab-case CSS form (background-color). Names that already contain a dash
// are lower-cased only. Custom properties (--x) are left untouched.
func CSSName(name string) string {
	if strings.HasPrefix(name, "--") {
		return name
	}
	if strings.Contains(name, "-") {
		return strings.ToLower(name)
	}
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Classes returns a space-separated class list as given, with only the
// surrounding whitespace removed.
func Classes(s string) string {
	return strings.TrimSpace(s)
}
