// Package slug turns titles into URL path segments.
package slug

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength matches the width of the slug columns, counted in bytes.
const MaxLength = 255

// Make lowercases s, strips accents and joins alphanumeric runs with dashes.
// "Élden Ring: Shadow of the Erdtree" becomes "elden-ring-shadow-of-the-erdtree".
func Make(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return truncate(b.String(), MaxLength)
}

// WithSuffix appends -n for n > 1, used to resolve collisions.
// base is shortened so the result never exceeds MaxLength.
func WithSuffix(base string, n int) string {
	if n <= 1 {
		return truncate(base, MaxLength)
	}
	suffix := "-" + strconv.Itoa(n)
	return truncate(base, MaxLength-len(suffix)) + suffix
}

// truncate cuts s to at most max bytes on a rune boundary and drops trailing dashes
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.TrimRight(s[:cut], "-")
}
