package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var spaceRunRe = regexp.MustCompile(`\s{2,}`)

// Fold composes decomposed Hangul (common in files exported on macOS) and
// folds full-width ASCII to its narrow form. Case is preserved.
func Fold(s string) string {
	t := transform.Chain(norm.NFC, width.Fold)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Key is the comparison form of a cell or prompt fragment: folded, trimmed and
// lower-cased.
func Key(s string) string {
	return Lower(strings.TrimSpace(Fold(s)))
}

// Upper upper-cases s. Casers keep state, so one is built per call.
func Upper(s string) string {
	return cases.Upper(language.Und).String(s)
}

// Lower lower-cases s.
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// StripEmoji removes pictographs, dingbats, flags, variation selectors and
// joiners, then collapses the whitespace they leave behind.
func StripEmoji(s string) string {
	out, _, err := transform.String(runes.Remove(runes.Predicate(isEmoji)), s)
	if err != nil || out == s {
		return s
	}
	return CollapseSpaces(strings.TrimSpace(out))
}

// HasEmoji reports whether s contains any rune StripEmoji would remove.
func HasEmoji(s string) bool {
	return strings.IndexFunc(s, isEmoji) >= 0
}

// CollapseSpaces replaces runs of whitespace with a single space.
func CollapseSpaces(s string) string {
	return spaceRunRe.ReplaceAllString(s, " ")
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF:
		return true
	case r >= 0x2600 && r <= 0x27BF:
		return true
	case r >= 0x2B00 && r <= 0x2BFF:
		return true
	case r >= 0xE0020 && r <= 0xE007F:
		return true
	case r == 0xFE0F, r == 0x200D, r == 0x20E3:
		return true
	}
	return false
}

// IsHangul reports whether r is a composed Hangul syllable.
func IsHangul(r rune) bool {
	return unicode.Is(unicode.Hangul, r) && r >= 0xAC00 && r <= 0xD7A3
}
