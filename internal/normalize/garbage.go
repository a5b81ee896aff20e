package normalize

import (
	"regexp"
	"strings"
)

// garbageRe matches mojibake, placeholder words and punctuation-only cells.
var garbageRe = regexp.MustCompile(`(?i)Ã|ï¿½|&nbsp;|unknown|N/A|NaN|undefined|null|[ëìí][\x{0080}-\x{00BF}]|ðŸ|[\x{1F60}-\x{1F64}][\x{0080}-\x{00BF}]|^None$|^X$|^---$|^[!@#$%^&*(),.?":{}|<>+=-]+$`)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsGarbage reports whether a trimmed value is broken or meaningless.
func IsGarbage(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && garbageRe.MatchString(s)
}

// IsEmail is a shape check only; deliverability is not considered.
func IsEmail(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}
