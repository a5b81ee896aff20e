package cleaning

import (
	"regexp"
	"strings"
	"unicode"
)

var formattedPhoneRe = regexp.MustCompile(`^(\d{2,3})-(\d{3,4})-(\d{4})$`)

// Masker hides personal data inside free text. The privacy detector
// implements it.
type Masker interface {
	Mask(text string) string
}

func masked(v string) bool {
	return strings.Contains(v, "*")
}

// maskTrailingDigits replaces the last n digits with '*', leaving separators
// in place. Values whose digit count is outside [lo, hi] are returned as is.
func maskTrailingDigits(v string, n, lo, hi int) string {
	if masked(v) {
		return v
	}
	count := 0
	for _, r := range v {
		if r >= '0' && r <= '9' {
			count++
		}
	}
	if count < lo || count > hi {
		return v
	}

	out := []rune(v)
	for i := len(out) - 1; i >= 0 && n > 0; i-- {
		if out[i] >= '0' && out[i] <= '9' {
			out[i] = '*'
			n--
		}
	}
	return string(out)
}

func maskCard(v string) string {
	return maskTrailingDigits(v, 4, 10, 19)
}

func maskAccount(v string) string {
	return maskTrailingDigits(v, 6, 8, 16)
}

// maskName keeps the first and last character: 홍길동 becomes 홍*동.
func maskName(v string) string {
	val := strings.TrimSpace(v)
	if val == "" || masked(val) {
		return v
	}
	r := []rune(val)
	switch len(r) {
	case 1:
		return v
	case 2:
		return string(r[0]) + "*"
	}
	return string(r[0]) + strings.Repeat("*", len(r)-2) + string(r[len(r)-1])
}

// maskEmail keeps the first two characters of the local part.
func maskEmail(v string) string {
	val := strings.TrimSpace(v)
	at := strings.LastIndex(val, "@")
	if at <= 0 || masked(val) {
		return v
	}
	local := []rune(val[:at])
	keep := 2
	if len(local) <= keep {
		keep = 1
	}
	return string(local[:keep]) + strings.Repeat("*", len(local)-keep) + val[at:]
}

// maskAddress keeps the first three words and stars the rest.
func maskAddress(v string) string {
	val := strings.TrimSpace(v)
	if val == "" || masked(val) {
		return v
	}
	words := strings.Fields(val)
	if len(words) <= 3 {
		return v
	}
	for i := 3; i < len(words); i++ {
		words[i] = strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return r
			}
			return '*'
		}, words[i])
	}
	return strings.Join(words, " ")
}

// maskPhoneMid formats the number first, then hides the middle group.
func maskPhoneMid(v string) string {
	if masked(v) {
		return v
	}
	m := formattedPhoneRe.FindStringSubmatch(formatPhone(strings.TrimSpace(v), true, true))
	if m == nil {
		return v
	}
	return m[1] + "-" + strings.Repeat("*", len(m[2])) + "-" + m[3]
}

// maskRRN hides the back seven digits of a resident registration number.
func maskRRN(v string, masker Masker) string {
	digits := nonDigitRe.ReplaceAllString(v, "")
	if len(digits) == 13 {
		return digits[:6] + "-*******"
	}
	if masker != nil {
		return masker.Mask(v)
	}
	return v
}

func maskPersonalStage(v string, ctx *Context) string {
	if ctx.masker == nil {
		return v
	}
	return ctx.masker.Mask(v)
}
