// Package pattern compiles wildcard literals such as "[%3d]원" into anchored,
// case-insensitive matchers that replace a whole cell value.
//
// Placeholders:
//
//	%d   one or more digits
//	%Nd  exactly N digits
//	%s   any non-empty text
//	%Ns  exactly N characters
//
// Square brackets directly around a placeholder are part of the placeholder
// syntax and do not appear in the matched value.
package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrEmptyPattern is returned when the wildcard literal is blank.
var ErrEmptyPattern = errors.New("empty pattern")

// placeholderRe consumes "%Nd" as one token, so the counted forms can never be
// split into a bare "%d" followed by a literal.
var placeholderRe = regexp.MustCompile(`\[?%(\d*)([ds])\]?`)

// Pattern is a compiled wildcard literal with its replacement value.
type Pattern struct {
	Source      string
	Replacement string
	re          *regexp.Regexp
}

// Compile turns a wildcard literal into a Pattern. The error is reported for
// callers that log it; the cleaning engine simply drops failed patterns.
func Compile(from, replacement string) (Pattern, error) {
	from = strings.TrimSpace(from)
	if from == "" {
		return Pattern{}, ErrEmptyPattern
	}

	expr, err := Expression(from)
	if err != nil {
		return Pattern{}, err
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("failed to compile pattern %q: %w", from, err)
	}

	return Pattern{Source: from, Replacement: replacement, re: re}, nil
}

// Expression returns the regular expression source for a wildcard literal.
func Expression(from string) (string, error) {
	var b strings.Builder
	b.WriteString("(?i)^")

	last := 0
	for _, loc := range placeholderRe.FindAllStringSubmatchIndex(from, -1) {
		b.WriteString(regexp.QuoteMeta(from[last:loc[0]]))

		count := from[loc[2]:loc[3]]
		kind := from[loc[4]:loc[5]]
		if count == "0" {
			return "", fmt.Errorf("zero-width placeholder in %q", from)
		}

		switch {
		case kind == "d" && count == "":
			b.WriteString(`\d+`)
		case kind == "d":
			b.WriteString(`\d{` + count + `}`)
		case count == "":
			b.WriteString(`.+`)
		default:
			b.WriteString(`.{` + count + `}`)
		}
		last = loc[1]
	}
	b.WriteString(regexp.QuoteMeta(from[last:]))
	b.WriteString("$")

	return b.String(), nil
}

// HasPlaceholder reports whether s should be compiled rather than matched
// literally.
func HasPlaceholder(s string) bool {
	return strings.Contains(s, "%")
}

// Match reports whether the trimmed value matches the whole pattern.
func (p Pattern) Match(value string) bool {
	if p.re == nil {
		return false
	}
	return p.re.MatchString(strings.TrimSpace(value))
}

// String returns the compiled expression.
func (p Pattern) String() string {
	if p.re == nil {
		return ""
	}
	return p.re.String()
}

// Set is an ordered list of patterns; the first match wins.
type Set []Pattern

// Apply returns the replacement of the first matching pattern.
func (s Set) Apply(value string) (string, bool) {
	for _, p := range s {
		if p.Match(value) {
			return p.Replacement, true
		}
	}
	return value, false
}
