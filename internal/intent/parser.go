package intent

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/raaihank/data-laundry/internal/normalize"
)

// clauseBreakRe finds the seams between instructions chained in one prompt:
// connective verb endings ("지우고", "바꾸고"), "그리고" and sentence breaks.
// Commas are left alone because they also group digits and list columns.
var clauseBreakRe = regexp.MustCompile(`고\s+|그리고\s*|;\s*|\.\s+`)

type mention struct {
	column     string
	start, end int
}

type parser struct {
	original string // folded prompt, original case
	lower    string // ASCII lower-cased copy with identical byte offsets
	columns  []string
	mentions []mention
	breaks   [][]int
}

func newParser(folded string, columns []string) *parser {
	lower := asciiLower(folded)
	return &parser{
		original: folded,
		lower:    lower,
		columns:  columns,
		mentions: findMentions(lower, columns),
		breaks:   clauseBreaks(lower),
	}
}

func clauseBreaks(s string) [][]int {
	var out [][]int
	for _, br := range clauseBreakRe.FindAllStringIndex(s, -1) {
		if strings.HasPrefix(s[br[0]:], "고") {
			// only verb endings: the syllable before must be Hangul too
			prev, _ := utf8.DecodeLastRuneInString(s[:br[0]])
			if !normalize.IsHangul(prev) {
				continue
			}
		}
		out = append(out, br)
	}
	return out
}

// clause returns the byte range of the instruction containing pos.
func (p *parser) clause(pos int) (int, int) {
	start, end := 0, len(p.lower)
	for _, br := range p.breaks {
		if br[1] <= pos {
			start = br[1]
			continue
		}
		if br[0] >= pos {
			end = br[0]
			break
		}
	}
	return start, end
}

// scopeAt returns the columns mentioned in the same clause as pos, preferring
// mentions that precede it.
func (p *parser) scopeAt(pos int) Scope {
	start, end := p.clause(pos)

	var before, after Scope
	for _, m := range p.mentions {
		if m.start < start || m.end > end {
			continue
		}
		if m.end <= pos {
			if !before.Covers(m.column) {
				before = append(before, m.column)
			}
		} else if m.start > pos && !after.Covers(m.column) {
			after = append(after, m.column)
		}
	}
	if len(before) > 0 {
		return before
	}
	if len(after) > 0 {
		return after
	}

	// A clause without a column continues the previous one ("id를 4자리로
	// 채우고 앞에 'NO_' 붙여줘") unless it widens to every column.
	if start == 0 || containsAny(p.lower[start:end], everyColumnWords) {
		return nil
	}
	return p.scopeAt(p.previousClauseEnd(start))
}

var everyColumnWords = []string{"전부", "모든", "전체", "모두", "다 "}

// previousClauseEnd returns a position inside the clause before the one
// starting at start.
func (p *parser) previousClauseEnd(start int) int {
	for i := len(p.breaks) - 1; i >= 0; i-- {
		if p.breaks[i][1] == start {
			if p.breaks[i][0] == 0 {
				return 0
			}
			return p.breaks[i][0] - 1
		}
	}
	return 0
}

// resolveColumn maps a prompt word to a dataset column, case-insensitively.
func (p *parser) resolveColumn(word string) (string, bool) {
	for _, c := range p.columns {
		if strings.EqualFold(strings.TrimSpace(c), word) {
			return c, true
		}
	}
	return "", false
}

// findMentions locates column names in the prompt. ASCII names must not be
// glued to other ASCII letters or digits; Korean particles may follow.
func findMentions(lower string, columns []string) []mention {
	var out []mention
	for _, c := range columns {
		name := asciiLower(strings.TrimSpace(c))
		if name == "" {
			continue
		}
		for _, at := range indexAll(lower, name) {
			end := at + len(name)
			if at > 0 && isWordByte(lower[at-1]) && isWordByte(name[0]) {
				continue
			}
			if end < len(lower) && isWordByte(lower[end]) && isWordByte(name[len(name)-1]) {
				continue
			}
			out = append(out, mention{column: c, start: at, end: end})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// asciiLower lower-cases ASCII letters only, keeping byte offsets stable.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
