// Package intent extracts cleaning instructions from free-text Korean prompts.
//
// Extraction is keyword and token based. It never fails: a prompt that yields
// nothing produces an empty Bundle. A Bundle is built once per processing call
// and is read-only afterwards, so row workers may share it.
package intent

import (
	"sort"
	"strings"

	"github.com/raaihank/data-laundry/internal/normalize"
	"github.com/raaihank/data-laundry/internal/pattern"
)

// Scope lists the columns an instruction was aimed at. An empty scope means
// the prompt named no column for it.
type Scope []string

// Covers reports whether column is named by the scope.
func (s Scope) Covers(column string) bool {
	for _, c := range s {
		if strings.EqualFold(c, column) {
			return true
		}
	}
	return false
}

// Explicit reports whether the prompt named a column for the instruction.
func (s Scope) Explicit() bool {
	return len(s) > 0
}

// Mapping is one value substitution found in the prompt. Column is an
// optional hint ("'주소' 컬럼의 ..."): when set, only columns whose name
// contains it are affected.
type Mapping struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Column string `json:"column,omitempty"`
}

// ScopedPattern is a compiled wildcard mapping with its column hint.
type ScopedPattern struct {
	Pattern pattern.Pattern
	Column  string
}

// Padding left-pads digit-only values to Width with Fill.
type Padding struct {
	Scope Scope `json:"scope,omitempty"`
	Width int   `json:"width"`
	Fill  rune  `json:"fill"`
}

// Affix adds a prefix or suffix.
type Affix struct {
	Scope  Scope  `json:"scope,omitempty"`
	Prefix string `json:"prefix,omitempty"`
	Suffix string `json:"suffix,omitempty"`
}

// Removal deletes a quoted literal wherever it occurs in a value.
type Removal struct {
	Scope   Scope  `json:"scope,omitempty"`
	Literal string `json:"literal"`
}

// Replacement swaps a quoted literal for another inside a value.
type Replacement struct {
	Scope Scope  `json:"scope,omitempty"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// Bundle holds everything extracted from one prompt.
type Bundle struct {
	Prompt string

	flags map[Flag]Scope

	literals  map[string]map[string]string // column hint -> lower-cased source -> target
	hintOrder []string

	Mappings []Mapping
	Patterns []ScopedPattern

	Conditions   []Condition
	NullFills    []NullFill
	Paddings     []Padding
	Affixes      []Affix
	Removals     []Removal
	Replacements []Replacement

	dateSeparator    string
	hasDateSeparator bool
}

// Empty returns a bundle with no intents.
func Empty() *Bundle {
	return &Bundle{
		flags:    make(map[Flag]Scope),
		literals: make(map[string]map[string]string),
	}
}

// Extract parses prompt against the dataset's column names.
func Extract(prompt string, columns []string) *Bundle {
	b := Empty()
	b.Prompt = prompt

	folded := normalize.Fold(prompt)
	if strings.TrimSpace(folded) == "" {
		return b
	}
	p := newParser(folded, columns)
	p.extractFlags(b)
	p.extractMappings(b)
	p.extractTokenRules(b)
	p.extractDirectives(b)
	p.extractDateSeparator(b)

	return b
}

// Has reports whether the flag was raised anywhere in the prompt.
func (b *Bundle) Has(f Flag) bool {
	_, ok := b.flags[f]
	return ok
}

// ScopeOf returns the columns a flag was aimed at.
func (b *Bundle) ScopeOf(f Flag) Scope {
	return b.flags[f]
}

// Flags lists the raised flags by name, sorted.
func (b *Bundle) Flags() []string {
	names := make([]string, 0, len(b.flags))
	for f := range b.flags {
		names = append(names, f.String())
	}
	sort.Strings(names)
	return names
}

// DateSeparator returns the separator override, if the prompt set one. The
// empty string is a valid override meaning YYYYMMDD.
func (b *Bundle) DateSeparator() (string, bool) {
	return b.dateSeparator, b.hasDateSeparator
}

// Lookup finds a literal mapping for value in column.
func (b *Bundle) Lookup(column, value string) (string, bool) {
	if len(b.literals) == 0 {
		return "", false
	}
	key := normalize.Key(value)
	col := strings.ToLower(column)
	for _, hint := range b.hintOrder {
		if hint != "" && !strings.Contains(col, hint) {
			continue
		}
		if to, ok := b.literals[hint][key]; ok {
			return to, true
		}
	}
	return "", false
}

// MatchPattern applies the wildcard patterns in declaration order.
func (b *Bundle) MatchPattern(column, value string) (string, bool) {
	col := strings.ToLower(column)
	for _, sp := range b.Patterns {
		if sp.Column != "" && !strings.Contains(col, sp.Column) {
			continue
		}
		if sp.Pattern.Match(value) {
			return sp.Pattern.Replacement, true
		}
	}
	return "", false
}

func (b *Bundle) raise(f Flag, scope Scope) {
	if existing, ok := b.flags[f]; ok {
		// A flag raised once without a column applies everywhere.
		if !existing.Explicit() {
			return
		}
		if !scope.Explicit() {
			b.flags[f] = nil
			return
		}
		for _, c := range scope {
			if !existing.Covers(c) {
				existing = append(existing, c)
			}
		}
		b.flags[f] = existing
		return
	}
	b.flags[f] = scope
}

func (b *Bundle) addLiteral(hint, from, to string) {
	table, ok := b.literals[hint]
	if !ok {
		table = make(map[string]string)
		b.literals[hint] = table
		b.hintOrder = append(b.hintOrder, hint)
	}
	if _, exists := table[from]; !exists {
		table[from] = to
	}
}
