package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// Operator compares a cell's numeric value with a threshold.
type Operator string

const (
	OpGTE Operator = ">="
	OpLTE Operator = "<="
	OpGT  Operator = ">"
	OpLT  Operator = "<"
	OpEQ  Operator = "=="
)

// Condition replaces values of Column that satisfy Op against Threshold,
// e.g. "price가 10000 이상이면 'High'로 바꿔줘".
type Condition struct {
	Column    string   `json:"column"`
	Op        Operator `json:"op"`
	Threshold float64  `json:"threshold"`
	Value     string   `json:"value"`
}

// Matches reports whether raw parses as a number satisfying the condition.
func (c Condition) Matches(raw string) bool {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	switch c.Op {
	case OpGTE:
		return n >= c.Threshold
	case OpLTE:
		return n <= c.Threshold
	case OpGT:
		return n > c.Threshold
	case OpLT:
		return n < c.Threshold
	case OpEQ:
		return n == c.Threshold
	}
	return false
}

// NullFill writes Value into empty cells of Column.
type NullFill struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

var (
	numericTokenRe       = regexp.MustCompile(`^[\d,]+$`)
	tokenActionRe        = regexp.MustCompile(`바꿔|바꾸|변경|치환|수정|설정|채워|넣어`)
	subjectParticleRe    = regexp.MustCompile(`(?:이|가|은|는)$`)
	otherParticleRe      = regexp.MustCompile(`(?:에서|의|을|를)$`)
	standaloneParticleRe = regexp.MustCompile(`^(?:으로|로)$`)
	targetParticleRe     = regexp.MustCompile(`(?:으)?로$`)
	quotedRe             = regexp.MustCompile(`['"]([^'"]+)['"]`)
)

var operatorWords = []struct {
	word string
	op   Operator
}{
	{"이상", OpGTE},
	{"크거나", OpGTE},
	{"이하", OpLTE},
	{"작거나", OpLTE},
	{"초과", OpGT},
	{"크면", OpGT},
	{"미만", OpLT},
	{"작으면", OpLT},
	{"같으면", OpEQ},
	{"동일", OpEQ},
}

var emptinessWords = []string{"비어", "없으", "공백", "빈값", "null"}

// extractTokenRules scans whitespace tokens for numeric conditions and
// null-fill requests. Every occurrence is captured.
func (p *parser) extractTokenRules(b *Bundle) {
	lower := strings.Fields(p.lower)
	original := strings.Fields(p.original)
	if len(lower) != len(original) {
		return
	}

	for i, tok := range lower {
		if numericTokenRe.MatchString(tok) {
			if c, ok := p.condition(lower, original, i); ok {
				b.Conditions = append(b.Conditions, c)
			}
			continue
		}
		if containsAny(tok, emptinessWords) {
			if f, ok := p.nullFill(lower, original, i); ok {
				b.NullFills = append(b.NullFills, f)
			}
		}
	}
}

func (p *parser) condition(lower, original []string, i int) (Condition, bool) {
	if i == 0 {
		return Condition{}, false
	}

	opIdx := -1
	var op Operator
	for j := i + 1; j <= i+2 && j < len(lower) && opIdx < 0; j++ {
		for _, ow := range operatorWords {
			if strings.Contains(lower[j], ow.word) {
				opIdx, op = j, ow.op
				break
			}
		}
	}
	if opIdx < 0 {
		return Condition{}, false
	}

	threshold, err := strconv.ParseFloat(strings.ReplaceAll(lower[i], ",", ""), 64)
	if err != nil {
		return Condition{}, false
	}

	value, ok := replacementAfter(lower, original, opIdx)
	if !ok {
		return Condition{}, false
	}

	return Condition{
		Column:    p.columnFromToken(original[i-1]),
		Op:        op,
		Threshold: threshold,
		Value:     value,
	}, true
}

func (p *parser) nullFill(lower, original []string, i int) (NullFill, bool) {
	if i == 0 {
		return NullFill{}, false
	}
	value, ok := replacementAfter(lower, original, i)
	if !ok {
		return NullFill{}, false
	}
	return NullFill{Column: p.columnFromToken(original[i-1]), Value: value}, true
}

// replacementAfter takes the token just before the first action word after
// index from. A standalone "으로"/"로" token is skipped.
func replacementAfter(lower, original []string, from int) (string, bool) {
	action := -1
	for k := from + 1; k < len(lower); k++ {
		if tokenActionRe.MatchString(lower[k]) {
			action = k
			break
		}
	}
	if action < 0 {
		return "", false
	}

	idx := action - 1
	if idx > from && standaloneParticleRe.MatchString(lower[idx]) {
		idx--
	}
	if idx <= from {
		return "", false
	}

	tok := original[idx]
	if m := quotedRe.FindStringSubmatch(tok); m != nil {
		return m[1], true
	}
	value := targetParticleRe.ReplaceAllString(tok, "")
	if value == "" {
		return "", false
	}
	return value, true
}

// columnFromToken strips a trailing particle and resolves the word against the
// dataset's columns; unknown words are kept as written.
func (p *parser) columnFromToken(tok string) string {
	tok = strings.Trim(tok, `'"`)
	word := subjectParticleRe.ReplaceAllString(tok, "")
	if c, ok := p.resolveColumn(strings.Trim(word, `'"`)); ok {
		return c
	}
	if c, ok := p.resolveColumn(strings.Trim(otherParticleRe.ReplaceAllString(tok, ""), `'"`)); ok {
		return c
	}
	if c, ok := p.resolveColumn(tok); ok {
		return c
	}
	return strings.Trim(word, `'"`)
}
