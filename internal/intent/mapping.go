package intent

import (
	"regexp"
	"strings"

	"github.com/raaihank/data-laundry/internal/normalize"
	"github.com/raaihank/data-laundry/internal/pattern"
)

var (
	mappingGateWords = []string{"변경", "변환", "교체", "바꿔", "바꾸", "수정", "치환"}

	// The source is quoted or a bare token. Quoted targets belong to
	// replacementRe, so the target must open with a value character.
	mappingRe = regexp.MustCompile(`(?:['"]([^'"]+)['"]|([\[\]%A-Za-z0-9가-힣_\-@.]+))\s*(?:데이터|값|문구|텍스트|형식|패턴)?(?:\s*의)?\s*(?:데이터|값|문구|텍스트)?\s*(?:는|은|->|:|를|을)\s*([\[\]%A-Za-z0-9가-힣_\-@.][\[\]%A-Za-z0-9가-힣_\-@.\s]*)`)

	// Connective stems ("바꾸", "변경하") are what a clause break leaves behind
	// when it cuts "바꾸고" or "변경하고".
	verbSuffixRe     = regexp.MustCompile(`\s*(?:변경\s*해\s*줘|변경해\s*주세요|변경하|변경|수정하|수정|변환하|변환|바꿔\s*줘|바꿔\s*주세요|바꿔|바꾸기|바꾸|교체하|교체|치환하|치환|해\s*주세요|해\s*줘|주세요|해)$`)
	particleSuffixRe = regexp.MustCompile(`(?:으로|로|라고|하게)$`)
	columnHintRe     = regexp.MustCompile(`['"]?([A-Za-z0-9가-힣_]+)['"]?\s*컬럼`)
	noiseSourceRe    = regexp.MustCompile(`^(?:패턴|문구|단어|텍스트|값|데이터|내용|항목|정보|필드|컬럼)$`)
)

var blankTargets = map[string]bool{
	"빈칸": true, "공백": true, "empty": true, "blank": true, "없음": true, "제거": true,
}

// instructionTargets are words that describe an operation rather than a value;
// "email은 대문자로 변경" is a casing instruction, not a mapping to "대문자".
var instructionTargets = []string{"대문자", "소문자", "형식", "포맷", "자리"}

func (p *parser) extractMappings(b *Bundle) {
	if !containsAny(p.lower, mappingGateWords) {
		return
	}

	for _, span := range p.clauses() {
		text := p.original[span[0]:span[1]]

		hint := ""
		if m := columnHintRe.FindStringSubmatch(text); m != nil {
			hint = asciiLower(m[1])
		}

		for _, m := range mappingRe.FindAllStringSubmatch(text, -1) {
			from := strings.TrimSpace(m[1])
			if from == "" {
				from = strings.TrimSpace(m[2])
			}
			to := cleanTarget(m[3])

			if from == "" || noiseSourceRe.MatchString(from) {
				continue
			}
			if _, isColumn := p.resolveColumn(from); isColumn {
				continue
			}
			if containsAny(to, instructionTargets) {
				continue
			}
			if blankTargets[asciiLower(to)] {
				to = ""
			}

			b.Mappings = append(b.Mappings, Mapping{From: from, To: to, Column: hint})

			if pattern.HasPlaceholder(from) {
				compiled, err := pattern.Compile(from, to)
				if err != nil {
					// malformed wildcards are dropped
					continue
				}
				b.Patterns = append(b.Patterns, ScopedPattern{Pattern: compiled, Column: hint})
				continue
			}
			b.addLiteral(hint, normalize.Key(from), to)
		}
	}
}

// cleanTarget strips verb endings and then a single trailing particle.
func cleanTarget(raw string) string {
	s := strings.TrimRight(strings.TrimSpace(raw), ". ")
	for {
		next := strings.TrimSpace(verbSuffixRe.ReplaceAllString(s, ""))
		if next == s {
			break
		}
		s = next
	}
	return strings.TrimSpace(particleSuffixRe.ReplaceAllString(s, ""))
}

// clauses returns the byte ranges between clause breaks.
func (p *parser) clauses() [][2]int {
	var out [][2]int
	start := 0
	for _, br := range p.breaks {
		if br[0] > start {
			out = append(out, [2]int{start, br[0]})
		}
		start = br[1]
	}
	if start < len(p.original) {
		out = append(out, [2]int{start, len(p.original)})
	}
	return out
}
