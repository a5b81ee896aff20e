package intent

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	paddingRe = regexp.MustCompile(`(\d+)\s*자리(?:로|의)?\s*(?:(?:'(.)'|"(.)"|(0))\s*(?:으로|로)?\s*)?(?:채|맞춰|맞추|패딩)`)

	affixRe         = regexp.MustCompile(`(앞|뒤|끝)에\s*['"]([^'"]+)['"]\s*(?:을|를|이|가)?\s*(?:붙|추가|넣)`)
	affixReversedRe = regexp.MustCompile(`['"]([^'"]+)['"]\s*(?:을|를)?\s*(앞|뒤|끝)에\s*(?:붙|추가|넣)`)

	removalRe     = regexp.MustCompile(`['"]([^'"]+)['"]\s*(?:을|를|이|가|은|는)?\s*(?:다\s*)?(?:지워|지우|제거|삭제|빼|없애)`)
	replacementRe = regexp.MustCompile(`['"]([^'"]+)['"]\s*(?:을|를|은|는)?\s*['"]([^'"]*)['"]\s*(?:으로|로)?\s*(?:바꿔|바꾸|변경|치환|교체|수정)`)
)

// extractDirectives finds the quoted-literal instructions: padding, affixes,
// removals and in-value replacements. Each takes the scope of its clause.
func (p *parser) extractDirectives(b *Bundle) {
	for _, m := range paddingRe.FindAllStringSubmatchIndex(p.original, -1) {
		width, err := strconv.Atoi(p.original[m[2]:m[3]])
		if err != nil || width <= 0 || width > 64 {
			continue
		}
		fill := '0'
		for g := 4; g <= 8; g += 2 {
			if m[g] >= 0 {
				fill, _ = utf8.DecodeRuneInString(p.original[m[g]:m[g+1]])
				break
			}
		}
		b.Paddings = append(b.Paddings, Padding{Scope: p.scopeAt(m[0]), Width: width, Fill: fill})
	}

	for _, m := range affixRe.FindAllStringSubmatchIndex(p.original, -1) {
		b.Affixes = append(b.Affixes, newAffix(p.scopeAt(m[0]), p.original[m[2]:m[3]], p.original[m[4]:m[5]]))
	}
	for _, m := range affixReversedRe.FindAllStringSubmatchIndex(p.original, -1) {
		b.Affixes = append(b.Affixes, newAffix(p.scopeAt(m[0]), p.original[m[4]:m[5]], p.original[m[2]:m[3]]))
	}

	for _, m := range replacementRe.FindAllStringSubmatchIndex(p.original, -1) {
		b.Replacements = append(b.Replacements, Replacement{
			Scope: p.scopeAt(m[0]),
			From:  p.original[m[2]:m[3]],
			To:    p.original[m[4]:m[5]],
		})
	}

	for _, m := range removalRe.FindAllStringSubmatchIndex(p.original, -1) {
		b.Removals = append(b.Removals, Removal{
			Scope:   p.scopeAt(m[0]),
			Literal: p.original[m[2]:m[3]],
		})
	}
}

func newAffix(scope Scope, side, text string) Affix {
	if side == "앞" {
		return Affix{Scope: scope, Prefix: text}
	}
	return Affix{Scope: scope, Suffix: text}
}

var (
	dateKeywords     = []string{"날짜", "일자", "일시", "date", "생일", "생년월일"}
	dateTemplateRe   = regexp.MustCompile(`yyyy([-./]?)mm([-./]?)dd`)
	quotedSepRe      = regexp.MustCompile(`['"]([-./])['"]`)
	compactDateWords = []string{"8자리", "여덟자리", "구분자 없이", "구분자없이", "붙여서", "붙여 써"}
)

// extractDateSeparator reads a requested date separator. It only looks when
// the prompt talks about dates.
func (p *parser) extractDateSeparator(b *Bundle) {
	if !containsAny(p.lower, dateKeywords) {
		return
	}

	set := func(sep string) {
		b.dateSeparator = sep
		b.hasDateSeparator = true
	}

	if m := dateTemplateRe.FindStringSubmatch(p.lower); m != nil {
		set(m[1])
		return
	}
	if m := quotedSepRe.FindStringSubmatch(p.lower); m != nil && containsAny(p.lower, []string{"구분", "형식", "포맷", "로 바꿔", "로 변경", "으로 통일", "로 통일"}) {
		set(m[1])
		return
	}

	switch {
	case containsAny(p.lower, compactDateWords):
		set("")
	case containsAny(p.lower, []string{"슬래시", "슬래쉬"}):
		set("/")
	case containsAny(p.lower, []string{"하이픈", "대시", "대쉬"}):
		if containsAny(p.lower, removeWords) {
			set("")
			return
		}
		set("-")
	case strings.Contains(p.lower, "점으로") || strings.Contains(p.lower, "마침표"):
		set(".")
	}
}
