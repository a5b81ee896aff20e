package cleaning

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/raaihank/data-laundry/internal/intent"
	"github.com/raaihank/data-laundry/internal/normalize"
)

var (
	htmlTagRe      = regexp.MustCompile(`<[a-zA-Z/][^>]*>`)
	nameNoiseRe    = regexp.MustCompile(`[^가-힣a-zA-Z\s]`)
	nonHangulRe    = regexp.MustCompile(`[^가-힣\s]`)
	nonEnglishRe   = regexp.MustCompile(`[^A-Za-z\s]`)
	digitRe        = regexp.MustCompile(`\d`)
	specialRe      = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	bracketRe      = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]|\{[^}]*\}`)
	companyMarkRe  = regexp.MustCompile(`(?i)\(\s*[주유사재]\s*\)|㈜|주식회사|유한회사|사단법인|재단법인|,?\s*\b(?:co\.,?\s*ltd\.?|ltd\.?|inc\.?|corp\.?)(?:\s|$)`)
	positionParRe  = regexp.MustCompile(`(?i)\(\s*(?:ceo|cto|cfo|coo|대표|대표이사|이사|과장|대리|부장|차장|사원|주임|팀장|실장|본부장|사장|회장|전무|상무)\s*\)`)
	positionTitles = map[string]bool{
		"대표이사": true, "대표": true, "이사": true, "과장": true, "대리": true,
		"부장": true, "차장": true, "사원": true, "주임": true, "팀장": true,
		"실장": true, "본부장": true, "사장": true, "회장": true, "전무": true,
		"상무": true, "ceo": true, "cto": true, "cfo": true, "coo": true,
		"님": true,
	}
)

func trimSpace(v string) string {
	return strings.TrimSpace(v)
}

// whitespaceStage trims values. A prompt that only asked about spaces around
// names narrows it to name columns.
func whitespaceStage(v string, ctx *Context) string {
	if !ctx.Options.RemoveWhitespace && !ctx.Forced &&
		ctx.Intents.Has(intent.FlagNameMentioned) && !nameColumn.matches(ctx.Column) {
		return v
	}
	return strings.TrimSpace(v)
}

// cleanName strips everything but Hangul, Latin letters and spaces. Masked
// names are left alone.
func cleanName(v string) string {
	if masked(v) {
		return v
	}
	out := strings.TrimSpace(nameNoiseRe.ReplaceAllString(v, ""))
	if out == "" && strings.TrimSpace(v) != "" {
		return v
	}
	return out
}

func cleanGarbage(v string) string {
	if normalize.IsGarbage(v) {
		return ""
	}
	return v
}

// removeHTML drops markup and keeps the text content.
func removeHTML(v string) string {
	if !htmlTagRe.MatchString(v) {
		return v
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(v))
	if err != nil {
		return strings.TrimSpace(normalize.CollapseSpaces(htmlTagRe.ReplaceAllString(v, "")))
	}
	return strings.TrimSpace(normalize.CollapseSpaces(doc.Text()))
}

func removeEmoji(v string) string {
	if !normalize.HasEmoji(v) {
		return v
	}
	return normalize.StripEmoji(v)
}

func toUpper(v string) string {
	return normalize.Upper(v)
}

func toLower(v string) string {
	return normalize.Lower(v)
}

// keepOnly applies a filter and falls back to the input when nothing survives.
func keepOnly(re *regexp.Regexp) func(string) string {
	return func(v string) string {
		out := strings.TrimSpace(normalize.CollapseSpaces(re.ReplaceAllString(v, "")))
		if out == "" {
			return v
		}
		return out
	}
}

var (
	digitsOnly  = keepOnly(nonDigitRe)
	koreanOnly  = keepOnly(nonHangulRe)
	englishOnly = keepOnly(nonEnglishRe)
)

func removeDigits(v string) string {
	return strings.TrimSpace(normalize.CollapseSpaces(digitRe.ReplaceAllString(v, "")))
}

func removeHyphen(v string) string {
	return strings.ReplaceAll(v, "-", "")
}

func removeSpecial(v string) string {
	return strings.TrimSpace(normalize.CollapseSpaces(specialRe.ReplaceAllString(v, "")))
}

// removeBrackets deletes bracketed asides. Surrounding spaces are kept.
func removeBrackets(v string) string {
	return bracketRe.ReplaceAllString(v, "")
}

// cleanCompanyName strips legal-entity markers such as (주) and Co., Ltd.
func cleanCompanyName(v string) string {
	out := strings.TrimSpace(normalize.CollapseSpaces(companyMarkRe.ReplaceAllString(v, " ")))
	out = strings.Trim(out, ", ")
	if out == "" {
		return v
	}
	return out
}

// removePosition drops job titles written as separate words or in brackets.
func removePosition(v string) string {
	stripped := positionParRe.ReplaceAllString(v, " ")
	words := strings.Fields(stripped)
	kept := words[:0]
	for _, w := range words {
		if positionTitles[strings.ToLower(w)] {
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) == 0 {
		return v
	}
	return strings.Join(kept, " ")
}
