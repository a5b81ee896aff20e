// Package analysis inspects tabular data without changing it. It reports
// quality issues with suggested options, computes before/after statistics and
// offers header and format recommendations.
package analysis

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/raaihank/data-laundry/internal/cleaning"
	"github.com/raaihank/data-laundry/internal/normalize"
)

// Severity of an issue
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// IssueType names the check that raised an issue
type IssueType string

const (
	IssueMaxLength  IssueType = "maxLength"
	IssueWhitespace IssueType = "whitespace"
	IssuePhone      IssueType = "phone"
	IssueDate       IssueType = "date"
	IssueEmail      IssueType = "email"
	IssueZip        IssueType = "zip"
	IssueGarbage    IssueType = "garbage"
	IssueAmount     IssueType = "amount"
	IssueName       IssueType = "name"
	IssueAddress    IssueType = "address"
	IssueCard       IssueType = "card"
	IssueBizNum     IssueType = "bizNum"
	IssueRRN        IssueType = "rrn"
	IssueURL        IssueType = "url"
)

// Issue is one finding for one column
type Issue struct {
	ID               string          `json:"id"`
	Column           string          `json:"column"`
	Type             IssueType       `json:"type"`
	Severity         Severity        `json:"severity"`
	Message          string          `json:"message"`
	AffectedRows     []int           `json:"affectedRows,omitempty"`
	Suggestion       map[string]bool `json:"suggestion,omitempty"`
	PromptSuggestion string          `json:"promptSuggestion,omitempty"`
}

// Limits maps a column to its maximum length in characters
type Limits map[string]int

var (
	phoneLetterRe   = regexp.MustCompile(`[A-Za-z가-힣]`)
	phoneNonDashRe  = regexp.MustCompile(`[^\d-]`)
	nonDigitRe      = regexp.MustCompile(`\D`)
	dateLeadRe      = regexp.MustCompile(`^((19|20)\d{2}[-./년\s]|(19|20)\d{6}$)`)
	dateDMYRe       = regexp.MustCompile(`^\d{1,2}[/\-.]\d{1,2}[/\-.](?:19|20)\d{2}$`)
	dateShortRe     = regexp.MustCompile(`^\d{2}[/\-.]\d{1,2}[/\-.]\d{1,2}$`)
	dateWordRe      = regexp.MustCompile(`년|월|일`)
	relativeDateRe  = regexp.MustCompile(`오늘|어제|그저께`)
	letterRe        = regexp.MustCompile(`[가-힣a-zA-Z]`)
	yearRe          = regexp.MustCompile(`(?:19|20)\d{2}`)
	timeMarkRe      = regexp.MustCompile(`(?i)[:오전후]|am|pm`)
	zipTextRe       = regexp.MustCompile(`[^\d\s-]`)
	moneyHeaderRe   = regexp.MustCompile(`(?i)금액|가격|비용|price|amount`)
	nameNoiseRe     = regexp.MustCompile("[0-9!@#$%^&*()_+={}\\[\\]|\\\\;:'\",<>?/~`]")
	bizLikeRe       = regexp.MustCompile(`\d{3}-\d{2}-\d{5}|\d{10}`)
	bizFormattedRe  = regexp.MustCompile(`^\d{3}-\d{2}-\d{5}$`)
	rrnDigitsRe     = regexp.MustCompile(`^\d{6}[1-4]\d{6}$`)
	addressMarkers  = []string{"시 ", "군 ", "구 ", "동 ", "로 ", "길 "}
	nameHeaderWords = []string{"이름", "고객명", "성함", "성명"}
)

type cell struct {
	val string
	idx int
}

// DetectIssues runs every check over each column. The id column is skipped.
// When options enable number formatting, length limits ignore thousands commas.
func DetectIssues(rows []cleaning.Row, columns []string, limits Limits, opts cleaning.Options) []Issue {
	issues := make([]Issue, 0)
	if len(rows) == 0 {
		return issues
	}

	for _, column := range columns {
		if column == "id" {
			continue
		}

		var cells []cell
		for i, row := range rows {
			v := cleaning.Stringify(row[column])
			if strings.TrimSpace(v) != "" {
				cells = append(cells, cell{val: v, idx: i})
			}
		}
		if len(cells) == 0 {
			continue
		}

		lower := strings.ToLower(column)
		first := cleaning.Stringify(rows[0][column])
		checks := []func(string, string, []cell) *Issue{
			func(c, _ string, cs []cell) *Issue { return checkLength(c, cs, limits[c], opts.FormatNumber) },
			checkWhitespace,
			checkPhone,
			checkDate,
			checkEmail,
			checkZip,
			checkGarbage,
			checkAmount,
			checkName,
			checkAddress,
			checkCard,
			func(c, l string, cs []cell) *Issue { return checkBizNum(c, first, cs) },
			checkRRN,
			checkURL,
		}
		for _, check := range checks {
			if issue := check(column, lower, cells); issue != nil {
				issue.ID = uuid.NewString()
				issue.Column = column
				issues = append(issues, *issue)
			}
		}
	}
	return issues
}

func filterCells(cells []cell, keep func(string) bool) []cell {
	var out []cell
	for _, c := range cells {
		if keep(c.val) {
			out = append(out, c)
		}
	}
	return out
}

func indexes(cells []cell) []int {
	out := make([]int, len(cells))
	for i, c := range cells {
		out[i] = c.idx
	}
	return out
}

func suggest(keys ...string) map[string]bool {
	out := make(map[string]bool, len(keys))
	for _, k := range keys {
		out[k] = true
	}
	return out
}

func checkLength(column string, cells []cell, limit int, formatNumber bool) *Issue {
	if limit <= 0 {
		return nil
	}
	over := filterCells(cells, func(v string) bool {
		if formatNumber {
			v = strings.ReplaceAll(v, ",", "")
		}
		return utf8.RuneCountInString(v) > limit
	})
	if len(over) == 0 {
		return nil
	}
	msg := fmt.Sprintf("'%s' 컬럼의 데이터가 설정된 최대 길이(%d자)를 초과했습니다.", column, limit)
	if formatNumber {
		msg += " (천단위 콤마 실시간 보정 적용됨)"
	}
	return &Issue{Type: IssueMaxLength, Severity: SeverityError, Message: msg, AffectedRows: indexes(over)}
}

func checkWhitespace(column, _ string, cells []cell) *Issue {
	spaced := filterCells(cells, func(v string) bool { return strings.TrimSpace(v) != v })
	if len(spaced) == 0 {
		return nil
	}
	return &Issue{
		Type:         IssueWhitespace,
		Severity:     SeverityWarning,
		Message:      fmt.Sprintf("'%s' 컬럼에 불필요한 공백이 포함된 데이터가 있습니다. (예: %q)", column, spaced[0].val),
		Suggestion:   suggest("removeWhitespace"),
		AffectedRows: indexes(spaced),
	}
}

func checkPhone(column, lower string, cells []cell) *Issue {
	if !strings.Contains(column, "연락처") && !strings.Contains(column, "전화번호") && !strings.Contains(lower, "phone") {
		return nil
	}
	fix := suggest("formatMobile", "formatGeneralPhone")

	if lettered := filterCells(cells, phoneLetterRe.MatchString); len(lettered) > 0 {
		return &Issue{
			Type: IssuePhone, Severity: SeverityWarning, Suggestion: fix, AffectedRows: indexes(lettered),
			Message: fmt.Sprintf("'%s' 컬럼에 비정상적인 문자(가짜 번호 가능성)가 포함되어 있습니다.", column),
		}
	}
	odd := filterCells(cells, func(v string) bool {
		return phoneNonDashRe.MatchString(v) || strings.HasPrefix(nonDigitRe.ReplaceAllString(v, ""), "82")
	})
	if len(odd) > 0 {
		return &Issue{
			Type: IssuePhone, Severity: SeverityWarning, Suggestion: fix, AffectedRows: indexes(odd),
			Message: fmt.Sprintf("'%s' 컬럼에 텍스트가 섞여 있거나 국가번호(82)가 포함되어 있습니다.", column),
		}
	}

	dashed := len(filterCells(cells, func(v string) bool { return strings.Contains(v, "-") })) > 0
	bare := len(filterCells(cells, func(v string) bool {
		return !strings.Contains(v, "-") && len(nonDigitRe.ReplaceAllString(v, "")) >= 9
	})) > 0
	if dashed && bare {
		return &Issue{
			Type: IssuePhone, Severity: SeverityWarning, Suggestion: fix, AffectedRows: indexes(cells),
			Message: fmt.Sprintf("'%s' 컬럼에 전화번호 형식이 일관되지 않습니다.", column),
		}
	}
	return nil
}

func checkDate(column, lower string, cells []cell) *Issue {
	if strings.Contains(lower, "email") || strings.Contains(column, "이메일") {
		return nil
	}
	dated := filterCells(cells, func(v string) bool {
		return dateLeadRe.MatchString(v) || dateDMYRe.MatchString(v) || dateShortRe.MatchString(v) ||
			dateWordRe.MatchString(v) || relativeDateRe.MatchString(v)
	})
	if len(dated) == 0 {
		return nil
	}

	relative := filterCells(dated, relativeDateRe.MatchString)
	mixed := filterCells(dated, func(v string) bool { return letterRe.MatchString(v) && yearRe.MatchString(v) })
	seps := 0
	for _, sep := range []string{".", "-", "/"} {
		if len(filterCells(dated, func(v string) bool { return strings.Contains(v, sep) })) > 0 {
			seps++
		}
	}

	fix, suffix := suggest("formatDate"), "날짜 형식으로 통일할 수 있습니다."
	if len(filterCells(dated, timeMarkRe.MatchString)) > 0 {
		fix, suffix = suggest("formatDateTime"), "일시 형식으로 표준화할 수 있습니다."
	}

	switch {
	case len(relative) > 0:
		return &Issue{
			Type: IssueDate, Severity: SeverityInfo, Suggestion: fix, AffectedRows: indexes(relative),
			Message: fmt.Sprintf("'%s' 컬럼에 '어제', '오늘' 등 상대적 날짜가 있습니다. %s", column, suffix),
		}
	case len(mixed) > 0 || seps > 1:
		affected := dated
		if len(mixed) > 0 {
			affected = mixed
		}
		return &Issue{
			Type: IssueDate, Severity: SeverityWarning, Suggestion: fix, AffectedRows: indexes(affected),
			Message: fmt.Sprintf("'%s' 컬럼에 일관되지 않은 날짜/일시 형식이 있습니다.", column),
		}
	}
	return nil
}

func checkEmail(column, _ string, cells []cell) *Issue {
	invalid := filterCells(cells, func(v string) bool { return strings.Contains(v, "@") && !normalize.IsEmail(v) })
	if len(invalid) == 0 {
		return nil
	}
	return &Issue{
		Type: IssueEmail, Severity: SeverityWarning, Suggestion: suggest("cleanEmail"), AffectedRows: indexes(invalid),
		Message: fmt.Sprintf("'%s' 컬럼에 유효하지 않은 이메일 형식이 있습니다.", column),
	}
}

func checkZip(column, lower string, cells []cell) *Issue {
	if !strings.Contains(column, "우편번호") && !strings.Contains(lower, "zip") && !strings.Contains(lower, "postal") {
		return nil
	}
	if text := filterCells(cells, zipTextRe.MatchString); len(text) > 0 {
		return &Issue{
			Type: IssueZip, Severity: SeverityWarning, AffectedRows: indexes(text),
			Message: fmt.Sprintf("'%s' 컬럼에 숫자가 아닌 문자열 데이터가 섞여 있습니다. 자동 정제가 불가능하니 직접 수정해 주세요.", column),
		}
	}
	bad := filterCells(cells, func(v string) bool {
		return len(nonDigitRe.ReplaceAllString(v, "")) != 5 || strings.TrimSpace(v) != v
	})
	if len(bad) == 0 {
		return nil
	}
	return &Issue{
		Type: IssueZip, Severity: SeverityWarning, Suggestion: suggest("formatZip"), AffectedRows: indexes(bad),
		Message: fmt.Sprintf("'%s' 컬럼의 우편번호 형식이 표준(5자리)과 다릅니다.", column),
	}
}

func checkGarbage(column, _ string, cells []cell) *Issue {
	garbage := filterCells(cells, normalize.IsGarbage)
	if len(garbage) == 0 {
		return nil
	}
	return &Issue{
		Type: IssueGarbage, Severity: SeverityWarning, Suggestion: suggest("cleanGarbage"), AffectedRows: indexes(garbage),
		Message: fmt.Sprintf("'%s' 컬럼에 깨진 문자열이나 무의미한 데이터가 있습니다.", column),
	}
}

func checkAmount(column, _ string, cells []cell) *Issue {
	if !moneyHeaderRe.MatchString(column) {
		return nil
	}
	textual := filterCells(cells, func(v string) bool {
		return nonDigitRe.ReplaceAllString(v, "") == "" ||
			(letterRe.MatchString(v) && !strings.Contains(v, "원") && !strings.Contains(v, ","))
	})
	if len(textual) == 0 {
		return nil
	}
	return &Issue{
		Type: IssueAmount, Severity: SeverityWarning, Suggestion: suggest("cleanAmount"), AffectedRows: indexes(textual),
		Message: fmt.Sprintf("'%s' 컬럼에 텍스트가 섞여 있어 합계 계산이 불가능할 수 있습니다.", column),
	}
}

func checkName(column, _ string, cells []cell) *Issue {
	named := false
	for _, w := range nameHeaderWords {
		if strings.Contains(column, w) {
			named = true
			break
		}
	}
	if !named {
		return nil
	}
	noisy := filterCells(cells, nameNoiseRe.MatchString)
	if len(noisy) == 0 {
		return nil
	}
	return &Issue{
		Type: IssueName, Severity: SeverityWarning, Suggestion: suggest("cleanName"), AffectedRows: indexes(noisy),
		Message: fmt.Sprintf("'%s' 컬럼의 이름에 숫자나 특수문자가 섞여 있습니다.", column),
	}
}

func hasAddressMarker(v string) bool {
	for _, m := range addressMarkers {
		if strings.Contains(v, m) {
			return true
		}
	}
	return false
}

func checkAddress(column, lower string, cells []cell) *Issue {
	if !strings.Contains(lower, "주소") && !strings.Contains(lower, "address") {
		return nil
	}
	total := 0
	for _, c := range cells {
		total += utf8.RuneCountInString(c.val)
	}
	avg := float64(total) / float64(len(cells))
	if avg < 6 {
		return &Issue{
			Type: IssueAddress, Severity: SeverityWarning, AffectedRows: indexes(cells),
			Message: fmt.Sprintf("'%s' 컬럼의 데이터 길이가 너무 짧아 자동 정제가 어렵습니다. (평균 %.0f자) 원본 데이터를 확인 후 직접 수정해 주세요.", column, avg),
		}
	}

	incomplete := filterCells(cells, func(v string) bool { return !hasAddressMarker(v) })
	if float64(len(cells)-len(incomplete)) >= float64(len(cells))*0.5 {
		return nil
	}
	return &Issue{
		Type: IssueAddress, Severity: SeverityWarning, AffectedRows: indexes(incomplete),
		Message:          fmt.Sprintf("'%s' 컬럼의 주소 형식이 불완전해 보입니다. 프롬프트로 정제를 제안합니다.", column),
		PromptSuggestion: fmt.Sprintf("'%s' 컬럼의 주소에서 시/도, 시/군/구만 추출해줘", column),
	}
}

// checkCard flags card columns whose digit count falls outside 14..16.
func checkCard(column, lower string, cells []cell) *Issue {
	if !strings.Contains(column, "카드") && !strings.Contains(lower, "card") {
		return nil
	}
	bad := filterCells(cells, func(v string) bool {
		if strings.Contains(v, "*") {
			return false
		}
		n := len(nonDigitRe.ReplaceAllString(v, ""))
		return n < 14 || n > 16
	})
	if len(bad) == 0 {
		return nil
	}
	return &Issue{
		Type: IssueCard, Severity: SeverityWarning, AffectedRows: indexes(bad),
		Message: fmt.Sprintf("'%s' 컬럼에 카드번호 자릿수(14~16자리)가 맞지 않는 데이터가 있습니다.", column),
	}
}

func checkBizNum(column, first string, cells []cell) *Issue {
	if !bizLikeRe.MatchString(first) {
		return nil
	}
	biz := filterCells(cells, func(v string) bool { return len(nonDigitRe.ReplaceAllString(v, "")) == 10 })
	if float64(len(biz)) <= float64(len(cells))*0.5 {
		return nil
	}
	invalid := filterCells(biz, func(v string) bool { return !bizFormattedRe.MatchString(v) })
	if len(invalid) == 0 {
		return nil
	}
	return &Issue{
		Type: IssueBizNum, Severity: SeverityWarning, Suggestion: suggest("formatBizNum"), AffectedRows: indexes(invalid),
		Message: fmt.Sprintf("'%s' 컬럼에 사업자등록번호 형식이 아닌 데이터가 있습니다.", column),
	}
}

func checkRRN(column, _ string, cells []cell) *Issue {
	unmasked := filterCells(cells, func(v string) bool {
		return !strings.Contains(v, "*") && rrnDigitsRe.MatchString(nonDigitRe.ReplaceAllString(v, ""))
	})
	if len(unmasked) == 0 {
		return nil
	}
	return &Issue{
		Type: IssueRRN, Severity: SeverityError, Suggestion: suggest("maskPersonalData"), AffectedRows: indexes(unmasked),
		Message: fmt.Sprintf("'%s' 컬럼에 마스킹되지 않은 주민등록번호가 감지되었습니다. 개인정보 보호를 위해 마스킹을 권장합니다.", column),
	}
}

func checkURL(column, lower string, cells []cell) *Issue {
	if !strings.Contains(lower, "url") && !strings.Contains(lower, "web") && !strings.Contains(column, "사이트") && !strings.Contains(column, "홈페이지") {
		return nil
	}
	if strings.Contains(column, "이메일") || strings.Contains(lower, "email") {
		return nil
	}
	urls := filterCells(cells, func(v string) bool { return strings.Contains(v, ".") && !strings.Contains(v, "@") })
	bare := filterCells(urls, func(v string) bool { return !strings.HasPrefix(v, "http") })
	if len(bare) == 0 || float64(len(bare)) <= float64(len(urls))*0.5 {
		return nil
	}
	return &Issue{
		Type: IssueURL, Severity: SeverityInfo, Suggestion: suggest("formatUrl"), AffectedRows: indexes(bare),
		Message: fmt.Sprintf("'%s' 컬럼의 웹 사이트 주소에 프로토콜(http/https)이 누락되어 있습니다.", column),
	}
}

// ApplySuggestions turns on every option the issues suggest.
func ApplySuggestions(opts cleaning.Options, issues []Issue) (cleaning.Options, error) {
	keys := make(map[string]bool)
	for _, issue := range issues {
		for k, v := range issue.Suggestion {
			if v {
				keys[k] = true
			}
		}
	}
	return opts.With(keys)
}
