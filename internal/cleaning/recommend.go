package cleaning

import (
	"regexp"
	"strings"
)

// RecommendSampleSize is how many leading rows RecommendFormat looks at.
const RecommendSampleSize = 50

var (
	recMobileRe   = regexp.MustCompile(`01[016789]`)
	recEmailRe    = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	recTimeRe     = regexp.MustCompile(`\d+:\d+`)
	recDateRe     = regexp.MustCompile(`\d{4}[-./]\d{1,2}[-./]\d{1,2}`)
	recRRNRe      = regexp.MustCompile(`\d{6}-[1-4]\d{6}`)
	recBizRe      = regexp.MustCompile(`\d{3}-\d{2}-\d{5}`)
	recTenRe      = regexp.MustCompile(`\d{10}`)
	recCorpRe     = regexp.MustCompile(`\d{6}-\d{7}`)
	recThirteenRe = regexp.MustCompile(`\d{13}`)
	recZipRe      = regexp.MustCompile(`\b\d{5}\b`)
	recGroupedRe  = regexp.MustCompile(`\d{1,3}(?:,\d{3})+`)
	recKrnUnitRe  = regexp.MustCompile(`[만천백]원`)
	recMoneyColRe = regexp.MustCompile(`(?i)금액|가격|매출|price|amount`)
	recURLRe      = regexp.MustCompile(`www\.|https?://|\.com|\.co\.kr`)
)

// RecommendFormat inspects a column's header and leading values and suggests a
// format tag. FormatNone means no confident suggestion.
func RecommendFormat(column string, values []string) ColumnFormat {
	var sample []string
	for _, v := range values {
		if len(sample) == RecommendSampleSize {
			break
		}
		if v = strings.TrimSpace(v); v != "" {
			sample = append(sample, v)
		}
	}
	if len(sample) == 0 {
		return ColumnFormat{}
	}

	combined := strings.Join(sample, " ")
	col := strings.ToLower(column)
	has := func(words ...string) bool { return containsAnyOf(col, words) }

	kind := FormatNone
	switch {
	case recMobileRe.MatchString(combined) && has("휴대폰", "mobile", "연락처"):
		kind = FormatMobile
	case recEmailRe.MatchString(combined):
		kind = FormatEmail
	case recTimeRe.MatchString(combined) && has("일시", "time", "date"):
		kind = FormatDateTime
	case recDateRe.MatchString(combined) || has("날짜", "date"):
		kind = FormatDate
	case recRRNRe.MatchString(combined) || has("주민"):
		kind = FormatRRN
	case recBizRe.MatchString(combined) || (recTenRe.MatchString(combined) && has("사업")):
		kind = FormatBizNum
	case recCorpRe.MatchString(combined) || (recThirteenRe.MatchString(combined) && has("법인")):
		kind = FormatCorpNum
	case recZipRe.MatchString(combined) && has("우편", "zip", "postal"):
		kind = FormatZip
	case recGroupedRe.MatchString(combined) || strings.HasSuffix(combined, "원") || recMoneyColRe.MatchString(col):
		kind = FormatAmount
		if recKrnUnitRe.MatchString(combined) {
			kind = FormatAmountKrn
		}
	case recURLRe.MatchString(combined):
		kind = FormatURL
	case strings.Contains(combined, "#") || has("태그", "tag"):
		kind = FormatHashtag
	case has("sns", "인스타", "instagram"):
		kind = FormatSnsID
	case has("면적", "평수", "area"):
		kind = FormatArea
	case has("운송장", "송장", "tracking"):
		kind = FormatTrackingNum
	case has("주문", "order"):
		kind = FormatOrderID
	}
	return ColumnFormat{Kind: kind}
}
