package analysis

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/raaihank/data-laundry/internal/cleaning"
)

const (
	headerSampleSize = 20
	dateSampleSize   = 50
	maxHeaderRecs    = 5
)

var (
	recPhoneRe    = regexp.MustCompile(`01[016789]|-?\d{3,4}-?\d{4}`)
	recEmailRe    = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	recAmountRe   = regexp.MustCompile(`(?i)원|금액|매출|가격|price|amount|\d{1,3}(?:,\d{3})+`)
	recDateRe     = regexp.MustCompile(`\d{4}[-./]\d{1,2}[-./]\d{1,2}|오늘|어제|일시|일자`)
	recZipRe      = regexp.MustCompile(`\b\d{5}\b`)
	recZipColRe   = regexp.MustCompile(`(?i)zip|postal`)
	recNameColRe  = regexp.MustCompile(`(?i)name|이름|성함|성명`)
	recBizRe      = regexp.MustCompile(`\d{3}-\d{2}-\d{5}`)
	recTenRe      = regexp.MustCompile(`\d{10}`)
	recCorpRe     = regexp.MustCompile(`\d{6}-\d{7}`)
	recThirteenRe = regexp.MustCompile(`\d{13}`)
	recURLRe      = regexp.MustCompile(`www\.|https?://|\.com|\.co\.kr`)
	recRRNRe      = regexp.MustCompile(`\d{6}-[1-4]\d{6}`)
	dateCellRe    = regexp.MustCompile(`^\d{4}[-./]\d{1,2}[-./]\d{1,2}|^\d{8}$`)
	majorCities   = []string{"서울", "경기", "부산", "대구", "인천", "광주", "대전", "울산", "세종"}
)

// ColumnValues returns the stringified values of one column.
func ColumnValues(rows []cleaning.Row, column string, limit int) []string {
	if limit <= 0 || limit > len(rows) {
		limit = len(rows)
	}
	out := make([]string, limit)
	for i := 0; i < limit; i++ {
		out[i] = cleaning.Stringify(rows[i][column])
	}
	return out
}

// ColumnLengths returns the longest value per column, in characters.
func ColumnLengths(rows []cleaning.Row, columns []string) Limits {
	out := make(Limits, len(columns))
	for _, column := range columns {
		longest := 0
		for _, row := range rows {
			if n := utf8.RuneCountInString(cleaning.Stringify(row[column])); n > longest {
				longest = n
			}
		}
		out[column] = longest
	}
	return out
}

// HeaderRecommendations suggests up to five header names for a column based on
// its first values. The current header is never suggested.
func HeaderRecommendations(rows []cleaning.Row, column string) []string {
	combined := strings.Join(ColumnValues(rows, column, headerSampleSize), " ")

	var recs []string
	add := func(names ...string) { recs = append(recs, names...) }
	if recPhoneRe.MatchString(combined) {
		add("연락처", "휴대폰", "Phone", "Mobile")
	}
	if recEmailRe.MatchString(combined) {
		add("이메일", "Email")
	}
	if recAmountRe.MatchString(combined + column) {
		add("금액", "가격", "Amount", "Price")
	}
	if recDateRe.MatchString(combined + column) {
		add("날짜", "등록일시", "Date")
	}
	if recZipRe.MatchString(combined) && (strings.Contains(column, "우편") || recZipColRe.MatchString(column)) {
		add("우편번호", "Zip Code", "Postcode")
	}
	if recNameColRe.MatchString(column) {
		add("고객명", "성함", "Name", "Customer")
	}
	for _, city := range majorCities {
		if strings.Contains(combined, city) {
			add("주소", "거주지", "Address")
			break
		}
	}
	if recBizRe.MatchString(combined) || (recTenRe.MatchString(combined) && strings.Contains(column, "사업")) {
		add("사업자등록번호", "사업자번호", "BizNo")
	}
	if recCorpRe.MatchString(combined) || (recThirteenRe.MatchString(combined) && strings.Contains(column, "법인")) {
		add("법인등록번호", "법인번호", "CorpNo")
	}
	if recURLRe.MatchString(combined) {
		add("홈페이지", "웹사이트", "URL", "Website")
	}
	if recRRNRe.MatchString(combined) {
		add("주민등록번호", "주민번호", "RRN")
	}
	if len(recs) == 0 {
		add("데이터", "기타", "Data", "Etc")
	}

	seen := map[string]bool{column: true}
	out := make([]string, 0, maxHeaderRecs)
	for _, r := range recs {
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
		if len(out) == maxHeaderRecs {
			break
		}
	}
	return out
}

// RecommendFormats suggests a format tag per column from its leading values.
// Columns without a confident suggestion are left out.
func RecommendFormats(rows []cleaning.Row, columns []string) map[string]cleaning.ColumnFormat {
	out := make(map[string]cleaning.ColumnFormat)
	for _, column := range columns {
		f := cleaning.RecommendFormat(column, ColumnValues(rows, column, cleaning.RecommendSampleSize))
		if f.Kind != cleaning.FormatNone {
			out[column] = f
		}
	}
	return out
}

// DateCandidateColumns counts columns where more than 30% of the non-empty
// leading values look like dates.
func DateCandidateColumns(rows []cleaning.Row, columns []string) int {
	count := 0
	for _, column := range columns {
		matched, filled := 0, 0
		for _, v := range ColumnValues(rows, column, dateSampleSize) {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			filled++
			if dateCellRe.MatchString(v) {
				matched++
			}
		}
		if filled > 0 && float64(matched)/float64(filled) > 0.3 {
			count++
		}
	}
	return count
}
