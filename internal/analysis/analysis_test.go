package analysis

import (
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/raaihank/data-laundry/internal/cleaning"
	"github.com/raaihank/data-laundry/internal/config"
)

func findIssue(issues []Issue, column string, typ IssueType) *Issue {
	for i := range issues {
		if issues[i].Column == column && issues[i].Type == typ {
			return &issues[i]
		}
	}
	return nil
}

func sampleRows() []cleaning.Row {
	return []cleaning.Row{
		{"id": 1, "고객명": "홍길동1", "연락처": "010-1234-5678", "가입일": "2024.01.01", "이메일": "a@b.com", "우편번호": "1234", "금액": "무료"},
		{"id": 2, "고객명": " 김철수", "연락처": "01098765432", "가입일": "2024-01-02", "이메일": "bad-email@", "우편번호": "06234", "금액": "1,000원"},
	}
}

func TestDetectIssues(t *testing.T) {
	rows := sampleRows()
	issues := DetectIssues(rows, cleaning.Columns(rows), nil, cleaning.Options{})

	tests := []struct {
		column     string
		typ        IssueType
		severity   Severity
		affected   []int
		suggestion string
	}{
		{"고객명", IssueWhitespace, SeverityWarning, []int{1}, "removeWhitespace"},
		{"고객명", IssueName, SeverityWarning, []int{0}, "cleanName"},
		{"연락처", IssuePhone, SeverityWarning, []int{0, 1}, "formatMobile"},
		{"가입일", IssueDate, SeverityWarning, []int{0, 1}, "formatDate"},
		{"이메일", IssueEmail, SeverityWarning, []int{1}, "cleanEmail"},
		{"우편번호", IssueZip, SeverityWarning, []int{0}, "formatZip"},
		{"금액", IssueAmount, SeverityWarning, []int{0}, "cleanAmount"},
	}

	for _, tt := range tests {
		t.Run(tt.column+"/"+string(tt.typ), func(t *testing.T) {
			issue := findIssue(issues, tt.column, tt.typ)
			if issue == nil {
				t.Fatalf("Expected issue, got none in %+v", issues)
			}
			if issue.Severity != tt.severity {
				t.Errorf("Expected %s, got %s", tt.severity, issue.Severity)
			}
			if !reflect.DeepEqual(issue.AffectedRows, tt.affected) {
				t.Errorf("Expected rows %v, got %v", tt.affected, issue.AffectedRows)
			}
			if !issue.Suggestion[tt.suggestion] {
				t.Errorf("Expected suggestion %s, got %v", tt.suggestion, issue.Suggestion)
			}
			if issue.ID == "" {
				t.Error("Expected issue ID")
			}
		})
	}

	for _, issue := range issues {
		if issue.Column == "id" {
			t.Errorf("Expected id column skipped, got %+v", issue)
		}
	}
}

func TestDetectIssuesEmpty(t *testing.T) {
	if issues := DetectIssues(nil, nil, nil, cleaning.Options{}); len(issues) != 0 {
		t.Errorf("Expected no issues, got %v", issues)
	}
}

func TestDetectIssuesMaxLength(t *testing.T) {
	rows := []cleaning.Row{{"금액": "1,000,000"}}
	limits := Limits{"금액": 7}

	if findIssue(DetectIssues(rows, []string{"금액"}, limits, cleaning.Options{}), "금액", IssueMaxLength) == nil {
		t.Error("Expected length issue without number formatting")
	}
	issues := DetectIssues(rows, []string{"금액"}, limits, cleaning.Options{FormatNumber: true})
	if issue := findIssue(issues, "금액", IssueMaxLength); issue != nil {
		t.Errorf("Expected commas ignored, got %+v", issue)
	}
}

func TestDetectIssuesPrivacyAndShape(t *testing.T) {
	t.Run("unmasked rrn", func(t *testing.T) {
		rows := []cleaning.Row{{"주민번호": "900101-1234567"}, {"주민번호": "900101-1******"}}
		issue := findIssue(DetectIssues(rows, []string{"주민번호"}, nil, cleaning.Options{}), "주민번호", IssueRRN)
		if issue == nil || issue.Severity != SeverityError {
			t.Fatalf("Expected rrn error, got %+v", issue)
		}
		if !reflect.DeepEqual(issue.AffectedRows, []int{0}) {
			t.Errorf("Expected [0], got %v", issue.AffectedRows)
		}
	})

	t.Run("short address", func(t *testing.T) {
		rows := []cleaning.Row{{"주소": "서울"}}
		issue := findIssue(DetectIssues(rows, []string{"주소"}, nil, cleaning.Options{}), "주소", IssueAddress)
		if issue == nil || issue.PromptSuggestion != "" {
			t.Errorf("Expected short address issue without prompt, got %+v", issue)
		}
	})

	t.Run("incomplete address", func(t *testing.T) {
		rows := []cleaning.Row{{"주소": "서울특별시강남구테헤란로"}}
		issue := findIssue(DetectIssues(rows, []string{"주소"}, nil, cleaning.Options{}), "주소", IssueAddress)
		if issue == nil || issue.PromptSuggestion == "" {
			t.Errorf("Expected prompt suggestion, got %+v", issue)
		}
	})

	t.Run("url without protocol", func(t *testing.T) {
		rows := []cleaning.Row{{"홈페이지": "www.naver.com"}, {"홈페이지": "daum.net"}, {"홈페이지": "https://a.com"}}
		issue := findIssue(DetectIssues(rows, []string{"홈페이지"}, nil, cleaning.Options{}), "홈페이지", IssueURL)
		if issue == nil || !reflect.DeepEqual(issue.AffectedRows, []int{0, 1}) {
			t.Errorf("Expected url issue on rows 0,1, got %+v", issue)
		}
	})

	t.Run("card length", func(t *testing.T) {
		rows := []cleaning.Row{{"카드번호": "1234-5678"}, {"카드번호": "1234-5678-9012-3456"}}
		issue := findIssue(DetectIssues(rows, []string{"카드번호"}, nil, cleaning.Options{}), "카드번호", IssueCard)
		if issue == nil || !reflect.DeepEqual(issue.AffectedRows, []int{0}) {
			t.Errorf("Expected card issue on row 0, got %+v", issue)
		}
	})

	t.Run("relative dates", func(t *testing.T) {
		rows := []cleaning.Row{{"등록": "어제"}, {"등록": "2024-01-01"}}
		issue := findIssue(DetectIssues(rows, []string{"등록"}, nil, cleaning.Options{}), "등록", IssueDate)
		if issue == nil || issue.Severity != SeverityInfo {
			t.Errorf("Expected info date issue, got %+v", issue)
		}
	})
}

func TestDetectIssuesCleanData(t *testing.T) {
	e := cleaning.NewEngine(config.GetDefaults().Engine, nil, zap.NewNop())
	rows := sampleRows()
	opts := cleaning.Options{RemoveWhitespace: true, FormatMobile: true, FormatDate: true, CleanName: true, FormatZip: true}
	cleaned, err := e.Process(rows, "", opts, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	columns := cleaning.Columns(rows)
	before := DetectIssues(rows, columns, nil, opts)
	after := DetectIssues(cleaned, columns, nil, opts)
	if len(after) >= len(before) {
		t.Errorf("Expected fewer issues after cleaning, got %d before and %d after", len(before), len(after))
	}
}

func TestApplySuggestions(t *testing.T) {
	issues := []Issue{
		{Suggestion: map[string]bool{"formatMobile": true, "formatGeneralPhone": true}},
		{Suggestion: map[string]bool{"cleanEmail": true}},
	}
	opts, err := ApplySuggestions(cleaning.Options{FormatZip: true}, issues)
	if err != nil {
		t.Fatal(err)
	}
	if !opts.FormatMobile || !opts.FormatGeneralPhone || !opts.CleanEmail || !opts.FormatZip {
		t.Errorf("Expected suggestions merged, got %+v", opts)
	}

	_, err = ApplySuggestions(cleaning.Options{}, []Issue{{Suggestion: map[string]bool{"nope": true}}})
	if !errors.Is(err, cleaning.ErrUnknownOption) {
		t.Errorf("Expected ErrUnknownOption, got %v", err)
	}
}

func TestDiffStats(t *testing.T) {
	original := []cleaning.Row{{"a": " x", "b": ""}, {"a": "y", "b": "1"}}
	processed := []cleaning.Row{{"a": "x", "b": ""}, {"a": "y", "b": "1"}}
	before := []Issue{{Column: "a"}, {Column: "b"}}
	after := []Issue{{Column: "b", AffectedRows: []int{1}}}

	stats := DiffStats(original, processed, []string{"a", "b"}, before, after)

	expected := Stats{
		TotalRows:      2,
		ChangedCells:   1,
		ColumnChanges:  map[string]int{"a": 1},
		ResolvedIssues: 1,
		Completeness:   75,
		Validity:       75,
		QualityScore:   75,
	}
	if !reflect.DeepEqual(stats, expected) {
		t.Errorf("Expected %+v, got %+v", expected, stats)
	}

	if empty := DiffStats(nil, nil, nil, nil, nil); empty.TotalRows != 0 || empty.QualityScore != 0 {
		t.Errorf("Expected zero stats, got %+v", empty)
	}
}

func TestColumnLengths(t *testing.T) {
	rows := []cleaning.Row{{"name": "홍길동", "n": 12345}, {"name": "Kim", "n": nil}}
	got := ColumnLengths(rows, []string{"name", "n"})
	if got["name"] != 3 || got["n"] != 5 {
		t.Errorf("Expected name=3 n=5, got %v", got)
	}
}

func TestHeaderRecommendations(t *testing.T) {
	tests := []struct {
		name     string
		column   string
		value    any
		expected []string
	}{
		{"phone", "col1", "010-1234-5678", []string{"연락처", "휴대폰", "Phone", "Mobile"}},
		{"current header excluded", "연락처", "010-1234-5678", []string{"휴대폰", "Phone", "Mobile"}},
		{"fallback", "col1", "hello", []string{"데이터", "기타", "Data", "Etc"}},
		{"capped at five", "col1", "a@b.com 1,000원", []string{"이메일", "Email", "금액", "가격", "Amount"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := []cleaning.Row{{tt.column: tt.value}}
			got := HeaderRecommendations(rows, tt.column)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestRecommendFormats(t *testing.T) {
	rows := []cleaning.Row{{"휴대폰": "01012345678", "memo": "hi", "가입일": "2024/01/01"}}
	got := RecommendFormats(rows, []string{"휴대폰", "memo", "가입일"})
	if len(got) != 2 || got["휴대폰"].Kind != cleaning.FormatMobile || got["가입일"].Kind != cleaning.FormatDate {
		t.Errorf("Expected mobile and date, got %v", got)
	}
}

func TestDateCandidateColumns(t *testing.T) {
	rows := []cleaning.Row{
		{"d": "2024-01-01", "c": "20240101", "x": "hello"},
		{"d": "2024.02.01", "c": "", "x": "2024-01-01"},
		{"d": "memo", "c": "", "x": "world"},
		{"d": "", "c": "", "x": "again"},
	}
	if got := DateCandidateColumns(rows, []string{"d", "c", "x"}); got != 2 {
		t.Errorf("Expected 2, got %d", got)
	}
}

func TestEstimatePerformance(t *testing.T) {
	tests := []struct {
		memory float64
		cores  int
		tier   Tier
		rows   int
	}{
		{16, 8, TierHigh, 300000},
		{8, 4, TierMedium, 150000},
		{4, 4, TierMedium, 100000},
		{2, 16, TierLow, 30000},
		{0, 2, TierMedium, 100000},
	}

	for _, tt := range tests {
		got := EstimatePerformance(tt.memory, tt.cores)
		if got.Tier != tt.tier || got.RecommendedRows != tt.rows {
			t.Errorf("%v GB/%d cores: Expected %s/%d, got %s/%d", tt.memory, tt.cores, tt.tier, tt.rows, got.Tier, got.RecommendedRows)
		}
	}
}
