package intent

import (
	"testing"
)

func TestExtractEmptyPrompt(t *testing.T) {
	b := Extract("   ", []string{"name"})
	if len(b.Flags()) != 0 {
		t.Errorf("Expected no flags, got %v", b.Flags())
	}
	if len(b.Mappings) != 0 || len(b.Conditions) != 0 {
		t.Error("Expected no mappings or conditions for a blank prompt")
	}
	if _, ok := b.DateSeparator(); ok {
		t.Error("Expected no date separator")
	}
}

func TestExtractFlags(t *testing.T) {
	tests := []struct {
		name    string
		prompt  string
		columns []string
		flag    Flag
		scope   []string
	}{
		{"phone unscoped", "전화번호 형식 통일해줘", []string{"tel"}, FlagPhone, nil},
		{"upper scoped", "email은 대문자로 변경", []string{"email"}, FlagUpper, []string{"email"}},
		{"gungu", "주소에서 구/군만 남겨줘", []string{"주소"}, FlagGungu, []string{"주소"}},
		{"domain", "email에서 도메인만 분리해줘", []string{"email"}, FlagDomain, []string{"email"}},
		{"html", "msg에서 html이랑 이모지 지우고 memo에서 괄호내용 삭제해줘", []string{"msg", "memo"}, FlagRemoveHTML, []string{"msg"}},
		{"emoji", "msg에서 html이랑 이모지 지우고 memo에서 괄호내용 삭제해줘", []string{"msg", "memo"}, FlagRemoveEmoji, []string{"msg"}},
		{"brackets", "msg에서 html이랑 이모지 지우고 memo에서 괄호내용 삭제해줘", []string{"msg", "memo"}, FlagRemoveBrackets, []string{"memo"}},
		{"company", "회사 이름이랑 이름에서 주식회사랑 직함 다 정리해줘", []string{"회사 이름", "이름"}, FlagCompany, []string{"회사 이름", "이름"}},
		{"position", "회사 이름이랑 이름에서 주식회사랑 직함 다 정리해줘", []string{"회사 이름", "이름"}, FlagPosition, []string{"회사 이름", "이름"}},
		{"mask name", "이름 마스킹해줘", []string{"고객"}, FlagMaskName, nil},
		{"age", "나이를 연령대로 묶어줘", []string{"age"}, FlagAgeCategory, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Extract(tt.prompt, tt.columns)
			if !b.Has(tt.flag) {
				t.Fatalf("Expected flag %s, got %v", tt.flag, b.Flags())
			}
			scope := b.ScopeOf(tt.flag)
			if len(scope) != len(tt.scope) {
				t.Fatalf("Expected scope %v, got %v", tt.scope, scope)
			}
			for _, c := range tt.scope {
				if !scope.Covers(c) {
					t.Errorf("Expected scope %v to cover %s", scope, c)
				}
			}
		})
	}
}

func TestExtractFlagExclusions(t *testing.T) {
	b := Extract("해시태그 정리해줘", nil)
	if b.Has(FlagRemoveHTML) {
		t.Error("Expected 해시태그 not to raise html removal")
	}
	if !b.Has(FlagHashtag) {
		t.Error("Expected hashtag flag")
	}

	b = Extract("숫자만 남겨줘", nil)
	if b.Has(FlagRemoveDigits) {
		t.Error("Expected 숫자만 not to raise digit removal")
	}
	if !b.Has(FlagDigitsOnly) {
		t.Error("Expected digits-only flag")
	}
}

func TestUnscopedFlagWidens(t *testing.T) {
	b := Extract("name 대문자로 바꾸고 전부 대문자로 바꿔줘", []string{"name", "city"})
	if b.ScopeOf(FlagUpper).Explicit() {
		t.Errorf("Expected an unscoped flag to win, got %v", b.ScopeOf(FlagUpper))
	}
}

func TestClearLongZip(t *testing.T) {
	b := Extract("우편번호가 5자리 넘으면 빈칸으로 바꿔줘", []string{"zip"})
	if !b.Has(FlagZip) || !b.Has(FlagClearLongZip) {
		t.Errorf("Expected zip and clearLongZip, got %v", b.Flags())
	}

	b = Extract("우편번호 정리해줘", []string{"zip"})
	if b.Has(FlagClearLongZip) {
		t.Error("Expected clearLongZip only when five digits and clearing are both asked")
	}
}

func TestExtractMappings(t *testing.T) {
	t.Run("literal", func(t *testing.T) {
		b := Extract("test@naver.com은 sample@test.com으로 변경", []string{"email"})
		got, ok := b.Lookup("email", "TEST@naver.com")
		if !ok || got != "sample@test.com" {
			t.Errorf("Expected sample@test.com, got %q (%v)", got, ok)
		}
	})

	t.Run("column names are not sources", func(t *testing.T) {
		b := Extract("email은 대문자로 변경", []string{"email"})
		if len(b.Mappings) != 0 {
			t.Errorf("Expected no mappings, got %v", b.Mappings)
		}
	})

	t.Run("blank synonym", func(t *testing.T) {
		b := Extract("없음은 공백으로 변경", []string{"memo"})
		got, ok := b.Lookup("memo", "없음")
		if !ok || got != "" {
			t.Errorf("Expected blank mapping, got %q (%v)", got, ok)
		}
	})

	t.Run("wildcard with column hint", func(t *testing.T) {
		b := Extract("'Address' 컬럼의 [%4d]원을 빈칸으로 변경", []string{"Address", "memo"})
		if len(b.Patterns) != 1 {
			t.Fatalf("Expected 1 pattern, got %d", len(b.Patterns))
		}
		if to, ok := b.MatchPattern("Address", "1234원"); !ok || to != "" {
			t.Errorf("Expected 1234원 to blank, got %q (%v)", to, ok)
		}
		if _, ok := b.MatchPattern("Address", "695원"); ok {
			t.Error("Expected 695원 to stay")
		}
		if _, ok := b.MatchPattern("memo", "1234원"); ok {
			t.Error("Expected the hint to keep the pattern off other columns")
		}
	})

	t.Run("chained mappings", func(t *testing.T) {
		prompts := []string{
			"a는 b로 바꾸고 c는 d로 바꿔줘",
			"a는 b로 변경하고 c는 d로 수정해줘",
			"a는 b로 수정하고 c는 d로 변경",
			"a는 b로 치환하고 c는 d로 교체해줘",
		}
		for _, prompt := range prompts {
			b := Extract(prompt, nil)
			if got, ok := b.Lookup("x", "a"); !ok || got != "b" {
				t.Errorf("%s: expected a to map to b, got %q (%v)", prompt, got, ok)
			}
			if got, ok := b.Lookup("x", "c"); !ok || got != "d" {
				t.Errorf("%s: expected c to map to d, got %q (%v)", prompt, got, ok)
			}
		}
	})

	t.Run("quoted wildcard source", func(t *testing.T) {
		b := Extract(`"[%3d]원"은 빈칸으로 바꿔줘`, []string{"memo"})
		if len(b.Patterns) != 1 {
			t.Fatalf("Expected 1 pattern, got %d", len(b.Patterns))
		}
		if to, ok := b.MatchPattern("memo", "532원"); !ok || to != "" {
			t.Errorf("Expected 532원 to blank, got %q (%v)", to, ok)
		}
		if _, ok := b.MatchPattern("memo", "5320원"); ok {
			t.Error("Expected 5320원 to stay")
		}
	})

	t.Run("quoted literal source", func(t *testing.T) {
		b := Extract("'미정'은 대기로 바꿔줘", []string{"status"})
		if got, ok := b.Lookup("status", "미정"); !ok || got != "대기" {
			t.Errorf("Expected 대기, got %q (%v)", got, ok)
		}
	})

	t.Run("quoted target is not a blank mapping", func(t *testing.T) {
		b := Extract("abc는 'x'로 바꿔줘", nil)
		if _, ok := b.Lookup("memo", "abc"); ok {
			t.Errorf("Expected no literal mapping, got %v", b.Mappings)
		}
	})

	t.Run("first mapping wins", func(t *testing.T) {
		b := Extract("A는 B로 변경. A는 C로 변경", nil)
		if got, _ := b.Lookup("x", "a"); got != "B" {
			t.Errorf("Expected B, got %q", got)
		}
	})
}

func TestExtractTokenRules(t *testing.T) {
	t.Run("condition", func(t *testing.T) {
		b := Extract("price가 10000 이상이면 'High'로 바꿔줘", []string{"price"})
		if len(b.Conditions) != 1 {
			t.Fatalf("Expected 1 condition, got %d", len(b.Conditions))
		}
		c := b.Conditions[0]
		if c.Column != "price" || c.Op != OpGTE || c.Threshold != 10000 || c.Value != "High" {
			t.Errorf("Unexpected condition %+v", c)
		}
		if !c.Matches("12,000") || c.Matches("9999") || c.Matches("abc") || c.Matches("") {
			t.Error("Condition matching is wrong")
		}
	})

	t.Run("two conditions", func(t *testing.T) {
		b := Extract("price가 10000 이상이면 'High'로 바꾸고 price가 1000 미만이면 'Low'로 바꿔줘", []string{"price"})
		if len(b.Conditions) != 2 {
			t.Fatalf("Expected 2 conditions, got %d", len(b.Conditions))
		}
		high, low := b.Conditions[0], b.Conditions[1]
		if high.Op != OpGTE || high.Threshold != 10000 || high.Value != "High" {
			t.Errorf("Unexpected first condition %+v", high)
		}
		if low.Op != OpLT || low.Threshold != 1000 || low.Value != "Low" {
			t.Errorf("Unexpected second condition %+v", low)
		}
	})

	t.Run("operators", func(t *testing.T) {
		cases := map[string]Operator{
			"score가 50 미만이면 F로 바꿔줘":   OpLT,
			"score가 90 초과하면 A로 변경":     OpGT,
			"score가 0 이하이면 '없음'으로 수정":  OpLTE,
			"score가 100 같으면 만점으로 바꿔줘": OpEQ,
		}
		for prompt, want := range cases {
			b := Extract(prompt, []string{"score"})
			if len(b.Conditions) != 1 {
				t.Errorf("%s: expected 1 condition, got %d", prompt, len(b.Conditions))
				continue
			}
			if b.Conditions[0].Op != want {
				t.Errorf("%s: expected %s, got %s", prompt, want, b.Conditions[0].Op)
			}
		}
	})

	t.Run("null fill", func(t *testing.T) {
		b := Extract("grade가 비어있으면 'Unknown'으로 채워줘", []string{"grade"})
		if len(b.NullFills) != 1 {
			t.Fatalf("Expected 1 null fill, got %d", len(b.NullFills))
		}
		if f := b.NullFills[0]; f.Column != "grade" || f.Value != "Unknown" {
			t.Errorf("Unexpected null fill %+v", f)
		}
	})

	t.Run("unknown column kept as written", func(t *testing.T) {
		b := Extract("등급이 비어있으면 미정으로 채워줘", []string{"grade"})
		if len(b.NullFills) != 1 || b.NullFills[0].Column != "등급" || b.NullFills[0].Value != "미정" {
			t.Errorf("Unexpected null fills %+v", b.NullFills)
		}
	})
}

func TestExtractDirectives(t *testing.T) {
	t.Run("removal", func(t *testing.T) {
		b := Extract("성함에서 '과장' 지워줘", []string{"성함"})
		if len(b.Removals) != 1 || b.Removals[0].Literal != "과장" || !b.Removals[0].Scope.Covers("성함") {
			t.Errorf("Unexpected removals %+v", b.Removals)
		}
	})

	t.Run("padding", func(t *testing.T) {
		b := Extract("id를 5자리 0으로 채워줘", []string{"id"})
		if len(b.Paddings) != 1 {
			t.Fatalf("Expected 1 padding, got %d", len(b.Paddings))
		}
		p := b.Paddings[0]
		if p.Width != 5 || p.Fill != '0' || !p.Scope.Covers("id") {
			t.Errorf("Unexpected padding %+v", p)
		}
	})

	t.Run("padding then prefix inherits the column", func(t *testing.T) {
		b := Extract("id를 4자리 0으로 채우고 앞에 'NO_' 붙여줘", []string{"id", "name"})
		if len(b.Paddings) != 1 || b.Paddings[0].Width != 4 {
			t.Fatalf("Unexpected paddings %+v", b.Paddings)
		}
		if len(b.Affixes) != 1 {
			t.Fatalf("Expected 1 affix, got %d", len(b.Affixes))
		}
		a := b.Affixes[0]
		if a.Prefix != "NO_" || a.Suffix != "" {
			t.Errorf("Unexpected affix %+v", a)
		}
		if !a.Scope.Covers("id") || a.Scope.Covers("name") {
			t.Errorf("Expected affix scope [id], got %v", a.Scope)
		}
	})

	t.Run("suffix", func(t *testing.T) {
		b := Extract("code 뒤에 '_KR' 붙여줘", []string{"code"})
		if len(b.Affixes) != 1 || b.Affixes[0].Suffix != "_KR" {
			t.Errorf("Unexpected affixes %+v", b.Affixes)
		}
	})

	t.Run("replacement and casing in one prompt", func(t *testing.T) {
		b := Extract("memo에서 '2,500,000'을 'VIP_PAY'로 바꾸고 msg 대문자로 변경", []string{"memo", "msg"})
		if len(b.Replacements) != 1 {
			t.Fatalf("Expected 1 replacement, got %d", len(b.Replacements))
		}
		r := b.Replacements[0]
		if r.From != "2,500,000" || r.To != "VIP_PAY" || !r.Scope.Covers("memo") || r.Scope.Covers("msg") {
			t.Errorf("Unexpected replacement %+v", r)
		}
		scope := b.ScopeOf(FlagUpper)
		if !scope.Covers("msg") || scope.Covers("memo") {
			t.Errorf("Expected upper scope [msg], got %v", scope)
		}
	})
}

func TestExtractDateSeparator(t *testing.T) {
	tests := []struct {
		prompt string
		want   string
		ok     bool
	}{
		{"날짜를 YYYY/MM/DD 형식으로 바꿔줘", "/", true},
		{"날짜를 yyyy-mm-dd로", "-", true},
		{"날짜를 yyyymmdd로 통일", "", true},
		{"날짜 슬래시로 구분해줘", "/", true},
		{"날짜에서 하이픈 제거해줘", "", true},
		{"날짜를 점으로 구분", ".", true},
		{"날짜를 8자리로", "", true},
		{"하이픈 제거해줘", "", false},
		{"날짜 정리해줘", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			sep, ok := Extract(tt.prompt, nil).DateSeparator()
			if ok != tt.ok || sep != tt.want {
				t.Errorf("Expected (%q, %v), got (%q, %v)", tt.want, tt.ok, sep, ok)
			}
		})
	}
}

func TestScopeCovers(t *testing.T) {
	s := Scope{"Email"}
	if !s.Covers("email") {
		t.Error("Expected case-insensitive cover")
	}
	if Scope(nil).Explicit() {
		t.Error("Expected nil scope not to be explicit")
	}
}
