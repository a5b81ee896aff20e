package cleaning

import "testing"

type transformCase struct {
	input    string
	expected string
}

func runTransform(t *testing.T, fn func(string) string, cases []transformCase) {
	t.Helper()
	for _, tt := range cases {
		t.Run(tt.input, func(t *testing.T) {
			if got := fn(tt.input); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		input            string
		mobile, landline bool
		expected         string
	}{
		{"01012345678", true, false, "010-1234-5678"},
		{"+82 10-9876-5432", true, false, "010-9876-5432"},
		{"0212345678", false, true, "02-1234-5678"},
		{"0311234567", false, true, "031-123-4567"},
		{"12345678", false, false, "1234-5678"},
		{"02-123-4567", false, false, "02-123-4567"},
		{"전화없음", false, false, ""},
		{"123", false, false, "123"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := formatPhone(tt.input, tt.mobile, tt.landline); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestFormatThousands(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{1500000, "1,500,000"},
		{123.45, "123.45"},
		{-1234.5, "-1,234.5"},
		{1000, "1,000"},
		{0, "0"},
		{-0.0001, "0"},
		{999, "999"},
	}

	for _, tt := range tests {
		if got := formatThousands(tt.input); got != tt.expected {
			t.Errorf("formatThousands(%v): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestNumberStage(t *testing.T) {
	runTransform(t, func(v string) string { return numberStage(v, nil) }, []transformCase{
		{"1500000", "1,500,000"},
		{"1,234.5", "1,234.5"},
		{"0123", "0123"},
		{"20240101", "20240101"},
		{"abc", "abc"},
		{"", ""},
	})
}

func TestAmountValue(t *testing.T) {
	runTransform(t, amountValue, []transformCase{
		{"150만원", "1,500,000"},
		{"3천5백원", "3,500"},
		{"₩12,000", "12,000"},
		{"-500원", "-500"},
		{"무료", "무료"},
		{"High", "High"},
		{"-", "-"},
		{"", ""},
	})
}

func TestFormatZip(t *testing.T) {
	tests := []struct {
		input     string
		clearLong bool
		expected  string
	}{
		{"1234", false, "01234"},
		{"06236", false, "06236"},
		{"062361", false, "06236"},
		{"062361", true, ""},
		{"서울", false, "서울"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := formatZip(tt.input, tt.clearLong); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestIdentifierTransforms(t *testing.T) {
	t.Run("bizNum", func(t *testing.T) {
		runTransform(t, formatBizNum, []transformCase{{"1234567890", "123-45-67890"}, {"12345", "12345"}})
	})
	t.Run("corpNum", func(t *testing.T) {
		runTransform(t, formatCorpNum, []transformCase{{"1101111234567", "110111-1234567"}})
	})
	t.Run("url", func(t *testing.T) {
		runTransform(t, formatURL, []transformCase{
			{"naver.com", "https://naver.com"},
			{"http://a.com", "http://a.com"},
			{"a@b.com", "a@b.com"},
			{"없음", "없음"},
		})
	})
	t.Run("tracking", func(t *testing.T) {
		runTransform(t, formatTrackingNum, []transformCase{{"1234-5678-9012", "123456789012"}, {"123", "123"}})
	})
	t.Run("orderId", func(t *testing.T) {
		runTransform(t, cleanOrderID, []transformCase{{"#ORD-2024/001", "ORD-2024001"}})
	})
	t.Run("email", func(t *testing.T) {
		runTransform(t, cleanEmail, []transformCase{{"bad-email", ""}, {"a@b.co", "a@b.co"}, {"", ""}})
	})
	t.Run("email tag", func(t *testing.T) {
		runTransform(t, formatEmailTag, []transformCase{{" Hong@Naver.COM ", "hong@naver.com"}, {"nope", ""}})
	})
}

func TestNumericTransforms(t *testing.T) {
	t.Run("accounting", func(t *testing.T) {
		runTransform(t, formatAccountingNum, []transformCase{{"(1,000)", "-1000"}, {"△500", "-500"}, {"▲2,000", "-2000"}, {"1000", "1000"}})
	})
	t.Run("exponential", func(t *testing.T) {
		runTransform(t, restoreExponential, []transformCase{{"1.23E+12", "1230000000000"}, {"12345", "12345"}})
	})
	t.Run("age", func(t *testing.T) {
		runTransform(t, categorizeAge, []transformCase{{"37", "30대"}, {"25세", "20대"}, {"30대", "30대"}, {"age", "age"}})
	})
	t.Run("unit", func(t *testing.T) {
		runTransform(t, stripUnit, []transformCase{{"84.5㎡", "84.5"}, {"32평", "32"}, {"1,200g", "1200"}, {"없음", "없음"}})
	})
	t.Run("currency", func(t *testing.T) {
		runTransform(t, standardizeCurrency, []transformCase{{"₩1500000", "1,500,000"}, {"$ 12.5", "12.5"}, {"1000", "1000"}})
	})
}

func TestTruncateDate(t *testing.T) {
	if got := truncateDate("2024-03-15", "."); got != "2024.03" {
		t.Errorf("Expected 2024.03, got %q", got)
	}
	if got := truncateDate("2024.03", "."); got != "2024.03" {
		t.Errorf("Expected truncation to be stable, got %q", got)
	}
}

func TestSocialTransforms(t *testing.T) {
	t.Run("snsId", func(t *testing.T) {
		runTransform(t, cleanSnsID, []transformCase{
			{"https://instagram.com/data_laundry/", "@data_laundry"},
			{"@hong", "@hong"},
			{"hong.gd", "@hong.gd"},
		})
	})
	t.Run("hashtag", func(t *testing.T) {
		runTransform(t, formatHashtag, []transformCase{
			{"#여름 #바캉스", "#여름 #바캉스"},
			{"여름 휴가, 바다", "#여름_휴가 #바다"},
		})
	})
	t.Run("sku", func(t *testing.T) {
		runTransform(t, normalizeSKU, []transformCase{{"sku_123 abc", "SKU-123-ABC"}, {"SKU-12345-ABC", "SKU-12345-ABC"}})
	})
}

func TestTextTransforms(t *testing.T) {
	t.Run("cleanName", func(t *testing.T) {
		runTransform(t, cleanName, []transformCase{{"박영희!!!", "박영희"}, {"Lee (CEO)", "Lee CEO"}, {"!!!", "!!!"}})
	})
	t.Run("garbage", func(t *testing.T) {
		runTransform(t, cleanGarbage, []transformCase{{"N/A", ""}, {"홍길동", "홍길동"}})
	})
	t.Run("html", func(t *testing.T) {
		runTransform(t, removeHTML, []transformCase{{"<p>Hello <b>World</b></p>", "Hello World"}, {"a < b", "a < b"}})
	})
	t.Run("emoji", func(t *testing.T) {
		runTransform(t, removeEmoji, []transformCase{{"좋아요 👍 최고", "좋아요 최고"}})
	})
	t.Run("digitsOnly", func(t *testing.T) {
		runTransform(t, digitsOnly, []transformCase{{"TEL: 010-1234", "0101234"}, {"abc", "abc"}})
	})
	t.Run("koreanOnly", func(t *testing.T) {
		runTransform(t, koreanOnly, []transformCase{{"홍길동(Hong)", "홍길동"}})
	})
	t.Run("englishOnly", func(t *testing.T) {
		runTransform(t, englishOnly, []transformCase{{"홍길동 Hong", "Hong"}})
	})
	t.Run("removeDigits", func(t *testing.T) {
		runTransform(t, removeDigits, []transformCase{{"A동 101호", "A동 호"}})
	})
	t.Run("removeSpecial", func(t *testing.T) {
		runTransform(t, removeSpecial, []transformCase{{"hello!! @world#", "hello world"}})
	})
	t.Run("removeBrackets", func(t *testing.T) {
		runTransform(t, removeBrackets, []transformCase{{"비고: [비공개] 데이터입니다.", "비고:  데이터입니다."}})
	})
	t.Run("company", func(t *testing.T) {
		runTransform(t, cleanCompanyName, []transformCase{
			{"(주)데이터세탁소", "데이터세탁소"},
			{"㈜한빛", "한빛"},
			{"주식회사 카카오", "카카오"},
			{"Acme Co., Ltd.", "Acme"},
			{"Samsung Electronics Inc.", "Samsung Electronics"},
		})
	})
	t.Run("position", func(t *testing.T) {
		runTransform(t, removePosition, []transformCase{
			{"홍길동 대리", "홍길동"},
			{"Lee (CEO)", "Lee"},
			{"김과장", "김과장"},
			{"대표", "대표"},
		})
	})
}

func TestAddressTransforms(t *testing.T) {
	t.Run("dong", func(t *testing.T) {
		runTransform(t, extractDong, []transformCase{
			{"서울시 강남구 역삼동 123-456", "역삼동"},
			{"테헤란로 152 (역삼동, 강남파이낸스센터)", "역삼동"},
			{"서울 종로구", "서울 종로구"},
		})
	})
	t.Run("building", func(t *testing.T) {
		runTransform(t, extractBuilding, []transformCase{
			{"서울특별시 강남구 테헤란로 152 (역삼동, 강남파이낸스센터)", "강남파이낸스센터"},
			{"부산 해운대구 센텀타워 3층", "센텀타워"},
			{"서울 종로구", "서울 종로구"},
		})
	})
	t.Run("sido", func(t *testing.T) {
		runTransform(t, extractSido, []transformCase{
			{"서울특별시 강남구", "서울특별시"},
			{"경기도 성남시", "경기도"},
			{"강남구 역삼동", "강남구 역삼동"},
		})
	})
	t.Run("gungu", func(t *testing.T) {
		runTransform(t, extractGungu, []transformCase{
			{"경기도 성남시 분당구 판교역로", "분당구"},
			{"경기도 수원시", "수원시"},
			{"경기도 가평군 청평면", "가평군"},
		})
	})
	t.Run("domain", func(t *testing.T) {
		runTransform(t, extractDomain, []transformCase{
			{"user@kb.co.kr", "kb.co.kr"},
			{"https://www.naver.com/path", "www.naver.com"},
			{"plain", "plain"},
		})
	})
}

func TestMaskTransforms(t *testing.T) {
	t.Run("card", func(t *testing.T) {
		runTransform(t, maskCard, []transformCase{
			{"1234-5678-9012-3456", "1234-5678-9012-****"},
			{"1234567890", "123456****"},
			{"123456789", "123456789"},
			{"12345678901234567890", "12345678901234567890"},
		})
	})
	t.Run("account", func(t *testing.T) {
		runTransform(t, maskAccount, []transformCase{{"110-123-456789", "110-123-******"}})
	})
	t.Run("name", func(t *testing.T) {
		runTransform(t, maskName, []transformCase{{"홍길동", "홍*동"}, {"이수", "이*"}, {"남궁민수", "남**수"}, {"김", "김"}})
	})
	t.Run("email", func(t *testing.T) {
		runTransform(t, maskEmail, []transformCase{{"hong@naver.com", "ho**@naver.com"}, {"ab@x.com", "a*@x.com"}})
	})
	t.Run("address", func(t *testing.T) {
		runTransform(t, maskAddress, []transformCase{{"서울특별시 강남구 테헤란로 152 5층", "서울특별시 강남구 테헤란로 *** **"}})
	})
	t.Run("phoneMid", func(t *testing.T) {
		runTransform(t, maskPhoneMid, []transformCase{{"01012345678", "010-****-5678"}, {"02-123-4567", "02-***-4567"}})
	})
	t.Run("rrn", func(t *testing.T) {
		if got := maskRRN("9001011234567", nil); got != "900101-*******" {
			t.Errorf("Expected 900101-*******, got %q", got)
		}
		if got := maskRRN("abc", nil); got != "abc" {
			t.Errorf("Expected abc, got %q", got)
		}
	})

	t.Run("masks are stable", func(t *testing.T) {
		masks := []func(string) string{maskCard, maskAccount, maskName, maskEmail, maskAddress, maskPhoneMid}
		inputs := []string{"1234-5678-9012-3456", "110-123-456789", "홍길동", "hong@naver.com", "서울특별시 강남구 테헤란로 152 5층", "01012345678"}
		for i, mask := range masks {
			once := mask(inputs[i])
			if twice := mask(once); twice != once {
				t.Errorf("Expected %q to be stable, got %q", once, twice)
			}
		}
	})
}
