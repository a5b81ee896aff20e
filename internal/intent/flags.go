package intent

import "strings"

// Flag is a boolean instruction raised by keyword co-occurrence.
type Flag int

const (
	// Topics that switch on the same stages as the checkbox options.
	FlagPhone Flag = iota
	FlagMobileHint
	FlagLandlineHint
	FlagWhitespace
	FlagNameMentioned
	FlagDate
	FlagDateTime
	FlagNumber
	FlagAmount
	FlagEmail
	FlagZip
	FlagClearLongZip
	FlagGarbage
	FlagCleanName
	FlagBizNum
	FlagCorpNum
	FlagURL
	FlagMaskPersonal
	FlagTracking
	FlagSKU
	FlagHashtag
	FlagCurrency
	FlagDedupe

	// Instructions with no checkbox of their own, or checkbox behaviour
	// requested in words.
	FlagDigitsOnly
	FlagKoreanOnly
	FlagEnglishOnly
	FlagRemoveDigits
	FlagRemoveHyphen
	FlagRemoveSpecial
	FlagRemoveBrackets
	FlagRemoveHTML
	FlagRemoveEmoji
	FlagSido
	FlagGungu
	FlagDong
	FlagBuilding
	FlagDomain
	FlagCompany
	FlagPosition
	FlagMaskName
	FlagMaskPhone
	FlagMaskEmail
	FlagMaskCard
	FlagMaskAccount
	FlagMaskAddress
	FlagAgeCategory
	FlagTruncateMonth
	FlagExponential
	FlagUnit
	FlagUpper
	FlagLower

	flagCount
)

var flagNames = [flagCount]string{
	"phone", "mobileHint", "landlineHint", "whitespace", "nameMentioned",
	"date", "dateTime", "number", "amount", "email", "zip", "clearLongZip",
	"garbage", "cleanName", "bizNum", "corpNum", "url", "maskPersonal",
	"tracking", "sku", "hashtag", "currency", "dedupe",
	"digitsOnly", "koreanOnly", "englishOnly", "removeDigits", "removeHyphen",
	"removeSpecial", "removeBrackets", "removeHtml", "removeEmoji", "sido",
	"gungu", "dong", "building", "domain", "company", "position", "maskName",
	"maskPhone", "maskEmail", "maskCard", "maskAccount", "maskAddress",
	"ageCategory", "truncateMonth", "exponential", "unit", "upper", "lower",
}

func (f Flag) String() string {
	if f < 0 || f >= flagCount {
		return "unknown"
	}
	return flagNames[f]
}

var (
	removeWords  = []string{"지워", "지우", "제거", "삭제", "없애", "빼", "떼", "날려"}
	cleanWords   = append([]string{"정리", "닦아", "통일", "표준", "바꿔", "바꾸", "변경", "고쳐", "수정"}, removeWords...)
	extractWords = []string{"남겨", "남기", "추출", "분리", "뽑아", "나눠", "만 "}
	maskWords    = []string{"마스킹", "가려", "가리", "가림", "별표", "숨겨", "비식별"}
	actionWords  = append(append([]string{}, cleanWords...), extractWords...)
)

// gate raises flag when any topic occurs and, if actions is non-empty, an
// action word occurs in the same clause. Topic occurrences inside an excluded
// phrase are ignored.
type gate struct {
	flag    Flag
	topics  []string
	actions []string
	exclude []string
}

var gates = []gate{
	{flag: FlagPhone, topics: []string{"휴대폰", "핸드폰", "전화번호", "폰번호", "연락처"}},
	{flag: FlagMobileHint, topics: []string{"휴대폰", "핸드폰", "모바일", "010"}},
	{flag: FlagLandlineHint, topics: []string{"지역번호", "유선전화", "일반전화", "집전화"}},
	{flag: FlagWhitespace, topics: []string{"공백", "스페이스", "빈칸", "띄어쓰기"}, actions: actionWords},
	{flag: FlagNameMentioned, topics: []string{"이름", "성함", "성명"}},
	{flag: FlagDate, topics: []string{"날짜", "일시", "일자", "date", "생년월일"}},
	{flag: FlagDateTime, topics: []string{"시간까지", "시각", "datetime", "타임스탬프"}},
	{flag: FlagNumber, topics: []string{"콤마", "쉼표", "천단위", "천 단위", "세자리"}, exclude: []string{"콤마 제거", "쉼표 제거"}},
	{flag: FlagNumber, topics: []string{"숫자"}, actions: []string{"포맷", "형식", "서식"}},
	{flag: FlagAmount, topics: []string{"금액", "가격", "단가", "원화", "만원", "천원"}},
	{flag: FlagEmail, topics: []string{"이메일", "메일", "email"}},
	{flag: FlagZip, topics: []string{"우편번호", "우편", "zip", "postal"}},
	{flag: FlagGarbage, topics: []string{"가비지", "쓰레기", "의미없는", "의미 없는", "깨진", "garbage", "noise", "노이즈"}},
	{flag: FlagCleanName, topics: []string{"이름", "성함", "성명", "고객명"}, actions: actionWords},
	{flag: FlagBizNum, topics: []string{"사업자번호", "사업자등록번호", "사업자 번호"}},
	{flag: FlagCorpNum, topics: []string{"법인번호", "법인등록번호"}},
	{flag: FlagURL, topics: []string{"url", "홈페이지", "웹사이트"}, actions: []string{"정리", "통일", "표준", "붙여", "추가", "형식", "포맷"}},
	{flag: FlagMaskPersonal, topics: []string{"주민번호", "주민등록번호", "개인정보"}, actions: maskWords},
	{flag: FlagTracking, topics: []string{"송장", "운송장"}, actions: cleanWords},
	{flag: FlagSKU, topics: []string{"sku", "품번", "상품코드"}, actions: append([]string{"정규화"}, cleanWords...)},
	{flag: FlagHashtag, topics: []string{"해시태그"}, actions: append([]string{"붙여"}, cleanWords...)},
	{flag: FlagCurrency, topics: []string{"통화 기호", "통화기호", "화폐 기호", "통화 표시"}, actions: cleanWords},
	{flag: FlagDedupe, topics: []string{"중복"}, actions: removeWords},

	{flag: FlagDigitsOnly, topics: []string{"숫자만"}},
	{flag: FlagKoreanOnly, topics: []string{"한글만"}},
	{flag: FlagEnglishOnly, topics: []string{"영문만", "영어만", "알파벳만"}},
	{flag: FlagRemoveDigits, topics: []string{"숫자"}, actions: removeWords, exclude: []string{"숫자만"}},
	{flag: FlagRemoveHyphen, topics: []string{"하이픈", "대시", "대쉬", "'-'", "\"-\""}, actions: removeWords},
	{flag: FlagRemoveSpecial, topics: []string{"특수문자", "특수기호"}, actions: removeWords},
	{flag: FlagRemoveBrackets, topics: []string{"괄호"}, actions: removeWords},
	{flag: FlagRemoveHTML, topics: []string{"html", "태그"}, actions: removeWords, exclude: []string{"해시태그"}},
	{flag: FlagRemoveEmoji, topics: []string{"이모지", "이모티콘", "emoji"}, actions: removeWords},
	{flag: FlagSido, topics: []string{"시/도", "시도만", "광역시도"}, actions: extractWords},
	{flag: FlagGungu, topics: []string{"구/군", "군/구", "시/군/구", "시군구", "구군"}, actions: extractWords},
	{flag: FlagDong, topics: []string{"동/읍/면", "읍/면/동", "읍면동", "동만", "법정동"}, actions: extractWords},
	{flag: FlagBuilding, topics: []string{"건물명", "건물 이름", "빌딩명"}, actions: extractWords},
	{flag: FlagDomain, topics: []string{"도메인"}, actions: extractWords},
	{flag: FlagCompany, topics: []string{"주식회사", "(주)", "㈜", "법인명", "회사명", "유한회사"}, actions: cleanWords},
	{flag: FlagPosition, topics: []string{"직함", "직급", "직책", "호칭"}, actions: cleanWords},
	{flag: FlagMaskName, topics: []string{"이름", "성함", "성명", "고객명"}, actions: maskWords},
	{flag: FlagMaskPhone, topics: []string{"전화번호", "휴대폰", "핸드폰", "연락처", "폰번호"}, actions: maskWords},
	{flag: FlagMaskEmail, topics: []string{"이메일", "메일", "email"}, actions: maskWords},
	{flag: FlagMaskCard, topics: []string{"카드"}, actions: maskWords},
	{flag: FlagMaskAccount, topics: []string{"계좌"}, actions: maskWords},
	{flag: FlagMaskAddress, topics: []string{"주소"}, actions: maskWords},
	{flag: FlagAgeCategory, topics: []string{"연령대", "나이대"}},
	{flag: FlagAgeCategory, topics: []string{"나이", "연령"}, actions: []string{"구간", "범주", "그룹", "대로", "묶어"}},
	{flag: FlagTruncateMonth, topics: []string{"년월만", "연월만", "월까지", "연-월", "년-월"}},
	{flag: FlagExponential, topics: []string{"지수", "e+", "과학적 표기"}, actions: []string{"복원", "풀어", "원래", "변환", "바꿔", "정리", "고쳐"}},
	{flag: FlagUnit, topics: []string{"단위"}, actions: append([]string{"통일"}, removeWords...), exclude: []string{"천단위", "천 단위"}},
	{flag: FlagUpper, topics: []string{"대문자"}},
	{flag: FlagLower, topics: []string{"소문자"}},
}

var (
	zipFiveWords  = []string{"5자리", "다섯자리", "다섯 자리", "5 자리", "5글자"}
	zipClearWords = []string{"빈칸", "지워", "지우", "삭제", "제거", "empty", "clear"}
	zipSwapWords  = []string{"변경", "바꿔", "처리"}
	zipBlankWords = []string{"빈칸", "공백", "empty"}
)

func (p *parser) extractFlags(b *Bundle) {
	for _, g := range gates {
		for _, topic := range g.topics {
			for _, pos := range indexAll(p.lower, topic) {
				if p.excluded(pos, g.exclude) {
					continue
				}
				start, end := p.clause(pos)
				if len(g.actions) > 0 && !containsAny(p.lower[start:end], g.actions) {
					continue
				}
				b.raise(g.flag, p.scopeAt(pos))
			}
		}
	}

	// Long zip codes are cleared only when the prompt asks for five digits
	// and for removal in the same breath.
	if b.Has(FlagZip) {
		compact := strings.Join(strings.Fields(p.lower), "")
		hasFive := containsAny(p.lower, zipFiveWords) || strings.Contains(compact, "5")
		hasClear := containsAny(p.lower, zipClearWords) ||
			(containsAny(p.lower, zipSwapWords) && containsAny(p.lower, zipBlankWords))
		if hasFive && hasClear {
			b.raise(FlagClearLongZip, b.ScopeOf(FlagZip))
		}
	}
}

func (p *parser) excluded(pos int, phrases []string) bool {
	for _, phrase := range phrases {
		for _, at := range indexAll(p.lower, phrase) {
			if pos >= at && pos < at+len(phrase) {
				return true
			}
		}
	}
	return false
}

func indexAll(s, sub string) []int {
	if sub == "" {
		return nil
	}
	var out []int
	for offset := 0; offset < len(s); {
		i := strings.Index(s[offset:], sub)
		if i < 0 {
			break
		}
		out = append(out, offset+i)
		offset += i + len(sub)
	}
	return out
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
