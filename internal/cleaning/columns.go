package cleaning

import "strings"

// columnKind classifies a column by its header so stages know where they
// apply without a prompt naming the column.
type columnKind int

const (
	anyColumn columnKind = iota
	phoneColumn
	nameColumn
	personColumn
	dateColumn
	numberColumn
	moneyColumn
	emailColumn
	zipColumn
	bizColumn
	corpColumn
	urlColumn
	addressColumn
	companyColumn
	trackingColumn
	orderColumn
	areaColumn
	snsColumn
	tagColumn
	accountColumn
	cardColumn
	ageColumn
	skuColumn
	unitColumn
	rrnColumn
)

type columnRule struct {
	include []string
	exclude []string
}

// columnRules maps each kind to header keywords. Headers are lower-cased and
// stripped of spaces before matching.
var columnRules = map[columnKind]columnRule{
	phoneColumn:    {include: []string{"연락처", "전화", "휴대폰", "핸드폰", "phone", "mobile", "tel", "cell"}},
	nameColumn:     {include: []string{"이름", "고객명", "성함", "성명", "담당자", "대표자", "name", "user"}, exclude: []string{"회사", "업체", "상호", "company", "법인", "파일", "file", "상품", "제품", "product", "user_id", "userid", "username"}},
	dateColumn:     {include: []string{"날짜", "일시", "일자", "생년월일", "생일", "date", "time", "birth"}},
	numberColumn:   {exclude: []string{"이름", "고객명", "성함", "성명", "주소", "address", "id", "코드", "code", "번호", "no"}},
	moneyColumn:    {include: []string{"금액", "가격", "단가", "비용", "매출", "입금", "출금", "잔액", "price", "amount", "cost", "balance", "fee"}},
	emailColumn:    {include: []string{"이메일", "email", "e-mail", "mail"}},
	zipColumn:      {include: []string{"우편번호", "우편", "zip", "postal", "postcode"}},
	bizColumn:      {include: []string{"사업자", "bizno", "biz_no", "biznum", "business"}},
	corpColumn:     {include: []string{"법인번호", "법인등록", "corpno", "corp_no", "corpnum"}},
	urlColumn:      {include: []string{"url", "홈페이지", "웹사이트", "사이트", "website", "homepage", "link", "링크"}},
	addressColumn:  {include: []string{"주소", "거주지", "소재지", "위치", "address", "addr"}, exclude: []string{"이메일", "email", "mail"}},
	companyColumn:  {include: []string{"회사", "업체", "상호", "거래처", "법인명", "company", "corp", "vendor"}, exclude: []string{"법인번호", "법인등록", "corpno", "corp_no"}},
	trackingColumn: {include: []string{"운송장", "송장", "tracking", "invoice"}},
	orderColumn:    {include: []string{"주문", "order"}},
	areaColumn:     {include: []string{"면적", "평수", "area"}},
	snsColumn:      {include: []string{"sns", "인스타", "instagram", "insta", "twitter", "트위터", "facebook", "페이스북", "tiktok", "youtube"}},
	tagColumn:      {include: []string{"해시태그", "태그", "hashtag", "tag"}},
	accountColumn:  {include: []string{"계좌", "통장", "account"}},
	cardColumn:     {include: []string{"카드", "card"}},
	ageColumn:      {include: []string{"나이", "연령", "age"}, exclude: []string{"page", "image", "message", "usage", "stage", "manager", "mileage", "percentage", "language", "storage"}},
	skuColumn:      {include: []string{"sku", "품번", "상품코드", "제품코드", "모델", "model"}},
	unitColumn:     {include: []string{"무게", "중량", "길이", "용량", "크기", "수량", "weight", "length", "size", "volume", "qty"}},
	rrnColumn:      {include: []string{"주민", "rrn", "ssn"}},
}

// matches reports whether column belongs to the kind.
func (k columnKind) matches(column string) bool {
	key := headerKey(column)
	switch k {
	case anyColumn:
		return true
	case personColumn:
		return nameColumn.matches(column) || companyColumn.matches(column)
	case numberColumn:
		return !containsAnyOf(key, columnRules[numberColumn].exclude)
	}

	rule, ok := columnRules[k]
	if !ok {
		return false
	}
	if containsAnyOf(key, rule.exclude) {
		return false
	}
	return containsAnyOf(key, rule.include)
}

func headerKey(column string) string {
	return strings.ToLower(strings.Join(strings.Fields(column), ""))
}

func containsAnyOf(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
