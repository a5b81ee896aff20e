package cleaning

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/raaihank/data-laundry/internal/intent"
	"github.com/raaihank/data-laundry/internal/normalize"
)

var (
	nonDigitRe      = regexp.MustCompile(`\D`)
	letterRe        = regexp.MustCompile(`[A-Za-z가-힣]`)
	shortPhoneRe    = regexp.MustCompile(`(\d{3,4})[-. ]?(\d{4})`)
	mobileDigitsRe  = regexp.MustCompile(`^(01[016789])(\d{3,4})(\d{4})$`)
	seoulLandlineRe = regexp.MustCompile(`^(\d{2})(\d{3,4})(\d{4})$`)
	areaLandlineRe  = regexp.MustCompile(`^(\d{3})(\d{3,4})(\d{4})$`)
	looseDigitsRe   = regexp.MustCompile(`(\d{2,3})(\d{3,4})(\d{4})`)

	compactDateNumberRe = regexp.MustCompile(`^(?:19|20)\d{2}[-.]?\d{2}[-.]?\d{2}$`)
	plainNumberRe       = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
	wonUnitRe           = regexp.MustCompile(`[만천백]원$`)
	amountStripRe       = regexp.MustCompile(`[^0-9.\-]`)
	leadingNumberRe     = regexp.MustCompile(`^-?(?:\d+\.?\d*|\.\d+)`)
	embeddedNumberRe    = regexp.MustCompile(`-?\d[\d,]*(?:\.\d+)?`)
	exponentRe          = regexp.MustCompile(`^-?\d+(?:\.\d+)?[eE][+-]?\d+$`)
	accountingParenRe   = regexp.MustCompile(`^\(\s*([\d,]+(?:\.\d+)?)\s*\)$`)
	accountingTriRe     = regexp.MustCompile(`^[△▲]\s*([\d,]+(?:\.\d+)?)$`)
	ageRe               = regexp.MustCompile(`^(\d{1,3})\s*(?:세|살|대)?$`)
	currencyMarkRe      = regexp.MustCompile(`(?i)[₩$€¥£]|krw|usd|eur|jpy|원`)
	orderNoiseRe        = regexp.MustCompile(`[^A-Za-z0-9가-힣\-]`)
	skuSeparatorRe      = regexp.MustCompile(`[\s_]+`)
	dashRunRe           = regexp.MustCompile(`-{2,}`)
	snsHandleRe         = regexp.MustCompile(`^@?([A-Za-z0-9._]+)$`)
	hashtagSplitRe      = regexp.MustCompile(`[#,]`)
)

// formatPhone tidies phone numbers. mobile enables 01X-XXXX-XXXX, landline
// enables area-code formatting; both fall through to the generic layouts.
func formatPhone(v string, mobile, landline bool) string {
	short := shortPhoneRe.FindStringSubmatch(v)
	digits := nonDigitRe.ReplaceAllString(v, "")
	if strings.HasPrefix(digits, "82") {
		digits = "0" + digits[2:]
	}
	n := len(digits)

	if mobile && strings.HasPrefix(digits, "01") && n >= 10 && n <= 11 {
		if m := mobileDigitsRe.FindStringSubmatch(digits); m != nil {
			return m[1] + "-" + m[2] + "-" + m[3]
		}
		return digits
	}

	if landline && strings.HasPrefix(digits, "0") && n >= 9 && n <= 11 {
		re := areaLandlineRe
		if strings.HasPrefix(digits, "02") {
			re = seoulLandlineRe
		}
		if m := re.FindStringSubmatch(digits); m != nil {
			return m[1] + "-" + m[2] + "-" + m[3]
		}
	}

	switch {
	case n >= 7 && n <= 8:
		return digits[:n-4] + "-" + digits[n-4:]
	case short != nil && n < 11 && !(n >= 9 && digits[0] == '0'):
		return short[1] + "-" + short[2]
	case n >= 7 && n <= 11:
		loc := looseDigitsRe.FindStringSubmatchIndex(digits)
		if loc == nil {
			return v
		}
		return digits[:loc[0]] +
			digits[loc[2]:loc[3]] + "-" + digits[loc[4]:loc[5]] + "-" + digits[loc[6]:loc[7]] +
			digits[loc[1]:]
	case letterRe.MatchString(v) && n < 7:
		return ""
	}
	return v
}

func phoneStage(v string, ctx *Context) string {
	mobile := ctx.Options.FormatMobile || ctx.Intents.Has(intent.FlagMobileHint)
	landline := ctx.Options.FormatGeneralPhone || ctx.Intents.Has(intent.FlagLandlineHint)
	return formatPhone(v, mobile, landline)
}

func dateStage(v string, ctx *Context) string {
	val := strings.TrimSpace(v)
	if (ctx.Options.FormatDateTime || ctx.Intents.Has(intent.FlagDateTime)) && normalize.HasTime(val) {
		if dt, ok := normalize.NormalizeDateTime(val, ctx.DateSep); ok {
			return dt
		}
	}
	if ctx.Options.FormatDate || ctx.Intents.Has(intent.FlagDate) || ctx.Forced {
		return formatDate(v, ctx.DateSep, ctx)
	}
	return v
}

func formatDate(v, sep string, ctx *Context) string {
	val := strings.TrimSpace(v)
	if d, ok := normalize.NormalizeDate(val, sep); ok {
		return d
	}
	if d, ok := normalize.RelativeDate(val, ctx.Now, sep); ok {
		return d
	}
	return v
}

func formatDateTime(v, sep string) string {
	if dt, ok := normalize.NormalizeDateTime(v, sep); ok {
		return dt
	}
	return v
}

func taxDateStage(v string, ctx *Context) string {
	return formatDate(v, "", ctx)
}

// truncateDate keeps year and month.
func truncateDate(v, sep string) string {
	d, ok := normalize.NormalizeDate(v, "")
	if !ok {
		return v
	}
	return d[:4] + sep + d[4:6]
}

func numberStage(v string, _ *Context) string {
	val := strings.TrimSpace(v)
	if val == "" || strings.HasPrefix(val, "0") || compactDateNumberRe.MatchString(val) {
		return v
	}
	plain := strings.ReplaceAll(val, ",", "")
	if !plainNumberRe.MatchString(plain) {
		return v
	}
	f, err := strconv.ParseFloat(plain, 64)
	if err != nil {
		return v
	}
	return formatThousands(f)
}

func amountStage(v string, ctx *Context) string {
	val := strings.TrimSpace(v)
	if !ctx.Forced && !moneyColumn.matches(ctx.Column) && !wonUnitRe.MatchString(val) {
		return v
	}
	return amountValue(val)
}

// amountValue converts Korean unit amounts and strips everything but the
// number. Values without a single digit are left alone so words written by
// conditions survive a second pass; other unreadable values become "0".
func amountValue(val string) string {
	if val == "" {
		return val
	}
	if normalize.HasKoreanUnit(val) {
		if n := normalize.ParseKoreanAmount(val); n > 0 {
			return formatThousands(float64(n))
		}
	}
	if !strings.ContainsAny(val, "0123456789") {
		return val
	}
	m := leadingNumberRe.FindString(amountStripRe.ReplaceAllString(val, ""))
	if m == "" {
		return "0"
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(m, "."), 64)
	if err != nil {
		return "0"
	}
	return formatThousands(f)
}

// formatThousands renders f with comma grouping and at most three decimals.
func formatThousands(f float64) string {
	s := strconv.FormatFloat(f, 'f', 3, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}

	out := b.String()
	if neg && out != "0" {
		out = "-" + out
	}
	return out
}

func emailStage(v string, ctx *Context) string {
	val := strings.TrimSpace(v)
	if ctx.Forced || emailColumn.matches(ctx.Column) {
		return cleanEmail(v)
	}
	// Free-text columns only lose values that are a lone broken address.
	if !strings.Contains(val, "@") || strings.ContainsAny(val, " \t") {
		return v
	}
	return cleanEmail(v)
}

// cleanEmail blanks values that are not shaped like an address.
func cleanEmail(v string) string {
	val := strings.TrimSpace(v)
	if val != "" && !normalize.IsEmail(val) {
		return ""
	}
	return v
}

func zipStage(v string, ctx *Context) string {
	return formatZip(v, ctx.Intents.Has(intent.FlagClearLongZip))
}

// formatZip pads to five digits. Longer values are cut to five unless they
// carry a hyphen (old six-digit codes), or cleared when clearLong is set.
func formatZip(v string, clearLong bool) string {
	val := strings.TrimSpace(v)
	digits := nonDigitRe.ReplaceAllString(val, "")

	if clearLong && len(digits) > 5 {
		return ""
	}
	if len(digits) > 5 && !strings.Contains(val, "-") {
		digits = digits[:5]
	}
	if len(digits) > 0 && len(digits) <= 6 {
		return padLeft(digits, 5, '0')
	}
	return v
}

func formatBizNum(v string) string {
	digits := nonDigitRe.ReplaceAllString(v, "")
	if len(digits) != 10 {
		return v
	}
	return digits[:3] + "-" + digits[3:5] + "-" + digits[5:]
}

func formatCorpNum(v string) string {
	digits := nonDigitRe.ReplaceAllString(v, "")
	if len(digits) != 13 {
		return v
	}
	return digits[:6] + "-" + digits[6:]
}

// formatURL prefixes https:// to bare host names.
func formatURL(v string) string {
	val := strings.TrimSpace(v)
	if val == "" || strings.ContainsAny(val, "@ ") || !strings.Contains(val, ".") {
		return v
	}
	lower := strings.ToLower(val)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return val
	}
	return "https://" + strings.TrimPrefix(val, "//")
}

// formatTrackingNum keeps the digits of a waybill number.
func formatTrackingNum(v string) string {
	digits := nonDigitRe.ReplaceAllString(v, "")
	if len(digits) < 8 {
		return v
	}
	return digits
}

func cleanOrderID(v string) string {
	out := orderNoiseRe.ReplaceAllString(strings.TrimSpace(v), "")
	if out == "" {
		return v
	}
	return out
}

// formatAccountingNum turns "(1,000)", "△1,000" and "▲1,000" into -1000.
func formatAccountingNum(v string) string {
	val := strings.TrimSpace(v)
	m := accountingParenRe.FindStringSubmatch(val)
	if m == nil {
		m = accountingTriRe.FindStringSubmatch(val)
	}
	if m == nil {
		return v
	}
	return "-" + strings.ReplaceAll(m[1], ",", "")
}

// stripUnit extracts the number from values like "84.5㎡", "32평" or "3kg".
func stripUnit(v string) string {
	m := embeddedNumberRe.FindString(v)
	if m == "" {
		return v
	}
	return strings.ReplaceAll(m, ",", "")
}

// standardizeCurrency drops currency marks and re-groups the amount.
func standardizeCurrency(v string) string {
	val := strings.TrimSpace(v)
	if !currencyMarkRe.MatchString(val) {
		return v
	}
	stripped := strings.TrimSpace(currencyMarkRe.ReplaceAllString(val, ""))
	m := embeddedNumberRe.FindString(stripped)
	if m == "" {
		return v
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return v
	}
	return formatThousands(f)
}

// restoreExponential expands spreadsheet notation such as 1.23E+12.
func restoreExponential(v string) string {
	val := strings.TrimSpace(v)
	if !exponentRe.MatchString(val) {
		return v
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return v
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// categorizeAge buckets an age into decades: 37 becomes 30대.
func categorizeAge(v string) string {
	m := ageRe.FindStringSubmatch(strings.TrimSpace(v))
	if m == nil {
		return v
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n > 150 {
		return v
	}
	return strconv.Itoa(n/10*10) + "대"
}

// cleanSnsID reduces profile URLs and handles to "@handle".
func cleanSnsID(v string) string {
	val := strings.TrimSpace(v)
	if i := strings.IndexAny(val, "?#"); i >= 0 {
		val = val[:i]
	}
	if strings.Contains(val, "/") {
		parts := strings.Split(strings.TrimRight(val, "/"), "/")
		val = parts[len(parts)-1]
	}
	m := snsHandleRe.FindStringSubmatch(val)
	if m == nil {
		return v
	}
	return "@" + m[1]
}

// formatHashtag writes each tag as #word_word; tags are split on '#' and ','.
func formatHashtag(v string) string {
	val := strings.TrimSpace(v)
	if val == "" {
		return v
	}
	var tags []string
	for _, part := range hashtagSplitRe.Split(val, -1) {
		words := strings.Fields(part)
		if len(words) == 0 {
			continue
		}
		tags = append(tags, "#"+strings.Join(words, "_"))
	}
	if len(tags) == 0 {
		return v
	}
	return strings.Join(tags, " ")
}

func normalizeSKU(v string) string {
	val := strings.TrimSpace(v)
	if val == "" {
		return v
	}
	out := skuSeparatorRe.ReplaceAllString(strings.ToUpper(val), "-")
	out = dashRunRe.ReplaceAllString(out, "-")
	return strings.Trim(out, "-")
}

func padLeft(s string, width int, fill rune) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return strings.Repeat(string(fill), width-n) + s
}
