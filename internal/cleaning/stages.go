package cleaning

import (
	"strings"

	"github.com/raaihank/data-laundry/internal/intent"
)

// stage is one named transform. It runs on a column when its option is on
// and the column kind matches, or when the prompt raised one of its flags:
// an explicit flag scope forces it onto the named columns regardless of kind.
type stage struct {
	name   string
	option func(*Options) bool
	flags  []intent.Flag
	kind   columnKind
	apply  func(string, *Context) string
}

// boundStage is a stage resolved for one column.
type boundStage struct {
	*stage
	forced bool
}

func pure(fn func(string) string) func(string, *Context) string {
	return func(v string, _ *Context) string { return fn(v) }
}

func flags(f ...intent.Flag) []intent.Flag { return f }

// checkboxStages run in this order. Structural fixes come first so masks and
// extractions see normalised values.
var checkboxStages = []*stage{
	{name: "phone", option: func(o *Options) bool { return o.FormatMobile || o.FormatGeneralPhone },
		flags: flags(intent.FlagPhone, intent.FlagMobileHint, intent.FlagLandlineHint), kind: phoneColumn, apply: phoneStage},
	{name: "whitespace", option: func(o *Options) bool { return o.RemoveWhitespace },
		flags: flags(intent.FlagWhitespace), kind: anyColumn, apply: whitespaceStage},
	{name: "date", option: func(o *Options) bool { return o.FormatDate || o.FormatDateTime },
		flags: flags(intent.FlagDate, intent.FlagDateTime), kind: dateColumn, apply: dateStage},
	{name: "exponential", option: func(o *Options) bool { return o.RestoreExponential },
		flags: flags(intent.FlagExponential), kind: anyColumn, apply: pure(restoreExponential)},
	{name: "accounting", option: func(o *Options) bool { return o.FormatAccountingNum },
		kind: anyColumn, apply: pure(formatAccountingNum)},
	{name: "number", option: func(o *Options) bool { return o.FormatNumber },
		flags: flags(intent.FlagNumber), kind: numberColumn, apply: numberStage},
	{name: "amount", option: func(o *Options) bool { return o.CleanAmount },
		flags: flags(intent.FlagAmount), kind: anyColumn, apply: amountStage},
	{name: "email", option: func(o *Options) bool { return o.CleanEmail },
		flags: flags(intent.FlagEmail), kind: anyColumn, apply: emailStage},
	{name: "zip", option: func(o *Options) bool { return o.FormatZip },
		flags: flags(intent.FlagZip, intent.FlagClearLongZip), kind: zipColumn, apply: zipStage},
	{name: "bizNum", option: func(o *Options) bool { return o.FormatBizNum },
		flags: flags(intent.FlagBizNum), kind: bizColumn, apply: pure(formatBizNum)},
	{name: "corpNum", option: func(o *Options) bool { return o.FormatCorpNum },
		flags: flags(intent.FlagCorpNum), kind: corpColumn, apply: pure(formatCorpNum)},
	{name: "url", option: func(o *Options) bool { return o.FormatURL },
		flags: flags(intent.FlagURL), kind: urlColumn, apply: pure(formatURL)},
	{name: "maskPersonal", option: func(o *Options) bool { return o.MaskPersonalData },
		flags: flags(intent.FlagMaskPersonal), kind: anyColumn, apply: maskPersonalStage},
	{name: "garbage", option: func(o *Options) bool { return o.CleanGarbage },
		flags: flags(intent.FlagGarbage), kind: anyColumn, apply: pure(cleanGarbage)},
	{name: "cleanName", option: func(o *Options) bool { return o.CleanName },
		flags: flags(intent.FlagCleanName), kind: nameColumn, apply: pure(cleanName)},
	{name: "tracking", option: func(o *Options) bool { return o.FormatTrackingNum },
		flags: flags(intent.FlagTracking), kind: trackingColumn, apply: pure(formatTrackingNum)},
	{name: "orderId", option: func(o *Options) bool { return o.CleanOrderID },
		kind: orderColumn, apply: pure(cleanOrderID)},
	{name: "taxDate", option: func(o *Options) bool { return o.FormatTaxDate },
		kind: dateColumn, apply: taxDateStage},
	{name: "area", option: func(o *Options) bool { return o.CleanAreaUnit },
		kind: areaColumn, apply: pure(stripUnit)},
	{name: "snsId", option: func(o *Options) bool { return o.CleanSnsID },
		kind: snsColumn, apply: pure(cleanSnsID)},
	{name: "hashtag", option: func(o *Options) bool { return o.FormatHashtag },
		flags: flags(intent.FlagHashtag), kind: tagColumn, apply: pure(formatHashtag)},
	{name: "company", option: func(o *Options) bool { return o.CleanCompanyName },
		flags: flags(intent.FlagCompany), kind: companyColumn, apply: pure(cleanCompanyName)},
	{name: "position", option: func(o *Options) bool { return o.RemovePosition },
		flags: flags(intent.FlagPosition), kind: personColumn, apply: pure(removePosition)},
	{name: "dong", option: func(o *Options) bool { return o.ExtractDong },
		flags: flags(intent.FlagDong), kind: addressColumn, apply: pure(extractDong)},
	{name: "building", option: func(o *Options) bool { return o.ExtractBuilding },
		flags: flags(intent.FlagBuilding), kind: addressColumn, apply: pure(extractBuilding)},
	{name: "maskName", option: func(o *Options) bool { return o.MaskName },
		flags: flags(intent.FlagMaskName), kind: nameColumn, apply: pure(maskName)},
	{name: "maskPhoneMid", option: func(o *Options) bool { return o.MaskPhoneMid },
		flags: flags(intent.FlagMaskPhone), kind: phoneColumn, apply: pure(maskPhoneMid)},
	{name: "maskEmail", option: func(o *Options) bool { return o.MaskEmail },
		flags: flags(intent.FlagMaskEmail), kind: emailColumn, apply: pure(maskEmail)},
	{name: "maskCard", option: func(o *Options) bool { return o.MaskCard },
		flags: flags(intent.FlagMaskCard), kind: cardColumn, apply: pure(maskCard)},
	{name: "maskAccount", option: func(o *Options) bool { return o.MaskAccount },
		flags: flags(intent.FlagMaskAccount), kind: accountColumn, apply: pure(maskAccount)},
	{name: "maskAddress", option: func(o *Options) bool { return o.MaskAddress },
		flags: flags(intent.FlagMaskAddress), kind: addressColumn, apply: pure(maskAddress)},
	{name: "age", option: func(o *Options) bool { return o.CategoryAge },
		flags: flags(intent.FlagAgeCategory), kind: ageColumn, apply: pure(categorizeAge)},
	{name: "truncateDate", option: func(o *Options) bool { return o.TruncateDate },
		flags: flags(intent.FlagTruncateMonth), kind: dateColumn, apply: func(v string, ctx *Context) string { return truncateDate(v, ctx.DateSep) }},
	{name: "sku", option: func(o *Options) bool { return o.NormalizeSKU },
		flags: flags(intent.FlagSKU), kind: skuColumn, apply: pure(normalizeSKU)},
	{name: "unit", option: func(o *Options) bool { return o.UnifyUnit },
		flags: flags(intent.FlagUnit), kind: unitColumn, apply: pure(stripUnit)},
	{name: "currency", option: func(o *Options) bool { return o.StandardizeCurrency },
		flags: flags(intent.FlagCurrency), kind: moneyColumn, apply: pure(standardizeCurrency)},
	{name: "html", option: func(o *Options) bool { return o.RemoveHTML },
		flags: flags(intent.FlagRemoveHTML), kind: anyColumn, apply: pure(removeHTML)},
	{name: "emoji", option: func(o *Options) bool { return o.RemoveEmoji },
		flags: flags(intent.FlagRemoveEmoji), kind: anyColumn, apply: pure(removeEmoji)},
	{name: "upper", option: func(o *Options) bool { return o.ToUpperCase },
		flags: flags(intent.FlagUpper), kind: anyColumn, apply: pure(toUpper)},
	{name: "lower", option: func(o *Options) bool { return o.ToLowerCase },
		flags: flags(intent.FlagLower), kind: anyColumn, apply: pure(toLower)},
}

// promptStages have no checkbox; only the prompt switches them on.
var promptStages = []*stage{
	{name: "digitsOnly", flags: flags(intent.FlagDigitsOnly), kind: anyColumn, apply: pure(digitsOnly)},
	{name: "koreanOnly", flags: flags(intent.FlagKoreanOnly), kind: anyColumn, apply: pure(koreanOnly)},
	{name: "englishOnly", flags: flags(intent.FlagEnglishOnly), kind: anyColumn, apply: pure(englishOnly)},
	{name: "removeDigits", flags: flags(intent.FlagRemoveDigits), kind: anyColumn, apply: pure(removeDigits)},
	{name: "removeHyphen", flags: flags(intent.FlagRemoveHyphen), kind: anyColumn, apply: pure(removeHyphen)},
	{name: "removeSpecial", flags: flags(intent.FlagRemoveSpecial), kind: anyColumn, apply: pure(removeSpecial)},
	{name: "removeBrackets", flags: flags(intent.FlagRemoveBrackets), kind: anyColumn, apply: pure(removeBrackets)},
	{name: "sido", flags: flags(intent.FlagSido), kind: addressColumn, apply: pure(extractSido)},
	{name: "gungu", flags: flags(intent.FlagGungu), kind: addressColumn, apply: pure(extractGungu)},
	{name: "domain", flags: flags(intent.FlagDomain), kind: anyColumn, apply: pure(extractDomain)},
}

// bind decides whether s runs on column.
func (s *stage) bind(o *Options, b *intent.Bundle, column string) (boundStage, bool) {
	for _, f := range s.flags {
		if scope := b.ScopeOf(f); b.Has(f) && scope.Explicit() && scope.Covers(column) {
			return boundStage{stage: s, forced: true}, true
		}
	}
	if !s.kind.matches(column) {
		return boundStage{}, false
	}
	if s.option != nil && s.option(o) {
		return boundStage{stage: s}, true
	}
	for _, f := range s.flags {
		if b.Has(f) && !b.ScopeOf(f).Explicit() {
			return boundStage{stage: s}, true
		}
	}
	return boundStage{}, false
}

// formatFuncs implements the per-column format tags.
var formatFuncs = [formatKindCount]func(string, ColumnFormat, *Context) string{
	FormatDate: func(v string, f ColumnFormat, ctx *Context) string {
		return formatDate(v, f.separator(ctx), ctx)
	},
	FormatDateTime: func(v string, f ColumnFormat, ctx *Context) string {
		return formatDateTime(strings.TrimSpace(v), f.separator(ctx))
	},
	FormatDateTruncate: func(v string, f ColumnFormat, ctx *Context) string {
		return truncateDate(strings.TrimSpace(v), f.separator(ctx))
	},
	FormatMobile: func(v string, _ ColumnFormat, _ *Context) string { return formatPhone(v, true, false) },
	FormatPhone:  func(v string, _ ColumnFormat, _ *Context) string { return formatPhone(v, true, true) },
	FormatZip: func(v string, _ ColumnFormat, ctx *Context) string {
		return formatZip(v, ctx.Intents.Has(intent.FlagClearLongZip))
	},
	FormatBizNum:  tagFunc(formatBizNum),
	FormatCorpNum: tagFunc(formatCorpNum),
	FormatEmail:   tagFunc(formatEmailTag),
	FormatURL:     tagFunc(formatURL),
	FormatRRN: func(v string, _ ColumnFormat, ctx *Context) string {
		return maskRRN(v, ctx.masker)
	},
	FormatAmount:              tagFunc(func(v string) string { return amountValue(strings.TrimSpace(v)) }),
	FormatAmountKrn:           tagFunc(func(v string) string { return amountValue(strings.TrimSpace(v)) }),
	FormatTrackingNum:         tagFunc(formatTrackingNum),
	FormatOrderID:             tagFunc(cleanOrderID),
	FormatArea:                tagFunc(stripUnit),
	FormatSnsID:               tagFunc(cleanSnsID),
	FormatHashtag:             tagFunc(formatHashtag),
	FormatCompanyClean:        tagFunc(cleanCompanyName),
	FormatPositionRemove:      tagFunc(removePosition),
	FormatDongExtract:         tagFunc(extractDong),
	FormatAccountMask:         tagFunc(maskAccount),
	FormatCardMask:            tagFunc(maskCard),
	FormatNameMask:            tagFunc(maskName),
	FormatEmailMask:           tagFunc(maskEmail),
	FormatAddressMask:         tagFunc(maskAddress),
	FormatPhoneMidMask:        tagFunc(maskPhoneMid),
	FormatAgeCategory:         tagFunc(categorizeAge),
	FormatExponentialRestore:  tagFunc(restoreExponential),
	FormatBuildingExtract:     tagFunc(extractBuilding),
	FormatSKUNormalize:        tagFunc(normalizeSKU),
	FormatUnitUnify:           tagFunc(stripUnit),
	FormatCurrencyStandardize: tagFunc(standardizeCurrency),
	FormatTrim:                tagFunc(trimSpace),
	FormatGarbage:             tagFunc(cleanGarbage),
	FormatNameClean:           tagFunc(cleanName),
	FormatEmailClean:          tagFunc(cleanEmail),
	FormatUpperCase:           tagFunc(toUpper),
	FormatLowerCase:           tagFunc(toLower),
}

func tagFunc(fn func(string) string) func(string, ColumnFormat, *Context) string {
	return func(v string, _ ColumnFormat, _ *Context) string { return fn(v) }
}

func (f ColumnFormat) separator(ctx *Context) string {
	if f.HasSeparator {
		return f.Separator
	}
	return ctx.DateSep
}

// formatEmailTag lower-cases a valid address and blanks an invalid one.
func formatEmailTag(v string) string {
	val := strings.TrimSpace(v)
	if val == "" {
		return val
	}
	if cleaned := cleanEmail(val); cleaned == "" {
		return ""
	}
	return toLower(val)
}
