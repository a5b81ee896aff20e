package cleaning

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFormat is returned when a column format tag is not recognised.
var ErrUnknownFormat = errors.New("unknown column format")

// FormatKind enumerates the per-column format tags.
type FormatKind int

const (
	FormatNone FormatKind = iota
	FormatDate
	FormatDateTime
	FormatMobile
	FormatPhone
	FormatZip
	FormatBizNum
	FormatCorpNum
	FormatEmail
	FormatURL
	FormatRRN
	FormatAmount
	FormatAmountKrn
	FormatTrackingNum
	FormatOrderID
	FormatArea
	FormatSnsID
	FormatHashtag
	FormatCompanyClean
	FormatPositionRemove
	FormatDongExtract
	FormatAccountMask
	FormatCardMask
	FormatNameMask
	FormatEmailMask
	FormatAddressMask
	FormatPhoneMidMask
	FormatAgeCategory
	FormatDateTruncate
	FormatExponentialRestore
	FormatBuildingExtract
	FormatSKUNormalize
	FormatUnitUnify
	FormatCurrencyStandardize
	FormatTrim
	FormatGarbage
	FormatNameClean
	FormatEmailClean
	FormatUpperCase
	FormatLowerCase

	formatKindCount
)

var formatTags = [formatKindCount]string{
	"", "date", "datetime", "mobile", "phone", "zip", "bizNum", "corpNum",
	"email", "url", "rrn", "amount", "amountKrn", "trackingNum", "orderId",
	"area", "snsId", "hashtag", "companyClean", "positionRemove", "dongExtract",
	"accountMask", "cardMask", "nameMask", "emailMask", "addressMask",
	"phoneMidMask", "ageCategory", "dateTruncate", "exponentialRestore",
	"buildingExtract", "skuNormalize", "unitUnify", "currencyStandardize",
	"trim", "garbage", "nameClean", "emailClean", "upperCase", "lowerCase",
}

func (k FormatKind) String() string {
	if k < 0 || k >= formatKindCount {
		return "unknown"
	}
	return formatTags[k]
}

// ColumnFormat is an explicit format assignment for one column. Date kinds
// may carry their own separator ("date:/"); otherwise the call-wide separator
// applies.
type ColumnFormat struct {
	Kind         FormatKind
	Separator    string
	HasSeparator bool
}

// ParseColumnFormat parses a tag such as "cardMask" or "date:-". The empty
// tag and "null" parse to FormatNone.
func ParseColumnFormat(tag string) (ColumnFormat, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" || tag == "null" {
		return ColumnFormat{}, nil
	}

	name, sep, hasSep := strings.Cut(tag, ":")
	for k := FormatKind(1); k < formatKindCount; k++ {
		if !strings.EqualFold(formatTags[k], name) {
			continue
		}
		f := ColumnFormat{Kind: k}
		if hasSep {
			if !k.takesSeparator() {
				return ColumnFormat{}, fmt.Errorf("%w: %q takes no separator", ErrUnknownFormat, tag)
			}
			if sep != "" && sep != "-" && sep != "." && sep != "/" {
				return ColumnFormat{}, fmt.Errorf("%w: bad date separator %q", ErrUnknownFormat, sep)
			}
			f.Separator, f.HasSeparator = sep, true
		}
		return f, nil
	}
	return ColumnFormat{}, fmt.Errorf("%w: %q", ErrUnknownFormat, tag)
}

// ParseColumnFormats parses a header to tag map, dropping FormatNone entries.
func ParseColumnFormats(tags map[string]string) (map[string]ColumnFormat, error) {
	out := make(map[string]ColumnFormat, len(tags))
	for column, tag := range tags {
		f, err := ParseColumnFormat(tag)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", column, err)
		}
		if f.Kind != FormatNone {
			out[column] = f
		}
	}
	return out, nil
}

// FormatTags lists every accepted tag.
func FormatTags() []string {
	return append([]string(nil), formatTags[1:]...)
}

func (k FormatKind) takesSeparator() bool {
	return k == FormatDate || k == FormatDateTime || k == FormatDateTruncate
}

func (f ColumnFormat) String() string {
	if f.HasSeparator {
		return f.Kind.String() + ":" + f.Separator
	}
	return f.Kind.String()
}

// MarshalText lets format maps travel as plain JSON strings.
func (f ColumnFormat) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText parses a tag.
func (f *ColumnFormat) UnmarshalText(text []byte) error {
	parsed, err := ParseColumnFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
