package cleaning

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Options are the checkbox toggles. Each one enables a category of cleaning on
// the columns its predicate matches. Field names follow the JSON keys used by
// presets and the HTTP API.
type Options struct {
	RemoveWhitespace    bool `json:"removeWhitespace" yaml:"removeWhitespace" mapstructure:"removeWhitespace"`
	FormatMobile        bool `json:"formatMobile" yaml:"formatMobile" mapstructure:"formatMobile"`
	FormatGeneralPhone  bool `json:"formatGeneralPhone" yaml:"formatGeneralPhone" mapstructure:"formatGeneralPhone"`
	FormatDate          bool `json:"formatDate" yaml:"formatDate" mapstructure:"formatDate"`
	FormatDateTime      bool `json:"formatDateTime" yaml:"formatDateTime" mapstructure:"formatDateTime"`
	FormatNumber        bool `json:"formatNumber" yaml:"formatNumber" mapstructure:"formatNumber"`
	CleanEmail          bool `json:"cleanEmail" yaml:"cleanEmail" mapstructure:"cleanEmail"`
	FormatZip           bool `json:"formatZip" yaml:"formatZip" mapstructure:"formatZip"`
	HighlightChanges    bool `json:"highlightChanges" yaml:"highlightChanges" mapstructure:"highlightChanges"`
	CleanGarbage        bool `json:"cleanGarbage" yaml:"cleanGarbage" mapstructure:"cleanGarbage"`
	CleanAmount         bool `json:"cleanAmount" yaml:"cleanAmount" mapstructure:"cleanAmount"`
	CleanName           bool `json:"cleanName" yaml:"cleanName" mapstructure:"cleanName"`
	FormatBizNum        bool `json:"formatBizNum" yaml:"formatBizNum" mapstructure:"formatBizNum"`
	FormatCorpNum       bool `json:"formatCorpNum" yaml:"formatCorpNum" mapstructure:"formatCorpNum"`
	FormatURL           bool `json:"formatUrl" yaml:"formatUrl" mapstructure:"formatUrl"`
	MaskPersonalData    bool `json:"maskPersonalData" yaml:"maskPersonalData" mapstructure:"maskPersonalData"`
	FormatTrackingNum   bool `json:"formatTrackingNum" yaml:"formatTrackingNum" mapstructure:"formatTrackingNum"`
	CleanOrderID        bool `json:"cleanOrderId" yaml:"cleanOrderId" mapstructure:"cleanOrderId"`
	FormatTaxDate       bool `json:"formatTaxDate" yaml:"formatTaxDate" mapstructure:"formatTaxDate"`
	FormatAccountingNum bool `json:"formatAccountingNum" yaml:"formatAccountingNum" mapstructure:"formatAccountingNum"`
	CleanAreaUnit       bool `json:"cleanAreaUnit" yaml:"cleanAreaUnit" mapstructure:"cleanAreaUnit"`
	CleanSnsID          bool `json:"cleanSnsId" yaml:"cleanSnsId" mapstructure:"cleanSnsId"`
	FormatHashtag       bool `json:"formatHashtag" yaml:"formatHashtag" mapstructure:"formatHashtag"`
	CleanCompanyName    bool `json:"cleanCompanyName" yaml:"cleanCompanyName" mapstructure:"cleanCompanyName"`
	RemovePosition      bool `json:"removePosition" yaml:"removePosition" mapstructure:"removePosition"`
	ExtractDong         bool `json:"extractDong" yaml:"extractDong" mapstructure:"extractDong"`
	MaskAccount         bool `json:"maskAccount" yaml:"maskAccount" mapstructure:"maskAccount"`
	MaskCard            bool `json:"maskCard" yaml:"maskCard" mapstructure:"maskCard"`
	MaskName            bool `json:"maskName" yaml:"maskName" mapstructure:"maskName"`
	MaskEmail           bool `json:"maskEmail" yaml:"maskEmail" mapstructure:"maskEmail"`
	MaskAddress         bool `json:"maskAddress" yaml:"maskAddress" mapstructure:"maskAddress"`
	MaskPhoneMid        bool `json:"maskPhoneMid" yaml:"maskPhoneMid" mapstructure:"maskPhoneMid"`
	CategoryAge         bool `json:"categoryAge" yaml:"categoryAge" mapstructure:"categoryAge"`
	TruncateDate        bool `json:"truncateDate" yaml:"truncateDate" mapstructure:"truncateDate"`
	RestoreExponential  bool `json:"restoreExponential" yaml:"restoreExponential" mapstructure:"restoreExponential"`
	ExtractBuilding     bool `json:"extractBuilding" yaml:"extractBuilding" mapstructure:"extractBuilding"`
	NormalizeSKU        bool `json:"normalizeSKU" yaml:"normalizeSKU" mapstructure:"normalizeSKU"`
	UnifyUnit           bool `json:"unifyUnit" yaml:"unifyUnit" mapstructure:"unifyUnit"`
	StandardizeCurrency bool `json:"standardizeCurrency" yaml:"standardizeCurrency" mapstructure:"standardizeCurrency"`
	RemoveHTML          bool `json:"removeHtml" yaml:"removeHtml" mapstructure:"removeHtml"`
	RemoveEmoji         bool `json:"removeEmoji" yaml:"removeEmoji" mapstructure:"removeEmoji"`
	ToUpperCase         bool `json:"toUpperCase" yaml:"toUpperCase" mapstructure:"toUpperCase"`
	ToLowerCase         bool `json:"toLowerCase" yaml:"toLowerCase" mapstructure:"toLowerCase"`
	AutoDetect          bool `json:"autoDetect" yaml:"autoDetect" mapstructure:"autoDetect"`
}

// ErrUnknownOption is returned when an option key does not name a toggle.
var ErrUnknownOption = errors.New("unknown option")

// With returns a copy of o with the toggles named by their JSON keys set.
func (o Options) With(keys map[string]bool) (Options, error) {
	raw, err := json.Marshal(o)
	if err != nil {
		return o, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return o, err
	}
	for k, v := range keys {
		if _, ok := fields[k]; !ok {
			return o, fmt.Errorf("%w: %s", ErrUnknownOption, k)
		}
		fields[k] = v
	}
	if raw, err = json.Marshal(fields); err != nil {
		return o, err
	}
	var out Options
	if err := json.Unmarshal(raw, &out); err != nil {
		return o, err
	}
	return out, nil
}

// Enabled lists the JSON keys of every toggle that is on, sorted.
func (o Options) Enabled() []string {
	raw, _ := json.Marshal(o)
	var fields map[string]bool
	_ = json.Unmarshal(raw, &fields)
	var out []string
	for k, v := range fields {
		if v {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
