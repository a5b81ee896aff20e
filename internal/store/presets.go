package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/raaihank/data-laundry/internal/cleaning"
)

const systemPrefix = "sys-"

var systemCreated = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// SystemPresets returns the built-in presets. The slice is built on every
// call so callers may modify it.
func SystemPresets() []Preset {
	return markSystem([]Preset{
		{
			ID:          "sys-standard",
			Name:        "🧼 표준 세탁 (Standard)",
			Description: "공백 제거, 전화번호, 날짜, 숫자 서식과 쓰레기 값 정리",
			Options: cleaning.Options{
				RemoveWhitespace: true,
				FormatMobile:     true,
				FormatDate:       true,
				FormatNumber:     true,
				CleanGarbage:     true,
			},
		},
		{
			ID:          "sys-privacy",
			Name:        "🛡️ 개인정보 마스킹 (Privacy)",
			Description: "이름, 연락처, 주소, 이메일 비식별화",
			Prompt:      "이름 별표 처리해줘, 주소는 번지수 가려줘",
			Options: cleaning.Options{
				MaskPersonalData: true,
				MaskPhoneMid:     true,
				MaskName:         true,
				MaskAddress:      true,
				MaskEmail:        true,
			},
		},
		{
			ID:          "sys-finance",
			Name:        "📊 금융/회계 모드 (Finance)",
			Description: "금액 정리, 지수 표기 복원, 통화와 단위 통일",
			Prompt:      "숫자에서 콤마 제거하고 단위만 남겨줘",
			Options: cleaning.Options{
				FormatNumber:        true,
				CleanAmount:         true,
				RestoreExponential:  true,
				StandardizeCurrency: true,
				UnifyUnit:           true,
			},
		},
		{
			ID:          "sys-business",
			Name:        "🏢 기업 정보 통합 (Corp)",
			Description: "사업자/법인 번호 서식, 업체명과 직함 정리",
			Prompt:      "(주) 같은 괄호 제거하고 업체명만 남겨",
			Options: cleaning.Options{
				FormatBizNum:     true,
				FormatCorpNum:    true,
				CleanCompanyName: true,
				RemovePosition:   true,
			},
		},
	})
}

// IsSystemPreset reports whether id names a built-in preset
func IsSystemPreset(id string) bool {
	return strings.HasPrefix(id, systemPrefix)
}

// SystemPreset returns the built-in preset with the given ID
func SystemPreset(id string) (Preset, bool) {
	for _, p := range SystemPresets() {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}

func markSystem(presets []Preset) []Preset {
	for i := range presets {
		presets[i].IsSystem = true
		presets[i].CreatedAt = systemCreated
	}
	return presets
}

// validatePreset checks a user preset before it is stored and fills in its ID
func validatePreset(p *Preset) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPreset)
	}
	if p.IsSystem || IsSystemPreset(p.ID) {
		return ErrSystemPreset
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	return nil
}

// MarshalPresets encodes the user presets among presets as an export file.
// Built-in presets are never exported.
func MarshalPresets(presets []Preset) ([]byte, error) {
	user := make([]Preset, 0, len(presets))
	for _, p := range presets {
		if p.IsSystem || IsSystemPreset(p.ID) {
			continue
		}
		user = append(user, p)
	}
	return json.MarshalIndent(user, "", "  ")
}

// ParsePresets decodes an export file. The payload must be a JSON array;
// every imported preset gets a fresh ID and is treated as a user preset.
func ParsePresets(data []byte) ([]Preset, error) {
	var presets []Preset
	if err := json.Unmarshal(data, &presets); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON array of presets: %v", ErrInvalidPreset, err)
	}

	now := time.Now()
	out := make([]Preset, 0, len(presets))
	for _, p := range presets {
		p.ID = uuid.NewString()
		p.IsSystem = false
		p.CreatedAt = now
		if err := validatePreset(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
