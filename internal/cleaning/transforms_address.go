package cleaning

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	dongRe        = regexp.MustCompile(`([가-힣0-9]+(?:동|읍|면))(?:\s|,|\)|$)`)
	bracketPartRe = regexp.MustCompile(`\(([^)]*)\)`)
	gunguRe       = regexp.MustCompile(`^[가-힣]+(?:구|군)$`)
	buildingWords = []string{"빌딩", "타워", "센터", "아파트", "오피스텔", "빌라", "맨션", "플라자", "스퀘어", "캐슬"}
	sidoSuffixes  = []string{"특별자치시", "특별자치도", "특별시", "광역시", "시", "도"}
)

// extractDong keeps the first 동, 읍 or 면 in an address.
func extractDong(v string) string {
	m := dongRe.FindStringSubmatch(v)
	if m == nil {
		return v
	}
	return m[1]
}

// extractBuilding prefers the building named in the trailing bracket of a
// road address, e.g. "(역삼동, 강남파이낸스센터)".
func extractBuilding(v string) string {
	for _, m := range bracketPartRe.FindAllStringSubmatch(v, -1) {
		parts := strings.Split(m[1], ",")
		last := strings.TrimSpace(parts[len(parts)-1])
		if last == "" || dongRe.MatchString(last) {
			continue
		}
		return last
	}
	for _, word := range strings.Fields(v) {
		w := strings.Trim(word, ",()")
		for _, suffix := range buildingWords {
			if strings.HasSuffix(w, suffix) && w != suffix {
				return w
			}
		}
	}
	return v
}

// extractSido keeps the leading province or metropolitan city.
func extractSido(v string) string {
	words := strings.Fields(v)
	if len(words) == 0 {
		return v
	}
	for _, suffix := range sidoSuffixes {
		if strings.HasSuffix(words[0], suffix) && words[0] != suffix {
			return words[0]
		}
	}
	return v
}

// extractGungu keeps the district. Cities without districts (e.g. 성남시
// without 분당구) fall back to the city.
func extractGungu(v string) string {
	words := strings.Fields(v)
	for _, w := range words {
		if gunguRe.MatchString(w) {
			return w
		}
	}
	for i, w := range words {
		if i > 0 && strings.HasSuffix(w, "시") && w != "시" {
			return w
		}
	}
	return v
}

// extractDomain keeps the host of an e-mail address or URL.
func extractDomain(v string) string {
	val := strings.TrimSpace(v)
	if i := strings.LastIndex(val, "@"); i >= 0 && i < len(val)-1 {
		return val[i+1:]
	}
	if strings.Contains(val, "://") {
		if u, err := url.Parse(val); err == nil && u.Hostname() != "" {
			return u.Hostname()
		}
	}
	return v
}
