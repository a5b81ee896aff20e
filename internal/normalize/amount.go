package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var amountNoiseRe = regexp.MustCompile(`[원\s,]`)

var koreanUnits = map[rune]float64{
	'만': 10000,
	'천': 1000,
	'백': 100,
}

// ParseKoreanAmount reads amounts written with Korean units such as
// "1,500만 3천원". Each unit multiplies the digits collected since the
// previous unit (an empty run counts as 1) and adds the product to the total.
// Returns 0 when nothing parses.
func ParseKoreanAmount(input string) int64 {
	s := amountNoiseRe.ReplaceAllString(input, "")

	var total float64
	var run strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.':
			run.WriteRune(r)
		case koreanUnits[r] > 0:
			n := 1.0
			if run.Len() > 0 {
				n = leadingFloat(run.String())
			}
			total += n * koreanUnits[r]
			run.Reset()
		}
	}
	if run.Len() > 0 {
		total += leadingFloat(run.String())
	}

	if math.IsNaN(total) || math.IsInf(total, 0) {
		return 0
	}
	return int64(math.Round(total))
}

// HasKoreanUnit reports whether s contains 만, 천 or 백.
func HasKoreanUnit(s string) bool {
	return strings.ContainsAny(s, "만천백")
}

// leadingFloat parses the longest numeric prefix of s ("1.2.3" reads as 1.2).
func leadingFloat(s string) float64 {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return 0
	}
	if next := strings.IndexByte(s[dot+1:], '.'); next >= 0 {
		s = s[:dot+1+next]
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(s, "."), 64)
	if err != nil {
		return 0
	}
	return f
}
