package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultDateSeparator joins date components when the caller has no preference.
const DefaultDateSeparator = "."

var (
	koreanDateRe = regexp.MustCompile(`((?:19|20)\d{2})[-.년/\s]{1,3}(\d{1,2})[-.월/\s]{1,3}(\d{1,2})[일\s)]?`)
	ymdDateRe    = regexp.MustCompile(`((?:19|20)\d{2})[-./](\d{1,2})[-./](\d{1,2})`)
	mdyDateRe    = regexp.MustCompile(`(\d{1,2})[/\-.](\d{1,2})[/\-.]((?:19|20)\d{2})`)
	eightDateRe  = regexp.MustCompile(`(?:^|\D)((?:19|20)\d{2})(\d{2})(\d{2})(?:$|\D)`)
	sixDateRe    = regexp.MustCompile(`^(\d{2})(\d{2})(\d{2})$`)
	shortYearRe  = regexp.MustCompile(`^(\d{2})[/\-.](\d{1,2})[/\-.](\d{1,2})(?:$|\D)`)

	timeMarkerRe = regexp.MustCompile(`(?i)(오전|오후|am|pm|\d{1,2}:\d{1,2}(?::\d{1,2})?)`)
	clockRe      = regexp.MustCompile(`(\d{1,2}):(\d{1,2})(?::(\d{1,2}))?`)
	pmMarkerRe   = regexp.MustCompile(`(?i)오후|pm`)
	amMarkerRe   = regexp.MustCompile(`(?i)오전|am`)
)

// NormalizeDate converts a loosely formatted date into YYYY<sep>MM<sep>DD.
// The second return value is false when no supported layout matches or the
// month/day fall outside 1..12 / 1..31.
func NormalizeDate(input, sep string) (string, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", false
	}

	if m := koreanDateRe.FindStringSubmatch(s); m != nil {
		return joinDate(m[1], m[2], m[3], sep)
	}
	if m := ymdDateRe.FindStringSubmatch(s); m != nil {
		return joinDate(m[1], m[2], m[3], sep)
	}
	if m := mdyDateRe.FindStringSubmatch(s); m != nil {
		p1, _ := strconv.Atoi(m[1])
		p2, _ := strconv.Atoi(m[2])
		// P1/P2/YYYY has no universally correct reading; a part above 12
		// must be the day, otherwise month-first.
		month, day := p1, p2
		if p1 > 12 {
			month, day = p2, p1
		}
		return joinDate(m[3], strconv.Itoa(month), strconv.Itoa(day), sep)
	}
	if m := eightDateRe.FindStringSubmatch(s); m != nil {
		return joinDate(m[1], m[2], m[3], sep)
	}
	if m := sixDateRe.FindStringSubmatch(s); m != nil {
		return joinDate(expandYear(m[1]), m[2], m[3], sep)
	}
	if m := shortYearRe.FindStringSubmatch(s); m != nil {
		return joinDate(expandYear(m[1]), m[2], m[3], sep)
	}

	return "", false
}

// NormalizeDateTime normalizes a date with a time of day into
// "<date> HH:MM:SS". Values without a time marker are rejected, there is no
// fallback to the date alone.
func NormalizeDateTime(input, sep string) (string, bool) {
	s := strings.TrimSpace(input)
	if !timeMarkerRe.MatchString(s) {
		return "", false
	}

	date, ok := NormalizeDate(s, sep)
	if !ok {
		return "", false
	}

	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	second := 0
	if m[3] != "" {
		second, _ = strconv.Atoi(m[3])
	}

	switch {
	case pmMarkerRe.MatchString(s) && hour < 12:
		hour += 12
	case amMarkerRe.MatchString(s) && hour == 12:
		hour = 0
	}

	if hour > 23 || minute > 59 || second > 59 {
		return "", false
	}

	return fmt.Sprintf("%s %02d:%02d:%02d", date, hour, minute, second), true
}

// RelativeDate resolves 오늘, 어제 and 그저께/그제 against now.
func RelativeDate(input string, now time.Time, sep string) (string, bool) {
	s := strings.TrimSpace(input)
	var days int
	switch {
	case strings.Contains(s, "그저께"), strings.Contains(s, "그제"):
		days = -2
	case strings.Contains(s, "어제"):
		days = -1
	case strings.Contains(s, "오늘"):
		days = 0
	default:
		return "", false
	}
	d := now.AddDate(0, 0, days)
	return fmt.Sprintf("%04d%s%02d%s%02d", d.Year(), sep, int(d.Month()), sep, d.Day()), true
}

// HasTime reports whether the value carries a time-of-day marker.
func HasTime(input string) bool {
	return timeMarkerRe.MatchString(input)
}

func expandYear(yy string) string {
	y, _ := strconv.Atoi(yy)
	if y > 50 {
		return strconv.Itoa(1900 + y)
	}
	return strconv.Itoa(2000 + y)
}

func joinDate(year, month, day, sep string) (string, bool) {
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return "", false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return "", false
	}
	return fmt.Sprintf("%s%s%02d%s%02d", year, sep, m, sep, d), true
}
