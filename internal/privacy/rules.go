package privacy

import "regexp"

// GetDefaultRules returns the built-in Korean PII rules in the order they are
// applied. Replacements use '*' as the mask character.
func GetDefaultRules() []Rule {
	return []Rule{
		{
			Name:        "card",
			Pattern:     regexp.MustCompile(`\b(\d{4})[-\s]?(\d{4})[-\s]?(\d{4})[-\s]?\d{4}\b`),
			Replacement: "${1}-${2}-${3}-****",
		},
		{
			// Resident and foreigner registration numbers share one layout.
			Name:        "rrn",
			Pattern:     regexp.MustCompile(`\b(\d{2}[01]\d[0-3]\d)[-\s]?[1-8]\d{6}\b`),
			Replacement: "${1}-*******",
		},
		{
			Name:        "mobile",
			Pattern:     regexp.MustCompile(`\b(01[016789])[-.\s]?(\d{3,4})[-.\s]?(\d{4})\b`),
			Replacement: "${1}-****-${3}",
		},
		{
			Name:        "email",
			Pattern:     regexp.MustCompile(`\b([A-Za-z0-9._%+-]{2})[A-Za-z0-9._%+-]*@([A-Za-z0-9.-]+\.[A-Za-z]{2,})\b`),
			Replacement: "${1}***@${2}",
		},
		{
			Name:        "passport",
			Pattern:     regexp.MustCompile(`\b([MSRODG])(\d{3})\d{5}\b`),
			Replacement: "${1}${2}*****",
		},
		{
			Name:        "driver_license",
			Pattern:     regexp.MustCompile(`\b(\d{2})-(\d{2})-\d{6}-(\d{2})\b`),
			Replacement: "${1}-${2}-******-${3}",
		},
	}
}
