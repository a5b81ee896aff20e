package privacy

import "regexp"

// Rule masks one kind of personal data. Replacement may reference groups of
// Pattern and uses '*' as the mask character.
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

// Finding counts the matches of one rule in a scanned value
type Finding struct {
	Rule    string `json:"rule"`
	Count   int    `json:"count"`
	Offsets []int  `json:"offsets,omitempty"`
}

// ScanResult is a masked value with what was found in it. The unmasked input
// is not kept since it is customer data.
type ScanResult struct {
	Text     string    `json:"text"`
	Findings []Finding `json:"findings"`
}
