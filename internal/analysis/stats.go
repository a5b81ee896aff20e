package analysis

import (
	"math"
	"strings"

	"github.com/raaihank/data-laundry/internal/cleaning"
)

// Stats summarises a cleaning run
type Stats struct {
	TotalRows      int            `json:"totalRows"`
	ChangedCells   int            `json:"changedCells"`
	ColumnChanges  map[string]int `json:"columnChanges"`
	ResolvedIssues int            `json:"resolvedIssues"`
	Completeness   int            `json:"completeness"`
	Validity       int            `json:"validity"`
	QualityScore   int            `json:"qualityScore"`
}

// DiffStats compares each processed row with the original at the same index;
// callers that drop rows align original first. Completeness is the share of
// non-empty cells after cleaning, validity the share of cells no remaining
// issue points at, and the quality score weighs them 40/60.
func DiffStats(original, processed []cleaning.Row, columns []string, before, after []Issue) Stats {
	stats := Stats{
		ColumnChanges:  make(map[string]int),
		ResolvedIssues: max(0, len(before)-len(after)),
	}
	if len(processed) == 0 {
		return stats
	}
	stats.TotalRows = len(processed)

	filled := 0
	for i, row := range processed {
		var orig cleaning.Row
		if i < len(original) {
			orig = original[i]
		}
		for _, column := range columns {
			v := cleaning.Stringify(row[column])
			if strings.TrimSpace(v) != "" {
				filled++
			}
			if orig != nil && v != cleaning.Stringify(orig[column]) {
				stats.ChangedCells++
				stats.ColumnChanges[column]++
			}
		}
	}

	cells := len(processed) * len(columns)
	if cells == 0 {
		return stats
	}

	flagged := make(map[[2]int]struct{})
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c] = i
	}
	for _, issue := range after {
		col, ok := index[issue.Column]
		if !ok {
			continue
		}
		for _, r := range issue.AffectedRows {
			flagged[[2]int{r, col}] = struct{}{}
		}
	}

	stats.Completeness = percent(filled, cells)
	stats.Validity = percent(cells-len(flagged), cells)
	stats.QualityScore = int(math.Round(0.4*float64(stats.Completeness) + 0.6*float64(stats.Validity)))
	return stats
}

func percent(n, total int) int {
	return int(math.Round(float64(n) * 100 / float64(total)))
}
