package analysis

import "runtime"

// Tier is a coarse hardware class
type Tier string

const (
	TierHigh   Tier = "High"
	TierMedium Tier = "Medium"
	TierLow    Tier = "Low"
)

// Performance is the recommended workload for a machine
type Performance struct {
	Tier            Tier    `json:"tier"`
	RecommendedRows int     `json:"recommendedRows"`
	MemoryGB        float64 `json:"memoryGB"`
	Cores           int     `json:"cores"`
}

// EstimatePerformance maps memory and core counts to a row budget. Unknown
// values fall back to 4GB and the runtime's CPU count.
func EstimatePerformance(memoryGB float64, cores int) Performance {
	if memoryGB <= 0 {
		memoryGB = 4
	}
	if cores <= 0 {
		cores = runtime.NumCPU()
	}

	p := Performance{MemoryGB: memoryGB, Cores: cores}
	switch {
	case memoryGB >= 8 && cores >= 8:
		p.Tier, p.RecommendedRows = TierHigh, 300000
	case memoryGB < 4:
		p.Tier, p.RecommendedRows = TierLow, 30000
	default:
		p.Tier, p.RecommendedRows = TierMedium, 100000
		if memoryGB >= 8 {
			p.RecommendedRows = 150000
		}
	}
	return p
}
