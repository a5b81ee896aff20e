package cache

import (
	"time"

	"github.com/raaihank/data-laundry/internal/analysis"
	"github.com/raaihank/data-laundry/internal/cleaning"
)

// CachedResult is a cleaning response kept in Redis
type CachedResult struct {
	Columns      []string          `json:"columns"`
	Rows         []cleaning.Row    `json:"rows"`
	IssuesBefore []analysis.Issue  `json:"issuesBefore"`
	Issues       []analysis.Issue  `json:"issues"`
	Stats        analysis.Stats    `json:"stats"`
	Formats      map[string]string `json:"formats,omitempty"`
	CachedAt     time.Time         `json:"cachedAt"`
	TTL          int64             `json:"ttl"`
}

// CacheStats represents cache performance statistics
type CacheStats struct {
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	HitRate     float64 `json:"hit_rate"`
	TotalKeys   int64   `json:"total_keys"`
	MemoryUsage int64   `json:"memory_usage_bytes"`
}

// keyInput is everything that determines a cleaning result
type keyInput struct {
	Request cleaning.Request `json:"request"`
	Columns []string         `json:"columns"`
	Rows    []cleaning.Row   `json:"rows"`
	Limits  analysis.Limits  `json:"limits,omitempty"`
}
