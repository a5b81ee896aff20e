package api

import (
	"github.com/raaihank/data-laundry/internal/analysis"
	"github.com/raaihank/data-laundry/internal/cleaning"
	"github.com/raaihank/data-laundry/internal/etl"
)

// CleanRequest is the body of POST /api/v1/clean
type CleanRequest struct {
	cleaning.Request
	Rows       []cleaning.Row  `json:"rows"`
	Columns    []string        `json:"columns,omitempty"`
	PresetID   string          `json:"presetId,omitempty"`
	MaxLengths analysis.Limits `json:"maxLengths,omitempty"`
}

// CleanResponse is the result of a cleaning call
type CleanResponse struct {
	JobID        string               `json:"jobId"`
	Columns      []string             `json:"columns"`
	Rows         []cleaning.Row       `json:"rows"`
	IssuesBefore []analysis.Issue     `json:"issuesBefore"`
	Issues       []analysis.Issue     `json:"issues"`
	Stats        analysis.Stats       `json:"stats"`
	Formats      map[string]string    `json:"formats,omitempty"`
	Performance  analysis.Performance `json:"performance"`
	Cached       bool                 `json:"cached"`
	DurationMS   int64                `json:"durationMs"`
}

func newCleanResponse(result *etl.Result) CleanResponse {
	return CleanResponse{
		JobID:        result.JobID,
		Columns:      result.Columns,
		Rows:         result.Rows,
		IssuesBefore: result.IssuesBefore,
		Issues:       result.Issues,
		Stats:        result.Stats,
		Formats:      result.Formats,
		Performance:  result.Performance,
		DurationMS:   result.Duration.Milliseconds(),
	}
}

// IssuesRequest is the body of POST /api/v1/issues
type IssuesRequest struct {
	Rows       []cleaning.Row   `json:"rows"`
	Columns    []string         `json:"columns,omitempty"`
	Options    cleaning.Options `json:"options"`
	MaxLengths analysis.Limits  `json:"maxLengths,omitempty"`
}

// IssuesResponse lists detected issues with per-column recommendations.
// PersonalData counts, per column and rule, the values carrying personal data.
type IssuesResponse struct {
	Issues            []analysis.Issue          `json:"issues"`
	Formats           map[string]string         `json:"formats"`
	ColumnLengths     analysis.Limits           `json:"columnLengths"`
	HeaderSuggestions map[string][]string       `json:"headerSuggestions"`
	DateColumns       int                       `json:"dateColumns"`
	PersonalData      map[string]map[string]int `json:"personalData,omitempty"`
}

// InfoResponse describes the running service
type InfoResponse struct {
	Name            string               `json:"name"`
	Version         string               `json:"version"`
	PrivacyEnabled  bool                 `json:"privacy_enabled"`
	PrivacyRules    []string             `json:"privacy_rules"`
	CacheEnabled    bool                 `json:"cache_enabled"`
	DatabaseEnabled bool                 `json:"database_enabled"`
	Workers         int                  `json:"workers"`
	FormatTags      []string             `json:"format_tags"`
	Performance     analysis.Performance `json:"performance"`
}

// ErrorResponse is written for every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}
