package etl

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/raaihank/data-laundry/internal/analysis"
	"github.com/raaihank/data-laundry/internal/cleaning"
)

var (
	// ErrUnsupportedFormat is returned for files the pipeline cannot read or write
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrEmptyDataset is returned when a file has a header but no data rows
	ErrEmptyDataset = errors.New("dataset has no rows")
	// ErrTooManyRows is returned when a file exceeds the configured row budget
	ErrTooManyRows = errors.New("dataset exceeds row limit")
)

// FileFormat represents supported file formats
type FileFormat string

const (
	FormatCSV     FileFormat = "csv"
	FormatXLSX    FileFormat = "xlsx"
	FormatParquet FileFormat = "parquet"
	FormatJSONL   FileFormat = "jsonl"
)

// DetectFileFormat detects file format from extension
func DetectFileFormat(filename string) (FileFormat, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".parquet":
		return FormatParquet, nil
	case ".jsonl", ".ndjson", ".json":
		return FormatJSONL, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
}

// Dataset is a table with an ordered header
type Dataset struct {
	Columns []string
	Rows    []cleaning.Row
}

// Job describes one file cleaning run
type Job struct {
	ID      string
	Input   string
	Output  string
	Request cleaning.Request
	Limits  analysis.Limits
}

// Result represents the result of processing a dataset
type Result struct {
	JobID        string               `json:"jobId"`
	Input        string               `json:"input"`
	Output       string               `json:"output,omitempty"`
	Columns      []string             `json:"columns"`
	Rows         []cleaning.Row       `json:"-"`
	Originals    []cleaning.Row       `json:"-"` // source row behind each of Rows
	IssuesBefore []analysis.Issue     `json:"issuesBefore"`
	Issues       []analysis.Issue     `json:"issues"`
	Stats        analysis.Stats       `json:"stats"`
	Formats      map[string]string    `json:"formats,omitempty"`
	Performance  analysis.Performance `json:"performance"`
	Duration     time.Duration        `json:"duration"`
	Batches      int                  `json:"batches"`
}

// Progress is a milestone reported while a job runs
type Progress struct {
	JobID   string `json:"jobId"`
	Percent int    `json:"progress"`
	Message string `json:"message"`
}

// ProgressFunc receives progress milestones; it may be nil
type ProgressFunc func(Progress)

// ProcessingStats tracks real-time processing statistics
type ProcessingStats struct {
	StartTime      time.Time `json:"start_time"`
	RecordsRead    int64     `json:"records_read"`
	RecordsCleaned int64     `json:"records_cleaned"`
	CurrentBatch   int64     `json:"current_batch"`
	EstimatedTotal int64     `json:"estimated_total"`
	ProcessingRate float64   `json:"processing_rate"` // records per second
}
