package store

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/raaihank/data-laundry/internal/cleaning"
)

var (
	// ErrNotFound is returned when a preset or job does not exist
	ErrNotFound = errors.New("not found")
	// ErrSystemPreset is returned when a built-in preset would be changed or removed
	ErrSystemPreset = errors.New("system presets are read-only")
	// ErrInvalidPreset is returned for presets without a name or with a bad payload
	ErrInvalidPreset = errors.New("invalid preset")
)

// Preset is a saved combination of options, prompt and column formats
type Preset struct {
	ID            string                           `json:"id"`
	Name          string                           `json:"name"`
	Icon          string                           `json:"icon,omitempty"`
	Description   string                           `json:"description,omitempty"`
	Options       cleaning.Options                 `json:"options"`
	Prompt        string                           `json:"prompt"`
	ColumnFormats map[string]cleaning.ColumnFormat `json:"columnFormats,omitempty"`
	IsSystem      bool                             `json:"isSystem,omitempty"`
	CreatedAt     time.Time                        `json:"createdAt"`
}

// Request builds the cleaning request this preset describes
func (p Preset) Request() cleaning.Request {
	return cleaning.Request{
		Prompt:        p.Prompt,
		Options:       p.Options,
		ColumnFormats: p.ColumnFormats,
	}
}

// Apply layers req over the preset. A non-blank prompt, any enabled option
// and per-column formats given in req win; locked columns always come from req.
func (p Preset) Apply(req cleaning.Request) cleaning.Request {
	merged := p.Request()
	merged.Locked = req.Locked
	if strings.TrimSpace(req.Prompt) != "" {
		merged.Prompt = req.Prompt
	}
	if len(req.Options.Enabled()) > 0 {
		merged.Options = req.Options
	}
	if len(req.ColumnFormats) > 0 {
		formats := make(map[string]cleaning.ColumnFormat, len(merged.ColumnFormats)+len(req.ColumnFormats))
		for c, f := range merged.ColumnFormats {
			formats[c] = f
		}
		for c, f := range req.ColumnFormats {
			formats[c] = f
		}
		merged.ColumnFormats = formats
	}
	return merged
}

// JobStatus is the outcome of a cleaning job
type JobStatus string

const (
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// JobRecord is one row of cleaning job history
type JobRecord struct {
	ID           string    `json:"id" db:"id"`
	Source       string    `json:"source" db:"source"`
	Rows         int       `json:"rows" db:"row_count"`
	ChangedCells int       `json:"changedCells" db:"changed_cells"`
	QualityScore int       `json:"qualityScore" db:"quality_score"`
	DurationMS   int64     `json:"durationMs" db:"duration_ms"`
	Status       JobStatus `json:"status" db:"status"`
	Error        string    `json:"error,omitempty" db:"error"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// NewJobRecord builds a history entry for a finished job. A non-nil err marks
// the job failed. Jobs that failed before getting an ID receive a fresh one.
func NewJobRecord(id, source string, rows, changed, quality int, duration time.Duration, err error) *JobRecord {
	if id == "" {
		id = uuid.NewString()
	}
	record := &JobRecord{
		ID:           id,
		Source:       source,
		Rows:         rows,
		ChangedCells: changed,
		QualityScore: quality,
		DurationMS:   duration.Milliseconds(),
		Status:       JobCompleted,
		CreatedAt:    time.Now(),
	}
	if err != nil {
		record.Status = JobFailed
		record.Error = err.Error()
	}
	return record
}
