package etl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/raaihank/data-laundry/internal/analysis"
	"github.com/raaihank/data-laundry/internal/cleaning"
	"github.com/raaihank/data-laundry/internal/config"
)

// Progress milestones
const (
	stepAnalyze  = 10
	stepClean    = 30
	stepInspect  = 70
	stepReport   = 90
	stepComplete = 100
)

var stepMessages = map[int]string{
	stepAnalyze:  "데이터 분석 중...",
	stepClean:    "데이터 정제 엔진 가동 중...",
	stepInspect:  "데이터 무결성 검사 및 이슈 진단 중...",
	stepReport:   "최종 리포트 생성 중...",
	stepComplete: "정제 완료",
}

// Pipeline runs file cleaning jobs
type Pipeline struct {
	engine *cleaning.Engine
	config config.PipelineConfig
	memory float64
	logger *zap.Logger
	stats  *ProcessingStats
	mu     sync.RWMutex
}

// NewPipeline creates a new file pipeline. memoryGB feeds the performance
// estimate reported with each result.
func NewPipeline(engine *cleaning.Engine, cfg config.PipelineConfig, memoryGB float64, logger *zap.Logger) *Pipeline {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = config.GetDefaults().Pipeline.BatchSize
	}
	return &Pipeline{
		engine: engine,
		config: cfg,
		memory: memoryGB,
		logger: logger,
		stats:  &ProcessingStats{StartTime: time.Now()},
	}
}

// Run reads job.Input, cleans it and writes job.Output when set
func (p *Pipeline) Run(ctx context.Context, job Job, progress ProgressFunc) (*Result, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	report := reporter(job.ID, progress)

	p.logger.Info("Starting file job",
		zap.String("job_id", job.ID),
		zap.String("input", job.Input),
		zap.Int("batch_size", p.config.BatchSize))

	report(stepAnalyze)
	ds, err := ReadFile(job.Input)
	if err != nil {
		return nil, err
	}

	result, err := p.clean(ctx, job, ds, report)
	if err != nil {
		return nil, err
	}

	if job.Output != "" {
		var original []cleaning.Row
		if job.Request.Options.HighlightChanges {
			original = result.Originals
		}
		out := &Dataset{Columns: result.Columns, Rows: result.Rows}
		if err := WriteFile(job.Output, out, original); err != nil {
			return nil, fmt.Errorf("failed to write output: %w", err)
		}
		result.Output = job.Output
	}

	report(stepComplete)

	p.logger.Info("File job completed",
		zap.String("job_id", job.ID),
		zap.Int("rows", result.Stats.TotalRows),
		zap.Int("changed_cells", result.Stats.ChangedCells),
		zap.Int("quality_score", result.Stats.QualityScore),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// Clean runs the cleaning steps over an in-memory dataset. progress may be nil.
func (p *Pipeline) Clean(ctx context.Context, job Job, ds *Dataset, progress ProgressFunc) (*Result, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	report := reporter(job.ID, progress)
	result, err := p.clean(ctx, job, ds, report)
	if err != nil {
		return nil, err
	}
	report(stepComplete)
	return result, nil
}

func reporter(jobID string, progress ProgressFunc) func(int) {
	return func(step int) {
		if progress != nil {
			progress(Progress{JobID: jobID, Percent: step, Message: stepMessages[step]})
		}
	}
}

func (p *Pipeline) clean(ctx context.Context, job Job, ds *Dataset, report func(int)) (*Result, error) {
	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	p.resetStats(int64(len(ds.Rows)))

	if len(ds.Rows) == 0 {
		return nil, ErrEmptyDataset
	}
	if p.config.MaxRows > 0 && len(ds.Rows) > p.config.MaxRows {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyRows, len(ds.Rows), p.config.MaxRows)
	}

	opts := job.Request.Options
	issuesBefore := analysis.DetectIssues(ds.Rows, ds.Columns, job.Limits, opts)

	report(stepClean)
	plan := p.engine.Prepare(job.Request, ds.Columns)
	plan.AutoDetect(ds.Rows)

	cleaned := make([]cleaning.Row, 0, len(ds.Rows))
	batches := 0
	for offset := 0; offset < len(ds.Rows); offset += p.config.BatchSize {
		end := min(offset+p.config.BatchSize, len(ds.Rows))
		out, err := p.engine.Apply(ctx, plan, ds.Rows[offset:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d failed: %w", batches+1, err)
		}
		cleaned = append(cleaned, out...)
		batches++
		p.recordBatch(int64(len(out)))
	}
	cleaned, kept := plan.Finish(cleaned)
	originals := cleaning.Pick(ds.Rows, kept)

	report(stepInspect)
	issues := analysis.DetectIssues(cleaned, ds.Columns, job.Limits, opts)

	report(stepReport)
	stats := analysis.DiffStats(originals, cleaned, ds.Columns, issuesBefore, issues)

	formats := make(map[string]string)
	for column, f := range plan.Formats() {
		formats[column] = f.String()
	}

	return &Result{
		JobID:        job.ID,
		Input:        job.Input,
		Columns:      ds.Columns,
		Rows:         cleaned,
		Originals:    originals,
		IssuesBefore: issuesBefore,
		Issues:       issues,
		Stats:        stats,
		Formats:      formats,
		Performance:  analysis.EstimatePerformance(p.memory, 0),
		Duration:     time.Since(start),
		Batches:      batches,
	}, nil
}

func (p *Pipeline) recordBatch(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.CurrentBatch++
	p.stats.RecordsCleaned += n
	if elapsed := time.Since(p.stats.StartTime).Seconds(); elapsed > 0 {
		p.stats.ProcessingRate = float64(p.stats.RecordsCleaned) / elapsed
	}
}

// resetStats resets processing statistics
func (p *Pipeline) resetStats(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats = &ProcessingStats{
		StartTime:      time.Now(),
		RecordsRead:    total,
		EstimatedTotal: total,
	}
}

// GetStats returns current processing statistics
func (p *Pipeline) GetStats() *ProcessingStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	stats := *p.stats
	return &stats
}
