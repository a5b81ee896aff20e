// Package cleaning resolves and applies cleaning rules to tabular rows.
//
// Every cell passes through a fixed chain: lock check, checkbox stages, prompt
// stages and directives, literal and wildcard mappings, the prompt's date
// separator, and finally the column's explicit format tag. Transforms are pure
// string functions, so rows can be cleaned concurrently.
package cleaning

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/raaihank/data-laundry/internal/config"
	"github.com/raaihank/data-laundry/internal/intent"
	"github.com/raaihank/data-laundry/internal/normalize"
)

// ErrNilRows is returned when Process or Apply get a nil row slice.
var ErrNilRows = errors.New("rows must not be nil")

// Request describes one cleaning call.
type Request struct {
	Prompt        string                  `json:"prompt"`
	Options       Options                 `json:"options"`
	Locked        []string                `json:"lockedColumns,omitempty"`
	ColumnFormats map[string]ColumnFormat `json:"columnFormats,omitempty"`
}

// Engine applies cleaning plans to rows.
type Engine struct {
	workers   int
	threshold int
	dateSep   string
	masker    Masker
	logger    *zap.Logger
	now       func() time.Time
}

// NewEngine creates an engine. masker may be nil, in which case free-text
// personal data masking leaves values as they are.
func NewEngine(cfg config.EngineConfig, masker Masker, logger *zap.Logger) *Engine {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		workers:   workers,
		threshold: cfg.ParallelThreshold,
		dateSep:   cfg.DateSeparator,
		masker:    masker,
		logger:    logger,
		now:       time.Now,
	}
}

// Plan is a prepared request: intents extracted once and stages bound per
// column. A plan is read-only once Apply starts and may be reused across
// batches of the same dataset.
type Plan struct {
	bundle  *intent.Bundle
	options Options
	locked  map[string]bool
	formats map[string]ColumnFormat
	dateSep string
	now     time.Time
	masker  Masker

	columns []string
	stages  map[string][]boundStage
}

// Prepare extracts the prompt's intents against columns and binds stages.
func (e *Engine) Prepare(req Request, columns []string) *Plan {
	bundle := intent.Extract(req.Prompt, columns)

	p := &Plan{
		bundle:  bundle,
		options: req.Options,
		locked:  make(map[string]bool, len(req.Locked)),
		formats: make(map[string]ColumnFormat, len(req.ColumnFormats)),
		dateSep: e.dateSep,
		now:     e.now(),
		masker:  e.masker,
		columns: columns,
		stages:  make(map[string][]boundStage, len(columns)),
	}
	if sep, ok := bundle.DateSeparator(); ok {
		p.dateSep = sep
	}
	for _, c := range req.Locked {
		p.locked[c] = true
	}
	for c, f := range req.ColumnFormats {
		if f.Kind != FormatNone {
			p.formats[c] = f
		}
	}
	for _, c := range columns {
		p.stages[c] = p.bindStages(c)
	}

	e.logger.Debug("Cleaning plan prepared",
		zap.Int("columns", len(columns)),
		zap.Strings("flags", bundle.Flags()),
		zap.Int("mappings", len(bundle.Mappings)),
		zap.Int("conditions", len(bundle.Conditions)),
		zap.Int("column_formats", len(p.formats)))

	return p
}

func (p *Plan) bindStages(column string) []boundStage {
	var out []boundStage
	for _, group := range [][]*stage{checkboxStages, promptStages} {
		for _, s := range group {
			if bs, ok := s.bind(&p.options, p.bundle, column); ok {
				out = append(out, bs)
			}
		}
	}
	return out
}

// stagesFor returns the bound stages; columns unknown at Prepare time are
// bound on the fly.
func (p *Plan) stagesFor(column string) []boundStage {
	if s, ok := p.stages[column]; ok {
		return s
	}
	return p.bindStages(column)
}

// Formats returns the effective column format tags.
func (p *Plan) Formats() map[string]ColumnFormat {
	out := make(map[string]ColumnFormat, len(p.formats))
	for c, f := range p.formats {
		out[c] = f
	}
	return out
}

// AutoDetect fills format tags for untagged columns from sample rows. It is a
// no-op unless the autoDetect option is on and must run before Apply.
func (p *Plan) AutoDetect(sample []Row) {
	if !p.options.AutoDetect {
		return
	}
	for _, c := range p.columns {
		if _, tagged := p.formats[c]; tagged || p.locked[c] {
			continue
		}
		values := make([]string, 0, RecommendSampleSize)
		for i := 0; i < len(sample) && i < RecommendSampleSize; i++ {
			values = append(values, Stringify(sample[i][c]))
		}
		if f := RecommendFormat(c, values); f.Kind != FormatNone {
			p.formats[c] = f
		}
	}
}

// Apply cleans rows with plan and returns new rows in input order. Input rows
// are not modified.
func (e *Engine) Apply(ctx context.Context, plan *Plan, rows []Row) ([]Row, error) {
	if rows == nil {
		return nil, ErrNilRows
	}
	out := make([]Row, len(rows))

	if e.workers == 1 || len(rows) < e.threshold {
		for i, row := range rows {
			if i%1024 == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			out[i] = plan.cleanRow(row)
		}
		return out, nil
	}

	chunk := (len(rows) + e.workers - 1) / e.workers
	var wg sync.WaitGroup
	for start := 0; start < len(rows); start += chunk {
		end := start + chunk
		if end > len(rows) {
			end = len(rows)
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				if ctx.Err() != nil {
					return
				}
				out[i] = plan.cleanRow(rows[i])
			}
		}(start, end)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Plan) cleanRow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		out[k] = p.resolve(k, v)
	}
	return out
}

// Process is the one-shot entry point: prepare, auto-detect and apply.
func (e *Engine) Process(rows []Row, prompt string, opts Options, locked []string, formats map[string]ColumnFormat) ([]Row, error) {
	if rows == nil {
		return nil, ErrNilRows
	}
	req := Request{Prompt: prompt, Options: opts, Locked: locked, ColumnFormats: formats}
	plan := e.Prepare(req, Columns(rows))
	plan.AutoDetect(rows)

	start := time.Now()
	out, err := e.Apply(context.Background(), plan, rows)
	if err != nil {
		return nil, err
	}
	out, _ = plan.Finish(out)

	e.logger.Debug("Rows cleaned",
		zap.Int("rows", len(rows)),
		zap.Duration("duration", time.Since(start)))

	return out, nil
}

// Finish runs the whole-table passes the prompt asked for. Only duplicate
// removal exists today. kept holds the index in rows of every surviving row,
// or nil when no row was dropped.
func (p *Plan) Finish(rows []Row) (out []Row, kept []int) {
	if !p.bundle.Has(intent.FlagDedupe) {
		return rows, nil
	}
	kept = dedupeIndexes(rows, p.columns)
	return Pick(rows, kept), kept
}

// Pick returns rows[i] for each i in indexes. A nil indexes keeps rows as is.
func Pick(rows []Row, indexes []int) []Row {
	if indexes == nil {
		return rows
	}
	out := make([]Row, len(indexes))
	for i, idx := range indexes {
		out[i] = rows[idx]
	}
	return out
}

// Columns lists the keys of rows, first-row keys first, each group sorted.
func Columns(rows []Row) []string {
	seen := make(map[string]bool)
	var out []string
	for _, row := range rows {
		var fresh []string
		for k := range row {
			if !seen[k] {
				seen[k] = true
				fresh = append(fresh, k)
			}
		}
		sort.Strings(fresh)
		out = append(out, fresh...)
	}
	return out
}

// Dedupe drops rows whose values over columns repeat an earlier row. Values
// are compared by their folded form.
func Dedupe(rows []Row, columns []string) []Row {
	return Pick(rows, dedupeIndexes(rows, columns))
}

func dedupeIndexes(rows []Row, columns []string) []int {
	seen := make(map[string]bool, len(rows))
	kept := make([]int, 0, len(rows))
	for i, row := range rows {
		key := make([]byte, 0, 64)
		for _, c := range columns {
			key = append(key, normalize.Key(Stringify(row[c]))...)
			key = append(key, 0x1f)
		}
		if seen[string(key)] {
			continue
		}
		seen[string(key)] = true
		kept = append(kept, i)
	}
	return kept
}
