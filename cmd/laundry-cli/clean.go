package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/raaihank/data-laundry/internal/analysis"
	"github.com/raaihank/data-laundry/internal/cleaning"
	"github.com/raaihank/data-laundry/internal/etl"
	"github.com/raaihank/data-laundry/internal/privacy"
	"github.com/raaihank/data-laundry/internal/store"
)

type cleanFlags struct {
	output     string
	prompt     string
	options    []string
	preset     string
	formats    []string
	locked     []string
	maxLengths map[string]int
	highlight  bool
	dryRun     bool
	jsonOut    bool
}

func newCleanCmd() *cobra.Command {
	f := &cleanFlags{}
	cmd := &cobra.Command{
		Use:   "clean <input>",
		Short: "Clean a data file",
		Example: `  laundry-cli clean customers.csv --prompt "전화번호 정리하고 이메일 가려줘"
  laundry-cli clean orders.xlsx --preset sys-finance -o orders_clean.xlsx --highlight
  laundry-cli clean members.csv --options removeWhitespace,formatMobile --format 가입일=date:.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, args[0], f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output file (default: cleaned_<input>); the extension picks the format")
	cmd.Flags().StringVarP(&f.prompt, "prompt", "p", "", "Korean cleaning instruction")
	cmd.Flags().StringSliceVar(&f.options, "options", nil, "Option toggles to enable, comma separated")
	cmd.Flags().StringVar(&f.preset, "preset", "", "Preset ID to start from")
	cmd.Flags().StringArrayVar(&f.formats, "format", nil, "Column format as column=tag, repeatable")
	cmd.Flags().StringSliceVar(&f.locked, "lock", nil, "Columns to leave untouched")
	cmd.Flags().StringToIntVar(&f.maxLengths, "max-length", nil, "Maximum value length per column, e.g. 이름=10")
	cmd.Flags().BoolVar(&f.highlight, "highlight", false, "Fill changed cells in Excel output")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Clean and report without writing output")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "Print the result summary as JSON")

	return cmd
}

func runClean(cmd *cobra.Command, input string, f *cleanFlags) error {
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("input file: %w", err)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.openStore(false); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	req, err := f.request()
	if err != nil {
		return err
	}
	if f.preset != "" {
		p, err := a.preset(ctx, f.preset)
		if err != nil {
			return err
		}
		req = p.Apply(req)
	}
	if f.highlight {
		req.Options.HighlightChanges = true
	}

	output := ""
	if !f.dryRun {
		output = f.output
		if output == "" {
			output = defaultOutput(input)
		}
		if _, err := etl.DetectFileFormat(output); err != nil {
			return err
		}
	}

	detector, err := privacy.New(a.config.Privacy, a.logger.WithComponent("privacy").Logger)
	if err != nil {
		return fmt.Errorf("failed to create privacy detector: %w", err)
	}
	engine := cleaning.NewEngine(a.config.Engine, detector, a.logger.WithComponent("engine").Logger)
	pipeline := etl.NewPipeline(engine, a.config.Pipeline, float64(a.config.Engine.MemoryGB), a.logger.WithComponent("pipeline").Logger)

	job := etl.Job{
		Input:   input,
		Output:  output,
		Request: req,
		Limits:  analysis.Limits(f.maxLengths),
	}

	stderr := cmd.ErrOrStderr()
	start := time.Now()
	result, runErr := pipeline.Run(ctx, job, func(p etl.Progress) {
		fmt.Fprintf(stderr, "[%3d%%] %s\n", p.Percent, p.Message)
	})
	a.recordJob(input, result, time.Since(start), runErr)
	if runErr != nil {
		return runErr
	}

	if f.jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(result)
	}
	printSummary(cmd, result)
	return nil
}

func (f *cleanFlags) request() (cleaning.Request, error) {
	req := cleaning.Request{Prompt: f.prompt, Locked: f.locked}

	opts, err := parseOptions(f.options)
	if err != nil {
		return req, err
	}
	req.Options = opts

	if len(f.formats) > 0 {
		formats, err := parseFormats(f.formats)
		if err != nil {
			return req, err
		}
		req.ColumnFormats = formats
	}
	return req, nil
}

// recordJob stores the job in the history table when a store is connected
func (a *app) recordJob(input string, result *etl.Result, duration time.Duration, err error) {
	if a.store == nil {
		return
	}
	var rows, changed, quality int
	id := ""
	if result != nil {
		id = result.JobID
		rows = result.Stats.TotalRows
		changed = result.Stats.ChangedCells
		quality = result.Stats.QualityScore
	}
	record := store.NewJobRecord(id, filepath.Base(input), rows, changed, quality, duration, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.store.RecordJob(ctx, record); err != nil {
		a.logger.Warn("Failed to record job", zap.Error(err))
	}
}

func defaultOutput(input string) string {
	dir, base := filepath.Split(input)
	return filepath.Join(dir, "cleaned_"+base)
}

func printSummary(cmd *cobra.Command, result *etl.Result) {
	out := cmd.OutOrStdout()
	s := result.Stats
	fmt.Fprintf(out, "Job %s\n", result.JobID)
	if result.Output != "" {
		fmt.Fprintf(out, "  output:         %s\n", result.Output)
	}
	fmt.Fprintf(out, "  rows:           %d\n", s.TotalRows)
	fmt.Fprintf(out, "  changed cells:  %d\n", s.ChangedCells)
	fmt.Fprintf(out, "  issues:         %d -> %d\n", len(result.IssuesBefore), len(result.Issues))
	fmt.Fprintf(out, "  quality score:  %d (completeness %d, validity %d)\n", s.QualityScore, s.Completeness, s.Validity)
	fmt.Fprintf(out, "  duration:       %s\n", result.Duration.Round(time.Millisecond))

	if len(result.Formats) > 0 {
		var parts []string
		for _, column := range result.Columns {
			if tag, ok := result.Formats[column]; ok {
				parts = append(parts, column+"="+tag)
			}
		}
		fmt.Fprintf(out, "  formats:        %s\n", strings.Join(parts, ", "))
	}
}
