package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raaihank/data-laundry/internal/analysis"
	"github.com/raaihank/data-laundry/internal/cleaning"
	"github.com/raaihank/data-laundry/internal/etl"
)

// issuesReport is printed by the issues command
type issuesReport struct {
	File              string                           `json:"file"`
	Rows              int                              `json:"rows"`
	Columns           []string                         `json:"columns"`
	Issues            []analysis.Issue                 `json:"issues"`
	Formats           map[string]cleaning.ColumnFormat `json:"formats"`
	ColumnLengths     analysis.Limits                  `json:"columnLengths"`
	HeaderSuggestions map[string][]string              `json:"headerSuggestions,omitempty"`
	DateColumns       int                              `json:"dateColumns"`
}

func newIssuesCmd() *cobra.Command {
	var (
		options    []string
		maxLengths map[string]int
	)
	cmd := &cobra.Command{
		Use:   "issues <input>",
		Short: "Report data quality issues without changing the file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := parseOptions(options)
			if err != nil {
				return err
			}
			report, err := buildIssuesReport(args[0], opts, analysis.Limits(maxLengths))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(report)
		},
	}

	cmd.Flags().StringSliceVar(&options, "options", nil, "Option toggles used to pick suggestions, comma separated")
	cmd.Flags().StringToIntVar(&maxLengths, "max-length", nil, "Maximum value length per column, e.g. 이름=10")

	return cmd
}

func buildIssuesReport(input string, opts cleaning.Options, limits analysis.Limits) (*issuesReport, error) {
	if _, err := os.Stat(input); err != nil {
		return nil, fmt.Errorf("input file: %w", err)
	}
	ds, err := etl.ReadFile(input)
	if err != nil {
		return nil, err
	}

	report := &issuesReport{
		File:          input,
		Rows:          len(ds.Rows),
		Columns:       ds.Columns,
		Issues:        analysis.DetectIssues(ds.Rows, ds.Columns, limits, opts),
		Formats:       analysis.RecommendFormats(ds.Rows, ds.Columns),
		ColumnLengths: analysis.ColumnLengths(ds.Rows, ds.Columns),
		DateColumns:   analysis.DateCandidateColumns(ds.Rows, ds.Columns),
	}
	for _, column := range ds.Columns {
		if suggestions := analysis.HeaderRecommendations(ds.Rows, column); len(suggestions) > 0 {
			if report.HeaderSuggestions == nil {
				report.HeaderSuggestions = make(map[string][]string)
			}
			report.HeaderSuggestions[column] = suggestions
		}
	}
	return report, nil
}
