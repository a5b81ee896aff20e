package main

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/raaihank/data-laundry/internal/store"
)

func newJobsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Show recent cleaning jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.openStore(true); err != nil {
				return err
			}

			jobs, err := a.store.ListJobs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printJobs(cmd.OutOrStdout(), jobs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of jobs to show")
	return cmd
}

func printJobs(w io.Writer, jobs []store.JobRecord) {
	table := newTable(w, "Created", "Source", "Rows", "Changed", "Quality", "Duration", "Status")
	for _, j := range jobs {
		status := string(j.Status)
		if j.Error != "" {
			status += ": " + j.Error
		}
		table.Append([]string{
			j.CreatedAt.Local().Format(time.DateTime),
			j.Source,
			fmt.Sprint(j.Rows),
			fmt.Sprint(j.ChangedCells),
			fmt.Sprint(j.QualityScore),
			(time.Duration(j.DurationMS) * time.Millisecond).String(),
			status,
		})
	}
	table.Render()
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetColumnSeparator("")
	table.SetHeaderLine(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}
