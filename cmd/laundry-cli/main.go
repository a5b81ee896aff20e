package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raaihank/data-laundry/internal/api"
)

var (
	configPath string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "laundry-cli",
		Short: "Clean Korean tabular data files",
		Long: `laundry-cli cleans CSV, Excel, JSONL and Parquet files with the
data-laundry engine and manages saved cleaning presets.`,
		Version:       api.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(
		newCleanCmd(),
		newIssuesCmd(),
		newPresetsCmd(),
		newJobsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
