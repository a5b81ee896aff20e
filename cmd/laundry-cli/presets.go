package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/raaihank/data-laundry/internal/store"
)

func newPresetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Manage cleaning presets",
	}
	cmd.AddCommand(newPresetsListCmd(), newPresetsExportCmd(), newPresetsImportCmd())
	return cmd
}

func newPresetsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in and saved presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.openStore(false); err != nil {
				return err
			}

			presets := store.SystemPresets()
			if a.store != nil {
				if presets, err = a.store.ListPresets(cmd.Context()); err != nil {
					return err
				}
			}
			printPresets(cmd.OutOrStdout(), presets)
			return nil
		},
	}
}

func newPresetsExportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export saved presets to a .laundry file",
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

			data, err := a.store.ExportPresets(cmd.Context())
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported presets to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func newPresetsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import presets from a .laundry file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.openStore(true); err != nil {
				return err
			}

			presets, err := a.store.ImportPresets(cmd.Context(), data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Imported %d presets\n", len(presets))
			printPresets(cmd.OutOrStdout(), presets)
			return nil
		},
	}
}

func printPresets(w io.Writer, presets []store.Preset) {
	table := newTable(w, "ID", "Name", "Options", "System")
	for _, p := range presets {
		table.Append([]string{
			p.ID,
			p.Icon + " " + p.Name,
			fmt.Sprint(len(p.Options.Enabled())),
			fmt.Sprint(p.IsSystem),
		})
	}
	table.Render()
}
