package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/facepk/internal/dataset"
	"github.com/saturnino-fabrica-de-software/facepk/internal/service"
)

func newDatasetCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Manage the reference photo folders",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Create one empty folder per member",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := dataset.EnsureDirs(c.cfg.PhotoFolder, c.registry); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, key := range c.registry.Keys() {
					fmt.Fprintf(out, "%s/%s\n", c.cfg.PhotoFolder, key)
				}
				return nil
			},
		},
		newDatasetStatsCmd(c),
		newDatasetImportCmd(c),
	)

	return cmd
}

func newDatasetStatsCmd(c *cli) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Train from the photo root and report per-member sample counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			handle, err := c.train(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return printStatus(cmd.OutOrStdout(), c, c.game(handle, "").Status(), jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newDatasetImportCmd(c *cli) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "import <archive.zip>",
		Short: "Extract a ZIP of member folders and train from it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read archive: %w", err)
			}

			handle, err := c.newHandle()
			if err != nil {
				return err
			}

			status, err := c.game(handle, "").ImportArchive(cmd.Context(), data)
			if err != nil {
				return err
			}
			return printStatus(cmd.OutOrStdout(), c, status, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printStatus(out io.Writer, c *cli, status *service.DatasetStatus, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}

	fmt.Fprintf(out, "Photo root: %s\n", status.Root)
	fmt.Fprintf(out, "Backend:    %s (threshold %.2f)\n", status.Backend, status.Threshold)
	for _, m := range c.registry.Members() {
		fmt.Fprintf(out, "  %-10s %-12s %d\n", m.Key, m.DisplayName, status.PerMember[m.Key])
	}
	fmt.Fprintf(out, "Samples: %d, skipped: %d\n", status.Samples, status.Skipped)
	if !status.Trained {
		fmt.Fprintln(out, "No usable photos: every prediction will be a no-match.")
	}
	return nil
}
