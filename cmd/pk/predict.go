package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newPredictCmd(c *cli) *cobra.Command {
	var (
		guess      string
		lang       string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "predict <photo>",
		Short: "Predict the member in a photo and judge an optional guess",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read photo: %w", err)
			}

			handle, err := c.train(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			round, err := c.game(handle, lang).Play(cmd.Context(), image, guess)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(round)
			}

			fmt.Fprintln(out, round.Verdict)
			if round.PredictedKey != "" {
				fmt.Fprintf(out, "confidence: %.2f\n", round.Confidence)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&guess, "guess", "g", "", "Your guess, as a member display name")
	cmd.Flags().StringVar(&lang, "lang", "", "Verdict language (default: $LANGUAGE)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the full round as JSON")
	return cmd
}

func newMembersCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "members",
		Short: "List member keys and display names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, m := range c.registry.Members() {
				fmt.Fprintf(out, "%s\t%s\n", m.Key, m.DisplayName)
			}
			return nil
		},
	}
}
