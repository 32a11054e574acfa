package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var outcomesCmd = &cobra.Command{
	Use:   "outcomes",
	Short: "Manage persisted run outcomes",
	Long:  `List, inspect, and remove outcomes kept by the configured store (file or redis).`,
}

var outcomesLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored run IDs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deck, _, err := openDeck(cmd, true)
		if err != nil {
			return err
		}
		defer func() { _ = deck.Close(cmd.Context()) }()

		ids, err := deck.Store().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing outcomes: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(ids) == 0 {
			fmt.Fprintf(out, "No outcomes found in %s.\n", deck.Config().Store.String())
			return nil
		}
		fmt.Fprintln(out, "Stored Outcomes:")
		for _, id := range ids {
			fmt.Fprintln(out, "- "+id)
		}
		return nil
	},
}

var outcomesInspectCmd = &cobra.Command{
	Use:   "inspect <run-id>",
	Short: "Print the outcome of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deck, _, err := openDeck(cmd, true)
		if err != nil {
			return err
		}
		defer func() { _ = deck.Close(cmd.Context()) }()

		outcome, err := deck.Store().Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading outcome '%s': %w", args[0], err)
		}

		// Pretty print JSON
		data, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var outcomesRmCmd = &cobra.Command{
	Use:   "rm <run-id>...",
	Short: "Remove one or more outcomes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deck, _, err := openDeck(cmd, true)
		if err != nil {
			return err
		}
		defer func() { _ = deck.Close(cmd.Context()) }()

		out := cmd.OutOrStdout()
		failed := 0
		for _, id := range args {
			if err := deck.Store().Delete(cmd.Context(), id); err != nil {
				fmt.Fprintf(out, "Error removing '%s': %v\n", id, err)
				failed++
				continue
			}
			fmt.Fprintf(out, "Removed outcome '%s'\n", id)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d outcomes not removed", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(outcomesCmd)
	outcomesCmd.AddCommand(outcomesLsCmd, outcomesInspectCmd, outcomesRmCmd)
}
