package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/pipedeck/internal/cli"
	"github.com/aretw0/pipedeck/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var uploadsCmd = &cobra.Command{
	Use:   "uploads [term]",
	Short: "List recorded uploads, newest first",
	Long: `Reads the pipe CLI upload log and lists its records, newest first.
A term filters by local path, remote path, status or message (case-insensitive)
and by hash (exact case).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deck, _, err := openDeck(cmd, true)
		if err != nil {
			return err
		}
		defer func() { _ = deck.Close(cmd.Context()) }()

		term := ""
		if len(args) > 0 {
			term = args[0]
		}
		records, err := deck.SearchUploads(cmd.Context(), term)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}

		md := tui.UploadsTable(records)
		rendered, err := tui.NewRenderer(cli.IsTerminal(out))(md)
		if err != nil {
			rendered = md
		}
		fmt.Fprint(out, rendered)
		return nil
	},
}

func init() {
	uploadsCmd.Flags().Bool("json", false, "Print records as JSON")
	rootCmd.AddCommand(uploadsCmd)
}
