package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/pipedeck"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of pipedeck",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pipedeck version %s\n", strings.TrimSpace(pipedeck.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
