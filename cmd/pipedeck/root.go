package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/pipedeck"
	"github.com/aretw0/pipedeck/internal/cli"
	"github.com/aretw0/pipedeck/pkg/domain"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pipedeck",
	Short: "pipedeck drives the pipe storage CLI",
	Long: `pipedeck runs pipe CLI actions in named slots, follows their output and
extracts links, balances and reports. The same actions are available over
HTTP (serve) and to AI agents (mcp).`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "pipedeck.yaml", "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logs on stderr")
}

// openDeck builds a Deck from the persistent flags. Quiet commands discard
// logs unless asked for them.
func openDeck(cmd *cobra.Command, quiet bool) (*pipedeck.Deck, *slog.Logger, error) {
	configPath, _ := cmd.Flags().GetString("config")
	level, _ := cmd.Flags().GetString("log-level")
	debug, _ := cmd.Flags().GetBool("debug")

	return cli.OpenDeck(cli.DeckOptions{
		ConfigPath: configPath,
		LogLevel:   level,
		Debug:      debug,
		Quiet:      quiet,
	})
}

// runAction triggers kind in the CLI slot and follows it until it settles.
func runAction(cmd *cobra.Command, kind domain.ActionKind, params map[string]any) error {
	deck, _, err := openDeck(cmd, true)
	if err != nil {
		return err
	}
	defer func() { _ = deck.Close(context.Background()) }()

	sigCtx := cli.NewSignalContext(cmd.Context())
	defer sigCtx.Cancel()

	_, err = cli.RunAction(sigCtx, deck, cli.RunOptions{
		Kind:     kind,
		Params:   params,
		Interval: deck.Config().PollInterval.Std(),
		Out:      cmd.OutOrStdout(),
	})
	if sigCtx.Signal() != nil {
		return nil // Exit 0 for interruptions
	}
	return err
}

// password resolves a secret from --password, PIPE_PASSWORD or a prompt.
func password(cmd *cobra.Command, label string) (string, error) {
	flag, _ := cmd.Flags().GetString("password")
	return cli.NewPasswordPrompt().Resolve(flag, label)
}

// setIf adds a non-empty string flag to params.
func setIf(params map[string]any, key, value string) {
	if value != "" {
		params[key] = value
	}
}
