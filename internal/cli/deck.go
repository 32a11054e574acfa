package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/pipedeck"
	"github.com/aretw0/pipedeck/internal/logging"
	"github.com/aretw0/pipedeck/pkg/config"
)

// DeckOptions are the persistent flags shared by every command.
type DeckOptions struct {
	ConfigPath string
	LogLevel   string
	Debug      bool
	// Quiet discards logs unless --debug or --log-level asks for them; the
	// follower owns the terminal.
	Quiet bool
}

// OpenDeck loads the configuration and builds a Deck with standard CLI
// conventions: logs go to stderr, --log-level wins over the config file and
// --debug wins over both.
func OpenDeck(opts DeckOptions) (*pipedeck.Deck, *slog.Logger, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading config: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	logger := logging.NewNop()
	if !opts.Quiet || opts.Debug || opts.LogLevel != "" {
		logger, err = createLogger(cfg.LogLevel, opts.Debug)
		if err != nil {
			return nil, nil, err
		}
	}

	deck, err := pipedeck.New(cfg, pipedeck.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing deck: %w", err)
	}
	logger.Debug("deck ready", "executable", cfg.Executable, "store", cfg.Store.String())
	return deck, logger, nil
}

// createLogger configures the application logger.
// It writes to Stderr to keep Stdout for the follower and JSON-RPC.
func createLogger(level string, debug bool) (*slog.Logger, error) {
	if debug {
		return logging.New(slog.LevelDebug), nil
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(lvl), nil
}
