package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/pipedeck"
	"github.com/aretw0/pipedeck/internal/presentation/tui"
	httpAdapter "github.com/aretw0/pipedeck/pkg/adapters/http"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Starts pipedeck in server mode, exposing actions, status polling and SSE over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deck, logger, err := openDeck(cmd, false)
		if err != nil {
			return err
		}

		addr := deck.Config().HTTP.Addr
		if flagAddr, _ := cmd.Flags().GetString("addr"); flagAddr != "" {
			addr = flagAddr
		}

		handler := httpAdapter.NewHandler(deck,
			httpAdapter.WithMetrics(deck.Metrics().Handler()),
			httpAdapter.WithEventInterval(deck.Config().PollInterval.Std()),
			httpAdapter.WithVersion(pipedeck.Version),
			httpAdapter.WithLogger(logger),
		)

		srv := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		if quiet, _ := cmd.Flags().GetBool("no-banner"); !quiet {
			tui.PrintBanner(cmd.ErrOrStderr(), pipedeck.Version)
		}
		go func() {
			logger.Info("Starting pipedeck server", "addr", srv.Addr, "store", deck.Config().Store.String())
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			_ = deck.Close(context.Background())
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("Start shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			// Asking listener to shut down and shed load.
			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("Error killing server", "err", err)
				}
			}
			if err := deck.Close(ctx); err != nil {
				logger.Warn("Deck close failed", "err", err)
			}
			logger.Info("pipedeck server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Listen address (default from config http.addr)")
	serveCmd.Flags().Bool("no-banner", false, "Do not print the banner")
}
