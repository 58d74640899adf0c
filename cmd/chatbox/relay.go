package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"chatbox/internal/config"
	"chatbox/internal/logging"
	"chatbox/internal/relay"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRelayCmd(root *rootOptions) *cobra.Command {
	var (
		addr    string
		backend string
		model   string
	)
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Serve a local /chat endpoint",
		Long: `Runs a development server speaking the same /chat contract the client uses.

Backends:
  - gemini: forwards to the Gemini API (needs GEMINI_API_KEY)
  - echo:   replies "You said: <message>" without any upstream call`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.Relay.Addr = addr
			}
			if flags.Changed("backend") {
				cfg.Relay.Backend = backend
			}
			if flags.Changed("model") {
				cfg.Relay.Model = model
			}
			if err := cfg.ValidateRelay(); err != nil {
				return err
			}

			logger, err := logging.NewConsole(cfg.Logging.Level, root.verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var gen relay.Generator = relay.Echo{}
			if cfg.Relay.Backend == config.BackendGemini {
				gemini, err := relay.NewGemini(ctx, cfg.Relay.APIKey, cfg.Relay.Model)
				if err != nil {
					return fmt.Errorf("relay: %w", err)
				}
				gen = gemini
			}
			logger.Info("relay backend selected", zap.String("backend", cfg.Relay.Backend), zap.String("model", cfg.Relay.Model))
			return relay.ListenAndServe(ctx, cfg.Relay.Addr, relay.NewServer(gen, logger).Handler(), logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", config.DefaultRelayAddr, "listen address")
	cmd.Flags().StringVar(&backend, "backend", config.BackendGemini, "gemini or echo")
	cmd.Flags().StringVar(&model, "model", config.DefaultGeminiModel, "Gemini model name")
	return cmd
}
