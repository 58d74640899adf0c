package main

import (
	"fmt"
	"os"
	"strings"

	"chatbox/internal/chatapi"
	"chatbox/internal/config"
	"chatbox/internal/logging"
	"chatbox/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootOptions holds the persistent flags. Flags only override the loaded config when set.
type rootOptions struct {
	configPath string
	endpoint   string
	exportDir  string
	logFile    string
	verbose    bool
	altScreen  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "chatbox",
		Short: "Terminal chat client for a /chat endpoint",
		Long: `chatbox is a terminal chat client. Each message is posted to {endpoint}/chat and the
reply is shown in the conversation. One message is in flight at a time.

Run without arguments to start the interactive client.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return runInteractive(cfg, opts.verbose)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default <user config dir>/chatbox/config.yaml)")
	flags.StringVar(&opts.endpoint, "endpoint", "", "chat endpoint base URL")
	flags.StringVar(&opts.exportDir, "export-dir", "", "directory for /export")
	flags.StringVar(&opts.logFile, "log-file", "", "log file path (empty string disables file logging)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	cmd.Flags().BoolVar(&opts.altScreen, "alt-screen", true, "run the client in the terminal's alternate screen")

	cmd.AddCommand(newSendCmd(opts), newRelayCmd(opts))
	return cmd
}

func (o *rootOptions) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		cfg.Endpoint = o.endpoint
	}
	if flags.Changed("export-dir") {
		cfg.ExportDir = o.exportDir
	}
	if flags.Changed("log-file") {
		cfg.Logging.File = strings.TrimSpace(o.logFile)
	}
	if flags.Lookup("alt-screen") != nil && flags.Changed("alt-screen") {
		cfg.AltScreen = o.altScreen
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func runInteractive(cfg config.Config, verbose bool) error {
	logger, err := logging.NewFile(cfg.Logging.File, cfg.Logging.Level, verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	client := chatapi.NewClient(cfg.Endpoint, chatapi.WithLogger(logger))
	model := tui.New(client, tui.Options{
		Endpoint:   client.Endpoint(),
		ExportDir:  cfg.ExportDir,
		InputLimit: cfg.InputLimit,
		Logger:     logger,
	})

	programOpts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if cfg.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	logger.Info("chatbox starting", zap.String("endpoint", client.Endpoint()))
	if _, err := tea.NewProgram(model, programOpts...).Run(); err != nil {
		return fmt.Errorf("chatbox fatal error: %w", err)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
