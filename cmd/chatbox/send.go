package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"chatbox/internal/chatapi"
	"chatbox/internal/exchange"
	"chatbox/internal/format"
	"chatbox/internal/logging"
	"chatbox/internal/transcript"

	"github.com/spf13/cobra"
)

var errEmptyMessage = errors.New("message is empty")

func newSendCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "send [message]",
		Short: "Send one message and print the reply",
		Long: `Posts a single message to the endpoint and prints the reply on stdout.
Failures are printed on stderr and the command exits non-zero.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load(cmd)
			if err != nil {
				return err
			}
			logger, err := logging.NewFile(cfg.Logging.File, cfg.Logging.Level, root.verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client := chatapi.NewClient(cfg.Endpoint, chatapi.WithLogger(logger))
			return sendOnce(ctx, client, strings.Join(args, " "), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

// sendOnce runs a single exchange and reports its terminal result.
func sendOnce(ctx context.Context, transport exchange.Transport, message string, out, errOut io.Writer) error {
	session := exchange.NewSession(transport, exchange.WithEmitter(&consoleEmitter{out: out, errOut: errOut}))
	outcome, ok := session.Submit(ctx, message)
	if !ok {
		return errEmptyMessage
	}
	if !outcome.OK() {
		return fmt.Errorf("%s (%s)", outcome.Status, outcome.Kind)
	}
	return nil
}

// consoleEmitter prints replies and notices as plain text. Everything else is a no-op.
type consoleEmitter struct {
	exchange.NopEmitter
	out    io.Writer
	errOut io.Writer
}

func (c *consoleEmitter) RenderMessage(msg transcript.Message) {
	if msg.Role != transcript.RoleAssistant {
		return
	}
	fmt.Fprintln(c.out, format.Plain(format.Markup(msg.Content)))
}

func (c *consoleEmitter) RenderNotice(text string) {
	fmt.Fprintln(c.errOut, text)
}
