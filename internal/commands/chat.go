package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/travelchat/internal/chat"
	"github.com/diogo/travelchat/internal/console"
	"github.com/diogo/travelchat/internal/tui"
)

func newChatCmd(deps *Dependencies, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with the travel assistant.

Press Enter or Ctrl+S to send, and Esc or Ctrl+C to end the session. Every
non-blank input is sent, including words like "quit". When stdin is not a
terminal, each input line is sent as one message, the conversation is printed
line by line, and the session ends at end of input.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, deps, opts)
		},
	}
}

func runChat(cmd *cobra.Command, deps *Dependencies, opts *globalOptions) error {
	ctx := cmd.Context()

	cfg, err := opts.resolve(deps)
	if err != nil {
		return err
	}
	mode, err := chat.ParseDispatchMode(cfg.Dispatch)
	if err != nil {
		return err
	}

	logger, logCloser := openLog(cfg, deps.Stderr)
	defer logCloser.Close()

	sender, err := deps.NewSender(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer closeSender(sender)

	var renderer chat.Renderer
	var notifier *tui.Notifier
	lineMode := !deps.StdinIsTTY()
	if lineMode {
		renderer = console.NewPrinter(deps.Stdout, !deps.StdoutIsTTY())
	} else {
		if cfg.TUITheme != "" && !tui.ApplyTheme(cfg.TUITheme) {
			fmt.Fprintf(deps.Stderr, "Warning: unknown theme %q (available: %s), using %s\n",
				cfg.TUITheme, strings.Join(tui.ThemeNames(), ", "), tui.CurrentTheme().Name)
		}
		notifier = tui.NewNotifier()
		renderer = notifier
	}

	ctrl := chat.NewController(chat.NewConversation(renderer), sender,
		chat.WithLogger(logger),
		chat.WithDispatch(mode),
	)

	logger.Info().
		Str("server", cfg.ServerURL).
		Str("dispatch", string(ctrl.Mode())).
		Bool("line_mode", lineMode).
		Msg("chat session started")
	defer func() { logger.Info().Msg("chat session ended") }()

	if lineMode {
		return console.Run(ctx, deps.Stdin, ctrl)
	}
	return deps.RunTUI(ctx, ctrl, notifier, cfg.ServerURL)
}
