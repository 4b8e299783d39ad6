package commands

import (
	"context"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/diogo/travelchat/internal/api"
	"github.com/diogo/travelchat/internal/chat"
	"github.com/diogo/travelchat/internal/config"
	"github.com/diogo/travelchat/internal/tui"
)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// StdinIsTTY and StdoutIsTTY pick between the TUI, line mode and raw output
	StdinIsTTY  func() bool
	StdoutIsTTY func() bool

	// LoadConfig reads the client configuration
	LoadConfig func() (config.Config, error)

	// NewSender builds the backend client for the resolved configuration
	NewSender func(cfg config.Config, logger zerolog.Logger) (chat.Sender, error)

	// RunTUI runs the interactive chat until the user quits
	RunTUI func(ctx context.Context, ctrl *chat.Controller, notifier *tui.Notifier, server string) error

	// Clipboard copies text to the system clipboard
	Clipboard func(text string) error
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		StdinIsTTY:  func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
		StdoutIsTTY: isStdoutTTY,
		LoadConfig:  config.LoadConfig,
		NewSender:   newAPISender,
		RunTUI:      tui.Run,
		Clipboard:   clipboard.WriteAll,
	}
}

// newAPISender creates the HTTP client for the configured backend
func newAPISender(cfg config.Config, logger zerolog.Logger) (chat.Sender, error) {
	client, err := api.NewClient(
		api.WithBaseURL(cfg.ServerURL),
		api.WithTimeout(cfg.Timeout()),
		api.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Str("endpoint", client.Endpoint()).
		Dur("timeout", client.Timeout()).
		Msg("chat client ready")
	return client, nil
}

// closeSender releases senders that hold connections
func closeSender(s chat.Sender) {
	if c, ok := s.(interface{ Close() }); ok {
		c.Close()
	}
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // default width
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
