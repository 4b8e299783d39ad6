// Package commands provides CLI commands for travelchat.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/diogo/travelchat/internal/config"
	"github.com/diogo/travelchat/internal/logging"
	"github.com/diogo/travelchat/internal/models"
	"github.com/diogo/travelchat/internal/tui"
)

// BuildTime is set at build time
var BuildTime = "unknown"

// errNoReply marks a one-shot query answered with the fallback reply. The
// fallback has already been printed, so nothing else is reported.
var errNoReply = errors.New("no reply from server")

// globalOptions are the persistent flags shared by the client commands
type globalOptions struct {
	server   string
	timeout  int
	dispatch string
}

// resolve loads the client configuration and applies flag overrides
func (o *globalOptions) resolve(deps *Dependencies) (config.Config, error) {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return cfg, err
	}

	if o.server != "" {
		if err := cfg.Set("server_url", o.server); err != nil {
			return cfg, err
		}
	}
	if o.timeout >= 0 {
		cfg.TimeoutSeconds = o.timeout
	}
	if o.dispatch != "" {
		if err := cfg.Set("dispatch", o.dispatch); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// openLog opens the client log file from cfg. The TUI owns the terminal, so a
// log that cannot be opened only disables logging.
func openLog(cfg config.Config, stderr io.Writer) (zerolog.Logger, io.Closer) {
	level := cfg.LogLevel
	if cfg.Verbose {
		level = "debug"
	}
	logger, closer, err := logging.NewFile(cfg.LogFile, level)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: logging disabled: %v\n", err)
	}
	return logger, closer
}

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd(deps *Dependencies) *cobra.Command {
	opts := &globalOptions{}
	q := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "travelchat [message]",
		Short: "Chat with the travel assistant",
		Long: `travelchat is a terminal chat client for the travel assistant backend.
Each message is posted to the server's /chat endpoint and the reply is shown
below it.

Examples:
  travelchat serve                         Start the travel assistant server
  travelchat chat                          Start interactive chat
  travelchat "Do I need a visa?"           Send a single message
  travelchat -f question.txt               Read the message from a file
  echo "Packing list" | travelchat         Read the message from stdin
  travelchat config set server_url http://localhost:8080`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(deps.Stdout, "travelchat %s (built %s)\n", models.Version, BuildTime)
				return nil
			}

			// Check for file input
			if q.file != "" {
				data, err := os.ReadFile(q.file)
				if err != nil {
					return fmt.Errorf("failed to read file: %w", err)
				}
				return runQuery(cmd.Context(), deps, opts, q, string(data))
			}

			// Check for positional argument
			if len(args) > 0 {
				return runQuery(cmd.Context(), deps, opts, q, args[0])
			}

			// Check for stdin
			if !deps.StdinIsTTY() {
				data, err := io.ReadAll(deps.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				if strings.TrimSpace(string(data)) != "" {
					return runQuery(cmd.Context(), deps, opts, q, string(data))
				}
			}

			// No input - show help
			return cmd.Help()
		},
	}
	cmd.SetOut(deps.Stdout)
	cmd.SetErr(deps.Stderr)

	cmd.PersistentFlags().StringVarP(&opts.server, "server", "s", "", "Travel assistant server URL (default from config)")
	cmd.PersistentFlags().IntVar(&opts.timeout, "timeout", -1, "Request timeout in seconds, 0 waits indefinitely (default from config)")
	cmd.PersistentFlags().StringVar(&opts.dispatch, "dispatch", "", "Reply ordering: concurrent or serial (default from config)")
	cmd.Flags().StringVarP(&q.file, "file", "f", "", "Read message from file")
	cmd.Flags().BoolVar(&q.raw, "raw", false, "Print only the reply text")
	cmd.Flags().BoolVar(&q.copy, "copy", false, "Copy the reply to the clipboard")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.AddCommand(newChatCmd(deps, opts))
	cmd.AddCommand(newServeCmd(deps))
	cmd.AddCommand(newConfigCmd(deps))

	return cmd
}

// Execute runs the root command with ctx and returns the process exit code
func Execute(ctx context.Context) int {
	deps := NewDependencies()
	if err := NewRootCmd(deps).ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errNoReply) {
			fmt.Fprintln(deps.Stderr, tui.FormatError(err))
		}
		return 1
	}
	return 0
}
