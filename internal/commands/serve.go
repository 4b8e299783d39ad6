package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/travelchat/internal/config"
	"github.com/diogo/travelchat/internal/intent"
	"github.com/diogo/travelchat/internal/logging"
	"github.com/diogo/travelchat/internal/server"
)

type serveOptions struct {
	addr    string
	envFile string
	intents string
}

func newServeCmd(deps *Dependencies) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the travel assistant server",
		Long: `Run the travel assistant backend that answers POST /chat.

Settings are read from the environment, after loading the optional env file:
  TRAVELCHAT_ADDR              listen address (default :5000)
  TRAVELCHAT_INTENTS           YAML intents file (default: built-in travel intents)
  TRAVELCHAT_THRESHOLD         minimum intent score (default 0.25)
  TRAVELCHAT_SEED              fixed seed for reply selection
  TRAVELCHAT_CORS_ORIGINS      comma separated allowed origins (default *)
  TRAVELCHAT_LOG_LEVEL         debug, info, warn or error (default info)
  TRAVELCHAT_SHUTDOWN_TIMEOUT  graceful shutdown limit (default 10s)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, deps, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address, overrides TRAVELCHAT_ADDR")
	cmd.Flags().StringVar(&opts.envFile, "env-file", ".env", "Env file to load before reading the environment")
	cmd.Flags().StringVar(&opts.intents, "intents", "", "YAML intents file, overrides TRAVELCHAT_INTENTS")

	return cmd
}

func runServe(cmd *cobra.Command, deps *Dependencies, opts *serveOptions) error {
	cfg, err := config.LoadServerConfig(opts.envFile)
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Addr = opts.addr
	}
	if opts.intents != "" {
		cfg.IntentsPath = opts.intents
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.NewConsole(deps.Stderr, cfg.LogLevel)

	intents := intent.Default()
	if cfg.IntentsPath != "" {
		intents, err = intent.LoadFile(cfg.IntentsPath)
		if err != nil {
			return err
		}
	}

	classifier, err := intent.NewClassifier(intents,
		intent.WithThreshold(cfg.Threshold),
		intent.WithSeed(cfg.Seed),
	)
	if err != nil {
		return fmt.Errorf("failed to build classifier: %w", err)
	}
	logger.Info().
		Int("intents", len(classifier.Tags())).
		Float64("threshold", classifier.Threshold()).
		Msg("intents loaded")

	return server.New(cfg, classifier, logger).Run(cmd.Context())
}
