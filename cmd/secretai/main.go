package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"secretai/internal/logger"
	"secretai/pkg/secretai"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	noColor    bool
	chainID    string
	nodeURL    string
	contract   string

	// secretOptions are applied after the defaults to every Secret the
	// commands build.
	secretOptions []secretai.SecretOption
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "secretai",
		Short:         "Secret AI confidential LLM toolkit",
		Long:          "Discover confidential LLM endpoints on Secret Network and chat with them",
		Version:       secretai.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to secretai.yaml (default: search standard locations)")
	flags.BoolVar(&verbose, "verbose", false, "Enable verbose output (debug mode)")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")
	flags.StringVar(&chainID, "chain-id", "", "Secret Network chain id (env "+secretai.EnvChainID+")")
	flags.StringVar(&nodeURL, "node-url", "", "Secret Network LCD URL (env "+secretai.EnvNodeURL+")")
	flags.StringVar(&contract, "contract", "", "Worker management contract (env "+secretai.EnvWorkerContract+")")

	rootCmd.AddCommand(
		newModelsCommand(),
		newURLsCommand(),
		newKeyCommand(),
		newChatCommand(),
		newMCPCommand(),
	)

	return rootCmd
}

// app bundles what every subcommand needs after flags are parsed
type app struct {
	settings *settings
	log      *logger.Logger
}

func newApp() (*app, error) {
	s, err := loadSettings(configPath, flagOverrides(), os.Getenv)
	if err != nil {
		return nil, err
	}

	level, ok := logger.ParseLevel(s.SDK.LogLevel)
	if verbose {
		level = logger.LevelDebug
	}
	log := logger.NewLogger(os.Stderr, level)
	if noColor {
		log.SetColorMode(false)
	}
	if !ok && !verbose {
		log.Warn("Unknown log level %q, using %s", s.SDK.LogLevel, level)
	}
	if s.Source != "" {
		log.Debug("Loaded config from %s", s.Source)
	}

	return &app{settings: s, log: log}, nil
}

func (a *app) secret() (*secretai.Secret, error) {
	cfg := a.settings.SDK
	a.log.Debug("Using chain %s via %s (contract %s)", cfg.ChainID, cfg.NodeURL, cfg.WorkerContract)
	opts := append([]secretai.SecretOption{secretai.WithLogger(a.log)}, secretOptions...)
	return secretai.NewSecret(cfg, opts...)
}

func flagOverrides() secretai.Config {
	return secretai.Config{
		ChainID:        chainID,
		NodeURL:        nodeURL,
		WorkerContract: contract,
	}
}
