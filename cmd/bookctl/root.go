package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agenthands/shelfgraph/internal/app"
	"github.com/agenthands/shelfgraph/internal/config"
	"github.com/agenthands/shelfgraph/internal/core"
	"github.com/agenthands/shelfgraph/internal/logging"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "bookctl",
	Short:         "Query and seed the shelfgraph book graph",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config TOML (default $CONFIG_PATH or config/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")
}

// setup loads configuration and a logger for a subcommand.
func setup() (*config.Config, zerolog.Logger, error) {
	_ = godotenv.Load()

	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, logging.New(cfg.Log), nil
}

// openShelf connects to the graph. The caller must Close the shelf.
func openShelf(ctx context.Context) (*core.Shelf, zerolog.Logger, error) {
	cfg, logger, err := setup()
	if err != nil {
		return nil, logger, err
	}
	shelf, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return nil, logger, err
	}
	return shelf, logger, nil
}
