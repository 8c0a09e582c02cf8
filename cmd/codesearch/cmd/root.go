// Package cmd provides the CLI commands for codesearch.
package cmd

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/opencodesearch/codesearch/internal/embedding"
	"github.com/opencodesearch/codesearch/internal/logging"
	"github.com/opencodesearch/codesearch/pkg/codesearch"
	"github.com/opencodesearch/codesearch/pkg/version"
)

var (
	flagRoot   string
	flagConfig string
	flagDebug  bool

	loggingCleanup func()
)

// NewRootCmd creates the root command for the codesearch CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "codesearch",
		Short:        "Local, embedded codebase search (lexical + semantic)",
		Version:      version.Version,
		SilenceUsage: true,
	}
	cmd.SetVersionTemplate("codesearch version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&flagRoot, "root", ".", "codebase root to index/search")
	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a config YAML file (defaults applied if absent)")
	cmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging to ~/.codesearch/logs/")

	cmd.PersistentPreRunE = func(*cobra.Command, []string) error {
		if !flagDebug {
			return nil
		}
		logCfg := logging.DefaultConfig()
		logCfg.Level = "debug"
		logger, cleanup, err := logging.Setup(logCfg)
		if err != nil {
			return err
		}
		loggingCleanup = cleanup
		slog.SetDefault(logger)
		return nil
	}
	cmd.PersistentPostRunE = func(*cobra.Command, []string) error {
		if loggingCleanup != nil {
			loggingCleanup()
			loggingCleanup = nil
		}
		return nil
	}

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// openEngine loads config for --root/--config and opens an Engine with a
// Mock embedder standing in for the configured provider: this module ships
// no network embedding provider (that transport is an external-collaborator
// concern), so the CLI always runs with the deterministic local embedder.
func openEngine(ctx context.Context) (*codesearch.Engine, error) {
	root, err := filepath.Abs(flagRoot)
	if err != nil {
		return nil, err
	}

	var cfg *codesearch.Config
	if flagConfig != "" {
		cfg, err = codesearch.LoadConfig(flagConfig)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = codesearch.DefaultConfig()
	}
	// --root always wins over whatever codebaseRoot the config file set.
	cfg.CodebaseRoot = root
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	embedder := embedding.NewMock(128)
	return codesearch.Open(ctx, cfg, embedder)
}

