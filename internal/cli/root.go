// Package cli defines the swe-action command-line interface.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cexll/swe-action/internal/action"
	"github.com/cexll/swe-action/internal/config"
	"github.com/cexll/swe-action/internal/ghoutput"
	"github.com/cexll/swe-action/internal/logging"
)

var (
	loadConfig        = config.Load
	newPlatformClient = action.NewPlatformClient
	newCheckouter     = action.NewCheckouter
)

// Execute builds the root command, runs it with the provided args and logger, and returns any error.
func Execute(args []string, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewLogger(os.Stderr, logging.LevelInfo)
	}
	rootCmd := newRootCommand(logger)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func newRootCommand(logger *slog.Logger) *cobra.Command {
	var cfg *config.Config

	cmd := &cobra.Command{
		Use:           "swe-action",
		Short:         "swe-action runs the assistant workflow inside GitHub or Gitea Actions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := loadConfig()
			if err != nil {
				writeFailure(cmd.Name(), os.Getenv("GITHUB_OUTPUT"), err, logger)
				return err
			}
			cfg = loaded

			level := logging.ParseLevel(cfg.LogLevel)
			if flag := cmd.Flag("log-level"); flag != nil && flag.Changed {
				level = logging.ParseLevel(flag.Value.String())
			}
			logger = logging.NewLogger(os.Stderr, level)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = context.WithValue(ctx, loggerKey{}, logger)
			cmd.SetContext(context.WithValue(ctx, configKey{}, cfg))
			logger.Debug("logger initialized", "level", level, "platform", cfg.PlatformName())
			return nil
		},
	}

	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newPrepareCommand(),
		newUpdateCommentCommand(),
		newMCPConfigCommand(),
	)
	return cmd
}

// failureOutputs maps a command to the output key it reports fatal errors under.
var failureOutputs = map[string]string{
	"prepare":        action.OutputPrepareError,
	"update-comment": action.OutputUpdateError,
}

// writeFailure reports an error raised before the command's own output writer exists.
func writeFailure(command, path string, err error, logger *slog.Logger) {
	key, ok := failureOutputs[command]
	if !ok {
		return
	}
	if oerr := ghoutput.New(path, logger).Set(key, err.Error()); oerr != nil {
		logger.Warn("failed to write error output", "key", key, "error", oerr)
	}
}

type loggerKey struct{}

type configKey struct{}

// LoggerFromContext extracts a logger from the context or falls back to a default logger.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return logging.NewLogger(os.Stderr, logging.LevelInfo)
}

func configFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return nil
}
