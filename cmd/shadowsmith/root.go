package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ekisa-team/shadowsmith/internal/config"
	"github.com/ekisa-team/shadowsmith/internal/env"
	"github.com/ekisa-team/shadowsmith/internal/logger"
)

type rootFlags struct {
	configPath string
	schemaPath string
	logToFile  bool
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	rootCmd := &cobra.Command{
		Use:           "shadowsmith",
		Short:         "Build and restore shadow models for membership inference",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			slog.SetDefault(
				logger.New(env.FromEnv(),
					logger.WithLogToFile(flags.logToFile),
					logger.WithOutput(cmd.ErrOrStderr()),
				),
			)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", config.DefaultConfigFile(), "Path to config file")
	rootCmd.PersistentFlags().StringVar(&flags.schemaPath, "schema", "", "Path to config schema file (built-in schema when empty)")
	rootCmd.PersistentFlags().BoolVar(&flags.logToFile, "log-file", false, "Also write logs to logs/shadowsmith.log")

	rootCmd.AddCommand(
		newBuildCmd(&flags),
		newRestoreCmd(&flags),
		newMetadataCmd(),
		newRegistryCmd(&flags),
	)

	return rootCmd
}
