package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shelfcheck/backend/config"
	"github.com/shelfcheck/backend/internal/app"
	"github.com/shelfcheck/backend/internal/logging"
)

// skipConfigAnnotation marks commands that work without loading configuration
const skipConfigAnnotation = "shelfcheck/skip-config"

type commandContext struct {
	configFlag   string
	logLevelFlag string
	jsonFlag     bool

	cfg *config.Config
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.LoadFile(c.configFlag)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// setupLogging sends log lines to stderr so stdout stays machine readable
func (c *commandContext) setupLogging() error {
	opts := logging.Options{Level: c.logLevelFlag, Format: "console"}
	if c.cfg != nil {
		opts = app.LogOptions(c.cfg.Log)
		opts.Level = c.logLevelFlag
	}
	return logging.Setup(opts)
}

// wantJSON reports whether output should be JSON instead of a table
func (c *commandContext) wantJSON(out io.Writer) bool {
	return c.jsonFlag || !isTerminal(out)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for current := cmd; current != nil; current = current.Parent() {
		if _, ok := current.Annotations[skipConfigAnnotation]; ok {
			return true
		}
	}
	return false
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "shelfcheck",
		Short:         "Look up Amazon book titles in the ValueBooks catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !shouldSkipConfig(cmd) {
				if _, err := ctx.ensureConfig(); err != nil {
					return err
				}
			}
			if err := ctx.setupLogging(); err != nil {
				return fmt.Errorf("set up logging: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&ctx.logLevelFlag, "log-level", "warn", "Log level written to stderr")
	rootCmd.PersistentFlags().BoolVar(&ctx.jsonFlag, "json", false, "Write JSON even when stdout is a terminal")

	rootCmd.AddCommand(newResolveCommand(ctx))
	rootCmd.AddCommand(newPageCommand(ctx))
	rootCmd.AddCommand(newNormalizeCommand(ctx))
	rootCmd.AddCommand(newReduceCommand(ctx))
	rootCmd.AddCommand(newSimilarityCommand(ctx))

	return rootCmd
}
