package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/trendoscope/internal/config"
	logpkg "github.com/kailas-cloud/trendoscope/internal/logger"
	"github.com/kailas-cloud/trendoscope/internal/version"
)

// rootOptions are the persistent flags shared by all commands.
type rootOptions struct {
	env        string
	configPath string
	json       bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "trendoscope",
		Short: "Learn a blog's writing style and generate posts about current news",
		Long: `Trendoscope scrapes blogs and RSS news feeds, indexes them for semantic search,
builds a style profile per blog and generates new posts in that style.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "environment name, selects config/<env>.yaml")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "explicit config file path (overrides --env)")
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "print results as JSON")

	root.AddCommand(
		newServeCmd(opts),
		newIngestCmd(opts),
		newSearchCmd(opts),
		newGenerateCmd(opts),
		newProfileCmd(opts),
		newTrendsCmd(opts),
		newUsageCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "trendoscope "+version.String())
		},
	}
}

func (o *rootOptions) loadConfig() (config.Config, error) {
	if o.configPath != "" {
		return config.LoadFile(o.configPath)
	}
	return config.Load(o.env)
}

// runWithApp loads configuration, builds the app and runs fn with it.
func (o *rootOptions) runWithApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logpkg.NewLogger(o.env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	logger.Debug("command started", zap.String("command", cmd.CommandPath()))
	return fn(ctx, a)
}

// print writes v as indented JSON when --json is set, otherwise calls text.
func (o *rootOptions) print(cmd *cobra.Command, v any, text func()) error {
	if !o.json {
		text()
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
