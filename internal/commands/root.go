// Package commands implements the ai-scheduler command line.
package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/klabast/wb-services/ai-scheduler/internal/app"
)

// CompleterFactory creates the chat client for a generator config
type CompleterFactory func(cfg app.GeneratorConfig) (app.Completer, error)

// Options are shared by all subcommands
type Options struct {
	ConfigPath   string
	NewCompleter CompleterFactory
}

func defaultCompleter(cfg app.GeneratorConfig) (app.Completer, error) {
	return app.NewOpenAICompleter(cfg)
}

// NewRootCmd builds the command tree. Without a subcommand it serves the web tool.
func NewRootCmd(version string) *cobra.Command {
	opts := &Options{NewCompleter: defaultCompleter}
	return newRootCmd(version, opts)
}

func newRootCmd(version string, opts *Options) *cobra.Command {
	serve := newServeCmd(opts)

	root := &cobra.Command{
		Use:   "ai-scheduler",
		Short: "Turn a task description into a day-by-day schedule",
		Long: `ai-scheduler asks a text-generation service for a day-by-day plan,
parses it into Day / Goal / Milestone rows and renders them as a PDF table.

Configuration is read from --config (YAML) and SCHEDULER_* environment variables.`,
		Version:      version,
		SilenceUsage: true,
		RunE:         serve.RunE,
		Args:         cobra.NoArgs,
	}
	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", app.DefaultConfigFile, "path to YAML config file")
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(serve)
	root.AddCommand(newGenerateCmd(opts))
	return root
}

// setup loads config and builds the shared pipeline pieces
func setup(opts *Options) (*app.Config, *zap.Logger, app.Completer, error) {
	cfg, err := app.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := app.NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, nil, err
	}
	llm, err := opts.NewCompleter(cfg.Generator)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, llm, nil
}
