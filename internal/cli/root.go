// Package cli implements the docrag command line.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"docrag/internal/config"
	"docrag/internal/logging"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "docrag",
		Short: "Ask questions about your documents",
		Long: `docrag ingests text and PDF files into a local knowledge base, finds
the passages that match a question and asks a language model to answer
from them.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to YAML or TOML config (default ./config.yaml or ~/.config/docrag/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newServeCmd(opts),
		newIngestCmd(opts),
		newQueryCmd(opts),
		newSearchCmd(opts),
		newListCmd(opts),
		newShowCmd(opts),
		newDeleteCmd(opts),
		newTUICmd(opts),
		newWatchCmd(opts),
	)
	return cmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// open loads configuration and builds the engine. Callers must Close the app.
func (o *rootOptions) open(cmd *cobra.Command) (*App, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if o.configPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(o.configPath)
	}
	if err != nil {
		return nil, err
	}
	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format, o.verbose)
	return Build(cmd.Context(), cfg, logger)
}
