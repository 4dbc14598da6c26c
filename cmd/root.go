package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"scribblehub-to-epub/config"
	"scribblehub-to-epub/logger"
	apperrors "scribblehub-to-epub/pkg/errors"
)

type rootOptions struct {
	configPath string
	logLevel   string
	quiet      bool
}

// NewRootCmd builds the command tree. Each call returns fresh flag state.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "scribblehub-to-epub",
		Short:         "Download a Scribble Hub series as an EPUB",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "hide the progress bar")

	root.AddCommand(
		newDownloadCmd(opts),
		newCacheCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		logger.Error("%v", err)
		return apperrors.ExitCode(err)
	}
	return 0
}

// loadConfig reads the configuration and sets up logging. The log level
// flag wins over the config file.
func (o *rootOptions) loadConfig() (*config.Config, string, error) {
	cfg, used, err := config.Load(o.configPath)
	if err != nil {
		logger.Init(o.logLevel, os.Stderr)
		return nil, "", err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	logger.Init(cfg.LogLevel, os.Stderr)
	if used != "" {
		logger.Debug("config file: %s", used)
	}
	return cfg, used, nil
}
