package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"scribblehub-to-epub/config"
	apperrors "scribblehub-to-epub/pkg/errors"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, used, err := root.loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if used != "" {
				fmt.Fprintf(out, "Config file: %s\n", used)
			} else {
				fmt.Fprintln(out, "Config file: none, using defaults")
			}
			cfg.Print(out)
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := root.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return apperrors.NewConfiguration(fmt.Sprintf("%s already exists, use --force to overwrite", path), nil)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return apperrors.NewIO(path, "failed to check config file", err)
			}
			if err := config.SaveYAML(config.DefaultConfig(), path); err != nil {
				return apperrors.NewIO(path, "failed to write config file", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	configCmd.AddCommand(showCmd, initCmd)
	return configCmd
}
