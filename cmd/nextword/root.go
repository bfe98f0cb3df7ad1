package main

import (
	"github.com/bastiangx/nextword/internal/logger"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	debug      bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          AppName,
		Short:        "Next-word prediction from n-gram frequency tables",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Setup(opts.debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config.toml (default: user config dir)")
	cmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "Toggle debug mode")

	cmd.AddCommand(
		newServeCmd(opts),
		newCliCmd(opts),
		newBuildCmd(opts),
		newVersionCmd(),
	)
	return cmd
}
