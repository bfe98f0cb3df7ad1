package main

import (
	"github.com/bastiangx/nextword/internal/cli"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// CLI would be mainly used for testing and dbg purposes.
func newCliCmd(root *rootOptions) *cobra.Command {
	var (
		dataset string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "cli",
		Short: "Interactive prediction prompt for debugging",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(root, dataset, false)
			if !cmd.Flags().Changed("limit") {
				limit = a.cfg.CLI.DefaultLimit
			}
			log.Debug("Input info:", "limit", limit, "dataset", a.datasetPath)

			h := cli.NewInputHandler(a.service, limit, cmd.InOrStdin(), cmd.OutOrStdout())
			return h.Start()
		},
	}
	cmd.Flags().StringVar(&dataset, "dataset", "", "Dataset file, overrides [model] dataset")
	cmd.Flags().IntVarP(&limit, "limit", "l", 6, "Number of suggestions to return (default from config)")
	return cmd
}
