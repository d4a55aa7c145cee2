package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration directory",
		Long:  "Create the configuration directory and write a default config.yaml if none exists.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// setup has already created the directory and default file.
			path := a.configDir.ConfigFile()
			a.logger.Info("config initialized", "path", path, "source", a.configDir.Source)
			fmt.Fprintf(cmd.OutOrStdout(), "calccell initialized: %s\n", path)
			return nil
		},
	}
}
