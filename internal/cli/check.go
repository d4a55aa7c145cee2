package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/calccell/internal/sheet"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <sheet>",
		Short: "Validate a sheet without running it",
		Long:  "Load a sheet definition and build its cells and links. Steps are not applied.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			def, err := sheet.Load(path)
			if err != nil {
				return userError(err)
			}
			s, err := sheet.Build(def, sheet.WithLogger(a.logger.Named("sheet")))
			if err != nil {
				return userError(fmt.Errorf("build %s: %w", path, err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d cells, %d links, %d steps)\n",
				s.Name(), len(s.Names()), len(def.Links), len(def.Steps))
			return nil
		},
	}
}
