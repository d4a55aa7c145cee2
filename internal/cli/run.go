package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/calccell/internal/journal"
	"github.com/mesh-intelligence/calccell/internal/sheet"
)

type runFlags struct {
	cell    string
	journal bool
}

func newRunCmd(a *app) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run <sheet>",
		Short: "Evaluate a sheet and print its cells",
		Long: `Load a sheet definition, build its cells and links, apply its steps in
order and print every cell as plain data.

With --journal every write made while running is printed after the cells,
in the order it happened.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSheet(cmd, args[0], f)
		},
	}

	cmd.Flags().StringVar(&f.cell, "cell", "", "print only the named cell")
	cmd.Flags().BoolVar(&f.journal, "journal", false, "record writes and print them after the cells")

	return cmd
}

func (a *app) runSheet(cmd *cobra.Command, path string, f runFlags) error {
	withJournal := a.settings.Journal
	if cmd.Flags().Changed("journal") {
		withJournal = f.journal
	}

	def, err := sheet.Load(path)
	if err != nil {
		return userError(err)
	}

	opts := []sheet.Option{sheet.WithLogger(a.logger.Named("sheet"))}
	var j *journal.Journal
	if withJournal {
		j, err = journal.Open(a.logger.Named("journal"))
		if err != nil {
			return sysError(err)
		}
		defer j.Close()
		opts = append(opts, sheet.WithJournal(j))
	}

	s, err := sheet.Build(def, opts...)
	if err != nil {
		return userError(fmt.Errorf("build %s: %w", path, err))
	}
	res, err := s.Run()
	if err != nil {
		return userError(fmt.Errorf("run %s: %w", path, err))
	}

	if f.cell != "" {
		only, ok := res.Only(f.cell)
		if !ok {
			return userError(fmt.Errorf("%w: %q", sheet.ErrUnknownCell, f.cell))
		}
		res = only
	}

	format := a.settings.Output
	if j == nil {
		if err := writeOutput(cmd.OutOrStdout(), format, res); err != nil {
			return sysError(err)
		}
		return nil
	}

	var entries []journal.Entry
	if f.cell != "" {
		entries, err = j.EntriesFor(f.cell)
	} else {
		entries, err = j.Entries()
	}
	if err != nil {
		return sysError(err)
	}
	view, err := journalView(entries)
	if err != nil {
		return sysError(err)
	}
	if err := writeOutput(cmd.OutOrStdout(), format, runOutput{Cells: res, Journal: view}); err != nil {
		return sysError(err)
	}
	return nil
}
