package main

import (
	"github.com/spf13/cobra"
)

func newGoCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "go <name>",
		Short: "Print the path of a worktree by name",
		Long:  "Prints the worktree path on stdout. <name> is a branch name or a worktree directory name.",
		Example: "  cd \"$(git workty go feat/login)\"\n" +
			"  git workty go main",
		Args: exactArgs("missing worktree name", "too many arguments; provide exactly one worktree name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.manager(cmd.Context())
			if err != nil {
				return err
			}
			wt, err := m.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.out().Path(wt.Path)
			return nil
		},
	}
	cmd.ValidArgsFunction = a.completeWorktreeNames
	return cmd
}
