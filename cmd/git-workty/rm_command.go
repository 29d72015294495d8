package main

import (
	"github.com/spf13/cobra"

	"github.com/workty/git-workty/internal/lifecycle"
)

func newRmCommand(a *app) *cobra.Command {
	var force, deleteBranch bool
	cmd := &cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"remove"},
		Short:   "Remove a worktree",
		Long: "Removes the worktree named <name>. The current and main worktrees are never removed; " +
			"worktrees with uncommitted changes need --force.",
		Example: "  git workty rm feat/login\n" +
			"  git workty rm feat/login --delete-branch --yes",
		Args: exactArgs("missing worktree name", "too many arguments; provide exactly one worktree name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.manager(cmd.Context())
			if err != nil {
				return err
			}
			res, err := m.Remove(cmd.Context(), lifecycle.RemoveOptions{
				Name:         args[0],
				Force:        force,
				DeleteBranch: deleteBranch,
				Yes:          a.flags.yes,
			}, a.confirmer)
			if err != nil {
				return err
			}

			out := a.out()
			for _, w := range res.Warnings {
				out.Warning("%s", w)
			}
			out.Success("Removed worktree '%s'", args[0])
			if res.BranchDeleted {
				out.Success("Deleted branch '%s'", res.Worktree.BranchShort)
			}
			for _, h := range res.Hints {
				out.Hint("%s", h)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Remove even with uncommitted changes")
	cmd.Flags().BoolVarP(&deleteBranch, "delete-branch", "d", false, "Also delete the branch (git branch -d)")
	cmd.ValidArgsFunction = a.completeWorktreeNames
	return cmd
}
