package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show dashboard of all worktrees (default)",
		Example: "  git workty list\n  git workty ls --json",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runList(cmd.Context())
		},
	}
}

func (a *app) runList(ctx context.Context) error {
	m, err := a.manager(ctx)
	if err != nil {
		return err
	}
	stop := a.progress("Gathering worktree status...")
	snap, err := m.Snapshot(ctx, true)
	stop()
	if err != nil {
		return err
	}
	return a.out().List(snap.Repo, snap.CurrentPath, snap.Entries)
}

// completeWorktreeNames offers the names of existing worktrees.
func (a *app) completeWorktreeNames(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	m, err := a.manager(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	snap, err := m.Snapshot(cmd.Context(), false)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	names := make([]string, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		names = append(names, e.Worktree.Name())
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
