package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/workty/git-workty/internal/lifecycle"
	"github.com/workty/git-workty/internal/selection"
	"github.com/workty/git-workty/internal/ui"
)

// staleFromConfig is the --stale value used when the flag has no argument.
const staleFromConfig = -1

type cleanOptions struct {
	merged bool
	gone   bool
	stale  int
	dryRun bool
}

func newCleanCommand(a *app) *cobra.Command {
	var opts cleanOptions
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove merged, gone or stale worktrees",
		Long: "Removes worktrees matching at least one filter. The current worktree, the main worktree, " +
			"detached worktrees and the base branch are never touched. Worktrees with uncommitted " +
			"changes are listed but skipped.",
		Example: "  git workty clean --merged --dry-run\n" +
			"  git workty clean --gone --yes\n" +
			"  git workty clean --stale=14",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runClean(cmd.Context(), opts)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&opts.merged, "merged", false, "Worktrees whose branch is merged into the base")
	f.BoolVar(&opts.gone, "gone", false, "Worktrees whose upstream branch was deleted")
	f.IntVar(&opts.stale, "stale", 0, "Worktrees with no commits for `days` (default from stale_days)")
	f.Lookup("stale").NoOptDefVal = "-1"
	f.BoolVarP(&opts.dryRun, "dry-run", "n", false, "Show what would be removed")
	return cmd
}

func (a *app) runClean(ctx context.Context, opts cleanOptions) error {
	m, err := a.manager(ctx)
	if err != nil {
		return err
	}
	out := a.out()

	filter := selection.CleanFilter{Merged: opts.merged, Gone: opts.gone, StaleDays: opts.stale}
	if opts.stale == staleFromConfig {
		filter.StaleDays = m.Config().StaleDays
	}
	if !filter.Any() {
		out.Info("No worktrees to clean up.")
		out.Hint("choose what to clean with --merged, --gone or --stale")
		return nil
	}

	stop := a.progress("Checking worktrees...")
	plan, err := m.PlanClean(ctx, filter)
	stop()
	if err != nil {
		return err
	}
	if len(plan.Candidates) == 0 {
		out.Info("No worktrees to clean up.")
		return nil
	}

	out.Info("Worktrees to remove:")
	now := a.now()
	for _, c := range plan.Candidates {
		out.Info("  %s", ui.CleanLine(c, now, out.Icons()))
	}

	if opts.dryRun {
		out.Info("Dry run - no worktrees removed.")
		return nil
	}
	if skipped := len(plan.Skipped()); skipped > 0 {
		out.Warning("%d worktree(s) have uncommitted changes and will be skipped.", skipped)
	}
	if len(plan.Removable()) == 0 {
		out.Info("All candidate worktrees have uncommitted changes. Nothing to remove.")
		return nil
	}

	report, err := m.ExecuteClean(ctx, plan, lifecycle.CleanOptions{
		Yes: a.flags.yes,
		Progress: func(res lifecycle.CleanResult) {
			if res.Err != nil {
				out.Warning("Failed to remove '%s': %v", res.Worktree.Name(), res.Err)
				return
			}
			out.Success("Removed worktree '%s'", res.Worktree.Name())
		},
	}, a.confirmer)
	if err != nil {
		return err
	}
	out.Info("Cleaned up %d worktree(s).", len(report.Removed))
	return nil
}
