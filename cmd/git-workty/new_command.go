package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/workty/git-workty/internal/config"
	"github.com/workty/git-workty/internal/lifecycle"
)

type newOptions struct {
	from      string
	path      string
	printPath bool
	open      bool
	noFetch   bool
	push      bool
}

func newNewCommand(a *app) *cobra.Command {
	var opts newOptions
	cmd := &cobra.Command{
		Use:   "new <branch>",
		Short: "Create a new workspace for a branch",
		Long: "Creates a worktree for <branch>. An existing branch is checked out; " +
			"otherwise the branch is created from the configured base.",
		Example: "  git workty new feat/login\n" +
			"  git workty new hotfix --from v1.2.0\n" +
			"  cd \"$(git workty new feat/login --print-path)\"",
		Args: exactArgs("missing branch name", "too many arguments; provide exactly one branch name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runNew(cmd.Context(), args[0], opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.from, "from", "f", "", "Base branch or ref for a new branch")
	f.StringVarP(&opts.path, "path", "p", "", "Custom worktree path")
	f.BoolVar(&opts.printPath, "print-path", false, "Print only the created path to stdout")
	f.BoolVarP(&opts.open, "open", "o", false, "Open the worktree with open_cmd after creation")
	f.BoolVar(&opts.noFetch, "no-fetch", false, "Do not fetch the base branch first")
	f.BoolVar(&opts.push, "push", false, "Push the new branch and set its upstream")
	_ = cmd.MarkFlagDirname("path")
	return cmd
}

func (a *app) runNew(ctx context.Context, branch string, opts newOptions) error {
	m, err := a.manager(ctx)
	if err != nil {
		return err
	}
	cfg := m.Config()

	stop := a.progress("Creating worktree...")
	res, err := m.Create(ctx, lifecycle.CreateOptions{
		Branch: branch,
		From:   opts.from,
		Path:   opts.path,
		Fetch:  cfg.FetchBase && !opts.noFetch,
		Push:   cfg.PushNew || opts.push,
	})
	stop()
	if err != nil {
		return err
	}

	out := a.out()
	for _, w := range res.Warnings {
		out.Warning("%s", w)
	}
	if res.ExistingBranch {
		out.Info("Using existing branch '%s'", res.Branch)
	} else {
		out.Info("Creating new branch '%s' from '%s'", res.Branch, res.Base)
	}
	if opts.printPath {
		out.Path(res.Path)
	} else {
		out.Success("Created worktree at %s", res.Path)
	}

	if opts.open {
		a.openWorktree(ctx, cfg.OpenCmd, res.Path)
	}
	return nil
}

// openWorktree launches openCmd on path. Failures are reported but never
// fail the command.
func (a *app) openWorktree(ctx context.Context, openCmd, path string) {
	if openCmd == "" {
		a.out().Warning("--open given but open_cmd is not configured")
		if path, err := config.GlobalPath(); err == nil {
			a.out().Hint("set open_cmd in %s", path)
		}
		return
	}
	if err := lifecycle.Open(ctx, a.executor, openCmd, path); err != nil {
		a.out().Warning("could not run open_cmd '%s': %v", openCmd, err)
	}
}
