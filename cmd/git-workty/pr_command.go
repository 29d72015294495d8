package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

type prOptions struct {
	printPath bool
	open      bool
}

func newPRCommand(a *app) *cobra.Command {
	var opts prOptions
	cmd := &cobra.Command{
		Use:   "pr <number>",
		Short: "Create a worktree for a GitHub pull request",
		Long: "Checks out pull request <number> into its own worktree named pr-<number> using the gh CLI.\n" +
			"An existing pr-<number> worktree is reused.",
		Example: "  git workty pr 123\n" +
			"  cd \"$(git workty pr 123 --print-path)\"",
		Args: exactArgs("missing pull request number", "too many arguments; provide exactly one pull request number"),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parsePRNumber(args[0])
			if err != nil {
				return usageError(cmd, err.Error())
			}
			return a.runPR(cmd.Context(), number, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.printPath, "print-path", false, "Print only the worktree path to stdout")
	cmd.Flags().BoolVarP(&opts.open, "open", "o", false, "Open the worktree with open_cmd")
	return cmd
}

func parsePRNumber(raw string) (int, error) {
	value := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if value == "" {
		return 0, errors.New("pull request number required")
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid pull request number %q", raw)
	}
	return n, nil
}

func (a *app) runPR(ctx context.Context, number int, opts prOptions) error {
	m, err := a.manager(ctx)
	if err != nil {
		return err
	}

	stop := a.progress(fmt.Sprintf("Checking out PR #%d...", number))
	res, err := m.CreatePR(ctx, a.prs, number)
	stop()
	if err != nil {
		return err
	}

	out := a.out()
	switch {
	case res.Existing:
		out.Info("Worktree for PR #%d already exists", number)
	case res.Branch != "":
		out.Success("Created worktree for PR #%d (%s) at %s", number, res.Branch, res.Path)
	default:
		out.Success("Created worktree for PR #%d at %s", number, res.Path)
	}
	if opts.printPath || res.Existing {
		out.Path(res.Path)
	}
	if opts.open {
		a.openWorktree(ctx, m.Config().OpenCmd, res.Path)
	}
	return nil
}
