package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/workty/git-workty/internal/lifecycle"
	"github.com/workty/git-workty/internal/selection"
	"github.com/workty/git-workty/internal/ui"
	"github.com/workty/git-workty/internal/worktree"
)

func newPickCommand(a *app) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Fuzzy select a worktree and print its path",
		Long: "Opens an interactive fuzzy selector on stderr and prints the chosen path on stdout.\n" +
			"With --query the best match is printed without prompting.",
		Example: "  cd \"$(git workty pick)\"\n" +
			"  git workty pick --query login",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runPick(cmd.Context(), query, cmd.Flags().Changed("query"))
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Pick the best fuzzy match for `text` without prompting")
	return cmd
}

func (a *app) runPick(ctx context.Context, query string, hasQuery bool) error {
	m, err := a.manager(ctx)
	if err != nil {
		return err
	}

	if !hasQuery && !a.isInteractive() {
		return &lifecycle.Error{
			Err:  errors.New("pick requires an interactive terminal"),
			Hint: "use `git workty go <name>` or pass --query",
		}
	}

	stop := a.progress("Gathering worktree status...")
	snap, err := m.Snapshot(ctx, true)
	stop()
	if err != nil {
		return err
	}

	if hasQuery {
		entry, err := selection.BestMatch(snap.Entries, query)
		if errors.Is(err, selection.ErrNoMatch) {
			return &lifecycle.Error{
				Err:  worktree.ErrNotFound,
				Msg:  fmt.Sprintf("no worktree matches '%s'", query),
				Hint: "run `git workty list` to see available worktrees",
			}
		}
		if err != nil {
			return err
		}
		a.out().Path(entry.Worktree.Path)
		return nil
	}

	lines := ui.PickLines(snap.Entries, a.out().Icons())
	options := make([]pickOption, len(lines))
	for i, line := range lines {
		options[i] = pickOption{Label: line, Filter: selection.SearchText(snap.Entries[i])}
	}
	idx, err := a.picker.Pick("Select a worktree", options)
	if errors.Is(err, selection.ErrCancelled) {
		return &exitError{code: exitCancelled}
	}
	if err != nil {
		return err
	}
	a.out().Path(snap.Entries[idx].Worktree.Path)
	return nil
}
