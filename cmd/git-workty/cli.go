package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const rootLong = `Git worktrees as daily-driver workspaces.

git-workty makes Git worktrees feel like workspaces or tabs. Switch context
without stashing or WIP commits, see everything in flight with a dashboard,
and clean up merged work safely.`

const rootExample = `  git workty                    Show dashboard of all worktrees
  git workty new feat/login     Create a workspace for feat/login
  git workty go feat/login      Print the path of the feat/login worktree
  git workty pick               Fuzzy select a worktree
  git workty rm feat/login      Remove the feat/login worktree
  git workty clean --merged     Remove all merged worktrees

Shell integration:
  eval "$(git workty init zsh)"

  wcd   fuzzy select and cd to a worktree
  wnew  create a worktree and cd into it
  wgo   cd to a worktree by name`

func newRootCommand(a *app, args []string) *cobra.Command {
	root := &cobra.Command{
		Use:           "git-workty",
		Short:         "Git worktrees as daily-driver workspaces",
		Long:          rootLong,
		Example:       rootExample,
		Version:       currentVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runList(cmd.Context())
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetVersionTemplate("{{.Version}}\n")
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.BoolVar(&a.flags.noColor, "no-color", false, "Disable colored output (also NO_COLOR)")
	pf.BoolVar(&a.flags.ascii, "ascii", false, "Use ASCII-only symbols")
	pf.BoolVar(&a.flags.json, "json", false, "Output in JSON format")
	pf.StringVarP(&a.flags.dir, "directory", "C", "", "Run as if started in `path`")
	pf.BoolVarP(&a.flags.yes, "yes", "y", false, "Assume yes to prompts")
	pf.BoolVar(&a.flags.debug, "debug", false, "Write debug logs (also WORKTY_DEBUG=1)")
	_ = root.MarkPersistentFlagDirname("directory")

	root.AddCommand(
		newListCommand(a),
		newNewCommand(a),
		newGoCommand(a),
		newPickCommand(a),
		newRmCommand(a),
		newCleanCommand(a),
		newPRCommand(a),
		newInitCommand(a),
		newDoctorCommand(a),
		newCompletionCommand(a),
	)

	if len(args) > 1 {
		root.SetArgs(args[1:])
	} else {
		root.SetArgs([]string{})
	}
	return root
}

func usageError(cmd *cobra.Command, message string) error {
	return fmt.Errorf("%s\n\n%s", message, strings.TrimSpace(cmd.UsageString()))
}

// exactArgs validates a single positional argument with friendly messages.
func exactArgs(missing, tooMany string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		switch {
		case len(args) == 1:
			return nil
		case len(args) == 0:
			return usageError(cmd, missing)
		default:
			return usageError(cmd, tooMany)
		}
	}
}
