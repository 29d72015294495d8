package main

import (
	"github.com/spf13/cobra"

	"github.com/workty/git-workty/internal/shell"
)

func newCompletionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "completions <shell>",
		Short: "Generate shell completion script",
		Long: "Prints a completion script for bash, zsh, fish or powershell on stdout.\n\n" +
			"  git workty completions zsh > \"${fpath[1]}/_git-workty\"\n" +
			"  git workty completions bash > ~/.local/share/bash-completion/completions/git-workty\n" +
			"  git workty completions fish > ~/.config/fish/completions/git-workty.fish",
		Args:      exactArgs("missing shell name (bash, zsh, fish, powershell)", "too many arguments; provide exactly one shell name"),
		ValidArgs: shell.Supported,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := shell.Normalize(args[0])
			if err != nil {
				return usageError(cmd, err.Error())
			}
			root := cmd.Root()
			switch name {
			case "bash":
				return root.GenBashCompletionV2(a.stdout, true)
			case "zsh":
				return root.GenZshCompletion(a.stdout)
			case "fish":
				return root.GenFishCompletion(a.stdout, true)
			default:
				return root.GenPowerShellCompletionWithDesc(a.stdout)
			}
		},
	}
}
