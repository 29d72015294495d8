package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/workty/git-workty/internal/paths"
	"github.com/workty/git-workty/internal/shell"
)

type initOptions struct {
	wrapGit   bool
	noCD      bool
	install   bool
	uninstall bool
}

func newInitCommand(a *app) *cobra.Command {
	var opts initOptions
	cmd := &cobra.Command{
		Use:   "init <shell>",
		Short: "Print shell integration (bash, zsh, fish, powershell)",
		Long: "Prints a snippet defining wcd, wnew and wgo. Load it from your shell startup file,\n" +
			"or let --install add a managed block that does so.",
		Example: "  eval \"$(git workty init zsh)\"\n" +
			"  git workty init fish | source\n" +
			"  git workty init bash --wrap-git --install",
		Args:      exactArgs("missing shell name (bash, zsh, fish, powershell)", "too many arguments; provide exactly one shell name"),
		ValidArgs: shell.Supported,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.install && opts.uninstall {
				return usageError(cmd, "--install and --uninstall cannot be used together")
			}
			name, err := shell.Normalize(args[0])
			if err != nil {
				return usageError(cmd, err.Error())
			}
			shellOpts := shell.Options{WrapGit: opts.wrapGit, NoCD: opts.noCD}
			switch {
			case opts.install:
				return a.installShell(name, shellOpts)
			case opts.uninstall:
				return a.uninstallShell(name)
			}
			script, err := shell.Generate(name, shellOpts)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(a.stdout, script)
			return err
		},
	}
	f := cmd.Flags()
	f.BoolVar(&opts.wrapGit, "wrap-git", false, "Wrap git so `git workty go|pick|new` change directory")
	f.BoolVar(&opts.noCD, "no-cd", false, "Leave out the wcd, wnew and wgo helpers")
	f.BoolVar(&opts.install, "install", false, "Add the snippet loader to the shell startup file")
	f.BoolVar(&opts.uninstall, "uninstall", false, "Remove the snippet loader from the shell startup file")
	return cmd
}

func (a *app) installShell(name string, opts shell.Options) error {
	rc, err := rcFile(name)
	if err != nil {
		return err
	}
	block, err := shell.Block(name, opts)
	if err != nil {
		return err
	}
	if err := shell.Install(rc, block); err != nil {
		return fmt.Errorf("update %s: %w", paths.ShortenHome(rc), err)
	}
	a.out().Success("Shell integration installed in %s", paths.ShortenHome(rc))
	a.out().Hint("restart your shell or source %s", paths.ShortenHome(rc))
	return nil
}

func (a *app) uninstallShell(name string) error {
	rc, err := rcFile(name)
	if err != nil {
		return err
	}
	installed, err := shell.Installed(rc)
	if err != nil {
		return err
	}
	if !installed {
		a.out().Info("Shell integration is not installed in %s", paths.ShortenHome(rc))
		return nil
	}
	if err := shell.Uninstall(rc); err != nil {
		return fmt.Errorf("update %s: %w", paths.ShortenHome(rc), err)
	}
	a.out().Success("Shell integration removed from %s", paths.ShortenHome(rc))
	return nil
}

func rcFile(name string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	rc, err := shell.RCFile(name, home)
	if errors.Is(err, shell.ErrNoRCFile) {
		return "", fmt.Errorf("--install is not supported for %s; add `git workty init %s | Out-String | Invoke-Expression` to your profile", name, name)
	}
	return rc, err
}
