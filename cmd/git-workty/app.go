package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/workty/git-workty/internal/config"
	"github.com/workty/git-workty/internal/exec"
	"github.com/workty/git-workty/internal/gh"
	"github.com/workty/git-workty/internal/git"
	"github.com/workty/git-workty/internal/lifecycle"
	"github.com/workty/git-workty/internal/logger"
	"github.com/workty/git-workty/internal/selection"
	"github.com/workty/git-workty/internal/ui"
	"github.com/workty/git-workty/internal/worktree"
)

const (
	exitOK        = 0
	exitFailure   = 1
	exitCancelled = 130
)

type globalFlags struct {
	noColor bool
	ascii   bool
	json    bool
	dir     string
	yes     bool
	debug   bool
}

// app carries everything a command needs. Tests swap the collaborators.
type app struct {
	stdout io.Writer
	stderr io.Writer
	flags  globalFlags

	executor    exec.CommandExecutor
	backend     git.Backend
	prs         lifecycle.PullRequests
	confirmer   lifecycle.Confirmer
	picker      picker
	interactive func() bool
	now         func() time.Time

	printer *ui.Printer
}

func newApp(stdout, stderr io.Writer) *app {
	executor := exec.NewRealExecutor()
	a := &app{
		stdout:      stdout,
		stderr:      stderr,
		executor:    executor,
		backend:     git.NewCLI(executor),
		prs:         gh.NewClient(executor),
		interactive: terminalIsInteractive,
		now:         time.Now,
	}
	a.confirmer = &huhConfirmer{out: stderr, interactive: a.isInteractive}
	a.picker = &teaPicker{out: stderr}
	return a
}

func terminalIsInteractive() bool {
	return isTerminal(os.Stdin.Fd()) && isTerminal(os.Stderr.Fd())
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (a *app) isInteractive() bool {
	return a.interactive != nil && a.interactive()
}

// setup runs before every command once flags are parsed.
func (a *app) setup() error {
	if a.flags.debug || config.EnvFlagEnabled("WORKTY_DEBUG") {
		logger.SetDebug(true)
	}
	if err := logger.Init(""); err != nil {
		fmt.Fprintln(a.stderr, "warning: logging disabled:", err)
	}
	a.printer = ui.NewPrinter(a.stdout, a.stderr, a.uiOptions())
	logger.WithComponent("cli").Debug("invocation", "args", os.Args[1:], "dir", a.flags.dir)
	return nil
}

func (a *app) uiOptions() ui.Options {
	return ui.Options{
		Color: !a.flags.noColor && os.Getenv("NO_COLOR") == "",
		ASCII: a.flags.ascii,
		JSON:  a.flags.json,
	}
}

func (a *app) out() *ui.Printer {
	if a.printer == nil {
		a.printer = ui.NewPrinter(a.stdout, a.stderr, a.uiOptions())
	}
	return a.printer
}

// manager discovers the repository and loads its configuration.
func (a *app) manager(ctx context.Context) (*lifecycle.Manager, error) {
	if err := a.backend.Available(); err != nil {
		return nil, err
	}
	repo, err := git.Discover(ctx, a.backend, a.flags.dir)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(repo, a.backend.DefaultBranch(ctx, repo.Root))
	if err != nil {
		return nil, err
	}
	cwd := a.flags.dir
	if cwd == "" {
		cwd, _ = os.Getwd()
	}
	logger.WithComponent("cli").Debug("repository", "root", repo.Root, "common_dir", repo.CommonDir, "base", cfg.Base)
	return lifecycle.NewManager(a.backend, repo, cfg, cwd).WithClock(a.now), nil
}

// exitError ends the process with code. A nil err prints nothing.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// report prints err for the user and returns the process exit code.
func (a *app) report(err error) int {
	if err == nil {
		return exitOK
	}
	logger.WithComponent("cli").Debug("command failed", "error", err)

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.err != nil {
			a.out().Error(exitErr.err.Error(), hintFor(exitErr.err))
		}
		return exitErr.code
	}
	if errors.Is(err, lifecycle.ErrAborted) {
		a.out().Info("Aborted.")
		return exitFailure
	}
	a.out().Error(err.Error(), hintFor(err))
	return exitFailure
}

func hintFor(err error) string {
	if hint := lifecycle.HintOf(err); hint != "" {
		return hint
	}
	switch {
	case errors.Is(err, git.ErrBackendUnavailable):
		return "install git from https://git-scm.com/downloads"
	case errors.Is(err, git.ErrNotARepository):
		return "run this command from inside a Git repository, or pass -C <path>"
	case errors.Is(err, gh.ErrNotInstalled):
		return "install the GitHub CLI from https://cli.github.com"
	case errors.Is(err, gh.ErrNotAuthenticated):
		return "run `gh auth login`"
	case errors.Is(err, worktree.ErrNotFound), errors.Is(err, selection.ErrNoMatch):
		return "run `git workty list` to see available worktrees"
	}
	return ""
}
