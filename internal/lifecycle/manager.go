// Package lifecycle creates and removes worktrees.
package lifecycle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/workty/git-workty/internal/config"
	"github.com/workty/git-workty/internal/git"
	"github.com/workty/git-workty/internal/logger"
	"github.com/workty/git-workty/internal/selection"
	"github.com/workty/git-workty/internal/status"
	"github.com/workty/git-workty/internal/worktree"
)

const defaultRemote = "origin"

// Manager runs worktree operations for one repository.
type Manager struct {
	backend    git.Backend
	repo       git.Repo
	cfg        config.Config
	cwd        string
	aggregator *status.Aggregator
	now        func() time.Time
}

func NewManager(backend git.Backend, repo git.Repo, cfg config.Config, cwd string) *Manager {
	return &Manager{
		backend:    backend,
		repo:       repo,
		cfg:        cfg,
		cwd:        cwd,
		aggregator: status.NewAggregator(backend),
		now:        time.Now,
	}
}

// WithClock replaces the time source used for staleness.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

func (m *Manager) Repo() git.Repo        { return m.repo }
func (m *Manager) Config() config.Config { return m.cfg }

// Snapshot is the registry plus, when requested, each worktree's status.
type Snapshot struct {
	Repo        git.Repo
	CurrentPath string
	Entries     []status.Entry
}

// Snapshot lists worktrees in dashboard order. Without withStatus the
// entries carry empty statuses.
func (m *Manager) Snapshot(ctx context.Context, withStatus bool) (Snapshot, error) {
	worktrees, err := worktree.List(ctx, m.backend, m.repo)
	if err != nil {
		return Snapshot{}, err
	}
	current, _ := selection.CurrentPath(worktrees, m.cwd)

	var entries []status.Entry
	if withStatus {
		entries = m.aggregator.StatusOfAll(ctx, worktrees)
	} else {
		entries = make([]status.Entry, len(worktrees))
		for i, wt := range worktrees {
			entries[i] = status.Entry{Worktree: wt}
		}
	}
	selection.SortForList(entries, current)
	return Snapshot{Repo: m.repo, CurrentPath: current, Entries: entries}, nil
}

// Lookup finds a worktree by name.
func (m *Manager) Lookup(ctx context.Context, name string) (worktree.Worktree, error) {
	worktrees, err := worktree.List(ctx, m.backend, m.repo)
	if err != nil {
		return worktree.Worktree{}, err
	}
	wt, ok := worktree.Find(worktrees, name)
	if !ok {
		return worktree.Worktree{}, notFound(name)
	}
	return wt, nil
}

func notFound(name string) error {
	return &Error{
		Err:  worktree.ErrNotFound,
		Msg:  fmt.Sprintf("worktree '%s' not found", name),
		Hint: "run `git workty list` to see available worktrees",
	}
}

type CreateOptions struct {
	Branch string
	// From overrides the configured base for new branches.
	From string
	// Path overrides the default location under the workspace root.
	Path string
	// Fetch refreshes the base from its upstream before branching.
	Fetch bool
	// Push publishes a new branch with an upstream afterwards.
	Push bool
}

type CreateResult struct {
	Path           string
	Branch         string
	Base           string
	ExistingBranch bool
	Warnings       []string
}

// Create adds a worktree for opts.Branch, creating the branch from the base
// when it does not exist yet.
func (m *Manager) Create(ctx context.Context, opts CreateOptions) (CreateResult, error) {
	log := logger.WithComponent("lifecycle")
	branch := strings.TrimSpace(opts.Branch)
	if branch == "" {
		return CreateResult{}, fmt.Errorf("branch name required")
	}

	target, err := m.targetPath(branch, opts.Path)
	if err != nil {
		return CreateResult{}, err
	}
	exists, err := pathExists(target)
	if err != nil {
		return CreateResult{}, err
	}
	if exists {
		return CreateResult{}, &Error{
			Err:  ErrPathExists,
			Msg:  fmt.Sprintf("directory already exists: %s", target),
			Hint: "use --path to choose a different location",
			Path: target,
		}
	}

	worktrees, err := worktree.List(ctx, m.backend, m.repo)
	if err != nil {
		return CreateResult{}, err
	}
	if existing, ok := worktree.FindByBranch(worktrees, branch); ok {
		return CreateResult{}, &Error{
			Err:  ErrBranchInUse,
			Msg:  fmt.Sprintf("branch '%s' is already checked out at %s", branch, existing.Path),
			Hint: fmt.Sprintf("use `git workty go %s` to switch to it", branch),
			Path: existing.Path,
		}
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return CreateResult{}, fmt.Errorf("create parent directory: %w", err)
	}

	result := CreateResult{Path: target, Branch: branch}
	branchExists, err := m.backend.BranchExists(ctx, m.repo.Root, branch)
	if err != nil {
		return CreateResult{}, err
	}

	if branchExists {
		result.ExistingBranch = true
		if err := m.backend.AddWorktree(ctx, m.repo.Root, git.AddOptions{Path: target, Branch: branch}); err != nil {
			return CreateResult{}, err
		}
		log.Info("worktree created for existing branch", "branch", branch, "path", target)
		return result, nil
	}

	base := strings.TrimSpace(opts.From)
	if base == "" {
		base = m.cfg.Base
	}
	remote := defaultRemote
	if opts.Fetch {
		var warning string
		base, remote, warning = m.freshBase(ctx, base)
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
	}
	result.Base = base

	if err := m.backend.AddWorktree(ctx, m.repo.Root, git.AddOptions{
		Path: target, Branch: branch, NewBranch: true, Base: base,
	}); err != nil {
		return CreateResult{}, err
	}
	log.Info("worktree created", "branch", branch, "base", base, "path", target)

	if opts.Push {
		if err := m.backend.Push(ctx, target, remote, branch, true); err != nil {
			log.Warn("publish failed", "branch", branch, "remote", remote, "error", err)
			result.Warnings = append(result.Warnings, fmt.Sprintf("could not push '%s' to %s: %v", branch, remote, err))
		}
	}
	return result, nil
}

// freshBase fetches the upstream of a local base branch and returns the
// remote-tracking name to branch from. Failures fall back to the local ref.
func (m *Manager) freshBase(ctx context.Context, base string) (ref, remote, warning string) {
	remote = defaultRemote
	up, err := m.backend.Upstream(ctx, m.repo.Root, base)
	if err != nil || up == nil || up.Gone || up.Remote == "" {
		return base, remote, ""
	}
	remote = up.Remote
	remoteBranch := plumbing.ReferenceName(up.RemoteRef).Short()
	if err := m.backend.Fetch(ctx, m.repo.Root, up.Remote, remoteBranch); err != nil {
		logger.WithComponent("lifecycle").Warn("base fetch failed", "base", base, "error", err)
		return base, remote, fmt.Sprintf("could not fetch %s, branching from local '%s': %v", up.Short, base, err)
	}
	return up.Short, remote, ""
}

func (m *Manager) targetPath(branch, explicit string) (string, error) {
	if p := strings.TrimSpace(explicit); p != "" {
		if !filepath.IsAbs(p) {
			base := m.cwd
			if base == "" {
				base = m.repo.Root
			}
			p = filepath.Join(base, p)
		}
		return filepath.Clean(p), nil
	}
	slug := worktree.Slugify(branch)
	if slug == "" {
		return "", fmt.Errorf("branch name %q has no usable characters for a directory name; use --path", branch)
	}
	return m.cfg.WorktreePath(m.repo, slug), nil
}

func pathExists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

type RemoveOptions struct {
	Name         string
	Force        bool
	DeleteBranch bool
	Yes          bool
}

type RemoveResult struct {
	Worktree      worktree.Worktree
	BranchDeleted bool
	Warnings      []string
	Hints         []string
}

// Remove deletes one worktree. The current and main worktrees are refused
// outright; dirty ones need Force.
func (m *Manager) Remove(ctx context.Context, opts RemoveOptions, c Confirmer) (RemoveResult, error) {
	worktrees, err := worktree.List(ctx, m.backend, m.repo)
	if err != nil {
		return RemoveResult{}, err
	}
	wt, ok := worktree.Find(worktrees, opts.Name)
	if !ok {
		return RemoveResult{}, notFound(opts.Name)
	}

	current, _ := selection.CurrentPath(worktrees, m.cwd)
	if wt.Path == current {
		return RemoveResult{}, &Error{
			Err:  ErrProtectedWorktree,
			Msg:  "cannot remove the current worktree",
			Hint: "switch to a different worktree first with `wcd` or `git workty go`",
			Path: wt.Path,
		}
	}
	if wt.IsMain(m.repo) {
		return RemoveResult{}, &Error{
			Err:  ErrProtectedWorktree,
			Msg:  "cannot remove the main worktree",
			Hint: "the main worktree is the original repository checkout",
			Path: wt.Path,
		}
	}

	result := RemoveResult{Worktree: wt}
	dirty, err := m.isDirty(ctx, wt)
	if err != nil {
		if !opts.Force {
			return RemoveResult{}, &Error{
				Err:  ErrDirty,
				Msg:  fmt.Sprintf("could not check worktree '%s' for uncommitted changes: %v", opts.Name, err),
				Hint: "use --force to remove anyway",
				Path: wt.Path,
			}
		}
		result.Warnings = append(result.Warnings, fmt.Sprintf("could not check worktree '%s' for uncommitted changes (--force specified)", opts.Name))
	}
	if dirty && !opts.Force {
		return RemoveResult{}, &Error{
			Err:  ErrDirty,
			Msg:  fmt.Sprintf("worktree '%s' has uncommitted changes", opts.Name),
			Hint: "use --force to remove anyway, or commit/stash changes first",
			Path: wt.Path,
		}
	}
	if dirty {
		result.Warnings = append(result.Warnings, fmt.Sprintf("worktree '%s' has uncommitted changes (--force specified)", opts.Name))
	}

	prompt := fmt.Sprintf("Remove worktree '%s'?", opts.Name)
	if opts.DeleteBranch && wt.BranchShort != "" {
		prompt = fmt.Sprintf("Remove worktree '%s' and its branch?", opts.Name)
	}
	if err := confirm(c, opts.Yes, prompt); err != nil {
		return RemoveResult{}, err
	}

	if err := m.backend.RemoveWorktree(ctx, m.repo.Root, wt.Path, opts.Force); err != nil {
		return RemoveResult{}, err
	}

	if opts.DeleteBranch && wt.BranchShort != "" && !wt.Detached {
		if err := m.backend.DeleteBranch(ctx, m.repo.Root, wt.BranchShort, false); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("could not delete branch '%s': %v", wt.BranchShort, err))
			result.Hints = append(result.Hints, fmt.Sprintf("use `git branch -D %s` to force delete", wt.BranchShort))
		} else {
			result.BranchDeleted = true
		}
	}
	return result, nil
}

func (m *Manager) isDirty(ctx context.Context, wt worktree.Worktree) (bool, error) {
	if wt.Prunable {
		return false, nil
	}
	n, err := m.backend.DirtyCount(ctx, wt.Path)
	if err != nil {
		logger.WithComponent("lifecycle").Warn("dirty check failed", "path", wt.Path, "error", err)
		return false, err
	}
	return n > 0, nil
}
