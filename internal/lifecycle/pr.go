package lifecycle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/workty/git-workty/internal/git"
	"github.com/workty/git-workty/internal/logger"
	"github.com/workty/git-workty/internal/worktree"
)

// PullRequests resolves and checks out pull requests.
type PullRequests interface {
	Ready(ctx context.Context) error
	Branch(ctx context.Context, dir string, number int) (string, error)
	Checkout(ctx context.Context, dir string, number int) error
}

type PRResult struct {
	Path     string
	Branch   string
	Existing bool
}

// PRWorktreeName is the worktree name used for pull request number.
func PRWorktreeName(number int) string {
	return "pr-" + strconv.Itoa(number)
}

// CreatePR checks out pull request number into its own detached worktree,
// reusing one that already exists.
func (m *Manager) CreatePR(ctx context.Context, prs PullRequests, number int) (PRResult, error) {
	if number <= 0 {
		return PRResult{}, fmt.Errorf("invalid pull request number %d", number)
	}
	if err := prs.Ready(ctx); err != nil {
		return PRResult{}, err
	}

	name := PRWorktreeName(number)
	worktrees, err := worktree.List(ctx, m.backend, m.repo)
	if err != nil {
		return PRResult{}, err
	}
	if existing, ok := worktree.Find(worktrees, name); ok {
		return PRResult{Path: existing.Path, Branch: existing.BranchShort, Existing: true}, nil
	}

	branch, err := prs.Branch(ctx, m.repo.Root, number)
	if err != nil {
		return PRResult{}, err
	}

	target := m.cfg.WorktreePath(m.repo, worktree.Slugify(name))
	exists, err := pathExists(target)
	if err != nil {
		return PRResult{}, err
	}
	if exists {
		return PRResult{}, &Error{
			Err:  ErrPathExists,
			Msg:  fmt.Sprintf("directory already exists: %s", target),
			Hint: "remove the existing directory or pick a different workspace root",
			Path: target,
		}
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return PRResult{}, fmt.Errorf("create parent directory: %w", err)
	}

	if err := m.backend.AddWorktree(ctx, m.repo.Root, git.AddOptions{Path: target, Detach: true}); err != nil {
		return PRResult{}, err
	}
	if err := prs.Checkout(ctx, target, number); err != nil {
		return PRResult{}, &Error{
			Err:  err,
			Msg:  fmt.Sprintf("checkout of PR #%d failed: %v", number, err),
			Hint: fmt.Sprintf("the worktree was left at %s; remove it with `git workty rm %s --force`", target, name),
			Path: target,
		}
	}
	logger.WithComponent("lifecycle").Info("pull request worktree created", "number", number, "branch", branch, "path", target)
	return PRResult{Path: target, Branch: branch}, nil
}
