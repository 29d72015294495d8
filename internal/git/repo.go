// Package git is the source-control backend: repository discovery plus the
// worktree, branch and remote primitives, all run through the git binary.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrBackendUnavailable = errors.New("git not installed")
	ErrNotARepository     = errors.New("not in a git repository")
)

// Repo identifies one repository. Both paths are canonical and absolute.
type Repo struct {
	// Root is the main worktree, whichever worktree the command started in.
	Root      string
	CommonDir string
}

// Name is the repository directory name.
func (r Repo) Name() string {
	return filepath.Base(r.Root)
}

// Discover resolves the repository containing startDir, or the process
// working directory when startDir is empty.
func Discover(ctx context.Context, backend Backend, startDir string) (Repo, error) {
	if strings.TrimSpace(startDir) == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Repo{}, ErrNotARepository
		}
		startDir = wd
	}
	startDir, err := filepath.Abs(startDir)
	if err != nil {
		return Repo{}, ErrNotARepository
	}

	root, commonDir, err := backend.RepoPaths(ctx, startDir)
	if err != nil {
		return Repo{}, err
	}
	if !filepath.IsAbs(commonDir) {
		commonDir = filepath.Join(startDir, commonDir)
	}
	if out, err := backend.ListWorktrees(ctx, root); err == nil {
		if mainPath, ok := mainWorktree(out); ok {
			root = mainPath
		}
	}
	return Repo{
		Root:      Canonical(root),
		CommonDir: Canonical(commonDir),
	}, nil
}

// mainWorktree returns the first record of `git worktree list --porcelain`,
// which git always reports as the main worktree. A bare main has no checkout.
func mainWorktree(porcelain string) (string, bool) {
	record, _, _ := strings.Cut(strings.ReplaceAll(porcelain, "\r\n", "\n"), "\n\n")
	var path string
	for _, line := range strings.Split(record, "\n") {
		key, value, _ := strings.Cut(line, " ")
		switch key {
		case "worktree":
			path = value
		case "bare":
			return "", false
		}
	}
	return path, path != ""
}

// Canonical resolves symlinks where possible and otherwise just cleans the path.
func Canonical(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return filepath.Clean(path)
}

// SamePath compares two paths after canonicalization.
func SamePath(a, b string) bool {
	return Canonical(a) == Canonical(b)
}

// Contains reports whether path is dir or lies beneath it.
func Contains(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func wrapNotRepo(err error) error {
	return fmt.Errorf("%w: %v", ErrNotARepository, err)
}
