// Package worktree models the worktrees attached to a repository.
package worktree

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/workty/git-workty/internal/git"
)

var ErrNotFound = errors.New("worktree not found")

// Worktree is one checkout directory bound to the repository.
type Worktree struct {
	Path string
	Head string
	// Branch is the full ref, empty when detached.
	Branch      string
	BranchShort string
	Detached    bool
	Locked      bool
	Prunable    bool
}

// Name is the display name: the short branch, else the directory name.
func (w Worktree) Name() string {
	if w.BranchShort != "" {
		return w.BranchShort
	}
	if base := filepath.Base(w.Path); base != "." && base != string(filepath.Separator) {
		return base
	}
	return "unknown"
}

// DirName is the final path segment.
func (w Worktree) DirName() string {
	return filepath.Base(w.Path)
}

// IsMain reports whether w is the repository's main checkout.
func (w Worktree) IsMain(repo git.Repo) bool {
	return w.Path == repo.Root
}

type record struct {
	path     string
	hasPath  bool
	head     string
	branch   string
	detached bool
	locked   bool
	prunable bool
	bare     bool
}

func (r record) build() (Worktree, bool) {
	if !r.hasPath || r.bare {
		return Worktree{}, false
	}
	return Worktree{
		Path:        r.path,
		Head:        r.head,
		Branch:      r.branch,
		BranchShort: shortBranch(r.branch),
		Detached:    r.detached,
		Locked:      r.locked,
		Prunable:    r.prunable,
	}, true
}

func shortBranch(ref string) string {
	name := plumbing.ReferenceName(ref)
	if name.IsBranch() {
		return name.Short()
	}
	return ref
}

// Parse reads `git worktree list --porcelain` output. Records without a
// worktree line and bare entries are dropped; unknown keys are ignored.
func Parse(output string) []Worktree {
	var worktrees []Worktree
	var current *record

	flush := func() {
		if current == nil {
			return
		}
		if wt, ok := current.build(); ok {
			worktrees = append(worktrees, wt)
		}
		current = nil
	}

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			flush()
			continue
		}
		if current == nil {
			current = &record{}
		}
		key, value, _ := strings.Cut(line, " ")
		switch key {
		case "worktree":
			current.path = value
			current.hasPath = value != ""
		case "HEAD":
			current.head = value
		case "branch":
			current.branch = value
		case "detached":
			current.detached = true
		case "locked":
			current.locked = true
		case "prunable":
			current.prunable = true
		case "bare":
			current.bare = true
		}
	}
	flush()
	return worktrees
}

// List returns the repository's worktrees with canonical paths.
func List(ctx context.Context, backend git.Backend, repo git.Repo) ([]Worktree, error) {
	out, err := backend.ListWorktrees(ctx, repo.Root)
	if err != nil {
		return nil, err
	}
	worktrees := Parse(out)
	for i := range worktrees {
		worktrees[i].Path = git.Canonical(worktrees[i].Path)
	}
	return worktrees, nil
}

// Find looks name up by short branch first, then by directory name.
// Only exact matches count.
func Find(worktrees []Worktree, name string) (Worktree, bool) {
	for _, wt := range worktrees {
		if wt.BranchShort != "" && wt.BranchShort == name {
			return wt, true
		}
	}
	for _, wt := range worktrees {
		if wt.DirName() == name {
			return wt, true
		}
	}
	return Worktree{}, false
}

// FindByBranch returns the worktree that has branch checked out.
func FindByBranch(worktrees []Worktree, branch string) (Worktree, bool) {
	for _, wt := range worktrees {
		if wt.BranchShort != "" && wt.BranchShort == branch {
			return wt, true
		}
	}
	return Worktree{}, false
}

// Slugify turns a branch name into a single filesystem-safe path segment.
func Slugify(branch string) string {
	var b strings.Builder
	b.Grow(len(branch))
	for _, r := range branch {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
