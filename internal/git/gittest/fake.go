// Package gittest provides an in-memory git.Backend for tests.
package gittest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/workty/git-workty/internal/git"
)

// Worktree is one entry in the fake's worktree list.
type Worktree struct {
	Path     string
	Head     string
	Branch   string // short name, empty when detached
	Locked   bool
	Prunable bool
}

// Fake is a scriptable git.Backend. Zero-value maps are fine; every method
// is safe for concurrent use.
type Fake struct {
	mu sync.Mutex

	Root      string
	CommonDir string
	Missing   bool

	Worktrees     []Worktree
	Branches      map[string]bool
	Default       string
	Dirty         map[string]int           // by worktree path
	DirtyErr      map[string]error         // by worktree path
	Upstreams     map[string]*git.Upstream // by branch
	Divergence    map[string][2]int        // by branch: ahead, behind
	DivergenceErr map[string]error         // by branch
	LastCommit    map[string]time.Time     // by worktree path
	Merged        map[string]bool          // branch is an ancestor of the base
	AddErr        error
	RemoveErr     map[string]error // by path
	DeleteErr     map[string]error // by branch
	FetchErr      error
	PushErr       error
	Remotes       map[string]string

	Added   []git.AddOptions
	Removed []string
	Deleted []string
	Fetched []string
	Pushed  []string
	Calls   int
}

func (f *Fake) call() {
	f.mu.Lock()
	f.Calls++
	f.mu.Unlock()
}

func (f *Fake) Available() error {
	if f.Missing {
		return git.ErrBackendUnavailable
	}
	return nil
}

func (f *Fake) Version(context.Context) (string, error) {
	return "2.45.0", f.Available()
}

func (f *Fake) RepoPaths(_ context.Context, dir string) (string, string, error) {
	f.call()
	if err := f.Available(); err != nil {
		return "", "", err
	}
	if f.Root == "" {
		return "", "", git.ErrNotARepository
	}
	toplevel := f.toplevel(dir)
	if toplevel == "" {
		return "", "", git.ErrNotARepository
	}
	return toplevel, f.CommonDir, nil
}

// toplevel mirrors `git rev-parse --show-toplevel`: the innermost worktree
// holding dir.
func (f *Fake) toplevel(dir string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best string
	if git.Contains(f.Root, dir) {
		best = f.Root
	}
	for _, wt := range f.Worktrees {
		if git.Contains(wt.Path, dir) && len(wt.Path) > len(best) {
			best = wt.Path
		}
	}
	return best
}

func (f *Fake) ListWorktrees(context.Context, string) (string, error) {
	f.call()
	f.mu.Lock()
	defer f.mu.Unlock()
	var b strings.Builder
	for _, wt := range f.Worktrees {
		fmt.Fprintf(&b, "worktree %s\n", wt.Path)
		head := wt.Head
		if head == "" {
			head = "0000000000000000000000000000000000000000"
		}
		fmt.Fprintf(&b, "HEAD %s\n", head)
		if wt.Branch == "" {
			b.WriteString("detached\n")
		} else {
			fmt.Fprintf(&b, "branch refs/heads/%s\n", wt.Branch)
		}
		if wt.Locked {
			b.WriteString("locked\n")
		}
		if wt.Prunable {
			b.WriteString("prunable gitdir file points to non-existent location\n")
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

func (f *Fake) DirtyCount(_ context.Context, path string) (int, error) {
	f.call()
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.DirtyErr[path]; err != nil {
		return 0, err
	}
	return f.Dirty[path], nil
}

func (f *Fake) Upstream(_ context.Context, _ string, branch string) (*git.Upstream, error) {
	f.call()
	f.mu.Lock()
	defer f.mu.Unlock()
	up := f.Upstreams[branch]
	if up == nil {
		return nil, nil
	}
	cp := *up
	return &cp, nil
}

func (f *Fake) AheadBehind(_ context.Context, _ string, local, _ string) (int, int, error) {
	f.call()
	f.mu.Lock()
	defer f.mu.Unlock()
	branch := strings.TrimPrefix(local, "refs/heads/")
	if err := f.DivergenceErr[branch]; err != nil {
		return 0, 0, err
	}
	d := f.Divergence[branch]
	return d[0], d[1], nil
}

func (f *Fake) LastCommitTime(_ context.Context, dir, _ string) (time.Time, error) {
	f.call()
	f.mu.Lock()
	defer f.mu.Unlock()
	ts, ok := f.LastCommit[dir]
	if !ok {
		return time.Time{}, errors.New("no commit time recorded")
	}
	return ts, nil
}

func (f *Fake) IsAncestor(_ context.Context, _ string, ancestor, _ string) (bool, error) {
	f.call()
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Merged[strings.TrimPrefix(ancestor, "refs/heads/")], nil
}

func (f *Fake) BranchExists(_ context.Context, _ string, branch string) (bool, error) {
	f.call()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Branches[branch] {
		return true, nil
	}
	for _, wt := range f.Worktrees {
		if wt.Branch == branch {
			return true, nil
		}
	}
	return false, nil
}

func (f *Fake) DefaultBranch(context.Context, string) string {
	if f.Default == "" {
		return "main"
	}
	return f.Default
}

// AddWorktree records opts, creates the directory and lists the new worktree.
func (f *Fake) AddWorktree(_ context.Context, _ string, opts git.AddOptions) error {
	f.call()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AddErr != nil {
		return f.AddErr
	}
	f.Added = append(f.Added, opts)
	if err := os.MkdirAll(opts.Path, 0o755); err != nil {
		return err
	}
	branch := opts.Branch
	if opts.Detach {
		branch = ""
	}
	if opts.NewBranch {
		if f.Branches == nil {
			f.Branches = make(map[string]bool)
		}
		f.Branches[opts.Branch] = true
	}
	f.Worktrees = append(f.Worktrees, Worktree{Path: opts.Path, Branch: branch})
	return nil
}

func (f *Fake) RemoveWorktree(_ context.Context, _ string, path string, _ bool) error {
	f.call()
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.RemoveErr[path]; err != nil {
		return err
	}
	f.Removed = append(f.Removed, path)
	kept := f.Worktrees[:0]
	for _, wt := range f.Worktrees {
		if wt.Path != path {
			kept = append(kept, wt)
		}
	}
	f.Worktrees = kept
	return nil
}

func (f *Fake) DeleteBranch(_ context.Context, _ string, branch string, _ bool) error {
	f.call()
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.DeleteErr[branch]; err != nil {
		return err
	}
	f.Deleted = append(f.Deleted, branch)
	delete(f.Branches, branch)
	return nil
}

func (f *Fake) Fetch(_ context.Context, _ string, remote, ref string) error {
	f.call()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FetchErr != nil {
		return f.FetchErr
	}
	f.Fetched = append(f.Fetched, remote+" "+ref)
	return nil
}

func (f *Fake) Push(_ context.Context, _ string, remote, branch string, _ bool) error {
	f.call()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PushErr != nil {
		return f.PushErr
	}
	f.Pushed = append(f.Pushed, remote+" "+branch)
	return nil
}

func (f *Fake) RemoteURL(_ context.Context, _ string, remote string) (string, error) {
	f.call()
	if url, ok := f.Remotes[remote]; ok {
		return url, nil
	}
	return "", fmt.Errorf("error: No such remote '%s'", remote)
}

var _ git.Backend = (*Fake)(nil)
