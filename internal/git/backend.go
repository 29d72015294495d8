package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/workty/git-workty/internal/exec"
	"github.com/workty/git-workty/internal/logger"
)

// Backend is everything the worktree tooling needs from version control.
type Backend interface {
	Available() error
	Version(ctx context.Context) (string, error)
	RepoPaths(ctx context.Context, dir string) (root, commonDir string, err error)
	ListWorktrees(ctx context.Context, dir string) (string, error)
	DirtyCount(ctx context.Context, path string) (int, error)
	Upstream(ctx context.Context, dir, branch string) (*Upstream, error)
	AheadBehind(ctx context.Context, dir, local, upstream string) (ahead, behind int, err error)
	LastCommitTime(ctx context.Context, dir, ref string) (time.Time, error)
	IsAncestor(ctx context.Context, dir, ancestor, descendant string) (bool, error)
	BranchExists(ctx context.Context, dir, branch string) (bool, error)
	DefaultBranch(ctx context.Context, dir string) string
	AddWorktree(ctx context.Context, dir string, opts AddOptions) error
	RemoveWorktree(ctx context.Context, dir, path string, force bool) error
	DeleteBranch(ctx context.Context, dir, branch string, force bool) error
	Fetch(ctx context.Context, dir, remote, ref string) error
	Push(ctx context.Context, dir, remote, branch string, setUpstream bool) error
	RemoteURL(ctx context.Context, dir, remote string) (string, error)
}

// Upstream describes a branch's configured remote-tracking reference.
type Upstream struct {
	Ref       string // refs/remotes/origin/main
	Short     string // origin/main
	Remote    string // origin
	RemoteRef string // refs/heads/main
	Gone      bool   // configured, but the tracking ref no longer exists
}

// AddOptions describes a `git worktree add` invocation.
type AddOptions struct {
	Path   string
	Branch string
	// NewBranch creates Branch from Base instead of checking it out.
	NewBranch bool
	Base      string
	Detach    bool
}

// CLI implements Backend by running the git binary.
type CLI struct {
	executor exec.CommandExecutor
	bin      string
}

// NewCLI returns a backend that runs git through executor.
func NewCLI(executor exec.CommandExecutor) *CLI {
	return &CLI{executor: executor, bin: "git"}
}

// Run executes git in dir and returns trimmed stdout.
func (g *CLI) Run(ctx context.Context, dir string, args ...string) (string, error) {
	out, err := g.executor.Output(ctx, dir, g.bin, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (g *CLI) Available() error {
	if _, err := g.executor.LookPath(g.bin); err != nil {
		return ErrBackendUnavailable
	}
	return nil
}

func (g *CLI) Version(ctx context.Context) (string, error) {
	out, err := g.Run(ctx, "", "--version")
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(out, "git version "), nil
}

func (g *CLI) RepoPaths(ctx context.Context, dir string) (string, string, error) {
	if err := g.Available(); err != nil {
		return "", "", err
	}
	out, err := g.Run(ctx, dir, "rev-parse", "--show-toplevel", "--git-common-dir")
	if err != nil {
		return "", "", wrapNotRepo(err)
	}
	lines := strings.Split(out, "\n")
	if len(lines) != 2 || strings.TrimSpace(lines[0]) == "" {
		return "", "", fmt.Errorf("%w: unexpected rev-parse output %q", ErrNotARepository, out)
	}
	return strings.TrimSpace(lines[0]), strings.TrimSpace(lines[1]), nil
}

func (g *CLI) ListWorktrees(ctx context.Context, dir string) (string, error) {
	out, err := g.executor.Output(ctx, dir, g.bin, "worktree", "list", "--porcelain")
	if err != nil {
		return "", fmt.Errorf("list worktrees: %w", err)
	}
	return string(out), nil
}

func (g *CLI) DirtyCount(ctx context.Context, path string) (int, error) {
	out, err := g.executor.Output(ctx, path, g.bin,
		"status", "--porcelain", "--untracked-files=all", "--ignore-submodules=all")
	if err != nil {
		return 0, err
	}
	count := 0
	for _, line := range strings.Split(string(out), "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count, nil
}

const upstreamFormat = "%(upstream)%09%(upstream:short)%09%(upstream:track)%09%(upstream:remotename)%09%(upstream:remoteref)"

// Upstream returns nil when branch has no upstream configured.
func (g *CLI) Upstream(ctx context.Context, dir, branch string) (*Upstream, error) {
	ref := plumbing.NewBranchReferenceName(branch)
	out, err := g.Run(ctx, dir, "for-each-ref", "--format="+upstreamFormat, ref.String())
	if err != nil {
		return nil, err
	}
	return parseUpstream(out), nil
}

func parseUpstream(line string) *Upstream {
	fields := strings.Split(line, "\t")
	if len(fields) == 0 || strings.TrimSpace(fields[0]) == "" {
		return nil
	}
	for len(fields) < 5 {
		fields = append(fields, "")
	}
	return &Upstream{
		Ref:       fields[0],
		Short:     fields[1],
		Gone:      strings.TrimSpace(fields[2]) == "[gone]",
		Remote:    fields[3],
		RemoteRef: fields[4],
	}
}

func (g *CLI) AheadBehind(ctx context.Context, dir, local, upstream string) (int, int, error) {
	out, err := g.Run(ctx, dir, "rev-list", "--left-right", "--count", local+"..."+upstream)
	if err != nil {
		return 0, 0, err
	}
	return parseLeftRight(out)
}

func parseLeftRight(out string) (int, int, error) {
	parts := strings.Fields(out)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("unexpected rev-list output: %q", out)
	}
	ahead, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("parse ahead count: %w", err)
	}
	behind, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("parse behind count: %w", err)
	}
	return ahead, behind, nil
}

func (g *CLI) LastCommitTime(ctx context.Context, dir, ref string) (time.Time, error) {
	out, err := g.Run(ctx, dir, "log", "-1", "--format=%ct", ref, "--")
	if err != nil {
		return time.Time{}, err
	}
	secs, err := strconv.ParseInt(out, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse commit time %q: %w", out, err)
	}
	return time.Unix(secs, 0), nil
}

func (g *CLI) IsAncestor(ctx context.Context, dir, ancestor, descendant string) (bool, error) {
	_, err := g.Run(ctx, dir, "merge-base", "--is-ancestor", ancestor, descendant)
	if err == nil {
		return true, nil
	}
	if exec.ExitCode(err) == 1 {
		return false, nil
	}
	return false, fmt.Errorf("check ancestry of %s in %s: %w", ancestor, descendant, err)
}

func (g *CLI) BranchExists(ctx context.Context, dir, branch string) (bool, error) {
	ref := plumbing.NewBranchReferenceName(branch)
	_, err := g.Run(ctx, dir, "rev-parse", "--verify", "--quiet", ref.String())
	if err == nil {
		return true, nil
	}
	if exec.ExitCode(err) == 1 {
		return false, nil
	}
	return false, err
}

// DefaultBranch guesses the repository's main line: origin/HEAD, else "main".
func (g *CLI) DefaultBranch(ctx context.Context, dir string) string {
	ref, err := g.Run(ctx, dir, "symbolic-ref", "--quiet", "refs/remotes/origin/HEAD")
	if err == nil && ref != "" {
		name := plumbing.ReferenceName(ref)
		if name.IsRemote() {
			short := name.Short()
			if _, branch, ok := strings.Cut(short, "/"); ok && branch != "" {
				return branch
			}
		}
	}
	return "main"
}

func (g *CLI) AddWorktree(ctx context.Context, dir string, opts AddOptions) error {
	args := []string{"worktree", "add"}
	switch {
	case opts.Detach:
		args = append(args, "--detach", opts.Path)
		if opts.Base != "" {
			args = append(args, opts.Base)
		}
	case opts.NewBranch:
		args = append(args, "-b", opts.Branch, opts.Path, opts.Base)
	default:
		args = append(args, opts.Path, opts.Branch)
	}
	if _, err := g.Run(ctx, dir, args...); err != nil {
		return fmt.Errorf("create worktree: %w", err)
	}
	logger.WithComponent("git").Info("worktree added", "path", opts.Path, "branch", opts.Branch, "base", opts.Base, "detach", opts.Detach)
	return nil
}

func (g *CLI) RemoveWorktree(ctx context.Context, dir, path string, force bool) error {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, path)
	if _, err := g.Run(ctx, dir, args...); err != nil {
		return fmt.Errorf("remove worktree: %w", err)
	}
	logger.WithComponent("git").Info("worktree removed", "path", path, "force", force)
	return nil
}

func (g *CLI) DeleteBranch(ctx context.Context, dir, branch string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	if _, err := g.Run(ctx, dir, "branch", flag, branch); err != nil {
		return fmt.Errorf("delete branch %s: %w", branch, err)
	}
	logger.WithComponent("git").Info("branch deleted", "branch", branch, "force", force)
	return nil
}

func (g *CLI) Fetch(ctx context.Context, dir, remote, ref string) error {
	args := []string{"fetch", "--quiet", remote}
	if ref != "" {
		args = append(args, ref)
	}
	if _, err := g.Run(ctx, dir, args...); err != nil {
		return fmt.Errorf("fetch %s: %w", remote, err)
	}
	return nil
}

func (g *CLI) Push(ctx context.Context, dir, remote, branch string, setUpstream bool) error {
	args := []string{"push", "--quiet"}
	if setUpstream {
		args = append(args, "--set-upstream")
	}
	args = append(args, remote, branch)
	if _, err := g.Run(ctx, dir, args...); err != nil {
		return fmt.Errorf("push %s to %s: %w", branch, remote, err)
	}
	logger.WithComponent("git").Info("branch pushed", "branch", branch, "remote", remote)
	return nil
}

func (g *CLI) RemoteURL(ctx context.Context, dir, remote string) (string, error) {
	return g.Run(ctx, dir, "remote", "get-url", remote)
}

var _ Backend = (*CLI)(nil)
