package doctor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workty/git-workty/internal/exec"
	"github.com/workty/git-workty/internal/git"
	"github.com/workty/git-workty/internal/git/gittest"
	"github.com/workty/git-workty/internal/ui"
)

func newRepo(t *testing.T) *gittest.Fake {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := git.Canonical(t.TempDir())
	return &gittest.Fake{
		Root:      root,
		CommonDir: filepath.Join(root, ".git"),
		Worktrees: []gittest.Worktree{{Path: root, Branch: "main"}},
		Remotes:   map[string]string{"origin": "git@github.com:acme/widgets.git"},
	}
}

func find(r Report, prefix string) (Check, bool) {
	for _, c := range r.Checks {
		if strings.HasPrefix(c.Name, prefix) {
			return c, true
		}
	}
	return Check{}, false
}

func TestRun_AllGood(t *testing.T) {
	fake := newRepo(t)
	mock := exec.NewMockExecutor()
	mock.AddExactMatch("git", []string{"--version"}, exec.MockResponse{Stdout: []byte("git version 2.45.0\n")})

	report := New(mock, fake, fake.Root).Run(context.Background())
	require.True(t, report.OK())

	c, ok := find(report, "Git installed")
	require.True(t, ok)
	assert.Equal(t, []string{"git version 2.45.0"}, c.Details)

	c, ok = find(report, "Inside Git repository")
	require.True(t, ok)
	assert.Contains(t, c.Details, "Repository root: "+fake.Root)

	c, ok = find(report, "Can list worktrees")
	require.True(t, ok)
	assert.Equal(t, []string{"Found 1 worktree(s)"}, c.Details)

	c, ok = find(report, "Config readable")
	require.True(t, ok)
	assert.Contains(t, c.Details, "Using default config (no workty.toml found)")
	assert.Contains(t, c.Details, "Base branch: main")

	c, ok = find(report, "origin is on GitHub")
	require.True(t, ok)
	assert.Equal(t, []string{"acme/widgets"}, c.Details)
}

func TestRun_GitMissingStopsEarly(t *testing.T) {
	fake := newRepo(t)
	mock := exec.NewMockExecutor()
	mock.SetMissing("git")

	report := New(mock, fake, fake.Root).Run(context.Background())
	assert.False(t, report.OK())
	_, ok := find(report, "Inside Git repository")
	assert.False(t, ok)
	assert.Zero(t, fake.Calls)
}

func TestRun_OutsideRepository(t *testing.T) {
	fake := newRepo(t)
	report := New(exec.NewMockExecutor(), fake, t.TempDir()).Run(context.Background())

	assert.False(t, report.OK())
	c, ok := find(report, "Inside Git repository")
	require.True(t, ok)
	assert.Equal(t, StatusFail, c.Status)
	assert.NotEmpty(t, c.Hint)
	_, ok = find(report, "Can list worktrees")
	assert.False(t, ok)
}

func TestRun_PrunableIsAWarning(t *testing.T) {
	fake := newRepo(t)
	fake.Worktrees = append(fake.Worktrees, gittest.Worktree{Path: "/gone/wt", Branch: "old", Prunable: true})

	report := New(exec.NewMockExecutor(), fake, fake.Root).Run(context.Background())
	assert.True(t, report.OK())
	c, ok := find(report, "1 prunable worktree(s) found")
	require.True(t, ok)
	assert.Equal(t, StatusWarn, c.Status)
	assert.Contains(t, c.Hint, "git worktree prune")
}

func TestRun_BrokenConfigFails(t *testing.T) {
	fake := newRepo(t)
	require.NoError(t, os.MkdirAll(fake.CommonDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(fake.CommonDir, "workty.toml"), []byte("base = [unterminated"), 0o644))

	report := New(exec.NewMockExecutor(), fake, fake.Root).Run(context.Background())
	assert.False(t, report.OK())
	c, ok := find(report, "Config readable")
	require.True(t, ok)
	assert.Equal(t, StatusFail, c.Status)
}

func TestRun_GitHubOptional(t *testing.T) {
	fake := newRepo(t)
	mock := exec.NewMockExecutor()
	mock.SetMissing("gh")

	report := New(mock, fake, fake.Root).Run(context.Background())
	assert.True(t, report.OK())
	c, ok := find(report, "GitHub CLI (gh) not installed")
	require.True(t, ok)
	assert.Equal(t, StatusSkip, c.Status)
	_, ok = find(report, "origin is on GitHub")
	assert.False(t, ok)
}

func TestRun_GitHubNotAuthenticated(t *testing.T) {
	fake := newRepo(t)
	fake.Remotes = map[string]string{"origin": "https://gitlab.com/acme/widgets.git"}
	mock := exec.NewMockExecutor()
	mock.AddExactMatch("gh", []string{"auth", "status"}, exec.MockResponse{Err: &exec.ExitStatusError{Code: 1}})

	report := New(mock, fake, fake.Root).Run(context.Background())
	c, ok := find(report, "GitHub CLI not authenticated")
	require.True(t, ok)
	assert.Equal(t, StatusWarn, c.Status)

	c, ok = find(report, "origin is not a GitHub repository")
	require.True(t, ok)
	assert.Equal(t, StatusSkip, c.Status)
}

func TestFormat(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "Git installed", Status: StatusOK, Details: []string{"git version 2.45.0"}},
		{Name: "Inside Git repository", Status: StatusFail, Hint: "Run this command from inside a Git repository."},
	}}
	got := Format(report, true, ui.NewStyles(&bytes.Buffer{}, false))
	want := "+ Git installed\n" +
		"  git version 2.45.0\n" +
		"x Inside Git repository\n" +
		"  hint: Run this command from inside a Git repository.\n" +
		"\n" +
		"Some checks failed. See hints above.\n"
	assert.Equal(t, want, got)
}
