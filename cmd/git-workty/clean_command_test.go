package main

import (
	"strings"
	"testing"
	"time"
)

// cleanScenario sets up main, a merged feat/x and an unmerged dirty feat/y.
func cleanScenario(t *testing.T) (*testEnv, string, string) {
	t.Helper()
	env := newTestEnv(t)
	x := env.addWorktree(t, "feat/x")
	y := env.addWorktree(t, "feat/y")
	env.git.Merged = map[string]bool{"feat/x": true}
	env.git.Dirty = map[string]int{y: 1}
	return env, x, y
}

func TestCleanMergedRemovesMergedWorktree(t *testing.T) {
	env, x, _ := cleanScenario(t)

	if code := env.run("clean", "--merged", "--yes"); code != exitOK {
		t.Fatalf("expected exit 0, got %d (stderr %q)", code, env.stderr.String())
	}
	if len(env.git.Removed) != 1 || env.git.Removed[0] != x {
		t.Fatalf("expected only %s removed, got %v", x, env.git.Removed)
	}
	msg := env.stderr.String()
	if !strings.Contains(msg, "Removed worktree 'feat/x'") || !strings.Contains(msg, "Cleaned up 1 worktree(s).") {
		t.Fatalf("unexpected stderr %q", msg)
	}
}

func TestCleanWithoutFilterRemovesNothing(t *testing.T) {
	env, _, _ := cleanScenario(t)

	if code := env.run("clean", "--yes"); code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if len(env.git.Removed) != 0 {
		t.Fatalf("expected nothing removed, got %v", env.git.Removed)
	}
	if !strings.Contains(env.stderr.String(), "No worktrees to clean up.") {
		t.Fatalf("unexpected stderr %q", env.stderr.String())
	}
}

func TestCleanDryRun(t *testing.T) {
	env, _, _ := cleanScenario(t)

	if code := env.run("clean", "--merged", "-n"); code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if len(env.git.Removed) != 0 {
		t.Fatalf("expected nothing removed, got %v", env.git.Removed)
	}
	msg := env.stderr.String()
	if !strings.Contains(msg, "feat/x  [merged]") || !strings.Contains(msg, "Dry run") {
		t.Fatalf("unexpected stderr %q", msg)
	}
}

func TestCleanSkipsDirtyCandidates(t *testing.T) {
	env, x, y := cleanScenario(t)
	env.git.Merged["feat/y"] = true

	if code := env.run("clean", "--merged", "--yes"); code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if len(env.git.Removed) != 1 || env.git.Removed[0] != x {
		t.Fatalf("expected only %s removed, got %v", x, env.git.Removed)
	}
	for _, p := range env.git.Removed {
		if p == y {
			t.Fatalf("dirty worktree %s was removed", y)
		}
	}
	if !strings.Contains(env.stderr.String(), "1 worktree(s) have uncommitted changes and will be skipped.") {
		t.Fatalf("unexpected stderr %q", env.stderr.String())
	}
}

func TestCleanRequiresYesWhenNotInteractive(t *testing.T) {
	env, _, _ := cleanScenario(t)

	if code := env.run("clean", "--merged"); code != exitFailure {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if len(env.git.Removed) != 0 {
		t.Fatalf("expected nothing removed, got %v", env.git.Removed)
	}
}

func TestCleanStaleDefaultsToConfig(t *testing.T) {
	env := newTestEnv(t)
	old := env.addWorktree(t, "feat/old")
	recent := env.addWorktree(t, "feat/recent")
	env.git.LastCommit = map[string]time.Time{
		old:    testNow.Add(-45 * 24 * time.Hour),
		recent: testNow.Add(-2 * 24 * time.Hour),
	}

	if code := env.run("clean", "--stale", "--dry-run"); code != exitOK {
		t.Fatalf("expected exit 0, got %d (stderr %q)", code, env.stderr.String())
	}
	msg := env.stderr.String()
	if !strings.Contains(msg, "feat/old  [stale]") {
		t.Fatalf("expected feat/old listed, got %q", msg)
	}
	if strings.Contains(msg, "feat/recent") {
		t.Fatalf("did not expect feat/recent listed, got %q", msg)
	}

	env.stderr.Reset()
	if code := env.run("clean", "--stale=1", "--dry-run"); code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(env.stderr.String(), "feat/recent  [stale]") {
		t.Fatalf("expected feat/recent with --stale=1, got %q", env.stderr.String())
	}
}

func TestCleanFromLinkedWorktreeKeepsMain(t *testing.T) {
	env := newTestEnv(t)
	feat := env.addWorktree(t, "feat/x")
	old := env.addWorktree(t, "feat/old")
	env.git.LastCommit = map[string]time.Time{
		env.root: testNow.Add(-400 * 24 * time.Hour),
		feat:     testNow.Add(-400 * 24 * time.Hour),
		old:      testNow.Add(-400 * 24 * time.Hour),
	}

	if code := env.runIn(feat, "clean", "--stale", "--yes"); code != exitOK {
		t.Fatalf("expected exit 0, got %d (stderr %q)", code, env.stderr.String())
	}
	if len(env.git.Removed) != 1 || env.git.Removed[0] != old {
		t.Fatalf("expected only %s removed, got %v", old, env.git.Removed)
	}
}
