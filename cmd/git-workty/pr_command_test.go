package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/workty/git-workty/internal/gh"
)

func TestPROnlyAcceptsNumericPositiveNumber(t *testing.T) {
	env := newTestEnv(t)

	if code := env.run("pr", "abc"); code != exitFailure {
		t.Fatalf("expected exit 1, got %d", code)
	}
	msg := env.stderr.String()
	if !strings.Contains(msg, "invalid pull request number") {
		t.Fatalf("expected invalid PR number message, got %q", msg)
	}
	if !strings.Contains(msg, "Usage:") {
		t.Fatalf("expected usage output in error, got %q", msg)
	}
}

func TestPRRequiresOneArgument(t *testing.T) {
	env := newTestEnv(t)

	if code := env.run("pr"); code != exitFailure {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(env.stderr.String(), "missing pull request number") {
		t.Fatalf("expected missing argument message, got %q", env.stderr.String())
	}
}

func TestParsePRNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "42", want: 42},
		{in: " 7 ", want: 7},
		{in: "#123", want: 123},
		{in: "0", wantErr: true},
		{in: "-3", wantErr: true},
		{in: "", wantErr: true},
		{in: "12a", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parsePRNumber(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("parsePRNumber(%q): expected error, got %d", tt.in, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("parsePRNumber(%q) = %d, %v; want %d", tt.in, got, err, tt.want)
		}
	}
}

func TestPRCreatesDetachedWorktree(t *testing.T) {
	env := newTestEnv(t)
	env.prs.branch = "contributor/fix"

	if code := env.run("pr", "7", "--print-path"); code != exitOK {
		t.Fatalf("expected exit 0, got %d (stderr %q)", code, env.stderr.String())
	}
	want := filepath.Join(env.wtRoot, "pr-7")
	if got := strings.TrimSpace(env.stdout.String()); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if len(env.git.Added) != 1 || !env.git.Added[0].Detach {
		t.Fatalf("expected detached add, got %+v", env.git.Added)
	}
	if len(env.prs.checkedOut) != 1 || env.prs.checkedOut[0] != 7 {
		t.Fatalf("expected checkout of PR 7, got %v", env.prs.checkedOut)
	}
	if !strings.Contains(env.stderr.String(), "Created worktree for PR #7 (contributor/fix)") {
		t.Fatalf("unexpected stderr %q", env.stderr.String())
	}
}

func TestPRReusesExistingWorktree(t *testing.T) {
	env := newTestEnv(t)
	existing := env.addWorktree(t, "pr-9")

	if code := env.run("pr", "9"); code != exitOK {
		t.Fatalf("expected exit 0, got %d (stderr %q)", code, env.stderr.String())
	}
	if got := strings.TrimSpace(env.stdout.String()); got != existing {
		t.Fatalf("expected %q, got %q", existing, got)
	}
	if len(env.git.Added) != 0 || len(env.prs.checkedOut) != 0 {
		t.Fatalf("expected no new worktree, got adds %+v checkouts %v", env.git.Added, env.prs.checkedOut)
	}
}

func TestPRReportsMissingGH(t *testing.T) {
	env := newTestEnv(t)
	env.prs.readyErr = gh.ErrNotInstalled

	if code := env.run("pr", "5"); code != exitFailure {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(env.stderr.String(), "hint: install the GitHub CLI") {
		t.Fatalf("unexpected stderr %q", env.stderr.String())
	}
}
