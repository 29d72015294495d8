package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/workty/git-workty/internal/doctor"
	"github.com/workty/git-workty/internal/exec"
)

func TestDoctorAllChecksPass(t *testing.T) {
	env := newTestEnv(t)
	env.exec.AddExactMatch("git", []string{"--version"}, exec.MockResponse{Stdout: []byte("git version 2.45.0\n")})

	if code := env.run("doctor"); code != exitOK {
		t.Fatalf("expected exit 0, got %d (stderr %q)", code, env.stderr.String())
	}
	msg := env.stderr.String()
	if !strings.Contains(msg, "git version 2.45.0") || !strings.Contains(msg, "All checks passed!") {
		t.Fatalf("unexpected report %q", msg)
	}
}

func TestDoctorFailsWithoutGit(t *testing.T) {
	env := newTestEnv(t)
	env.exec.SetMissing("git")

	if code := env.run("doctor"); code != exitFailure {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(env.stderr.String(), "Some checks failed.") {
		t.Fatalf("unexpected report %q", env.stderr.String())
	}
}

func TestDoctorJSON(t *testing.T) {
	env := newTestEnv(t)
	env.git.Remotes = map[string]string{"origin": "git@github.com:workty/git-workty.git"}

	if code := env.run("--json", "doctor"); code != exitOK {
		t.Fatalf("expected exit 0, got %d (stderr %q)", code, env.stderr.String())
	}
	var report doctor.Report
	if err := json.Unmarshal(env.stdout.Bytes(), &report); err != nil {
		t.Fatalf("decode json: %v\n%s", err, env.stdout.String())
	}
	last := report.Checks[len(report.Checks)-1]
	if last.Name != "origin is on GitHub" || last.Status != doctor.StatusOK {
		t.Fatalf("unexpected last check %+v", last)
	}
}
