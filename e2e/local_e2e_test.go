//go:build local_e2e

package e2e

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalE2ENewFetchesAndPublishesAgainstBareOrigin(t *testing.T) {
	if strings.TrimSpace(os.Getenv("WORKTY_LOCAL_E2E")) != "1" {
		t.Skip("set WORKTY_LOCAL_E2E=1 to run local-only e2e tests")
	}

	root := canonical(t, t.TempDir())
	originBare := filepath.Join(root, "origin.git")
	seed := filepath.Join(root, "seed")
	clone := filepath.Join(root, "clone")

	runCmd(t, root, nil, "git", "init", "--bare", originBare)
	initRepo(t, seed)
	runCmd(t, seed, nil, "git", "remote", "add", "origin", originBare)
	runCmd(t, seed, nil, "git", "push", "-u", "origin", "main")

	runCmd(t, root, nil, "git", "clone", originBare, clone)
	runCmd(t, clone, nil, "git", "config", "user.email", "local-e2e@example.test")
	runCmd(t, clone, nil, "git", "config", "user.name", "Workty Local E2E")

	repo := testRepo{root: clone, wtRoot: filepath.Join(root, "workspaces"), home: filepath.Join(root, "home")}
	env := testEnv(repo)
	env["WORKTY_FETCH_BASE"] = "true"

	branch := "feature/local-e2e"
	result := runWorkty(t, clone, env, "new", branch, "--push", "--print-path")
	if result.err != nil {
		t.Fatalf("local e2e new failed: %v\n%s", result.err, result.out())
	}
	path := strings.TrimSpace(result.stdout)
	if got := currentBranch(t, path); got != branch {
		t.Fatalf("expected %q checked out, got %q", branch, got)
	}
	assertContains(t, result.stderr, "from 'origin/main'")
	upstream := runCmd(t, path, nil, "git", "rev-parse", "--abbrev-ref", "@{upstream}")
	if upstream != "origin/"+branch {
		t.Fatalf("expected upstream origin/%s, got %q", branch, upstream)
	}
	runCmd(t, originBare, nil, "git", "show-ref", "--verify", "refs/heads/"+branch)
}
