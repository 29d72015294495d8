// Package gh talks to GitHub through the gh CLI.
package gh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/workty/git-workty/internal/exec"
	"github.com/workty/git-workty/internal/logger"
)

var (
	ErrNotInstalled     = errors.New("GitHub CLI (gh) is not installed")
	ErrNotAuthenticated = errors.New("GitHub CLI is not authenticated")
	ErrNotGitHub        = errors.New("origin is not a GitHub remote")
)

const resolveTimeout = 8 * time.Second

type Client struct {
	executor exec.CommandExecutor
	bin      string
}

func NewClient(executor exec.CommandExecutor) *Client {
	return &Client{executor: executor, bin: "gh"}
}

func (c *Client) Installed() bool {
	_, err := c.executor.LookPath(c.bin)
	return err == nil
}

func (c *Client) Authenticated(ctx context.Context) bool {
	_, _, err := c.executor.Run(ctx, "", c.bin, "auth", "status")
	return err == nil
}

// Ready fails unless gh is installed and logged in.
func (c *Client) Ready(ctx context.Context) error {
	if !c.Installed() {
		return ErrNotInstalled
	}
	if !c.Authenticated(ctx) {
		return ErrNotAuthenticated
	}
	return nil
}

type prBranchResult struct {
	HeadRefName string `json:"headRefName"`
	State       string `json:"state"`
}

// Branch resolves pull request number to its head branch.
func (c *Client) Branch(ctx context.Context, dir string, number int) (string, error) {
	if number <= 0 {
		return "", errors.New("pull request number required")
	}
	ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	out, err := c.executor.Output(ctx, dir, c.bin, "pr", "view", strconv.Itoa(number), "--json", "headRefName,state")
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("resolving PR #%d timed out after %s", number, resolveTimeout.Round(time.Second))
		}
		return "", fmt.Errorf("failed to resolve PR #%d: %w", number, err)
	}
	var result prBranchResult
	if err := json.Unmarshal(out, &result); err != nil {
		return "", fmt.Errorf("failed to parse PR #%d details: %w", number, err)
	}
	branch := strings.TrimSpace(result.HeadRefName)
	if branch == "" {
		return "", fmt.Errorf("PR #%d has no head branch", number)
	}
	logger.WithComponent("gh").Debug("resolved pull request", "number", number, "branch", branch, "state", result.State)
	return branch, nil
}

// Checkout runs `gh pr checkout` inside dir.
func (c *Client) Checkout(ctx context.Context, dir string, number int) error {
	if _, err := c.executor.Output(ctx, dir, c.bin, "pr", "checkout", strconv.Itoa(number)); err != nil {
		return fmt.Errorf("gh pr checkout failed: %w", err)
	}
	return nil
}

// ParseRepo extracts owner and name from a GitHub remote URL in any of the
// scp, ssh or https forms.
func ParseRepo(remote string) (owner, name string, err error) {
	remote = strings.TrimSpace(remote)
	if remote == "" {
		return "", "", errors.New("origin remote missing")
	}
	ep, err := transport.NewEndpoint(remote)
	if err != nil {
		return "", "", fmt.Errorf("parse remote %q: %w", remote, err)
	}
	host := strings.ToLower(ep.Host)
	if host != "github.com" && host != "ssh.github.com" && host != "www.github.com" {
		return "", "", ErrNotGitHub
	}
	return splitOwnerRepo(ep.Path)
}

func splitOwnerRepo(p string) (string, string, error) {
	p = strings.TrimSpace(p)
	p = strings.Trim(p, "/")
	p = strings.TrimSuffix(p, ".git")
	parts := strings.Split(p, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.New("invalid github repo path")
	}
	return parts[0], path.Base(parts[1]), nil
}
