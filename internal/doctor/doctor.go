// Package doctor diagnoses the environment git-workty runs in.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/workty/git-workty/internal/config"
	"github.com/workty/git-workty/internal/exec"
	"github.com/workty/git-workty/internal/gh"
	"github.com/workty/git-workty/internal/git"
	"github.com/workty/git-workty/internal/worktree"
)

// Status is the outcome of one check.
type Status string

const (
	StatusOK   Status = "ok"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
	// StatusSkip marks an optional capability that is unavailable.
	StatusSkip Status = "skip"
)

// Check is one line of the report plus indented details.
type Check struct {
	Name    string   `json:"name"`
	Status  Status   `json:"status"`
	Details []string `json:"details,omitempty"`
	Hint    string   `json:"hint,omitempty"`
}

type Report struct {
	Checks []Check `json:"checks"`
}

// OK is false when any check failed. Warnings and skips do not count.
func (r Report) OK() bool {
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			return false
		}
	}
	return true
}

func (r *Report) add(c Check) {
	r.Checks = append(r.Checks, c)
}

// Prerequisite is an external tool git-workty shells out to.
type Prerequisite struct {
	Name        string
	Required    bool
	Description string
	InstallURL  string
}

func DefaultPrerequisites() []Prerequisite {
	return []Prerequisite{
		{
			Name:        "git",
			Required:    true,
			Description: "Git",
			InstallURL:  "https://git-scm.com/downloads",
		},
		{
			Name:        "gh",
			Required:    false,
			Description: "GitHub CLI (gh)",
			InstallURL:  "https://cli.github.com",
		},
	}
}

type Doctor struct {
	Executor      exec.CommandExecutor
	Backend       git.Backend
	GH            *gh.Client
	StartDir      string
	Prerequisites []Prerequisite
}

func New(executor exec.CommandExecutor, backend git.Backend, startDir string) *Doctor {
	return &Doctor{
		Executor:      executor,
		Backend:       backend,
		GH:            gh.NewClient(executor),
		StartDir:      startDir,
		Prerequisites: DefaultPrerequisites(),
	}
}

// Run performs every check. It stops early only when later checks cannot
// mean anything, such as outside a repository.
func (d *Doctor) Run(ctx context.Context) Report {
	var report Report

	found := map[string]bool{}
	for _, p := range d.Prerequisites {
		c := d.checkTool(ctx, p)
		found[p.Name] = c.Status == StatusOK
		report.add(c)
	}
	if !found["git"] {
		return report
	}

	repo, err := git.Discover(ctx, d.Backend, d.StartDir)
	if err != nil {
		c := Check{Name: "Inside Git repository", Status: StatusFail, Hint: "Run this command from inside a Git repository."}
		if !errors.Is(err, git.ErrNotARepository) {
			c.Details = []string{err.Error()}
		}
		report.add(c)
		return report
	}
	report.add(Check{
		Name:   "Inside Git repository",
		Status: StatusOK,
		Details: []string{
			"Repository root: " + repo.Root,
			"Common dir: " + repo.CommonDir,
		},
	})

	d.checkWorktrees(ctx, &report, repo)
	d.checkConfig(ctx, &report, repo)
	if found["gh"] {
		d.checkGitHub(ctx, &report, repo)
	}
	return report
}

func (d *Doctor) checkTool(ctx context.Context, p Prerequisite) Check {
	c := Check{Name: p.Description}
	if _, err := d.Executor.LookPath(p.Name); err != nil {
		if p.Required {
			c.Name += " installed"
			c.Status = StatusFail
		} else {
			c.Name += " not installed (optional)"
			c.Status = StatusSkip
		}
		c.Hint = "Install: " + p.InstallURL
		return c
	}
	c.Name += " installed"
	c.Status = StatusOK
	if version := d.version(ctx, p.Name); version != "" {
		c.Details = []string{version}
	}
	return c
}

func (d *Doctor) version(ctx context.Context, name string) string {
	out, err := d.Executor.Output(ctx, "", name, "--version")
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	line = strings.TrimSpace(line)
	if len(line) > 100 {
		line = line[:100] + "..."
	}
	return line
}

func (d *Doctor) checkWorktrees(ctx context.Context, report *Report, repo git.Repo) {
	wts, err := worktree.List(ctx, d.Backend, repo)
	if err != nil {
		report.add(Check{Name: "Can list worktrees", Status: StatusFail, Details: []string{err.Error()}})
		return
	}
	report.add(Check{
		Name:    "Can list worktrees",
		Status:  StatusOK,
		Details: []string{fmt.Sprintf("Found %d worktree(s)", len(wts))},
	})

	prunable := 0
	for _, wt := range wts {
		if wt.Prunable {
			prunable++
		}
	}
	if prunable > 0 {
		report.add(Check{
			Name:   fmt.Sprintf("%d prunable worktree(s) found", prunable),
			Status: StatusWarn,
			Hint:   "Run `git worktree prune` to clean up.",
		})
	}
}

func (d *Doctor) checkConfig(ctx context.Context, report *Report, repo git.Repo) {
	cfg, err := config.Load(repo, d.Backend.DefaultBranch(ctx, repo.Root))
	if err != nil {
		report.add(Check{Name: "Config readable", Status: StatusFail, Details: []string{err.Error()}})
		return
	}
	c := Check{Name: "Config readable", Status: StatusOK}
	if len(cfg.Sources) == 0 {
		c.Details = append(c.Details, "Using default config (no "+config.RepoFileName+" found)")
	}
	for _, src := range cfg.Sources {
		c.Details = append(c.Details, "Loaded "+src)
	}
	c.Details = append(c.Details,
		"Base branch: "+cfg.Base,
		"Workspace root: "+cfg.RootDir(repo),
	)
	report.add(c)
}

func (d *Doctor) checkGitHub(ctx context.Context, report *Report, repo git.Repo) {
	if d.GH.Authenticated(ctx) {
		report.add(Check{Name: "GitHub CLI authenticated", Status: StatusOK})
	} else {
		report.add(Check{
			Name:   "GitHub CLI not authenticated",
			Status: StatusWarn,
			Hint:   "Run `gh auth login` to enable PR features.",
		})
	}

	remote, err := d.Backend.RemoteURL(ctx, repo.Root, "origin")
	if err != nil || strings.TrimSpace(remote) == "" {
		report.add(Check{Name: "No origin remote", Status: StatusSkip})
		return
	}
	owner, name, err := gh.ParseRepo(remote)
	if err != nil {
		report.add(Check{
			Name:    "origin is not a GitHub repository",
			Status:  StatusSkip,
			Details: []string{remote},
		})
		return
	}
	report.add(Check{Name: "origin is on GitHub", Status: StatusOK, Details: []string{owner + "/" + name}})
}
