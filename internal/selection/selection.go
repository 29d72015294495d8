// Package selection orders, filters and picks worktrees.
package selection

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/workty/git-workty/internal/git"
	"github.com/workty/git-workty/internal/logger"
	"github.com/workty/git-workty/internal/status"
	"github.com/workty/git-workty/internal/worktree"
)

var (
	// ErrNoMatch means a query matched no worktree.
	ErrNoMatch = errors.New("no matching worktree")
	// ErrCancelled means the user dismissed an interactive pick.
	ErrCancelled = errors.New("selection cancelled")
)

// CurrentPath returns the path of the worktree containing cwd. The deepest
// match wins so nested worktrees resolve correctly.
func CurrentPath(worktrees []worktree.Worktree, cwd string) (string, bool) {
	if cwd == "" {
		return "", false
	}
	cwd = git.Canonical(cwd)
	best := ""
	for _, wt := range worktrees {
		if git.Contains(wt.Path, cwd) && len(wt.Path) > len(best) {
			best = wt.Path
		}
	}
	return best, best != ""
}

// SortForList orders entries for the dashboard: the current worktree, then
// dirty before clean, then by name.
func SortForList(entries []status.Entry, currentPath string) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		aCur, bCur := a.Worktree.Path == currentPath, b.Worktree.Path == currentPath
		if aCur != bCur {
			return aCur
		}
		aDirty, bDirty := a.Status.IsDirty(), b.Status.IsDirty()
		if aDirty != bDirty {
			return aDirty
		}
		return a.Worktree.Name() < b.Worktree.Name()
	})
}

// CleanFilter selects which worktrees qualify for cleanup. Filters are OR'd.
type CleanFilter struct {
	Merged    bool
	Gone      bool
	StaleDays int
}

// Any reports whether at least one filter is set.
func (f CleanFilter) Any() bool {
	return f.Merged || f.Gone || f.StaleDays > 0
}

const (
	ReasonMerged = "merged"
	ReasonGone   = "gone"
	ReasonStale  = "stale"
)

// Candidate is a worktree that qualifies for cleanup.
type Candidate struct {
	status.Entry
	Reasons []string
}

// Dirty candidates are shown but never removed.
func (c Candidate) Dirty() bool {
	return c.Status.IsDirty()
}

// AncestryChecker answers reachability questions between refs.
type AncestryChecker interface {
	IsAncestor(ctx context.Context, dir, ancestor, descendant string) (bool, error)
}

// CleanPolicy carries the context needed to judge candidates.
type CleanPolicy struct {
	Repo        git.Repo
	Base        string
	CurrentPath string
	Filter      CleanFilter
	Now         time.Time
}

// Protected returns why wt may never be cleaned, or "" when it may be.
func (p CleanPolicy) Protected(wt worktree.Worktree) string {
	switch {
	case p.CurrentPath != "" && wt.Path == p.CurrentPath:
		return "current worktree"
	case wt.IsMain(p.Repo):
		return "main worktree"
	case wt.Detached || wt.BranchShort == "":
		return "detached"
	case wt.BranchShort == p.Base:
		return "base branch"
	}
	return ""
}

// CleanCandidates applies the policy to entries. With no filter set the
// result is always empty.
func CleanCandidates(ctx context.Context, checker AncestryChecker, entries []status.Entry, p CleanPolicy) []Candidate {
	if !p.Filter.Any() {
		return nil
	}
	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}
	log := logger.WithComponent("selection")

	var out []Candidate
	for _, e := range entries {
		if reason := p.Protected(e.Worktree); reason != "" {
			continue
		}
		var reasons []string
		if p.Filter.Merged {
			merged, err := checker.IsAncestor(ctx, p.Repo.Root, e.Worktree.Branch, p.Base)
			if err != nil {
				log.Warn("merge check failed", "branch", e.Worktree.BranchShort, "base", p.Base, "error", err)
			} else if merged {
				reasons = append(reasons, ReasonMerged)
			}
		}
		if p.Filter.Gone && e.Status.UpstreamGone {
			reasons = append(reasons, ReasonGone)
		}
		if p.Filter.StaleDays > 0 && isStale(e.Status.LastCommit, now, p.Filter.StaleDays) {
			reasons = append(reasons, ReasonStale)
		}
		if len(reasons) > 0 {
			out = append(out, Candidate{Entry: e, Reasons: reasons})
		}
	}
	return out
}

func isStale(last, now time.Time, days int) bool {
	if last.IsZero() {
		return false
	}
	age := now.Sub(last)
	return age > time.Duration(days)*24*time.Hour
}

// Removable drops dirty candidates.
func Removable(candidates []Candidate) []Candidate {
	var out []Candidate
	for _, c := range candidates {
		if !c.Dirty() {
			out = append(out, c)
		}
	}
	return out
}

// SearchText is what fuzzy matching sees for an entry.
func SearchText(e status.Entry) string {
	return e.Worktree.Name() + " " + e.Worktree.Path
}

// FuzzyFilter ranks entries against query, best first. An empty query keeps
// every entry in its original order.
func FuzzyFilter(entries []status.Entry, query string) []status.Entry {
	query = strings.TrimSpace(query)
	if query == "" {
		return append([]status.Entry(nil), entries...)
	}
	data := make([]string, len(entries))
	for i, e := range entries {
		data[i] = SearchText(e)
	}
	matches := fuzzy.Find(query, data)
	out := make([]status.Entry, 0, len(matches))
	for _, m := range matches {
		out = append(out, entries[m.Index])
	}
	return out
}

// BestMatch returns the top-ranked entry for query. An exact name match
// always wins over a fuzzy one.
func BestMatch(entries []status.Entry, query string) (status.Entry, error) {
	for _, e := range entries {
		if e.Worktree.Name() == query || e.Worktree.DirName() == query {
			return e, nil
		}
	}
	ranked := FuzzyFilter(entries, query)
	if len(ranked) == 0 {
		return status.Entry{}, ErrNoMatch
	}
	return ranked[0], nil
}
