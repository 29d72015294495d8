// Package status computes dirtiness and upstream divergence per worktree.
package status

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/iter"

	"github.com/workty/git-workty/internal/git"
	"github.com/workty/git-workty/internal/logger"
	"github.com/workty/git-workty/internal/worktree"
)

// DefaultMaxWorkers bounds concurrent status queries.
const DefaultMaxWorkers = 16

// Divergence counts commits on each side of local...upstream.
type Divergence struct {
	Ahead  int
	Behind int
}

// WorktreeStatus is a point-in-time snapshot. Divergence is nil when there
// is no upstream or its tip could not be compared.
type WorktreeStatus struct {
	DirtyCount   int
	Upstream     string
	UpstreamGone bool
	Divergence   *Divergence
	LastCommit   time.Time
}

func (s WorktreeStatus) IsDirty() bool {
	return s.DirtyCount > 0
}

func (s WorktreeStatus) HasUpstream() bool {
	return s.Upstream != ""
}

// Entry pairs a worktree with its status.
type Entry struct {
	Worktree worktree.Worktree
	Status   WorktreeStatus
}

// Aggregator queries the backend for worktree status.
type Aggregator struct {
	backend    git.Backend
	maxWorkers int
}

func NewAggregator(backend git.Backend) *Aggregator {
	return &Aggregator{backend: backend, maxWorkers: DefaultMaxWorkers}
}

// WithMaxWorkers overrides the fan-out limit.
func (a *Aggregator) WithMaxWorkers(n int) *Aggregator {
	if n > 0 {
		a.maxWorkers = n
	}
	return a
}

// StatusOf never fails: backend errors leave the affected fields empty.
func (a *Aggregator) StatusOf(ctx context.Context, wt worktree.Worktree) WorktreeStatus {
	log := logger.WithComponent("status").With("path", wt.Path)
	var st WorktreeStatus

	if wt.Prunable {
		return st
	}

	dirty, err := a.backend.DirtyCount(ctx, wt.Path)
	if err != nil {
		log.Debug("dirty count unavailable", "error", err)
	} else {
		st.DirtyCount = dirty
	}

	ref := "HEAD"
	if wt.Branch != "" {
		ref = wt.Branch
	}
	if ts, err := a.backend.LastCommitTime(ctx, wt.Path, ref); err == nil {
		st.LastCommit = ts
	} else {
		log.Debug("last commit time unavailable", "error", err)
	}

	if wt.Detached || wt.BranchShort == "" {
		return st
	}

	up, err := a.backend.Upstream(ctx, wt.Path, wt.BranchShort)
	if err != nil {
		log.Debug("upstream lookup failed", "branch", wt.BranchShort, "error", err)
		return st
	}
	if up == nil {
		return st
	}
	st.Upstream = up.Short
	if st.Upstream == "" {
		st.Upstream = up.Ref
	}
	if up.Gone {
		st.UpstreamGone = true
		return st
	}

	ahead, behind, err := a.backend.AheadBehind(ctx, wt.Path, wt.Branch, up.Ref)
	if err != nil {
		log.Debug("divergence unavailable", "upstream", up.Ref, "error", err)
		return st
	}
	st.Divergence = &Divergence{Ahead: ahead, Behind: behind}
	return st
}

// StatusOfAll computes every status concurrently. Output order matches input.
func (a *Aggregator) StatusOfAll(ctx context.Context, worktrees []worktree.Worktree) []Entry {
	if len(worktrees) == 0 {
		return nil
	}
	workers := a.maxWorkers
	if workers > len(worktrees) {
		workers = len(worktrees)
	}
	started := time.Now()
	mapper := iter.Mapper[worktree.Worktree, Entry]{MaxGoroutines: workers}
	entries := mapper.Map(worktrees, func(wt *worktree.Worktree) Entry {
		return Entry{Worktree: *wt, Status: a.StatusOf(ctx, *wt)}
	})
	logger.WithComponent("status").Debug("status gathered",
		"worktrees", len(worktrees), "workers", workers, "duration", time.Since(started))
	return entries
}
