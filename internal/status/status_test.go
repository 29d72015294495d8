package status

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workty/git-workty/internal/git"
	"github.com/workty/git-workty/internal/git/gittest"
	"github.com/workty/git-workty/internal/worktree"
)

func branchWorktree(path, branch string) worktree.Worktree {
	return worktree.Worktree{Path: path, Branch: "refs/heads/" + branch, BranchShort: branch}
}

func TestStatusOf_CleanWithUpstream(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	fake := &gittest.Fake{
		Upstreams:  map[string]*git.Upstream{"feat": {Ref: "refs/remotes/origin/feat", Short: "origin/feat", Remote: "origin"}},
		Divergence: map[string][2]int{"feat": {2, 5}},
		LastCommit: map[string]time.Time{"/wt/feat": ts},
	}
	st := NewAggregator(fake).StatusOf(context.Background(), branchWorktree("/wt/feat", "feat"))

	assert.False(t, st.IsDirty())
	assert.Equal(t, "origin/feat", st.Upstream)
	require.NotNil(t, st.Divergence)
	assert.Equal(t, Divergence{Ahead: 2, Behind: 5}, *st.Divergence)
	assert.True(t, st.LastCommit.Equal(ts))
}

func TestStatusOf_NoUpstream(t *testing.T) {
	fake := &gittest.Fake{Dirty: map[string]int{"/wt/feat": 4}}
	st := NewAggregator(fake).StatusOf(context.Background(), branchWorktree("/wt/feat", "feat"))

	assert.Equal(t, 4, st.DirtyCount)
	assert.True(t, st.IsDirty())
	assert.False(t, st.HasUpstream())
	assert.Nil(t, st.Divergence)
}

func TestStatusOf_DetachedSkipsUpstream(t *testing.T) {
	fake := &gittest.Fake{
		Upstreams: map[string]*git.Upstream{"": {Ref: "refs/remotes/origin/x", Short: "origin/x"}},
	}
	st := NewAggregator(fake).StatusOf(context.Background(), worktree.Worktree{Path: "/wt/pr-1", Detached: true})
	assert.False(t, st.HasUpstream())
	assert.Nil(t, st.Divergence)
}

func TestStatusOf_GoneUpstreamHasNoCounts(t *testing.T) {
	fake := &gittest.Fake{
		Upstreams:  map[string]*git.Upstream{"old": {Ref: "refs/remotes/origin/old", Short: "origin/old", Gone: true}},
		Divergence: map[string][2]int{"old": {1, 1}},
	}
	st := NewAggregator(fake).StatusOf(context.Background(), branchWorktree("/wt/old", "old"))
	assert.Equal(t, "origin/old", st.Upstream)
	assert.True(t, st.UpstreamGone)
	assert.Nil(t, st.Divergence)
}

func TestStatusOf_DivergenceErrorKeepsUpstreamName(t *testing.T) {
	fake := &gittest.Fake{
		Upstreams:     map[string]*git.Upstream{"feat": {Ref: "refs/remotes/origin/feat", Short: "origin/feat"}},
		DivergenceErr: map[string]error{"feat": errors.New("unknown revision")},
	}
	st := NewAggregator(fake).StatusOf(context.Background(), branchWorktree("/wt/feat", "feat"))
	assert.Equal(t, "origin/feat", st.Upstream)
	assert.Nil(t, st.Divergence)
}

func TestStatusOf_BackendErrorsDegrade(t *testing.T) {
	fake := &gittest.Fake{DirtyErr: map[string]error{"/wt/feat": errors.New("not a git repository")}}
	st := NewAggregator(fake).StatusOf(context.Background(), branchWorktree("/wt/feat", "feat"))
	assert.Equal(t, WorktreeStatus{}, st)
}

func TestStatusOf_PrunableIsEmpty(t *testing.T) {
	fake := &gittest.Fake{Dirty: map[string]int{"/gone": 3}}
	wt := branchWorktree("/gone", "feat")
	wt.Prunable = true
	st := NewAggregator(fake).StatusOf(context.Background(), wt)
	assert.Equal(t, WorktreeStatus{}, st)
	assert.Equal(t, 0, fake.Calls)
}

func TestStatusOfAll_PreservesOrder(t *testing.T) {
	fake := &gittest.Fake{Dirty: map[string]int{}}
	var worktrees []worktree.Worktree
	for i := 0; i < 40; i++ {
		path := fmt.Sprintf("/wt/%02d", i)
		fake.Dirty[path] = i
		worktrees = append(worktrees, branchWorktree(path, fmt.Sprintf("b%02d", i)))
	}

	entries := NewAggregator(fake).WithMaxWorkers(4).StatusOfAll(context.Background(), worktrees)
	require.Len(t, entries, len(worktrees))
	for i, e := range entries {
		assert.Equal(t, worktrees[i].Path, e.Worktree.Path)
		assert.Equal(t, i, e.Status.DirtyCount)
	}
}

func TestStatusOfAll_Empty(t *testing.T) {
	assert.Empty(t, NewAggregator(&gittest.Fake{}).StatusOfAll(context.Background(), nil))
}

type countingBackend struct {
	gittest.Fake
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (c *countingBackend) DirtyCount(ctx context.Context, path string) (int, error) {
	n := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return c.Fake.DirtyCount(ctx, path)
}

func TestStatusOfAll_BoundedConcurrency(t *testing.T) {
	backend := &countingBackend{}
	var worktrees []worktree.Worktree
	for i := 0; i < 12; i++ {
		worktrees = append(worktrees, branchWorktree(fmt.Sprintf("/wt/%d", i), fmt.Sprintf("b%d", i)))
	}
	NewAggregator(backend).WithMaxWorkers(3).StatusOfAll(context.Background(), worktrees)
	assert.LessOrEqual(t, backend.peak.Load(), int32(3))
	assert.GreaterOrEqual(t, backend.peak.Load(), int32(1))
}
