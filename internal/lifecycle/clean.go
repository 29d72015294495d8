package lifecycle

import (
	"context"
	"fmt"

	"github.com/workty/git-workty/internal/logger"
	"github.com/workty/git-workty/internal/selection"
)

// CleanPlan is the candidate set for one cleanup run.
type CleanPlan struct {
	Base       string
	Filter     selection.CleanFilter
	Candidates []selection.Candidate
}

// Removable candidates are the clean ones.
func (p CleanPlan) Removable() []selection.Candidate {
	return selection.Removable(p.Candidates)
}

// Skipped candidates have uncommitted changes and are left alone.
func (p CleanPlan) Skipped() []selection.Candidate {
	var out []selection.Candidate
	for _, c := range p.Candidates {
		if c.Dirty() {
			out = append(out, c)
		}
	}
	return out
}

// PlanClean gathers status for every worktree and selects candidates.
func (m *Manager) PlanClean(ctx context.Context, filter selection.CleanFilter) (CleanPlan, error) {
	plan := CleanPlan{Base: m.cfg.Base, Filter: filter}
	if !filter.Any() {
		return plan, nil
	}
	snap, err := m.Snapshot(ctx, true)
	if err != nil {
		return CleanPlan{}, err
	}
	plan.Candidates = selection.CleanCandidates(ctx, m.backend, snap.Entries, selection.CleanPolicy{
		Repo:        m.repo,
		Base:        m.cfg.Base,
		CurrentPath: snap.CurrentPath,
		Filter:      filter,
		Now:         m.now(),
	})
	return plan, nil
}

type CleanOptions struct {
	DryRun bool
	Yes    bool
	// Progress is called after each removal attempt.
	Progress func(CleanResult)
}

// CleanResult is the outcome for one candidate. Err is nil on success.
type CleanResult struct {
	selection.Candidate
	Err error
}

type CleanReport struct {
	Removed []selection.Candidate
	Failed  []CleanResult
	Skipped []selection.Candidate
	DryRun  bool
}

// ExecuteClean removes the plan's clean candidates after one confirmation
// for the whole batch. A failure on one item does not stop the others.
func (m *Manager) ExecuteClean(ctx context.Context, plan CleanPlan, opts CleanOptions, c Confirmer) (CleanReport, error) {
	report := CleanReport{Skipped: plan.Skipped(), DryRun: opts.DryRun}
	removable := plan.Removable()
	if opts.DryRun || len(removable) == 0 {
		return report, nil
	}

	if err := confirm(c, opts.Yes, fmt.Sprintf("Remove %d worktree(s)?", len(removable))); err != nil {
		return report, err
	}

	log := logger.WithComponent("lifecycle")
	for _, cand := range removable {
		res := CleanResult{Candidate: cand}
		if err := ctx.Err(); err != nil {
			res.Err = err
		} else {
			res.Err = m.backend.RemoveWorktree(ctx, m.repo.Root, cand.Worktree.Path, false)
		}
		if res.Err != nil {
			log.Warn("clean: removal failed", "path", cand.Worktree.Path, "error", res.Err)
			report.Failed = append(report.Failed, res)
		} else {
			report.Removed = append(report.Removed, cand)
		}
		if opts.Progress != nil {
			opts.Progress(res)
		}
	}
	log.Info("clean finished", "removed", len(report.Removed), "failed", len(report.Failed), "skipped", len(report.Skipped))
	return report, nil
}
