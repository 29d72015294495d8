package ui

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/workty/git-workty/internal/git"
	"github.com/workty/git-workty/internal/paths"
	"github.com/workty/git-workty/internal/selection"
	"github.com/workty/git-workty/internal/status"
)

const (
	syncWidth     = 6
	maxNameWidth  = 40
	pickNameWidth = 30
)

// PadOrTrim fits s into exactly width terminal cells.
func PadOrTrim(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) > width {
		return runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

func padLeft(s string, width int) string {
	return runewidth.FillLeft(s, width)
}

// ShortenPath abbreviates the home directory as "~".
func ShortenPath(path string) string {
	return paths.ShortenHome(path)
}

// FormatDirty renders the dirty column, always four cells wide.
func FormatDirty(st status.WorktreeStatus, icons Icons) string {
	if st.DirtyCount > 0 {
		return fmt.Sprintf("%s%3d", icons.Dirty, st.DirtyCount)
	}
	return padLeft(icons.Clean, 4)
}

// FormatSync renders ahead/behind against upstream, or "-" without one.
func FormatSync(st status.WorktreeStatus, icons Icons) string {
	if st.UpstreamGone {
		return "gone"
	}
	if st.Divergence == nil {
		return "-"
	}
	return fmt.Sprintf("%s%d%s%d", icons.ArrowUp, st.Divergence.Ahead, icons.ArrowDown, st.Divergence.Behind)
}

func nameWidth(entries []status.Entry, limit int) int {
	width := 0
	for _, e := range entries {
		if w := runewidth.StringWidth(e.Worktree.Name()); w > width {
			width = w
		}
	}
	if width == 0 {
		width = 10
	}
	if width > limit {
		width = limit
	}
	return width
}

// RenderList returns the dashboard table, one line per entry, in the
// order given.
func RenderList(entries []status.Entry, currentPath string, icons Icons, styles Styles) string {
	width := nameWidth(entries, maxNameWidth)
	var b strings.Builder
	for _, e := range entries {
		isCurrent := currentPath != "" && e.Worktree.Path == currentPath

		marker := " "
		if isCurrent {
			marker = styles.Current(icons.Current)
		}

		name := PadOrTrim(e.Worktree.Name(), width)
		switch {
		case isCurrent:
			name = styles.Current(name)
		case e.Status.IsDirty():
			name = styles.Dirty(name)
		}

		dirty := FormatDirty(e.Status, icons)
		if e.Status.IsDirty() {
			dirty = styles.Dirty(dirty)
		} else {
			dirty = styles.Clean(dirty)
		}

		path := ShortenPath(e.Worktree.Path)
		if e.Worktree.Locked {
			path += " (locked)"
		}
		if e.Worktree.Prunable {
			path += " (prunable)"
		}

		fmt.Fprintf(&b, "%s %s  %s  %s  %s\n",
			marker, name, dirty, padLeft(FormatSync(e.Status, icons), syncWidth), styles.Faint(path))
	}
	return b.String()
}

// PickLines renders one fixed-width line per entry for interactive
// selection. Lines line up with entries by index.
func PickLines(entries []status.Entry, icons Icons) []string {
	width := nameWidth(entries, pickNameWidth)
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = PadOrTrim(e.Worktree.Name(), width) + "  " +
			FormatDirty(e.Status, icons) + "  " +
			padLeft(FormatSync(e.Status, icons), syncWidth) + "  " +
			ShortenPath(e.Worktree.Path)
	}
	return lines
}

// CleanLine describes one clean candidate.
func CleanLine(c selection.Candidate, now time.Time, icons Icons) string {
	parts := []string{c.Worktree.Name(), "[" + strings.Join(c.Reasons, ", ") + "]"}
	if !c.Status.LastCommit.IsZero() {
		parts = append(parts, "last commit "+humanize.RelTime(c.Status.LastCommit, now, "ago", "from now"))
	}
	if c.Dirty() {
		parts = append(parts, fmt.Sprintf("%s %d uncommitted, skipped", icons.Dirty, c.Status.DirtyCount))
	}
	parts = append(parts, ShortenPath(c.Worktree.Path))
	return strings.Join(parts, "  ")
}

// ListDocument is the JSON form of the dashboard. Field names are relied on
// by scripts.
type ListDocument struct {
	Repo      RepoInfo        `json:"repo"`
	Current   string          `json:"current"`
	Worktrees []WorktreeEntry `json:"worktrees"`
}

type RepoInfo struct {
	Root      string `json:"root"`
	CommonDir string `json:"common_dir"`
}

type DirtyInfo struct {
	Count int `json:"count"`
}

type WorktreeEntry struct {
	Path         string    `json:"path"`
	Branch       *string   `json:"branch"`
	BranchShort  *string   `json:"branch_short"`
	Head         string    `json:"head"`
	Detached     bool      `json:"detached"`
	Locked       bool      `json:"locked"`
	Prunable     bool      `json:"prunable"`
	Dirty        DirtyInfo `json:"dirty"`
	Upstream     *string   `json:"upstream"`
	UpstreamGone bool      `json:"upstream_gone"`
	Ahead        *int      `json:"ahead"`
	Behind       *int      `json:"behind"`
	LastCommit   *int64    `json:"last_commit,omitempty"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func NewListDocument(repo git.Repo, currentPath string, entries []status.Entry) ListDocument {
	doc := ListDocument{
		Repo:      RepoInfo{Root: repo.Root, CommonDir: repo.CommonDir},
		Current:   currentPath,
		Worktrees: make([]WorktreeEntry, 0, len(entries)),
	}
	for _, e := range entries {
		wt, st := e.Worktree, e.Status
		item := WorktreeEntry{
			Path:         wt.Path,
			Branch:       optional(wt.Branch),
			BranchShort:  optional(wt.BranchShort),
			Head:         wt.Head,
			Detached:     wt.Detached,
			Locked:       wt.Locked,
			Prunable:     wt.Prunable,
			Dirty:        DirtyInfo{Count: st.DirtyCount},
			Upstream:     optional(st.Upstream),
			UpstreamGone: st.UpstreamGone,
		}
		if st.Divergence != nil {
			ahead, behind := st.Divergence.Ahead, st.Divergence.Behind
			item.Ahead, item.Behind = &ahead, &behind
		}
		if !st.LastCommit.IsZero() {
			ts := st.LastCommit.Unix()
			item.LastCommit = &ts
		}
		doc.Worktrees = append(doc.Worktrees, item)
	}
	return doc
}

// WriteJSON prints v indented, followed by a newline.
func (p *Printer) WriteJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.Out, string(data))
	return err
}

// List prints the dashboard in the configured mode.
func (p *Printer) List(repo git.Repo, currentPath string, entries []status.Entry) error {
	if p.Opts.JSON {
		return p.WriteJSON(NewListDocument(repo, currentPath, entries))
	}
	_, err := fmt.Fprint(p.Out, RenderList(entries, currentPath, p.icons, p.outStyles))
	return err
}
