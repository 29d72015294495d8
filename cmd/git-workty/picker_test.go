package main

import (
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/workty/git-workty/internal/selection"
)

func testPickModel(labels ...string) pickModel {
	options := make([]pickOption, len(labels))
	for i, l := range labels {
		options[i] = pickOption{Label: l, Filter: l}
	}
	return newPickModel("Select a worktree", options, newPickStyles(lipgloss.NewRenderer(io.Discard)))
}

func sendKeys(m pickModel, msgs ...tea.Msg) pickModel {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(pickModel)
	}
	return m
}

func typed(s string) []tea.Msg {
	msgs := make([]tea.Msg, 0, len(s))
	for _, r := range s {
		msgs = append(msgs, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return msgs
}

func TestPickModelFuzzyMatchesAbbreviation(t *testing.T) {
	m := testPickModel("main /repo", "feat/login-page /wt/feat-login-page", "fix/typo /wt/fix-typo")

	m = sendKeys(m, typed("flp")...)
	if len(m.matches) == 0 || m.matches[0] != 1 {
		t.Fatalf("expected feat/login-page ranked first for flp, got %v", m.matches)
	}
	if !strings.Contains(m.View(), "feat/login-page") {
		t.Fatalf("expected feat/login-page in view, got %q", m.View())
	}

	m = sendKeys(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.chosen != 1 || m.cancelled {
		t.Fatalf("expected option 1 chosen, got chosen=%d cancelled=%v", m.chosen, m.cancelled)
	}
}

func TestPickModelNavigation(t *testing.T) {
	m := testPickModel("main", "feat/a", "feat/b")

	m = sendKeys(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 2 {
		t.Fatalf("expected cursor clamped at 2, got %d", m.cursor)
	}
	m = sendKeys(m, tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeyEnter})
	if m.chosen != 1 {
		t.Fatalf("expected option 1 chosen, got %d", m.chosen)
	}
}

func TestPickModelNoMatchesIgnoresEnter(t *testing.T) {
	m := testPickModel("main", "feat/a")

	m = sendKeys(m, typed("zzz")...)
	m = sendKeys(m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(m.matches) != 0 || m.chosen != -1 {
		t.Fatalf("expected no matches and nothing chosen, got matches=%v chosen=%d", m.matches, m.chosen)
	}
	if !strings.Contains(m.View(), "(no matches)") {
		t.Fatalf("expected empty-state row, got %q", m.View())
	}

	m = sendKeys(m, tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyBackspace})
	if len(m.matches) != 2 {
		t.Fatalf("expected every option back after clearing, got %v", m.matches)
	}
}

func TestPickModelEscCancels(t *testing.T) {
	m := sendKeys(testPickModel("main"), tea.KeyMsg{Type: tea.KeyEsc})
	if !m.cancelled || m.chosen != -1 {
		t.Fatalf("expected cancellation, got chosen=%d cancelled=%v", m.chosen, m.cancelled)
	}
}

func TestTeaPickerEmpty(t *testing.T) {
	p := &teaPicker{out: io.Discard}
	if _, err := p.Pick("Select a worktree", nil); !errors.Is(err, selection.ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}
