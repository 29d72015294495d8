package main

import (
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

const confirmFieldKey = "confirm_result"

func worktyHuhTheme() *huh.Theme {
	t := *huh.ThemeCharm()
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(lipgloss.Color("#7D56F4"))
	t.Focused.Next = t.Focused.FocusedButton
	return &t
}

func newConfirmForm(title string, result *bool) *huh.Form {
	confirm := huh.NewConfirm().
		Key(confirmFieldKey).
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(result)

	return huh.NewForm(huh.NewGroup(confirm)).
		WithTheme(worktyHuhTheme()).
		WithShowHelp(false)
}

// huhConfirmer asks on the terminal, drawing on out so stdout stays clean.
type huhConfirmer struct {
	out         io.Writer
	interactive func() bool
}

func (c *huhConfirmer) Interactive() bool {
	return c.interactive != nil && c.interactive()
}

func (c *huhConfirmer) Confirm(prompt string) (bool, error) {
	var ok bool
	err := newConfirmForm(prompt, &ok).
		WithProgramOptions(tea.WithOutput(c.out)).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}
