package main

import (
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/workty/git-workty/internal/selection"
)

const pickMaxVisible = 12

// pickOption is one row of the picker. Label is drawn, Filter is matched.
type pickOption struct {
	Label  string
	Filter string
}

// picker chooses one of options and returns its index. Dismissing the
// prompt yields selection.ErrCancelled.
type picker interface {
	Pick(title string, options []pickOption) (int, error)
}

type pickSource []pickOption

func (s pickSource) String(i int) string { return s[i].Filter }
func (s pickSource) Len() int            { return len(s) }

type pickStyles struct {
	title    lipgloss.Style
	selected lipgloss.Style
	normal   lipgloss.Style
	dim      lipgloss.Style
}

func newPickStyles(r *lipgloss.Renderer) pickStyles {
	return pickStyles{
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		selected: r.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true),
		normal:   r.NewStyle().Foreground(lipgloss.Color("251")),
		dim:      r.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

type pickModel struct {
	title   string
	options []pickOption
	// matches indexes options, best match first.
	matches   []int
	cursor    int
	filter    textinput.Model
	styles    pickStyles
	chosen    int
	cancelled bool
}

func newPickModel(title string, options []pickOption, styles pickStyles) pickModel {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.CharLimit = 256
	ti.Width = 50
	ti.Focus()

	m := pickModel{
		title:   title,
		options: options,
		filter:  ti,
		styles:  styles,
		chosen:  -1,
	}
	m.refilter()
	return m
}

func (m *pickModel) refilter() {
	query := strings.TrimSpace(m.filter.Value())
	matches := make([]int, 0, len(m.options))
	if query == "" {
		for i := range m.options {
			matches = append(matches, i)
		}
	} else {
		for _, match := range fuzzy.FindFrom(query, pickSource(m.options)) {
			matches = append(matches, match.Index)
		}
	}
	m.matches = matches
	if m.cursor >= len(m.matches) {
		m.cursor = len(m.matches) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m pickModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			if len(m.matches) == 0 {
				return m, nil
			}
			m.chosen = m.matches[m.cursor]
			return m, tea.Quit
		case "up", "ctrl+p", "ctrl+k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "ctrl+n", "ctrl+j":
			if m.cursor < len(m.matches)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	before := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != before {
		m.cursor = 0
		m.refilter()
	}
	return m, cmd
}

func (m pickModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.filter.View())
	b.WriteString("\n")

	start := 0
	if m.cursor >= pickMaxVisible {
		start = m.cursor - pickMaxVisible + 1
	}
	for i := start; i < len(m.matches) && i < start+pickMaxVisible; i++ {
		label := m.options[m.matches[i]].Label
		if i == m.cursor {
			b.WriteString(m.styles.selected.Render("> " + label))
		} else {
			b.WriteString(m.styles.normal.Render("  " + label))
		}
		b.WriteString("\n")
	}
	if len(m.matches) == 0 {
		b.WriteString(m.styles.dim.Render("  (no matches)"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.dim.Render("↑/↓ navigate • enter select • esc cancel"))
	return b.String()
}

// teaPicker runs the fuzzy picker on out so stdout stays clean.
type teaPicker struct {
	out io.Writer
}

func (p *teaPicker) Pick(title string, options []pickOption) (int, error) {
	if len(options) == 0 {
		return -1, selection.ErrNoMatch
	}
	model := newPickModel(title, options, newPickStyles(lipgloss.NewRenderer(p.out)))
	final, err := tea.NewProgram(model, tea.WithOutput(p.out)).Run()
	if errors.Is(err, tea.ErrInterrupted) {
		return -1, selection.ErrCancelled
	}
	if err != nil {
		return -1, err
	}
	result, ok := final.(pickModel)
	if !ok || result.cancelled || result.chosen < 0 {
		return -1, selection.ErrCancelled
	}
	return result.chosen, nil
}
