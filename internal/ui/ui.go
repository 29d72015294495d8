// Package ui renders worktree listings and user-facing messages.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Options selects the output mode for one invocation.
type Options struct {
	Color bool
	ASCII bool
	JSON  bool
}

// Icons are the glyphs used in listings.
type Icons struct {
	Current   string
	Dirty     string
	Clean     string
	ArrowUp   string
	ArrowDown string
}

func UnicodeIcons() Icons {
	return Icons{Current: "▶", Dirty: "●", Clean: "✓", ArrowUp: "↑", ArrowDown: "↓"}
}

func ASCIIIcons() Icons {
	return Icons{Current: ">", Dirty: "*", Clean: "-", ArrowUp: "^", ArrowDown: "v"}
}

func (o Options) Icons() Icons {
	if o.ASCII {
		return ASCIIIcons()
	}
	return UnicodeIcons()
}

// Styles are render functions so callers never touch lipgloss directly.
type Styles struct {
	Current func(string) string
	Dirty   func(string) string
	Clean   func(string) string
	Faint   func(string) string
	Header  func(string) string
	Error   func(string) string
	Hint    func(string) string
	Success func(string) string
	Warning func(string) string
}

// NewStyles builds styles for w. Color is dropped when disabled or when w
// is not a terminal.
func NewStyles(w io.Writer, color bool) Styles {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	render := func(s lipgloss.Style) func(string) string {
		return func(str string) string { return s.Render(str) }
	}
	return Styles{
		Current: render(r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)),
		Dirty:   render(r.NewStyle().Foreground(lipgloss.Color("3"))),
		Clean:   render(r.NewStyle().Foreground(lipgloss.Color("2"))),
		Faint:   render(r.NewStyle().Foreground(lipgloss.Color("245"))),
		Header:  render(r.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)),
		Error:   render(r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)),
		Hint:    render(r.NewStyle().Foreground(lipgloss.Color("6"))),
		Success: render(r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)),
		Warning: render(r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)),
	}
}

// Printer writes results to Out and every diagnostic to Err.
type Printer struct {
	Out  io.Writer
	Err  io.Writer
	Opts Options

	icons     Icons
	outStyles Styles
	errStyles Styles
}

func NewPrinter(out, errOut io.Writer, opts Options) *Printer {
	return &Printer{
		Out:       out,
		Err:       errOut,
		Opts:      opts,
		icons:     opts.Icons(),
		outStyles: NewStyles(out, opts.Color),
		errStyles: NewStyles(errOut, opts.Color),
	}
}

func (p *Printer) Icons() Icons {
	return p.icons
}

// Path prints a bare path on stdout so shell wrappers can capture it.
func (p *Printer) Path(path string) {
	fmt.Fprintln(p.Out, path)
}

func (p *Printer) Error(msg, hint string) {
	fmt.Fprintf(p.Err, "%s: %s\n", p.errStyles.Error("error"), msg)
	if hint != "" {
		fmt.Fprintf(p.Err, "%s: %s\n", p.errStyles.Hint("hint"), hint)
	}
}

func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintf(p.Err, "%s: %s\n", p.errStyles.Success("success"), fmt.Sprintf(format, args...))
}

func (p *Printer) Warning(format string, args ...any) {
	fmt.Fprintf(p.Err, "%s: %s\n", p.errStyles.Warning("warning"), fmt.Sprintf(format, args...))
}

func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintln(p.Err, fmt.Sprintf(format, args...))
}

// Hint prints a standalone remediation line.
func (p *Printer) Hint(format string, args ...any) {
	fmt.Fprintf(p.Err, "%s: %s\n", p.errStyles.Hint("hint"), fmt.Sprintf(format, args...))
}
