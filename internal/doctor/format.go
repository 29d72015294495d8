package doctor

import (
	"strings"

	"github.com/workty/git-workty/internal/ui"
)

func symbol(s Status, ascii bool) string {
	switch s {
	case StatusOK:
		if ascii {
			return "+"
		}
		return "✓"
	case StatusFail:
		if ascii {
			return "x"
		}
		return "✗"
	case StatusWarn:
		return "!"
	}
	if ascii {
		return "o"
	}
	return "○"
}

// Format renders the report for a terminal.
func Format(r Report, ascii bool, styles ui.Styles) string {
	var b strings.Builder
	for _, c := range r.Checks {
		sym := symbol(c.Status, ascii)
		switch c.Status {
		case StatusOK:
			sym = styles.Clean(sym)
		case StatusFail:
			sym = styles.Error(sym)
		case StatusWarn:
			sym = styles.Dirty(sym)
		default:
			sym = styles.Faint(sym)
		}
		b.WriteString(sym + " " + c.Name + "\n")
		for _, d := range c.Details {
			b.WriteString("  " + d + "\n")
		}
		if c.Hint != "" {
			b.WriteString("  " + styles.Hint("hint") + ": " + c.Hint + "\n")
		}
	}
	b.WriteString("\n")
	if r.OK() {
		b.WriteString(styles.Success("All checks passed!") + "\n")
	} else {
		b.WriteString(styles.Warning("Some checks failed. See hints above.") + "\n")
	}
	return b.String()
}
