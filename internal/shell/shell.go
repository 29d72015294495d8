// Package shell emits the integration snippets that let an interactive shell
// change directory into worktrees.
package shell

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

var templates = template.Must(template.ParseFS(templateFiles, "templates/*.tmpl"))

// Supported lists the shells Generate accepts. "pwsh" is an alias of
// "powershell".
var Supported = []string{"bash", "zsh", "fish", "powershell"}

// Options tune the generated snippet.
type Options struct {
	// WrapGit adds a git function that cds for `git workty go|pick|new`.
	WrapGit bool
	// NoCD leaves out the wcd, wnew and wgo helpers.
	NoCD bool
}

type templateData struct {
	Shell   string
	CD      bool
	WrapGit bool
	Open    string
	Close   string
}

// Normalize maps aliases to their canonical shell name.
func Normalize(shell string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(shell))
	if s == "pwsh" {
		s = "powershell"
	}
	for _, known := range Supported {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("unsupported shell %q (supported: %s)", shell, strings.Join(Supported, ", "))
}

// Generate renders the snippet for shell.
func Generate(shell string, opts Options) (string, error) {
	name, err := Normalize(shell)
	if err != nil {
		return "", err
	}
	data := templateData{Shell: name, CD: !opts.NoCD, WrapGit: opts.WrapGit}

	var tmpl string
	switch name {
	case "bash":
		tmpl, data.Open, data.Close = "posix.sh.tmpl", "[", "]"
	case "zsh":
		tmpl, data.Open, data.Close = "posix.sh.tmpl", "[[", "]]"
	case "fish":
		tmpl = "fish.tmpl"
	case "powershell":
		tmpl = "powershell.ps1.tmpl"
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, tmpl, data); err != nil {
		return "", fmt.Errorf("render %s snippet: %w", name, err)
	}
	return buf.String(), nil
}
