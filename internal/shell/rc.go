package shell

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	BlockStart = "# >>> git-workty >>>"
	BlockEnd   = "# <<< git-workty <<<"
)

// ErrNoRCFile is returned for shells whose startup file is not managed.
var ErrNoRCFile = errors.New("no managed startup file for this shell")

// RCFile returns the startup file Install edits for shell.
func RCFile(shell, home string) (string, error) {
	name, err := Normalize(shell)
	if err != nil {
		return "", err
	}
	if home == "" {
		return "", errors.New("HOME not set")
	}
	switch name {
	case "bash":
		return filepath.Join(home, ".bashrc"), nil
	case "zsh":
		if dir := os.Getenv("ZDOTDIR"); dir != "" {
			return filepath.Join(dir, ".zshrc"), nil
		}
		return filepath.Join(home, ".zshrc"), nil
	case "fish":
		base := os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			base = filepath.Join(home, ".config")
		}
		return filepath.Join(base, "fish", "config.fish"), nil
	}
	return "", fmt.Errorf("%s: %w", name, ErrNoRCFile)
}

// Block is the managed section that loads the snippet at shell startup.
func Block(shell string, opts Options) (string, error) {
	name, err := Normalize(shell)
	if err != nil {
		return "", err
	}
	args := "git workty init " + name
	if opts.WrapGit {
		args += " --wrap-git"
	}
	if opts.NoCD {
		args += " --no-cd"
	}
	var loader string
	switch name {
	case "fish":
		loader = args + " | source"
	case "bash", "zsh":
		loader = `eval "$(` + args + `)"`
	default:
		return "", fmt.Errorf("%s: %w", name, ErrNoRCFile)
	}
	return strings.Join([]string{BlockStart, loader, BlockEnd, ""}, "\n"), nil
}

// Installed reports whether rcPath carries the managed block.
func Installed(rcPath string) (bool, error) {
	data, err := os.ReadFile(rcPath)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	content := string(data)
	return strings.Contains(content, BlockStart) && strings.Contains(content, BlockEnd), nil
}

// Install writes block into rcPath, replacing an earlier copy.
func Install(rcPath, block string) error {
	current, err := readRC(rcPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(rcPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(rcPath, []byte(UpsertBlock(current, block)), 0o644)
}

// Uninstall drops the managed block from rcPath. A missing file is not an error.
func Uninstall(rcPath string) error {
	current, err := readRC(rcPath)
	if err != nil {
		return err
	}
	if current == "" {
		return nil
	}
	return os.WriteFile(rcPath, []byte(RemoveBlock(current)), 0o644)
}

func readRC(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// UpsertBlock replaces the managed block in content or appends it.
func UpsertBlock(content, block string) string {
	start := strings.Index(content, BlockStart)
	end := strings.Index(content, BlockEnd)
	if start >= 0 && end >= start {
		end += len(BlockEnd)
		replaced := content[:start] + block + content[end:]
		return strings.TrimRight(replaced, "\n") + "\n"
	}
	content = strings.TrimRight(content, "\n")
	if content == "" {
		return block
	}
	return content + "\n\n" + block
}

// RemoveBlock deletes the managed block, keeping surrounding content.
func RemoveBlock(content string) string {
	start := strings.Index(content, BlockStart)
	end := strings.Index(content, BlockEnd)
	if start < 0 || end < start {
		return strings.TrimRight(content, "\n") + "\n"
	}
	end += len(BlockEnd)
	before := strings.TrimRight(content[:start], "\n")
	after := strings.Trim(content[end:], "\n")
	switch {
	case before == "" && after == "":
		return ""
	case before == "":
		return after + "\n"
	case after == "":
		return before + "\n"
	}
	return before + "\n\n" + after + "\n"
}
