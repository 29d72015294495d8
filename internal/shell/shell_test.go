package shell

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_DefinesHelpers(t *testing.T) {
	for _, sh := range []string{"bash", "zsh", "fish", "powershell", "pwsh"} {
		t.Run(sh, func(t *testing.T) {
			out, err := Generate(sh, Options{})
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(out, "# git-workty shell integration for "))
			assert.True(t, strings.HasSuffix(out, "\n"))
			for _, fn := range []string{"wcd", "wnew", "wgo"} {
				assert.Contains(t, out, fn)
			}
			assert.NotContains(t, out, "{{")
		})
	}
}

func TestGenerate_BashAndZshTestSyntax(t *testing.T) {
	bash, err := Generate("bash", Options{})
	require.NoError(t, err)
	assert.Contains(t, bash, `if [ -n "$dir" ] && [ -d "$dir" ]; then`)
	assert.NotContains(t, bash, "[[")

	zsh, err := Generate("zsh", Options{})
	require.NoError(t, err)
	assert.Contains(t, zsh, `if [[ -n "$dir" ]] && [[ -d "$dir" ]]; then`)
}

func TestGenerate_PickKeepsStderrForTheUI(t *testing.T) {
	out, err := Generate("bash", Options{WrapGit: true})
	require.NoError(t, err)
	assert.Contains(t, out, `dir="$(git workty pick "$@")"`)
	assert.NotContains(t, out, "pick 2>/dev/null")
}

func TestGenerate_WrapGitAndNoCD(t *testing.T) {
	out, err := Generate("zsh", Options{WrapGit: true, NoCD: true})
	require.NoError(t, err)
	assert.Contains(t, out, "git() {")
	assert.Contains(t, out, "command git \"$@\" --print-path")
	assert.NotContains(t, out, "wcd()")

	fish, err := Generate("fish", Options{WrapGit: true})
	require.NoError(t, err)
	assert.Contains(t, fish, "function git --wraps git")

	bare, err := Generate("bash", Options{NoCD: true})
	require.NoError(t, err)
	assert.Equal(t, "# git-workty shell integration for bash\n", bare)
}

func TestGenerate_UnsupportedShell(t *testing.T) {
	_, err := Generate("tcsh", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported shell")
}

func TestBlock(t *testing.T) {
	block, err := Block("zsh", Options{WrapGit: true})
	require.NoError(t, err)
	assert.Equal(t, BlockStart+"\neval \"$(git workty init zsh --wrap-git)\"\n"+BlockEnd+"\n", block)

	block, err = Block("fish", Options{NoCD: true})
	require.NoError(t, err)
	assert.Contains(t, block, "git workty init fish --no-cd | source")

	_, err = Block("pwsh", Options{})
	assert.ErrorIs(t, err, ErrNoRCFile)
}

func TestRCFile(t *testing.T) {
	t.Setenv("ZDOTDIR", "")
	t.Setenv("XDG_CONFIG_HOME", "")
	home := "/home/dev"

	got, err := RCFile("bash", home)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".bashrc"), got)

	got, err = RCFile("fish", home)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "fish", "config.fish"), got)

	t.Setenv("ZDOTDIR", "/etc/zdot")
	got, err = RCFile("zsh", home)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/etc/zdot", ".zshrc"), got)
}

func TestUpsertBlock_AppendsThenReplaces(t *testing.T) {
	content := "export PATH=\"$HOME/bin:$PATH\"\n"
	first := strings.Join([]string{BlockStart, "old", BlockEnd, ""}, "\n")

	got := UpsertBlock(content, first)
	assert.Equal(t, "export PATH=\"$HOME/bin:$PATH\"\n\n"+first, got)

	second := strings.Join([]string{BlockStart, "new", BlockEnd, ""}, "\n")
	replaced := UpsertBlock(got, second)
	assert.NotContains(t, replaced, "old")
	assert.Contains(t, replaced, "new")
	assert.Equal(t, 1, strings.Count(replaced, BlockStart))
}

func TestRemoveBlock(t *testing.T) {
	block := strings.Join([]string{BlockStart, "x", BlockEnd}, "\n")
	assert.Equal(t, "a\n\nb\n", RemoveBlock("a\n\n"+block+"\n\nb\n"))
	assert.Equal(t, "a\n", RemoveBlock("a\n\n"+block+"\n"))
	assert.Equal(t, "", RemoveBlock(block+"\n"))
	assert.Equal(t, "untouched\n", RemoveBlock("untouched"))
}

func TestInstallAndUninstall(t *testing.T) {
	rc := filepath.Join(t.TempDir(), "nested", ".bashrc")
	block, err := Block("bash", Options{})
	require.NoError(t, err)

	installed, err := Installed(rc)
	require.NoError(t, err)
	assert.False(t, installed)

	require.NoError(t, Install(rc, block))
	require.NoError(t, Install(rc, block))
	data, err := os.ReadFile(rc)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), BlockStart))

	installed, err = Installed(rc)
	require.NoError(t, err)
	assert.True(t, installed)

	require.NoError(t, Uninstall(rc))
	installed, err = Installed(rc)
	require.NoError(t, err)
	assert.False(t, installed)
}
