package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscardBeforeInit(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	WithComponent("test").Info("dropped")
	assert.Equal(t, "", Path())
}

func TestInitWritesComponentField(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	path := filepath.Join(t.TempDir(), "nested", "workty.log")
	require.NoError(t, Init(path))
	assert.Equal(t, path, Path())

	WithComponent("git").Info("worktree added", "path", "/tmp/wt")
	Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "component=git")
	assert.Contains(t, string(data), "worktree added")
}

func TestSetDebug(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	path := filepath.Join(t.TempDir(), "workty.log")
	require.NoError(t, Init(path))

	Get().Debug("hidden")
	SetDebug(true)
	Get().Debug("visible")
	Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "hidden"))
	assert.True(t, strings.Contains(string(data), "visible"))
}

func TestInitDefaultPathUsesStateDir(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)
	require.NoError(t, Init(""))
	assert.Equal(t, filepath.Join(state, "workty", "workty.log"), Path())
}
