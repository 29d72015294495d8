// Package exec abstracts external command execution so the git and gh
// backends can be driven by pre-recorded responses in tests.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/workty/git-workty/internal/logger"
)

// CommandExecutor runs external commands scoped to a working directory.
type CommandExecutor interface {
	// Run executes a command and returns stdout, stderr and any error.
	Run(ctx context.Context, dir string, name string, args ...string) (stdout, stderr []byte, err error)

	// Output executes a command and returns stdout. A non-zero exit is
	// reported as an error carrying the trimmed stderr text.
	Output(ctx context.Context, dir string, name string, args ...string) ([]byte, error)

	// Start launches a command without waiting for it.
	Start(ctx context.Context, dir string, name string, args ...string) error

	// LookPath reports where an executable lives in PATH.
	LookPath(name string) (string, error)
}

// RealExecutor executes commands using os/exec.
type RealExecutor struct{}

// NewRealExecutor returns a new RealExecutor.
func NewRealExecutor() *RealExecutor {
	return &RealExecutor{}
}

func (e *RealExecutor) Run(ctx context.Context, dir string, name string, args ...string) (stdout, stderr []byte, err error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	started := time.Now()
	err = cmd.Run()
	logger.WithComponent("exec").Debug("command finished",
		"dir", dir,
		"cmd", name+" "+strings.Join(args, " "),
		"duration", time.Since(started),
		"error", err,
	)
	return stdoutBuf.Bytes(), stderrBuf.Bytes(), err
}

func (e *RealExecutor) Output(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	stdout, stderr, err := e.Run(ctx, dir, name, args...)
	if err != nil {
		return stdout, CommandError(err, stderr)
	}
	return stdout, nil
}

func (e *RealExecutor) Start(ctx context.Context, dir string, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	if err := cmd.Start(); err != nil {
		return err
	}
	logger.WithComponent("exec").Info("started detached command", "cmd", name, "dir", dir, "pid", cmd.Process.Pid)
	go func() { _ = cmd.Wait() }()
	return nil
}

func (e *RealExecutor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// CommandError prefers the command's own diagnostic over the bare exit status.
func CommandError(err error, output []byte) error {
	if err == nil {
		return nil
	}
	msg := strings.TrimSpace(string(output))
	if msg == "" {
		return err
	}
	return &Error{Message: msg, Err: err}
}

// Error is a failed command together with what it printed.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExitCode reports the exit status carried by err, or -1 when err did not
// come from a process that ran to completion.
func ExitCode(err error) int {
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	return -1
}

// ExitStatusError is a bare exit status, used by mocks to simulate commands
// that signal through their exit code.
type ExitStatusError struct {
	Code int
}

func (e *ExitStatusError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitStatusError) ExitCode() int {
	return e.Code
}

// MockResponse defines the response for a mocked command.
type MockResponse struct {
	Stdout []byte
	Stderr []byte
	Err    error
}

// CommandMatcher is a function that determines if a command matches.
type CommandMatcher func(dir, name string, args []string) bool

// MockRule defines a matching rule and its response.
type MockRule struct {
	Match    CommandMatcher
	Response MockResponse
}

// MockCall records a command invocation for verification.
type MockCall struct {
	Dir  string
	Name string
	Args []string
}

// MockExecutor returns pre-recorded responses for commands.
// Rules are matched in registration order; unmatched commands succeed with
// empty output.
type MockExecutor struct {
	mu      sync.RWMutex
	rules   []MockRule
	calls   []MockCall
	missing map[string]bool
}

// NewMockExecutor creates a new MockExecutor.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{missing: make(map[string]bool)}
}

// AddRule adds a matching rule with its response.
func (e *MockExecutor) AddRule(match CommandMatcher, response MockResponse) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = append(e.rules, MockRule{Match: match, Response: response})
}

// AddExactMatch adds a rule that matches a specific command exactly.
func (e *MockExecutor) AddExactMatch(name string, args []string, response MockResponse) {
	e.AddRule(func(_, n string, a []string) bool {
		if n != name || len(a) != len(args) {
			return false
		}
		for i, arg := range args {
			if a[i] != arg {
				return false
			}
		}
		return true
	}, response)
}

// AddPrefixMatch adds a rule that matches commands starting with specific args.
func (e *MockExecutor) AddPrefixMatch(name string, prefixArgs []string, response MockResponse) {
	e.AddRule(func(_, n string, a []string) bool {
		if n != name || len(a) < len(prefixArgs) {
			return false
		}
		for i, arg := range prefixArgs {
			if a[i] != arg {
				return false
			}
		}
		return true
	}, response)
}

// AddDirPrefixMatch is AddPrefixMatch restricted to one working directory.
func (e *MockExecutor) AddDirPrefixMatch(dir string, name string, prefixArgs []string, response MockResponse) {
	e.AddRule(func(d, n string, a []string) bool {
		if d != dir || n != name || len(a) < len(prefixArgs) {
			return false
		}
		for i, arg := range prefixArgs {
			if a[i] != arg {
				return false
			}
		}
		return true
	}, response)
}

// SetMissing makes LookPath fail for name.
func (e *MockExecutor) SetMissing(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.missing[name] = true
}

// GetCalls returns all recorded command invocations.
func (e *MockExecutor) GetCalls() []MockCall {
	e.mu.RLock()
	defer e.mu.RUnlock()
	calls := make([]MockCall, len(e.calls))
	copy(calls, e.calls)
	return calls
}

// CallsWithPrefix returns the recorded invocations of name whose args start with prefix.
func (e *MockExecutor) CallsWithPrefix(name string, prefix ...string) []MockCall {
	var out []MockCall
	for _, call := range e.GetCalls() {
		if call.Name != name || len(call.Args) < len(prefix) {
			continue
		}
		match := true
		for i, p := range prefix {
			if call.Args[i] != p {
				match = false
				break
			}
		}
		if match {
			out = append(out, call)
		}
	}
	return out
}

func (e *MockExecutor) findMatch(dir, name string, args []string) *MockResponse {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, rule := range e.rules {
		if rule.Match(dir, name, args) {
			resp := rule.Response
			return &resp
		}
	}
	return nil
}

func (e *MockExecutor) recordCall(dir, name string, args []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, MockCall{Dir: dir, Name: name, Args: append([]string(nil), args...)})
}

func (e *MockExecutor) Run(_ context.Context, dir string, name string, args ...string) (stdout, stderr []byte, err error) {
	e.recordCall(dir, name, args)
	if resp := e.findMatch(dir, name, args); resp != nil {
		return resp.Stdout, resp.Stderr, resp.Err
	}
	return nil, nil, nil
}

func (e *MockExecutor) Output(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	stdout, stderr, err := e.Run(ctx, dir, name, args...)
	if err != nil {
		return stdout, CommandError(err, stderr)
	}
	return stdout, nil
}

func (e *MockExecutor) Start(ctx context.Context, dir string, name string, args ...string) error {
	_, _, err := e.Run(ctx, dir, name, args...)
	return err
}

func (e *MockExecutor) LookPath(name string) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.missing[name] {
		return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
	}
	return "/usr/bin/" + name, nil
}

var _ CommandExecutor = (*RealExecutor)(nil)
var _ CommandExecutor = (*MockExecutor)(nil)
