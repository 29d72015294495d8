package lifecycle

import "errors"

var (
	ErrPathExists           = errors.New("path already exists")
	ErrBranchInUse          = errors.New("branch already checked out")
	ErrDirty                = errors.New("worktree has uncommitted changes")
	ErrProtectedWorktree    = errors.New("worktree is protected")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrAborted              = errors.New("aborted")
)

// Error is a failed operation with a message for the user and, when one
// exists, the command that fixes it.
type Error struct {
	Err  error
	Msg  string
	Hint string
	// Path is the location the error refers to, if any.
	Path string
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HintOf returns the remediation hint carried by err, if any.
func HintOf(err error) string {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr.Hint
	}
	return ""
}
