package lifecycle

import (
	"context"
	"strings"

	"github.com/workty/git-workty/internal/logger"
)

// Starter launches a process without waiting for it.
type Starter interface {
	Start(ctx context.Context, dir string, name string, args ...string) error
}

// Open runs openCmd with path appended. It returns an error for the caller
// to report but the launched process is never waited on.
func Open(ctx context.Context, s Starter, openCmd, path string) error {
	fields := strings.Fields(openCmd)
	if len(fields) == 0 {
		return nil
	}
	args := append(fields[1:], path)
	if err := s.Start(ctx, path, fields[0], args...); err != nil {
		logger.WithComponent("lifecycle").Warn("open command failed", "cmd", openCmd, "error", err)
		return err
	}
	return nil
}
