package main

import (
	"context"
	"os"

	"github.com/workty/git-workty/internal/logger"
)

func main() {
	code := run(os.Args)
	logger.Close()
	os.Exit(code)
}

func run(args []string) int {
	a := newApp(os.Stdout, os.Stderr)
	return runApp(a, args)
}

func runApp(a *app, args []string) int {
	cmd := newRootCommand(a, args)
	return a.report(cmd.ExecuteContext(context.Background()))
}
