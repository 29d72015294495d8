package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/workty/git-workty/internal/doctor"
	"github.com/workty/git-workty/internal/ui"
)

func newDoctorCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose common setup issues",
		Long:  "Checks git, the current repository, worktrees, configuration and the GitHub CLI.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report := doctor.New(a.executor, a.backend, a.flags.dir).Run(cmd.Context())
			if a.flags.json {
				if err := a.out().WriteJSON(report); err != nil {
					return err
				}
			} else {
				opts := a.uiOptions()
				fmt.Fprint(a.stderr, doctor.Format(report, opts.ASCII, ui.NewStyles(a.stderr, opts.Color)))
			}
			if !report.OK() {
				return &exitError{code: exitFailure}
			}
			return nil
		},
	}
}
