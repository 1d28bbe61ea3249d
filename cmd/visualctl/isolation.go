package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hairizuan-noorazman/visual-regression/isolation"
)

func newIsolationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "isolation",
		Short: "Inspect and clean up test isolation state",
	}
	cmd.AddCommand(newIsolationSessionsCmd())
	cmd.AddCommand(newIsolationCleanupCmd())
	return cmd
}

func newIsolationSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List known test sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			scanner := isolation.NewScanner(cfg.Paths.IsolationRoot, log)
			sessions, err := scanner.ActiveSessions(context.Background())
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				printMessage("No active sessions")
				return nil
			}

			rows := [][]string{}
			for _, s := range sessions {
				rows = append(rows, []string{
					s.SessionID,
					s.Environment,
					strconv.Itoa(s.PID),
					string(s.Status),
					s.StartedAt.Format("2006-01-02 15:04:05"),
					strconv.Itoa(s.TestsRun),
				})
			}
			printTable([]string{"SESSION", "ENVIRONMENT", "PID", "STATUS", "STARTED", "TESTS"}, rows)
			return nil
		},
	}
}

func newIsolationCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Reap stale locks, session records and temp directories",
		Long:  `Remove isolation artifacts whose owning process is gone: expired locks, session records of dead or completed runs, and their temp directories.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			scanner := isolation.NewScanner(cfg.Paths.IsolationRoot, log)
			removed, err := scanner.CleanupStale(context.Background())
			if err != nil {
				return err
			}
			printMessage(fmt.Sprintf("Removed %d stale isolation artifacts", removed))
			return nil
		},
	}
}
