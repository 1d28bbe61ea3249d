package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hairizuan-noorazman/visual-regression/suite"
)

func newRunCmd() *cobra.Command {
	var workers int
	var generateReports bool

	cmd := &cobra.Command{
		Use:   "run [suite...]",
		Short: "Run visual test suites",
		Long:  `Run the named visual test suites against the app, or every registered suite when none are named. Results are recorded and compared against the current baseline set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.Run.Workers = workers
			}

			db, closeDB, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			baselines, err := newBaselineStore(cfg, log)
			if err != nil {
				return err
			}
			reporter, _, err := newReporter(db, cfg, log)
			if err != nil {
				return err
			}
			sess, err := newIsolationSession(cfg, log)
			if err != nil {
				return err
			}
			defer sess.Close()

			env := newSuiteEnv(cfg, baselines, newSeeder(db, log), log)
			runner := suite.NewRunner(suite.DefaultRegistry(), sess, reporter, env, log,
				suite.WithWorkers(cfg.Run.Workers))

			session, err := runner.Run(ctx, args)
			if err != nil {
				return err
			}

			printTable(
				[]string{"TOTAL", "PASSED", "FAILED", "ERRORS", "AVG SIMILARITY"},
				[][]string{{
					fmt.Sprintf("%d", session.TotalTests),
					fmt.Sprintf("%d", session.PassedTests),
					fmt.Sprintf("%d", session.FailedTests),
					fmt.Sprintf("%d", session.ErrorTests),
					fmt.Sprintf("%.2f%%", session.AvgSimilarity),
				}},
			)

			if generateReports {
				htmlPath, err := reporter.GenerateHTML(ctx, session.ID, "")
				if err != nil {
					return err
				}
				jsonPath, err := reporter.GenerateJSON(ctx, session.ID, "")
				if err != nil {
					return err
				}
				printMessage("HTML report: " + htmlPath)
				printMessage("JSON report: " + jsonPath)
			}

			if session.FailedTests > 0 || session.ErrorTests > 0 {
				return fmt.Errorf("%d of %d visual tests did not pass (session %s)",
					session.FailedTests+session.ErrorTests, session.TotalTests, session.ID)
			}
			printMessage("All visual tests passed")
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "number of suites run concurrently")
	cmd.Flags().BoolVar(&generateReports, "reports", true, "generate HTML and JSON reports after the run")
	return cmd
}
