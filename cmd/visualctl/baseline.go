package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hairizuan-noorazman/visual-regression/baseline"
	"github.com/hairizuan-noorazman/visual-regression/logger"
	"github.com/hairizuan-noorazman/visual-regression/suite"
)

func newBaselineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage baseline images",
	}

	cmd.AddCommand(newBaselineGenerateCmd())
	cmd.AddCommand(newBaselineBackupCmd())
	cmd.AddCommand(newBaselineRestoreCmd())
	cmd.AddCommand(newBaselineListCmd())
	cmd.AddCommand(newBaselineCompareCmd())
	cmd.AddCommand(newBaselineCleanCmd())
	cmd.AddCommand(newBaselineInfoCmd())
	cmd.AddCommand(newBaselinePushCmd())
	cmd.AddCommand(newBaselinePullCmd())
	return cmd
}

// withBaselineStore loads config and runs fn against the baseline store.
func withBaselineStore(fn func(*baseline.Store, *Config, logger.Logger) error) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := newBaselineStore(cfg, log)
	if err != nil {
		return err
	}
	return fn(store, cfg, log)
}

func newBaselineGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate [suite...]",
		Short: "Capture new baseline images from the running app",
		Long:  `Capture each page at every device viewport as the new expected images. The existing baseline set is backed up first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
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
			runner := suite.NewRunner(suite.DefaultRegistry(), sess, reporter, env, log)

			if err := runner.CreateBaselines(context.Background(), args); err != nil {
				return err
			}
			printMessage("Baselines generated")
			return nil
		},
	}
}

func newBaselineBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup [name]",
		Short: "Back up the current baseline set",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBaselineStore(func(store *baseline.Store, cfg *Config, log logger.Logger) error {
				name := ""
				if len(args) > 0 {
					name = args[0]
				}
				version, err := store.Backup(name)
				if err != nil {
					return err
				}
				printMessage("Backed up baselines as " + version)
				return nil
			})
		},
	}
}

func newBaselineRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <version>",
		Short: "Restore a backed up baseline set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBaselineStore(func(store *baseline.Store, cfg *Config, log logger.Logger) error {
				if err := store.Restore(args[0]); err != nil {
					return err
				}
				printMessage("Restored baselines from " + args[0])
				return nil
			})
		},
	}
}

func newBaselineListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backed up baseline versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBaselineStore(func(store *baseline.Store, cfg *Config, log logger.Logger) error {
				versions, err := store.ListVersions()
				if err != nil {
					return err
				}
				if len(versions) == 0 {
					printMessage("No baseline versions found")
					return nil
				}
				for _, v := range versions {
					printMessage(v)
				}
				return nil
			})
		},
	}
}

func newBaselineCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <version1> [version2]",
		Short: "Compare two baseline versions (use \"current\" for the live set)",
		Long:  `Compare two baseline versions file by file. When only one version is given it is compared against the live baseline set.`,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBaselineStore(func(store *baseline.Store, cfg *Config, log logger.Logger) error {
				other := "current"
				if len(args) > 1 {
					other = args[1]
				}
				comparison, err := store.CompareVersions(args[0], other)
				if err != nil {
					return err
				}
				printJSON(comparison)
				return nil
			})
		},
	}
}

func newBaselineCleanCmd() *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete old baseline versions, keeping the newest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBaselineStore(func(store *baseline.Store, cfg *Config, log logger.Logger) error {
				removed, err := store.CleanOldVersions(keep)
				if err != nil {
					return err
				}
				printMessage(fmt.Sprintf("Removed %d old baseline versions", removed))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 5, "number of versions to keep")
	return cmd
}

func newBaselineInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the current baseline set",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBaselineStore(func(store *baseline.Store, cfg *Config, log logger.Logger) error {
				info, err := store.Info()
				if err != nil {
					return err
				}
				printJSON(info)
				return nil
			})
		},
	}
}

func newBaselinePushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Upload the current baseline set to blob storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBaselineStore(func(store *baseline.Store, cfg *Config, log logger.Logger) error {
				blob, err := newBlobStorage(cfg)
				if err != nil {
					return err
				}
				n, err := store.Push(context.Background(), blob)
				if err != nil {
					return err
				}
				printMessage(fmt.Sprintf("Pushed %d baseline files", n))
				return nil
			})
		},
	}
}

func newBaselinePullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Download the baseline set from blob storage",
		Long:  `Download the remote baseline set. The local set is backed up before being replaced.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBaselineStore(func(store *baseline.Store, cfg *Config, log logger.Logger) error {
				blob, err := newBlobStorage(cfg)
				if err != nil {
					return err
				}
				n, err := store.Pull(context.Background(), blob)
				if err != nil {
					return err
				}
				printMessage(fmt.Sprintf("Pulled %d baseline files", n))
				return nil
			})
		},
	}
}
