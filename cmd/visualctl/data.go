package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hairizuan-noorazman/visual-regression/fixture"
)

func newDataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Manage test data for the app under test",
	}
	cmd.AddCommand(newDataGenerateCmd())
	cmd.AddCommand(newDataSeedCmd())
	cmd.AddCommand(newDataScenarioCmd())
	cmd.AddCommand(newDataCleanupCmd())
	cmd.AddCommand(newDataExportCmd())
	cmd.AddCommand(newDataCredentialsCmd())
	return cmd
}

func newDataGenerateCmd() *cobra.Command {
	var users, orders int
	var seed int64

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate fixture data and save it to the fixtures directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			set := fixture.NewGenerator(seed).Generate(users, orders)

			files, err := fixture.NewFiles(cfg.Paths.FixturesDir, cfg.App.Environment)
			if err != nil {
				return err
			}
			if err := files.Save(set); err != nil {
				return err
			}
			printMessage(fmt.Sprintf("Generated %d users and %d orders into %s",
				len(set.Users), len(set.Orders), cfg.Paths.FixturesDir))
			return nil
		},
	}
	cmd.Flags().IntVar(&users, "users", 5, "number of users to generate")
	cmd.Flags().IntVar(&orders, "orders", 20, "number of orders to generate")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	return cmd
}

func newDataSeedCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the saved fixture set into the database",
		Long:  `Seed the fixture set from the fixtures directory into the database. Seeding is idempotent: existing test data is left alone unless --force is given.`,
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

			files, err := fixture.NewFiles(cfg.Paths.FixturesDir, cfg.App.Environment)
			if err != nil {
				return err
			}
			set, err := files.Load()
			if err != nil {
				return err
			}
			if len(set.Users) == 0 && len(set.Orders) == 0 {
				set = fixture.Set{Users: fixture.KnownUsers(), Orders: fixture.PinnedOrders()}
			}

			if err := newSeeder(db, log).Seed(context.Background(), set, force); err != nil {
				return err
			}
			printMessage(fmt.Sprintf("Seeded %d users and %d orders", len(set.Users), len(set.Orders)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "reseed even if test data already exists")
	return cmd
}

func newDataScenarioCmd() *cobra.Command {
	var seed int64

	cmd := &cobra.Command{
		Use:   "scenario [name]",
		Short: "Apply a named data scenario, or list the available ones",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			gen := fixture.NewGenerator(seed)
			if len(args) == 0 {
				rows := [][]string{}
				for _, sc := range fixture.Scenarios(gen) {
					rows = append(rows, []string{sc.Name, sc.Description})
				}
				printTable([]string{"NAME", "DESCRIPTION"}, rows)
				return nil
			}

			db, closeDB, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			set, err := newSeeder(db, log).ApplyScenario(context.Background(), gen, args[0])
			if err != nil {
				return err
			}
			printMessage(fmt.Sprintf("Applied scenario %s: %d users, %d orders",
				args[0], len(set.Users), len(set.Orders)))
			return nil
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed for generated scenario data")
	return cmd
}

func newDataCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove all test data from the database",
		Long:  `Remove every row marked as created for testing. Data the app's real users created is left untouched.`,
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

			if err := newSeeder(db, log).CleanupAll(context.Background()); err != nil {
				return err
			}
			printMessage("Test data removed")
			return nil
		},
	}
}

func newDataExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the saved fixture set with statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			files, err := fixture.NewFiles(cfg.Paths.FixturesDir, cfg.App.Environment)
			if err != nil {
				return err
			}
			set, err := files.Load()
			if err != nil {
				return err
			}

			path, err := files.Export(set, output)
			if err != nil {
				return err
			}
			printMessage("Exported fixture data to " + path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "export file path (default: timestamped name)")
	return cmd
}

func newDataCredentialsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "credentials",
		Short: "Print the login used by authenticated suites",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			printJSON(loadCredentials(cfg))
			return nil
		},
	}
}
