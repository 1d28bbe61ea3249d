package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is the application version (set during build).
	Version = "dev"

	// Commit is the git commit hash (set during build).
	Commit = "unknown"

	// BuildDate is the build date (set during build).
	BuildDate = "unknown"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "visualctl",
	Short: "Visual regression testing harness",
	Long:  `Visual regression testing harness for the order management web app: baseline management, screenshot comparison, test data seeding and report generation.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newBaselineCmd())
	rootCmd.AddCommand(newCompareCmd())
	rootCmd.AddCommand(newDataCmd())
	rootCmd.AddCommand(newIsolationCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("visualctl %s (commit %s, built %s)\n", Version, Commit, BuildDate)
		},
	}
}
