package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare screenshots against baselines",
	}
	cmd.AddCommand(newCompareAllCmd())
	cmd.AddCommand(newCompareImagesCmd())
	return cmd
}

func newCompareAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Compare every captured screenshot against its baseline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			comp := newComparator(cfg, log)
			batch, err := comp.CompareAll(context.Background())
			if err != nil {
				return err
			}
			printJSON(batch)

			if !batch.Clean() {
				return fmt.Errorf("%d of %d comparisons did not pass",
					batch.Failed+batch.Errors, batch.Total)
			}
			return nil
		},
	}
}

func newCompareImagesCmd() *cobra.Command {
	var diffPath string
	var threshold float64

	cmd := &cobra.Command{
		Use:   "images <expected> <actual>",
		Short: "Compare two image files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			comp := newComparator(cfg, log)
			result := comp.Compare(args[0], args[1], diffPath, threshold)
			printJSON(result)

			if result.Error != "" {
				return fmt.Errorf("comparison failed: %s", result.Error)
			}
			if !result.Passed {
				return fmt.Errorf("similarity %.2f%% below threshold %.2f%%",
					result.Similarity, result.Threshold)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&diffPath, "diff", "", "write a difference image to this path on failure")
	cmd.Flags().Float64Var(&threshold, "threshold", 95.0, "similarity threshold percentage")
	return cmd
}
