package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hairizuan-noorazman/visual-regression/logger"
	"github.com/hairizuan-noorazman/visual-regression/report"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate and serve test reports",
	}
	cmd.AddCommand(newReportGenerateCmd())
	cmd.AddCommand(newReportServeCmd())
	return cmd
}

func newReportGenerateCmd() *cobra.Command {
	var sessionID, format, output string
	var archive bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate report files for a session",
		Long:  `Generate report files for a session (the latest completed session when none is given). Formats: html, json, ci, or both for html+json.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			db, closeDB, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			reporter, store, err := newReporter(db, cfg, log)
			if err != nil {
				return err
			}

			if sessionID == "" {
				latest, err := store.LatestSession(ctx)
				if err != nil {
					return err
				}
				sessionID = latest.ID
			}

			var generated []string
			if format == "html" || format == "both" {
				path, err := reporter.GenerateHTML(ctx, sessionID, output)
				if err != nil {
					return err
				}
				generated = append(generated, path)
			}
			if format == "json" || format == "both" {
				path, err := reporter.GenerateJSON(ctx, sessionID, output)
				if err != nil {
					return err
				}
				generated = append(generated, path)
			}
			if format == "ci" {
				path, err := reporter.ExportCIMetrics(ctx, sessionID, output)
				if err != nil {
					return err
				}
				generated = append(generated, path)
			}
			if len(generated) == 0 {
				return fmt.Errorf("unknown report format: %s", format)
			}

			if archive {
				blob, err := newBlobStorage(cfg)
				if err != nil {
					return err
				}
				if err := reporter.Archive(ctx, blob, generated...); err != nil {
					return err
				}
			}

			for _, path := range generated {
				printMessage("Report generated: " + path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session ID (default: latest)")
	cmd.Flags().StringVar(&format, "format", "both", "report format: html, json, ci or both")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (single-format only)")
	cmd.Flags().BoolVar(&archive, "archive", false, "upload generated reports to blob storage")
	return cmd
}

func newReportServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve recorded sessions as browsable reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			db, closeDB, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			reporter, store, err := newReporter(db, cfg, log)
			if err != nil {
				return err
			}

			if addr == "" {
				addr = fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			}
			server := &http.Server{
				Addr:         addr,
				Handler:      report.NewServer(reporter, store, log).Router(),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			go func() {
				log.Info(ctx, "report server listening", logger.Fields{
					"address": addr,
				})
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error(ctx, "report server error", logger.Fields{
						"error": err.Error(),
					})
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			log.Info(ctx, "shutting down report server", nil)

			shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}
			log.Info(ctx, "report server stopped", nil)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.host:server.port)")
	return cmd
}
