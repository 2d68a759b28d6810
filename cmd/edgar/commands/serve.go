package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/razor389/sec-queries/internal/api"
	"github.com/razor389/sec-queries/internal/api/handlers"
	"github.com/razor389/sec-queries/internal/extract"
	"github.com/razor389/sec-queries/internal/secclient"
	"github.com/razor389/sec-queries/internal/store"
	"github.com/razor389/sec-queries/pkg/database"
	"github.com/razor389/sec-queries/pkg/logger"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the extraction API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                        - Health check
  POST /api/extract                   - Run an extraction
  GET  /api/reports/{ticker}          - Latest stored report
  GET  /api/reports/{ticker}/filings  - Stored filings for a ticker
  GET  /api/rules/{company}           - Effective rule profile

Example:
  go run ./cmd/edgar serve
  go run ./cmd/edgar serve --port 8080`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	log := logger.New(cfg)

	table, engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	// Storage is optional; without a database the server still extracts
	// but cannot serve stored reports.
	var reports *store.ReportRepository
	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		reports = store.NewReportRepository(db.Pool)
		if err := reports.Migrate(context.Background()); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
		log.Info("Connected to database")
	} else {
		log.Warn("DATABASE_URL not set, running without report storage")
	}

	client := secclient.New(cfg, log)

	var reportStore extract.Store
	if reports != nil {
		reportStore = reports
	}
	service := extract.New(client, engine, reportStore, log)

	extraction := handlers.NewExtractionHandler(service, reports, log)
	rules := handlers.NewRulesHandler(table)

	router := api.NewRouter(extraction, rules, log)
	server := api.New(cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
