package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/razor389/sec-queries/internal/extract"
	"github.com/razor389/sec-queries/internal/scheduler"
	"github.com/razor389/sec-queries/internal/scheduler/jobs"
	"github.com/razor389/sec-queries/internal/secclient"
	"github.com/razor389/sec-queries/internal/store"
	"github.com/razor389/sec-queries/pkg/database"
	"github.com/razor389/sec-queries/pkg/logger"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the scheduled filing refresh worker",
	Long: `Runs the background worker that periodically re-extracts the latest
filing for every configured ticker and stores the reports.

Configuration:
  SCHEDULER_SCHEDULE  cron expression (default "0 0 6 * * *")
  SCHEDULER_TICKERS   comma-separated tickers to refresh
  SCHEDULER_FORM      filing form type (default "10-K")

Example:
  go run ./cmd/edgar worker
  go run ./cmd/edgar worker --now`,
	RunE: runWorker,
}

var workerRunNow bool

func init() {
	rootCmd.AddCommand(workerCmd)

	workerCmd.Flags().BoolVar(&workerRunNow, "now", false, "run the refresh once immediately on startup")
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	if len(cfg.Scheduler.Tickers) == 0 {
		return fmt.Errorf("SCHEDULER_TICKERS is empty, nothing to refresh")
	}

	_, engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	reports := store.NewReportRepository(db.Pool)
	if err := reports.Migrate(context.Background()); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	client := secclient.New(cfg, log)
	service := extract.New(client, engine, reports, log)

	sched := scheduler.New(log)
	job := jobs.NewFilingRefreshJob(service, cfg, log)
	if err := sched.AddJob(job); err != nil {
		return err
	}

	sched.Start()
	defer sched.Stop()

	if workerRunNow {
		if err := sched.RunJob(job.Name()); err != nil {
			return err
		}
	}

	log.WithFields(map[string]interface{}{
		"schedule": job.Schedule(),
		"tickers":  cfg.Scheduler.Tickers,
	}).Info("Worker started")
	fmt.Println("Worker running, press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return nil
}
