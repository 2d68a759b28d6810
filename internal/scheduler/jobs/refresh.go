// Package jobs holds the concrete scheduled jobs.
package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/razor389/sec-queries/internal/extract"
	"github.com/razor389/sec-queries/pkg/config"
	"github.com/razor389/sec-queries/pkg/logger"
)

// FilingRefreshJob re-extracts the latest filing for every configured
// ticker so stored reports pick up newly published filings.
type FilingRefreshJob struct {
	service *extract.Service
	config  *config.Config
	logger  *logger.Logger
}

// NewFilingRefreshJob creates a filing refresh job.
func NewFilingRefreshJob(service *extract.Service, cfg *config.Config, log *logger.Logger) *FilingRefreshJob {
	return &FilingRefreshJob{
		service: service,
		config:  cfg,
		logger:  log,
	}
}

// Name returns the job name
func (j *FilingRefreshJob) Name() string {
	return "filing_refresh"
}

// Schedule returns the configured cron schedule
func (j *FilingRefreshJob) Schedule() string {
	return j.config.Scheduler.Schedule
}

// Run extracts the latest filing for every configured ticker. One bad
// ticker never stops the rest; failures are summed and reported once.
func (j *FilingRefreshJob) Run(ctx context.Context) error {
	runID := uuid.NewString()
	log := j.logger.WithField("run_id", runID)

	log.WithField("tickers", len(j.config.Scheduler.Tickers)).Info("Starting filing refresh")

	var failed int
	for _, ticker := range j.config.Scheduler.Tickers {
		report, err := j.service.Extract(ctx, extract.Request{
			Ticker: ticker,
			Form:   j.config.Scheduler.Form,
		})
		if err != nil {
			failed++
			log.WithError(err).WithField("ticker", ticker).Error("Refresh failed for ticker")
			continue
		}

		log.WithFields(map[string]interface{}{
			"ticker":    ticker,
			"accession": report.Accession,
			"years":     len(report.Years),
		}).Info("Refreshed filing")
	}

	if failed > 0 {
		return fmt.Errorf("filing refresh: %d of %d tickers failed", failed, len(j.config.Scheduler.Tickers))
	}

	return nil
}
