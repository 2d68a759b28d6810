// Package extract orchestrates the full pipeline for one filing: fetch,
// parse, index, then resolve every fiscal year the fact pool covers.
package extract

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/razor389/sec-queries/internal/facts"
	"github.com/razor389/sec-queries/internal/resolve"
	"github.com/razor389/sec-queries/internal/secclient"
	"github.com/razor389/sec-queries/internal/xbrl"
	"github.com/razor389/sec-queries/pkg/logger"
)

// Store persists extraction reports. Persistence is optional; a nil Store
// disables it.
type Store interface {
	SaveReport(ctx context.Context, report *Report) error
}

// Request names one filing to extract. Accession is optional; the most
// recent filing of the form is used when empty.
type Request struct {
	Ticker    string `json:"ticker"`
	Form      string `json:"form"`
	Accession string `json:"accession,omitempty"`
}

// Report is the outcome of one extraction: the filing identity plus one
// resolution result per fiscal year present in the fact pool, ascending.
type Report struct {
	Ticker      string            `json:"ticker"`
	CIK         string            `json:"cik"`
	Form        string            `json:"form"`
	Accession   string            `json:"accession"`
	FilingURL   string            `json:"filing_url"`
	FilingDate  string            `json:"filing_date"`
	FactCount   int               `json:"fact_count"`
	Years       []*resolve.Result `json:"years"`
	ExtractedAt time.Time         `json:"extracted_at"`
}

// Service runs extractions. It holds only immutable collaborators and is
// safe for concurrent use.
type Service struct {
	client *secclient.Client
	engine *resolve.Engine
	store  Store
	logger *logger.Logger
}

// New creates an extraction service. store may be nil.
func New(client *secclient.Client, engine *resolve.Engine, store Store, log *logger.Logger) *Service {
	return &Service{
		client: client,
		engine: engine,
		store:  store,
		logger: log,
	}
}

// Extract fetches the requested filing, parses its instance document and
// resolves every fiscal year in the pool. Resolution for distinct years is
// independent and runs concurrently.
func (s *Service) Extract(ctx context.Context, req Request) (*Report, error) {
	form := req.Form
	if form == "" {
		form = "10-K"
	}

	cik, err := s.client.CIKForTicker(ctx, req.Ticker)
	if err != nil {
		return nil, fmt.Errorf("resolve ticker %s: %w", req.Ticker, err)
	}

	filings, err := s.client.ListFilings(ctx, cik, form, 10)
	if err != nil {
		return nil, err
	}
	if len(filings) == 0 {
		return nil, fmt.Errorf("no %s filings for %s", form, req.Ticker)
	}

	chosen := filings[0]
	if req.Accession != "" {
		found := false
		for _, f := range filings {
			if f.Accession == req.Accession {
				chosen = f
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("accession %s not among recent %s filings for %s", req.Accession, form, req.Ticker)
		}
	}

	instanceURL, err := s.client.InstanceURL(ctx, chosen.FilingURL)
	if err != nil {
		return nil, err
	}

	data, err := s.client.FetchInstance(ctx, instanceURL)
	if err != nil {
		return nil, err
	}

	pool, err := xbrl.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse filing %s: %w", chosen.Accession, err)
	}

	report := s.Resolve(req.Ticker, pool)
	report.CIK = cik
	report.Form = form
	report.Accession = chosen.Accession
	report.FilingURL = chosen.FilingURL
	report.FilingDate = chosen.Date

	s.logger.WithFields(map[string]interface{}{
		"ticker":    req.Ticker,
		"accession": chosen.Accession,
		"facts":     report.FactCount,
		"years":     len(report.Years),
	}).Info("Extraction complete")

	if s.store != nil {
		if err := s.store.SaveReport(ctx, report); err != nil {
			// persistence failure never invalidates the computed report
			s.logger.WithError(err).WithField("ticker", req.Ticker).Error("Failed to persist report")
		}
	}

	return report, nil
}

// Resolve runs the engine over an already materialized fact pool, one
// result per fiscal year present. Years are independent and resolved
// concurrently; the index is built once and read-only afterwards.
func (s *Service) Resolve(ticker string, pool []facts.Fact) *Report {
	idx := facts.NewIndex(pool)
	years := idx.Years()

	results := make([]*resolve.Result, len(years))
	var wg sync.WaitGroup
	for i, year := range years {
		wg.Add(1)
		go func(i, year int) {
			defer wg.Done()
			results[i] = s.engine.Resolve(ticker, year, idx)
		}(i, year)
	}
	wg.Wait()

	return &Report{
		Ticker:      ticker,
		FactCount:   idx.Len(),
		Years:       results,
		ExtractedAt: time.Now().UTC(),
	}
}
