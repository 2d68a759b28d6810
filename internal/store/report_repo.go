// Package store persists extraction reports to PostgreSQL.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/razor389/sec-queries/internal/extract"
	"github.com/razor389/sec-queries/internal/resolve"
)

// ReportRepository stores and loads extraction reports. All report access
// goes through here.
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository creates a report repository.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// Migrate applies the extraction schema.
func (r *ReportRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// SaveReport writes a full report in one transaction. Re-extracting the
// same filing replaces the previous rows.
func (r *ReportRepository) SaveReport(ctx context.Context, report *extract.Report) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	id := uuid.New()

	// Replace any earlier extraction of the same filing; child rows
	// cascade.
	_, err = tx.Exec(ctx,
		`DELETE FROM edgar.extractions WHERE ticker = $1 AND accession = $2`,
		report.Ticker, report.Accession)
	if err != nil {
		return fmt.Errorf("failed to clear previous extraction: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO edgar.extractions (
			id, ticker, cik, form, accession, filing_url, filing_date,
			fact_count, extracted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, report.Ticker, report.CIK, report.Form, report.Accession,
		report.FilingURL, report.FilingDate, report.FactCount, report.ExtractedAt)
	if err != nil {
		return fmt.Errorf("failed to insert extraction: %w", err)
	}

	for _, year := range report.Years {
		if err := r.saveYear(ctx, tx, id, year); err != nil {
			return fmt.Errorf("failed to save fiscal year %d: %w", year.FiscalYear, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *ReportRepository) saveYear(ctx context.Context, tx pgx.Tx, id uuid.UUID, year *resolve.Result) error {
	diags, err := json.Marshal(year.Diagnostics)
	if err != nil {
		return fmt.Errorf("failed to encode diagnostics: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO edgar.resolution_years (
			extraction_id, fiscal_year,
			identity_holds, identity_diff, tolerance, diagnostics
		) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, year.FiscalYear,
		year.Identity.Holds, year.Identity.Difference, year.Identity.Tolerance,
		diags)
	if err != nil {
		return err
	}

	if err := r.saveValues(ctx, tx, id, year.FiscalYear, "metric", year.Metrics); err != nil {
		return err
	}
	if err := r.saveValues(ctx, tx, id, year.FiscalYear, "segment", year.Segments); err != nil {
		return err
	}

	for category, total := range year.Categories {
		_, err := tx.Exec(ctx, `
			INSERT INTO edgar.category_totals (
				extraction_id, fiscal_year, category, total
			) VALUES ($1, $2, $3, $4)`,
			id, year.FiscalYear, category, total)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *ReportRepository) saveValues(ctx context.Context, tx pgx.Tx, id uuid.UUID, fiscalYear int, kind string, values map[string]resolve.ResolvedMetric) error {
	for key, m := range values {
		_, err := tx.Exec(ctx, `
			INSERT INTO edgar.resolved_values (
				extraction_id, fiscal_year, kind, metric_key,
				value, resolved, source_tag
			) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			id, fiscalYear, kind, key, m.Value, m.Resolved, m.SourceTag)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetLatest loads the most recent report stored for a ticker.
func (r *ReportRepository) GetLatest(ctx context.Context, ticker string) (*extract.Report, error) {
	var (
		id     uuid.UUID
		report extract.Report
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, ticker, cik, form, accession, filing_url, filing_date,
		       fact_count, extracted_at
		FROM edgar.extractions
		WHERE ticker = $1
		ORDER BY extracted_at DESC
		LIMIT 1`, ticker).Scan(
		&id, &report.Ticker, &report.CIK, &report.Form, &report.Accession,
		&report.FilingURL, &report.FilingDate, &report.FactCount, &report.ExtractedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load extraction: %w", err)
	}

	years, err := r.loadYears(ctx, id, report.Ticker)
	if err != nil {
		return nil, err
	}
	report.Years = years

	return &report, nil
}

func (r *ReportRepository) loadYears(ctx context.Context, id uuid.UUID, ticker string) ([]*resolve.Result, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT fiscal_year, identity_holds, identity_diff, tolerance, diagnostics
		FROM edgar.resolution_years
		WHERE extraction_id = $1
		ORDER BY fiscal_year`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query resolution years: %w", err)
	}
	defer rows.Close()

	var years []*resolve.Result
	for rows.Next() {
		year := &resolve.Result{
			Company:    ticker,
			Metrics:    make(map[string]resolve.ResolvedMetric),
			Segments:   make(map[string]resolve.ResolvedMetric),
			Categories: make(map[string]float64),
		}
		var diags []byte
		err := rows.Scan(&year.FiscalYear,
			&year.Identity.Holds, &year.Identity.Difference, &year.Identity.Tolerance,
			&diags)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resolution year: %w", err)
		}
		if err := json.Unmarshal(diags, &year.Diagnostics); err != nil {
			return nil, fmt.Errorf("failed to decode diagnostics: %w", err)
		}
		years = append(years, year)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating resolution years: %w", err)
	}

	for _, year := range years {
		if err := r.loadValues(ctx, id, year); err != nil {
			return nil, err
		}
		if err := r.loadCategories(ctx, id, year); err != nil {
			return nil, err
		}
	}

	return years, nil
}

func (r *ReportRepository) loadValues(ctx context.Context, id uuid.UUID, year *resolve.Result) error {
	rows, err := r.pool.Query(ctx, `
		SELECT kind, metric_key, value, resolved, source_tag
		FROM edgar.resolved_values
		WHERE extraction_id = $1 AND fiscal_year = $2`, id, year.FiscalYear)
	if err != nil {
		return fmt.Errorf("failed to query resolved values: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kind, key string
		m := resolve.ResolvedMetric{Company: year.Company, FiscalYear: year.FiscalYear}
		if err := rows.Scan(&kind, &key, &m.Value, &m.Resolved, &m.SourceTag); err != nil {
			return fmt.Errorf("failed to scan resolved value: %w", err)
		}
		m.Key = key
		switch kind {
		case "segment":
			year.Segments[key] = m
		default:
			year.Metrics[key] = m
		}
	}
	return rows.Err()
}

func (r *ReportRepository) loadCategories(ctx context.Context, id uuid.UUID, year *resolve.Result) error {
	rows, err := r.pool.Query(ctx, `
		SELECT category, total
		FROM edgar.category_totals
		WHERE extraction_id = $1 AND fiscal_year = $2`, id, year.FiscalYear)
	if err != nil {
		return fmt.Errorf("failed to query category totals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var total float64
		if err := rows.Scan(&category, &total); err != nil {
			return fmt.Errorf("failed to scan category total: %w", err)
		}
		year.Categories[category] = total
	}
	return rows.Err()
}

// ListExtractions returns the stored filings for a ticker, newest first.
func (r *ReportRepository) ListExtractions(ctx context.Context, ticker string, limit int) ([]ExtractionSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT ticker, form, accession, filing_date, fact_count, extracted_at
		FROM edgar.extractions
		WHERE ticker = $1
		ORDER BY extracted_at DESC
		LIMIT $2`, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query extractions: %w", err)
	}
	defer rows.Close()

	var out []ExtractionSummary
	for rows.Next() {
		var s ExtractionSummary
		err := rows.Scan(&s.Ticker, &s.Form, &s.Accession, &s.FilingDate,
			&s.FactCount, &s.ExtractedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan extraction: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
