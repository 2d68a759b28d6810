package store

import "time"

// ExtractionSummary is one row of the stored-filings listing.
type ExtractionSummary struct {
	Ticker      string    `json:"ticker"`
	Form        string    `json:"form"`
	Accession   string    `json:"accession"`
	FilingDate  string    `json:"filing_date"`
	FactCount   int       `json:"fact_count"`
	ExtractedAt time.Time `json:"extracted_at"`
}
