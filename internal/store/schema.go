package store

// Schema holds the DDL for the extraction tables. Applied by the migrate
// command; safe to re-run.
const Schema = `
CREATE SCHEMA IF NOT EXISTS edgar;

CREATE TABLE IF NOT EXISTS edgar.extractions (
    id            UUID PRIMARY KEY,
    ticker        TEXT NOT NULL,
    cik           TEXT NOT NULL,
    form          TEXT NOT NULL,
    accession     TEXT NOT NULL,
    filing_url    TEXT NOT NULL,
    filing_date   TEXT NOT NULL DEFAULT '',
    fact_count    INTEGER NOT NULL,
    extracted_at  TIMESTAMPTZ NOT NULL,
    UNIQUE (ticker, accession)
);

CREATE TABLE IF NOT EXISTS edgar.resolution_years (
    extraction_id   UUID NOT NULL REFERENCES edgar.extractions(id) ON DELETE CASCADE,
    fiscal_year     INTEGER NOT NULL,
    identity_holds  BOOLEAN,
    identity_diff   DOUBLE PRECISION,
    tolerance       DOUBLE PRECISION,
    diagnostics     JSONB NOT NULL DEFAULT '[]',
    PRIMARY KEY (extraction_id, fiscal_year)
);

CREATE TABLE IF NOT EXISTS edgar.resolved_values (
    extraction_id  UUID NOT NULL REFERENCES edgar.extractions(id) ON DELETE CASCADE,
    fiscal_year    INTEGER NOT NULL,
    kind           TEXT NOT NULL,
    metric_key     TEXT NOT NULL,
    value          DOUBLE PRECISION,
    resolved       BOOLEAN NOT NULL,
    source_tag     TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (extraction_id, fiscal_year, kind, metric_key)
);

CREATE TABLE IF NOT EXISTS edgar.category_totals (
    extraction_id  UUID NOT NULL REFERENCES edgar.extractions(id) ON DELETE CASCADE,
    fiscal_year    INTEGER NOT NULL,
    category       TEXT NOT NULL,
    total          DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (extraction_id, fiscal_year, category)
);

CREATE INDEX IF NOT EXISTS idx_extractions_ticker
    ON edgar.extractions (ticker, extracted_at DESC);
`
