package resolve

import (
	"fmt"

	"github.com/razor389/sec-queries/internal/facts"
	"github.com/razor389/sec-queries/internal/ruletable"
)

// MetricResolver orchestrates alias resolution against the fact index to
// produce one resolved value per metric per (company, fiscal year).
type MetricResolver struct {
	table   *ruletable.Table
	aliases *AliasResolver
}

// NewMetricResolver creates a MetricResolver over an immutable table
func NewMetricResolver(table *ruletable.Table) *MetricResolver {
	return &MetricResolver{table: table, aliases: NewAliasResolver(table)}
}

// ResolveAll resolves every metric key known to the merged rule set for the
// company, in configured order. Non-fatal conditions accumulate as
// diagnostics; the result map always contains an entry per key.
func (r *MetricResolver) ResolveAll(company string, year int, idx *facts.Index) (map[string]ResolvedMetric, []Diagnostic) {
	keys := r.table.MetricKeys(company)
	consolidated := r.table.ConsolidatedMembersFor(company)

	out := make(map[string]ResolvedMetric, len(keys))
	var diags []Diagnostic

	for _, key := range keys {
		rm, keyDiags := r.resolveKey(key, company, year, idx, consolidated)
		out[key] = rm
		diags = append(diags, keyDiags...)
	}

	return out, diags
}

// resolveKey applies the first-valid-alias-wins policy for one key
func (r *MetricResolver) resolveKey(key, company string, year int, idx *facts.Index, consolidated []string) (ResolvedMetric, []Diagnostic) {
	unresolved := ResolvedMetric{Key: key, Company: company, FiscalYear: year}

	candidates, err := r.aliases.Resolve(key, company, year)
	if err != nil {
		if amb, ok := err.(*AmbiguityError); ok {
			return unresolved, []Diagnostic{ambiguityDiag(key, amb)}
		}
		return unresolved, []Diagnostic{{
			Kind: DiagConfigAmbiguity, Key: key, Severity: SeverityError, Detail: err.Error(),
		}}
	}
	if len(candidates) == 0 {
		return unresolved, []Diagnostic{{
			Kind:     DiagUnresolved,
			Key:      key,
			Severity: SeverityWarning,
			Detail:   fmt.Sprintf("no alias entry valid for %d", year),
		}}
	}

	var multiDetail string

	for _, cand := range candidates {
		matched := r.query(cand, year, idx, consolidated)
		if len(matched) == 0 {
			continue
		}

		if cand.Strategy == ruletable.StrategyPickFirst {
			if len(matched) == 1 {
				f := matched[0]
				return ResolvedMetric{
					Key:        key,
					Company:    company,
					FiscalYear: year,
					Value:      f.Value,
					Resolved:   true,
					SourceTag:  f.Tag,
					Qualifiers: f.Dims,
				}, nil
			}
			// Ambiguous data on this candidate; keep trying the chain in
			// case a later alias yields exactly one fact.
			if multiDetail == "" {
				multiDetail = fmt.Sprintf("%d facts match %s for %d", len(matched), cand.Tag, year)
			}
			continue
		}

		// Declared aggregation strategy: fold every matching fact
		var acc Accumulator
		for _, f := range matched {
			acc.Update(f.Value, f.Date())
		}
		value, ok := acc.Result(cand.Strategy)
		if !ok {
			continue
		}
		rm := ResolvedMetric{
			Key:        key,
			Company:    company,
			FiscalYear: year,
			Value:      value,
			Resolved:   true,
			SourceTag:  cand.Tag,
		}
		if len(matched) == 1 {
			rm.Qualifiers = matched[0].Dims
		}
		return rm, nil
	}

	if multiDetail != "" {
		return unresolved, []Diagnostic{{
			Kind:     DiagMultipleMatch,
			Key:      key,
			Severity: SeverityError,
			Detail:   multiDetail,
		}}
	}
	return unresolved, []Diagnostic{{
		Kind:     DiagUnresolved,
		Key:      key,
		Severity: SeverityWarning,
		Detail:   fmt.Sprintf("no matching fact for %d", year),
	}}
}

// query runs one candidate against the index and filters to the fiscal
// year plus the rule's unit and period-type constraints. Queries without
// required qualifiers only see entity-wide facts, never segment slices that
// happen to share the tag.
func (r *MetricResolver) query(cand Candidate, year int, idx *facts.Index, consolidated []string) []facts.Fact {
	var pool []facts.Fact
	if len(cand.RequiredDims) == 0 {
		pool = idx.LookupConsolidated(cand.Tag, consolidated)
	} else {
		pool = idx.Lookup(cand.Tag, cand.RequiredDims)
	}

	var out []facts.Fact
	for _, f := range pool {
		if f.Year() != year {
			continue
		}
		if !unitMatch(f, cand.Units) {
			continue
		}
		if cand.PeriodType != "" && f.PeriodType() != cand.PeriodType {
			continue
		}
		out = append(out, f)
	}
	return out
}

func unitMatch(f facts.Fact, units []string) bool {
	if len(units) == 0 {
		return true
	}
	for _, u := range units {
		if f.Unit == u {
			return true
		}
	}
	return false
}
