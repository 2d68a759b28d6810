package resolve

import (
	"github.com/razor389/sec-queries/internal/ruletable"
)

// Candidate is one (tag, constraints) pair to try against the fact index,
// carrying the owning rule's matching constraints.
type Candidate struct {
	Tag          string
	RequiredDims map[string][]string
	Units        []string
	PeriodType   string
	Strategy     ruletable.Strategy
}

// AliasResolver produces the ordered candidate list for a metric key under
// company overrides and year filtering.
type AliasResolver struct {
	table *ruletable.Table
}

// NewAliasResolver creates an AliasResolver over an immutable table
func NewAliasResolver(table *ruletable.Table) *AliasResolver {
	return &AliasResolver{table: table}
}

// Resolve returns the candidates for (key, company, year) in configured
// precedence order. The company profile's rule, when present, is used
// exclusively; otherwise the default rule applies. Entries are filtered to
// those whose year window contains the fiscal year.
//
// Year windows are meant to make the bounded set a singleton: when two
// year-bounded entries are simultaneously active the windows overlap, which
// is a configuration defect, and an AmbiguityError is returned instead of
// silently preferring one. Entries valid for all years form the ordered
// fallback chain and are exempt from that check.
//
// A key unknown to both scopes yields an empty list and no error; the
// caller treats it as unresolved.
func (r *AliasResolver) Resolve(key, company string, year int) ([]Candidate, error) {
	rule, ok := r.table.Rule(company, key)
	if !ok {
		return nil, nil
	}

	scope := "default"
	if p, isOverride := r.table.Companies[company]; isOverride {
		if _, overridden := p.Metrics[key]; overridden {
			scope = company
		}
	}

	var candidates []Candidate
	var boundedActive []string
	for _, e := range rule.Entries {
		if !e.Years.Contains(year) {
			continue
		}
		if !e.Years.Always() {
			boundedActive = append(boundedActive, e.Tag)
		}
		candidates = append(candidates, Candidate{
			Tag:          e.Tag,
			RequiredDims: rule.RequiredDims,
			Units:        rule.Units,
			PeriodType:   rule.PeriodType,
			Strategy:     rule.Strategy,
		})
	}

	if len(boundedActive) > 1 {
		return nil, &AmbiguityError{Scope: scope, Key: key, Year: year, Tags: boundedActive}
	}

	return candidates, nil
}
