package resolve

import (
	"fmt"

	"github.com/razor389/sec-queries/internal/facts"
	"github.com/razor389/sec-queries/internal/ruletable"
)

// SegmentMatcher resolves named business segments against the fact index.
// Segments are resolved metrics keyed by segment name rather than metric
// key; the matcher is a pure function of (definition, axis alias table,
// fact index).
type SegmentMatcher struct {
	table *ruletable.Table
}

// NewSegmentMatcher creates a SegmentMatcher over an immutable table
func NewSegmentMatcher(table *ruletable.Table) *SegmentMatcher {
	return &SegmentMatcher{table: table}
}

// ResolveAll resolves every segment name visible to the company, in
// configured order
func (m *SegmentMatcher) ResolveAll(company string, year int, idx *facts.Index) (map[string]ResolvedMetric, []Diagnostic) {
	names := m.table.SegmentNames(company)

	out := make(map[string]ResolvedMetric, len(names))
	var diags []Diagnostic
	for _, name := range names {
		rm, segDiags := m.Resolve(name, company, year, idx)
		out[name] = rm
		diags = append(diags, segDiags...)
	}
	return out, diags
}

// Resolve selects the single segment definition valid for the fiscal year
// and matches it against the index. Distinct definitions sharing the name
// model the same logical segment across filing eras; exactly one may be
// active per year. More than one active definition is a configuration
// defect for this segment only.
func (m *SegmentMatcher) Resolve(name, company string, year int, idx *facts.Index) (ResolvedMetric, []Diagnostic) {
	unresolved := ResolvedMetric{Key: name, Company: company, FiscalYear: year}

	defs := m.table.SegmentDefs(company, name)
	if len(defs) == 0 {
		return unresolved, []Diagnostic{{
			Kind:     DiagUnresolved,
			Key:      name,
			Severity: SeverityWarning,
			Detail:   "no segment definition",
		}}
	}

	var active []ruletable.SegmentDefinition
	for _, d := range defs {
		if d.Years.Contains(year) {
			active = append(active, d)
		}
	}
	if len(active) > 1 {
		tags := make([]string, 0, len(active))
		for _, d := range active {
			tags = append(tags, d.Tag)
		}
		amb := &AmbiguityError{Scope: scopeOf(m.table, company, name), Key: name, Year: year, Tags: tags}
		return unresolved, []Diagnostic{ambiguityDiag(name, amb)}
	}
	if len(active) == 0 {
		return unresolved, []Diagnostic{{
			Kind:     DiagUnresolved,
			Key:      name,
			Severity: SeverityWarning,
			Detail:   fmt.Sprintf("no segment definition valid for %d", year),
		}}
	}

	return m.match(active[0], company, year, idx)
}

// match queries the index with the definition's members, expanding logical
// axis names through the axis alias table
func (m *SegmentMatcher) match(def ruletable.SegmentDefinition, company string, year int, idx *facts.Index) (ResolvedMetric, []Diagnostic) {
	unresolved := ResolvedMetric{Key: def.Name, Company: company, FiscalYear: year}

	required := make(map[string][]string, len(def.Members))
	for axis, member := range def.Members {
		if raw := m.table.AxisExpansion(company, axis); len(raw) > 0 {
			// logical axis: any of its raw identifiers may carry the member
			for _, rawAxis := range raw {
				required[rawAxis] = append(required[rawAxis], member)
			}
		} else {
			// raw identifier used as-is
			required[axis] = append(required[axis], member)
		}
	}

	// Logical axes expand to several raw identifiers, only one of which a
	// given filing era uses; a fact matching ANY expansion qualifies.
	matched := m.lookupAnyAxis(def, required, year, idx)
	if len(matched) == 0 {
		return unresolved, []Diagnostic{{
			Kind:     DiagUnresolved,
			Key:      def.Name,
			Severity: SeverityWarning,
			Detail:   fmt.Sprintf("no fact matches %s for %d", def.Tag, year),
		}}
	}

	if def.Strategy == ruletable.StrategySum {
		var acc Accumulator
		for _, f := range matched {
			acc.Update(f.Value, f.Date())
		}
		value, _ := acc.Result(ruletable.StrategySum)
		rm := ResolvedMetric{
			Key:        def.Name,
			Company:    company,
			FiscalYear: year,
			Value:      value,
			Resolved:   true,
			SourceTag:  def.Tag,
		}
		if len(matched) == 1 {
			rm.Qualifiers = matched[0].Dims
		}
		return rm, nil
	}

	if len(matched) > 1 {
		return unresolved, []Diagnostic{{
			Kind:     DiagMultipleMatch,
			Key:      def.Name,
			Severity: SeverityError,
			Detail:   fmt.Sprintf("%d distinct facts match %s for %d", len(matched), def.Tag, year),
		}}
	}

	f := matched[0]
	return ResolvedMetric{
		Key:        def.Name,
		Company:    company,
		FiscalYear: year,
		Value:      f.Value,
		Resolved:   true,
		SourceTag:  f.Tag,
		Qualifiers: f.Dims,
	}, nil
}

// lookupAnyAxis collects the distinct facts matching the definition under
// any single raw-axis expansion
func (m *SegmentMatcher) lookupAnyAxis(def ruletable.SegmentDefinition, required map[string][]string, year int, idx *facts.Index) []facts.Fact {
	var matched []facts.Fact
	seen := make(map[string]bool)

	for _, f := range idx.ByTag(def.Tag) {
		if f.Year() != year {
			continue
		}
		if !unitMatch(f, def.Units) {
			continue
		}
		if def.PeriodType != "" && f.PeriodType() != def.PeriodType {
			continue
		}
		if !anyAxisMatch(f, required) {
			continue
		}
		if key := f.Key(); !seen[key] {
			seen[key] = true
			matched = append(matched, f)
		}
	}
	return matched
}

// anyAxisMatch reports whether, for every configured member, the fact
// carries it on at least one of the member's candidate axes
func anyAxisMatch(f facts.Fact, required map[string][]string) bool {
	// group candidate axes by member: a definition member must be present
	// under one of its axes
	matchedMembers := make(map[string]bool)
	wantMembers := make(map[string]bool)
	for axis, members := range required {
		for _, member := range members {
			wantMembers[member] = true
			if got, ok := f.Dims[axis]; ok && got == member {
				matchedMembers[member] = true
			}
		}
	}
	for member := range wantMembers {
		if !matchedMembers[member] {
			return false
		}
	}
	return true
}

// scopeOf names the scope that supplied the active definitions for error
// reporting
func scopeOf(t *ruletable.Table, company, name string) string {
	if p, ok := t.Companies[company]; ok {
		for _, d := range p.Segments {
			if d.Name == name {
				return company
			}
		}
	}
	return "default"
}
