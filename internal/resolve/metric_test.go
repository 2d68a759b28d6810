package resolve

import (
	"testing"

	"github.com/razor389/sec-queries/internal/facts"
)

func fyFact(tag string, value float64, dims map[string]string) facts.Fact {
	return facts.Fact{
		Tag:   tag,
		Value: value,
		Unit:  "USD",
		Start: "2024-01-01",
		End:   "2024-12-31",
		Dims:  dims,
	}
}

func diagKinds(diags []Diagnostic) []DiagKind {
	kinds := make([]DiagKind, 0, len(diags))
	for _, d := range diags {
		kinds = append(kinds, d.Kind)
	}
	return kinds
}

func hasDiag(diags []Diagnostic, kind DiagKind, key string) bool {
	for _, d := range diags {
		if d.Kind == kind && d.Key == key {
			return true
		}
	}
	return false
}

func TestResolveMetricSingleMatch(t *testing.T) {
	table := mustTable(t, `{
		default: {
			metrics: [ { key: "revenues", aliases: "us-gaap:Revenues", units: ["USD"], period_type: "duration" } ]
		}
	}`)
	idx := facts.NewIndex([]facts.Fact{
		fyFact("us-gaap:Revenues", 1200, nil),
	})

	metrics, diags := NewMetricResolver(table).ResolveAll("", 2024, idx)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diagKinds(diags))
	}

	rev := metrics["revenues"]
	if !rev.Resolved || rev.Value != 1200 || rev.SourceTag != "us-gaap:Revenues" {
		t.Errorf("revenues = %+v", rev)
	}
	if rev.FiscalYear != 2024 {
		t.Errorf("FiscalYear = %d, want 2024", rev.FiscalYear)
	}
}

func TestResolveMetricFallbackChain(t *testing.T) {
	table := mustTable(t, `{
		default: {
			metrics: [
				{ key: "revenues", aliases: ["us-gaap:Revenues", "us-gaap:SalesRevenueNet"] }
			]
		}
	}`)

	// only the second alias has a fact
	idx := facts.NewIndex([]facts.Fact{
		fyFact("us-gaap:SalesRevenueNet", 900, nil),
	})

	metrics, diags := NewMetricResolver(table).ResolveAll("", 2024, idx)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diagKinds(diags))
	}
	rev := metrics["revenues"]
	if !rev.Resolved || rev.SourceTag != "us-gaap:SalesRevenueNet" {
		t.Errorf("revenues = %+v, want fallback to second alias", rev)
	}
}

func TestResolveMetricConsolidatedGate(t *testing.T) {
	table := mustTable(t, `{
		default: {
			metrics: [ { key: "revenues", aliases: "us-gaap:Revenues" } ]
		}
	}`)

	// a segment slice shares the tag; without required dims the query must
	// see only the entity-wide fact, otherwise both would match and the
	// key would come back ambiguous
	idx := facts.NewIndex([]facts.Fact{
		fyFact("us-gaap:Revenues", 1000, nil),
		fyFact("us-gaap:Revenues", 400, map[string]string{
			"us-gaap:StatementBusinessSegmentsAxis": "x:AutoMember",
		}),
	})

	metrics, diags := NewMetricResolver(table).ResolveAll("", 2024, idx)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diagKinds(diags))
	}
	if rev := metrics["revenues"]; !rev.Resolved || rev.Value != 1000 {
		t.Errorf("revenues = %+v, want the consolidated 1000", rev)
	}
}

func TestResolveMetricRequiredDims(t *testing.T) {
	table := mustTable(t, `{
		default: {
			metrics: [
				{
					key: "auto_revenues"
					aliases: "us-gaap:Revenues"
					required_dims: { "us-gaap:StatementBusinessSegmentsAxis": "x:AutoMember" }
				}
			]
		}
	}`)

	idx := facts.NewIndex([]facts.Fact{
		fyFact("us-gaap:Revenues", 1000, nil),
		fyFact("us-gaap:Revenues", 400, map[string]string{
			"us-gaap:StatementBusinessSegmentsAxis": "x:AutoMember",
		}),
	})

	metrics, diags := NewMetricResolver(table).ResolveAll("", 2024, idx)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diagKinds(diags))
	}
	if m := metrics["auto_revenues"]; !m.Resolved || m.Value != 400 {
		t.Errorf("auto_revenues = %+v, want the qualified 400", m)
	}
}

func TestResolveMetricMultipleMatch(t *testing.T) {
	table := mustTable(t, `{
		default: {
			metrics: [ { key: "revenues", aliases: "us-gaap:Revenues" } ]
		}
	}`)

	// two distinct consolidated facts for the same year (different
	// periods), no later alias to disambiguate through
	q4 := fyFact("us-gaap:Revenues", 300, nil)
	q4.Start = "2024-10-01"
	idx := facts.NewIndex([]facts.Fact{
		fyFact("us-gaap:Revenues", 1000, nil),
		q4,
	})

	metrics, diags := NewMetricResolver(table).ResolveAll("", 2024, idx)
	if m := metrics["revenues"]; m.Resolved {
		t.Errorf("revenues = %+v, want unresolved on ambiguous data", m)
	}
	if !hasDiag(diags, DiagMultipleMatch, "revenues") {
		t.Errorf("diagnostics %v lack multiple_match", diagKinds(diags))
	}
}

func TestResolveMetricChainPastAmbiguousAlias(t *testing.T) {
	table := mustTable(t, `{
		default: {
			metrics: [
				{ key: "revenues", aliases: ["us-gaap:Revenues", "us-gaap:SalesRevenueNet"] }
			]
		}
	}`)

	// first alias is ambiguous, second yields exactly one fact: the chain
	// continues and resolves
	q4 := fyFact("us-gaap:Revenues", 300, nil)
	q4.Start = "2024-10-01"
	idx := facts.NewIndex([]facts.Fact{
		fyFact("us-gaap:Revenues", 1000, nil),
		q4,
		fyFact("us-gaap:SalesRevenueNet", 950, nil),
	})

	metrics, diags := NewMetricResolver(table).ResolveAll("", 2024, idx)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diagKinds(diags))
	}
	if m := metrics["revenues"]; !m.Resolved || m.Value != 950 {
		t.Errorf("revenues = %+v, want 950 from the second alias", m)
	}
}

func TestResolveMetricUnresolved(t *testing.T) {
	table := mustTable(t, `{
		default: {
			metrics: [ { key: "revenues", aliases: "us-gaap:Revenues" } ]
		}
	}`)
	idx := facts.NewIndex(nil)

	metrics, diags := NewMetricResolver(table).ResolveAll("", 2024, idx)
	if m := metrics["revenues"]; m.Resolved {
		t.Errorf("revenues = %+v, want unresolved", m)
	}
	if !hasDiag(diags, DiagUnresolved, "revenues") {
		t.Errorf("diagnostics %v lack unresolved", diagKinds(diags))
	}
}

func TestResolveMetricConfigAmbiguity(t *testing.T) {
	table := mustTable(t, `{
		default: {
			metrics: [
				{
					key: "revenues"
					aliases: [
						{ tag: "a:Tag", years: "2016-2019" }
						{ tag: "b:Tag", years: "2018-2020" }
					]
				}
			]
		}
	}`)
	idx := facts.NewIndex([]facts.Fact{fyFact("a:Tag", 100, nil)})

	metrics, diags := NewMetricResolver(table).ResolveAll("", 2024, idx)
	_ = metrics

	// 2024 is outside both windows: unresolved, not ambiguous
	if !hasDiag(diags, DiagUnresolved, "revenues") {
		t.Errorf("2024 diagnostics %v lack unresolved", diagKinds(diags))
	}

	metrics, diags = NewMetricResolver(table).ResolveAll("", 2018, idx)
	if m := metrics["revenues"]; m.Resolved {
		t.Errorf("revenues = %+v, want aborted on config ambiguity", m)
	}
	if !hasDiag(diags, DiagConfigAmbiguity, "revenues") {
		t.Errorf("2018 diagnostics %v lack config_ambiguity", diagKinds(diags))
	}
}

func TestResolveMetricYearAndUnitFilters(t *testing.T) {
	table := mustTable(t, `{
		default: {
			metrics: [ { key: "revenues", aliases: "us-gaap:Revenues", units: ["USD"] } ]
		}
	}`)

	prior := fyFact("us-gaap:Revenues", 800, nil)
	prior.Start = "2023-01-01"
	prior.End = "2023-12-31"
	euros := fyFact("us-gaap:Revenues", 5, nil)
	euros.Unit = "EUR"
	euros.Start = "2024-04-01"

	idx := facts.NewIndex([]facts.Fact{
		prior,
		euros,
		fyFact("us-gaap:Revenues", 1000, nil),
	})

	metrics, diags := NewMetricResolver(table).ResolveAll("", 2024, idx)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diagKinds(diags))
	}
	if m := metrics["revenues"]; !m.Resolved || m.Value != 1000 {
		t.Errorf("revenues = %+v, want 1000 after year and unit filtering", m)
	}
}

func TestResolveMetricLatestInYearStrategy(t *testing.T) {
	table := mustTable(t, `{
		default: {
			balance_sheet_metrics: {
				assets: [ { key: "cash", aliases: "us-gaap:CashAndCashEquivalentsAtCarryingValue" } ]
			}
		}
	}`)

	q2 := facts.Fact{Tag: "us-gaap:CashAndCashEquivalentsAtCarryingValue", Value: 450, Unit: "USD", End: "2024-06-30"}
	fy := facts.Fact{Tag: "us-gaap:CashAndCashEquivalentsAtCarryingValue", Value: 500, Unit: "USD", End: "2024-12-31"}
	idx := facts.NewIndex([]facts.Fact{q2, fy})

	metrics, diags := NewMetricResolver(table).ResolveAll("", 2024, idx)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diagKinds(diags))
	}
	if m := metrics["cash"]; !m.Resolved || m.Value != 500 {
		t.Errorf("cash = %+v, want the year-end 500", m)
	}
}
