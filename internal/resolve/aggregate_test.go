package resolve

import (
	"testing"

	"github.com/razor389/sec-queries/internal/ruletable"
)

const balanceSheetTable = `{
	default: {
		balance_sheet_metrics: {
			assets: [
				{ key: "cash", aliases: "us-gaap:CashAndCashEquivalentsAtCarryingValue" }
				{ key: "investments", aliases: "us-gaap:Investments" }
			]
			liabilities: [
				{ key: "debt", aliases: "us-gaap:LongTermDebt" }
			]
			shareholders_equity: [
				{ key: "total_equity", aliases: "us-gaap:StockholdersEquity" }
			]
		}
	}
}`

func resolved(key string, value float64) ResolvedMetric {
	return ResolvedMetric{Key: key, FiscalYear: 2024, Value: value, Resolved: true}
}

func TestAggregateCategoryTotals(t *testing.T) {
	table := mustTable(t, balanceSheetTable)
	agg := NewCategoryAggregator(table, 1.0)

	totals, diags := agg.Aggregate("", map[string]ResolvedMetric{
		"cash":         resolved("cash", 60),
		"investments":  resolved("investments", 40),
		"debt":         resolved("debt", 60),
		"total_equity": resolved("total_equity", 40),
	})
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diagKinds(diags))
	}

	if totals[ruletable.CategoryAssets] != 100 {
		t.Errorf("assets = %v, want 100", totals[ruletable.CategoryAssets])
	}
	if totals[ruletable.CategoryLiabilities] != 60 {
		t.Errorf("liabilities = %v, want 60", totals[ruletable.CategoryLiabilities])
	}
	if totals[ruletable.CategoryEquity] != 40 {
		t.Errorf("shareholders_equity = %v, want 40", totals[ruletable.CategoryEquity])
	}
}

func TestAggregateUnresolvedContributesZero(t *testing.T) {
	table := mustTable(t, balanceSheetTable)
	agg := NewCategoryAggregator(table, 1.0)

	totals, diags := agg.Aggregate("", map[string]ResolvedMetric{
		"cash":         resolved("cash", 60),
		"investments":  {Key: "investments", FiscalYear: 2024}, // unresolved
		"debt":         resolved("debt", 60),
		"total_equity": resolved("total_equity", 40),
	})

	// the resolver already reported the unresolved key; aggregation adds
	// nothing for it
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diagKinds(diags))
	}
	if totals[ruletable.CategoryAssets] != 60 {
		t.Errorf("assets = %v, want 60", totals[ruletable.CategoryAssets])
	}
}

func TestAggregateMissingKeyReported(t *testing.T) {
	table := mustTable(t, balanceSheetTable)
	agg := NewCategoryAggregator(table, 1.0)

	// a result map missing a configured key entirely
	_, diags := agg.Aggregate("", map[string]ResolvedMetric{
		"cash": resolved("cash", 60),
	})

	if !hasDiag(diags, DiagMissingKey, "investments") {
		t.Errorf("diagnostics %v lack missing_key for investments", diagKinds(diags))
	}
}

func TestCheckIdentity(t *testing.T) {
	table := mustTable(t, balanceSheetTable)
	agg := NewCategoryAggregator(table, 1.0)

	// 100 = 60 + 40 holds exactly
	res, diags := agg.CheckIdentity(map[string]float64{
		ruletable.CategoryAssets:      100,
		ruletable.CategoryLiabilities: 60,
		ruletable.CategoryEquity:      40,
	})
	if !res.Holds || res.Difference != 0 || len(diags) != 0 {
		t.Errorf("exact identity = %+v, diags %v", res, diagKinds(diags))
	}

	// 100 vs 60 + 35 misses by 5, beyond tolerance 1
	res, diags = agg.CheckIdentity(map[string]float64{
		ruletable.CategoryAssets:      100,
		ruletable.CategoryLiabilities: 60,
		ruletable.CategoryEquity:      35,
	})
	if res.Holds {
		t.Errorf("identity = %+v, want violated", res)
	}
	if res.Difference != 5 {
		t.Errorf("difference = %v, want 5", res.Difference)
	}
	if !hasDiag(diags, DiagIdentityViolation, "balance_sheet") {
		t.Errorf("diagnostics %v lack identity_violation", diagKinds(diags))
	}

	// within tolerance sub-dollar rounding passes
	res, _ = agg.CheckIdentity(map[string]float64{
		ruletable.CategoryAssets:      100.4,
		ruletable.CategoryLiabilities: 60,
		ruletable.CategoryEquity:      40,
	})
	if !res.Holds {
		t.Errorf("identity = %+v, want within tolerance", res)
	}
}
