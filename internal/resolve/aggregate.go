package resolve

import (
	"fmt"
	"math"

	"github.com/razor389/sec-queries/internal/ruletable"
)

// CategoryAggregator sums resolved balance-sheet metrics into category
// totals and checks the fundamental accounting identity.
type CategoryAggregator struct {
	table     *ruletable.Table
	tolerance float64
}

// NewCategoryAggregator creates an aggregator with the given identity
// tolerance (absolute)
func NewCategoryAggregator(table *ruletable.Table, tolerance float64) *CategoryAggregator {
	return &CategoryAggregator{table: table, tolerance: tolerance}
}

// Aggregate sums each category's metric values in configured key order.
// Unresolved metrics contribute zero; keys a category references but the
// merged rule set does not know are reported, never silently omitted. The
// sum itself is order-independent; the diagnostics order is not, it follows
// the configured order for determinism.
func (a *CategoryAggregator) Aggregate(company string, metrics map[string]ResolvedMetric) (map[string]float64, []Diagnostic) {
	totals := make(map[string]float64, len(ruletable.CategoryOrder))
	var diags []Diagnostic

	for _, cat := range ruletable.CategoryOrder {
		total := 0.0
		for _, key := range a.table.CategoryKeys(company, cat) {
			rm, ok := metrics[key]
			if !ok {
				diags = append(diags, Diagnostic{
					Kind:     DiagMissingKey,
					Key:      key,
					Severity: SeverityWarning,
					Detail:   fmt.Sprintf("category %s references unknown metric, aggregated as zero", cat),
				})
				continue
			}
			if rm.Resolved {
				total += rm.Value
			}
			// unresolved keys contribute zero; their diagnostics were
			// already recorded in configured order during resolution
		}
		totals[cat] = total
	}

	return totals, diags
}

// CheckIdentity verifies assets = liabilities + shareholders' equity within
// tolerance. A violation is reported, never corrected; the totals stand as
// computed.
func (a *CategoryAggregator) CheckIdentity(totals map[string]float64) (IdentityResult, []Diagnostic) {
	diff := totals[ruletable.CategoryAssets] -
		(totals[ruletable.CategoryLiabilities] + totals[ruletable.CategoryEquity])

	res := IdentityResult{
		Holds:      math.Abs(diff) <= a.tolerance,
		Difference: diff,
		Tolerance:  a.tolerance,
	}

	if res.Holds {
		return res, nil
	}
	return res, []Diagnostic{{
		Kind:     DiagIdentityViolation,
		Key:      "balance_sheet",
		Severity: SeverityError,
		Detail: fmt.Sprintf("assets - (liabilities + shareholders_equity) = %.2f exceeds tolerance %.2f",
			diff, a.tolerance),
	}}
}
