// Package ruletable holds the layered mapping configuration that drives
// metric and segment resolution: which raw disclosure tags stand in for each
// standardized metric, how business segments are identified dimensionally,
// and how balance-sheet categories are composed. The table is loaded once,
// validated, and immutable afterwards.
package ruletable

import (
	"fmt"
	"strconv"
	"strings"
)

// Strategy selects how multiple matching facts collapse into one value.
// PickFirst carries the strict exactly-one-match policy; the others opt a
// rule into multi-fact accumulation.
type Strategy string

const (
	StrategyPickFirst    Strategy = "pick_first"
	StrategySum          Strategy = "sum"
	StrategyLatestInYear Strategy = "latest_in_year"
	StrategyMax          Strategy = "max"
	StrategyMin          Strategy = "min"
	StrategyAvg          Strategy = "avg"
)

// ParseStrategy validates a strategy string from configuration
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyPickFirst, StrategySum, StrategyLatestInYear, StrategyMax, StrategyMin, StrategyAvg:
		return Strategy(s), nil
	case "":
		return StrategyPickFirst, nil
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}

// YearRange is a closed inclusive fiscal-year window. The zero value means
// "always valid".
type YearRange struct {
	From int
	To   int
}

// Always reports whether the range is unbounded
func (r YearRange) Always() bool {
	return r.From == 0 && r.To == 0
}

// Contains reports whether year falls inside the range, inclusive on both
// ends
func (r YearRange) Contains(year int) bool {
	if r.Always() {
		return true
	}
	return year >= r.From && year <= r.To
}

// Overlaps reports whether two bounded ranges share at least one year.
// Unbounded ranges never count as overlapping; they form the fallback chain.
func (r YearRange) Overlaps(o YearRange) bool {
	if r.Always() || o.Always() {
		return false
	}
	return r.From <= o.To && o.From <= r.To
}

func (r YearRange) String() string {
	if r.Always() {
		return "always"
	}
	if r.From == r.To {
		return strconv.Itoa(r.From)
	}
	return fmt.Sprintf("%d-%d", r.From, r.To)
}

// ParseYearRange parses "2023-2027", a single year "2023", or "" (always)
func ParseYearRange(s string) (YearRange, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "always" {
		return YearRange{}, nil
	}

	parts := strings.SplitN(s, "-", 2)
	from, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return YearRange{}, fmt.Errorf("bad year range %q: %w", s, err)
	}
	to := from
	if len(parts) == 2 {
		to, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return YearRange{}, fmt.Errorf("bad year range %q: %w", s, err)
		}
	}
	if from > to {
		return YearRange{}, fmt.Errorf("bad year range %q: start after end", s)
	}
	return YearRange{From: from, To: to}, nil
}

// AliasEntry is one raw tag accepted for a metric, optionally restricted to
// a fiscal-year window
type AliasEntry struct {
	Tag   string
	Years YearRange
}

// MetricRule maps one metric key to its ordered alias chain plus matching
// constraints. A company profile's rule for a key entirely replaces the
// default rule for that key.
type MetricRule struct {
	Key          string
	Entries      []AliasEntry
	Strategy     Strategy
	RequiredDims map[string][]string
	Units        []string
	PeriodType   string // "instant", "duration" or "" (any)
	Category     string // balance-sheet category name, "" for profit/loss
}

// SegmentDefinition identifies a named business segment by a base tag plus
// explicit dimensional members. Several definitions may share a name with
// disjoint year windows when a segment's tagging changed across filing eras.
type SegmentDefinition struct {
	Name       string
	Tag        string
	Members    map[string]string // axis (logical or raw) -> member
	Years      YearRange
	Units      []string
	PeriodType string
	Strategy   Strategy
}

// Balance-sheet category roles. Category order is fixed by role so that
// aggregation and diagnostics are deterministic.
const (
	CategoryAssets      = "assets"
	CategoryLiabilities = "liabilities"
	CategoryEquity      = "shareholders_equity"
)

// CategoryOrder is the fixed aggregation order
var CategoryOrder = []string{CategoryAssets, CategoryLiabilities, CategoryEquity}

// Profile is one scope of the layered configuration: either the default
// profile or a single company's overrides.
type Profile struct {
	Metrics     map[string]MetricRule
	MetricOrder []string // configured order, drives deterministic diagnostics

	Segments []SegmentDefinition

	AxisAliases         map[string][]string
	ConsolidatedMembers []string

	// Categories maps category name to its ordered metric keys
	Categories map[string][]string
}

// Table is the immutable layered rule table: the default profile plus zero
// or more company profiles keyed by ticker.
type Table struct {
	Default   Profile
	Companies map[string]Profile
}
