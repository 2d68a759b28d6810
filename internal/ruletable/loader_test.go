package ruletable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAliasShapes(t *testing.T) {
	table, err := Parse([]byte(`{
		default: {
			metrics: [
				{ key: "plain", aliases: "us-gaap:Revenues" }
				{ key: "chain", aliases: ["us-gaap:Revenues", "us-gaap:SalesRevenueNet"] }
				{
					key: "windowed"
					aliases: { tags: ["pri:CustomTag"], years: "2019-2027" }
				}
				{
					key: "mixed"
					aliases: [
						{ tag: "old:Tag", years: "2016-2018" }
						{ tag: "new:Tag", years: "2019-2027" }
					]
				}
				{ key: "outer_window", aliases: "us-gaap:OldTag", years: "2010-2015" }
			]
		}
	}`))
	require.NoError(t, err)

	plain, ok := table.Rule("", "plain")
	require.True(t, ok)
	require.Len(t, plain.Entries, 1)
	assert.Equal(t, "us-gaap:Revenues", plain.Entries[0].Tag)
	assert.True(t, plain.Entries[0].Years.Always())
	assert.Equal(t, StrategyPickFirst, plain.Strategy)

	chain, _ := table.Rule("", "chain")
	require.Len(t, chain.Entries, 2)
	assert.Equal(t, "us-gaap:Revenues", chain.Entries[0].Tag)
	assert.Equal(t, "us-gaap:SalesRevenueNet", chain.Entries[1].Tag)

	windowed, _ := table.Rule("", "windowed")
	require.Len(t, windowed.Entries, 1)
	assert.Equal(t, YearRange{From: 2019, To: 2027}, windowed.Entries[0].Years)

	mixed, _ := table.Rule("", "mixed")
	require.Len(t, mixed.Entries, 2)
	assert.Equal(t, YearRange{From: 2016, To: 2018}, mixed.Entries[0].Years)
	assert.Equal(t, YearRange{From: 2019, To: 2027}, mixed.Entries[1].Years)

	// metric-level years apply to aliases without their own window
	outer, _ := table.Rule("", "outer_window")
	require.Len(t, outer.Entries, 1)
	assert.Equal(t, YearRange{From: 2010, To: 2015}, outer.Entries[0].Years)
}

func TestParseConceptAliasShorthand(t *testing.T) {
	table, err := Parse([]byte(`{
		default: {
			concept_aliases: {
				interest_expense: ["us-gaap:InterestExpense"]
				income_tax: "us-gaap:IncomeTaxExpenseBenefit"
			}
		}
	}`))
	require.NoError(t, err)

	// shorthand keys are ordered alphabetically for determinism
	assert.Equal(t, []string{"income_tax", "interest_expense"}, table.MetricKeys(""))
}

func TestParseBalanceSheetDefaults(t *testing.T) {
	table, err := Parse([]byte(`{
		default: {
			balance_sheet_metrics: {
				assets: [
					{ key: "cash", aliases: "us-gaap:CashAndCashEquivalentsAtCarryingValue" }
				]
				shareholders_equity: [
					{ key: "total_equity", aliases: "us-gaap:StockholdersEquity", strategy: "pick_first", period_type: "duration" }
				]
			}
		}
	}`))
	require.NoError(t, err)

	cash, ok := table.Rule("", "cash")
	require.True(t, ok)
	assert.Equal(t, StrategyLatestInYear, cash.Strategy)
	assert.Equal(t, "instant", cash.PeriodType)
	assert.Equal(t, CategoryAssets, cash.Category)

	// explicit settings are not overridden by the balance-sheet defaults
	equity, _ := table.Rule("", "total_equity")
	assert.Equal(t, StrategyPickFirst, equity.Strategy)
	assert.Equal(t, "duration", equity.PeriodType)

	assert.Equal(t, []string{"cash"}, table.CategoryKeys("", CategoryAssets))
	assert.Empty(t, table.CategoryKeys("", CategoryLiabilities))
}

func TestParseStructuralErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "no default profile",
			input: `{ companies: { PGR: {} } }`,
		},
		{
			name:  "metric without key",
			input: `{ default: { metrics: [ { aliases: "us-gaap:Assets" } ] } }`,
		},
		{
			name:  "metric without aliases",
			input: `{ default: { metrics: [ { key: "cash" } ] } }`,
		},
		{
			name: "duplicate key in one profile",
			input: `{ default: { metrics: [
				{ key: "cash", aliases: "us-gaap:A" }
				{ key: "cash", aliases: "us-gaap:B" }
			] } }`,
		},
		{
			name:  "unknown balance-sheet category",
			input: `{ default: { balance_sheet_metrics: { goodwill: [ { key: "g", aliases: "us-gaap:Goodwill" } ] } } }`,
		},
		{
			name:  "bad year range",
			input: `{ default: { metrics: [ { key: "x", aliases: "us-gaap:X", years: "2027-2019" } ] } }`,
		},
		{
			name:  "bad strategy",
			input: `{ default: { metrics: [ { key: "x", aliases: "us-gaap:X", strategy: "median" } ] } }`,
		},
		{
			name: "segment without members",
			input: `{ default: { metrics: [ { key: "x", aliases: "us-gaap:X" } ],
				segments: [ { name: "s", tag: "us-gaap:Revenues" } ] } }`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestCompanyOverrideAccessors(t *testing.T) {
	table, err := Parse([]byte(`{
		default: {
			metrics: [
				{ key: "revenues", aliases: "us-gaap:Revenues" }
				{ key: "cash", aliases: "us-gaap:CashAndCashEquivalentsAtCarryingValue" }
			]
			axis_aliases: { segment: ["us-gaap:StatementBusinessSegmentsAxis"] }
			consolidated_members: ["srt:ConsolidatedEntitiesMember"]
			segments: [
				{ name: "auto", tag: "us-gaap:Revenues", members: { segment: "x:AutoMember" } }
			]
		}
		companies: {
			PGR: {
				metrics: [
					{ key: "cash", aliases: "us-gaap:CashCashEquivalentsRestrictedCashAndRestrictedCashEquivalents" }
					{ key: "float", aliases: "pgr:InsuranceFloat" }
				]
				segments: [
					{ name: "auto", tag: "us-gaap:Revenues", members: { segment: "pgr:PersonalAutoMember" } }
				]
			}
		}
	}`))
	require.NoError(t, err)

	// override fully replaces the default rule for the key
	cash, ok := table.Rule("PGR", "cash")
	require.True(t, ok)
	require.Len(t, cash.Entries, 1)
	assert.Equal(t, "us-gaap:CashCashEquivalentsRestrictedCashAndRestrictedCashEquivalents", cash.Entries[0].Tag)

	// untouched keys fall through to the default
	rev, ok := table.Rule("PGR", "revenues")
	require.True(t, ok)
	assert.Equal(t, "us-gaap:Revenues", rev.Entries[0].Tag)

	// merged key set: default order first, company-only keys after
	assert.Equal(t, []string{"revenues", "cash", "float"}, table.MetricKeys("PGR"))
	assert.Equal(t, []string{"revenues", "cash"}, table.MetricKeys("OTHER"))

	// company segment definitions replace defaults for the same name
	defs := table.SegmentDefs("PGR", "auto")
	require.Len(t, defs, 1)
	assert.Equal(t, "pgr:PersonalAutoMember", defs[0].Members["segment"])

	defaultDefs := table.SegmentDefs("OTHER", "auto")
	require.Len(t, defaultDefs, 1)
	assert.Equal(t, "x:AutoMember", defaultDefs[0].Members["segment"])

	// company without its own axis aliases or consolidated members
	// inherits the defaults
	assert.Equal(t, []string{"us-gaap:StatementBusinessSegmentsAxis"}, table.AxisExpansion("PGR", "segment"))
	assert.Equal(t, []string{"srt:ConsolidatedEntitiesMember"}, table.ConsolidatedMembersFor("PGR"))
}

func TestLoadShippedTable(t *testing.T) {
	table, err := Load("../../config/rules.hjson")
	require.NoError(t, err)

	// spot checks on the shipped configuration
	rev, ok := table.Rule("", "revenues")
	require.True(t, ok)
	assert.Equal(t, "us-gaap:Revenues", rev.Entries[0].Tag)

	cash, _ := table.Rule("PGR", "cash")
	assert.Equal(t, "us-gaap:CashCashEquivalentsRestrictedCashAndRestrictedCashEquivalents", cash.Entries[0].Tag)

	defs := table.SegmentDefs("PRI", "term_life")
	require.Len(t, defs, 2)
	assert.False(t, defs[0].Years.Overlaps(defs[1].Years))
}
