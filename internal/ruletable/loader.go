package ruletable

import (
	"fmt"
	"os"
	"sort"

	hjson "github.com/hjson/hjson-go/v4"
)

// On-disk shapes. The table is HJSON, which accepts the legacy JSON tables
// verbatim. Free-form entry shapes (plain string, list, object with
// aliases+years) are normalized into the canonical AliasEntry-list form by
// normalize.go; nothing past the loader branches on shape.

type fileConfig struct {
	Default   *profileConfig           `json:"default"`
	Companies map[string]profileConfig `json:"companies"`
}

type profileConfig struct {
	Metrics             []metricConfig            `json:"metrics"`
	ConceptAliases      map[string]interface{}    `json:"concept_aliases"`
	AxisAliases         map[string][]string       `json:"axis_aliases"`
	ConsolidatedMembers []string                  `json:"consolidated_members"`
	Segments            []segmentConfig           `json:"segments"`
	BalanceSheet        map[string][]metricConfig `json:"balance_sheet_metrics"`
}

type metricConfig struct {
	Key          string                 `json:"key"`
	Name         string                 `json:"name"`
	Aliases      interface{}            `json:"aliases"`
	Years        string                 `json:"years"`
	Strategy     string                 `json:"strategy"`
	RequiredDims map[string]interface{} `json:"required_dims"`
	Units        []string               `json:"units"`
	PeriodType   string                 `json:"period_type"`
}

type segmentConfig struct {
	Name       string            `json:"name"`
	Tag        string            `json:"tag"`
	Members    map[string]string `json:"members"`
	Years      string            `json:"years"`
	Strategy   string            `json:"strategy"`
	Units      []string          `json:"units"`
	PeriodType string            `json:"period_type"`
}

// Load reads and normalizes the rule table from path. Structural defects
// (missing default profile, malformed ranges, empty alias lists) are fatal
// here; year-window overlaps are not, they surface per key at resolution
// time.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule table: %w", err)
	}
	return Parse(data)
}

// Parse builds a Table from raw HJSON/JSON bytes
func Parse(data []byte) (*Table, error) {
	var fc fileConfig
	if err := hjson.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse rule table: %w", err)
	}

	if fc.Default == nil {
		return nil, fmt.Errorf("rule table has no default profile")
	}

	def, err := normalizeProfile(*fc.Default)
	if err != nil {
		return nil, fmt.Errorf("default profile: %w", err)
	}

	table := &Table{
		Default:   def,
		Companies: make(map[string]Profile, len(fc.Companies)),
	}

	// Deterministic company iteration keeps error reporting stable
	tickers := make([]string, 0, len(fc.Companies))
	for t := range fc.Companies {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	for _, ticker := range tickers {
		p, err := normalizeProfile(fc.Companies[ticker])
		if err != nil {
			return nil, fmt.Errorf("company %s: %w", ticker, err)
		}
		table.Companies[ticker] = p
	}

	if err := validate(table); err != nil {
		return nil, err
	}

	return table, nil
}
