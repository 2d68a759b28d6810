package resolve

// ResolvedMetric is one resolved value for a metric key or segment name
type ResolvedMetric struct {
	Key        string            `json:"key"`
	Company    string            `json:"company"`
	FiscalYear int               `json:"fiscal_year"`
	Value      float64           `json:"value"`
	Resolved   bool              `json:"resolved"`
	SourceTag  string            `json:"source_tag,omitempty"`
	Qualifiers map[string]string `json:"qualifiers,omitempty"`
}

// IdentityResult is the outcome of the balance-sheet identity check:
// assets = liabilities + shareholders' equity, within tolerance.
type IdentityResult struct {
	Holds      bool    `json:"holds"`
	Difference float64 `json:"difference"`
	Tolerance  float64 `json:"tolerance"`
}

// Result is everything one (company, fiscal year) request produces. Partial
// results plus diagnostics, never a fatal fault for a missing metric.
type Result struct {
	Company    string                    `json:"company"`
	FiscalYear int                       `json:"fiscal_year"`
	Metrics    map[string]ResolvedMetric `json:"metrics"`
	Segments   map[string]ResolvedMetric `json:"segments"`
	Categories map[string]float64        `json:"categories"`
	Identity   IdentityResult            `json:"identity"`

	// Diagnostics lists unresolved keys, ambiguous matches and identity
	// violations in configured key order.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}
