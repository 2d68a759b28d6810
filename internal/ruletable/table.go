package ruletable

// profileFor returns the company profile and whether one exists
func (t *Table) profileFor(company string) (Profile, bool) {
	p, ok := t.Companies[company]
	return p, ok
}

// Rule returns the metric rule in effect for (company, key). A company
// profile's rule for a key fully replaces the default rule, never merges
// with it. The second return value is false when neither scope knows the
// key.
func (t *Table) Rule(company, key string) (MetricRule, bool) {
	if p, ok := t.profileFor(company); ok {
		if r, ok := p.Metrics[key]; ok {
			return r, true
		}
	}
	r, ok := t.Default.Metrics[key]
	return r, ok
}

// MetricKeys returns every metric key known to the merged rule set for the
// company: default keys in configured order, then company-only keys in the
// company profile's configured order.
func (t *Table) MetricKeys(company string) []string {
	keys := make([]string, 0, len(t.Default.MetricOrder))
	seen := make(map[string]bool, len(t.Default.MetricOrder))
	for _, k := range t.Default.MetricOrder {
		keys = append(keys, k)
		seen[k] = true
	}
	if p, ok := t.profileFor(company); ok {
		for _, k := range p.MetricOrder {
			if !seen[k] {
				keys = append(keys, k)
				seen[k] = true
			}
		}
	}
	return keys
}

// SegmentDefs returns the definitions for a segment name visible to the
// company. A company that defines the name at all replaces the default
// definitions for that name entirely.
func (t *Table) SegmentDefs(company, name string) []SegmentDefinition {
	if p, ok := t.profileFor(company); ok {
		var defs []SegmentDefinition
		for _, d := range p.Segments {
			if d.Name == name {
				defs = append(defs, d)
			}
		}
		if len(defs) > 0 {
			return defs
		}
	}
	var defs []SegmentDefinition
	for _, d := range t.Default.Segments {
		if d.Name == name {
			defs = append(defs, d)
		}
	}
	return defs
}

// SegmentNames returns every segment name visible to the company in
// configured order (default first, then company-only names)
func (t *Table) SegmentNames(company string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, d := range t.Default.Segments {
		if !seen[d.Name] {
			names = append(names, d.Name)
			seen[d.Name] = true
		}
	}
	if p, ok := t.profileFor(company); ok {
		for _, d := range p.Segments {
			if !seen[d.Name] {
				names = append(names, d.Name)
				seen[d.Name] = true
			}
		}
	}
	return names
}

// AxisExpansion resolves a logical axis name to its raw identifiers for the
// company. Returns nil when the name is not a registered logical axis, in
// which case callers use the name as a raw identifier unchanged.
func (t *Table) AxisExpansion(company, axis string) []string {
	if p, ok := t.profileFor(company); ok {
		if raw, ok := p.AxisAliases[axis]; ok {
			return raw
		}
	}
	return t.Default.AxisAliases[axis]
}

// ConsolidatedMembersFor returns the dimensional member values that mark a
// fact as entity-wide for the company
func (t *Table) ConsolidatedMembersFor(company string) []string {
	if p, ok := t.profileFor(company); ok {
		if len(p.ConsolidatedMembers) > 0 {
			return p.ConsolidatedMembers
		}
	}
	return t.Default.ConsolidatedMembers
}

// CategoryKeys returns the ordered metric keys composing a balance-sheet
// category for the company: default composition first, then keys only the
// company profile contributes.
func (t *Table) CategoryKeys(company, category string) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, k := range t.Default.Categories[category] {
		if !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	if p, ok := t.profileFor(company); ok {
		for _, k := range p.Categories[category] {
			if !seen[k] {
				keys = append(keys, k)
				seen[k] = true
			}
		}
	}
	return keys
}
