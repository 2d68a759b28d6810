package ruletable

import (
	"fmt"
	"sort"
)

// normalizeProfile converts one on-disk profile into canonical form
func normalizeProfile(pc profileConfig) (Profile, error) {
	p := Profile{
		Metrics:             make(map[string]MetricRule),
		AxisAliases:         pc.AxisAliases,
		ConsolidatedMembers: pc.ConsolidatedMembers,
		Categories:          make(map[string][]string),
	}

	// Profit/loss metrics, configured order
	for _, mc := range pc.Metrics {
		rule, err := normalizeMetric(mc, "")
		if err != nil {
			return Profile{}, err
		}
		if err := addRule(&p, rule); err != nil {
			return Profile{}, err
		}
	}

	// concept_aliases shorthand: key -> alias shape. Map order is not
	// meaningful, keys are sorted for determinism.
	caKeys := make([]string, 0, len(pc.ConceptAliases))
	for k := range pc.ConceptAliases {
		caKeys = append(caKeys, k)
	}
	sort.Strings(caKeys)
	for _, key := range caKeys {
		if _, exists := p.Metrics[key]; exists {
			// explicit metrics entry wins over the shorthand
			continue
		}
		entries, err := normalizeAliasShape(pc.ConceptAliases[key], YearRange{})
		if err != nil {
			return Profile{}, fmt.Errorf("concept_aliases.%s: %w", key, err)
		}
		if err := addRule(&p, MetricRule{
			Key:      key,
			Entries:  entries,
			Strategy: StrategyPickFirst,
		}); err != nil {
			return Profile{}, err
		}
	}

	// Balance-sheet metrics, fixed category order
	for _, cat := range CategoryOrder {
		for _, mc := range pc.BalanceSheet[cat] {
			rule, err := normalizeMetric(mc, cat)
			if err != nil {
				return Profile{}, fmt.Errorf("balance_sheet_metrics.%s: %w", cat, err)
			}
			// Balance-sheet values are point-in-time; take the latest
			// disclosure within the year unless the rule says otherwise.
			if mc.Strategy == "" {
				rule.Strategy = StrategyLatestInYear
			}
			if mc.PeriodType == "" {
				rule.PeriodType = "instant"
			}
			if err := addRule(&p, rule); err != nil {
				return Profile{}, err
			}
			p.Categories[cat] = append(p.Categories[cat], rule.Key)
		}
	}
	for cat := range pc.BalanceSheet {
		if cat != CategoryAssets && cat != CategoryLiabilities && cat != CategoryEquity {
			return Profile{}, fmt.Errorf("unknown balance-sheet category %q", cat)
		}
	}

	// Segments
	for _, sc := range pc.Segments {
		seg, err := normalizeSegment(sc)
		if err != nil {
			return Profile{}, err
		}
		p.Segments = append(p.Segments, seg)
	}

	return p, nil
}

func addRule(p *Profile, rule MetricRule) error {
	if _, dup := p.Metrics[rule.Key]; dup {
		return fmt.Errorf("metric %q defined twice in one profile", rule.Key)
	}
	p.Metrics[rule.Key] = rule
	p.MetricOrder = append(p.MetricOrder, rule.Key)
	return nil
}

// normalizeMetric builds the canonical rule for one configured metric
func normalizeMetric(mc metricConfig, category string) (MetricRule, error) {
	key := mc.Key
	if key == "" {
		key = mc.Name
	}
	if key == "" {
		return MetricRule{}, fmt.Errorf("metric entry without key")
	}

	years, err := ParseYearRange(mc.Years)
	if err != nil {
		return MetricRule{}, fmt.Errorf("metric %s: %w", key, err)
	}

	entries, err := normalizeAliasShape(mc.Aliases, years)
	if err != nil {
		return MetricRule{}, fmt.Errorf("metric %s: %w", key, err)
	}
	if len(entries) == 0 {
		return MetricRule{}, fmt.Errorf("metric %s has no aliases", key)
	}

	strategy, err := ParseStrategy(mc.Strategy)
	if err != nil {
		return MetricRule{}, fmt.Errorf("metric %s: %w", key, err)
	}

	dims, err := normalizeRequiredDims(mc.RequiredDims)
	if err != nil {
		return MetricRule{}, fmt.Errorf("metric %s: %w", key, err)
	}

	return MetricRule{
		Key:          key,
		Entries:      entries,
		Strategy:     strategy,
		RequiredDims: dims,
		Units:        mc.Units,
		PeriodType:   mc.PeriodType,
		Category:     category,
	}, nil
}

// normalizeAliasShape flattens every accepted alias shape into the
// canonical entry list:
//
//	"us-gaap:Assets"
//	["us-gaap:Assets", "us-gaap:AssetsCurrent"]
//	{ tags: [...], years: "2019-2027" }
//	[ {tag: "...", years: "2016-2018"}, {tag: "...", years: "2019-2027"} ]
//
// outer applies to any alias that does not carry its own window.
func normalizeAliasShape(v interface{}, outer YearRange) ([]AliasEntry, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if val == "" {
			return nil, fmt.Errorf("empty alias tag")
		}
		return []AliasEntry{{Tag: val, Years: outer}}, nil
	case []interface{}:
		var out []AliasEntry
		for _, item := range val {
			entries, err := normalizeAliasShape(item, outer)
			if err != nil {
				return nil, err
			}
			out = append(out, entries...)
		}
		return out, nil
	case map[string]interface{}:
		return normalizeAliasObject(val, outer)
	}
	return nil, fmt.Errorf("unsupported alias shape %T", v)
}

func normalizeAliasObject(obj map[string]interface{}, outer YearRange) ([]AliasEntry, error) {
	years := outer
	if ys, ok := obj["years"].(string); ok {
		parsed, err := ParseYearRange(ys)
		if err != nil {
			return nil, err
		}
		years = parsed
	}

	var tags []string
	if tag, ok := obj["tag"].(string); ok && tag != "" {
		tags = append(tags, tag)
	}
	for _, field := range []string{"tags", "aliases"} {
		list, ok := obj[field].([]interface{})
		if !ok {
			continue
		}
		for _, item := range list {
			tag, ok := item.(string)
			if !ok || tag == "" {
				return nil, fmt.Errorf("alias object %s entries must be strings", field)
			}
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return nil, fmt.Errorf("alias object without tag/tags")
	}

	entries := make([]AliasEntry, 0, len(tags))
	for _, tag := range tags {
		entries = append(entries, AliasEntry{Tag: tag, Years: years})
	}
	return entries, nil
}

// normalizeRequiredDims accepts a single member or a member list per axis
func normalizeRequiredDims(raw map[string]interface{}) (map[string][]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string][]string, len(raw))
	for axis, v := range raw {
		switch val := v.(type) {
		case string:
			out[axis] = []string{val}
		case []interface{}:
			for _, item := range val {
				member, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("required_dims.%s members must be strings", axis)
				}
				out[axis] = append(out[axis], member)
			}
		default:
			return nil, fmt.Errorf("required_dims.%s has unsupported shape %T", axis, v)
		}
	}
	return out, nil
}

func normalizeSegment(sc segmentConfig) (SegmentDefinition, error) {
	if sc.Name == "" {
		return SegmentDefinition{}, fmt.Errorf("segment without name")
	}
	if sc.Tag == "" {
		return SegmentDefinition{}, fmt.Errorf("segment %s without tag", sc.Name)
	}
	if len(sc.Members) == 0 {
		return SegmentDefinition{}, fmt.Errorf("segment %s without members", sc.Name)
	}

	years, err := ParseYearRange(sc.Years)
	if err != nil {
		return SegmentDefinition{}, fmt.Errorf("segment %s: %w", sc.Name, err)
	}

	strategy, err := ParseStrategy(sc.Strategy)
	if err != nil {
		return SegmentDefinition{}, fmt.Errorf("segment %s: %w", sc.Name, err)
	}

	periodType := sc.PeriodType
	if periodType == "" {
		// segment revenue is a flow concept
		periodType = "duration"
	}

	return SegmentDefinition{
		Name:       sc.Name,
		Tag:        sc.Tag,
		Members:    sc.Members,
		Years:      years,
		Units:      sc.Units,
		PeriodType: periodType,
		Strategy:   strategy,
	}, nil
}
