package ruletable

import (
	"fmt"
	"sort"
)

// ValidationError marks a structural defect in the rule table. These are
// fatal at load time; resolution never starts on a structurally invalid
// table.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// validate checks structural invariants across the whole table. Overlapping
// year windows are deliberately NOT checked here: an overlap only matters
// for the years it covers and surfaces as a per-key ConfigAmbiguity during
// resolution.
func validate(t *Table) error {
	if len(t.Default.Metrics) == 0 && len(t.Default.Segments) == 0 {
		return ValidationError{"default", "profile defines no metrics and no segments"}
	}

	if err := validateProfile("default", t.Default); err != nil {
		return err
	}

	tickers := make([]string, 0, len(t.Companies))
	for ticker := range t.Companies {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	for _, ticker := range tickers {
		if err := validateProfile("companies."+ticker, t.Companies[ticker]); err != nil {
			return err
		}
	}

	return nil
}

func validateProfile(scope string, p Profile) error {
	for _, key := range p.MetricOrder {
		rule := p.Metrics[key]
		if len(rule.Entries) == 0 {
			return ValidationError{scope + ".metrics." + key, "no alias entries"}
		}
		for _, e := range rule.Entries {
			if e.Tag == "" {
				return ValidationError{scope + ".metrics." + key, "empty alias tag"}
			}
		}
		if rule.PeriodType != "" && rule.PeriodType != "instant" && rule.PeriodType != "duration" {
			return ValidationError{scope + ".metrics." + key, fmt.Sprintf("bad period_type %q", rule.PeriodType)}
		}
	}

	for _, seg := range p.Segments {
		field := scope + ".segments." + seg.Name
		if seg.PeriodType != "instant" && seg.PeriodType != "duration" {
			return ValidationError{field, fmt.Sprintf("bad period_type %q", seg.PeriodType)}
		}
		for axis, member := range seg.Members {
			if axis == "" || member == "" {
				return ValidationError{field, "members must map axis to member"}
			}
		}
	}

	for axis, raw := range p.AxisAliases {
		if len(raw) == 0 {
			return ValidationError{scope + ".axis_aliases." + axis, "empty expansion"}
		}
	}

	return nil
}
