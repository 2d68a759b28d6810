// Package facts models the raw tagged facts extracted from a structured
// filing and indexes them for resolution-time lookup.
package facts

import (
	"sort"
	"strconv"
	"strings"
)

// Fact is a single raw disclosure value: a namespaced tag, the dimensional
// qualifiers of its context, its reporting period and numeric value. Facts
// are produced by the filing parser; the engine consumes them read-only.
type Fact struct {
	Tag       string
	Value     float64
	Unit      string
	Decimals  string
	Start     string // empty for instant facts
	End       string // end date, or the instant
	Dims      map[string]string
	ContextID string
}

// Year returns the fiscal year the fact reports on: the year of the end
// date for durations, of the instant otherwise. Zero when no usable date is
// present.
func (f Fact) Year() int {
	date := f.End
	if date == "" {
		date = f.Start
	}
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

// PeriodType reports "instant" or "duration"
func (f Fact) PeriodType() string {
	if f.Start == "" && f.End != "" {
		return "instant"
	}
	return "duration"
}

// Date returns the date used for latest-in-year ordering
func (f Fact) Date() string {
	if f.End != "" {
		return f.End
	}
	return f.Start
}

// IsConsolidated reports whether the fact is entity-wide: it carries no
// dimensional qualifiers at all, or every qualifier value is one of the
// configured consolidated members.
func (f Fact) IsConsolidated(consolidated []string) bool {
	if len(f.Dims) == 0 {
		return true
	}
	for _, member := range f.Dims {
		found := false
		for _, c := range consolidated {
			if member == c {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Signature returns a stable string form of the fact's dimensional
// qualifiers, used for deduplication and reporting
func (f Fact) Signature() string {
	if len(f.Dims) == 0 {
		return ""
	}
	axes := make([]string, 0, len(f.Dims))
	for axis := range f.Dims {
		axes = append(axes, axis)
	}
	sort.Strings(axes)

	var b strings.Builder
	for i, axis := range axes {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(axis)
		b.WriteByte('=')
		b.WriteString(f.Dims[axis])
	}
	return b.String()
}

// Key identifies a fact uniquely within a pool: tag + period + dimensional
// signature. Filings repeat facts across presentation contexts; the last
// occurrence wins when building an index.
func (f Fact) Key() string {
	return f.Tag + "|" + f.Start + "|" + f.End + "|" + f.Signature()
}
