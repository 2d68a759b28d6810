package facts

import "sort"

// Index provides lookup over a fact pool by tag and dimensional qualifiers.
// Building the index is the only mutation phase; afterwards it is read-only
// and safe for concurrent lookups.
type Index struct {
	byTag map[string][]Fact
	years []int
	size  int
}

// NewIndex builds an index from a raw fact pool. Duplicate facts (same tag,
// period and dimensional signature) collapse to the last occurrence.
func NewIndex(pool []Fact) *Index {
	dedup := make(map[string]Fact, len(pool))
	order := make([]string, 0, len(pool))
	for _, f := range pool {
		key := f.Key()
		if _, seen := dedup[key]; !seen {
			order = append(order, key)
		}
		dedup[key] = f
	}

	idx := &Index{byTag: make(map[string][]Fact)}
	yearSet := make(map[int]bool)
	for _, key := range order {
		f := dedup[key]
		idx.byTag[f.Tag] = append(idx.byTag[f.Tag], f)
		if y := f.Year(); y > 0 {
			yearSet[y] = true
		}
		idx.size++
	}

	for y := range yearSet {
		idx.years = append(idx.years, y)
	}
	sort.Ints(idx.years)

	return idx
}

// Len returns the number of distinct facts indexed
func (idx *Index) Len() int {
	return idx.size
}

// Years returns every fiscal year present in the pool, ascending
func (idx *Index) Years() []int {
	out := make([]int, len(idx.years))
	copy(out, idx.years)
	return out
}

// ByTag returns all facts carrying the tag, in pool order
func (idx *Index) ByTag(tag string) []Fact {
	return idx.byTag[tag]
}

// Lookup returns the facts for tag whose dimensional qualifiers contain at
// least the required axis→member pairs. Axes on the fact that the query
// does not mention are ignored; a required axis accepts any member in its
// list.
func (idx *Index) Lookup(tag string, required map[string][]string) []Fact {
	var out []Fact
	for _, f := range idx.byTag[tag] {
		if dimsMatch(f, required) {
			out = append(out, f)
		}
	}
	return out
}

// LookupConsolidated returns the facts for tag that represent the
// entity-wide value: facts with no qualifiers, or whose qualifiers consist
// solely of the given consolidated members. This distinguishes the
// consolidated total from a segment slice sharing the same tag.
func (idx *Index) LookupConsolidated(tag string, consolidated []string) []Fact {
	var out []Fact
	for _, f := range idx.byTag[tag] {
		if f.IsConsolidated(consolidated) {
			out = append(out, f)
		}
	}
	return out
}

// dimsMatch reports whether the fact's qualifiers are a superset of the
// required pairs
func dimsMatch(f Fact, required map[string][]string) bool {
	for axis, members := range required {
		got, ok := f.Dims[axis]
		if !ok {
			return false
		}
		found := false
		for _, m := range members {
			if got == m {
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
