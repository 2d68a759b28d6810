package resolve

import "github.com/razor389/sec-queries/internal/ruletable"

// Accumulator folds multiple matching facts into one value according to an
// aggregation strategy. The fold is order-independent for every strategy.
type Accumulator struct {
	count       int
	total       float64
	maxVal      float64
	minVal      float64
	latestVal   float64
	latestDate  string
	hasExtremes bool
}

// Update folds one value observed on a given date
func (a *Accumulator) Update(value float64, date string) {
	a.count++
	a.total += value
	if !a.hasExtremes {
		a.maxVal = value
		a.minVal = value
		a.hasExtremes = true
	} else {
		if value > a.maxVal {
			a.maxVal = value
		}
		if value < a.minVal {
			a.minVal = value
		}
	}
	if a.latestDate == "" || date > a.latestDate {
		a.latestDate = date
		a.latestVal = value
	}
}

// Count returns the number of folded values
func (a *Accumulator) Count() int {
	return a.count
}

// Result produces the aggregate for the strategy. The second return value
// is false when nothing was accumulated.
func (a *Accumulator) Result(strategy ruletable.Strategy) (float64, bool) {
	if a.count == 0 {
		return 0, false
	}
	switch strategy {
	case ruletable.StrategySum:
		return a.total, true
	case ruletable.StrategyAvg:
		return a.total / float64(a.count), true
	case ruletable.StrategyMax:
		return a.maxVal, true
	case ruletable.StrategyMin:
		return a.minVal, true
	case ruletable.StrategyLatestInYear:
		return a.latestVal, true
	}
	// pick_first never reaches accumulation
	return a.latestVal, true
}
