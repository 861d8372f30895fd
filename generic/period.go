package generic

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PERIOD - Inclusive date window shared by every rule
// =============================================================================

// Period is a time window [Start, End], inclusive on both ends.
//
// Examples:
//   - A Q window overriding every remanent in July
//   - A P window adding a surcharge during the holiday season
//   - A K window grouping a calendar year for projection
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Valid reports whether End is not before Start.
func (p Period) Valid() bool {
	return !p.End.Before(p.Start)
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// QPeriod overrides the remanent of every transaction inside it with Fixed.
type QPeriod struct {
	Period
	Fixed decimal.Decimal
}

// PPeriod adds Extra to the remanent of every transaction inside it.
type PPeriod struct {
	Period
	Extra decimal.Decimal
}

// KPeriod is a reporting window. It carries no amount.
type KPeriod struct {
	Period
}

// AnyContains returns true if at least one of the K-periods contains t.
func AnyContains(periods []KPeriod, t TimePoint) bool {
	for _, k := range periods {
		if k.Contains(t) {
			return true
		}
	}
	return false
}

// =============================================================================
// TIMELINE SEARCH - Binary search over an ascending slice of time points
// =============================================================================

// SearchAfter returns the index of the first point strictly after t.
func SearchAfter(points []TimePoint, t TimePoint) int {
	return sort.Search(len(points), func(i int) bool {
		return points[i].After(t)
	})
}

// SearchAtOrAfter returns the index of the first point at or after t.
func SearchAtOrAfter(points []TimePoint, t TimePoint) int {
	return sort.Search(len(points), func(i int) bool {
		return points[i].AfterOrEqual(t)
	})
}

// Range returns the half-open index range [lo, hi) of points inside p.
// An inverted period yields an empty range.
func (p Period) Range(points []TimePoint) (lo, hi int) {
	lo = SearchAtOrAfter(points, p.Start)
	hi = SearchAfter(points, p.End)
	if hi < lo {
		hi = lo
	}
	return lo, hi
}
