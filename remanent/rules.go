/*
rules.go - Q and P period rules

PURPOSE:
  Adjusts remanents according to time windows supplied with the request.
  Both rules take transactions sorted ascending by timestamp and a parallel
  remanent slice, mutate the slice in place and return it.

Q RULE (override):
  The remanent of a transaction inside a Q window is REPLACED by the window's
  fixed value. When windows overlap, only the one with the latest start at or
  before the transaction applies (binary search over sorted starts).

P RULE (additive):
  The remanent of a transaction inside one or more P windows gets the SUM of
  their extras added. Implemented as a sweep over start/end events.

ORDER MATTERS:
  Q runs first, P second. A transaction inside both ends with fixed + extra.

BOUNDARIES:
  Both rules treat windows as inclusive on both ends. For P this is encoded in
  the event order: start events sort before end events at the same instant,
  and an end event only fires for transactions strictly after it.

SEE ALSO:
  - calculator.go: Remanents() runs base -> Q -> P
  - returns/projection.go: Consumes the adjusted remanents
*/
package remanent

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/roundup-engine/generic"
)

// =============================================================================
// Q RULE
// =============================================================================

// ApplyQRule overrides remanents for transactions inside a Q-period.
// O(T log Q) after one O(Q log Q) sort.
func ApplyQRule(txs []generic.Transaction, remanents []decimal.Decimal, periods []generic.QPeriod) []decimal.Decimal {
	if len(periods) == 0 {
		return remanents
	}

	sorted := make([]generic.QPeriod, len(periods))
	copy(sorted, periods)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	starts := make([]generic.TimePoint, len(sorted))
	for i, q := range sorted {
		starts[i] = q.Start
	}

	for i, tx := range txs {
		// rightmost start <= tx.At
		idx := generic.SearchAfter(starts, tx.At) - 1
		if idx < 0 {
			continue
		}
		if q := sorted[idx]; q.Contains(tx.At) {
			remanents[i] = q.Fixed
		}
	}
	return remanents
}

// =============================================================================
// P RULE
// =============================================================================

type eventKind int

const (
	eventStart eventKind = iota
	eventEnd
)

type event struct {
	at    generic.TimePoint
	kind  eventKind
	delta decimal.Decimal
}

// firesBy reports whether the event has taken effect for a transaction at t.
func (e event) firesBy(t generic.TimePoint) bool {
	if e.kind == eventStart {
		return e.at.BeforeOrEqual(t)
	}
	return e.at.Before(t)
}

// ApplyPRule adds the running extra of all active P-periods to each remanent.
// Inverted periods contain no instant and are skipped.
// O(T + P log P) given sorted transactions.
func ApplyPRule(txs []generic.Transaction, remanents []decimal.Decimal, periods []generic.PPeriod) []decimal.Decimal {
	if len(periods) == 0 {
		return remanents
	}

	events := make([]event, 0, 2*len(periods))
	for _, p := range periods {
		if !p.Valid() {
			continue
		}
		events = append(events,
			event{at: p.Start, kind: eventStart, delta: p.Extra},
			event{at: p.End, kind: eventEnd, delta: p.Extra.Neg()},
		)
	}
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].at.Equal(events[j].at) {
			return events[i].at.Before(events[j].at)
		}
		return events[i].kind < events[j].kind
	})

	running := decimal.Zero
	next := 0
	for i, tx := range txs {
		for next < len(events) && events[next].firesBy(tx.At) {
			running = running.Add(events[next].delta)
			next++
		}
		remanents[i] = remanents[i].Add(running)
	}
	return remanents
}
