package remanent

import (
	"github.com/shopspring/decimal"
	"github.com/warp/roundup-engine/generic"
)

// =============================================================================
// VALIDATION - Single pass, submission order
// =============================================================================

// Rejection reasons, returned verbatim to clients.
const (
	ReasonNegative  = "negative amounts are not allowed"
	ReasonDuplicate = "Duplicate transactions"
)

// Rejection is a transaction refused by Validate along with the reason.
type Rejection struct {
	generic.Transaction
	Message string
}

// Validation splits a submission into accepted and rejected transactions.
// Index fields point back into the submitted slice.
type Validation struct {
	Valid        []generic.Transaction
	ValidIndex   []int
	Invalid      []Rejection
	InvalidIndex []int
}

// Validate walks txs left to right. Negative amounts are rejected; a
// transaction repeating the timestamp and amount of an earlier ACCEPTED one is
// a duplicate. Same timestamp with a different amount is accepted, and
// replaces the remembered amount for that timestamp.
//
// wage is part of the request contract but no rule depends on it yet.
func Validate(wage decimal.Decimal, txs []generic.Transaction) Validation {
	v := Validation{
		Valid:   make([]generic.Transaction, 0, len(txs)),
		Invalid: make([]Rejection, 0),
	}
	seen := make(map[int64]decimal.Decimal, len(txs))

	for i, tx := range txs {
		if tx.IsNegative() {
			v.reject(i, tx, ReasonNegative)
			continue
		}
		if last, ok := seen[tx.At.Key()]; ok && last.Equal(tx.Amount) {
			v.reject(i, tx, ReasonDuplicate)
			continue
		}
		seen[tx.At.Key()] = tx.Amount
		v.Valid = append(v.Valid, tx)
		v.ValidIndex = append(v.ValidIndex, i)
	}
	return v
}

func (v *Validation) reject(i int, tx generic.Transaction, msg string) {
	v.Invalid = append(v.Invalid, Rejection{Transaction: tx, Message: msg})
	v.InvalidIndex = append(v.InvalidIndex, i)
}

// =============================================================================
// FILTER - Validation + rules + K membership
// =============================================================================

// Filtered is an accepted transaction after Q and P rules.
type Filtered struct {
	Record
	InKPeriod bool
}

// FilterResult is the output of Filter.
type FilterResult struct {
	Valid   []Filtered
	Invalid []Rejection
}

// Filter validates txs, sorts the accepted ones by timestamp, applies the Q
// and P rules and drops every transaction whose final remanent is exactly
// zero. Dropped transactions are not reported as invalid.
func Filter(wage decimal.Decimal, txs []generic.Transaction, rules Rules, k []generic.KPeriod) FilterResult {
	v := Validate(wage, txs)

	sorted := generic.SortTransactions(v.Valid)
	ceilings, remanents := Remanents(sorted, rules)

	out := make([]Filtered, 0, len(sorted))
	for i, tx := range sorted {
		if remanents[i].IsZero() {
			continue
		}
		out = append(out, Filtered{
			Record: Record{
				Transaction: tx,
				Ceiling:     ceilings[i],
				Remanent:    remanents[i],
			},
			InKPeriod: generic.AnyContains(k, tx.At),
		})
	}

	return FilterResult{Valid: out, Invalid: v.Invalid}
}
