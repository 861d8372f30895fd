/*
Package generic provides the primitives shared by the round-up engine.

PURPOSE:
  This package contains the types every other package speaks: timestamps,
  inclusive periods, the three rule windows (Q, P, K), transactions and the
  error taxonomy. It has no knowledge of remanents, taxes or HTTP.

KEY CONCEPTS IN THIS FILE (types.go):
  - Transaction: an immutable (timestamp, amount) pair as submitted
  - SortTransactions: the single stable ordering used by every pipeline
  - Timestamps: projection of a sorted transaction list onto its time axis

DESIGN PRINCIPLES:
  1. Immutability: Transactions are values, never mutated after creation
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Explicit inputs: nothing is read from ambient state

SEE ALSO:
  - period.go: Period, QPeriod, PPeriod, KPeriod and binary search helpers
  - time.go: TimePoint and the wire layout
  - errors.go: Sentinel and structured errors
*/
package generic

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TRANSACTION - A single expense as submitted
// =============================================================================

type Transaction struct {
	At     TimePoint
	Amount decimal.Decimal
}

func NewTransaction(at TimePoint, amount float64) Transaction {
	return Transaction{At: at, Amount: decimal.NewFromFloat(amount)}
}

// IsNegative reports whether the amount is below zero.
func (t Transaction) IsNegative() bool { return t.Amount.IsNegative() }

// SortTransactions returns a copy of txs ordered by timestamp. The sort is
// stable so equal timestamps keep their submission order.
func SortTransactions(txs []Transaction) []Transaction {
	sorted := make([]Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].At.Before(sorted[j].At)
	})
	return sorted
}

// Timestamps returns the time axis of txs.
func Timestamps(txs []Transaction) []TimePoint {
	points := make([]TimePoint, len(txs))
	for i, tx := range txs {
		points[i] = tx.At
	}
	return points
}

// Sum adds up a slice of decimals.
func Sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
