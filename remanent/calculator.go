// Package remanent implements the round-up side of the engine: ceiling and
// remanent per transaction, the Q and P period rules, and the validation and
// filtering pass that feeds them.
package remanent

import (
	"github.com/shopspring/decimal"
	"github.com/warp/roundup-engine/generic"
)

// Unit is the rounding granularity. Every ceiling is a multiple of Unit.
var Unit = decimal.NewFromInt(100)

// Ceiling rounds amount up to the next multiple of Unit. Exact multiples
// are their own ceiling.
func Ceiling(amount decimal.Decimal) decimal.Decimal {
	return amount.Div(Unit).Ceil().Mul(Unit)
}

// Compute returns the ceiling and the remanent (ceiling - amount). There is
// no sign check; negative amounts are filtered upstream.
func Compute(amount decimal.Decimal) (ceiling, remanent decimal.Decimal) {
	ceiling = Ceiling(amount)
	return ceiling, ceiling.Sub(amount)
}

// Record is a transaction with its derived ceiling and remanent.
type Record struct {
	generic.Transaction
	Ceiling  decimal.Decimal
	Remanent decimal.Decimal
}

// NewRecord computes the base record for tx, before any period rule.
func NewRecord(tx generic.Transaction) Record {
	ceiling, rem := Compute(tx.Amount)
	return Record{Transaction: tx, Ceiling: ceiling, Remanent: rem}
}

// Parse computes base records for txs in submission order.
func Parse(txs []generic.Transaction) []Record {
	records := make([]Record, len(txs))
	for i, tx := range txs {
		records[i] = NewRecord(tx)
	}
	return records
}

// Rules bundles the period sets applied after the base computation.
type Rules struct {
	Q []generic.QPeriod
	P []generic.PPeriod
}

// Remanents runs the full pipeline over txs, which must already be sorted by
// timestamp: base remanent, then Q override, then P surcharge. The returned
// slices are parallel to txs.
func Remanents(txs []generic.Transaction, rules Rules) (ceilings, remanents []decimal.Decimal) {
	ceilings = make([]decimal.Decimal, len(txs))
	remanents = make([]decimal.Decimal, len(txs))
	for i, tx := range txs {
		ceilings[i], remanents[i] = Compute(tx.Amount)
	}

	remanents = ApplyQRule(txs, remanents, rules.Q)
	remanents = ApplyPRule(txs, remanents, rules.P)
	return ceilings, remanents
}
