package returns

import (
	"github.com/shopspring/decimal"
	"github.com/warp/roundup-engine/generic"
	"github.com/warp/roundup-engine/remanent"
)

// Report is the body of a returns response.
type Report struct {
	TotalTransactionAmount decimal.Decimal
	TotalCeilingAmount     decimal.Decimal
	Savings                []Saving
}

// Totals sums amounts and ceilings over non-negative transactions only.
// Duplicates are not removed here.
func Totals(txs []generic.Transaction) (amount, ceiling decimal.Decimal) {
	amount, ceiling = decimal.Zero, decimal.Zero
	for _, tx := range txs {
		if tx.IsNegative() {
			continue
		}
		amount = amount.Add(tx.Amount)
		ceiling = ceiling.Add(remanent.Ceiling(tx.Amount))
	}
	return amount, ceiling
}

// Compute builds the full report for input under mode.
func Compute(input Input, mode Mode) (Report, error) {
	savings, err := Project(input, mode)
	if err != nil {
		return Report{}, err
	}
	amount, ceiling := Totals(input.Transactions)
	return Report{
		TotalTransactionAmount: amount,
		TotalCeilingAmount:     ceiling,
		Savings:                savings,
	}, nil
}
