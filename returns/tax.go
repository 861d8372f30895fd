package returns

import "github.com/shopspring/decimal"

// TaxBracket is a marginal band: income above Threshold is taxed at Rate.
type TaxBracket struct {
	Threshold decimal.Decimal
	Rate      decimal.Decimal
}

// Brackets are ordered from the highest threshold down. Income at or below
// the lowest threshold is untaxed.
var Brackets = []TaxBracket{
	{Threshold: decimal.NewFromInt(1500000), Rate: decimal.NewFromFloat(0.30)},
	{Threshold: decimal.NewFromInt(1200000), Rate: decimal.NewFromFloat(0.20)},
	{Threshold: decimal.NewFromInt(1000000), Rate: decimal.NewFromFloat(0.15)},
	{Threshold: decimal.NewFromInt(700000), Rate: decimal.NewFromFloat(0.10)},
}

// Tax computes progressive tax on income by peeling off the excess over
// each threshold, highest first.
func Tax(income decimal.Decimal) decimal.Decimal {
	tax := decimal.Zero
	for _, b := range Brackets {
		if income.GreaterThan(b.Threshold) {
			tax = tax.Add(income.Sub(b.Threshold).Mul(b.Rate))
			income = b.Threshold
		}
	}
	return tax
}
