/*
projection.go - Investment projection of remanents to retirement

PURPOSE:
  Answers "if the spare change swept in each K window were invested today,
  what would it be worth in real terms at retirement?" for two products:
  the National Pension Scheme (with a tax deduction) and an index fund.

PIPELINE:
  1. years = RetirementAge - age; no years left means no projection
  2. Sort transactions by timestamp
  3. Base remanents -> Q override -> P surcharge (package remanent)
  4. For each K window, sum the remanents inside it (binary search range)
  5. Compound at the mode's nominal rate, deflate by inflation
  6. NPS only: tax saved by deducting the eligible invested amount

INDEPENDENCE:
  Every K window is computed from the full remanent slice. Overlapping windows
  count the same transaction twice. That is intended.

EXAMPLE:
  savings, err := returns.Project(returns.Input{
      Wage:         decimal.NewFromInt(600000),
      Age:          30,
      Inflation:    decimal.NewFromFloat(5.5),
      Transactions: txs,
      K:            []generic.KPeriod{year2026},
  }, returns.ModeNPS)

SEE ALSO:
  - tax.go: Tax brackets used for the NPS benefit
  - remanent/rules.go: Q and P rules
*/
package returns

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/roundup-engine/generic"
	"github.com/warp/roundup-engine/remanent"
)

// =============================================================================
// MODES
// =============================================================================

type Mode string

const (
	ModeNPS   Mode = "nps"
	ModeIndex Mode = "index"
)

// RetirementAge is the age at which the projection ends.
const RetirementAge = 60

var (
	rateNPS   = decimal.NewFromFloat(0.0711)
	rateIndex = decimal.NewFromFloat(0.1449)

	// NPS deduction is capped at 10% of wage and at 200,000.
	npsWageShare = decimal.NewFromFloat(0.10)
	npsCap       = decimal.NewFromInt(200000)

	hundred = decimal.NewFromInt(100)
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeNPS, ModeIndex:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", generic.ErrInvalidMode, s)
	}
}

// Rate returns the fixed annual nominal rate for the mode.
func (m Mode) Rate() (decimal.Decimal, error) {
	switch m {
	case ModeNPS:
		return rateNPS, nil
	case ModeIndex:
		return rateIndex, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", generic.ErrInvalidMode, string(m))
	}
}

// =============================================================================
// PROJECTION
// =============================================================================

// Input carries everything a projection needs. Nothing is read from shared
// state.
type Input struct {
	Wage         decimal.Decimal
	Age          int
	Inflation    decimal.Decimal // annual, percent
	Transactions []generic.Transaction
	Q            []generic.QPeriod
	P            []generic.PPeriod
	K            []generic.KPeriod
}

// Saving is the projection for one K window.
type Saving struct {
	Period     generic.KPeriod
	Invested   decimal.Decimal
	Profit     decimal.Decimal
	TaxBenefit decimal.Decimal
}

// Project runs the pipeline and returns one Saving per K window, in the
// order the windows were given. It returns an empty slice when the age is at
// or past RetirementAge. A negative age is rejected.
func Project(input Input, mode Mode) ([]Saving, error) {
	rate, err := mode.Rate()
	if err != nil {
		return nil, err
	}

	if input.Age < 0 {
		return nil, &generic.FieldError{Field: "age", Err: fmt.Errorf("%w: %d must not be negative", generic.ErrInvalidField, input.Age)}
	}
	years := RetirementAge - input.Age
	if years <= 0 {
		return []Saving{}, nil
	}

	exp := decimal.NewFromInt(int64(years))
	growth := decimal.NewFromInt(1).Add(rate).Pow(exp)
	deflator := decimal.NewFromInt(1).Add(input.Inflation.Div(hundred)).Pow(exp)
	if deflator.IsZero() {
		return nil, fmt.Errorf("%w: inflation %s%%", generic.ErrInvalidInflation, input.Inflation)
	}

	txs := generic.SortTransactions(input.Transactions)
	_, remanents := remanent.Remanents(txs, remanent.Rules{Q: input.Q, P: input.P})
	timeline := generic.Timestamps(txs)

	savings := make([]Saving, 0, len(input.K))
	for _, k := range input.K {
		lo, hi := k.Range(timeline)
		invested := generic.Sum(remanents[lo:hi])

		realValue := invested.Mul(growth).Div(deflator)
		profit := realValue.Sub(invested)

		taxBenefit := decimal.Zero
		if mode == ModeNPS {
			taxBenefit = TaxBenefit(input.Wage, invested)
		}

		savings = append(savings, Saving{
			Period:     k,
			Invested:   invested,
			Profit:     profit.RoundBank(2),
			TaxBenefit: taxBenefit.RoundBank(2),
		})
	}
	return savings, nil
}

// TaxBenefit is the tax saved by deducting the eligible part of invested
// from wage: min(invested, 10% of wage, 200,000).
func TaxBenefit(wage, invested decimal.Decimal) decimal.Decimal {
	eligible := decimal.Min(invested, wage.Mul(npsWageShare), npsCap)
	return Tax(wage).Sub(Tax(wage.Sub(eligible)))
}
