package returns_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/roundup-engine/generic"
	"github.com/warp/roundup-engine/returns"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func at(s string) generic.TimePoint {
	return generic.MustParseTimePoint(s)
}

func tx(date string, amount float64) generic.Transaction {
	return generic.NewTransaction(at(date), amount)
}

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func kPeriod(start, end string) generic.KPeriod {
	return generic.KPeriod{Period: generic.Period{Start: at(start), End: at(end)}}
}

func assertDecimal(t *testing.T, expected float64, actual decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), append([]any{"expected %v, got %s", expected, actual}, msgAndArgs...)...)
}

func sampleTransactions() []generic.Transaction {
	return []generic.Transaction{
		tx("2026-02-21 06:04:11", 150),
		tx("2026-02-22 06:04:11", -50),
		tx("2026-02-23 06:04:11", 275),
	}
}

// =============================================================================
// TAX TESTS
// =============================================================================

func TestTax(t *testing.T) {
	tests := []struct {
		name   string
		income float64
		tax    float64
	}{
		{"negative income", -5, 0},
		{"zero", 0, 0},
		{"at first threshold", 700000, 0},
		{"inside 10% band", 800000, 10000},
		{"at 10% band top", 1000000, 30000},
		{"inside 15% band", 1100000, 45000},
		{"at 15% band top", 1200000, 60000},
		{"at 20% band top", 1500000, 120000},
		{"above all bands", 1600000, 150000},
		{"two million", 2000000, 270000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDecimal(t, tt.tax, returns.Tax(dec(tt.income)))
		})
	}
}

func TestTax_ContinuousAndNonDecreasing(t *testing.T) {
	step := dec(0.5)
	prev := returns.Tax(decimal.Zero)
	for income := dec(690000); income.LessThan(dec(1510000)); income = income.Add(dec(2500)) {
		cur := returns.Tax(income)
		assert.True(t, cur.GreaterThanOrEqual(prev), "tax decreased at %s", income)

		// a half-unit step never moves tax by more than the top marginal rate allows
		jump := returns.Tax(income.Add(step)).Sub(cur)
		assert.True(t, jump.LessThanOrEqual(step.Mul(dec(0.30))), "discontinuity at %s", income)
		prev = cur
	}
}

func TestTaxBenefit(t *testing.T) {
	tests := []struct {
		name     string
		wage     float64
		invested float64
		benefit  float64
	}{
		{"untaxed wage", 600000, 5000, 0},
		{"invested is the binding cap", 1000000, 75, 7.5},
		{"10% of wage is the binding cap", 900000, 200000, 9000},
		{"absolute cap of 200000", 2000000, 500000, 60000},
		{"nothing invested", 2000000, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDecimal(t, tt.benefit, returns.TaxBenefit(dec(tt.wage), dec(tt.invested)))
		})
	}
}

// =============================================================================
// MODE TESTS
// =============================================================================

func TestParseMode(t *testing.T) {
	m, err := returns.ParseMode("nps")
	require.NoError(t, err)
	assert.Equal(t, returns.ModeNPS, m)

	m, err = returns.ParseMode("index")
	require.NoError(t, err)
	assert.Equal(t, returns.ModeIndex, m)

	_, err = returns.ParseMode("crypto")
	assert.ErrorIs(t, err, generic.ErrInvalidMode)
	assert.True(t, generic.IsClientError(err))
}

// =============================================================================
// PROJECTION TESTS
// =============================================================================

func TestProject_RetirementAgeReached_Empty(t *testing.T) {
	// GIVEN: ages at or past 60, with periods and transactions that would otherwise project
	for _, age := range []int{60, 61, 99} {
		input := returns.Input{
			Wage:         dec(1000000),
			Age:          age,
			Inflation:    dec(-100), // would be rejected if the projection ran
			Transactions: sampleTransactions(),
			K:            []generic.KPeriod{kPeriod("2026-01-01 00:00:00", "2026-12-31 23:59:59")},
		}

		// WHEN: projecting in both modes
		for _, mode := range []returns.Mode{returns.ModeNPS, returns.ModeIndex} {
			savings, err := returns.Project(input, mode)

			// THEN: empty result, no error
			require.NoError(t, err)
			assert.NotNil(t, savings)
			assert.Empty(t, savings, "age %d mode %s", age, mode)
		}
	}
}

func TestProject_KCoversEverything_InvestedIsSumOfRemanents(t *testing.T) {
	input := returns.Input{
		Age: 30,
		Transactions: []generic.Transaction{
			tx("2026-03-01 10:00:00", 275),
			tx("2026-01-01 10:00:00", 150),
			tx("2026-06-01 10:00:00", 1519.45),
		},
		K: []generic.KPeriod{kPeriod("2026-01-01 00:00:00", "2026-12-31 23:59:59")},
	}

	savings, err := returns.Project(input, returns.ModeIndex)

	require.NoError(t, err)
	require.Len(t, savings, 1)
	assertDecimal(t, 155.55, savings[0].Invested) // 50 + 25 + 80.55
}

func TestProject_Index_OneYearNoInflation(t *testing.T) {
	input := returns.Input{
		Age:          59,
		Transactions: []generic.Transaction{tx("2026-01-01 10:00:00", 150), tx("2026-01-02 10:00:00", 275)},
		K:            []generic.KPeriod{kPeriod("2026-01-01 00:00:00", "2026-01-31 23:59:59")},
	}

	savings, err := returns.Project(input, returns.ModeIndex)

	require.NoError(t, err)
	require.Len(t, savings, 1)
	assertDecimal(t, 75, savings[0].Invested)
	assertDecimal(t, 10.87, savings[0].Profit) // 75 * 0.1449 = 10.8675
	assertDecimal(t, 0, savings[0].TaxBenefit)
}

func TestProject_NPS_OneYearNoInflation_WithTaxBenefit(t *testing.T) {
	input := returns.Input{
		Wage:         dec(1000000),
		Age:          59,
		Transactions: []generic.Transaction{tx("2026-01-01 10:00:00", 150), tx("2026-01-02 10:00:00", 275)},
		K:            []generic.KPeriod{kPeriod("2026-01-01 00:00:00", "2026-01-31 23:59:59")},
	}

	savings, err := returns.Project(input, returns.ModeNPS)

	require.NoError(t, err)
	require.Len(t, savings, 1)
	assertDecimal(t, 5.33, savings[0].Profit) // 75 * 0.0711 = 5.3325
	assertDecimal(t, 7.5, savings[0].TaxBenefit)
}

func TestProject_DeflatesByInflation(t *testing.T) {
	// 75 * 1.1449^2 / 1.1^2 = 81.2476...
	input := returns.Input{
		Age:          58,
		Inflation:    dec(10),
		Transactions: []generic.Transaction{tx("2026-01-01 10:00:00", 150), tx("2026-01-02 10:00:00", 275)},
		K:            []generic.KPeriod{kPeriod("2026-01-01 00:00:00", "2026-01-31 23:59:59")},
	}

	savings, err := returns.Project(input, returns.ModeIndex)

	require.NoError(t, err)
	require.Len(t, savings, 1)
	assertDecimal(t, 6.25, savings[0].Profit)
}

func TestProject_KPeriodsAreIndependent(t *testing.T) {
	// GIVEN: overlapping K windows, one empty window and one inverted window
	input := returns.Input{
		Age: 59,
		Transactions: []generic.Transaction{
			tx("2026-01-10 00:00:00", 150), // 50
			tx("2026-02-10 00:00:00", 275), // 25
			tx("2026-03-10 00:00:00", 390), // 10
		},
		K: []generic.KPeriod{
			kPeriod("2026-01-01 00:00:00", "2026-02-28 23:59:59"),
			kPeriod("2026-02-01 00:00:00", "2026-03-31 23:59:59"),
			kPeriod("2027-01-01 00:00:00", "2027-12-31 23:59:59"),
			kPeriod("2026-03-31 00:00:00", "2026-01-01 00:00:00"),
		},
	}

	savings, err := returns.Project(input, returns.ModeIndex)

	// THEN: one result per window, in order, overlapping windows double count
	require.NoError(t, err)
	require.Len(t, savings, 4)
	assertDecimal(t, 75, savings[0].Invested)
	assertDecimal(t, 35, savings[1].Invested)
	assertDecimal(t, 0, savings[2].Invested)
	assertDecimal(t, 0, savings[2].Profit)
	assertDecimal(t, 0, savings[3].Invested)
	assert.Equal(t, input.K[1], savings[1].Period)
}

func TestProject_KBoundariesInclusive(t *testing.T) {
	input := returns.Input{
		Age: 59,
		Transactions: []generic.Transaction{
			tx("2026-01-01 00:00:00", 150),
			tx("2026-01-31 23:59:59", 275),
			tx("2026-02-01 00:00:00", 390),
		},
		K: []generic.KPeriod{kPeriod("2026-01-01 00:00:00", "2026-01-31 23:59:59")},
	}

	savings, err := returns.Project(input, returns.ModeIndex)

	require.NoError(t, err)
	assertDecimal(t, 75, savings[0].Invested)
}

func TestProject_AppliesQAndPRules(t *testing.T) {
	input := returns.Input{
		Age: 59,
		Transactions: []generic.Transaction{
			tx("2026-07-15 10:30:00", 620), // Q -> 0
			tx("2026-10-12 20:15:30", 250), // 50 + 25
		},
		Q: []generic.QPeriod{{Period: generic.Period{Start: at("2026-07-01 00:00:00"), End: at("2026-07-31 23:59:59")}, Fixed: dec(0)}},
		P: []generic.PPeriod{{Period: generic.Period{Start: at("2026-10-01 08:00:00"), End: at("2026-12-31 19:59:59")}, Extra: dec(25)}},
		K: []generic.KPeriod{kPeriod("2026-01-01 00:00:00", "2026-12-31 23:59:59")},
	}

	savings, err := returns.Project(input, returns.ModeIndex)

	require.NoError(t, err)
	assertDecimal(t, 75, savings[0].Invested)
}

func TestProject_Errors(t *testing.T) {
	input := returns.Input{Age: 30, Inflation: dec(-100), K: []generic.KPeriod{kPeriod("2026-01-01 00:00:00", "2026-12-31 23:59:59")}}

	_, err := returns.Project(input, returns.ModeIndex)
	assert.ErrorIs(t, err, generic.ErrInvalidInflation)

	input.Inflation = dec(5)
	_, err = returns.Project(input, returns.Mode("bonds"))
	assert.ErrorIs(t, err, generic.ErrInvalidMode)
}

func TestProject_NegativeAgeRejected(t *testing.T) {
	input := returns.Input{
		Age:          -999940,
		Inflation:    dec(5),
		Transactions: sampleTransactions(),
		K:            []generic.KPeriod{kPeriod("2026-01-01 00:00:00", "2026-12-31 23:59:59")},
	}

	_, err := returns.Project(input, returns.ModeIndex)

	require.Error(t, err)
	assert.ErrorIs(t, err, generic.ErrInvalidField)
	var fe *generic.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "age", fe.Field)
}

func TestProject_DoesNotMutateInput(t *testing.T) {
	txs := []generic.Transaction{
		tx("2026-03-01 10:00:00", 275),
		tx("2026-01-01 10:00:00", 150),
	}
	input := returns.Input{Age: 30, Transactions: txs, K: []generic.KPeriod{kPeriod("2026-01-01 00:00:00", "2026-12-31 23:59:59")}}

	_, err := returns.Project(input, returns.ModeNPS)

	require.NoError(t, err)
	assert.Equal(t, at("2026-03-01 10:00:00"), txs[0].At)
}

// =============================================================================
// REPORT TESTS
// =============================================================================

func TestTotals_SkipsNegative(t *testing.T) {
	amount, ceiling := returns.Totals(sampleTransactions())

	assertDecimal(t, 425, amount)
	assertDecimal(t, 500, ceiling)
}

func TestCompute_EmptyTransactions(t *testing.T) {
	report, err := returns.Compute(returns.Input{Age: 30, Inflation: dec(5)}, returns.ModeNPS)

	require.NoError(t, err)
	assertDecimal(t, 0, report.TotalTransactionAmount)
	assertDecimal(t, 0, report.TotalCeilingAmount)
	assert.NotNil(t, report.Savings)
	assert.Empty(t, report.Savings)
}

func TestCompute_AllNegative(t *testing.T) {
	input := returns.Input{
		Age:          30,
		Inflation:    dec(5),
		Transactions: []generic.Transaction{tx("2026-02-21 06:04:11", -100)},
	}

	report, err := returns.Compute(input, returns.ModeNPS)

	require.NoError(t, err)
	assertDecimal(t, 0, report.TotalTransactionAmount)
	assertDecimal(t, 0, report.TotalCeilingAmount)
}

func TestCompute_PropagatesEngineError(t *testing.T) {
	_, err := returns.Compute(returns.Input{Age: 30}, returns.Mode(""))
	assert.ErrorIs(t, err, generic.ErrInvalidMode)
}
