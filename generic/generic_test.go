package generic_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/roundup-engine/generic"
)

// =============================================================================
// TIME POINT TESTS
// =============================================================================

func TestParseTimePoint_Valid(t *testing.T) {
	tp, err := generic.ParseTimePoint("2026-02-21 06:04:11")

	require.NoError(t, err)
	assert.Equal(t, generic.NewTimePoint(2026, time.February, 21, 6, 4, 11), tp)
	assert.Equal(t, "2026-02-21 06:04:11", tp.String())
}

func TestParseTimePoint_RejectsOtherFormats(t *testing.T) {
	for _, s := range []string{
		"",
		"2026-02-21",
		"2026-02-21T06:04:11Z",
		"21-02-2026 06:04:11",
		"2026-02-21 06:04",
		"2026-13-01 00:00:00",
	} {
		_, err := generic.ParseTimePoint(s)
		assert.ErrorIs(t, err, generic.ErrInvalidTimestamp, "input %q", s)
	}
}

func TestTimePoint_Comparison(t *testing.T) {
	a := generic.MustParseTimePoint("2026-01-01 00:00:00")
	b := a.AddSeconds(1)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, a.BeforeOrEqual(a))
	assert.True(t, a.AfterOrEqual(a))
	assert.False(t, b.BeforeOrEqual(a))
	assert.Equal(t, a.Key()+1, b.Key())
}

func TestFromTime_TruncatesAndNormalizes(t *testing.T) {
	local := time.Date(2026, 1, 1, 5, 30, 0, 999, time.FixedZone("IST", 5*3600+1800))

	tp := generic.FromTime(local)

	assert.Equal(t, generic.NewTimePoint(2026, time.January, 1, 0, 0, 0), tp)
}

func TestMustParseTimePoint_Panics(t *testing.T) {
	assert.Panics(t, func() { generic.MustParseTimePoint("nope") })
}

// =============================================================================
// PERIOD TESTS
// =============================================================================

func TestPeriod_ContainsIsInclusive(t *testing.T) {
	p := generic.Period{
		Start: generic.MustParseTimePoint("2026-07-01 00:00:00"),
		End:   generic.MustParseTimePoint("2026-07-31 23:59:59"),
	}

	assert.True(t, p.Contains(p.Start))
	assert.True(t, p.Contains(p.End))
	assert.False(t, p.Contains(p.Start.AddSeconds(-1)))
	assert.False(t, p.Contains(p.End.AddSeconds(1)))
	assert.True(t, p.Valid())
	assert.Equal(t, "[2026-07-01 00:00:00, 2026-07-31 23:59:59]", p.String())
}

func TestPeriod_Range(t *testing.T) {
	points := []generic.TimePoint{
		generic.MustParseTimePoint("2026-01-01 00:00:00"),
		generic.MustParseTimePoint("2026-01-05 00:00:00"),
		generic.MustParseTimePoint("2026-01-05 00:00:00"),
		generic.MustParseTimePoint("2026-01-09 00:00:00"),
	}

	tests := []struct {
		name       string
		start, end string
		lo, hi     int
	}{
		{"exact boundaries", "2026-01-05 00:00:00", "2026-01-05 00:00:00", 1, 3},
		{"everything", "2025-01-01 00:00:00", "2027-01-01 00:00:00", 0, 4},
		{"before all", "2025-01-01 00:00:00", "2025-12-31 00:00:00", 0, 0},
		{"after all", "2026-02-01 00:00:00", "2026-03-01 00:00:00", 4, 4},
		{"inverted", "2026-01-09 00:00:00", "2026-01-01 00:00:00", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := generic.Period{Start: generic.MustParseTimePoint(tt.start), End: generic.MustParseTimePoint(tt.end)}
			lo, hi := p.Range(points)
			assert.Equal(t, tt.lo, lo)
			assert.Equal(t, tt.hi, hi)
		})
	}
}

func TestAnyContains(t *testing.T) {
	k := []generic.KPeriod{
		{Period: generic.Period{Start: generic.MustParseTimePoint("2026-01-01 00:00:00"), End: generic.MustParseTimePoint("2026-01-31 00:00:00")}},
		{Period: generic.Period{Start: generic.MustParseTimePoint("2026-03-01 00:00:00"), End: generic.MustParseTimePoint("2026-03-31 00:00:00")}},
	}

	assert.True(t, generic.AnyContains(k, generic.MustParseTimePoint("2026-03-15 00:00:00")))
	assert.False(t, generic.AnyContains(k, generic.MustParseTimePoint("2026-02-15 00:00:00")))
	assert.False(t, generic.AnyContains(nil, generic.MustParseTimePoint("2026-02-15 00:00:00")))
}

// =============================================================================
// TRANSACTION TESTS
// =============================================================================

func TestSortTransactions_StableAndCopying(t *testing.T) {
	txs := []generic.Transaction{
		generic.NewTransaction(generic.MustParseTimePoint("2026-01-02 00:00:00"), 1),
		generic.NewTransaction(generic.MustParseTimePoint("2026-01-01 00:00:00"), 2),
		generic.NewTransaction(generic.MustParseTimePoint("2026-01-02 00:00:00"), 3),
	}

	sorted := generic.SortTransactions(txs)

	require.Len(t, sorted, 3)
	assert.Equal(t, "2", sorted[0].Amount.String())
	assert.Equal(t, "1", sorted[1].Amount.String())
	assert.Equal(t, "3", sorted[2].Amount.String())
	assert.Equal(t, "1", txs[0].Amount.String(), "input untouched")
}

// =============================================================================
// ERROR TESTS
// =============================================================================

func TestFieldError_Unwraps(t *testing.T) {
	err := fmt.Errorf("decode: %w", generic.Missing("transaction[0].amount"))

	var fe *generic.FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "transaction[0].amount", fe.Field)
	assert.ErrorIs(t, err, generic.ErrMissingField)
	assert.True(t, generic.IsClientError(err))
	assert.Equal(t, "decode: transaction[0].amount: field required", err.Error())
}

func TestIsClientError(t *testing.T) {
	assert.True(t, generic.IsClientError(generic.ErrInvalidTimestamp))
	assert.True(t, generic.IsClientError(generic.ErrInvalidInflation))
	assert.True(t, generic.IsClientError(&generic.FieldError{Field: "age", Err: generic.ErrInvalidField}))
	assert.False(t, generic.IsClientError(errors.New("boom")))
	assert.False(t, generic.IsClientError(nil))
}
