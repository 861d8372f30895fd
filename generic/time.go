package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// TIME POINT - Second-granular timestamp used as the ordering key everywhere
// =============================================================================

// TimestampLayout is the only accepted wire format for timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// TimePoint is a transaction or period boundary timestamp. All values are UTC
// and truncated to the second, so == and the comparison helpers agree.
type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day, hour, min, sec int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, hour, min, sec, 0, time.UTC)}
}

func FromTime(t time.Time) TimePoint {
	return TimePoint{Time: t.UTC().Truncate(time.Second)}
}

// ParseTimePoint parses s using TimestampLayout. Any other format is rejected
// with an error wrapping ErrInvalidTimestamp.
func ParseTimePoint(s string) (TimePoint, error) {
	t, err := time.ParseInLocation(TimestampLayout, s, time.UTC)
	if err != nil {
		return TimePoint{}, fmt.Errorf("%w: %q must be in format \"YYYY-MM-DD HH:mm:ss\"", ErrInvalidTimestamp, s)
	}
	return TimePoint{Time: t}, nil
}

// MustParseTimePoint is ParseTimePoint for literals in tests and scenarios.
func MustParseTimePoint(s string) TimePoint {
	tp, err := ParseTimePoint(s)
	if err != nil {
		panic(err)
	}
	return tp
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.Time.Before(other.Time) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.Time.Equal(other.Time) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.Time.After(other.Time) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

// Key is a map key that identifies the timestamp regardless of location.
func (tp TimePoint) Key() int64 { return tp.Time.Unix() }

// Arithmetic
func (tp TimePoint) AddSeconds(n int) TimePoint { return TimePoint{Time: tp.Time.Add(time.Duration(n) * time.Second)} }
func (tp TimePoint) AddDays(n int) TimePoint    { return TimePoint{Time: tp.Time.AddDate(0, 0, n)} }

func (tp TimePoint) IsZero() bool   { return tp.Time.IsZero() }
func (tp TimePoint) String() string { return tp.Time.Format(TimestampLayout) }
