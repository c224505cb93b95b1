package date

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecomposeCombine_RoundTrip(t *testing.T) {
	configs := []Radices{
		DefaultRadices(),
		{RoundsPerMinute: 1, MinutesPerHour: 1, HoursPerDay: 1, DaysPerMonth: 1},
		{RoundsPerMinute: 6, MinutesPerHour: 7, HoursPerDay: 13, DaysPerMonth: 28},
		{RoundsPerMinute: 3, MinutesPerHour: 100, HoursPerDay: 2, DaysPerMonth: 365},
	}
	samples := []int64{0, 1, 9, 10, 59, 600, 599, 14399, 14400, 432000, 987654321}

	for _, r := range configs {
		d := New(r)
		for _, n := range samples {
			c := d.Decompose(n)
			assert.Equal(t, n, d.Combine(c), "radices %+v, n=%d", r, n)
			assert.Less(t, c.Rounds, int64(r.RoundsPerMinute))
		}
		for n := int64(0); n < 5000; n += 7 {
			require.Equal(t, n, d.Combine(d.Decompose(n)))
		}
	}
}

func TestIncrement_MaintainsInvariant(t *testing.T) {
	d := New(DefaultRadices())

	d.IncrementRounds(5)
	d.IncrementMinutes(3)
	d.IncrementHours(2)
	d.IncrementDays(1)
	d.IncrementMonths(1)

	want := int64(5 + 3*10 + 2*600 + 1*14400 + 1*432000)
	assert.Equal(t, want, d.TotalRounds())
	assert.Equal(t, int64(5), d.Rounds())
	assert.Equal(t, int64(3), d.Minutes())
	assert.Equal(t, int64(2), d.Hours())
	assert.Equal(t, int64(1), d.Days())
	assert.Equal(t, int64(1), d.Months())
	assert.Equal(t, d.TotalRounds(), d.Combine(d.Components()))
}

func TestIncrement_CarriesIntoLargerUnits(t *testing.T) {
	d := New(DefaultRadices())

	d.IncrementMinutes(61)
	assert.Equal(t, int64(1), d.Hours())
	assert.Equal(t, int64(1), d.Minutes())
	assert.Equal(t, int64(0), d.Rounds())
}

func TestOnChange_FiresOnIncrementOnly(t *testing.T) {
	d := New(DefaultRadices())
	var seen []int64
	d.OnChange(func(round int64) { seen = append(seen, round) })

	d.IncrementHours(1)
	d.IncrementRounds(2)
	d.SetTotalRounds(10)
	d.Reset()

	assert.Equal(t, []int64{600, 602}, seen)
}

func TestDateString_IsPure(t *testing.T) {
	d := New(DefaultRadices())
	d.IncrementRounds(42)

	assert.Equal(t, "1 hour 30 minutes", d.DateString(0, 0, 0, 90, 0))
	assert.Equal(t, "1 day 1 round", d.DateString(0, 0, 24, 0, 1))
	assert.Equal(t, "0 rounds", d.DateString(0, 0, 0, 0, 0))
	assert.Equal(t, int64(42), d.TotalRounds(), "DateString must not mutate the date")
}

func TestSetRadix_DoesNotReinterpretCounter(t *testing.T) {
	d := New(DefaultRadices())
	d.IncrementMinutes(30)
	require.Equal(t, int64(300), d.TotalRounds())
	require.Equal(t, int64(30), d.Minutes())

	d.SetRoundsPerMinute(20)

	assert.Equal(t, int64(300), d.TotalRounds())
	assert.Equal(t, int64(15), d.Minutes(), "old counter decomposed with new radix")
	assert.Equal(t, int64(1200), d.RoundsPerHour())
}

func TestNew_NormalizesNonPositiveRadices(t *testing.T) {
	d := New(Radices{})
	d.IncrementRounds(3)
	assert.Equal(t, int64(3), d.TotalRounds())
	assert.Equal(t, int64(1), d.RoundsPerMonth())
}

func TestString(t *testing.T) {
	d := New(DefaultRadices())
	d.IncrementDays(2)
	d.IncrementHours(4)
	d.IncrementMinutes(12)
	d.IncrementRounds(5)

	assert.Equal(t, "Month 1, Day 3, 04:12 (round 5)", d.String())
}
