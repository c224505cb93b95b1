// Package date implements campaign time as a single round counter decomposed
// through configurable radices (rounds, minutes, hours, days, months).
package date

import (
	"fmt"
	"strings"
)

// Radices are the campaign-configured unit sizes.
type Radices struct {
	RoundsPerMinute int `json:"roundsPerMinute"`
	MinutesPerHour  int `json:"minutesPerHour"`
	HoursPerDay     int `json:"hoursPerDay"`
	DaysPerMonth    int `json:"daysPerMonth"`
}

// DefaultRadices returns the stock calendar: 10 rounds per minute, 60
// minutes per hour, 24 hours per day, 30 days per month.
func DefaultRadices() Radices {
	return Radices{
		RoundsPerMinute: 10,
		MinutesPerHour:  60,
		HoursPerDay:     24,
		DaysPerMonth:    30,
	}
}

// normalized replaces non-positive radices with 1 so the cascade never
// divides by zero.
func (r Radices) normalized() Radices {
	if r.RoundsPerMinute < 1 {
		r.RoundsPerMinute = 1
	}
	if r.MinutesPerHour < 1 {
		r.MinutesPerHour = 1
	}
	if r.HoursPerDay < 1 {
		r.HoursPerDay = 1
	}
	if r.DaysPerMonth < 1 {
		r.DaysPerMonth = 1
	}
	return r
}

// Components is a round count broken down into calendar units.
type Components struct {
	Months  int64
	Days    int64
	Hours   int64
	Minutes int64
	Rounds  int64
}

// Date is a monotonic round counter with derived calendar fields.
type Date struct {
	radices Radices

	roundsPerHour  int64
	roundsPerDay   int64
	roundsPerMonth int64

	round int64
	comp  Components

	onChange func(round int64)
}

// New creates a date at round zero.
func New(r Radices) *Date {
	d := &Date{radices: r.normalized()}
	d.deriveRadices()
	d.recalculate()
	return d
}

// OnChange registers fn to run after every increment.
func (d *Date) OnChange(fn func(round int64)) {
	d.onChange = fn
}

func (d *Date) deriveRadices() {
	d.roundsPerHour = int64(d.radices.RoundsPerMinute) * int64(d.radices.MinutesPerHour)
	d.roundsPerDay = d.roundsPerHour * int64(d.radices.HoursPerDay)
	d.roundsPerMonth = d.roundsPerDay * int64(d.radices.DaysPerMonth)
}

// Decompose splits total rounds into calendar units, largest unit first.
func (d *Date) Decompose(total int64) Components {
	var c Components
	c.Months = total / d.roundsPerMonth
	total %= d.roundsPerMonth
	c.Days = total / d.roundsPerDay
	total %= d.roundsPerDay
	c.Hours = total / d.roundsPerHour
	total %= d.roundsPerHour
	c.Minutes = total / int64(d.radices.RoundsPerMinute)
	c.Rounds = total % int64(d.radices.RoundsPerMinute)
	return c
}

// Combine is the inverse of Decompose.
func (d *Date) Combine(c Components) int64 {
	return c.Rounds +
		c.Minutes*int64(d.radices.RoundsPerMinute) +
		c.Hours*d.roundsPerHour +
		c.Days*d.roundsPerDay +
		c.Months*d.roundsPerMonth
}

func (d *Date) recalculate() {
	d.comp = d.Decompose(d.round)
}

func (d *Date) advance(n int64) {
	d.round += n
	if d.round < 0 {
		d.round = 0
	}
	d.recalculate()
	if d.onChange != nil {
		d.onChange(d.round)
	}
}

func (d *Date) IncrementRounds(n int) { d.advance(int64(n)) }

func (d *Date) IncrementMinutes(n int) {
	d.advance(int64(n) * int64(d.radices.RoundsPerMinute))
}

func (d *Date) IncrementHours(n int) { d.advance(int64(n) * d.roundsPerHour) }

func (d *Date) IncrementDays(n int) { d.advance(int64(n) * d.roundsPerDay) }

func (d *Date) IncrementMonths(n int) { d.advance(int64(n) * d.roundsPerMonth) }

// Reset zeroes the counter.
func (d *Date) Reset() {
	d.round = 0
	d.recalculate()
}

// TotalRounds returns the absolute round counter.
func (d *Date) TotalRounds() int64 { return d.round }

// SetTotalRounds restores the counter, e.g. from a save file. Observers are
// not notified.
func (d *Date) SetTotalRounds(n int64) {
	if n < 0 {
		n = 0
	}
	d.round = n
	d.recalculate()
}

// Elapsed returns the rounds since an earlier absolute round.
func (d *Date) Elapsed(since int64) int64 { return d.round - since }

func (d *Date) Rounds() int64  { return d.comp.Rounds }
func (d *Date) Minutes() int64 { return d.comp.Minutes }
func (d *Date) Hours() int64   { return d.comp.Hours }
func (d *Date) Days() int64    { return d.comp.Days }
func (d *Date) Months() int64  { return d.comp.Months }

// Components returns the current decomposition.
func (d *Date) Components() Components { return d.comp }

// Radices returns the configured radices.
func (d *Date) Radices() Radices { return d.radices }

func (d *Date) RoundsPerMinute() int64 { return int64(d.radices.RoundsPerMinute) }
func (d *Date) RoundsPerHour() int64   { return d.roundsPerHour }
func (d *Date) RoundsPerDay() int64    { return d.roundsPerDay }
func (d *Date) RoundsPerMonth() int64  { return d.roundsPerMonth }

// SetRoundsPerMinute changes a radix. The stored round count is kept as-is
// and decomposed with the new radices, so displayed fields may jump.
func (d *Date) SetRoundsPerMinute(n int) { d.setRadices(func(r *Radices) { r.RoundsPerMinute = n }) }

func (d *Date) SetMinutesPerHour(n int) { d.setRadices(func(r *Radices) { r.MinutesPerHour = n }) }

func (d *Date) SetHoursPerDay(n int) { d.setRadices(func(r *Radices) { r.HoursPerDay = n }) }

func (d *Date) SetDaysPerMonth(n int) { d.setRadices(func(r *Radices) { r.DaysPerMonth = n }) }

func (d *Date) setRadices(fn func(*Radices)) {
	r := d.radices
	fn(&r)
	d.radices = r.normalized()
	d.deriveRadices()
	d.recalculate()
}

// DateString formats an arbitrary duration without touching the date. The
// inputs are combined into rounds and decomposed with the same cascade the
// date itself uses.
func (d *Date) DateString(months, days, hours, minutes, rounds int) string {
	total := d.Combine(Components{
		Months:  int64(months),
		Days:    int64(days),
		Hours:   int64(hours),
		Minutes: int64(minutes),
		Rounds:  int64(rounds),
	})
	return FormatDuration(d.Decompose(total))
}

// FormatDuration renders the nonzero units of c, largest first.
func FormatDuration(c Components) string {
	var parts []string
	add := func(n int64, unit string) {
		if n == 0 {
			return
		}
		if n != 1 {
			unit += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, unit))
	}
	add(c.Months, "month")
	add(c.Days, "day")
	add(c.Hours, "hour")
	add(c.Minutes, "minute")
	add(c.Rounds, "round")
	if len(parts) == 0 {
		return "0 rounds"
	}
	return strings.Join(parts, " ")
}

// String renders the calendar position, e.g. "Month 1, Day 3, 04:12 (round 5)".
func (d *Date) String() string {
	return fmt.Sprintf("Month %d, Day %d, %02d:%02d (round %d)",
		d.comp.Months+1, d.comp.Days+1, d.comp.Hours, d.comp.Minutes, d.comp.Rounds)
}
