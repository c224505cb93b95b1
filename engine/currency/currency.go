// Package currency implements fixed-point money. Values are integers in
// hundredths of a copper piece.
package currency

import (
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"strings"
)

// Units per denomination. PP:GP:SP:CP is 1:10:100:1000.
const (
	CP int64 = 100
	SP int64 = 10 * CP
	GP int64 = 10 * SP
	PP int64 = 10 * GP
)

// Unbounded is returned by MaxAffordable when the unit cost is zero.
const Unbounded = math.MaxInt

// Currency is an amount of money. The zero value is empty.
type Currency struct {
	Value int64 `json:"value"`
}

// FromValue returns a currency with the raw value.
func FromValue(v int64) Currency { return Currency{Value: v} }

func FromCP(n int64) Currency { return Currency{Value: n * CP} }
func FromSP(n int64) Currency { return Currency{Value: n * SP} }
func FromGP(n int64) Currency { return Currency{Value: n * GP} }
func FromPP(n int64) Currency { return Currency{Value: n * PP} }

func (c *Currency) AddCP(n int64) { c.Value += n * CP }
func (c *Currency) AddSP(n int64) { c.Value += n * SP }
func (c *Currency) AddGP(n int64) { c.Value += n * GP }
func (c *Currency) AddPP(n int64) { c.Value += n * PP }

// AddValue adds a raw value.
func (c *Currency) AddValue(v int64) { c.Value += v }

// Add adds another currency.
func (c *Currency) Add(o Currency) { c.Value += o.Value }

// Subtract removes another currency. The result may go negative; callers
// check CanAfford first.
func (c *Currency) Subtract(o Currency) { c.Value -= o.Value }

// CanAfford reports whether c covers cost.
func (c Currency) CanAfford(cost Currency) bool { return c.Value >= cost.Value }

// IsZero reports an empty purse.
func (c Currency) IsZero() bool { return c.Value == 0 }

// Denominations splits the value into whole coins, largest first. Fractions
// of a copper piece are dropped.
func (c Currency) Denominations() (pp, gp, sp, cp int64) {
	v := c.Value
	pp = v / PP
	v %= PP
	gp = v / GP
	v %= GP
	sp = v / SP
	v %= SP
	cp = v / CP
	return pp, gp, sp, cp
}

// ShortString renders the nonzero denominations, e.g. "1 PP 3 GP". An empty
// purse renders as "0 CP".
func (c Currency) ShortString() string {
	pp, gp, sp, cp := c.Denominations()
	var parts []string
	if pp != 0 {
		parts = append(parts, fmt.Sprintf("%d PP", pp))
	}
	if gp != 0 {
		parts = append(parts, fmt.Sprintf("%d GP", gp))
	}
	if sp != 0 {
		parts = append(parts, fmt.Sprintf("%d SP", sp))
	}
	if cp != 0 {
		parts = append(parts, fmt.Sprintf("%d CP", cp))
	}
	if len(parts) == 0 {
		return "0 CP"
	}
	return strings.Join(parts, " ")
}

// String renders the long form, e.g. "1 Platinum, 3 Gold".
func (c Currency) String() string {
	pp, gp, sp, cp := c.Denominations()
	var parts []string
	if pp != 0 {
		parts = append(parts, fmt.Sprintf("%d Platinum", pp))
	}
	if gp != 0 {
		parts = append(parts, fmt.Sprintf("%d Gold", gp))
	}
	if sp != 0 {
		parts = append(parts, fmt.Sprintf("%d Silver", sp))
	}
	if cp != 0 {
		parts = append(parts, fmt.Sprintf("%d Copper", cp))
	}
	if len(parts) == 0 {
		return "0 Copper"
	}
	return strings.Join(parts, ", ")
}

var unitValues = map[string]int64{
	"pp": PP,
	"gp": GP,
	"sp": SP,
	"cp": CP,
}

// AddFromString parses whitespace separated (amount, unit) pairs such as
// "3 GP 5 sp" and adds them. Malformed pairs are logged and skipped; the
// well-formed pairs are still added. A nil logger discards the warnings.
func (c *Currency) AddFromString(logger *log.Logger, s string) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	fields := strings.Fields(s)
	for i := 0; i < len(fields); i += 2 {
		if i+1 >= len(fields) {
			logger.Printf("warning: currency %q: amount %q has no unit", s, fields[i])
			return
		}
		amount, err := strconv.ParseInt(fields[i], 10, 64)
		if err != nil {
			logger.Printf("warning: currency %q: bad amount %q: %v", s, fields[i], err)
			continue
		}
		unit, ok := unitValues[strings.ToLower(fields[i+1])]
		if !ok {
			logger.Printf("warning: currency %q: unknown unit %q", s, fields[i+1])
			continue
		}
		c.Value += amount * unit
	}
}

// Parse is AddFromString on an empty purse.
func Parse(logger *log.Logger, s string) Currency {
	var c Currency
	c.AddFromString(logger, s)
	return c
}

// UnitCost is the price of one unit worth unitValue at a markup percentage.
func UnitCost(unitValue int64, markupPercent int) int64 {
	return unitValue * int64(markupPercent) / 100
}

// MaxAffordable returns how many units of unitValue at markupPercent the
// purse can cover, or Unbounded when the unit cost is zero.
func (c Currency) MaxAffordable(unitValue int64, markupPercent int) int {
	cost := UnitCost(unitValue, markupPercent)
	if cost <= 0 {
		return Unbounded
	}
	if c.Value <= 0 {
		return 0
	}
	return int(c.Value / cost)
}
