// Package types defines the shared data structures for the campaign engine.
// This package contains only type definitions and trivial helpers.
package types

// Intent is the parsed representation of a player command.
type Intent struct {
	Verb string
	Args []string
}

// Arg returns the i-th argument or "" when absent.
func (i Intent) Arg(n int) string {
	if n < 0 || n >= len(i.Args) {
		return ""
	}
	return i.Args[n]
}

// Result is the output of a single engine step.
type Result struct {
	Output []string
	Log    []string // diagnostic lines written while the step ran
	Events []string // event types emitted while the step ran
	Fatal  error    // set when the step hit an unrecoverable invariant violation
}

// Point is a tile coordinate inside an area.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Stat identifies a creature attribute.
type Stat string

const (
	StatStr Stat = "Str"
	StatDex Stat = "Dex"
	StatCon Stat = "Con"
	StatInt Stat = "Int"
	StatWis Stat = "Wis"
	StatCha Stat = "Cha"

	StatLevelAttackBonus Stat = "LevelAttackBonus"
	StatLevelDamageBonus Stat = "LevelDamageBonus"
	StatHitPoints        Stat = "HitPoints"
	StatArmorPenalty     Stat = "ArmorPenalty"
)

// BaseStats lists the six primary attributes in display order.
var BaseStats = []Stat{StatStr, StatDex, StatCon, StatInt, StatWis, StatCha}
