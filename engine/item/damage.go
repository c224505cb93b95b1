package item

import (
	"fmt"
	"strings"
)

// Damage accumulates amounts per damage type, iterating in the order types
// were first added.
type Damage struct {
	amounts map[string]int
	order   []string
}

// NewDamage creates an empty table.
func NewDamage() *Damage {
	return &Damage{amounts: map[string]int{}}
}

// Add accumulates n points of a damage type.
func (d *Damage) Add(damageType string, n int) {
	if _, ok := d.amounts[damageType]; !ok {
		d.order = append(d.order, damageType)
	}
	d.amounts[damageType] += n
}

// Get returns the amount of a damage type.
func (d *Damage) Get(damageType string) int {
	if d == nil {
		return 0
	}
	return d.amounts[damageType]
}

// Types returns damage types in first-added order.
func (d *Damage) Types() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.order...)
}

// Total sums every type.
func (d *Damage) Total() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, v := range d.amounts {
		n += v
	}
	return n
}

// Merge adds every entry of other.
func (d *Damage) Merge(other *Damage) {
	if other == nil {
		return
	}
	for _, t := range other.order {
		d.Add(t, other.amounts[t])
	}
}

// Clone returns an independent copy. Cloning nil yields nil.
func (d *Damage) Clone() *Damage {
	if d == nil {
		return nil
	}
	c := NewDamage()
	c.Merge(d)
	return c
}

// String lists amounts in first-added order, e.g. "6 slashing, 2 fire".
func (d *Damage) String() string {
	if d == nil || len(d.order) == 0 {
		return "none"
	}
	parts := make([]string, len(d.order))
	for i, t := range d.order {
		parts[i] = fmt.Sprintf("%d %s", d.amounts[t], t)
	}
	return strings.Join(parts, ", ")
}
