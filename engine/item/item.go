// Package item defines item templates, inventories and the registry of
// templates known to a campaign.
package item

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// Kind is the closed set of item categories. Only types in this package
// implement it.
type Kind interface {
	kindName() string
}

// Weapon is an item that deals damage.
type Weapon struct {
	Damage      *Damage
	Range       int
	Proficiency string
	Ammo        string // ammo proficiency consumed per shot, "" for melee
}

// Armor is an item worn for protection.
type Armor struct {
	ArmorClass  int
	Penalty     int
	Proficiency string
}

// Ammo is consumed by ranged weapons.
type Ammo struct {
	Proficiency string
	Bonus       int
}

// Misc covers ingredients, trade goods and quest items.
type Misc struct{}

func (Weapon) kindName() string { return "weapon" }
func (Armor) kindName() string  { return "armor" }
func (Ammo) kindName() string   { return "ammo" }
func (Misc) kindName() string   { return "misc" }

// KindName returns the lowercase category name of k.
func KindName(k Kind) string {
	if k == nil {
		return Misc{}.kindName()
	}
	return k.kindName()
}

// Slot is an equipment slot.
type Slot string

const (
	SlotNone     Slot = ""
	SlotMainHand Slot = "mainhand"
	SlotOffHand  Slot = "offhand"
	SlotArmor    Slot = "armor"
	SlotHead     Slot = "head"
	SlotHands    Slot = "hands"
	SlotFeet     Slot = "feet"
	SlotNeck     Slot = "neck"
	SlotQuiver   Slot = "quiver"
)

// Slots lists every equipment slot in display order.
var Slots = []Slot{SlotMainHand, SlotOffHand, SlotArmor, SlotHead, SlotHands, SlotFeet, SlotNeck, SlotQuiver}

// ParseSlot converts a slot name.
func ParseSlot(s string) (Slot, error) {
	for _, sl := range Slots {
		if string(sl) == s {
			return sl, nil
		}
	}
	return SlotNone, fmt.Errorf("unknown slot %q", s)
}

// Template is the shared definition of an item.
type Template struct {
	ID   string
	Name string
	Kind Kind
	// Value is the base price in currency units.
	Value int64
	Slot  Slot
	// Base is the template this one was derived from, "" for content items.
	Base         string
	Enchantments []string
}

// Equippable reports whether the template can go in a slot.
func (t *Template) Equippable() bool { return t.Slot != SlotNone }

// DerivedID is the ID of base enchanted with enchantment.
func DerivedID(baseID, enchantment string) string {
	return fmt.Sprintf("%s-%016x", baseID, xxhash.Sum64String(enchantment))
}

// Derive returns a copy of base carrying one more enchantment. Weapon damage
// is copied so the derived template owns its own table.
func Derive(base *Template, enchantment string) *Template {
	t := *base
	t.ID = DerivedID(base.ID, enchantment)
	t.Base = base.ID
	if base.Base != "" {
		t.Base = base.Base
	}
	t.Enchantments = append(append([]string(nil), base.Enchantments...), enchantment)
	if w, ok := base.Kind.(Weapon); ok {
		w.Damage = w.Damage.Clone()
		t.Kind = w
	}
	return &t
}

// Registry holds templates by ID in insertion order.
type Registry struct {
	templates map[string]*Template
	order     []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{templates: map[string]*Template{}}
}

// Add stores a template, replacing any with the same ID.
func (r *Registry) Add(t *Template) {
	if _, ok := r.templates[t.ID]; !ok {
		r.order = append(r.order, t.ID)
	}
	r.templates[t.ID] = t
}

// Get looks a template up.
func (r *Registry) Get(id string) (*Template, bool) {
	t, ok := r.templates[id]
	return t, ok
}

// Len returns the number of templates.
func (r *Registry) Len() int { return len(r.templates) }

// All returns templates in insertion order.
func (r *Registry) All() []*Template {
	out := make([]*Template, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.templates[id])
	}
	return out
}

// IDs returns the template IDs sorted.
func (r *Registry) IDs() []string {
	ids := append([]string(nil), r.order...)
	sort.Strings(ids)
	return ids
}

// Lookup chains registries, returning the first hit.
type Lookup []*Registry

// Get searches each registry in order.
func (l Lookup) Get(id string) (*Template, bool) {
	for _, r := range l {
		if r == nil {
			continue
		}
		if t, ok := r.Get(id); ok {
			return t, true
		}
	}
	return nil, false
}

// ValueAt returns the template's value scaled by the percentage the quality
// table assigns to quality. Unknown qualities are valued at 100%.
func (t *Template) ValueAt(qualities map[string]int, quality string) int64 {
	pct, ok := qualities[quality]
	if !ok {
		pct = 100
	}
	return t.Value * int64(pct) / 100
}
