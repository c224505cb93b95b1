// Package creature holds the runtime state of a party member or encounter
// creature.
package creature

import (
	"sort"

	"github.com/nathoo/campaigncore/engine/item"
	"github.com/nathoo/campaigncore/engine/role"
	"github.com/nathoo/campaigncore/engine/skill"
	"github.com/nathoo/campaigncore/types"
)

// Def is a creature definition from campaign content.
type Def struct {
	ID                  string
	Name                string
	Faction             string
	Stats               map[types.Stat]int
	Skills              map[string]int
	Roles               map[string]int
	Abilities           []string
	WeaponProficiencies []string
	ArmorProficiencies  []string
	Inventory           []item.Entry
	Equipped            map[item.Slot]string
	Auras               []string
}

// Equipped is the item occupying a slot.
type Equipped struct {
	TemplateID string `json:"id"`
	Quality    string `json:"quality,omitempty"`
	// Penalty is the armor penalty the item imposes while worn.
	Penalty int `json:"penalty,omitempty"`
}

// Aura is a sustained ability. Transitions cancel active auras and
// reactivate the ones they canceled.
type Aura struct {
	ID       string `json:"id"`
	Active   bool   `json:"active"`
	canceled bool
}

// Creature is a live creature.
type Creature struct {
	ID      string
	name    string
	Faction string

	stats      map[types.Stat]int
	Skills     *skill.Set
	Roles      *role.Set
	abilities  map[string]bool
	weaponProf map[string]bool
	armorProf  map[string]bool

	Inventory   *item.List
	equipped    map[item.Slot]Equipped
	SkillPoints int

	AreaID   string
	Position types.Point
	Placed   bool

	auras []*Aura
}

// New creates a creature with empty tables.
func New(id, name, faction string) *Creature {
	return &Creature{
		ID:         id,
		name:       name,
		Faction:    faction,
		stats:      map[types.Stat]int{},
		Skills:     skill.NewSet(),
		Roles:      role.NewSet(),
		abilities:  map[string]bool{},
		weaponProf: map[string]bool{},
		armorProf:  map[string]bool{},
		Inventory:  item.NewList(),
		equipped:   map[item.Slot]Equipped{},
	}
}

// Spawn builds a creature from a definition. Role levels are recorded
// without replaying level-up grants; roles resolves role IDs and may be
// nil.
func Spawn(id string, def *Def, roles map[string]*role.Def, templates item.Lookup) *Creature {
	c := New(id, def.Name, def.Faction)
	for s, v := range def.Stats {
		c.stats[s] = v
	}
	for sk, n := range def.Skills {
		c.Skills.SetRanks(sk, n)
	}
	roleIDs := make([]string, 0, len(def.Roles))
	for r := range def.Roles {
		roleIDs = append(roleIDs, r)
	}
	sort.Strings(roleIDs)
	for _, r := range roleIDs {
		rd, ok := roles[r]
		if !ok {
			rd = &role.Def{ID: r}
		}
		c.Roles.SetLevel(rd, def.Roles[r])
	}
	for _, a := range def.Abilities {
		c.abilities[a] = true
	}
	for _, p := range def.WeaponProficiencies {
		c.weaponProf[p] = true
	}
	for _, p := range def.ArmorProficiencies {
		c.armorProf[p] = true
	}
	for _, e := range def.Inventory {
		c.Inventory.Add(e.TemplateID, e.Quality, e.Quantity)
	}
	for slot, id := range def.Equipped {
		if t, ok := templates.Get(id); ok {
			c.Equip(slot, t, "")
		}
	}
	for _, a := range def.Auras {
		c.AddAura(a, true)
	}
	return c
}

// Name returns the display name.
func (c *Creature) Name() string { return c.name }

// FactionName implements faction.Member.
func (c *Creature) FactionName() string { return c.Faction }

// IsNil reports whether c is a nil pointer behind an interface.
func (c *Creature) IsNil() bool { return c == nil }

// Stat returns the current value of a stat. The armor penalty is derived
// from worn equipment.
func (c *Creature) Stat(s types.Stat) int {
	if s == types.StatArmorPenalty {
		n := c.stats[s]
		for _, e := range c.equipped {
			n += e.Penalty
		}
		return n
	}
	return c.stats[s]
}

// SetStat replaces a base stat.
func (c *Creature) SetStat(s types.Stat, v int) { c.stats[s] = v }

// AddStat adjusts a base stat.
func (c *Creature) AddStat(s types.Stat, n int) { c.stats[s] += n }

// Stats returns a copy of the base stats.
func (c *Creature) Stats() map[types.Stat]int {
	out := make(map[types.Stat]int, len(c.stats))
	for k, v := range c.stats {
		out[k] = v
	}
	return out
}

func (c *Creature) SkillRanks(id string) int { return c.Skills.Ranks(id) }
func (c *Creature) RoleLevel(id string) int  { return c.Roles.Level(id) }

func (c *Creature) HasAbility(id string) bool           { return c.abilities[id] }
func (c *Creature) HasWeaponProficiency(id string) bool { return c.weaponProf[id] }
func (c *Creature) HasArmorProficiency(id string) bool  { return c.armorProf[id] }

// GrantAbility gives the creature an ability.
func (c *Creature) GrantAbility(id string) { c.abilities[id] = true }

// AddSkillPoints adds unspent skill points.
func (c *Creature) AddSkillPoints(n int) { c.SkillPoints += n }

// AddWeaponProficiency grants a weapon proficiency.
func (c *Creature) AddWeaponProficiency(id string) { c.weaponProf[id] = true }

// AddArmorProficiency grants an armor proficiency.
func (c *Creature) AddArmorProficiency(id string) { c.armorProf[id] = true }

// Abilities returns held abilities sorted.
func (c *Creature) Abilities() []string { return sortedKeys(c.abilities) }

// WeaponProficiencies returns weapon proficiencies sorted.
func (c *Creature) WeaponProficiencies() []string { return sortedKeys(c.weaponProf) }

// ArmorProficiencies returns armor proficiencies sorted.
func (c *Creature) ArmorProficiencies() []string { return sortedKeys(c.armorProf) }

// Equip puts a template in a slot, returning what was there.
func (c *Creature) Equip(slot item.Slot, t *item.Template, quality string) (Equipped, bool) {
	prev, had := c.equipped[slot]
	e := Equipped{TemplateID: t.ID, Quality: quality}
	if a, ok := t.Kind.(item.Armor); ok {
		e.Penalty = a.Penalty
	}
	c.equipped[slot] = e
	return prev, had
}

// Unequip clears a slot.
func (c *Creature) Unequip(slot item.Slot) (Equipped, bool) {
	prev, had := c.equipped[slot]
	delete(c.equipped, slot)
	return prev, had
}

// EquippedIn returns the item in a slot.
func (c *Creature) EquippedIn(slot item.Slot) (Equipped, bool) {
	e, ok := c.equipped[slot]
	return e, ok
}

// Equipment returns a copy of the slot table.
func (c *Creature) Equipment() map[item.Slot]Equipped {
	out := make(map[item.Slot]Equipped, len(c.equipped))
	for k, v := range c.equipped {
		out[k] = v
	}
	return out
}

// AddAura adds a sustained ability.
func (c *Creature) AddAura(id string, active bool) {
	c.auras = append(c.auras, &Aura{ID: id, Active: active})
}

// Auras returns the creature's auras.
func (c *Creature) Auras() []Aura {
	out := make([]Aura, len(c.auras))
	for i, a := range c.auras {
		out[i] = *a
	}
	return out
}

// CancelAuras deactivates every active aura and remembers which were
// canceled. It returns the number canceled.
func (c *Creature) CancelAuras() int {
	n := 0
	for _, a := range c.auras {
		if a.Active {
			a.Active = false
			a.canceled = true
			n++
		}
	}
	return n
}

// ReactivateAuras turns back on the auras the last CancelAuras canceled.
func (c *Creature) ReactivateAuras() int {
	n := 0
	for _, a := range c.auras {
		if a.canceled {
			a.Active = true
			a.canceled = false
			n++
		}
	}
	return n
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k, ok := range m {
		if ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// SkillSet returns the creature's skill ranks.
func (c *Creature) SkillSet() *skill.Set { return c.Skills }
