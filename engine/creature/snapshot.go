package creature

import (
	"github.com/nathoo/campaigncore/engine/item"
	"github.com/nathoo/campaigncore/engine/role"
	"github.com/nathoo/campaigncore/types"
)

// RoleLevel is one row of a saved role table.
type RoleLevel struct {
	ID    string `json:"id"`
	Level int    `json:"level"`
}

// Snapshot is the saved form of a creature.
type Snapshot struct {
	ID                  string                 `json:"id"`
	Name                string                 `json:"name"`
	Faction             string                 `json:"faction,omitempty"`
	Stats               map[types.Stat]int     `json:"stats"`
	Skills              map[string]int         `json:"skills"`
	Roles               []RoleLevel            `json:"roles"`
	Abilities           []string               `json:"abilities"`
	WeaponProficiencies []string               `json:"weaponProficiencies"`
	ArmorProficiencies  []string               `json:"armorProficiencies"`
	Inventory           []item.Entry           `json:"inventory"`
	Equipped            map[item.Slot]Equipped `json:"equipped"`
	SkillPoints         int                    `json:"skillPoints,omitempty"`
	AreaID              string                 `json:"area,omitempty"`
	Position            types.Point            `json:"position"`
	Placed              bool                   `json:"placed"`
	Auras               []Aura                 `json:"auras"`
}

// Snapshot captures the creature's saveable state.
func (c *Creature) Snapshot() Snapshot {
	s := Snapshot{
		ID:                  c.ID,
		Name:                c.name,
		Faction:             c.Faction,
		Stats:               c.Stats(),
		Skills:              c.Skills.All(),
		Abilities:           c.Abilities(),
		WeaponProficiencies: c.WeaponProficiencies(),
		ArmorProficiencies:  c.ArmorProficiencies(),
		Inventory:           c.Inventory.Entries(),
		Equipped:            c.Equipment(),
		SkillPoints:         c.SkillPoints,
		AreaID:              c.AreaID,
		Position:            c.Position,
		Placed:              c.Placed,
		Auras:               c.Auras(),
	}
	for _, id := range c.Roles.IDs() {
		s.Roles = append(s.Roles, RoleLevel{ID: id, Level: c.Roles.Level(id)})
	}
	return s
}

// FromSnapshot rebuilds a creature. roles supplies role definitions so the
// base role is recognised; unknown roles are kept by ID.
func FromSnapshot(s Snapshot, roles map[string]*role.Def) *Creature {
	c := New(s.ID, s.Name, s.Faction)
	for k, v := range s.Stats {
		c.stats[k] = v
	}
	for id, n := range s.Skills {
		c.Skills.SetRanks(id, n)
	}
	for _, rl := range s.Roles {
		rd, ok := roles[rl.ID]
		if !ok {
			rd = &role.Def{ID: rl.ID}
		}
		c.Roles.SetLevel(rd, rl.Level)
	}
	for _, a := range s.Abilities {
		c.abilities[a] = true
	}
	for _, p := range s.WeaponProficiencies {
		c.weaponProf[p] = true
	}
	for _, p := range s.ArmorProficiencies {
		c.armorProf[p] = true
	}
	for _, e := range s.Inventory {
		c.Inventory.Add(e.TemplateID, e.Quality, e.Quantity)
	}
	for slot, e := range s.Equipped {
		c.equipped[slot] = e
	}
	c.SkillPoints = s.SkillPoints
	c.AreaID = s.AreaID
	c.Position = s.Position
	c.Placed = s.Placed
	for _, a := range s.Auras {
		c.AddAura(a.ID, a.Active)
	}
	return c
}
