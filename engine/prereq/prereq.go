// Package prereq evaluates prerequisite and restriction lists against a
// creature's stats, skills, roles, abilities and proficiencies.
package prereq

import "github.com/nathoo/campaigncore/types"

// Creature is the view of a creature the evaluator needs.
type Creature interface {
	Stat(s types.Stat) int
	SkillRanks(skillID string) int
	RoleLevel(roleID string) int
	HasAbility(abilityID string) bool
	HasWeaponProficiency(id string) bool
	HasArmorProficiency(id string) bool
}

// StatReq requires a stat of at least Min.
type StatReq struct {
	Stat types.Stat
	Min  int
}

// SkillReq requires at least Ranks ranks in a skill.
type SkillReq struct {
	SkillID string
	Ranks   int
}

// RoleReq requires at least Level levels in a role.
type RoleReq struct {
	RoleID string
	Level  int
}

// List is a set of requirements. Categories are ANDed together; role
// requirements form a single OR group. The zero value is empty and accepts
// every creature.
type List struct {
	Stats               []StatReq
	Skills              []SkillReq
	Roles               []RoleReq
	Abilities           []string
	WeaponProficiencies []string
	ArmorProficiencies  []string
}

// IsEmpty reports whether the list has no requirements at all.
func (l *List) IsEmpty() bool {
	return len(l.Stats) == 0 && len(l.Skills) == 0 && len(l.Roles) == 0 &&
		len(l.Abilities) == 0 && len(l.WeaponProficiencies) == 0 &&
		len(l.ArmorProficiencies) == 0
}

// MeetsPrereqs evaluates stats, skills, roles, abilities, weapon and armor
// proficiencies in that order, stopping at the first unmet category.
func (l *List) MeetsPrereqs(c Creature) bool {
	return l.meetsStats(c) &&
		l.meetsSkills(c) &&
		l.MeetsRolePrereqs(c) &&
		l.meetsAbilities(c) &&
		l.meetsWeaponProficiencies(c) &&
		l.meetsArmorProficiencies(c)
}

// MeetsRestrictions treats the list as exclusions: it returns false as soon
// as any single entry is met, in the same category order as MeetsPrereqs.
// True means the creature meets none of the entries.
func (l *List) MeetsRestrictions(c Creature) bool {
	for _, r := range l.Stats {
		if c.Stat(r.Stat) >= r.Min {
			return false
		}
	}
	for _, r := range l.Skills {
		if c.SkillRanks(r.SkillID) >= r.Ranks {
			return false
		}
	}
	for _, r := range l.Roles {
		if c.RoleLevel(r.RoleID) >= r.Level {
			return false
		}
	}
	for _, id := range l.Abilities {
		if c.HasAbility(id) {
			return false
		}
	}
	for _, id := range l.WeaponProficiencies {
		if c.HasWeaponProficiency(id) {
			return false
		}
	}
	for _, id := range l.ArmorProficiencies {
		if c.HasArmorProficiency(id) {
			return false
		}
	}
	return true
}

// MeetsRolePrereqs reports whether any listed role is at or above its
// required level. An empty role list is satisfied.
func (l *List) MeetsRolePrereqs(c Creature) bool {
	if len(l.Roles) == 0 {
		return true
	}
	for _, r := range l.Roles {
		if c.RoleLevel(r.RoleID) >= r.Level {
			return true
		}
	}
	return false
}

// HasRolePrereqs reports whether the creature has at least one level in any
// listed role, ignoring the level thresholds. An empty role list is
// satisfied.
func (l *List) HasRolePrereqs(c Creature) bool {
	if len(l.Roles) == 0 {
		return true
	}
	for _, r := range l.Roles {
		if c.RoleLevel(r.RoleID) > 0 {
			return true
		}
	}
	return false
}

func (l *List) meetsStats(c Creature) bool {
	for _, r := range l.Stats {
		if c.Stat(r.Stat) < r.Min {
			return false
		}
	}
	return true
}

func (l *List) meetsSkills(c Creature) bool {
	for _, r := range l.Skills {
		if c.SkillRanks(r.SkillID) < r.Ranks {
			return false
		}
	}
	return true
}

func (l *List) meetsAbilities(c Creature) bool {
	for _, id := range l.Abilities {
		if !c.HasAbility(id) {
			return false
		}
	}
	return true
}

func (l *List) meetsWeaponProficiencies(c Creature) bool {
	for _, id := range l.WeaponProficiencies {
		if !c.HasWeaponProficiency(id) {
			return false
		}
	}
	return true
}

func (l *List) meetsArmorProficiencies(c Creature) bool {
	for _, id := range l.ArmorProficiencies {
		if !c.HasArmorProficiency(id) {
			return false
		}
	}
	return true
}

// Merge appends every requirement of other to l.
func (l *List) Merge(other List) {
	l.Stats = append(l.Stats, other.Stats...)
	l.Skills = append(l.Skills, other.Skills...)
	l.Roles = append(l.Roles, other.Roles...)
	l.Abilities = append(l.Abilities, other.Abilities...)
	l.WeaponProficiencies = append(l.WeaponProficiencies, other.WeaponProficiencies...)
	l.ArmorProficiencies = append(l.ArmorProficiencies, other.ArmorProficiencies...)
}
