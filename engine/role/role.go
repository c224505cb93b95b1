// Package role holds role (class) definitions and the per-creature table of
// role levels.
package role

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nathoo/campaigncore/engine/prereq"
	"github.com/nathoo/campaigncore/types"
)

var (
	ErrMaxLevel     = errors.New("role is at its maximum level")
	ErrPrereqsUnmet = errors.New("role prerequisites not met")
	ErrSecondBase   = errors.New("creature already has a base role")
	ErrRestricted   = errors.New("role is restricted for this creature")
)

// LevelGrant is what a creature receives on reaching a role level.
type LevelGrant struct {
	Stats     map[types.Stat]int
	Abilities []string
	// SkillPoints are added to the creature's unspent pool.
	SkillPoints int
}

// Def is a role definition.
type Def struct {
	ID   string
	Name string
	// Base roles are chosen at creation; a creature holds at most one.
	Base         bool
	MaxLevel     int
	Prereqs      prereq.List
	Restrictions prereq.List
	// Levels[i] is granted on reaching level i+1.
	Levels []LevelGrant
}

// Grant returns the grant for reaching level, or an empty grant.
func (d *Def) Grant(level int) LevelGrant {
	if level < 1 || level > len(d.Levels) {
		return LevelGrant{}
	}
	return d.Levels[level-1]
}

// Grantee receives level-up grants.
type Grantee interface {
	prereq.Creature
	AddStat(s types.Stat, n int)
	GrantAbility(id string)
	AddSkillPoints(n int)
}

// Set maps role IDs to levels for one creature, remembering the order roles
// were taken.
type Set struct {
	levels map[string]int
	order  []string
	base   string
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{levels: map[string]int{}}
}

// Level returns the level held in a role.
func (s *Set) Level(id string) int { return s.levels[id] }

// TotalLevel sums all role levels.
func (s *Set) TotalLevel() int {
	n := 0
	for _, l := range s.levels {
		n += l
	}
	return n
}

// Base returns the ID of the base role, if any.
func (s *Set) Base() string { return s.base }

// IDs returns roles in the order they were first taken.
func (s *Set) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// SetLevel records a level without applying grants. Used when restoring
// saved creatures.
func (s *Set) SetLevel(def *Def, level int) {
	if level <= 0 {
		return
	}
	if _, ok := s.levels[def.ID]; !ok {
		s.order = append(s.order, def.ID)
	}
	s.levels[def.ID] = level
	if def.Base {
		s.base = def.ID
	}
}

// CanLevelUp reports why the grantee cannot take the next level of def, or
// nil when it can.
func (s *Set) CanLevelUp(def *Def, g Grantee) error {
	cur := s.levels[def.ID]
	if def.MaxLevel > 0 && cur >= def.MaxLevel {
		return fmt.Errorf("%s: %w", def.ID, ErrMaxLevel)
	}
	if cur > 0 {
		return nil
	}
	if def.Base && s.base != "" && s.base != def.ID {
		return fmt.Errorf("%s: %w", def.ID, ErrSecondBase)
	}
	if !def.Prereqs.MeetsPrereqs(g) {
		return fmt.Errorf("%s: %w", def.ID, ErrPrereqsUnmet)
	}
	if !def.Restrictions.IsEmpty() && !def.Restrictions.MeetsRestrictions(g) {
		return fmt.Errorf("%s: %w", def.ID, ErrRestricted)
	}
	return nil
}

// LevelUp adds one level of def and applies that level's grant. Prereqs are
// checked only when the role is first taken.
func (s *Set) LevelUp(def *Def, g Grantee) (int, error) {
	if err := s.CanLevelUp(def, g); err != nil {
		return 0, err
	}
	level := s.levels[def.ID] + 1
	s.SetLevel(def, level)

	grant := def.Grant(level)
	stats := make([]types.Stat, 0, len(grant.Stats))
	for st := range grant.Stats {
		stats = append(stats, st)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i] < stats[j] })
	for _, st := range stats {
		g.AddStat(st, grant.Stats[st])
	}
	for _, a := range grant.Abilities {
		g.GrantAbility(a)
	}
	if grant.SkillPoints > 0 {
		g.AddSkillPoints(grant.SkillPoints)
	}
	return level, nil
}
