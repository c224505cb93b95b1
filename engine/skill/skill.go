// Package skill holds skill definitions and the per-creature rank table used
// for skill checks.
package skill

import (
	"fmt"
	"sort"

	"github.com/nathoo/campaigncore/engine/sim"
	"github.com/nathoo/campaigncore/types"
)

// Def is a skill definition loaded from campaign content.
type Def struct {
	ID      string
	Name    string
	KeyStat types.Stat
	// Untrained allows checks with zero ranks.
	Untrained bool
	// ArmorPenalty subtracts the owner's armor penalty from the modifier.
	ArmorPenalty bool
}

// Owner is the creature a skill set belongs to.
type Owner interface {
	Name() string
	Stat(s types.Stat) int
}

// Set maps skill IDs to ranks. Skills with no ranks are absent.
type Set struct {
	ranks map[string]int
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{ranks: map[string]int{}}
}

// Ranks returns the ranks held in a skill.
func (s *Set) Ranks(id string) int {
	return s.ranks[id]
}

// AddRanks adds n ranks (n may be negative). Ranks never drop below zero.
func (s *Set) AddRanks(id string, n int) {
	s.SetRanks(id, s.ranks[id]+n)
}

// SetRanks replaces the rank count of a skill.
func (s *Set) SetRanks(id string, n int) {
	if n <= 0 {
		delete(s.ranks, id)
		return
	}
	s.ranks[id] = n
}

// IDs returns the skills with at least one rank, sorted.
func (s *Set) IDs() []string {
	ids := make([]string, 0, len(s.ranks))
	for id := range s.ranks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns a copy of the rank table.
func (s *Set) All() map[string]int {
	out := make(map[string]int, len(s.ranks))
	for id, n := range s.ranks {
		out[id] = n
	}
	return out
}

// Modifier is ranks plus the key-stat bonus, less the armor penalty for
// skills affected by armor.
func (s *Set) Modifier(def *Def, owner Owner, statMultiplier int) int {
	m := s.ranks[def.ID] + (owner.Stat(def.KeyStat)-10)*statMultiplier
	if def.ArmorPenalty {
		m -= owner.Stat(types.StatArmorPenalty)
	}
	return m
}

// CanUse reports whether the owner may attempt the skill at all.
func (s *Set) CanUse(def *Def) bool {
	return def.Untrained || s.ranks[def.ID] > 0
}

// Check is the outcome of a single skill check.
type Check struct {
	SkillID    string
	Value      int
	Roll       int
	Difficulty int
	Success    bool
	Message    string
}

// Check rolls a skill check against difficulty. Skills that cannot be used
// untrained always produce a value of 0 and fail. The result message is
// written to the context transcript.
func (s *Set) Check(ctx *sim.Context, def *Def, owner Owner, difficulty int) Check {
	c := Check{SkillID: def.ID, Difficulty: difficulty}

	if s.CanUse(def) {
		c.Roll = rollFor(ctx)
		c.Value = s.Modifier(def, owner, ctx.Rules.SkillStatMultiplier) + c.Roll
		c.Success = c.Value >= difficulty
	}

	c.Message = checkMessage(def, owner, c, s.CanUse(def))
	ctx.Sayf("%s", c.Message)
	return c
}

func rollFor(ctx *sim.Context) int {
	if ctx.Rules.OutOfCombatAutoSuccess && !ctx.InCombat {
		return 100
	}
	return ctx.Dice.D100()
}

func checkMessage(def *Def, owner Owner, c Check, usable bool) string {
	name := def.Name
	if name == "" {
		name = def.ID
	}
	if !usable {
		return fmt.Sprintf("%s cannot attempt %s untrained.", owner.Name(), name)
	}
	verdict := "fails"
	if c.Success {
		verdict = "succeeds"
	}
	return fmt.Sprintf("%s %s a %s check: %d vs %d.", owner.Name(), verdict, name, c.Value, c.Difficulty)
}
