package role

import (
	"errors"
	"testing"

	"github.com/nathoo/campaigncore/engine/prereq"
	"github.com/nathoo/campaigncore/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hero struct {
	set       *Set
	stats     map[types.Stat]int
	abilities map[string]bool
	points    int
}

func newHero() *hero {
	return &hero{set: NewSet(), stats: map[types.Stat]int{types.StatStr: 10}, abilities: map[string]bool{}}
}

func (h *hero) Stat(s types.Stat) int            { return h.stats[s] }
func (h *hero) SkillRanks(string) int            { return 0 }
func (h *hero) RoleLevel(id string) int          { return h.set.Level(id) }
func (h *hero) HasAbility(id string) bool        { return h.abilities[id] }
func (h *hero) HasWeaponProficiency(string) bool { return false }
func (h *hero) HasArmorProficiency(string) bool  { return false }
func (h *hero) AddStat(s types.Stat, n int)      { h.stats[s] += n }
func (h *hero) GrantAbility(id string)           { h.abilities[id] = true }
func (h *hero) AddSkillPoints(n int)             { h.points += n }

var (
	fighter = &Def{
		ID: "fighter", Base: true, MaxLevel: 2,
		Levels: []LevelGrant{
			{Stats: map[types.Stat]int{types.StatHitPoints: 10}, Abilities: []string{"power_attack"}, SkillPoints: 2},
			{Stats: map[types.Stat]int{types.StatLevelAttackBonus: 1}},
		},
	}
	wizard = &Def{ID: "wizard", Base: true}
	knight = &Def{
		ID:      "knight",
		Prereqs: prereq.List{Roles: []prereq.RoleReq{{RoleID: "fighter", Level: 2}}},
		Levels:  []LevelGrant{{Abilities: []string{"mounted_combat"}}},
	}
)

func TestLevelUp_AppliesGrants(t *testing.T) {
	h := newHero()

	level, err := h.set.LevelUp(fighter, h)
	require.NoError(t, err)
	assert.Equal(t, 1, level)
	assert.Equal(t, 10, h.stats[types.StatHitPoints])
	assert.True(t, h.abilities["power_attack"])
	assert.Equal(t, 2, h.points)
	assert.Equal(t, "fighter", h.set.Base())

	level, err = h.set.LevelUp(fighter, h)
	require.NoError(t, err)
	assert.Equal(t, 2, level)
	assert.Equal(t, 1, h.stats[types.StatLevelAttackBonus])

	_, err = h.set.LevelUp(fighter, h)
	assert.True(t, errors.Is(err, ErrMaxLevel))
}

func TestLevelUp_OneBaseRole(t *testing.T) {
	h := newHero()
	_, err := h.set.LevelUp(fighter, h)
	require.NoError(t, err)

	_, err = h.set.LevelUp(wizard, h)
	assert.ErrorIs(t, err, ErrSecondBase)
}

func TestLevelUp_Prereqs(t *testing.T) {
	h := newHero()
	_, err := h.set.LevelUp(knight, h)
	assert.ErrorIs(t, err, ErrPrereqsUnmet)

	for i := 0; i < 2; i++ {
		_, err = h.set.LevelUp(fighter, h)
		require.NoError(t, err)
	}
	_, err = h.set.LevelUp(knight, h)
	require.NoError(t, err)
	assert.Equal(t, []string{"fighter", "knight"}, h.set.IDs())
	assert.Equal(t, 3, h.set.TotalLevel())
}

func TestLevelUp_Restrictions(t *testing.T) {
	paladin := &Def{ID: "paladin", Restrictions: prereq.List{Abilities: []string{"necromancy"}}}

	h := newHero()
	h.abilities["necromancy"] = true
	_, err := h.set.LevelUp(paladin, h)
	assert.ErrorIs(t, err, ErrRestricted)

	h2 := newHero()
	_, err = h2.set.LevelUp(paladin, h2)
	assert.NoError(t, err)
}

func TestGrant_OutOfRange(t *testing.T) {
	assert.Equal(t, LevelGrant{}, fighter.Grant(0))
	assert.Equal(t, LevelGrant{}, fighter.Grant(3))
}
