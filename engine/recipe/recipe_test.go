package recipe

import (
	"testing"

	"github.com/nathoo/campaigncore/engine/creature"
	"github.com/nathoo/campaigncore/engine/dice"
	"github.com/nathoo/campaigncore/engine/item"
	"github.com/nathoo/campaigncore/engine/sim"
	"github.com/nathoo/campaigncore/engine/skill"
	"github.com/nathoo/campaigncore/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkshop() Workshop {
	content := item.NewRegistry()
	content.Add(&item.Template{ID: "herb", Name: "Herb"})
	content.Add(&item.Template{ID: "potion", Name: "Healing Potion"})
	content.Add(&item.Template{ID: "dust", Name: "Fire Dust"})
	content.Add(&item.Template{ID: "longsword", Name: "Longsword", Slot: item.SlotMainHand, Kind: item.Weapon{}})
	created := item.NewRegistry()
	return Workshop{
		Inventory: item.NewList(),
		Skills:    map[string]*skill.Def{"alchemy": {ID: "alchemy", KeyStat: types.StatInt}},
		Templates: item.Lookup{content, created},
		Created:   created,
	}
}

func newCrafter(ranks int) *creature.Creature {
	c := creature.New("aria", "Aria", "Player")
	c.SetStat(types.StatInt, 10)
	c.Skills.SetRanks("alchemy", ranks)
	return c
}

func newCtx() *sim.Context { return sim.New(dice.New(1), sim.DefaultRuleset(), nil) }

func TestFindLevelModifier_StrictlyLess(t *testing.T) {
	d := &Def{LevelModifiers: []LevelModifier{
		{SkillRankRequirement: 20, Quality: "superb"},
		{SkillRankRequirement: 0, Quality: "fair"},
		{SkillRankRequirement: 10, Quality: "good"},
	}}

	m, ok := d.FindLevelModifier(20)
	require.True(t, ok)
	assert.Equal(t, 10, m.SkillRankRequirement)

	m, ok = d.FindLevelModifier(21)
	require.True(t, ok)
	assert.Equal(t, "superb", m.Quality)

	_, ok = d.FindLevelModifier(0)
	assert.False(t, ok, "a requirement equal to the skill is never selected")
}

func TestCraft_ConsumesAndProduces(t *testing.T) {
	ctx := newCtx()
	w := newWorkshop()
	w.Inventory.Add("herb", "", 3)
	d := &Def{
		ID: "brew", SkillID: "alchemy", SkillRequirement: 2,
		Ingredients:    []Ingredient{{TemplateID: "herb", Quantity: 2}},
		Result:         "potion",
		LevelModifiers: []LevelModifier{{SkillRankRequirement: 0, Quality: "fair"}, {SkillRankRequirement: 5, Quality: "good"}},
	}

	out, err := d.Craft(ctx, w, newCrafter(5))
	require.NoError(t, err)
	assert.Equal(t, item.Entry{TemplateID: "potion", Quality: "fair", Quantity: 1}, out, "zero result quantity yields one")
	assert.Equal(t, 1, w.Inventory.Count("herb"))
	assert.Equal(t, 1, w.Inventory.Count("potion"))
	assert.Contains(t, ctx.Drain()[0], "Healing Potion")

	_, err = d.Craft(ctx, w, newCrafter(5))
	assert.ErrorIs(t, err, ErrMissingIngredients)
	assert.Equal(t, 1, w.Inventory.Count("herb"), "failed craft consumes nothing")
}

func TestCraft_SkillTooLow(t *testing.T) {
	w := newWorkshop()
	w.Inventory.Add("herb", "", 1)
	d := &Def{ID: "brew", SkillID: "alchemy", SkillRequirement: 4, Ingredients: []Ingredient{{TemplateID: "herb", Quantity: 1}}, Result: "potion", ResultQuantity: 3}

	_, err := d.Craft(newCtx(), w, newCrafter(1))
	assert.ErrorIs(t, err, ErrSkillTooLow)

	out, err := d.Craft(newCtx(), w, newCrafter(4))
	require.NoError(t, err)
	assert.Equal(t, 3, out.Quantity)
}

func TestEnchant_ReusesDerivedTemplate(t *testing.T) {
	w := newWorkshop()
	w.Inventory.Add("dust", "", 2)
	d := &Def{ID: "flame", ResultIngredient: true, Enchantment: "fire damage +2", Ingredients: []Ingredient{{TemplateID: "dust", Quantity: 1}}}

	base, _ := w.Templates.Get("longsword")
	first := creature.New("a", "A", "")
	second := creature.New("b", "B", "")
	first.Equip(item.SlotMainHand, base, "fine")
	second.Equip(item.SlotMainHand, base, "")

	t1, err := d.Enchant(newCtx(), w, first, first, item.SlotMainHand)
	require.NoError(t, err)
	t2, err := d.Enchant(newCtx(), w, first, second, item.SlotMainHand)
	require.NoError(t, err)

	assert.Same(t, t1, t2)
	assert.Equal(t, item.DerivedID("longsword", "fire damage +2"), t1.ID)
	assert.Equal(t, 1, w.Created.Len())

	eq, _ := first.EquippedIn(item.SlotMainHand)
	assert.Equal(t, t1.ID, eq.TemplateID)
	assert.Equal(t, "fine", eq.Quality, "quality survives enchanting")
	assert.Equal(t, 0, w.Inventory.Count("dust"))
}

func TestEnchant_ModeErrors(t *testing.T) {
	w := newWorkshop()
	crafter := newCrafter(0)

	craftOnly := &Def{ID: "brew", Result: "potion"}
	_, err := craftOnly.Enchant(newCtx(), w, crafter, crafter, item.SlotMainHand)
	assert.ErrorIs(t, err, ErrWrongMode)

	enchant := &Def{ID: "flame", ResultIngredient: true, Enchantment: "fire"}
	_, err = enchant.Craft(newCtx(), w, crafter)
	assert.ErrorIs(t, err, ErrWrongMode)

	_, err = enchant.Enchant(newCtx(), w, crafter, crafter, item.SlotMainHand)
	assert.ErrorIs(t, err, ErrNothingEquipped)
}
