package item

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindName_CoversEveryKind(t *testing.T) {
	cases := map[string]Kind{
		"weapon": Weapon{},
		"armor":  Armor{},
		"ammo":   Ammo{},
		"misc":   Misc{},
	}
	for want, k := range cases {
		assert.Equal(t, want, KindName(k))
	}
	assert.Equal(t, "misc", KindName(nil))
}

func TestDerivedID_Stable(t *testing.T) {
	a := DerivedID("longsword", "fire +1")
	b := DerivedID("longsword", "fire +1")
	c := DerivedID("longsword", "frost +1")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "longsword-")
}

func TestDerive_CopiesDamage(t *testing.T) {
	dmg := NewDamage()
	dmg.Add("slashing", 6)
	base := &Template{ID: "longsword", Kind: Weapon{Damage: dmg}, Slot: SlotMainHand, Value: 1500}

	d := Derive(base, "fire")
	d.Kind.(Weapon).Damage.Add("fire", 2)

	assert.Equal(t, "longsword", d.Base)
	assert.Equal(t, []string{"fire"}, d.Enchantments)
	assert.Equal(t, 6, dmg.Total(), "base damage untouched")
	assert.Equal(t, 8, d.Kind.(Weapon).Damage.Total())

	dd := Derive(d, "keen")
	assert.Equal(t, "longsword", dd.Base, "base tracks the content template")
	assert.Equal(t, []string{"fire", "keen"}, dd.Enchantments)
}

func TestDamage_InsertionOrder(t *testing.T) {
	d := NewDamage()
	d.Add("piercing", 3)
	d.Add("acid", 1)
	d.Add("piercing", 2)

	assert.Equal(t, []string{"piercing", "acid"}, d.Types())
	assert.Equal(t, 5, d.Get("piercing"))
	assert.Equal(t, 6, d.Total())

	assert.Equal(t, "5 piercing, 1 acid", d.String())

	var none *Damage
	assert.Equal(t, 0, none.Total())
	assert.Nil(t, none.Clone())
	assert.Equal(t, "none", none.String())
}

func TestList_AddMergesStacks(t *testing.T) {
	l := NewList(Entry{TemplateID: "arrow", Quantity: 10})
	l.Add("arrow", "", 5)
	l.Add("arrow", "masterwork", 2)
	l.Add("arrow", "", 0)

	require.Equal(t, 2, l.Len())
	assert.Equal(t, 17, l.Count("arrow"))
	assert.True(t, l.Has("arrow", 17))
	assert.False(t, l.Has("arrow", 18))
}

func TestList_Remove(t *testing.T) {
	l := NewList(
		Entry{TemplateID: "herb", Quantity: 2},
		Entry{TemplateID: "herb", Quality: "fine", Quantity: 3},
	)

	require.NoError(t, l.Remove("herb", 3))
	assert.Equal(t, []Entry{{TemplateID: "herb", Quality: "fine", Quantity: 2}}, l.Entries())

	assert.Error(t, l.Remove("herb", 5))
	assert.Equal(t, 2, l.Count("herb"), "failed remove leaves the list intact")

	assert.Error(t, l.RemoveQuality("herb", "", 1))
	require.NoError(t, l.RemoveQuality("herb", "fine", 2))
	assert.Equal(t, 0, l.Len())
}

func TestRegistryAndLookup(t *testing.T) {
	content := NewRegistry()
	created := NewRegistry()
	content.Add(&Template{ID: "b"})
	content.Add(&Template{ID: "a"})
	created.Add(&Template{ID: "c"})

	assert.Equal(t, []string{"a", "b"}, content.IDs())
	assert.Equal(t, "b", content.All()[0].ID)

	l := Lookup{content, nil, created}
	_, ok := l.Get("c")
	assert.True(t, ok)
	_, ok = l.Get("z")
	assert.False(t, ok)
}

func TestValueAt(t *testing.T) {
	tpl := &Template{Value: 1000}
	q := map[string]int{"poor": 50, "fine": 150}
	assert.Equal(t, int64(500), tpl.ValueAt(q, "poor"))
	assert.Equal(t, int64(1500), tpl.ValueAt(q, "fine"))
	assert.Equal(t, int64(1000), tpl.ValueAt(q, ""))
}

func TestParseSlot(t *testing.T) {
	s, err := ParseSlot("mainhand")
	require.NoError(t, err)
	assert.Equal(t, SlotMainHand, s)
	_, err = ParseSlot("tail")
	assert.Error(t, err)
}
