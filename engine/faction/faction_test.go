package faction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type member struct{ faction string }

func (m *member) FactionName() string { return m.faction }
func (m *member) IsNil() bool         { return m == nil }

func TestDefaultRelationshipIsNeutralBothWays(t *testing.T) {
	r := NewRegistry()
	a := r.Add("Guild")
	b := r.Add("Bandits")

	assert.Equal(t, Neutral, a.Relationship("Bandits"))
	assert.Equal(t, Neutral, b.Relationship("Guild"))
}

func TestSetRelationship_IsOneSided(t *testing.T) {
	r := NewRegistry()
	a := r.Add("Guild")
	b := r.Add("Bandits")

	a.SetRelationship("Bandits", Hostile)

	assert.Equal(t, Hostile, a.Relationship("Bandits"))
	assert.Equal(t, Neutral, b.Relationship("Guild"), "reverse lookup keeps the default")
}

func TestCustomRelationship_IsSymmetric(t *testing.T) {
	r := NewRegistry()
	a := r.Add("Guild")
	b := r.Add("Bandits")
	a.SetRelationship("Bandits", Friendly)

	err := CustomRelationship{Faction1: "Guild", Faction2: "Bandits", Relationship: Hostile}.Apply(r)
	require.NoError(t, err)

	assert.Equal(t, Hostile, a.Relationship("Bandits"))
	assert.Equal(t, Hostile, b.Relationship("Guild"))
	assert.Equal(t, Hostile, r.Between("Bandits", "Guild"))
}

func TestCustomRelationship_UnknownFaction(t *testing.T) {
	r := NewRegistry()
	r.Add("Guild")

	err := CustomRelationship{Faction1: "Guild", Faction2: "Nobody", Relationship: Hostile}.Apply(r)
	assert.Error(t, err)
}

func TestRelationshipWith_NilMemberIsAbsent(t *testing.T) {
	r := NewRegistry()
	a := r.Add("Guild")
	a.SetRelationship("Bandits", Hostile)

	_, ok := a.RelationshipWith(nil)
	assert.False(t, ok)

	var typedNil *member
	_, ok = a.RelationshipWith(typedNil)
	assert.False(t, ok)

	assert.False(t, a.IsFriendly(nil))
	assert.False(t, a.IsHostile(nil))
}

func TestIsFriendlyIsHostile(t *testing.T) {
	r := NewRegistry()
	a := r.Add("Guild")
	a.SetRelationship("Bandits", Hostile)

	assert.True(t, a.IsHostile(&member{faction: "Bandits"}))
	assert.False(t, a.IsFriendly(&member{faction: "Bandits"}))
	assert.True(t, a.IsFriendly(&member{faction: "Guild"}), "own faction is friendly")
	assert.False(t, a.IsHostile(&member{faction: "Farmers"}))
	assert.False(t, a.IsFriendly(&member{faction: "Farmers"}))
}

func TestParseRelationship(t *testing.T) {
	for in, want := range map[string]Relationship{
		"Friendly": Friendly,
		"hostile":  Hostile,
		" NEUTRAL": Neutral,
	} {
		got, err := ParseRelationship(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
		assert.Equal(t, got, mustParse(t, got.String()))
	}

	_, err := ParseRelationship("allied")
	assert.Error(t, err)
}

func mustParse(t *testing.T, s string) Relationship {
	t.Helper()
	r, err := ParseRelationship(s)
	require.NoError(t, err)
	return r
}

func TestRelationships_Sorted(t *testing.T) {
	r := NewRegistry()
	a := r.Add("Guild")
	a.SetRelationship("Zealots", Hostile)
	a.SetRelationship("Bandits", Hostile)

	rels := a.Relationships()
	require.Len(t, rels, 2)
	assert.Equal(t, "Bandits", rels[0].Faction2)
	assert.Equal(t, "Zealots", rels[1].Faction2)
	assert.Equal(t, []string{"Guild"}, r.Names())
}
