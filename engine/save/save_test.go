package save

import (
	"testing"

	"github.com/nathoo/campaigncore/engine/area"
	"github.com/nathoo/campaigncore/engine/campaign"
	"github.com/nathoo/campaigncore/engine/creature"
	"github.com/nathoo/campaigncore/engine/dice"
	"github.com/nathoo/campaigncore/engine/faction"
	"github.com/nathoo/campaigncore/engine/item"
	"github.com/nathoo/campaigncore/engine/merchant"
	"github.com/nathoo/campaigncore/engine/quest"
	"github.com/nathoo/campaigncore/engine/sim"
	"github.com/nathoo/campaigncore/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDefs() *campaign.Defs {
	d := campaign.NewDefs()
	d.Manifest.ID = "vale"
	d.Manifest.Name = "The Vale"
	d.Manifest.StartingCharacters = []string{"aria", "bram"}
	d.Manifest.StartingArea = "town"
	d.Manifest.StartingMoney = "2 GP 5 SP"

	d.Creatures["aria"] = &creature.Def{ID: "aria", Name: "Aria", Faction: "Player",
		Stats: map[types.Stat]int{types.StatCha: 14}, Skills: map[string]int{"speech": 3}}
	d.Creatures["bram"] = &creature.Def{ID: "bram", Name: "Bram", Faction: "Player"}
	d.Creatures["wolf"] = &creature.Def{ID: "wolf", Name: "Wolf", Faction: "Wild"}
	d.Factions = []campaign.FactionDef{{Name: "Player"}, {Name: "Wild"}}

	d.Areas["town"] = &area.Def{ID: "town", Name: "Town", Width: 8, Height: 8}
	d.Areas["woods"] = &area.Def{ID: "woods", Name: "Woods", Width: 8, Height: 8,
		Hooks:      area.Hooks{OnLoad: `state.visits = (state.visits or 0) + 1`},
		Encounters: []area.EncounterDef{{ID: "pack", Creatures: []string{"wolf", "wolf"}, Points: []types.Point{{X: 6, Y: 6}}}}}
	d.Areas["cave"] = &area.Def{ID: "cave", Name: "Cave", Width: 4, Height: 4,
		Encounters: []area.EncounterDef{{ID: "bats", Creatures: []string{"wolf"}, Points: []types.Point{{X: 2, Y: 2}}}}}
	d.Transitions["path"] = &area.TransitionDef{ID: "path", Activated: true, TwoWay: true,
		WorldMapLocation: "woods_loc",
		From:             area.Endpoint{AreaID: "town", Points: []types.Point{{X: 7, Y: 7}}},
		To:               area.Endpoint{AreaID: "woods", Points: []types.Point{{X: 0, Y: 0}}}}
	d.Transitions["gate"] = &area.TransitionDef{ID: "gate",
		From: area.Endpoint{AreaID: "town"}, To: area.Endpoint{AreaID: "woods"}}
	d.Locations["woods_loc"] = &area.Location{ID: "woods_loc", Name: "Woods", Transition: "path"}

	d.Items.Add(&item.Template{ID: "torch", Name: "Torch", Value: 100})
	d.Merchants["grocer"] = &merchant.Def{ID: "grocer", BuyPercentage: 50, SellPercentage: 150,
		BaseItems: []merchant.LootEntry{{TemplateID: "torch", Quantity: 4, Probability: 100}}}
	return d
}

func newCampaign(t *testing.T, seed int64) *campaign.Campaign {
	t.Helper()
	c := campaign.New("vale", testDefs(), sim.New(dice.New(seed), sim.DefaultRuleset(), nil))
	t.Cleanup(c.Close)
	return c
}

func TestQuestRoundTrip(t *testing.T) {
	c := newCampaign(t, 1)
	active := c.AddQuest("Find the mill", true)
	active.AddSubEntry(quest.SubEntry{Title: "Rumour", Description: "Past the river.", ShowTitle: true})
	active.AddSubEntry(quest.SubEntry{Description: "The miller is missing."})
	done := c.AddQuest("Light the beacon", false)
	done.AddSubEntry(quest.SubEntry{Title: "Lit", Description: "The beacon burns."})
	require.NoError(t, c.CompleteQuest("Light the beacon"))

	data, err := Save(c)
	require.NoError(t, err)
	sd, err := Load(data)
	require.NoError(t, err)

	c2 := newCampaign(t, 2)
	require.NoError(t, Apply(c2, sd))

	require.Len(t, c2.Quests.Active(), 1)
	require.Len(t, c2.Quests.Completed(), 1)
	assert.Equal(t, *active, *c2.Quests.Active()[0])
	assert.Equal(t, *done, *c2.Quests.Completed()[0])
	assert.Equal(t, "The miller is missing.", c2.Quests.Active()[0].SubEntries[1].Description)
	assert.False(t, c2.Quests.Completed()[0].ShowLogNotifications)
}

func TestCampaignRoundTrip(t *testing.T) {
	c := newCampaign(t, 7)
	require.NoError(t, c.Populate())
	_, err := c.Buy("grocer", "torch", 1)
	require.NoError(t, err)
	require.NoError(t, c.SetRelationship("Player", "Wild", faction.Hostile))
	torch, _ := c.Defs.Items.Get("torch")
	bright := item.Derive(torch, "bright")
	c.Created.Add(bright)
	require.NoError(t, c.Transition("path", false))
	require.NoError(t, c.SetPrimary("bram"))
	c.Date.IncrementMinutes(12)

	data, err := Save(c)
	require.NoError(t, err)
	sd, err := Load(data)
	require.NoError(t, err)

	c2 := newCampaign(t, 99)
	require.NoError(t, Apply(c2, sd))

	assert.Equal(t, c.Date.TotalRounds(), c2.Date.TotalRounds())
	assert.Equal(t, c.Currency, c2.Currency)
	assert.Equal(t, 1, c2.Stash.Count("torch"))
	assert.Equal(t, "woods", c2.CurrentAreaID())
	assert.Equal(t, "bram", c2.Primary().ID)
	assert.True(t, c2.IsRevealed("woods_loc"))
	assert.Equal(t, map[string]any{"visits": 1}, c2.Scripts.State())

	woods := c2.CurrentArea()
	assert.True(t, woods.TilesLoaded())
	assert.Equal(t, c.CurrentArea().Occupants(), woods.Occupants())
	enc, ok := woods.Encounter("pack")
	require.True(t, ok)
	assert.Equal(t, []string{"woods/pack#1", "woods/pack#2"}, enc.Members)
	assert.Contains(t, woods.Creatures, "woods/pack#2")
	assert.Equal(t, c.CurrentArea().ExploredPoints(), woods.ExploredPoints())

	town, ok := c2.LoadedArea("town")
	require.True(t, ok)
	assert.False(t, town.TilesLoaded())

	require.Len(t, c2.Merchants(), 1)
	assert.Equal(t, 3, c2.Merchants()[0].CurrentItems.Count("torch"))
	assert.Equal(t, faction.Hostile, c2.Factions.Between("Wild", "Player"))

	got, ok := c2.Created.Get(bright.ID)
	require.True(t, ok)
	assert.Equal(t, "torch", got.Base)
	assert.Equal(t, []string{"bright"}, got.Enchantments)

	assert.Equal(t, c.Ctx().Dice.D100(), c2.Ctx().Dice.D100(), "dice stream continues")
}

func TestApply_PendingMerchantStock(t *testing.T) {
	c := newCampaign(t, 1)
	sd, err := Load([]byte(`{"id":"vale","date":50,"merchants":[{"id":"grocer","lastRespawnRound":12,"currentItems":null}]}`))
	require.NoError(t, err)
	require.NoError(t, Apply(c, sd))

	require.Len(t, c.Merchants(), 1)
	m := c.Merchants()[0]
	assert.Nil(t, m.CurrentItems)
	assert.Equal(t, int64(12), m.LastRespawnRound)
	assert.Nil(t, Snapshot(c).Merchants[0].CurrentItems)
}

func TestApply_CampaignMismatch(t *testing.T) {
	c := newCampaign(t, 1)
	require.NoError(t, c.Populate())
	before := c.Currency

	err := Apply(c, &SaveData{ID: "elsewhere", PartyCurrency: 1})
	assert.ErrorIs(t, err, ErrCampaignMismatch)
	assert.Equal(t, before, c.Currency, "campaign untouched")
}

func TestApply_UnknownCurrentAreaIsLeftUnset(t *testing.T) {
	c := newCampaign(t, 1)
	sd, err := Load([]byte(`{"id":"vale","currentArea":"atlantis","loadedAreas":[{"id":"atlantis"}]}`))
	require.NoError(t, err)
	require.NoError(t, Apply(c, sd))
	assert.Nil(t, c.CurrentArea())
	assert.Empty(t, c.LoadedAreas())
}

func TestApply_BadEncounterReference(t *testing.T) {
	c := newCampaign(t, 1)
	sd, err := Load([]byte(`{"id":"vale","loadedAreas":[{"id":"woods","encounters":[{"id":"pack","spawned":true,"members":[4]}]}]}`))
	require.NoError(t, err)
	assert.Error(t, Apply(c, sd))
	assert.Empty(t, c.LoadedAreas(), "campaign untouched")
}

func TestApply_NegativeEncounterMember(t *testing.T) {
	c := newCampaign(t, 1)
	sd, err := Load([]byte(`{"id":"vale","loadedAreas":[{"id":"woods","encounters":[{"id":"pack","spawned":true,"members":[-1]}]}]}`))
	require.NoError(t, err)
	assert.Error(t, Apply(c, sd))
	assert.Empty(t, c.LoadedAreas(), "campaign untouched")
}

func TestApply_EncounterMemberFromAnotherArea(t *testing.T) {
	c := newCampaign(t, 3)
	require.NoError(t, c.Populate())
	require.NoError(t, c.Transition("path", false))

	data, err := Save(c)
	require.NoError(t, err)
	sd, err := Load(data)
	require.NoError(t, err)

	// -1 in the cave would land on the woods' last wolf.
	sd.LoadedAreas = append(sd.LoadedAreas, AreaData{ID: "cave",
		Encounters: []EncounterData{{ID: "bats", Spawned: true, Members: []int{-1}}}})

	c2 := newCampaign(t, 4)
	err = Apply(c2, sd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cave")
	assert.Empty(t, c2.LoadedAreas(), "campaign untouched")

	// An index past the cave's own creatures is rejected the same way.
	sd.LoadedAreas[len(sd.LoadedAreas)-1].Encounters[0].Members = []int{0}
	assert.Error(t, Apply(c2, sd))
}

func TestLoad_DicePositionBounds(t *testing.T) {
	_, err := Load([]byte(`{"id":"vale","dice":{"seed":3,"position":-5}}`))
	assert.Error(t, err)
	_, err = Load([]byte(`{"id":"vale","dice":{"seed":3,"position":9000000000000}}`))
	assert.Error(t, err)
	sd, err := Load([]byte(`{"id":"vale","dice":{"seed":3,"position":12}}`))
	require.NoError(t, err)
	assert.Equal(t, int64(12), sd.Dice.Position)
}

func TestLoad(t *testing.T) {
	sd, err := Load([]byte(`{"id":"vale"}`))
	require.NoError(t, err)
	assert.NotNil(t, sd.LoadedAreas)
	assert.NotNil(t, sd.Merchants)
	assert.NotNil(t, sd.QuestEntries.ActiveEntries)
	assert.NotNil(t, sd.ScriptState)

	_, err = Load([]byte(`{}`))
	assert.Error(t, err)
	_, err = Load([]byte(`not json`))
	assert.Error(t, err)
}
