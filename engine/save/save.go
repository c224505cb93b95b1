// Package save implements JSON serialization of a live campaign and the
// two-phase load that rebuilds one.
package save

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/nathoo/campaigncore/engine/campaign"
	"github.com/nathoo/campaigncore/engine/creature"
	"github.com/nathoo/campaigncore/engine/date"
	"github.com/nathoo/campaigncore/engine/dice"
	"github.com/nathoo/campaigncore/engine/item"
	"github.com/nathoo/campaigncore/engine/merchant"
	"github.com/nathoo/campaigncore/engine/quest"
	"github.com/nathoo/campaigncore/types"
)

// Version is written into every save.
const Version = "1"

// ErrCampaignMismatch means a save belongs to a different campaign.
var ErrCampaignMismatch = errors.New("save belongs to a different campaign")

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Version           string       `json:"version"`
	ID                string       `json:"id"`
	CurrentDifficulty string       `json:"currentDifficulty"`
	Date              int64        `json:"date"`
	Radices           date.Radices `json:"radices"`
	Dice              DiceState    `json:"dice"`
	PartyCurrency     int64        `json:"partyCurrency"`
	PartyInventory    []item.Entry `json:"partyInventory"`

	CurrentArea      string `json:"currentArea,omitempty"`
	OnWorldMap       bool   `json:"onWorldMap,omitempty"`
	WorldMapLocation string `json:"worldMapLocation,omitempty"`

	Party                PartyData           `json:"party"`
	LoadedAreas          []AreaData          `json:"loadedAreas"`
	CreatedItems         []CreatedItem       `json:"createdItems"`
	Transitions          []TransitionData    `json:"transitions"`
	Merchants            []merchant.Snapshot `json:"merchants"`
	QuestEntries         QuestData           `json:"questEntries"`
	WorldMapLocations    []string            `json:"worldMapLocations"`
	ScriptState          map[string]any      `json:"scriptState"`
	FactionRelationships []Relationship      `json:"factionRelationships"`
}

// DiceState is the position of the shared random stream.
type DiceState struct {
	Seed     int64 `json:"seed"`
	Position int64 `json:"position"`
}

// PartyData holds the party members in order.
type PartyData struct {
	Members []creature.Snapshot `json:"members"`
	Primary int                 `json:"primary"`
}

// AreaData is a loaded area. Encounter members refer to Creatures by index.
type AreaData struct {
	ID         string              `json:"id"`
	Explored   []types.Point       `json:"explored"`
	Creatures  []creature.Snapshot `json:"creatures"`
	Encounters []EncounterData     `json:"encounters"`
}

// EncounterData is the runtime state of one encounter.
type EncounterData struct {
	ID             string `json:"id"`
	Spawned        bool   `json:"spawned"`
	LastSpawnRound int64  `json:"lastSpawnRound"`
	Members        []int  `json:"members"`
}

// CreatedItem records an enchanted template by its root and enchantments.
type CreatedItem struct {
	ID           string   `json:"id"`
	Base         string   `json:"base"`
	Enchantments []string `json:"enchantments"`
}

// TransitionData is a transition's activation state.
type TransitionData struct {
	ID        string `json:"id"`
	Activated bool   `json:"activated"`
}

// QuestData splits the journal into its two partitions.
type QuestData struct {
	ActiveEntries    []quest.Entry `json:"activeEntries"`
	CompletedEntries []quest.Entry `json:"completedEntries"`
}

// Relationship is a campaign faction override.
type Relationship struct {
	Faction1     string `json:"faction1"`
	Faction2     string `json:"faction2"`
	Relationship string `json:"relationship"`
}

// Snapshot captures a campaign's dynamic state.
func Snapshot(c *campaign.Campaign) *SaveData {
	ctx := c.Ctx()
	sd := &SaveData{
		Version:           Version,
		ID:                c.ID,
		CurrentDifficulty: c.Difficulty,
		Date:              c.Date.TotalRounds(),
		Radices:           c.Date.Radices(),
		Dice:              DiceState{Seed: ctx.Dice.Seed(), Position: ctx.Dice.Position()},
		PartyCurrency:     c.Currency.Value,
		PartyInventory:    c.Stash.Entries(),
		CurrentArea:       c.CurrentAreaID(),
		OnWorldMap:        c.OnWorldMap(),
		WorldMapLocation:  c.WorldMapLocation(),
		Party:             PartyData{Primary: c.PrimaryIndex()},
		WorldMapLocations: c.RevealedLocations(),
		ScriptState:       c.Scripts.State(),
	}
	for _, m := range c.Party() {
		sd.Party.Members = append(sd.Party.Members, m.Snapshot())
	}
	for _, a := range c.LoadedAreas() {
		ad := AreaData{ID: a.ID(), Explored: a.ExploredPoints()}
		index := map[string]int{}
		ids := make([]string, 0, len(a.Creatures))
		for id := range a.Creatures {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			index[id] = len(ad.Creatures)
			ad.Creatures = append(ad.Creatures, a.Creatures[id].Snapshot())
		}
		for _, e := range a.Encounters {
			ed := EncounterData{ID: e.Def.ID, Spawned: e.Spawned, LastSpawnRound: e.LastSpawnRound}
			for _, id := range e.Members {
				if i, ok := index[id]; ok {
					ed.Members = append(ed.Members, i)
				}
			}
			ad.Encounters = append(ad.Encounters, ed)
		}
		sd.LoadedAreas = append(sd.LoadedAreas, ad)
	}
	for _, t := range c.Created.All() {
		sd.CreatedItems = append(sd.CreatedItems, CreatedItem{ID: t.ID, Base: t.Base, Enchantments: t.Enchantments})
	}
	for _, t := range c.Transitions() {
		sd.Transitions = append(sd.Transitions, TransitionData{ID: t.ID(), Activated: t.Activated})
	}
	for _, m := range c.Merchants() {
		sd.Merchants = append(sd.Merchants, m.Snapshot())
	}
	for _, e := range c.Quests.Active() {
		sd.QuestEntries.ActiveEntries = append(sd.QuestEntries.ActiveEntries, *e)
	}
	for _, e := range c.Quests.Completed() {
		sd.QuestEntries.CompletedEntries = append(sd.QuestEntries.CompletedEntries, *e)
	}
	for _, cr := range c.CustomRelationships() {
		sd.FactionRelationships = append(sd.FactionRelationships, Relationship{
			Faction1:     cr.Faction1,
			Faction2:     cr.Faction2,
			Relationship: cr.Relationship.String(),
		})
	}
	normalize(sd)
	return sd
}

// Save serializes a campaign to JSON bytes.
func Save(c *campaign.Campaign) ([]byte, error) {
	return json.MarshalIndent(Snapshot(c), "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	if sd.ID == "" {
		return nil, fmt.Errorf("save has no campaign id")
	}
	if p := sd.Dice.Position; p < 0 || p > dice.MaxPosition {
		return nil, fmt.Errorf("save dice position %d out of range [0, %d]", p, dice.MaxPosition)
	}
	normalize(&sd)
	return &sd, nil
}

// normalize ensures collections are never nil.
func normalize(sd *SaveData) {
	if sd.PartyInventory == nil {
		sd.PartyInventory = []item.Entry{}
	}
	if sd.Party.Members == nil {
		sd.Party.Members = []creature.Snapshot{}
	}
	if sd.LoadedAreas == nil {
		sd.LoadedAreas = []AreaData{}
	}
	if sd.CreatedItems == nil {
		sd.CreatedItems = []CreatedItem{}
	}
	if sd.Transitions == nil {
		sd.Transitions = []TransitionData{}
	}
	if sd.Merchants == nil {
		sd.Merchants = []merchant.Snapshot{}
	}
	if sd.QuestEntries.ActiveEntries == nil {
		sd.QuestEntries.ActiveEntries = []quest.Entry{}
	}
	if sd.QuestEntries.CompletedEntries == nil {
		sd.QuestEntries.CompletedEntries = []quest.Entry{}
	}
	if sd.WorldMapLocations == nil {
		sd.WorldMapLocations = []string{}
	}
	if sd.ScriptState == nil {
		sd.ScriptState = map[string]any{}
	}
	if sd.FactionRelationships == nil {
		sd.FactionRelationships = []Relationship{}
	}
}
