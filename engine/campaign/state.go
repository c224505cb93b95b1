package campaign

import (
	"fmt"

	"github.com/nathoo/campaigncore/engine/area"
	"github.com/nathoo/campaigncore/engine/cache"
	"github.com/nathoo/campaigncore/engine/creature"
	"github.com/nathoo/campaigncore/engine/currency"
	"github.com/nathoo/campaigncore/engine/faction"
	"github.com/nathoo/campaigncore/engine/item"
	"github.com/nathoo/campaigncore/engine/merchant"
	"github.com/nathoo/campaigncore/engine/quest"
)

// State is a fully resolved runtime state ready to replace a campaign's
// own. It is built by the save package once every reference in a save
// file has been resolved.
type State struct {
	Difficulty string
	Rounds     int64
	Currency   currency.Currency
	Stash      []item.Entry

	Party   []*creature.Creature
	Primary int

	Areas       []*area.Area
	CurrentArea *area.Area
	OnWorldMap  bool
	Location    string

	Merchants   []*merchant.Merchant
	Transitions []*area.Transition
	Quests      *quest.Journal
	Created     []*item.Template

	Relationships []faction.CustomRelationship
	Revealed      []string
	ScriptState   map[string]any
}

// Replace commits a resolved state. The date observer is not fired, so
// loading does not respawn encounters.
func (c *Campaign) Replace(s State) error {
	if len(s.Party) > 0 && (s.Primary < 0 || s.Primary >= len(s.Party)) {
		return fmt.Errorf("primary member %d out of range", s.Primary)
	}

	c.Difficulty = s.Difficulty
	c.Date.SetTotalRounds(s.Rounds)
	c.Currency = s.Currency
	c.Stash = item.NewList(s.Stash...)

	c.party = s.Party
	c.primary = s.Primary

	c.areas = cache.New[string, *area.Area]()
	for _, a := range s.Areas {
		c.areas.Insert(a.ID(), a)
	}
	c.current = s.CurrentArea
	c.onWorldMap = s.OnWorldMap
	c.worldMapLocation = s.Location

	c.merchants = cache.New[string, *merchant.Merchant]()
	for _, m := range s.Merchants {
		c.merchants.Insert(m.ID(), m)
	}
	c.transitions = cache.New[string, *area.Transition]()
	for _, t := range s.Transitions {
		c.transitions.Insert(t.ID(), t)
	}

	c.Quests = s.Quests
	if c.Quests == nil {
		c.Quests = quest.NewJournal()
	}
	c.Created = item.NewRegistry()
	for _, t := range s.Created {
		c.Created.Add(t)
	}

	c.custom = append([]faction.CustomRelationship(nil), s.Relationships...)
	c.Factions = c.buildFactions(c.custom)

	c.revealed = map[string]bool{}
	for _, id := range s.Revealed {
		c.revealed[id] = true
	}
	c.Scripts.SetState(s.ScriptState)

	c.ctx.InCombat = false
	c.Turns.Reset(c.turnIDs())
	c.Turns.Advance()
	return nil
}
