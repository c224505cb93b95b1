package save

import (
	"fmt"

	"github.com/nathoo/campaigncore/engine/area"
	"github.com/nathoo/campaigncore/engine/campaign"
	"github.com/nathoo/campaigncore/engine/creature"
	"github.com/nathoo/campaigncore/engine/currency"
	"github.com/nathoo/campaigncore/engine/date"
	"github.com/nathoo/campaigncore/engine/dice"
	"github.com/nathoo/campaigncore/engine/faction"
	"github.com/nathoo/campaigncore/engine/item"
	"github.com/nathoo/campaigncore/engine/merchant"
	"github.com/nathoo/campaigncore/engine/quest"
	"github.com/nathoo/campaigncore/engine/sim"
)

// arena holds everything materialised in the first load phase. Cross
// references between entities are kept as indices into its slices or as
// plain IDs until the second phase resolves them.
type arena struct {
	areas     []*area.Area
	areaIndex map[string]int

	creatures []*creature.Creature
	// homes is the index of the area a non-party creature lives in, -1 for
	// party members.
	homes []int
	party []int

	encounters []encounterRef

	merchants   []*merchant.Merchant
	transitions []*area.Transition
	created     []*item.Template
	quests      *quest.Journal
}

type encounterRef struct {
	enc     *area.Encounter
	home    int // index of the encounter's area in arena.areas
	members []int
}

// Apply restores a campaign from save data. The campaign is only modified
// once every reference in the save has been resolved.
func Apply(c *campaign.Campaign, sd *SaveData) error {
	if sd.ID != c.ID {
		return fmt.Errorf("save %q, campaign %q: %w", sd.ID, c.ID, ErrCampaignMismatch)
	}
	ctx := c.Ctx()
	ar, err := materialize(ctx, c.Defs, sd)
	if err != nil {
		return err
	}
	st, err := resolve(ctx, ar, sd)
	if err != nil {
		return err
	}

	if sd.Radices != (date.Radices{}) && sd.Radices != c.Date.Radices() {
		ctx.Warnf("save radices %+v differ from campaign radices; using the save's", sd.Radices)
		c.Date.SetRoundsPerMinute(sd.Radices.RoundsPerMinute)
		c.Date.SetMinutesPerHour(sd.Radices.MinutesPerHour)
		c.Date.SetHoursPerDay(sd.Radices.HoursPerDay)
		c.Date.SetDaysPerMonth(sd.Radices.DaysPerMonth)
	}
	if err := c.Replace(st); err != nil {
		return fmt.Errorf("apply save: %w", err)
	}
	if sd.Dice.Seed != 0 || sd.Dice.Position != 0 {
		ctx.Dice = dice.Restore(sd.Dice.Seed, sd.Dice.Position)
	}
	return nil
}

// materialize builds every owned entity. Unknown definitions are content
// errors: they are logged and the entity is dropped. Encounter members must
// index creatures saved with their own area.
func materialize(ctx *sim.Context, defs *campaign.Defs, sd *SaveData) (*arena, error) {
	ar := &arena{areaIndex: map[string]int{}, quests: quest.NewJournal()}

	for _, ci := range sd.CreatedItems {
		t, err := rebuildTemplate(defs.Items, ci)
		if err != nil {
			ctx.Warnf("created item %s: %v", ci.ID, err)
			continue
		}
		ar.created = append(ar.created, t)
	}

	for _, ad := range sd.LoadedAreas {
		def, ok := defs.Areas[ad.ID]
		if !ok {
			ctx.Warnf("loaded area %q: unknown area", ad.ID)
			continue
		}
		a := area.New(def)
		a.FreeTiles()
		for _, p := range ad.Explored {
			a.SetExplored(p)
		}
		ai := len(ar.areas)
		ar.areaIndex[ad.ID] = ai
		ar.areas = append(ar.areas, a)

		first := len(ar.creatures)
		for _, cs := range ad.Creatures {
			ar.creatures = append(ar.creatures, creature.FromSnapshot(cs, defs.Roles))
			ar.homes = append(ar.homes, ai)
		}
		for _, ed := range ad.Encounters {
			e, ok := a.Encounter(ed.ID)
			if !ok {
				ctx.Warnf("area %s: unknown encounter %q", ad.ID, ed.ID)
				continue
			}
			e.Spawned = ed.Spawned
			e.LastSpawnRound = ed.LastSpawnRound
			ref := encounterRef{enc: e, home: ai}
			for _, i := range ed.Members {
				if i < 0 || i >= len(ad.Creatures) {
					return nil, fmt.Errorf("area %s: encounter %s: member index %d out of range", ad.ID, ed.ID, i)
				}
				ref.members = append(ref.members, first+i)
			}
			ar.encounters = append(ar.encounters, ref)
		}
	}

	for _, cs := range sd.Party.Members {
		ar.party = append(ar.party, len(ar.creatures))
		ar.creatures = append(ar.creatures, creature.FromSnapshot(cs, defs.Roles))
		ar.homes = append(ar.homes, -1)
	}

	for _, ms := range sd.Merchants {
		def, ok := defs.Merchants[ms.ID]
		if !ok {
			ctx.Warnf("merchant %q: unknown merchant", ms.ID)
			continue
		}
		ar.merchants = append(ar.merchants, merchant.FromSnapshot(def, ms))
	}

	for _, td := range sd.Transitions {
		def, ok := defs.Transitions[td.ID]
		if !ok {
			ctx.Warnf("transition %q: unknown transition", td.ID)
			continue
		}
		t := area.NewTransition(def)
		t.Activated = td.Activated
		ar.transitions = append(ar.transitions, t)
	}

	for _, e := range sd.QuestEntries.ActiveEntries {
		e.Completed = false
		ar.quests.Restore(e)
	}
	for _, e := range sd.QuestEntries.CompletedEntries {
		e.Completed = true
		ar.quests.Restore(e)
	}
	return ar, nil
}

// rebuildTemplate derives a created template again from its content root.
func rebuildTemplate(items *item.Registry, ci CreatedItem) (*item.Template, error) {
	root, ok := items.Get(ci.Base)
	if !ok {
		return nil, fmt.Errorf("unknown base item %q", ci.Base)
	}
	t := root
	if len(ci.Enchantments) < len(root.Enchantments) {
		return nil, fmt.Errorf("fewer enchantments than base item %q", ci.Base)
	}
	for _, ench := range ci.Enchantments[len(root.Enchantments):] {
		t = item.Derive(t, ench)
	}
	if t == root {
		return nil, fmt.Errorf("no enchantments")
	}
	if t.ID != ci.ID {
		return nil, fmt.Errorf("derived id %s does not match", t.ID)
	}
	return t, nil
}

// resolve turns the arena's index references into a campaign state.
func resolve(ctx *sim.Context, ar *arena, sd *SaveData) (campaign.State, error) {
	st := campaign.State{
		Difficulty:  sd.CurrentDifficulty,
		Rounds:      sd.Date,
		Currency:    currency.FromValue(sd.PartyCurrency),
		Stash:       sd.PartyInventory,
		Areas:       ar.areas,
		OnWorldMap:  sd.OnWorldMap,
		Location:    sd.WorldMapLocation,
		Merchants:   ar.merchants,
		Transitions: ar.transitions,
		Quests:      ar.quests,
		Created:     ar.created,
		Revealed:    sd.WorldMapLocations,
		ScriptState: sd.ScriptState,
	}

	for i, cr := range ar.creatures {
		home := ar.homes[i]
		if home < 0 {
			continue
		}
		a := ar.areas[home]
		a.Creatures[cr.ID] = cr
		cr.AreaID = a.ID()
		if cr.Placed {
			if err := a.Place(cr.ID, cr.Position); err != nil {
				ctx.Warnf("area %s: creature %s: %v", a.ID(), cr.ID, err)
				cr.Placed = false
			}
		}
	}
	for _, ref := range ar.encounters {
		ref.enc.Members = nil
		for _, i := range ref.members {
			if i < 0 || i >= len(ar.creatures) || ar.homes[i] != ref.home {
				return campaign.State{}, fmt.Errorf("encounter %s: member %d does not belong to its area", ref.enc.Def.ID, i)
			}
			ref.enc.Members = append(ref.enc.Members, ar.creatures[i].ID)
		}
	}

	for _, i := range ar.party {
		m := ar.creatures[i]
		st.Party = append(st.Party, m)
		if m.AreaID == "" {
			m.Placed = false
			continue
		}
		ai, ok := ar.areaIndex[m.AreaID]
		if !ok {
			ctx.Warnf("party member %s: unknown area %q", m.ID, m.AreaID)
			m.AreaID, m.Placed = "", false
			continue
		}
		if m.Placed {
			if err := ar.areas[ai].Place(m.ID, m.Position); err != nil {
				ctx.Warnf("party member %s: %v", m.ID, err)
				m.Placed = false
			}
		}
	}
	st.Primary = sd.Party.Primary
	if st.Primary < 0 || st.Primary >= len(st.Party) {
		if len(st.Party) > 0 {
			ctx.Warnf("primary member %d out of range; using the first", st.Primary)
		}
		st.Primary = 0
	}

	if sd.CurrentArea != "" {
		if ai, ok := ar.areaIndex[sd.CurrentArea]; ok {
			st.CurrentArea = ar.areas[ai]
			st.CurrentArea.LoadTiles()
		} else {
			ctx.Errorf("current area %q is not among the loaded areas", sd.CurrentArea)
		}
	}

	for _, r := range sd.FactionRelationships {
		rel, err := faction.ParseRelationship(r.Relationship)
		if err != nil {
			ctx.Warnf("faction relationship %s/%s: %v", r.Faction1, r.Faction2, err)
			continue
		}
		st.Relationships = append(st.Relationships, faction.CustomRelationship{
			Faction1: r.Faction1, Faction2: r.Faction2, Relationship: rel,
		})
	}
	return st, nil
}
