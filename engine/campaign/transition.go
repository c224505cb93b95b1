package campaign

import (
	"fmt"

	"github.com/nathoo/campaigncore/engine/area"
	"github.com/nathoo/campaigncore/engine/creature"
	"github.com/nathoo/campaigncore/engine/events"
	"github.com/nathoo/campaigncore/types"
)

// Transition moves the party through transition id. fromWorldMap selects
// the world-map side of the transition. ErrNoEndpoint and ErrNoPlacement
// are fatal; other errors leave the campaign unchanged.
func (c *Campaign) Transition(id string, fromWorldMap bool) error {
	if len(c.party) == 0 {
		return ErrNotPopulated
	}
	t, err := c.AreaTransition(id)
	if err != nil {
		return err
	}
	if !t.Activated {
		return fmt.Errorf("%s: %w", id, ErrInactive)
	}

	if loc := t.Def.WorldMapLocation; loc != "" {
		if err := c.RevealLocation(loc); err != nil {
			c.ctx.Warnf("transition %s: %v", id, err)
		}
	}

	old := c.current
	if old != nil {
		c.runHook(old, "on_exit", old.Def.Hooks.OnExit)
	}

	dest, err := t.Destination(c.CurrentAreaID(), fromWorldMap)
	if err != nil {
		return fmt.Errorf("transition %s from %q: %w", id, c.CurrentAreaID(), err)
	}
	var next *area.Area
	if !dest.WorldMap {
		if next, err = c.Area(dest.AreaID); err != nil {
			return fmt.Errorf("transition %s: %v: %w", id, err, ErrNoEndpoint)
		}
	}

	canceled := c.cancelAuras()

	if old != nil {
		for _, m := range c.party {
			old.Remove(m.ID)
			m.Placed = false
		}
		old.FreeTiles()
		c.Events.Emit(events.AreaLeft, map[string]any{"area": old.ID()})
	}

	if fromWorldMap {
		c.travelTime(t)
	}

	if dest.WorldMap {
		c.current = nil
		c.onWorldMap = true
		c.worldMapLocation = t.Def.WorldMapLocation
		for _, m := range c.party {
			m.AreaID = ""
		}
		c.ctx.Sayf("The party sets out across the world map.")
		c.ctx.InCombat = false
		c.Turns.Reset(c.partyIDs())
		c.Turns.Advance()
		c.reactivateAuras(canceled)
		c.Events.Emit(events.WorldMapEntered, map[string]any{"transition": id})
		return nil
	}

	err = c.enter(next, dest, "The party arrives at %s.")
	c.reactivateAuras(canceled)
	return err
}

// enter switches to a, runs its load hook, places the party, and refreshes
// visibility and turn order.
func (c *Campaign) enter(a *area.Area, dest area.Endpoint, message string) error {
	c.current = a
	c.onWorldMap = false
	a.LoadTiles()
	c.runHook(a, "on_load", a.Def.Hooks.OnLoad)

	if err := c.placeParty(a, dest.Points); err != nil {
		return err
	}

	c.ctx.Sayf(message, nameOr(a.Def.Name, a.ID()))
	c.ctx.InCombat = false
	c.refreshVisibility()
	c.Turns.Reset(c.turnIDs())
	c.Turns.Advance()
	c.Events.Emit(events.AreaEntered, map[string]any{"area": a.ID()})
	return nil
}

// placeParty puts the primary member first, then the others, on the
// endpoint's points in order and then on the nearest empty tiles. Only a
// failure for the primary member is an error.
func (c *Campaign) placeParty(a *area.Area, points []types.Point) error {
	order := []*creature.Creature{c.Primary()}
	for i, m := range c.party {
		if i != c.primary {
			order = append(order, m)
		}
	}

	var anchor types.Point
	if len(points) > 0 {
		anchor = points[0]
	}
	for i, m := range order {
		p, ok := types.Point{}, false
		if i < len(points) && a.IsEmpty(points[i]) {
			p, ok = points[i], true
		} else {
			p, ok = a.FindNearestEmptyTile(anchor, c.ctx.Rules.PlacementSearchRadius)
		}
		if ok {
			ok = a.Place(m.ID, p) == nil
		}
		if !ok {
			m.Placed = false
			m.AreaID = a.ID()
			if i == 0 {
				return fmt.Errorf("place %s in %s: %w", m.ID, a.ID(), ErrNoPlacement)
			}
			c.ctx.Errorf("place %s in %s: no empty tile near %v", m.ID, a.ID(), anchor)
			continue
		}
		m.AreaID, m.Position, m.Placed = a.ID(), p, true
	}
	return nil
}

// refreshVisibility explores around every placed member.
func (c *Campaign) refreshVisibility() {
	a := c.current
	if a == nil {
		return
	}
	n := 0
	for _, m := range c.party {
		if m.Placed {
			n += a.Explore(m.Position, c.ctx.Rules.SightRadius)
		}
	}
	c.Events.Emit(events.VisibilityChanged, map[string]any{"area": a.ID(), "explored": n})
}

func (c *Campaign) travelTime(t *area.Transition) {
	loc, ok := c.Defs.Locations[t.Def.WorldMapLocation]
	if !ok || loc.TravelHours <= 0 {
		return
	}
	c.Date.IncrementHours(loc.TravelHours)
	c.ctx.Sayf("The journey to %s takes %d hours.", nameOr(loc.Name, loc.ID), loc.TravelHours)
}

func (c *Campaign) cancelAuras() map[string]bool {
	canceled := map[string]bool{}
	for _, m := range c.party {
		if m.CancelAuras() > 0 {
			canceled[m.ID] = true
		}
	}
	return canceled
}

func (c *Campaign) reactivateAuras(canceled map[string]bool) {
	for _, m := range c.party {
		if canceled[m.ID] {
			m.ReactivateAuras()
		}
	}
}

func (c *Campaign) partyIDs() []string {
	ids := make([]string, 0, len(c.party))
	for _, m := range c.party {
		ids = append(ids, m.ID)
	}
	return ids
}

// turnIDs orders the party first and then the area's creatures.
func (c *Campaign) turnIDs() []string {
	ids := c.partyIDs()
	if c.current == nil {
		return ids
	}
	for _, e := range c.current.Encounters {
		ids = append(ids, e.Members...)
	}
	return ids
}
