// Package campaign is the root aggregate of a running campaign: party,
// current area, date, money, quests, merchants, transitions and the other
// runtime state layered over the static Defs.
package campaign

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/nathoo/campaigncore/engine/area"
	"github.com/nathoo/campaigncore/engine/cache"
	"github.com/nathoo/campaigncore/engine/creature"
	"github.com/nathoo/campaigncore/engine/currency"
	"github.com/nathoo/campaigncore/engine/date"
	"github.com/nathoo/campaigncore/engine/events"
	"github.com/nathoo/campaigncore/engine/faction"
	"github.com/nathoo/campaigncore/engine/item"
	"github.com/nathoo/campaigncore/engine/merchant"
	"github.com/nathoo/campaigncore/engine/quest"
	"github.com/nathoo/campaigncore/engine/script"
	"github.com/nathoo/campaigncore/engine/sim"
)

var (
	// ErrNoEndpoint means a transition could not be resolved from where the
	// party stands. Fatal.
	ErrNoEndpoint = area.ErrNoEndpoint
	// ErrNoPlacement means the primary party member could not be placed
	// after a transition. Fatal.
	ErrNoPlacement = errors.New("no empty tile for primary party member")

	ErrUnknownArea       = errors.New("unknown area")
	ErrUnknownMerchant   = errors.New("unknown merchant")
	ErrUnknownTransition = errors.New("unknown transition")
	ErrUnknownLocation   = errors.New("unknown world map location")
	ErrUnknownMember     = errors.New("no such party member")
	ErrInactive          = errors.New("transition is not active")
	ErrPartySize         = errors.New("party size out of bounds")
	ErrNotPopulated      = errors.New("campaign has no party")
)

// Campaign is a live campaign.
type Campaign struct {
	ID         string
	Name       string
	Difficulty string
	Defs       *Defs

	Date     *date.Date
	Currency currency.Currency
	// Stash is the party's shared inventory.
	Stash   *item.List
	Quests  *quest.Journal
	Created *item.Registry

	Factions *faction.Registry
	Scripts  *script.Host
	Events   *events.Bus
	Turns    TurnOrder

	ctx *sim.Context

	party   []*creature.Creature
	primary int

	current          *area.Area
	onWorldMap       bool
	worldMapLocation string

	areas       *cache.Cache[string, *area.Area]
	merchants   *cache.Cache[string, *merchant.Merchant]
	transitions *cache.Cache[string, *area.Transition]

	custom   []faction.CustomRelationship
	revealed map[string]bool
}

// New creates a campaign with rules loaded and no party.
func New(id string, defs *Defs, ctx *sim.Context) *Campaign {
	c := &Campaign{
		ID:          id,
		Name:        defs.Manifest.Name,
		Difficulty:  defs.Manifest.Difficulty,
		Defs:        defs,
		Date:        date.New(defs.Manifest.Radices),
		Stash:       item.NewList(),
		Quests:      quest.NewJournal(),
		Created:     item.NewRegistry(),
		Scripts:     script.NewHost(),
		Events:      &events.Bus{},
		ctx:         ctx,
		areas:       cache.New[string, *area.Area](),
		merchants:   cache.New[string, *merchant.Merchant](),
		transitions: cache.New[string, *area.Transition](),
		revealed:    map[string]bool{},
	}
	c.Factions = c.buildFactions(nil)
	for _, id := range defs.LocationIDs() {
		if defs.Locations[id].Revealed {
			c.revealed[id] = true
		}
	}
	c.Date.OnChange(c.onDateChanged)
	return c
}

// buildFactions creates the registry from content and then applies
// manifest and campaign overrides.
func (c *Campaign) buildFactions(custom []faction.CustomRelationship) *faction.Registry {
	reg := faction.NewRegistry()
	for _, fd := range c.Defs.Factions {
		f := reg.Add(fd.Name)
		for other, rel := range fd.Relationships {
			f.SetRelationship(other, rel)
		}
	}
	for _, cr := range append(append([]faction.CustomRelationship(nil), c.Defs.Manifest.Relationships...), custom...) {
		reg.Add(cr.Faction1)
		reg.Add(cr.Faction2)
		if err := cr.Apply(reg); err != nil {
			c.ctx.Warnf("faction relationship %s/%s: %v", cr.Faction1, cr.Faction2, err)
		}
	}
	return reg
}

// Ctx returns the simulation context.
func (c *Campaign) Ctx() *sim.Context { return c.ctx }

// Close releases the script VM.
func (c *Campaign) Close() { c.Scripts.Close() }

// Templates resolves content and created item templates.
func (c *Campaign) Templates() item.Lookup {
	return item.Lookup{c.Defs.Items, c.Created}
}

// Populate spawns the starting party and enters the starting area.
func (c *Campaign) Populate() error {
	m := c.Defs.Manifest
	lo, hi := m.PartyBounds()
	if n := len(m.StartingCharacters); n < lo || n > hi {
		return fmt.Errorf("starting party of %d: %w (%d-%d)", n, ErrPartySize, lo, hi)
	}
	c.party = nil
	for _, id := range m.StartingCharacters {
		def, ok := c.Defs.Creatures[id]
		if !ok {
			return fmt.Errorf("starting character %q: unknown creature", id)
		}
		cr := creature.Spawn(id, def, c.Defs.Roles, c.Templates())
		if lvl := cr.Roles.TotalLevel(); (m.MinStartingLevel > 0 && lvl < m.MinStartingLevel) ||
			(m.MaxStartingLevel > 0 && lvl > m.MaxStartingLevel) {
			c.ctx.Warnf("starting character %s is level %d, outside %d-%d", id, lvl, m.MinStartingLevel, m.MaxStartingLevel)
		}
		c.party = append(c.party, cr)
	}
	c.primary = 0
	if m.StartingMoney != "" {
		c.Currency.AddFromString(c.ctx.Log, m.StartingMoney)
	}

	if m.StartingArea == "" {
		c.onWorldMap = true
		c.Events.Emit(events.WorldMapEntered, nil)
		return nil
	}
	a, err := c.Area(m.StartingArea)
	if err != nil {
		return fmt.Errorf("starting area: %w", err)
	}
	return c.enter(a, area.Endpoint{AreaID: a.ID(), Points: m.StartingPoints}, "The adventure begins in %s.")
}

// Area returns the live area for id, creating it on first use. New areas
// spawn their encounters immediately.
func (c *Campaign) Area(id string) (*area.Area, error) {
	return c.areas.GetOrInsertWith(id, func(id string) (*area.Area, error) {
		def, ok := c.Defs.Areas[id]
		if !ok {
			return nil, fmt.Errorf("%q: %w", id, ErrUnknownArea)
		}
		a := area.New(def)
		c.respawn(a)
		return a, nil
	})
}

// LoadedArea returns an area only if it has already been created.
func (c *Campaign) LoadedArea(id string) (*area.Area, bool) { return c.areas.Get(id) }

// Merchant returns the live merchant for id, creating it on first use. The
// stock is regenerated when due and prices follow the party's speech.
func (c *Campaign) Merchant(id string) (*merchant.Merchant, error) {
	m, err := c.merchants.GetOrInsertWith(id, func(id string) (*merchant.Merchant, error) {
		def, ok := c.Defs.Merchants[id]
		if !ok {
			return nil, fmt.Errorf("%q: %w", id, ErrUnknownMerchant)
		}
		return merchant.New(def), nil
	})
	if err != nil {
		return nil, err
	}
	m.RestockIfDue(c.ctx, c.Date.TotalRounds(), c.Date.RoundsPerHour())
	m.SetPartySpeech(c.PartySpeech(), c.ctx.Rules.SpeechExpFactor)
	return m, nil
}

// AreaTransition returns the live transition for id, creating it on first
// use.
func (c *Campaign) AreaTransition(id string) (*area.Transition, error) {
	return c.transitions.GetOrInsertWith(id, func(id string) (*area.Transition, error) {
		def, ok := c.Defs.Transitions[id]
		if !ok {
			return nil, fmt.Errorf("%q: %w", id, ErrUnknownTransition)
		}
		return area.NewTransition(def), nil
	})
}

// CurrentArea returns the area the party is in, nil on the world map.
func (c *Campaign) CurrentArea() *area.Area { return c.current }

// CurrentAreaID returns the current area ID or "".
func (c *Campaign) CurrentAreaID() string {
	if c.current == nil {
		return ""
	}
	return c.current.ID()
}

// OnWorldMap reports whether the party is travelling the world map.
func (c *Campaign) OnWorldMap() bool { return c.onWorldMap }

// WorldMapLocation returns the location the party last passed through.
func (c *Campaign) WorldMapLocation() string { return c.worldMapLocation }

// AvailableTransitions lists transitions usable from where the party is.
func (c *Campaign) AvailableTransitions() []*area.Transition {
	var out []*area.Transition
	for _, id := range c.Defs.TransitionIDs() {
		t, err := c.AreaTransition(id)
		if err != nil || !t.Activated {
			continue
		}
		if c.onWorldMap {
			if !t.FromWorldMap() {
				continue
			}
			if loc := t.Def.WorldMapLocation; loc != "" && !c.revealed[loc] {
				continue
			}
		} else if !t.Touches(c.CurrentAreaID()) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ActivateTransition makes a transition usable.
func (c *Campaign) ActivateTransition(id string) error {
	t, err := c.AreaTransition(id)
	if err != nil {
		return err
	}
	t.Activated = true
	return nil
}

// RevealLocation shows a world-map location.
func (c *Campaign) RevealLocation(id string) error {
	loc, ok := c.Defs.Locations[id]
	if !ok {
		return fmt.Errorf("%q: %w", id, ErrUnknownLocation)
	}
	if c.revealed[id] {
		return nil
	}
	c.revealed[id] = true
	c.ctx.Sayf("%s has been added to the world map.", nameOr(loc.Name, id))
	c.Events.Emit(events.LocationRevealed, map[string]any{"location": id})
	return nil
}

// IsRevealed reports whether a location is visible on the world map.
func (c *Campaign) IsRevealed(id string) bool { return c.revealed[id] }

// RevealedLocations returns revealed location IDs sorted.
func (c *Campaign) RevealedLocations() []string {
	out := make([]string, 0, len(c.revealed))
	for id := range c.revealed {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// LoadedAreas returns every area created so far in creation order.
func (c *Campaign) LoadedAreas() []*area.Area {
	var out []*area.Area
	c.areas.Each(func(_ string, a *area.Area) { out = append(out, a) })
	return out
}

// Merchants returns every merchant created so far in creation order.
func (c *Campaign) Merchants() []*merchant.Merchant {
	var out []*merchant.Merchant
	c.merchants.Each(func(_ string, m *merchant.Merchant) { out = append(out, m) })
	return out
}

// Transitions returns every transition created so far in creation order.
func (c *Campaign) Transitions() []*area.Transition {
	var out []*area.Transition
	c.transitions.Each(func(_ string, t *area.Transition) { out = append(out, t) })
	return out
}

// SetRelationship records a symmetric override between two factions.
func (c *Campaign) SetRelationship(faction1, faction2 string, rel faction.Relationship) error {
	cr := faction.CustomRelationship{Faction1: faction1, Faction2: faction2, Relationship: rel}
	c.Factions.Add(faction1)
	c.Factions.Add(faction2)
	if err := cr.Apply(c.Factions); err != nil {
		return err
	}
	for i, e := range c.custom {
		if (e.Faction1 == faction1 && e.Faction2 == faction2) || (e.Faction1 == faction2 && e.Faction2 == faction1) {
			c.custom[i] = cr
			return nil
		}
	}
	c.custom = append(c.custom, cr)
	return nil
}

// CustomRelationships returns the campaign's faction overrides.
func (c *Campaign) CustomRelationships() []faction.CustomRelationship {
	return append([]faction.CustomRelationship(nil), c.custom...)
}

// AddQuest starts a quest (or returns the existing one).
func (c *Campaign) AddQuest(title string, notify bool) *quest.Entry {
	e, created := c.Quests.Add(title, notify)
	if created {
		if e.ShowLogNotifications {
			c.ctx.Sayf("New quest: %s", title)
		}
		c.Events.Emit(events.QuestAdded, map[string]any{"title": title})
	}
	return e
}

// AddQuestNote appends a sub-entry to a quest.
func (c *Campaign) AddQuestNote(title string, note quest.SubEntry) error {
	e, ok := c.Quests.Get(title)
	if !ok {
		return fmt.Errorf("unknown quest %q", title)
	}
	e.AddSubEntry(note)
	if e.ShowLogNotifications {
		c.ctx.Sayf("Quest updated: %s", title)
	}
	return nil
}

// CompleteQuest moves a quest to the completed list.
func (c *Campaign) CompleteQuest(title string) error {
	e, ok := c.Quests.Get(title)
	if !ok {
		return fmt.Errorf("unknown quest %q", title)
	}
	was := e.Completed
	if err := c.Quests.Complete(title); err != nil {
		return err
	}
	if !was {
		if e.ShowLogNotifications {
			c.ctx.Sayf("Quest completed: %s", title)
		}
		c.Events.Emit(events.QuestCompleted, map[string]any{"title": title})
	}
	return nil
}

// Rest advances the date by whole hours.
func (c *Campaign) Rest(hours int) error {
	if hours <= 0 {
		return fmt.Errorf("rest for %d hours: must be positive", hours)
	}
	if c.ctx.InCombat {
		return errors.New("cannot rest during combat")
	}
	c.Date.IncrementHours(hours)
	c.ctx.Sayf("The party rests for %s.", date.FormatDuration(date.Components{Hours: int64(hours)}))
	return nil
}

// onDateChanged respawns due encounters in every loaded area.
func (c *Campaign) onDateChanged(round int64) {
	c.areas.Each(func(_ string, a *area.Area) { c.respawn(a) })
	c.Events.Emit(events.DateChanged, map[string]any{"round": round})
}

func (c *Campaign) respawn(a *area.Area) {
	n, errs := a.RespawnDue(c.Date.TotalRounds(), c.Date.RoundsPerHour(), c.ctx.Rules.EncounterRespawnHours,
		c.spawnCreature, c.ctx.Rules.PlacementSearchRadius)
	for _, err := range errs {
		c.ctx.Errorf("area %s: %v", a.ID(), err)
	}
	if n > 0 {
		c.Events.Emit(events.EncounterSpawned, map[string]any{"area": a.ID(), "count": n})
	}
}

func (c *Campaign) spawnCreature(defID, instanceID string) (*creature.Creature, error) {
	def, ok := c.Defs.Creatures[defID]
	if !ok {
		return nil, fmt.Errorf("unknown creature %q", defID)
	}
	return creature.Spawn(instanceID, def, c.Defs.Roles, c.Templates()), nil
}

// runHook runs an area hook. Script failures are content errors: they are
// logged and the caller carries on.
func (c *Campaign) runHook(a *area.Area, kind, source string) {
	if source == "" {
		return
	}
	name := a.ID() + ":" + kind
	if err := c.Scripts.Run(context.Background(), scriptWorld{c}, name, a.ID(), source); err != nil {
		c.ctx.Errorf("%v", err)
	}
}

func nameOr(name, id string) string {
	if name != "" {
		return name
	}
	return id
}
