package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/campaigncore/engine/area"
	"github.com/nathoo/campaigncore/engine/campaign"
	"github.com/nathoo/campaigncore/engine/item"
	"github.com/nathoo/campaigncore/engine/parser"
	"github.com/nathoo/campaigncore/engine/prereq"
	"github.com/nathoo/campaigncore/engine/script"
	"github.com/nathoo/campaigncore/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// hint returns a "did you mean" suffix for an unknown reference.
func hint(word string, ids []string) string {
	lower := make([]string, len(ids))
	back := make(map[string]string, len(ids))
	for i, id := range ids {
		lower[i] = strings.ToLower(id)
		back[lower[i]] = id
	}
	if s := parser.Suggest(word, lower); s != "" {
		return fmt.Sprintf(" (did you mean %q?)", back[s])
	}
	return ""
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// validate checks the compiled defs for referential integrity and
// consistency.
func validate(defs *campaign.Defs, ve *ValidationError) {
	v := &validator{defs: defs, ve: ve}
	for _, f := range defs.Factions {
		v.factions = append(v.factions, f.Name)
	}
	sort.Strings(v.factions)

	v.manifest()
	v.factionRefs()
	v.roles()
	v.recipes()
	v.merchants()
	v.areas()
	v.transitions()
	v.locations()
	v.creatures()
}

type validator struct {
	defs     *campaign.Defs
	ve       *ValidationError
	factions []string
}

func (v *validator) hasFaction(name string) bool {
	i := sort.SearchStrings(v.factions, name)
	return i < len(v.factions) && v.factions[i] == name
}

func (v *validator) item(owner, id string) {
	if _, ok := v.defs.Items.Get(id); !ok {
		v.ve.errorf("%s references unknown item %q%s", owner, id, hint(id, v.defs.Items.IDs()))
	}
}

func (v *validator) skill(owner, id string) {
	if _, ok := v.defs.Skills[id]; !ok {
		v.ve.errorf("%s references unknown skill %q%s", owner, id, hint(id, keys(v.defs.Skills)))
	}
}

func (v *validator) role(owner, id string) {
	if _, ok := v.defs.Roles[id]; !ok {
		v.ve.errorf("%s references unknown role %q%s", owner, id, hint(id, keys(v.defs.Roles)))
	}
}

func (v *validator) area(owner, id string) {
	if _, ok := v.defs.Areas[id]; !ok {
		v.ve.errorf("%s references unknown area %q%s", owner, id, hint(id, keys(v.defs.Areas)))
	}
}

func (v *validator) faction(owner, name string) {
	if name != "" && !v.hasFaction(name) {
		v.ve.warnf("%s references undeclared faction %q%s", owner, name, hint(name, v.factions))
	}
}

func (v *validator) manifest() {
	m := v.defs.Manifest
	if m.ID == "" {
		v.ve.errorf("Campaign.id is required")
	}
	if m.Name == "" {
		v.ve.warnf("Campaign.name is empty")
	}
	if len(m.StartingCharacters) == 0 {
		v.ve.errorf("Campaign.starting_characters is empty")
	}
	for _, id := range m.StartingCharacters {
		if _, ok := v.defs.Creatures[id]; !ok {
			v.ve.errorf("Campaign starting character %q is not a creature%s", id, hint(id, keys(v.defs.Creatures)))
		}
	}
	lo, hi := m.PartyBounds()
	if n := len(m.StartingCharacters); n > 0 && (n < lo || n > hi) {
		v.ve.errorf("Campaign has %d starting characters, party size must be %d-%d", n, lo, hi)
	}
	if m.MaxStartingLevel > 0 && m.MinStartingLevel > m.MaxStartingLevel {
		v.ve.errorf("Campaign.starting_level min %d exceeds max %d", m.MinStartingLevel, m.MaxStartingLevel)
	}
	if m.StartingArea == "" {
		v.ve.warnf("Campaign has no starting_area, the party starts on the world map")
	} else if a, ok := v.defs.Areas[m.StartingArea]; !ok {
		v.area("Campaign", m.StartingArea)
	} else {
		v.points("Campaign starting_points", a, m.StartingPoints)
	}
	for _, q := range keys(m.Qualities) {
		if m.Qualities[q] <= 0 {
			v.ve.errorf("Campaign quality %q has non-positive value %d%%", q, m.Qualities[q])
		}
	}
	for _, r := range m.Relationships {
		v.faction("Campaign relationship", r.Faction1)
		v.faction("Campaign relationship", r.Faction2)
	}
}

func (v *validator) factionRefs() {
	for _, f := range v.defs.Factions {
		for _, other := range keys(f.Relationships) {
			v.faction(fmt.Sprintf("Faction %q", f.Name), other)
		}
	}
}

func (v *validator) prereqs(owner string, l prereq.List) {
	for _, s := range l.Skills {
		v.skill(owner, s.SkillID)
	}
	for _, r := range l.Roles {
		v.role(owner, r.RoleID)
	}
}

func (v *validator) roles() {
	for _, id := range keys(v.defs.Roles) {
		r := v.defs.Roles[id]
		owner := fmt.Sprintf("Role %q", id)
		v.prereqs(owner+" prereqs", r.Prereqs)
		v.prereqs(owner+" restrictions", r.Restrictions)
	}
}

var kindNames = []string{
	item.KindName(item.Weapon{}), item.KindName(item.Armor{}),
	item.KindName(item.Ammo{}), item.KindName(item.Misc{}),
}

func (v *validator) recipes() {
	for _, id := range keys(v.defs.Recipes) {
		r := v.defs.Recipes[id]
		owner := fmt.Sprintf("Recipe %q", id)
		if r.SkillID != "" {
			v.skill(owner, r.SkillID)
		}
		for _, in := range r.Ingredients {
			v.item(owner, in.TemplateID)
		}
		if r.Result != "" {
			v.item(owner, r.Result)
		}
		for _, k := range r.AllowedKinds {
			found := false
			for _, n := range kindNames {
				found = found || n == strings.ToLower(k)
			}
			if !found {
				v.ve.errorf("%s allows unknown kind %q%s", owner, k, hint(k, kindNames))
			}
		}
		for _, lm := range r.LevelModifiers {
			if _, ok := v.defs.Manifest.Qualities[lm.Quality]; !ok && lm.Quality != "" {
				v.ve.warnf("%s level modifier uses undeclared quality %q", owner, lm.Quality)
			}
		}
	}
}

func (v *validator) merchants() {
	for _, id := range keys(v.defs.Merchants) {
		m := v.defs.Merchants[id]
		owner := fmt.Sprintf("Merchant %q", id)
		for _, e := range m.BaseItems {
			v.item(owner, e.TemplateID)
			if e.Quality != "" {
				if _, ok := v.defs.Manifest.Qualities[e.Quality]; !ok {
					v.ve.warnf("%s stocks undeclared quality %q", owner, e.Quality)
				}
			}
		}
	}
}

func (v *validator) points(owner string, a *area.Def, pts []types.Point) {
	for _, p := range pts {
		if p.X < 0 || p.Y < 0 || p.X >= a.Width || p.Y >= a.Height {
			v.ve.warnf("%s point (%d,%d) is outside area %q (%dx%d)", owner, p.X, p.Y, a.ID, a.Width, a.Height)
		}
	}
}

func (v *validator) areas() {
	for _, id := range keys(v.defs.Areas) {
		a := v.defs.Areas[id]
		owner := fmt.Sprintf("Area %q", id)
		v.points(owner+" blocked", a, a.Blocked)
		for _, e := range a.Encounters {
			eo := fmt.Sprintf("%s encounter %q", owner, e.ID)
			for _, c := range e.Creatures {
				if _, ok := v.defs.Creatures[c]; !ok {
					v.ve.errorf("%s references unknown creature %q%s", eo, c, hint(c, keys(v.defs.Creatures)))
				}
			}
			v.points(eo, a, e.Points)
		}
		if err := script.Check(id+":on_load", a.Hooks.OnLoad); err != nil {
			v.ve.errorf("%s on_load hook: %v", owner, err)
		}
		if err := script.Check(id+":on_exit", a.Hooks.OnExit); err != nil {
			v.ve.errorf("%s on_exit hook: %v", owner, err)
		}
	}
}

func (v *validator) endpoint(owner string, e area.Endpoint) {
	if e.WorldMap {
		return
	}
	a, ok := v.defs.Areas[e.AreaID]
	if !ok {
		v.area(owner, e.AreaID)
		return
	}
	v.points(owner, a, e.Points)
}

func (v *validator) transitions() {
	for _, id := range keys(v.defs.Transitions) {
		t := v.defs.Transitions[id]
		owner := fmt.Sprintf("Transition %q", id)
		if t.From.WorldMap && t.To.WorldMap {
			v.ve.errorf("%s has the world map on both ends", owner)
		}
		v.endpoint(owner+" from", t.From)
		v.endpoint(owner+" to", t.To)
		if t.WorldMapLocation != "" {
			if _, ok := v.defs.Locations[t.WorldMapLocation]; !ok {
				v.ve.errorf("%s references unknown location %q%s", owner, t.WorldMapLocation, hint(t.WorldMapLocation, keys(v.defs.Locations)))
			}
		}
	}
}

func (v *validator) locations() {
	for _, id := range keys(v.defs.Locations) {
		l := v.defs.Locations[id]
		owner := fmt.Sprintf("Location %q", id)
		if l.Transition == "" {
			v.ve.warnf("%s has no transition and cannot be travelled to", owner)
			continue
		}
		t, ok := v.defs.Transitions[l.Transition]
		if !ok {
			v.ve.errorf("%s references unknown transition %q%s", owner, l.Transition, hint(l.Transition, keys(v.defs.Transitions)))
			continue
		}
		if !t.From.WorldMap && !(t.TwoWay && t.To.WorldMap) {
			v.ve.errorf("%s uses transition %q, which cannot be taken from the world map", owner, l.Transition)
		}
		if l.TravelHours < 0 {
			v.ve.errorf("%s has negative travel_hours %d", owner, l.TravelHours)
		}
	}
}

func (v *validator) creatures() {
	for _, id := range keys(v.defs.Creatures) {
		c := v.defs.Creatures[id]
		owner := fmt.Sprintf("Creature %q", id)
		v.faction(owner, c.Faction)
		for _, s := range keys(c.Skills) {
			v.skill(owner, s)
		}
		for _, r := range keys(c.Roles) {
			v.role(owner, r)
		}
		for _, e := range c.Inventory {
			v.item(owner, e.TemplateID)
		}
		slots := make([]string, 0, len(c.Equipped))
		for s := range c.Equipped {
			slots = append(slots, string(s))
		}
		sort.Strings(slots)
		for _, s := range slots {
			tid := c.Equipped[item.Slot(s)]
			t, ok := v.defs.Items.Get(tid)
			if !ok {
				v.item(owner, tid)
				continue
			}
			switch {
			case !t.Equippable():
				v.ve.errorf("%s equips %q, which has no slot", owner, tid)
			case t.Slot != item.Slot(s):
				v.ve.warnf("%s equips %q in slot %s, but it fits %s", owner, tid, s, t.Slot)
			}
		}
	}
}
