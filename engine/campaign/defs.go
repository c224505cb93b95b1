package campaign

import (
	"sort"

	"github.com/nathoo/campaigncore/engine/area"
	"github.com/nathoo/campaigncore/engine/creature"
	"github.com/nathoo/campaigncore/engine/date"
	"github.com/nathoo/campaigncore/engine/faction"
	"github.com/nathoo/campaigncore/engine/item"
	"github.com/nathoo/campaigncore/engine/merchant"
	"github.com/nathoo/campaigncore/engine/recipe"
	"github.com/nathoo/campaigncore/engine/role"
	"github.com/nathoo/campaigncore/engine/skill"
	"github.com/nathoo/campaigncore/types"
)

// Manifest is the campaign-wide configuration.
type Manifest struct {
	ID                 string
	Name               string
	MinPartySize       int
	MaxPartySize       int
	MinStartingLevel   int
	MaxStartingLevel   int
	StartingCharacters []string
	StartingArea       string
	StartingPoints     []types.Point
	StartingMoney      string
	Difficulty         string
	Radices            date.Radices
	// Qualities maps item quality names to value percentages.
	Qualities     map[string]int
	Relationships []faction.CustomRelationship
}

// PartyBounds returns the party size limits with defaults applied.
func (m Manifest) PartyBounds() (lo, hi int) {
	lo, hi = m.MinPartySize, m.MaxPartySize
	if lo < 1 {
		lo = 1
	}
	if hi < lo {
		hi = max(lo, 6)
	}
	return lo, hi
}

// FactionDef declares a faction and its one-sided relationships.
type FactionDef struct {
	Name          string
	Relationships map[string]faction.Relationship
}

// Defs is the immutable rule content of a campaign.
type Defs struct {
	Manifest    Manifest
	Skills      map[string]*skill.Def
	Roles       map[string]*role.Def
	Items       *item.Registry
	Recipes     map[string]*recipe.Def
	Merchants   map[string]*merchant.Def
	Factions    []FactionDef
	Areas       map[string]*area.Def
	Transitions map[string]*area.TransitionDef
	Locations   map[string]*area.Location
	Creatures   map[string]*creature.Def
}

// NewDefs creates empty definitions.
func NewDefs() *Defs {
	return &Defs{
		Manifest:    Manifest{Radices: date.DefaultRadices()},
		Skills:      map[string]*skill.Def{},
		Roles:       map[string]*role.Def{},
		Items:       item.NewRegistry(),
		Recipes:     map[string]*recipe.Def{},
		Merchants:   map[string]*merchant.Def{},
		Areas:       map[string]*area.Def{},
		Transitions: map[string]*area.TransitionDef{},
		Locations:   map[string]*area.Location{},
		Creatures:   map[string]*creature.Def{},
	}
}

// LocationIDs returns world-map location IDs sorted.
func (d *Defs) LocationIDs() []string { return sortedKeys(d.Locations) }

// TransitionIDs returns transition IDs sorted.
func (d *Defs) TransitionIDs() []string { return sortedKeys(d.Transitions) }

// MerchantIDs returns merchant IDs sorted.
func (d *Defs) MerchantIDs() []string { return sortedKeys(d.Merchants) }

// RecipeIDs returns recipe IDs sorted.
func (d *Defs) RecipeIDs() []string { return sortedKeys(d.Recipes) }

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
