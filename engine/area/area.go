// Package area holds the runtime state of areas (spatial index, tiles,
// exploration and encounters) and the definitions of the transitions and
// world-map locations that connect them.
package area

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nathoo/campaigncore/engine/creature"
	"github.com/nathoo/campaigncore/types"
)

var (
	ErrOutOfBounds = errors.New("point outside area")
	ErrBlocked     = errors.New("tile is blocked")
	ErrOccupied    = errors.New("tile is occupied")
)

// Hooks names the Lua functions run when an area is entered and left.
type Hooks struct {
	OnLoad string
	OnExit string
}

// Def is an area definition.
type Def struct {
	ID         string
	Name       string
	Width      int
	Height     int
	Blocked    []types.Point
	Hooks      Hooks
	Encounters []EncounterDef
}

// Area is a live area.
type Area struct {
	Def *Def

	blocked   map[types.Point]bool
	occupants map[types.Point]string
	positions map[string]types.Point
	explored  map[types.Point]bool

	// Creatures holds non-party creatures living in the area.
	Creatures  map[string]*creature.Creature
	Encounters []*Encounter

	tilesLoaded bool
}

// New creates an area with its tiles loaded and encounters unspawned.
func New(def *Def) *Area {
	a := &Area{
		Def:         def,
		blocked:     map[types.Point]bool{},
		occupants:   map[types.Point]string{},
		positions:   map[string]types.Point{},
		explored:    map[types.Point]bool{},
		Creatures:   map[string]*creature.Creature{},
		tilesLoaded: true,
	}
	for _, p := range def.Blocked {
		a.blocked[p] = true
	}
	for i := range def.Encounters {
		a.Encounters = append(a.Encounters, &Encounter{Def: &def.Encounters[i]})
	}
	return a
}

// ID returns the definition ID.
func (a *Area) ID() string { return a.Def.ID }

// InBounds reports whether p lies inside the area.
func (a *Area) InBounds(p types.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < a.Def.Width && p.Y < a.Def.Height
}

// IsBlocked reports whether p is impassable.
func (a *Area) IsBlocked(p types.Point) bool { return a.blocked[p] }

// IsEmpty reports whether p is in bounds, passable and unoccupied.
func (a *Area) IsEmpty(p types.Point) bool {
	if !a.InBounds(p) || a.blocked[p] {
		return false
	}
	_, taken := a.occupants[p]
	return !taken
}

// OccupantAt returns the ID of the creature standing on p.
func (a *Area) OccupantAt(p types.Point) (string, bool) {
	id, ok := a.occupants[p]
	return id, ok
}

// PositionOf returns where a creature stands.
func (a *Area) PositionOf(id string) (types.Point, bool) {
	p, ok := a.positions[id]
	return p, ok
}

// Place puts a creature on an empty tile, moving it if it was already
// placed.
func (a *Area) Place(id string, p types.Point) error {
	switch {
	case !a.InBounds(p):
		return fmt.Errorf("place %s at %v: %w", id, p, ErrOutOfBounds)
	case a.blocked[p]:
		return fmt.Errorf("place %s at %v: %w", id, p, ErrBlocked)
	}
	if other, ok := a.occupants[p]; ok && other != id {
		return fmt.Errorf("place %s at %v: %w by %s", id, p, ErrOccupied, other)
	}
	a.Remove(id)
	a.occupants[p] = id
	a.positions[id] = p
	return nil
}

// Remove takes a creature out of the spatial index.
func (a *Area) Remove(id string) bool {
	p, ok := a.positions[id]
	if !ok {
		return false
	}
	delete(a.positions, id)
	delete(a.occupants, p)
	return true
}

// Occupants returns the IDs of every placed creature, sorted.
func (a *Area) Occupants() []string {
	ids := make([]string, 0, len(a.positions))
	for id := range a.positions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FindNearestEmptyTile searches rings of growing radius around from and
// returns the closest empty tile, preferring smaller straight-line
// distance and then row-major order within a ring.
func (a *Area) FindNearestEmptyTile(from types.Point, maxRadius int) (types.Point, bool) {
	for r := 0; r <= maxRadius; r++ {
		best, bestDist, found := types.Point{}, 0, false
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if max(abs(dx), abs(dy)) != r {
					continue
				}
				p := from.Add(dx, dy)
				if !a.IsEmpty(p) {
					continue
				}
				d := dx*dx + dy*dy
				if !found || d < bestDist {
					best, bestDist, found = p, d, true
				}
			}
		}
		if found {
			return best, true
		}
	}
	return types.Point{}, false
}

// LoadTiles marks the tile data resident.
func (a *Area) LoadTiles() { a.tilesLoaded = true }

// FreeTiles releases the tile data of an area the party has left.
func (a *Area) FreeTiles() { a.tilesLoaded = false }

// TilesLoaded reports whether tile data is resident.
func (a *Area) TilesLoaded() bool { return a.tilesLoaded }

// Explore marks every in-bounds tile within radius of center as explored
// and returns how many were newly explored.
func (a *Area) Explore(center types.Point, radius int) int {
	n := 0
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			p := center.Add(dx, dy)
			if !a.InBounds(p) || a.explored[p] {
				continue
			}
			a.explored[p] = true
			n++
		}
	}
	return n
}

// IsExplored reports whether p has been seen.
func (a *Area) IsExplored(p types.Point) bool { return a.explored[p] }

// SetExplored marks p explored. Used when restoring a save.
func (a *Area) SetExplored(p types.Point) {
	if a.InBounds(p) {
		a.explored[p] = true
	}
}

// ExploredPoints returns every explored tile in row-major order.
func (a *Area) ExploredPoints() []types.Point {
	out := make([]types.Point, 0, len(a.explored))
	for p := range a.explored {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// ExploredCount returns how many tiles have been seen.
func (a *Area) ExploredCount() int { return len(a.explored) }

// Map renders the area as text rows. Blocked tiles are '#', unexplored
// tiles ' ', explored empty tiles '.', and occupied tiles use the rune
// glyph returns for the occupant.
func (a *Area) Map(glyph func(id string) rune) []string {
	rows := make([]string, 0, a.Def.Height)
	for y := 0; y < a.Def.Height; y++ {
		row := make([]rune, a.Def.Width)
		for x := 0; x < a.Def.Width; x++ {
			p := types.Point{X: x, Y: y}
			switch id, ok := a.occupants[p]; {
			case ok:
				row[x] = glyph(id)
			case !a.explored[p]:
				row[x] = ' '
			case a.blocked[p]:
				row[x] = '#'
			default:
				row[x] = '.'
			}
		}
		rows = append(rows, string(row))
	}
	return rows
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
