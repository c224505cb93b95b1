package area

import (
	"errors"

	"github.com/nathoo/campaigncore/types"
)

// ErrNoEndpoint is returned when a transition cannot be taken from where
// the party stands. It indicates broken content, not a player mistake.
var ErrNoEndpoint = errors.New("no matching transition endpoint")

// Endpoint is one side of a transition: either the world map or a set of
// arrival points in an area.
type Endpoint struct {
	AreaID   string
	WorldMap bool
	Points   []types.Point
}

// TransitionDef links two endpoints.
type TransitionDef struct {
	ID   string
	Name string
	From Endpoint
	To   Endpoint
	// TwoWay transitions may also be taken from To back to From.
	TwoWay bool
	// WorldMapLocation is revealed when the transition is used.
	WorldMapLocation string
	// Activated transitions are usable from the start.
	Activated bool
}

// Transition is the runtime state of a transition.
type Transition struct {
	Def       *TransitionDef
	Activated bool
}

// NewTransition creates runtime state from a definition.
func NewTransition(def *TransitionDef) *Transition {
	return &Transition{Def: def, Activated: def.Activated}
}

// ID returns the definition ID.
func (t *Transition) ID() string { return t.Def.ID }

// Destination resolves where a party in currentArea (or on the world map)
// arrives when taking the transition.
func (t *Transition) Destination(currentArea string, fromWorldMap bool) (Endpoint, error) {
	d := t.Def
	switch {
	case fromWorldMap && d.From.WorldMap:
		return d.To, nil
	case fromWorldMap && d.To.WorldMap && d.TwoWay:
		return d.From, nil
	case fromWorldMap:
		return Endpoint{}, ErrNoEndpoint
	case !d.From.WorldMap && d.From.AreaID == currentArea:
		return d.To, nil
	case d.TwoWay && !d.To.WorldMap && d.To.AreaID == currentArea:
		return d.From, nil
	}
	return Endpoint{}, ErrNoEndpoint
}

// Touches reports whether the transition has an endpoint in areaID.
func (t *Transition) Touches(areaID string) bool {
	d := t.Def
	return (!d.From.WorldMap && d.From.AreaID == areaID) ||
		(d.TwoWay && !d.To.WorldMap && d.To.AreaID == areaID)
}

// FromWorldMap reports whether the transition can be taken from the world
// map.
func (t *Transition) FromWorldMap() bool {
	return t.Def.From.WorldMap || (t.Def.TwoWay && t.Def.To.WorldMap)
}

// Location is a place on the world map.
type Location struct {
	ID       string
	Name     string
	Position types.Point
	// Transition is taken when travelling to this location.
	Transition string
	// TravelHours advances the date when travelling here.
	TravelHours int
	// Revealed locations are visible from the start.
	Revealed bool
}
