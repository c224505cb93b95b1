package area

import (
	"fmt"

	"github.com/nathoo/campaigncore/engine/creature"
	"github.com/nathoo/campaigncore/types"
)

// EncounterDef places a group of creatures in an area.
type EncounterDef struct {
	ID        string
	Creatures []string
	Points    []types.Point
	// RespawnHours of 0 uses the ruleset default; negative never respawns.
	RespawnHours int
}

// Encounter is the runtime state of an encounter.
type Encounter struct {
	Def            *EncounterDef
	Spawned        bool
	LastSpawnRound int64
	Members        []string
}

// Due reports whether the encounter should (re)spawn at round now.
func (e *Encounter) Due(now, roundsPerHour int64, defaultHours int) bool {
	if !e.Spawned {
		return true
	}
	hours := e.Def.RespawnHours
	if hours == 0 {
		hours = defaultHours
	}
	if hours <= 0 {
		return false
	}
	return now-e.LastSpawnRound >= int64(hours)*roundsPerHour
}

// SpawnFunc builds the creature for a definition ID under an instance ID.
type SpawnFunc func(defID, instanceID string) (*creature.Creature, error)

// SpawnEncounter replaces the encounter's members with fresh creatures.
// Members go to the encounter's points in order and then to the nearest
// empty tile around the first point. A member that cannot be placed is
// skipped and reported in the returned error; the others still spawn.
func (a *Area) SpawnEncounter(e *Encounter, now int64, spawn SpawnFunc, searchRadius int) error {
	for _, id := range e.Members {
		a.Remove(id)
		delete(a.Creatures, id)
	}
	e.Members = nil
	e.Spawned = true
	e.LastSpawnRound = now

	var anchor types.Point
	if len(e.Def.Points) > 0 {
		anchor = e.Def.Points[0]
	}
	var failed []string
	for i, defID := range e.Def.Creatures {
		instanceID := fmt.Sprintf("%s/%s#%d", a.Def.ID, e.Def.ID, i+1)
		c, err := spawn(defID, instanceID)
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", defID, err))
			continue
		}
		p, ok := types.Point{}, false
		if i < len(e.Def.Points) && a.IsEmpty(e.Def.Points[i]) {
			p, ok = e.Def.Points[i], true
		} else {
			p, ok = a.FindNearestEmptyTile(anchor, searchRadius)
		}
		if !ok {
			failed = append(failed, fmt.Sprintf("%s: no empty tile", instanceID))
			continue
		}
		if err := a.Place(c.ID, p); err != nil {
			failed = append(failed, err.Error())
			continue
		}
		c.AreaID = a.Def.ID
		c.Position = p
		c.Placed = true
		a.Creatures[c.ID] = c
		e.Members = append(e.Members, c.ID)
	}
	if len(failed) > 0 {
		return fmt.Errorf("encounter %s: %v", e.Def.ID, failed)
	}
	return nil
}

// RespawnDue spawns every encounter that is due and returns how many
// spawned. Errors are collected per encounter and do not stop the others.
func (a *Area) RespawnDue(now, roundsPerHour int64, defaultHours int, spawn SpawnFunc, searchRadius int) (int, []error) {
	n := 0
	var errs []error
	for _, e := range a.Encounters {
		if !e.Due(now, roundsPerHour, defaultHours) {
			continue
		}
		if err := a.SpawnEncounter(e, now, spawn, searchRadius); err != nil {
			errs = append(errs, err)
		}
		n++
	}
	return n, errs
}

// Encounter looks up an encounter by ID.
func (a *Area) Encounter(id string) (*Encounter, bool) {
	for _, e := range a.Encounters {
		if e.Def.ID == id {
			return e, true
		}
	}
	return nil, false
}
