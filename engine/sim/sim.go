// Package sim holds the simulation context threaded through every rules
// operation: the dice stream, ruleset constants, the diagnostic logger and
// the player-facing message transcript.
package sim

import (
	"fmt"
	"io"
	"log"

	"github.com/nathoo/campaigncore/engine/dice"
)

// Ruleset holds the tunable constants of the rules engine.
type Ruleset struct {
	// OutOfCombatAutoSuccess makes skill checks roll 100 outside combat.
	OutOfCombatAutoSuccess bool
	// SkillStatMultiplier scales (stat - 10) into a skill modifier bonus.
	SkillStatMultiplier int
	// SpeechExpFactor controls how quickly merchant prices converge with
	// party speech.
	SpeechExpFactor float64
	// SpeechSkill is the skill used when haggling with merchants.
	SpeechSkill string
	// EncounterRespawnHours is the default respawn interval for encounters
	// that do not set their own.
	EncounterRespawnHours int
	// SightRadius is how far around each party member tiles are explored.
	SightRadius int
	// PlacementSearchRadius bounds the nearest-empty-tile search.
	PlacementSearchRadius int
}

// DefaultRuleset returns the stock ruleset.
func DefaultRuleset() Ruleset {
	return Ruleset{
		OutOfCombatAutoSuccess: false,
		SkillStatMultiplier:    2,
		SpeechExpFactor:        50,
		SpeechSkill:            "speech",
		EncounterRespawnHours:  24,
		SightRadius:            4,
		PlacementSearchRadius:  10,
	}
}

// Context is the explicit replacement for global game state. One Context is
// owned by the engine for the lifetime of a campaign.
type Context struct {
	Dice     *dice.Dice
	Rules    Ruleset
	Log      *log.Logger
	InCombat bool

	transcript []string
}

// New creates a context around a dice stream. A nil logger discards output.
func New(d *dice.Dice, rules Ruleset, logger *log.Logger) *Context {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Context{
		Dice:  d,
		Rules: rules,
		Log:   logger,
	}
}

// Sayf appends a player-facing message to the transcript.
func (c *Context) Sayf(format string, args ...any) {
	c.transcript = append(c.transcript, fmt.Sprintf(format, args...))
}

// Warnf logs a recoverable content problem.
func (c *Context) Warnf(format string, args ...any) {
	c.Log.Printf("warning: "+format, args...)
}

// Errorf logs an error that the current operation survives.
func (c *Context) Errorf(format string, args ...any) {
	c.Log.Printf("error: "+format, args...)
}

// Drain returns and clears the accumulated transcript.
func (c *Context) Drain() []string {
	out := c.transcript
	c.transcript = nil
	return out
}

// Pending returns the transcript without clearing it.
func (c *Context) Pending() []string {
	return c.transcript
}
