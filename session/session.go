// Package session holds the front-end side of a play session: save slots,
// debug state dumps and trace formatting shared by the plain CLI and the
// TUI. Game commands go straight to the engine.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nathoo/campaigncore/engine"
	"github.com/nathoo/campaigncore/engine/date"
	"github.com/nathoo/campaigncore/storage"
	"github.com/nathoo/campaigncore/types"
)

// DefaultSlot is used when /save or /load is given no name.
const DefaultSlot = "quicksave"

// storeTimeout bounds each storage call.
const storeTimeout = 5 * time.Second

// Session couples an engine with a save store.
type Session struct {
	Engine *engine.Engine
	Store  storage.Store
	Trace  bool
	// Resume names a slot to load right after the campaign starts.
	Resume string
}

// New creates a session. A nil store disables saving.
func New(eng *engine.Engine, store storage.Store) *Session {
	return &Session{Engine: eng, Store: store}
}

// Intro names the campaign and starts it, then loads Resume if set.
func (s *Session) Intro() []string {
	c := s.Engine.Campaign
	lines := []string{c.Name, ""}
	lines = append(lines, s.Engine.Start().Output...)
	if s.Resume != "" {
		lines = append(lines, "")
		lines = append(lines, s.Load(s.Resume)...)
	}
	return lines
}

// HelpLines describes the meta commands.
var HelpLines = []string{
	"System:",
	"  /save [name]   Save the campaign (default: quicksave)",
	"  /load [name]   Load a save (default: quicksave)",
	"  /saves         List saves for this campaign",
	"  /state         Dump the campaign state",
	"  /trace         Toggle event and log trace output",
	"  /help          Show this help",
	"  /quit          Exit",
}

// Meta runs a meta command ("/save", ...). It returns the lines to show and
// whether the session should end.
func (s *Session) Meta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil, false
	}
	cmd := strings.ToLower(parts[0])
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true
	case "/save":
		return s.Save(arg), false
	case "/load":
		return s.Load(arg), false
	case "/saves":
		return s.Saves(), false
	case "/state":
		return s.State(), false
	case "/help":
		lines := append([]string(nil), HelpLines...)
		lines = append(lines, "", "Game commands:")
		return append(lines, engine.HelpLines...), false
	case "/trace":
		s.Trace = !s.Trace
		if s.Trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false
	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

// Step runs one game command, appending trace lines when tracing.
func (s *Session) Step(input string) types.Result {
	r := s.Engine.Step(input)
	if s.Trace {
		r.Output = append(r.Output, TraceLines(r)...)
	}
	return r
}

// Save writes the campaign to a slot.
func (s *Session) Save(name string) []string {
	if s.Store == nil {
		return []string{"Saving is disabled."}
	}
	if name == "" {
		name = DefaultSlot
	}
	data, err := s.Engine.Save()
	if err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	c := s.Engine.Campaign
	slot := storage.Slot{Name: name, CampaignID: c.ID, Round: c.Date.TotalRounds()}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := s.Store.Put(ctx, slot, data); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	return []string{fmt.Sprintf("Campaign saved to %s.", name)}
}

// Load restores the campaign from a slot and describes where the party is.
func (s *Session) Load(name string) []string {
	if s.Store == nil {
		return []string{"Saving is disabled."}
	}
	if name == "" {
		name = DefaultSlot
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	slot, data, err := s.Store.Get(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return []string{fmt.Sprintf("No save named %s.", name)}
	}
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	c := s.Engine.Campaign
	if slot.CampaignID != c.ID {
		return []string{fmt.Sprintf("Save %s belongs to campaign %s, not %s.", name, slot.CampaignID, c.ID)}
	}
	if err := s.Engine.Load(data); err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}

	out := []string{fmt.Sprintf("Campaign loaded from %s (%s).", name, c.Date)}
	return append(out, s.Engine.Step("look").Output...)
}

// Saves lists this campaign's slots, newest first.
func (s *Session) Saves() []string {
	if s.Store == nil {
		return []string{"Saving is disabled."}
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	c := s.Engine.Campaign
	slots, err := s.Store.List(ctx, c.ID)
	if err != nil {
		return []string{fmt.Sprintf("Listing saves failed: %v", err)}
	}
	if len(slots) == 0 {
		return []string{"No saves yet."}
	}
	out := make([]string, 0, len(slots))
	for _, sl := range slots {
		d := date.New(c.Date.Radices())
		d.SetTotalRounds(sl.Round)
		out = append(out, fmt.Sprintf("  %-12s %s, saved %s", sl.Name, d, sl.SavedAt.Local().Format("2006-01-02 15:04")))
	}
	return out
}

// State dumps the campaign for debugging.
func (s *Session) State() []string {
	e := s.Engine
	c := e.Campaign
	where := c.CurrentAreaID()
	if c.OnWorldMap() {
		where = "world map"
		if loc := c.WorldMapLocation(); loc != "" {
			where += " at " + loc
		}
	}
	out := []string{
		fmt.Sprintf("Campaign: %s (%s)", c.ID, c.Difficulty),
		fmt.Sprintf("Turn: %d", e.TurnCount),
		fmt.Sprintf("Date: %s", c.Date),
		fmt.Sprintf("Location: %s", where),
		e.Sprintf("Currency: %s (%d units)", c.Currency.ShortString(), c.Currency.Value),
		fmt.Sprintf("Stash: %d stacks", c.Stash.Len()),
	}
	for i, m := range c.Party() {
		marker := ""
		if i == c.PrimaryIndex() {
			marker = " (primary)"
		}
		out = append(out, fmt.Sprintf("Member: %s%s in %s at %d,%d", m.ID, marker, m.AreaID, m.Position.X, m.Position.Y))
	}
	if active := c.Quests.Active(); len(active) > 0 {
		out = append(out, fmt.Sprintf("Active quests: %d", len(active)))
	}
	if err := e.Fatal(); err != nil {
		out = append(out, fmt.Sprintf("Fatal: %v", err))
	}
	return out
}

// TraceLines formats the events and diagnostics of a step.
func TraceLines(r types.Result) []string {
	var lines []string
	if len(r.Events) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Events: %d", len(r.Events)))
		for _, ev := range r.Events {
			lines = append(lines, fmt.Sprintf("[trace]   %s", ev))
		}
	}
	for _, l := range r.Log {
		lines = append(lines, "[trace] log: "+l)
	}
	return lines
}
