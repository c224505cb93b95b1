// Package engine provides the Step() orchestrator that wires together
// parsing, the campaign aggregate and the message transcript into a single
// player command.
package engine

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/nathoo/campaigncore/engine/campaign"
	"github.com/nathoo/campaigncore/engine/events"
	"github.com/nathoo/campaigncore/engine/parser"
	"github.com/nathoo/campaigncore/engine/save"
	"github.com/nathoo/campaigncore/engine/sim"
	"github.com/nathoo/campaigncore/types"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Engine owns a campaign for the lifetime of a play session.
type Engine struct {
	Campaign   *campaign.Campaign
	TurnCount  int
	CommandLog []string

	printer *message.Printer
	logs    bytes.Buffer
	events  []string
	fatal   error
}

// New creates an engine around a campaign. The campaign logger is teed so
// each step can report the diagnostics it produced.
func New(c *campaign.Campaign) *Engine {
	e := &Engine{
		Campaign: c,
		printer:  message.NewPrinter(language.English),
	}
	l := c.Ctx().Log
	l.SetOutput(io.MultiWriter(l.Writer(), &e.logs))
	c.Events.Subscribe("*", func(ev events.Event) { e.events = append(e.events, ev.Type) })
	return e
}

// Ctx returns the campaign's simulation context.
func (e *Engine) Ctx() *sim.Context { return e.Campaign.Ctx() }

// Fatal returns the invariant violation that stopped the campaign, if any.
func (e *Engine) Fatal() error { return e.fatal }

// Start populates the party and enters the starting area.
func (e *Engine) Start() types.Result {
	e.begin()
	if err := e.Campaign.Populate(); err != nil {
		e.fatal = err
		e.say("The campaign could not start: %v", err)
	}
	return e.end()
}

// Step processes one player command and returns the result.
func (e *Engine) Step(input string) types.Result {
	e.begin()

	// Fatal blocks all gameplay commands.
	if e.fatal != nil {
		e.say("The campaign cannot continue (%v). Use /load to restore a save or /quit to exit.", e.fatal)
		return e.end()
	}

	intent := parser.Parse(input)
	e.CommandLog = append(e.CommandLog, input)

	if intent.Verb == "" {
		e.say("What do you want to do?")
		return e.end()
	}

	h, ok := handlers[intent.Verb]
	if !ok {
		if s := parser.Suggest(intent.Verb, parser.Verbs); s != "" {
			e.say("I don't understand %q. Did you mean %q?", intent.Verb, s)
		} else {
			e.say("I don't understand %q. Type help for a list of commands.", intent.Verb)
		}
		return e.end()
	}

	if err := h(e, intent); err != nil {
		if isFatal(err) {
			e.fatal = err
			e.Ctx().Errorf("%v", err)
		}
		e.say("%s", sentence(err))
	}
	e.TurnCount++
	return e.end()
}

// Save serializes the campaign.
func (e *Engine) Save() ([]byte, error) {
	return save.Save(e.Campaign)
}

// Load replaces the campaign state with a serialized save. A successful
// load clears any fatal condition.
func (e *Engine) Load(data []byte) error {
	sd, err := save.Load(data)
	if err != nil {
		return err
	}
	if err := save.Apply(e.Campaign, sd); err != nil {
		return err
	}
	e.fatal = nil
	e.Ctx().Drain()
	return nil
}

// Sprintf formats with English number grouping.
func (e *Engine) Sprintf(format string, args ...any) string {
	return e.printer.Sprintf(format, args...)
}

func (e *Engine) say(format string, args ...any) {
	e.Ctx().Sayf("%s", e.Sprintf(format, args...))
}

func (e *Engine) begin() {
	e.logs.Reset()
	e.events = nil
}

func (e *Engine) end() types.Result {
	r := types.Result{
		Output: e.Ctx().Drain(),
		Events: e.events,
		Fatal:  e.fatal,
	}
	for _, line := range strings.Split(strings.TrimRight(e.logs.String(), "\n"), "\n") {
		if line != "" {
			r.Log = append(r.Log, line)
		}
	}
	e.events = nil
	e.logs.Reset()
	return r
}

func isFatal(err error) bool {
	return errors.Is(err, campaign.ErrNoEndpoint) || errors.Is(err, campaign.ErrNoPlacement)
}

// sentence capitalises an error for the transcript.
func sentence(err error) string {
	s := err.Error()
	if s == "" {
		return s
	}
	s = strings.ToUpper(s[:1]) + s[1:]
	if !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "?") {
		s += "."
	}
	return s
}

// usage is returned by handlers given the wrong arguments.
type usage string

func (u usage) Error() string { return "usage: " + string(u) }
