package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/campaigncore/engine"
	"github.com/nathoo/campaigncore/engine/area"
	"github.com/nathoo/campaigncore/engine/campaign"
	"github.com/nathoo/campaigncore/engine/creature"
	"github.com/nathoo/campaigncore/engine/dice"
	"github.com/nathoo/campaigncore/engine/sim"
	"github.com/nathoo/campaigncore/storage"
	"github.com/nathoo/campaigncore/types"
)

func TestAreaDisplayName(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"hall", "Hall"},
		{"great_hall", "Great Hall"},
		{"castle_gates", "Castle Gates"},
		{"tower_top", "Tower Top"},
		{"secret_passage", "Secret Passage"},
	}
	for _, tt := range tests {
		got := areaDisplayName(tt.id)
		if got != tt.want {
			t.Errorf("areaDisplayName(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line string
		want lineKind
	}{
		{"You see: Goblin (hostile).", kindYouSee},
		{"Exits: stair, gate.", kindExits},
		{"[Campaign saved to test.]", kindSystem},
		{"[trace] Events: 2", kindTrace},
		{"New quest: The Lost Crown", kindQuest},
		{"Quest updated: The Lost Crown", kindQuest},
		{"Quest completed: The Lost Crown", kindQuest},
		{`I don't understand "dance".`, kindError},
		{"No exit \"gate\". Did you mean \"stair\"?", kindError},
		{"Usage: go <exit>", kindError},
		{"Great Hall. 4 of 16 tiles explored.", kindNarration},
		{"The party rests for 8 hours.", kindNarration},
		{"", kindNarration},
		{"'Ah, the adventurer. I wondered when they'd send someone competent.'", kindDialogue},
	}
	for _, tt := range tests {
		got := classifyLine(tt.line)
		if got != tt.want {
			t.Errorf("classifyLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestContainsQuotedSpeech(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"'Hello, adventurer. Welcome to the castle.'", true},
		{"It's a door.", false},    // short quote segment
		{"No quotes here.", false}, // no quotes at all
		{"'Hi'", false},            // too short
		{"She says 'the crown is lost forever, you must find it.'", true},
	}
	for _, tt := range tests {
		got := containsQuotedSpeech(tt.line)
		if got != tt.want {
			t.Errorf("containsQuotedSpeech(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestWordWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"short", 80, "short"},
		{"hello world", 5, "hello\nworld"},
		{"The great hall stretches before you with its vaulted ceiling.", 30,
			"The great hall stretches\nbefore you with its vaulted\nceiling."},
		{"", 80, ""},
		{"one", 80, "one"},
		{"a b c d e", 3, "a b\nc d\ne"},
		{"  Member: hero (primary) in hall", 20, "  Member: hero\n  (primary) in hall"},
	}
	for _, tt := range tests {
		got := wordWrap(tt.text, tt.width)
		if got != tt.want {
			t.Errorf("wordWrap(%q, %d) =\n  %q\nwant:\n  %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestHistory_PushAndPrev(t *testing.T) {
	h := NewHistory(5)
	h.Push("look")
	h.Push("travel stair")
	h.Push("rest 8")

	prev, ok := h.Prev()
	if !ok || prev != "rest 8" {
		t.Errorf("expected 'rest 8', got %q (ok=%v)", prev, ok)
	}

	prev, ok = h.Prev()
	if !ok || prev != "travel stair" {
		t.Errorf("expected 'travel stair', got %q (ok=%v)", prev, ok)
	}

	prev, ok = h.Prev()
	if !ok || prev != "look" {
		t.Errorf("expected 'look', got %q (ok=%v)", prev, ok)
	}

	// At oldest, stays there.
	prev, ok = h.Prev()
	if !ok || prev != "look" {
		t.Errorf("expected 'look' at boundary, got %q (ok=%v)", prev, ok)
	}
}

func TestHistory_Next(t *testing.T) {
	h := NewHistory(5)
	h.Push("look")
	h.Push("travel stair")

	h.Prev() // "travel stair"
	h.Prev() // "look"

	next, ok := h.Next()
	if !ok || next != "travel stair" {
		t.Errorf("expected 'travel stair', got %q (ok=%v)", next, ok)
	}

	_, ok = h.Next()
	if ok {
		t.Error("expected false when past newest entry")
	}
}

func TestHistory_Empty(t *testing.T) {
	h := NewHistory(5)
	_, ok := h.Prev()
	if ok {
		t.Error("expected false on empty history")
	}
	_, ok = h.Next()
	if ok {
		t.Error("expected false on empty history")
	}
}

func TestHistory_MaxSize(t *testing.T) {
	h := NewHistory(2)
	h.Push("a")
	h.Push("b")
	h.Push("c") // "a" evicted

	prev, _ := h.Prev()
	if prev != "c" {
		t.Errorf("expected 'c', got %q", prev)
	}
	prev, _ = h.Prev()
	if prev != "b" {
		t.Errorf("expected 'b', got %q", prev)
	}
	// "a" is gone.
	prev, _ = h.Prev()
	if prev != "b" {
		t.Errorf("expected 'b' at boundary, got %q", prev)
	}
}

func TestHistory_NoDuplicates(t *testing.T) {
	h := NewHistory(5)
	h.Push("look")
	h.Push("look") // skipped
	h.Push("look") // skipped

	if h.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", h.Len())
	}
}

func TestHistory_RepeatMovesToNewest(t *testing.T) {
	h := NewHistory(5)
	h.Push("look")
	h.Push("party")
	h.Push("look")

	if h.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", h.Len())
	}
	prev, _ := h.Prev()
	if prev != "look" {
		t.Errorf("expected 'look' newest, got %q", prev)
	}
	prev, _ = h.Prev()
	if prev != "party" {
		t.Errorf("expected 'party', got %q", prev)
	}
}

func TestHistory_ResetCursor(t *testing.T) {
	h := NewHistory(5)
	h.Push("look")
	h.Push("travel stair")

	h.Prev() // "travel stair"
	h.ResetCursor()

	// After reset, Prev starts from the end again.
	prev, ok := h.Prev()
	if !ok || prev != "travel stair" {
		t.Errorf("expected 'travel stair' after reset, got %q", prev)
	}
}

// testDefs returns a minimal campaign for TUI testing: a hall and a tower
// joined by a stair.
func testDefs() *campaign.Defs {
	d := campaign.NewDefs()
	d.Manifest.ID = "test"
	d.Manifest.Name = "Test Campaign"
	d.Manifest.StartingCharacters = []string{"hero"}
	d.Manifest.StartingArea = "great_hall"
	d.Creatures["hero"] = &creature.Def{ID: "hero", Name: "Hero", Faction: "Player"}
	d.Factions = []campaign.FactionDef{{Name: "Player"}}
	d.Areas["great_hall"] = &area.Def{ID: "great_hall", Width: 4, Height: 4}
	d.Areas["tower"] = &area.Def{ID: "tower", Name: "Tower", Width: 2, Height: 2}
	d.Transitions["stair"] = &area.TransitionDef{ID: "stair", Activated: true, TwoWay: true,
		From: area.Endpoint{AreaID: "great_hall", Points: []types.Point{{X: 3, Y: 3}}},
		To:   area.Endpoint{AreaID: "tower", Points: []types.Point{{X: 0, Y: 0}}}}
	return d
}

func newModel(t *testing.T) Model {
	t.Helper()
	c := campaign.New("test", testDefs(), sim.New(dice.New(5), sim.DefaultRuleset(), nil))
	t.Cleanup(c.Close)
	store, err := storage.OpenFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	m := New(engine.New(c), store)
	m = m.appendOutput(gameOutputMsg{lines: m.session.Intro()})
	return m
}

// submit types a line and presses enter.
func submit(t *testing.T, m Model, input string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(input)
	next, cmd := m.handleEnter()
	return next.(Model), cmd
}

func rawText(m Model) string {
	var b strings.Builder
	for _, rl := range m.rawLines {
		b.WriteString(rl.text)
		b.WriteString("\n")
	}
	return b.String()
}

func TestModel_Intro(t *testing.T) {
	m := newModel(t)
	out := rawText(m)
	if !strings.Contains(out, "Test Campaign") {
		t.Errorf("expected campaign name in intro, got:\n%s", out)
	}
	if !strings.Contains(out, "The adventure begins in great_hall.") {
		t.Errorf("expected starting area in intro, got:\n%s", out)
	}
}

func TestModel_GameCommand(t *testing.T) {
	m := newModel(t)
	m, _ = submit(t, m, "go stair")

	out := rawText(m)
	if !strings.Contains(out, "> go stair") {
		t.Errorf("expected echoed input, got:\n%s", out)
	}
	if !strings.Contains(out, "The party arrives at Tower.") {
		t.Errorf("expected arrival, got:\n%s", out)
	}
	if m.lastCmd != "go stair" {
		t.Errorf("lastCmd = %q, want %q", m.lastCmd, "go stair")
	}
	if got := m.locationLabel(); got != "Tower" {
		t.Errorf("locationLabel = %q, want Tower", got)
	}
}

func TestModel_AgainWithoutHistory(t *testing.T) {
	m := newModel(t)
	m, _ = submit(t, m, "g")
	if !strings.Contains(rawText(m), "Nothing to repeat.") {
		t.Error("expected 'Nothing to repeat.'")
	}
}

func TestModel_EmptyInputIgnored(t *testing.T) {
	m := newModel(t)
	before := len(m.rawLines)
	m, _ = submit(t, m, "   ")
	if len(m.rawLines) != before {
		t.Errorf("empty input added %d lines", len(m.rawLines)-before)
	}
}

func TestModel_Quit(t *testing.T) {
	m := newModel(t)
	m, cmd := submit(t, m, "/quit")
	if !m.quitting {
		t.Error("expected quitting after /quit")
	}
	if cmd == nil {
		t.Error("expected a quit command")
	}
	if m.View() != "" {
		t.Error("expected empty view after quitting")
	}
}

func TestModel_Help(t *testing.T) {
	m := newModel(t)
	m, _ = submit(t, m, "/help")
	out := rawText(m)
	if !strings.Contains(out, "/save") {
		t.Error("expected meta commands in help")
	}
	if !strings.Contains(out, "Navigation: PgUp/PgDn") {
		t.Error("expected navigation hint in help")
	}
}

func TestModel_SaveAndLoad(t *testing.T) {
	m := newModel(t)
	m, _ = submit(t, m, "/save slot1")
	m, _ = submit(t, m, "go stair")
	m, _ = submit(t, m, "/load slot1")

	out := rawText(m)
	if !strings.Contains(out, "Campaign saved to slot1.") {
		t.Errorf("expected save confirmation, got:\n%s", out)
	}
	if !strings.Contains(out, "Campaign loaded from slot1") {
		t.Errorf("expected load confirmation, got:\n%s", out)
	}
	if got := m.locationLabel(); got != "Great Hall" {
		t.Errorf("locationLabel after load = %q, want Great Hall", got)
	}
}

func TestModel_MetaLinesAreSystem(t *testing.T) {
	m := newModel(t)
	m, _ = submit(t, m, "/bogus")
	found := false
	for _, rl := range m.rawLines {
		if strings.HasPrefix(rl.text, "Unknown command: /bogus") {
			found = true
			if !rl.isSystem {
				t.Error("expected meta output marked as system")
			}
		}
	}
	if !found {
		t.Error("expected unknown command message")
	}
}

func TestModel_Trace(t *testing.T) {
	m := newModel(t)
	m, _ = submit(t, m, "/trace")
	if !m.session.Trace {
		t.Fatal("expected trace enabled")
	}
	m, _ = submit(t, m, "travel stair")
	if !strings.Contains(rawText(m), "[trace] Events:") {
		t.Error("expected trace lines after look")
	}
}

func TestRenderStatusBar(t *testing.T) {
	m := newModel(t)
	m.width = 120
	bar := m.renderStatusBar()
	for _, want := range []string{"Great Hall", "M1 D1", "Party: Hero", "T:"} {
		if !strings.Contains(bar, want) {
			t.Errorf("status bar missing %q: %q", want, bar)
		}
	}

	m.width = 30
	bar = m.renderStatusBar()
	if strings.Contains(bar, "Party: Hero") {
		t.Errorf("expected party count on a narrow bar, got %q", bar)
	}
}
