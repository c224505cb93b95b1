package loader

import (
	"strings"
	"testing"

	"github.com/nathoo/campaigncore/engine/campaign"
	"github.com/nathoo/campaigncore/engine/item"
	"github.com/nathoo/campaigncore/engine/script"
	"github.com/nathoo/campaigncore/types"
	lua "github.com/yuin/gopher-lua"
)

// newTestVM creates a sandboxed Lua VM with the API registered and a fresh collector.
func newTestVM() (*lua.LState, *collector) {
	L := script.NewSandbox()
	coll := &collector{file: "test.lua"}
	registerAPI(L, coll)
	return L, coll
}

// compileSource runs src and compiles whatever it defined.
func compileSource(t *testing.T, src string) (*campaign.Defs, *ValidationError) {
	t.Helper()
	L, coll := newTestVM()
	defer L.Close()
	if err := L.DoString(src); err != nil {
		t.Fatal(err)
	}
	ve := &ValidationError{}
	logger, _ := quietLogger()
	return compile(coll, logger, ve), ve
}

func TestCompileManifest(t *testing.T) {
	defs, ve := compileSource(t, `
		Campaign {
			id = "c",
			name = "C",
			party = { min = 2, max = 3 },
			starting_characters = { "a", "b" },
			calendar = { hours_per_day = 20, days_per_month = 28 },
			relationships = { { faction1 = "A", faction2 = "B", relationship = "friendly" } },
		}
	`)
	if len(ve.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", ve.Errors)
	}
	m := defs.Manifest
	if m.MinPartySize != 2 || m.MaxPartySize != 3 {
		t.Errorf("party = %d-%d", m.MinPartySize, m.MaxPartySize)
	}
	if m.Radices.HoursPerDay != 20 || m.Radices.DaysPerMonth != 28 || m.Radices.RoundsPerMinute != 10 {
		t.Errorf("Radices = %+v", m.Radices)
	}
	if len(m.Relationships) != 1 || m.Relationships[0].Faction2 != "B" {
		t.Errorf("Relationships = %+v", m.Relationships)
	}
}

func TestCompileManifest_BadRelationship(t *testing.T) {
	_, ve := compileSource(t, `Campaign { id = "c", relationships = { { "A", "B", "smitten" } } }`)
	if len(ve.Errors) != 1 || !strings.Contains(ve.Errors[0], `unknown relationship "smitten"`) {
		t.Errorf("Errors = %v", ve.Errors)
	}
}

func TestCampaignDefinedTwice(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()
	err := L.DoString(`Campaign { id = "a" } Campaign { id = "b" }`)
	if err == nil || !strings.Contains(err.Error(), "defined twice") {
		t.Errorf("err = %v, want 'defined twice'", err)
	}
}

func TestCompileItem_ValueForms(t *testing.T) {
	defs, ve := compileSource(t, `
		Item "a" { value = 250 }
		Item "b" { value = "1 PP 2 GP" }
		Item "c" {}
		Item "d" { value = { 1 } }
	`)
	if got, _ := defs.Items.Get("a"); got.Value != 250 {
		t.Errorf("a value = %d, want 250", got.Value)
	}
	if got, _ := defs.Items.Get("b"); got.Value != 120000 {
		t.Errorf("b value = %d, want 120000", got.Value)
	}
	if got, _ := defs.Items.Get("c"); got.Value != 0 || got.Name != "c" {
		t.Errorf("c = %+v, want zero value named by ID", got)
	}
	if len(ve.Errors) != 1 || !strings.Contains(ve.Errors[0], `Item "d"`) {
		t.Errorf("Errors = %v", ve.Errors)
	}
}

func TestCompileItem_BadKindAndSlot(t *testing.T) {
	defs, ve := compileSource(t, `
		Item "x" { kind = "potion", slot = "tail" }
	`)
	if len(ve.Errors) != 2 {
		t.Fatalf("Errors = %v, want 2", ve.Errors)
	}
	if x, _ := defs.Items.Get("x"); item.KindName(x.Kind) != "misc" {
		t.Errorf("fallback kind = %s, want misc", item.KindName(x.Kind))
	}
}

func TestCompileSkill_StatRequired(t *testing.T) {
	_, ve := compileSource(t, `
		Skill "a" {}
		Skill "b" { stat = "Luck" }
		Skill "c" { stat = "wis" }
	`)
	if len(ve.Errors) != 2 {
		t.Fatalf("Errors = %v, want 2", ve.Errors)
	}
	if !strings.Contains(ve.Errors[0], "stat is required") {
		t.Errorf("Errors[0] = %q", ve.Errors[0])
	}
	if !strings.Contains(ve.Errors[1], `unknown stat "Luck"`) {
		t.Errorf("Errors[1] = %q", ve.Errors[1])
	}
}

func TestCompileRole_MaxLevelBeyondLevels_Warns(t *testing.T) {
	defs, ve := compileSource(t, `Role "r" { max_level = 3, levels = { { skill_points = 1 } } }`)
	if defs.Roles["r"].MaxLevel != 3 {
		t.Errorf("MaxLevel = %d", defs.Roles["r"].MaxLevel)
	}
	if len(ve.Warnings) != 1 {
		t.Errorf("Warnings = %v, want 1", ve.Warnings)
	}
}

func TestCompileRecipe_ResultRules(t *testing.T) {
	_, ve := compileSource(t, `
		Recipe "nothing" { ingredients = { { "a", 1 } } }
		Recipe "bad_enchant" { result_ingredient = true }
	`)
	if len(ve.Errors) != 2 {
		t.Fatalf("Errors = %v, want 2", ve.Errors)
	}
	if !strings.Contains(ve.Errors[0], "result is required") {
		t.Errorf("Errors[0] = %q", ve.Errors[0])
	}
	if !strings.Contains(ve.Errors[1], "need an enchantment") {
		t.Errorf("Errors[1] = %q", ve.Errors[1])
	}
}

func TestCompileMerchant_Defaults(t *testing.T) {
	defs, ve := compileSource(t, `Merchant "m" { items = { { "a" } } }`)
	if len(ve.Errors)+len(ve.Warnings) != 0 {
		t.Fatalf("problems: %v %v", ve.Errors, ve.Warnings)
	}
	m := defs.Merchants["m"]
	if m.BuyPercentage != 50 || m.SellPercentage != 100 || m.RespawnHours != 0 {
		t.Errorf("merchant = %+v", m)
	}
	if e := m.BaseItems[0]; e.Quantity != 1 || e.Probability != 100 {
		t.Errorf("entry = %+v", e)
	}
}

func TestCompileMerchant_BuysAboveSell_Warns(t *testing.T) {
	_, ve := compileSource(t, `Merchant "m" { buy = 150, sell = 100 }`)
	if len(ve.Warnings) != 1 {
		t.Errorf("Warnings = %v, want 1", ve.Warnings)
	}
}

func TestCompileArea_SizeRequired(t *testing.T) {
	_, ve := compileSource(t, `Area "void" {}`)
	if len(ve.Errors) != 1 || !strings.Contains(ve.Errors[0], "must be positive") {
		t.Errorf("Errors = %v", ve.Errors)
	}
}

func TestCompileTransition_MissingEndpointIsWorldMap(t *testing.T) {
	defs, _ := compileSource(t, `Transition "t" { to = { area = "a" } }`)
	tr := defs.Transitions["t"]
	if !tr.From.WorldMap || tr.To.WorldMap {
		t.Errorf("transition = %+v", tr)
	}
	if !tr.Activated {
		t.Error("transitions default to activated")
	}
}

func TestCompileCreature_StatsAndSlots(t *testing.T) {
	defs, ve := compileSource(t, `
		Creature "c" {
			stats = { str = 14, Dex = 12, Luck = 3 },
			equipped = { MainHand = "sword", tail = "x" },
		}
	`)
	c := defs.Creatures["c"]
	if c.Stats[types.StatStr] != 14 || c.Stats[types.StatDex] != 12 {
		t.Errorf("Stats = %v", c.Stats)
	}
	if c.Equipped[item.SlotMainHand] != "sword" {
		t.Errorf("Equipped = %v", c.Equipped)
	}
	if len(ve.Errors) != 2 {
		t.Errorf("Errors = %v, want unknown stat and unknown slot", ve.Errors)
	}
}

func TestPointsHelper(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()
	if err := L.DoString(`return Points { {1, 2}, {x = 3, y = 4} }`); err != nil {
		t.Fatal(err)
	}
	tbl := L.CheckTable(-1)
	ve := &ValidationError{}
	pts := compilePoints(tbl, problems{ve: ve})
	if len(pts) != 2 || pts[0] != (types.Point{X: 1, Y: 2}) || pts[1] != (types.Point{X: 3, Y: 4}) {
		t.Errorf("points = %v", pts)
	}

	if err := L.DoString(`return Points { 5 }`); err == nil {
		t.Error("expected error for a non-pair point")
	}
}

func TestStatHelper(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()
	if err := L.DoString(`return Stat("cha")`); err != nil {
		t.Fatal(err)
	}
	if got := L.CheckString(-1); got != "Cha" {
		t.Errorf("Stat(cha) = %q, want Cha", got)
	}
	if err := L.DoString(`return Stat("luck")`); err == nil {
		t.Error("expected error for an unknown stat")
	}
}
