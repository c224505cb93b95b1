package loader

import (
	"strings"
	"testing"

	"github.com/nathoo/campaigncore/engine/area"
	"github.com/nathoo/campaigncore/engine/campaign"
	"github.com/nathoo/campaigncore/engine/creature"
	"github.com/nathoo/campaigncore/engine/item"
	"github.com/nathoo/campaigncore/engine/merchant"
	"github.com/nathoo/campaigncore/engine/recipe"
	"github.com/nathoo/campaigncore/types"
)

// validDefs returns a minimal valid Defs for testing.
func validDefs() *campaign.Defs {
	defs := campaign.NewDefs()
	defs.Manifest.ID = "test"
	defs.Manifest.Name = "Test"
	defs.Manifest.StartingCharacters = []string{"hero"}
	defs.Manifest.StartingArea = "hall"
	defs.Areas["hall"] = &area.Def{ID: "hall", Width: 4, Height: 4}
	defs.Creatures["hero"] = &creature.Def{ID: "hero", Name: "Hero"}
	return defs
}

func runValidate(defs *campaign.Defs) *ValidationError {
	ve := &ValidationError{}
	validate(defs, ve)
	return ve
}

func expectError(t *testing.T, ve *ValidationError, substr string) {
	t.Helper()
	for _, e := range ve.Errors {
		if strings.Contains(e, substr) {
			return
		}
	}
	t.Errorf("no error containing %q in %v", substr, ve.Errors)
}

func expectWarning(t *testing.T, ve *ValidationError, substr string) {
	t.Helper()
	for _, w := range ve.Warnings {
		if strings.Contains(w, substr) {
			return
		}
	}
	t.Errorf("no warning containing %q in %v", substr, ve.Warnings)
}

func TestValidate_ValidDefs(t *testing.T) {
	ve := runValidate(validDefs())
	if len(ve.Errors) > 0 || len(ve.Warnings) > 0 {
		t.Fatalf("expected a clean result, got errors=%v warnings=%v", ve.Errors, ve.Warnings)
	}
}

func TestValidate_MissingID(t *testing.T) {
	defs := validDefs()
	defs.Manifest.ID = ""
	expectError(t, runValidate(defs), "Campaign.id is required")
}

func TestValidate_PartyTooLarge(t *testing.T) {
	defs := validDefs()
	defs.Manifest.MaxPartySize = 1
	defs.Manifest.StartingCharacters = []string{"hero", "hero"}
	expectError(t, runValidate(defs), "party size must be 1-1")
}

func TestValidate_NoStartingArea_Warning(t *testing.T) {
	defs := validDefs()
	defs.Manifest.StartingArea = ""
	ve := runValidate(defs)
	if len(ve.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", ve.Errors)
	}
	expectWarning(t, ve, "starts on the world map")
}

func TestValidate_StartingPointOutsideArea_Warning(t *testing.T) {
	defs := validDefs()
	defs.Manifest.StartingPoints = []types.Point{{X: 9, Y: 0}}
	expectWarning(t, runValidate(defs), `point (9,0) is outside area "hall"`)
}

func TestValidate_NonPositiveQuality(t *testing.T) {
	defs := validDefs()
	defs.Manifest.Qualities = map[string]int{"broken": 0}
	expectError(t, runValidate(defs), `quality "broken"`)
}

func TestValidate_TransitionBothWorldMap(t *testing.T) {
	defs := validDefs()
	defs.Transitions["t"] = &area.TransitionDef{
		ID:   "t",
		From: area.Endpoint{WorldMap: true},
		To:   area.Endpoint{WorldMap: true},
	}
	expectError(t, runValidate(defs), "world map on both ends")
}

func TestValidate_LocationTransitionNotFromWorldMap(t *testing.T) {
	defs := validDefs()
	defs.Areas["cellar"] = &area.Def{ID: "cellar", Width: 1, Height: 1}
	defs.Transitions["stairs"] = &area.TransitionDef{
		ID:   "stairs",
		From: area.Endpoint{AreaID: "hall"},
		To:   area.Endpoint{AreaID: "cellar"},
	}
	defs.Locations["cellar_loc"] = &area.Location{ID: "cellar_loc", Transition: "stairs"}
	expectError(t, runValidate(defs), "cannot be taken from the world map")
}

func TestValidate_UnknownLocationTransition(t *testing.T) {
	defs := validDefs()
	defs.Locations["somewhere"] = &area.Location{ID: "somewhere", Transition: "nowhere"}
	expectError(t, runValidate(defs), `unknown transition "nowhere"`)
}

func TestValidate_RecipeRefs(t *testing.T) {
	defs := validDefs()
	defs.Items.Add(&item.Template{ID: "ingot", Kind: item.Misc{}})
	defs.Recipes["r"] = &recipe.Def{
		ID:           "r",
		SkillID:      "smithng",
		Ingredients:  []recipe.Ingredient{{TemplateID: "ingt", Quantity: 1}},
		Result:       "ingot",
		AllowedKinds: []string{"wepon"},
	}
	ve := runValidate(defs)
	expectError(t, ve, `unknown skill "smithng"`)
	expectError(t, ve, `unknown item "ingt" (did you mean "ingot"?)`)
	expectError(t, ve, `unknown kind "wepon" (did you mean "weapon"?)`)
}

func TestValidate_MerchantUnknownQuality_Warning(t *testing.T) {
	defs := validDefs()
	defs.Items.Add(&item.Template{ID: "bread", Kind: item.Misc{}})
	defs.Merchants["baker"] = &merchant.Def{
		ID:        "baker",
		BaseItems: []merchant.LootEntry{{TemplateID: "bread", Quality: "stale", Quantity: 1}},
	}
	expectWarning(t, runValidate(defs), `undeclared quality "stale"`)
}

func TestValidate_EquippedWithoutSlot(t *testing.T) {
	defs := validDefs()
	defs.Items.Add(&item.Template{ID: "rock", Kind: item.Misc{}})
	defs.Items.Add(&item.Template{ID: "dagger", Kind: item.Weapon{Damage: item.NewDamage()}, Slot: item.SlotMainHand})
	defs.Creatures["hero"].Equipped = map[item.Slot]string{
		item.SlotMainHand: "rock",
		item.SlotOffHand:  "dagger",
	}
	ve := runValidate(defs)
	expectError(t, ve, `equips "rock", which has no slot`)
	expectWarning(t, ve, `equips "dagger" in slot offhand`)
}

func TestValidate_HookSyntax(t *testing.T) {
	defs := validDefs()
	defs.Areas["hall"].Hooks.OnExit = "if then"
	expectError(t, runValidate(defs), `Area "hall" on_exit hook`)
}

func TestValidate_UndeclaredFaction_Warning(t *testing.T) {
	defs := validDefs()
	defs.Factions = []campaign.FactionDef{{Name: "Player"}}
	defs.Creatures["hero"].Faction = "Playr"
	expectWarning(t, runValidate(defs), `undeclared faction "Playr" (did you mean "Player"?)`)
}

func TestValidationError_Message(t *testing.T) {
	ve := &ValidationError{Errors: []string{"first", "second"}}
	msg := ve.Error()
	if !strings.HasPrefix(msg, "validation failed with 2 error(s)") || !strings.Contains(msg, "\n  second") {
		t.Errorf("Error() = %q", msg)
	}
}
