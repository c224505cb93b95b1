// Package recipe implements crafting. A recipe either produces new items
// from ingredients or enchants an item a creature has equipped.
package recipe

import (
	"errors"
	"fmt"

	"github.com/nathoo/campaigncore/engine/creature"
	"github.com/nathoo/campaigncore/engine/item"
	"github.com/nathoo/campaigncore/engine/sim"
	"github.com/nathoo/campaigncore/engine/skill"
)

var (
	ErrMissingIngredients = errors.New("missing ingredients")
	ErrSkillTooLow        = errors.New("skill too low")
	ErrWrongMode          = errors.New("recipe does not work that way")
	ErrNothingEquipped    = errors.New("nothing equipped in slot")
	ErrUnknownTemplate    = errors.New("unknown item template")
)

// Ingredient is a required input.
type Ingredient struct {
	TemplateID string
	Quantity   int
}

// LevelModifier upgrades the result when the crafter's skill modifier
// exceeds SkillRankRequirement.
type LevelModifier struct {
	SkillRankRequirement int
	Quality              string
}

// Def is a recipe definition.
type Def struct {
	ID               string
	Name             string
	SkillID          string
	SkillRequirement int
	Ingredients      []Ingredient

	// Result and ResultQuantity describe the item created by Craft.
	Result         string
	ResultQuantity int

	// ResultIngredient marks an enchanting recipe: the equipped item in
	// the chosen slot is itself the result.
	ResultIngredient bool
	Enchantment      string
	// AllowedKinds restricts which item kinds may be enchanted. Empty
	// allows any equippable item.
	AllowedKinds []string

	LevelModifiers []LevelModifier
}

// IsResultIngredient reports whether this recipe modifies an existing item.
func (d *Def) IsResultIngredient() bool { return d.ResultIngredient }

// FindLevelModifier returns the modifier with the highest requirement that
// is strictly below skillModifier.
func (d *Def) FindLevelModifier(skillModifier int) (LevelModifier, bool) {
	var best LevelModifier
	found := false
	for _, m := range d.LevelModifiers {
		if m.SkillRankRequirement >= skillModifier {
			continue
		}
		if !found || m.SkillRankRequirement > best.SkillRankRequirement {
			best = m
			found = true
		}
	}
	return best, found
}

// HasIngredients reports whether inv holds every ingredient.
func (d *Def) HasIngredients(inv *item.List) bool {
	for _, in := range d.Ingredients {
		if !inv.Has(in.TemplateID, max(1, in.Quantity)) {
			return false
		}
	}
	return true
}

// Workshop bundles what crafting needs from the campaign.
type Workshop struct {
	Inventory *item.List
	Skills    map[string]*skill.Def
	Templates item.Lookup
	// Created receives derived templates made by enchanting.
	Created *item.Registry
}

// CanCraft reports whether crafter could craft d right now.
func (d *Def) CanCraft(ctx *sim.Context, w Workshop, crafter *creature.Creature) error {
	if !d.HasIngredients(w.Inventory) {
		return fmt.Errorf("%s: %w", d.ID, ErrMissingIngredients)
	}
	if d.skillModifier(ctx, w, crafter) < d.SkillRequirement {
		return fmt.Errorf("%s: %w", d.ID, ErrSkillTooLow)
	}
	return nil
}

func (d *Def) skillModifier(ctx *sim.Context, w Workshop, crafter *creature.Creature) int {
	if d.SkillID == "" {
		return 0
	}
	sk, ok := w.Skills[d.SkillID]
	if !ok {
		ctx.Warnf("recipe %s: unknown skill %q", d.ID, d.SkillID)
		sk = &skill.Def{ID: d.SkillID}
	}
	return crafter.SkillSet().Modifier(sk, crafter, ctx.Rules.SkillStatMultiplier)
}

// Craft consumes the ingredients from the workshop inventory and adds the
// result, at least one item, with the quality chosen by the crafter's skill.
func (d *Def) Craft(ctx *sim.Context, w Workshop, crafter *creature.Creature) (item.Entry, error) {
	if d.ResultIngredient {
		return item.Entry{}, fmt.Errorf("%s: craft: %w", d.ID, ErrWrongMode)
	}
	if _, ok := w.Templates.Get(d.Result); !ok {
		return item.Entry{}, fmt.Errorf("%s: result %q: %w", d.ID, d.Result, ErrUnknownTemplate)
	}
	if err := d.CanCraft(ctx, w, crafter); err != nil {
		return item.Entry{}, err
	}
	if err := d.consume(w.Inventory); err != nil {
		return item.Entry{}, err
	}

	lm, _ := d.FindLevelModifier(d.skillModifier(ctx, w, crafter))
	out := item.Entry{TemplateID: d.Result, Quality: lm.Quality, Quantity: max(1, d.ResultQuantity)}
	w.Inventory.Add(out.TemplateID, out.Quality, out.Quantity)
	ctx.Sayf("%s crafts %d %s.", crafter.Name(), out.Quantity, d.displayName(w, out.TemplateID))
	return out, nil
}

// Enchant applies the recipe's enchantment to the item owner has in slot.
// The derived template is looked up by its derived ID and created on first
// use, so repeated enchanting with the same recipe shares one template.
func (d *Def) Enchant(ctx *sim.Context, w Workshop, crafter, owner *creature.Creature, slot item.Slot) (*item.Template, error) {
	if !d.IsResultIngredient() {
		return nil, fmt.Errorf("%s: enchant: %w", d.ID, ErrWrongMode)
	}
	eq, ok := owner.EquippedIn(slot)
	if !ok {
		return nil, fmt.Errorf("%s: %s: %w", owner.Name(), slot, ErrNothingEquipped)
	}
	base, ok := w.Templates.Get(eq.TemplateID)
	if !ok {
		return nil, fmt.Errorf("%s: equipped %q: %w", d.ID, eq.TemplateID, ErrUnknownTemplate)
	}
	if !d.allowsKind(base) {
		return nil, fmt.Errorf("%s: cannot enchant %s: %w", d.ID, item.KindName(base.Kind), ErrWrongMode)
	}
	if err := d.CanCraft(ctx, w, crafter); err != nil {
		return nil, err
	}
	if err := d.consume(w.Inventory); err != nil {
		return nil, err
	}

	derived := d.derivedTemplate(w, base)
	owner.Equip(slot, derived, eq.Quality)
	ctx.Sayf("%s enchants %s's %s.", crafter.Name(), owner.Name(), d.displayName(w, base.ID))
	return derived, nil
}

func (d *Def) derivedTemplate(w Workshop, base *item.Template) *item.Template {
	id := item.DerivedID(base.ID, d.Enchantment)
	if t, ok := w.Created.Get(id); ok {
		return t
	}
	if t, ok := w.Templates.Get(id); ok {
		return t
	}
	t := item.Derive(base, d.Enchantment)
	w.Created.Add(t)
	return t
}

func (d *Def) allowsKind(t *item.Template) bool {
	if !t.Equippable() {
		return false
	}
	if len(d.AllowedKinds) == 0 {
		return true
	}
	for _, k := range d.AllowedKinds {
		if k == item.KindName(t.Kind) {
			return true
		}
	}
	return false
}

func (d *Def) consume(inv *item.List) error {
	for _, in := range d.Ingredients {
		if err := inv.Remove(in.TemplateID, max(1, in.Quantity)); err != nil {
			return fmt.Errorf("%s: %w: %v", d.ID, ErrMissingIngredients, err)
		}
	}
	return nil
}

func (d *Def) displayName(w Workshop, id string) string {
	if t, ok := w.Templates.Get(id); ok && t.Name != "" {
		return t.Name
	}
	return id
}
