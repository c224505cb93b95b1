package campaign

import (
	"fmt"
	"strings"

	"github.com/nathoo/campaigncore/engine/creature"
	"github.com/nathoo/campaigncore/engine/currency"
	"github.com/nathoo/campaigncore/engine/item"
	"github.com/nathoo/campaigncore/engine/merchant"
	"github.com/nathoo/campaigncore/engine/recipe"
	"github.com/nathoo/campaigncore/engine/role"
	"github.com/nathoo/campaigncore/engine/skill"
)

// Party returns the party members in order.
func (c *Campaign) Party() []*creature.Creature {
	return append([]*creature.Creature(nil), c.party...)
}

// Primary returns the selected party member, nil when the party is empty.
func (c *Campaign) Primary() *creature.Creature {
	if c.primary < 0 || c.primary >= len(c.party) {
		return nil
	}
	return c.party[c.primary]
}

// PrimaryIndex returns the index of the selected member.
func (c *Campaign) PrimaryIndex() int { return c.primary }

// Member finds a party member by ID or, failing that, by name ignoring
// case.
func (c *Campaign) Member(id string) (*creature.Creature, error) {
	for _, m := range c.party {
		if m.ID == id {
			return m, nil
		}
	}
	for _, m := range c.party {
		if strings.EqualFold(m.ID, id) || strings.EqualFold(m.Name(), id) {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", id, ErrUnknownMember)
}

// AddMember adds a creature to the party, up to the manifest's maximum.
// In an area the new member is placed near the primary member.
func (c *Campaign) AddMember(m *creature.Creature) error {
	_, hi := c.Defs.Manifest.PartyBounds()
	if len(c.party) >= hi {
		return fmt.Errorf("add %s: %w (max %d)", m.ID, ErrPartySize, hi)
	}
	for _, p := range c.party {
		if p.ID == m.ID {
			return fmt.Errorf("add %s: already in the party", m.ID)
		}
	}
	c.party = append(c.party, m)
	if c.current != nil {
		anchor := m.Position
		if p := c.Primary(); p != nil && p.Placed {
			anchor = p.Position
		}
		c.current.Remove(m.ID)
		pt, ok := c.current.FindNearestEmptyTile(anchor, c.ctx.Rules.PlacementSearchRadius)
		var err error
		if ok {
			err = c.current.Place(m.ID, pt)
		} else {
			err = fmt.Errorf("no empty tile near %v", anchor)
		}
		if err != nil {
			c.ctx.Errorf("add %s: %v", m.ID, err)
			m.Placed = false
		} else {
			m.AreaID, m.Position, m.Placed = c.current.ID(), pt, true
		}
	}
	c.ctx.Sayf("%s joins the party.", m.Name())
	return nil
}

// RemoveMember takes a member out of the party, keeping at least the
// manifest's minimum. Removing the primary member selects the first.
func (c *Campaign) RemoveMember(id string) (*creature.Creature, error) {
	lo, _ := c.Defs.Manifest.PartyBounds()
	if len(c.party) <= lo {
		return nil, fmt.Errorf("remove %s: %w (min %d)", id, ErrPartySize, lo)
	}
	for i, m := range c.party {
		if m.ID != id {
			continue
		}
		primaryID := c.Primary().ID
		c.party = append(c.party[:i], c.party[i+1:]...)
		if c.current != nil {
			c.current.Remove(m.ID)
		}
		m.Placed = false
		c.primary = 0
		for j, p := range c.party {
			if p.ID == primaryID {
				c.primary = j
			}
		}
		c.ctx.Sayf("%s leaves the party.", m.Name())
		return m, nil
	}
	return nil, fmt.Errorf("%q: %w", id, ErrUnknownMember)
}

// SetPrimary selects the member that leads transitions.
func (c *Campaign) SetPrimary(id string) error {
	for i, m := range c.party {
		if m.ID == id {
			c.primary = i
			return nil
		}
	}
	return fmt.Errorf("%q: %w", id, ErrUnknownMember)
}

// skillDef returns the definition for id, or a bare one for unknown skills.
func (c *Campaign) skillDef(id string) *skill.Def {
	if d, ok := c.Defs.Skills[id]; ok {
		return d
	}
	return &skill.Def{ID: id, Untrained: true}
}

// PartySpeech is the best speech modifier among party members.
func (c *Campaign) PartySpeech() int {
	def := c.skillDef(c.ctx.Rules.SpeechSkill)
	best, found := 0, false
	for _, m := range c.party {
		if !m.Skills.CanUse(def) {
			continue
		}
		v := m.Skills.Modifier(def, m, c.ctx.Rules.SkillStatMultiplier)
		if !found || v > best {
			best, found = v, true
		}
	}
	return max(best, 0)
}

// Check rolls a skill check for a party member.
func (c *Campaign) Check(memberID, skillID string, difficulty int) (skill.Check, error) {
	m, err := c.Member(memberID)
	if err != nil {
		return skill.Check{}, err
	}
	def, ok := c.Defs.Skills[skillID]
	if !ok {
		return skill.Check{}, fmt.Errorf("unknown skill %q", skillID)
	}
	return m.Skills.Check(c.ctx, def, m, difficulty), nil
}

// LevelUp adds a level of a role to a party member.
func (c *Campaign) LevelUp(memberID, roleID string) (int, error) {
	m, err := c.Member(memberID)
	if err != nil {
		return 0, err
	}
	def, ok := c.Defs.Roles[roleID]
	if !ok {
		return 0, fmt.Errorf("unknown role %q", roleID)
	}
	level, err := m.Roles.LevelUp(def, m)
	if err != nil {
		return 0, err
	}
	c.ctx.Sayf("%s is now a level %d %s.", m.Name(), level, nameOr(def.Name, def.ID))
	return level, nil
}

// AvailableRoles lists roles a member could take a level in now.
func (c *Campaign) AvailableRoles(memberID string) ([]*role.Def, error) {
	m, err := c.Member(memberID)
	if err != nil {
		return nil, err
	}
	var out []*role.Def
	for _, id := range sortedKeys(c.Defs.Roles) {
		if m.Roles.CanLevelUp(c.Defs.Roles[id], m) == nil {
			out = append(out, c.Defs.Roles[id])
		}
	}
	return out, nil
}

// Workshop is the crafting view of the party.
func (c *Campaign) Workshop() recipe.Workshop {
	return recipe.Workshop{
		Inventory: c.Stash,
		Skills:    c.Defs.Skills,
		Templates: c.Templates(),
		Created:   c.Created,
	}
}

// Crafter picks the party member best at a recipe's skill.
func (c *Campaign) Crafter(r *recipe.Def) *creature.Creature {
	best := c.Primary()
	if r.SkillID == "" || best == nil {
		return best
	}
	def := c.skillDef(r.SkillID)
	mod := func(m *creature.Creature) int {
		return m.Skills.Modifier(def, m, c.ctx.Rules.SkillStatMultiplier)
	}
	for _, m := range c.party {
		if mod(m) > mod(best) {
			best = m
		}
	}
	return best
}

// Craft runs a crafting recipe with the best crafter.
func (c *Campaign) Craft(recipeID string) error {
	r, ok := c.Defs.Recipes[recipeID]
	if !ok {
		return fmt.Errorf("unknown recipe %q", recipeID)
	}
	crafter := c.Crafter(r)
	if crafter == nil {
		return ErrNotPopulated
	}
	_, err := r.Craft(c.ctx, c.Workshop(), crafter)
	return err
}

// Enchant runs an enchanting recipe on the item a member has in slot.
func (c *Campaign) Enchant(recipeID, memberID string, slot string) error {
	r, ok := c.Defs.Recipes[recipeID]
	if !ok {
		return fmt.Errorf("unknown recipe %q", recipeID)
	}
	owner, err := c.Member(memberID)
	if err != nil {
		return err
	}
	s, err := item.ParseSlot(slot)
	if err != nil {
		return err
	}
	_, err = r.Enchant(c.ctx, c.Workshop(), c.Crafter(r), owner, s)
	return err
}

// Trade is the party's side of a merchant transaction.
func (c *Campaign) Trade() merchant.Trade {
	return merchant.Trade{
		Purse:     &c.Currency,
		Inventory: c.Stash,
		Templates: c.Templates(),
		Qualities: c.Defs.Manifest.Qualities,
	}
}

// Buy purchases items from a merchant.
func (c *Campaign) Buy(merchantID, templateID string, qty int) (currency.Currency, error) {
	m, err := c.Merchant(merchantID)
	if err != nil {
		return currency.Currency{}, err
	}
	return m.Buy(c.ctx, c.Trade(), templateID, qty)
}

// Sell sells items to a merchant.
func (c *Campaign) Sell(merchantID, templateID string, qty int) (currency.Currency, error) {
	m, err := c.Merchant(merchantID)
	if err != nil {
		return currency.Currency{}, err
	}
	return m.Sell(c.ctx, c.Trade(), templateID, qty)
}
