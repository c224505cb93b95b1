package campaign

import (
	"fmt"

	"github.com/nathoo/campaigncore/engine/faction"
	"github.com/nathoo/campaigncore/engine/quest"
)

// scriptWorld exposes the campaign to hook scripts.
type scriptWorld struct{ c *Campaign }

func (w scriptWorld) Say(text string) { w.c.ctx.Sayf("%s", text) }

func (w scriptWorld) RevealLocation(id string) error { return w.c.RevealLocation(id) }

func (w scriptWorld) ActivateTransition(id string) error { return w.c.ActivateTransition(id) }

func (w scriptWorld) AddQuest(title string, notify bool) { w.c.AddQuest(title, notify) }

func (w scriptWorld) AddQuestNote(title, noteTitle, description string) error {
	return w.c.AddQuestNote(title, quest.SubEntry{Title: noteTitle, Description: description, ShowTitle: noteTitle != ""})
}

func (w scriptWorld) CompleteQuest(title string) error { return w.c.CompleteQuest(title) }

func (w scriptWorld) GiveItem(templateID string, qty int) error {
	t, ok := w.c.Templates().Get(templateID)
	if !ok {
		return fmt.Errorf("give_item: unknown item %q", templateID)
	}
	w.c.Stash.Add(templateID, "", qty)
	w.c.ctx.Sayf("The party receives %d %s.", qty, nameOr(t.Name, t.ID))
	return nil
}

func (w scriptWorld) AddMoney(amount string) { w.c.Currency.AddFromString(w.c.ctx.Log, amount) }

func (w scriptWorld) SetRelationship(faction1, faction2, relationship string) error {
	rel, err := faction.ParseRelationship(relationship)
	if err != nil {
		return err
	}
	return w.c.SetRelationship(faction1, faction2, rel)
}

func (w scriptWorld) Round() int64 { return w.c.Date.TotalRounds() }

func (w scriptWorld) Roll(base, multiple int) int { return w.c.ctx.Dice.D(base, multiple) }
