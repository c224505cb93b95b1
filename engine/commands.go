package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/nathoo/campaigncore/engine/creature"
	"github.com/nathoo/campaigncore/engine/date"
	"github.com/nathoo/campaigncore/engine/faction"
	"github.com/nathoo/campaigncore/engine/item"
	"github.com/nathoo/campaigncore/engine/parser"
	"github.com/nathoo/campaigncore/types"
)

type handler func(e *Engine, in types.Intent) error

var handlers map[string]handler

func init() {
	handlers = map[string]handler{
		"party":    cmdParty,
		"look":     cmdLook,
		"map":      cmdMap,
		"travel":   cmdTravel,
		"wait":     cmdWait,
		"rest":     cmdRest,
		"check":    cmdCheck,
		"stock":    cmdStock,
		"buy":      cmdBuy,
		"sell":     cmdSell,
		"craft":    cmdCraft,
		"enchant":  cmdEnchant,
		"quests":   cmdQuests,
		"relation": cmdRelation,
		"levelup":  cmdLevelUp,
		"roles":    cmdRoles,
		"date":     cmdDate,
		"money":    cmdMoney,
		"help":     cmdHelp,
	}
}

// HelpLines describes the game commands.
var HelpLines = []string{
	"  party (p)                        Show the party",
	"  look (l)                         Describe where the party is",
	"  map (m)                          Draw the explored area",
	"  travel <transition> (go)         Take a transition",
	"  wait <n> [rounds|minutes|hours|days] (z)",
	"  rest <hours>                     Rest and let time pass",
	"  check <member> <skill> <difficulty>",
	"  stock <merchant>                 List a merchant's wares",
	"  buy <merchant> <item> [qty]",
	"  sell <merchant> <item> [qty]",
	"  craft <recipe>",
	"  enchant <recipe> <member> <slot>",
	"  quests (j)                       Show the quest journal",
	"  relation <faction> <faction>",
	"  levelup <member> <role>",
	"  roles <member>                   Roles the member can take",
	"  date                             Show the calendar",
	"  money                            Show the party purse",
}

// matchID finds word among ids ignoring case.
func matchID(word string, ids []string) (string, bool) {
	for _, id := range ids {
		if strings.EqualFold(id, word) {
			return id, true
		}
	}
	return "", false
}

// lookup resolves a content ID or reports the closest one.
func lookup(kind, word string, ids []string) (string, error) {
	if id, ok := matchID(word, ids); ok {
		return id, nil
	}
	lower := make([]string, len(ids))
	byLower := map[string]string{}
	for i, id := range ids {
		lower[i] = strings.ToLower(id)
		byLower[lower[i]] = id
	}
	if s := parser.Suggest(word, lower); s != "" {
		return "", fmt.Errorf("no %s %q. Did you mean %q?", kind, word, byLower[s])
	}
	return "", fmt.Errorf("no %s %q", kind, word)
}

func quantity(in types.Intent, i int) (int, error) {
	if in.Arg(i) == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(in.Arg(i))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%q is not a positive quantity", in.Arg(i))
	}
	return n, nil
}

func cmdParty(e *Engine, _ types.Intent) error {
	c := e.Campaign
	for i, m := range c.Party() {
		marker := " "
		if i == c.PrimaryIndex() {
			marker = "*"
		}
		var roles []string
		for _, id := range m.Roles.IDs() {
			roles = append(roles, fmt.Sprintf("%s %d", id, m.Roles.Level(id)))
		}
		where := "not placed"
		if m.Placed {
			where = fmt.Sprintf("at %d,%d", m.Position.X, m.Position.Y)
		}
		e.say("%s %s [%s] %s, %s", marker, m.Name(), m.ID, strings.Join(roles, ", "), where)
	}
	return nil
}

func cmdLook(e *Engine, _ types.Intent) error {
	c := e.Campaign
	if c.OnWorldMap() {
		e.say("The party is on the world map.")
		var names []string
		for _, id := range c.RevealedLocations() {
			names = append(names, nameOf(c.Defs.Locations[id].Name, id))
		}
		if len(names) > 0 {
			e.say("Known places: %s.", strings.Join(names, ", "))
		}
		sayExits(e)
		return nil
	}
	a := c.CurrentArea()
	if a == nil {
		e.say("The party is nowhere at all.")
		return nil
	}
	w, h := a.Def.Width, a.Def.Height
	e.say("%s. %d of %d tiles explored.", nameOf(a.Def.Name, a.ID()), a.ExploredCount(), w*h)

	var seen []string
	lead := c.Primary()
	for _, id := range a.Occupants() {
		cr, ok := a.Creatures[id]
		if !ok {
			continue
		}
		rel := faction.Neutral
		if lead != nil {
			rel = c.Factions.Between(cr.FactionName(), lead.FactionName())
		}
		seen = append(seen, fmt.Sprintf("%s (%s)", cr.Name(), strings.ToLower(rel.String())))
	}
	if len(seen) > 0 {
		e.say("You see: %s.", strings.Join(seen, ", "))
	}
	sayExits(e)
	return nil
}

func sayExits(e *Engine) {
	var ids []string
	for _, t := range e.Campaign.AvailableTransitions() {
		ids = append(ids, t.ID())
	}
	if len(ids) > 0 {
		e.say("Exits: %s.", strings.Join(ids, ", "))
	}
}

func cmdMap(e *Engine, _ types.Intent) error {
	c := e.Campaign
	a := c.CurrentArea()
	if a == nil {
		return cmdLook(e, types.Intent{})
	}
	lead := c.Primary()
	party := map[string]bool{}
	for _, m := range c.Party() {
		party[m.ID] = true
	}
	glyph := func(id string) rune {
		switch {
		case lead != nil && id == lead.ID:
			return '@'
		case party[id]:
			return '&'
		}
		cr, ok := a.Creatures[id]
		if !ok || cr.Name() == "" {
			return '?'
		}
		r := []rune(cr.Name())[0]
		if lead != nil && c.Factions.Between(cr.FactionName(), lead.FactionName()) == faction.Hostile {
			return unicode.ToUpper(r)
		}
		return unicode.ToLower(r)
	}
	for _, row := range a.Map(glyph) {
		e.say("%s", row)
	}
	return nil
}

func cmdTravel(e *Engine, in types.Intent) error {
	if in.Arg(0) == "" {
		return usage("travel <transition>")
	}
	c := e.Campaign
	var ids []string
	for _, t := range c.AvailableTransitions() {
		ids = append(ids, t.ID())
	}
	id, err := lookup("way", in.Arg(0), ids)
	if err != nil {
		return err
	}
	return c.Transition(id, c.OnWorldMap())
}

func cmdWait(e *Engine, in types.Intent) error {
	if in.Arg(0) == "" {
		return usage("wait <n> [rounds|minutes|hours|days]")
	}
	n, err := quantity(in, 0)
	if err != nil {
		return err
	}
	d := e.Campaign.Date
	before := d.TotalRounds()
	switch strings.TrimSuffix(in.Arg(1), "s") {
	case "", "round":
		d.IncrementRounds(n)
	case "minute":
		d.IncrementMinutes(n)
	case "hour":
		d.IncrementHours(n)
	case "day":
		d.IncrementDays(n)
	default:
		return usage("wait <n> [rounds|minutes|hours|days]")
	}
	e.say("Time passes: %s.", date.FormatDuration(d.Decompose(d.TotalRounds()-before)))
	return nil
}

func cmdRest(e *Engine, in types.Intent) error {
	if in.Arg(0) == "" {
		return usage("rest <hours>")
	}
	n, err := quantity(in, 0)
	if err != nil {
		return err
	}
	return e.Campaign.Rest(n)
}

func cmdCheck(e *Engine, in types.Intent) error {
	if len(in.Args) < 3 {
		return usage("check <member> <skill> <difficulty>")
	}
	c := e.Campaign
	skillID, err := lookup("skill", in.Arg(1), sortedIDs(c.Defs.Skills))
	if err != nil {
		return err
	}
	diff, err := strconv.Atoi(in.Arg(2))
	if err != nil {
		return fmt.Errorf("%q is not a difficulty", in.Arg(2))
	}
	_, err = c.Check(in.Arg(0), skillID, diff)
	return err
}

// itemDetail summarises a template's combat stats for listings.
func itemDetail(t *item.Template) string {
	switch k := t.Kind.(type) {
	case item.Weapon:
		return fmt.Sprintf(" (damage: %s)", k.Damage)
	case item.Armor:
		return fmt.Sprintf(" (armor class %d)", k.ArmorClass)
	}
	return ""
}

func cmdStock(e *Engine, in types.Intent) error {
	if in.Arg(0) == "" {
		return usage("stock <merchant>")
	}
	c := e.Campaign
	id, err := lookup("merchant", in.Arg(0), c.Defs.MerchantIDs())
	if err != nil {
		return err
	}
	m, err := c.Merchant(id)
	if err != nil {
		return err
	}
	e.say("%s buys at %d%% and sells at %d%%.", nameOf(m.Def.Name, m.ID()), m.BuyPercentage, m.SellPercentage)
	if m.CurrentItems == nil || m.CurrentItems.Len() == 0 {
		e.say("Nothing is for sale.")
		return nil
	}
	templates := c.Templates()
	for _, entry := range m.CurrentItems.Entries() {
		t, ok := templates.Get(entry.TemplateID)
		if !ok {
			continue
		}
		label := nameOf(t.Name, t.ID)
		if entry.Quality != "" {
			label = entry.Quality + " " + label
		}
		price := m.SellPrice(t, entry.Quality, c.Defs.Manifest.Qualities)
		e.say("  %d x %s [%s] %s each%s", entry.Quantity, label, t.ID, price.ShortString(), itemDetail(t))
	}
	return nil
}

func trade(e *Engine, in types.Intent, verb string) error {
	if len(in.Args) < 2 {
		return usage(verb + " <merchant> <item> [qty]")
	}
	c := e.Campaign
	mid, err := lookup("merchant", in.Arg(0), c.Defs.MerchantIDs())
	if err != nil {
		return err
	}
	iid, err := lookup("item", in.Arg(1), append(c.Defs.Items.IDs(), c.Created.IDs()...))
	if err != nil {
		return err
	}
	qty, err := quantity(in, 2)
	if err != nil {
		return err
	}
	if verb == "buy" {
		_, err = c.Buy(mid, iid, qty)
	} else {
		_, err = c.Sell(mid, iid, qty)
	}
	return err
}

func cmdBuy(e *Engine, in types.Intent) error  { return trade(e, in, "buy") }
func cmdSell(e *Engine, in types.Intent) error { return trade(e, in, "sell") }

func cmdCraft(e *Engine, in types.Intent) error {
	if in.Arg(0) == "" {
		return usage("craft <recipe>")
	}
	c := e.Campaign
	id, err := lookup("recipe", in.Arg(0), c.Defs.RecipeIDs())
	if err != nil {
		return err
	}
	return c.Craft(id)
}

func cmdEnchant(e *Engine, in types.Intent) error {
	if len(in.Args) < 3 {
		return usage("enchant <recipe> <member> <slot>")
	}
	c := e.Campaign
	id, err := lookup("recipe", in.Arg(0), c.Defs.RecipeIDs())
	if err != nil {
		return err
	}
	return c.Enchant(id, in.Arg(1), in.Arg(2))
}

func cmdQuests(e *Engine, _ types.Intent) error {
	q := e.Campaign.Quests
	if q.Len() == 0 {
		e.say("The journal is empty.")
		return nil
	}
	if active := q.Active(); len(active) > 0 {
		e.say("Active:")
		for _, entry := range active {
			e.say("  %s", entry.Title)
			for _, sub := range entry.SubEntries {
				if sub.ShowTitle && sub.Title != "" {
					e.say("    %s: %s", sub.Title, sub.Description)
				} else {
					e.say("    %s", sub.Description)
				}
			}
		}
	}
	if done := q.Completed(); len(done) > 0 {
		e.say("Completed:")
		for _, entry := range done {
			e.say("  %s", entry.Title)
		}
	}
	return nil
}

func cmdRelation(e *Engine, in types.Intent) error {
	if len(in.Args) < 2 {
		return usage("relation <faction> <faction>")
	}
	f := e.Campaign.Factions
	a, err := lookup("faction", in.Arg(0), f.Names())
	if err != nil {
		return err
	}
	b, err := lookup("faction", in.Arg(1), f.Names())
	if err != nil {
		return err
	}
	e.say("%s regards %s as %s.", a, b, strings.ToLower(f.Between(a, b).String()))
	e.say("%s regards %s as %s.", b, a, strings.ToLower(f.Between(b, a).String()))
	return nil
}

func cmdLevelUp(e *Engine, in types.Intent) error {
	if len(in.Args) < 2 {
		return usage("levelup <member> <role>")
	}
	c := e.Campaign
	id, err := lookup("role", in.Arg(1), sortedIDs(c.Defs.Roles))
	if err != nil {
		return err
	}
	_, err = c.LevelUp(in.Arg(0), id)
	return err
}

func cmdRoles(e *Engine, in types.Intent) error {
	c := e.Campaign
	var m *creature.Creature
	if in.Arg(0) == "" {
		m = c.Primary()
	} else {
		var err error
		if m, err = c.Member(in.Arg(0)); err != nil {
			return err
		}
	}
	if m == nil {
		return fmt.Errorf("the party is empty")
	}
	roles, err := c.AvailableRoles(m.ID)
	if err != nil {
		return err
	}
	if len(roles) == 0 {
		e.say("%s cannot take a level in any role.", m.Name())
		return nil
	}
	var names []string
	for _, r := range roles {
		names = append(names, fmt.Sprintf("%s (level %d)", nameOf(r.Name, r.ID), m.Roles.Level(r.ID)+1))
	}
	e.say("%s can advance as: %s.", m.Name(), strings.Join(names, ", "))
	return nil
}

func cmdDate(e *Engine, _ types.Intent) error {
	d := e.Campaign.Date
	e.say("%s. %d rounds have passed.", d.String(), d.TotalRounds())
	return nil
}

func cmdMoney(e *Engine, _ types.Intent) error {
	cur := e.Campaign.Currency
	e.say("The party has %s (%d units).", cur.ShortString(), cur.Value)
	return nil
}

func cmdHelp(e *Engine, _ types.Intent) error {
	e.say("Game commands:")
	for _, line := range HelpLines {
		e.say("%s", line)
	}
	return nil
}

func nameOf(name, id string) string {
	if name != "" {
		return name
	}
	return id
}

func sortedIDs[V any](m map[string]V) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
