package loader

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/nathoo/campaigncore/engine/area"
	"github.com/nathoo/campaigncore/engine/campaign"
	"github.com/nathoo/campaigncore/engine/creature"
	"github.com/nathoo/campaigncore/engine/currency"
	"github.com/nathoo/campaigncore/engine/date"
	"github.com/nathoo/campaigncore/engine/faction"
	"github.com/nathoo/campaigncore/engine/item"
	"github.com/nathoo/campaigncore/engine/merchant"
	"github.com/nathoo/campaigncore/engine/prereq"
	"github.com/nathoo/campaigncore/engine/recipe"
	"github.com/nathoo/campaigncore/engine/role"
	"github.com/nathoo/campaigncore/engine/skill"
	"github.com/nathoo/campaigncore/types"
	lua "github.com/yuin/gopher-lua"
)

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getIntDefault returns an int field, or def when the field is absent.
func getIntDefault(tbl *lua.LTable, key string, def int) int {
	if _, ok := tbl.RawGetString(key).(lua.LNumber); !ok {
		return def
	}
	return getInt(tbl, key)
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// getStrings returns the string elements of an array field.
func getStrings(tbl *lua.LTable, key string) []string {
	arr := getTable(tbl, key)
	if arr == nil {
		return nil
	}
	var out []string
	for i := 1; i <= arr.MaxN(); i++ {
		if s, ok := arr.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// tableToIntMap converts the string-keyed numeric fields of a table.
func tableToIntMap(tbl *lua.LTable) map[string]int {
	if tbl == nil {
		return nil
	}
	m := map[string]int{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			if n, ok := v.(lua.LNumber); ok {
				m[string(ks)] = int(n)
			}
		}
	})
	return m
}

// tableToStringMap converts a Lua table to a map[string]string.
func tableToStringMap(tbl *lua.LTable) map[string]string {
	if tbl == nil {
		return nil
	}
	m := map[string]string{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			if vs, ok := v.(lua.LString); ok {
				m[string(ks)] = string(vs)
			}
		}
	})
	return m
}

// positional returns element i of an array table, falling back to key.
func positional(tbl *lua.LTable, i int, key string) lua.LValue {
	if v := tbl.RawGetInt(i); v != lua.LNil {
		return v
	}
	return tbl.RawGetString(key)
}

func positionalString(tbl *lua.LTable, i int, key string) string {
	if s, ok := positional(tbl, i, key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

func positionalInt(tbl *lua.LTable, i int, key string, def int) int {
	if n, ok := positional(tbl, i, key).(lua.LNumber); ok {
		return int(n)
	}
	return def
}

// parseStat matches a stat name case-insensitively.
func parseStat(name string) (types.Stat, error) {
	all := append(append([]types.Stat(nil), types.BaseStats...),
		types.StatLevelAttackBonus, types.StatLevelDamageBonus,
		types.StatHitPoints, types.StatArmorPenalty)
	for _, s := range all {
		if strings.EqualFold(string(s), name) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown stat %q", name)
}

// problems accumulates compile errors against a definition.
type problems struct {
	ve   *ValidationError
	kind string
	id   string
	file string
}

func (p problems) errorf(format string, args ...any) {
	p.ve.Errors = append(p.ve.Errors,
		fmt.Sprintf("%s %q (%s): %s", p.kind, p.id, p.file, fmt.Sprintf(format, args...)))
}

func (p problems) warnf(format string, args ...any) {
	p.ve.Warnings = append(p.ve.Warnings,
		fmt.Sprintf("%s %q (%s): %s", p.kind, p.id, p.file, fmt.Sprintf(format, args...)))
}

func (p problems) stats(tbl *lua.LTable) map[types.Stat]int {
	raw := tableToIntMap(tbl)
	if raw == nil {
		return nil
	}
	out := make(map[types.Stat]int, len(raw))
	for _, name := range sortedNames(raw) {
		s, err := parseStat(name)
		if err != nil {
			p.errorf("%v", err)
			continue
		}
		out[s] = raw[name]
	}
	return out
}

func sortedNames[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// compile converts all collected Lua data into campaign definitions.
// Malformed fields are recorded on ve; compilation continues so one load
// reports every problem.
func compile(coll *collector, logger *log.Logger, ve *ValidationError) *campaign.Defs {
	defs := campaign.NewDefs()

	if coll.manifest == nil {
		ve.Errors = append(ve.Errors, "no Campaign{} definition found")
	} else {
		defs.Manifest = compileManifest(coll.manifest, ve)
	}

	seen := map[string]string{}
	for _, raw := range coll.defs {
		key := raw.kind + "\x00" + raw.id
		p := problems{ve: ve, kind: raw.kind, id: raw.id, file: raw.file}
		if prev, dup := seen[key]; dup {
			p.errorf("already defined in %s", prev)
			continue
		}
		seen[key] = raw.file
		if raw.id == "" {
			p.errorf("empty ID")
			continue
		}

		switch raw.kind {
		case "Skill":
			defs.Skills[raw.id] = compileSkill(raw, p)
		case "Role":
			defs.Roles[raw.id] = compileRole(raw, p)
		case "Item":
			defs.Items.Add(compileItem(raw, p, logger))
		case "Recipe":
			defs.Recipes[raw.id] = compileRecipe(raw, p)
		case "Merchant":
			defs.Merchants[raw.id] = compileMerchant(raw, p)
		case "Faction":
			defs.Factions = append(defs.Factions, compileFaction(raw, p))
		case "Area":
			defs.Areas[raw.id] = compileArea(raw, p)
		case "Transition":
			defs.Transitions[raw.id] = compileTransition(raw, p)
		case "Location":
			defs.Locations[raw.id] = compileLocation(raw)
		case "Creature":
			defs.Creatures[raw.id] = compileCreature(raw, p)
		}
	}
	return defs
}

func compileManifest(tbl *lua.LTable, ve *ValidationError) campaign.Manifest {
	p := problems{ve: ve, kind: "Campaign", id: getString(tbl, "id"), file: "campaign"}
	m := campaign.Manifest{
		ID:                 getString(tbl, "id"),
		Name:               getString(tbl, "name"),
		StartingCharacters: getStrings(tbl, "starting_characters"),
		StartingArea:       getString(tbl, "starting_area"),
		StartingPoints:     compilePoints(getTable(tbl, "starting_points"), p),
		StartingMoney:      getString(tbl, "starting_money"),
		Difficulty:         getString(tbl, "difficulty"),
		Qualities:          tableToIntMap(getTable(tbl, "qualities")),
	}
	if party := getTable(tbl, "party"); party != nil {
		m.MinPartySize = getInt(party, "min")
		m.MaxPartySize = getInt(party, "max")
	}
	if lv := getTable(tbl, "starting_level"); lv != nil {
		m.MinStartingLevel = getInt(lv, "min")
		m.MaxStartingLevel = getInt(lv, "max")
	}

	m.Radices = date.DefaultRadices()
	if cal := getTable(tbl, "calendar"); cal != nil {
		m.Radices.RoundsPerMinute = getIntDefault(cal, "rounds_per_minute", m.Radices.RoundsPerMinute)
		m.Radices.MinutesPerHour = getIntDefault(cal, "minutes_per_hour", m.Radices.MinutesPerHour)
		m.Radices.HoursPerDay = getIntDefault(cal, "hours_per_day", m.Radices.HoursPerDay)
		m.Radices.DaysPerMonth = getIntDefault(cal, "days_per_month", m.Radices.DaysPerMonth)
	}

	if rels := getTable(tbl, "relationships"); rels != nil {
		for i := 1; i <= rels.MaxN(); i++ {
			entry, ok := rels.RawGetInt(i).(*lua.LTable)
			if !ok {
				p.errorf("relationships[%d] is not a table", i)
				continue
			}
			r, err := faction.ParseRelationship(positionalString(entry, 3, "relationship"))
			if err != nil {
				p.errorf("relationships[%d]: %v", i, err)
				continue
			}
			m.Relationships = append(m.Relationships, faction.CustomRelationship{
				Faction1:     positionalString(entry, 1, "faction1"),
				Faction2:     positionalString(entry, 2, "faction2"),
				Relationship: r,
			})
		}
	}
	return m
}

func compilePoints(tbl *lua.LTable, p problems) []types.Point {
	if tbl == nil {
		return nil
	}
	var out []types.Point
	for i := 1; i <= tbl.MaxN(); i++ {
		pair, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			p.errorf("point %d is not a table", i)
			continue
		}
		out = append(out, compilePoint(pair))
	}
	return out
}

func compilePoint(pair *lua.LTable) types.Point {
	return types.Point{
		X: positionalInt(pair, 1, "x", 0),
		Y: positionalInt(pair, 2, "y", 0),
	}
}

func compileSkill(raw rawDef, p problems) *skill.Def {
	d := &skill.Def{
		ID:           raw.id,
		Name:         nameOr(raw),
		Untrained:    getBool(raw.table, "untrained", false),
		ArmorPenalty: getBool(raw.table, "armor_penalty", false),
	}
	if s := getString(raw.table, "stat"); s != "" {
		st, err := parseStat(s)
		if err != nil {
			p.errorf("%v", err)
		}
		d.KeyStat = st
	} else {
		p.errorf("stat is required")
	}
	return d
}

func nameOr(raw rawDef) string {
	if n := getString(raw.table, "name"); n != "" {
		return n
	}
	return raw.id
}

func compilePrereqs(tbl *lua.LTable, p problems) prereq.List {
	var l prereq.List
	if tbl == nil {
		return l
	}
	stats := p.stats(getTable(tbl, "stats"))
	for _, s := range sortedStats(stats) {
		l.Stats = append(l.Stats, prereq.StatReq{Stat: s, Min: stats[s]})
	}
	skills := tableToIntMap(getTable(tbl, "skills"))
	for _, id := range sortedNames(skills) {
		l.Skills = append(l.Skills, prereq.SkillReq{SkillID: id, Ranks: skills[id]})
	}
	roles := tableToIntMap(getTable(tbl, "roles"))
	for _, id := range sortedNames(roles) {
		l.Roles = append(l.Roles, prereq.RoleReq{RoleID: id, Level: roles[id]})
	}
	l.Abilities = getStrings(tbl, "abilities")
	l.WeaponProficiencies = getStrings(tbl, "weapon_proficiencies")
	l.ArmorProficiencies = getStrings(tbl, "armor_proficiencies")
	return l
}

func sortedStats(m map[types.Stat]int) []types.Stat {
	out := make([]types.Stat, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func compileRole(raw rawDef, p problems) *role.Def {
	d := &role.Def{
		ID:           raw.id,
		Name:         nameOr(raw),
		Base:         getBool(raw.table, "base", false),
		MaxLevel:     getInt(raw.table, "max_level"),
		Prereqs:      compilePrereqs(getTable(raw.table, "prereqs"), p),
		Restrictions: compilePrereqs(getTable(raw.table, "restrictions"), p),
	}
	if levels := getTable(raw.table, "levels"); levels != nil {
		for i := 1; i <= levels.MaxN(); i++ {
			lv, ok := levels.RawGetInt(i).(*lua.LTable)
			if !ok {
				p.errorf("levels[%d] is not a table", i)
				d.Levels = append(d.Levels, role.LevelGrant{})
				continue
			}
			d.Levels = append(d.Levels, role.LevelGrant{
				Stats:       p.stats(getTable(lv, "stats")),
				Abilities:   getStrings(lv, "abilities"),
				SkillPoints: getInt(lv, "skill_points"),
			})
		}
	}
	if d.MaxLevel == 0 {
		d.MaxLevel = len(d.Levels)
	}
	if d.MaxLevel > len(d.Levels) {
		p.warnf("max_level %d exceeds the %d defined levels", d.MaxLevel, len(d.Levels))
	}
	return d
}

func compileItem(raw rawDef, p problems, logger *log.Logger) *item.Template {
	t := &item.Template{ID: raw.id, Name: nameOr(raw)}

	switch v := raw.table.RawGetString("value").(type) {
	case lua.LNumber:
		t.Value = int64(v)
	case lua.LString:
		t.Value = currency.Parse(logger, string(v)).Value
	case *lua.LNilType:
	default:
		p.errorf("value must be a number or currency string")
	}

	if s := getString(raw.table, "slot"); s != "" {
		slot, err := item.ParseSlot(strings.ToLower(s))
		if err != nil {
			p.errorf("%v", err)
		}
		t.Slot = slot
	}

	tbl := raw.table
	switch kind := strings.ToLower(getString(tbl, "kind")); kind {
	case "weapon":
		dmg := item.NewDamage()
		if d := getTable(tbl, "damage"); d != nil {
			for i := 1; i <= d.MaxN(); i++ {
				pair, ok := d.RawGetInt(i).(*lua.LTable)
				if !ok {
					p.errorf("damage[%d] is not a {type, amount} pair", i)
					continue
				}
				dmg.Add(positionalString(pair, 1, "type"), positionalInt(pair, 2, "amount", 0))
			}
		}
		t.Kind = item.Weapon{
			Damage:      dmg,
			Range:       getInt(tbl, "range"),
			Proficiency: getString(tbl, "proficiency"),
			Ammo:        getString(tbl, "ammo"),
		}
	case "armor":
		t.Kind = item.Armor{
			ArmorClass:  getInt(tbl, "armor_class"),
			Penalty:     getInt(tbl, "penalty"),
			Proficiency: getString(tbl, "proficiency"),
		}
	case "ammo":
		t.Kind = item.Ammo{
			Proficiency: getString(tbl, "proficiency"),
			Bonus:       getInt(tbl, "bonus"),
		}
	case "", "misc":
		t.Kind = item.Misc{}
	default:
		p.errorf("unknown kind %q", kind)
		t.Kind = item.Misc{}
	}
	return t
}

func compileRecipe(raw rawDef, p problems) *recipe.Def {
	tbl := raw.table
	d := &recipe.Def{
		ID:               raw.id,
		Name:             nameOr(raw),
		SkillID:          getString(tbl, "skill"),
		SkillRequirement: getInt(tbl, "skill_requirement"),
		Result:           getString(tbl, "result"),
		ResultQuantity:   getIntDefault(tbl, "quantity", 1),
		Enchantment:      getString(tbl, "enchantment"),
		AllowedKinds:     getStrings(tbl, "allowed_kinds"),
	}
	d.ResultIngredient = getBool(tbl, "result_ingredient", d.Enchantment != "" && d.Result == "")

	if ins := getTable(tbl, "ingredients"); ins != nil {
		for i := 1; i <= ins.MaxN(); i++ {
			entry, ok := ins.RawGetInt(i).(*lua.LTable)
			if !ok {
				p.errorf("ingredients[%d] is not a table", i)
				continue
			}
			d.Ingredients = append(d.Ingredients, recipe.Ingredient{
				TemplateID: positionalString(entry, 1, "id"),
				Quantity:   positionalInt(entry, 2, "quantity", 1),
			})
		}
	}
	if mods := getTable(tbl, "level_modifiers"); mods != nil {
		for i := 1; i <= mods.MaxN(); i++ {
			entry, ok := mods.RawGetInt(i).(*lua.LTable)
			if !ok {
				p.errorf("level_modifiers[%d] is not a table", i)
				continue
			}
			d.LevelModifiers = append(d.LevelModifiers, recipe.LevelModifier{
				SkillRankRequirement: positionalInt(entry, 1, "ranks", 0),
				Quality:              positionalString(entry, 2, "quality"),
			})
		}
	}

	switch {
	case d.ResultIngredient && d.Enchantment == "":
		p.errorf("result_ingredient recipes need an enchantment")
	case !d.ResultIngredient && d.Result == "":
		p.errorf("result is required")
	}
	return d
}

func compileMerchant(raw rawDef, p problems) *merchant.Def {
	tbl := raw.table
	d := &merchant.Def{
		ID:             raw.id,
		Name:           nameOr(raw),
		BuyPercentage:  getIntDefault(tbl, "buy", 50),
		SellPercentage: getIntDefault(tbl, "sell", 100),
		RespawnHours:   getInt(tbl, "respawn_hours"),
	}
	if items := getTable(tbl, "items"); items != nil {
		for i := 1; i <= items.MaxN(); i++ {
			entry, ok := items.RawGetInt(i).(*lua.LTable)
			if !ok {
				p.errorf("items[%d] is not a table", i)
				continue
			}
			d.BaseItems = append(d.BaseItems, merchant.LootEntry{
				TemplateID:  positionalString(entry, 1, "id"),
				Quantity:    positionalInt(entry, 2, "quantity", 1),
				Probability: positionalInt(entry, 3, "probability", 100),
				Quality:     getString(entry, "quality"),
			})
		}
	}
	if d.BuyPercentage > d.SellPercentage {
		p.warnf("buys at %d%% but sells at %d%%", d.BuyPercentage, d.SellPercentage)
	}
	return d
}

func compileFaction(raw rawDef, p problems) campaign.FactionDef {
	f := campaign.FactionDef{Name: raw.id}
	rels := tableToStringMap(getTable(raw.table, "relationships"))
	if len(rels) > 0 {
		f.Relationships = make(map[string]faction.Relationship, len(rels))
	}
	for _, other := range sortedNames(rels) {
		r, err := faction.ParseRelationship(rels[other])
		if err != nil {
			p.errorf("relationship with %s: %v", other, err)
			continue
		}
		f.Relationships[other] = r
	}
	return f
}

func compileArea(raw rawDef, p problems) *area.Def {
	tbl := raw.table
	d := &area.Def{
		ID:      raw.id,
		Name:    nameOr(raw),
		Width:   getInt(tbl, "width"),
		Height:  getInt(tbl, "height"),
		Blocked: compilePoints(getTable(tbl, "blocked"), p),
		Hooks: area.Hooks{
			OnLoad: getString(tbl, "on_load"),
			OnExit: getString(tbl, "on_exit"),
		},
	}
	if d.Width <= 0 || d.Height <= 0 {
		p.errorf("width and height must be positive, got %dx%d", d.Width, d.Height)
	}
	if encs := getTable(tbl, "encounters"); encs != nil {
		for i := 1; i <= encs.MaxN(); i++ {
			entry, ok := encs.RawGetInt(i).(*lua.LTable)
			if !ok {
				p.errorf("encounters[%d] is not a table", i)
				continue
			}
			e := area.EncounterDef{
				ID:           getString(entry, "id"),
				Creatures:    getStrings(entry, "creatures"),
				Points:       compilePoints(getTable(entry, "points"), p),
				RespawnHours: getInt(entry, "respawn_hours"),
			}
			if e.ID == "" {
				e.ID = fmt.Sprintf("%s#%d", raw.id, i)
			}
			d.Encounters = append(d.Encounters, e)
		}
	}
	return d
}

func compileEndpoint(tbl *lua.LTable, p problems) area.Endpoint {
	if tbl == nil {
		return area.Endpoint{WorldMap: true}
	}
	return area.Endpoint{
		AreaID:   getString(tbl, "area"),
		WorldMap: getBool(tbl, "world_map", false),
		Points:   compilePoints(getTable(tbl, "points"), p),
	}
}

func compileTransition(raw rawDef, p problems) *area.TransitionDef {
	tbl := raw.table
	return &area.TransitionDef{
		ID:               raw.id,
		Name:             nameOr(raw),
		From:             compileEndpoint(getTable(tbl, "from"), p),
		To:               compileEndpoint(getTable(tbl, "to"), p),
		TwoWay:           getBool(tbl, "two_way", false),
		WorldMapLocation: getString(tbl, "location"),
		Activated:        getBool(tbl, "activated", true),
	}
}

func compileLocation(raw rawDef) *area.Location {
	tbl := raw.table
	l := &area.Location{
		ID:          raw.id,
		Name:        nameOr(raw),
		Transition:  getString(tbl, "transition"),
		TravelHours: getInt(tbl, "travel_hours"),
		Revealed:    getBool(tbl, "revealed", false),
	}
	if pos := getTable(tbl, "position"); pos != nil {
		l.Position = compilePoint(pos)
	}
	return l
}

func compileCreature(raw rawDef, p problems) *creature.Def {
	tbl := raw.table
	d := &creature.Def{
		ID:                  raw.id,
		Name:                nameOr(raw),
		Faction:             getString(tbl, "faction"),
		Stats:               p.stats(getTable(tbl, "stats")),
		Skills:              tableToIntMap(getTable(tbl, "skills")),
		Roles:               tableToIntMap(getTable(tbl, "roles")),
		Abilities:           getStrings(tbl, "abilities"),
		WeaponProficiencies: getStrings(tbl, "weapon_proficiencies"),
		ArmorProficiencies:  getStrings(tbl, "armor_proficiencies"),
		Auras:               getStrings(tbl, "auras"),
	}
	if inv := getTable(tbl, "inventory"); inv != nil {
		for i := 1; i <= inv.MaxN(); i++ {
			entry, ok := inv.RawGetInt(i).(*lua.LTable)
			if !ok {
				p.errorf("inventory[%d] is not a table", i)
				continue
			}
			d.Inventory = append(d.Inventory, item.Entry{
				TemplateID: positionalString(entry, 1, "id"),
				Quantity:   positionalInt(entry, 2, "quantity", 1),
				Quality:    getString(entry, "quality"),
			})
		}
	}
	eq := tableToStringMap(getTable(tbl, "equipped"))
	if len(eq) > 0 {
		d.Equipped = make(map[item.Slot]string, len(eq))
	}
	for _, name := range sortedNames(eq) {
		slot, err := item.ParseSlot(strings.ToLower(name))
		if err != nil {
			p.errorf("equipped: %v", err)
			continue
		}
		d.Equipped[slot] = eq[name]
	}
	return d
}
