// Package parser converts command strings into Intent structs.
// Intentionally dumb: no NLP, just aliases and positional arguments.
package parser

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/nathoo/campaigncore/types"
)

// Verbs are the canonical commands the engine understands.
var Verbs = []string{
	"party", "look", "map", "travel", "wait", "rest", "check",
	"stock", "buy", "sell", "craft", "enchant", "quests",
	"relation", "levelup", "date", "money", "roles", "help",
}

var verbAliases = map[string]string{
	// Look
	"l":       "look",
	"examine": "look",
	"x":       "look",

	// Party
	"p":       "party",
	"members": "party",
	"who":     "party",

	// Map
	"m":       "map",
	"explore": "map",

	// Travel
	"go":     "travel",
	"walk":   "travel",
	"enter":  "travel",
	"t":      "travel",
	"use":    "travel",
	"follow": "travel",

	// Time
	"z":     "wait",
	"pass":  "wait",
	"sleep": "rest",
	"camp":  "rest",
	"time":  "date",
	"when":  "date",

	// Skills and roles
	"test":  "check",
	"roll":  "check",
	"level": "levelup",
	"train": "levelup",
	"lvl":   "levelup",
	"class": "roles",

	// Trade
	"wares":    "stock",
	"shop":     "stock",
	"browse":   "stock",
	"purchase": "buy",
	"pawn":     "sell",
	"gold":     "money",
	"purse":    "money",
	"coins":    "money",
	"$":        "money",

	// Crafting
	"make":    "craft",
	"forge":   "craft",
	"brew":    "craft",
	"imbue":   "enchant",
	"enhance": "enchant",

	// Journal
	"q":       "quests",
	"j":       "quests",
	"journal": "quests",
	"quest":   "quests",

	// Factions
	"rel":       "relation",
	"standing":  "relation",
	"relations": "relation",
	"?":         "help",
}

var fillers = map[string]bool{
	"the": true, "a": true, "an": true,
	"to": true, "from": true, "at": true, "with": true, "in": true, "for": true,
}

// Parse converts a raw command string into an Intent. Meta commands
// ("/save slot") keep their leading slash in the verb.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))
	if strings.HasPrefix(words[0], "/") {
		return types.Intent{Verb: words[0], Args: words[1:]}
	}

	words = expandMultiWordVerbs(words)

	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	return types.Intent{
		Verb: words[0],
		Args: stripFillers(words[1:]),
	}
}

// expandMultiWordVerbs handles "level up", "look around", "talk to" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "level":
		if words[1] == "up" {
			return append([]string{"levelup"}, words[2:]...)
		}
	case "look":
		if words[1] == "around" {
			return append([]string{"look"}, words[2:]...)
		}
	case "skill":
		if words[1] == "check" {
			return append([]string{"check"}, words[2:]...)
		}
	case "world":
		if words[1] == "map" {
			return append([]string{"map"}, words[2:]...)
		}
	case "take":
		if words[1] == "a" && len(words) > 2 && words[2] == "rest" {
			return append([]string{"rest"}, words[3:]...)
		}
	}

	return words
}

// stripFillers removes articles and prepositions from the argument list.
func stripFillers(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !fillers[w] {
			result = append(result, w)
		}
	}
	return result
}

// Suggest returns the closest candidate to word, or "" when nothing is
// close enough to be a likely typo.
func Suggest(word string, candidates []string) string {
	word = strings.ToLower(word)
	if len(word) < 2 {
		return ""
	}
	type scored struct {
		val  string
		dist int
	}
	var results []scored
	for _, cand := range candidates {
		if cand == word {
			return cand
		}
		if strings.HasPrefix(cand, word) && len(word) >= 3 {
			results = append(results, scored{cand, 0})
			continue
		}
		dist := levenshtein.ComputeDistance(word, cand)
		if dist > levenshteinLimit(len(cand)) {
			continue
		}
		results = append(results, scored{cand, dist})
	}
	if len(results) == 0 {
		return ""
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].dist == results[j].dist {
			return results[i].val < results[j].val
		}
		return results[i].dist < results[j].dist
	})
	return results[0].val
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
